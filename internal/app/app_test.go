package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/agent"
	"jarvis/internal/config"
	"jarvis/internal/datastore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "SUPABASE_URL", "SUPABASE_KEY", "JARVIS_SQLITE_PATH", "JARVIS_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestBootstrap_FlagsOverrideConfig(t *testing.T) {
	clearEnv(t)
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("JARVIS_BOOTSTRAP_MARKER=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("JARVIS_BOOTSTRAP_MARKER") })

	cfg, logger, err := Bootstrap(Flags{
		EnvFile:  envFile,
		LogLevel: "debug",
		Proxy:    "127.0.0.1:1080",
		Model:    "gemini-test",
	}, io.Discard)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:1080", cfg.GenAI.Proxy)
	assert.Equal(t, "gemini-test", cfg.GenAI.Model)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.Same(t, logger, slog.Default())
	assert.Equal(t, "loaded", os.Getenv("JARVIS_BOOTSTRAP_MARKER"))
}

func TestBootstrap_MissingEnvFileIsFine(t *testing.T) {
	clearEnv(t)
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg, _, err := Bootstrap(Flags{EnvFile: filepath.Join(t.TempDir(), "missing.env")}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultModel, cfg.GenAI.Model)
}

func TestBootstrap_BadLogLevel(t *testing.T) {
	clearEnv(t)
	_, _, err := Bootstrap(Flags{LogLevel: "loud"}, io.Discard)
	assert.Error(t, err)
}

func TestNew_DegradesWithoutCredentials(t *testing.T) {
	cfg := config.Default()
	a, err := New(cfg, config.Capabilities{Platform: "linux"}, discardLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Store)
	assert.Nil(t, a.Gen, "a failed client must leave a nil interface")
	assert.False(t, a.Memory.Available())

	res := a.Agents.Run(context.Background(), "open notepad")
	require.NotNil(t, res.Executor)
	assert.Equal(t, "[SYSTEM] Executed: open notepad", *res.Executor)
	assert.Equal(t, agent.NoCredentialsReply, res.AI)

	report := a.Eval.Run(context.Background())
	assert.Zero(t, report.Accuracy)
	assert.Len(t, report.Results, 3)
}

func TestNew_SQLiteStoreRecordsAgentActivity(t *testing.T) {
	cfg := config.Default()
	cfg.Datastore.SQLitePath = filepath.Join(t.TempDir(), "jarvis.db")

	a, err := New(cfg, config.Capabilities{Datastore: "sqlite"}, discardLogger())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Store)
	assert.Equal(t, "sqlite", a.Store.Backend())

	ch := a.Bus.Subscribe(64)
	defer a.Bus.Unsubscribe(ch)

	a.Agents.Run(context.Background(), "search for golang")

	db := a.Store.(*datastore.SQLite)
	n, err := db.CountMetric(context.Background(), "tool_call")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = db.CountAgentLogs(context.Background(), "Planner")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NotEmpty(t, ch, "events are mirrored onto the bus")
}
