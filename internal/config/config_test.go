package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Listen.Address)
	assert.Equal(t, DefaultModel, cfg.GenAI.Model)
	assert.Equal(t, DefaultGeminiBaseURL, cfg.GenAI.BaseURL)
	assert.Equal(t, 200*time.Millisecond, cfg.Agent.ExecutorDelay)
	assert.Equal(t, 4, cfg.Agent.HistoryLimit)
	assert.False(t, cfg.HasSupabase())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
listen:
  address: "127.0.0.1:9000"
genai:
  model: gemini-2.0-flash
datastore:
  sqlite_path: /tmp/jarvis.db
agent:
  executor_delay: 50ms
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Listen.Address)
	assert.Equal(t, "gemini-2.0-flash", cfg.GenAI.Model)
	assert.Equal(t, "/tmp/jarvis.db", cfg.Datastore.SQLitePath)
	assert.Equal(t, 50*time.Millisecond, cfg.Agent.ExecutorDelay)
	assert.Equal(t, 4, cfg.Agent.HistoryLimit, "unset fields keep defaults")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantKey string
		wantSB  bool
	}{
		{name: "google key", env: map[string]string{"GOOGLE_API_KEY": "g"}, wantKey: "g"},
		{name: "gemini fallback", env: map[string]string{"GEMINI_API_KEY": "m"}, wantKey: "m"},
		{name: "google wins", env: map[string]string{"GOOGLE_API_KEY": "g", "GEMINI_API_KEY": "m"}, wantKey: "g"},
		{name: "supabase pair", env: map[string]string{"SUPABASE_URL": "https://x.supabase.co", "SUPABASE_KEY": "k"}, wantSB: true},
		{name: "supabase url only", env: map[string]string{"SUPABASE_URL": "https://x.supabase.co"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ApplyEnv(envMap(tt.env))
			assert.Equal(t, tt.wantKey, cfg.GenAI.APIKey)
			assert.Equal(t, tt.wantSB, cfg.HasSupabase())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "INFO", want: slog.LevelInfo},
		{in: " debug ", want: slog.LevelDebug},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDetect_Datastore(t *testing.T) {
	missing := func(string) (string, error) { return "", errors.New("not found") }

	cfg := Default()
	assert.Equal(t, "", Detect(cfg, missing).Datastore)

	cfg.Datastore.SQLitePath = "x.db"
	assert.Equal(t, "sqlite", Detect(cfg, missing).Datastore)

	cfg.Datastore.SupabaseURL = "https://x.supabase.co"
	cfg.Datastore.SupabaseKey = "k"
	caps := Detect(cfg, missing)
	assert.Equal(t, "supabase", caps.Datastore)
	assert.False(t, caps.GenAI)
	assert.False(t, caps.Speech)
}
