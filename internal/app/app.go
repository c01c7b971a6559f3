// Package app assembles the shared jarvis services from configuration:
// datastore, events bus, observability, the generative model and the
// agent trio. Every command entry point builds one App and layers its own
// front end (voice loop, HTTP surface, eval report) on top.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"

	"jarvis/internal/agent"
	"jarvis/internal/config"
	"jarvis/internal/datastore"
	"jarvis/internal/eval"
	"jarvis/internal/events"
	"jarvis/internal/genai"
	"jarvis/internal/memory"
	"jarvis/internal/observability"
	"jarvis/internal/proxy"
	"jarvis/internal/summarizer"
)

// Flags are the settings every command accepts on its command line.
type Flags struct {
	EnvFile    string
	ConfigPath string
	LogLevel   string // empty keeps the configured level
	Proxy      string // empty keeps the configured proxy
	Model      string // empty keeps the configured model
}

// Bootstrap loads the env file, reads configuration and installs the
// default logger.
func Bootstrap(f Flags, out io.Writer) (*config.Config, *slog.Logger, error) {
	if f.EnvFile != "" {
		// A missing .env is normal outside development.
		_ = godotenv.Load(f.EnvFile)
	}

	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.Proxy != "" {
		cfg.GenAI.Proxy = f.Proxy
	}
	if f.Model != "" {
		cfg.GenAI.Model = f.Model
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := config.NewLogger(out, level)
	slog.SetDefault(logger)

	return cfg, logger, nil
}

// App holds the services shared by every front end.
type App struct {
	Config *config.Config
	Caps   config.Capabilities
	Logger *slog.Logger

	Store  datastore.Store // nil without a datastore
	Bus    *events.Bus
	Obs    *observability.Sink
	Memory *memory.Store
	Gen    genai.Generator // nil without an API key
	Agents *agent.Orchestrator
	Eval   *eval.Harness
}

// New wires an App. Missing credentials degrade the corresponding service
// instead of failing; only a broken proxy setting is fatal.
func New(cfg *config.Config, caps config.Capabilities, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		Config: cfg,
		Caps:   caps,
		Logger: logger,
		Bus:    events.New(),
	}

	store, err := datastore.Open(datastore.Config{
		SupabaseURL: cfg.Datastore.SupabaseURL,
		SupabaseKey: cfg.Datastore.SupabaseKey,
		SQLitePath:  cfg.Datastore.SQLitePath,
	})
	if err != nil {
		logger.Error("Datastore unavailable, logging to console", "err", err)
		store = nil
	}
	a.Store = store

	a.Obs = observability.New(a.Store, a.Bus, logger)
	a.Memory = memory.New(a.Store, logger)

	httpClient, err := proxy.NewClient(cfg.GenAI.Proxy)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("proxy %q: %w", cfg.GenAI.Proxy, err)
	}

	client, err := genai.New(genai.Options{
		APIKey:     cfg.GenAI.APIKey,
		BaseURL:    cfg.GenAI.BaseURL,
		Model:      cfg.GenAI.Model,
		HTTPClient: httpClient,
		MaxRetries: 2,
	})
	switch {
	case errors.Is(err, genai.ErrNoAPIKey):
		logger.Warn("GOOGLE_API_KEY not set, AI replies disabled")
	case err != nil:
		logger.Error("Failed to create model client", "err", err)
	default:
		// Assigned only on success so a failed client stays a nil interface.
		a.Gen = client
		logger.Debug("Loaded model client", "model", client.Model())
	}

	conv := agent.NewConversation(agent.ConversationConfig{
		Gen:          a.Gen,
		History:      a.Memory,
		Digester:     summarizer.New(a.Gen, logger),
		Obs:          a.Obs,
		HistoryLimit: cfg.Agent.HistoryLimit,
		Logger:       logger,
	})
	a.Agents = agent.NewOrchestrator(
		agent.NewPlanner(a.Obs, logger),
		agent.NewExecutor(cfg.Agent.ExecutorDelay, a.Obs, logger),
		conv,
		logger,
	)
	a.Eval = eval.New(a.Gen, nil, logger)

	return a, nil
}

// Close releases the datastore.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
