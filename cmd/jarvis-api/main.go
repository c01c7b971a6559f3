package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/spf13/pflag"

	log "log/slog"

	"jarvis/internal/api"
	"jarvis/internal/app"
	"jarvis/internal/config"
)

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	configPath := cli.StringP("config", "c", "", "YAML config file")
	logLevel := cli.StringP("log", "l", "", "Log level (debug, info, warn, error)")
	proxyAddr := cli.StringP("proxy", "p", "", "SOCKS5 proxy address for the model API")
	model := cli.String("model", "", "Generative model name")
	address := cli.StringP("address", "a", "", "Listen address (default from config, :8000)")
	cli.Parse()

	cfg, _, err := app.Bootstrap(app.Flags{
		EnvFile:    *envFile,
		ConfigPath: *configPath,
		LogLevel:   *logLevel,
		Proxy:      *proxyAddr,
		Model:      *model,
	}, os.Stdout)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Listen.Address = *address
	}

	caps := config.Detect(cfg, nil)

	a, err := app.New(cfg, caps, log.Default())
	if err != nil {
		log.Error("Failed to start services", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	srv := api.NewServer(api.Options{
		Address:    cfg.Listen.Address,
		Platform:   caps.Platform,
		Automation: caps.Automation,
		Asker:      a.Agents,
		Evaluator:  a.Eval,
		Bus:        a.Bus,
		Logger:     log.Default(),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server failed", "err", err)
			a.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Unclean shutdown", "err", err)
		}
	}
}
