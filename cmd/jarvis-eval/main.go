package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	log "log/slog"

	"jarvis/internal/app"
	"jarvis/internal/config"
)

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	configPath := cli.StringP("config", "c", "", "YAML config file")
	logLevel := cli.StringP("log", "l", "warn", "Log level (debug, info, warn, error)")
	proxyAddr := cli.StringP("proxy", "p", "", "SOCKS5 proxy address for the model API")
	model := cli.String("model", "", "Generative model name")
	asJSON := cli.Bool("json", false, "Print the report as JSON")
	cli.Parse()

	cfg, _, err := app.Bootstrap(app.Flags{
		EnvFile:    *envFile,
		ConfigPath: *configPath,
		LogLevel:   *logLevel,
		Proxy:      *proxyAddr,
		Model:      *model,
	}, os.Stderr)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	a, err := app.New(cfg, config.Detect(cfg, nil), log.Default())
	if err != nil {
		log.Error("Failed to start services", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report := a.Eval.Run(ctx)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Error("Failed to encode report", "err", err)
		}
		return
	}

	for _, r := range report.Results {
		mark := "FAIL"
		if r.Passed {
			mark = "PASS"
		}
		fmt.Printf("[%s] %s\n       %s\n", mark, r.Question, r.Response)
	}
	fmt.Printf("accuracy: %.1f%%\n", report.Accuracy)
}
