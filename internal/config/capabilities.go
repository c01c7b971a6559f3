package config

import (
	"os/exec"
	"runtime"
)

// Capabilities records which optional integrations are usable. It is
// resolved once at startup and injected into the components that care.
type Capabilities struct {
	Platform   string // runtime.GOOS
	Datastore  string // "supabase", "sqlite" or "" when absent
	GenAI      bool   // an API key is configured
	Automation bool   // keyboard/mouse injection is available
	Speech     bool   // espeak-ng is installed for spoken output
}

// Detect resolves the platform-dependent capabilities. lookPath is
// injected for tests; pass exec.LookPath in production.
func Detect(cfg *Config, lookPath func(string) (string, error)) Capabilities {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	caps := Capabilities{
		Platform: runtime.GOOS,
		GenAI:    cfg.GenAI.APIKey != "",
	}

	switch {
	case cfg.HasSupabase():
		caps.Datastore = "supabase"
	case cfg.Datastore.SQLitePath != "":
		caps.Datastore = "sqlite"
	}

	switch runtime.GOOS {
	case "linux":
		_, err := lookPath("xdotool")
		caps.Automation = err == nil
	case "darwin":
		_, err := lookPath("cliclick")
		caps.Automation = err == nil
	}

	_, err := lookPath("espeak-ng")
	caps.Speech = err == nil

	return caps
}
