// Package config handles jarvis configuration loading.
//
// Values come from three layers, later layers winning: built-in defaults,
// an optional YAML file, and the process environment (usually populated
// from a .env file by the command entry points).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultGeminiBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// DefaultModel is the generative model used for every AI call.
const DefaultModel = "gemini-2.5-flash"

// Config holds all jarvis configuration.
type Config struct {
	Listen    ListenConfig    `yaml:"listen"`
	GenAI     GenAIConfig     `yaml:"genai"`
	Datastore DatastoreConfig `yaml:"datastore"`
	Voice     VoiceConfig     `yaml:"voice"`
	Agent     AgentConfig     `yaml:"agent"`
	LogLevel  string          `yaml:"log_level"`
}

// ListenConfig defines the HTTP surface settings.
type ListenConfig struct {
	Address string `yaml:"address"` // default ":8000"
}

// GenAIConfig defines the generative-language API settings.
// APIKey is normally left empty in the file and taken from GOOGLE_API_KEY.
type GenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Proxy   string `yaml:"proxy"` // optional SOCKS5 address
}

// DatastoreConfig selects the datastore backend. Supabase wins when both
// URL and key are set; otherwise SQLitePath enables the local backend;
// otherwise the datastore is absent.
type DatastoreConfig struct {
	SupabaseURL string `yaml:"supabase_url"`
	SupabaseKey string `yaml:"supabase_key"`
	SQLitePath  string `yaml:"sqlite_path"`
}

// VoiceConfig defines the microphone front end settings.
type VoiceConfig struct {
	WhisperModel string `yaml:"whisper_model"`
	Language     string `yaml:"language"`
	BeepFile     string `yaml:"beep_file"`
	EspeakVoice  string `yaml:"espeak_voice"`
	Duck         bool   `yaml:"duck"`
}

// AgentConfig tunes the agents.
type AgentConfig struct {
	ExecutorDelay time.Duration `yaml:"executor_delay"`
	HistoryLimit  int           `yaml:"history_limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{Address: ":8000"},
		GenAI: GenAIConfig{
			BaseURL: DefaultGeminiBaseURL,
			Model:   DefaultModel,
		},
		Voice: VoiceConfig{
			WhisperModel: "third_party/whisper.cpp/models/ggml-base.en.bin",
			Language:     "en",
			BeepFile:     "beep.mp3",
			EspeakVoice:  "en",
		},
		Agent: AgentConfig{
			ExecutorDelay: 200 * time.Millisecond,
			HistoryLimit:  4,
		},
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.applyDefaults()

	return cfg, nil
}

// ApplyEnv overrides credentials and paths from the environment. getenv is
// injected so tests do not have to mutate the process environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("GOOGLE_API_KEY"); v != "" {
		c.GenAI.APIKey = v
	} else if v := getenv("GEMINI_API_KEY"); v != "" {
		c.GenAI.APIKey = v
	}
	if v := getenv("SUPABASE_URL"); v != "" {
		c.Datastore.SupabaseURL = v
	}
	if v := getenv("SUPABASE_KEY"); v != "" {
		c.Datastore.SupabaseKey = v
	}
	if v := getenv("JARVIS_SQLITE_PATH"); v != "" {
		c.Datastore.SQLitePath = v
	}
	if v := getenv("JARVIS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Listen.Address == "" {
		c.Listen.Address = d.Listen.Address
	}
	if c.GenAI.BaseURL == "" {
		c.GenAI.BaseURL = d.GenAI.BaseURL
	}
	if c.GenAI.Model == "" {
		c.GenAI.Model = d.GenAI.Model
	}
	if c.Agent.ExecutorDelay <= 0 {
		c.Agent.ExecutorDelay = d.Agent.ExecutorDelay
	}
	if c.Agent.HistoryLimit <= 0 {
		c.Agent.HistoryLimit = d.Agent.HistoryLimit
	}
	if c.Voice.Language == "" {
		c.Voice.Language = d.Voice.Language
	}
	if c.Voice.EspeakVoice == "" {
		c.Voice.EspeakVoice = d.Voice.EspeakVoice
	}
}

// HasSupabase reports whether remote datastore credentials are complete.
func (c *Config) HasSupabase() bool {
	return c.Datastore.SupabaseURL != "" && c.Datastore.SupabaseKey != ""
}
