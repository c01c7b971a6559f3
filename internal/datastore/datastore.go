// Package datastore provides the handle to the tables jarvis logs into:
// conversation_log, agent_logs and metrics. A remote Supabase project is
// preferred, a local SQLite file is the fallback, and with neither the
// handle is nil and callers degrade to console logging.
package datastore

import (
	"context"
	"fmt"
	log "log/slog"
	"time"
)

// Table names shared by every backend.
const (
	TableConversations = "conversation_log"
	TableAgentLogs     = "agent_logs"
	TableMetrics       = "metrics"
)

// Conversation is one persisted (query, response) exchange.
type Conversation struct {
	Query     string `json:"query"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp,omitempty"`
}

// AgentLog is one agent action event.
type AgentLog struct {
	Agent     string `json:"agent"`
	Action    string `json:"action"`
	Payload   string `json:"payload"`
	Timestamp string `json:"timestamp"`
}

// Metric is one named counter increment.
type Metric struct {
	Metric    string `json:"metric"`
	Timestamp string `json:"timestamp"`
}

// Store is implemented by every datastore backend. All tables are
// append-only.
type Store interface {
	InsertConversation(ctx context.Context, c Conversation) error
	// RecentConversations returns at most limit rows, newest first.
	RecentConversations(ctx context.Context, limit int) ([]Conversation, error)
	InsertAgentLog(ctx context.Context, l AgentLog) error
	InsertMetric(ctx context.Context, m Metric) error
	Backend() string
	Close() error
}

// Config selects a backend.
type Config struct {
	SupabaseURL string
	SupabaseKey string
	SQLitePath  string
}

// Open resolves the backend once at startup. A nil Store with a nil error
// means no datastore was configured.
func Open(cfg Config) (Store, error) {
	switch {
	case cfg.SupabaseURL != "" && cfg.SupabaseKey != "":
		s, err := NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, fmt.Errorf("supabase: %w", err)
		}
		log.Info("Supabase connected", "url", cfg.SupabaseURL)
		return s, nil

	case cfg.SQLitePath != "":
		s, err := NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		log.Info("SQLite datastore opened", "path", cfg.SQLitePath)
		return s, nil
	}

	log.Info("Datastore credentials not found - running without database")
	return nil, nil
}

// Now is the timestamp format stored in every table.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
