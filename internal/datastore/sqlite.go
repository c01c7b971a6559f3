package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a local file-backed Store.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLite) migrate() error {
	// seq gives a strict insertion order; id is the portable row identity.
	schema := `
	CREATE TABLE IF NOT EXISTS conversation_log (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		id        TEXT NOT NULL UNIQUE,
		query     TEXT NOT NULL,
		response  TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_logs (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		id        TEXT NOT NULL UNIQUE,
		agent     TEXT NOT NULL,
		action    TEXT NOT NULL,
		payload   TEXT,
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_agent_logs_agent ON agent_logs(agent, action);

	CREATE TABLE IF NOT EXISTS metrics (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		id        TEXT NOT NULL UNIQUE,
		metric    TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_metrics_metric ON metrics(metric);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Backend implements Store.
func (s *SQLite) Backend() string { return "sqlite" }

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate row ID: %w", err)
	}
	return id.String(), nil
}

// InsertConversation implements Store.
func (s *SQLite) InsertConversation(ctx context.Context, c Conversation) error {
	id, err := newID()
	if err != nil {
		return err
	}
	if c.Timestamp == "" {
		c.Timestamp = Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversation_log (id, query, response, timestamp) VALUES (?, ?, ?, ?)`,
		id, c.Query, c.Response, c.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// RecentConversations implements Store.
func (s *SQLite) RecentConversations(ctx context.Context, limit int) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, response, timestamp FROM conversation_log ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.Query, &c.Response, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertAgentLog implements Store.
func (s *SQLite) InsertAgentLog(ctx context.Context, l AgentLog) error {
	id, err := newID()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agent_logs (id, agent, action, payload, timestamp) VALUES (?, ?, ?, ?, ?)`,
		id, l.Agent, l.Action, l.Payload, l.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert agent log: %w", err)
	}
	return nil
}

// InsertMetric implements Store.
func (s *SQLite) InsertMetric(ctx context.Context, m Metric) error {
	id, err := newID()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metrics (id, metric, timestamp) VALUES (?, ?, ?)`,
		id, m.Metric, m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert metric: %w", err)
	}
	return nil
}

// CountMetric returns how many times name was recorded. Used by operators
// and tests; the assistant itself never aggregates.
func (s *SQLite) CountMetric(ctx context.Context, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM metrics WHERE metric = ?`, name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count metric %s: %w", name, err)
	}
	return n, nil
}

// CountAgentLogs returns the number of events logged by agent.
func (s *SQLite) CountAgentLogs(ctx context.Context, agent string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agent_logs WHERE agent = ?`, agent).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count agent logs %s: %w", agent, err)
	}
	return n, nil
}
