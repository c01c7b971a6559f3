// Package memory persists (query, response) exchanges and reads back the
// most recent ones as conversational context.
package memory

import (
	"context"
	"log/slog"

	"jarvis/internal/datastore"
)

// DefaultLimit is how many exchanges Recent returns when asked for <= 0.
const DefaultLimit = 4

// Record is one remembered exchange.
type Record struct {
	Query    string
	Response string
}

// Store wraps an optional datastore. With no datastore, Save is a no-op
// and Recent returns nothing.
type Store struct {
	db     datastore.Store
	logger *slog.Logger
}

// New creates a memory store over db, which may be nil.
func New(db datastore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Available reports whether exchanges are actually persisted.
func (s *Store) Available() bool {
	return s != nil && s.db != nil
}

// Save appends an exchange. Failures are logged and returned so callers
// may ignore them.
func (s *Store) Save(ctx context.Context, query, response string) error {
	if !s.Available() {
		return nil
	}
	err := s.db.InsertConversation(ctx, datastore.Conversation{
		Query:    query,
		Response: response,
	})
	if err != nil {
		s.logger.Warn("Error saving to memory", "err", err)
	}
	return err
}

// Recent returns at most limit exchanges, newest first. It never fails:
// an unavailable or erroring datastore yields an empty slice.
func (s *Store) Recent(ctx context.Context, limit int) []Record {
	if !s.Available() {
		return []Record{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.RecentConversations(ctx, limit)
	if err != nil {
		s.logger.Warn("Error retrieving memory", "err", err)
		return []Record{}
	}

	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		if len(out) == limit {
			break
		}
		out = append(out, Record{Query: r.Query, Response: r.Response})
	}
	return out
}
