package datastore

import (
	"context"
	"fmt"
	"strings"

	postgrest "github.com/supabase-community/postgrest-go"
)

// Supabase is a Store backed by a Supabase project's PostgREST API. The
// three tables must already exist, each with an identity "id" column.
//
// postgrest-go issues requests without a context, so cancellation only
// stops the caller from waiting: a call abandoned on ctx.Done still
// completes in the background.
type Supabase struct {
	client *postgrest.Client
}

// NewSupabase connects to the project at projectURL with the given API key.
func NewSupabase(projectURL, key string) (*Supabase, error) {
	rest := strings.TrimRight(projectURL, "/") + "/rest/v1"
	client := postgrest.NewClient(rest, "public", map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	})
	if client.ClientError != nil {
		return nil, client.ClientError
	}
	return &Supabase{client: client}, nil
}

// Backend implements Store.
func (s *Supabase) Backend() string { return "supabase" }

// Close implements Store; PostgREST is stateless HTTP.
func (s *Supabase) Close() error { return nil }

// do runs fn unless ctx ends first.
func do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supabase) insert(ctx context.Context, table string, row any) error {
	err := do(ctx, func() error {
		_, _, err := s.client.From(table).Insert(row, false, "", "minimal", "").Execute()
		return err
	})
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// InsertConversation implements Store.
func (s *Supabase) InsertConversation(ctx context.Context, c Conversation) error {
	if c.Timestamp == "" {
		c.Timestamp = Now()
	}
	return s.insert(ctx, TableConversations, c)
}

// RecentConversations implements Store.
func (s *Supabase) RecentConversations(ctx context.Context, limit int) ([]Conversation, error) {
	var rows []Conversation
	err := do(ctx, func() error {
		_, err := s.client.From(TableConversations).
			Select("query,response,timestamp", "", false).
			Order("id", &postgrest.OrderOpts{Ascending: false}).
			Limit(limit, "").
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", TableConversations, err)
	}
	return rows, nil
}

// InsertAgentLog implements Store.
func (s *Supabase) InsertAgentLog(ctx context.Context, l AgentLog) error {
	return s.insert(ctx, TableAgentLogs, l)
}

// InsertMetric implements Store.
func (s *Supabase) InsertMetric(ctx context.Context, m Metric) error {
	return s.insert(ctx, TableMetrics, m)
}
