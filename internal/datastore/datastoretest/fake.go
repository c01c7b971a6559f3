// Package datastoretest provides an in-memory datastore.Store for tests.
package datastoretest

import (
	"context"
	"sync"

	"jarvis/internal/datastore"
)

// Fake records every write and can be told to fail.
type Fake struct {
	mu            sync.Mutex
	Conversations []datastore.Conversation
	Logs          []datastore.AgentLog
	Metrics       []datastore.Metric

	// Err, when set, is returned by every call.
	Err error
}

// InsertConversation implements datastore.Store.
func (f *Fake) InsertConversation(_ context.Context, c datastore.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if c.Timestamp == "" {
		c.Timestamp = datastore.Now()
	}
	f.Conversations = append(f.Conversations, c)
	return nil
}

// RecentConversations implements datastore.Store.
func (f *Fake) RecentConversations(_ context.Context, limit int) ([]datastore.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []datastore.Conversation
	for i := len(f.Conversations) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.Conversations[i])
	}
	return out, nil
}

// InsertAgentLog implements datastore.Store.
func (f *Fake) InsertAgentLog(_ context.Context, l datastore.AgentLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Logs = append(f.Logs, l)
	return nil
}

// InsertMetric implements datastore.Store.
func (f *Fake) InsertMetric(_ context.Context, m datastore.Metric) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Metrics = append(f.Metrics, m)
	return nil
}

// Backend implements datastore.Store.
func (f *Fake) Backend() string { return "fake" }

// Close implements datastore.Store.
func (f *Fake) Close() error { return nil }

// MetricCount returns how many times name was recorded.
func (f *Fake) MetricCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.Metrics {
		if m.Metric == name {
			n++
		}
	}
	return n
}

// LogsFor returns the events logged by agent.
func (f *Fake) LogsFor(agent string) []datastore.AgentLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []datastore.AgentLog
	for _, l := range f.Logs {
		if l.Agent == agent {
			out = append(out, l)
		}
	}
	return out
}
