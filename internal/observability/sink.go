// Package observability records agent actions and named counters. Events
// go to the datastore when one is configured and to the console log
// otherwise; every event is also mirrored onto the live events bus.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jarvis/internal/datastore"
	"jarvis/internal/events"
	"jarvis/pkg/util"
)

// consolePayloadLimit bounds payloads echoed to the console.
const consolePayloadLimit = 100

// Sink is safe for concurrent use. A nil *Sink discards everything.
type Sink struct {
	store  datastore.Store
	bus    *events.Bus
	logger *slog.Logger
}

// New creates a sink. store and bus may be nil.
func New(store datastore.Store, bus *events.Bus, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{store: store, bus: bus, logger: logger}
}

// Log records that agent performed action with payload.
func (s *Sink) Log(ctx context.Context, agent, action string, payload any) {
	if s == nil {
		return
	}
	text := fmt.Sprint(payload)
	now := time.Now().UTC()

	s.bus.Publish(events.Event{
		Timestamp: now,
		Kind:      events.KindLog,
		Agent:     agent,
		Action:    action,
		Payload:   util.Head(text, consolePayloadLimit),
	})

	if s.store == nil {
		s.logger.Info(fmt.Sprintf("[LOG] %s.%s: %s", agent, action, util.Head(text, consolePayloadLimit)))
		return
	}

	err := s.store.InsertAgentLog(ctx, datastore.AgentLog{
		Agent:     agent,
		Action:    action,
		Payload:   text,
		Timestamp: now.Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Warn("Logging error", "agent", agent, "action", action, "err", err)
	}
}

// Metric records one increment of the counter name.
func (s *Sink) Metric(ctx context.Context, name string) {
	if s == nil {
		return
	}
	now := time.Now().UTC()

	s.bus.Publish(events.Event{
		Timestamp: now,
		Kind:      events.KindMetric,
		Metric:    name,
	})

	if s.store == nil {
		s.logger.Info("[METRIC] " + name)
		return
	}

	err := s.store.InsertMetric(ctx, datastore.Metric{
		Metric:    name,
		Timestamp: now.Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Warn("Metrics error", "metric", name, "err", err)
	}
}
