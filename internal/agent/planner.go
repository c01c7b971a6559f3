// Package agent contains the Planner, Executor and Conversation agents and
// the Orchestrator that coordinates them.
package agent

import (
	"context"
	"log/slog"
	"strings"

	"jarvis/internal/observability"
)

// Route is the Planner's decision.
type Route int

const (
	RouteAI Route = iota
	RouteExecutor
)

func (r Route) String() string {
	if r == RouteExecutor {
		return "EXECUTOR"
	}
	return "AI"
}

// ExecutorKeywords send any input containing them to the Executor.
var ExecutorKeywords = []string{"open", "search", "scroll", "play"}

// Planner routes free text by keyword membership.
type Planner struct {
	obs    *observability.Sink
	logger *slog.Logger
}

// NewPlanner creates a Planner. obs may be nil.
func NewPlanner(obs *observability.Sink, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{obs: obs, logger: logger}
}

// Classify returns RouteExecutor when text contains any executor keyword,
// case-insensitively, and RouteAI otherwise. It never fails; anything
// unexpected falls back to RouteAI.
func (p *Planner) Classify(ctx context.Context, text string) (route Route) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Error in Planner.classify", "err", recoveredError(r))
			route = RouteAI
		}
	}()

	p.obs.Log(ctx, "Planner", "classify", text)

	lower := strings.ToLower(text)
	for _, kw := range ExecutorKeywords {
		if strings.Contains(lower, kw) {
			return RouteExecutor
		}
	}
	return RouteAI
}
