package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jarvis/internal/observability"
)

// DefaultExecutorDelay models the latency of a system command.
const DefaultExecutorDelay = 200 * time.Millisecond

// Executor simulates running a system command.
type Executor struct {
	delay  time.Duration
	obs    *observability.Sink
	logger *slog.Logger
}

// NewExecutor creates an Executor. A non-positive delay uses
// DefaultExecutorDelay.
func NewExecutor(delay time.Duration, obs *observability.Sink, logger *slog.Logger) *Executor {
	if delay <= 0 {
		delay = DefaultExecutorDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{delay: delay, obs: obs, logger: logger}
}

// Execute acknowledges command after the fixed delay. It always returns a
// string; failures are reported inside it.
func (e *Executor) Execute(ctx context.Context, command string) string {
	return e.run(ctx, command).Text
}

func (e *Executor) run(ctx context.Context, command string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = e.failed(command, FailureInternal, recoveredError(r))
		}
	}()

	e.obs.Log(ctx, "Executor", "execute", command)
	e.obs.Metric(ctx, "tool_call")

	t := time.NewTimer(e.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return Outcome{Text: fmt.Sprintf("[SYSTEM] Executed: %s", command)}
	case <-ctx.Done():
		return e.failed(command, FailureInternal, ctx.Err())
	}
}

func (e *Executor) failed(command string, f Failure, err error) Outcome {
	e.logger.Error("Error in Executor.execute", "command", command, "err", err)
	return Outcome{
		Text:    fmt.Sprintf("[SYSTEM ERROR] Failed to execute: %s", command),
		Failure: f,
		Err:     err,
	}
}
