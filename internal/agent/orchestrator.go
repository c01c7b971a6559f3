package agent

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// AckPrompt is what the Conversation agent is asked while the Executor
// handles the raw command.
func AckPrompt(command string) string {
	return "Acknowledge the system task: " + command
}

// RunResult pairs the Executor's result (nil on the AI route) with the
// Conversation agent's reply.
type RunResult struct {
	Executor *string
	AI       string
}

// Orchestrator routes a command and runs the agents it needs.
type Orchestrator struct {
	planner  *Planner
	executor *Executor
	convo    *Conversation
	logger   *slog.Logger
}

// NewOrchestrator wires the three agents together.
func NewOrchestrator(p *Planner, e *Executor, c *Conversation, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{planner: p, executor: e, convo: c, logger: logger}
}

// Run classifies command. On the executor route the Executor (raw command)
// and the Conversation agent (acknowledgement prompt) run concurrently and
// both are awaited; on the AI route only the Conversation agent runs.
// Run never fails: internal errors become (nil, "System error: ...").
func (o *Orchestrator) Run(ctx context.Context, command string) (res RunResult) {
	defer func() {
		if r := recover(); r != nil {
			res = o.systemError(recoveredError(r))
		}
	}()

	if o.planner.Classify(ctx, command) != RouteExecutor {
		return RunResult{AI: o.convo.Ask(ctx, command).Text}
	}

	var (
		g       errgroup.Group
		execOut string
		aiOut   string
	)
	g.Go(guard(func() { execOut = o.executor.Execute(ctx, command) }))
	g.Go(guard(func() { aiOut = o.convo.Ask(ctx, AckPrompt(command)).Text }))

	if err := g.Wait(); err != nil {
		return o.systemError(err)
	}

	return RunResult{Executor: &execOut, AI: aiOut}
}

func (o *Orchestrator) systemError(err error) RunResult {
	o.logger.Error("Error in orchestrator run", "err", err)
	return RunResult{AI: fmt.Sprintf("System error: %v", err)}
}

// guard turns a panic in fn into the task's error.
func guard(fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recoveredError(r)
			}
		}()
		fn()
		return nil
	}
}
