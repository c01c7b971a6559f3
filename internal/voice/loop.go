// Package voice runs the wake-word/command loop: it listens, dispatches
// each utterance through an ordered rule table and speaks the results.
package voice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"jarvis/internal/agent"
	"jarvis/internal/automation"
)

// ErrListenerClosed is returned by a Listener that has no more input.
var ErrListenerClosed = errors.New("listener closed")

// Listener yields one recognized utterance per call. A recognition
// failure or timeout is reported as an empty string, not an error.
type Listener interface {
	Listen(ctx context.Context, timeout time.Duration) (string, error)
}

// Speaker renders one sentence audibly.
type Speaker interface {
	Say(ctx context.Context, sentence string) error
}

// Interrupter is implemented by speakers that can cut off speech already
// in progress.
type Interrupter interface {
	Interrupt()
}

// Agents answers free-form commands.
type Agents interface {
	Run(ctx context.Context, command string) agent.RunResult
}

// Options wires a Loop. Speaker may be nil, in which case replies are only
// logged.
type Options struct {
	Session   *Session
	Listener  Listener
	Speaker   Speaker
	Agents    Agents
	Automator automation.Automator
	Platform  string
	Logger    *slog.Logger

	// Home is the directory Folders resolve against; empty means the
	// user's home directory.
	Home string
	// Wait pauses between UI actions. nil sleeps for the given duration.
	Wait func(ctx context.Context, d time.Duration)
	// OnWake, if set, runs when a wake word is heard, before the greeting.
	OnWake func()
}

// Loop is the voice front end.
type Loop struct {
	session  *Session
	listener Listener
	speaker  Speaker
	agents   Agents
	auto     automation.Automator
	platform string
	home     string
	wait     func(ctx context.Context, d time.Duration)
	onWake   func()
	logger   *slog.Logger
}

// NewLoop creates a loop from opt.
func NewLoop(opt Options) *Loop {
	if opt.Session == nil {
		opt.Session = NewSession()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Wait == nil {
		opt.Wait = sleepCtx
	}
	if opt.Home == "" {
		opt.Home, _ = os.UserHomeDir()
	}
	return &Loop{
		session:  opt.Session,
		listener: opt.Listener,
		speaker:  opt.Speaker,
		agents:   opt.Agents,
		auto:     opt.Automator,
		platform: opt.Platform,
		home:     opt.Home,
		wait:     opt.Wait,
		onWake:   opt.OnWake,
		logger:   opt.Logger,
	}
}

// Session returns the loop's shared state.
func (l *Loop) Session() *Session { return l.session }

// next tells the caller of a handler where to go.
type next int

const (
	stay next = iota
	sleep
	quit
)

// Run listens for wake words until an exit word, an exit request, the
// listener closing or ctx being cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.session.setState(StateStopped)

	keys := "Disabled"
	if l.auto != nil && l.auto.Enabled() {
		keys = "Enabled"
	}
	l.logger.Info("JARVIS ELITE - Multi-Agent Voice Assistant", "platform", l.platform, "automation", keys)

	l.speak(ctx, "Jarvis Elite activated.", false)
	l.speak(ctx, "Say a wake word to begin.", false)

	for {
		if l.session.ExitRequested() {
			return nil
		}

		l.session.setState(StateIdle)
		heard, closed := l.listen(ctx, WakeTimeout)
		if closed {
			return l.shutdown(ctx)
		}
		if heard == "" || !HasWakeWord(heard) {
			continue
		}

		l.session.takeSleep()
		if l.onWake != nil {
			l.onWake()
		}
		l.speak(ctx, Greeting, false)

		if l.awake(ctx) == quit {
			return l.shutdown(ctx)
		}
	}
}

func (l *Loop) awake(ctx context.Context) next {
	l.session.setState(StateAwake)
	for {
		if l.session.ExitRequested() {
			return quit
		}
		if l.session.takeSleep() {
			l.speak(ctx, replySleep, false)
			return sleep
		}

		cmd, closed := l.listen(ctx, CommandTimeout)
		if closed {
			return quit
		}
		if cmd == "" {
			continue
		}

		rule := RuleFor(cmd)
		l.logger.Debug("Dispatching", "rule", rule.Name, "cmd", cmd)

		if n := rule.Handle(ctx, l, cmd); n != stay {
			return n
		}
		l.session.setState(StateAwake)
	}
}

func (l *Loop) shutdown(ctx context.Context) error {
	if ctx.Err() != nil {
		l.speak(context.WithoutCancel(ctx), "Shutting down.", false)
	}
	return nil
}

// listen returns the lower-cased utterance. closed is true when no more
// input will come.
func (l *Loop) listen(ctx context.Context, timeout time.Duration) (text string, closed bool) {
	if ctx.Err() != nil {
		return "", true
	}

	text, err := l.listener.Listen(ctx, timeout)
	switch {
	case errors.Is(err, ErrListenerClosed), ctx.Err() != nil:
		return "", true
	case err != nil:
		l.logger.Warn("Speech recognition error", "err", err)
		return "", false
	}

	text = strings.ToLower(strings.TrimSpace(text))
	if text != "" {
		l.logger.Info("You: " + text)
	}
	return text, false
}

func (l *Loop) interrupt() {
	l.session.RequestStop()
	if in, ok := l.speaker.(Interrupter); ok {
		in.Interrupt()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
