package voice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"jarvis/internal/agent"
	"jarvis/internal/automation"
)

// scriptListener replays lines, then reports ErrListenerClosed. A line
// may carry a hook that runs when it is heard.
type scriptListener struct {
	mu       sync.Mutex
	lines    []string
	hooks    map[int]func()
	n        int
	timeouts []time.Duration
}

func script(lines ...string) *scriptListener {
	return &scriptListener{lines: lines, hooks: map[int]func(){}}
}

func (s *scriptListener) on(i int, fn func()) *scriptListener {
	s.hooks[i] = fn
	return s
}

func (s *scriptListener) Listen(_ context.Context, timeout time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeouts = append(s.timeouts, timeout)
	if s.n >= len(s.lines) {
		return "", ErrListenerClosed
	}
	i := s.n
	s.n++
	if fn, ok := s.hooks[i]; ok {
		fn()
	}
	return s.lines[i], nil
}

type recSpeaker struct {
	mu        sync.Mutex
	said      []string
	onSay     func(sentence string)
	interrupt int
}

func (r *recSpeaker) Say(_ context.Context, sentence string) error {
	r.mu.Lock()
	r.said = append(r.said, sentence)
	fn := r.onSay
	r.mu.Unlock()
	if fn != nil {
		fn(sentence)
	}
	return nil
}

func (r *recSpeaker) Interrupt() {
	r.mu.Lock()
	r.interrupt++
	r.mu.Unlock()
}

func (r *recSpeaker) text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.said, " ")
}

func (r *recSpeaker) count(sentence string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.said {
		if s == sentence {
			n++
		}
	}
	return n
}

// fakeAuto records every desktop action as a short string.
type fakeAuto struct {
	mu       sync.Mutex
	enabled  bool
	platform string
	actions  []string
}

func (f *fakeAuto) record(format string, args ...any) {
	f.mu.Lock()
	f.actions = append(f.actions, fmt.Sprintf(format, args...))
	f.mu.Unlock()
}

func (f *fakeAuto) Enabled() bool { return f.enabled }

func (f *fakeAuto) OpenURL(_ context.Context, url string) error {
	f.record("url %s", url)
	return nil
}

func (f *fakeAuto) OpenApp(_ context.Context, name string) error {
	f.record("app %s", name)
	return nil
}

func (f *fakeAuto) OpenFolder(_ context.Context, path string) error {
	f.record("folder %s", path)
	return nil
}

func (f *fakeAuto) OpenWhatsApp(context.Context) error {
	if f.platform != "windows" {
		return automation.ErrUnsupported
	}
	f.record("whatsapp")
	return nil
}

func (f *fakeAuto) Hotkey(_ context.Context, keys ...string) error {
	f.record("hotkey %s", strings.Join(keys, "+"))
	return nil
}

func (f *fakeAuto) Type(_ context.Context, text string) error {
	f.record("type %s", text)
	return nil
}

func (f *fakeAuto) Press(_ context.Context, key string) error {
	f.record("press %s", key)
	return nil
}

func (f *fakeAuto) Scroll(_ context.Context, amount int) error {
	f.record("scroll %d", amount)
	return nil
}

func (f *fakeAuto) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.actions...)
}

type fakeAgents struct {
	mu       sync.Mutex
	commands []string
	result   func(cmd string) agent.RunResult
}

func (f *fakeAgents) Run(_ context.Context, cmd string) agent.RunResult {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	f.mu.Unlock()
	if f.result != nil {
		return f.result(cmd)
	}
	return agent.RunResult{AI: "AI says " + cmd}
}

type harness struct {
	loop     *Loop
	listener *scriptListener
	speaker  *recSpeaker
	auto     *fakeAuto
	agents   *fakeAgents
}

func newHarness(l *scriptListener, platform, home string) *harness {
	h := &harness{
		listener: l,
		speaker:  &recSpeaker{},
		auto:     &fakeAuto{enabled: true, platform: platform},
		agents:   &fakeAgents{},
	}
	h.loop = NewLoop(Options{
		Listener:  h.listener,
		Speaker:   h.speaker,
		Agents:    h.agents,
		Automator: h.auto,
		Platform:  platform,
		Home:      home,
		Wait:      func(context.Context, time.Duration) {},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return h
}
