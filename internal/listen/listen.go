// Package listen provides the voice loop's input sources: the microphone,
// a list of recorded audio files and plain text lines.
package listen

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"jarvis/internal/audio"
	"jarvis/internal/voice"
	"jarvis/pkg/audioconv"
	"jarvis/pkg/stt"
)

// PhraseLimit caps a single spoken command.
const PhraseLimit = 8 * time.Second

type Recorder interface {
	RecordAuto(ctx context.Context, timeout, phraseLimit time.Duration) ([]float32, error)
}

type Transcriber interface {
	TranscribePCM(ctx context.Context, pcm16k []float32, opt stt.Options) (stt.Result, error)
}

// Ducker lowers other applications' audio while recording.
type Ducker interface {
	DuckOthers(ctx context.Context, factor float64, duration time.Duration) error
	UnduckOthers(ctx context.Context, duration time.Duration) error
}

// transcribe maps "nothing recognized" to an empty utterance.
func transcribe(ctx context.Context, tr Transcriber, pcm []float32, opt stt.Options, logger *slog.Logger) (string, error) {
	res, err := tr.TranscribePCM(ctx, pcm, opt)
	switch {
	case errors.Is(err, stt.ErrNoSpeech), errors.Is(err, stt.ErrNoSamples):
		logger.Info("Could not understand audio")
		return "", nil
	case err != nil:
		return "", err
	}
	return res.Text, nil
}

// Mic listens on the default input device.
type Mic struct {
	Recorder    Recorder
	Transcriber Transcriber
	Options     stt.Options
	// Ducker is optional.
	Ducker Ducker
	Logger *slog.Logger
}

func (m *Mic) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *Mic) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	logger := m.logger()

	if m.Ducker != nil {
		if err := m.Ducker.DuckOthers(ctx, 0.3, 150*time.Millisecond); err != nil {
			logger.Debug("Duck failed", "err", err)
		}
		defer func() {
			if err := m.Ducker.UnduckOthers(context.WithoutCancel(ctx), 300*time.Millisecond); err != nil {
				logger.Debug("Unduck failed", "err", err)
			}
		}()
	}

	logger.Info("Listening...")
	pcm, err := m.Recorder.RecordAuto(ctx, timeout, PhraseLimit)
	if errors.Is(err, audio.ErrNoSpeech) {
		logger.Info("No speech detected")
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return transcribe(ctx, m.Transcriber, pcm, m.Options, logger)
}

// Replay feeds recorded audio files through the transcriber, one per
// Listen call, and then closes.
type Replay struct {
	Transcriber Transcriber
	Options     stt.Options
	Logger      *slog.Logger

	mu    sync.Mutex
	files []string
}

func NewReplay(files []string, tr Transcriber, opt stt.Options, logger *slog.Logger) *Replay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replay{
		Transcriber: tr,
		Options:     opt,
		Logger:      logger,
		files:       append([]string(nil), files...),
	}
}

func (r *Replay) Listen(ctx context.Context, _ time.Duration) (string, error) {
	r.mu.Lock()
	if len(r.files) == 0 {
		r.mu.Unlock()
		return "", voice.ErrListenerClosed
	}
	path := r.files[0]
	r.files = r.files[1:]
	r.mu.Unlock()

	pcm, err := audioconv.ConvertFile(ctx, path, audioconv.Options{})
	if err != nil {
		return "", err
	}
	r.Logger.Debug("Replaying", "file", path, "samples", len(pcm))

	return transcribe(ctx, r.Transcriber, pcm, r.Options, r.Logger)
}

// Script reads one utterance per line. A line that does not arrive
// within the timeout is reported as silence; end of input closes it.
type Script struct {
	lines chan string
}

// NewScript starts reading r in the background.
func NewScript(r io.Reader) *Script {
	s := &Script{lines: make(chan string)}
	go func() {
		defer close(s.lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			s.lines <- sc.Text()
		}
	}()
	return s
}

func (s *Script) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case line, ok := <-s.lines:
		if !ok {
			return "", voice.ErrListenerClosed
		}
		return line, nil
	case <-expired:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
