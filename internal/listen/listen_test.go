package listen

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jaudio "jarvis/internal/audio"
	"jarvis/internal/voice"
	"jarvis/pkg/stt"
)

type fakeRecorder struct {
	pcm []float32
	err error
}

func (f fakeRecorder) RecordAuto(context.Context, time.Duration, time.Duration) ([]float32, error) {
	return f.pcm, f.err
}

type fakeTranscriber struct {
	text string
	err  error
	got  []int
}

func (f *fakeTranscriber) TranscribePCM(_ context.Context, pcm []float32, _ stt.Options) (stt.Result, error) {
	f.got = append(f.got, len(pcm))
	return stt.Result{Text: f.text}, f.err
}

type fakeDucker struct{ calls []string }

func (f *fakeDucker) DuckOthers(context.Context, float64, time.Duration) error {
	f.calls = append(f.calls, "duck")
	return nil
}

func (f *fakeDucker) UnduckOthers(context.Context, time.Duration) error {
	f.calls = append(f.calls, "unduck")
	return nil
}

func TestMic_Transcribes(t *testing.T) {
	tr := &fakeTranscriber{text: "Hey Jarvis"}
	d := &fakeDucker{}
	m := &Mic{Recorder: fakeRecorder{pcm: make([]float32, 160)}, Transcriber: tr, Ducker: d}

	got, err := m.Listen(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Hey Jarvis", got)
	assert.Equal(t, []int{160}, tr.got)
	assert.Equal(t, []string{"duck", "unduck"}, d.calls)
}

func TestMic_SilenceIsEmpty(t *testing.T) {
	tr := &fakeTranscriber{}
	m := &Mic{Recorder: fakeRecorder{err: jaudio.ErrNoSpeech}, Transcriber: tr}

	got, err := m.Listen(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, tr.got, "nothing to transcribe")

	m = &Mic{Recorder: fakeRecorder{pcm: []float32{0}}, Transcriber: &fakeTranscriber{err: stt.ErrNoSpeech}}
	got, err = m.Listen(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMic_DeviceError(t *testing.T) {
	m := &Mic{Recorder: fakeRecorder{err: errors.New("device busy")}, Transcriber: &fakeTranscriber{}}
	_, err := m.Listen(context.Background(), time.Second)
	assert.EqualError(t, err, "device busy")
}

func TestReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmd.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, 16000, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 16000},
		Data:           make([]int, 800),
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	tr := &fakeTranscriber{text: "open youtube"}
	r := NewReplay([]string{path}, tr, stt.Options{}, nil)

	got, err := r.Listen(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "open youtube", got)
	assert.Equal(t, []int{800}, tr.got)

	_, err = r.Listen(context.Background(), 0)
	assert.ErrorIs(t, err, voice.ErrListenerClosed)
}

func TestScript_LinesThenClosed(t *testing.T) {
	s := NewScript(strings.NewReader("hey jarvis\nopen youtube\n"))
	ctx := context.Background()

	got, err := s.Listen(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hey jarvis", got)

	got, err = s.Listen(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "open youtube", got)

	_, err = s.Listen(ctx, time.Second)
	assert.ErrorIs(t, err, voice.ErrListenerClosed)
}

func TestScript_TimeoutIsSilence(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s := NewScript(pr)

	got, err := s.Listen(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScript_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s := NewScript(pr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Listen(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
