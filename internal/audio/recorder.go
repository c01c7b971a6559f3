package audio

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

// SampleRate is the capture rate expected by the transcriber.
const SampleRate = 16000

const (
	frameSize    = 320 // 20ms
	frameLen     = 20 * time.Millisecond
	minThreshold = 0.015
	ambientGain  = 1.5
	calibration  = 400 * time.Millisecond
	trailSilence = 600 * time.Millisecond
)

// ErrNoSpeech is returned when nothing above the noise floor was heard
// before the timeout.
var ErrNoSpeech = errors.New("no speech detected")

// Recorder captures mono 16 kHz audio from the default input device.
type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// RecordAuto calibrates against ambient noise, waits up to timeout for
// speech to start and then records until a short trailing silence or
// phraseLimit.
func (r *Recorder) RecordAuto(ctx context.Context, timeout, phraseLimit time.Duration) ([]float32, error) {
	buf := make([]float32, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	vad := newDetector(timeout, phraseLimit)
	for !vad.done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}
		vad.feed(buf)
	}

	return vad.result()
}

// detector is a frame-by-frame energy voice activity detector.
type detector struct {
	calibFrames   int
	waitFrames    int
	phraseFrames  int
	silenceFrames int

	frames    int
	ambient   float64
	threshold float64

	speaking bool
	spoken   int
	silent   int
	finished bool

	out []float32
}

func newDetector(timeout, phraseLimit time.Duration) *detector {
	return &detector{
		calibFrames:   int(calibration / frameLen),
		waitFrames:    int(timeout / frameLen),
		phraseFrames:  int(phraseLimit / frameLen),
		silenceFrames: int(trailSilence / frameLen),
		threshold:     minThreshold,
		out:           make([]float32, 0, SampleRate*3),
	}
}

func (d *detector) feed(frame []float32) {
	d.frames++
	rms := frameRMS(frame)

	if d.frames <= d.calibFrames {
		d.ambient += rms / float64(d.calibFrames)
		if d.frames == d.calibFrames {
			d.threshold = math.Max(minThreshold, d.ambient*ambientGain)
		}
		return
	}

	if !d.speaking {
		if rms > d.threshold {
			d.speaking = true
		} else {
			if d.waitFrames > 0 && d.frames-d.calibFrames >= d.waitFrames {
				d.finished = true
			}
			return
		}
	}

	d.out = append(d.out, frame...)
	d.spoken++

	if rms > d.threshold {
		d.silent = 0
	} else {
		d.silent++
	}

	if d.silent >= d.silenceFrames || (d.phraseFrames > 0 && d.spoken >= d.phraseFrames) {
		d.finished = true
	}
}

func (d *detector) done() bool { return d.finished }

func (d *detector) result() ([]float32, error) {
	if !d.speaking {
		return nil, ErrNoSpeech
	}
	return d.out, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
