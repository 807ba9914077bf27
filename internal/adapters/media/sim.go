package media

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Simulated capture configuration constants.
const (
	defaultSimMinLatency = 80 * time.Millisecond
	defaultSimMaxLatency = 150 * time.Millisecond
	defaultSimSeed       = 42
)

// simTrack is one simulated capture track.
type simTrack struct {
	kind    string
	stopped sync.Once
}

func (t *simTrack) Kind() string { return t.kind }

func (t *simTrack) Stop() {
	t.stopped.Do(func() {})
}

// simStream is a simulated combined audio+video stream.
type simStream struct {
	tracks []Track
}

func (s *simStream) Tracks() []Track { return s.tracks }

// SimDevice implements Device with an always-available simulated camera and
// microphone. Useful for local development and the interview simulator.
type SimDevice struct {
	failAcquire bool
}

// SimDeviceOption applies a configuration option to the simulated device.
type SimDeviceOption func(*SimDevice)

// WithAcquireFailure makes every acquisition fail, modeling a denied
// camera/microphone permission.
func WithAcquireFailure() SimDeviceOption {
	return func(d *SimDevice) {
		d.failAcquire = true
	}
}

// NewSimDevice creates a simulated capture device.
func NewSimDevice(opts ...SimDeviceOption) *SimDevice {
	d := &SimDevice{}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *SimDevice) Acquire(ctx context.Context) (Stream, error) {
	if d.failAcquire {
		return nil, fmt.Errorf("capture permission denied")
	}
	return &simStream{
		tracks: []Track{
			&simTrack{kind: "audio"},
			&simTrack{kind: "video"},
		},
	}, nil
}

// simRecording is a simulated recording artifact.
type simRecording struct {
	turn    int
	started time.Time
	stopped sync.Once
}

func (r *simRecording) Stop(ctx context.Context) error {
	r.stopped.Do(func() {})
	return nil
}

// SimRecorder implements Recorder by producing inert artifacts.
type SimRecorder struct{}

// NewSimRecorder creates a simulated recorder.
func NewSimRecorder() *SimRecorder {
	return &SimRecorder{}
}

func (r *SimRecorder) Start(ctx context.Context, stream Stream, turn int, question string) (Recording, error) {
	return &simRecording{turn: turn, started: time.Now()}, nil
}

// SimRecognizer implements Recognizer with a canned transcript delivered
// after simulated recognition latency.
type SimRecognizer struct {
	mu         sync.Mutex
	minLatency time.Duration
	maxLatency time.Duration
	rng        *rand.Rand
	transcript func(turn int, question string) string
}

// SimRecognizerOption applies a configuration option to the simulated
// recognizer.
type SimRecognizerOption func(*SimRecognizer)

// WithSimLatencyRange sets the simulated recognition latency range.
func WithSimLatencyRange(minLatency, maxLatency time.Duration) SimRecognizerOption {
	return func(r *SimRecognizer) {
		if minLatency > 0 && maxLatency > minLatency {
			r.minLatency = minLatency
			r.maxLatency = maxLatency
		}
	}
}

// WithTranscriptFunc sets the canned transcript generator.
func WithTranscriptFunc(f func(turn int, question string) string) SimRecognizerOption {
	return func(r *SimRecognizer) {
		if f != nil {
			r.transcript = f
		}
	}
}

// NewSimRecognizer creates a simulated recognizer.
func NewSimRecognizer(opts ...SimRecognizerOption) *SimRecognizer {
	r := &SimRecognizer{
		minLatency: defaultSimMinLatency,
		maxLatency: defaultSimMaxLatency,
		rng:        rand.New(rand.NewSource(defaultSimSeed)),
		transcript: func(turn int, question string) string {
			return fmt.Sprintf("simulated answer to question %d", turn+1)
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

type simRecognitionSession struct {
	cancel context.CancelFunc
}

func (s *simRecognitionSession) Stop(ctx context.Context) {
	s.cancel()
}

func (r *SimRecognizer) Start(ctx context.Context, turn int, question string, deliver func(Transcript) bool) (RecognitionSession, error) {
	sessCtx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	latency := r.minLatency + time.Duration(r.rng.Int63n(int64(r.maxLatency-r.minLatency)))
	text := r.transcript(turn, question)
	r.mu.Unlock()

	go func() {
		timer := time.NewTimer(latency)
		defer timer.Stop()

		select {
		case <-timer.C:
			deliver(Transcript{Turn: turn, Question: question, Text: text})
		case <-sessCtx.Done():
		}
	}()

	return &simRecognitionSession{cancel: cancel}, nil
}
