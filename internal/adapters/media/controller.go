// Package media controls capture of interview answers.
//
// A Controller owns at most one acquired stream per session and runs one
// recording turn at a time. Each turn gets a single-slot transcript channel:
// the first finalized recognition result is authoritative, later finals for
// the same turn are dropped and counted. Results carry the turn and question
// they were captured for, so attribution survives out-of-order delivery.
package media

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aceai/aceai/pkg/logger"
	"github.com/aceai/aceai/pkg/metrics"
)

// Sink receives the authoritative transcript of a finished or in-progress
// turn. Called at most once per turn, from the controller's own goroutine.
type Sink func(Transcript)

// Controller coordinates the device, recorder and recognizer capabilities
// for one interview session.
type Controller struct {
	mu         sync.Mutex
	device     Device
	recorder   Recorder
	recognizer Recognizer
	sink       Sink
	handle     *Handle
	active     *turnCapture
}

type turnCapture struct {
	turn      int
	question  string
	slot      chan Transcript // single slot, first final wins
	delivered atomic.Bool
	done      chan struct{}
	forwarded chan struct{}
	stop      sync.Once
	recording Recording
	recog     RecognitionSession
}

// Option applies a configuration option to the controller.
type Option func(*Controller)

// WithDevice sets the capture device capability.
func WithDevice(d Device) Option {
	return func(c *Controller) {
		c.device = d
	}
}

// WithRecorder sets the recording capability.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithRecognizer sets the transcription capability. Optional: without one,
// turns record but produce no transcript.
func WithRecognizer(r Recognizer) Option {
	return func(c *Controller) {
		c.recognizer = r
	}
}

// WithSink sets the destination for authoritative transcripts.
func WithSink(s Sink) Option {
	return func(c *Controller) {
		c.sink = s
	}
}

// NewController creates a controller with configuration options.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		sink: func(Transcript) {},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Acquire obtains the combined audio+video stream. Failure is logged and
// returned, but callers treat it as non-fatal: the interview proceeds
// without a live stream. Acquiring twice reuses the existing stream.
func (c *Controller) Acquire(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		return nil
	}
	if c.device == nil {
		return ErrNoDevice
	}

	stream, err := c.device.Acquire(ctx)
	if err != nil {
		metrics.RecordMediaAcquireError()
		logger.Get().Warn(ctx, "failed to acquire capture stream", logger.Error(err))
		return err
	}

	c.handle = NewHandle(stream)
	return nil
}

// Acquired reports whether a stream is held.
func (c *Controller) Acquired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}

// StartTurn begins a recording artifact for one question and, when a
// recognizer is available, a transcription session scoped to the turn.
func (c *Controller) StartTurn(ctx context.Context, turn int, question string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return ErrNotAcquired
	}
	if c.active != nil {
		return ErrTurnActive
	}

	tc := &turnCapture{
		turn:      turn,
		question:  question,
		slot:      make(chan Transcript, 1),
		done:      make(chan struct{}),
		forwarded: make(chan struct{}),
	}

	if c.recorder != nil {
		rec, err := c.recorder.Start(ctx, c.handle.Stream(), turn, question)
		if err != nil {
			return err
		}
		tc.recording = rec
	}

	if c.recognizer != nil {
		recog, err := c.recognizer.Start(ctx, turn, question, c.Deliver)
		if err != nil {
			// Recording still proceeds, the turn just has no transcript.
			logger.Get().Warn(ctx, "transcription unavailable for turn",
				logger.Int("turn", turn), logger.Error(err))
		} else {
			tc.recog = recog
		}
	} else {
		logger.Get().Debug(ctx, "no recognizer configured, turn will have no transcript",
			logger.Int("turn", turn))
	}

	c.active = tc
	go c.forward(tc)

	metrics.RecordTurnStarted()
	return nil
}

// forward hands the turn's winning transcript to the sink. On stop it drains
// a result that raced the stop signal.
func (c *Controller) forward(tc *turnCapture) {
	defer close(tc.forwarded)
	select {
	case tr := <-tc.slot:
		c.sink(tr)
	case <-tc.done:
		select {
		case tr := <-tc.slot:
			c.sink(tr)
		default:
		}
	}
}

// Deliver pushes a finalized recognition result into the active turn's slot.
// Returns true if the result became the turn's authoritative transcript.
// Results for inactive turns and seconds for the same turn are dropped.
func (c *Controller) Deliver(tr Transcript) bool {
	c.mu.Lock()
	tc := c.active
	c.mu.Unlock()

	if tc == nil || tc.turn != tr.Turn {
		metrics.RecordTranscriptDropped()
		return false
	}

	if !tc.delivered.CompareAndSwap(false, true) {
		metrics.RecordTranscriptDropped()
		return false
	}

	// The slot has capacity one and delivered guarantees a single send.
	tc.slot <- tr
	metrics.RecordTranscriptCaptured()
	return true
}

// ActiveTurn returns the turn and question currently recording.
func (c *Controller) ActiveTurn() (turn int, question string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return 0, "", false
	}
	return c.active.turn, c.active.question, true
}

// StopTurn stops the active recording; stopping the recorder stops the
// recognizer session as a side effect. Idempotent: stopping with no active
// turn is a no-op.
func (c *Controller) StopTurn(ctx context.Context) {
	c.mu.Lock()
	tc := c.active
	c.active = nil
	c.mu.Unlock()

	if tc == nil {
		return
	}

	tc.stop.Do(func() {
		if tc.recording != nil {
			if err := tc.recording.Stop(ctx); err != nil {
				logger.Get().Warn(ctx, "failed to stop recording",
					logger.Int("turn", tc.turn), logger.Error(err))
			}
		}
		if tc.recog != nil {
			tc.recog.Stop(ctx)
		}
		close(tc.done)
		// Stop is synchronous with transcript delivery: once it returns,
		// a result pushed before the stop has reached the sink.
		<-tc.forwarded
		metrics.RecordTurnStopped()
	})
}

// Release stops any active turn and frees the stream. Idempotent; satisfies
// the session's Releaser contract.
func (c *Controller) Release(ctx context.Context) {
	c.StopTurn(ctx)

	c.mu.Lock()
	handle := c.handle
	c.handle = nil
	c.mu.Unlock()

	if handle != nil {
		handle.Release(ctx)
	}
}
