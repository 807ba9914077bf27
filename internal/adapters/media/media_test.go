package media_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aceai/aceai/internal/adapters/media"
	"github.com/aceai/aceai/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// captureSink collects transcripts handed to the sink.
type captureSink struct {
	mu  sync.Mutex
	got []media.Transcript
}

func (s *captureSink) deliver(tr media.Transcript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, tr)
}

func (s *captureSink) transcripts() []media.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]media.Transcript(nil), s.got...)
}

func (s *captureSink) waitFor(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(s.transcripts()) >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return len(s.transcripts()) >= n
}

func newController(sink *captureSink, recog media.Recognizer) *media.Controller {
	opts := []media.Option{
		media.WithDevice(media.NewSimDevice()),
		media.WithRecorder(media.NewSimRecorder()),
		media.WithSink(sink.deliver),
	}
	if recog != nil {
		opts = append(opts, media.WithRecognizer(recog))
	}
	return media.NewController(opts...)
}

func TestControllerAcquire(t *testing.T) {
	ctx := context.Background()

	Convey("Given a controller with a working device", t, func() {
		c := newController(&captureSink{}, nil)

		Convey("When acquiring", func() {
			So(c.Acquire(ctx), ShouldBeNil)
			So(c.Acquired(), ShouldBeTrue)

			Convey("Then a second acquire reuses the stream", func() {
				So(c.Acquire(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a device that denies capture", t, func() {
		c := media.NewController(
			media.WithDevice(media.NewSimDevice(media.WithAcquireFailure())),
		)

		Convey("Then acquisition fails and no stream is held", func() {
			So(c.Acquire(ctx), ShouldNotBeNil)
			So(c.Acquired(), ShouldBeFalse)
		})
	})

	Convey("Given a controller with no device", t, func() {
		c := media.NewController()

		Convey("Then acquire reports the missing capability", func() {
			So(c.Acquire(ctx), ShouldEqual, media.ErrNoDevice)
		})
	})
}

func TestControllerTurnLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given an acquired controller", t, func() {
		sink := &captureSink{}
		push := media.NewPushRecognizer()
		c := newController(sink, push)
		So(c.Acquire(ctx), ShouldBeNil)

		Convey("When starting a turn", func() {
			So(c.StartTurn(ctx, 0, "Q1"), ShouldBeNil)

			turn, question, ok := c.ActiveTurn()
			So(ok, ShouldBeTrue)
			So(turn, ShouldEqual, 0)
			So(question, ShouldEqual, "Q1")

			Convey("Then a second start is rejected", func() {
				So(c.StartTurn(ctx, 1, "Q2"), ShouldEqual, media.ErrTurnActive)
				c.StopTurn(ctx)
			})

			Convey("And the first pushed transcript reaches the sink", func() {
				So(push.Push(ctx, "my answer"), ShouldBeTrue)
				So(sink.waitFor(1, time.Second), ShouldBeTrue)

				got := sink.transcripts()
				So(got[0].Turn, ShouldEqual, 0)
				So(got[0].Question, ShouldEqual, "Q1")
				So(got[0].Text, ShouldEqual, "my answer")

				Convey("And a later final for the same turn is dropped", func() {
					So(push.Push(ctx, "revised answer"), ShouldBeFalse)
					c.StopTurn(ctx)
					So(sink.transcripts(), ShouldHaveLength, 1)
				})
			})

			Convey("And stopping twice is harmless", func() {
				c.StopTurn(ctx)
				c.StopTurn(ctx)
				_, _, ok := c.ActiveTurn()
				So(ok, ShouldBeFalse)
			})

			Convey("And a push after stop is rejected", func() {
				c.StopTurn(ctx)
				So(push.Push(ctx, "too late"), ShouldBeFalse)
			})
		})

		Convey("When starting a turn before acquiring", func() {
			fresh := newController(&captureSink{}, nil)
			So(fresh.StartTurn(ctx, 0, "Q1"), ShouldEqual, media.ErrNotAcquired)
		})
	})
}

func TestControllerRelease(t *testing.T) {
	ctx := context.Background()

	Convey("Given a controller mid-turn", t, func() {
		sink := &captureSink{}
		c := newController(sink, nil)
		So(c.Acquire(ctx), ShouldBeNil)
		So(c.StartTurn(ctx, 0, "Q1"), ShouldBeNil)

		Convey("When releasing", func() {
			c.Release(ctx)

			Convey("Then the turn is stopped and the stream is freed", func() {
				_, _, ok := c.ActiveTurn()
				So(ok, ShouldBeFalse)
				So(c.Acquired(), ShouldBeFalse)
			})

			Convey("Then a second release is a no-op", func() {
				So(func() { c.Release(ctx) }, ShouldNotPanic)
			})
		})
	})
}

func TestSimRecognizer(t *testing.T) {
	ctx := context.Background()

	Convey("Given a controller backed by the simulated recognizer", t, func() {
		sink := &captureSink{}
		recog := media.NewSimRecognizer(
			media.WithSimLatencyRange(time.Millisecond, 5*time.Millisecond),
			media.WithTranscriptFunc(func(turn int, question string) string {
				return "canned"
			}),
		)
		c := newController(sink, recog)
		So(c.Acquire(ctx), ShouldBeNil)

		Convey("When a turn runs to completion", func() {
			So(c.StartTurn(ctx, 0, "Q1"), ShouldBeNil)

			Convey("Then the canned transcript arrives tagged with the turn", func() {
				So(sink.waitFor(1, time.Second), ShouldBeTrue)
				c.StopTurn(ctx)

				got := sink.transcripts()
				So(got[0].Text, ShouldEqual, "canned")
				So(got[0].Turn, ShouldEqual, 0)
			})
		})

		Convey("When a turn stops before the recognizer fires", func() {
			slow := media.NewSimRecognizer(
				media.WithSimLatencyRange(200*time.Millisecond, 400*time.Millisecond),
			)
			quiet := &captureSink{}
			c2 := newController(quiet, slow)
			So(c2.Acquire(ctx), ShouldBeNil)
			So(c2.StartTurn(ctx, 0, "Q1"), ShouldBeNil)
			c2.StopTurn(ctx)

			Convey("Then no transcript is delivered", func() {
				So(quiet.waitFor(1, 100*time.Millisecond), ShouldBeFalse)
			})
		})
	})
}
