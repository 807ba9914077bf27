package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aceai/aceai/internal/adapters/mq/queue"
	"github.com/aceai/aceai/internal/adapters/mq/worker"
	"github.com/aceai/aceai/internal/domain/model"
	"github.com/aceai/aceai/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubScorer struct {
	fail bool
}

func (s *stubScorer) Score(ctx context.Context, question, response string) (model.Feedback, error) {
	if s.fail {
		return model.Feedback{}, errors.New("feedback service unavailable")
	}
	return model.Feedback{
		Comment:            "good answer",
		FillerPercentage:   5,
		Relevance:          "high",
		RepeatedWordsCount: 1,
		Sentiment:          "positive",
	}, nil
}

type memCollector struct {
	mu  sync.Mutex
	got []model.Feedback
}

func (c *memCollector) Collect(ctx context.Context, sessionID string, fb model.Feedback) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, fb)
	return nil
}

func (c *memCollector) collected() []model.Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Feedback(nil), c.got...)
}

func (c *memCollector) waitFor(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(c.collected()) >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return len(c.collected()) >= n
}

func TestWorkerProcessing(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running worker", t, func() {
		q := queue.NewInMemoryQueue()
		collector := &memCollector{}
		w := worker.NewInMemoryWorker(q, &stubScorer{}, collector, worker.WithName("test-worker"))

		runCtx, cancel := context.WithCancel(ctx)
		go w.Run(runCtx)
		defer cancel()
		defer q.Close()

		Convey("When a submission is enqueued", func() {
			So(q.Enqueue(ctx, model.Submission{
				ID: "s1:0", SessionID: "s1", Turn: 0,
				Question: "Q1", Response: "my answer", CreatedAt: time.Now(),
			}), ShouldBeTrue)

			Convey("Then feedback is collected with the turn re-attached", func() {
				So(collector.waitFor(1, time.Second), ShouldBeTrue)

				got := collector.collected()[0]
				So(got.Turn, ShouldEqual, 0)
				So(got.Question, ShouldEqual, "Q1")
				So(got.Response, ShouldEqual, "my answer")
				So(got.Comment, ShouldEqual, "good answer")
			})
		})
	})
}

func TestWorkerScoringFailure(t *testing.T) {
	ctx := context.Background()

	Convey("Given a worker whose scorer always fails", t, func() {
		q := queue.NewInMemoryQueue()
		collector := &memCollector{}
		w := worker.NewInMemoryWorker(q, &stubScorer{fail: true}, collector)

		runCtx, cancel := context.WithCancel(ctx)
		go w.Run(runCtx)
		defer cancel()
		defer q.Close()

		Convey("When a submission is enqueued", func() {
			So(q.Enqueue(ctx, model.Submission{ID: "s1:0", SessionID: "s1"}), ShouldBeTrue)

			Convey("Then no feedback is collected and nothing blocks", func() {
				So(collector.waitFor(1, 150*time.Millisecond), ShouldBeFalse)
			})
		})
	})
}

func TestPoolShutdown(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started pool", t, func() {
		q := queue.NewInMemoryQueue()
		collector := &memCollector{}
		pool := worker.NewPool(2, q, &stubScorer{}, collector)
		pool.Start(ctx)

		Convey("When submissions are pending and the pool shuts down", func() {
			for i := 0; i < 4; i++ {
				So(q.Enqueue(ctx, model.Submission{
					ID: "s1:" + string(rune('0'+i)), SessionID: "s1", Turn: i,
					Question: "Q", Response: "a",
				}), ShouldBeTrue)
			}

			So(collector.waitFor(4, 2*time.Second), ShouldBeTrue)
			So(pool.Shutdown(ctx), ShouldBeNil)

			Convey("Then the queue is closed", func() {
				So(q.IsClosed(), ShouldBeTrue)
			})
		})
	})
}
