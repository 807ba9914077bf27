package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/aceai/aceai/internal/adapters/mq/queue"
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

func submission(id string) model.Submission {
	return model.Submission{
		ID:        id,
		SessionID: "s1",
		Turn:      0,
		Question:  "Q1",
		Response:  "answer",
		CreatedAt: time.Now(),
	}
}

func TestQueueEnqueueDequeue(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		defer q.Close()

		Convey("When enqueuing a submission", func() {
			So(q.Enqueue(ctx, submission("s1:0")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 1)

			Convey("Then it is received on the dequeue channel", func() {
				select {
				case got := <-q.Dequeue(ctx):
					So(got.ID, ShouldEqual, "s1:0")
				case <-time.After(time.Second):
					t.Fatal("timed out waiting for dequeue")
				}
			})
		})
	})
}

func TestQueueBackpressure(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with capacity two", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		defer q.Close()

		Convey("When enqueuing past capacity", func() {
			So(q.Enqueue(ctx, submission("s1:0")), ShouldBeTrue)
			So(q.Enqueue(ctx, submission("s1:1")), ShouldBeTrue)
			overflow := q.Enqueue(ctx, submission("s1:2"))

			Convey("Then the overflow submission is dropped", func() {
				So(overflow, ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})
	})
}

func TestQueueClose(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with one pending submission", t, func() {
		q := queue.NewInMemoryQueue()
		So(q.Enqueue(ctx, submission("s1:0")), ShouldBeTrue)

		Convey("When closing it", func() {
			So(q.Close(), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)

			Convey("Then enqueue is rejected", func() {
				So(q.Enqueue(ctx, submission("s1:1")), ShouldBeFalse)
			})

			Convey("Then pending submissions drain before the channel closes", func() {
				ch := q.Dequeue(ctx)
				got, ok := <-ch
				So(ok, ShouldBeTrue)
				So(got.ID, ShouldEqual, "s1:0")

				_, ok = <-ch
				So(ok, ShouldBeFalse)
			})

			Convey("Then a second close is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
