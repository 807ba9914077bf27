package session_test

import (
	"context"
	"testing"

	"github.com/aceai/aceai/internal/domain/model"
	"github.com/aceai/aceai/internal/domain/session"
	"github.com/aceai/aceai/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeMedia struct {
	releases int
}

func (f *fakeMedia) Release(ctx context.Context) {
	f.releases++
}

func TestSessionAdvance(t *testing.T) {
	ctx := context.Background()

	Convey("Given a session with three questions", t, func() {
		s := session.New("s1", []string{"Q1", "Q2", "Q3"})

		Convey("Then it starts answering the first question", func() {
			q, ok := s.CurrentQuestion()
			So(ok, ShouldBeTrue)
			So(q, ShouldEqual, "Q1")
			So(s.Cursor(), ShouldEqual, 0)
			So(s.Complete(), ShouldBeFalse)
		})

		Convey("When advancing through every question", func() {
			for i := 0; i < 3; i++ {
				tr, err := s.Advance(ctx)
				So(err, ShouldBeNil)
				So(tr.Completed, ShouldEqual, i == 2)
			}

			Convey("Then the session is complete with the cursor at the count", func() {
				So(s.Complete(), ShouldBeTrue)
				So(s.Cursor(), ShouldEqual, 3)
				_, ok := s.CurrentQuestion()
				So(ok, ShouldBeFalse)
			})

			Convey("Then a further advance is rejected", func() {
				_, err := s.Advance(ctx)
				So(err, ShouldEqual, session.ErrSessionComplete)
			})
		})

		Convey("When a turn has a recorded response", func() {
			So(s.RecordResponse(0, "my answer"), ShouldBeNil)
			tr, err := s.Advance(ctx)

			Convey("Then advancing submits it for scoring", func() {
				So(err, ShouldBeNil)
				So(tr.Submit, ShouldNotBeNil)
				So(tr.Submit.Turn, ShouldEqual, 0)
				So(tr.Submit.Question, ShouldEqual, "Q1")
				So(tr.Submit.Response, ShouldEqual, "my answer")
				So(tr.Completed, ShouldBeFalse)
			})
		})

		Convey("When a turn ends without a transcript", func() {
			tr, err := s.Advance(ctx)

			Convey("Then nothing is submitted", func() {
				So(err, ShouldBeNil)
				So(tr.Submit, ShouldBeNil)
			})
		})
	})
}

func TestSessionResponses(t *testing.T) {
	Convey("Given an active session", t, func() {
		s := session.New("s1", []string{"Q1", "Q2"})

		Convey("When two transcripts arrive for the same turn", func() {
			So(s.RecordResponse(0, "first"), ShouldBeNil)
			err := s.RecordResponse(0, "second")

			Convey("Then the first one wins", func() {
				So(err, ShouldEqual, session.ErrDuplicateResponse)
				r, ok := s.ResponseForTurn(0)
				So(ok, ShouldBeTrue)
				So(r.Response, ShouldEqual, "first")
			})
		})

		Convey("When a transcript targets a turn that is not active", func() {
			So(s.RecordResponse(1, "early"), ShouldEqual, session.ErrTurnMismatch)
		})
	})
}

func TestSessionMediaRelease(t *testing.T) {
	ctx := context.Background()

	Convey("Given a session holding a media stream", t, func() {
		media := &fakeMedia{}
		s := session.New("s1", []string{"Q1"}, session.WithMedia(media))

		Convey("When the last advance completes the interview", func() {
			_, err := s.Advance(ctx)
			So(err, ShouldBeNil)

			Convey("Then the stream is released exactly once", func() {
				So(media.releases, ShouldEqual, 1)

				s.Exit(ctx)
				So(media.releases, ShouldEqual, 1)
			})
		})

		Convey("When the user abandons mid-interview", func() {
			s.Exit(ctx)

			Convey("Then the stream is released and the session is terminal", func() {
				So(media.releases, ShouldEqual, 1)
				So(s.Complete(), ShouldBeTrue)
				_, err := s.Advance(ctx)
				So(err, ShouldEqual, session.ErrSessionComplete)
			})
		})
	})
}

func TestSessionEmptyQuestionList(t *testing.T) {
	ctx := context.Background()

	Convey("Given a session with no questions", t, func() {
		s := session.New("s1", nil)

		Convey("Then it is not complete and has no current question", func() {
			So(s.Complete(), ShouldBeFalse)
			_, ok := s.CurrentQuestion()
			So(ok, ShouldBeFalse)
			So(s.State().CurrentQuestion, ShouldBeEmpty)
		})

		Convey("When advancing", func() {
			tr, err := s.Advance(ctx)

			Convey("Then it completes immediately with nothing to submit", func() {
				So(err, ShouldBeNil)
				So(tr.Completed, ShouldBeTrue)
				So(tr.Submit, ShouldBeNil)
			})
		})
	})
}

func TestSessionReport(t *testing.T) {
	Convey("Given a session with scored turns", t, func() {
		s := session.New("s1", []string{"Q1", "Q2", "Q3"})

		s.AddFeedback(model.Feedback{
			Turn: 2, Question: "Q3", Response: "r3",
			Comment: "solid", FillerPercentage: 7.5,
			Relevance: "high", RepeatedWordsCount: 1, Sentiment: "positive",
		})
		s.AddFeedback(model.Feedback{
			Turn: 0, Question: "Q1", Response: "r1",
			Comment: "rambling", FillerPercentage: 20,
			Relevance: "medium", RepeatedWordsCount: 4, Sentiment: "neutral",
		})

		Convey("When building the report", func() {
			report := s.Report()

			Convey("Then entries come out in question order", func() {
				So(report, ShouldHaveLength, 2)
				So(report[0].Question, ShouldEqual, "Q1")
				So(report[1].Question, ShouldEqual, "Q3")
				So(float64(report[1].FillerPercentage), ShouldEqual, 7.5)
			})
		})

		Convey("When a second result arrives for an already-scored turn", func() {
			s.AddFeedback(model.Feedback{Turn: 0, Comment: "late"})

			Convey("Then it is ignored", func() {
				So(s.FeedbackCount(), ShouldEqual, 2)
				So(s.Report()[0].Feedback, ShouldEqual, "rambling")
			})
		})
	})
}

func TestSessionState(t *testing.T) {
	Convey("Given a recording session", t, func() {
		s := session.New("s1", []string{"Q1", "Q2"})
		s.SetRecording(true)

		Convey("Then the state view reflects it", func() {
			st := s.State()
			So(st.ID, ShouldEqual, "s1")
			So(st.Cursor, ShouldEqual, 0)
			So(st.QuestionCount, ShouldEqual, 2)
			So(st.CurrentQuestion, ShouldEqual, "Q1")
			So(st.Recording, ShouldBeTrue)
			So(st.Complete, ShouldBeFalse)
		})
	})
}
