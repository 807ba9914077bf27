package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aceai/aceai/internal/adapters/client"
	"github.com/aceai/aceai/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestQuestionClientGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a question service accepting uploads", t, func(cv C) {
		var gotJobDesc, gotDomain, gotFileName string
		var gotFile []byte

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cv.So(r.Method, ShouldEqual, http.MethodPost)
			cv.So(r.URL.Path, ShouldEqual, "/upload")

			cv.So(r.ParseMultipartForm(1<<20), ShouldBeNil)
			gotJobDesc = r.FormValue("job_description")
			gotDomain = r.FormValue("knowledge_domain")

			f, hdr, err := r.FormFile("file")
			cv.So(err, ShouldBeNil)
			defer f.Close()
			gotFileName = hdr.Filename
			gotFile, err = io.ReadAll(f)
			cv.So(err, ShouldBeNil)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"apiResponse":"payload"}`))
		}))
		defer srv.Close()

		c := client.NewQuestionClient(srv.URL)

		Convey("When generating questions from a resume", func() {
			raw, err := c.Generate(ctx, client.Resume{
				FileName:        "resume.pdf",
				Content:         []byte("%PDF-1.4 fake"),
				JobDescription:  "backend engineer",
				KnowledgeDomain: "distributed systems",
			})

			Convey("Then the multipart form carries every field", func() {
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, `{"apiResponse":"payload"}`)
				So(gotFileName, ShouldEqual, "resume.pdf")
				So(string(gotFile), ShouldEqual, "%PDF-1.4 fake")
				So(gotJobDesc, ShouldEqual, "backend engineer")
				So(gotDomain, ShouldEqual, "distributed systems")
			})
		})
	})

	Convey("Given a question service that fails", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := client.NewQuestionClient(srv.URL)

		Convey("Then the status error is surfaced", func() {
			_, err := c.Generate(ctx, client.Resume{FileName: "r.pdf"})
			So(errors.Is(err, client.ErrServiceStatus), ShouldBeTrue)
		})
	})
}

func TestFeedbackClientScore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a feedback service", t, func(cv C) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cv.So(r.URL.Path, ShouldEqual, "/analyze")

			var req map[string]string
			cv.So(json.NewDecoder(r.Body).Decode(&req), ShouldBeNil)
			cv.So(req["question"], ShouldEqual, "Q1")
			cv.So(req["response"], ShouldEqual, "my answer")

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"feedback": "well structured",
				"filler_percentage": 12.5,
				"relevance": "high",
				"repeated_words_count": 3,
				"sentiment": "positive"
			}`))
		}))
		defer srv.Close()

		c := client.NewFeedbackClient(srv.URL)

		Convey("When scoring an answer", func() {
			fb, err := c.Score(ctx, "Q1", "my answer")

			Convey("Then the structured feedback is returned", func() {
				So(err, ShouldBeNil)
				So(fb.Comment, ShouldEqual, "well structured")
				So(fb.FillerPercentage, ShouldEqual, 12.5)
				So(fb.Relevance, ShouldEqual, "high")
				So(fb.RepeatedWordsCount, ShouldEqual, 3)
				So(fb.Sentiment, ShouldEqual, "positive")
			})
		})
	})

	Convey("Given a feedback service returning out-of-range values", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"feedback": "x", "filler_percentage": 140,
				"relevance": "high", "repeated_words_count": 0, "sentiment": "neutral"
			}`))
		}))
		defer srv.Close()

		c := client.NewFeedbackClient(srv.URL)

		Convey("Then validation rejects the payload", func() {
			_, err := c.Score(ctx, "Q1", "a")
			So(errors.Is(err, client.ErrInvalidFeedback), ShouldBeTrue)
		})
	})

	Convey("Given a feedback service that fails", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}))
		defer srv.Close()

		c := client.NewFeedbackClient(srv.URL)

		Convey("Then the status error is surfaced", func() {
			_, err := c.Score(ctx, "Q1", "a")
			So(errors.Is(err, client.ErrServiceStatus), ShouldBeTrue)
		})
	})
}
