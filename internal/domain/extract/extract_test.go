package extract_test

import (
	"context"
	"testing"

	"github.com/aceai/aceai/internal/domain/extract"
	"github.com/aceai/aceai/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestFromAPIResponse(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fenced payload with one subsection", t, func() {
		payload := "```json\n{\"sections\":[{\"subsections\":[{\"questions\":[\"Q1\",\"Q2\"]}]}]}\n```"

		Convey("When extracting questions", func() {
			questions := extract.FromAPIResponse(ctx, payload)

			Convey("Then the questions come out in document order", func() {
				So(questions, ShouldResemble, []string{"Q1", "Q2"})
			})
		})
	})

	Convey("Given multiple sections and subsections", t, func() {
		payload := "```json\n" +
			`{"sections":[` +
			`{"subsections":[{"questions":["A1"]},{"questions":["A2","A3"]}]},` +
			`{"subsections":[{"questions":["B1"]}]}` +
			`]}` + "\n```"

		questions := extract.FromAPIResponse(ctx, payload)

		Convey("Then flattening preserves sections -> subsections -> questions order", func() {
			So(questions, ShouldResemble, []string{"A1", "A2", "A3", "B1"})
		})
	})

	Convey("Given an unfenced but valid payload", t, func() {
		questions := extract.FromAPIResponse(ctx, `{"sections":[{"subsections":[{"questions":["Q1"]}]}]}`)

		Convey("Then extraction still succeeds", func() {
			So(questions, ShouldResemble, []string{"Q1"})
		})
	})

	Convey("Given payloads with missing levels", t, func() {
		Convey("When sections is absent", func() {
			So(extract.FromAPIResponse(ctx, "```json\n{}\n```"), ShouldBeEmpty)
		})

		Convey("When subsections is absent", func() {
			So(extract.FromAPIResponse(ctx, "```json\n{\"sections\":[{}]}\n```"), ShouldBeEmpty)
		})

		Convey("When questions is absent", func() {
			So(extract.FromAPIResponse(ctx, "```json\n{\"sections\":[{\"subsections\":[{}]}]}\n```"), ShouldBeEmpty)
		})

		Convey("When one branch is empty and another is not", func() {
			payload := `{"sections":[{"subsections":[{}]},{"subsections":[{"questions":["Q9"]}]}]}`
			So(extract.FromAPIResponse(ctx, payload), ShouldResemble, []string{"Q9"})
		})
	})

	Convey("Given malformed JSON", t, func() {
		Convey("Then extraction returns an empty list without panicking", func() {
			So(extract.FromAPIResponse(ctx, "```json\n{not json\n```"), ShouldBeEmpty)
			So(extract.FromAPIResponse(ctx, ""), ShouldBeEmpty)
		})
	})
}

func TestQuestions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a raw service response body", t, func() {
		body := []byte(`{"apiResponse":"` + "```json\\n{\\\"sections\\\":[{\\\"subsections\\\":[{\\\"questions\\\":[\\\"Q1\\\"]}]}]}\\n```" + `"}`)

		Convey("When extracting", func() {
			So(extract.Questions(ctx, body), ShouldResemble, []string{"Q1"})
		})
	})

	Convey("Given a body that is not JSON", t, func() {
		So(extract.Questions(ctx, []byte("<html>")), ShouldBeEmpty)
	})

	Convey("Given a body with a missing apiResponse field", t, func() {
		So(extract.Questions(ctx, []byte(`{}`)), ShouldBeEmpty)
	})
}
