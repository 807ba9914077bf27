package stubsvc_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aceai/aceai/internal/domain/extract"
	"github.com/aceai/aceai/internal/stubsvc"
	"github.com/aceai/aceai/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newStub() *httptest.Server {
	mux := http.NewServeMux()
	stubsvc.NewServer().Register(mux)
	return httptest.NewServer(mux)
}

func uploadBody(domain string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "resume.pdf")
	_, _ = part.Write([]byte("%PDF-1.4 fake"))
	_ = mw.WriteField("job_description", "backend engineer")
	_ = mw.WriteField("knowledge_domain", domain)
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestStubUpload(t *testing.T) {
	ctx := context.Background()

	Convey("Given the stub question service", t, func() {
		srv := newStub()
		defer srv.Close()

		Convey("When uploading a resume for the go domain", func() {
			body, contentType := uploadBody("go")
			resp, err := http.Post(srv.URL+"/upload", contentType, body)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var envelope struct {
				APIResponse string `json:"apiResponse"`
			}
			So(json.NewDecoder(resp.Body).Decode(&envelope), ShouldBeNil)

			Convey("Then the payload is fenced and extractable", func() {
				So(envelope.APIResponse, ShouldStartWith, "```json\n")
				So(envelope.APIResponse, ShouldEndWith, "\n```")

				questions := extract.FromAPIResponse(ctx, envelope.APIResponse)
				So(len(questions), ShouldBeGreaterThan, 0)
				So(questions[0], ShouldContainSubstring, "goroutines")
			})
		})

		Convey("When the domain is unknown", func() {
			body, contentType := uploadBody("underwater basket weaving")
			resp, err := http.Post(srv.URL+"/upload", contentType, body)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var envelope struct {
				APIResponse string `json:"apiResponse"`
			}
			So(json.NewDecoder(resp.Body).Decode(&envelope), ShouldBeNil)
			So(len(extract.FromAPIResponse(ctx, envelope.APIResponse)), ShouldBeGreaterThan, 0)
		})

		Convey("When the file is missing", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			_ = mw.WriteField("job_description", "x")
			_ = mw.Close()

			resp, err := http.Post(srv.URL+"/upload", mw.FormDataContentType(), &buf)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStubAnalyze(t *testing.T) {
	Convey("Given the stub feedback service", t, func() {
		srv := newStub()
		defer srv.Close()

		analyze := func(question, response string) (map[string]any, int) {
			payload, _ := json.Marshal(map[string]string{
				"question": question, "response": response,
			})
			resp, err := http.Post(srv.URL+"/analyze", "application/json", bytes.NewReader(payload))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var out map[string]any
			_ = json.NewDecoder(resp.Body).Decode(&out)
			return out, resp.StatusCode
		}

		Convey("When analyzing a clean answer", func() {
			out, status := analyze(
				"How do goroutines differ from operating system threads?",
				"Goroutines are scheduled by the runtime onto a small pool of operating system threads, which keeps stacks tiny and lets services run millions concurrently.",
			)

			So(status, ShouldEqual, http.StatusOK)
			So(out["filler_percentage"], ShouldEqual, 0)
			So(out["relevance"], ShouldEqual, "high")
			So(out["sentiment"], ShouldEqual, "positive")
		})

		Convey("When analyzing a filler-heavy answer", func() {
			out, status := analyze(
				"Tell me about yourself.",
				"Um like basically um I like literally um basically did stuff",
			)

			So(status, ShouldEqual, http.StatusOK)
			So(out["filler_percentage"].(float64), ShouldBeGreaterThan, 20)
			So(out["sentiment"], ShouldEqual, "neutral")
		})

		Convey("When the response is empty", func() {
			_, status := analyze("Q", "   ")
			So(status, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is not JSON", func() {
			resp, err := http.Post(srv.URL+"/analyze", "application/json", strings.NewReader("<xml>"))
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}
