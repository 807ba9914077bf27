// Package client holds the outbound HTTP clients for the question
// generation and feedback services.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/aceai/aceai/pkg/logger"
)

// Default client configuration constants.
const (
	defaultTimeout     = 30 * time.Second
	maxResponseBytes   = 4 << 20 // question payloads are small, cap reads
	uploadPath         = "/upload"
	fileField          = "file"
	jobDescField       = "job_description"
	knowledgeDomField  = "knowledge_domain"
)

// Resume is the material uploaded to the question service.
type Resume struct {
	FileName        string
	Content         []byte
	JobDescription  string
	KnowledgeDomain string
}

// QuestionClient calls the question generation service.
type QuestionClient struct {
	base   string
	client *http.Client
	logger logger.Logger
}

// QuestionOption applies a configuration option to the question client.
type QuestionOption func(*QuestionClient)

// WithQuestionHTTPClient sets a custom HTTP client.
func WithQuestionHTTPClient(hc *http.Client) QuestionOption {
	return func(c *QuestionClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewQuestionClient creates a client for the question service at base.
func NewQuestionClient(base string, opts ...QuestionOption) *QuestionClient {
	c := &QuestionClient{
		base:   base,
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger.Get().Named("question-client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Generate uploads a résumé with its job context and returns the raw
// response body for question extraction.
func (c *QuestionClient) Generate(ctx context.Context, r Resume) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile(fileField, r.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(r.Content); err != nil {
		return nil, fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := mw.WriteField(jobDescField, r.JobDescription); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if err := mw.WriteField(knowledgeDomField, r.KnowledgeDomain); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+uploadPath, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("question service request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "question service responded",
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: question service status %d", ErrServiceStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read question service response: %w", err)
	}
	return raw, nil
}
