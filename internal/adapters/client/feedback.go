package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aceai/aceai/internal/domain/model"
	"github.com/aceai/aceai/pkg/logger"
	"github.com/go-playground/validator/v10"
)

const analyzePath = "/analyze"

// analyzeRequest is the feedback service request body.
type analyzeRequest struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// analyzeResponse is the feedback service response body. Bounds are enforced
// before the payload is trusted.
type analyzeResponse struct {
	Feedback           string  `json:"feedback" validate:"required"`
	FillerPercentage   float64 `json:"filler_percentage" validate:"gte=0,lte=100"`
	Relevance          string  `json:"relevance" validate:"required"`
	RepeatedWordsCount int     `json:"repeated_words_count" validate:"gte=0"`
	Sentiment          string  `json:"sentiment" validate:"required"`
}

// FeedbackClient calls the answer analysis service. It satisfies the scoring
// worker's Scorer contract.
type FeedbackClient struct {
	base     string
	client   *http.Client
	validate *validator.Validate
	logger   logger.Logger
}

// FeedbackOption applies a configuration option to the feedback client.
type FeedbackOption func(*FeedbackClient)

// WithFeedbackHTTPClient sets a custom HTTP client.
func WithFeedbackHTTPClient(hc *http.Client) FeedbackOption {
	return func(c *FeedbackClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewFeedbackClient creates a client for the feedback service at base.
func NewFeedbackClient(base string, opts ...FeedbackOption) *FeedbackClient {
	c := &FeedbackClient{
		base:     base,
		client:   &http.Client{Timeout: defaultTimeout},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Get().Named("feedback-client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Score submits one answer for analysis and returns the structured feedback.
func (c *FeedbackClient) Score(ctx context.Context, question, response string) (model.Feedback, error) {
	payload, err := json.Marshal(analyzeRequest{Question: question, Response: response})
	if err != nil {
		return model.Feedback{}, fmt.Errorf("failed to encode analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+analyzePath, bytes.NewReader(payload))
	if err != nil {
		return model.Feedback{}, fmt.Errorf("failed to build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return model.Feedback{}, fmt.Errorf("feedback service request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "feedback service responded",
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return model.Feedback{}, fmt.Errorf("%w: feedback service status %d", ErrServiceStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.Feedback{}, fmt.Errorf("failed to read feedback response: %w", err)
	}

	var out analyzeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.Feedback{}, fmt.Errorf("failed to decode feedback response: %w", err)
	}
	if err := c.validate.Struct(&out); err != nil {
		return model.Feedback{}, fmt.Errorf("%w: %w", ErrInvalidFeedback, err)
	}

	return model.Feedback{
		Comment:            out.Feedback,
		FillerPercentage:   out.FillerPercentage,
		Relevance:          out.Relevance,
		RepeatedWordsCount: out.RepeatedWordsCount,
		Sentiment:          out.Sentiment,
	}, nil
}
