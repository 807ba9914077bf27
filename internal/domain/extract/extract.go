// Package extract flattens question-service payloads into an ordered
// question list.
//
// The question service answers with a JSON object whose apiResponse field
// holds markdown-fenced JSON shaped as
//
//	{"sections": [{"subsections": [{"questions": ["...", ...]}]}]}
//
// Extraction is best-effort: malformed payloads yield an empty list and a
// logged warning, never an error to the caller. The interview simply starts
// with zero questions.
package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aceai/aceai/pkg/logger"
	"github.com/aceai/aceai/pkg/metrics"
)

// Fence markers stripped from apiResponse. The service wraps its JSON in a
// markdown code block; only this exact framing is removed.
const (
	fencePrefix = "```json\n"
	fenceSuffix = "\n```"
)

type envelope struct {
	APIResponse string `json:"apiResponse"`
}

type payload struct {
	Sections []section `json:"sections"`
}

type section struct {
	Subsections []subsection `json:"subsections"`
}

type subsection struct {
	Questions []string `json:"questions"`
}

// Questions parses a raw question-service response body and returns the
// flattened question list in document order.
func Questions(ctx context.Context, raw []byte) []string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Get().Warn(ctx, "question payload is not a JSON object", logger.Error(err))
		metrics.RecordExtractionFailure()
		return nil
	}
	return FromAPIResponse(ctx, env.APIResponse)
}

// FromAPIResponse strips the markdown fence from an apiResponse value and
// flattens every questions array under every subsection of every section.
// Missing sections, subsections or questions at any level are treated as
// "no questions at this branch", not as errors.
func FromAPIResponse(ctx context.Context, apiResponse string) []string {
	jsonText := stripFence(apiResponse)

	var p payload
	if err := json.Unmarshal([]byte(jsonText), &p); err != nil {
		logger.Get().Warn(ctx, "failed to parse question payload", logger.Error(err))
		metrics.RecordExtractionFailure()
		return nil
	}

	var questions []string
	for _, sec := range p.Sections {
		for _, sub := range sec.Subsections {
			questions = append(questions, sub.Questions...)
		}
	}

	metrics.RecordQuestionsExtracted(len(questions))
	return questions
}

// stripFence removes a leading "```json\n" and a trailing "\n```". Payloads
// without the fence pass through unchanged.
func stripFence(s string) string {
	s = strings.TrimPrefix(s, fencePrefix)
	s = strings.TrimSuffix(s, fenceSuffix)
	return s
}
