// Package types contains common types exposed through the HTTP API.
package types

import "strconv"

// Percent is a 0-100 percentage rendered with exactly two decimals,
// e.g. 12.5 marshals as 12.50.
type Percent float64

// MarshalJSON renders the percentage as a fixed two-decimal JSON number.
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(p), 'f', 2, 64)), nil
}

// UnmarshalJSON parses a plain JSON number.
func (p *Percent) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*p = Percent(f)
	return nil
}

// Upload is the material a candidate submits to start an interview.
type Upload struct {
	FileName        string
	Content         []byte
	JobDescription  string
	KnowledgeDomain string
}

// Created is the answer to a successful interview creation.
type Created struct {
	ID        string   `json:"id"`
	Questions []string `json:"questions"`
}

// State describes an interview session as seen by clients.
type State struct {
	ID              string `json:"id"`
	Cursor          int    `json:"cursor"`
	QuestionCount   int    `json:"question_count"`
	CurrentQuestion string `json:"current_question"`
	Recording       bool   `json:"recording"`
	Complete        bool   `json:"complete"`
}

// Stats is the operational snapshot served by the stats endpoint.
type Stats struct {
	ActiveSessions  int    `json:"active_sessions"`
	QueueDepth      int    `json:"queue_depth"`
	WorkerCount     int    `json:"worker_count"`
	UploadInFlight  bool   `json:"upload_in_flight"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	QuestionService string `json:"question_service"`
	FeedbackService string `json:"feedback_service"`
}

// ReportEntry is one scored answer in the final feedback report.
type ReportEntry struct {
	Question           string  `json:"question"`
	Response           string  `json:"response"`
	Feedback           string  `json:"feedback"`
	FillerPercentage   Percent `json:"filler_percentage"`
	Relevance          string  `json:"relevance"`
	RepeatedWordsCount int     `json:"repeated_words_count"`
	Sentiment          string  `json:"sentiment"`
}
