// Package model contains domain models passed between layers.
package model

import "time"

// RecordedResponse is one transcribed answer, tagged with the turn it was
// captured in. Tagging at creation time keeps attribution explicit even when
// recognition results resolve out of order.
type RecordedResponse struct {
	Turn     int    // zero-based question index
	Question string // question text the turn was scoped to
	Response string // finalized transcript text
}

// Feedback is the structured scoring result returned by the feedback service
// for one answer.
type Feedback struct {
	Turn               int
	Question           string
	Response           string
	Comment            string  // narrative feedback text
	FillerPercentage   float64 // 0-100
	Relevance          string
	RepeatedWordsCount int
	Sentiment          string
}

// Submission is one scoring request flowing through the queue.
type Submission struct {
	ID        string // sessionID:turn, used for duplicate suppression
	SessionID string
	Turn      int
	Question  string
	Response  string
	CreatedAt time.Time
}
