// Package simulate drives end-to-end mock interviews against a running
// gateway: upload, per-question recording and transcripts, advancement,
// and report verification.
package simulate

import "time"

// Config holds configuration for the interview simulation.
type Config struct {
	BaseURL    string        // Base URL of the gateway
	Interviews int           // Number of interviews to run
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	LogFile    string        // Log file for simulation output
	Verbose    bool          // Enable verbose logging
}

// created mirrors the gateway's interview creation response.
type created struct {
	ID        string   `json:"id"`
	Questions []string `json:"questions"`
}

// state mirrors the gateway's session state response.
type state struct {
	ID              string `json:"id"`
	Cursor          int    `json:"cursor"`
	QuestionCount   int    `json:"question_count"`
	CurrentQuestion string `json:"current_question"`
	Recording       bool   `json:"recording"`
	Complete        bool   `json:"complete"`
}

// transcriptAck mirrors the gateway's transcript acknowledgement.
type transcriptAck struct {
	Accepted bool `json:"accepted"`
}

// reportEntry mirrors one scored answer in the gateway's report.
type reportEntry struct {
	Question           string  `json:"question"`
	Response           string  `json:"response"`
	Feedback           string  `json:"feedback"`
	FillerPercentage   float64 `json:"filler_percentage"`
	Relevance          string  `json:"relevance"`
	RepeatedWordsCount int     `json:"repeated_words_count"`
	Sentiment          string  `json:"sentiment"`
}

// report mirrors the gateway's report response.
type report struct {
	ID      string        `json:"id"`
	Entries []reportEntry `json:"entries"`
}

// Stats holds simulation statistics.
type Stats struct {
	InterviewsStarted   int
	InterviewsCompleted int
	InterviewsFailed    int
	TurnsAnswered       int
	EntriesScored       int
	EntriesMismatched   int
	StartTime           time.Time
	EndTime             time.Time
	Duration            time.Duration
}
