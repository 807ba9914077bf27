// Package session implements the interview session state machine.
//
// A session walks an immutable question list with a cursor. The cursor is
// always a valid question index while answering, or equal to the question
// count once the interview is complete. Advancing submits the active turn's
// recorded response (when one exists) and either moves to the next question
// or completes the session, releasing captured media.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aceai/aceai/internal/domain/model"
	"github.com/aceai/aceai/internal/domain/types"
	"github.com/aceai/aceai/pkg/metrics"
)

// Releaser frees an acquired media stream. Implemented by the media capture
// controller; declared here so the state machine does not depend on the
// adapter layer.
type Releaser interface {
	Release(ctx context.Context)
}

// Transition is the outcome of an Advance call.
type Transition struct {
	// Submit is the response recorded for the turn just left, nil when the
	// turn ended without a finalized transcript.
	Submit *model.RecordedResponse

	// Completed reports whether the advance finished the interview.
	Completed bool
}

// Session is one interview in progress. All methods are safe for concurrent
// use.
type Session struct {
	mu        sync.Mutex
	id        string
	questions []string
	cursor    int
	complete  bool
	recording bool
	responses map[int]model.RecordedResponse
	feedback  map[int]model.Feedback
	media     Releaser
	createdAt time.Time
}

// Option applies a configuration option to the session.
type Option func(*Session)

// WithMedia attaches an acquired media stream released on completion or
// abandonment.
func WithMedia(r Releaser) Option {
	return func(s *Session) {
		s.media = r
	}
}

// New creates a session over an immutable question list, starting at the
// first question.
func New(id string, questions []string, opts ...Option) *Session {
	s := &Session{
		id:        id,
		questions: append([]string(nil), questions...),
		responses: make(map[int]model.RecordedResponse),
		feedback:  make(map[int]model.Feedback),
		createdAt: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Questions returns a copy of the question list.
func (s *Session) Questions() []string {
	return append([]string(nil), s.questions...)
}

// QuestionCount returns the number of questions in the interview.
func (s *Session) QuestionCount() int {
	return len(s.questions)
}

// Cursor returns the zero-based index of the active turn. Once the session
// is complete the cursor equals the question count.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// CurrentQuestion returns the active question text. ok is false when the
// session is complete or the question list is empty.
func (s *Session) CurrentQuestion() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.complete || s.cursor >= len(s.questions) {
		return "", false
	}
	return s.questions[s.cursor], true
}

// Complete reports whether the interview has finished.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// SetRecording flags whether a turn capture is active. The flag is
// presentational; turn lifecycle is owned by the media controller.
func (s *Session) SetRecording(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = active
}

// Recording reports whether a turn capture is active.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// RecordResponse stores the finalized transcript for a turn. The first
// finalized transcript wins; later ones are rejected with
// ErrDuplicateResponse. Responses for turns other than the active one are
// rejected with ErrTurnMismatch.
func (s *Session) RecordResponse(turn int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.complete {
		return ErrSessionComplete
	}
	if turn != s.cursor {
		return ErrTurnMismatch
	}
	if _, exists := s.responses[turn]; exists {
		return ErrDuplicateResponse
	}

	s.responses[turn] = model.RecordedResponse{
		Turn:     turn,
		Question: s.questions[turn],
		Response: text,
	}
	return nil
}

// ResponseForTurn returns the recorded response for a turn, if one exists.
func (s *Session) ResponseForTurn(turn int) (model.RecordedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.responses[turn]
	return r, ok
}

// Advance leaves the active turn. It returns the turn's recorded response
// for scoring (nil when the turn captured nothing) and moves the cursor
// forward, completing the session and releasing media when the last question
// was answered. Advancing a complete session returns ErrSessionComplete.
func (s *Session) Advance(ctx context.Context) (Transition, error) {
	s.mu.Lock()

	if s.complete {
		s.mu.Unlock()
		return Transition{}, ErrSessionComplete
	}

	var t Transition
	if r, ok := s.responses[s.cursor]; ok {
		submit := r
		t.Submit = &submit
	}

	if s.cursor+1 < len(s.questions) {
		s.cursor++
		s.recording = false
		s.mu.Unlock()
		return t, nil
	}

	s.cursor = len(s.questions)
	s.complete = true
	s.recording = false
	t.Completed = true
	media := s.media
	s.media = nil
	s.mu.Unlock()

	if media != nil {
		media.Release(ctx)
	}
	metrics.RecordSessionCompleted()
	return t, nil
}

// Exit abandons the interview from any state, releasing media if still held.
// Safe to call on a complete session.
func (s *Session) Exit(ctx context.Context) {
	s.mu.Lock()
	already := s.complete
	s.cursor = len(s.questions)
	s.complete = true
	s.recording = false
	media := s.media
	s.media = nil
	s.mu.Unlock()

	if media != nil {
		media.Release(ctx)
	}
	if !already {
		metrics.RecordSessionAbandoned()
	}
}

// AddFeedback stores the scoring result for a turn. One feedback per turn;
// a later result for an already-scored turn is ignored.
func (s *Session) AddFeedback(fb model.Feedback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.feedback[fb.Turn]; exists {
		return
	}
	s.feedback[fb.Turn] = fb
}

// FeedbackCount returns the number of scored turns.
func (s *Session) FeedbackCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feedback)
}

// State returns the API-facing view of the session.
func (s *Session) State() types.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := types.State{
		ID:            s.id,
		Cursor:        s.cursor,
		QuestionCount: len(s.questions),
		Recording:     s.recording,
		Complete:      s.complete,
	}
	if !s.complete && s.cursor < len(s.questions) {
		st.CurrentQuestion = s.questions[s.cursor]
	}
	return st
}

// Report returns the scored turns in question order. Turns whose scoring
// never completed are absent.
func (s *Session) Report() []types.ReportEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]int, 0, len(s.feedback))
	for turn := range s.feedback {
		turns = append(turns, turn)
	}
	sort.Ints(turns)

	entries := make([]types.ReportEntry, 0, len(turns))
	for _, turn := range turns {
		fb := s.feedback[turn]
		entries = append(entries, types.ReportEntry{
			Question:           fb.Question,
			Response:           fb.Response,
			Feedback:           fb.Comment,
			FillerPercentage:   types.Percent(fb.FillerPercentage),
			Relevance:          fb.Relevance,
			RepeatedWordsCount: fb.RepeatedWordsCount,
			Sentiment:          fb.Sentiment,
		})
	}
	return entries
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}
