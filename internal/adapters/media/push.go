package media

import (
	"context"
	"sync"
)

// PushRecognizer implements Recognizer for transcripts pushed from outside,
// modeling a browser delivering speech recognition results over the API.
// Push tags the text with the active turn's question before delivery.
type PushRecognizer struct {
	mu      sync.Mutex
	turn    int
	q       string
	deliver func(Transcript) bool
	active  bool
}

// NewPushRecognizer creates a push-fed recognizer.
func NewPushRecognizer() *PushRecognizer {
	return &PushRecognizer{}
}

type pushSession struct {
	r *PushRecognizer
}

func (s *pushSession) Stop(ctx context.Context) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.active = false
	s.r.deliver = nil
}

func (r *PushRecognizer) Start(ctx context.Context, turn int, question string, deliver func(Transcript) bool) (RecognitionSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.turn = turn
	r.q = question
	r.deliver = deliver
	r.active = true
	return &pushSession{r: r}, nil
}

// Push delivers a finalized transcript text for the active turn. Returns
// false when no turn is listening or the result lost to an earlier final.
func (r *PushRecognizer) Push(ctx context.Context, text string) bool {
	r.mu.Lock()
	deliver := r.deliver
	tr := Transcript{Turn: r.turn, Question: r.q, Text: text}
	active := r.active
	r.mu.Unlock()

	if !active || deliver == nil {
		return false
	}
	return deliver(tr)
}
