package media

import "context"

// Track is one capture track of an acquired stream.
type Track interface {
	// Kind reports the track kind, "audio" or "video".
	Kind() string

	// Stop releases the track's underlying device. Safe to call twice.
	Stop()
}

// Stream is a combined audio+video capture stream.
type Stream interface {
	Tracks() []Track
}

// Device acquires a capture stream. Acquisition happens at most once per
// session lifetime.
type Device interface {
	Acquire(ctx context.Context) (Stream, error)
}

// Recording is one in-progress recording artifact scoped to a single turn.
type Recording interface {
	// Stop finalizes the artifact. Safe to call twice.
	Stop(ctx context.Context) error
}

// Recorder starts recording artifacts off an acquired stream.
type Recorder interface {
	Start(ctx context.Context, stream Stream, turn int, question string) (Recording, error)
}

// RecognitionSession is a turn-scoped transcription session.
type RecognitionSession interface {
	// Stop ends the session; no results are delivered afterward.
	Stop(ctx context.Context)
}

// Recognizer starts continuous non-interim transcription for one turn.
// Finalized results are pushed through deliver; deliver reports whether the
// result was accepted as the turn's authoritative transcript.
type Recognizer interface {
	Start(ctx context.Context, turn int, question string, deliver func(Transcript) bool) (RecognitionSession, error)
}

// Transcript is one finalized recognition result, tagged at creation time
// with the turn and question it belongs to.
type Transcript struct {
	Turn     int
	Question string
	Text     string
}
