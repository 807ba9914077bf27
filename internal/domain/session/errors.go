package session

import "errors"

var (
	// ErrSessionComplete indicates a transition was requested on a finished
	// interview.
	ErrSessionComplete = errors.New("session is complete")

	// ErrTurnMismatch indicates a response arrived for a turn that is not
	// the active one.
	ErrTurnMismatch = errors.New("response turn does not match active turn")

	// ErrDuplicateResponse indicates the active turn already holds a
	// finalized response.
	ErrDuplicateResponse = errors.New("turn already has a recorded response")
)
