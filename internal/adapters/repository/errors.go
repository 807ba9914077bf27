package repository

import "errors"

var (
	// ErrNotFound indicates the session id is not registered.
	ErrNotFound = errors.New("session not found")

	// ErrNilSession indicates a record without a session was stored.
	ErrNilSession = errors.New("record has no session")
)
