package queue

import "errors"

var (
	// ErrClosed indicates an operation on a closed queue.
	ErrClosed = errors.New("queue closed")
)
