package client

import "errors"

var (
	// ErrServiceStatus indicates the remote service answered with a
	// non-success status.
	ErrServiceStatus = errors.New("service returned non-success status")

	// ErrInvalidFeedback indicates the feedback payload failed validation.
	ErrInvalidFeedback = errors.New("invalid feedback payload")
)
