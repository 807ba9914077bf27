package service

import "errors"

var (
	// ErrBusy indicates an upload is already in flight.
	ErrBusy = errors.New("an upload is already in progress")

	// ErrMissingFile indicates the upload carried no resume file.
	ErrMissingFile = errors.New("no resume file provided")

	// ErrUnsupportedFile indicates the resume is not a PDF.
	ErrUnsupportedFile = errors.New("resume must be a PDF")

	// ErrUploadTooLarge indicates the resume exceeds the size cap.
	ErrUploadTooLarge = errors.New("resume too large")

	// ErrQuestionService indicates question generation failed.
	ErrQuestionService = errors.New("question generation failed")

	// ErrNoActiveQuestion indicates a turn action on a session with no
	// question to answer.
	ErrNoActiveQuestion = errors.New("no question to answer")

	// ErrNotStarted indicates the service was used before Start.
	ErrNotStarted = errors.New("service not started")
)
