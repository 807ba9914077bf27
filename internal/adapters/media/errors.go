package media

import "errors"

var (
	// ErrNoDevice indicates no capture device capability is configured.
	ErrNoDevice = errors.New("no capture device configured")

	// ErrNotAcquired indicates a turn was started before a stream was
	// acquired.
	ErrNotAcquired = errors.New("media stream not acquired")

	// ErrTurnActive indicates a turn was started while another is still
	// recording.
	ErrTurnActive = errors.New("a turn is already recording")

	// ErrNoActiveTurn indicates a transcript arrived with no turn recording.
	ErrNoActiveTurn = errors.New("no active turn")
)
