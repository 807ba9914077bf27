package simulate

import "time"

// HTTP status code constants.
const (
	StatusOK        = 200
	StatusCreated   = 201
	StatusNoContent = 204
	StatusConflict  = 409
)

// Runner configuration constants.
const (
	// BusyRetryDelay spaces out retries while another upload holds the
	// gateway's single-upload slot.
	BusyRetryDelay = 200 * time.Millisecond

	// ReportPollInterval spaces out report polls while scoring drains.
	ReportPollInterval = 250 * time.Millisecond

	// ReportPollBudget bounds how long a worker waits for scoring.
	ReportPollBudget = 30 * time.Second

	PercentageMultiplier = 100
)
