package media

import (
	"context"
	"sync"

	"github.com/aceai/aceai/pkg/logger"
	"github.com/aceai/aceai/pkg/metrics"
)

// Handle holds exclusive ownership of an acquired stream. Release stops
// every track exactly once; a second Release is a no-op.
type Handle struct {
	stream  Stream
	release sync.Once
}

// NewHandle wraps an acquired stream.
func NewHandle(stream Stream) *Handle {
	return &Handle{stream: stream}
}

// Stream returns the owned stream.
func (h *Handle) Stream() Stream {
	return h.stream
}

// Release stops all tracks of the owned stream. Idempotent.
func (h *Handle) Release(ctx context.Context) {
	h.release.Do(func() {
		for _, t := range h.stream.Tracks() {
			t.Stop()
		}
		metrics.RecordMediaRelease()
		logger.Get().Debug(ctx, "media stream released",
			logger.Int("tracks", len(h.stream.Tracks())))
	})
}
