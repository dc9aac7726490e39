package musicbrainz

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval is the polite spacing between MusicBrainz calls.
const DefaultMinInterval = time.Second

// Pacer enforces a minimum interval between outbound calls process-wide.
// A single Pacer is shared by every caller, so the interval holds regardless
// of which resolution triggered the call. Waiting suspends only the caller;
// unrelated work is unaffected.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer allowing one call per minInterval, with no burst.
func NewPacer(minInterval time.Duration) *Pacer {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait blocks until the next call is allowed or ctx is canceled.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
