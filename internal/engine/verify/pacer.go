package verify

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks between verification requests.
type Pacer interface {
	Wait(ctx context.Context) error
}

// IntervalPacer pauses a full interval from the moment Wait is called, so
// time spent in the preceding request never shortens the pause. A limiter
// shared by every batch using the pacer then caps the combined request rate
// at burst per interval.
type IntervalPacer struct {
	interval time.Duration
	lim      *rate.Limiter
}

// NewIntervalPacer creates a pacer pausing interval after every record.
func NewIntervalPacer(interval time.Duration, burst int) *IntervalPacer {
	if burst < 1 {
		burst = 1
	}
	return &IntervalPacer{
		interval: interval,
		lim:      rate.NewLimiter(rate.Every(interval), burst),
	}
}

// Wait blocks for the interval, then for a limiter token, or until ctx is done.
func (p *IntervalPacer) Wait(ctx context.Context) error {
	if p.interval > 0 {
		t := time.NewTimer(p.interval)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return p.lim.Wait(ctx)
}

type noPacer struct{}

func (noPacer) Wait(ctx context.Context) error { return ctx.Err() }
