package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Clock lets tests drive time for RateWindow.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RateWindow bounds actions per rolling window. It has a single caller and
// is not safe for concurrent use.
type RateWindow struct {
	max    int
	window time.Duration
	times  []time.Time
	clock  Clock
	log    *zap.SugaredLogger
}

// NewRateWindow allows at most max actions in any window-long span.
func NewRateWindow(max int, window time.Duration, log *zap.SugaredLogger) *RateWindow {
	return &RateWindow{max: max, window: window, clock: realClock{}, log: log}
}

// WithClock replaces the wall clock.
func (rw *RateWindow) WithClock(c Clock) *RateWindow {
	rw.clock = c
	return rw
}

// Wait blocks until another action fits in the window, then records it.
func (rw *RateWindow) Wait(ctx context.Context) error {
	now := rw.clock.Now()
	rw.prune(now)

	if len(rw.times) >= rw.max {
		sleep := rw.times[0].Add(rw.window).Sub(now)
		rw.log.Warnf("Rate limit reached. Sleeping for %.1f seconds", sleep.Seconds())
		if err := rw.clock.Sleep(ctx, sleep); err != nil {
			return err
		}
		now = rw.clock.Now()
		rw.prune(now)
	}

	rw.times = append(rw.times, now)
	return nil
}

// Len is the number of actions currently inside the window.
func (rw *RateWindow) Len() int { return len(rw.times) }

func (rw *RateWindow) prune(now time.Time) {
	keep := rw.times[:0]
	for _, t := range rw.times {
		if now.Sub(t) < rw.window {
			keep = append(keep, t)
		}
	}
	rw.times = keep
}
