package poller

import (
	"context"
	"time"

	"greenhouse/internal/clock"
)

// Scheduler paces a poller at a fixed interval. The first tick is one
// interval after the first Wait; later ticks follow the previous tick, so a
// slow tick does not shift the schedule. A tick that overran the next slot
// fires immediately and the schedule restarts from then.
type Scheduler struct {
	clock    clock.Clock
	interval time.Duration
	last     time.Time
}

func NewScheduler(c clock.Clock, interval time.Duration) *Scheduler {
	return &Scheduler{clock: c, interval: interval}
}

// Wait blocks until the next tick is due or ctx ends.
func (s *Scheduler) Wait(ctx context.Context) error {
	now := s.clock.Now()
	if s.last.IsZero() {
		s.last = now
	}
	next := s.last.Add(s.interval)
	if !next.After(now) {
		s.last = now
		return ctx.Err()
	}
	if err := s.clock.Wait(ctx, next.Sub(now)); err != nil {
		return err
	}
	s.last = next
	return nil
}
