package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"greenhouse/internal/clock"
)

var t0 = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

func TestScheduler_FixedRate(t *testing.T) {
	c := clock.NewFake(t0)
	s := NewScheduler(c, 10*time.Minute)
	ctx := context.Background()

	if err := s.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if !c.Now().Equal(t0.Add(10 * time.Minute)) {
		t.Fatalf("first tick at %v", c.Now())
	}

	// A tick that takes 3 minutes shortens the next wait.
	c.Advance(3 * time.Minute)
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if !c.Now().Equal(t0.Add(20 * time.Minute)) {
		t.Fatalf("second tick at %v", c.Now())
	}
	w := c.Waits()
	if len(w) != 2 || w[0] != 10*time.Minute || w[1] != 7*time.Minute {
		t.Fatalf("waits = %v", w)
	}
}

func TestScheduler_OverrunFiresAndRestarts(t *testing.T) {
	c := clock.NewFake(t0)
	s := NewScheduler(c, 10*time.Minute)
	ctx := context.Background()

	_ = s.Wait(ctx)
	c.Advance(25 * time.Minute)
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("overrun wait: %v", err)
	}
	if len(c.Waits()) != 1 {
		t.Fatal("overrun tick should fire without waiting")
	}
	overrunAt := c.Now()

	_ = s.Wait(ctx)
	if !c.Now().Equal(overrunAt.Add(10 * time.Minute)) {
		t.Fatalf("schedule should restart from the overrun tick, now %v", c.Now())
	}
}

func TestScheduler_Cancelled(t *testing.T) {
	c := clock.NewFake(t0)
	s := NewScheduler(c, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
