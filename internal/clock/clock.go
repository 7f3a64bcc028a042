package clock

import (
	"context"
	"time"
)

// Clock is the time source for everything that waits or measures age.
type Clock interface {
	Now() time.Time
	// Wait blocks for d or until ctx is done, whichever comes first.
	Wait(ctx context.Context, d time.Duration) error
}

// Real is a wall clock in a fixed location.
type Real struct {
	loc *time.Location
}

// NewUTC returns a wall clock reporting UTC.
func NewUTC() *Real { return &Real{loc: time.UTC} }

// NewLocal returns a wall clock reporting the host's local time zone.
// Sleep windows are evaluated against it.
func NewLocal() *Real { return &Real{loc: time.Local} }

func (c *Real) Now() time.Time { return time.Now().In(c.loc) }

func (c *Real) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
