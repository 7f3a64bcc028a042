package clock

import (
	"context"
	"sync"
	"time"
)

// Fake is a manually driven Clock for tests. Wait advances the fake time by
// the requested duration and returns at once, unless Hold was called.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration

	gate    chan struct{}
	entered chan time.Duration
}

func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set jumps to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Waits returns every duration passed to Wait so far.
func (f *Fake) Waits() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.waits))
	copy(out, f.waits)
	return out
}

// Hold makes subsequent Wait calls block until Release is called or their
// context ends. Each blocked Wait reports its duration on the returned
// channel.
func (f *Fake) Hold() <-chan time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	f.entered = make(chan time.Duration, 16)
	return f.entered
}

// Release unblocks every held Wait and stops holding new ones.
func (f *Fake) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

func (f *Fake) Wait(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.waits = append(f.waits, d)
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if gate != nil {
		entered <- d
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	f.Advance(d)
	return nil
}
