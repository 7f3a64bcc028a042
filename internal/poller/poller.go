// Package poller runs one goroutine per sensor group, reading on a schedule
// and handing records to the record queue.
package poller

import (
	"context"
	"sync"

	"greenhouse/internal/logger"
	"greenhouse/internal/metrics"
)

// TickFunc performs one read-decide-enqueue cycle.
type TickFunc func(ctx context.Context) error

// Poller calls its tick function on every scheduler tick until closed.
type Poller struct {
	name    string
	sched   *Scheduler
	tick    TickFunc
	log     *logger.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	stopped sync.Once
	done    chan struct{}
}

func New(name string, sched *Scheduler, tick TickFunc, log *logger.Logger, m *metrics.Metrics) *Poller {
	return &Poller{
		name:    name,
		sched:   sched,
		tick:    tick,
		log:     logger.OrNop(log).Named(name),
		metrics: m,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (p *Poller) Name() string { return p.name }

// Start launches the polling goroutine. Ticks run with ctx; cancelling it
// also interrupts a tick in progress, which Close never does.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.log.Infow("poller_started")
	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-p.stop:
			cancel()
		case <-waitCtx.Done():
		}
	}()

	for {
		if err := p.sched.Wait(waitCtx); err != nil {
			p.log.Infow("poller_stopped")
			return
		}
		select {
		case <-p.stop:
			p.log.Infow("poller_stopped")
			return
		default:
		}

		if err := p.tick(ctx); err != nil {
			p.log.Errorw("poll_failed", "err", err)
			p.metrics.PollTick(p.name, metrics.ResultFailed)
			continue
		}
		p.metrics.PollTick(p.name, metrics.ResultOK)
	}
}

// Close stops the poller. A pending interval wait ends at once; a tick in
// progress is allowed to finish. Close returns when the goroutine has exited
// or ctx ends, whichever is first, and may be called from any goroutine.
func (p *Poller) Close(ctx context.Context) error {
	p.stopped.Do(func() { close(p.stop) })

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
