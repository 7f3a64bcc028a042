package sink

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"greenhouse/internal/logger"
	"greenhouse/internal/metrics"
	"greenhouse/internal/models"
)

// BreakerConfig controls when a failing sink is taken out of service.
type BreakerConfig struct {
	Failures uint32        // consecutive failures that open the breaker
	OpenFor  time.Duration // how long it stays open before probing
	Interval time.Duration // how often closed-state counts are cleared
}

// DefaultBreakerConfig opens after five failures in a row for thirty seconds.
var DefaultBreakerConfig = BreakerConfig{Failures: 5, OpenFor: 30 * time.Second, Interval: time.Minute}

// Breaker wraps a sink in a circuit breaker so an unreachable backend does not
// slow the record processor down.
type Breaker struct {
	inner   Sink
	cb      *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

func NewBreaker(inner Sink, cfg BreakerConfig, log *logger.Logger, m *metrics.Metrics) *Breaker {
	log = logger.OrNop(log)
	if cfg.Failures == 0 {
		cfg.Failures = DefaultBreakerConfig.Failures
	}
	failures := cfg.Failures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     inner.Name(),
		Interval: cfg.Interval,
		Timeout:  cfg.OpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("sink_breaker_state", "sink", name, "from", from.String(), "to", to.String())
		},
	})
	return &Breaker{inner: inner, cb: cb, metrics: m}
}

func (b *Breaker) Name() string { return b.inner.Name() }

// State is the breaker's current state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

// Send forwards rec unless the breaker is open.
func (b *Breaker) Send(ctx context.Context, rec models.Record) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.Send(ctx, rec)
	})
	switch {
	case err == nil:
		b.metrics.SinkSend(b.Name(), metrics.ResultOK)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		b.metrics.SinkSend(b.Name(), metrics.ResultSkipped)
	default:
		b.metrics.SinkSend(b.Name(), metrics.ResultFailed)
	}
	return err
}
