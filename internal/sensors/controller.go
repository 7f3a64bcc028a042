package sensors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenhouse/internal/clock"
	"greenhouse/internal/hardware"
	"greenhouse/internal/logger"
	"greenhouse/internal/models"

	"github.com/cenkalti/backoff/v4"
)

// ErrRequestTimeout is returned for a sensor request the controller never
// answered. ControllerReader retries it until its context ends.
var ErrRequestTimeout = errors.New("controller did not answer sensor request")

// ControllerConfig tunes the request/poll loop.
type ControllerConfig struct {
	// RequestTimeout bounds one request attempt.
	RequestTimeout time.Duration
	// PollInterval is the pause between availability checks.
	PollInterval time.Duration
	// RetryInitial and RetryMax bound the exponential pause between attempts.
	RetryInitial time.Duration
	RetryMax     time.Duration
}

func (c ControllerConfig) withDefaults() ControllerConfig {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 120 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 50 * time.Millisecond
	}
	if c.RetryInitial <= 0 {
		c.RetryInitial = time.Second
	}
	if c.RetryMax <= 0 {
		c.RetryMax = 30 * time.Second
	}
	return c
}

// ControllerReader performs physical reads of the microcontroller's sensor
// bundle: request, poll for the response, retry on timeout.
type ControllerReader struct {
	link  hardware.Link
	clock clock.Clock
	cfg   ControllerConfig
	log   *logger.Logger
}

func NewControllerReader(link hardware.Link, c clock.Clock, cfg ControllerConfig, log *logger.Logger) *ControllerReader {
	return &ControllerReader{link: link, clock: c, cfg: cfg.withDefaults(), log: logger.OrNop(log)}
}

// Read blocks until the controller answers or ctx ends. Failed attempts are
// retried with exponential backoff and no attempt limit.
func (r *ControllerReader) Read(ctx context.Context) (models.SensorValues, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.RetryInitial
	bo.MaxInterval = r.cfg.RetryMax
	bo.MaxElapsedTime = 0
	bo.Clock = r.clock

	var (
		values  models.SensorValues
		attempt int
	)
	op := func() error {
		attempt++
		v, err := r.attempt(ctx)
		if err != nil {
			return err
		}
		values = v
		return nil
	}
	notify := func(err error, next time.Duration) {
		r.log.Warnw("controller_request_retry", "attempt", attempt, "err", err, "retry_in", next)
	}
	if err := backoff.RetryNotifyWithTimer(op, backoff.WithContext(bo, ctx), notify, newClockTimer(r.clock)); err != nil {
		return models.SensorValues{}, err
	}
	return values, nil
}

func (r *ControllerReader) attempt(ctx context.Context) (models.SensorValues, error) {
	if err := r.link.Request(hardware.TagReadSensors); err != nil {
		if errors.Is(err, hardware.ErrClosed) {
			return models.SensorValues{}, backoff.Permanent(err)
		}
		return models.SensorValues{}, fmt.Errorf("send request: %w", err)
	}
	deadline := r.clock.Now().Add(r.cfg.RequestTimeout)
	for {
		frame, ok, err := r.link.Poll()
		if err != nil {
			if errors.Is(err, hardware.ErrClosed) {
				return models.SensorValues{}, backoff.Permanent(err)
			}
			return models.SensorValues{}, fmt.Errorf("poll response: %w", err)
		}
		if ok {
			return hardware.DecodeSensorFrame(frame, r.clock.Now())
		}
		if !r.clock.Now().Before(deadline) {
			return models.SensorValues{}, ErrRequestTimeout
		}
		if err := r.clock.Wait(ctx, r.cfg.PollInterval); err != nil {
			return models.SensorValues{}, backoff.Permanent(err)
		}
	}
}

// clockTimer is a backoff.Timer that waits on the injected clock, so retry
// pauses follow fake time in tests.
type clockTimer struct {
	clock  clock.Clock
	ch     chan time.Time
	cancel context.CancelFunc
}

func newClockTimer(c clock.Clock) *clockTimer { return &clockTimer{clock: c} }

func (t *clockTimer) Start(d time.Duration) {
	t.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan time.Time, 1)
	t.ch, t.cancel = ch, cancel
	go func() {
		if err := t.clock.Wait(ctx, d); err == nil {
			ch <- t.clock.Now()
		}
	}()
}

func (t *clockTimer) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *clockTimer) C() <-chan time.Time { return t.ch }
