// Package pump decides when pumps may run and runs them.
package pump

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"greenhouse/internal/clock"
	"greenhouse/internal/hardware"
	"greenhouse/internal/logger"
	"greenhouse/internal/metrics"
)

const (
	// DefaultRateMLPerSec is 500 mL/min.
	DefaultRateMLPerSec = 500.0 / 60.0
	// DefaultAmountML is delivered per run unless configured otherwise.
	DefaultAmountML = 200.0
)

// ErrInvalidAmount is returned for a negative or non-finite volume, or one
// whose run time does not fit in a time.Duration.
var ErrInvalidAmount = errors.New("invalid amount of water")

// maxRunSeconds is the longest run a time.Duration can express.
var maxRunSeconds = float64(math.MaxInt64) / float64(time.Second)

// Pump runs one physical pump for a computed duration.
type Pump struct {
	id        int
	driver    hardware.Commander
	clock     clock.Clock
	rate      float64
	locks     *LockSet
	exclusive bool
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// Config describes one pump.
type Config struct {
	ID           int
	RateMLPerSec float64
	Exclusive    bool
}

// New builds a pump. All pumps sharing a bus must share locks.
func New(cfg Config, driver hardware.Commander, c clock.Clock, locks *LockSet, log *logger.Logger, m *metrics.Metrics) (*Pump, error) {
	if cfg.RateMLPerSec <= 0 {
		return nil, fmt.Errorf("pump %d: rate must be positive, got %v", cfg.ID, cfg.RateMLPerSec)
	}
	if locks == nil {
		return nil, fmt.Errorf("pump %d: lock set is required", cfg.ID)
	}
	l := logger.OrNop(log)
	if cfg.Exclusive {
		l.Infow("pump_exclusive", "pump_id", cfg.ID)
	}
	return &Pump{
		id:        cfg.ID,
		driver:    driver,
		clock:     c,
		rate:      cfg.RateMLPerSec,
		locks:     locks,
		exclusive: cfg.Exclusive,
		log:       l,
		metrics:   m,
	}, nil
}

// ID is the pump's index on the hardware bus.
func (p *Pump) ID() int { return p.id }

// Exclusive reports whether the pump runs alone.
func (p *Pump) Exclusive() bool { return p.exclusive }

// PumpWater delivers amountML and reports whether the run completed. It
// returns false without touching hardware when the lock set says another
// pump has priority. Once the pump is on, it is always switched off and its
// locks released, including when ctx ends mid-run.
func (p *Pump) PumpWater(ctx context.Context, amountML float64) (bool, error) {
	if amountML == 0 {
		return true, nil
	}
	d, err := p.runDuration(amountML)
	if err != nil {
		return false, err
	}

	if p.exclusive {
		if !p.locks.acquireExclusive() {
			p.log.Infow("pump_skipped", "pump_id", p.id, "reason", "exclusive pump and another pump is running")
			p.metrics.PumpRun(p.id, metrics.ResultSkipped)
			return false, nil
		}
		defer p.locks.releaseExclusive()
	} else {
		blocked, holding := p.locks.enterShared()
		if blocked {
			p.log.Infow("pump_skipped", "pump_id", p.id, "reason", "exclusive pump is running")
			p.metrics.PumpRun(p.id, metrics.ResultSkipped)
			return false, nil
		}
		if holding {
			defer p.locks.releaseShared()
		}
	}

	return p.run(ctx, amountML, d)
}

// runDuration is how long the pump must stay on to deliver amountML.
func (p *Pump) runDuration(amountML float64) (time.Duration, error) {
	if amountML < 0 || math.IsNaN(amountML) || math.IsInf(amountML, 0) {
		return 0, fmt.Errorf("pump %d: %w: %v mL", p.id, ErrInvalidAmount, amountML)
	}
	secs := amountML / p.rate
	if secs >= maxRunSeconds {
		return 0, fmt.Errorf("pump %d: %w: %v mL would run for %.0fs", p.id, ErrInvalidAmount, amountML, secs)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func (p *Pump) run(ctx context.Context, amountML float64, d time.Duration) (bool, error) {
	p.log.Infow("pump_on", "pump_id", p.id)
	if err := p.driver.Command(hardware.TagPumpOn, p.id); err != nil {
		p.metrics.PumpRun(p.id, metrics.ResultFailed)
		return false, fmt.Errorf("pump %d on: %w", p.id, err)
	}

	waitErr := p.clock.Wait(ctx, d)

	p.log.Infow("pump_off", "pump_id", p.id)
	offErr := p.driver.Command(hardware.TagPumpOff, p.id)

	switch {
	case offErr != nil:
		p.log.Errorw("pump_off_failed", "pump_id", p.id, "err", offErr)
		p.metrics.PumpRun(p.id, metrics.ResultFailed)
		return false, fmt.Errorf("pump %d off: %w", p.id, errors.Join(offErr, waitErr))
	case waitErr != nil:
		p.log.Warnw("pump_interrupted", "pump_id", p.id, "err", waitErr)
		p.metrics.PumpRun(p.id, metrics.ResultFailed)
		return false, fmt.Errorf("pump %d interrupted: %w", p.id, waitErr)
	}

	p.log.Infow("pump_done", "pump_id", p.id, "amount_ml", amountML, "duration", d)
	p.metrics.PumpRun(p.id, metrics.ResultCompleted)
	p.metrics.Watered(p.id, amountML)
	return true, nil
}
