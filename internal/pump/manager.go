package pump

import (
	"context"
	"time"

	"greenhouse/internal/clock"
	"greenhouse/internal/logger"
)

// Waterer is the pump as the manager sees it.
type Waterer interface {
	ID() int
	PumpWater(ctx context.Context, amountML float64) (bool, error)
}

// Gate decides whether pumping is allowed right now.
type Gate interface {
	IsRunningPumpAllowed() bool
}

// Manager waters when the soil is dry or when the forced-watering timer has
// run out, whichever comes first.
type Manager struct {
	pump      Waterer
	gate      Gate
	threshold float64
	amountML  float64
	timer     *clock.Timer
	log       *logger.Logger
}

func NewManager(p Waterer, gate Gate, moistureThreshold, amountML float64, timer *clock.Timer, log *logger.Logger) *Manager {
	return &Manager{
		pump:      p,
		gate:      gate,
		threshold: moistureThreshold,
		amountML:  amountML,
		timer:     timer,
		log:       logger.OrNop(log),
	}
}

func (m *Manager) PumpID() int                { return m.pump.ID() }
func (m *Manager) Threshold() float64         { return m.threshold }
func (m *Manager) AmountML() float64          { return m.amountML }
func (m *Manager) NextForcedIn() time.Duration { return m.timer.Remaining() }

// PumpIfNeeded runs the pump when required and returns the volume actually
// delivered. A skipped or failed run returns 0 and leaves the timer as is.
func (m *Manager) PumpIfNeeded(ctx context.Context, moisture float64) (float64, error) {
	if !m.gate.IsRunningPumpAllowed() {
		m.log.Debugw("pump_sleeping", "pump_id", m.pump.ID())
		return 0, nil
	}
	dry := moisture < m.threshold
	overdue := m.timer.Expired()
	if !dry && !overdue {
		return 0, nil
	}
	m.log.Infow("pump_needed", "pump_id", m.pump.ID(), "moisture", moisture, "threshold", m.threshold, "timer_expired", overdue)
	return m.water(ctx, m.amountML)
}

// WaterNow runs the pump on request, ignoring moisture and sleep windows.
// Lock rules still apply.
func (m *Manager) WaterNow(ctx context.Context, amountML float64) (float64, error) {
	m.log.Infow("pump_manual", "pump_id", m.pump.ID(), "amount_ml", amountML)
	return m.water(ctx, amountML)
}

func (m *Manager) water(ctx context.Context, amountML float64) (float64, error) {
	ok, err := m.pump.PumpWater(ctx, amountML)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	m.timer.Reset()
	return amountML, nil
}
