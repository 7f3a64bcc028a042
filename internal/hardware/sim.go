package hardware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"greenhouse/internal/clock"
	"greenhouse/internal/models"
)

// Simulation constants.
const (
	AmbientC           = 21.0 // air temperature the house drifts back to
	DaySwingC          = 6.0  // extra warmth at solar noon
	WindowOpenAboveC   = 28.0 // controller opens the window past this
	DryingPctPerHour   = 1.2  // soil moisture lost per hour
	WettingPctPerSec   = 0.05 // soil moisture gained per second per running pump
	HumidityBase       = 65.0
	HumidityPerDegreeC = 2.5
	BatteryDrainPerDay = 0.1
	MaxLightRaw        = 1023.0
)

// Greenhouse simulates the controller, its pumps and a soil sensor so the
// service can run without hardware. It implements Link and the soil sensor
// reader.
type Greenhouse struct {
	clock clock.Clock

	mu       sync.Mutex
	updated  time.Time
	airC     float64
	soilC    float64
	moisture float64
	battery  float64
	window   uint8
	pumpBits uint8
	pending  []byte
	closed   bool
}

// NewGreenhouse starts the simulation at the given soil moisture.
func NewGreenhouse(c clock.Clock, moisture float64) *Greenhouse {
	return &Greenhouse{
		clock:    c,
		updated:  c.Now(),
		airC:     AmbientC,
		soilC:    AmbientC - 3,
		moisture: moisture,
		battery:  100,
	}
}

func (g *Greenhouse) Request(tag byte) error {
	if tag != TagReadSensors {
		return fmt.Errorf("sim: unsupported request %q", tag)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	now := g.advance()
	g.pending = EncodeSensorFrame(models.SensorValues{
		Humidity:    g.humidity(),
		Temperature: g.airC,
		Actuators: models.ActuatorState{
			Timestamp:      now,
			WindowPosition: g.window,
			PumpBits:       g.pumpBits,
		},
	})
	return nil
}

func (g *Greenhouse) Poll() ([]byte, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, false, ErrClosed
	}
	if g.pending == nil {
		return nil, false, nil
	}
	f := g.pending
	g.pending = nil
	return f, true, nil
}

func (g *Greenhouse) Command(tag byte, pumpID int) error {
	on, err := relayOn(tag)
	if err != nil {
		return err
	}
	if pumpID < 0 || pumpID > 7 {
		return fmt.Errorf("sim: pump id %d out of range", pumpID)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	g.advance()
	if on {
		g.pumpBits |= 1 << uint(pumpID)
	} else {
		g.pumpBits &^= 1 << uint(pumpID)
	}
	return nil
}

// ReadSoil returns the simulated soil sensor bundle.
func (g *Greenhouse) ReadSoil(ctx context.Context) (models.SoilValues, error) {
	if err := ctx.Err(); err != nil {
		return models.SoilValues{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return models.SoilValues{}, ErrClosed
	}
	now := g.advance()
	return models.SoilValues{
		Moisture:     g.moisture,
		Temperature:  g.soilC,
		Light:        MaxLightRaw * daylight(now),
		Conductivity: 350 + 4*g.moisture,
		Battery:      g.battery,
	}, nil
}

func (g *Greenhouse) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

// advance moves the model forward to the clock's current time. Callers hold mu.
func (g *Greenhouse) advance() time.Time {
	now := g.clock.Now()
	elapsed := now.Sub(g.updated).Seconds()
	if elapsed <= 0 {
		return now
	}
	g.updated = now

	target := AmbientC + DaySwingC*daylight(now)
	g.airC = approach(g.airC, target, elapsed/1800)
	g.soilC = approach(g.soilC, target-3, elapsed/7200)

	running := float64(popcount(g.pumpBits))
	g.moisture += running*WettingPctPerSec*elapsed - DryingPctPerHour*elapsed/3600
	g.moisture = clamp(g.moisture, 0, 100)
	g.battery = clamp(g.battery-BatteryDrainPerDay*elapsed/86400, 0, 100)

	switch {
	case g.airC > WindowOpenAboveC:
		g.window = 255
	case g.airC < WindowOpenAboveC-2:
		g.window = 0
	}
	return now
}

func (g *Greenhouse) humidity() float64 {
	return clamp(HumidityBase-HumidityPerDegreeC*(g.airC-AmbientC), 10, 100)
}

// daylight is 0 at night and peaks at 1 at local solar noon.
func daylight(t time.Time) float64 {
	h := float64(t.Hour()) + float64(t.Minute())/60
	if h < 6 || h > 20 {
		return 0
	}
	return math.Sin((h - 6) / 14 * math.Pi)
}

// approach moves v toward target by fraction k of the gap, capped at 1.
func approach(v, target, k float64) float64 {
	if k > 1 {
		k = 1
	}
	return v + (target-v)*k
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func popcount(b uint8) int {
	n := 0
	for ; b != 0; b &= b - 1 {
		n++
	}
	return n
}
