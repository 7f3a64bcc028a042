package sensors

import (
	"context"
	"math"

	"greenhouse/internal/models"
)

// SoilReader is the opaque Bluetooth soil sensor provider.
type SoilReader interface {
	ReadSoil(ctx context.Context) (models.SoilValues, error)
}

type climateSource interface {
	Read(ctx context.Context) (models.SensorValues, error)
}

type soilSource interface {
	Read(ctx context.Context) (models.SoilValues, error)
}

// Climate exposes the fields of the controller bundle.
type Climate struct {
	src climateSource
}

func NewClimate(src climateSource) *Climate { return &Climate{src: src} }

func (c *Climate) Temperature(ctx context.Context) (float64, error) {
	v, err := c.src.Read(ctx)
	return v.Temperature, err
}

func (c *Climate) Humidity(ctx context.Context) (float64, error) {
	v, err := c.src.Read(ctx)
	return v.Humidity, err
}

// Actuators returns the window position and pump bits.
func (c *Climate) Actuators(ctx context.Context) (models.ActuatorState, error) {
	v, err := c.src.Read(ctx)
	return v.Actuators, err
}

// Soil exposes the fields of the soil sensor bundle.
type Soil struct {
	src      soilSource
	lightMax float64
}

// NewSoil wraps src. Raw light readings are scaled against lightMax.
func NewSoil(src soilSource, lightMax float64) *Soil {
	if lightMax <= 0 {
		lightMax = 1023
	}
	return &Soil{src: src, lightMax: lightMax}
}

func (s *Soil) Moisture(ctx context.Context) (float64, error) {
	v, err := s.src.Read(ctx)
	return v.Moisture, err
}

func (s *Soil) Temperature(ctx context.Context) (float64, error) {
	v, err := s.src.Read(ctx)
	return v.Temperature, err
}

// Light returns brightness as a percentage of the configured maximum,
// clamped to [0, 100].
func (s *Soil) Light(ctx context.Context) (float64, error) {
	v, err := s.src.Read(ctx)
	if err != nil {
		return 0, err
	}
	return math.Max(0, math.Min(100, 100*v.Light/s.lightMax)), nil
}

func (s *Soil) Battery(ctx context.Context) (float64, error) {
	v, err := s.src.Read(ctx)
	return v.Battery, err
}
