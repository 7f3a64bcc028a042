package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"greenhouse/internal/clock"
	"greenhouse/internal/logger"
	"greenhouse/internal/metrics"
	"greenhouse/internal/models"
)

// Recorder accepts records for storage.
type Recorder interface {
	Push(rec models.Record)
}

type MoistureSensor interface {
	Moisture(ctx context.Context) (float64, error)
}

type PumpManager interface {
	PumpID() int
	PumpIfNeeded(ctx context.Context, moisture float64) (float64, error)
}

type ActuatorObserver interface {
	Actuators(ctx context.Context) (models.ActuatorState, error)
}

type PhotoTaker interface {
	SavePhoto(ctx context.Context) (string, error)
}

// ReadFunc reads one scalar value.
type ReadFunc func(ctx context.Context) (float64, error)

// Factory builds pollers that share a clock, an interval and a recorder.
type Factory struct {
	clock    clock.Clock
	interval time.Duration
	records  Recorder
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewFactory returns a factory whose pollers tick every interval and stamp
// records with c.
func NewFactory(c clock.Clock, interval time.Duration, records Recorder, log *logger.Logger, m *metrics.Metrics) *Factory {
	return &Factory{clock: c, interval: interval, records: records, log: logger.OrNop(log), metrics: m}
}

func (f *Factory) newPoller(name string, tick TickFunc) *Poller {
	return New(name, NewScheduler(f.clock, f.interval), tick, f.log, f.metrics)
}

func (f *Factory) now() time.Time { return f.clock.Now().UTC() }

// SoilWatering reads soil moisture, lets the manager decide whether to
// water, and records the reading followed by any watering event.
func (f *Factory) SoilWatering(sensor MoistureSensor, manager PumpManager) *Poller {
	name := fmt.Sprintf("soil_watering_%d", manager.PumpID())
	return f.newPoller(name, func(ctx context.Context) error {
		moisture, err := sensor.Moisture(ctx)
		if err != nil {
			return fmt.Errorf("read soil moisture: %w", err)
		}
		f.records.Push(models.Reading{Kind: models.KindSoilMoisture, Timestamp: f.now(), Value: moisture})

		ml, err := manager.PumpIfNeeded(ctx, moisture)
		if err != nil {
			return fmt.Errorf("pump %d: %w", manager.PumpID(), err)
		}
		if ml > 0 {
			f.records.Push(models.WateringEvent{
				EventID:   uuid.NewString(),
				PumpID:    manager.PumpID(),
				Timestamp: f.now(),
				VolumeML:  ml,
			})
		}
		return nil
	})
}

// Reading records one scalar value of the given kind per tick.
func (f *Factory) Reading(kind models.RecordKind, read ReadFunc) *Poller {
	return f.newPoller(string(kind), func(ctx context.Context) error {
		v, err := read(ctx)
		if err != nil {
			return fmt.Errorf("read %s: %w", kind, err)
		}
		f.records.Push(models.Reading{Kind: kind, Timestamp: f.now(), Value: v})
		return nil
	})
}

// Actuators records the window position and pump bits.
func (f *Factory) Actuators(obs ActuatorObserver) *Poller {
	return f.newPoller(string(models.KindActuatorState), func(ctx context.Context) error {
		st, err := obs.Actuators(ctx)
		if err != nil {
			return fmt.Errorf("read actuators: %w", err)
		}
		st.Timestamp = f.now()
		f.records.Push(st)
		return nil
	})
}

// Camera takes a photo per tick. It produces no records.
func (f *Factory) Camera(camera PhotoTaker) *Poller {
	return f.newPoller("camera", func(ctx context.Context) error {
		_, err := camera.SavePhoto(ctx)
		return err
	})
}
