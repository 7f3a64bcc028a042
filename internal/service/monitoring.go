package service

import (
	"context"
	"sort"
	"time"

	"greenhouse/internal/models"
	"greenhouse/internal/repository"
)

// Snapshotter is the in-memory view of the latest records.
type Snapshotter interface {
	Snapshot() models.GreenhouseState
}

// PumpInfo is what monitoring needs to know about a configured pump.
type PumpInfo interface {
	PumpID() int
	Threshold() float64
	AmountML() float64
	NextForcedIn() time.Duration
}

type MonitoringService struct {
	tracker   Snapshotter
	pumps     []PumpInfo
	exclusive map[int]bool
	actuators repository.ActuatorRepo
}

func NewMonitoringService(tracker Snapshotter, pumps []PumpInfo, exclusive map[int]bool, actuators repository.ActuatorRepo) *MonitoringService {
	return &MonitoringService{tracker: tracker, pumps: pumps, exclusive: exclusive, actuators: actuators}
}

// GetState returns the live snapshot with per-pump status. Until the first
// actuator record arrives, the last persisted actuator state is used.
func (s *MonitoringService) GetState(ctx context.Context) (models.GreenhouseState, error) {
	state := s.tracker.Snapshot()

	if state.Actuators == nil && s.actuators != nil {
		last, ok, err := s.actuators.Latest(ctx)
		if err != nil {
			return models.GreenhouseState{}, err
		}
		if ok {
			last.Timestamp = toUTC(last.Timestamp)
			state.Actuators = &last
		}
	}

	state.Pumps = make([]models.PumpStatus, 0, len(s.pumps))
	for _, p := range s.pumps {
		state.Pumps = append(state.Pumps, models.PumpStatus{
			ID:                p.PumpID(),
			Exclusive:         s.exclusive[p.PumpID()],
			MoistureThreshold: p.Threshold(),
			AmountML:          p.AmountML(),
			NextForcedIn:      p.NextForcedIn(),
		})
	}
	sort.Slice(state.Pumps, func(i, j int) bool { return state.Pumps[i].ID < state.Pumps[j].ID })

	state.StartedAt = toUTC(state.StartedAt)
	state.UpdatedAt = toUTC(state.UpdatedAt)
	return state, nil
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
