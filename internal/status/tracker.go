// Package status keeps the latest stored value of every record kind in
// memory for the API.
package status

import (
	"sync"
	"time"

	"greenhouse/internal/models"
)

// Tracker is written by the record processor and read by HTTP handlers.
type Tracker struct {
	mu        sync.RWMutex
	readings  map[models.RecordKind]models.Reading
	waterings map[int]models.WateringEvent
	actuators *models.ActuatorState
	startedAt time.Time
	updatedAt time.Time
}

func NewTracker(startedAt time.Time) *Tracker {
	return &Tracker{
		readings:  make(map[models.RecordKind]models.Reading),
		waterings: make(map[int]models.WateringEvent),
		startedAt: startedAt,
	}
}

// Observe records rec if it is newer than what is already held for its kind.
func (t *Tracker) Observe(rec models.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch r := rec.(type) {
	case models.Reading:
		if cur, ok := t.readings[r.Kind]; ok && cur.Timestamp.After(r.Timestamp) {
			return
		}
		t.readings[r.Kind] = r
	case models.WateringEvent:
		if cur, ok := t.waterings[r.PumpID]; ok && cur.Timestamp.After(r.Timestamp) {
			return
		}
		t.waterings[r.PumpID] = r
	case models.ActuatorState:
		if t.actuators != nil && t.actuators.Timestamp.After(r.Timestamp) {
			return
		}
		t.actuators = &r
	default:
		return
	}
	if rec.RecordTime().After(t.updatedAt) {
		t.updatedAt = rec.RecordTime()
	}
}

// Snapshot returns a copy safe to hand to other goroutines. Pumps is left
// empty for the caller to fill.
func (t *Tracker) Snapshot() models.GreenhouseState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st := models.GreenhouseState{
		Readings:  make(map[models.RecordKind]models.Reading, len(t.readings)),
		Waterings: make(map[int]models.WateringEvent, len(t.waterings)),
		StartedAt: t.startedAt,
		UpdatedAt: t.updatedAt,
	}
	for k, v := range t.readings {
		st.Readings[k] = v
	}
	for k, v := range t.waterings {
		st.Waterings[k] = v
	}
	if t.actuators != nil {
		a := *t.actuators
		st.Actuators = &a
	}
	return st
}
