package models

import "time"

// GreenhouseState is the live snapshot served by the API.
type GreenhouseState struct {
	Readings  map[RecordKind]Reading `json:"readings"`
	Waterings map[int]WateringEvent  `json:"last_waterings"`
	Actuators *ActuatorState         `json:"actuators,omitempty"`
	Pumps     []PumpStatus           `json:"pumps"`
	StartedAt time.Time              `json:"started_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// PumpStatus describes one configured pump.
type PumpStatus struct {
	ID                int           `json:"id"`
	Exclusive         bool          `json:"exclusive"`
	MoistureThreshold float64       `json:"moisture_threshold"`
	AmountML          float64       `json:"amount_ml"`
	NextForcedIn      time.Duration `json:"next_forced_in_ns"`
}
