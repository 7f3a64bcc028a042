package models

import "time"

// RecordKind names a record variant and the store it belongs to.
type RecordKind string

const (
	KindSoilMoisture    RecordKind = "soil_moisture"
	KindTemperature     RecordKind = "temperature"
	KindHumidity        RecordKind = "humidity"
	KindLight           RecordKind = "light"
	KindSoilTemperature RecordKind = "soil_temperature"
	KindBattery         RecordKind = "battery"
	KindWateringEvent   RecordKind = "watering_event"
	KindActuatorState   RecordKind = "actuator_state"
)

// ReadingKinds lists every kind carried by a Reading, in storage order.
var ReadingKinds = []RecordKind{
	KindSoilMoisture,
	KindTemperature,
	KindHumidity,
	KindLight,
	KindSoilTemperature,
	KindBattery,
}

// IsReadingKind reports whether k is carried by a Reading.
func IsReadingKind(k RecordKind) bool {
	for _, rk := range ReadingKinds {
		if rk == k {
			return true
		}
	}
	return false
}

// Record is the closed set of values that travel through the record queue.
// The unexported method keeps other packages from adding variants.
type Record interface {
	RecordKind() RecordKind
	RecordTime() time.Time
	isRecord()
}

// Reading is one sensor value.
type Reading struct {
	Kind      RecordKind `json:"kind"`
	Timestamp time.Time  `json:"timestamp"`
	Value     float64    `json:"value"`
}

func (r Reading) RecordKind() RecordKind { return r.Kind }
func (r Reading) RecordTime() time.Time  { return r.Timestamp }
func (Reading) isRecord()                {}

// WateringEvent records one completed pump actuation.
type WateringEvent struct {
	EventID   string    `json:"event_id"`
	PumpID    int       `json:"pump_id"`
	Timestamp time.Time `json:"timestamp"`
	VolumeML  float64   `json:"volume_ml"`
}

func (WateringEvent) RecordKind() RecordKind   { return KindWateringEvent }
func (e WateringEvent) RecordTime() time.Time { return e.Timestamp }
func (WateringEvent) isRecord()               {}

// ActuatorState is the window and pump state reported by the controller.
type ActuatorState struct {
	Timestamp      time.Time `json:"timestamp"`
	WindowPosition uint8     `json:"window_position"`
	// PumpBits has bit i set while pump i runs.
	PumpBits uint8 `json:"pump_bits"`
}

func (ActuatorState) RecordKind() RecordKind   { return KindActuatorState }
func (s ActuatorState) RecordTime() time.Time { return s.Timestamp }
func (ActuatorState) isRecord()               {}

// PumpOn reports whether pump id is running in this snapshot.
func (s ActuatorState) PumpOn(id int) bool {
	if id < 0 || id > 7 {
		return false
	}
	return s.PumpBits&(1<<uint(id)) != 0
}
