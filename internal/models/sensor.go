package models

// SensorValues is one bundle read from the microcontroller.
type SensorValues struct {
	Humidity    float64       `json:"humidity"`
	Temperature float64       `json:"temperature"`
	Actuators   ActuatorState `json:"actuators"`
}

// SoilValues is one bundle read from the Bluetooth soil sensor.
type SoilValues struct {
	Moisture     float64 `json:"moisture"`
	Temperature  float64 `json:"temperature"`
	Light        float64 `json:"light"`
	Conductivity float64 `json:"conductivity"`
	Battery      float64 `json:"battery"`
}
