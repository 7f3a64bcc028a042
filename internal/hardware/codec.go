package hardware

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"greenhouse/internal/models"
)

// FrameSize is the length of the sensor response:
// float32 humidity, float32 temperature, window position, pump bits.
const FrameSize = 10

// DecodeSensorFrame parses a little-endian sensor response.
func DecodeSensorFrame(b []byte, ts time.Time) (models.SensorValues, error) {
	if len(b) != FrameSize {
		return models.SensorValues{}, fmt.Errorf("sensor frame: want %d bytes, got %d", FrameSize, len(b))
	}
	hum := math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))
	temp := math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))
	if isBad(hum) || isBad(temp) {
		return models.SensorValues{}, fmt.Errorf("sensor frame: non-finite value (humidity=%v temperature=%v)", hum, temp)
	}
	return models.SensorValues{
		Humidity:    float64(hum),
		Temperature: float64(temp),
		Actuators: models.ActuatorState{
			Timestamp:      ts,
			WindowPosition: b[8],
			PumpBits:       b[9],
		},
	}, nil
}

// EncodeSensorFrame is the inverse of DecodeSensorFrame. The simulator and
// tests use it to produce controller responses.
func EncodeSensorFrame(v models.SensorValues) []byte {
	b := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(float32(v.Humidity)))
	binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(float32(v.Temperature)))
	b[8] = v.Actuators.WindowPosition
	b[9] = v.Actuators.PumpBits
	return b
}

// EncodeCommand builds a two-byte pump command.
func EncodeCommand(tag byte, pumpID int) ([]byte, error) {
	if pumpID < 0 || pumpID > math.MaxUint8 {
		return nil, fmt.Errorf("pump id %d out of range", pumpID)
	}
	return []byte{tag, byte(pumpID)}, nil
}

func isBad(f float32) bool {
	v := float64(f)
	return math.IsNaN(v) || math.IsInf(v, 0)
}
