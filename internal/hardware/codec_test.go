package hardware

import (
	"math"
	"testing"
	"time"

	"greenhouse/internal/models"
)

func TestDecodeSensorFrame_KnownBytes(t *testing.T) {
	// 55.5 and 23.25 as little-endian float32, window 128, pumps 0 and 2 on.
	frame := []byte{0x00, 0x00, 0x5e, 0x42, 0x00, 0x00, 0xba, 0x41, 0x80, 0x05}
	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	v, err := DecodeSensorFrame(frame, ts)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Humidity != 55.5 || v.Temperature != 23.25 {
		t.Fatalf("values = %+v", v)
	}
	if v.Actuators.WindowPosition != 128 || !v.Actuators.PumpOn(0) || v.Actuators.PumpOn(1) || !v.Actuators.PumpOn(2) {
		t.Fatalf("actuators = %+v", v.Actuators)
	}
	if !v.Actuators.Timestamp.Equal(ts) {
		t.Fatalf("timestamp = %v", v.Actuators.Timestamp)
	}
}

func TestDecodeSensorFrame_Rejects(t *testing.T) {
	if _, err := DecodeSensorFrame([]byte{1, 2, 3}, time.Time{}); err == nil {
		t.Fatal("short frame should fail")
	}
	nan := EncodeSensorFrame(models.SensorValues{Humidity: math.NaN(), Temperature: 20})
	if _, err := DecodeSensorFrame(nan, time.Time{}); err == nil {
		t.Fatal("NaN humidity should fail")
	}
}

func TestEncodeSensorFrame_RoundTrip(t *testing.T) {
	in := models.SensorValues{
		Humidity:    40.5,
		Temperature: -2.75,
		Actuators:   models.ActuatorState{WindowPosition: 7, PumpBits: 0x02},
	}
	out, err := DecodeSensorFrame(EncodeSensorFrame(in), time.Time{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip: got %+v want %+v", out, in)
	}
}

func TestEncodeCommand(t *testing.T) {
	b, err := EncodeCommand(TagPumpOn, 3)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(b) != 2 || b[0] != 'a' || b[1] != 3 {
		t.Fatalf("command = %v", b)
	}
	if _, err := EncodeCommand(TagPumpOff, 300); err == nil {
		t.Fatal("pump id above 255 should fail")
	}
	if _, err := EncodeCommand(TagPumpOff, -1); err == nil {
		t.Fatal("negative pump id should fail")
	}
}

func TestRelayLevel(t *testing.T) {
	if (RelayConfig{}).level(true) != 1 || (RelayConfig{}).level(false) != 0 {
		t.Fatal("active-high levels wrong")
	}
	low := RelayConfig{ActiveLow: true}
	if low.level(true) != 0 || low.level(false) != 1 {
		t.Fatal("active-low levels wrong")
	}
	if _, err := relayOn('x'); err == nil {
		t.Fatal("unknown tag should fail")
	}
}
