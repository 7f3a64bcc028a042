package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"greenhouse/internal/clock"
	"greenhouse/internal/models"
)

type sliceRecorder struct{ recs []models.Record }

func (r *sliceRecorder) Push(rec models.Record) { r.recs = append(r.recs, rec) }

type stubMoisture struct {
	v   float64
	err error
}

func (s stubMoisture) Moisture(context.Context) (float64, error) { return s.v, s.err }

type stubManager struct {
	id     int
	ml     float64
	err    error
	seenMC []float64
}

func (m *stubManager) PumpID() int { return m.id }

func (m *stubManager) PumpIfNeeded(ctx context.Context, moisture float64) (float64, error) {
	m.seenMC = append(m.seenMC, moisture)
	return m.ml, m.err
}

func newFactory(rec Recorder) *Factory {
	return NewFactory(clock.NewFake(t0), time.Minute, rec, nil, nil)
}

func TestSoilWatering_RecordsReadingThenEvent(t *testing.T) {
	rec := &sliceRecorder{}
	mgr := &stubManager{id: 2, ml: 200}
	p := newFactory(rec).SoilWatering(stubMoisture{v: 12}, mgr)

	if err := p.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(rec.recs) != 2 {
		t.Fatalf("records = %v", rec.recs)
	}
	r, ok := rec.recs[0].(models.Reading)
	if !ok || r.Kind != models.KindSoilMoisture || r.Value != 12 || !r.Timestamp.Equal(t0) {
		t.Fatalf("first record = %#v", rec.recs[0])
	}
	ev, ok := rec.recs[1].(models.WateringEvent)
	if !ok || ev.PumpID != 2 || ev.VolumeML != 200 || ev.EventID == "" {
		t.Fatalf("second record = %#v", rec.recs[1])
	}
	if len(mgr.seenMC) != 1 || mgr.seenMC[0] != 12 {
		t.Fatalf("manager saw %v", mgr.seenMC)
	}
	if p.Name() != "soil_watering_2" {
		t.Fatalf("name = %q", p.Name())
	}
}

func TestSoilWatering_NoEventWhenNothingPumped(t *testing.T) {
	rec := &sliceRecorder{}
	p := newFactory(rec).SoilWatering(stubMoisture{v: 60}, &stubManager{})
	if err := p.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(rec.recs) != 1 {
		t.Fatalf("records = %v", rec.recs)
	}
}

func TestSoilWatering_Errors(t *testing.T) {
	rec := &sliceRecorder{}
	f := newFactory(rec)

	if err := f.SoilWatering(stubMoisture{err: errors.New("ble")}, &stubManager{}).tick(context.Background()); err == nil {
		t.Fatal("sensor error should fail the tick")
	}
	if len(rec.recs) != 0 {
		t.Fatal("nothing should be recorded on a sensor error")
	}

	err := f.SoilWatering(stubMoisture{v: 5}, &stubManager{err: errors.New("pump")}).tick(context.Background())
	if err == nil {
		t.Fatal("pump error should fail the tick")
	}
	if len(rec.recs) != 1 {
		t.Fatal("the moisture reading is kept when pumping fails")
	}
}

func TestReadingPoller(t *testing.T) {
	rec := &sliceRecorder{}
	p := newFactory(rec).Reading(models.KindHumidity, func(context.Context) (float64, error) { return 71.5, nil })
	if err := p.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	r := rec.recs[0].(models.Reading)
	if r.Kind != models.KindHumidity || r.Value != 71.5 {
		t.Fatalf("reading = %#v", r)
	}
}

type stubActuators struct{ st models.ActuatorState }

func (s stubActuators) Actuators(context.Context) (models.ActuatorState, error) { return s.st, nil }

func TestActuatorPoller_StampsNow(t *testing.T) {
	rec := &sliceRecorder{}
	old := models.ActuatorState{Timestamp: t0.Add(-time.Hour), WindowPosition: 40, PumpBits: 1}
	p := newFactory(rec).Actuators(stubActuators{st: old})
	if err := p.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	st := rec.recs[0].(models.ActuatorState)
	if !st.Timestamp.Equal(t0) || st.WindowPosition != 40 || !st.PumpOn(0) {
		t.Fatalf("state = %#v", st)
	}
}

type stubCamera struct{ calls int }

func (s *stubCamera) SavePhoto(context.Context) (string, error) {
	s.calls++
	return "x.jpg", nil
}

func TestCameraPoller(t *testing.T) {
	rec := &sliceRecorder{}
	cam := &stubCamera{}
	p := newFactory(rec).Camera(cam)
	if err := p.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if cam.calls != 1 || len(rec.recs) != 0 {
		t.Fatalf("calls=%d records=%d", cam.calls, len(rec.recs))
	}
}
