package status

import (
	"sync"
	"testing"
	"time"

	"greenhouse/internal/models"
)

var t0 = time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)

func TestTracker_KeepsLatestPerKind(t *testing.T) {
	tr := NewTracker(t0)
	tr.Observe(models.Reading{Kind: models.KindTemperature, Timestamp: t0.Add(2 * time.Minute), Value: 24})
	tr.Observe(models.Reading{Kind: models.KindTemperature, Timestamp: t0.Add(time.Minute), Value: 19})
	tr.Observe(models.Reading{Kind: models.KindHumidity, Timestamp: t0.Add(time.Minute), Value: 60})
	tr.Observe(models.WateringEvent{PumpID: 1, Timestamp: t0.Add(3 * time.Minute), VolumeML: 200})
	tr.Observe(models.ActuatorState{Timestamp: t0.Add(time.Minute), WindowPosition: 90})

	st := tr.Snapshot()
	if st.Readings[models.KindTemperature].Value != 24 {
		t.Fatalf("temperature = %v, older reading should not win", st.Readings[models.KindTemperature].Value)
	}
	if st.Readings[models.KindHumidity].Value != 60 {
		t.Fatal("humidity missing")
	}
	if st.Waterings[1].VolumeML != 200 {
		t.Fatal("watering missing")
	}
	if st.Actuators == nil || st.Actuators.WindowPosition != 90 {
		t.Fatal("actuators missing")
	}
	if !st.UpdatedAt.Equal(t0.Add(3*time.Minute)) || !st.StartedAt.Equal(t0) {
		t.Fatalf("times = %v / %v", st.StartedAt, st.UpdatedAt)
	}
}

func TestTracker_SnapshotIsACopy(t *testing.T) {
	tr := NewTracker(t0)
	tr.Observe(models.ActuatorState{Timestamp: t0, WindowPosition: 10})
	st := tr.Snapshot()
	st.Actuators.WindowPosition = 200
	st.Readings[models.KindLight] = models.Reading{}

	again := tr.Snapshot()
	if again.Actuators.WindowPosition != 10 || len(again.Readings) != 0 {
		t.Fatal("snapshot shares memory with the tracker")
	}
}

func TestTracker_ConcurrentUse(t *testing.T) {
	tr := NewTracker(t0)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Observe(models.Reading{Kind: models.KindLight, Timestamp: t0.Add(time.Duration(j) * time.Second), Value: float64(i)})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = tr.Snapshot()
			}
		}()
	}
	wg.Wait()
	if !tr.Snapshot().UpdatedAt.Equal(t0.Add(99 * time.Second)) {
		t.Fatal("latest timestamp lost")
	}
}
