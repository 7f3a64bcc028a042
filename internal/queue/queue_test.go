package queue

import (
	"sync"
	"testing"
	"time"

	"greenhouse/internal/models"
)

func reading(v float64) models.Reading {
	return models.Reading{Kind: models.KindTemperature, Timestamp: time.Unix(int64(v), 0), Value: v}
}

func TestQueue_FIFO(t *testing.T) {
	q := New()
	if _, ok := q.TryPop(); ok {
		t.Fatal("empty queue should pop nothing")
	}
	for i := 0; i < 5; i++ {
		q.Push(reading(float64(i)))
	}
	if q.Len() != 5 {
		t.Fatalf("len = %d", q.Len())
	}
	for i := 0; i < 5; i++ {
		rec, ok := q.TryPop()
		if !ok {
			t.Fatalf("pop %d: empty", i)
		}
		if got := rec.(models.Reading).Value; got != float64(i) {
			t.Fatalf("pop %d: got %v", i, got)
		}
	}
	if q.Len() != 0 {
		t.Fatal("queue should be empty")
	}
}

func TestQueue_ReadySignals(t *testing.T) {
	q := New()
	select {
	case <-q.Ready():
		t.Fatal("ready before any push")
	default:
	}
	q.Push(reading(1))
	q.Push(reading(2))
	select {
	case <-q.Ready():
	default:
		t.Fatal("push should signal ready")
	}
}

func TestQueue_ConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	q := New()
	const producers, perProducer = 8, 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(models.WateringEvent{PumpID: p, VolumeML: float64(i)})
			}
		}(p)
	}
	wg.Wait()

	last := make(map[int]float64)
	for p := 0; p < producers; p++ {
		last[p] = -1
	}
	n := 0
	for {
		rec, ok := q.TryPop()
		if !ok {
			break
		}
		ev := rec.(models.WateringEvent)
		if ev.VolumeML <= last[ev.PumpID] {
			t.Fatalf("producer %d out of order: %v after %v", ev.PumpID, ev.VolumeML, last[ev.PumpID])
		}
		last[ev.PumpID] = ev.VolumeML
		n++
	}
	if n != producers*perProducer {
		t.Fatalf("popped %d records, want %d", n, producers*perProducer)
	}
}
