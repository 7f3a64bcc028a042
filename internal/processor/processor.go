// Package processor is the single consumer of the record queue. It owns every
// storage write.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenhouse/internal/logger"
	"greenhouse/internal/metrics"
	"greenhouse/internal/models"
	"greenhouse/internal/sink"
)

// ErrUnsupportedRecord means a record kind has no store. It is a programming
// error and stops Run.
var ErrUnsupportedRecord = errors.New("unsupported record")

// IdleWait bounds how long Run sleeps on an empty queue.
const IdleWait = 100 * time.Millisecond

type Source interface {
	TryPop() (models.Record, bool)
	Ready() <-chan struct{}
}

type ReadingStore interface {
	Insert(ctx context.Context, r models.Reading) error
}

type WateringStore interface {
	Insert(ctx context.Context, e models.WateringEvent) error
}

type ActuatorStore interface {
	Insert(ctx context.Context, s models.ActuatorState) error
}

// Stores maps each record kind to exactly one store.
type Stores struct {
	Readings  map[models.RecordKind]ReadingStore
	Waterings WateringStore
	Actuators ActuatorStore
}

// Observer is told about every stored record.
type Observer interface {
	Observe(rec models.Record)
}

type Processor struct {
	source   Source
	stores   Stores
	sinks    []sink.Sink
	observer Observer
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func New(source Source, stores Stores, sinks []sink.Sink, observer Observer, log *logger.Logger, m *metrics.Metrics) *Processor {
	return &Processor{
		source:   source,
		stores:   stores,
		sinks:    sinks,
		observer: observer,
		log:      logger.OrNop(log),
		metrics:  m,
	}
}

// TryProcessNextRecord stores the oldest queued record. It reports false at
// once when the queue is empty. A failed insert is logged and the record
// dropped; only ErrUnsupportedRecord is returned.
func (p *Processor) TryProcessNextRecord(ctx context.Context) (bool, error) {
	rec, ok := p.source.TryPop()
	if !ok {
		return false, nil
	}
	kind := rec.RecordKind()

	err := p.store(ctx, rec)
	if errors.Is(err, ErrUnsupportedRecord) {
		p.log.Errorw("record_unsupported", "kind", kind, "record", rec)
		return false, err
	}
	if err != nil {
		p.log.Errorw("record_store_failed", "kind", kind, "err", err)
		p.metrics.RecordDropped(string(kind))
		return true, nil
	}
	p.metrics.RecordStored(string(kind))

	if p.observer != nil {
		p.observer.Observe(rec)
	}
	for _, s := range p.sinks {
		if err := s.Send(ctx, rec); err != nil {
			p.log.Warnw("sink_send_failed", "sink", s.Name(), "kind", kind, "err", err)
		}
	}
	return true, nil
}

func (p *Processor) store(ctx context.Context, rec models.Record) error {
	switch r := rec.(type) {
	case models.Reading:
		s, ok := p.stores.Readings[r.Kind]
		if !ok || s == nil {
			return fmt.Errorf("%w: reading kind %q", ErrUnsupportedRecord, r.Kind)
		}
		return s.Insert(ctx, r)
	case models.WateringEvent:
		if p.stores.Waterings == nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedRecord, r.RecordKind())
		}
		return p.stores.Waterings.Insert(ctx, r)
	case models.ActuatorState:
		if p.stores.Actuators == nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedRecord, r.RecordKind())
		}
		return p.stores.Actuators.Insert(ctx, r)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedRecord, rec)
	}
}

// Run processes records until ctx ends or an unsupported record arrives.
func (p *Processor) Run(ctx context.Context) error {
	idle := time.NewTimer(IdleWait)
	defer idle.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		processed, err := p.TryProcessNextRecord(ctx)
		if err != nil {
			return err
		}
		if processed {
			continue
		}

		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(IdleWait)
		select {
		case <-ctx.Done():
			return nil
		case <-p.source.Ready():
		case <-idle.C:
		}
	}
}

// Drain stores everything still queued and returns how many records it took.
func (p *Processor) Drain(ctx context.Context) (int, error) {
	n := 0
	for {
		processed, err := p.TryProcessNextRecord(ctx)
		if err != nil {
			return n, err
		}
		if !processed {
			return n, nil
		}
		n++
	}
}
