package service

import (
	"context"
	"errors"
	"fmt"

	"greenhouse/internal/clock"
	"greenhouse/internal/logger"
	"greenhouse/internal/models"

	"github.com/google/uuid"
)

const defaultManualMaxML = 2000.0

var (
	ErrUnknownPump = errors.New("unknown pump")
	// ErrPumpBusy means another pump held the lock and nothing was pumped.
	ErrPumpBusy = errors.New("pump busy")
	// ErrAmountTooLarge means a manual request asked for more than the
	// configured per-request limit.
	ErrAmountTooLarge = errors.New("amount exceeds manual watering limit")
)

// ManualPump runs a pump on request.
type ManualPump interface {
	PumpID() int
	AmountML() float64
	WaterNow(ctx context.Context, amountML float64) (float64, error)
}

// Recorder accepts records for the processor.
type Recorder interface {
	Push(rec models.Record)
}

// WateringService runs pumps on operator request. The resulting event goes
// through the record queue like any other watering.
type WateringService struct {
	pumps    map[int]ManualPump
	maxML    float64
	recorder Recorder
	clock    clock.Clock
	log      *logger.Logger
}

// NewWateringService caps every request at maxML; a non-positive maxML
// means 2000 mL.
func NewWateringService(pumps []ManualPump, maxML float64, recorder Recorder, c clock.Clock, log *logger.Logger) *WateringService {
	byID := make(map[int]ManualPump, len(pumps))
	for _, p := range pumps {
		byID[p.PumpID()] = p
	}
	if maxML <= 0 {
		maxML = defaultManualMaxML
	}
	return &WateringService{pumps: byID, maxML: maxML, recorder: recorder, clock: c, log: logger.OrNop(log)}
}

// WaterNow pumps amountML through pump id, or the pump's configured amount
// when amountML is 0. It blocks until the pump is off again.
func (s *WateringService) WaterNow(ctx context.Context, pumpID int, amountML float64) (models.WateringEvent, error) {
	p, ok := s.pumps[pumpID]
	if !ok {
		return models.WateringEvent{}, fmt.Errorf("%w: %d", ErrUnknownPump, pumpID)
	}
	if amountML == 0 {
		amountML = p.AmountML()
	}
	if amountML > s.maxML {
		return models.WateringEvent{}, fmt.Errorf("%w: %v mL requested, limit %v mL", ErrAmountTooLarge, amountML, s.maxML)
	}

	ml, err := p.WaterNow(ctx, amountML)
	if err != nil {
		return models.WateringEvent{}, err
	}
	if ml == 0 {
		return models.WateringEvent{}, fmt.Errorf("%w: %d", ErrPumpBusy, pumpID)
	}

	ev := models.WateringEvent{
		EventID:   uuid.NewString(),
		PumpID:    pumpID,
		Timestamp: s.clock.Now().UTC(),
		VolumeML:  ml,
	}
	s.recorder.Push(ev)
	s.log.Infow("manual_watering", "pump_id", pumpID, "volume_ml", ml, "event_id", ev.EventID)
	return ev, nil
}
