package pump

import (
	"context"
	"fmt"
	"time"

	"greenhouse/internal/clock"
	"greenhouse/internal/logger"
	"greenhouse/internal/models"
)

// History looks up the most recent watering of a pump.
type History interface {
	Latest(ctx context.Context, pumpID int) (models.WateringEvent, bool, error)
}

// SeedTimer builds the forced-watering timer for a pump so that it expires
// interval after the last persisted watering, or immediately when the pump
// has never run.
func SeedTimer(ctx context.Context, h History, c clock.Clock, pumpID int, interval time.Duration, log *logger.Logger) (*clock.Timer, error) {
	log = logger.OrNop(log)
	timer := clock.NewTimer(c, interval)

	last, ok, err := h.Latest(ctx, pumpID)
	if err != nil {
		return nil, fmt.Errorf("load watering history for pump %d: %w", pumpID, err)
	}
	remaining := time.Duration(0)
	if ok {
		remaining = last.Timestamp.Add(interval).Sub(c.Now())
		if remaining < 0 {
			remaining = 0
		}
		log.Infow("pump_last_watering", "pump_id", pumpID, "at", last.Timestamp)
	} else {
		log.Infow("pump_no_watering_history", "pump_id", pumpID)
	}
	timer.SetRemaining(remaining)
	log.Infow("pump_next_forced_watering", "pump_id", pumpID, "in", remaining)
	return timer, nil
}
