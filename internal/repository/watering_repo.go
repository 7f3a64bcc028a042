package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"greenhouse/internal/models"
)

type WateringSQLite struct {
	db *sql.DB
}

func NewWateringSQLite(db *sql.DB) *WateringSQLite { return &WateringSQLite{db: db} }

const (
	insertWateringSQL = `INSERT INTO watering_events (id, pump_id, timestamp, water_pumped) VALUES (?, ?, ?, ?)`
	selectWateringSQL = `SELECT id, pump_id, timestamp, water_pumped FROM watering_events`
	latestWateringSQL = selectWateringSQL + ` WHERE pump_id = ? ORDER BY timestamp DESC LIMIT 1`
)

// Insert stores e. An empty EventID is filled in.
func (r *WateringSQLite) Insert(ctx context.Context, e models.WateringEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, insertWateringSQL, e.EventID, e.PumpID, formatTime(e.Timestamp), e.VolumeML)
	if err != nil {
		return fmt.Errorf("insert watering event %s: %w", e.EventID, err)
	}
	return nil
}

// Latest returns the most recent watering of pumpID, if any.
func (r *WateringSQLite) Latest(ctx context.Context, pumpID int) (models.WateringEvent, bool, error) {
	var e models.WateringEvent
	err := r.db.QueryRowContext(ctx, latestWateringSQL, pumpID).Scan(&e.EventID, &e.PumpID, &e.Timestamp, &e.VolumeML)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.WateringEvent{}, false, nil
		}
		return models.WateringEvent{}, false, fmt.Errorf("latest watering for pump %d: %w", pumpID, err)
	}
	e.Timestamp = e.Timestamp.UTC()
	return e, true, nil
}

func (r *WateringSQLite) List(ctx context.Context, f WateringFilter) ([]models.WateringEvent, error) {
	var (
		conds []string
		args  []any
	)
	if f.PumpID != nil {
		conds = append(conds, "pump_id = ?")
		args = append(args, *f.PumpID)
	}
	q, args := withRange(selectWateringSQL, f.ListFilter, conds, args)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list watering events: %w", err)
	}
	defer rows.Close()

	out := make([]models.WateringEvent, 0, 16)
	for rows.Next() {
		var e models.WateringEvent
		if err := rows.Scan(&e.EventID, &e.PumpID, &e.Timestamp, &e.VolumeML); err != nil {
			return nil, err
		}
		e.Timestamp = e.Timestamp.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
