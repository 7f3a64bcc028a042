package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"greenhouse/internal/models"
)

type ActuatorSQLite struct {
	db *sql.DB
}

func NewActuatorSQLite(db *sql.DB) *ActuatorSQLite { return &ActuatorSQLite{db: db} }

const (
	insertActuatorSQL = `INSERT INTO actuator_states (timestamp, window_position, pump_bits) VALUES (?, ?, ?)`
	selectActuatorSQL = `SELECT timestamp, window_position, pump_bits FROM actuator_states`
	latestActuatorSQL = selectActuatorSQL + ` ORDER BY timestamp DESC LIMIT 1`
)

func (r *ActuatorSQLite) Insert(ctx context.Context, s models.ActuatorState) error {
	_, err := r.db.ExecContext(ctx, insertActuatorSQL, formatTime(s.Timestamp), int(s.WindowPosition), int(s.PumpBits))
	if err != nil {
		return fmt.Errorf("insert actuator state: %w", err)
	}
	return nil
}

// Latest returns the newest snapshot, or false when none is stored.
func (r *ActuatorSQLite) Latest(ctx context.Context) (models.ActuatorState, bool, error) {
	s, err := scanActuator(r.db.QueryRowContext(ctx, latestActuatorSQL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ActuatorState{}, false, nil
		}
		return models.ActuatorState{}, false, fmt.Errorf("latest actuator state: %w", err)
	}
	return s, true, nil
}

func (r *ActuatorSQLite) List(ctx context.Context, f ListFilter) ([]models.ActuatorState, error) {
	q, args := withRange(selectActuatorSQL, f, nil, nil)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list actuator states: %w", err)
	}
	defer rows.Close()

	out := make([]models.ActuatorState, 0, 64)
	for rows.Next() {
		s, err := scanActuator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActuator(row scanner) (models.ActuatorState, error) {
	var (
		s             models.ActuatorState
		window, pumps int64
	)
	if err := row.Scan(&s.Timestamp, &window, &pumps); err != nil {
		return models.ActuatorState{}, err
	}
	s.Timestamp = s.Timestamp.UTC()
	s.WindowPosition = uint8(window)
	s.PumpBits = uint8(pumps)
	return s, nil
}
