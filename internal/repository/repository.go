package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"greenhouse/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type ReadingRepo interface {
	Insert(ctx context.Context, r models.Reading) error
	List(ctx context.Context, f ListFilter) ([]models.Reading, error)
}

type WateringRepo interface {
	Insert(ctx context.Context, e models.WateringEvent) error
	Latest(ctx context.Context, pumpID int) (models.WateringEvent, bool, error)
	List(ctx context.Context, f WateringFilter) ([]models.WateringEvent, error)
}

type ActuatorRepo interface {
	Insert(ctx context.Context, s models.ActuatorState) error
	Latest(ctx context.Context) (models.ActuatorState, bool, error)
	List(ctx context.Context, f ListFilter) ([]models.ActuatorState, error)
}

// ListFilter bounds a history query. Zero times are open ends; results are
// newest first.
type ListFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

// WateringFilter narrows watering history to one pump when PumpID is set.
type WateringFilter struct {
	ListFilter
	PumpID *int
}

const (
	DefaultLimit = 500
	MaxLimit     = 10000
)

func (f ListFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	}
	return f.Limit
}

// Timestamps are stored as UTC text so that range queries compare correctly.
const timeLayout = "2006-01-02 15:04:05.000"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

type Repository struct {
	Readings  map[models.RecordKind]ReadingRepo
	Waterings WateringRepo
	Actuators ActuatorRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) (*Repository, error) {
	readings := make(map[models.RecordKind]ReadingRepo, len(models.ReadingKinds))
	for _, k := range models.ReadingKinds {
		r, err := NewReadingSQLite(db, k)
		if err != nil {
			return nil, fmt.Errorf("reading store %s: %w", k, err)
		}
		readings[k] = r
	}
	return &Repository{
		Readings:  readings,
		Waterings: NewWateringSQLite(db),
		Actuators: NewActuatorSQLite(db),
		Auth:      NewOperatorSQLite(db),
	}, nil
}
