package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"greenhouse/internal/models"
	"greenhouse/internal/repository"
)

// HistoryService serves the persisted readings and waterings.
type HistoryService struct {
	readings  map[models.RecordKind]repository.ReadingRepo
	waterings repository.WateringRepo
	actuators repository.ActuatorRepo
}

func NewHistoryService(repos *repository.Repository) *HistoryService {
	return &HistoryService{
		readings:  repos.Readings,
		waterings: repos.Waterings,
		actuators: repos.Actuators,
	}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	// ErrUnknownKind is returned for a reading kind with no store.
	ErrUnknownKind = errors.New("unknown reading kind")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeKind trims spaces and lowercases the kind filter.
func normalizeKind(s string) models.RecordKind {
	return models.RecordKind(strings.TrimSpace(strings.ToLower(s)))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f HistoryFilter) (repository.ListFilter, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.ListFilter{}, errInvalidTimeRange
	}
	return repository.ListFilter{From: from, To: to, Limit: f.Limit}, nil
}

func (s *HistoryService) Readings(ctx context.Context, kind string, f HistoryFilter) ([]models.Reading, error) {
	k := normalizeKind(kind)
	repo, ok := s.readings[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	lf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return repo.List(ctx, lf)
}

// Waterings lists watering events, optionally for a single pump.
func (s *HistoryService) Waterings(ctx context.Context, pumpID *int, f HistoryFilter) ([]models.WateringEvent, error) {
	lf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.waterings.List(ctx, repository.WateringFilter{ListFilter: lf, PumpID: pumpID})
}

func (s *HistoryService) Actuators(ctx context.Context, f HistoryFilter) ([]models.ActuatorState, error) {
	lf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.actuators.List(ctx, lf)
}
