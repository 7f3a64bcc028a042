package service

import (
	"context"

	"greenhouse/internal/clock"
	"greenhouse/internal/logger"
	"greenhouse/internal/models"
	"greenhouse/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Monitoring exposes the live greenhouse snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (models.GreenhouseState, error)
}

// History exposes read-only access to stored records.
type History interface {
	Readings(ctx context.Context, kind string, f HistoryFilter) ([]models.Reading, error)
	Waterings(ctx context.Context, pumpID *int, f HistoryFilter) ([]models.WateringEvent, error)
	Actuators(ctx context.Context, f HistoryFilter) ([]models.ActuatorState, error)
}

// Watering runs a pump on operator request.
type Watering interface {
	WaterNow(ctx context.Context, pumpID int, amountML float64) (models.WateringEvent, error)
}

type Service struct {
	Monitoring
	History
	Watering
	Authorization
}

// Pump is a configured pump as the API layer sees it.
type Pump interface {
	PumpInfo
	ManualPump
}

// Deps are the runtime pieces the services read from or drive.
type Deps struct {
	Tracker     Snapshotter
	Pumps       []Pump
	Exclusive   map[int]bool
	ManualMaxML float64 // caps one manual watering request
	Recorder    Recorder
	Auth        AuthConfig
	Clock       clock.Clock
	Log         *logger.Logger
}

func NewService(repos *repository.Repository, d Deps) *Service {
	info := make([]PumpInfo, 0, len(d.Pumps))
	manual := make([]ManualPump, 0, len(d.Pumps))
	for _, p := range d.Pumps {
		info = append(info, p)
		manual = append(manual, p)
	}
	return &Service{
		Monitoring:    NewMonitoringService(d.Tracker, info, d.Exclusive, repos.Actuators),
		History:       NewHistoryService(repos),
		Watering:      NewWateringService(manual, d.ManualMaxML, d.Recorder, d.Clock, d.Log),
		Authorization: NewAuthService(repos.Auth, d.Auth, d.Clock),
	}
}
