package handlers

import (
	"context"
	"net/http"
	"time"

	"greenhouse/internal/models"
	"greenhouse/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockMonitoring struct {
	state models.GreenhouseState
	err   error
	// bump moves UpdatedAt forward on every call, as if new records kept arriving.
	bump  bool
	calls int
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.GreenhouseState, error) {
	m.calls++
	st := m.state
	if m.bump {
		st.UpdatedAt = st.UpdatedAt.Add(time.Duration(m.calls) * time.Second)
	}
	return st, m.err
}

type mockHistory struct {
	readings  []models.Reading
	waterings []models.WateringEvent
	actuators []models.ActuatorState
	err       error

	lastKind   string
	lastPump   *int
	lastFilter service.HistoryFilter
}

func (m *mockHistory) Readings(ctx context.Context, kind string, f service.HistoryFilter) ([]models.Reading, error) {
	m.lastKind = kind
	m.lastFilter = f
	return m.readings, m.err
}

func (m *mockHistory) Waterings(ctx context.Context, pumpID *int, f service.HistoryFilter) ([]models.WateringEvent, error) {
	m.lastPump = pumpID
	m.lastFilter = f
	return m.waterings, m.err
}

func (m *mockHistory) Actuators(ctx context.Context, f service.HistoryFilter) ([]models.ActuatorState, error) {
	m.lastFilter = f
	return m.actuators, m.err
}

type mockWatering struct {
	event models.WateringEvent
	err   error

	calls      int
	lastPump   int
	lastAmount float64
}

func (m *mockWatering) WaterNow(ctx context.Context, pumpID int, amountML float64) (models.WateringEvent, error) {
	m.calls++
	m.lastPump = pumpID
	m.lastAmount = amountML
	return m.event, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
