package repository

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"greenhouse/internal/models"
)

func TestActuatorSQLite_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	ts := time.Date(2026, 7, 7, 7, 7, 7, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(insertActuatorSQL)).
		WithArgs("2026-07-07 07:07:07.000", 200, 5).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := NewActuatorSQLite(db).Insert(ctx(t), models.ActuatorState{Timestamp: ts, WindowPosition: 200, PumpBits: 5}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
}

func TestActuatorSQLite_Latest(t *testing.T) {
	db, mock := newMockDB(t)
	ts := time.Date(2026, 7, 7, 7, 7, 7, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(latestActuatorSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"timestamp", "window_position", "pump_bits"}).AddRow(ts, int64(64), int64(2)))

	st, ok, err := NewActuatorSQLite(db).Latest(ctx(t))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if st.WindowPosition != 64 || !st.PumpOn(1) || !st.Timestamp.Equal(ts) {
		t.Fatalf("state = %+v", st)
	}
}

func TestActuatorSQLite_LatestEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(latestActuatorSQL)).WillReturnError(sql.ErrNoRows)

	_, ok, err := NewActuatorSQLite(db).Latest(ctx(t))
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}
