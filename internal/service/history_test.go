package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"greenhouse/internal/models"
	"greenhouse/internal/repository"
)

// fakeReadingRepo captures the filter it was queried with.
type fakeReadingRepo struct {
	got      repository.ListFilter
	readings []models.Reading
	err      error
	calls    int
}

func (f *fakeReadingRepo) Insert(ctx context.Context, r models.Reading) error { return nil }

func (f *fakeReadingRepo) List(ctx context.Context, lf repository.ListFilter) ([]models.Reading, error) {
	f.calls++
	f.got = lf
	return f.readings, f.err
}

type fakeWateringRepo struct {
	got    repository.WateringFilter
	events []models.WateringEvent
	err    error
	calls  int
}

func (f *fakeWateringRepo) Insert(ctx context.Context, e models.WateringEvent) error { return nil }

func (f *fakeWateringRepo) Latest(ctx context.Context, pumpID int) (models.WateringEvent, bool, error) {
	return models.WateringEvent{}, false, nil
}

func (f *fakeWateringRepo) List(ctx context.Context, wf repository.WateringFilter) ([]models.WateringEvent, error) {
	f.calls++
	f.got = wf
	return f.events, f.err
}

type fakeActuatorRepo struct {
	latest models.ActuatorState
	ok     bool
	err    error
	got    repository.ListFilter
}

func (f *fakeActuatorRepo) Insert(ctx context.Context, s models.ActuatorState) error { return nil }

func (f *fakeActuatorRepo) Latest(ctx context.Context) (models.ActuatorState, bool, error) {
	return f.latest, f.ok, f.err
}

func (f *fakeActuatorRepo) List(ctx context.Context, lf repository.ListFilter) ([]models.ActuatorState, error) {
	f.got = lf
	return nil, f.err
}

func newHistory(temp *fakeReadingRepo, w *fakeWateringRepo, a *fakeActuatorRepo) *HistoryService {
	return NewHistoryService(&repository.Repository{
		Readings:  map[models.RecordKind]repository.ReadingRepo{models.KindTemperature: temp},
		Waterings: w,
		Actuators: a,
	})
}

func fixedZone(name string, offsetSec int) *time.Location {
	return time.FixedZone(name, offsetSec)
}

func mustTimeIn(loc *time.Location, y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, loc)
}

func Test_normalizeToUTC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want func(time.Time) bool
	}{
		{
			name: "zero time remains zero",
			in:   time.Time{},
			want: func(out time.Time) bool { return out.IsZero() },
		},
		{
			name: "non-UTC converted to UTC preserving instant",
			in:   mustTimeIn(fixedZone("UTC+3", 3*3600), 2025, time.August, 1, 12, 34, 56),
			want: func(out time.Time) bool {
				exp := time.Date(2025, time.August, 1, 9, 34, 56, 0, time.UTC)
				return out.Location() == time.UTC && out.Equal(exp)
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := normalizeToUTC(tc.in)
			if !tc.want(got) {
				t.Fatalf("unexpected normalizeToUTC result: %v (loc=%v)", got, got.Location())
			}
		})
	}
}

func Test_normalizeKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in  string
		exp models.RecordKind
	}{
		{"", ""},
		{"  temperature ", models.KindTemperature},
		{"SOIL_MOISTURE", models.KindSoilMoisture},
	}
	for _, c := range cases {
		if got := normalizeKind(c.in); got != c.exp {
			t.Fatalf("normalizeKind(%q) = %q; want %q", c.in, got, c.exp)
		}
	}
}

func Test_normalizeAndValidateFilter(t *testing.T) {
	t.Parallel()

	fromLocal := mustTimeIn(fixedZone("UTC+2", 2*3600), 2025, time.September, 10, 10, 0, 0)
	toUTC := time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      HistoryFilter
		want    repository.ListFilter
		wantErr error
	}{
		{
			name: "all zero ok",
			in:   HistoryFilter{},
		},
		{
			name: "from after to",
			in: HistoryFilter{
				From: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC),
			},
			wantErr: errInvalidTimeRange,
		},
		{
			name: "normalize tz and keep limit",
			in:   HistoryFilter{From: fromLocal, To: toUTC, Limit: 20},
			want: repository.ListFilter{
				From:  time.Date(2025, time.September, 10, 8, 0, 0, 0, time.UTC),
				To:    toUTC,
				Limit: 20,
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := normalizeAndValidateFilter(tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected err %v; got %v", tc.wantErr, err)
			}
			if !got.From.Equal(tc.want.From) || !got.To.Equal(tc.want.To) || got.Limit != tc.want.Limit {
				t.Fatalf("got %+v; want %+v", got, tc.want)
			}
		})
	}
}

func TestHistoryService_Readings_DelegatesNormalizedFilter(t *testing.T) {
	temp := &fakeReadingRepo{readings: []models.Reading{{Kind: models.KindTemperature, Value: 21}}}
	svc := newHistory(temp, &fakeWateringRepo{}, &fakeActuatorRepo{})

	from := mustTimeIn(fixedZone("UTC+5", 5*3600), 2025, time.October, 1, 10, 0, 0)
	out, err := svc.Readings(context.Background(), " Temperature", HistoryFilter{From: from, Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Value != 21 {
		t.Fatalf("unexpected readings: %+v", out)
	}
	if want := time.Date(2025, time.October, 1, 5, 0, 0, 0, time.UTC); !temp.got.From.Equal(want) {
		t.Fatalf("repo got from=%v; want %v", temp.got.From, want)
	}
	if temp.got.Limit != 3 {
		t.Fatalf("repo got limit=%d; want 3", temp.got.Limit)
	}
}

func TestHistoryService_Readings_UnknownKind(t *testing.T) {
	temp := &fakeReadingRepo{}
	svc := newHistory(temp, &fakeWateringRepo{}, &fakeActuatorRepo{})

	_, err := svc.Readings(context.Background(), "pressure", HistoryFilter{})
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind; got %v", err)
	}
	if temp.calls != 0 {
		t.Fatalf("repo should not be called, calls=%d", temp.calls)
	}
}

func TestHistoryService_Readings_ValidationError(t *testing.T) {
	temp := &fakeReadingRepo{}
	svc := newHistory(temp, &fakeWateringRepo{}, &fakeActuatorRepo{})

	_, err := svc.Readings(context.Background(), "temperature", HistoryFilter{
		From: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, errInvalidTimeRange) {
		t.Fatalf("expected errInvalidTimeRange; got %v", err)
	}
	if temp.calls != 0 {
		t.Fatalf("repo should not be called on validation error, calls=%d", temp.calls)
	}
}

func TestHistoryService_Waterings_PassesPumpAndPropagatesError(t *testing.T) {
	w := &fakeWateringRepo{err: errors.New("db down")}
	svc := newHistory(&fakeReadingRepo{}, w, &fakeActuatorRepo{})

	id := 2
	_, err := svc.Waterings(context.Background(), &id, HistoryFilter{})
	if !errors.Is(err, w.err) {
		t.Fatalf("expected repo error to propagate; got %v", err)
	}
	if w.got.PumpID == nil || *w.got.PumpID != 2 {
		t.Fatalf("repo got pump=%v; want 2", w.got.PumpID)
	}
}

func TestHistoryService_Actuators_ZeroBoundsPassedAsZero(t *testing.T) {
	a := &fakeActuatorRepo{}
	svc := newHistory(&fakeReadingRepo{}, &fakeWateringRepo{}, a)

	if _, err := svc.Actuators(context.Background(), HistoryFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.got.From.IsZero() || !a.got.To.IsZero() || a.got.Limit != 0 {
		t.Fatalf("expected zero filter; got %+v", a.got)
	}
}
