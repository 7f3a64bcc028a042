package pump

import (
	"testing"
	"time"

	"greenhouse/internal/clock"
)

func at(h, m int) time.Time {
	return time.Date(2026, time.January, 10, h, m, 0, 0, time.Local)
}

func TestParseSleepWindow(t *testing.T) {
	w, err := ParseSleepWindow("03:15-03:45")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if w.Start != 3*time.Hour+15*time.Minute || w.End != 3*time.Hour+45*time.Minute {
		t.Fatalf("window = %+v", w)
	}
	if w.String() != "03:15-03:45" {
		t.Fatalf("String() = %q", w.String())
	}

	for _, bad := range []string{"", "03:15", "3-4", "25:00-01:00", "03:15-03:99", "a-b-c"} {
		if _, err := ParseSleepWindow(bad); err == nil {
			t.Fatalf("ParseSleepWindow(%q) should fail", bad)
		}
	}
}

func TestScheduler_Windows(t *testing.T) {
	windows, err := ParseSleepWindows([]string{"03:15-03:45", "22:00-06:00"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cases := []struct {
		name    string
		now     time.Time
		allowed bool
	}{
		{"before window", at(3, 14), true},
		{"start inclusive", at(3, 15), false},
		{"inside", at(3, 30), false},
		{"end exclusive", at(3, 45), true},
		{"wrap before midnight", at(23, 0), false},
		{"wrap start", at(22, 0), false},
		{"wrap after midnight", at(1, 0), false},
		{"wrap end exclusive", at(6, 0), true},
		{"midday", at(12, 0), true},
	}
	c := clock.NewFake(at(0, 0))
	s := NewScheduler(c, windows)
	for _, tc := range cases {
		c.Set(tc.now)
		if got := s.IsRunningPumpAllowed(); got != tc.allowed {
			t.Fatalf("%s: allowed=%v, want %v", tc.name, got, tc.allowed)
		}
	}
}

func TestScheduler_NoWindowsAlwaysAllowed(t *testing.T) {
	s := NewScheduler(clock.NewFake(at(3, 0)), nil)
	if !s.IsRunningPumpAllowed() {
		t.Fatal("no windows should always allow")
	}
}

func TestScheduler_SecondsCount(t *testing.T) {
	w, _ := ParseSleepWindow("10:00-10:01")
	c := clock.NewFake(time.Date(2026, 1, 1, 10, 0, 59, 0, time.Local))
	s := NewScheduler(c, []SleepWindow{w})
	if s.IsRunningPumpAllowed() {
		t.Fatal("10:00:59 is inside 10:00-10:01")
	}
	c.Advance(time.Second)
	if !s.IsRunningPumpAllowed() {
		t.Fatal("10:01:00 is at the exclusive end")
	}
}
