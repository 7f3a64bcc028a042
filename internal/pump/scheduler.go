package pump

import (
	"fmt"
	"strings"
	"time"

	"greenhouse/internal/clock"
)

// SleepWindow is a daily period in which pumps must not run. Start is
// inclusive, End exclusive, both offsets from local midnight. A window with
// End before Start wraps midnight.
type SleepWindow struct {
	Start time.Duration
	End   time.Duration
}

func (w SleepWindow) contains(tod time.Duration) bool {
	if w.End < w.Start {
		return tod >= w.Start || tod < w.End
	}
	return w.Start <= tod && tod < w.End
}

func (w SleepWindow) String() string {
	return fmt.Sprintf("%s-%s", formatTOD(w.Start), formatTOD(w.End))
}

// ParseSleepWindow parses "HH:MM-HH:MM" in 24-hour local time.
func ParseSleepWindow(s string) (SleepWindow, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return SleepWindow{}, fmt.Errorf("sleep window %q: want HH:MM-HH:MM", s)
	}
	start, err := parseTOD(parts[0])
	if err != nil {
		return SleepWindow{}, fmt.Errorf("sleep window %q: %w", s, err)
	}
	end, err := parseTOD(parts[1])
	if err != nil {
		return SleepWindow{}, fmt.Errorf("sleep window %q: %w", s, err)
	}
	return SleepWindow{Start: start, End: end}, nil
}

// ParseSleepWindows parses every entry of list.
func ParseSleepWindows(list []string) ([]SleepWindow, error) {
	out := make([]SleepWindow, 0, len(list))
	for _, s := range list {
		w, err := ParseSleepWindow(s)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func parseTOD(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func formatTOD(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// Scheduler says whether pumps may run at the current local time.
type Scheduler struct {
	clock   clock.Clock
	windows []SleepWindow
}

// NewScheduler evaluates windows against c, which should report local time.
func NewScheduler(c clock.Clock, windows []SleepWindow) *Scheduler {
	return &Scheduler{clock: c, windows: windows}
}

func (s *Scheduler) IsRunningPumpAllowed() bool {
	tod := timeOfDay(s.clock.Now())
	for _, w := range s.windows {
		if w.contains(tod) {
			return false
		}
	}
	return true
}
