// internal/scheduler/triggers.go
//
// Pure trigger evaluation: given "now" and a task's deadline fields, decide
// which threshold is due. No repository access happens here.
package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/apperrors"
)

// timeThresholds are the exact minutes-before-deadline marks that fire for
// tasks with a deadline time of day.
var timeThresholds = []int{15, 5, 1}

// minuteBeforeDue reports whether deadline falls inside the window centered
// one minute ahead of now: [now+60s-tolerance, now+60s+tolerance]. The window
// compensates for the ~60s polling granularity; both bounds are inclusive.
func minuteBeforeDue(now, deadline time.Time, tolerance time.Duration) bool {
	lower := now.Add(time.Minute - tolerance)
	upper := now.Add(time.Minute + tolerance)
	return !deadline.Before(lower) && !deadline.After(upper)
}

// sameCalendarDay reports whether a and b fall on the same calendar day in loc.
func sameCalendarDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// parseClock parses a strict "HH:MM" string. Anything else (wrong shape,
// hour/minute out of range) is a validation error scoped to one task.
func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("deadline time %q is not HH:MM: %w", s, apperrors.ErrValidation)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("deadline time %q: bad hour: %w", s, apperrors.ErrValidation)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("deadline time %q: bad minute: %w", s, apperrors.ErrValidation)
	}
	return hour, minute, nil
}

// timeOfDayMinutesBefore combines today's date (in loc) with the task's
// "HH:MM" deadline time and returns the whole minutes remaining until that
// instant. Negative values mean the instant already passed.
func timeOfDayMinutesBefore(now time.Time, clock string, loc *time.Location) (int, error) {
	hour, minute, err := parseClock(clock)
	if err != nil {
		return 0, err
	}
	y, m, d := now.In(loc).Date()
	exact := time.Date(y, m, d, hour, minute, 0, 0, loc)
	return int(exact.Sub(now) / time.Minute), nil
}

// isTimeThreshold reports whether minutesBefore is exactly one of the
// configured marks. Strict equality, not a range: the fine sweep runs every
// minute, so each mark is observed on exactly one tick.
func isTimeThreshold(minutesBefore int) bool {
	if minutesBefore <= 0 {
		return false
	}
	for _, t := range timeThresholds {
		if minutesBefore == t {
			return true
		}
	}
	return false
}

func thresholdLabel(minutesBefore int) string {
	if minutesBefore == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutesBefore)
}
