package scheduler

import (
	"errors"
	"testing"
	"time"

	"taskboard/internal/apperrors"
)

func TestMinuteBeforeDue(t *testing.T) {
	t.Parallel()
	deadline := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tol := 30 * time.Second

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "exactly one minute before", now: deadline.Add(-60 * time.Second), want: true},
		{name: "window lower edge", now: deadline.Add(-90 * time.Second), want: true},
		{name: "window upper edge", now: deadline.Add(-30 * time.Second), want: true},
		{name: "two minutes before", now: deadline.Add(-120 * time.Second), want: false},
		{name: "just outside lower edge", now: deadline.Add(-91 * time.Second), want: false},
		{name: "just outside upper edge", now: deadline.Add(-29 * time.Second), want: false},
		{name: "already passed", now: deadline.Add(time.Minute), want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := minuteBeforeDue(tt.now, deadline, tol); got != tt.want {
				t.Fatalf("minuteBeforeDue(now=%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestSameCalendarDay(t *testing.T) {
	t.Parallel()
	loc := time.UTC
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, loc)

	if !sameCalendarDay(now, time.Date(2024, 3, 15, 23, 59, 0, 0, loc), loc) {
		t.Fatal("same day, late evening: want true")
	}
	if sameCalendarDay(now, time.Date(2024, 3, 16, 0, 0, 0, 0, loc), loc) {
		t.Fatal("next midnight: want false")
	}
	if sameCalendarDay(now, time.Date(2024, 3, 14, 9, 0, 0, 0, loc), loc) {
		t.Fatal("previous day: want false")
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()
	h, m, err := parseClock("14:30")
	if err != nil {
		t.Fatalf("parseClock(14:30) error: %v", err)
	}
	if h != 14 || m != 30 {
		t.Fatalf("unexpected result: %d:%d", h, m)
	}

	invalid := []string{"14:60", "24:00", "-1:10", "14", "14:30:00", "ab:cd", ""}
	for _, s := range invalid {
		if _, _, err := parseClock(s); err == nil {
			t.Fatalf("parseClock(%q): expected error", s)
		} else if !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("parseClock(%q): error is not ErrValidation: %v", s, err)
		}
	}
}

func TestTimeOfDayThresholds(t *testing.T) {
	t.Parallel()
	loc := time.UTC
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)

	// deadline at 14:30; thresholds must fire at exactly 14:15, 14:25, 14:29
	tests := []struct {
		now         time.Time
		wantMinutes int
		wantFires   bool
	}{
		{now: day.Add(14*time.Hour + 15*time.Minute), wantMinutes: 15, wantFires: true},
		{now: day.Add(14*time.Hour + 25*time.Minute), wantMinutes: 5, wantFires: true},
		{now: day.Add(14*time.Hour + 29*time.Minute), wantMinutes: 1, wantFires: true},
		{now: day.Add(14*time.Hour + 20*time.Minute), wantMinutes: 10, wantFires: false},
		{now: day.Add(14*time.Hour + 14*time.Minute), wantMinutes: 16, wantFires: false},
		{now: day.Add(14*time.Hour + 30*time.Minute), wantMinutes: 0, wantFires: false},
		{now: day.Add(14*time.Hour + 31*time.Minute), wantMinutes: -1, wantFires: false},
	}
	for _, tt := range tests {
		minutes, err := timeOfDayMinutesBefore(tt.now, "14:30", loc)
		if err != nil {
			t.Fatalf("timeOfDayMinutesBefore(now=%v) error: %v", tt.now, err)
		}
		if minutes != tt.wantMinutes {
			t.Fatalf("minutes at %v = %d, want %d", tt.now, minutes, tt.wantMinutes)
		}
		if got := isTimeThreshold(minutes); got != tt.wantFires {
			t.Fatalf("isTimeThreshold(%d) = %v, want %v", minutes, got, tt.wantFires)
		}
	}
}

func TestThresholdLabel(t *testing.T) {
	t.Parallel()
	if got := thresholdLabel(1); got != "1 minute" {
		t.Fatalf("thresholdLabel(1) = %q", got)
	}
	if got := thresholdLabel(15); got != "15 minutes" {
		t.Fatalf("thresholdLabel(15) = %q", got)
	}
}
