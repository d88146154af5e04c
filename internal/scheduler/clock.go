package scheduler

import "time"

// Clock supplies wall-clock time. Sweeps read time only through it, so tests
// can run them against a fixed or manually-advanced clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real clock.
func SystemClock() Clock { return systemClock{} }
