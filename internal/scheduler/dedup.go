// internal/scheduler/dedup.go
package scheduler

import (
	"context"
	"time"

	"taskboard/internal/models"
)

// dedupGuard suppresses repeat notifications for the same
// (recipient, task, kind) identity. The polling interval is shorter than the
// suppression windows, so the same threshold is re-detected on consecutive
// ticks; the guard turns those re-detections into no-ops.
//
// Deduplication is a time-windowed existence query against the notification
// log, not a hard uniqueness constraint and not a per-task "already sent"
// flag. The check and the subsequent insert are not wrapped in a transaction:
// two scheduler processes running against the same store can double-send
// inside the window. Known limitation of the single-instance deployment
// model, accepted deliberately.
type dedupGuard struct {
	notifications NotificationStore
	// window suppresses minute-before and time-of-day repeats.
	window time.Duration
	loc    *time.Location
}

// suppressionStart returns the start of the kind's suppression window.
// Due-today is suppressed since local midnight (once per calendar day);
// everything else uses the trailing short window.
func (g *dedupGuard) suppressionStart(kind models.NotificationKind, now time.Time) time.Time {
	if kind == models.KindDueToday {
		return startOfDay(now.In(g.loc))
	}
	return now.Add(-g.window)
}

// shouldNotify reports whether no matching notification exists inside the
// suppression window. A repository error is returned as-is; the caller
// decides whether it is fatal for the sweep.
func (g *dedupGuard) shouldNotify(ctx context.Context, userID, taskID int64, kind models.NotificationKind, now time.Time) (bool, error) {
	since := g.suppressionStart(kind, now)
	exists, err := g.notifications.ExistsWithin(ctx, userID, taskID, kind, since)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
