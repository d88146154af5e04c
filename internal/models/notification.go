// internal/models/notification.go
package models

import (
	"fmt"
	"time"
)

// NotificationKind discriminates why a notification was produced. The kind,
// together with (recipient, task), is the identity the scheduler de-duplicates
// on, so the threshold label is part of the kind rather than the message text.
type NotificationKind string

const (
	// KindApproachingDeadline fires roughly one minute before the deadline.
	KindApproachingDeadline NotificationKind = "approaching-deadline"
	// KindDueToday fires once per day for tasks whose deadline is today.
	KindDueToday NotificationKind = "due-today"
	// KindSharedWithYou is emitted when a task is shared with a user.
	KindSharedWithYou NotificationKind = "shared-with-you"
)

// KindTimeThreshold returns the kind for an exact minutes-before-deadline
// threshold, e.g. "time-threshold@15m".
func KindTimeThreshold(minutesBefore int) NotificationKind {
	return NotificationKind(fmt.Sprintf("time-threshold@%dm", minutesBefore))
}

type Notification struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	// TaskID is nil for free-standing notifications.
	TaskID    *int64           `json:"task_id,omitempty"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
