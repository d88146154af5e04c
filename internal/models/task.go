// internal/models/task.go
package models

import "time"

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// Task represents the structure of a task in the system.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	// DeadlineDate is the calendar deadline; DeadlineTime optionally refines
	// it to an exact "HH:MM" on that day.
	DeadlineDate *time.Time   `json:"deadline_date,omitempty"`
	DeadlineTime *string      `json:"deadline_time,omitempty"`
	Priority     TaskPriority `json:"priority"`

	// пользователь-владелец задачи
	OwnerID int64 `json:"owner_id"`
	// пользователи, с которыми задача расшарена (владелец сюда не входит)
	SharedWith []int64 `json:"shared_with"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwner reports whether userID owns the task.
func (t *Task) IsOwner(userID int64) bool {
	return t.OwnerID == userID
}

// IsSharedWith reports whether the task is shared with userID.
func (t *Task) IsSharedWith(userID int64) bool {
	for _, id := range t.SharedWith {
		if id == userID {
			return true
		}
	}
	return false
}

// CanAccess reports whether userID may read and update the task
// (owner or member of SharedWith). Delete and sharing stay owner-only.
func (t *Task) CanAccess(userID int64) bool {
	return t.IsOwner(userID) || t.IsSharedWith(userID)
}
