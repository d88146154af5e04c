// internal/services/task_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskboard/internal/apperrors"
	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

// Notifier pushes a created notification to an external channel, best effort.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, text string)
}

// TaskService owns task CRUD plus the access/sharing model: any accessor
// (owner or shared user) may read, update and toggle completion; delete and
// share/unshare are owner-only. The task owner is always the recipient of
// deadline notifications; sharing adds readers, not recipients.
type TaskService interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Task, error)
	ListFor(ctx context.Context, userID int64) ([]models.Task, error)
	Update(ctx context.Context, userID, id int64, updateData *models.Task) (*models.Task, error)
	ToggleComplete(ctx context.Context, userID, id int64) (*models.Task, error)
	Delete(ctx context.Context, userID, id int64) error

	Share(ctx context.Context, userID, taskID, targetID int64) (*models.Task, error)
	Unshare(ctx context.Context, userID, taskID, targetID int64) (*models.Task, error)
}

type taskService struct {
	repo          repositories.TaskRepository
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
	notifier      Notifier
}

// NewTaskService creates a new instance of TaskService. notifier may be nil.
func NewTaskService(
	repo repositories.TaskRepository,
	users repositories.UserRepository,
	notifications repositories.NotificationRepository,
	notifier Notifier,
) TaskService {
	return &taskService{repo: repo, users: users, notifications: notifications, notifier: notifier}
}

func (s *taskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.DeadlineTime != nil && task.DeadlineDate == nil {
		return nil, fmt.Errorf("deadline_time requires deadline_date: %w", apperrors.ErrValidation)
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// loadAccessible loads the task and verifies userID may access it.
func (s *taskService) loadAccessible(ctx context.Context, userID, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.CanAccess(userID) {
		return nil, fmt.Errorf("task %d: %w", id, apperrors.ErrUnauthorized)
	}
	return task, nil
}

// loadOwned loads the task and verifies userID owns it.
func (s *taskService) loadOwned(ctx context.Context, userID, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsOwner(userID) {
		return nil, fmt.Errorf("task %d: owner only: %w", id, apperrors.ErrUnauthorized)
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, userID, id int64) (*models.Task, error) {
	return s.loadAccessible(ctx, userID, id)
}

func (s *taskService) ListFor(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.repo.FindAccessibleBy(ctx, userID)
}

func (s *taskService) Update(ctx context.Context, userID, id int64, updateData *models.Task) (*models.Task, error) {
	existing, err := s.loadAccessible(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if updateData.DeadlineTime != nil && updateData.DeadlineDate == nil {
		return nil, fmt.Errorf("deadline_time requires deadline_date: %w", apperrors.ErrValidation)
	}

	existing.Title = updateData.Title
	existing.Description = updateData.Description
	existing.DeadlineDate = updateData.DeadlineDate
	existing.DeadlineTime = updateData.DeadlineTime
	// пустой приоритет в запросе не затирает сохранённый
	if updateData.Priority != "" {
		existing.Priority = updateData.Priority
	}
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *taskService) ToggleComplete(ctx context.Context, userID, id int64) (*models.Task, error) {
	task, err := s.loadAccessible(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	task.Completed = !task.Completed
	task.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.loadOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Share adds targetID to the task's shared set and emits one
// "shared-with-you" notification to the target.
func (s *taskService) Share(ctx context.Context, userID, taskID, targetID int64) (*models.Task, error) {
	task, err := s.loadOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	// целевой пользователь должен существовать
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	if task.IsSharedWith(targetID) {
		return nil, fmt.Errorf("task %d already shared with user %d: %w", taskID, targetID, apperrors.ErrValidation)
	}
	if task.OwnerID == targetID {
		return nil, fmt.Errorf("cannot share a task with yourself: %w", apperrors.ErrValidation)
	}

	task.SharedWith = append(task.SharedWith, targetID)
	task.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("📤 %q was shared with you", task.Title)
	n := &models.Notification{
		UserID:  targetID,
		TaskID:  &task.ID,
		Kind:    models.KindSharedWithYou,
		Message: msg,
	}
	if err := s.notifications.Store(ctx, n); err != nil {
		// задача уже расшарена; уведомление не критично
		log.Printf("[task][share][warn] notification for user=%d task=%d failed: %v", targetID, task.ID, err)
	} else if s.notifier != nil {
		s.notifier.NotifyUser(ctx, targetID, msg)
	}

	return task, nil
}

// Unshare removes targetID from the shared set. Removing a user who is not
// in the set is a no-op, not an error.
func (s *taskService) Unshare(ctx context.Context, userID, taskID, targetID int64) (*models.Task, error) {
	task, err := s.loadOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if !task.IsSharedWith(targetID) {
		return task, nil
	}

	kept := task.SharedWith[:0]
	for _, id := range task.SharedWith {
		if id != targetID {
			kept = append(kept, id)
		}
	}
	task.SharedWith = kept
	task.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}
