package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"taskboard/internal/apperrors"
	"taskboard/internal/models"
)

// ---- in-memory fakes ----

type memTaskRepo struct {
	tasks map[int64]*models.Task
}

func newMemTaskRepo(tasks ...*models.Task) *memTaskRepo {
	r := &memTaskRepo{tasks: make(map[int64]*models.Task)}
	for _, t := range tasks {
		cp := *t
		r.tasks[t.ID] = &cp
	}
	return r
}

func (r *memTaskRepo) Store(_ context.Context, task *models.Task) error {
	task.ID = int64(len(r.tasks) + 1)
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *memTaskRepo) FindByID(_ context.Context, id int64) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, apperrors.ErrNotFound)
	}
	cp := *t
	cp.SharedWith = append([]int64(nil), t.SharedWith...)
	return &cp, nil
}

func (r *memTaskRepo) FindAccessibleBy(_ context.Context, userID int64) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if t.CanAccess(userID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) Update(_ context.Context, task *models.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return fmt.Errorf("task %d: %w", task.ID, apperrors.ErrNotFound)
	}
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("task %d: %w", id, apperrors.ErrNotFound)
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) FindActiveWithDeadlineBetween(_ context.Context, from, to time.Time) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if t.Completed || t.DeadlineDate == nil {
			continue
		}
		if t.DeadlineDate.Before(from) || t.DeadlineDate.After(to) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

type memUserRepo struct {
	users map[int64]*models.User
}

func newMemUserRepo(ids ...int64) *memUserRepo {
	r := &memUserRepo{users: make(map[int64]*models.User)}
	for _, id := range ids {
		r.users[id] = &models.User{ID: id, Email: fmt.Sprintf("user%d@example.com", id)}
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = int64(len(r.users) + 1)
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, apperrors.ErrNotFound)
}

func (r *memUserRepo) UpdateRefresh(_ context.Context, _ int64, _ string, _ time.Time) error {
	return nil
}

func (r *memUserRepo) GetByRefreshToken(_ context.Context, _ string) (*models.User, error) {
	return nil, apperrors.ErrUnauthorized
}

func (r *memUserRepo) UpdateTelegramLink(_ context.Context, _, _ int64, _ bool) error { return nil }

func (r *memUserRepo) GetTelegramSettings(_ context.Context, _ int64) (int64, bool, error) {
	return 0, false, nil
}

type memNotificationRepo struct {
	created []models.Notification
}

func (r *memNotificationRepo) Store(_ context.Context, n *models.Notification) error {
	n.ID = int64(len(r.created) + 1)
	r.created = append(r.created, *n)
	return nil
}

func (r *memNotificationRepo) FindByRecipient(_ context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.created {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *memNotificationRepo) ExistsWithin(_ context.Context, _, _ int64, _ models.NotificationKind, _ time.Time) (bool, error) {
	return false, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, _, _ int64) (*models.Notification, error) {
	return nil, apperrors.ErrNotFound
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, _ int64) error { return nil }
func (r *memNotificationRepo) Delete(_ context.Context, _, _ int64) error   { return nil }

func newTestTaskService(tasks *memTaskRepo, users *memUserRepo, notes *memNotificationRepo) TaskService {
	return NewTaskService(tasks, users, notes, nil)
}

// ---- sharing ----

func TestShareAddsTargetAndNotifies(t *testing.T) {
	tasks := newMemTaskRepo(&models.Task{ID: 1, Title: "quarterly report", OwnerID: 10})
	users := newMemUserRepo(10, 20)
	notes := &memNotificationRepo{}
	svc := newTestTaskService(tasks, users, notes)

	got, err := svc.Share(context.Background(), 10, 1, 20)
	if err != nil {
		t.Fatalf("Share error: %v", err)
	}
	if !got.IsSharedWith(20) {
		t.Fatalf("sharedWith = %v, want to contain 20", got.SharedWith)
	}

	if len(notes.created) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes.created))
	}
	n := notes.created[0]
	if n.UserID != 20 {
		t.Fatalf("notification recipient = %d, want target 20", n.UserID)
	}
	if n.Kind != models.KindSharedWithYou {
		t.Fatalf("notification kind = %q, want %q", n.Kind, models.KindSharedWithYou)
	}
}

func TestShareWithSelfRejected(t *testing.T) {
	tasks := newMemTaskRepo(&models.Task{ID: 1, OwnerID: 10})
	users := newMemUserRepo(10)
	svc := newTestTaskService(tasks, users, &memNotificationRepo{})

	_, err := svc.Share(context.Background(), 10, 1, 10)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	stored, _ := tasks.FindByID(context.Background(), 1)
	if len(stored.SharedWith) != 0 {
		t.Fatalf("sharedWith = %v, want unchanged", stored.SharedWith)
	}
}

func TestShareTwiceRejected(t *testing.T) {
	tasks := newMemTaskRepo(&models.Task{ID: 1, OwnerID: 10})
	users := newMemUserRepo(10, 20)
	notes := &memNotificationRepo{}
	svc := newTestTaskService(tasks, users, notes)

	ctx := context.Background()
	if _, err := svc.Share(ctx, 10, 1, 20); err != nil {
		t.Fatalf("first Share error: %v", err)
	}
	if _, err := svc.Share(ctx, 10, 1, 20); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("second Share error = %v, want ErrValidation", err)
	}

	stored, _ := tasks.FindByID(ctx, 1)
	if len(stored.SharedWith) != 1 {
		t.Fatalf("sharedWith = %v, want exactly one entry", stored.SharedWith)
	}
	if len(notes.created) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes.created))
	}
}

func TestShareWithUnknownUserRejected(t *testing.T) {
	tasks := newMemTaskRepo(&models.Task{ID: 1, OwnerID: 10})
	users := newMemUserRepo(10)
	svc := newTestTaskService(tasks, users, &memNotificationRepo{})

	_, err := svc.Share(context.Background(), 10, 1, 99)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestShareOwnerOnly(t *testing.T) {
	tasks := newMemTaskRepo(&models.Task{ID: 1, OwnerID: 10, SharedWith: []int64{20}})
	users := newMemUserRepo(10, 20, 30)
	svc := newTestTaskService(tasks, users, &memNotificationRepo{})

	// a shared user cannot share the task further
	_, err := svc.Share(context.Background(), 20, 1, 30)
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestUnshareNonMemberIsNoop(t *testing.T) {
	tasks := newMemTaskRepo(&models.Task{ID: 1, OwnerID: 10, SharedWith: []int64{20}})
	users := newMemUserRepo(10, 20)
	svc := newTestTaskService(tasks, users, &memNotificationRepo{})

	got, err := svc.Unshare(context.Background(), 10, 1, 99)
	if err != nil {
		t.Fatalf("Unshare error: %v", err)
	}
	if len(got.SharedWith) != 1 || got.SharedWith[0] != 20 {
		t.Fatalf("sharedWith = %v, want [20] unchanged", got.SharedWith)
	}
}

func TestUnshareRemovesTarget(t *testing.T) {
	tasks := newMemTaskRepo(&models.Task{ID: 1, OwnerID: 10, SharedWith: []int64{20, 30}})
	users := newMemUserRepo(10, 20, 30)
	svc := newTestTaskService(tasks, users, &memNotificationRepo{})

	got, err := svc.Unshare(context.Background(), 10, 1, 20)
	if err != nil {
		t.Fatalf("Unshare error: %v", err)
	}
	if got.IsSharedWith(20) {
		t.Fatalf("sharedWith = %v, 20 must be removed", got.SharedWith)
	}
	if !got.IsSharedWith(30) {
		t.Fatalf("sharedWith = %v, 30 must remain", got.SharedWith)
	}
}

// ---- access model ----

func TestSharedUserCanToggleButNotDelete(t *testing.T) {
	tasks := newMemTaskRepo(&models.Task{ID: 1, OwnerID: 10, SharedWith: []int64{20}})
	users := newMemUserRepo(10, 20)
	svc := newTestTaskService(tasks, users, &memNotificationRepo{})
	ctx := context.Background()

	got, err := svc.ToggleComplete(ctx, 20, 1)
	if err != nil {
		t.Fatalf("shared user ToggleComplete error: %v", err)
	}
	if !got.Completed {
		t.Fatal("task must be completed after toggle")
	}

	if err := svc.Delete(ctx, 20, 1); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("shared user Delete error = %v, want ErrUnauthorized", err)
	}
	if err := svc.Delete(ctx, 10, 1); err != nil {
		t.Fatalf("owner Delete error: %v", err)
	}
}

func TestStrangerCannotRead(t *testing.T) {
	tasks := newMemTaskRepo(&models.Task{ID: 1, OwnerID: 10})
	users := newMemUserRepo(10, 30)
	svc := newTestTaskService(tasks, users, &memNotificationRepo{})

	if _, err := svc.GetByID(context.Background(), 30, 1); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

// ---- create/update validation ----

func TestCreateDefaultsAndValidation(t *testing.T) {
	tasks := newMemTaskRepo()
	users := newMemUserRepo(10)
	svc := newTestTaskService(tasks, users, &memNotificationRepo{})
	ctx := context.Background()

	got, err := svc.Create(ctx, &models.Task{Title: "no priority set", OwnerID: 10})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.Priority != models.PriorityMedium {
		t.Fatalf("priority = %q, want default %q", got.Priority, models.PriorityMedium)
	}

	// deadline time without a deadline date is meaningless
	tod := "14:30"
	_, err = svc.Create(ctx, &models.Task{Title: "dangling time", OwnerID: 10, DeadlineTime: &tod})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestUpdateKeepsPriorityWhenOmitted(t *testing.T) {
	tasks := newMemTaskRepo(&models.Task{ID: 1, Title: "old", OwnerID: 10, Priority: models.PriorityHigh})
	users := newMemUserRepo(10)
	svc := newTestTaskService(tasks, users, &memNotificationRepo{})

	got, err := svc.Update(context.Background(), 10, 1, &models.Task{Title: "new"})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Priority != models.PriorityHigh {
		t.Fatalf("priority = %q, want %q preserved", got.Priority, models.PriorityHigh)
	}
	if got.Title != "new" {
		t.Fatalf("title = %q, want %q", got.Title, "new")
	}
}
