package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"taskboard/internal/apperrors"
	"taskboard/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	// FindAccessibleBy returns tasks the user owns or that are shared with them.
	FindAccessibleBy(ctx context.Context, userID int64) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error

	// FindActiveWithDeadlineBetween returns incomplete tasks whose deadline
	// falls inside [from, to]. The scheduler feeds it a superset of the
	// actual evaluation window and filters precisely in memory.
	FindActiveWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Task, error)
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, description, completed, deadline_date, deadline_time,
       priority, owner_id, shared_with, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }, t *models.Task) error {
	return row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.DeadlineDate, &t.DeadlineTime,
		&t.Priority, &t.OwnerID, pq.Array(&t.SharedWith), &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			title, description, completed, deadline_date, deadline_time,
			priority, owner_id, shared_with, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Completed, task.DeadlineDate, task.DeadlineTime,
		task.Priority, task.OwnerID, pq.Array(task.SharedWith),
		task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: store task: %v", apperrors.ErrUnavailable, err)
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task := &models.Task{}
	err := scanTask(r.db.QueryRowContext(ctx, query, id), task)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: find task %d: %v", apperrors.ErrUnavailable, id, err)
	}
	return task, nil
}

func (r *taskRepository) FindAccessibleBy(ctx context.Context, userID int64) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE owner_id = $1 OR $1 = ANY(shared_with)
		ORDER BY created_at DESC`
	return r.queryTasks(ctx, query, userID)
}

func (r *taskRepository) FindActiveWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE completed = FALSE
		  AND deadline_date IS NOT NULL
		  AND deadline_date >= $1
		  AND deadline_date <= $2`
	return r.queryTasks(ctx, query, from, to)
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query tasks: %v", apperrors.ErrUnavailable, err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, fmt.Errorf("%w: scan task: %v", apperrors.ErrUnavailable, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate tasks: %v", apperrors.ErrUnavailable, err)
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET
			title=$1, description=$2, completed=$3, deadline_date=$4,
			deadline_time=$5, priority=$6, shared_with=$7, updated_at=$8
		WHERE id=$9`
	_, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Completed, task.DeadlineDate,
		task.DeadlineTime, task.Priority, pq.Array(task.SharedWith), task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: update task %d: %v", apperrors.ErrUnavailable, task.ID, err)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: delete task %d: %v", apperrors.ErrUnavailable, id, err)
	}
	return nil
}
