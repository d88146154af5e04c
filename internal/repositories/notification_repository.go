package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"taskboard/internal/apperrors"
	"taskboard/internal/models"
)

type NotificationRepository interface {
	Store(ctx context.Context, n *models.Notification) error
	FindByRecipient(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error)

	// ExistsWithin reports whether a notification with the exact
	// (recipient, task, kind) identity was created at or after since.
	// This is the dedup guard's suppression-window query.
	ExistsWithin(ctx context.Context, userID, taskID int64, kind models.NotificationKind, since time.Time) (bool, error)

	// MarkRead and Delete are recipient-scoped: the row must belong to userID.
	MarkRead(ctx context.Context, id, userID int64) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id, userID int64) error
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, user_id, task_id, kind, message, read, created_at`

func (r *notificationRepository) Store(ctx context.Context, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO notifications (user_id, task_id, kind, message, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		n.UserID, n.TaskID, n.Kind, n.Message, n.Read, n.CreatedAt,
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("%w: store notification: %v", apperrors.ErrUnavailable, err)
	}
	return nil
}

func (r *notificationRepository) FindByRecipient(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: query notifications: %v", apperrors.ErrUnavailable, err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Kind, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan notification: %v", apperrors.ErrUnavailable, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate notifications: %v", apperrors.ErrUnavailable, err)
	}
	return out, nil
}

func (r *notificationRepository) ExistsWithin(ctx context.Context, userID, taskID int64, kind models.NotificationKind, since time.Time) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM notifications
		WHERE user_id = $1 AND task_id = $2 AND kind = $3 AND created_at >= $4
	)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, taskID, kind, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: notification exists check: %v", apperrors.ErrUnavailable, err)
	}
	return exists, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID int64) (*models.Notification, error) {
	query := `UPDATE notifications SET read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns
	n := &models.Notification{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&n.ID, &n.UserID, &n.TaskID, &n.Kind, &n.Message, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: mark notification read: %v", apperrors.ErrUnavailable, err)
	}
	return n, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("%w: mark all read: %v", apperrors.ErrUnavailable, err)
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%w: delete notification %d: %v", apperrors.ErrUnavailable, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
