package services

import (
	"context"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

// NotificationService exposes a user's own notifications. Rows are created
// only by the deadline scheduler and the share action; this service just
// lists, flips read flags and deletes on the recipient's behalf.
type NotificationService interface {
	ListFor(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id, userID int64) error
}

type notificationService struct {
	repo repositories.NotificationRepository
}

func NewNotificationService(repo repositories.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListFor(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.FindByRecipient(ctx, userID, unreadOnly)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID int64) (*models.Notification, error) {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, id, userID int64) error {
	return s.repo.Delete(ctx, id, userID)
}
