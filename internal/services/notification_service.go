// internal/services/notification_service.go
package services

import (
	"context"
	"time"

	"munitask/internal/apperrors"
	"munitask/internal/models"
	"munitask/internal/repositories"
)

// NotificationService es la fachada de lectura/acuse que consume la API.
// Solo toca el estado de lectura; nunca crea avisos ni toca tareas.
type NotificationService interface {
	ListForUser(ctx context.Context, userID int64, q models.NotificationQuery) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, requesterID int64) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id, requesterID int64) error
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

type notificationService struct {
	repo repositories.NotificationRepository
}

func NewNotificationService(repo repositories.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListForUser(ctx context.Context, userID int64, q models.NotificationQuery) ([]models.Notification, error) {
	return s.repo.FindByUser(ctx, userID, q)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, requesterID int64) (*models.Notification, error) {
	n, err := s.ownedBy(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if n.Read {
		// acuse repetido: no se pisa read_at
		return n, nil
	}
	at := time.Now()
	if err := s.repo.MarkRead(ctx, id, at); err != nil {
		return nil, err
	}
	n.Read = true
	n.ReadAt = &at
	return n, nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, time.Now())
}

func (s *notificationService) Delete(ctx context.Context, id, requesterID int64) error {
	if _, err := s.ownedBy(ctx, id, requesterID); err != nil {
		return err
	}
	return s.repo.DeleteByID(ctx, id)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) ownedBy(ctx context.Context, id, requesterID int64) (*models.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, apperrors.NotFound("notification %d not found", id)
	}
	if n.UserID != requesterID {
		return nil, apperrors.Forbidden("notification %d belongs to another user", id)
	}
	return n, nil
}
