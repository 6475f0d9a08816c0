package service

import (
	"context"
	"fmt"

	"parley/internal/domain"
)

// NotificationService serves the pull side of the notification feed and the
// read-state transitions.
type NotificationService struct {
	notifications domain.NotificationRepository
}

func NewNotificationService(notifications domain.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	notifs, err := s.notifications.ListForUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, nil
}

// MarkRead flips one notification to read. Repeated calls succeed.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	return s.notifications.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.notifications.MarkAllRead(ctx, userID)
}
