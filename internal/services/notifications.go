package services

import (
	"context"

	"github.com/tahsinn/campus-found/backend/internal/models"
	"github.com/tahsinn/campus-found/backend/internal/repositories"
	"github.com/tahsinn/campus-found/backend/internal/syncbus"
)

// NotificationService serves the read side of notifications. Creation
// happens inside the claim and messaging transactions, not here.
type NotificationService struct {
	notifications repositories.NotificationRepository
	bus           *syncbus.Bus
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications repositories.NotificationRepository, bus *syncbus.Bus) *NotificationService {
	return &NotificationService{notifications: notifications, bus: bus}
}

// List returns the actor's notifications, newest first, with the total
// for pagination.
func (s *NotificationService) List(ctx context.Context, actor models.Actor, page, limit int) ([]models.Notification, int64, error) {
	return s.notifications.ListForUser(actor.ID, page, limit)
}

// UnreadCount returns how many of the actor's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, actor models.Actor) (int64, error) {
	return s.notifications.UnreadCount(actor.ID)
}

// MarkRead marks one of the actor's notifications read. Idempotent:
// re-marking a read notification, or naming one addressed to somebody
// else, affects nothing and is not an error.
func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, notificationID uint) error {
	if err := s.notifications.MarkRead(notificationID, actor.ID); err != nil {
		return err
	}
	s.bus.Publish(ctx, "notification", notificationID, models.ChangeUpdated)
	return nil
}

// MarkAllRead marks every unread notification of the actor read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) error {
	if err := s.notifications.MarkAllRead(actor.ID); err != nil {
		return err
	}
	s.bus.Publish(ctx, "notification", 0, models.ChangeUpdated)
	return nil
}
