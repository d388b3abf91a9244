package service

import (
	"context"
	"encoding/json"
	"fmt"

	"youbet/internal/middleware"
	"youbet/internal/models"
	"youbet/internal/notifications"
	"youbet/internal/repository"
)

// NotificationService persists notifications and fans them out to connected
// clients. The database write is the durable channel; the Redis publish that
// follows it is best-effort and never fails the calling operation.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	notifier         *notifications.Notifier
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	notifier *notifications.Notifier,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		notifier:         notifier,
	}
}

// Dispatch writes a notification for recipientID describing an action taken
// by actingUserID on the given request, then publishes it to the recipient's
// realtime channel.
func (s *NotificationService) Dispatch(
	ctx context.Context,
	kind models.NotificationType,
	recipientID, actingUserID uint,
	requestID uint,
) (*models.Notification, error) {
	actor, err := s.userRepo.GetByID(ctx, actingUserID)
	if err != nil {
		return nil, err
	}

	title, message := notificationText(kind, actor.Name)
	reqID := requestID
	notification := &models.Notification{
		UserID:     recipientID,
		Type:       kind,
		Title:      title,
		Message:    message,
		RequestID:  &reqID,
		FromUserID: actingUserID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}
	middleware.NotificationsDispatched.WithLabelValues(string(kind)).Inc()

	s.publish(ctx, notification)
	return notification, nil
}

// publish fans the notification out over Redis. Failures are logged, never
// returned; the durable row already exists.
func (s *NotificationService) publish(ctx context.Context, notification *models.Notification) {
	if s.notifier == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type":    "notification",
		"payload": notification,
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "marshal notification payload", "error", err)
		return
	}
	if err := s.notifier.PublishUser(ctx, notification.UserID, string(payload)); err != nil {
		middleware.Logger.WarnContext(ctx, "publish notification",
			"user_id", notification.UserID,
			"error", err,
		)
	}
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, int64, error) {
	items, err := s.notificationRepo.ListForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.notificationRepo.CountForUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// notificationText maps a notification type to its title and message.
func notificationText(kind models.NotificationType, actorName string) (string, string) {
	switch kind {
	case models.NotificationTypeContactRequest:
		return "New Contact Request", fmt.Sprintf("%s wants to add you as a contact", actorName)
	case models.NotificationTypeContactApproved:
		return "Contact Request Approved", fmt.Sprintf("%s accepted your contact request", actorName)
	case models.NotificationTypeContactDeclined:
		return "Contact Request Declined", fmt.Sprintf("%s declined your contact request", actorName)
	default:
		return string(kind), fmt.Sprintf("%s sent you an update", actorName)
	}
}
