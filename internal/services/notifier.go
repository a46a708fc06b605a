package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stridestreak/internal/clock"
	"stridestreak/internal/models"
	"stridestreak/internal/store"
)

// Notifier records in-app notifications and delivers the email part.
// Push has no transport yet and is in-app only.
type Notifier struct {
	store  *store.Store
	mailer Mailer
	enc    *EncryptionService
	clock  clock.Clock
	logger *zap.Logger
}

func NewNotifier(s *store.Store, mailer Mailer, enc *EncryptionService, c clock.Clock, logger *zap.Logger) *Notifier {
	return &Notifier{store: s, mailer: mailer, enc: enc, clock: c, logger: logger}
}

// Notify stores a notification for userID and dispatches it on channel. The
// row is kept even when delivery fails, with status failed, and the delivery
// error is returned.
func (n *Notifier) Notify(ctx context.Context, userID int, title, message string, channel models.Channel) (models.Notification, error) {
	user, err := n.store.GetUser(ctx, userID)
	if err != nil {
		return models.Notification{}, fmt.Errorf("load user %d: %w", userID, err)
	}

	note := models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      channel,
		Status:    models.StatusPending,
		CreatedAt: n.clock.Now(),
	}
	if err := n.store.CreateNotification(ctx, &note); err != nil {
		return models.Notification{}, err
	}

	if sendErr := n.deliver(ctx, user, note); sendErr != nil {
		note.Status = models.StatusFailed
		if err := n.store.SetNotificationStatus(ctx, note.ID, note.Status, n.clock.Now()); err != nil {
			n.logger.Error("record failed notification", zap.Int("notification_id", note.ID), zap.Error(err))
		}
		return note, sendErr
	}

	sentAt := n.clock.Now()
	if err := n.store.SetNotificationStatus(ctx, note.ID, models.StatusSent, sentAt); err != nil {
		return note, err
	}
	note.Status = models.StatusSent
	note.SentAt = &sentAt
	return note, nil
}

func (n *Notifier) deliver(ctx context.Context, user models.User, note models.Notification) error {
	if !note.Type.Includes(models.ChannelEmail) || !user.NotificationPreferences.Email {
		return nil
	}
	opened, err := n.enc.OpenUser(user)
	if err != nil {
		return fmt.Errorf("decrypt email: %w", err)
	}
	if err := n.mailer.Send(ctx, opened.Email, note.Title, note.Message); err != nil {
		return fmt.Errorf("send email via %s: %w", n.mailer.Name(), err)
	}
	return nil
}
