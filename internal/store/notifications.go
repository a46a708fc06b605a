package store

import (
	"context"
	"fmt"
	"time"

	"stridestreak/internal/models"
)

const notificationColumns = `id, user_id, title, message, type, status, created_at, sent_at, read_at`

func (q *Queries) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.Status == "" {
		n.Status = models.StatusPending
	}
	id, err := q.insert(ctx, `INSERT INTO notifications (user_id, title, message, type, status, created_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		n.UserID, n.Title, n.Message, string(n.Type), string(n.Status), utc(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	n.ID = id
	return nil
}

func (q *Queries) GetNotification(ctx context.Context, userID, id int) (models.Notification, error) {
	var n models.Notification
	err := q.get(ctx, &n, `SELECT `+notificationColumns+` FROM notifications WHERE id=? AND user_id=?`, id, userID)
	return n, err
}

// SetNotificationStatus records the delivery outcome. sentAt is only stored
// for StatusSent.
func (q *Queries) SetNotificationStatus(ctx context.Context, id int, status models.NotificationStatus, sentAt time.Time) error {
	var at any
	if status == models.StatusSent {
		at = utc(sentAt)
	}
	if _, err := q.exec(ctx, `UPDATE notifications SET status=?, sent_at=? WHERE id=?`, string(status), at, id); err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	return nil
}

// ListNotifications returns the user's notifications, newest first.
func (q *Queries) ListNotifications(ctx context.Context, userID int) ([]models.Notification, error) {
	out := []models.Notification{}
	if err := q.selectAll(ctx, &out, `SELECT `+notificationColumns+` FROM notifications WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (q *Queries) MarkNotificationRead(ctx context.Context, userID, id int, at time.Time) error {
	n, err := q.exec(ctx, `UPDATE notifications SET read_at=? WHERE id=? AND user_id=?`, utc(at), id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead only touches unread rows and returns how many changed.
func (q *Queries) MarkAllNotificationsRead(ctx context.Context, userID int, at time.Time) (int64, error) {
	n, err := q.exec(ctx, `UPDATE notifications SET read_at=? WHERE user_id=? AND read_at IS NULL`, utc(at), userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}
