package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/notification"
)

const notificationColumns = `notification_id, user_id, type, title, message, link, read, created_at`

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO notifications (user_id, type, title, message, link, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING notification_id`,
		n.UserID, n.Type, n.Title, n.Message, n.Link, n.CreatedAt,
	).Scan(&n.ID)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "creating notification")
	}
	return n, nil
}

func (repo notificationRepository) QueryUserNotifications(ctx context.Context, userID, limit int) ([]notification.Notification, error) {
	var notifs []notification.Notification
	err := repo.db.SelectContext(ctx, &notifs,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying user notifications")
	}
	return notifs, nil
}

func (repo notificationRepository) CountUnread(ctx context.Context, userID int) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`, userID)
	if err != nil {
		return 0, errors.Wrap(err, "counting unread notifications")
	}
	return count, nil
}

func (repo notificationRepository) MarkRead(ctx context.Context, id int) (notification.Notification, error) {
	var n notification.Notification
	err := repo.db.GetContext(ctx, &n,
		`UPDATE notifications SET read = true WHERE notification_id = $1
		 RETURNING `+notificationColumns, id)
	if err != nil {
		return notification.Notification{}, trapNoRows(err, notification.ErrNotFound, "marking notification read")
	}
	return n, nil
}

func (repo notificationRepository) MarkAllRead(ctx context.Context, userID int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`, userID)
	return errors.Wrap(err, "marking all notifications read")
}

func (repo notificationRepository) GetNotificationByID(ctx context.Context, id int) (notification.Notification, error) {
	var n notification.Notification
	err := repo.db.GetContext(ctx, &n,
		`SELECT `+notificationColumns+` FROM notifications WHERE notification_id = $1`, id)
	if err != nil {
		return notification.Notification{}, trapNoRows(err, notification.ErrNotFound, "finding notification by ID")
	}
	return n, nil
}

func (repo notificationRepository) DeleteNotification(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM notifications WHERE notification_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.ErrNotFound
	}
	return nil
}
