package inmem

import (
	"context"
	"sort"

	"github.com/Ma114119/Combits-2025/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	defer repo.db.lock()()

	repo.db.notificationSeq++
	n.ID = repo.db.notificationSeq
	repo.db.notifications[n.ID] = n
	return n, nil
}

func (repo notificationRepository) QueryUserNotifications(_ context.Context, userID, limit int) ([]notification.Notification, error) {
	defer repo.db.lock()()

	var notifs []notification.Notification
	for _, n := range repo.db.notifications {
		if n.UserID == userID {
			notifs = append(notifs, n)
		}
	}
	sort.Slice(notifs, func(i, j int) bool {
		if notifs[i].CreatedAt.Equal(notifs[j].CreatedAt) {
			return notifs[i].ID > notifs[j].ID
		}
		return notifs[i].CreatedAt.After(notifs[j].CreatedAt)
	})
	if len(notifs) > limit {
		notifs = notifs[:limit]
	}
	return notifs, nil
}

func (repo notificationRepository) CountUnread(_ context.Context, userID int) (int, error) {
	defer repo.db.lock()()

	count := 0
	for _, n := range repo.db.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (repo notificationRepository) MarkRead(_ context.Context, id int) (notification.Notification, error) {
	defer repo.db.lock()()

	n, ok := repo.db.notifications[id]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	n.Read = true
	repo.db.notifications[id] = n
	return n, nil
}

func (repo notificationRepository) MarkAllRead(_ context.Context, userID int) error {
	defer repo.db.lock()()

	for id, n := range repo.db.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			repo.db.notifications[id] = n
		}
	}
	return nil
}

func (repo notificationRepository) GetNotificationByID(_ context.Context, id int) (notification.Notification, error) {
	defer repo.db.lock()()

	n, ok := repo.db.notifications[id]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	return n, nil
}

func (repo notificationRepository) DeleteNotification(_ context.Context, id int) error {
	defer repo.db.lock()()

	if _, ok := repo.db.notifications[id]; !ok {
		return notification.ErrNotFound
	}
	delete(repo.db.notifications, id)
	return nil
}
