package notification

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var ErrNotFound = errors.New("notification not found")

// mailboxLimit caps how many notifications a single read returns.
const mailboxLimit = 50

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		// QueryUserNotifications returns the user's most recent
		// notifications, newest first, capped at limit.
		QueryUserNotifications(ctx context.Context, userID, limit int) ([]Notification, error)
		CountUnread(ctx context.Context, userID int) (int, error)
		MarkRead(ctx context.Context, id int) (Notification, error)
		MarkAllRead(ctx context.Context, userID int) error
		GetNotificationByID(ctx context.Context, id int) (Notification, error)
		DeleteNotification(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nn NewNotification) (Notification, error) {
	return svc.repo.CreateNotification(ctx, Notification{
		UserID:    nn.UserID,
		Type:      nn.Type,
		Title:     nn.Title,
		Message:   nn.Message,
		Link:      null.NewString(nn.Link, nn.Link != ""),
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryForUser(ctx context.Context, userID int) ([]Notification, error) {
	return svc.repo.QueryUserNotifications(ctx, userID, mailboxLimit)
}

func (svc *Service) UnreadCount(ctx context.Context, userID int) (int, error) {
	return svc.repo.CountUnread(ctx, userID)
}

func (svc *Service) MarkRead(ctx context.Context, id int) (Notification, error) {
	return svc.repo.MarkRead(ctx, id)
}

func (svc *Service) MarkAllRead(ctx context.Context, userID int) error {
	return svc.repo.MarkAllRead(ctx, userID)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Notification, error) {
	return svc.repo.GetNotificationByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteNotification(ctx, id)
}
