package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/notification"
)

type notificationAPI struct {
	svc      *notification.Service
	validate *validator.Validate
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service, validate *validator.Validate) {
	api := notificationAPI{svc: svc, validate: validate}

	ng := g.Group("/notifications", jwt)
	ng.GET("/user/:userId", api.queryForUser)
	ng.GET("/user/:userId/unread", api.unreadCount)
	ng.POST("", api.create)
	ng.PUT("/:id/read", api.markRead)
	ng.PUT("/user/:userId/read-all", api.markAllRead)
	ng.DELETE("/:id", api.destroy)
}

// checkSelf keeps mailboxes private: the path user must be the caller.
func checkSelf(ctx echo.Context, param string) (int, error) {
	userID, err := pathID(ctx, param)
	if err != nil {
		return 0, err
	}
	uid, err := contextUserID(ctx)
	if err != nil {
		return 0, err
	}
	if userID != uid {
		return 0, errHTTPForbidden
	}
	return userID, nil
}

func (api *notificationAPI) queryForUser(ctx echo.Context) error {
	userID, err := checkSelf(ctx, "userId")
	if err != nil {
		return err
	}
	notifs, err := api.svc.QueryForUser(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return respondList(ctx, notifs, len(notifs))
}

func (api *notificationAPI) unreadCount(ctx echo.Context) error {
	userID, err := checkSelf(ctx, "userId")
	if err != nil {
		return err
	}
	count, err := api.svc.UnreadCount(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "counting unread notifications")
	}
	return respondCount(ctx, count)
}

func (api *notificationAPI) create(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	n, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusCreated, n)
}

// checkOwner loads the notification and makes sure it belongs to the caller.
func (api *notificationAPI) checkOwner(ctx echo.Context, id int) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if n.UserID != uid {
		return errHTTPForbidden
	}
	return nil
}

func (api *notificationAPI) markRead(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.checkOwner(ctx, id); err != nil {
		return err
	}

	n, err := api.svc.MarkRead(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusOK, n)
}

func (api *notificationAPI) markAllRead(ctx echo.Context) error {
	userID, err := checkSelf(ctx, "userId")
	if err != nil {
		return err
	}
	if err = api.svc.MarkAllRead(ctx.Request().Context(), userID); err != nil {
		return err
	}
	return respondMessage(ctx, "All notifications marked as read")
}

func (api *notificationAPI) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.checkOwner(ctx, id); err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(ctx, "Notification deleted successfully")
}
