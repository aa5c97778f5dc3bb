package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/message"
)

type messageAPI struct {
	svc      *message.Service
	validate *validator.Validate
}

func registerMessageAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *message.Service, validate *validator.Validate) {
	api := messageAPI{svc: svc, validate: validate}

	mg := g.Group("/messages", jwt)
	mg.POST("", api.send)
	mg.GET("/group/:groupId", api.queryGroupMessages)
	mg.DELETE("/:id", api.destroy)
}

func (api *messageAPI) send(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var data message.NewMessage
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Send(ctx.Request().Context(), uid, data)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusCreated, m)
}

func (api *messageAPI) queryGroupMessages(ctx echo.Context) error {
	groupID, err := pathID(ctx, "groupId")
	if err != nil {
		return err
	}
	messages, err := api.svc.QueryByGroup(ctx.Request().Context(), groupID)
	if err != nil {
		return errors.Wrap(err, "querying group messages")
	}
	if messages == nil {
		messages = []message.Message{}
	}
	return respondList(ctx, messages, len(messages))
}

func (api *messageAPI) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), uid, id); err != nil {
		return err
	}
	return respondMessage(ctx, "Message deleted successfully")
}
