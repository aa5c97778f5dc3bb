package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/membership"
	"github.com/Ma114119/Combits-2025/core/session"
)

type sessionAPI struct {
	svc       *session.Service
	memberSvc *membership.Service
	validate  *validator.Validate
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *session.Service, memberSvc *membership.Service, validate *validator.Validate) {
	api := sessionAPI{svc: svc, memberSvc: memberSvc, validate: validate}

	sg := g.Group("/sessions", jwt)
	sg.POST("", api.create)
	sg.GET("/group/:groupId", api.queryGroupSessions)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// create is for owners, admins and moderators of the group.
func (api *sessionAPI) create(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var data session.NewSession
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	role, active, err := api.memberSvc.RoleInGroup(ctx.Request().Context(), uid, data.GroupID)
	if err != nil {
		return err
	}
	if !active || membership.RolePriority(role) > membership.RolePriority(membership.RoleModerator) {
		return errHTTPForbidden
	}

	s, err := api.svc.Create(ctx.Request().Context(), uid, data)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusCreated, s)
}

func (api *sessionAPI) queryGroupSessions(ctx echo.Context) error {
	groupID, err := pathID(ctx, "groupId")
	if err != nil {
		return err
	}
	sessions, err := api.svc.QueryByGroup(ctx.Request().Context(), groupID)
	if err != nil {
		return errors.Wrap(err, "querying group sessions")
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	return respondList(ctx, sessions, len(sessions))
}

func (api *sessionAPI) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusOK, s)
}

// checkEditRights lets the session creator and the group owner/admin through.
func (api *sessionAPI) checkEditRights(ctx echo.Context, s session.Session) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	if s.CreatorID == uid {
		return nil
	}
	role, active, err := api.memberSvc.RoleInGroup(ctx.Request().Context(), uid, s.GroupID)
	if err != nil {
		return err
	}
	if !active || (role != membership.RoleOwner && role != membership.RoleAdmin) {
		return errHTTPForbidden
	}
	return nil
}

func (api *sessionAPI) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err = api.checkEditRights(ctx, s); err != nil {
		return err
	}

	var data session.UpdateSession
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err = api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusOK, s)
}

func (api *sessionAPI) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err = api.checkEditRights(ctx, s); err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(ctx, "Session deleted successfully")
}
