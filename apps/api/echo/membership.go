package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/membership"
)

type membershipAPI struct {
	svc      *membership.Service
	validate *validator.Validate
}

func registerMembershipAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *membership.Service, validate *validator.Validate) {
	api := membershipAPI{svc: svc, validate: validate}

	mg := g.Group("/memberships", jwt)
	mg.POST("", api.join)
	mg.GET("/group/:groupId", api.queryGroupMembers)
	mg.GET("/user/:userId", api.queryUserMemberships)
	mg.PUT("/:id", api.update)
	mg.DELETE("/:id", api.destroy)
}

func (api *membershipAPI) join(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var data membership.NewMembership
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMembership")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Join(ctx.Request().Context(), uid, data.GroupID)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusCreated, m)
}

func (api *membershipAPI) queryGroupMembers(ctx echo.Context) error {
	groupID, err := pathID(ctx, "groupId")
	if err != nil {
		return err
	}
	members, err := api.svc.QueryGroupMembers(ctx.Request().Context(), groupID)
	if err != nil {
		return errors.Wrap(err, "querying group members")
	}
	if members == nil {
		members = []membership.GroupMember{}
	}
	return respondList(ctx, members, len(members))
}

func (api *membershipAPI) queryUserMemberships(ctx echo.Context) error {
	userID, err := pathID(ctx, "userId")
	if err != nil {
		return err
	}
	groups, err := api.svc.QueryUserMemberships(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying user memberships")
	}
	if groups == nil {
		groups = []membership.UserGroup{}
	}
	return respondList(ctx, groups, len(groups))
}

// update covers approval and role assignment; both are owner-only.
func (api *membershipAPI) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	m, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	role, _, err := api.svc.RoleInGroup(ctx.Request().Context(), uid, m.GroupID)
	if err != nil {
		return err
	}
	if role != membership.RoleOwner {
		return errHTTPForbidden
	}

	var data membership.UpdateMembership
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMembership")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err = api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusOK, m)
}

// destroy covers leaving (the member themselves) and removal or rejection
// (group owner or admin).
func (api *membershipAPI) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	m, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if m.UserID != uid {
		role, active, err := api.svc.RoleInGroup(ctx.Request().Context(), uid, m.GroupID)
		if err != nil {
			return err
		}
		if !active || (role != membership.RoleOwner && role != membership.RoleAdmin) {
			return errHTTPForbidden
		}
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(ctx, "Membership removed successfully")
}
