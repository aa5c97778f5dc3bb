package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/group"
)

type groupAPI struct {
	svc      *group.Service
	validate *validator.Validate
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *group.Service, validate *validator.Validate) {
	api := groupAPI{svc: svc, validate: validate}

	gg := g.Group("/groups", jwt)
	gg.GET("", api.query)
	gg.GET("/:id", api.retrieve)
	gg.POST("", api.create)
	gg.PUT("/:id", api.update)
	gg.DELETE("/:id", api.destroy)
}

func (api *groupAPI) query(ctx echo.Context) error {
	filter := new(group.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return respondList(ctx, []group.Group{}, 0)
	}
	filter.Clean()

	groups, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return respondList(ctx, groups, len(groups))
}

func (api *groupAPI) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	grp, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusOK, grp)
}

func (api *groupAPI) create(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var data group.NewGroup
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.Create(ctx.Request().Context(), uid, data)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusCreated, grp)
}

// checkCreator lets only the group creator through.
func (api *groupAPI) checkCreator(ctx echo.Context, id int) (group.Group, error) {
	uid, err := contextUserID(ctx)
	if err != nil {
		return group.Group{}, err
	}
	grp, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return group.Group{}, err
	}
	if grp.CreatorID != uid {
		return group.Group{}, errHTTPForbidden
	}
	return grp, nil
}

func (api *groupAPI) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.checkCreator(ctx, id); err != nil {
		return err
	}

	var data group.UpdateGroup
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusOK, grp)
}

func (api *groupAPI) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.checkCreator(ctx, id); err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(ctx, "Group deleted successfully")
}
