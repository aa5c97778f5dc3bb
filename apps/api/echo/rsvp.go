package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/session"
)

type rsvpAPI struct {
	svc      *session.Service
	validate *validator.Validate
}

func registerRSVPAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *session.Service, validate *validator.Validate) {
	api := rsvpAPI{svc: svc, validate: validate}

	rg := g.Group("/rsvps", jwt)
	rg.POST("", api.respond)
	rg.GET("/session/:sessionId", api.querySessionRSVPs)
	rg.GET("/user/:userId/session/:sessionId", api.retrieveUserRSVP)
	rg.DELETE("/:id", api.destroy)
}

// respond records or replaces the caller's attendance answer.
func (api *rsvpAPI) respond(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var data session.NewRSVP
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRSVP")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Respond(ctx.Request().Context(), uid, data)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusCreated, r)
}

func (api *rsvpAPI) querySessionRSVPs(ctx echo.Context) error {
	sessionID, err := pathID(ctx, "sessionId")
	if err != nil {
		return err
	}
	rsvps, err := api.svc.QuerySessionRSVPs(ctx.Request().Context(), sessionID)
	if err != nil {
		return errors.Wrap(err, "querying session rsvps")
	}
	if rsvps == nil {
		rsvps = []session.RSVP{}
	}
	return respondList(ctx, rsvps, len(rsvps))
}

// retrieveUserRSVP answers null rather than 404 when the user has not
// responded yet; clients poll this to pre-select the current answer.
func (api *rsvpAPI) retrieveUserRSVP(ctx echo.Context) error {
	userID, err := pathID(ctx, "userId")
	if err != nil {
		return err
	}
	sessionID, err := pathID(ctx, "sessionId")
	if err != nil {
		return err
	}

	r, err := api.svc.GetRSVP(ctx.Request().Context(), userID, sessionID)
	if err != nil {
		if errors.Cause(err) == session.ErrRSVPNotFound {
			return respondNullData(ctx)
		}
		return err
	}
	return respondData(ctx, http.StatusOK, r)
}

func (api *rsvpAPI) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	r, err := api.svc.GetRSVPByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if r.UserID != uid {
		return errHTTPForbidden
	}

	if err = api.svc.DeleteRSVP(ctx.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(ctx, "RSVP removed successfully")
}
