package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/file"
	"github.com/Ma114119/Combits-2025/core/membership"
)

type fileAPI struct {
	svc       *file.Service
	memberSvc *membership.Service
	validate  *validator.Validate
}

func registerFileAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *file.Service, memberSvc *membership.Service, validate *validator.Validate) {
	api := fileAPI{svc: svc, memberSvc: memberSvc, validate: validate}

	fg := g.Group("/files", jwt)
	fg.POST("/upload", api.upload)
	fg.GET("/group/:groupId", api.queryGroupFiles)
	fg.DELETE("/:id", api.destroy)
}

func (api *fileAPI) upload(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	groupID, err := strconv.Atoi(ctx.FormValue("group_id"))
	if err != nil {
		return errors.Wrap(errHTTPNotFound, "parsing group_id")
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return errors.Wrap(err, "reading multipart file")
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening multipart file")
	}
	defer func() { _ = src.Close() }()

	f, err := api.svc.Upload(ctx.Request().Context(), uid, groupID,
		fh.Filename, ctx.FormValue("description"), fh.Size, src)
	if err != nil {
		return err
	}
	return respondData(ctx, http.StatusCreated, f)
}

func (api *fileAPI) queryGroupFiles(ctx echo.Context) error {
	groupID, err := pathID(ctx, "groupId")
	if err != nil {
		return err
	}
	files, err := api.svc.QueryByGroup(ctx.Request().Context(), groupID)
	if err != nil {
		return errors.Wrap(err, "querying group files")
	}
	if files == nil {
		files = []file.File{}
	}
	return respondList(ctx, files, len(files))
}

// destroy is for the uploader and the group owner/admin.
func (api *fileAPI) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	f, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if f.UploadedBy != uid {
		role, active, err := api.memberSvc.RoleInGroup(ctx.Request().Context(), uid, f.GroupID)
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
	return respondMessage(ctx, "File deleted successfully")
}
