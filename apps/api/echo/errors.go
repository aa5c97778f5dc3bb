package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/file"
	"github.com/Ma114119/Combits-2025/core/group"
	"github.com/Ma114119/Combits-2025/core/membership"
	"github.com/Ma114119/Combits-2025/core/message"
	"github.com/Ma114119/Combits-2025/core/notification"
	"github.com/Ma114119/Combits-2025/core/session"
	"github.com/Ma114119/Combits-2025/core/user"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHTTPForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHTTPNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// domainErrCodes maps business-rule sentinels to status codes. Anything
// missing here is a server error.
var domainErrCodes = map[error]int{
	user.ErrNotFound:         http.StatusNotFound,
	group.ErrNotFound:        http.StatusNotFound,
	membership.ErrNotFound:   http.StatusNotFound,
	session.ErrNotFound:      http.StatusNotFound,
	session.ErrRSVPNotFound:  http.StatusNotFound,
	message.ErrNotFound:      http.StatusNotFound,
	file.ErrNotFound:         http.StatusNotFound,
	notification.ErrNotFound: http.StatusNotFound,

	user.ErrEmailExists:         http.StatusBadRequest,
	membership.ErrGroupFull:     http.StatusBadRequest,
	membership.ErrAlreadyMember: http.StatusBadRequest,

	membership.ErrCreatorImmutable: http.StatusForbidden,
	message.ErrNotMember:           http.StatusForbidden,
	message.ErrForbidden:           http.StatusForbidden,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that maps our
// errors onto the response envelope. signalShutdown is called whenever a
// core.shutdown error is caught so the server can stop gracefully.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if domainCode, ok := domainErrCodes[cause]; ok {
			code = domainCode
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = origErr.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			default: // any other error is a server error; details stay out of the response
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.Name = claims.Name
					usr.Email = claims.Email
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, response{Success: false, Error: message})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
