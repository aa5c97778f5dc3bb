package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

// response is the envelope every endpoint answers with. Reads and creates
// fill Data, deletes and read-all fill Message, the unread tally fills Count.
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

func respondData(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, response{Success: true, Data: data})
}

// respondNullData answers success with an explicit null payload.
func respondNullData(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, response{Success: true, Data: json.RawMessage("null")})
}

func respondList(ctx echo.Context, data interface{}, count int) error {
	return ctx.JSON(http.StatusOK, response{Success: true, Data: data, Count: &count})
}

func respondMessage(ctx echo.Context, msg string) error {
	return ctx.JSON(http.StatusOK, response{Success: true, Message: msg})
}

func respondCount(ctx echo.Context, count int) error {
	return ctx.JSON(http.StatusOK, response{Success: true, Count: &count})
}
