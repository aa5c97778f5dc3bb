package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ma114119/Combits-2025/core/notification"
)

func TestNotificationCreate(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	token := getToken(t, jane)

	t.Run("missing title", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"user_id": jane.ID, "type": "reminder", "message": "Session tomorrow"})
		req, rec := newAuthRequest(http.MethodPost, "/api/notifications", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		body := marshalObj(t, echo.Map{
			"user_id": jane.ID,
			"type":    "reminder",
			"title":   "Session tomorrow",
			"message": "Midterm prep starts at 10:00.",
			"link":    "/sessions/1",
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/notifications", token, body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Data notification.Notification `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.NotZero(t, resp.Data.ID)
		assert.False(t, resp.Data.Read) // born unread
		assert.Equal(t, "/sessions/1", resp.Data.Link.String)
	})
}

func TestNotificationMailbox(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	token := getToken(t, jane)

	n1 := env.notify(t, jane.ID, "First")
	n2 := env.notify(t, jane.ID, "Second")
	env.notify(t, john.ID, "Not yours")

	t.Run("someone else's mailbox", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/api/notifications/user/%d", john.ID), token)
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: errorBody(t, "permission denied")}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("own mailbox newest first", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/api/notifications/user/%d", jane.ID), token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data  []notification.Notification `json:"data"`
			Count int                         `json:"count"`
		}
		decodeBody(t, rec, &resp)
		require.Equal(t, 2, resp.Count)
		assert.Equal(t, n2.ID, resp.Data[0].ID)
		assert.Equal(t, n1.ID, resp.Data[1].ID)
	})

	t.Run("unread count", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/api/notifications/user/%d/unread", jane.ID), token)
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: []byte(`{"success":true,"count":2}`)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("someone else's unread count", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/api/notifications/user/%d/unread", john.ID), token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestNotificationMarkRead(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")

	n1 := env.notify(t, jane.ID, "First")
	env.notify(t, jane.ID, "Second")

	t.Run("someone else's notification", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", n1.ID), getToken(t, john))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("single", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", n1.ID), getToken(t, jane))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data notification.Notification `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.True(t, resp.Data.Read)

		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/api/notifications/user/%d/unread", jane.ID), getToken(t, jane))
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: []byte(`{"success":true,"count":1}`)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("all", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/notifications/user/%d/read-all", jane.ID), getToken(t, jane))
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: successMessage(t, "All notifications marked as read")}
		checkCodeAndData(t, tt, rec)

		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/api/notifications/user/%d/unread", jane.ID), getToken(t, jane))
		env.server.ServeHTTP(rec, req)
		tt = httpTest{wantCode: http.StatusOK, wantData: []byte(`{"success":true,"count":0}`)}
		checkCodeAndData(t, tt, rec)
	})
}

func TestNotificationDestroy(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	n := env.notify(t, jane.ID, "Bye")
	path := fmt.Sprintf("/api/notifications/%d", n.ID)

	t.Run("someone else's notification", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, getToken(t, john))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("own notification", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, getToken(t, jane))
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: successMessage(t, "Notification deleted successfully")}
		checkCodeAndData(t, tt, rec)

		req, rec = newAuthRequest(http.MethodDelete, path, getToken(t, jane))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func (env *testEnv) notify(t *testing.T, userID int, title string) notification.Notification {
	t.Helper()
	n, err := env.notifSvc.Create(context.Background(), notification.NewNotification{
		UserID:  userID,
		Type:    "reminder",
		Title:   title,
		Message: "something happened",
	})
	if err != nil {
		t.Fatalf("notify() failed: %v", err)
	}
	return n
}
