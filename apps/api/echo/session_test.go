package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ma114119/Combits-2025/core/group"
	"github.com/Ma114119/Combits-2025/core/membership"
	"github.com/Ma114119/Combits-2025/core/session"
	"github.com/Ma114119/Combits-2025/core/user"
)

func TestSessionCreate(t *testing.T) {
	env := setup(t)
	path := "/api/sessions"

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	mary := env.createUser(t, "Mary Major", "mary@test.com", "hellodolly")
	eve := env.createUser(t, "Eve Lurker", "eve@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "OS Crammers", 5, group.TypePublic)
	johnM := env.join(t, john, grp.ID)
	env.join(t, mary, grp.ID)

	// john moderates, mary stays a plain member
	_, err := env.memberSvc.Update(context.Background(), johnM.ID, membership.UpdateMembership{Role: membership.RoleModerator})
	require.NoError(t, err)

	date := time.Now().Add(48 * time.Hour).UTC()
	body := marshalObj(t, echo.Map{
		"group_id":         grp.ID,
		"title":            "Midterm prep",
		"session_date":     date,
		"duration_minutes": 90,
		"location":         "Library room 2",
	})

	tests := []httpTest{
		{
			name:     "plain member",
			token:    getToken(t, mary),
			body:     body,
			wantCode: http.StatusForbidden,
			wantData: errorBody(t, "permission denied"),
		},
		{
			name:     "non-member",
			token:    getToken(t, eve),
			body:     body,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "missing title",
			token:    getToken(t, jane),
			body:     marshalObj(t, echo.Map{"group_id": grp.ID, "session_date": date, "duration_minutes": 90}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "zero duration",
			token:    getToken(t, jane),
			body:     marshalObj(t, echo.Map{"group_id": grp.ID, "title": "Quickie", "session_date": date}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown group",
			token:    getToken(t, jane),
			body:     marshalObj(t, echo.Map{"group_id": 12345, "title": "Ghost", "session_date": date, "duration_minutes": 30}),
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("moderator", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, john), body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Data session.Session `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.NotZero(t, resp.Data.ID)
		assert.Equal(t, john.ID, resp.Data.CreatorID)
		assert.Equal(t, "Midterm prep", resp.Data.Title)
		assert.Equal(t, 90, resp.Data.DurationMinutes)
	})

	t.Run("owner", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, jane), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})
}

func TestSessionQuery(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "OS Crammers", 5, group.TypePublic)
	env.join(t, john, grp.ID)

	later := env.createSession(t, jane, grp.ID, "Final review", time.Now().Add(96*time.Hour))
	sooner := env.createSession(t, jane, grp.ID, "Midterm prep", time.Now().Add(24*time.Hour))

	// one attending, one maybe
	_, err := env.sessSvc.Respond(context.Background(), jane.ID, session.NewRSVP{SessionID: sooner.ID, Status: session.RSVPAttending})
	require.NoError(t, err)
	_, err = env.sessSvc.Respond(context.Background(), john.ID, session.NewRSVP{SessionID: sooner.ID, Status: session.RSVPMaybe})
	require.NoError(t, err)

	token := getToken(t, jane)

	t.Run("date ascending with tallies", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/api/sessions/group/%d", grp.ID), token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data  []session.Session `json:"data"`
			Count int               `json:"count"`
		}
		decodeBody(t, rec, &resp)
		require.Equal(t, 2, resp.Count)
		assert.Equal(t, sooner.ID, resp.Data[0].ID)
		assert.Equal(t, later.ID, resp.Data[1].ID)
		assert.Equal(t, 2, resp.Data[0].TotalRSVPs)
		assert.Equal(t, 1, resp.Data[0].AttendingCount)
		assert.Equal(t, 0, resp.Data[1].TotalRSVPs)
		assert.Equal(t, "Jane Doe", resp.Data[0].CreatorName)
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/sessions/12345", token)
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: errorBody(t, "session not found")}
		checkCodeAndData(t, tt, rec)
	})
}

func TestSessionUpdate(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	mary := env.createUser(t, "Mary Major", "mary@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "OS Crammers", 5, group.TypePublic)
	johnM := env.join(t, john, grp.ID)
	env.join(t, mary, grp.ID)

	_, err := env.memberSvc.Update(context.Background(), johnM.ID, membership.UpdateMembership{Role: membership.RoleModerator})
	require.NoError(t, err)

	s := env.createSession(t, john, grp.ID, "Midterm prep", time.Now().Add(24*time.Hour))
	path := fmt.Sprintf("/api/sessions/%d", s.ID)

	t.Run("plain member", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"title": "Hijacked"})
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, mary), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("blank title", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"title": "  "})
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, john), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("session creator", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"location": "Cafeteria"})
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, john), body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data session.Session `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Cafeteria", resp.Data.Location.String)
		// omitted fields keep their value
		assert.Equal(t, "Midterm prep", resp.Data.Title)
	})

	t.Run("group owner", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"duration_minutes": 120})
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, jane), body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data session.Session `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, 120, resp.Data.DurationMinutes)
	})
}

func TestSessionDestroy(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	mary := env.createUser(t, "Mary Major", "mary@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "OS Crammers", 5, group.TypePublic)
	env.join(t, mary, grp.ID)

	s := env.createSession(t, jane, grp.ID, "Midterm prep", time.Now().Add(24*time.Hour))
	path := fmt.Sprintf("/api/sessions/%d", s.ID)

	t.Run("plain member", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, getToken(t, mary))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("session creator", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, getToken(t, jane))
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: successMessage(t, "Session deleted successfully")}
		checkCodeAndData(t, tt, rec)

		req, rec = newAuthRequest(http.MethodGet, path, getToken(t, jane))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func (env *testEnv) createSession(t *testing.T, creator user.User, groupID int, title string, date time.Time) session.Session {
	t.Helper()
	s, err := env.sessSvc.Create(context.Background(), creator.ID, session.NewSession{
		GroupID:         groupID,
		Title:           title,
		SessionDate:     date.UTC(),
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("createSession() failed: %v", err)
	}
	return s
}
