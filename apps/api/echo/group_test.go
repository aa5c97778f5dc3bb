package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ma114119/Combits-2025/core/group"
)

func TestGroupCreate(t *testing.T) {
	env := setup(t)
	path := "/api/groups"

	usr := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	token := getToken(t, usr)

	tests := []httpTest{
		{
			name:     "capacity below minimum",
			body:     marshalObj(t, echo.Map{"name": "Tiny", "course_name": "Algorithms", "max_capacity": 2}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "capacity above maximum",
			body:     marshalObj(t, echo.Map{"name": "Huge", "course_name": "Algorithms", "max_capacity": 11}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing course name",
			body:     marshalObj(t, echo.Map{"name": "Nameless", "max_capacity": 5}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad group type",
			body:     marshalObj(t, echo.Map{"name": "Odd", "course_name": "Algorithms", "max_capacity": 5, "group_type": "secret"}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, path, token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("success", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"name": "OS Crammers", "course_name": "Operating Systems", "max_capacity": 5})
		req, rec := newAuthRequest(http.MethodPost, path, token, body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Success bool        `json:"success"`
			Data    group.Group `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.True(t, resp.Success)
		assert.NotZero(t, resp.Data.ID)
		assert.Equal(t, usr.ID, resp.Data.CreatorID)
		assert.Equal(t, group.TypePublic, resp.Data.GroupType) // defaulted
		assert.Equal(t, 1, resp.Data.CurrentMembers)           // the creator

		// the creator membership exists and is immutable in role
		members, err := env.memberSvc.QueryGroupMembers(req.Context(), resp.Data.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, usr.ID, members[0].UserID)
		assert.Equal(t, "owner", members[0].Role)
	})
}

func TestGroupQuery(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	token := getToken(t, usr)

	env.createGroup(t, usr, "OS Crammers", 5, group.TypePublic)
	env.createGroup(t, usr, "DB Heroes", 5, group.TypePrivate)
	grp, err := env.grpSvc.Create(context.Background(), usr.ID, group.NewGroup{
		Name:        "Algo Nerds",
		CourseName:  "Advanced Algorithms",
		MaxCapacity: 4,
		GroupType:   group.TypePublic,
	})
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		wantCount int
	}{
		{"all groups", "/api/groups", 3},
		{"by type", "/api/groups?type=private", 1},
		{"by course substring", "/api/groups?course_name=algo", 1},
		{"no match", "/api/groups?course_name=chemistry", 0},
		{"type and course", "/api/groups?type=public&course_name=Operating", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			env.server.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp struct {
				Success bool          `json:"success"`
				Data    []group.Group `json:"data"`
				Count   int           `json:"count"`
			}
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.wantCount, resp.Count)
			assert.Len(t, resp.Data, tt.wantCount)
		})
	}

	t.Run("retrieve enriched", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/api/groups/%d", grp.ID), token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data group.Group `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Jane Doe", resp.Data.CreatorName)
		assert.Equal(t, "jane@test.com", resp.Data.CreatorEmail)
		assert.Equal(t, 1, resp.Data.CurrentMembers)
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/groups/12345", token)
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: errorBody(t, "group not found")}
		checkCodeAndData(t, tt, rec)
	})
}

func TestGroupUpdate(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	other := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	grp := env.createGroup(t, usr, "OS Crammers", 5, group.TypePublic)
	path := fmt.Sprintf("/api/groups/%d", grp.ID)

	t.Run("not the creator", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"name": "Taken Over"})
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, other), body)
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: errorBody(t, "permission denied")}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("bad group type", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"group_type": "secret"})
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, usr), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("partial update", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"description": "We meet twice a week.", "group_type": "private"})
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, usr), body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data group.Group `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, "We meet twice a week.", resp.Data.Description.String)
		assert.Equal(t, group.TypePrivate, resp.Data.GroupType)
		// omitted fields keep their value
		assert.Equal(t, "OS Crammers", resp.Data.Name)
		assert.Equal(t, 5, resp.Data.MaxCapacity)
	})
}

func TestGroupDestroy(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	other := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	grp := env.createGroup(t, usr, "OS Crammers", 5, group.TypePublic)
	path := fmt.Sprintf("/api/groups/%d", grp.ID)

	t.Run("not the creator", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, getToken(t, other))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("creator", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, getToken(t, usr))
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: successMessage(t, "Group deleted successfully")}
		checkCodeAndData(t, tt, rec)

		// memberships go with the group
		members, err := env.memberSvc.QueryUserMemberships(req.Context(), usr.ID)
		require.NoError(t, err)
		assert.Empty(t, members)
	})
}
