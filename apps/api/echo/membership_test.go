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
	"github.com/Ma114119/Combits-2025/core/membership"
)

func TestMembershipJoinPublic(t *testing.T) {
	env := setup(t)
	path := "/api/memberships"

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	mary := env.createUser(t, "Mary Major", "mary@test.com", "hellodolly")
	bob := env.createUser(t, "Bob Minor", "bob@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "OS Crammers", 3, group.TypePublic)
	body := marshalObj(t, echo.Map{"group_id": grp.ID})

	t.Run("auto-approved", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, john), body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Data membership.Membership `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, membership.StatusApproved, resp.Data.Status)
		assert.Equal(t, membership.RoleMember, resp.Data.Role)
	})

	t.Run("duplicate request", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, john), body)
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: errorBody(t, "already a member of this group")}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("full group", func(t *testing.T) {
		// third head fills the capacity-3 group (creator counts)
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, mary), body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodPost, path, getToken(t, bob), body)
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: errorBody(t, "group is full")}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unknown group", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, bob), marshalObj(t, echo.Map{"group_id": 12345}))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMembershipJoinPrivate(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "DB Heroes", 5, group.TypePrivate)

	body := marshalObj(t, echo.Map{"group_id": grp.ID})
	req, rec := newAuthRequest(http.MethodPost, "/api/memberships", getToken(t, john), body)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data membership.Membership `json:"data"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, membership.StatusPending, resp.Data.Status)

	// pending members do not count towards occupancy
	grp, err := env.grpSvc.GetByID(context.Background(), grp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, grp.CurrentMembers)

	// the owner hears about the request
	count, err := env.notifSvc.UnreadCount(context.Background(), jane.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMembershipUpdate(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	mary := env.createUser(t, "Mary Major", "mary@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "DB Heroes", 5, group.TypePrivate)
	m := env.join(t, john, grp.ID)
	path := fmt.Sprintf("/api/memberships/%d", m.ID)

	t.Run("not the owner", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"status": "approved"})
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, mary), body)
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: errorBody(t, "permission denied")}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("nothing to update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, jane), marshalObj(t, echo.Map{}))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("owner role cannot be assigned", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"role": "owner"})
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, jane), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("approval", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"status": "approved"})
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, jane), body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data membership.Membership `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, membership.StatusApproved, resp.Data.Status)

		// occupancy moved, and the requester got the good news
		updated, err := env.grpSvc.GetByID(context.Background(), grp.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.CurrentMembers)

		count, err := env.notifSvc.UnreadCount(context.Background(), john.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("role assignment", func(t *testing.T) {
		body := marshalObj(t, echo.Map{"role": "moderator"})
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, jane), body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data membership.Membership `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, membership.RoleModerator, resp.Data.Role)
		assert.Equal(t, membership.StatusApproved, resp.Data.Status) // untouched
	})

	t.Run("creator membership is immutable", func(t *testing.T) {
		creatorM := creatorMembership(t, env, jane.ID, grp.ID)
		body := marshalObj(t, echo.Map{"role": "member"})
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/memberships/%d", creatorM.ID), getToken(t, jane), body)
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: errorBody(t, "the creator membership cannot be changed")}
		checkCodeAndData(t, tt, rec)
	})
}

func TestMembershipLists(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	mary := env.createUser(t, "Mary Major", "mary@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "OS Crammers", 5, group.TypePublic)
	johnM := env.join(t, john, grp.ID)
	env.join(t, mary, grp.ID)

	// promote john so the ordering has something to bite on
	_, err := env.memberSvc.Update(context.Background(), johnM.ID, membership.UpdateMembership{Role: membership.RoleAdmin})
	require.NoError(t, err)

	token := getToken(t, jane)

	t.Run("group members by role priority", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/api/memberships/group/%d", grp.ID), token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data  []membership.GroupMember `json:"data"`
			Count int                      `json:"count"`
		}
		decodeBody(t, rec, &resp)
		require.Equal(t, 3, resp.Count)
		assert.Equal(t, jane.ID, resp.Data[0].UserID) // owner
		assert.Equal(t, membership.RoleOwner, resp.Data[0].Role)
		assert.Equal(t, john.ID, resp.Data[1].UserID) // admin
		assert.Equal(t, mary.ID, resp.Data[2].UserID) // member
		assert.Equal(t, "Mary Major", resp.Data[2].Name)
	})

	t.Run("user memberships", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/api/memberships/user/%d", john.ID), token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data  []membership.UserGroup `json:"data"`
			Count int                    `json:"count"`
		}
		decodeBody(t, rec, &resp)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, grp.ID, resp.Data[0].GroupID)
		assert.Equal(t, "OS Crammers", resp.Data[0].GroupName)
		assert.Equal(t, "Jane Doe", resp.Data[0].CreatorName)
	})
}

func TestMembershipDestroy(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	mary := env.createUser(t, "Mary Major", "mary@test.com", "hellodolly")
	bob := env.createUser(t, "Bob Minor", "bob@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "OS Crammers", 5, group.TypePublic)
	johnM := env.join(t, john, grp.ID)
	maryM := env.join(t, mary, grp.ID)
	bobM := env.join(t, bob, grp.ID)

	t.Run("stranger cannot remove", func(t *testing.T) {
		stranger := env.createUser(t, "Eve Lurker", "eve@test.com", "hellodolly")
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/memberships/%d", johnM.ID), getToken(t, stranger))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("plain member cannot remove others", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/memberships/%d", johnM.ID), getToken(t, mary))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("member leaves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/memberships/%d", maryM.ID), getToken(t, mary))
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: successMessage(t, "Membership removed successfully")}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("owner removes a member", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/memberships/%d", bobM.ID), getToken(t, jane))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("creator membership only goes with the group", func(t *testing.T) {
		creatorM := creatorMembership(t, env, jane.ID, grp.ID)
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/memberships/%d", creatorM.ID), getToken(t, jane))
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: errorBody(t, "the creator membership cannot be changed")}
		checkCodeAndData(t, tt, rec)
	})
}

// creatorMembership digs up the membership row created alongside the group.
func creatorMembership(t *testing.T, env *testEnv, userID, groupID int) membership.Membership {
	t.Helper()
	members, err := env.memberSvc.QueryGroupMembers(context.Background(), groupID)
	require.NoError(t, err)
	for _, m := range members {
		if m.UserID == userID && m.Status == membership.StatusCreator {
			return m.Membership
		}
	}
	t.Fatalf("no creator membership for user %d in group %d", userID, groupID)
	return membership.Membership{}
}
