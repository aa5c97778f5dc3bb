package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestEffectiveRole(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		storedRole null.String
		want       string
	}{
		{"creator status wins", StatusCreator, null.String{}, RoleOwner},
		{"creator status beats stored role", StatusCreator, null.StringFrom(RoleMember), RoleOwner},
		{"stored owner role", StatusApproved, null.StringFrom(RoleOwner), RoleOwner},
		{"stored admin role", StatusApproved, null.StringFrom(RoleAdmin), RoleAdmin},
		{"stored moderator role", StatusApproved, null.StringFrom(RoleModerator), RoleModerator},
		{"no stored role", StatusApproved, null.String{}, RoleMember},
		{"blank stored role", StatusApproved, null.StringFrom(""), RoleMember},
		{"pending defaults to member", StatusPending, null.String{}, RoleMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Membership{Status: tt.status, StoredRole: tt.storedRole}
			assert.Equal(t, tt.want, m.EffectiveRole())

			m.Derive()
			assert.Equal(t, tt.want, m.Role)
		})
	}
}

func TestRolePriority(t *testing.T) {
	assert.Less(t, RolePriority(RoleOwner), RolePriority(RoleAdmin))
	assert.Less(t, RolePriority(RoleAdmin), RolePriority(RoleModerator))
	assert.Less(t, RolePriority(RoleModerator), RolePriority(RoleMember))

	// anything unknown sorts with plain members
	assert.Equal(t, RolePriority(RoleMember), RolePriority("janitor"))
	assert.Equal(t, RolePriority(RoleMember), RolePriority(""))
}

func TestIsActive(t *testing.T) {
	assert.True(t, Membership{Status: StatusApproved}.IsActive())
	assert.True(t, Membership{Status: StatusCreator}.IsActive())
	assert.False(t, Membership{Status: StatusPending}.IsActive())
	assert.False(t, Membership{}.IsActive())
}
