package membership

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core"
)

// Membership statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusCreator  = "creator"
)

// Roles
const (
	RoleOwner     = "owner"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

// rolePriorities orders roles for display: owner first, plain members last.
var rolePriorities = map[string]int{
	RoleOwner:     1,
	RoleAdmin:     2,
	RoleModerator: 3,
	RoleMember:    4,
}

func RolePriority(role string) int {
	if p, ok := rolePriorities[role]; ok {
		return p
	}
	return rolePriorities[RoleMember]
}

type Membership struct {
	ID      int    `json:"membership_id" db:"membership_id"`
	UserID  int    `json:"user_id" db:"user_id"`
	GroupID int    `json:"group_id" db:"group_id"`
	Status  string `json:"status" db:"status"`
	// StoredRole is the nullable role column; clients only ever see the
	// derived Role.
	StoredRole null.String `json:"-" db:"role"`
	Role       string      `json:"role" db:"-"`
	JoinedAt   time.Time   `json:"joined_at" db:"joined_at"` // UTC
}

// EffectiveRole derives the role used for authorization: the creator (or an
// explicit owner role) is the owner; otherwise the stored role when set, or
// plain member. Recomputed on every read, never cached.
func (m Membership) EffectiveRole() string {
	if m.Status == StatusCreator || (m.StoredRole.Valid && m.StoredRole.String == RoleOwner) {
		return RoleOwner
	}
	if m.StoredRole.Valid && m.StoredRole.String != "" {
		return m.StoredRole.String
	}
	return RoleMember
}

// Derive fills the exposed Role from the stored columns.
func (m *Membership) Derive() { m.Role = m.EffectiveRole() }

// IsActive reports whether the membership counts towards group occupancy.
func (m Membership) IsActive() bool {
	return m.Status == StatusApproved || m.Status == StatusCreator
}

// GroupMember is a membership enriched with the member's profile,
// as returned by the per-group member listing.
type GroupMember struct {
	Membership
	Name              string      `json:"name" db:"member_name"`
	Email             string      `json:"email" db:"member_email"`
	University        null.String `json:"university" db:"university"`
	Semester          null.String `json:"semester" db:"semester"`
	ProfilePictureURL null.String `json:"profile_picture_url" db:"profile_picture_url"`
}

// UserGroup is a membership enriched with its group,
// as returned by the per-user membership listing.
type UserGroup struct {
	Membership
	GroupName       string      `json:"name" db:"group_name"`
	CourseName      string      `json:"course_name" db:"course_name"`
	CourseCode      null.String `json:"course_code" db:"course_code"`
	MaxCapacity     int         `json:"max_capacity" db:"max_capacity"`
	GroupType       string      `json:"group_type" db:"group_type"`
	MeetingSchedule null.String `json:"meeting_schedule" db:"meeting_schedule"`
	MeetingLocation null.String `json:"meeting_location" db:"meeting_location"`
	CreatorName     string      `json:"creator_name" db:"creator_name"`
}

// NewMembership is a join request. The requesting user is taken from the
// authenticated context, never from the payload.
type NewMembership struct {
	GroupID int `json:"group_id" validate:"required"`
}

func (nm *NewMembership) Validate(validate *validator.Validate) error {
	return validate.Struct(nm)
}

// UpdateMembership is a partial update of status (approval workflow) and/or
// role. The owner role is excluded on purpose: ownership follows the creator
// membership and cannot be reassigned.
type UpdateMembership struct {
	Status string `json:"status" validate:"omitempty,oneof=pending approved"`
	Role   string `json:"role" validate:"omitempty,oneof=admin moderator member"`
}

func (um *UpdateMembership) Validate(validate *validator.Validate) error {
	um.Status = core.CleanString(um.Status, true /* lower */)
	um.Role = core.CleanString(um.Role, true /* lower */)
	if um.Status == "" && um.Role == "" {
		return core.NewValidationError(errors.New("no valid fields to update"))
	}
	return validate.Struct(um)
}
