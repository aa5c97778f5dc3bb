package group

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core"
)

// Group types
const (
	TypePublic  = "public"
	TypePrivate = "private"
)

// Capacity bounds, enforced at creation only.
const (
	MinCapacity = 3
	MaxCapacity = 10
)

type Group struct {
	ID              int         `json:"group_id" db:"group_id"`
	CreatorID       int         `json:"creator_id" db:"creator_id"`
	Name            string      `json:"name" db:"name"`
	CourseName      string      `json:"course_name" db:"course_name"`
	CourseCode      null.String `json:"course_code" db:"course_code"`
	Description     null.String `json:"description" db:"description"`
	MaxCapacity     int         `json:"max_capacity" db:"max_capacity"`
	GroupType       string      `json:"group_type" db:"group_type"`
	MeetingSchedule null.String `json:"meeting_schedule" db:"meeting_schedule"`
	MeetingLocation null.String `json:"meeting_location" db:"meeting_location"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"` // UTC

	// read-time enrichment
	CreatorName    string `json:"creator_name,omitempty" db:"creator_name"`
	CreatorEmail   string `json:"creator_email,omitempty" db:"creator_email"`
	CurrentMembers int    `json:"current_members" db:"current_members"`
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name            string `json:"name" validate:"required"`
	CourseName      string `json:"course_name" validate:"required"`
	CourseCode      string `json:"course_code"`
	Description     string `json:"description"`
	MaxCapacity     int    `json:"max_capacity" validate:"required,min=3,max=10"`
	GroupType       string `json:"group_type" validate:"omitempty,oneof=public private"`
	MeetingSchedule string `json:"meeting_schedule"`
	MeetingLocation string `json:"meeting_location"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.CourseName = core.CleanString(ng.CourseName)
	ng.CourseCode = core.CleanString(ng.CourseCode)
	ng.GroupType = core.CleanString(ng.GroupType, true /* lower */)
	if ng.GroupType == "" {
		ng.GroupType = TypePublic
	}
	return validate.Struct(ng)
}

// UpdateGroup defines what information may be provided to modify an existing
// Group. Omitted fields keep their current value; the capacity range is not
// re-checked on update.
type UpdateGroup struct {
	Name            null.String `json:"name"`
	CourseName      null.String `json:"course_name"`
	CourseCode      null.String `json:"course_code"`
	Description     null.String `json:"description"`
	MaxCapacity     null.Int    `json:"max_capacity"`
	GroupType       null.String `json:"group_type" validate:"omitempty"`
	MeetingSchedule null.String `json:"meeting_schedule"`
	MeetingLocation null.String `json:"meeting_location"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	if ug.GroupType.Valid {
		ug.GroupType.String = core.CleanString(ug.GroupType.String, true /* lower */)
		if ug.GroupType.String != TypePublic && ug.GroupType.String != TypePrivate {
			return core.NewValidationError(nil, core.FieldError{Field: "group_type", Error: "must be one of [public private]"})
		}
	}
	return validate.Struct(ug)
}

// QueryFilter narrows down a group listing.
// Type is an exact match; CourseName a case-insensitive substring match.
type QueryFilter struct {
	Type       string `query:"type"`
	CourseName string `query:"course_name"`
}

func (qf *QueryFilter) Clean() {
	qf.Type = core.CleanString(qf.Type, true /* lower */)
	qf.CourseName = core.CleanString(qf.CourseName)
}
