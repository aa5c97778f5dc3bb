package session

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core"
)

type Session struct {
	ID              int         `json:"session_id" db:"session_id"`
	GroupID         int         `json:"group_id" db:"group_id"`
	CreatorID       int         `json:"creator_id" db:"creator_id"`
	Title           string      `json:"title" db:"title"`
	SessionDate     time.Time   `json:"session_date" db:"session_date"`
	DurationMinutes int         `json:"duration_minutes" db:"duration_minutes"`
	Location        null.String `json:"location" db:"location"`
	Agenda          null.String `json:"agenda" db:"agenda"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"` // UTC

	// read-time enrichment
	CreatorName    string `json:"creator_name,omitempty" db:"creator_name"`
	CreatorEmail   string `json:"creator_email,omitempty" db:"creator_email"`
	TotalRSVPs     int    `json:"total_rsvps" db:"total_rsvps"`
	AttendingCount int    `json:"attending_count" db:"attending_count"`
}

// NewSession contains information needed to schedule a session.
// The creator is taken from the authenticated context.
type NewSession struct {
	GroupID         int       `json:"group_id" validate:"required"`
	Title           string    `json:"title" validate:"required"`
	SessionDate     time.Time `json:"session_date" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1"`
	Location        string    `json:"location"`
	Agenda          string    `json:"agenda"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Title = core.CleanString(ns.Title)
	ns.Location = core.CleanString(ns.Location)
	return validate.Struct(ns)
}

// UpdateSession defines what information may be provided to modify an
// existing Session. Omitted fields keep their current value.
type UpdateSession struct {
	Title           null.String `json:"title"`
	SessionDate     null.Time   `json:"session_date"`
	DurationMinutes null.Int    `json:"duration_minutes"`
	Location        null.String `json:"location"`
	Agenda          null.String `json:"agenda"`
}

func (us *UpdateSession) Validate(validate *validator.Validate) error {
	if us.Title.Valid {
		us.Title.String = core.CleanString(us.Title.String)
		if us.Title.String == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "title", Error: "this field cannot be blank"})
		}
	}
	if us.DurationMinutes.Valid && us.DurationMinutes.Int < 1 {
		return core.NewValidationError(nil, core.FieldError{Field: "duration_minutes", Error: "must be at least 1"})
	}
	return validate.Struct(us)
}

// RSVP statuses
const (
	RSVPAttending    = "attending"
	RSVPMaybe        = "maybe"
	RSVPNotAttending = "not_attending"
)

type RSVP struct {
	ID          int       `json:"rsvp_id" db:"rsvp_id"`
	SessionID   int       `json:"session_id" db:"session_id"`
	UserID      int       `json:"user_id" db:"user_id"`
	Status      string    `json:"status" db:"status"`
	RespondedAt time.Time `json:"responded_at" db:"responded_at"` // UTC

	// read-time enrichment
	Name       string      `json:"name,omitempty" db:"name"`
	Email      string      `json:"email,omitempty" db:"email"`
	University null.String `json:"university,omitempty" db:"university"`
}

// NewRSVP records or replaces a user's attendance response.
type NewRSVP struct {
	SessionID int    `json:"session_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=attending maybe not_attending"`
}

func (nr *NewRSVP) Validate(validate *validator.Validate) error {
	nr.Status = core.CleanString(nr.Status, true /* lower */)
	return validate.Struct(nr)
}
