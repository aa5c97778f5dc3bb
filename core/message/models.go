package message

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core"
)

// sanitizer strips any markup from incoming chat text before storage.
var sanitizer = bluemonday.StrictPolicy()

type Message struct {
	ID        int       `json:"message_id" db:"message_id"`
	GroupID   int       `json:"group_id" db:"group_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC

	// sender enrichment, filled at read/send time
	UserName          string      `json:"user_name,omitempty" db:"user_name"`
	UserEmail         string      `json:"user_email,omitempty" db:"user_email"`
	ProfilePictureURL null.String `json:"profile_picture_url,omitempty" db:"profile_picture_url"`
	UserRole          string      `json:"user_role,omitempty" db:"user_role"`
}

// NewMessage contains a chat message to append to a group transcript.
// The sender is taken from the authenticated context.
type NewMessage struct {
	GroupID int    `json:"group_id" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Message = core.CleanString(sanitizer.Sanitize(nm.Message))
	return validate.Struct(nm)
}
