package notification

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core"
)

type Notification struct {
	ID        int         `json:"notification_id" db:"notification_id"`
	UserID    int         `json:"user_id" db:"user_id"`
	Type      string      `json:"type" db:"type"`
	Title     string      `json:"title" db:"title"`
	Message   string      `json:"message" db:"message"`
	Link      null.String `json:"link" db:"link"`
	Read      bool        `json:"read" db:"read"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"` // UTC
}

// NewNotification contains information needed to append to a user's mailbox.
type NewNotification struct {
	UserID  int    `json:"user_id" validate:"required"`
	Type    string `json:"type" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
	Link    string `json:"link"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Type = core.CleanString(nn.Type)
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	return validate.Struct(nn)
}
