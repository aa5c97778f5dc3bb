package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ma114119/Combits-2025/core"
)

type User struct {
	ID                int         `json:"user_id" db:"user_id"`
	Name              string      `json:"name" db:"name"`
	Email             string      `json:"email" db:"email"`
	University        null.String `json:"university" db:"university"`
	Semester          null.String `json:"semester" db:"semester"`
	ProfilePictureURL null.String `json:"profile_picture_url" db:"profile_picture_url"`
	PasswordHash      []byte      `json:"-" db:"password_hash"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	University string `json:"university"`
	Semester   string `json:"semester"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.University = core.CleanString(nu.University)
	nu.Semester = core.CleanString(nu.Semester)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkEmailUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Omitted fields keep their current value.
type UpdateUser struct {
	Name              null.String `json:"name"`
	University        null.String `json:"university"`
	Semester          null.String `json:"semester"`
	ProfilePictureURL null.String `json:"profile_picture_url"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	if uu.Name.Valid {
		uu.Name.String = core.CleanString(uu.Name.String)
		if uu.Name.String == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field cannot be blank"})
		}
	}
	return validate.Struct(uu)
}
