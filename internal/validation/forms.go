package validation

import (
	"strings"
	"time"

	"github.com/SergeyParamoshkin/articlehub/internal/model"
)

type LoginForm struct {
	EmailOrPhone string `json:"emailOrPhone" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

// Payload trims both fields, as the form does before checking them.
func (f LoginForm) Payload() model.LoginPayload {
	return model.LoginPayload{
		EmailOrPhone: strings.TrimSpace(f.EmailOrPhone),
		Password:     strings.TrimSpace(f.Password),
	}
}

func (v *Validator) Login(f LoginForm) (model.LoginPayload, error) {
	p := f.Payload()
	trimmed := LoginForm{EmailOrPhone: p.EmailOrPhone, Password: p.Password}
	if err := v.Validate(trimmed); err != nil {
		return model.LoginPayload{}, err
	}

	return p, nil
}

type SignupForm struct {
	FirstName       string    `json:"firstName" validate:"required,min=2,max=50"`
	LastName        string    `json:"lastName" validate:"required,min=2,max=50"`
	Email           string    `json:"email" validate:"required,email"`
	Phone           string    `json:"phone" validate:"required,phone"`
	DOB             time.Time `json:"dob" validate:"age_range"`
	Password        string    `json:"password" validate:"required,min=8,strong_password"`
	ConfirmPassword string    `json:"confirmPassword" validate:"required,eqfield=Password"`
	Interests       []string  `json:"interests" validate:"min=1"`
}

func (v *Validator) Signup(f SignupForm) (model.SignupPayload, error) {
	if err := v.Validate(f); err != nil {
		return model.SignupPayload{}, err
	}

	return model.SignupPayload{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
		DOB:       f.DOB,
		Password:  f.Password,
		Interests: f.Interests,
	}, nil
}

// BasicInfoForm is the always-checked half of the profile form. Email is
// not part of it: it cannot change after signup.
type BasicInfoForm struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone" validate:"required,min=10"`
}

// PasswordChangeForm is checked only when one of its fields is filled in.
type PasswordChangeForm struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword"`
}

func (f PasswordChangeForm) InUse() bool {
	return f.CurrentPassword != "" || f.NewPassword != "" || f.ConfirmPassword != ""
}

// DraftForm is the authoring form's required fields.
type DraftForm struct {
	Title    string `json:"title" validate:"notblank"`
	Content  string `json:"content" validate:"notblank"`
	Category string `json:"category" validate:"required,category"`
}
