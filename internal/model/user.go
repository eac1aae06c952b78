package model

import (
	"strings"
	"time"
)

// User data model. Password is write-only: it is sent on signup and never
// echoed back.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	DOB       time.Time `json:"dob"`
	Password  string    `json:"password,omitempty"`
	Interests []string  `json:"interests"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Name() string {
	return u.FirstName + " " + u.LastName
}

// Initials mirrors the avatar badge: first two letters of the first name.
func (u *User) Initials() string {
	if u == nil || u.FirstName == "" {
		return "GT"
	}

	r := []rune(u.FirstName)
	if len(r) > 2 {
		r = r[:2]
	}

	return strings.ToUpper(string(r))
}

// UserData is the profile update payload.
type UserData struct {
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	CurrentPassword string   `json:"currentPassword"`
	NewPassword     string   `json:"newPassword"`
	ConfirmPassword string   `json:"confirmPassword"`
	Interests       []string `json:"interests"`
}

type LoginPayload struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

type SignupPayload struct {
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	DOB       time.Time `json:"dob"`
	Password  string    `json:"password"`
	Interests []string  `json:"interests"`
}
