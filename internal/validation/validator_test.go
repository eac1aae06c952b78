package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
}

func validSignup() SignupForm {
	return SignupForm{
		FirstName:       "Peter",
		LastName:        "Parker",
		Email:           "peter@example.com",
		Phone:           "+1 (555) 010-0100",
		DOB:             time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC),
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
		Interests:       []string{"Technology"},
	}
}

func TestSignupValid(t *testing.T) {
	v := New(WithClock(fixedClock))

	p, err := v.Signup(validSignup())
	require.NoError(t, err)
	assert.Equal(t, "peter@example.com", p.Email)
}

func TestSignupPasswordMismatch(t *testing.T) {
	v := New(WithClock(fixedClock))
	f := validSignup()
	f.ConfirmPassword = "Passw0rd?"

	_, err := v.Signup(f)

	fields := Fields(err)
	require.NotNil(t, fields)
	assert.Equal(t, "Passwords don't match", fields["confirmPassword"])
	assert.Len(t, fields, 1)
}

func TestSignupFieldRules(t *testing.T) {
	v := New(WithClock(fixedClock))

	tests := []struct {
		name   string
		mutate func(*SignupForm)
		field  string
		want   string
	}{
		{"short first name", func(f *SignupForm) { f.FirstName = "P" }, "firstName", "First name must be at least 2 characters"},
		{"bad email", func(f *SignupForm) { f.Email = "peter" }, "email", "Please enter a valid email address"},
		{"bad phone", func(f *SignupForm) { f.Phone = "12ab" }, "phone", "Please enter a valid phone number"},
		{"too young", func(f *SignupForm) { f.DOB = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) }, "dob", "You must be between 13 and 120 years old"},
		{"missing dob", func(f *SignupForm) { f.DOB = time.Time{} }, "dob", "You must be between 13 and 120 years old"},
		{"weak password", func(f *SignupForm) { f.Password, f.ConfirmPassword = "password1", "password1" }, "password", "Password must contain uppercase, lowercase, number, and special character"},
		{"no interests", func(f *SignupForm) { f.Interests = nil }, "interests", "Please select at least one article preference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validSignup()
			tt.mutate(&f)

			_, err := v.Signup(f)
			assert.Equal(t, tt.want, Fields(err)[tt.field])
		})
	}
}

func TestAgeBoundaries(t *testing.T) {
	v := New(WithClock(fixedClock))

	f := validSignup()
	f.DOB = time.Date(2013, time.December, 31, 0, 0, 0, 0, time.UTC)
	_, err := v.Signup(f)
	assert.NoError(t, err, "age counts calendar years only")

	f.DOB = time.Date(1906, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err = v.Signup(f)
	assert.NoError(t, err)

	f.DOB = time.Date(1905, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err = v.Signup(f)
	assert.Error(t, err)
}

func TestLoginTrims(t *testing.T) {
	v := New()

	_, err := v.Login(LoginForm{EmailOrPhone: "   ", Password: "x"})
	assert.Equal(t, "Email or phone is required", Fields(err)["emailOrPhone"])

	p, err := v.Login(LoginForm{EmailOrPhone: " peter@example.com ", Password: " Passw0rd! "})
	require.NoError(t, err)
	assert.Equal(t, "peter@example.com", p.EmailOrPhone)
	assert.Equal(t, "Passw0rd!", p.Password)
}

func TestPasswordChange(t *testing.T) {
	v := New()

	assert.False(t, PasswordChangeForm{}.InUse())

	err := v.Validate(PasswordChangeForm{NewPassword: "N3w!password", ConfirmPassword: "other"})
	fields := Fields(err)
	assert.Equal(t, "Current password is required", fields["currentPassword"])
	assert.Equal(t, "Passwords must match", fields["confirmPassword"])

	err = v.Validate(PasswordChangeForm{CurrentPassword: "old", NewPassword: "short", ConfirmPassword: "short"})
	assert.Equal(t, "New password must be at least 8 characters", Fields(err)["newPassword"])
}

func TestDraftForm(t *testing.T) {
	v := New()

	err := v.Validate(DraftForm{Title: "  ", Content: "", Category: "Food"})
	fields := Fields(err)
	assert.Equal(t, "Title is required", fields["title"])
	assert.Equal(t, "Content is required", fields["content"])

	err = v.Validate(DraftForm{Title: "t", Content: "c", Category: "Gardening"})
	assert.Equal(t, "Please pick one of the listed categories", Fields(err)["category"])

	assert.NoError(t, v.Validate(DraftForm{Title: "t", Content: "c", Category: "Food"}))
}

func TestErrorStringIsSorted(t *testing.T) {
	err := &Error{Fields: map[string]string{"b": "two", "a": "one"}}
	assert.Equal(t, "validation failed: a: one, b: two", err.Error())
}
