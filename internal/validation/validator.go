// Package validation holds the form schemas checked before any request is
// sent. Errors are keyed by the JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/SergeyParamoshkin/articlehub/internal/model"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	digitPattern = regexp.MustCompile(`\d`)
	// the special characters the signup form accepts
	specialPattern = regexp.MustCompile(`[@$!%*?&]`)
)

// Validator wraps the go-playground validator with the client's rules.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

type Option func(*Validator)

// WithClock fixes "today" for the age check.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

func New(opts ...Option) *Validator {
	v := &Validator{validate: validator.New(), now: time.Now}
	for _, opt := range opts {
		opt(v)
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})
	v.registerRules()

	return v
}

func (v *Validator) registerRules() {
	_ = v.validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	_ = v.validate.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()

		return lowerPattern.MatchString(p) && upperPattern.MatchString(p) &&
			digitPattern.MatchString(p) && specialPattern.MatchString(p)
	})

	// Age is the plain difference of calendar years, 13 to 120 inclusive.
	_ = v.validate.RegisterValidation("age_range", func(fl validator.FieldLevel) bool {
		dob, ok := fl.Field().Interface().(time.Time)
		if !ok || dob.IsZero() {
			return false
		}
		age := v.now().Year() - dob.Year()

		return age >= 13 && age <= 120
	})

	_ = v.validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.Category(fl.Field().String()).Valid()
	})

	_ = v.validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Validate checks a form struct and returns *Error when any field fails.
func (v *Validator) Validate(form interface{}) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	return newError(errs)
}

// Error carries one message per failing field.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	messages := make([]string, 0, len(keys))
	for _, k := range keys {
		messages = append(messages, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return "validation failed: " + strings.Join(messages, ", ")
}

// Field returns the message for one field, empty when it passed.
func (e *Error) Field(name string) string {
	return e.Fields[name]
}

// Fields extracts field errors from err, nil when err is not a validation
// failure.
func Fields(err error) map[string]string {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Fields
	}

	return nil
}

func newError(errs validator.ValidationErrors) *Error {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}

	return &Error{Fields: fields}
}

// messages overrides the generic text per field and tag. Namespaced keys
// win over plain field keys.
var messages = map[string]string{
	"firstName.required":                         "First name is required",
	"firstName.min":                              "First name must be at least 2 characters",
	"firstName.max":                              "First name must be less than 50 characters",
	"lastName.required":                          "Last name is required",
	"lastName.min":                               "Last name must be at least 2 characters",
	"lastName.max":                               "Last name must be less than 50 characters",
	"email.required":                             "Email is required",
	"email.email":                                "Please enter a valid email address",
	"phone.required":                             "Phone number is required",
	"phone.phone":                                "Please enter a valid phone number",
	"phone.min":                                  "Phone number must be at least 10 characters",
	"dob.age_range":                              "You must be between 13 and 120 years old",
	"password.required":                          "Password is required",
	"password.min":                               "Password must be at least 8 characters",
	"password.strong_password":                   "Password must contain uppercase, lowercase, number, and special character",
	"confirmPassword.required":                   "Please confirm your password",
	"confirmPassword.eqfield":                    "Passwords don't match",
	"interests.min":                              "Please select at least one article preference",
	"emailOrPhone.required":                      "Email or phone is required",
	"currentPassword.required":                   "Current password is required",
	"newPassword.min":                            "New password must be at least 8 characters",
	"title.notblank":                             "Title is required",
	"content.notblank":                           "Content is required",
	"category.required":                          "Category is required",
	"category.category":                          "Please pick one of the listed categories",
	"PasswordChangeForm.confirmPassword.eqfield": "Passwords must match",
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Namespace()+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
