// Package profile drives the settings page: personal details, an optional
// password change and article preferences.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/articlehub/client"
	"github.com/SergeyParamoshkin/articlehub/internal/model"
	"github.com/SergeyParamoshkin/articlehub/internal/notify"
	"github.com/SergeyParamoshkin/articlehub/internal/validation"
)

var (
	ErrNoSession    = errors.New("not signed in")
	ErrImmutable    = errors.New("email cannot be changed")
	ErrUnknownField = errors.New("unknown profile field")
)

type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
)

// API is the part of the remote API the profile calls.
type API interface {
	UpdateProfile(ctx context.Context, data model.UserData) (*client.UserResult, error)
}

// Session is where the form is seeded from and saved users go.
type Session interface {
	User() (*model.User, bool)
	ReplaceUser(u *model.User)
}

// Form is the editable settings form.
type Form struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
	Interests       []string
}

func (f Form) basic() validation.BasicInfoForm {
	return validation.BasicInfoForm{FirstName: f.FirstName, LastName: f.LastName, Phone: f.Phone}
}

func (f Form) password() validation.PasswordChangeForm {
	return validation.PasswordChangeForm{
		CurrentPassword: f.CurrentPassword,
		NewPassword:     f.NewPassword,
		ConfirmPassword: f.ConfirmPassword,
	}
}

func (f Form) data() model.UserData {
	return model.UserData{
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		Email:           f.Email,
		Phone:           f.Phone,
		CurrentPassword: f.CurrentPassword,
		NewPassword:     f.NewPassword,
		ConfirmPassword: f.ConfirmPassword,
		Interests:       append([]string{}, f.Interests...),
	}
}

type Controller struct {
	api      API
	session  Session
	validate *validation.Validator
	notifier notify.Notifier
	logger   *zap.SugaredLogger
	hold     time.Duration

	mu     sync.Mutex
	form   Form
	errs   map[string]string
	status Status
	timer  *time.Timer
}

type Option func(*Controller)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Controller) { c.logger = l }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithSavedHold sets how long StatusSaved is shown.
func WithSavedHold(d time.Duration) Option {
	return func(c *Controller) { c.hold = d }
}

func New(api API, sess Session, v *validation.Validator, opts ...Option) *Controller {
	if v == nil {
		v = validation.New()
	}

	c := &Controller{
		api:      api,
		session:  sess,
		validate: v,
		notifier: notify.Nop{},
		logger:   zap.NewNop().Sugar(),
		hold:     2 * time.Second,
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()

	return c
}

// Reset seeds the form from the session user and drops field errors.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errs = nil
	u, ok := c.session.User()
	if !ok {
		c.form = Form{Interests: []string{}}

		return
	}
	c.form = Form{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Interests: append([]string{}, u.Interests...),
	}
}

func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.form
	f.Interests = append([]string{}, c.form.Interests...)

	return f
}

// SetField sets one form field by its JSON name.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "firstName":
		c.form.FirstName = value
	case "lastName":
		c.form.LastName = value
	case "phone":
		c.form.Phone = value
	case "currentPassword":
		c.form.CurrentPassword = value
	case "newPassword":
		c.form.NewPassword = value
	case "confirmPassword":
		c.form.ConfirmPassword = value
	case "email":
		return ErrImmutable
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	delete(c.errs, name)

	return nil
}

// ToggleInterest adds the category to the preferences or removes it.
func (c *Controller) ToggleInterest(category string) {
	category = strings.TrimSpace(category)
	if category == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]string, 0, len(c.form.Interests)+1)
	found := false
	for _, i := range c.form.Interests {
		if i == category {
			found = true

			continue
		}
		kept = append(kept, i)
	}
	if !found {
		kept = append(kept, category)
	}
	c.form.Interests = kept
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

// Errors returns the field errors of the last save.
func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]string, len(c.errs))
	for k, v := range c.errs {
		out[k] = v
	}

	return out
}

// Save validates and submits the form. Password fields are cleared after
// any attempt that carried a current password.
func (c *Controller) Save(ctx context.Context) error {
	if _, ok := c.session.User(); !ok {
		return ErrNoSession
	}

	c.mu.Lock()
	form := c.form
	form.Interests = append([]string{}, c.form.Interests...)
	c.errs = nil
	c.mu.Unlock()

	defer func() {
		if form.CurrentPassword != "" {
			c.clearPasswords()
		}
	}()

	if err := c.check(form); err != nil {
		c.mu.Lock()
		c.errs = validation.Fields(err)
		c.mu.Unlock()

		return err
	}

	c.setStatus(StatusSaving)

	res, err := c.api.UpdateProfile(ctx, form.data())
	if err != nil {
		c.setStatus(StatusIdle)
		c.logger.Errorw("profile update failed", "err", err)
		c.notifier.Error(client.MessageOf(err, "Something went wrong"))

		return err
	}

	c.session.ReplaceUser(res.User)
	c.markSaved()

	msg := res.Message
	if msg == "" {
		msg = "Profile updated"
	}
	c.notifier.Success(msg)
	c.logger.Infow("profile updated", "user", res.User.ID)

	return nil
}

// check runs the basic schema, then the password schema when that section
// is in use.
func (c *Controller) check(f Form) error {
	if err := c.validate.Validate(f.basic()); err != nil {
		return err
	}

	if pw := f.password(); pw.InUse() {
		return c.validate.Validate(pw)
	}

	return nil
}

func (c *Controller) clearPasswords() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form.CurrentPassword = ""
	c.form.NewPassword = ""
	c.form.ConfirmPassword = ""
}

func (c *Controller) setStatus(s Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.status = s
}

func (c *Controller) markSaved() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.status = StatusSaved

	var t *time.Timer
	t = time.AfterFunc(c.hold, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.timer == t {
			c.status = StatusIdle
			c.timer = nil
		}
	})
	c.timer = t
}
