package profile

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/SergeyParamoshkin/articlehub/client"
	"github.com/SergeyParamoshkin/articlehub/internal/mockapi"
	"github.com/SergeyParamoshkin/articlehub/internal/model"
	"github.com/SergeyParamoshkin/articlehub/internal/notify"
	"github.com/SergeyParamoshkin/articlehub/internal/session"
)

// countingAPI counts UpdateProfile calls before forwarding them.
type countingAPI struct {
	*client.Client
	calls int64
}

func (c *countingAPI) UpdateProfile(ctx context.Context, data model.UserData) (*client.UserResult, error) {
	atomic.AddInt64(&c.calls, 1)

	return c.Client.UpdateProfile(ctx, data)
}

func newController(t *testing.T, opts ...Option) (*Controller, *session.Store, *countingAPI, *notify.Recorder) {
	t.Helper()
	ctx := context.Background()

	srv, err := mockapi.New(mockapi.WithLogger(zaptest.NewLogger(t).Sugar()))
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	c, err := client.New(ts.URL)
	require.NoError(t, err)
	sess := session.New(c, zaptest.NewLogger(t).Sugar())
	require.NoError(t, sess.Login(ctx, model.LoginPayload{EmailOrPhone: "peter@example.com", Password: "Passw0rd!"}))

	api := &countingAPI{Client: c}
	rec := &notify.Recorder{}
	opts = append([]Option{WithNotifier(rec), WithLogger(zaptest.NewLogger(t).Sugar())}, opts...)

	return New(api, sess, nil, opts...), sess, api, rec
}

func TestFormSeededFromSession(t *testing.T) {
	ctrl, _, _, _ := newController(t)

	f := ctrl.Form()
	assert.Equal(t, "Peter", f.FirstName)
	assert.Equal(t, "peter@example.com", f.Email)
	assert.Equal(t, []string{"Technology"}, f.Interests)
	assert.Equal(t, StatusIdle, ctrl.Status())

	assert.ErrorIs(t, ctrl.SetField("email", "other@example.com"), ErrImmutable)
	assert.ErrorIs(t, ctrl.SetField("nickname", "pp"), ErrUnknownField)
}

func TestSaveUpdatesSessionAndHoldsSaved(t *testing.T) {
	ctrl, sess, _, rec := newController(t, WithSavedHold(50*time.Millisecond))

	require.NoError(t, ctrl.SetField("firstName", "Pete"))
	ctrl.ToggleInterest("Science")
	ctrl.ToggleInterest("Technology")

	require.NoError(t, ctrl.Save(context.Background()))

	u, ok := sess.User()
	require.True(t, ok)
	assert.Equal(t, "Pete", u.FirstName)
	assert.Equal(t, []string{"Science"}, u.Interests)
	assert.Equal(t, notify.Message{Kind: notify.KindSuccess, Text: "Profile updated"}, rec.Last())

	assert.Equal(t, StatusSaved, ctrl.Status())
	assert.Eventually(t, func() bool { return ctrl.Status() == StatusIdle }, time.Second, 10*time.Millisecond)
}

func TestBasicValidationBlocksRequest(t *testing.T) {
	ctrl, _, api, _ := newController(t)

	require.NoError(t, ctrl.SetField("firstName", ""))
	require.NoError(t, ctrl.SetField("phone", "123"))

	err := ctrl.Save(context.Background())
	require.Error(t, err)

	errs := ctrl.Errors()
	assert.Equal(t, "First name is required", errs["firstName"])
	assert.Equal(t, "Phone number must be at least 10 characters", errs["phone"])
	assert.Zero(t, atomic.LoadInt64(&api.calls))
	assert.Equal(t, StatusIdle, ctrl.Status())
}

func TestPasswordSchemaOnlyWhenUsed(t *testing.T) {
	ctrl, _, api, _ := newController(t)

	require.NoError(t, ctrl.SetField("newPassword", "N3w!password"))
	require.NoError(t, ctrl.SetField("confirmPassword", "different"))

	require.Error(t, ctrl.Save(context.Background()))
	errs := ctrl.Errors()
	assert.Equal(t, "Current password is required", errs["currentPassword"])
	assert.Equal(t, "Passwords must match", errs["confirmPassword"])
	assert.Zero(t, atomic.LoadInt64(&api.calls))

	// currentPassword was empty, so nothing is cleared.
	assert.Equal(t, "N3w!password", ctrl.Form().NewPassword)
}

func TestPasswordsClearedAfterAttempt(t *testing.T) {
	ctrl, _, api, rec := newController(t)

	require.NoError(t, ctrl.SetField("currentPassword", "wrong-password"))
	require.NoError(t, ctrl.SetField("newPassword", "N3w!password"))
	require.NoError(t, ctrl.SetField("confirmPassword", "N3w!password"))

	err := ctrl.Save(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt64(&api.calls))
	assert.Equal(t, notify.Message{Kind: notify.KindError, Text: "Current password is incorrect"}, rec.Last())
	assert.Equal(t, StatusIdle, ctrl.Status())

	f := ctrl.Form()
	assert.Empty(t, f.CurrentPassword)
	assert.Empty(t, f.NewPassword)
	assert.Empty(t, f.ConfirmPassword)
}

func TestPasswordChangeSucceeds(t *testing.T) {
	ctx := context.Background()
	ctrl, sess, _, _ := newController(t)

	require.NoError(t, ctrl.SetField("currentPassword", "Passw0rd!"))
	require.NoError(t, ctrl.SetField("newPassword", "N3w!password"))
	require.NoError(t, ctrl.SetField("confirmPassword", "N3w!password"))
	require.NoError(t, ctrl.Save(ctx))

	sess.Logout(ctx)
	require.NoError(t, sess.Login(ctx, model.LoginPayload{EmailOrPhone: "peter@example.com", Password: "N3w!password"}))
}

func TestToggleInterest(t *testing.T) {
	ctrl, _, _, _ := newController(t)

	ctrl.ToggleInterest("Food")
	ctrl.ToggleInterest("  ")
	assert.Equal(t, []string{"Technology", "Food"}, ctrl.Form().Interests)

	ctrl.ToggleInterest("Technology")
	assert.Equal(t, []string{"Food"}, ctrl.Form().Interests)
}
