package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/SergeyParamoshkin/articlehub/internal/authoring"
	"github.com/SergeyParamoshkin/articlehub/internal/config"
	"github.com/SergeyParamoshkin/articlehub/internal/metrics"
	"github.com/SergeyParamoshkin/articlehub/internal/mockapi"
)

type requestLog struct {
	mu    sync.Mutex
	paths []string
}

func (l *requestLog) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.mu.Lock()
		l.paths = append(l.paths, r.Method+" "+r.URL.Path)
		l.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (l *requestLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.paths)
}

func newTestShell(t *testing.T) (*shell, *bytes.Buffer, *requestLog) {
	t.Helper()

	api, err := mockapi.New()
	require.NoError(t, err)

	reqs := &requestLog{}
	ts := httptest.NewServer(reqs.wrap(api))
	t.Cleanup(ts.Close)

	c := config.Default()
	c.API.BaseURL = ts.URL
	c.Output.Color = "never"

	provider, err := metrics.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	buf := new(bytes.Buffer)
	sh, err := newShell(c, zaptest.NewLogger(t).Sugar(), provider, buf, buf)
	require.NoError(t, err)

	return sh, buf, reqs
}

func login(t *testing.T, sh *shell, buf *bytes.Buffer) {
	t.Helper()

	sh.exec(context.Background(), []string{"login", "peter@example.com", "Passw0rd!"})
	require.True(t, sh.session.HasSession(), buf.String())
	buf.Reset()
}

func TestShellRunLoginAndExit(t *testing.T) {
	sh, buf, _ := newTestShell(t)

	in := strings.NewReader("login peter@example.com Passw0rd!\nwhoami\nexit\nfeed\n")
	require.NoError(t, sh.run(context.Background(), in))

	out := buf.String()
	assert.Contains(t, out, "guest > ")
	assert.Contains(t, out, "[OK] Welcome back, Peter")
	assert.Contains(t, out, "whats up")
	assert.Contains(t, out, "Page 1 of 1")
	assert.Contains(t, out, "Peter Parker <peter@example.com> (PE)")
	assert.Equal(t, 2, strings.Count(out, "PE > "), "nothing runs after exit")
}

func TestShellGuardRedirectsAnonymous(t *testing.T) {
	sh, buf, reqs := newTestShell(t)

	for _, line := range [][]string{{"feed"}, {"articles"}, {"profile"}, {"tag", "add", "go"}} {
		buf.Reset()
		sh.exec(context.Background(), line)
		assert.Contains(t, buf.String(), "Redirected to /login", line)
	}
	assert.Zero(t, reqs.Len())
}

func TestShellGuardRedirectsSignedIn(t *testing.T) {
	sh, buf, _ := newTestShell(t)
	login(t, sh, buf)

	sh.exec(context.Background(), []string{"login", "julia@example.com", "Passw0rd!"})

	out := buf.String()
	assert.Contains(t, out, "Redirected to /")
	assert.Contains(t, out, "whats up")

	u, _ := sh.session.User()
	assert.Equal(t, "Peter", u.FirstName)
}

func TestShellLoginRejected(t *testing.T) {
	sh, buf, _ := newTestShell(t)

	sh.exec(context.Background(), []string{"login", "peter@example.com", "wrong"})

	assert.Contains(t, buf.String(), "[ERROR] Invalid credentials")
	assert.False(t, sh.session.HasSession())
}

func TestShellLoginValidation(t *testing.T) {
	sh, buf, reqs := newTestShell(t)

	sh.exec(context.Background(), []string{"login", "  ", "secret"})

	assert.Contains(t, buf.String(), "Please fix the highlighted fields")
	assert.Contains(t, buf.String(), "emailOrPhone:")
	assert.Zero(t, reqs.Len())
}

func TestShellSignup(t *testing.T) {
	sh, buf, _ := newTestShell(t)

	sh.exec(context.Background(), []string{
		"signup",
		"--first-name", "Ada", "--last-name", "Lovelace",
		"--email", "ada@example.com", "--phone", "+1 555 010 0199",
		"--dob", "1990-12-10",
		"--password", "Str0ng!pw", "--confirm-password", "Str0ng!pw",
		"--interest", "Technology",
	})

	assert.Contains(t, buf.String(), "[OK] Welcome, Ada")
	assert.True(t, sh.session.HasSession())
}

func TestShellSignupMismatch(t *testing.T) {
	sh, buf, reqs := newTestShell(t)

	sh.exec(context.Background(), []string{
		"signup",
		"--first-name", "Ada", "--last-name", "Lovelace",
		"--email", "ada@example.com", "--phone", "+1 555 010 0199",
		"--dob", "1990-12-10",
		"--password", "Str0ng!pw", "--confirm-password", "Str0ng!px",
		"--interest", "Technology",
	})

	assert.Contains(t, buf.String(), "confirmPassword: Passwords don't match")
	assert.Zero(t, reqs.Len())
}

func TestShellReactions(t *testing.T) {
	sh, buf, _ := newTestShell(t)
	login(t, sh, buf)

	ctx := context.Background()
	sh.exec(ctx, []string{"feed"})
	id := sh.feed.Visible()[0].ID
	buf.Reset()

	sh.exec(ctx, []string{"like", id})
	assert.Contains(t, buf.String(), "1 like(s) incl. yours, 0 dislike(s)")

	buf.Reset()
	sh.exec(ctx, []string{"dislike", id})
	assert.Contains(t, buf.String(), "0 like(s), 1 dislike(s) incl. yours")

	buf.Reset()
	sh.exec(ctx, []string{"open", id})
	assert.Contains(t, buf.String(), "Likes: 0  Dislikes: 1*")

	buf.Reset()
	sh.exec(ctx, []string{"block", id})
	assert.Contains(t, buf.String(), "Blocked")
	assert.Contains(t, buf.String(), "1 article(s) blocked")

	_, open := sh.feed.Selected()
	assert.False(t, open)

	buf.Reset()
	sh.exec(ctx, []string{"open", id})
	assert.Contains(t, buf.String(), "[ERROR] Article is blocked")
}

func TestShellAuthoringFlow(t *testing.T) {
	sh, buf, _ := newTestShell(t)
	login(t, sh, buf)

	ctx := context.Background()
	for _, line := range [][]string{
		{"articles"},
		{"new"},
		{"set", "title", "Go", "tips"},
		{"set", "content", `Use interfaces.\nAccept them.`},
		{"set", "category", "Technology"},
		{"tag", "add", "go"},
		{"tag", "add", "go"},
	} {
		sh.exec(ctx, line)
	}
	assert.Contains(t, buf.String(), "[ERROR] Tag already added")

	buf.Reset()
	sh.exec(ctx, []string{"save"})
	assert.Contains(t, buf.String(), "[OK] Article created successfully")
	assert.Contains(t, buf.String(), "Go tips")
	assert.IsType(t, authoring.ListState{}, sh.authoring.State())

	var id string
	for _, a := range sh.authoring.Articles() {
		if a.Title == "Go tips" {
			id = a.ID
			assert.Equal(t, "Use interfaces.\nAccept them.", a.Content)
			assert.Equal(t, []string{"go"}, a.Tags)
		}
	}
	require.NotEmpty(t, id)

	buf.Reset()
	sh.exec(ctx, []string{"delete", id})
	assert.Contains(t, buf.String(), `Delete "Go tips"?`)

	buf.Reset()
	sh.exec(ctx, []string{"confirm"})
	assert.Contains(t, buf.String(), "[OK] Article deleted")
	for _, a := range sh.authoring.Articles() {
		assert.NotEqual(t, id, a.ID)
	}
}

func TestShellDraftValidation(t *testing.T) {
	sh, buf, _ := newTestShell(t)
	login(t, sh, buf)

	ctx := context.Background()
	sh.exec(ctx, []string{"articles"})
	sh.exec(ctx, []string{"new"})
	before := len(sh.authoring.Articles())
	buf.Reset()

	sh.exec(ctx, []string{"save"})

	out := buf.String()
	assert.Contains(t, out, "Please fix the highlighted fields")
	assert.Contains(t, out, "title:")
	assert.Contains(t, out, "content:")
	assert.IsType(t, authoring.CreateState{}, sh.authoring.State())
	assert.Len(t, sh.authoring.Articles(), before)
}

func TestShellProfile(t *testing.T) {
	sh, buf, _ := newTestShell(t)
	login(t, sh, buf)

	ctx := context.Background()
	sh.exec(ctx, []string{"profile", "set", "firstName", "Pete"})
	sh.exec(ctx, []string{"profile", "interest", "Food"})
	buf.Reset()

	sh.exec(ctx, []string{"profile", "save"})

	out := buf.String()
	assert.Contains(t, out, "[OK] Profile updated")
	assert.Contains(t, out, "saved")

	u, _ := sh.session.User()
	assert.Equal(t, "Pete", u.FirstName)
	assert.ElementsMatch(t, []string{"Technology", "Food"}, u.Interests)
}

func TestShellProfileEmailImmutable(t *testing.T) {
	sh, buf, _ := newTestShell(t)
	login(t, sh, buf)

	sh.exec(context.Background(), []string{"profile", "set", "email", "x@example.com"})

	assert.Contains(t, buf.String(), "[ERROR] Email cannot be changed")
}

func TestShellLogout(t *testing.T) {
	sh, buf, _ := newTestShell(t)
	login(t, sh, buf)

	sh.exec(context.Background(), []string{"logout"})

	assert.Contains(t, buf.String(), "[OK] Signed out")
	assert.False(t, sh.session.HasSession())
}

func TestShellUnknownCommand(t *testing.T) {
	sh, buf, _ := newTestShell(t)

	sh.exec(context.Background(), []string{"frobnicate"})

	assert.Contains(t, buf.String(), `[ERROR] unknown command "frobnicate"`)
}

func TestShellLogoutForgetsPreviousUsersArticles(t *testing.T) {
	sh, buf, _ := newTestShell(t)
	login(t, sh, buf)

	ctx := context.Background()
	sh.exec(ctx, []string{"articles"})
	require.NotEmpty(t, sh.authoring.Articles())
	old := sh.authoring.Articles()[0].ID

	sh.exec(ctx, []string{"logout"})
	sh.exec(ctx, []string{"login", "julia@example.com", "Passw0rd!"})
	require.True(t, sh.session.HasSession())

	assert.Empty(t, sh.authoring.Articles())
	assert.ErrorIs(t, sh.authoring.StartEdit(old), authoring.ErrNotFound)

	buf.Reset()
	sh.exec(ctx, []string{"edit", old})
	assert.Contains(t, buf.String(), "[ERROR] Article not found")
	assert.IsType(t, authoring.ListState{}, sh.authoring.State())
}
