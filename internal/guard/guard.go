// Package guard decides whether a route may be entered given the session.
package guard

import (
	"sort"
	"strings"
)

const (
	HomePath  = "/"
	LoginPath = "/login"
)

// SessionView is all a guard looks at.
type SessionView interface {
	HasSession() bool
}

type Decision struct {
	Allowed  bool
	Redirect string
}

type Guard interface {
	Check(s SessionView) Decision
}

// AnonymousOnly admits visitors without a session and sends signed-in users
// to Redirect.
type AnonymousOnly struct {
	Redirect string
}

func (g AnonymousOnly) Check(s SessionView) Decision {
	if s.HasSession() {
		return Decision{Redirect: or(g.Redirect, HomePath)}
	}

	return Decision{Allowed: true}
}

// AuthenticatedOnly admits signed-in users and sends everybody else to
// Redirect.
type AuthenticatedOnly struct {
	Redirect string
}

func (g AuthenticatedOnly) Check(s SessionView) Decision {
	if !s.HasSession() {
		return Decision{Redirect: or(g.Redirect, LoginPath)}
	}

	return Decision{Allowed: true}
}

// Open admits everybody.
type Open struct{}

func (Open) Check(SessionView) Decision { return Decision{Allowed: true} }

// Routes maps route paths to their guard. Paths not listed are open.
type Routes map[string]Guard

// DefaultRoutes is the client's route table.
func DefaultRoutes() Routes {
	anon := AnonymousOnly{Redirect: HomePath}
	authed := AuthenticatedOnly{Redirect: LoginPath}

	return Routes{
		"/login":    anon,
		"/signup":   anon,
		"/":         authed,
		"/articles": authed,
		"/profile":  authed,
		"/logout":   authed,
	}
}

// Resolve checks path against the longest matching route prefix.
func (r Routes) Resolve(path string, s SessionView) Decision {
	if g, ok := r.lookup(path); ok {
		return g.Check(s)
	}

	return Decision{Allowed: true}
}

func (r Routes) lookup(path string) (Guard, bool) {
	if g, ok := r[path]; ok {
		return g, true
	}

	prefixes := make([]string, 0, len(r))
	for p := range r {
		if p != "/" && strings.HasPrefix(path, p+"/") {
			prefixes = append(prefixes, p)
		}
	}
	if len(prefixes) == 0 {
		return nil, false
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })

	return r[prefixes[0]], true
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}
