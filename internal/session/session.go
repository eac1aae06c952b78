// Package session holds who is signed in for the lifetime of one running
// client. The store is passed to every controller that needs it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/articlehub/client"
	"github.com/SergeyParamoshkin/articlehub/internal/model"
)

// Authenticator is the part of the remote API the session needs.
type Authenticator interface {
	Verify(ctx context.Context) (*model.User, error)
	Login(ctx context.Context, p model.LoginPayload) (*client.UserResult, error)
	Signup(ctx context.Context, p model.SignupPayload) (*client.UserResult, error)
	Logout(ctx context.Context) error
}

// AuthError is a login or signup the API refused.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

type Store struct {
	mu     sync.RWMutex
	user   *model.User
	auth   Authenticator
	logger *zap.SugaredLogger
}

func New(auth Authenticator, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Store{auth: auth, logger: logger}
}

// User returns a copy of the signed-in user.
func (s *Store) User() (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil, false
	}
	u := *s.user
	u.Interests = append([]string(nil), s.user.Interests...)

	return &u, true
}

// UserID is empty when nobody is signed in.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return ""
	}

	return s.user.ID
}

func (s *Store) HasSession() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.user != nil
}

// Verify restores a session from existing credentials. It never fails: an
// unknown session is simply anonymous.
func (s *Store) Verify(ctx context.Context) {
	user, err := s.auth.Verify(ctx)
	if err != nil {
		s.logger.Debugw("no session to restore", "err", err)
		s.set(nil)

		return
	}

	s.set(user)
	s.logger.Infow("session restored", "user", user.ID)
}

func (s *Store) Login(ctx context.Context, p model.LoginPayload) error {
	res, err := s.auth.Login(ctx, p)
	if err != nil {
		return authFailure("login", err, "Login failed")
	}

	s.set(res.User)
	s.logger.Infow("logged in", "user", res.User.ID)

	return nil
}

// Signup registers a user and signs them in.
func (s *Store) Signup(ctx context.Context, p model.SignupPayload) error {
	res, err := s.auth.Signup(ctx, p)
	if err != nil {
		return authFailure("signup", err, "Signup failed")
	}

	s.set(res.User)
	s.logger.Infow("signed up", "user", res.User.ID)

	return nil
}

// Logout forgets the user whether or not the API call succeeds.
func (s *Store) Logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Errorw("logout request failed", "err", err)
	}

	s.set(nil)
}

// ReplaceUser swaps in the user the API returned after a profile update.
func (s *Store) ReplaceUser(u *model.User) {
	if u == nil {
		return
	}
	s.set(u)
}

func (s *Store) SetInterests(interests []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return
	}
	s.user.Interests = append([]string(nil), interests...)
}

func (s *Store) set(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u == nil {
		s.user = nil

		return
	}
	cp := *u
	cp.Password = ""
	cp.Interests = append([]string(nil), u.Interests...)
	s.user = &cp
}

func authFailure(op string, err error, fallback string) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Rejected() {
		return &AuthError{Message: client.MessageOf(err, fallback), Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}
