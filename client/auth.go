package client

import (
	"context"
	"net/http"

	"github.com/SergeyParamoshkin/articlehub/internal/model"
)

// UserResult is the API's answer to auth and profile calls.
type UserResult struct {
	User    *model.User `json:"user"`
	Message string      `json:"message"`
}

func (c *Client) userCall(ctx context.Context, r request) (*UserResult, error) {
	res := &UserResult{}
	if err := c.do(ctx, r, res); err != nil {
		return nil, err
	}
	if res.User == nil {
		return nil, ErrInvalidResponse
	}

	return res, nil
}

// Verify asks the API who the cookie jar's session belongs to.
func (c *Client) Verify(ctx context.Context) (*model.User, error) {
	res, err := c.userCall(ctx, request{method: http.MethodGet, path: "/auth/verify"})
	if err != nil {
		return nil, err
	}

	return res.User, nil
}

func (c *Client) Login(ctx context.Context, p model.LoginPayload) (*UserResult, error) {
	return c.userCall(ctx, request{method: http.MethodPost, path: "/auth/login", in: p})
}

func (c *Client) Signup(ctx context.Context, p model.SignupPayload) (*UserResult, error) {
	return c.userCall(ctx, request{method: http.MethodPost, path: "/auth/signup", in: p})
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/auth/logout"}, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, data model.UserData) (*UserResult, error) {
	return c.userCall(ctx, request{method: http.MethodPut, path: "/profile", in: data})
}
