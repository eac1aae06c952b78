package client

import (
	"encoding/json"
	"errors"
	"net/http"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return http.StatusText(e.StatusCode)
}

// Rejected reports whether the API refused the request itself (4xx), as
// opposed to failing to serve it.
func (e *APIError) Rejected() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}

	return &APIError{StatusCode: status, Message: msg}
}

// MessageOf returns the API's message for err, or fallback when err did not
// come with one.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	return fallback
}
