// Package client talks to the article platform's REST API. Credentials are
// carried by the cookie jar the API sets on login, so every request made
// through one Client acts as the same session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const CompletedCountName = "http/client/completed_count"

// ErrInvalidResponse is returned when a 2xx response lacks the expected
// payload.
var ErrInvalidResponse = errors.New("invalid response from server")

type Client struct {
	http.Client
	Addr string

	logger    *zap.SugaredLogger
	completed metric.Int64Counter
}

type Option func(*Client) error

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) error {
		c.logger = l

		return nil
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.Timeout = d

		return nil
	}
}

// WithMeter counts completed requests by HTTP method and response status.
func WithMeter(m metric.Meter) Option {
	return func(c *Client) error {
		counter, err := m.Int64Counter(CompletedCountName,
			metric.WithDescription("Count of completed requests, by HTTP method and response status"),
		)
		if err != nil {
			return fmt.Errorf("creating request counter: %w", err)
		}
		c.completed = counter

		return nil
	}
}

// New returns a client for the API at addr with an empty cookie jar.
func New(addr string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	c := &Client{
		Client: http.Client{Jar: jar},
		Addr:   strings.TrimRight(addr, "/"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Client) log() *zap.SugaredLogger {
	if c.logger == nil {
		return zap.NewNop().Sugar()
	}

	return c.logger
}

func (c *Client) Ping() (string, error) {
	return c.PingContext(context.Background())
}

func (c *Client) PingContext(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), err
}

// request describes one API call. in is JSON-encoded unless body is set.
type request struct {
	method      string
	path        string
	in          interface{}
	body        io.Reader
	contentType string
}

func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	body, contentType := r.body, r.contentType
	if body == nil && r.in != nil {
		raw, err := json.Marshal(r.in)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", r.method, r.path, err)
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.Addr+r.path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.Do(req)
	if err != nil {
		c.record(ctx, r.method, "error")
		c.log().Debugw("request failed", "method", r.method, "path", r.path, "err", err)

		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	c.record(ctx, r.method, fmt.Sprint(resp.StatusCode))
	c.log().Debugw("request completed",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", r.method, r.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", r.method, r.path, err)
	}

	return nil
}

func (c *Client) record(ctx context.Context, method, status string) {
	if c.completed == nil {
		return
	}

	c.completed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", status),
	))
}
