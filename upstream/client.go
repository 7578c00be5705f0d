// Package upstream talks to the coffee chain backend. Every call takes the caller's
// credential explicitly; the client itself holds no session state.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"azv-admin-api/models"

	"github.com/go-resty/resty/v2"
)

// Options configures the backend client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	// PageSize is used when walking paginated collections.
	PageSize int
}

type Client struct {
	http     *resty.Client
	logger   *slog.Logger
	pageSize int
}

// New creates a backend client. Only GET requests are retried, on transport errors
// and 5xx answers.
func New(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(300 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:     client,
		logger:   logger.With("component", "upstream"),
		pageSize: opts.PageSize,
	}
}

// Error is a failed backend call. Status is 0 for transport failures.
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: backend answered %d: %s", e.Op, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthorized reports a rejected or expired credential.
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Validation reports a request the backend refused as invalid.
func (e *Error) Validation() bool {
	return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
}

func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

func (c *Client) request(ctx context.Context, cred models.Credential) *resty.Request {
	r := c.http.R().SetContext(ctx)
	if !cred.Empty() {
		r.SetHeader("Authorization", "Token "+cred.Token)
	}
	return r
}

func (c *Client) check(op string, resp *resty.Response, err error, fallback string) error {
	if err != nil {
		c.logger.Warn("backend call failed", "op", op, "err", err)
		return &Error{Op: op, Message: fallback, Err: err}
	}
	if resp.IsError() {
		msg := errorMessage(resp.Body(), fallback)
		c.logger.Warn("backend refused call", "op", op, "status", resp.StatusCode(), "msg", msg)
		return &Error{Op: op, Status: resp.StatusCode(), Message: msg}
	}
	c.logger.Debug("backend call", "op", op, "status", resp.StatusCode(), "ms", resp.Time().Milliseconds())
	return nil
}

// errorMessage picks the backend's own explanation: "detail", then "error", then a
// short raw body (field validation maps), then the fallback.
func errorMessage(body []byte, fallback string) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "error"} {
			raw, ok := payload[key]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				return s
			}
		}
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed != "" && len(trimmed) <= 512 && (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) {
		return trimmed
	}
	return fallback
}

// decode unmarshals a successful response body.
func decode(op string, resp *resty.Response, out any) error {
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode(), Message: "unexpected response shape", Err: err}
	}
	return nil
}
