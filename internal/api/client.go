// Package api is the client facade over the platform's HTTP surface. It
// maps logical operations to remote endpoints, propagates the bearer token,
// resolves attachment URLs against the API origin, and normalizes the
// inconsistently named fields of complaint records into one canonical shape
// at the boundary.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hostelguard/hostelctl/internal/config"
)

// Client talks to the remote API. It is safe for use from a single
// goroutine; the token is guarded because login and request paths may
// interleave around suspension points.
type Client struct {
	base     string
	origin   string
	httpc    *http.Client
	logger   zerolog.Logger
	strict   bool
	validate *validator.Validate

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// New constructs a client from configuration.
func New(cfg config.Config, logger zerolog.Logger) *Client {
	return &Client{
		base:     strings.TrimRight(cfg.APIBaseURL, "/"),
		origin:   cfg.Origin(),
		httpc:    &http.Client{Timeout: cfg.HTTPTimeout},
		logger:   logger.With().Str("component", "api_client").Logger(),
		strict:   cfg.StrictDecode,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// validateRequest rejects an outgoing request body that fails its validate
// tags before any bytes go on the wire.
func (c *Client) validateRequest(body interface{}) error {
	err := c.validate.Struct(body)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}
	fe := fields[0]
	if fe.Tag() == "email" {
		return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("%q is not a valid email address", fe.Value())}
	}
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("%s is missing or invalid", strings.ToLower(fe.Field()))}
}

// SetAuthToken installs the bearer token used on subsequent requests. An
// empty token removes it.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// OnUnauthorized registers a hook invoked when the server returns 401, so
// the caller can clear persisted session state.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// ToAbsoluteURL passes absolute URLs through and prefixes relative paths
// with the API origin.
func (c *Client) ToAbsoluteURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.origin + path
}

// DownloadURL appends the download variant marker to a resolved URL.
func DownloadURL(resolved string) string {
	if resolved == "" {
		return ""
	}
	if strings.Contains(resolved, "?") {
		return resolved + "&download=1"
	}
	return resolved + "?download=1"
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	unauthorized := c.onUnauthorized
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Warn().Str("path", path).Msg("session rejected by server")
		if unauthorized != nil {
			unauthorized()
		}
		return nil, ErrSessionExpired
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", extractMessage(payload, resp.StatusCode), ErrNotFound)
	case resp.StatusCode >= 400:
		msg := extractMessage(payload, resp.StatusCode)
		c.logger.Debug().Int("status", resp.StatusCode).Str("path", path).Str("error", msg).Msg("request failed")
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}

	return unwrapData(payload), nil
}

// unwrapData strips the server's response envelope when one is present and
// otherwise returns the payload unchanged.
func unwrapData(payload []byte) []byte {
	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if json.Unmarshal(payload, &envelope) == nil && envelope.Success != nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return payload
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	payload, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decode(payload, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	payload, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(payload, out)
}

func decode(payload []byte, out interface{}) error {
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
