package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go-admissions-backend/internal/domain"
	"go-admissions-backend/pkg/synclog"
)

// Config is injected at construction; the client never reads the process
// environment itself.
type Config struct {
	BaseURL      string
	ServiceToken string
	Timeout      time.Duration
}

// Client is the HTTP adapter for the upstream CMS REST API. All writes are
// wrapped in a {"data": ...} envelope; filters use bracket query syntax;
// relation population uses populate[...] parameters.
type Client struct {
	baseURL      string
	serviceToken string
	http         *http.Client
	log          *slog.Logger
	events       *synclog.Logger
}

func NewClient(cfg Config, log *slog.Logger, events *synclog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		serviceToken: cfg.ServiceToken,
		http:         &http.Client{Timeout: timeout},
		log:          log,
		events:       events,
	}
}

// HasServiceToken reports whether the elevated credential tier is available.
// Without it the write fallback chain is limited to the user tier.
func (c *Client) HasServiceToken() bool {
	return c.serviceToken != ""
}

func (c *Client) bearer(cred domain.Credential) (string, error) {
	switch cred.Tier {
	case domain.TierService:
		if c.serviceToken == "" {
			return "", fmt.Errorf("cms: service token not configured")
		}
		return c.serviceToken, nil
	default:
		if cred.Token == "" {
			return "", fmt.Errorf("cms: user credential has no token")
		}
		return cred.Token, nil
	}
}

// Get issues a collection or single-record read.
func (c *Client) Get(ctx context.Context, path string, query url.Values, cred domain.Credential) (*Envelope, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, cred)
}

// Post creates a record; data is wrapped in the write envelope.
func (c *Client) Post(ctx context.Context, path string, data any, cred domain.Credential) (*Envelope, error) {
	return c.do(ctx, http.MethodPost, path, nil, map[string]any{"data": data}, cred)
}

// Put updates a record; data is wrapped in the write envelope.
func (c *Client) Put(ctx context.Context, path string, data any, cred domain.Credential) (*Envelope, error) {
	return c.do(ctx, http.MethodPut, path, nil, map[string]any{"data": data}, cred)
}

// GetRaw fetches a non-enveloped endpoint (e.g. /api/users/me) and decodes
// the body into out.
func (c *Client) GetRaw(ctx context.Context, path string, query url.Values, cred domain.Credential, out any) error {
	token, err := c.bearer(cred)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{Status: 0, Name: "TransportError", Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Status: resp.StatusCode, Name: "TransportError", Message: err.Error()}
	}
	if resp.StatusCode >= 400 {
		return decodeUpstreamError(resp.StatusCode, body)
	}
	return json.Unmarshal(body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, cred domain.Credential) (*Envelope, error) {
	token, err := c.bearer(cred)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("cms: marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("cms request failed", "method", method, "path", path, "error", err)
		return nil, &UpstreamError{Status: 0, Name: "TransportError", Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Name: "TransportError", Message: err.Error()}
	}

	c.log.Debug("cms request",
		"method", method,
		"path", path,
		"tier", string(cred.Tier),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 400 {
		return nil, decodeUpstreamError(resp.StatusCode, raw)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("cms: malformed response body: %w", err)
	}
	if env.Error != nil {
		return nil, env.Error
	}
	return &env, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// decodeUpstreamError extracts the CMS error shape, falling back to the raw
// body when it does not match.
func decodeUpstreamError(status int, body []byte) *UpstreamError {
	var wrapped struct {
		Error *UpstreamError `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error != nil && wrapped.Error.Message != "" {
		if wrapped.Error.Status == 0 {
			wrapped.Error.Status = status
		}
		return wrapped.Error
	}

	// Older endpoints answer {"message": "..."} or plain text
	var legacy struct {
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &legacy); err == nil {
		msg = legacy.Message
	}
	if msg == "" {
		msg = string(body)
		if len(msg) > 300 {
			msg = msg[:300]
		}
	}
	return &UpstreamError{Status: status, Name: http.StatusText(status), Message: msg}
}

// IsStatus reports whether err is an upstream error with one of the given
// HTTP statuses.
func IsStatus(err error, statuses ...int) bool {
	ue, ok := err.(*UpstreamError)
	if !ok {
		return false
	}
	for _, s := range statuses {
		if ue.Status == s {
			return true
		}
	}
	return false
}

// filterEq appends a bracket-syntax equality filter:
// filters[user][id][$eq]=42
func filterEq(q url.Values, value string, pathParts ...string) {
	key := "filters"
	for _, p := range pathParts {
		key += "[" + p + "]"
	}
	key += "[$eq]"
	q.Set(key, value)
}

func filterEqInt(q url.Values, value int64, pathParts ...string) {
	filterEq(q, strconv.FormatInt(value, 10), pathParts...)
}

// populate requests relation population: populate[skills]=true
func populate(q url.Values, relations ...string) {
	for _, r := range relations {
		q.Set("populate["+r+"]", "true")
	}
}
