package remote

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
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/profile-playground/internal/platform/logging"
	"github.com/janisto/profile-playground/internal/profile"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "profile-playground"
	maxBodyBytes     = 1 << 20
	maxErrorBytes    = 64 << 10
)

// Client implements Service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root, e.g. "http://localhost:8081".
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout bounds every request, including reading the response body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a profile API client. A nil httpClient uses http.DefaultClient.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient: httpClient,
		timeout:    defaultTimeout,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListProfiles implements Service.
func (c *Client) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	var out []profile.Profile
	if _, err := c.do(ctx, OpList, http.MethodGet, "/profiles", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []profile.Profile{}
	}
	return out, nil
}

// CreateProfile implements Service.
func (c *Client) CreateProfile(ctx context.Context, in profile.Input) (*profile.Profile, error) {
	var out profile.Profile
	decoded, err := c.do(ctx, OpCreate, http.MethodPost, "/profiles", in.Profile(""), &out)
	if err != nil {
		return nil, err
	}
	if !decoded || out.ID.IsZero() {
		return nil, &RequestError{
			Op:      OpCreate,
			Method:  http.MethodPost,
			Status:  http.StatusOK,
			Message: "response carried no profile id",
			cause:   ErrUpstream,
		}
	}
	return &out, nil
}

// UpdateProfile implements Service. The body carries the id. When the API answers
// without a body, the sent profile is returned.
func (c *Client) UpdateProfile(ctx context.Context, id profile.ID, in profile.Input) (*profile.Profile, error) {
	sent := in.Profile(id)
	var out profile.Profile
	decoded, err := c.do(ctx, OpUpdate, http.MethodPut, profilePath(id), sent, &out)
	if err != nil {
		return nil, err
	}
	if !decoded {
		return &sent, nil
	}
	if out.ID.IsZero() {
		out.ID = id
	}
	return &out, nil
}

// DeleteProfile implements Service.
func (c *Client) DeleteProfile(ctx context.Context, id profile.ID) error {
	_, err := c.do(ctx, OpDelete, http.MethodDelete, profilePath(id), nil, nil)
	return err
}

func profilePath(id profile.ID) string {
	return "/profiles/" + url.PathEscape(id.String())
}

// do sends one request under the client timeout and decodes a 2xx body into out.
// It reports whether a body was decoded.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.doRequest(ctx, method, path, in)
	if err != nil {
		return false, c.transportError(ctx, op, method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, c.statusError(ctx, op, method, resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return false, c.transportError(ctx, op, method, err)
	}
	applog.LoggerFromContext(ctx).Debug("profile api response",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, &RequestError{
			Op:      op,
			Method:  method,
			Status:  resp.StatusCode,
			Message: "malformed response body",
			cause:   fmt.Errorf("%w: %w", ErrUpstream, err),
		}
	}
	return true, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if traceID := applog.TraceIDFromContext(ctx); traceID != nil {
		req.Header.Set("X-Request-Id", *traceID)
	}

	return c.httpClient.Do(req)
}

func (c *Client) transportError(ctx context.Context, op, method string, err error) *RequestError {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("no response within %s", c.timeout)
	}
	applog.LogWarn(ctx, "profile api unreachable", zap.String("op", op), zap.Error(err))
	return &RequestError{
		Op:      op,
		Method:  method,
		Message: msg,
		cause:   fmt.Errorf("%w: %w", ErrTransport, err),
	}
}

func (c *Client) statusError(ctx context.Context, op, method string, resp *http.Response) *RequestError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))

	cause := ErrUpstream
	switch {
	case resp.StatusCode == http.StatusNotFound:
		cause = ErrNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		cause = ErrRejected
	}

	applog.LogWarn(ctx, "profile api request failed",
		zap.String("op", op),
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
	)
	return &RequestError{
		Op:      op,
		Method:  method,
		Status:  resp.StatusCode,
		Message: errorMessage(resp.StatusCode, body),
		cause:   cause,
	}
}

// errorMessage prefers the API's "message" (json-server, Express) or "detail"
// (RFC 9457) field and falls back to the status text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if m := strings.TrimSpace(payload.Message); m != "" {
			return m
		}
		if d := strings.TrimSpace(payload.Detail); d != "" {
			return d
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

// Compile-time interface check
var _ Service = (*Client)(nil)
