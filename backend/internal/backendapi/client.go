// ============================================================================
// backend/internal/backendapi/client.go
// HTTP client for the scheduling REST backend
// ============================================================================

package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// ErrTransport marks failures where no usable HTTP response came back.
var ErrTransport = errors.New("backend unreachable")

// APIError is a response the backend answered but did not accept: a non-2xx
// status, or a status envelope other than "success".
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Config holds client settings.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	CSRFCookieName string
}

// Client talks JSON to the backend. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	csrfCookie string
	metrics    *Metrics
	cache      *LookupCache
}

// New creates a client. metrics and cache may be nil.
func New(cfg Config, metrics *Metrics, cache *LookupCache) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", cfg.BaseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	cookieName := cfg.CSRFCookieName
	if cookieName == "" {
		cookieName = "csrftoken"
	}
	return &Client{
		baseURL:    base,
		http:       &http.Client{Timeout: timeout, Jar: jar},
		csrfCookie: cookieName,
		metrics:    metrics,
		cache:      cache,
	}, nil
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// ============================================================================
// CSRF token forwarding
// ============================================================================

type csrfKey struct{}

// WithCSRFToken attaches the browser's CSRF token to ctx so mutating calls
// made on its behalf carry it.
func WithCSRFToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, csrfKey{}, token)
}

// CSRFTokenFrom returns the token attached by WithCSRFToken.
func CSRFTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

func (c *Client) csrfToken(ctx context.Context) (token string, fromJar bool) {
	if token := CSRFTokenFrom(ctx); token != "" {
		return token, false
	}
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == c.csrfCookie {
			return ck.Value, true
		}
	}
	return "", false
}

// ============================================================================
// Request plumbing
// ============================================================================

// do sends one request and returns the status code and raw body.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, payload any) (int, []byte, error) {
	start := time.Now()

	u := c.baseURL.JoinPath(path)
	// Backend routes are slash-terminated.
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s payload: %w", endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		if token, fromJar := c.csrfToken(ctx); token != "" {
			req.Header.Set("X-CSRFToken", token)
			if !fromJar {
				req.AddCookie(&http.Cookie{Name: c.csrfCookie, Value: token})
			}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(endpoint, method, "transport_error", start)
		return 0, nil, fmt.Errorf("%s %s: %w: %w", method, path, ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(endpoint, method, "transport_error", start)
		return resp.StatusCode, nil, fmt.Errorf("read %s response: %w: %w", endpoint, ErrTransport, err)
	}
	c.metrics.observe(endpoint, method, outcome(resp.StatusCode), start)
	return resp.StatusCode, data, nil
}

func outcome(status int) string {
	switch {
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return "ok"
	}
}

// check turns a raw response into an error per the endpoint's contract.
func check(status int, body []byte, requireStatus bool) error {
	var obj map[string]json.RawMessage
	isObject := json.Unmarshal(body, &obj) == nil

	if status < 200 || status > 299 {
		return &APIError{StatusCode: status, Message: failureMessage(obj, status)}
	}
	if !requireStatus {
		return nil
	}
	if !isObject || stringField(obj, "status") != "success" {
		return &APIError{StatusCode: status, Message: failureMessage(obj, status)}
	}
	return nil
}

// failureMessage prefers the backend's own explanation.
func failureMessage(obj map[string]json.RawMessage, status int) string {
	for _, key := range []string{"message", "detail", "error"} {
		if msg := stringField(obj, key); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// ============================================================================
// Resource operations
// ============================================================================

// List fetches a list endpoint and decodes its items into out (a slice pointer).
func (c *Client) List(ctx context.Context, ep ListEndpoint, query url.Values, out any) error {
	status, body, err := c.do(ctx, ep.Name, http.MethodGet, ep.Path, query, nil)
	if err != nil {
		return err
	}
	if err := check(status, body, ep.Envelope.RequireStatus); err != nil {
		return err
	}
	items, err := ep.Envelope.Items(body)
	if err != nil {
		return fmt.Errorf("decode %s: %w", ep.Name, err)
	}
	if err := json.Unmarshal(items, out); err != nil {
		return fmt.Errorf("decode %s items: %w", ep.Name, err)
	}
	return nil
}

// Load lists a resource.
func (c *Client) Load(ctx context.Context, r Resource, out any) error {
	return c.List(ctx, r.List, nil, out)
}

// Create posts a new record.
func (c *Client) Create(ctx context.Context, r Resource, payload any) error {
	return c.send(ctx, r.Name+".create", http.MethodPost, r.Create, payload, r.StatusEnvelope)
}

// Update puts a record by id. Resources without an update route are upserts.
func (c *Client) Update(ctx context.Context, r Resource, id string, payload any) error {
	if r.Update == "" {
		return c.Create(ctx, r, payload)
	}
	return c.send(ctx, r.Name+".update", http.MethodPut, withID(r.Update, id), payload, r.StatusEnvelope)
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, r Resource, id string) error {
	return c.send(ctx, r.Name+".delete", http.MethodDelete, withID(r.Delete, id), nil, r.StatusEnvelope)
}

func (c *Client) send(ctx context.Context, endpoint, method, path string, payload any, requireStatus bool) error {
	status, body, err := c.do(ctx, endpoint, method, path, nil, payload)
	if err != nil {
		return err
	}
	return check(status, body, requireStatus)
}

func withID(pattern, id string) string {
	return strings.Replace(pattern, "{id}", url.PathEscape(id), 1)
}

// Ping checks that the backend answers at all; any HTTP status counts.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.do(ctx, "ping", http.MethodGet, "/", nil, nil)
	return err
}
