// Package transport provides the authenticated HTTP client shared by the
// tracker and workspace API clients.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/agentstation/mirrorsync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response body is carried into
// the returned error message.
const maxErrorBody = 2048

// Client provides HTTP client functionality with authentication. The
// system name tags every error the client produces so per-record
// failures identify which remote rejected them.
type Client struct {
	http   *http.Client
	auth   Authenticator
	system string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a transport client for the named remote system.
func New(system string, auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:   &http.Client{Timeout: DefaultHTTPTimeout},
		auth:   auth,
		system: system,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs an HTTP request with authentication and common headers
// applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	c.auth.Apply(req)

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
	}

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return nil, &errors.APIError{
			System:   c.system,
			Message:  "request failed",
			Endpoint: req.URL.Path,
			Err:      err,
		}
	}
	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response into
// target.
func (c *Client) GetJSON(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WrapIO("create request", url, err)
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return c.decode(resp, req.URL.Path, target)
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into target. A nil target discards the response body.
func (c *Client) PostJSON(ctx context.Context, url string, body, target any) error {
	return c.send(ctx, http.MethodPost, url, "", body, target)
}

// PatchJSON performs a PATCH request with a JSON body and decodes the
// JSON response into target. A nil target discards the response body.
func (c *Client) PatchJSON(ctx context.Context, url string, body, target any) error {
	return c.send(ctx, http.MethodPatch, url, "", body, target)
}

// PostMedia is PostJSON with an explicit content type, for endpoints
// that switch behavior on vendor media types.
func (c *Client) PostMedia(ctx context.Context, url, mediaType string, body, target any) error {
	return c.send(ctx, http.MethodPost, url, mediaType, body, target)
}

// PatchMedia is PatchJSON with an explicit content type.
func (c *Client) PatchMedia(ctx context.Context, url, mediaType string, body, target any) error {
	return c.send(ctx, http.MethodPatch, url, mediaType, body, target)
}

func (c *Client) send(ctx context.Context, method, url, mediaType string, body, target any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return errors.WrapParse("json", url, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(encoded))
	if err != nil {
		return errors.WrapIO("create request", url, err)
	}
	if mediaType != "" {
		req.Header.Set("Content-Type", mediaType)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return c.decode(resp, req.URL.Path, target)
}

// decode drains the response, converts non-2xx statuses into APIErrors
// and unmarshals the body into target when one is given.
func (c *Client) decode(resp *http.Response, endpoint string, target any) error {
	defer resp.Body.Close() //nolint:errcheck // best-effort close after full read

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return &errors.APIError{
			System:     c.system,
			StatusCode: resp.StatusCode,
			Message:    msg,
			Endpoint:   endpoint,
		}
	}

	if target == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", endpoint, err)
	}
	return nil
}
