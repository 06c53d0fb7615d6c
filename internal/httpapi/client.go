// Package httpapi is the shared JSON client for every metadata endpoint
// the launcher core talks to: the version manifest, version metadata,
// asset index, JVM metadata index, and the legacy/Microsoft auth chains.
// It does not handle bulk file downloads — see internal/download for that.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// JSONRequestError is returned when a JSON API endpoint responds with a
// non-2xx status or a body that cannot be decoded.
type JSONRequestError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *JSONRequestError) Error() string {
	return fmt.Sprintf("json request to %s failed (status %d): %s", e.URL, e.StatusCode, e.Body)
}

// Client wraps a bounded-retry HTTP client for JSON request/response
// endpoints, mirroring the retry configuration used throughout the rest
// of this module's ambient stack.
type Client struct {
	http *http.Client
}

// New builds a Client with the same retry/backoff posture used for every
// other metadata fetch in this module: up to 3 retries, exponential
// backoff bounded to 10s, a silenced default logger.
func New() *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = nil
	rc.HTTPClient.Timeout = 30 * time.Second
	return &Client{http: rc.StandardClient()}
}

// NewWithHTTPClient builds a Client around a caller-supplied *http.Client,
// bypassing the retry/backoff wrapper. Tests use this to point the fixed
// upstream URLs at a local httptest server via a custom Transport.
func NewWithHTTPClient(hc *http.Client) *Client {
	return &Client{http: hc}
}

// GetJSON issues a GET request and decodes the JSON response body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, out)
}

// PostJSON issues a POST request with a JSON body and decodes the JSON
// response into out (if out is non-nil).
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRaw(req, out)
}

// PostForm issues a POST request with a URL-encoded form body and decodes
// the JSON response into out. Used by the Microsoft OAuth token endpoint,
// which expects a form-encoded payload rather than a JSON one.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.doRaw(req, out)
}

// BearerGetJSON issues a GET request carrying an Authorization: Bearer
// header and decodes the JSON response into out.
func (c *Client) BearerGetJSON(ctx context.Context, rawURL, token string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.doRaw(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	code, err := c.doRaw(req, out)
	if err != nil {
		return err
	}
	if code < 200 || code >= 300 {
		return &JSONRequestError{URL: req.URL.String(), StatusCode: code}
	}
	return nil
}

// doRaw performs the request and always attempts to decode the body into
// out, returning the response's status code alongside any transport error.
// Callers that need to branch on status code (the OAuth chain, the legacy
// auth endpoints) use this directly instead of do.
func (c *Client) doRaw(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("performing request to %s: %w", req.URL.String(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, &JSONRequestError{URL: req.URL.String(), StatusCode: resp.StatusCode, Body: string(raw)}
		}
	}

	return resp.StatusCode, nil
}
