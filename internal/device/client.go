// Package device talks to the controller's HTTP API.
package device

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/riego/internal/auth"
)

// API paths exposed by the device firmware.
const (
	PathCommand = "/api/esp"
	PathZone    = "/api/esp/zone"
	PathTail    = "/api/logs/tail"
)

// Doer issues a single request. Widgets depend on this, not on *Client.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Request is one call against the device API. RawQuery is sent verbatim so
// callers control parameter order.
type Request struct {
	Method      string
	Path        string
	RawQuery    string
	Body        string
	ContentType string
}

// URL is the path plus query, as shown to the user.
func (r Request) URL() string {
	if r.RawQuery == "" {
		return r.Path
	}
	return r.Path + "?" + r.RawQuery
}

// Options tune the client. A zero Timeout means no timeout.
type Options struct {
	Timeout     time.Duration
	Credentials *auth.Credentials
	HTTPClient  *http.Client
}

// Client is the HTTP client for one device.
type Client struct {
	base  *url.URL
	http  *http.Client
	creds *auth.Credentials
}

// NewClient validates baseURL (scheme and host required).
func NewClient(baseURL string, opt Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q: scheme and host required", baseURL)
	}
	hc := opt.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opt.Timeout}
	}
	return &Client{base: u, http: hc, creds: opt.Credentials}, nil
}

// BaseURL returns the configured device address.
func (c *Client) BaseURL() string { return c.base.String() }

// Do sends req and reads the whole body. Non-2xx statuses are not errors;
// callers decide with Response.OK.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + req.Path
	u.RawQuery = req.RawQuery

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	hr, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if req.ContentType != "" {
		hr.Header.Set("Content-Type", req.ContentType)
	}
	id := uuid.NewString()
	hr.Header.Set("X-Request-ID", id)
	c.creds.Apply(hr)

	log.Printf("device: → %s %s id=%s", method, req.URL(), id)
	res, err := c.http.Do(hr)
	if err != nil {
		log.Printf("device: %s %s id=%s failed: %v", method, req.URL(), id, err)
		return nil, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	log.Printf("device: ← %d %s id=%s (%d bytes)", res.StatusCode, req.URL(), id, len(b))
	return &Response{
		Status:      res.StatusCode,
		ContentType: res.Header.Get("Content-Type"),
		Body:        b,
	}, nil
}
