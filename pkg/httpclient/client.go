package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// ClientType represents the type of HTTP client configuration
type ClientType string

const (
	// BrowserClient uses browser-like headers to avoid 406 (Not Acceptable) errors
	BrowserClient ClientType = "browser"

	// CloudflareClient uses simple headers (like curl) to avoid 403 (Forbidden) errors
	// from sites that block browser-like User-Agents
	CloudflareClient ClientType = "cloudflare"
)

const (
	defaultTimeout = 30 * time.Second
	maxRedirects   = 10
)

// ErrUnexpectedStatus is wrapped by StatusError for every non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d for %s", ErrUnexpectedStatus, e.StatusCode, e.URL)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// HTTPClient wraps an http.Client with header profile, charset decoding and
// an optional robots.txt gate.
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
	robots     *robotsCache
	logger     *slog.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithRobots makes Fetch refuse URLs disallowed by the host's robots.txt.
func WithRobots() Option {
	return func(c *HTTPClient) {
		c.robots = newRobotsCache()
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new HTTP client with the specified type
func NewClient(clientType ClientType, opts ...Option) *HTTPClient {
	client := &http.Client{
		Timeout: defaultTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	c := &HTTPClient{
		client:     client,
		clientType: clientType,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes an HTTP request with the appropriate headers for the client type
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Fetch retrieves url and returns its body decoded to UTF-8 together with the status code.
// A non-2xx response yields the body, the status and a *StatusError.
func (c *HTTPClient) Fetch(ctx context.Context, url string) (string, int, error) {
	if c.robots != nil {
		allowed, err := c.robots.allowed(ctx, c, url)
		if err != nil {
			c.logger.Debug("robots.txt unavailable, allowing", "url", url, "error", err)
		} else if !allowed {
			return "", 0, fmt.Errorf("%w: %s", ErrDisallowed, url)
		}
	}

	c.logger.Debug("fetching", "url", url)
	resp, err := c.Get(ctx, url)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer drainAndClose(resp.Body)

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to detect charset: %w", err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return string(body), resp.StatusCode, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return string(body), resp.StatusCode, nil
}

// setHeaders sets the appropriate headers based on client type
func (c *HTTPClient) setHeaders(req *http.Request) {
	switch c.clientType {
	case BrowserClient:
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "cs,en-US;q=0.8,en;q=0.6")

	case CloudflareClient:
		req.Header.Set("User-Agent", "curl/8.7.1")

	default:
		// Go's default User-Agent
	}
}

// userAgent is the agent name matched against robots.txt groups.
func (c *HTTPClient) userAgent() string {
	if c.clientType == CloudflareClient {
		return "curl"
	}
	return "spearch"
}

func drainAndClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.Copy(io.Discard, rc)
	_ = rc.Close()
}
