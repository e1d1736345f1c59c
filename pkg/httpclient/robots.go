package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// ErrDisallowed is returned by Fetch when robots.txt forbids the URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// robotsCache holds one parsed robots.txt per scheme+host.
type robotsCache struct {
	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

func newRobotsCache() *robotsCache {
	return &robotsCache{hosts: make(map[string]*robotstxt.RobotsData)}
}

func (r *robotsCache) allowed(ctx context.Context, c *HTTPClient, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse URL: %w", err)
	}
	if u.Host == "" {
		return true, nil
	}

	data, err := r.load(ctx, c, u.Scheme+"://"+u.Host)
	if err != nil {
		return true, err
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.FindGroup(c.userAgent()).Test(path), nil
}

// load fetches robots.txt once per origin; concurrent callers for the same
// origin wait on the mutex rather than issuing duplicate requests.
func (r *robotsCache) load(ctx context.Context, c *HTTPClient, origin string) (*robotstxt.RobotsData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.hosts[origin]; ok {
		return data, nil
	}

	robotsURL := origin + "/robots.txt"
	c.logger.Debug("loading robots.txt", "url", robotsURL)

	resp, err := c.Get(ctx, robotsURL)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer drainAndClose(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.hosts[origin] = data
	return data, nil
}
