package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/gnmweb/internal/common"
)

// SocialBegin starts an OAuth login with provider on the backend and returns
// the provider's authorization address. next is where the backend sends the
// browser once the provider round trip is over.
//
// The browser never talks to the backend directly: the OAuth state cookie
// the backend sets here travels through the jar like any other session
// cookie, and site is announced as the forwarded host so the provider returns
// to the site, which hands the answer on with SocialFinish.
func (c *HTTPClient) SocialBegin(ctx context.Context, provider, next string, site *url.URL) (string, error) {
	q := url.Values{"process": {"login"}}
	if next != "" {
		q.Set("next", next)
	}
	return c.hop(ctx, http.MethodPost, socialPath(provider, "/login/")+"?"+q.Encode(), site)
}

// SocialFinish passes the provider's answer (the raw query of the return
// address) to the backend. The backend sets the session cookies and answers
// with the next address, which is returned.
func (c *HTTPClient) SocialFinish(ctx context.Context, provider, rawQuery string, site *url.URL) (string, error) {
	path := socialPath(provider, "/login/callback/")
	if rawQuery != "" {
		path += "?" + rawQuery
	}
	return c.hop(ctx, http.MethodGet, path, site)
}

func socialPath(provider, tail string) string {
	return "/accounts/" + url.PathEscape(provider) + tail
}

// hop performs one request without following redirects and returns the
// absolute Location of the answer.
func (c *HTTPClient) hop(ctx context.Context, method, path string, site *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	jar := c.prepare(ctx, req)
	if site != nil {
		req.Header.Set("X-Forwarded-Host", site.Host)
		req.Header.Set("X-Forwarded-Proto", site.Scheme)
	}

	hc := *c.http
	hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "backend call failed", "method", method, "path", path, "error", err)
		return "", fmt.Errorf("%s %s: %w: %v", method, path, common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		jar.Store(ck)
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	c.logger.Debug(ctx, "backend call", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode >= 400 {
		return "", newError(resp.StatusCode, data)
	}
	loc, err := resp.Location()
	if err != nil || resp.StatusCode < 300 {
		return "", fmt.Errorf("%s %s: expected a redirect, got status %d", method, path, resp.StatusCode)
	}
	return loc.String(), nil
}
