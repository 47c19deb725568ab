package apiclient

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Jar is a flat cookie store for a single backend. It remembers which
// cookies the backend set or cleared so they can be relayed to a browser.
type Jar struct {
	mu      sync.Mutex
	cookies map[string]*http.Cookie
	changed map[string]*http.Cookie
}

// NewJar returns a jar seeded with cookies. Seeding does not count as a change.
func NewJar(cookies ...*http.Cookie) *Jar {
	j := &Jar{
		cookies: make(map[string]*http.Cookie),
		changed: make(map[string]*http.Cookie),
	}
	for _, c := range cookies {
		if c != nil && c.Value != "" {
			j.cookies[c.Name] = &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	return j
}

// Get returns the cookie value or "".
func (j *Jar) Get(name string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if c, ok := j.cookies[name]; ok {
		return c.Value
	}
	return ""
}

// Store records a cookie received from the backend. An expired cookie or one
// with an empty value removes the entry.
func (j *Jar) Store(c *http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	cp := *c
	j.changed[c.Name] = &cp
	if c.Value == "" || c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
		delete(j.cookies, c.Name)
		return
	}
	j.cookies[c.Name] = &http.Cookie{Name: c.Name, Value: c.Value}
}

// Clear removes the named cookies and records a removal for each.
func (j *Jar) Clear(names ...string) {
	for _, n := range names {
		j.Store(&http.Cookie{Name: n, MaxAge: -1})
	}
}

// Changes returns the cookies the backend set or cleared, as received.
func (j *Jar) Changes() []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*http.Cookie, 0, len(j.changed))
	for _, c := range j.changed {
		cp := *c
		out = append(out, &cp)
	}
	return out
}

func (j *Jar) apply(req *http.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range j.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}

type jarKey struct{}

// WithJar attaches j to ctx for every call made with the returned context.
func WithJar(ctx context.Context, j *Jar) context.Context {
	return context.WithValue(ctx, jarKey{}, j)
}

// JarFromContext returns the jar attached with WithJar, or nil.
func JarFromContext(ctx context.Context) *Jar {
	j, _ := ctx.Value(jarKey{}).(*Jar)
	return j
}
