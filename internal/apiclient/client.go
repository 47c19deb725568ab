package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/models"
)

// DefaultBaseURL is used when configuration leaves the API address empty.
const DefaultBaseURL = "http://localhost:8000"

// Client is the backend contract used by the services layer.
type Client interface {
	EnsureCSRF(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Register(ctx context.Context, req models.RegisterRequest) error
	PasswordReset(ctx context.Context, email string) error
	ValidateReset(ctx context.Context, uid, token string) (bool, error)
	ConfirmReset(ctx context.Context, uid, token, password string) error
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
	UploadAvatar(ctx context.Context, filename string, image []byte) error
	DeleteAvatar(ctx context.Context) error
	SocialBegin(ctx context.Context, provider, next string, site *url.URL) (string, error)
	SocialFinish(ctx context.Context, provider, rawQuery string, site *url.URL) (string, error)

	CreateBooking(ctx context.Context, b models.Booking) (*models.Booking, error)
	BookingHistory(ctx context.Context) ([]models.Booking, error)
	DeleteOwnBooking(ctx context.Context, id int64) error
	SendContact(ctx context.Context, m models.ContactMessage) error

	AdminBookings(ctx context.Context) ([]models.Booking, error)
	AdminUsers(ctx context.Context) ([]models.User, error)
	AdminUpdateBooking(ctx context.Context, b models.Booking) (*models.Booking, error)
	AdminDeleteBooking(ctx context.Context, id int64) error
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	jar     *Jar
	logger  logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// WithTimeout bounds every single call.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// New builds a client for baseURL. Trailing slashes are trimmed and an empty
// value falls back to DefaultBaseURL.
func New(baseURL string, opts ...Option) *HTTPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		jar:     NewJar(),
		logger:  logging.Nop{},
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("module", "apiclient")
	return c
}

// BaseURL returns the normalized backend address.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) jarFor(ctx context.Context) *Jar {
	if j := JarFromContext(ctx); j != nil {
		return j
	}
	return c.jar
}

func unsafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// prepare sets the common headers and the jar's cookies on req and returns
// the jar that receives the answer's cookies.
func (c *HTTPClient) prepare(ctx context.Context, req *http.Request) *Jar {
	req.Header.Set("Accept", "application/json")
	if id := logging.RequestID(ctx); id != "" {
		req.Header.Set(common.RequestIDHeader, id)
	}

	jar := c.jarFor(ctx)
	jar.apply(req)
	if unsafeMethod(req.Method) {
		if tok := jar.Get(common.CSRFCookie); tok != "" {
			req.Header.Set(common.CSRFHeaderName, tok)
		}
		req.Header.Set("Referer", c.baseURL+"/")
	}
	return jar
}

// send performs one round trip. A nil out discards the body of a 2xx answer.
func (c *HTTPClient) send(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	jar := c.prepare(ctx, req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "backend call failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w: %v", method, path, common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		jar.Store(ck)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w: %v", method, path, common.ErrUnavailable, err)
	}

	c.logger.Debug(ctx, "backend call", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	if in == nil {
		return c.send(ctx, method, path, nil, "", out)
	}
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.send(ctx, method, path, bytes.NewReader(b), "application/json", out)
}

