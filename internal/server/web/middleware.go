package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/server/flash"
	"github.com/dmitrijs2005/gnmweb/internal/services"
	"github.com/dmitrijs2005/gnmweb/internal/session"
)

// RequestID tags the request context and the response with an id, reusing
// a well-formed incoming X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(common.RequestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func AccessLog(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ctx := c.Request.Context()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		switch {
		case c.Writer.Status() >= 500:
			l.Error(ctx, "request failed", args...)
		case c.Writer.Status() >= 400:
			l.Warn(ctx, "request rejected", args...)
		default:
			l.Info(ctx, "request processed", args...)
		}
	}
}

// Recovery turns a panic into the error page.
func (h *Handler) Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		h.logger.Error(c.Request.Context(), "panic", "error", fmt.Sprint(err))
		if c.Writer.Written() {
			c.Abort()
			return
		}
		h.serverError(c)
		c.Abort()
	})
}

// Timeout bounds the backend calls a request may make.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// relayWriter copies backend cookie changes onto the response right before
// the headers go out.
type relayWriter struct {
	gin.ResponseWriter
	h    *Handler
	jar  *apiclient.Jar
	done bool
}

func (w *relayWriter) relay() {
	if w.done {
		return
	}
	w.done = true
	for _, ck := range w.jar.Changes() {
		http.SetCookie(w.ResponseWriter, w.h.browserCookie(ck))
	}
}

func (w *relayWriter) WriteHeader(code int) {
	w.relay()
	w.ResponseWriter.WriteHeader(code)
}

func (w *relayWriter) WriteHeaderNow() {
	w.relay()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *relayWriter) Write(b []byte) (int, error) {
	w.relay()
	return w.ResponseWriter.Write(b)
}

func (w *relayWriter) WriteString(s string) (int, error) {
	w.relay()
	return w.ResponseWriter.WriteString(s)
}

// browserCookie rescopes a backend cookie to this site.
func (h *Handler) browserCookie(ck *http.Cookie) *http.Cookie {
	out := &http.Cookie{
		Name:     ck.Name,
		Value:    ck.Value,
		Path:     "/",
		Expires:  ck.Expires,
		MaxAge:   ck.MaxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if out.Value == "" && out.MaxAge == 0 {
		out.MaxAge = -1
	}
	return out
}

// BackendJar seeds a per-request jar with the browser's backend cookies and
// relays whatever the backend changed.
func (h *Handler) BackendJar() gin.HandlerFunc {
	return func(c *gin.Context) {
		var seed []*http.Cookie
		for _, name := range common.BackendCookies {
			if ck, err := c.Request.Cookie(name); err == nil {
				seed = append(seed, ck)
			}
		}
		jar := apiclient.NewJar(seed...)
		c.Request = c.Request.WithContext(apiclient.WithJar(c.Request.Context(), jar))

		rw := &relayWriter{ResponseWriter: c.Writer, h: h, jar: jar}
		c.Writer = rw

		c.Next()

		rw.relay()
	}
}

// LoadSession resolves the session before any page handler runs.
func (h *Handler) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := h.resolver.Resolve(c.Request.Context())
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), s))
		c.Next()
	}
}

// RequireSession sends visitors to the login page, remembering where they
// were going. Nothing of the guarded page is rendered.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.FromContext(c.Request.Context()).Authenticated() {
			c.Next()
			return
		}
		c.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// RequireStaff answers 403 for signed-in accounts without the staff flag.
// Use after RequireSession.
func (h *Handler) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.FromContext(c.Request.Context()).IsStaff() {
			c.Next()
			return
		}
		h.forbidden(c)
		c.Abort()
	}
}

const (
	// formBodyLimit caps every request body but the avatar upload.
	formBodyLimit = 1 << 20
	// avatarBodyLimit leaves room for the multipart framing and the form
	// token around the image.
	avatarBodyLimit = services.MaxAvatarBytes + 64<<10

	avatarPath = "/profile/avatar"
)

func bodyLimitFor(path string) int64 {
	if path == avatarPath {
		return avatarBodyLimit
	}
	return formBodyLimit
}

// BodyLimit stops reading a request body past the limit of its route.
func BodyLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimitFor(c.Request.URL.Path))
		}
		c.Next()
	}
}

// limitBody applies the same limits in front of the site CSRF check, which
// parses the form before the router runs. A body declared too large is
// refused without reading it: an avatar goes back to the profile with a
// notice, anything else gets 413.
func (h *Handler) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}
		limit := bodyLimitFor(r.URL.Path)
		if r.ContentLength > limit {
			h.logger.Info(r.Context(), "request body too large", "path", r.URL.Path, "length", r.ContentLength)
			if r.URL.Path == avatarPath {
				h.writeFlash(r.Context(), w, flash.Notice{Kind: flash.Error, Message: services.NoticeAvatarTooLarge})
				http.Redirect(w, r, "/profile", http.StatusSeeOther)
				return
			}
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}
