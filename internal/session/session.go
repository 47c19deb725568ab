// Package session answers "who is signed in" for one request.
//
// A Session is computed by asking the backend's /me/ endpoint. It is never
// cached between requests: every navigation resolves it again. Any failure,
// including a network error, yields Unauthenticated and is only logged. A
// visitor is never told why the check failed.
package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/models"
)

type State int

const (
	Unknown State = iota
	Checking
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Session holds the outcome of one check. Identity is non-nil exactly when
// State is Authenticated.
type Session struct {
	State    State
	Identity *models.Identity
	// User is the full /me/ record behind Identity.
	User *models.User
}

func (s *Session) Authenticated() bool {
	return s != nil && s.State == Authenticated && s.Identity != nil
}

func (s *Session) IsStaff() bool {
	return s.Authenticated() && s.Identity.IsStaff
}

func (s *Session) authenticate(u *models.User) {
	id := u.Identity
	s.State = Authenticated
	s.Identity = &id
	s.User = u
}

func (s *Session) clear() {
	s.State = Unauthenticated
	s.Identity = nil
	s.User = nil
}

// Anonymous is a settled session without an identity.
func Anonymous() *Session {
	s := &Session{}
	s.clear()
	return s
}

// Backend is the part of the API client the resolver needs.
type Backend interface {
	Me(ctx context.Context) (*models.User, error)
	Refresh(ctx context.Context) error
}

type Resolver struct {
	backend Backend
	logger  logging.Logger
}

func NewResolver(b Backend, l logging.Logger) *Resolver {
	return &Resolver{backend: b, logger: l.With("module", "session")}
}

// Resolve runs one check. When /me/ answers 401 the resolver tries one
// token refresh and asks again before giving up.
func (r *Resolver) Resolve(ctx context.Context) *Session {
	s := &Session{State: Checking}

	u, err := r.backend.Me(ctx)
	if errors.Is(err, common.ErrUnauthorized) {
		if rerr := r.backend.Refresh(ctx); rerr == nil {
			u, err = r.backend.Me(ctx)
		}
	}

	if err != nil || u == nil {
		if err != nil && !errors.Is(err, common.ErrUnauthorized) {
			r.logger.Warn(ctx, "session check failed", "error", err)
		}
		s.clear()
		return s
	}

	s.authenticate(u)
	return s
}

type ctxKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored with WithSession. A context without
// one yields an anonymous session, never nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok && s != nil {
		return s
	}
	return Anonymous()
}
