package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/models"
)

// MinPasswordLen is enforced before a password reaches the backend.
const MinPasswordLen = 8

// SocialProviders are the OAuth providers the backend can start.
var SocialProviders = map[string]string{
	"google": "Google",
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

var loginMessages = messages{
	"email.required": "Email is required",
	"email":          "Please enter a valid email address",
	"password":       "Password is required",
}

type RegisterForm struct {
	FirstName string `form:"first_name" validate:"required"`
	LastName  string `form:"last_name" validate:"required"`
	Email     string `form:"email" validate:"required,email"`
	Phone     string `form:"phone" validate:"max=20"`
	Password  string `form:"password" validate:"required,min=8"`
	Confirm   string `form:"confirm_password" validate:"required,eqfield=Password"`
}

var registerMessages = messages{
	"first_name":                "First name is required",
	"last_name":                 "Last name is required",
	"email.required":            "Email is required",
	"email":                     "Please enter a valid email address",
	"phone":                     "Phone number is too long",
	"password.required":         "Password is required",
	"password":                  "Password must be at least 8 characters",
	"confirm_password.required": "Please confirm your password",
	"confirm_password":          "Passwords do not match",
}

func (f *RegisterForm) Validate() error {
	trimAll(&f.FirstName, &f.LastName, &f.Email, &f.Phone)
	return check(f, registerMessages).orNil()
}

type ResetForm struct {
	UID      string `form:"uid" validate:"required"`
	Token    string `form:"token" validate:"required"`
	Password string `form:"password" validate:"required,min=8"`
	Confirm  string `form:"confirm_password" validate:"required,eqfield=Password"`
}

var resetMessages = messages{
	"uid":                       "Invalid reset link",
	"token":                     "Invalid reset link",
	"password.required":         "Password is required",
	"password":                  "Password must be at least 8 characters",
	"confirm_password.required": "Please confirm your password",
	"confirm_password":          "Passwords do not match",
}

func (f *ResetForm) Validate() error {
	return check(f, resetMessages).orNil()
}

type AuthService struct {
	client apiclient.Client
	logger logging.Logger
}

func NewAuthService(c apiclient.Client, l logging.Logger) *AuthService {
	return &AuthService{client: c, logger: l.With("module", "auth")}
}

// Login primes the CSRF cookie, posts the credentials and then asks the
// backend who is signed in, so the returned identity is the one the backend
// will see on the next request.
func (s *AuthService) Login(ctx context.Context, f *LoginForm) (*models.Identity, error) {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	if fe := check(f, loginMessages); len(fe) > 0 {
		return nil, fe
	}

	if err := s.client.EnsureCSRF(ctx); err != nil {
		s.logger.Warn(ctx, "csrf prefetch", "error", err)
		return nil, fmt.Errorf("csrf: %w", err)
	}
	if err := s.client.Login(ctx, f.Email, f.Password); err != nil {
		s.logger.Info(ctx, "login rejected", "email", f.Email, "error", err)
		return nil, fmt.Errorf("login: %w", err)
	}

	u, err := s.client.Me(ctx)
	if err == nil && u == nil {
		err = common.ErrUnauthorized
	}
	if err != nil {
		s.logger.Error(ctx, "session after login", "error", err)
		return nil, fmt.Errorf("session after login: %w", err)
	}

	s.logger.Info(ctx, "logged in", "user_id", u.ID)
	id := u.Identity
	return &id, nil
}

// Logout asks the backend to end the session. Callers clear local state
// whatever the result.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		s.logger.Warn(ctx, "logout call failed", "error", err)
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, f *RegisterForm) error {
	if err := f.Validate(); err != nil {
		return err
	}
	_ = s.client.EnsureCSRF(ctx)
	err := s.client.Register(ctx, models.RegisterRequest{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     strings.ToLower(f.Email),
		Phone:     f.Phone,
		Password:  f.Password,
	})
	if err != nil {
		s.logger.Info(ctx, "registration rejected", "error", err)
		return fmt.Errorf("register: %w", err)
	}
	s.logger.Info(ctx, "account registered")
	return nil
}

// ForgotPassword requests a reset link. Only an empty or malformed address
// is reported; every backend outcome looks like success so the page cannot
// be used to find out which addresses have accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	in := struct {
		Email string `form:"email" validate:"required,email"`
	}{email}
	if fe := check(in, loginMessages); len(fe) > 0 {
		return fe
	}

	_ = s.client.EnsureCSRF(ctx)
	if err := s.client.PasswordReset(ctx, email); err != nil {
		s.logger.Warn(ctx, "password reset request", "error", err)
	}
	return nil
}

// ValidateReset reports whether a reset link is usable. Errors count as
// not usable.
func (s *AuthService) ValidateReset(ctx context.Context, uid, token string) bool {
	if uid == "" || token == "" {
		return false
	}
	ok, err := s.client.ValidateReset(ctx, uid, token)
	if err != nil {
		s.logger.Warn(ctx, "validate reset token", "error", err)
		return false
	}
	return ok
}

func (s *AuthService) ConfirmReset(ctx context.Context, f *ResetForm) error {
	if err := f.Validate(); err != nil {
		return err
	}
	_ = s.client.EnsureCSRF(ctx)
	if err := s.client.ConfirmReset(ctx, f.UID, f.Token, f.Password); err != nil {
		s.logger.Info(ctx, "password reset rejected", "error", err)
		return fmt.Errorf("confirm reset: %w", err)
	}
	return nil
}

// SocialCallbackPath is the site page that settles a social login.
const SocialCallbackPath = "/auth/social/callback"

// ErrSocialLogin reports a provider round trip that did not end on the site.
var ErrSocialLogin = errors.New("social login failed")

func socialSite(provider, publicURL string) (*url.URL, error) {
	if _, ok := SocialProviders[provider]; !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	site, err := url.Parse(publicURL)
	if err != nil || site.Scheme == "" || site.Host == "" {
		return nil, fmt.Errorf("bad public url %q", publicURL)
	}
	return site, nil
}

// SocialBegin starts an OAuth login with provider through the backend and
// returns the provider's authorization address. publicURL is this site's
// address: the provider returns to the site, never to the backend, so the
// session cookies the backend sets are relayed like after a password login.
func (s *AuthService) SocialBegin(ctx context.Context, provider, publicURL string) (string, error) {
	site, err := socialSite(provider, publicURL)
	if err != nil {
		return "", err
	}
	if err := s.client.EnsureCSRF(ctx); err != nil {
		s.logger.Warn(ctx, "csrf prefetch", "error", err)
		return "", fmt.Errorf("csrf: %w", err)
	}
	target, err := s.client.SocialBegin(ctx, provider, site.JoinPath(SocialCallbackPath).String(), site)
	if err != nil {
		s.logger.Error(ctx, "social login start", "provider", provider, "error", err)
		return "", fmt.Errorf("social login start: %w", err)
	}
	return target, nil
}

// SocialReturn hands the provider's answer to the backend and returns the
// site path to continue on. An answer leading off the site is ErrSocialLogin.
func (s *AuthService) SocialReturn(ctx context.Context, provider, rawQuery, publicURL string) (string, error) {
	site, err := socialSite(provider, publicURL)
	if err != nil {
		return "", err
	}
	loc, err := s.client.SocialFinish(ctx, provider, rawQuery, site)
	if err != nil {
		s.logger.Info(ctx, "social login rejected", "provider", provider, "error", err)
		return "", fmt.Errorf("social login finish: %w", err)
	}
	u, err := url.Parse(loc)
	if err != nil || (u.IsAbs() && u.Host != site.Host) {
		s.logger.Info(ctx, "social login left the site", "provider", provider, "location", loc)
		return "", fmt.Errorf("backend answered %q: %w", loc, ErrSocialLogin)
	}
	return SafeNext(u.RequestURI()), nil
}

// SocialCallback checks whether the provider round trip produced a session.
func (s *AuthService) SocialCallback(ctx context.Context) (*models.Identity, bool) {
	u, err := s.client.Me(ctx)
	if err != nil || u == nil {
		s.logger.Info(ctx, "social login did not produce a session", "error", err)
		return nil, false
	}
	id := u.Identity
	return &id, true
}

// SafeNext keeps post-login redirects on this site.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
