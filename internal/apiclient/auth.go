package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/models"
)

const authPrefix = "/api/auth/custom"

// EnsureCSRF primes the csrftoken cookie unless the jar already holds one.
func (c *HTTPClient) EnsureCSRF(ctx context.Context) error {
	if c.jarFor(ctx).Get(common.CSRFCookie) != "" {
		return nil
	}
	return c.doJSON(ctx, http.MethodGet, authPrefix+"/csrf/", nil, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, authPrefix+"/me/", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.doJSON(ctx, http.MethodPost, authPrefix+"/login/", body, nil)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, authPrefix+"/logout/", nil, nil)
}

// Refresh exchanges the refresh cookie for a new access cookie.
func (c *HTTPClient) Refresh(ctx context.Context) error {
	if c.jarFor(ctx).Get(common.RefreshCookie) == "" {
		return fmt.Errorf("no refresh cookie: %w", common.ErrUnauthorized)
	}
	return c.doJSON(ctx, http.MethodPost, authPrefix+"/token/refresh/", nil, nil)
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, authPrefix+"/register/", req, nil)
}

func (c *HTTPClient) PasswordReset(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, authPrefix+"/password-reset/", map[string]string{"email": email}, nil)
}

// ValidateReset reports whether the uid/token pair from a reset link is
// still usable. A 4xx answer means "not valid", not a failure.
func (c *HTTPClient) ValidateReset(ctx context.Context, uid, token string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	err := c.doJSON(ctx, http.MethodPost, authPrefix+"/password-reset/validate/",
		map[string]string{"uid": uid, "token": token}, &out)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Client() {
			return false, nil
		}
		return false, err
	}
	return out.Valid, nil
}

func (c *HTTPClient) ConfirmReset(ctx context.Context, uid, token, password string) error {
	return c.doJSON(ctx, http.MethodPost, authPrefix+"/password-reset/confirm/",
		map[string]string{"uid": uid, "token": token, "password": password}, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodPatch, authPrefix+"/profile/update/", upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UploadAvatar sends the image as multipart field profile_image.
func (c *HTTPClient) UploadAvatar(ctx context.Context, filename string, image []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("profile_image", filename)
	if err != nil {
		return fmt.Errorf("multipart: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return fmt.Errorf("multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("multipart: %w", err)
	}
	return c.send(ctx, http.MethodPatch, authPrefix+"/profile/update/", &buf, mw.FormDataContentType(), nil)
}

func (c *HTTPClient) DeleteAvatar(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, authPrefix+"/profile/image/", nil, nil)
}
