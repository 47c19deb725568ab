// Package apiclienttest provides an in-memory apiclient.Client for tests.
package apiclienttest

import (
	"context"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/models"
)

var _ apiclient.Client = (*Fake)(nil)

// Fake returns the preset values and records every call. It is safe for
// concurrent use.
type Fake struct {
	mu sync.Mutex

	Calls []string

	CSRFErr error

	MeUser  *models.User
	MeErr   error
	MeQueue []*models.User

	LoginErr   error
	LogoutErr  error
	RefreshErr error

	RegisterErr      error
	PasswordResetErr error
	ResetValid       bool
	ResetValidateErr error
	ConfirmResetErr  error

	UpdateProfileRet *models.User
	UpdateProfileErr error
	UploadAvatarErr  error
	DeleteAvatarErr  error

	SocialBeginRet  string
	SocialBeginErr  error
	SocialFinishRet string
	SocialFinishErr error

	CreateBookingRet *models.Booking
	CreateBookingErr error
	HistoryRet       []models.Booking
	HistoryErr       error
	DeleteOwnErr     error
	ContactErr       error

	AdminBookingsRet []models.Booking
	AdminBookingsErr error
	AdminUsersRet    []models.User
	AdminUsersErr    error
	AdminUpdateRet   *models.Booking
	AdminUpdateErr   error
	AdminDeleteErr   error

	LastLoginEmail     string
	LastLoginPassword  string
	LastRegister       models.RegisterRequest
	LastResetEmail     string
	LastConfirm        [3]string
	LastProfileUpdate  models.ProfileUpdate
	LastAvatarName     string
	LastAvatar         []byte
	LastBooking        models.Booking
	LastDeletedID      int64
	LastContact        models.ContactMessage
	LastAdminUpdate    models.Booking
	LastAdminDeletedID int64
	LastSocialNext     string
	LastSocialQuery    string
	LastSocialSite     string
}

func (f *Fake) record(name string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, name)
	f.mu.Unlock()
}

// Called reports how many times the named call was made.
func (f *Fake) Called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *Fake) EnsureCSRF(ctx context.Context) error {
	f.record("EnsureCSRF")
	return f.CSRFErr
}

func (f *Fake) Me(ctx context.Context) (*models.User, error) {
	f.record("Me")
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.MeQueue) > 0 {
		u := f.MeQueue[0]
		f.MeQueue = f.MeQueue[1:]
		return u, nil
	}
	if f.MeErr != nil {
		return nil, f.MeErr
	}
	if f.MeUser == nil {
		return nil, nil
	}
	u := *f.MeUser
	return &u, nil
}

func (f *Fake) Login(ctx context.Context, email, password string) error {
	f.record("Login")
	f.LastLoginEmail, f.LastLoginPassword = email, password
	return f.LoginErr
}

func (f *Fake) Logout(ctx context.Context) error {
	f.record("Logout")
	return f.LogoutErr
}

func (f *Fake) Refresh(ctx context.Context) error {
	f.record("Refresh")
	return f.RefreshErr
}

func (f *Fake) Register(ctx context.Context, req models.RegisterRequest) error {
	f.record("Register")
	f.LastRegister = req
	return f.RegisterErr
}

func (f *Fake) PasswordReset(ctx context.Context, email string) error {
	f.record("PasswordReset")
	f.LastResetEmail = email
	return f.PasswordResetErr
}

func (f *Fake) ValidateReset(ctx context.Context, uid, token string) (bool, error) {
	f.record("ValidateReset")
	return f.ResetValid, f.ResetValidateErr
}

func (f *Fake) ConfirmReset(ctx context.Context, uid, token, password string) error {
	f.record("ConfirmReset")
	f.LastConfirm = [3]string{uid, token, password}
	return f.ConfirmResetErr
}

func (f *Fake) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	f.record("UpdateProfile")
	f.LastProfileUpdate = upd
	return f.UpdateProfileRet, f.UpdateProfileErr
}

func (f *Fake) UploadAvatar(ctx context.Context, filename string, image []byte) error {
	f.record("UploadAvatar")
	f.LastAvatarName, f.LastAvatar = filename, image
	return f.UploadAvatarErr
}

func (f *Fake) DeleteAvatar(ctx context.Context) error {
	f.record("DeleteAvatar")
	return f.DeleteAvatarErr
}

func (f *Fake) SocialBegin(ctx context.Context, provider, next string, site *url.URL) (string, error) {
	f.record("SocialBegin")
	f.LastSocialNext = next
	if site != nil {
		f.LastSocialSite = site.String()
	}
	if f.SocialBeginErr != nil {
		return "", f.SocialBeginErr
	}
	if f.SocialBeginRet != "" {
		return f.SocialBeginRet, nil
	}
	return "https://accounts." + provider + ".test/auth", nil
}

func (f *Fake) SocialFinish(ctx context.Context, provider, rawQuery string, site *url.URL) (string, error) {
	f.record("SocialFinish")
	f.LastSocialQuery = rawQuery
	return f.SocialFinishRet, f.SocialFinishErr
}

func (f *Fake) CreateBooking(ctx context.Context, b models.Booking) (*models.Booking, error) {
	f.record("CreateBooking")
	f.LastBooking = b
	if f.CreateBookingErr != nil {
		return nil, f.CreateBookingErr
	}
	if f.CreateBookingRet != nil {
		return f.CreateBookingRet, nil
	}
	b.ID = 1
	return &b, nil
}

func (f *Fake) BookingHistory(ctx context.Context) ([]models.Booking, error) {
	f.record("BookingHistory")
	return f.HistoryRet, f.HistoryErr
}

func (f *Fake) DeleteOwnBooking(ctx context.Context, id int64) error {
	f.record("DeleteOwnBooking")
	f.LastDeletedID = id
	return f.DeleteOwnErr
}

func (f *Fake) SendContact(ctx context.Context, m models.ContactMessage) error {
	f.record("SendContact")
	f.LastContact = m
	return f.ContactErr
}

func (f *Fake) AdminBookings(ctx context.Context) ([]models.Booking, error) {
	f.record("AdminBookings")
	return f.AdminBookingsRet, f.AdminBookingsErr
}

func (f *Fake) AdminUsers(ctx context.Context) ([]models.User, error) {
	f.record("AdminUsers")
	return f.AdminUsersRet, f.AdminUsersErr
}

func (f *Fake) AdminUpdateBooking(ctx context.Context, b models.Booking) (*models.Booking, error) {
	f.record("AdminUpdateBooking")
	f.LastAdminUpdate = b
	return f.AdminUpdateRet, f.AdminUpdateErr
}

func (f *Fake) AdminDeleteBooking(ctx context.Context, id int64) error {
	f.record("AdminDeleteBooking")
	f.LastAdminDeletedID = id
	return f.AdminDeleteErr
}
