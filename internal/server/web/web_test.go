package web

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/apiclient/apiclienttest"
	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/models"
	"github.com/dmitrijs2005/gnmweb/internal/services"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T, c apiclient.Client) *Handler {
	t.Helper()
	h, err := New(Deps{
		Client:         c,
		Logger:         logging.Nop{},
		PublicURL:      "http://site.test/",
		SecretKey:      "test-secret",
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	h.now = func() time.Time { return testNow }
	return h
}

func testUser(staff bool) *models.User {
	return &models.User{
		Identity: models.Identity{ID: 7, Email: "ann@example.com", Username: "ann", FirstName: "Ann", LastName: "Lee", IsStaff: staff},
		IsActive: true,
		Phone:    "+37120000000",
	}
}

func do(t *testing.T, hh http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	hh.ServeHTTP(rec, req)
	return rec
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func validBooking() url.Values {
	return url.Values{
		"name":       {"Ann Lee"},
		"email":      {"ann@example.com"},
		"phone":      {"+37120000000"},
		"eventType":  {"Wedding"},
		"eventDate":  {"2025-09-01"},
		"venue":      {"Grand Hall"},
		"guestCount": {"80"},
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, &apiclienttest.Fake{})

	rec := do(t, h.Router(), http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get(common.RequestIDHeader))
}

func TestPublicPages_Render(t *testing.T) {
	h := newTestHandler(t, &apiclienttest.Fake{})
	r := h.Router()

	for _, p := range []string{"/", "/about", "/services", "/gallery", "/blog", "/contact", "/booking", "/login", "/signup", "/forgot-password", "/auth/google/confirm"} {
		t.Run(p, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, p, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "GNM Events")
		})
	}
}

func TestNotFound(t *testing.T) {
	h := newTestHandler(t, &apiclienttest.Fake{})
	r := h.Router()

	rec := do(t, r, http.MethodGet, "/no-such-page", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")

	rec = do(t, r, http.MethodGet, "/blog/no-such-post", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID_ReusesValidHeader(t *testing.T) {
	h := newTestHandler(t, &apiclienttest.Fake{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(common.RequestIDHeader, "0b8e8f4e-4a1f-4c5e-9a51-2d7c1f0f9a11")
	rec := httptest.NewRecorder()

	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, "0b8e8f4e-4a1f-4c5e-9a51-2d7c1f0f9a11", rec.Header().Get(common.RequestIDHeader))
}

func TestGallery_FiltersByCategory(t *testing.T) {
	h := newTestHandler(t, &apiclienttest.Fake{})

	rec := do(t, h.Router(), http.MethodGet, "/gallery?category=weddings", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Elegant Garden Wedding")
	assert.NotContains(t, body, "Corporate Product Launch")
}

func TestRequireSession_RedirectsAnonymous(t *testing.T) {
	h := newTestHandler(t, &apiclienttest.Fake{})
	r := h.Router()

	for _, p := range []string{"/profile", "/history", "/admin"} {
		rec := do(t, r, http.MethodGet, p, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, p)
		assert.Equal(t, "/login?next="+url.QueryEscape(p), rec.Header().Get("Location"))
		assert.NotContains(t, rec.Body.String(), "GNM Events", "guarded page must not render")
	}
}

func TestRequireStaff_ForbidsRegularUser(t *testing.T) {
	fake := &apiclienttest.Fake{MeUser: testUser(false)}
	h := newTestHandler(t, fake)

	rec := do(t, h.Router(), http.MethodGet, "/admin", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied")
	assert.Zero(t, fake.Called("AdminBookings"))
}

func TestSession_RefreshesOnce(t *testing.T) {
	fake := &apiclienttest.Fake{MeErr: common.ErrUnauthorized}
	h := newTestHandler(t, fake)

	rec := do(t, h.Router(), http.MethodGet, "/about", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fake.Called("Refresh"))
	assert.Contains(t, rec.Body.String(), `href="/login"`)
}

func TestLogin_RedirectsToNext(t *testing.T) {
	tests := []struct {
		name string
		next string
		want string
	}{
		{"local", "/history", "/history"},
		{"protocol relative", "//evil.example", "/"},
		{"absolute", "https://evil.example/", "/"},
		{"empty", "", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &apiclienttest.Fake{MeUser: testUser(false)}
			h := newTestHandler(t, fake)

			rec := do(t, h.Router(), http.MethodPost, "/login", url.Values{
				"email":    {" Ann@Example.com "},
				"password": {"secret-pass"},
				"next":     {tt.next},
			})

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
			assert.Equal(t, "ann@example.com", fake.LastLoginEmail)
		})
	}
}

func TestLogin_FailureRerenders(t *testing.T) {
	tests := []struct {
		name       string
		fake       *apiclienttest.Fake
		wantStatus int
		want       string
	}{
		{
			name:       "wrong password",
			fake:       &apiclienttest.Fake{LoginErr: &apiclient.Error{Status: http.StatusUnauthorized, Message: "No active account found with the given credentials"}},
			wantStatus: http.StatusBadRequest,
			want:       "Invalid email or password.",
		},
		{
			name:       "backend rejects differently",
			fake:       &apiclienttest.Fake{LoginErr: &apiclient.Error{Status: http.StatusBadRequest, Message: "User account is disabled"}},
			wantStatus: http.StatusBadRequest,
			want:       "Invalid email or password.",
		},
		{
			name:       "backend down",
			fake:       &apiclienttest.Fake{LoginErr: &apiclient.Error{Status: http.StatusInternalServerError}},
			wantStatus: http.StatusBadGateway,
			want:       services.NoticeGenericFailure,
		},
		{
			name:       "csrf prefetch down",
			fake:       &apiclienttest.Fake{CSRFErr: common.ErrUnavailable},
			wantStatus: http.StatusBadGateway,
			want:       services.NoticeGenericFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.fake)

			rec := do(t, h.Router(), http.MethodPost, "/login", url.Values{
				"email":    {"ann@example.com"},
				"password": {"wrong-pass"},
			})

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, tt.want)
			assert.NotContains(t, body, "No active account")
			assert.NotContains(t, body, "disabled")
			assert.Contains(t, body, `value="ann@example.com"`)
			assert.NotContains(t, body, "wrong-pass")
		})
	}
}

func TestLoginPage_AuthenticatedSkipsForm(t *testing.T) {
	h := newTestHandler(t, &apiclienttest.Fake{MeUser: testUser(false)})

	rec := do(t, h.Router(), http.MethodGet, "/login?next=%2Fprofile", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))
}

func TestLogout_ClearsBackendCookies(t *testing.T) {
	fake := &apiclienttest.Fake{MeUser: testUser(false), LogoutErr: common.ErrUnavailable}
	h := newTestHandler(t, fake)

	rec := do(t, h.Router(), http.MethodPost, "/logout", url.Values{},
		&http.Cookie{Name: common.AccessCookie, Value: "a"},
		&http.Cookie{Name: common.RefreshCookie, Value: "r"},
	)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, 1, fake.Called("Logout"))
	for _, name := range common.BackendCookies {
		ck := responseCookie(rec, name)
		require.NotNil(t, ck, name)
		assert.Less(t, ck.MaxAge, 0, name)
	}
	assert.NotNil(t, responseCookie(rec, flashCookie))
}

// cookieClient stands in for a backend that rotates the access token on
// every session check.
type cookieClient struct {
	*apiclienttest.Fake
}

func (c cookieClient) Me(ctx context.Context) (*models.User, error) {
	if jar := apiclient.JarFromContext(ctx); jar != nil {
		jar.Store(&http.Cookie{Name: common.AccessCookie, Value: "rotated", MaxAge: 300})
	}
	return c.Fake.Me(ctx)
}

func TestBackendJar_RelaysCookies(t *testing.T) {
	h := newTestHandler(t, cookieClient{&apiclienttest.Fake{MeUser: testUser(false)}})

	rec := do(t, h.Router(), http.MethodGet, "/about", nil, &http.Cookie{Name: common.AccessCookie, Value: "old"})

	require.Equal(t, http.StatusOK, rec.Code)
	ck := responseCookie(rec, common.AccessCookie)
	require.NotNil(t, ck)
	assert.Equal(t, "rotated", ck.Value)
	assert.Equal(t, "/", ck.Path)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
}

func TestBooking_SuccessFlashesOnNextPage(t *testing.T) {
	fake := &apiclienttest.Fake{}
	h := newTestHandler(t, fake)
	r := h.Router()

	rec := do(t, r, http.MethodPost, "/booking", validBooking())

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/booking", rec.Header().Get("Location"))
	assert.Equal(t, "Wedding", fake.LastBooking.EventType)
	assert.Equal(t, 80, fake.LastBooking.GuestCount)

	fl := responseCookie(rec, flashCookie)
	require.NotNil(t, fl)

	next := do(t, r, http.MethodGet, "/booking", nil, fl)
	require.Equal(t, http.StatusOK, next.Code)
	assert.Contains(t, next.Body.String(), "Your booking request has been submitted")
	cleared := responseCookie(next, flashCookie)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	again := do(t, r, http.MethodGet, "/booking", nil)
	assert.NotContains(t, again.Body.String(), "Your booking request has been submitted")
}

func TestBooking_TamperedFlashIgnored(t *testing.T) {
	h := newTestHandler(t, &apiclienttest.Fake{})

	rec := do(t, h.Router(), http.MethodGet, "/booking", nil, &http.Cookie{Name: flashCookie, Value: "not-a-token"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `class="notice`)
}

func TestBooking_OtherWithoutTextRerenders(t *testing.T) {
	fake := &apiclienttest.Fake{}
	h := newTestHandler(t, fake)
	form := validBooking()
	form.Set("eventType", models.EventTypeOther)

	rec := do(t, h.Router(), http.MethodPost, "/booking", form)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Please specify your event type")
	assert.Contains(t, body, `value="Grand Hall"`)
	assert.Zero(t, fake.Called("CreateBooking"))
}

func TestBooking_OtherUsesCustomText(t *testing.T) {
	fake := &apiclienttest.Fake{}
	h := newTestHandler(t, fake)
	form := validBooking()
	form.Set("eventType", models.EventTypeOther)
	form.Set("customEventType", " Product Launch ")

	rec := do(t, h.Router(), http.MethodPost, "/booking", form)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Product Launch", fake.LastBooking.EventType)
}

func TestBooking_BackendFailureKeepsForm(t *testing.T) {
	fake := &apiclienttest.Fake{CreateBookingErr: common.ErrUnavailable}
	h := newTestHandler(t, fake)

	rec := do(t, h.Router(), http.MethodPost, "/booking", validBooking())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "couldn")
	assert.Contains(t, body, `value="Ann Lee"`)
}

func TestBookingPage_PrefillsFromSession(t *testing.T) {
	h := newTestHandler(t, &apiclienttest.Fake{MeUser: testUser(false)})

	rec := do(t, h.Router(), http.MethodGet, "/booking", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="Ann Lee"`)
	assert.Contains(t, body, `value="ann@example.com"`)
	assert.Contains(t, body, `min="2025-06-15"`)
}

func TestContact_Submit(t *testing.T) {
	fake := &apiclienttest.Fake{}
	h := newTestHandler(t, fake)

	rec := do(t, h.Router(), http.MethodPost, "/contact", url.Values{
		"name":    {"Ann"},
		"email":   {"ann@example.com"},
		"subject": {"Hello"},
		"message": {"Do you work weekends?"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Hello", fake.LastContact.Subject)
}

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func TestHandler_CSRF(t *testing.T) {
	fake := &apiclienttest.Fake{}
	h := newTestHandler(t, fake)
	site := h.Handler()
	form := url.Values{
		"name":    {"Ann"},
		"email":   {"ann@example.com"},
		"subject": {"Hello"},
		"message": {"Hi"},
	}

	t.Run("missing token", func(t *testing.T) {
		rec := do(t, site, http.MethodPost, "/contact", form)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("round trip", func(t *testing.T) {
		page := do(t, site, http.MethodGet, "/contact", nil)
		require.Equal(t, http.StatusOK, page.Code)
		m := csrfInput.FindStringSubmatch(page.Body.String())
		require.Len(t, m, 2)

		withToken := url.Values{}
		for k, v := range form {
			withToken[k] = v
		}
		withToken.Set(csrfField, m[1])

		rec := do(t, site, http.MethodPost, "/contact", withToken, page.Result().Cookies()...)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, 1, fake.Called("SendContact"))
	})
}

func TestReset_InvalidLink(t *testing.T) {
	h := newTestHandler(t, &apiclienttest.Fake{ResetValid: false})

	rec := do(t, h.Router(), http.MethodGet, "/reset-password/abc/def", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired link")
}

func TestReset_Submit(t *testing.T) {
	fake := &apiclienttest.Fake{ResetValid: true}
	h := newTestHandler(t, fake)
	r := h.Router()

	page := do(t, r, http.MethodGet, "/reset-password/abc/def", nil)
	assert.Equal(t, http.StatusOK, page.Code)

	rec := do(t, r, http.MethodPost, "/reset-password/abc/def", url.Values{
		"password":         {"new-password"},
		"confirm_password": {"new-password"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, [3]string{"abc", "def", "new-password"}, fake.LastConfirm)

	rec = do(t, r, http.MethodPost, "/reset-password/abc/def", url.Values{
		"password":         {"new-password"},
		"confirm_password": {"other-password"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Passwords do not match")
}

func TestForgot_AlwaysLooksSuccessful(t *testing.T) {
	fake := &apiclienttest.Fake{PasswordResetErr: common.ErrNotFound}
	h := newTestHandler(t, fake)

	rec := do(t, h.Router(), http.MethodPost, "/forgot-password", url.Values{"email": {"nobody@example.com"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "nobody@example.com", fake.LastResetEmail)
}

func TestSocialContinue_StartsOnBackend(t *testing.T) {
	t.Run("redirects to provider", func(t *testing.T) {
		fake := &apiclienttest.Fake{}
		h := newTestHandler(t, fake)

		rec := do(t, h.Router(), http.MethodPost, "/auth/google/continue", url.Values{})

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "https://accounts.google.test/auth", rec.Header().Get("Location"))
		assert.Equal(t, "http://site.test/auth/social/callback", fake.LastSocialNext)
		assert.Equal(t, "http://site.test", fake.LastSocialSite)
	})
	t.Run("backend down", func(t *testing.T) {
		h := newTestHandler(t, &apiclienttest.Fake{SocialBeginErr: common.ErrUnavailable})

		rec := do(t, h.Router(), http.MethodPost, "/auth/google/continue", url.Values{})

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})
}

// oauthBackend answers the social login endpoints the way the backend does
// when it runs on its own host.
func oauthBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/custom/csrf/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: common.CSRFCookie, Value: "csrf-1", Path: "/"})
	})
	mux.HandleFunc("/api/auth/custom/me/", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie(common.AccessCookie); err != nil || ck.Value != "tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(testUser(false))
	})
	mux.HandleFunc("/accounts/google/login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get(common.CSRFHeaderName) != "csrf-1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		returnTo := r.Header.Get("X-Forwarded-Proto") + "://" + r.Header.Get("X-Forwarded-Host") + "/accounts/google/login/callback/"
		http.SetCookie(w, &http.Cookie{Name: common.SessionCookie, Value: "oauth-state", Path: "/"})
		http.Redirect(w, r, "https://accounts.google.test/auth?state=s1&redirect_uri="+url.QueryEscape(returnTo), http.StatusFound)
	})
	mux.HandleFunc("/accounts/google/login/callback/", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(common.SessionCookie)
		if err != nil || ck.Value != "oauth-state" || r.URL.Query().Get("state") != "s1" {
			http.Redirect(w, r, "/accounts/social/login/error/", http.StatusFound)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: common.AccessCookie, Value: "tok-1", Path: "/", HttpOnly: true})
		http.SetCookie(w, &http.Cookie{Name: common.RefreshCookie, Value: "ref-1", Path: "/", HttpOnly: true})
		http.Redirect(w, r, "http://site.test/auth/social/callback", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// browser keeps the cookies the site sets, as a browser would for site.test.
type browser map[string]*http.Cookie

func (b browser) keep(rec *httptest.ResponseRecorder) {
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(b, ck.Name)
			continue
		}
		b[ck.Name] = ck
	}
}

func (b browser) cookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(b))
	for _, ck := range b {
		out = append(out, &http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

func TestSocialLogin_BackendOnAnotherHost(t *testing.T) {
	backend := oauthBackend(t)
	require.NotContains(t, backend.URL, "site.test")

	t.Run("completes", func(t *testing.T) {
		r := newTestHandler(t, apiclient.New(backend.URL)).Router()
		b := browser{}

		rec := do(t, r, http.MethodPost, "/auth/google/continue", url.Values{})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		provider, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "accounts.google.test", provider.Host)
		assert.Equal(t, "http://site.test/accounts/google/login/callback/", provider.Query().Get("redirect_uri"))
		b.keep(rec)
		require.Contains(t, b, common.SessionCookie)

		rec = do(t, r, http.MethodGet, "/accounts/google/login/callback/?code=abc&state=s1", nil, b.cookies()...)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/social/callback", rec.Header().Get("Location"))
		b.keep(rec)
		require.Contains(t, b, common.AccessCookie)
		assert.Equal(t, "tok-1", b[common.AccessCookie].Value)
		assert.Empty(t, b[common.AccessCookie].Domain)

		rec = do(t, r, http.MethodGet, "/auth/social/callback", nil, b.cookies()...)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("lost state", func(t *testing.T) {
		r := newTestHandler(t, apiclient.New(backend.URL)).Router()

		rec := do(t, r, http.MethodGet, "/accounts/google/login/callback/?code=abc&state=s1", nil)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Nil(t, responseCookie(rec, common.AccessCookie))
	})
}

func TestSocialCallback(t *testing.T) {
	t.Run("session", func(t *testing.T) {
		h := newTestHandler(t, &apiclienttest.Fake{MeUser: testUser(false)})
		rec := do(t, h.Router(), http.MethodGet, "/auth/social/callback", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})
	t.Run("no session", func(t *testing.T) {
		h := newTestHandler(t, &apiclienttest.Fake{})
		rec := do(t, h.Router(), http.MethodGet, "/auth/social/callback", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})
}

func TestProfile(t *testing.T) {
	t.Run("page", func(t *testing.T) {
		h := newTestHandler(t, &apiclienttest.Fake{MeUser: testUser(false)})
		rec := do(t, h.Router(), http.MethodGet, "/profile?edit=location", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Ann Lee")
	})

	t.Run("save field", func(t *testing.T) {
		fake := &apiclienttest.Fake{MeUser: testUser(false), UpdateProfileRet: testUser(false)}
		h := newTestHandler(t, fake)
		rec := do(t, h.Router(), http.MethodPost, "/profile/field/location", url.Values{"value": {" Riga "}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		require.NotNil(t, fake.LastProfileUpdate.Location)
		assert.Equal(t, "Riga", *fake.LastProfileUpdate.Location)
		assert.Nil(t, fake.LastProfileUpdate.Bio)
	})

	t.Run("unknown field", func(t *testing.T) {
		fake := &apiclienttest.Fake{MeUser: testUser(false)}
		h := newTestHandler(t, fake)
		rec := do(t, h.Router(), http.MethodPost, "/profile/field/email", url.Values{"value": {"x@example.com"}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Zero(t, fake.Called("UpdateProfile"))
	})

	t.Run("avatar delete", func(t *testing.T) {
		fake := &apiclienttest.Fake{MeUser: testUser(false)}
		h := newTestHandler(t, fake)
		rec := do(t, h.Router(), http.MethodPost, "/profile/avatar/delete", url.Values{})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, 1, fake.Called("DeleteAvatar"))
	})
}

// avatarForm builds a multipart upload carrying data as profile_image.
func avatarForm(t *testing.T, token string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if token != "" {
		require.NoError(t, mw.WriteField(csrfField, token))
	}
	part, err := mw.CreateFormFile("profile_image", "me.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAvatarUpload_BodyLimit(t *testing.T) {
	big := bytes.Repeat([]byte{0x89}, services.MaxAvatarBytes+128<<10)

	t.Run("declared too large", func(t *testing.T) {
		fake := &apiclienttest.Fake{MeUser: testUser(false)}
		h := newTestHandler(t, fake)

		req := httptest.NewRequest(http.MethodPost, "/profile/avatar", strings.NewReader("--x--"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		req.ContentLength = avatarBodyLimit + 1
		rec := httptest.NewRecorder()
		h.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/profile", rec.Header().Get("Location"))
		assert.Zero(t, fake.Called("UploadAvatar"))

		fl := responseCookie(rec, flashCookie)
		require.NotNil(t, fl)
		page := do(t, h.Router(), http.MethodGet, "/profile", nil, fl)
		assert.Contains(t, page.Body.String(), services.NoticeAvatarTooLarge)
	})

	t.Run("other forms declared too large", func(t *testing.T) {
		fake := &apiclienttest.Fake{}
		h := newTestHandler(t, fake)

		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("name=Ann"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.ContentLength = formBodyLimit + 1
		rec := httptest.NewRecorder()
		h.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Zero(t, fake.Called("SendContact"))
	})

	t.Run("unknown length is cut off", func(t *testing.T) {
		fake := &apiclienttest.Fake{MeUser: testUser(false)}
		h := newTestHandler(t, fake)
		body, ctype := avatarForm(t, "", big)

		req := httptest.NewRequest(http.MethodPost, "/profile/avatar", io.NopCloser(body))
		req.Header.Set("Content-Type", ctype)
		require.EqualValues(t, -1, req.ContentLength)
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/profile", rec.Header().Get("Location"))
		assert.Zero(t, fake.Called("UploadAvatar"))

		page := do(t, h.Router(), http.MethodGet, "/profile", nil, responseCookie(rec, flashCookie))
		assert.Contains(t, page.Body.String(), services.NoticeAvatarTooLarge)
	})

	t.Run("limit applies before the form token is read", func(t *testing.T) {
		fake := &apiclienttest.Fake{MeUser: testUser(false)}
		h := newTestHandler(t, fake)
		site := h.Handler()

		page := do(t, site, http.MethodGet, "/contact", nil)
		require.Equal(t, http.StatusOK, page.Code)
		m := csrfInput.FindStringSubmatch(page.Body.String())
		require.Len(t, m, 2)

		body, ctype := avatarForm(t, m[1], big)
		req := httptest.NewRequest(http.MethodPost, "/profile/avatar", io.NopCloser(body))
		req.Header.Set("Content-Type", ctype)
		for _, ck := range page.Result().Cookies() {
			req.AddCookie(ck)
		}
		rec := httptest.NewRecorder()
		site.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Zero(t, fake.Called("UploadAvatar"))
	})

	t.Run("small upload passes", func(t *testing.T) {
		fake := &apiclienttest.Fake{MeUser: testUser(false)}
		h := newTestHandler(t, fake)
		var img bytes.Buffer
		require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2))))
		body, ctype := avatarForm(t, "", img.Bytes())

		req := httptest.NewRequest(http.MethodPost, "/profile/avatar", body)
		req.Header.Set("Content-Type", ctype)
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, 1, fake.Called("UploadAvatar"))
		assert.Equal(t, "me.png", fake.LastAvatarName)
	})
}

func ownBooking(id int64, day string) models.Booking {
	d, _ := models.ParseDate(day)
	uid := int64(7)
	return models.Booking{ID: id, Name: "Ann Lee", Email: "ann@example.com", EventType: "Wedding", EventDate: d, GuestCount: 10, Status: models.StatusPending, User: &uid}
}

func TestHistory(t *testing.T) {
	fake := &apiclienttest.Fake{
		MeUser:     testUser(false),
		HistoryRet: []models.Booking{ownBooking(3, "2025-01-10"), ownBooking(4, "2025-06-15")},
	}
	h := newTestHandler(t, fake)
	r := h.Router()

	page := do(t, r, http.MethodGet, "/history", nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "/history/3/delete")

	confirm := do(t, r, http.MethodGet, "/history/4/delete", nil)
	assert.Equal(t, http.StatusOK, confirm.Code)
	assert.Contains(t, confirm.Body.String(), `action="/history/4/delete"`)

	missing := do(t, r, http.MethodGet, "/history/99/delete", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	rec := do(t, r, http.MethodPost, "/history/4/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/history", rec.Header().Get("Location"))
	assert.Equal(t, int64(4), fake.LastDeletedID)
}

func TestHistory_LoadFailureShowsNotice(t *testing.T) {
	h := newTestHandler(t, &apiclienttest.Fake{MeUser: testUser(false), HistoryErr: common.ErrUnavailable})

	rec := do(t, h.Router(), http.MethodGet, "/history", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "load your bookings")
	assert.NotContains(t, body, "You have no bookings yet.")
}

func adminFake() *apiclienttest.Fake {
	var list []models.Booking
	for i := int64(1); i <= 6; i++ {
		list = append(list, ownBooking(i, "2025-07-01"))
	}
	list = append(list, models.Booking{ID: 20, Name: "Gala Corp", Email: "events@gala.example", EventType: "Corporate Event", Status: models.StatusConfirmed})
	return &apiclienttest.Fake{
		MeUser:           testUser(true),
		AdminBookingsRet: list,
		AdminUsersRet:    []models.User{*testUser(false)},
	}
}

func TestAdminPage(t *testing.T) {
	h := newTestHandler(t, adminFake())
	r := h.Router()

	rec := do(t, r, http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Gala Corp")
	assert.Contains(t, body, "+1 more")
	assert.Contains(t, body, "/admin/bookings/20/edit")

	filtered := do(t, r, http.MethodGet, "/admin?bq=gala", nil)
	require.Equal(t, http.StatusOK, filtered.Code)
	assert.Contains(t, filtered.Body.String(), "/admin/bookings/20/edit")
	assert.NotContains(t, filtered.Body.String(), "/admin/bookings/1/edit")
}

func TestAdminPage_PartialFailure(t *testing.T) {
	fake := adminFake()
	fake.AdminUsersErr = common.ErrUnavailable
	h := newTestHandler(t, fake)

	rec := do(t, h.Router(), http.MethodGet, "/admin", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Users could not be loaded.")
	assert.Contains(t, body, "Gala Corp")
}

func TestAdminPage_BackendForbidden(t *testing.T) {
	fake := adminFake()
	fake.AdminBookingsErr = common.ErrForbidden
	h := newTestHandler(t, fake)

	rec := do(t, h.Router(), http.MethodGet, "/admin", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminEdit(t *testing.T) {
	editForm := func() url.Values {
		return url.Values{
			"name":       {"Gala Corp"},
			"email":      {"events@gala.example"},
			"phone":      {"+37120000001"},
			"eventType":  {"Corporate Event"},
			"eventDate":  {"2025-10-01"},
			"venue":      {"Grand Hall"},
			"guestCount": {"150"},
			"status":     {"confirmed"},
		}
	}

	t.Run("page", func(t *testing.T) {
		h := newTestHandler(t, adminFake())
		rec := do(t, h.Router(), http.MethodGet, "/admin/bookings/20/edit", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="Gala Corp"`)
	})

	t.Run("unknown booking", func(t *testing.T) {
		h := newTestHandler(t, adminFake())
		rec := do(t, h.Router(), http.MethodGet, "/admin/bookings/404/edit", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		fake := adminFake()
		fake.AdminUpdateRet = &models.Booking{ID: 20, Status: models.StatusConfirmed}
		h := newTestHandler(t, fake)

		rec := do(t, h.Router(), http.MethodPost, "/admin/bookings/20/edit", editForm())

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin", rec.Header().Get("Location"))
		assert.Equal(t, int64(20), fake.LastAdminUpdate.ID)
		assert.Equal(t, 150, fake.LastAdminUpdate.GuestCount)
		assert.Equal(t, models.StatusConfirmed, fake.LastAdminUpdate.Status)
	})

	t.Run("invalid draft is kept", func(t *testing.T) {
		fake := adminFake()
		h := newTestHandler(t, fake)
		form := editForm()
		form.Set("name", "")
		form.Set("venue", "Riverside Barn")

		rec := do(t, h.Router(), http.MethodPost, "/admin/bookings/20/edit", form)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Name is required")
		assert.Contains(t, body, `value="Riverside Barn"`)
		assert.Zero(t, fake.Called("AdminUpdateBooking"))
	})

	t.Run("backend failure keeps draft", func(t *testing.T) {
		fake := adminFake()
		fake.AdminUpdateErr = common.ErrUnavailable
		h := newTestHandler(t, fake)
		form := editForm()
		form.Set("venue", "Riverside Barn")

		rec := do(t, h.Router(), http.MethodPost, "/admin/bookings/20/edit", form)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="Riverside Barn"`)
		assert.Contains(t, rec.Body.String(), services.NoticeUpdateFailed)
	})
}

func TestAdminDelete(t *testing.T) {
	fake := adminFake()
	h := newTestHandler(t, fake)
	r := h.Router()

	confirm := do(t, r, http.MethodGet, "/admin/bookings/20/delete", nil)
	assert.Equal(t, http.StatusOK, confirm.Code)
	assert.Contains(t, confirm.Body.String(), `action="/admin/bookings/20/delete"`)

	rec := do(t, r, http.MethodPost, "/admin/bookings/20/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, int64(20), fake.LastAdminDeletedID)

	fake.AdminDeleteErr = common.ErrForbidden
	rec = do(t, r, http.MethodPost, "/admin/bookings/20/delete", url.Values{})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
