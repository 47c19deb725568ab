package web

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// Router builds the gin engine with every route. It does not check the site
// CSRF token; Handler wraps it with that check.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.HTMLRender = h.pages
	r.HandleMethodNotAllowed = true

	r.Use(RequestID(), AccessLog(h.logger), h.Recovery(), BodyLimit())

	static, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(static))
	r.GET("/healthz", h.Healthz)

	site := r.Group("/", Timeout(h.timeout), h.BackendJar(), h.LoadSession())
	{
		site.GET("/", h.Home)
		site.GET("/about", h.About)
		site.GET("/services", h.Services)
		site.GET("/gallery", h.Gallery)
		site.GET("/blog", h.Blog)
		site.GET("/blog/:slug", h.BlogPost)
		site.GET("/contact", h.ContactPage)
		site.POST("/contact", h.ContactSubmit)
		site.GET("/booking", h.BookingPage)
		site.POST("/booking", h.BookingSubmit)

		site.GET("/login", h.LoginPage)
		site.POST("/login", h.LoginSubmit)
		site.GET("/signup", h.SignupPage)
		site.POST("/signup", h.SignupSubmit)
		site.POST("/logout", h.Logout)
		site.GET("/forgot-password", h.ForgotPage)
		site.POST("/forgot-password", h.ForgotSubmit)
		site.GET("/reset-password/:uid/:token", h.ResetPage)
		site.POST("/reset-password/:uid/:token", h.ResetSubmit)
		site.GET("/auth/google/confirm", h.SocialConfirm)
		site.POST("/auth/google/continue", h.SocialContinue)
		site.GET("/accounts/:provider/login/callback/", h.SocialReturn)
		site.GET("/auth/social/callback", h.SocialCallback)

		account := site.Group("/", RequireSession())
		{
			account.GET("/profile", h.ProfilePage)
			account.POST("/profile", h.ProfileSaveAll)
			account.POST("/profile/field/:field", h.ProfileSaveField)
			account.POST(avatarPath, h.AvatarUpload)
			account.POST("/profile/avatar/delete", h.AvatarDelete)
			account.GET("/history", h.HistoryPage)
			account.GET("/history/:id/delete", h.HistoryDeleteConfirm)
			account.POST("/history/:id/delete", h.HistoryDelete)
		}

		admin := site.Group("/admin", RequireSession(), h.RequireStaff())
		{
			admin.GET("", h.AdminPage)
			admin.GET("/bookings/:id/edit", h.AdminEditPage)
			admin.POST("/bookings/:id/edit", h.AdminEditSubmit)
			admin.GET("/bookings/:id/delete", h.AdminDeleteConfirm)
			admin.POST("/bookings/:id/delete", h.AdminDelete)
		}
	}

	r.NoRoute(Timeout(h.timeout), h.BackendJar(), h.LoadSession(), h.notFound)
	return r
}

// Handler returns the router behind the site CSRF check.
func (h *Handler) Handler() http.Handler {
	protect := csrf.Protect(h.secret,
		csrf.Secure(h.secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName(csrfField),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.logger.Warn(r.Context(), "csrf check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
			http.Error(w, "Forbidden - the form expired, please go back and try again.", http.StatusForbidden)
		})),
	)(h.Router())

	if h.secure {
		return h.limitBody(protect)
	}
	return h.limitBody(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protect.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	}))
}

const csrfField = "csrf_token"
