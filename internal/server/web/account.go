package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/server/flash"
	"github.com/dmitrijs2005/gnmweb/internal/services"
	"github.com/dmitrijs2005/gnmweb/internal/session"
)

const googleProvider = "google"

func (h *Handler) loginView(c *gin.Context, f *services.LoginForm, err error) *view {
	v := h.view(c, "Log In", nil)
	v.Form = f
	v.Errors = services.AsFieldErrors(err)
	return v
}

func (h *Handler) LoginPage(c *gin.Context) {
	next := services.SafeNext(c.Query("next"))
	if session.FromContext(c.Request.Context()).Authenticated() {
		c.Redirect(http.StatusSeeOther, next)
		return
	}
	h.html(c, http.StatusOK, "login", h.loginView(c, &services.LoginForm{Next: next}, nil))
}

func (h *Handler) LoginSubmit(c *gin.Context) {
	f := &services.LoginForm{}
	err := bindForm(c, f)
	if err == nil {
		_, err = h.auth.Login(c.Request.Context(), f)
	}
	if err != nil {
		f.Password = ""
		notice, unavailable := services.LoginFailure(err)
		status := http.StatusBadRequest
		switch {
		case unavailable:
			status = http.StatusBadGateway
		case services.AsFieldErrors(err) != nil:
			status = http.StatusUnprocessableEntity
		}
		v := h.loginView(c, f, err)
		v.notice(flash.Error, notice)
		h.html(c, status, "login", v)
		return
	}
	h.redirect(c, services.SafeNext(f.Next), "", "")
}

func (h *Handler) SignupPage(c *gin.Context) {
	v := h.view(c, "Create Account", nil)
	v.Form = &services.RegisterForm{}
	h.html(c, http.StatusOK, "signup", v)
}

func (h *Handler) SignupSubmit(c *gin.Context) {
	f := &services.RegisterForm{}
	err := bindForm(c, f)
	if err == nil {
		err = h.auth.Register(c.Request.Context(), f)
	}
	if err != nil {
		f.Password, f.Confirm = "", ""
		v := h.view(c, "Create Account", nil)
		v.Form = f
		v.Errors = services.AsFieldErrors(err)
		v.notice(flash.Error, services.NoticeFor(err, services.NoticeGenericFailure))
		h.html(c, failureStatus(err), "signup", v)
		return
	}
	h.redirect(c, "/login", flash.Success, services.NoticeRegistered)
}

// Logout always ends the local session, even when the backend call fails.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	_ = h.auth.Logout(ctx)
	if jar := apiclient.JarFromContext(ctx); jar != nil {
		jar.Clear(common.BackendCookies...)
	}
	h.redirect(c, "/login", flash.Success, services.NoticeLoggedOut)
}

func (h *Handler) ForgotPage(c *gin.Context) {
	h.html(c, http.StatusOK, "forgot", h.view(c, "Forgot Password", nil))
}

func (h *Handler) ForgotSubmit(c *gin.Context) {
	email := c.PostForm("email")
	if err := h.auth.ForgotPassword(c.Request.Context(), email); err != nil {
		v := h.view(c, "Forgot Password", nil)
		v.Form = gin.H{"Email": email}
		v.Errors = services.AsFieldErrors(err)
		v.notice(flash.Error, services.NoticeFor(err, services.NoticeGenericFailure))
		h.html(c, failureStatus(err), "forgot", v)
		return
	}
	h.redirect(c, "/forgot-password", flash.Success, services.NoticeCheckEmail)
}

func (h *Handler) ResetPage(c *gin.Context) {
	uid, token := c.Param("uid"), c.Param("token")
	if !h.auth.ValidateReset(c.Request.Context(), uid, token) {
		h.html(c, http.StatusBadRequest, "reset_invalid", h.view(c, "Invalid Reset Link", nil))
		return
	}
	v := h.view(c, "Reset Password", nil)
	v.Form = &services.ResetForm{UID: uid, Token: token}
	h.html(c, http.StatusOK, "reset", v)
}

func (h *Handler) ResetSubmit(c *gin.Context) {
	f := &services.ResetForm{}
	err := bindForm(c, f)
	f.UID, f.Token = c.Param("uid"), c.Param("token")
	if err == nil {
		err = h.auth.ConfirmReset(c.Request.Context(), f)
	}
	if err != nil {
		f.Password, f.Confirm = "", ""
		v := h.view(c, "Reset Password", nil)
		v.Form = f
		v.Errors = services.AsFieldErrors(err)
		v.notice(flash.Error, services.NoticeFor(err, services.NoticeGenericFailure))
		h.html(c, failureStatus(err), "reset", v)
		return
	}
	h.redirect(c, "/login", flash.Success, services.NoticePasswordReset)
}

// SocialConfirm tells the visitor what the provider will share before
// leaving the site.
func (h *Handler) SocialConfirm(c *gin.Context) {
	h.html(c, http.StatusOK, "social_confirm", h.view(c, "Continue with Google", gin.H{
		"Provider": services.SocialProviders[googleProvider],
		"Action":   "/auth/" + googleProvider + "/continue",
		"Shares":   []string{"Your name", "Your email address", "Your profile picture"},
	}))
}

// SocialContinue starts the provider round trip on the backend. The OAuth
// state cookie it sets is relayed to the browser like the session cookies.
func (h *Handler) SocialContinue(c *gin.Context) {
	target, err := h.auth.SocialBegin(c.Request.Context(), googleProvider, h.publicURL)
	if err != nil {
		h.redirect(c, "/login", flash.Error, services.NoticeGenericFailure)
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

// SocialReturn is the provider's return address. It hands the answer to the
// backend, which sets the session cookies on this site through the relay.
func (h *Handler) SocialReturn(c *gin.Context) {
	next, err := h.auth.SocialReturn(c.Request.Context(), c.Param("provider"), c.Request.URL.RawQuery, h.publicURL)
	if err != nil {
		h.redirect(c, "/login", flash.Error, noticeSocialFailed)
		return
	}
	c.Redirect(http.StatusSeeOther, next)
}

const noticeSocialFailed = "Social login failed. Please try again."

// SocialCallback is where the backend sends the browser after the provider
// round trip. The session cookies are already set on this site by then.
func (h *Handler) SocialCallback(c *gin.Context) {
	id, ok := h.auth.SocialCallback(c.Request.Context())
	if !ok {
		h.redirect(c, "/login", flash.Error, noticeSocialFailed)
		return
	}
	h.redirect(c, "/", flash.Success, "Welcome, "+id.DisplayName()+"!")
}
