package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gnmweb/internal/models"
	"github.com/dmitrijs2005/gnmweb/internal/server/flash"
	"github.com/dmitrijs2005/gnmweb/internal/services"
	"github.com/dmitrijs2005/gnmweb/internal/session"
)

type profileField struct {
	Name      services.ProfileField
	Label     string
	Value     string
	Multiline bool
	Editing   bool
}

type profileData struct {
	User      *models.User
	AvatarURL string
	Fields    []profileField
	MaxAvatar int64
}

// profileView renders the profile of u. editing names the field whose inline
// form is open; value, when set, replaces what that form shows.
func (h *Handler) profileView(c *gin.Context, u *models.User, editing services.ProfileField, value *string) *view {
	d := profileData{User: u, AvatarURL: u.AvatarURL(), MaxAvatar: services.MaxAvatarBytes >> 20}
	if ts, err := strconv.ParseInt(c.Query("v"), 10, 64); err == nil {
		d.AvatarURL = services.CacheBust(d.AvatarURL, ts)
	}
	for _, f := range services.ProfileFields {
		pf := profileField{Name: f, Label: f.Label(), Value: f.Value(u), Multiline: f.Multiline(), Editing: f == editing}
		if pf.Editing && value != nil {
			pf.Value = *value
		}
		d.Fields = append(d.Fields, pf)
	}
	v := h.view(c, "My Profile", d)
	form := services.ProfileFormFor(u)
	v.Form = &form
	return v
}

// currentUser returns the full account loaded with the session.
func (h *Handler) currentUser(c *gin.Context) (*models.User, bool) {
	s := session.FromContext(c.Request.Context())
	if s.User != nil {
		u := *s.User
		return &u, true
	}
	u, err := h.profile.Get(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "load profile", "error", err)
		h.serverError(c)
		return nil, false
	}
	return u, true
}

func (h *Handler) ProfilePage(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	editing, _ := services.ParseProfileField(c.Query("edit"))
	h.html(c, http.StatusOK, "profile", h.profileView(c, u, editing, nil))
}

func (h *Handler) ProfileSaveField(c *gin.Context) {
	field, ok := services.ParseProfileField(c.Param("field"))
	if !ok {
		h.notFound(c)
		return
	}
	value := c.PostForm("value")

	if _, err := h.profile.SaveField(c.Request.Context(), field, value); err != nil {
		u, ok := h.currentUser(c)
		if !ok {
			return
		}
		v := h.profileView(c, u, field, &value)
		v.Errors = services.AsFieldErrors(err)
		v.notice(flash.Error, services.NoticeFor(err, services.NoticeGenericFailure))
		h.html(c, failureStatus(err), "profile", v)
		return
	}
	h.redirect(c, "/profile", flash.Success, services.NoticeProfileSaved)
}

func (h *Handler) ProfileSaveAll(c *gin.Context) {
	f := &services.ProfileForm{}
	err := bindForm(c, f)
	if err == nil {
		_, err = h.profile.SaveAll(c.Request.Context(), f)
	}
	if err != nil {
		u, ok := h.currentUser(c)
		if !ok {
			return
		}
		v := h.profileView(c, u, "", nil)
		v.Form = f
		v.Errors = services.AsFieldErrors(err)
		v.notice(flash.Error, services.NoticeFor(err, services.NoticeGenericFailure))
		h.html(c, failureStatus(err), "profile", v)
		return
	}
	h.redirect(c, "/profile", flash.Success, services.NoticeProfileSaved)
}

func (h *Handler) AvatarUpload(c *gin.Context) {
	if c.Request.ContentLength > avatarBodyLimit {
		h.redirect(c, "/profile", flash.Error, services.NoticeAvatarTooLarge)
		return
	}
	fh, err := c.FormFile("profile_image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.redirect(c, "/profile", flash.Error, services.NoticeAvatarTooLarge)
			return
		}
		h.redirect(c, "/profile", flash.Error, "Please choose an image to upload.")
		return
	}
	file, err := fh.Open()
	if err != nil {
		h.logger.Error(c.Request.Context(), "open upload", "error", err)
		h.redirect(c, "/profile", flash.Error, services.NoticeGenericFailure)
		return
	}
	defer file.Close()

	if _, err := h.profile.UploadAvatar(c.Request.Context(), fh.Filename, fh.Size, file); err != nil {
		h.redirect(c, "/profile", flash.Error, services.NoticeFor(err, services.NoticeGenericFailure))
		return
	}
	h.redirect(c, "/profile?v="+strconv.FormatInt(h.now().Unix(), 10), flash.Success, services.NoticeAvatarUploaded)
}

func (h *Handler) AvatarDelete(c *gin.Context) {
	if _, err := h.profile.DeleteAvatar(c.Request.Context()); err != nil {
		h.redirect(c, "/profile", flash.Error, services.NoticeFor(err, services.NoticeGenericFailure))
		return
	}
	h.redirect(c, "/profile", flash.Success, services.NoticeAvatarRemoved)
}
