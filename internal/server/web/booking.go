package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gnmweb/internal/models"
	"github.com/dmitrijs2005/gnmweb/internal/server/flash"
	"github.com/dmitrijs2005/gnmweb/internal/services"
	"github.com/dmitrijs2005/gnmweb/internal/session"
)

func (h *Handler) bookingView(c *gin.Context, f *services.BookingForm, err error) *view {
	v := h.view(c, "Book Your Event", gin.H{
		"EventTypes": models.EventTypes,
		"MinDate":    models.DateOf(h.now()).String(),
	})
	v.Form = f
	v.Errors = services.AsFieldErrors(err)
	return v
}

func (h *Handler) BookingPage(c *gin.Context) {
	f := &services.BookingForm{GuestCount: 1}
	if s := session.FromContext(c.Request.Context()); s.Authenticated() {
		f.Name = s.Identity.DisplayName()
		f.Email = s.Identity.Email
		if s.User != nil {
			f.Phone = s.User.Phone
		}
	}
	h.html(c, http.StatusOK, "booking", h.bookingView(c, f, nil))
}

func (h *Handler) BookingSubmit(c *gin.Context) {
	f := &services.BookingForm{}
	err := bindForm(c, f)
	if err == nil {
		_, err = h.bookings.Create(c.Request.Context(), f)
	}
	if err != nil {
		v := h.bookingView(c, f, err)
		v.notice(flash.Error, services.NoticeFor(err, services.NoticeBookingFailed))
		h.html(c, failureStatus(err), "booking", v)
		return
	}
	h.redirect(c, "/booking", flash.Success, services.NoticeBookingSent)
}

func (h *Handler) ContactPage(c *gin.Context) {
	f := &services.ContactForm{}
	if s := session.FromContext(c.Request.Context()); s.Authenticated() {
		f.Name = s.Identity.DisplayName()
		f.Email = s.Identity.Email
	}
	v := h.view(c, "Contact Us", nil)
	v.Form = f
	h.html(c, http.StatusOK, "contact", v)
}

func (h *Handler) ContactSubmit(c *gin.Context) {
	f := &services.ContactForm{}
	err := bindForm(c, f)
	if err == nil {
		err = h.contact.Send(c.Request.Context(), f)
	}
	if err != nil {
		v := h.view(c, "Contact Us", nil)
		v.Form = f
		v.Errors = services.AsFieldErrors(err)
		v.notice(flash.Error, services.NoticeFor(err, services.NoticeContactFailed))
		h.html(c, failureStatus(err), "contact", v)
		return
	}
	h.redirect(c, "/contact", flash.Success, services.NoticeContactSent)
}
