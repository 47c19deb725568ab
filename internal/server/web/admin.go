package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/models"
	"github.com/dmitrijs2005/gnmweb/internal/server/flash"
	"github.com/dmitrijs2005/gnmweb/internal/services"
)

type adminUserRow struct {
	models.User
	Bookings services.UserBookings
}

type adminData struct {
	Stats         services.AdminStats
	Bookings      []models.Booking
	Users         []adminUserRow
	BookingsQuery string
	UsersQuery    string
	BookingsErr   bool
	UsersErr      bool
}

// backendDenied reports whether the backend refused the admin lists, which
// is rendered the same way as a missing staff flag.
func backendDenied(b *services.AdminBoard) bool {
	return errors.Is(b.BookingsErr, common.ErrForbidden) || errors.Is(b.UsersErr, common.ErrForbidden)
}

func (h *Handler) AdminPage(c *gin.Context) {
	board := h.admin.Load(c.Request.Context())
	if backendDenied(board) {
		h.forbidden(c)
		return
	}

	d := adminData{
		Stats:         board.Stats(h.now()),
		Bookings:      board.FilterBookings(c.Query("bq")),
		BookingsQuery: c.Query("bq"),
		UsersQuery:    c.Query("uq"),
		BookingsErr:   board.BookingsErr != nil,
		UsersErr:      board.UsersErr != nil,
	}
	for _, u := range board.FilterUsers(c.Query("uq")) {
		d.Users = append(d.Users, adminUserRow{User: u, Bookings: board.UserBookings(u.ID, services.PreviewCap)})
	}

	v := h.view(c, "Admin Dashboard", d)
	if d.BookingsErr || d.UsersErr {
		v.notice(flash.Error, "Some dashboard data could not be loaded.")
	}
	h.html(c, http.StatusOK, "admin", v)
}

func (h *Handler) editView(c *gin.Context, e *services.BookingEdit, err error) *view {
	v := h.view(c, "Edit Booking", gin.H{
		"EventTypes": models.EventTypes,
		"Statuses":   models.Statuses,
		"Action":     "/admin/bookings/" + strconv.FormatInt(e.ID, 10) + "/edit",
	})
	v.Form = e
	v.Errors = services.AsFieldErrors(err)
	return v
}

// adminBooking loads the board and finds the booking named in the path.
func (h *Handler) adminBooking(c *gin.Context) (*services.AdminBoard, models.Booking, bool) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return nil, models.Booking{}, false
	}
	board := h.admin.Load(c.Request.Context())
	if errors.Is(board.BookingsErr, common.ErrForbidden) {
		h.forbidden(c)
		return nil, models.Booking{}, false
	}
	if board.BookingsErr != nil {
		h.redirect(c, "/admin", flash.Error, "Bookings could not be loaded. Please try again.")
		return nil, models.Booking{}, false
	}
	b, ok := board.Booking(id)
	if !ok {
		h.notFound(c)
		return nil, models.Booking{}, false
	}
	return board, b, true
}

func (h *Handler) AdminEditPage(c *gin.Context) {
	_, b, ok := h.adminBooking(c)
	if !ok {
		return
	}
	e := services.EditFor(b)
	h.html(c, http.StatusOK, "admin_edit", h.editView(c, &e, nil))
}

// AdminEditSubmit saves the draft. On failure the draft is shown again so
// nothing typed is lost.
func (h *Handler) AdminEditSubmit(c *gin.Context) {
	board, _, ok := h.adminBooking(c)
	if !ok {
		return
	}

	e := &services.BookingEdit{}
	err := bindForm(c, e)
	e.ID, _ = paramID(c)
	if err == nil {
		_, err = h.admin.Update(c.Request.Context(), board, e)
	}
	if err != nil {
		v := h.editView(c, e, err)
		v.notice(flash.Error, services.NoticeFor(err, services.NoticeUpdateFailed))
		h.html(c, failureStatus(err), "admin_edit", v)
		return
	}
	h.redirect(c, "/admin", flash.Success, services.NoticeBookingUpdated)
}

func (h *Handler) AdminDeleteConfirm(c *gin.Context) {
	_, b, ok := h.adminBooking(c)
	if !ok {
		return
	}
	h.html(c, http.StatusOK, "confirm_delete", h.view(c, "Delete Booking", gin.H{
		"Booking": b,
		"Action":  "/admin/bookings/" + strconv.FormatInt(b.ID, 10) + "/delete",
		"Cancel":  "/admin",
	}))
}

func (h *Handler) AdminDelete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	if err := h.admin.Delete(c.Request.Context(), &services.AdminBoard{}, id); err != nil {
		if errors.Is(err, common.ErrForbidden) {
			h.forbidden(c)
			return
		}
		h.redirect(c, "/admin", flash.Error, services.NoticeDeleteFailed)
		return
	}
	h.redirect(c, "/admin", flash.Success, services.NoticeBookingDeleted)
}
