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

type historyRow struct {
	models.Booking
	Past bool
}

func (h *Handler) HistoryPage(c *gin.Context) {
	ctx := c.Request.Context()
	v := h.view(c, "My Bookings", nil)

	list, err := h.bookings.History(ctx)
	if err != nil {
		v.notice(flash.Error, "We couldn't load your bookings. Please try again.")
	}

	now := h.now()
	rows := make([]historyRow, 0, len(list))
	for _, b := range list {
		rows = append(rows, historyRow{Booking: b, Past: services.IsPast(b, now)})
	}
	v.Data = gin.H{
		"Rows":    rows,
		"Summary": services.Summarize(list, now),
		"Failed":  err != nil,
	}
	h.html(c, http.StatusOK, "history", v)
}

// findOwn looks the booking up in the caller's history.
func (h *Handler) findOwn(c *gin.Context) (models.Booking, bool) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return models.Booking{}, false
	}
	list, err := h.bookings.History(c.Request.Context())
	if err != nil {
		h.redirect(c, "/history", flash.Error, "We couldn't load your bookings. Please try again.")
		return models.Booking{}, false
	}
	for _, b := range list {
		if b.ID == id {
			return b, true
		}
	}
	h.notFound(c)
	return models.Booking{}, false
}

func (h *Handler) HistoryDeleteConfirm(c *gin.Context) {
	b, ok := h.findOwn(c)
	if !ok {
		return
	}
	h.html(c, http.StatusOK, "confirm_delete", h.view(c, "Delete Booking", gin.H{
		"Booking": b,
		"Action":  "/history/" + strconv.FormatInt(b.ID, 10) + "/delete",
		"Cancel":  "/history",
	}))
}

func (h *Handler) HistoryDelete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	if _, err := h.bookings.DeleteOwn(c.Request.Context(), nil, id); err != nil {
		msg := services.NoticeDeleteFailed
		if errors.Is(err, common.ErrNotFound) {
			msg = "That booking no longer exists."
		}
		h.redirect(c, "/history", flash.Error, msg)
		return
	}
	h.redirect(c, "/history", flash.Success, services.NoticeBookingDeleted)
}
