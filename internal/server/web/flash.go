package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gnmweb/internal/server/flash"
)

const flashCookie = "gnm_flash"

// redirect finishes a POST with 303 and optionally leaves a notice for the
// next page.
func (h *Handler) redirect(c *gin.Context, to string, kind flash.Kind, msg string) {
	if msg != "" {
		h.setFlash(c, flash.Notice{Kind: kind, Message: msg})
	}
	c.Redirect(http.StatusSeeOther, to)
	c.Abort()
}

func (h *Handler) setFlash(c *gin.Context, n flash.Notice) {
	h.writeFlash(c.Request.Context(), c.Writer, n)
}

func (h *Handler) writeFlash(ctx context.Context, w http.ResponseWriter, n flash.Notice) {
	tok, err := flash.Sign(n, h.secret, flash.TTL)
	if err != nil {
		h.logger.Error(ctx, "sign flash", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(flash.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the notice left by the previous response.
func (h *Handler) popFlash(c *gin.Context) (flash.Notice, bool) {
	ck, err := c.Request.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return flash.Notice{}, false
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	n, err := flash.Parse(ck.Value, h.secret)
	if err != nil {
		h.logger.Debug(c.Request.Context(), "drop flash", "error", err)
		return flash.Notice{}, false
	}
	return n, true
}
