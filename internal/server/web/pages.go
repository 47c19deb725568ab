package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gnmweb/internal/blog"
	"github.com/dmitrijs2005/gnmweb/internal/buildinfo"
	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/gallery"
	"github.com/dmitrijs2005/gnmweb/internal/server/flash"
)

type offering struct {
	Title       string
	Description string
	Href        string
}

var offerings = []offering{
	{"Wedding Planning", "Create the wedding of your dreams with our comprehensive planning services.", "/booking"},
	{"Corporate Events", "Professional corporate events that leave lasting impressions on your clients.", "/booking"},
	{"Birthday Parties", "Memorable birthday celebrations for all ages with creative themes and entertainment.", "/booking"},
	{"Concert Events", "Professional concert and music event organization with full technical support.", "/booking"},
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": buildinfo.Version})
}

func (h *Handler) Home(c *gin.Context) {
	latest := h.blog.List("")
	if len(latest) > 3 {
		latest = latest[:3]
	}
	h.html(c, http.StatusOK, "home", h.view(c, "Unforgettable Events", gin.H{
		"Offerings": offerings,
		"Posts":     latest,
	}))
}

func (h *Handler) About(c *gin.Context) {
	h.html(c, http.StatusOK, "about", h.view(c, "About Us", nil))
}

func (h *Handler) Services(c *gin.Context) {
	h.html(c, http.StatusOK, "services", h.view(c, "Our Services", offerings))
}

func (h *Handler) Gallery(c *gin.Context) {
	category := c.Query("category")
	v := h.view(c, "Gallery", nil)

	items, err := h.gallery.List(c.Request.Context(), category)
	if err != nil {
		h.logger.Error(c.Request.Context(), "gallery listing", "error", err)
		v.notice(flash.Error, "The gallery is unavailable right now. Please try again later.")
	}

	selected := gallery.CategoryFor(category)
	v.Data = gin.H{
		"Items":      items,
		"Categories": gallery.Categories,
		"Selected":   selected,
	}
	h.html(c, http.StatusOK, "gallery", v)
}

func (h *Handler) Blog(c *gin.Context) {
	category := c.Query("category")
	data := gin.H{
		"Posts":      h.blog.List(category),
		"Categories": h.blog.Categories(),
		"Selected":   category,
	}
	if category == "" {
		if f, ok := h.blog.Featured(); ok {
			data["Featured"] = f
		}
	}
	h.html(c, http.StatusOK, "blog", h.view(c, "Blog", data))
}

func (h *Handler) BlogPost(c *gin.Context) {
	p, err := h.blog.Find(c.Param("slug"))
	if errors.Is(err, common.ErrNotFound) {
		h.notFound(c)
		return
	}
	related := make([]blog.Post, 0, 3)
	for _, o := range h.blog.List(p.Category) {
		if o.Slug != p.Slug && len(related) < 3 {
			related = append(related, o)
		}
	}
	h.html(c, http.StatusOK, "post", h.view(c, p.Title, gin.H{"Post": p, "Related": related}))
}
