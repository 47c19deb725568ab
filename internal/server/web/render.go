package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/gorilla/csrf"

	"github.com/dmitrijs2005/gnmweb/internal/models"
	"github.com/dmitrijs2005/gnmweb/internal/nav"
	"github.com/dmitrijs2005/gnmweb/internal/server/flash"
	"github.com/dmitrijs2005/gnmweb/internal/services"
	"github.com/dmitrijs2005/gnmweb/internal/session"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"date": func(d models.Date) string {
		if d.IsZero() {
			return ""
		}
		return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("Jan 2, 2006")
	},
	"longDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	},
	"status": func(s models.BookingStatus) string { return s.Label() },
	"lower":  strings.ToLower,
	"eq1":    func(a, b string) bool { return strings.EqualFold(a, b) },
}

// pages holds one template set per page, each sharing the layout.
type pages struct {
	sets map[string]*template.Template
}

func loadPages() (*pages, error) {
	base, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	p := &pages{sets: make(map[string]*template.Template, len(names))}
	for _, n := range names {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, n); err != nil {
			return nil, fmt.Errorf("parse %s: %w", n, err)
		}
		p.sets[strings.TrimSuffix(path.Base(n), ".html")] = t
	}
	return p, nil
}

// Instance implements render.HTMLRender.
func (p *pages) Instance(name string, data any) render.Render {
	t, ok := p.sets[name]
	if !ok {
		panic("unknown page " + name)
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// view is the data every page template receives.
type view struct {
	Title     string
	Path      string
	Shell     nav.Shell
	Notice    *flash.Notice
	CSRFField template.HTML
	Year      int

	// Form state for pages with a form.
	Form   any
	Errors services.FieldErrors

	Data any
}

// notice overrides the flash from the previous request.
func (v *view) notice(kind flash.Kind, msg string) {
	if msg != "" {
		v.Notice = &flash.Notice{Kind: kind, Message: msg}
	}
}

func (h *Handler) view(c *gin.Context, title string, data any) *view {
	s := session.FromContext(c.Request.Context())
	v := &view{
		Title:     title,
		Path:      c.Request.URL.Path,
		Shell:     nav.Build(s, c.Request.URL.Path),
		CSRFField: csrf.TemplateField(c.Request),
		Year:      h.now().Year(),
		Data:      data,
	}
	if n, ok := h.popFlash(c); ok {
		v.Notice = &n
	}
	return v
}

func (h *Handler) html(c *gin.Context, status int, page string, v *view) {
	c.HTML(status, page, v)
}

func (h *Handler) notFound(c *gin.Context) {
	h.html(c, http.StatusNotFound, "not_found", h.view(c, "Page not found", nil))
}

func (h *Handler) forbidden(c *gin.Context) {
	h.html(c, http.StatusForbidden, "forbidden", h.view(c, "Access denied", nil))
}

func (h *Handler) serverError(c *gin.Context) {
	h.html(c, http.StatusInternalServerError, "error", h.view(c, "Something went wrong", nil))
}
