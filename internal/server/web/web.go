// Package web is the browser-facing tier: gin routes, middlewares, HTML
// pages and form handling on top of the services package.
package web

import (
	"crypto/sha256"
	"strings"
	"time"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/blog"
	"github.com/dmitrijs2005/gnmweb/internal/gallery"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/services"
	"github.com/dmitrijs2005/gnmweb/internal/session"
)

// Deps is everything the site needs from the outside.
type Deps struct {
	Client         apiclient.Client
	Gallery        gallery.Source
	Blog           *blog.Store
	Logger         logging.Logger
	PublicURL      string
	SecretKey      string
	SecureCookies  bool
	RequestTimeout time.Duration
}

// Handler holds the page handlers and their services.
type Handler struct {
	client   apiclient.Client
	resolver *session.Resolver
	bookings *services.BookingService
	admin    *services.AdminService
	auth     *services.AuthService
	profile  *services.ProfileService
	contact  *services.ContactService
	gallery  gallery.Source
	blog     *blog.Store
	logger   logging.Logger
	pages    *pages

	publicURL string
	secret    []byte
	secure    bool
	timeout   time.Duration
	now       func() time.Time
}

func New(d Deps) (*Handler, error) {
	p, err := loadPages()
	if err != nil {
		return nil, err
	}
	if d.Gallery == nil {
		d.Gallery = gallery.NewStatic()
	}
	if d.Blog == nil {
		if d.Blog, err = blog.Load(); err != nil {
			return nil, err
		}
	}

	// gorilla/csrf wants exactly 32 bytes.
	key := sha256.Sum256([]byte(d.SecretKey))

	l := d.Logger
	return &Handler{
		client:    d.Client,
		resolver:  session.NewResolver(d.Client, l),
		bookings:  services.NewBookingService(d.Client, l),
		admin:     services.NewAdminService(d.Client, l),
		auth:      services.NewAuthService(d.Client, l),
		profile:   services.NewProfileService(d.Client, l),
		contact:   services.NewContactService(d.Client, l),
		gallery:   d.Gallery,
		blog:      d.Blog,
		logger:    l.With("module", "web"),
		pages:     p,
		publicURL: strings.TrimRight(d.PublicURL, "/"),
		secret:    key[:],
		secure:    d.SecureCookies,
		timeout:   d.RequestTimeout,
		now:       time.Now,
	}, nil
}
