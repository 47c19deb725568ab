// Package nav builds the header chrome from the request's session.
package nav

import (
	"strings"

	"github.com/dmitrijs2005/gnmweb/internal/session"
)

type Link struct {
	Label  string
	Href   string
	Active bool
}

// Shell is everything the header and footer templates need.
type Shell struct {
	Links         []Link
	Authenticated bool
	DisplayName   string
	Email         string
	Initials      string
	AvatarURL     string
	// Menu is the account dropdown, empty for visitors.
	Menu      []Link
	ShowAdmin bool
}

var primary = []Link{
	{Label: "Home", Href: "/"},
	{Label: "About", Href: "/about"},
	{Label: "Services", Href: "/services"},
	{Label: "Gallery", Href: "/gallery"},
	{Label: "Blog", Href: "/blog"},
	{Label: "Contact", Href: "/contact"},
}

// IsActive reports whether href is the current section. "/" matches only
// itself; other links also match their sub-paths.
func IsActive(href, path string) bool {
	if href == "/" {
		return path == "/"
	}
	return path == href || strings.HasPrefix(path, href+"/")
}

// Build returns the shell for path as seen by s.
func Build(s *session.Session, path string) Shell {
	sh := Shell{Links: make([]Link, len(primary))}
	for i, l := range primary {
		l.Active = IsActive(l.Href, path)
		sh.Links[i] = l
	}

	if !s.Authenticated() {
		return sh
	}

	sh.Authenticated = true
	sh.DisplayName = s.Identity.DisplayName()
	sh.Email = s.Identity.Email
	sh.Initials = s.Identity.Initials()
	if s.User != nil {
		sh.AvatarURL = s.User.AvatarURL()
	}
	sh.ShowAdmin = s.Identity.IsStaff

	sh.Menu = []Link{
		{Label: "Profile", Href: "/profile"},
		{Label: "My Bookings", Href: "/history"},
	}
	if sh.ShowAdmin {
		sh.Menu = append(sh.Menu, Link{Label: "Admin Dashboard", Href: "/admin"})
	}
	for i := range sh.Menu {
		sh.Menu[i].Active = IsActive(sh.Menu[i].Href, path)
	}
	return sh
}
