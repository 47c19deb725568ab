package gallery

import "context"

// Static serves a built-in portfolio when no bucket is configured.
type Static struct {
	items []Item
}

func NewStatic() *Static {
	return &Static{items: []Item{
		{Key: "weddings/1", Title: "Elegant Garden Wedding", Category: "Weddings", URL: "/static/img/wedding.svg",
			Description: "A beautiful outdoor wedding ceremony with 150 guests in a romantic garden setting."},
		{Key: "corporate/2", Title: "Corporate Product Launch", Category: "Corporate", URL: "/static/img/corporate.svg",
			Description: "Professional product launch event for 300 attendees with modern staging and lighting."},
		{Key: "birthdays/3", Title: "Sweet 16 Birthday Celebration", Category: "Birthdays", URL: "/static/img/birthday.svg",
			Description: "A vibrant and fun Sweet 16 party with custom decorations and entertainment."},
		{Key: "concerts/4", Title: "Live Music Concert", Category: "Concerts", URL: "/static/img/concert.svg",
			Description: "Intimate acoustic concert venue setup with professional sound and lighting."},
		{Key: "weddings/5", Title: "Luxury Wedding Reception", Category: "Weddings", URL: "/static/img/wedding.svg",
			Description: "Sophisticated ballroom reception with crystal chandeliers and gold accents."},
		{Key: "corporate/6", Title: "Annual Conference", Category: "Corporate", URL: "/static/img/corporate.svg",
			Description: "Three-day corporate conference with breakout sessions and networking events."},
		{Key: "other/7", Title: "50th Anniversary Party", Category: "Other", URL: "/static/img/birthday.svg",
			Description: "Golden anniversary celebration with family and friends in an elegant venue."},
		{Key: "concerts/8", Title: "Rock Band Concert", Category: "Concerts", URL: "/static/img/concert.svg",
			Description: "High-energy rock concert with full stage production and lighting effects."},
	}}
}

func (s *Static) List(_ context.Context, category string) ([]Item, error) {
	return filter(s.items, category), nil
}
