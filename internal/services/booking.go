package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/models"
)

// BookingForm is the public booking request form.
type BookingForm struct {
	Name            string `form:"name" validate:"required"`
	Email           string `form:"email" validate:"required,email"`
	Phone           string `form:"phone" validate:"required,max=15"`
	EventType       string `form:"eventType" validate:"required"`
	CustomEventType string `form:"customEventType"`
	EventDate       string `form:"eventDate" validate:"required,datetime=2006-01-02"`
	Venue           string `form:"venue" validate:"max=200"`
	GuestCount      int    `form:"guestCount" validate:"gte=1"`
	Budget          string `form:"budget" validate:"max=50"`
	SpecialRequests string `form:"specialRequests"`
}

var bookingMessages = messages{
	"name":               "Name is required",
	"email.required":     "Email is required",
	"email":              "Please enter a valid email address",
	"phone.required":     "Phone number is required",
	"phone":              "Phone number is too long",
	"eventType":          "Please select an event type",
	"eventDate.required": "Event date is required",
	"eventDate":          "Please enter a valid date",
	"venue":              "Venue is too long",
	"guestCount":         "Number of guests must be at least 1",
	"budget":             "Budget is too long",
}

// Validate checks required fields. With event type Other the custom text
// is required too.
func (f *BookingForm) Validate() error {
	trimAll(&f.Name, &f.Email, &f.Phone, &f.EventType, &f.CustomEventType, &f.EventDate, &f.Venue, &f.Budget)

	fe := check(f, bookingMessages)
	if f.EventType == models.EventTypeOther && f.CustomEventType == "" {
		fe["customEventType"] = "Please specify your event type"
	}
	return fe.orNil()
}

// ResolvedEventType is what gets stored: the custom text replaces Other.
func (f BookingForm) ResolvedEventType() string {
	if f.EventType == models.EventTypeOther {
		return strings.TrimSpace(f.CustomEventType)
	}
	return f.EventType
}

// Booking builds the payload. Call Validate first.
func (f BookingForm) Booking() models.Booking {
	d, _ := models.ParseDate(f.EventDate)
	return models.Booking{
		Name:            f.Name,
		Email:           f.Email,
		Phone:           f.Phone,
		EventType:       f.ResolvedEventType(),
		EventDate:       d,
		Venue:           f.Venue,
		GuestCount:      f.GuestCount,
		Budget:          f.Budget,
		SpecialRequests: f.SpecialRequests,
	}
}

type BookingService struct {
	client apiclient.Client
	logger logging.Logger
}

func NewBookingService(c apiclient.Client, l logging.Logger) *BookingService {
	return &BookingService{client: c, logger: l.With("module", "booking")}
}

// Create validates the form and submits it. On any error the caller keeps
// the form values.
func (s *BookingService) Create(ctx context.Context, f *BookingForm) (*models.Booking, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	b, err := s.client.CreateBooking(ctx, f.Booking())
	if err != nil {
		s.logger.Error(ctx, "create booking", "error", err)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info(ctx, "booking created", "id", b.ID, "event_type", b.EventType)
	return b, nil
}

// History returns the caller's own bookings.
func (s *BookingService) History(ctx context.Context) ([]models.Booking, error) {
	list, err := s.client.BookingHistory(ctx)
	if err != nil {
		s.logger.Error(ctx, "booking history", "error", err)
		return nil, fmt.Errorf("booking history: %w", err)
	}
	return list, nil
}

// DeleteOwn deletes one of the caller's bookings and returns list without
// it. On failure list comes back unchanged.
func (s *BookingService) DeleteOwn(ctx context.Context, list []models.Booking, id int64) ([]models.Booking, error) {
	if err := s.client.DeleteOwnBooking(ctx, id); err != nil {
		s.logger.Error(ctx, "delete own booking", "id", id, "error", err)
		return list, fmt.Errorf("delete booking %d: %w", id, err)
	}
	return removeBooking(list, id), nil
}

func removeBooking(list []models.Booking, id int64) []models.Booking {
	out := make([]models.Booking, 0, len(list))
	for _, b := range list {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

type Summary struct {
	Total    int
	Past     int
	Upcoming int
}

// Summarize counts bookings relative to the calendar day of now. An event
// today is upcoming. Bookings without a date count only towards Total.
func Summarize(list []models.Booking, now time.Time) Summary {
	today := models.DateOf(now)
	s := Summary{Total: len(list)}
	for _, b := range list {
		switch {
		case b.EventDate.IsZero():
		case b.EventDate.Before(today):
			s.Past++
		default:
			s.Upcoming++
		}
	}
	return s
}

// IsPast reports whether the booking's event day is before today.
func IsPast(b models.Booking, now time.Time) bool {
	return !b.EventDate.IsZero() && b.EventDate.Before(models.DateOf(now))
}
