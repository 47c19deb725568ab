package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/models"
)

// PreviewCap is how many bookings the user list shows per account.
const PreviewCap = 5

// AdminBoard is the admin dashboard's working set: the full booking and
// user lists as last fetched, each with its own load error.
type AdminBoard struct {
	Bookings    []models.Booking
	Users       []models.User
	BookingsErr error
	UsersErr    error
}

type AdminService struct {
	client apiclient.Client
	logger logging.Logger
}

func NewAdminService(c apiclient.Client, l logging.Logger) *AdminService {
	return &AdminService{client: c, logger: l.With("module", "admin")}
}

// Load fetches bookings and users concurrently. A failure of one list is
// recorded on the board and does not affect the other.
func (s *AdminService) Load(ctx context.Context) *AdminBoard {
	board := &AdminBoard{}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		list, err := s.client.AdminBookings(ctx)
		if err != nil {
			s.logger.Error(ctx, "load bookings", "error", err)
			board.BookingsErr = fmt.Errorf("load bookings: %w", err)
			return
		}
		board.Bookings = list
	}()

	go func() {
		defer wg.Done()
		list, err := s.client.AdminUsers(ctx)
		if err != nil {
			s.logger.Error(ctx, "load users", "error", err)
			board.UsersErr = fmt.Errorf("load users: %w", err)
			return
		}
		board.Users = list
	}()

	wg.Wait()
	return board
}

// Booking finds a booking on the board.
func (b *AdminBoard) Booking(id int64) (models.Booking, bool) {
	for _, bk := range b.Bookings {
		if bk.ID == id {
			return bk, true
		}
	}
	return models.Booking{}, false
}

func containsFold(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// FilterBookings keeps bookings whose name, email, event type or account
// email contains term, ignoring case. An empty term keeps everything.
func (b *AdminBoard) FilterBookings(term string) []models.Booking {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return b.Bookings
	}
	out := make([]models.Booking, 0, len(b.Bookings))
	for _, bk := range b.Bookings {
		if containsFold(term, bk.Name, bk.Email, bk.EventType, bk.UserEmail) {
			out = append(out, bk)
		}
	}
	return out
}

// FilterUsers matches username, email, first and last name, phone,
// location and occupation, ignoring case.
func (b *AdminBoard) FilterUsers(term string) []models.User {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return b.Users
	}
	out := make([]models.User, 0, len(b.Users))
	for _, u := range b.Users {
		if containsFold(term, u.Username, u.Email, u.FirstName, u.LastName, u.Phone, u.Location, u.Occupation) {
			out = append(out, u)
		}
	}
	return out
}

type AdminStats struct {
	TotalBookings  int
	TotalUsers     int
	UpcomingEvents int
	PastEvents     int
}

// Stats is derived from the board; past and upcoming use the same day
// boundary as Summarize.
func (b *AdminBoard) Stats(now time.Time) AdminStats {
	sum := Summarize(b.Bookings, now)
	return AdminStats{
		TotalBookings:  len(b.Bookings),
		TotalUsers:     len(b.Users),
		UpcomingEvents: sum.Upcoming,
		PastEvents:     sum.Past,
	}
}

type UserBookings struct {
	Count   int
	Preview []models.Booking
	More    int
}

// UserBookings joins the board's bookings to one account and keeps the
// first limit of them for the preview.
func (b *AdminBoard) UserBookings(userID int64, limit int) UserBookings {
	var owned []models.Booking
	for _, bk := range b.Bookings {
		if bk.OwnedBy(userID) {
			owned = append(owned, bk)
		}
	}
	ub := UserBookings{Count: len(owned), Preview: owned}
	if limit >= 0 && len(owned) > limit {
		ub.Preview = owned[:limit]
		ub.More = len(owned) - limit
	}
	return ub
}

func (b *AdminBoard) replace(updated models.Booking) {
	for i := range b.Bookings {
		if b.Bookings[i].ID == updated.ID {
			b.Bookings[i] = updated
			return
		}
	}
}

// BookingEdit is the admin edit form. Every booking field is editable.
type BookingEdit struct {
	ID              int64  `form:"id"`
	Name            string `form:"name" validate:"required"`
	Email           string `form:"email" validate:"required,email"`
	Phone           string `form:"phone" validate:"required,max=15"`
	EventType       string `form:"eventType" validate:"required,max=50"`
	EventDate       string `form:"eventDate" validate:"required,datetime=2006-01-02"`
	Venue           string `form:"venue" validate:"max=200"`
	GuestCount      int    `form:"guestCount" validate:"gte=1"`
	Budget          string `form:"budget" validate:"max=50"`
	SpecialRequests string `form:"specialRequests"`
	Status          string `form:"status" validate:"required,oneof=pending confirmed in_progress completed cancelled"`
}

var editMessages = messages{
	"name":               "Name is required",
	"email.required":     "Email is required",
	"email":              "Please enter a valid email address",
	"phone.required":     "Phone number is required",
	"phone":              "Phone number is too long",
	"eventType.required": "Event type is required",
	"eventType":          "Event type is too long",
	"eventDate.required": "Event date is required",
	"eventDate":          "Please enter a valid date",
	"venue":              "Venue is too long",
	"guestCount":         "Number of guests must be at least 1",
	"budget":             "Budget is too long",
	"status":             "Please choose a valid status",
}

// EditFor pre-fills the edit form from b.
func EditFor(b models.Booking) BookingEdit {
	status := b.Status
	if status == "" {
		status = models.StatusPending
	}
	return BookingEdit{
		ID:              b.ID,
		Name:            b.Name,
		Email:           b.Email,
		Phone:           b.Phone,
		EventType:       b.EventType,
		EventDate:       b.EventDate.String(),
		Venue:           b.Venue,
		GuestCount:      b.GuestCount,
		Budget:          b.Budget,
		SpecialRequests: b.SpecialRequests,
		Status:          string(status),
	}
}

func (e *BookingEdit) Validate() error {
	trimAll(&e.Name, &e.Email, &e.Phone, &e.EventType, &e.EventDate, &e.Venue, &e.Budget, &e.Status)
	return check(e, editMessages).orNil()
}

// Apply returns base with the edited fields written over it. Fields the form
// does not carry, such as the owner and creation time, are kept.
func (e BookingEdit) Apply(base models.Booking) models.Booking {
	d, _ := models.ParseDate(e.EventDate)
	base.ID = e.ID
	base.Name = e.Name
	base.Email = e.Email
	base.Phone = e.Phone
	base.EventType = e.EventType
	base.EventDate = d
	base.Venue = e.Venue
	base.GuestCount = e.GuestCount
	base.Budget = e.Budget
	base.SpecialRequests = e.SpecialRequests
	base.Status = models.BookingStatus(e.Status)
	return base
}

// Update sends the full edited record. On success the board holds the
// backend's returned booking, not the draft.
func (s *AdminService) Update(ctx context.Context, board *AdminBoard, e *BookingEdit) (*models.Booking, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	base, _ := board.Booking(e.ID)
	saved, err := s.client.AdminUpdateBooking(ctx, e.Apply(base))
	if err != nil {
		s.logger.Error(ctx, "update booking", "id", e.ID, "error", err)
		return nil, fmt.Errorf("update booking %d: %w", e.ID, err)
	}

	board.replace(*saved)
	s.logger.Info(ctx, "booking updated", "id", saved.ID, "status", saved.Status)
	return saved, nil
}

// Delete removes the booking from the board only after the backend deleted it.
func (s *AdminService) Delete(ctx context.Context, board *AdminBoard, id int64) error {
	if err := s.client.AdminDeleteBooking(ctx, id); err != nil {
		s.logger.Error(ctx, "delete booking", "id", id, "error", err)
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	board.Bookings = removeBooking(board.Bookings, id)
	s.logger.Info(ctx, "booking deleted", "id", id)
	return nil
}
