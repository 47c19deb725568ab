package models

import (
	"encoding/json"
	"time"
)

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []BookingStatus{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled}

func (s BookingStatus) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Label is the human-readable status.
func (s BookingStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// EventTypeOther is a form sentinel. It is replaced by the custom text and
// never sent to the backend.
const EventTypeOther = "Other"

// EventTypes offered by the booking and admin forms.
var EventTypes = []string{
	"Wedding",
	"Corporate Event",
	"Birthday Party",
	"Concert",
	"Anniversary",
	"Baby Shower",
	"Graduation",
	"Holiday Party",
	EventTypeOther,
}

// IsKnownEventType reports whether t is one of EventTypes other than Other.
func IsKnownEventType(t string) bool {
	for _, v := range EventTypes {
		if v == t && v != EventTypeOther {
			return true
		}
	}
	return false
}

type Booking struct {
	ID              int64         `json:"id,omitempty"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	EventType       string        `json:"eventType"`
	EventDate       Date          `json:"eventDate"`
	Venue           string        `json:"venue"`
	GuestCount      int           `json:"guestCount"`
	Budget          string        `json:"budget"`
	SpecialRequests string        `json:"specialRequests"`
	Status          BookingStatus `json:"status,omitempty"`
	CreatedAt       time.Time     `json:"created_at,omitzero"`
	User            *int64        `json:"user,omitempty"`
	UserEmail       string        `json:"user_email,omitempty"`
	UserName        string        `json:"user_name,omitempty"`
}

// UnmarshalJSON fills in the pending status when the backend omits it.
func (b *Booking) UnmarshalJSON(data []byte) error {
	type plain Booking
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	*b = Booking(p)
	return nil
}

// OwnedBy reports whether the booking is linked to the user id.
func (b Booking) OwnedBy(userID int64) bool {
	return b.User != nil && *b.User == userID
}
