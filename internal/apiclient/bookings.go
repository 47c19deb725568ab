package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gnmweb/internal/models"
)

func (c *HTTPClient) CreateBooking(ctx context.Context, b models.Booking) (*models.Booking, error) {
	var out models.Booking
	if err := c.doJSON(ctx, http.MethodPost, "/api/booking/", b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BookingHistory returns the caller's own bookings; the backend derives the
// owner from the session cookie.
func (c *HTTPClient) BookingHistory(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	if err := c.doJSON(ctx, http.MethodGet, "/api/bookings/history/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteOwnBooking(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/bookings/user/%d/delete/", id), nil, nil)
}

func (c *HTTPClient) SendContact(ctx context.Context, m models.ContactMessage) error {
	return c.doJSON(ctx, http.MethodPost, "/api/contact/", m, nil)
}

func (c *HTTPClient) AdminBookings(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/bookings/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AdminUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/users/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminUpdateBooking PUTs the full record and returns the backend's version.
func (c *HTTPClient) AdminUpdateBooking(ctx context.Context, b models.Booking) (*models.Booking, error) {
	var out models.Booking
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/admin/bookings/%d/update/", b.ID), b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) AdminDeleteBooking(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/bookings/%d/delete/", id), nil, nil)
}
