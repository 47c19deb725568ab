package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/common"
)

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error {
	return common.ErrValidation
}

// orNil keeps "no errors" a nil error rather than an empty map.
func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// AsFieldErrors extracts field messages from err, or nil.
func AsFieldErrors(err error) FieldErrors {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// Notices shown to users.
const (
	NoticeGenericFailure = "Something went wrong. Please try again."
	NoticeFixErrors      = "Please correct the highlighted fields."
	NoticeCheckEmail     = "If an account exists for that email, we've sent a password reset link. Please check your inbox."
	NoticeBookingSent    = "Thank you! Your booking request has been submitted. We'll contact you shortly."
	NoticeBookingFailed  = "We couldn't submit your booking. Please try again."
	NoticeContactSent    = "Thank you for your message! We'll get back to you soon."
	NoticeContactFailed  = "We couldn't send your message. Please try again."
	NoticeBookingDeleted = "Booking deleted successfully."
	NoticeDeleteFailed   = "Failed to delete booking. Please try again."
	NoticeBookingUpdated = "Booking updated successfully."
	NoticeUpdateFailed   = "Failed to update booking. Please try again."
	NoticeProfileSaved   = "Profile updated successfully."
	NoticeAvatarUploaded = "Profile picture updated."
	NoticeAvatarRemoved  = "Profile picture removed."
	NoticeLoggedOut      = "You have been logged out."
	NoticeRegistered     = "Account created. Please log in."
	NoticePasswordReset  = "Your password has been reset. Please log in."
	NoticeLoginFailed    = "Invalid email or password."
)

// NoticeFor turns err into text for a notice. Validation errors ask the user
// to fix the form, a 4xx answer shows the backend's message when it sent one,
// everything else gets fallback.
func NoticeFor(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if fe := AsFieldErrors(err); fe != nil {
		if len(fe) == 1 {
			for _, msg := range fe {
				return msg
			}
		}
		return NoticeFixErrors
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Client() && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// LoginFailure maps a failed login to the notice and the status class shown.
// Every backend rejection reads the same, whatever the backend said, so a
// wrong password and an unknown account are indistinguishable. An outage asks
// to retry instead of blaming the credentials.
func LoginFailure(err error) (notice string, unavailable bool) {
	switch {
	case AsFieldErrors(err) != nil:
		return NoticeFor(err, NoticeFixErrors), false
	case errors.Is(err, common.ErrUnavailable):
		return NoticeGenericFailure, true
	}
	return NoticeLoginFailed, false
}
