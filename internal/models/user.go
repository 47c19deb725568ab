package models

import (
	"strings"
	"time"
)

// Identity is what the session knows about the signed-in account.
type Identity struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// DisplayName prefers the full name, then the username, then the e-mail.
func (i Identity) DisplayName() string {
	if n := strings.TrimSpace(i.FirstName + " " + i.LastName); n != "" {
		return n
	}
	if i.Username != "" {
		return i.Username
	}
	return i.Email
}

// Initials are shown in the avatar placeholder.
func (i Identity) Initials() string {
	var b strings.Builder
	for _, part := range []string{i.FirstName, i.LastName} {
		if r := []rune(strings.TrimSpace(part)); len(r) > 0 {
			b.WriteString(strings.ToUpper(string(r[0])))
		}
	}
	if b.Len() == 0 {
		src := i.Username
		if src == "" {
			src = i.Email
		}
		if r := []rune(src); len(r) > 0 {
			b.WriteString(strings.ToUpper(string(r[0])))
		}
	}
	return b.String()
}

// User is an account as returned by /me/ and the admin user list.
type User struct {
	Identity

	DateJoined      time.Time  `json:"date_joined,omitzero"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
	IsActive        bool       `json:"is_active"`
	Phone           string     `json:"phone"`
	Location        string     `json:"location"`
	Bio             string     `json:"bio"`
	Occupation      string     `json:"occupation"`
	Website         string     `json:"website"`
	ProfileImage    string     `json:"profile_image"`
	ProfileImageURL string     `json:"profile_image_url"`
}

// AvatarURL returns the absolute image URL when the backend built one.
func (u User) AvatarURL() string {
	if u.ProfileImageURL != "" {
		return u.ProfileImageURL
	}
	return u.ProfileImage
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// ProfileUpdate is a partial profile update; nil fields are not sent.
type ProfileUpdate struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Username   *string `json:"username,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Location   *string `json:"location,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	Occupation *string `json:"occupation,omitempty"`
	Website    *string `json:"website,omitempty"`
}

// ContactMessage is the contact form payload.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
