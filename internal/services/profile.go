package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/models"
)

// ProfileField is one independently editable profile field. Email is not
// one of them.
type ProfileField string

const (
	FieldFirstName  ProfileField = "first_name"
	FieldLastName   ProfileField = "last_name"
	FieldUsername   ProfileField = "username"
	FieldPhone      ProfileField = "phone"
	FieldLocation   ProfileField = "location"
	FieldBio        ProfileField = "bio"
	FieldOccupation ProfileField = "occupation"
	FieldWebsite    ProfileField = "website"
)

var ProfileFields = []ProfileField{
	FieldFirstName, FieldLastName, FieldUsername, FieldPhone,
	FieldLocation, FieldBio, FieldOccupation, FieldWebsite,
}

// ParseProfileField accepts only the editable field names.
func ParseProfileField(s string) (ProfileField, bool) {
	for _, f := range ProfileFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

func (f ProfileField) Label() string {
	switch f {
	case FieldFirstName:
		return "First name"
	case FieldLastName:
		return "Last name"
	case FieldUsername:
		return "Username"
	case FieldPhone:
		return "Phone"
	case FieldLocation:
		return "Location"
	case FieldBio:
		return "Bio"
	case FieldOccupation:
		return "Occupation"
	case FieldWebsite:
		return "Website"
	}
	return string(f)
}

// Multiline fields get a textarea.
func (f ProfileField) Multiline() bool {
	return f == FieldBio
}

// Value reads the field from u.
func (f ProfileField) Value(u *models.User) string {
	switch f {
	case FieldFirstName:
		return u.FirstName
	case FieldLastName:
		return u.LastName
	case FieldUsername:
		return u.Username
	case FieldPhone:
		return u.Phone
	case FieldLocation:
		return u.Location
	case FieldBio:
		return u.Bio
	case FieldOccupation:
		return u.Occupation
	case FieldWebsite:
		return u.Website
	}
	return ""
}

func (f ProfileField) set(upd *models.ProfileUpdate, v string) {
	switch f {
	case FieldFirstName:
		upd.FirstName = &v
	case FieldLastName:
		upd.LastName = &v
	case FieldUsername:
		upd.Username = &v
	case FieldPhone:
		upd.Phone = &v
	case FieldLocation:
		upd.Location = &v
	case FieldBio:
		upd.Bio = &v
	case FieldOccupation:
		upd.Occupation = &v
	case FieldWebsite:
		upd.Website = &v
	}
}

func phoneDigits(p string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(p)
}

// validate returns a message, or "" when v is acceptable for f.
func (f ProfileField) validate(v string) string {
	switch f {
	case FieldUsername:
		if v == "" {
			return "Username cannot be empty"
		}
		if len(v) > 150 {
			return "Username is too long"
		}
	case FieldFirstName, FieldLastName:
		if len(v) > 150 {
			return f.Label() + " is too long"
		}
	case FieldPhone:
		if len(phoneDigits(v)) > 20 {
			return "Phone number is too long"
		}
	case FieldWebsite:
		if v == "" {
			return ""
		}
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "Website must start with http:// or https://"
		}
	case FieldLocation, FieldOccupation:
		if len(v) > 100 {
			return f.Label() + " is too long"
		}
	case FieldBio:
		if len(v) > 500 {
			return "Bio must be 500 characters or fewer"
		}
	}
	return ""
}

// ProfileForm is the combined profile form.
type ProfileForm struct {
	FirstName  string `form:"first_name"`
	LastName   string `form:"last_name"`
	Username   string `form:"username"`
	Phone      string `form:"phone"`
	Location   string `form:"location"`
	Bio        string `form:"bio"`
	Occupation string `form:"occupation"`
	Website    string `form:"website"`
}

// ProfileFormFor pre-fills the form from u.
func ProfileFormFor(u *models.User) ProfileForm {
	return ProfileForm{
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		Phone:      u.Phone,
		Location:   u.Location,
		Bio:        u.Bio,
		Occupation: u.Occupation,
		Website:    u.Website,
	}
}

func (p *ProfileForm) values() map[ProfileField]*string {
	return map[ProfileField]*string{
		FieldFirstName:  &p.FirstName,
		FieldLastName:   &p.LastName,
		FieldUsername:   &p.Username,
		FieldPhone:      &p.Phone,
		FieldLocation:   &p.Location,
		FieldBio:        &p.Bio,
		FieldOccupation: &p.Occupation,
		FieldWebsite:    &p.Website,
	}
}

func (p *ProfileForm) Validate() error {
	fe := FieldErrors{}
	for f, v := range p.values() {
		*v = strings.TrimSpace(*v)
		if msg := f.validate(*v); msg != "" {
			fe[string(f)] = msg
		}
	}
	return fe.orNil()
}

// Update sends every field of the form.
func (p *ProfileForm) Update() models.ProfileUpdate {
	var upd models.ProfileUpdate
	for f, v := range p.values() {
		f.set(&upd, *v)
	}
	return upd
}

type ProfileService struct {
	client apiclient.Client
	logger logging.Logger
	now    func() int64
}

func NewProfileService(c apiclient.Client, l logging.Logger) *ProfileService {
	return &ProfileService{client: c, logger: l.With("module", "profile"), now: unixNow}
}

// Get fetches the caller's profile.
func (s *ProfileService) Get(ctx context.Context) (*models.User, error) {
	u, err := s.client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("profile: empty answer")
	}
	return u, nil
}

// SaveField updates one field and leaves the others alone.
func (s *ProfileService) SaveField(ctx context.Context, f ProfileField, value string) (*models.User, error) {
	value = strings.TrimSpace(value)
	if msg := f.validate(value); msg != "" {
		return nil, FieldErrors{string(f): msg}
	}
	var upd models.ProfileUpdate
	f.set(&upd, value)
	return s.save(ctx, upd)
}

// SaveAll updates every field of the combined form at once.
func (s *ProfileService) SaveAll(ctx context.Context, p *ProfileForm) (*models.User, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.save(ctx, p.Update())
}

func (s *ProfileService) save(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	_ = s.client.EnsureCSRF(ctx)
	u, err := s.client.UpdateProfile(ctx, upd)
	if err != nil {
		s.logger.Error(ctx, "update profile", "error", err)
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
