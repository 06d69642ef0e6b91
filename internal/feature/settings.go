// ABOUTME: Settings screen store
// ABOUTME: Company profile with logo upload, own profile, and password changes

package feature

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/interntrack/admin-cli/internal/client"
)

// MaxLogoSize is the largest company logo accepted, in bytes
const MaxLogoSize = 2 * 1024 * 1024

// SettingsState is what the settings screen renders
type SettingsState struct {
	User    *client.User
	Company *client.Company
	Loading bool
	Saving  bool
	Err     string
}

// Settings is the settings screen
type Settings struct {
	deps Deps

	mu    sync.Mutex
	state SettingsState
}

// NewSettings creates the settings screen store
func NewSettings(d Deps) *Settings {
	return &Settings{deps: d.withDefaults(), state: SettingsState{Loading: true}}
}

// State returns a copy of the screen state
func (s *Settings) State() SettingsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	if st.Company != nil {
		c := *st.Company
		st.Company = &c
	}
	return st
}

func (s *Settings) update(fn func(st *SettingsState)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
	s.deps.changed()
}

// Load fetches the signed-in user and the company profile
func (s *Settings) Load(ctx context.Context) error {
	s.update(func(st *SettingsState) { st.Loading = true; st.Err = "" })

	out, err := s.deps.API.Settings(ctx)
	if err != nil {
		if client.IsUnauthorized(err) {
			s.deps.expire()
		}
		s.update(func(st *SettingsState) { st.Loading = false; st.Err = "Failed to load settings" })
		return err
	}
	s.update(func(st *SettingsState) {
		st.Loading = false
		st.User = out.User
		st.Company = out.Company
	})
	return nil
}

// CompanyEdit is the company profile form. Size is the logo's byte size as
// reported by the caller, checked before anything is sent.
type CompanyEdit struct {
	Company client.Company
	Logo    *client.Upload
	Size    int64
}

func (e CompanyEdit) fields() url.Values {
	c := e.Company
	v := url.Values{}
	for k, val := range map[string]string{
		"name":        c.Name,
		"system_name": c.SystemName,
		"email":       c.Email,
		"phone":       c.Phone,
		"website":     c.Website,
		"tax_id":      c.TaxID,
		"industry":    c.Industry,
		"address":     c.Address,
	} {
		v.Set(k, val)
	}
	return v
}

// UpdateCompany saves the company profile and rebrands the UI. When the
// backend does not echo the company, the submitted values are kept.
func (s *Settings) UpdateCompany(ctx context.Context, e CompanyEdit) (*client.Company, error) {
	if e.Logo != nil && e.Size > MaxLogoSize {
		s.deps.Toaster.Error("Logo must be less than 2MB")
		return nil, invalid(client.FieldErrors{"logo": "Logo must be less than 2MB"})
	}

	s.update(func(st *SettingsState) { st.Saving = true })
	defer s.update(func(st *SettingsState) { st.Saving = false })

	var logo *client.Upload
	if files := attachments(map[string]*client.Upload{"logo": e.Logo}); len(files) == 1 {
		logo = &files[0]
	}
	company, err := s.deps.API.UpdateCompany(ctx, e.fields(), logo)
	if err != nil {
		if _, ok := client.AsValidation(err); ok {
			s.deps.Toaster.Error("Please fix the errors below.")
			return nil, err
		}
		return nil, s.deps.fail(err, "Failed to update company profile.")
	}
	if company == nil {
		submitted := e.Company
		company = &submitted
	}

	s.update(func(st *SettingsState) {
		c := *company
		st.Company = &c
	})
	if s.deps.Branding != nil {
		s.deps.Branding.Apply(company)
	}
	s.deps.Toaster.Success("Company profile updated!")
	return company, nil
}

// UpdateProfile changes the signed-in user's name and email
func (s *Settings) UpdateProfile(ctx context.Context, p client.ProfileUpdate) error {
	fields := client.FieldErrors{}
	if strings.TrimSpace(p.Name) == "" {
		fields["name"] = "Name is required"
	}
	checkEmail(fields, p.Email)
	if err := invalid(fields); err != nil {
		return err
	}

	s.update(func(st *SettingsState) { st.Saving = true })
	defer s.update(func(st *SettingsState) { st.Saving = false })

	user, err := s.deps.API.UpdateProfile(ctx, p)
	if err != nil {
		return s.deps.fail(err, "Failed to update profile. Please try again.")
	}

	s.update(func(st *SettingsState) {
		if user != nil {
			u := *user
			st.User = &u
			return
		}
		if st.User != nil {
			st.User.Name = p.Name
			st.User.Email = p.Email
		}
	})
	if s.deps.Session != nil {
		s.deps.Session.UpdateUser(s.State().User)
	}
	s.deps.Toaster.Success("Saved.")
	return nil
}

// UpdatePassword changes the signed-in user's password
func (s *Settings) UpdatePassword(ctx context.Context, u client.PasswordUpdate) error {
	fields := client.FieldErrors{}
	if u.CurrentPassword == "" {
		fields["current_password"] = "Current password is required"
	}
	checkNewPassword(fields, u.Password, u.PasswordConfirmation)
	if err := invalid(fields); err != nil {
		return err
	}

	s.update(func(st *SettingsState) { st.Saving = true })
	defer s.update(func(st *SettingsState) { st.Saving = false })

	if err := s.deps.API.UpdatePassword(ctx, u); err != nil {
		return s.deps.fail(err, "Something went wrong. Please try again.")
	}
	s.deps.Toaster.Success("Saved.")
	return nil
}
