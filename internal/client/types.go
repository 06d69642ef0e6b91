// ABOUTME: Wire types for the InternTrack API
// ABOUTME: Users, interns, projects, audit logs, company profile, and the pagination envelope

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Role is a user's authorization level
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// User is an account record; the session user carries the forced password change flag
type User struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Role               Role   `json:"role"`
	Status             string `json:"status,omitempty"`
	MustChangePassword bool   `json:"must_change_password"`
	CreatedAt          string `json:"created_at,omitempty"`
}

// UnmarshalJSON accepts the backend's numeric form of must_change_password
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		MustChangePassword Flag `json:"must_change_password"`
	}{plain: (*plain)(u), MustChangePassword: Flag(u.MustChangePassword)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.MustChangePassword = bool(aux.MustChangePassword)
	return nil
}

// Credentials are submitted to POST /login
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	User    *User  `json:"user"`
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}

// Registration is submitted to POST /register
type Registration struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// PasswordUpdate is the body of the forced and voluntary password changes
type PasswordUpdate struct {
	CurrentPassword      string `json:"current_password,omitempty"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// PasswordUpdateResult is returned by POST /password/force-update
type PasswordUpdateResult struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// Company is the singleton organization profile
type Company struct {
	Name       string `json:"name"`
	SystemName string `json:"system_name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Website    string `json:"website,omitempty"`
	Address    string `json:"address,omitempty"`
	TaxID      string `json:"tax_id,omitempty"`
	Industry   string `json:"industry,omitempty"`
	LogoURL    string `json:"logo_url,omitempty"`
	AppIcon    string `json:"appIcon,omitempty"`
}

// InternRef is the short form of an intern embedded in other records
type InternRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Project is read-only from this client's perspective
type Project struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Impact      string      `json:"impact"`
	URL         string      `json:"url,omitempty"`
	InternName  string      `json:"intern_name,omitempty"`
	Interns     []InternRef `json:"interns,omitempty"`
	CreatedAt   string      `json:"created_at"`
}

// InternNames returns the associated interns as a display string
func (p Project) InternNames() string {
	if len(p.Interns) == 0 {
		return p.InternName
	}
	names := make([]string, 0, len(p.Interns))
	for _, in := range p.Interns {
		names = append(names, in.Name)
	}
	return strings.Join(names, ", ")
}

// Intern is an intern record
type Intern struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Institution string    `json:"institution,omitempty"`
	Position    string    `json:"position,omitempty"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	Performance *int      `json:"performance"`
	Recommended bool      `json:"recommended"`
	Graduated   bool      `json:"graduated"`
	Notes       string    `json:"notes,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CVURL       string    `json:"cv_url,omitempty"`
	Projects    []Project `json:"projects,omitempty"`
}

// UnmarshalJSON accepts the backend's numeric form of the intern flags
func (i *Intern) UnmarshalJSON(data []byte) error {
	type plain Intern
	aux := struct {
		*plain
		Recommended Flag `json:"recommended"`
		Graduated   Flag `json:"graduated"`
	}{plain: (*plain)(i), Recommended: Flag(i.Recommended), Graduated: Flag(i.Graduated)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	i.Recommended = bool(aux.Recommended)
	i.Graduated = bool(aux.Graduated)
	return nil
}

// Status derives the internship state from the end date
func (i Intern) Status() string {
	if i.To == "" {
		return "In Progress"
	}
	return "Completed"
}

// AuditActor is the user who performed an audited action
type AuditActor struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// AuditLog is an append-only audit entry
type AuditLog struct {
	ID            int             `json:"id"`
	User          *AuditActor     `json:"user"`
	Event         string          `json:"event"`
	AuditableType string          `json:"auditable_type"`
	AuditableID   int             `json:"auditable_id"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// ActorName returns the actor display name or "System"
func (a AuditLog) ActorName() string {
	if a.User == nil || a.User.Name == "" {
		return "System"
	}
	return a.User.Name
}

// DashboardStats is the aggregate block of GET /dashboard
type DashboardStats struct {
	TotalInterns       int      `json:"totalInterns"`
	ActiveInterns      int      `json:"activeInterns"`
	CompletedInterns   int      `json:"completedInterns"`
	RecommendedInterns int      `json:"recommendedInterns"`
	TopInterns         []Intern `json:"topInterns"`
}

// Settings is the combined user and company payload of GET /settings
type Settings struct {
	User    *User    `json:"user"`
	Company *Company `json:"company"`
}

// PageLink is one entry of a paginator's link list
type PageLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// Page is the pagination envelope shared by all list endpoints
type Page[T any] struct {
	Data  []T        `json:"data"`
	Links []PageLink `json:"links"`
	From  int        `json:"from"`
	To    int        `json:"to"`
	Total int        `json:"total"`
}

// envelope is the {"data": ...} wrapper used by single-resource endpoints
type envelope[T any] struct {
	Data T `json:"data"`
}

// Flag is a boolean as the backend stores it: true/false, 0/1, or the
// same quoted. null leaves the value unchanged.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	switch raw {
	case "null":
		return nil
	case "true", "1":
		*f = true
	case "false", "0", "":
		*f = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

// itoa is shorthand for path segments
func itoa(id int) string {
	return strconv.Itoa(id)
}
