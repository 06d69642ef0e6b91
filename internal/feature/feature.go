// ABOUTME: Shared wiring for the screen stores
// ABOUTME: Collaborators every screen needs and the error routing they share

package feature

import (
	"errors"
	"log/slog"
	"time"

	"github.com/interntrack/admin-cli/internal/branding"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/listing"
	"github.com/interntrack/admin-cli/internal/localstore"
	"github.com/interntrack/admin-cli/internal/session"
)

// Deps are the collaborators of the screen stores
type Deps struct {
	API       *client.Client
	Session   *session.Store
	Toaster   *listing.Toaster
	Debouncer *listing.Debouncer
	Prefs     *localstore.Store
	Branding  *branding.Store
	ReportDir string
	// Countdown is the account deletion delay in ticks of CountdownTick
	Countdown     int
	CountdownTick time.Duration
	// OnChange is called after any store state change so a UI can redraw
	OnChange func()
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Toaster == nil {
		d.Toaster = listing.NewToaster(0, nil)
	}
	if d.Debouncer == nil {
		d.Debouncer = listing.NewDebouncer(0)
	}
	if d.Prefs == nil {
		d.Prefs = localstore.New("")
	}
	if d.Countdown == 0 {
		d.Countdown = 15
	}
	if d.CountdownTick == 0 {
		d.CountdownTick = time.Second
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func (d Deps) changed() {
	if d.OnChange != nil {
		d.OnChange()
	}
}

func (d Deps) expire() {
	if d.Session != nil {
		d.Session.Expire()
	}
}

// listConfig fills the wiring every list screen shares
func listConfig[T any](d Deps, cfg listing.Config[T]) listing.Config[T] {
	cfg.Toaster = d.Toaster
	cfg.ReportDir = d.ReportDir
	cfg.OnUnauthorized = d.expire
	cfg.OnChange = d.OnChange
	cfg.Now = d.Now
	return cfg
}

// fail routes a mutation error. Validation errors are returned for inline
// display without a toast; a 401 ends the session; anything else becomes
// a toast built from the backend message or fallback.
func (d Deps) fail(err error, fallback string) error {
	if _, ok := client.AsValidation(err); ok {
		return err
	}
	if client.IsUnauthorized(err) {
		d.expire()
		return err
	}
	slog.Warn("Request failed", "error", err)
	d.Toaster.Error(client.Message(err, fallback))
	return err
}

func invalid(fields client.FieldErrors) error {
	if len(fields) == 0 {
		return nil
	}
	return &client.ValidationError{Message: "Please fix the errors below.", Fields: fields}
}

// IsInvalid reports whether err carries per-field messages
func IsInvalid(err error) bool {
	var vErr *client.ValidationError
	return errors.As(err, &vErr)
}
