// ABOUTME: Branding store holding the organization display name and icon
// ABOUTME: Fetched once per process from the public company endpoint

package branding

import (
	"context"
	"log/slog"
	"sync"

	"github.com/interntrack/admin-cli/internal/client"
)

// DefaultName is shown until the company profile loads, and when it has no system name
const DefaultName = "InternTrack"

// API is the subset of the backend the branding store calls
type API interface {
	Company(ctx context.Context) (*client.Company, error)
}

// Store caches the company profile. It does not depend on the session.
type Store struct {
	api API

	once    sync.Once
	mu      sync.RWMutex
	name    string
	iconURL string
	company *client.Company
	loaded  bool
}

// New creates a store showing the default name
func New(api API) *Store {
	return &Store{api: api, name: DefaultName}
}

// Load fetches the company profile the first time it is called. A failure
// is logged and the defaults stay in place.
func (s *Store) Load(ctx context.Context) {
	s.once.Do(func() {
		company, err := s.api.Company(ctx)
		if err != nil {
			slog.Warn("Failed to load company branding", "error", err)
			return
		}
		if company == nil {
			return
		}
		s.Apply(company)
	})
}

// Apply replaces the cached profile, e.g. after the settings screen saves it
func (s *Store) Apply(company *client.Company) {
	if company == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *company
	s.company = &c
	s.name = DefaultName
	if c.SystemName != "" {
		s.name = c.SystemName
	}
	s.iconURL = c.AppIcon
	if s.iconURL == "" {
		s.iconURL = c.LogoURL
	}
	s.loaded = true
}

// Name returns the application display name
func (s *Store) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// IconURL returns the application icon, empty when none is configured
func (s *Store) IconURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.iconURL
}

// Company returns a copy of the cached profile, or nil before a successful load
func (s *Store) Company() *client.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.company == nil {
		return nil
	}
	c := *s.company
	return &c
}

// Loaded reports whether a profile has been applied
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
