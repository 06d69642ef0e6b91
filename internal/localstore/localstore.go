// ABOUTME: Persisted client state for the admin client
// ABOUTME: Stores the bearer token and UI preferences as JSON in the XDG config directory

package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Durable keys
const (
	KeyAuthToken        = "authToken"
	KeySidebarCollapsed = "sidebarCollapsed"
	internTabPrefix     = "intern_profile_tab_"
)

// InternTabKey is the key holding the selected profile tab of one intern
func InternTabKey(internID int) string {
	return internTabPrefix + strconv.Itoa(internID)
}

// Store is a small key/value file. Reads are served from memory after the
// first load; every write rewrites the file.
type Store struct {
	dir    string
	mu     sync.Mutex
	values map[string]string
	loaded bool
}

// New creates a Store rooted at dir. An empty dir keeps state in memory only.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the default state directory following XDG conventions
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "interntrack")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "interntrack")
}

// Dir returns the directory the state file lives in
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) file() string {
	return filepath.Join(s.dir, "state.json")
}

// load reads the state file once. A missing or corrupt file starts fresh.
// Caller holds s.mu.
func (s *Store) load() {
	if s.loaded {
		return
	}
	s.loaded = true
	s.values = map[string]string{}
	if s.dir == "" {
		return
	}

	data, err := os.ReadFile(s.file())
	if err != nil {
		return
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return
	}
	for k, v := range values {
		s.values[k] = v
	}
}

// save writes the state file. Caller holds s.mu.
func (s *Store) save() error {
	if s.dir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.file(), data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// Get returns the value stored under key
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and persists the file
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	s.values[key] = value
	return s.save()
}

// Delete removes key and persists the file
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.save()
}

// Token returns the persisted bearer token, or "" when logged out
func (s *Store) Token() string {
	v, _ := s.Get(KeyAuthToken)
	return v
}

// SetToken persists the bearer token
func (s *Store) SetToken(token string) error {
	return s.Set(KeyAuthToken, token)
}

// ClearToken removes the bearer token
func (s *Store) ClearToken() error {
	return s.Delete(KeyAuthToken)
}

// SidebarCollapsed returns the sidebar preference
func (s *Store) SidebarCollapsed() bool {
	v, _ := s.Get(KeySidebarCollapsed)
	collapsed, _ := strconv.ParseBool(v)
	return collapsed
}

// SetSidebarCollapsed persists the sidebar preference
func (s *Store) SetSidebarCollapsed(collapsed bool) error {
	return s.Set(KeySidebarCollapsed, strconv.FormatBool(collapsed))
}

// InternTab returns the remembered profile tab for an intern, or fallback
func (s *Store) InternTab(internID int, fallback string) string {
	if v, ok := s.Get(InternTabKey(internID)); ok && v != "" {
		return v
	}
	return fallback
}

// SetInternTab remembers the selected profile tab for an intern
func (s *Store) SetInternTab(internID int, tab string) error {
	return s.Set(InternTabKey(internID), tab)
}
