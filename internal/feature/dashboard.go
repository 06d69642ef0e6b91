// ABOUTME: Dashboard screen store
// ABOUTME: Aggregate intern counts and the top performers

package feature

import (
	"context"
	"sync"

	"github.com/interntrack/admin-cli/internal/client"
)

// DashboardState is what the dashboard renders
type DashboardState struct {
	Stats   *client.DashboardStats
	Loading bool
	Err     string
}

// Dashboard is the landing screen
type Dashboard struct {
	deps Deps

	mu    sync.Mutex
	state DashboardState
}

// NewDashboard creates the dashboard store
func NewDashboard(d Deps) *Dashboard {
	return &Dashboard{deps: d.withDefaults(), state: DashboardState{Loading: true}}
}

// State returns the dashboard state
func (s *Dashboard) State() DashboardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load fetches the aggregates. The backend message is shown on failure.
func (s *Dashboard) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Err = ""
	s.mu.Unlock()
	s.deps.changed()

	stats, err := s.deps.API.Dashboard(ctx)

	s.mu.Lock()
	s.state.Loading = false
	if err != nil {
		s.state.Err = client.Message(err, "Failed to load dashboard data")
	} else {
		s.state.Stats = stats
	}
	s.mu.Unlock()
	s.deps.changed()

	if client.IsUnauthorized(err) {
		s.deps.expire()
	}
	return err
}
