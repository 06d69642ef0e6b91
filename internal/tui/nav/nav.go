// ABOUTME: Collapsible sidebar listing the screens the signed-in user may open
// ABOUTME: Maps number keys to paths and renders icons only when collapsed

package nav

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/interntrack/admin-cli/internal/tui/icons"
	"github.com/interntrack/admin-cli/internal/tui/styles"
)

// Sidebar is the navigation column
type Sidebar struct {
	items     []gate.NavItem
	active    string
	collapsed bool
}

// New creates a sidebar for user
func New(user *client.User, collapsed bool) *Sidebar {
	return &Sidebar{items: gate.NavItems(user), collapsed: collapsed}
}

// SetUser refreshes the entries after a role change or sign-in
func (s *Sidebar) SetUser(user *client.User) {
	s.items = gate.NavItems(user)
}

// SetActive highlights the entry owning path
func (s *Sidebar) SetActive(path string) {
	s.active = path
}

// Toggle flips the collapsed state and returns the new value
func (s *Sidebar) Toggle() bool {
	s.collapsed = !s.collapsed
	return s.collapsed
}

// Collapsed reports whether only icons are shown
func (s *Sidebar) Collapsed() bool { return s.collapsed }

// Items returns the visible entries
func (s *Sidebar) Items() []gate.NavItem { return s.items }

// PathForKey returns the path bound to key among the visible entries
func (s *Sidebar) PathForKey(key string) (string, bool) {
	for _, item := range s.items {
		if item.Key == key {
			return item.Path, true
		}
	}
	return "", false
}

// owns reports whether the entry covers path; profiles belong to Interns
func owns(item gate.NavItem, path string) bool {
	return path == item.Path || strings.HasPrefix(path, item.Path+"/")
}

// Width is the rendered column width including its border
func (s *Sidebar) Width() int {
	return lipgloss.Width(s.View(1))
}

// View renders the column at least height lines tall
func (s *Sidebar) View(height int) string {
	lines := make([]string, 0, len(s.items))
	for _, item := range s.items {
		icon := icons.ForPath(item.Path).String()
		label := icon
		if !s.collapsed {
			label = styles.KeyStyle.Render(item.Key) + " " + icon + " " + item.Label
		}
		if owns(item, s.active) {
			lines = append(lines, styles.NavActive.Render(label))
		} else {
			lines = append(lines, styles.NavItem.Render(label))
		}
	}
	return styles.Sidebar.Height(max(height, len(lines))).Render(strings.Join(lines, "\n"))
}
