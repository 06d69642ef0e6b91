// ABOUTME: Tests for the intern profile view
// ABOUTME: Validates each tab and the loading and error states

package profile

import (
	"strings"
	"testing"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
)

func intern() *client.Intern {
	score := 84
	return &client.Intern{
		ID:          7,
		Name:        "Grace Hopper",
		Email:       "grace@example.com",
		Institution: "Yale",
		From:        "2026-01-10",
		Performance: &score,
		Recommended: true,
		Notes:       "Ships compilers.",
		Skills:      []string{"COBOL", "Go"},
		Projects: []client.Project{
			{ID: 1, Title: "Compiler", Description: "A-0 system", Impact: "High"},
		},
	}
}

func TestProfileTabs(t *testing.T) {
	tests := []struct {
		tab  string
		want []string
	}{
		{feature.TabProfile, []string{"grace@example.com", "Yale", "COBOL, Go", "In Progress"}},
		{feature.TabProjects, []string{"Compiler", "A-0 system", "Impact: High"}},
		{feature.TabPerformance, []string{"84", "Yes", "Ships compilers."}},
	}
	for _, tt := range tests {
		t.Run(tt.tab, func(t *testing.T) {
			view := New(feature.ProfileState{Intern: intern(), Tab: tt.tab}, 100).View()
			if !strings.Contains(view, "Grace Hopper") {
				t.Error("expected intern name in header")
			}
			for _, want := range tt.want {
				if !strings.Contains(view, want) {
					t.Errorf("tab %s: expected %q\nView:\n%s", tt.tab, want, view)
				}
			}
		})
	}
}

func TestProfileNoProjects(t *testing.T) {
	in := intern()
	in.Projects = nil
	view := New(feature.ProfileState{Intern: in, Tab: feature.TabProjects}, 80).View()
	if !strings.Contains(view, "No projects yet") {
		t.Errorf("expected empty message\nView:\n%s", view)
	}
}

func TestProfileLoadingAndError(t *testing.T) {
	if !strings.Contains(New(feature.ProfileState{Loading: true}, 80).View(), "Loading") {
		t.Error("expected loading message")
	}
	view := New(feature.ProfileState{Err: "Failed to load intern profile"}, 80).View()
	if !strings.Contains(view, "Failed to load intern profile") {
		t.Errorf("expected error\nView:\n%s", view)
	}
}

func TestProfileSavingIndicator(t *testing.T) {
	view := New(feature.ProfileState{Intern: intern(), Tab: feature.TabProfile, Saving: true}, 80).View()
	if !strings.Contains(view, "Saving...") {
		t.Error("expected saving indicator")
	}
}
