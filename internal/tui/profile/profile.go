// ABOUTME: Intern profile view with profile, projects, and performance tabs
// ABOUTME: Renders the loaded intern; editing happens in forms owned by the screen

package profile

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/tui/styles"
	"github.com/interntrack/admin-cli/internal/tui/widgets"
)

var tabLabels = map[string]string{
	feature.TabProfile:     "Profile",
	feature.TabProjects:    "Projects",
	feature.TabPerformance: "Performance",
}

// Profile displays one intern
type Profile struct {
	state feature.ProfileState
	width int
}

// New creates a profile view
func New(st feature.ProfileState, width int) *Profile {
	return &Profile{state: st, width: width}
}

// View renders the header, tab bar, and active tab
func (p *Profile) View() string {
	st := p.state
	if st.Intern == nil {
		if st.Err != "" {
			return styles.StatusCritical.Render(st.Err)
		}
		return styles.Subtitle.Render("Loading intern...")
	}
	in := st.Intern

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(in.Name))
	sb.WriteString("\n")
	sb.WriteString(widgets.InternBadge(*in))
	sb.WriteString("\n\n")
	sb.WriteString(p.renderTabs())
	sb.WriteString("\n\n")

	switch st.Tab {
	case feature.TabProjects:
		sb.WriteString(p.renderProjects(in.Projects))
	case feature.TabPerformance:
		sb.WriteString(p.renderPerformance(in))
	default:
		sb.WriteString(p.renderDetails(in))
	}

	if st.Saving {
		sb.WriteString("\n\n")
		sb.WriteString(styles.Subtitle.Render("Saving..."))
	}
	if st.ReportLoading {
		sb.WriteString("\n\n")
		sb.WriteString(styles.Subtitle.Render("Generating report..."))
	}

	return lipgloss.NewStyle().Width(p.width).Render(sb.String())
}

func (p *Profile) renderTabs() string {
	active := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Underline(true)
	idle := lipgloss.NewStyle().Foreground(styles.Muted)

	parts := make([]string, 0, len(feature.Tabs))
	for _, tab := range feature.Tabs {
		label := tabLabels[tab]
		if tab == p.state.Tab {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, idle.Render(label))
		}
	}
	return strings.Join(parts, "   ")
}

func field(label, value string) string {
	if value == "" {
		value = "-"
	}
	return styles.LabelStyle.Render(label) + value + "\n"
}

func (p *Profile) renderDetails(in *client.Intern) string {
	var sb strings.Builder
	sb.WriteString(field("Email", in.Email))
	sb.WriteString(field("Phone", in.Phone))
	sb.WriteString(field("Institution", in.Institution))
	sb.WriteString(field("Position", in.Position))
	sb.WriteString(field("From", in.From))
	sb.WriteString(field("To", in.To))
	sb.WriteString(field("Skills", strings.Join(in.Skills, ", ")))
	sb.WriteString(field("CV", in.CVURL))
	sb.WriteString(field("Photo", in.PhotoURL))
	return strings.TrimRight(sb.String(), "\n")
}

func (p *Profile) renderProjects(projects []client.Project) string {
	if len(projects) == 0 {
		return styles.Subtitle.Render("No projects yet")
	}
	var sb strings.Builder
	for _, pr := range projects {
		sb.WriteString(styles.ValueStyle.Render(pr.Title))
		if pr.CreatedAt != "" {
			sb.WriteString("  " + styles.Subtitle.Render(widgets.When(pr.CreatedAt)))
		}
		sb.WriteString("\n")
		if pr.Description != "" {
			sb.WriteString("  " + pr.Description + "\n")
		}
		if pr.Impact != "" {
			sb.WriteString("  " + styles.Subtitle.Render("Impact: ") + pr.Impact + "\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (p *Profile) renderPerformance(in *client.Intern) string {
	var sb strings.Builder
	sb.WriteString(styles.LabelStyle.Render("Score"))
	sb.WriteString(widgets.ScoreBar(in.Performance, 30))
	sb.WriteString("\n")
	rec := widgets.StatusText("No", widgets.StatusNeutral)
	if in.Recommended {
		rec = widgets.StatusText("Yes", widgets.StatusOK)
	}
	sb.WriteString(field("Recommended", rec))
	sb.WriteString(field("Graduated", yesNo(in.Graduated)))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("Notes"))
	sb.WriteString("\n")
	if in.Notes == "" {
		sb.WriteString(styles.Subtitle.Render("  none"))
	} else {
		sb.WriteString(in.Notes)
	}
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
