// ABOUTME: Dashboard component displaying intern aggregates
// ABOUTME: Count blocks for each internship state and the top performers with score bars

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/tui/icons"
	"github.com/interntrack/admin-cli/internal/tui/styles"
	"github.com/interntrack/admin-cli/internal/tui/widgets"
)

// blockGap separates metric blocks horizontally
const blockGap = 1

// Dashboard displays the landing screen aggregates
type Dashboard struct {
	state   feature.DashboardState
	company string
	width   int
	height  int
}

// New creates a dashboard in the loading state
func New(company string, width, height int) *Dashboard {
	return &Dashboard{
		state:   feature.DashboardState{Loading: true},
		company: company,
		width:   width,
		height:  height,
	}
}

// Update replaces the rendered state
func (d *Dashboard) Update(st feature.DashboardState) {
	d.state = st
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard
func (d *Dashboard) View() string {
	st := d.state
	if st.Stats == nil {
		if st.Err != "" {
			return styles.StatusCritical.Render(st.Err) + "\n" + styles.Subtitle.Render("Press r to retry")
		}
		return styles.Subtitle.Render("Loading dashboard...")
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Dashboard"))
	sb.WriteString("\n")
	if d.company != "" {
		sb.WriteString(styles.Subtitle.Render(d.company))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(d.renderBlocks(st.Stats))
	sb.WriteString("\n\n")
	sb.WriteString(d.renderTop(st.Stats.TopInterns))
	if st.Err != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusCritical.Render(st.Err))
	}

	return lipgloss.NewStyle().
		Width(d.width).
		MaxHeight(d.height).
		Render(sb.String())
}

// renderBlocks lays the four counts out in one row, or two when narrow
func (d *Dashboard) renderBlocks(s *client.DashboardStats) string {
	cfg := widgets.DefaultMetricBlockConfig()
	cols := 4
	if d.width < 4*(cfg.Width+blockGap) {
		cols = 2
	}
	if d.width >= cols*(cfg.Width+blockGap) {
		cfg.Width = d.width/cols - blockGap
	}

	total := widgets.MetricBlock(icons.Interns, "Total", fmt.Sprintf("%d", s.TotalInterns), "interns", cfg)

	activeCfg := cfg
	activeCfg.TitleColor = styles.Warning
	active := widgets.CountBlock(icons.Gauge, "Active", s.ActiveInterns, s.TotalInterns, activeCfg)

	doneCfg := cfg
	doneCfg.TitleColor = styles.Secondary
	completed := widgets.CountBlock(icons.CheckOK, "Completed", s.CompletedInterns, s.TotalInterns, doneCfg)

	recCfg := cfg
	recCfg.TitleColor = styles.Info
	recommended := widgets.CountBlock(icons.Star, "Recommended", s.RecommendedInterns, s.TotalInterns, recCfg)

	gap := strings.Repeat(" ", blockGap)
	if cols == 4 {
		return lipgloss.JoinHorizontal(lipgloss.Top, total, gap, active, gap, completed, gap, recommended)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, total, gap, active),
		lipgloss.JoinHorizontal(lipgloss.Top, completed, gap, recommended),
	)
}

func (d *Dashboard) renderTop(top []client.Intern) string {
	var sb strings.Builder
	header := styles.Subtitle.Render(icons.Chart.String() + " Top performers")
	if len(top) == 0 {
		return header + "\n  " + styles.Subtitle.Render("No evaluations yet")
	}

	scores := make([]float64, 0, len(top))
	for _, in := range top {
		if in.Performance != nil {
			scores = append(scores, float64(*in.Performance))
		}
	}
	sb.WriteString(header)
	sb.WriteString("  ")
	sb.WriteString(widgets.Sparkline(scores, len(scores), styles.Primary))
	sb.WriteString("\n")

	nameWidth := 24
	for i, in := range top {
		name := in.Name
		if lipgloss.Width(name) > nameWidth {
			name = string([]rune(name)[:nameWidth-1]) + "…"
		}
		line := fmt.Sprintf("  %d. %-*s %s", i+1, nameWidth, name, widgets.ScoreBar(in.Performance, 20))
		if in.Recommended {
			line += " " + styles.StatusOK.Render(icons.Star.String())
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
