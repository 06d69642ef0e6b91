// ABOUTME: Compact metric block widget for dashboard displays
// ABOUTME: Combines icon, value, share bar, and subtitle in a bordered panel

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/interntrack/admin-cli/internal/tui/icons"
)

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns sensible defaults
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       22,
		BorderColor: lipgloss.Color("#6B7280"), // Muted gray
		TitleColor:  lipgloss.Color("#7C3AED"), // Purple
		ValueColor:  lipgloss.Color("#F9FAFB"), // Light
	}
}

// boxLine pads content to the block's inner width between side borders
func boxLine(content string, innerWidth int) string {
	pad := max(0, innerWidth-lipgloss.Width(content))
	return "│  " + content + strings.Repeat(" ", pad) + "│"
}

func topBorder(icon icons.Icon, title string, innerWidth int, color lipgloss.Color) string {
	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), innerWidth)
	styled := lipgloss.NewStyle().Foreground(color).Render(titleStr)
	return fmt.Sprintf("┌─ %s %s┐", styled, strings.Repeat("─", max(0, innerWidth-lipgloss.Width(titleStr)-1)))
}

// MetricBlock renders a compact metric display block
func MetricBlock(icon icons.Icon, title string, value string, subtitle string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}
	innerWidth := config.Width - 4

	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)

	return strings.Join([]string{
		borderStyle.Render(topBorder(icon, title, innerWidth, config.TitleColor)),
		borderStyle.Render(boxLine(valueStyle.Render(truncate(value, innerWidth)), innerWidth)),
		borderStyle.Render(boxLine(subtitleStyle.Render(truncate(subtitle, innerWidth)), innerWidth)),
		borderStyle.Render(fmt.Sprintf("└%s┘", strings.Repeat("─", config.Width-2))),
	}, "\n")
}

// CountBlock renders a count with its share of a total as a bar
func CountBlock(icon icons.Icon, title string, count, total int, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}
	innerWidth := config.Width - 4
	barWidth := innerWidth - 6

	percent := 0.0
	if total > 0 {
		percent = float64(count) / float64(total) * 100
	}

	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)

	value := valueStyle.Render(fmt.Sprintf("%d", count)) + mutedStyle.Render(fmt.Sprintf(" of %d", total))
	bar := CompactProgressBar(percent, barWidth, config.TitleColor) + mutedStyle.Render(fmt.Sprintf(" %3.0f%%", percent))

	return strings.Join([]string{
		borderStyle.Render(topBorder(icon, title, innerWidth, config.TitleColor)),
		borderStyle.Render(boxLine(value, innerWidth)),
		borderStyle.Render(boxLine(bar, innerWidth)),
		borderStyle.Render(fmt.Sprintf("└%s┘", strings.Repeat("─", config.Width-2))),
	}, "\n")
}

// truncate shortens a string to maxLen cells with ellipsis if needed
func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:min(maxLen, len(runes))])
	}
	for lipgloss.Width(string(runes))+3 > maxLen && len(runes) > 0 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
