// ABOUTME: Progress bars for performance scores and password strength
// ABOUTME: Score bars color by grade; the strength meter fills one segment per satisfied rule

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var emptyColor = lipgloss.Color("#374151")

// ScoreBar renders a 0-100 score as a bracketed bar followed by the value.
// A nil score renders as not yet evaluated.
func ScoreBar(score *int, width int) string {
	if width <= 0 {
		width = 20
	}
	if score == nil {
		return lipgloss.NewStyle().Foreground(emptyColor).Render("["+strings.Repeat("░", width)+"]") +
			lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Render(" not evaluated")
	}

	v := min(max(*score, 0), 100)
	color := scoreColor(v)
	filled := v * width / 100

	var bar strings.Builder
	bar.WriteString("[")
	bar.WriteString(lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)))
	bar.WriteString(lipgloss.NewStyle().Foreground(emptyColor).Render(strings.Repeat("░", width-filled)))
	bar.WriteString("]")
	return bar.String() + lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf(" %3d", v))
}

func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= 80:
		return BadgeOKBg
	case score >= 50:
		return BadgeWarnBg
	default:
		return BadgeCritBg
	}
}

// strengthColors index by strength score 0-4
var strengthColors = []lipgloss.Color{BadgeCritBg, BadgeCritBg, BadgeWarnBg, BadgeInfoBg, BadgeOKBg}

// StrengthMeter renders a four segment password strength meter with its label
func StrengthMeter(score int, label string) string {
	score = min(max(score, 0), 4)
	color := strengthColors[score]

	var meter strings.Builder
	for i := 0; i < 4; i++ {
		if i > 0 {
			meter.WriteString(" ")
		}
		c := emptyColor
		if i < score {
			c = color
		}
		meter.WriteString(lipgloss.NewStyle().Foreground(c).Render("━━━"))
	}
	return meter.String() + " " + lipgloss.NewStyle().Foreground(color).Render(label)
}

// CompactProgressBar renders a minimal progress bar for tight spaces
func CompactProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	empty := width - filled

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(emptyColor).Render(strings.Repeat("░", empty))
}
