// ABOUTME: Screen and status icons with a Nerd Font glyph and a plain Unicode fallback
// ABOUTME: The nerd_fonts setting forces either set, otherwise the terminal is guessed from TERM

package icons

import (
	"os"
	"strings"
	"sync"
)

// Modes accepted for the nerd_fonts setting
const (
	ModeAuto   = "auto"
	ModeAlways = "always"
	ModeNever  = "never"
)

// terminals known to ship with a patched font by default
var nerdFontTerminals = []string{"iTerm.app", "alacritty", "WezTerm", "kitty", "ghostty"}

var (
	mu       sync.RWMutex
	resolved *bool
	mode     = ModeAuto
)

// Configure sets the glyph mode. Anything other than always or never
// falls back to guessing from the terminal.
func Configure(m string) {
	mu.Lock()
	defer mu.Unlock()
	mode = strings.ToLower(strings.TrimSpace(m))
	resolved = nil
}

// Detect decides whether patched glyphs can be drawn, given a mode and an
// environment lookup
func Detect(m string, getenv func(string) string) bool {
	switch m {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	}
	if getenv("NERD_FONTS") == "1" {
		return true
	}
	term := getenv("TERM")
	program := getenv("TERM_PROGRAM")
	for _, t := range nerdFontTerminals {
		if strings.Contains(program, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// HasNerdFonts reports whether icons render with their patched glyph
func HasNerdFonts() bool {
	mu.RLock()
	if resolved != nil {
		defer mu.RUnlock()
		return *resolved
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if resolved == nil {
		v := Detect(mode, os.Getenv)
		resolved = &v
	}
	return *resolved
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Screens
	Dashboard = Icon{"󰕮", "▦"} // nf-md-view_dashboard
	Interns   = Icon{"󰀎", "◉"} // nf-md-account_group
	Projects  = Icon{"󰉋", "▤"} // nf-md-folder
	Users     = Icon{"󰀉", "◎"} // nf-md-account_circle
	AuditLog  = Icon{"󰙅", "≡"} // nf-md-file_tree
	Settings  = Icon{"󰒓", "⚙"} // nf-md-cog
	Lock      = Icon{"󰌾", "⚿"} // nf-md-lock

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-fa-check_circle
	Warning  = Icon{"", "⚠"} // nf-fa-warning
	Critical = Icon{"", "✗"} // nf-fa-times_circle
	Info     = Icon{"", "ℹ"} // nf-fa-info_circle
	Star     = Icon{"󰓎", "★"} // nf-md-star

	// Trends and charts
	Chart = Icon{"󰄭", "▁"} // nf-md-chart_line
	Gauge = Icon{"󰓅", "◐"} // nf-md-gauge

	// Actions
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Search  = Icon{"󰍉", "⌕"} // nf-md-magnify
	Report  = Icon{"󰈦", "⤓"} // nf-md-file_pdf_box
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Quit    = Icon{"󰗼", "×"} // nf-md-exit_to_app

	// Application
	App = Icon{"󰑴", "◈"} // nf-md-school
)

// ForPath returns the icon of a sidebar screen
func ForPath(path string) Icon {
	switch {
	case path == "/dashboard":
		return Dashboard
	case strings.HasPrefix(path, "/interns"):
		return Interns
	case path == "/projects":
		return Projects
	case path == "/users":
		return Users
	case path == "/auditlogs":
		return AuditLog
	case path == "/settings":
		return Settings
	default:
		return Lock
	}
}
