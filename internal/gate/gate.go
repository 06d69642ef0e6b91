// ABOUTME: Route gate deciding which screen a navigation may render
// ABOUTME: Pure function of session state and target path with strict rule precedence

package gate

import (
	"strconv"
	"strings"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/session"
)

// Well-known paths
const (
	PathRoot                = "/"
	PathLogin               = "/login"
	PathRegister            = "/register"
	PathForgotPassword      = "/forgot-password"
	PathResetPassword       = "/reset-password"
	PathConfirmPassword     = "/confirm-password"
	PathVerifyEmail         = "/verify-email"
	PathForceChangePassword = "/force-change-password"

	PathDashboard     = "/dashboard"
	PathInterns       = "/interns"
	PathInternProfile = "/interns/profile/"
	PathProjects      = "/projects"
	PathUsers         = "/users"
	PathAuditLogs     = "/auditlogs"
	PathSettings      = "/settings"
)

// LandingPath is where authenticated users go by default
const LandingPath = PathDashboard

var guestPaths = map[string]bool{
	PathRoot:            true,
	PathLogin:           true,
	PathRegister:        true,
	PathForgotPassword:  true,
	PathResetPassword:   true,
	PathConfirmPassword: true,
	PathVerifyEmail:     true,
}

// Outcome is what the gate tells the router to do
type Outcome int

const (
	// Loading renders only the loading indicator
	Loading Outcome = iota
	RenderGuest
	RenderProtected
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case RenderGuest:
		return "render-guest"
	case RenderProtected:
		return "render-protected"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the gate's answer for one navigation
type Decision struct {
	Outcome Outcome
	// Target is the path to render, or the redirect destination
	Target string
}

// Normalize strips query strings and trailing slashes
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathRoot
		}
	}
	return path
}

// IsGuestPath reports whether path is reachable without a session
func IsGuestPath(path string) bool {
	return guestPaths[Normalize(path)]
}

// Decide applies the gate rules in order; the first match wins.
// Unknown paths are treated as protected.
func Decide(st session.State, path string) Decision {
	path = Normalize(path)

	if st.Loading {
		return Decision{Outcome: Loading}
	}

	if st.User == nil {
		if guestPaths[path] {
			return Decision{Outcome: RenderGuest, Target: path}
		}
		return Decision{Outcome: Redirect, Target: PathLogin}
	}

	if st.MustChangePassword {
		if path == PathForceChangePassword {
			return Decision{Outcome: RenderProtected, Target: path}
		}
		return Decision{Outcome: Redirect, Target: PathForceChangePassword}
	}

	if guestPaths[path] || path == PathForceChangePassword {
		return Decision{Outcome: Redirect, Target: LandingPath}
	}
	return Decision{Outcome: RenderProtected, Target: path}
}

// maxRedirects bounds Resolve; the rules converge in at most two hops
const maxRedirects = 4

// Resolve follows redirects until the gate renders something
func Resolve(st session.State, path string) Decision {
	d := Decide(st, path)
	for i := 0; i < maxRedirects && d.Outcome == Redirect; i++ {
		d = Decide(st, d.Target)
	}
	return d
}

// NavItem is one sidebar entry
type NavItem struct {
	Path  string
	Label string
	Key   string
}

var navItems = []NavItem{
	{Path: PathDashboard, Label: "Dashboard", Key: "1"},
	{Path: PathInterns, Label: "Interns", Key: "2"},
	{Path: PathProjects, Label: "Projects", Key: "3"},
	{Path: PathUsers, Label: "Users", Key: "4"},
	{Path: PathAuditLogs, Label: "Audit Logs", Key: "5"},
	{Path: PathSettings, Label: "Settings", Key: "6"},
}

// NavItems returns the sidebar entries visible to user. Users management is
// listed only for super admins; this hides the entry but the backend remains
// responsible for rejecting the calls.
func NavItems(user *client.User) []NavItem {
	items := make([]NavItem, 0, len(navItems))
	for _, item := range navItems {
		if item.Path == PathUsers && (user == nil || user.Role != client.RoleSuperAdmin) {
			continue
		}
		items = append(items, item)
	}
	return items
}

// InternProfilePath is the profile screen of one intern
func InternProfilePath(id int) string {
	return PathInternProfile + strconv.Itoa(id)
}

// InternProfileID extracts the intern id from a profile path
func InternProfileID(path string) (int, bool) {
	path = Normalize(path)
	rest, ok := strings.CutPrefix(path, PathInternProfile)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
