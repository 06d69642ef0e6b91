// ABOUTME: Integration tests for the TUI app
// ABOUTME: Gate routing, sidebar keys and persistence, and the logout countdown against a fake backend

package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/interntrack/admin-cli/internal/branding"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/interntrack/admin-cli/internal/listing"
	"github.com/interntrack/admin-cli/internal/localstore"
	"github.com/interntrack/admin-cli/internal/session"
	"github.com/interntrack/admin-cli/internal/tui/forms"
)

type fakeBackend struct {
	server *httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{routes: map[string]http.HandlerFunc{}, hits: map[string]int{}}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.hits[key]++
	h, ok := b.routes[key]
	b.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "not found"})
		return
	}
	h(w, r)
}

func (b *fakeBackend) json(pattern string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[pattern] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	}
}

func (b *fakeBackend) count(pattern string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[pattern]
}

var (
	superAdmin = map[string]any{"id": 1, "name": "Root", "email": "root@example.com", "role": "super_admin"}
	admin      = map[string]any{"id": 2, "name": "Ada", "email": "ada@example.com", "role": "admin"}
)

// backendFor returns a backend that recognizes the token as user
func backendFor(t *testing.T, user map[string]any) *fakeBackend {
	t.Helper()
	b := newFakeBackend(t)
	b.json("GET /api/me", http.StatusOK, user)
	b.json("GET /api/company", http.StatusOK, map[string]any{"data": map[string]any{"name": "Acme", "system_name": "Acme Interns"}})
	b.json("POST /api/logout", http.StatusOK, map[string]string{"message": "bye"})
	return b
}

// newTestApp wires an app against b. A non-empty token starts signed in.
func newTestApp(t *testing.T, b *fakeBackend, token string) *App {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	prefs := localstore.New(t.TempDir())
	if token != "" {
		if err := prefs.SetToken(token); err != nil {
			t.Fatal(err)
		}
	}
	api := client.New(b.server.URL, client.WithTokenSource(prefs), client.WithTimeout(5*time.Second))
	a := newApp(ctx, feature.Deps{
		API:           api,
		Session:       session.New(api, prefs),
		Debouncer:     listing.NewDebouncer(0),
		Prefs:         prefs,
		Branding:      branding.New(api),
		ReportDir:     t.TempDir(),
		Countdown:     2,
		CountdownTick: 10 * time.Millisecond,
	}, 0)
	t.Cleanup(a.close)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return a
}

// start runs the session bootstrap the way Init would
func start(t *testing.T, a *App) {
	t.Helper()
	a.env.deps.Session.Initialize(a.env.ctx)
	a.Update(sessionReadyMsg{})
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and returns the resulting command
func press(a *App, key string) tea.Cmd {
	_, cmd := a.Update(keyMsg(key))
	return cmd
}

// follow runs cmd and feeds a navigateMsg or doneMsg it produces back in
func follow(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	switch msg := cmd().(type) {
	case navigateMsg, doneMsg, signedOutMsg:
		a.Update(msg)
	default:
		t.Fatalf("unexpected message %T", msg)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAppWaitsForSession(t *testing.T) {
	a := newTestApp(t, backendFor(t, admin), "tok")
	if a.screen != nil {
		t.Fatal("no screen should be built before the session settles")
	}
	if !strings.Contains(a.View(), "Checking session...") {
		t.Error("expected the session loading indicator")
	}
}

func TestAppRoutesThroughGate(t *testing.T) {
	tests := []struct {
		name    string
		user    map[string]any
		token   string
		want    string
		sidebar bool
	}{
		{"guest lands on login", admin, "", gate.PathLogin, false},
		{"signed in lands on dashboard", admin, "tok", gate.PathDashboard, true},
		{"forced change has no sidebar", map[string]any{
			"id": 3, "name": "New", "email": "new@example.com", "role": "admin", "must_change_password": true,
		}, "tok", gate.PathForceChangePassword, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t, backendFor(t, tt.user), tt.token)
			start(t, a)
			if a.current != tt.want {
				t.Errorf("current = %q, want %q", a.current, tt.want)
			}
			if a.showSidebar() != tt.sidebar {
				t.Errorf("sidebar shown = %v, want %v", a.showSidebar(), tt.sidebar)
			}
		})
	}
}

func TestAppGuestNavigation(t *testing.T) {
	a := newTestApp(t, backendFor(t, admin), "")
	start(t, a)

	follow(t, a, press(a, "ctrl+r"))
	if a.current != gate.PathRegister {
		t.Fatalf("current = %q, want register", a.current)
	}
	if _, ok := a.screen.(*authScreen); !ok {
		t.Errorf("screen = %T, want *authScreen", a.screen)
	}

	a.Update(navigateMsg{path: gate.PathDashboard})
	if a.current != gate.PathLogin {
		t.Errorf("protected path should redirect guests to login, got %q", a.current)
	}

	a.Update(navigateMsg{path: gate.PathForgotPassword})
	if _, ok := a.screen.(*infoScreen); !ok {
		t.Errorf("web-only guest page should get the info screen, got %T", a.screen)
	}
}

func TestAppLoginRedirectsToDashboard(t *testing.T) {
	b := backendFor(t, admin)
	b.json("POST /api/login", http.StatusOK, map[string]any{"user": admin, "token": "fresh"})
	a := newTestApp(t, b, "")
	start(t, a)

	s, ok := a.screen.(*authScreen)
	if !ok {
		t.Fatalf("screen = %T, want *authScreen", a.screen)
	}
	s.login = forms.LoginValues{Email: "ada@example.com", Password: "secret"}
	follow(t, a, s.submit())

	if a.current != gate.PathDashboard {
		t.Errorf("current = %q, want dashboard after login", a.current)
	}
	if got := a.env.deps.Prefs.Token(); got != "fresh" {
		t.Errorf("token = %q, want fresh", got)
	}
}

func TestAppLoginFailureStaysOnForm(t *testing.T) {
	b := backendFor(t, admin)
	b.json("POST /api/login", http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
	a := newTestApp(t, b, "")
	start(t, a)

	s := a.screen.(*authScreen)
	s.login = forms.LoginValues{Email: "ada@example.com", Password: "wrong"}
	s.busy = true
	follow(t, a, s.submit())

	if a.current != gate.PathLogin {
		t.Errorf("current = %q, want login", a.current)
	}
	if s.busy {
		t.Error("form should accept another attempt")
	}
	if s.login.Password != "" {
		t.Error("password should be cleared after a failed attempt")
	}
}

func TestAppSidebarKeys(t *testing.T) {
	tests := []struct {
		name string
		user map[string]any
		key  string
		want string
	}{
		{"interns", admin, "2", gate.PathInterns},
		{"settings", admin, "6", gate.PathSettings},
		{"users for super admin", superAdmin, "4", gate.PathUsers},
		{"users hidden for admin", admin, "4", gate.PathDashboard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t, backendFor(t, tt.user), "tok")
			start(t, a)
			press(a, tt.key)
			if a.current != tt.want {
				t.Errorf("current = %q, want %q", a.current, tt.want)
			}
		})
	}
}

func TestAppUnknownPath(t *testing.T) {
	a := newTestApp(t, backendFor(t, admin), "tok")
	start(t, a)

	a.Update(navigateMsg{path: "/nowhere"})
	if _, ok := a.screen.(*infoScreen); !ok {
		t.Fatalf("screen = %T, want *infoScreen", a.screen)
	}
	if !strings.Contains(a.View(), "Page not found") {
		t.Error("expected the not found message")
	}
	follow(t, a, press(a, "enter"))
	if a.current != gate.PathDashboard {
		t.Errorf("current = %q, want dashboard", a.current)
	}
}

func TestAppSidebarTogglePersists(t *testing.T) {
	a := newTestApp(t, backendFor(t, admin), "tok")
	start(t, a)

	wide, _ := a.contentSize()
	press(a, "[")
	narrow, _ := a.contentSize()
	if !a.sidebar.Collapsed() {
		t.Fatal("expected the sidebar collapsed")
	}
	if narrow <= wide {
		t.Errorf("collapsing should widen the content: %d -> %d", wide, narrow)
	}

	reloaded := localstore.New(a.env.deps.Prefs.Dir())
	if !reloaded.SidebarCollapsed() {
		t.Error("collapse preference should be saved")
	}
}

func TestAppLogoutDialogCancel(t *testing.T) {
	b := backendFor(t, admin)
	a := newTestApp(t, b, "tok")
	a.logoutTicks = 100
	start(t, a)

	press(a, "L")
	if a.logout == nil {
		t.Fatal("expected the logout dialog")
	}
	if !strings.Contains(a.View(), "Signing out automatically in") {
		t.Error("expected the countdown in the dialog")
	}
	// Keys belong to the dialog while it is open
	press(a, "2")
	if a.current != gate.PathDashboard {
		t.Errorf("navigation should be blocked by the dialog, got %q", a.current)
	}

	press(a, "esc")
	if a.logout != nil {
		t.Fatal("esc should close the dialog")
	}
	if b.count("POST /api/logout") != 0 {
		t.Error("canceling must not sign out")
	}
	if !a.env.deps.Session.Snapshot().SignedIn() {
		t.Error("still signed in after cancel")
	}
}

func TestAppLogoutConfirm(t *testing.T) {
	b := backendFor(t, admin)
	a := newTestApp(t, b, "tok")
	a.logoutTicks = 100
	start(t, a)

	press(a, "L")
	cmd := press(a, "enter")
	if !a.signingOut {
		t.Fatal("expected the signing out state")
	}
	follow(t, a, cmd)

	if a.current != gate.PathLogin {
		t.Errorf("current = %q, want login", a.current)
	}
	if b.count("POST /api/logout") != 1 {
		t.Errorf("logout calls = %d, want 1", b.count("POST /api/logout"))
	}
	if a.env.deps.Prefs.Token() != "" {
		t.Error("token should be cleared")
	}
}

func TestAppLogoutCountdownFires(t *testing.T) {
	b := backendFor(t, admin)
	a := newTestApp(t, b, "tok")
	start(t, a)

	press(a, "L")
	done := a.logout.Done()
	waitFor(t, "countdown", func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	})
	waitFor(t, "sign out", func() bool { return !a.env.deps.Session.Snapshot().SignedIn() })

	a.Update(changedMsg{})
	if a.logout != nil || a.signingOut {
		t.Error("dialog should be gone once signed out")
	}
	if a.current != gate.PathLogin {
		t.Errorf("current = %q, want login", a.current)
	}
}

func TestAppExpiredSessionRedirects(t *testing.T) {
	a := newTestApp(t, backendFor(t, admin), "tok")
	start(t, a)
	press(a, "2")

	a.env.deps.Session.Expire()
	a.Update(changedMsg{})
	if a.current != gate.PathLogin {
		t.Errorf("current = %q, want login after expiry", a.current)
	}
}
