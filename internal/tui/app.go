// ABOUTME: Root bubbletea model for the admin panel
// ABOUTME: Routes every navigation through the session gate and owns the frame, sidebar, and logout countdown

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/interntrack/admin-cli/internal/branding"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/config"
	"github.com/interntrack/admin-cli/internal/countdown"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/interntrack/admin-cli/internal/listing"
	"github.com/interntrack/admin-cli/internal/localstore"
	"github.com/interntrack/admin-cli/internal/session"
	"github.com/interntrack/admin-cli/internal/tui/icons"
	"github.com/interntrack/admin-cli/internal/tui/nav"
	"github.com/interntrack/admin-cli/internal/tui/styles"
	"github.com/interntrack/admin-cli/internal/tui/widgets"
)

// Layout constants
const (
	minTerminalWidth = 80 // Frame never renders narrower than this
	frameLines       = 2  // Header and footer
	minContentHeight = 10
)

// changedMsg is sent after a store reports a state change
type changedMsg struct{}

// sessionReadyMsg is sent once the session bootstrap settles
type sessionReadyMsg struct{}

// brandingLoadedMsg is sent when the company name is known
type brandingLoadedMsg struct{}

// navigateMsg asks the app to open a path
type navigateMsg struct {
	path string
}

// doneMsg reports a finished background operation started by a screen
type doneMsg struct {
	id  string
	err error
}

// signedOutMsg is sent when a confirmed logout has completed
type signedOutMsg struct{}

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

// env is what every screen shares
type env struct {
	ctx  context.Context
	deps feature.Deps
}

// run executes fn off the UI goroutine and reports it as a doneMsg
func (e *env) run(id string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{id: id, err: fn(e.ctx)}
	}
}

// screen is one routed page
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
	Shortcuts() []string
	// Capturing reports whether every key must reach the screen, as while
	// a form or the search bar has focus
	Capturing() bool
	Close()
}

// App is the root model for the TUI
type App struct {
	env     *env
	auth    *feature.Auth
	changes chan struct{}
	sidebar *nav.Sidebar
	spinner spinner.Model

	ready     bool
	requested string
	current   string
	decision  gate.Decision
	screen    screen

	logout      *countdown.Countdown
	logoutTicks int
	logoutTick  time.Duration
	signingOut  bool

	width      int
	height     int
	lastUpdate time.Time
}

// New wires the stores from cfg and creates the app
func New(ctx context.Context, cfg *config.Config) *App {
	prefs := localstore.New(cfg.StateDir)
	api := client.New(cfg.APIURL, client.WithTokenSource(prefs), client.WithTimeout(cfg.Timeout))
	return newApp(ctx, feature.Deps{
		API:       api,
		Session:   session.New(api, prefs),
		Debouncer: listing.NewDebouncer(cfg.Debounce),
		Prefs:     prefs,
		Branding:  branding.New(api),
		ReportDir: cfg.ReportDir,
		Countdown: cfg.CountdownSeconds,
	}, cfg.ToastDuration)
}

// newApp finishes the wiring: every store change and toast wakes the
// program through a single buffered channel
func newApp(ctx context.Context, deps feature.Deps, toastTTL time.Duration) *App {
	a := &App{
		changes:   make(chan struct{}, 1),
		requested: gate.PathRoot,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
		),
		logoutTicks: deps.Countdown,
		logoutTick:  deps.CountdownTick,
	}
	if a.logoutTicks <= 0 {
		a.logoutTicks = config.DefaultCountdownSeconds
	}
	if a.logoutTick <= 0 {
		a.logoutTick = time.Second
	}
	if deps.Toaster == nil {
		deps.Toaster = listing.NewToaster(toastTTL, a.notify)
	}
	if deps.Debouncer == nil {
		deps.Debouncer = listing.NewDebouncer(config.DefaultDebounce)
	}
	deps.OnChange = a.notify

	a.env = &env{ctx: ctx, deps: deps}
	a.auth = feature.NewAuth(deps)
	collapsed := false
	if deps.Prefs != nil {
		collapsed = deps.Prefs.SidebarCollapsed()
	}
	a.sidebar = nav.New(nil, collapsed)
	return a
}

func (a *App) notify() {
	select {
	case a.changes <- struct{}{}:
	default:
	}
}

func (a *App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.changes:
			return changedMsg{}
		case <-a.env.ctx.Done():
			return nil
		}
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.waitForChange(), a.bootstrap(), a.loadBranding())
}

func (a *App) bootstrap() tea.Cmd {
	return func() tea.Msg {
		a.env.deps.Session.Initialize(a.env.ctx)
		return sessionReadyMsg{}
	}
}

func (a *App) loadBranding() tea.Cmd {
	if a.env.deps.Branding == nil {
		return nil
	}
	return func() tea.Msg {
		a.env.deps.Branding.Load(a.env.ctx)
		return brandingLoadedMsg{}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, a.resizeScreen()

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		if a.screen != nil {
			cmd = tea.Batch(cmd, a.screen.Update(msg))
		}
		return a, cmd

	case sessionReadyMsg:
		a.ready = true
		return a, a.route()

	case brandingLoadedMsg:
		return a, nil

	case changedMsg:
		a.lastUpdate = time.Now()
		a.settleLogout()
		return a, tea.Batch(a.waitForChange(), a.route())

	case signedOutMsg:
		a.signingOut = false
		return a, a.route()

	case navigateMsg:
		a.requested = gate.Normalize(msg.path)
		return a, a.route()

	case doneMsg:
		// Sign-in and sign-out do not notify, so every finished operation
		// gets a routing pass
		var cmd tea.Cmd
		if a.screen != nil {
			cmd = a.screen.Update(msg)
		}
		return a, tea.Batch(cmd, a.route())
	}

	if a.screen != nil {
		return a, a.screen.Update(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}
	if a.logout != nil {
		return a.updateLogoutDialog(key)
	}
	if a.screen == nil || a.signingOut {
		if key == "q" {
			return tea.Quit
		}
		return nil
	}
	if a.screen.Capturing() || !a.showSidebar() {
		return a.screen.Update(msg)
	}

	switch key {
	case "q":
		return tea.Quit
	case "[":
		return a.toggleSidebar()
	case "L":
		a.confirmLogout()
		return nil
	}
	if path, ok := a.sidebar.PathForKey(key); ok {
		a.requested = path
		return a.route()
	}
	return a.screen.Update(msg)
}

// route asks the gate what to show for the requested path and swaps the
// screen when the answer changes
func (a *App) route() tea.Cmd {
	if !a.ready || a.signingOut {
		return nil
	}
	st := a.env.deps.Session.Snapshot()
	a.sidebar.SetUser(st.User)
	if !st.SignedIn() && a.logout != nil {
		a.logout.Cancel()
		a.logout = nil
	}

	d := gate.Resolve(st, a.requested)
	a.decision = d
	if d.Outcome != gate.RenderGuest && d.Outcome != gate.RenderProtected {
		return nil
	}
	a.requested = d.Target
	if d.Target == a.current && a.screen != nil {
		return nil
	}

	slog.Debug("Route", "from", a.current, "to", d.Target, "outcome", d.Outcome.String())
	if a.screen != nil {
		a.screen.Close()
	}
	a.current = d.Target
	a.sidebar.SetActive(d.Target)
	a.screen = a.newScreen(d.Target)
	return tea.Batch(a.screen.Init(), a.resizeScreen())
}

// newScreen maps a rendered path to its screen
func (a *App) newScreen(path string) screen {
	if id, ok := gate.InternProfileID(path); ok {
		return newProfileScreen(a.env, id)
	}
	switch path {
	case gate.PathRoot, gate.PathLogin:
		return newAuthScreen(a.env, a.auth, authLogin)
	case gate.PathRegister:
		return newAuthScreen(a.env, a.auth, authRegister)
	case gate.PathForceChangePassword:
		return newAuthScreen(a.env, a.auth, authForce)
	case gate.PathDashboard:
		return newDashboardScreen(a.env)
	case gate.PathInterns:
		return newInternsScreen(a.env)
	case gate.PathProjects:
		return newProjectsScreen(a.env)
	case gate.PathUsers:
		return newUsersScreen(a.env)
	case gate.PathAuditLogs:
		return newAuditLogsScreen(a.env)
	case gate.PathSettings:
		return newSettingsScreen(a.env)
	}
	if gate.IsGuestPath(path) {
		return newInfoScreen("This page is only available in the web app.", gate.PathLogin)
	}
	return newInfoScreen("Page not found: "+path, gate.LandingPath)
}

func (a *App) resizeScreen() tea.Cmd {
	if a.screen == nil {
		return nil
	}
	w, h := a.contentSize()
	return a.screen.Update(tea.WindowSizeMsg{Width: w, Height: h})
}

func (a *App) toggleSidebar() tea.Cmd {
	collapsed := a.sidebar.Toggle()
	if a.env.deps.Prefs != nil {
		if err := a.env.deps.Prefs.SetSidebarCollapsed(collapsed); err != nil {
			slog.Warn("Failed to save sidebar preference", "error", err)
		}
	}
	return a.resizeScreen()
}

// confirmLogout opens the logout dialog; when nobody answers before the
// countdown ends the user is signed out
func (a *App) confirmLogout() {
	a.logout = countdown.Start(a.logoutTicks, a.logoutTick,
		func(int) { a.notify() },
		func() { go a.signOut() },
	)
}

// signOut runs off the UI goroutine because the revoke call may be slow
func (a *App) signOut() {
	a.auth.Logout(a.env.ctx)
}

func (a *App) updateLogoutDialog(key string) tea.Cmd {
	switch key {
	case "enter", "y":
		a.logout.Cancel()
		a.logout = nil
		a.signingOut = true
		return func() tea.Msg {
			a.signOut()
			return signedOutMsg{}
		}
	case "esc", "n":
		a.logout.Cancel()
		a.logout = nil
	}
	return nil
}

// settleLogout clears the dialog once its countdown has ended and notices
// when an automatic logout has finished
func (a *App) settleLogout() {
	if a.logout != nil {
		select {
		case <-a.logout.Done():
			a.signingOut = a.logout.Fired()
			a.logout = nil
		default:
		}
	}
	if a.signingOut && !a.env.deps.Session.Snapshot().SignedIn() {
		a.signingOut = false
	}
}

func (a *App) logoutDialog() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Lock.String() + " Sign out?"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Signing out automatically in %d seconds...", a.logout.Remaining()))
	sb.WriteString("\n\n")
	sb.WriteString(styles.KeyStyle.Render("enter") + " Sign out now   " + styles.KeyStyle.Render("esc") + " Stay signed in")
	return styles.Dialog.Render(sb.String())
}

// showSidebar is true for protected screens other than the forced
// password change
func (a *App) showSidebar() bool {
	return a.decision.Outcome == gate.RenderProtected &&
		a.current != gate.PathForceChangePassword &&
		!a.signingOut
}

// frameWidth is one column short of the terminal to avoid wrapping, but
// never below minTerminalWidth
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

func (a *App) contentSize() (int, int) {
	w := a.frameWidth()
	if a.showSidebar() {
		w -= a.sidebar.Width() + 1
	}
	return w, max(a.height-frameLines, minContentHeight)
}

// View implements tea.Model
func (a *App) View() string {
	w, h := a.contentSize()

	var content string
	switch {
	case a.signingOut:
		content = a.spinner.View() + " Signing out..."
	case a.screen == nil || a.decision.Outcome == gate.Loading:
		content = a.spinner.View() + " Checking session..."
	case a.logout != nil:
		content = lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, a.logoutDialog())
	default:
		content = a.screen.View(w, h)
	}

	if a.showSidebar() {
		content = lipgloss.JoinHorizontal(lipgloss.Top, a.sidebar.View(h), " ", content)
	}
	return a.wrapWithFrame(content)
}

// renderHeader creates the header bar with the company name and the
// signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	title := branding.DefaultName
	if a.env.deps.Branding != nil {
		title = a.env.deps.Branding.Name()
	}
	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render(title))

	rightText := ""
	if u := a.env.deps.Session.Snapshot().User; u != nil {
		rightText = " " + contextStyle.Render(u.Name+" · "+string(u.Role)) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := max(width-4-leftWidth-rightWidth, 0) // -4 for ╭─ and ─╮

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and, on the
// right, the current toast or the time of the last update
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var styledShortcuts []string
	for _, s := range a.shortcuts() {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}
	leftText := " " + strings.Join(styledShortcuts, "  ") + " "
	leftWidth := lipgloss.Width(leftText)

	rightText := ""
	if t, ok := a.env.deps.Toaster.Current(); ok {
		isError := t.Kind == listing.ToastError
		rightText = " " + widgets.Toast(t.Message, isError) + " "
		if over := lipgloss.Width(rightText) - (width - 4 - leftWidth); over > 0 {
			msg := truncate(t.Message, max(lipgloss.Width(t.Message)-over, 2))
			rightText = " " + widgets.Toast(msg, isError) + " "
		}
	} else if !a.lastUpdate.IsZero() && a.showSidebar() {
		rightText = " " + statusStyle.Render("Updated "+formatTimeSince(a.lastUpdate)) + " "
	}

	rightWidth := lipgloss.Width(rightText)
	fillWidth := max(width-4-leftWidth-rightWidth, 0) // -4 for ╰─ and ─╯

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

func (a *App) shortcuts() []string {
	switch {
	case a.logout != nil:
		return []string{"enter Logout", "esc Cancel"}
	case a.screen == nil || a.signingOut:
		return []string{"q Quit"}
	}
	out := a.screen.Shortcuts()
	if a.showSidebar() && !a.screen.Capturing() {
		out = append(out, "[ Sidebar", "L Logout", "q Quit")
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// close releases the current screen and any pending timers
func (a *App) close() {
	if a.logout != nil {
		a.logout.Cancel()
	}
	if a.screen != nil {
		a.screen.Close()
	}
	a.env.deps.Toaster.Close()
	a.env.deps.Debouncer.Stop()
}

// Run starts the TUI and blocks until the user quits or ctx is canceled
func Run(ctx context.Context, cfg *config.Config) error {
	icons.Configure(cfg.NerdFonts)
	app := New(ctx, cfg)
	defer app.close()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
