// ABOUTME: Dashboard, intern profile, and informational screens
// ABOUTME: Thin adapters from feature stores to the dashboard and profile views

package tui

import (
	"context"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/interntrack/admin-cli/internal/tui/dashboard"
	"github.com/interntrack/admin-cli/internal/tui/forms"
	"github.com/interntrack/admin-cli/internal/tui/icons"
	"github.com/interntrack/admin-cli/internal/tui/profile"
	"github.com/interntrack/admin-cli/internal/tui/styles"
)

// Operation ids reported through doneMsg
const (
	opLoad   = "load"
	opSave   = "save"
	opReport = "report"
)

type dashboardScreen struct {
	env   *env
	store *feature.Dashboard
	view  *dashboard.Dashboard
}

func newDashboardScreen(e *env) *dashboardScreen {
	company := ""
	if e.deps.Branding != nil {
		company = e.deps.Branding.Name()
	}
	return &dashboardScreen{
		env:   e,
		store: feature.NewDashboard(e.deps),
		view:  dashboard.New(company, 0, 0),
	}
}

func (s *dashboardScreen) Init() tea.Cmd {
	return s.env.run(opLoad, s.store.Load)
}

func (s *dashboardScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.view.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if msg.String() == "r" && !s.store.State().Loading {
			return s.env.run(opLoad, s.store.Load)
		}
	}
	return nil
}

func (s *dashboardScreen) View(width, height int) string {
	s.view.SetSize(width, height)
	s.view.Update(s.store.State())
	return s.view.View()
}

func (s *dashboardScreen) Shortcuts() []string { return []string{"r Refresh"} }
func (s *dashboardScreen) Capturing() bool     { return false }
func (s *dashboardScreen) Close()              {}

// profileMode is the form open over the profile, if any
type profileMode int

const (
	profileViewing profileMode = iota
	profileEvaluating
	profileEnding
	profileEditing
)

type profileScreen struct {
	env   *env
	id    int
	store *feature.InternProfile

	mode    profileMode
	form    *forms.Form
	eval    forms.EvaluationValues
	endDate string
	edit    forms.InternValues
	width   int
}

func newProfileScreen(e *env, id int) *profileScreen {
	return &profileScreen{env: e, id: id, store: feature.NewInternProfile(e.deps, id)}
}

func (s *profileScreen) Init() tea.Cmd {
	return s.env.run(opLoad, func(context.Context) error { return s.store.Load() })
}

func (s *profileScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
	case doneMsg:
		if msg.id == opSave && s.form != nil {
			return s.saved(msg.err)
		}
		return nil
	case forms.SubmittedMsg:
		return s.submit()
	case forms.CanceledMsg:
		s.closeForm()
		return nil
	}

	if s.form != nil {
		var cmd tea.Cmd
		s.form, cmd = s.form.Update(msg)
		return cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	st := s.store.State()
	switch key.String() {
	case "tab":
		return s.stepTab(st.Tab, 1)
	case "shift+tab":
		return s.stepTab(st.Tab, -1)
	case "esc", "b":
		return navigate(gate.PathInterns)
	case "r":
		if st.Intern == nil {
			return s.env.run(opLoad, func(context.Context) error { return s.store.Load() })
		}
	case "d":
		if st.Intern != nil && !st.ReportLoading {
			return s.env.run(opReport, func(ctx context.Context) error {
				_, err := s.store.Report(ctx)
				return err
			})
		}
	case "e":
		if st.Intern != nil {
			s.eval = forms.EvaluationValues{Recommended: st.Intern.Recommended, Notes: st.Intern.Notes}
			if st.Intern.Performance != nil {
				s.eval.Performance = strconv.Itoa(*st.Intern.Performance)
			}
			return s.openForm(profileEvaluating, forms.Evaluation(&s.eval))
		}
	case "x":
		if st.Intern != nil {
			s.endDate = st.Intern.To
			return s.openForm(profileEnding, forms.EndDate(&s.endDate))
		}
	case "u":
		if st.Intern != nil {
			s.edit = forms.InternValues{
				Name:        st.Intern.Name,
				Email:       st.Intern.Email,
				Phone:       st.Intern.Phone,
				Institution: st.Intern.Institution,
				Position:    st.Intern.Position,
			}
			return s.openForm(profileEditing, forms.EditIntern(&s.edit))
		}
	}
	return nil
}

func (s *profileScreen) stepTab(current string, step int) tea.Cmd {
	i := slices.Index(feature.Tabs, current)
	next := feature.Tabs[(i+step+len(feature.Tabs))%len(feature.Tabs)]
	s.store.SetTab(next)
	return nil
}

func (s *profileScreen) openForm(mode profileMode, f *forms.Form) tea.Cmd {
	s.mode = mode
	s.form = f
	var cmd tea.Cmd
	if s.width > 0 {
		s.form, cmd = s.form.Update(tea.WindowSizeMsg{Width: s.width})
	}
	return tea.Batch(s.form.Init(), cmd)
}

func (s *profileScreen) closeForm() {
	s.mode = profileViewing
	s.form = nil
}

func (s *profileScreen) submit() tea.Cmd {
	if s.form == nil {
		return nil
	}
	s.form.ClearError()
	switch s.mode {
	case profileEvaluating:
		e := feature.Evaluation{Performance: s.eval.Score(), Recommended: s.eval.Recommended, Notes: s.eval.Notes}
		return s.env.run(opSave, func(ctx context.Context) error { return s.store.SavePerformance(ctx, e) })
	case profileEnding:
		to := s.endDate
		return s.env.run(opSave, func(ctx context.Context) error { return s.store.SaveEndDate(ctx, to) })
	case profileEditing:
		v := s.edit
		return s.env.run(opSave, func(ctx context.Context) error {
			uploads, closeAll, err := forms.Uploads(v.CVPath, v.PhotoPath)
			defer closeAll()
			if err != nil {
				return err
			}
			return s.store.UpdateProfile(ctx, feature.ProfileEdit{
				Name:        v.Name,
				Email:       v.Email,
				Phone:       v.Phone,
				Institution: v.Institution,
				Position:    v.Position,
				CV:          uploads[0],
				Photo:       uploads[1],
			})
		})
	}
	return nil
}

// saved keeps the form open on validation errors and closes it otherwise;
// other failures are already shown as a toast
func (s *profileScreen) saved(err error) tea.Cmd {
	if err != nil && feature.IsInvalid(err) {
		return s.form.Fail(err, "Save failed.")
	}
	s.closeForm()
	return nil
}

func (s *profileScreen) View(width, height int) string {
	if s.form != nil {
		return s.form.View()
	}
	return profile.New(s.store.State(), width).View()
}

func (s *profileScreen) Shortcuts() []string {
	if s.form != nil {
		return []string{"enter Next", "esc Cancel"}
	}
	return []string{"tab Tab", "e Evaluate", "x End date", "u Edit", "d Report", "esc Back"}
}

func (s *profileScreen) Capturing() bool { return s.form != nil }
func (s *profileScreen) Close()          { s.store.Close() }

// infoScreen explains why nothing can be shown and offers a way out
type infoScreen struct {
	message string
	back    string
}

func newInfoScreen(message, back string) *infoScreen {
	return &infoScreen{message: message, back: back}
}

func (s *infoScreen) Init() tea.Cmd { return nil }

func (s *infoScreen) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "esc", "b":
			return navigate(s.back)
		case "q":
			return tea.Quit
		}
	}
	return nil
}

func (s *infoScreen) View(width, height int) string {
	body := styles.Title.Render(icons.Info.String()+" "+s.message) + "\n\n" +
		styles.Subtitle.Render("Press enter to continue")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (s *infoScreen) Shortcuts() []string { return []string{"enter Continue", "q Quit"} }
func (s *infoScreen) Capturing() bool     { return false }
func (s *infoScreen) Close()              {}

// centered places a form in the middle of the content area
func centered(width, height int, parts ...string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(parts, "\n\n"))
}
