// ABOUTME: Settings screen with company, profile, and password forms
// ABOUTME: Also hosts the delete-account dialog and its cancelable countdown

package tui

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/tui/forms"
	"github.com/interntrack/admin-cli/internal/tui/icons"
	"github.com/interntrack/admin-cli/internal/tui/styles"
	"github.com/interntrack/admin-cli/internal/tui/widgets"
)

const opDelete = "delete"

type settingsForm int

const (
	settingsNone settingsForm = iota
	settingsCompany
	settingsProfile
	settingsPassword
)

type settingsScreen struct {
	env   *env
	store *feature.Settings

	mode     settingsForm
	form     *forms.Form
	company  forms.CompanyValues
	profile  forms.ProfileValues
	password forms.PasswordValues
	width    int

	deletion *feature.AccountDeletion
	deleting bool
	input    textinput.Model
	// stop releases the goroutine waiting on a canceled deletion
	stop chan struct{}
}

func newSettingsScreen(e *env) *settingsScreen {
	input := textinput.New()
	input.Placeholder = "Current password"
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 128

	return &settingsScreen{
		env:      e,
		store:    feature.NewSettings(e.deps),
		deletion: feature.NewAccountDeletion(e.deps),
		input:    input,
	}
}

func (s *settingsScreen) Init() tea.Cmd {
	return s.env.run(opLoad, s.store.Load)
}

func (s *settingsScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
	case doneMsg:
		switch {
		case msg.id == opSave && s.form != nil:
			if msg.err != nil && feature.IsInvalid(msg.err) {
				return s.form.Fail(msg.err, "Save failed.")
			}
			s.closeForm()
		case msg.id == opDelete && msg.err != nil:
			s.input.SetValue("")
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
	if s.deleting {
		return s.updateDeletion(msg)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	st := s.store.State()
	switch key.String() {
	case "r":
		return s.env.run(opLoad, s.store.Load)
	case "c":
		if st.Company != nil {
			s.company = forms.CompanyValues{Company: *st.Company}
		} else {
			s.company = forms.CompanyValues{}
		}
		return s.openForm(settingsCompany, forms.Company(&s.company))
	case "p":
		s.profile = forms.ProfileValues{}
		if st.User != nil {
			s.profile = forms.ProfileValues{Name: st.User.Name, Email: st.User.Email}
		}
		return s.openForm(settingsProfile, forms.Profile(&s.profile))
	case "w":
		s.password = forms.PasswordValues{}
		return s.openForm(settingsPassword, forms.ChangePassword(&s.password))
	case "D":
		s.deleting = true
		s.input.SetValue("")
		return s.input.Focus()
	}
	return nil
}

func (s *settingsScreen) openForm(mode settingsForm, f *forms.Form) tea.Cmd {
	s.mode = mode
	s.form = f
	var cmd tea.Cmd
	if s.width > 0 {
		s.form, cmd = s.form.Update(tea.WindowSizeMsg{Width: s.width})
	}
	return tea.Batch(s.form.Init(), cmd)
}

func (s *settingsScreen) closeForm() {
	s.mode = settingsNone
	s.form = nil
}

func (s *settingsScreen) submit() tea.Cmd {
	if s.form == nil {
		return nil
	}
	s.form.ClearError()
	switch s.mode {
	case settingsCompany:
		v := s.company
		return s.env.run(opSave, func(ctx context.Context) error {
			edit := feature.CompanyEdit{Company: v.Company}
			if v.LogoPath != "" {
				info, err := os.Stat(v.LogoPath)
				if err != nil {
					return forms.FileError(v.LogoPath, err)
				}
				uploads, closeAll, err := forms.Uploads(v.LogoPath)
				defer closeAll()
				if err != nil {
					return err
				}
				edit.Logo = uploads[0]
				edit.Size = info.Size()
			}
			_, err := s.store.UpdateCompany(ctx, edit)
			return err
		})
	case settingsProfile:
		p := client.ProfileUpdate{Name: s.profile.Name, Email: s.profile.Email}
		return s.env.run(opSave, func(ctx context.Context) error { return s.store.UpdateProfile(ctx, p) })
	case settingsPassword:
		u := client.PasswordUpdate{
			CurrentPassword:      s.password.Current,
			Password:             s.password.Password,
			PasswordConfirmation: s.password.Confirm,
		}
		return s.env.run(opSave, func(ctx context.Context) error { return s.store.UpdatePassword(ctx, u) })
	}
	return nil
}

// updateDeletion drives the delete-account dialog: password entry first,
// then the countdown where enter deletes at once and esc cancels
func (s *settingsScreen) updateDeletion(msg tea.Msg) tea.Cmd {
	key, isKey := msg.(tea.KeyMsg)
	st := s.deletion.State()

	switch st.Phase {
	case feature.DeletionIdle:
		if isKey {
			switch key.String() {
			case "esc":
				s.deleting = false
				s.input.Blur()
				return nil
			case "enter":
				if s.input.Value() == "" {
					return nil
				}
				return s.verify(s.input.Value())
			}
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd

	case feature.DeletionCounting:
		if isKey {
			switch key.String() {
			case "enter":
				s.deletion.DeleteNow()
			case "esc":
				s.cancelDeletion()
				s.deleting = false
			}
		}
	}
	return nil
}

// verify checks the password and then waits for the countdown outcome
func (s *settingsScreen) verify(password string) tea.Cmd {
	stop := make(chan struct{})
	s.stop = stop
	return s.env.run(opDelete, func(ctx context.Context) error {
		done, err := s.deletion.Verify(ctx, password)
		if err != nil {
			return err
		}
		select {
		case err := <-done:
			return err
		case <-stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (s *settingsScreen) cancelDeletion() {
	if s.deletion.Cancel() && s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.input.SetValue("")
}

func (s *settingsScreen) View(width, height int) string {
	if s.form != nil {
		return s.form.View()
	}
	if s.deleting {
		return centered(width, height, s.deletionDialog())
	}

	st := s.store.State()
	if st.Loading && st.User == nil {
		return styles.Subtitle.Render("Loading settings...")
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Settings.String() + " Settings"))
	sb.WriteString("\n\n")
	if st.Err != "" {
		sb.WriteString(styles.StatusCritical.Render(st.Err))
		sb.WriteString("\n\n")
	}

	sb.WriteString(styles.Subtitle.Render("Company"))
	sb.WriteString("\n")
	if c := st.Company; c != nil {
		sb.WriteString(row("Name", c.Name))
		sb.WriteString(row("System name", c.SystemName))
		sb.WriteString(row("Email", c.Email))
		sb.WriteString(row("Phone", c.Phone))
		sb.WriteString(row("Website", c.Website))
		sb.WriteString(row("Industry", c.Industry))
	} else {
		sb.WriteString(row("Name", ""))
	}

	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("Your account"))
	sb.WriteString("\n")
	if u := st.User; u != nil {
		sb.WriteString(row("Name", u.Name))
		sb.WriteString(row("Email", u.Email))
		sb.WriteString(styles.LabelStyle.Render("Role") + widgets.RoleBadge(u.Role) + "\n")
	}

	if st.Saving {
		sb.WriteString("\n")
		sb.WriteString(styles.Subtitle.Render("Saving..."))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func row(label, value string) string {
	if value == "" {
		value = "-"
	}
	return styles.LabelStyle.Render(label) + styles.ValueStyle.Render(value) + "\n"
}

func (s *settingsScreen) deletionDialog() string {
	st := s.deletion.State()

	var sb strings.Builder
	sb.WriteString(styles.StatusCritical.Render(icons.Warning.String() + " Delete account"))
	sb.WriteString("\n\n")
	switch st.Phase {
	case feature.DeletionCounting:
		sb.WriteString(st.Label())
		sb.WriteString("\n\n")
		sb.WriteString(styles.KeyStyle.Render("enter") + " Delete now   " + styles.KeyStyle.Render("esc") + " Cancel")
	case feature.DeletionVerifying:
		sb.WriteString("Checking password...")
	case feature.DeletionDeleting, feature.DeletionDone:
		sb.WriteString("Deleting account...")
	default:
		sb.WriteString("This permanently removes your account. Enter your password to continue.")
		sb.WriteString("\n\n")
		sb.WriteString(s.input.View())
		if st.Err != "" {
			sb.WriteString("\n")
			sb.WriteString(styles.StatusCritical.Render(st.Err))
		}
	}
	return styles.Dialog.Render(sb.String())
}

func (s *settingsScreen) Shortcuts() []string {
	switch {
	case s.form != nil:
		return []string{"enter Next", "esc Cancel"}
	case s.deleting:
		return []string{"enter Confirm", "esc Cancel"}
	}
	return []string{"c Company", "p Profile", "w Password", "D Delete account", "r Reload"}
}

func (s *settingsScreen) Capturing() bool { return s.form != nil || s.deleting }

// Close cancels a pending deletion so leaving the screen never deletes
func (s *settingsScreen) Close() {
	s.cancelDeletion()
}
