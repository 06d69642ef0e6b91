// ABOUTME: Sign-in, registration, and forced password change screens
// ABOUTME: Each wraps one huh form and lets the gate move on once the session changes

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/interntrack/admin-cli/internal/tui/forms"
	"github.com/interntrack/admin-cli/internal/tui/styles"
)

type authMode int

const (
	authLogin authMode = iota
	authRegister
	authForce
)

const opAuth = "auth"

type authScreen struct {
	env  *env
	auth *feature.Auth
	mode authMode

	login    forms.LoginValues
	register forms.RegisterValues
	password forms.PasswordValues
	form     *forms.Form
	busy     bool
}

func newAuthScreen(e *env, auth *feature.Auth, mode authMode) *authScreen {
	s := &authScreen{env: e, auth: auth, mode: mode}
	switch mode {
	case authRegister:
		s.form = forms.Register(&s.register)
	case authForce:
		s.form = forms.ForceChange(&s.password)
	default:
		s.form = forms.Login(&s.login)
	}
	return s
}

func (s *authScreen) Init() tea.Cmd {
	return s.form.Init()
}

func (s *authScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case forms.SubmittedMsg:
		if s.busy {
			return nil
		}
		s.busy = true
		s.form.ClearError()
		return s.submit()

	case forms.CanceledMsg:
		if s.mode == authRegister {
			return navigate(gate.PathLogin)
		}
		return nil

	case doneMsg:
		if msg.id != opAuth {
			return nil
		}
		s.busy = false
		if msg.err == nil {
			return nil
		}
		s.login.Password = ""
		return s.form.Fail(msg.err, s.fallback())

	case tea.KeyMsg:
		if s.mode == authLogin && msg.String() == "ctrl+r" {
			return navigate(gate.PathRegister)
		}
		if s.busy {
			return nil
		}
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return cmd
}

func (s *authScreen) submit() tea.Cmd {
	switch s.mode {
	case authRegister:
		reg := client.Registration{
			Name:                 s.register.Name,
			Email:                s.register.Email,
			Password:             s.register.Password,
			PasswordConfirmation: s.register.Confirm,
		}
		return s.env.run(opAuth, func(ctx context.Context) error {
			_, err := s.auth.Register(ctx, reg)
			return err
		})
	case authForce:
		pw, confirm := s.password.Password, s.password.Confirm
		return s.env.run(opAuth, func(ctx context.Context) error {
			_, err := s.auth.ForceChangePassword(ctx, pw, confirm)
			return err
		})
	default:
		creds := client.Credentials{Email: s.login.Email, Password: s.login.Password, Remember: s.login.Remember}
		return s.env.run(opAuth, func(ctx context.Context) error {
			_, err := s.auth.Login(ctx, creds)
			return err
		})
	}
}

func (s *authScreen) fallback() string {
	switch s.mode {
	case authRegister:
		return "Registration failed"
	case authForce:
		return "Password update failed"
	default:
		return "Login failed"
	}
}

func (s *authScreen) title() string {
	switch s.mode {
	case authRegister:
		return "Create an account"
	case authForce:
		return "Choose a new password"
	default:
		return "Sign in"
	}
}

func (s *authScreen) View(width, height int) string {
	name := ""
	if s.env.deps.Branding != nil {
		name = s.env.deps.Branding.Name()
	}
	body := s.form.View()
	if s.busy {
		body += "\n" + styles.Subtitle.Render("Please wait...")
	}
	return centered(width, height,
		styles.Title.Render(name)+"\n"+styles.Subtitle.Render(s.title()),
		styles.Panel.Width(min(width-4, 60)).Render(body),
	)
}

func (s *authScreen) Shortcuts() []string {
	switch s.mode {
	case authRegister:
		return []string{"enter Submit", "esc Back"}
	case authLogin:
		return []string{"enter Submit", "ctrl+r Register"}
	default:
		return []string{"enter Submit"}
	}
}

func (s *authScreen) Capturing() bool { return true }
func (s *authScreen) Close()          {}
