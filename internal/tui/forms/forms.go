// ABOUTME: huh forms embedded as bubbletea models
// ABOUTME: Sign-in, account, company, intern, and list filter forms sharing one theme

package forms

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/listing"
	"github.com/interntrack/admin-cli/internal/tui/styles"
	"github.com/interntrack/admin-cli/internal/tui/widgets"
)

// SubmittedMsg is sent when a form completes
type SubmittedMsg struct {
	ID string
}

// CanceledMsg is sent when the user leaves a form with esc
type CanceledMsg struct {
	ID string
}

// Form wraps a huh form so it can be rebuilt after a failed submit.
// Field values live in caller-owned structs bound by pointer and survive
// the rebuild.
type Form struct {
	id         string
	build      func() *huh.Form
	form       *huh.Form
	cancelable bool
	err        string
	width      int
}

func newForm(id string, cancelable bool, build func() *huh.Form) *Form {
	f := &Form{id: id, build: build, cancelable: cancelable}
	f.form = build()
	return f
}

// ID names the form in SubmittedMsg and CanceledMsg
func (f *Form) ID() string { return f.id }

func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" && f.cancelable {
			id := f.id
			return f, func() tea.Msg { return CanceledMsg{ID: id} }
		}
	}

	model, cmd := f.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		f.form = form
	}
	if f.form.State == huh.StateCompleted {
		id := f.id
		return f, func() tea.Msg { return SubmittedMsg{ID: id} }
	}
	return f, cmd
}

// Completed reports whether the form was submitted and not reset since
func (f *Form) Completed() bool {
	return f.form.State == huh.StateCompleted
}

// Fail shows err under the form and reopens it for another attempt
func (f *Form) Fail(err error, fallback string) tea.Cmd {
	f.err = ErrorText(err, fallback)
	return f.Reset()
}

// Reset reopens the form keeping the entered values
func (f *Form) Reset() tea.Cmd {
	f.form = f.build()
	if f.width > 0 {
		f.form = f.form.WithWidth(f.width)
	}
	return f.form.Init()
}

// ClearError removes the message set by Fail
func (f *Form) ClearError() { f.err = "" }

func (f *Form) View() string {
	var sb strings.Builder
	sb.WriteString(f.form.View())
	if f.err != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusCritical.Render(f.err))
	}
	return sb.String()
}

// ErrorText turns a submit error into the line shown under a form.
// Field errors are listed in key order.
func ErrorText(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if vErr, ok := client.AsValidation(err); ok && len(vErr.Fields) > 0 {
		keys := make([]string, 0, len(vErr.Fields))
		for k := range vErr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msgs := make([]string, 0, len(keys))
		for _, k := range keys {
			msgs = append(msgs, vErr.Fields[k])
		}
		return strings.Join(msgs, "\n")
	}
	return client.Message(err, fallback)
}

// createTheme returns the huh theme in the app palette
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(styles.Surface).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func strengthDescription(password *string) func() string {
	return func() string {
		score := feature.PasswordStrength(*password)
		return widgets.StrengthMeter(score, feature.StrengthLabel(score))
	}
}

// LoginValues are the sign-in form fields
type LoginValues struct {
	Email    string
	Password string
	Remember bool
}

// Login builds the sign-in form
func Login(v *LoginValues) *Form {
	return newForm("login", false, func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Email").
					Placeholder("you@company.com").
					Value(&v.Email).
					Validate(required("Email")),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&v.Password).
					Validate(required("Password")),
				huh.NewConfirm().
					Title("Remember me").
					Affirmative("Yes").
					Negative("No").
					Value(&v.Remember),
			).Title("Sign in").
				Description("ctrl+r to create an account"),
		).WithTheme(createTheme())
	})
}

// RegisterValues are the self-registration fields
type RegisterValues struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// Register builds the self-registration form
func Register(v *RegisterValues) *Form {
	return newForm("register", true, func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Name").
					Value(&v.Name).
					Validate(required("Name")),
				huh.NewInput().
					Title("Email").
					Value(&v.Email).
					Validate(required("Email")),
				huh.NewInput().
					Title("Password").
					DescriptionFunc(strengthDescription(&v.Password), &v.Password).
					EchoMode(huh.EchoModePassword).
					Value(&v.Password),
				huh.NewInput().
					Title("Confirm password").
					EchoMode(huh.EchoModePassword).
					Value(&v.Confirm),
			).Title("Create an account").
				Description("esc to go back to sign in"),
		).WithTheme(createTheme())
	})
}

// PasswordValues are the password change fields; Current is unused by the
// forced change
type PasswordValues struct {
	Current  string
	Password string
	Confirm  string
}

// ForceChange builds the first sign-in password form
func ForceChange(v *PasswordValues) *Form {
	return newForm("force-change", false, func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("New password").
					DescriptionFunc(strengthDescription(&v.Password), &v.Password).
					EchoMode(huh.EchoModePassword).
					Value(&v.Password),
				huh.NewInput().
					Title("Confirm new password").
					EchoMode(huh.EchoModePassword).
					Value(&v.Confirm),
			).Title("Change your password").
				Description("Your account was created with a temporary password. Choose a new one to continue."),
		).WithTheme(createTheme())
	})
}

// ChangePassword builds the settings password form
func ChangePassword(v *PasswordValues) *Form {
	return newForm("password", true, func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Current password").
					EchoMode(huh.EchoModePassword).
					Value(&v.Current),
				huh.NewInput().
					Title("New password").
					DescriptionFunc(strengthDescription(&v.Password), &v.Password).
					EchoMode(huh.EchoModePassword).
					Value(&v.Password),
				huh.NewInput().
					Title("Confirm new password").
					EchoMode(huh.EchoModePassword).
					Value(&v.Confirm),
			).Title("Change password"),
		).WithTheme(createTheme())
	})
}

// ProfileValues are the signed-in user's editable fields
type ProfileValues struct {
	Name  string
	Email string
}

// Profile builds the own-profile form
func Profile(v *ProfileValues) *Form {
	return newForm("profile", true, func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Name").Value(&v.Name).Validate(required("Name")),
				huh.NewInput().Title("Email").Value(&v.Email).Validate(required("Email")),
			).Title("Your profile"),
		).WithTheme(createTheme())
	})
}

// NewUserValues are the fields of an account created by an administrator
type NewUserValues struct {
	Name     string
	Email    string
	Role     string
	Password string
}

// NewUser builds the create-user form. Super admins are only made by
// promotion, so the role choice stops at admin.
func NewUser(v *NewUserValues) *Form {
	return newForm("new-user", true, func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Name").Value(&v.Name).Validate(required("Name")),
				huh.NewInput().Title("Email").Value(&v.Email).Validate(required("Email")),
				huh.NewSelect[string]().
					Title("Role").
					Options(
						huh.NewOption("User", string(client.RoleUser)),
						huh.NewOption("Admin", string(client.RoleAdmin)),
					).
					Value(&v.Role),
				huh.NewInput().
					Title("Password").
					DescriptionFunc(strengthDescription(&v.Password), &v.Password).
					EchoMode(huh.EchoModePassword).
					Value(&v.Password),
			).Title("Create user"),
		).WithTheme(createTheme())
	})
}

// CompanyValues are the company form fields plus an optional logo path
type CompanyValues struct {
	client.Company
	LogoPath string
}

// validateLogo accepts an empty path or a readable file under the size limit
func validateLogo(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s", path)
	}
	if info.Size() > feature.MaxLogoSize {
		return fmt.Errorf("Logo must be less than 2MB")
	}
	return nil
}

// Company builds the company profile form
func Company(v *CompanyValues) *Form {
	return newForm("company", true, func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Company name").Value(&v.Name).Validate(required("Company name")),
				huh.NewInput().Title("System name").Description("Shown in the header").Value(&v.SystemName),
				huh.NewInput().Title("Email").Value(&v.Email),
				huh.NewInput().Title("Phone").Value(&v.Phone),
			).Title("Company profile"),
			huh.NewGroup(
				huh.NewInput().Title("Website").Value(&v.Website),
				huh.NewText().Title("Address").Lines(3).Value(&v.Address),
				huh.NewInput().Title("Tax ID").Value(&v.TaxID),
				huh.NewInput().Title("Industry").Value(&v.Industry),
				huh.NewInput().
					Title("Logo file").
					Description("Path to an image under 2MB; leave empty to keep the current logo").
					Value(&v.LogoPath).
					Validate(validateLogo),
			).Title("Company profile"),
		).WithTheme(createTheme())
	})
}

// EvaluationValues are the performance tab fields
type EvaluationValues struct {
	Performance string
	Recommended bool
	Notes       string
}

func validateScore(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 || v > 100 {
		return fmt.Errorf("Performance must be between 0 and 100")
	}
	return nil
}

// Score parses the performance field
func (v EvaluationValues) Score() int {
	n, _ := strconv.Atoi(strings.TrimSpace(v.Performance))
	return n
}

// Evaluation builds the performance form
func Evaluation(v *EvaluationValues) *Form {
	return newForm("evaluation", true, func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Performance").
					Description("Score from 0 to 100").
					CharLimit(3).
					Value(&v.Performance).
					Validate(validateScore),
				huh.NewConfirm().
					Title("Recommended").
					Affirmative("Yes").
					Negative("No").
					Value(&v.Recommended),
				huh.NewText().Title("Notes").Lines(4).Value(&v.Notes),
			).Title("Evaluation"),
		).WithTheme(createTheme())
	})
}

// EndDate builds the internship end date form
func EndDate(to *string) *Form {
	return newForm("end-date", true, func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("End date").
					Description("YYYY-MM-DD; marks the internship completed").
					Placeholder("2026-06-30").
					Value(to).
					Validate(required("End date")),
			).Title("Complete internship"),
		).WithTheme(createTheme())
	})
}

// InternValues are the add-intern and edit-intern fields. CVPath and
// PhotoPath name local files; Skills is comma separated.
type InternValues struct {
	Name        string
	Email       string
	Phone       string
	Institution string
	Position    string
	From        string
	To          string
	Skills      string
	CVPath      string
	PhotoPath   string
}

// SkillList splits the skills field
func (v InternValues) SkillList() []string {
	var out []string
	for _, s := range strings.Split(v.Skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func validateFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read %s", path)
	}
	return nil
}

func fileFields(v *InternValues) []huh.Field {
	return []huh.Field{
		huh.NewInput().Title("CV file").Description("Optional path to a PDF").Value(&v.CVPath).Validate(validateFile),
		huh.NewInput().Title("Photo file").Description("Optional path to an image").Value(&v.PhotoPath).Validate(validateFile),
	}
}

// AddIntern builds the add-intern form
func AddIntern(v *InternValues) *Form {
	return newForm("add-intern", true, func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Name").Value(&v.Name).Validate(required("Name")),
				huh.NewInput().Title("Email").Value(&v.Email).Validate(required("Email")),
				huh.NewInput().Title("Phone").Value(&v.Phone),
				huh.NewInput().Title("Institution").Value(&v.Institution),
				huh.NewInput().Title("Position").Value(&v.Position),
			).Title("Add intern"),
			huh.NewGroup(
				huh.NewInput().Title("From").Placeholder("YYYY-MM-DD").Value(&v.From),
				huh.NewInput().Title("To").Placeholder("YYYY-MM-DD, empty while in progress").Value(&v.To),
				huh.NewInput().Title("Skills").Placeholder("Go, SQL, Figma").Value(&v.Skills),
			).Title("Internship"),
			huh.NewGroup(fileFields(v)...).Title("Attachments"),
		).WithTheme(createTheme())
	})
}

// EditIntern builds the profile tab edit form; empty fields stay unchanged
func EditIntern(v *InternValues) *Form {
	return newForm("edit-intern", true, func() *huh.Form {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Name").Value(&v.Name),
				huh.NewInput().Title("Email").Value(&v.Email),
				huh.NewInput().Title("Phone").Value(&v.Phone),
				huh.NewInput().Title("Institution").Value(&v.Institution),
				huh.NewInput().Title("Position").Value(&v.Position),
			).Title("Edit profile"),
			huh.NewGroup(fileFields(v)...).Title("Replace files"),
		).WithTheme(createTheme())
	})
}

// Uploads opens the named files. The returned close func releases every
// opened file and is safe to call when err is non-nil.
func Uploads(paths ...string) ([]*client.Upload, func(), error) {
	uploads := make([]*client.Upload, len(paths))
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for i, path := range paths {
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, closeAll, FileError(path, err)
		}
		files = append(files, f)
		uploads[i] = &client.Upload{Filename: filepath.Base(path), Content: f}
	}
	return uploads, closeAll, nil
}

// FileError reports an unreadable upload as a field error so the form stays
// open with the message
func FileError(path string, err error) error {
	reason := err
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		reason = pathErr.Err
	}
	return &client.ValidationError{
		Message: "Please fix the errors below.",
		Fields:  client.FieldErrors{"file": fmt.Sprintf("Cannot read %s: %v", filepath.Base(path), reason)},
	}
}

// FilterField is one free-text filter of a list screen
type FilterField struct {
	Key   string
	Title string
	Value string
}

// FilterValues are the filter form fields. From and To are YYYY-MM-DD.
type FilterValues struct {
	From string
	To   string
	Text []FilterField
}

// Range returns the entered dates as a list filter
func (v FilterValues) Range() listing.DateRange {
	return listing.DateRange{From: strings.TrimSpace(v.From), To: strings.TrimSpace(v.To)}
}

func validateDate(s string) error {
	return listing.DateRange{From: strings.TrimSpace(s)}.Validate()
}

// Filter builds the filter form of a list screen. Each date is checked on
// its own; the list reports a start after the end when it applies them.
func Filter(title string, v *FilterValues) *Form {
	return newForm("filter", true, func() *huh.Form {
		fields := make([]huh.Field, 0, len(v.Text)+2)
		for i := range v.Text {
			f := &v.Text[i]
			fields = append(fields, huh.NewInput().Title(f.Title).Value(&f.Value))
		}
		fields = append(fields,
			huh.NewInput().Title("From").Placeholder("YYYY-MM-DD").Value(&v.From).Validate(validateDate),
			huh.NewInput().Title("To").Placeholder("YYYY-MM-DD").Value(&v.To).Validate(validateDate),
		)
		return huh.NewForm(huh.NewGroup(fields...).Title(title)).WithTheme(createTheme())
	})
}
