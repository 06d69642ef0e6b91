// ABOUTME: Settings and account commands for the interntrack CLI
// ABOUTME: Company profile with logo, own profile, password change, and countdown account deletion

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/spf13/cobra"
)

var (
	companyFlags  client.Company
	companyLogo   string
	profileFlags  client.ProfileUpdate
	passwordFlags client.PasswordUpdate
	deletePass    string
	deleteNow     bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change account and company settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile and the company profile",
	Run:   run(runSettingsShow),
}

var settingsCompanyCmd = &cobra.Command{
	Use:   "company",
	Short: "Update the company profile",
	Long: `Update the company profile. Only the flags given are changed; the rest
keep their current values. The logo must be smaller than 2MB.`,
	Run: func(cmd *cobra.Command, args []string) {
		changed := map[string]bool{}
		for _, name := range []string{"name", "system-name", "email", "phone", "website", "address", "tax-id", "industry"} {
			changed[name] = cmd.Flags().Changed(name)
		}
		run(func(ctx context.Context, rt *runtime, w io.Writer) int {
			return runSettingsCompany(ctx, rt, w, companyFlags, changed, companyLogo)
		})(cmd, args)
	},
}

var settingsProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your name and email",
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		return runSettingsProfile(ctx, rt, w, profileFlags)
	}),
}

var settingsPasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	Long: `Change your password. Passwords not given as flags are prompted for
without echo.`,
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		return runSettingsPassword(ctx, rt, w, passwordFlags)
	}),
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage your own account",
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Permanently delete your account",
	Long: `Permanently delete your account. After the password is checked a
countdown starts; press Ctrl-C before it ends to cancel. --now skips the
countdown.`,
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		return runAccountDelete(ctx, rt, w, deletePass, deleteNow)
	}),
}

func init() {
	rootCmd.AddCommand(settingsCmd, accountCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsCompanyCmd, settingsProfileCmd, settingsPasswordCmd)
	accountCmd.AddCommand(accountDeleteCmd)

	f := settingsCompanyCmd.Flags()
	f.StringVar(&companyFlags.Name, "name", "", "Company name")
	f.StringVar(&companyFlags.SystemName, "system-name", "", "Name shown in the header")
	f.StringVar(&companyFlags.Email, "email", "", "Contact email")
	f.StringVar(&companyFlags.Phone, "phone", "", "Contact phone")
	f.StringVar(&companyFlags.Website, "website", "", "Website")
	f.StringVar(&companyFlags.Address, "address", "", "Address")
	f.StringVar(&companyFlags.TaxID, "tax-id", "", "Tax ID")
	f.StringVar(&companyFlags.Industry, "industry", "", "Industry")
	f.StringVar(&companyLogo, "logo", "", "Path to a new logo image")

	settingsProfileCmd.Flags().StringVar(&profileFlags.Name, "name", "", "New display name")
	settingsProfileCmd.Flags().StringVar(&profileFlags.Email, "email", "", "New email")

	settingsPasswordCmd.Flags().StringVar(&passwordFlags.CurrentPassword, "current", "", "Current password")
	settingsPasswordCmd.Flags().StringVar(&passwordFlags.Password, "password", "", "New password")

	accountDeleteCmd.Flags().StringVar(&deletePass, "password", "", "Your password (prompted if omitted)")
	accountDeleteCmd.Flags().BoolVar(&deleteNow, "now", false, "Delete without waiting for the countdown")
}

// loadSettings authorizes and fetches the settings screen
func loadSettings(ctx context.Context, rt *runtime, w io.Writer) (*feature.Settings, int) {
	if code := rt.authorize(ctx, w, gate.PathSettings); code != 0 {
		return nil, code
	}
	s := feature.NewSettings(rt.deps)
	if err := s.Load(ctx); err != nil {
		if client.IsUnauthorized(err) {
			return nil, rt.fail(w, err)
		}
		fmt.Fprintf(w, "Error: %s\n", s.State().Err)
		return nil, 2
	}
	return s, 0
}

func runSettingsShow(ctx context.Context, rt *runtime, w io.Writer) int {
	s, code := loadSettings(ctx, rt, w)
	if code != 0 {
		return code
	}
	st := s.State()
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]any{"user": st.User, "company": st.Company}))
		return 0
	}
	fmt.Fprintln(w, formatSettingsHuman(st))
	return 0
}

func formatSettingsHuman(st feature.SettingsState) string {
	out := "Profile\n"
	if u := st.User; u != nil {
		out += fmt.Sprintf("  Name:   %s\n  Email:  %s\n  Role:   %s\n", u.Name, u.Email, u.Role)
	}
	out += "\nCompany\n"
	c := st.Company
	if c == nil {
		return out + "  (not set up)"
	}
	fields := []struct{ label, value string }{
		{"Name", c.Name},
		{"System Name", c.SystemName},
		{"Email", c.Email},
		{"Phone", c.Phone},
		{"Website", c.Website},
		{"Address", c.Address},
		{"Tax ID", c.TaxID},
		{"Industry", c.Industry},
		{"Logo", c.LogoURL},
	}
	for _, f := range fields {
		value := f.value
		if value == "" {
			value = "-"
		}
		out += fmt.Sprintf("  %-12s %s\n", f.label+":", value)
	}
	return out[:len(out)-1]
}

// mergeCompany overlays the changed flags on the current profile
func mergeCompany(current *client.Company, edit client.Company, changed map[string]bool) client.Company {
	var out client.Company
	if current != nil {
		out = *current
	}
	set := func(flag string, dst *string, v string) {
		if changed[flag] {
			*dst = v
		}
	}
	set("name", &out.Name, edit.Name)
	set("system-name", &out.SystemName, edit.SystemName)
	set("email", &out.Email, edit.Email)
	set("phone", &out.Phone, edit.Phone)
	set("website", &out.Website, edit.Website)
	set("address", &out.Address, edit.Address)
	set("tax-id", &out.TaxID, edit.TaxID)
	set("industry", &out.Industry, edit.Industry)
	return out
}

func runSettingsCompany(ctx context.Context, rt *runtime, w io.Writer, edit client.Company, changed map[string]bool, logoPath string) int {
	s, code := loadSettings(ctx, rt, w)
	if code != 0 {
		return code
	}

	e := feature.CompanyEdit{Company: mergeCompany(s.State().Company, edit, changed)}
	if logoPath != "" {
		info, err := os.Stat(logoPath)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		file, err := os.Open(logoPath)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		defer file.Close()
		e.Logo = &client.Upload{Filename: filepath.Base(logoPath), Content: file}
		e.Size = info.Size()
	}

	company, err := s.UpdateCompany(ctx, e)
	if err != nil {
		return rt.fail(w, err)
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(company))
		return 0
	}
	return rt.succeed(w)
}

func runSettingsProfile(ctx context.Context, rt *runtime, w io.Writer, p client.ProfileUpdate) int {
	s, code := loadSettings(ctx, rt, w)
	if code != 0 {
		return code
	}
	if u := s.State().User; u != nil {
		if p.Name == "" {
			p.Name = u.Name
		}
		if p.Email == "" {
			p.Email = u.Email
		}
	}
	if err := s.UpdateProfile(ctx, p); err != nil {
		return rt.fail(w, err)
	}
	return rt.succeed(w)
}

func runSettingsPassword(ctx context.Context, rt *runtime, w io.Writer, u client.PasswordUpdate) int {
	if code := rt.authorize(ctx, w, gate.PathSettings); code != 0 {
		return code
	}

	var err error
	if u.CurrentPassword, err = promptIfEmpty(w, u.CurrentPassword, "Current password: "); err != nil {
		return rt.fail(w, err)
	}
	if u.Password == "" {
		if u.Password, err = passwordPrompt(w, "New password: "); err != nil {
			return rt.fail(w, err)
		}
		if u.PasswordConfirmation, err = passwordPrompt(w, "Confirm new password: "); err != nil {
			return rt.fail(w, err)
		}
	} else {
		u.PasswordConfirmation = u.Password
	}
	fmt.Fprintf(w, "Password strength: %s\n", feature.StrengthLabel(feature.PasswordStrength(u.Password)))

	s := feature.NewSettings(rt.deps)
	if err := s.UpdatePassword(ctx, u); err != nil {
		return rt.fail(w, err)
	}
	return rt.succeed(w)
}

func runAccountDelete(ctx context.Context, rt *runtime, w io.Writer, password string, now bool) int {
	if code := rt.authorize(ctx, w, gate.PathSettings); code != 0 {
		return code
	}
	password, err := promptIfEmpty(w, password, "Password: ")
	if err != nil {
		return rt.fail(w, err)
	}

	deps := rt.deps
	changes := make(chan struct{}, 1)
	deps.OnChange = func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}
	a := feature.NewAccountDeletion(deps)

	done, err := a.Verify(ctx, password)
	if err != nil {
		if msg := a.State().Err; msg != "" {
			fmt.Fprintf(w, "Error: %s\n", msg)
			return 1
		}
		return rt.fail(w, err)
	}
	shown := -1
	if now {
		a.DeleteNow()
	} else if st := a.State(); st.Phase == feature.DeletionCounting {
		shown = st.Remaining
		fmt.Fprintln(w, st.Label())
	}

	interrupted := ctx.Done()
	for {
		select {
		case err := <-done:
			if err != nil {
				fmt.Fprintf(w, "Error: %s\n", a.State().Err)
				return 2
			}
			fmt.Fprintln(w, "Account deleted.")
			return 0
		case <-changes:
			if st := a.State(); st.Phase == feature.DeletionCounting && st.Remaining != shown {
				shown = st.Remaining
				fmt.Fprintln(w, st.Label())
			}
		case <-interrupted:
			interrupted = nil
			if a.Cancel() {
				fmt.Fprintln(w, "Deletion canceled.")
				return 1
			}
			// The request is already in flight; wait for its outcome.
		}
	}
}
