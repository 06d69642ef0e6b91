// ABOUTME: Sign-in commands for the interntrack CLI
// ABOUTME: login, logout, register, whoami, and the forced password change

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
	loginRemember bool

	registerName     string
	registerEmail    string
	registerPassword string

	newPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Long: `Sign in with email and password. The token is stored in the state
directory and used by every other command until logout.

The password is prompted for when --password is omitted.`,
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		return runLogin(ctx, rt, w, loginEmail, loginPassword, loginRemember)
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the session token and forget it",
	Run:   run(runLogout),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		return runRegister(ctx, rt, w, registerName, registerEmail, registerPassword)
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Run:   run(runWhoami),
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Password management",
}

var forceUpdateCmd = &cobra.Command{
	Use:   "force-update",
	Short: "Set the new password required before anything else",
	Long: `Accounts created by an administrator must choose a new password
before any other command works. The password is prompted for twice when
--password is omitted.`,
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		return runForceUpdate(ctx, rt, w, newPassword)
	}),
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd, passwordCmd)
	passwordCmd.AddCommand(forceUpdateCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted if omitted)")
	loginCmd.Flags().BoolVar(&loginRemember, "remember", false, "Ask the backend for a long-lived token")
	loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name (required)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email (required)")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (prompted if omitted)")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("email")

	forceUpdateCmd.Flags().StringVar(&newPassword, "password", "", "New password (prompted if omitted)")
}

func runLogin(ctx context.Context, rt *runtime, w io.Writer, email, password string, remember bool) int {
	if code := rt.authorize(ctx, w, gate.PathLogin); code != 0 {
		return code
	}
	password, err := promptIfEmpty(w, password, "Password: ")
	if err != nil {
		return rt.fail(w, err)
	}

	resp, err := feature.NewAuth(rt.deps).Login(ctx, client.Credentials{Email: email, Password: password, Remember: remember})
	if err != nil {
		return rt.fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(resp.User))
	} else {
		fmt.Fprintf(w, "Signed in as %s (%s)\n", resp.User.Name, resp.User.Role)
	}
	if resp.User.MustChangePassword {
		fmt.Fprintln(w, "A new password is required. Run `interntrack password force-update`.")
	}
	return 0
}

func runLogout(ctx context.Context, rt *runtime, w io.Writer) int {
	rt.session.Initialize(ctx)
	if !rt.session.Snapshot().SignedIn() {
		fmt.Fprintln(w, "Not signed in.")
		return 0
	}
	feature.NewAuth(rt.deps).Logout(ctx)
	fmt.Fprintln(w, "Signed out.")
	return 0
}

func runRegister(ctx context.Context, rt *runtime, w io.Writer, name, email, password string) int {
	if code := rt.authorize(ctx, w, gate.PathRegister); code != 0 {
		return code
	}
	confirmation := password
	if password == "" {
		var err error
		if password, err = passwordPrompt(w, "Password: "); err != nil {
			return rt.fail(w, err)
		}
		if confirmation, err = passwordPrompt(w, "Confirm password: "); err != nil {
			return rt.fail(w, err)
		}
	}

	resp, err := feature.NewAuth(rt.deps).Register(ctx, client.Registration{
		Name:                 name,
		Email:                email,
		Password:             password,
		PasswordConfirmation: confirmation,
	})
	if err != nil {
		return rt.fail(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(resp.User))
	} else {
		fmt.Fprintf(w, "Registered and signed in as %s\n", resp.User.Email)
	}
	return 0
}

func runWhoami(ctx context.Context, rt *runtime, w io.Writer) int {
	rt.session.Initialize(ctx)
	st := rt.session.Snapshot()
	if !st.SignedIn() {
		fmt.Fprintln(w, "Not signed in.")
		return 1
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(st.User))
		return 0
	}
	fmt.Fprintln(w, formatUserHuman(st.User, st.MustChangePassword, rt.api.BaseURL()))
	return 0
}

func formatUserHuman(u *client.User, mustChange bool, backend string) string {
	out := fmt.Sprintf(`Name:     %s
Email:    %s
Role:     %s
Backend:  %s`, u.Name, u.Email, u.Role, backend)
	if mustChange {
		out += "\nPassword change required"
	}
	return out
}

func runForceUpdate(ctx context.Context, rt *runtime, w io.Writer, password string) int {
	rt.session.Initialize(ctx)
	if d := gate.Decide(rt.session.Snapshot(), gate.PathForceChangePassword); d.Outcome != gate.RenderProtected {
		if d.Target == gate.PathLogin {
			return rt.authorize(ctx, w, gate.PathForceChangePassword)
		}
		fmt.Fprintln(w, "No password change is pending. Use `interntrack settings password` instead.")
		return 1
	}

	confirmation := password
	if password == "" {
		var err error
		if password, err = passwordPrompt(w, "New password: "); err != nil {
			return rt.fail(w, err)
		}
		if confirmation, err = passwordPrompt(w, "Confirm password: "); err != nil {
			return rt.fail(w, err)
		}
	}

	msg, err := feature.NewAuth(rt.deps).ForceChangePassword(ctx, password, confirmation)
	if err != nil {
		return rt.fail(w, err)
	}
	fmt.Fprintln(w, msg)
	return 0
}
