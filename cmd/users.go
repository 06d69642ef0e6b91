// ABOUTME: User management commands for the interntrack CLI
// ABOUTME: List, promote, demote, create accounts, and download the users report

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/interntrack/admin-cli/internal/listing"
	"github.com/spf13/cobra"
)

var (
	userListFlags   tableFlags
	userReportFlags tableFlags

	userText    = []flagField{{feature.UserSearch, "search", "Search name or email"}}
	userSelects = []flagField{
		{feature.UserRole, "role", "Role: user, admin, super_admin"},
		{feature.UserStatus, "status", "Status: " + strings.Join(feature.UserStatuses, ", ")},
	}

	createUser client.NewUser
	createRole string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
	Long: `Manage user accounts. These commands are meant for super admins; the
backend rejects them for everyone else.`,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		return runUsersList(ctx, rt, w, userListFlags.filters(), userListFlags.page)
	}),
}

var usersPromoteCmd = &cobra.Command{
	Use:   "promote ID",
	Short: "Promote a user to admin",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(ctx context.Context, rt *runtime, w io.Writer) int {
			return runChangeRole(ctx, rt, w, args[0], feature.Promote)
		})(cmd, args)
	},
}

var usersDemoteCmd = &cobra.Command{
	Use:   "demote ID",
	Short: "Demote an admin to user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(ctx context.Context, rt *runtime, w io.Writer) int {
			return runChangeRole(ctx, rt, w, args[0], feature.Demote)
		})(cmd, args)
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account on behalf of someone",
	Long: `Create an account. The password is prompted for when --password is
omitted. The new user is asked to change it on first sign-in.`,
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		u := createUser
		u.Role = client.Role(createRole)
		return runUsersCreate(ctx, rt, w, u)
	}),
}

var usersReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Download the users report",
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		if code := rt.authorize(ctx, w, gate.PathUsers); code != 0 {
			return code
		}
		s := feature.NewUsers(rt.deps)
		defer s.Close()
		return reportTable(ctx, rt, w, s.Table, userReportFlags.filters())
	}),
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersPromoteCmd, usersDemoteCmd, usersCreateCmd, usersReportCmd)

	userListFlags.register(usersListCmd, userText, userSelects, false, true)
	userReportFlags.register(usersReportCmd, userText, userSelects, false, false)

	f := usersCreateCmd.Flags()
	f.StringVar(&createUser.Name, "name", "", "Display name (required)")
	f.StringVar(&createUser.Email, "email", "", "Email (required)")
	f.StringVar(&createUser.Password, "password", "", "Initial password (prompted if omitted)")
	f.StringVar(&createRole, "role", string(client.RoleUser), "Role: user or admin")
	usersCreateCmd.MarkFlagRequired("name")
	usersCreateCmd.MarkFlagRequired("email")
}

func runUsersList(ctx context.Context, rt *runtime, w io.Writer, f feature.TableFilters, page int) int {
	if code := rt.authorize(ctx, w, gate.PathUsers); code != 0 {
		return code
	}
	s := feature.NewUsers(rt.deps)
	defer s.Close()

	st, code := listTable(ctx, rt, w, s.Table, f, page)
	if code != 0 {
		return code
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(listJSON(st)))
		return 0
	}
	fmt.Fprintln(w, formatUsersHuman(st))
	return 0
}

func formatUsersHuman(st listing.State[client.User]) string {
	if len(st.Rows) == 0 {
		return formatPageFooter(st)
	}
	rows := make([][]string, 0, len(st.Rows))
	for _, u := range st.Rows {
		status := u.Status
		if status == "" {
			status = "-"
		}
		rows = append(rows, []string{strconv.Itoa(u.ID), u.Name, u.Email, string(u.Role), status})
	}
	return formatTable([]string{"ID", "Name", "Email", "Role", "Status"}, rows) + "\n" + formatPageFooter(st)
}

func runChangeRole(ctx context.Context, rt *runtime, w io.Writer, arg string, action feature.RoleAction) int {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		fmt.Fprintf(w, "Error: invalid user id %q\n", arg)
		return 2
	}
	if code := rt.authorize(ctx, w, gate.PathUsers); code != 0 {
		return code
	}
	s := feature.NewUsers(rt.deps)
	defer s.Close()

	if err := s.ChangeRole(ctx, id, action); err != nil {
		return rt.fail(w, err)
	}
	return rt.succeed(w)
}

func runUsersCreate(ctx context.Context, rt *runtime, w io.Writer, u client.NewUser) int {
	if code := rt.authorize(ctx, w, gate.PathUsers); code != 0 {
		return code
	}
	if u.Role != client.RoleUser && u.Role != client.RoleAdmin {
		fmt.Fprintf(w, "Error: role must be user or admin, got %q\n", u.Role)
		return 2
	}
	password, err := promptIfEmpty(w, u.Password, "Initial password: ")
	if err != nil {
		return rt.fail(w, err)
	}
	u.Password = password

	s := feature.NewUsers(rt.deps)
	defer s.Close()
	created, err := s.Register(ctx, u)
	if err != nil {
		return rt.fail(w, err)
	}
	if IsJSONOutput() && created != nil {
		fmt.Fprintln(w, formatJSON(created))
		return 0
	}
	return rt.succeed(w)
}
