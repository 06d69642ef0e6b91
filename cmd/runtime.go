// ABOUTME: Per-invocation wiring shared by every command
// ABOUTME: Builds the client, session, and screen stores from config and maps outcomes to exit codes

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/interntrack/admin-cli/internal/branding"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/config"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/interntrack/admin-cli/internal/listing"
	"github.com/interntrack/admin-cli/internal/localstore"
	"github.com/interntrack/admin-cli/internal/logger"
	"github.com/interntrack/admin-cli/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runtime is everything a command needs to talk to the backend
type runtime struct {
	cfg      *config.Config
	prefs    *localstore.Store
	api      *client.Client
	session  *session.Store
	branding *branding.Store
	toaster  *listing.Toaster
	deps     feature.Deps
}

// newRuntime wires the stores for one command. Toasts never expire so the
// command can report the last one after the operation settles.
func newRuntime(cfg *config.Config) *runtime {
	prefs := localstore.New(cfg.StateDir)
	api := client.New(cfg.APIURL, client.WithTokenSource(prefs), client.WithTimeout(cfg.Timeout))
	sess := session.New(api, prefs)
	toaster := listing.NewToaster(0, nil)
	brand := branding.New(api)

	return &runtime{
		cfg:      cfg,
		prefs:    prefs,
		api:      api,
		session:  sess,
		branding: brand,
		toaster:  toaster,
		deps: feature.Deps{
			API:       api,
			Session:   sess,
			Toaster:   toaster,
			Debouncer: listing.NewDebouncer(0),
			Prefs:     prefs,
			Branding:  brand,
			ReportDir: cfg.ReportDir,
			Countdown: cfg.CountdownSeconds,
		},
	}
}

// commandFunc is the testable body of a command
type commandFunc func(ctx context.Context, rt *runtime, w io.Writer) int

// run loads config, wires a runtime, and exits with fn's code. Interrupts
// cancel ctx so in-flight requests stop.
func run(fn commandFunc) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		logger.Init(cfg.LogLevel, cfg.LogFormat, os.Stderr)

		exitCode := fn(ctx, newRuntime(cfg), os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}
}

// authorize runs the session bootstrap and asks the route gate whether path
// may be shown. It returns a non-zero exit code when the command must stop.
func (rt *runtime) authorize(ctx context.Context, w io.Writer, path string) int {
	rt.session.Initialize(ctx)
	if ctx.Err() != nil {
		fmt.Fprintln(w, "Error: interrupted")
		return 2
	}

	st := rt.session.Snapshot()
	d := gate.Decide(st, path)
	switch {
	case d.Outcome == gate.RenderProtected || d.Outcome == gate.RenderGuest:
		return 0
	case d.Target == gate.PathLogin:
		fmt.Fprintln(w, "Error: not signed in. Run `interntrack login` first.")
	case d.Target == gate.PathForceChangePassword:
		fmt.Fprintln(w, "Error: a password change is required. Run `interntrack password force-update`.")
	case gate.IsGuestPath(path) && st.User != nil:
		fmt.Fprintf(w, "Error: already signed in as %s. Run `interntrack logout` first.\n", st.User.Email)
	default:
		fmt.Fprintf(w, "Error: %s is not available\n", path)
		return 2
	}
	return 1
}

// settle waits for a list fetch and turns its outcome into an exit code
func (rt *runtime) settle(ctx context.Context, w io.Writer, done <-chan struct{}) int {
	select {
	case <-done:
	case <-ctx.Done():
		fmt.Fprintln(w, "Error: interrupted")
		return 2
	}
	if !rt.session.Snapshot().SignedIn() {
		fmt.Fprintln(w, "Error: session expired. Run `interntrack login` again.")
		return 1
	}
	if t, ok := rt.toaster.Current(); ok && t.Kind == listing.ToastError {
		fmt.Fprintf(w, "Error: %s\n", t.Message)
		return 2
	}
	return 0
}

// fail prints err and picks the exit code: rejections are 1, everything
// else is 2. Field errors are listed one per line.
func (rt *runtime) fail(w io.Writer, err error) int {
	if vErr, ok := client.AsValidation(err); ok {
		if vErr.Message != "" {
			fmt.Fprintf(w, "Error: %s\n", vErr.Message)
		} else {
			fmt.Fprintln(w, "Error: validation failed")
		}
		fields := make([]string, 0, len(vErr.Fields))
		for field := range vErr.Fields {
			fields = append(fields, field)
		}
		slices.Sort(fields)
		for _, field := range fields {
			fmt.Fprintf(w, "  %s: %s\n", field, vErr.Fields[field])
		}
		return 1
	}
	if client.IsUnauthorized(err) {
		fmt.Fprintln(w, "Error: session expired. Run `interntrack login` again.")
		return 1
	}
	if errors.Is(err, listing.ErrNothingToReport) {
		fmt.Fprintln(w, "Error: nothing to report for these filters")
		return 1
	}
	if t, ok := rt.toaster.Current(); ok && t.Kind == listing.ToastError {
		fmt.Fprintf(w, "Error: %s\n", t.Message)
		return 2
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return 2
}

// succeed prints the last success toast, if any
func (rt *runtime) succeed(w io.Writer) int {
	if t, ok := rt.toaster.Current(); ok && t.Kind == listing.ToastSuccess {
		fmt.Fprintln(w, t.Message)
	}
	return 0
}

// readPassword prompts on the terminal without echo
func readPassword(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pwBytes), nil
}

// passwordPrompt is swapped in tests
var passwordPrompt = readPassword

// promptIfEmpty returns value, or prompts for it when empty
func promptIfEmpty(w io.Writer, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	return passwordPrompt(w, prompt)
}
