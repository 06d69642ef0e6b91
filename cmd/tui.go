// ABOUTME: TUI command for the interntrack CLI
// ABOUTME: Starts the interactive admin panel with logging redirected to a file

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/interntrack/admin-cli/internal/logger"
	"github.com/interntrack/admin-cli/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive admin panel",
	Long: `Open the interactive admin panel. Logs go to debug.log in the state
directory while the panel owns the terminal.`,
	Run: run(runTUI),
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(ctx context.Context, rt *runtime, w io.Writer) int {
	if err := logger.InitFile(rt.cfg.LogLevel, rt.cfg.LogFormat, rt.cfg.LogFile()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logger.Close()

	if err := tui.Run(ctx, rt.cfg); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return 0
}
