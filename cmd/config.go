// ABOUTME: Config command for the interntrack CLI
// ABOUTME: Prints the effective settings after flags, environment, and file are merged

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/interntrack/admin-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect client configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Run: run(func(_ context.Context, rt *runtime, w io.Writer) int {
		return runConfigShow(rt.cfg, w)
	}),
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

// runConfigShow prints cfg in the config file format and returns exit code
func runConfigShow(cfg *config.Config, w io.Writer) int {
	out, err := cfg.YAML()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if cfg.File != "" {
		fmt.Fprintf(w, "# read from %s\n", cfg.File)
	} else {
		fmt.Fprintln(w, "# no config file found, using environment and defaults")
	}
	fmt.Fprint(w, string(out))
	return 0
}
