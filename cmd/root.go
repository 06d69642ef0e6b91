// ABOUTME: Root command for the interntrack CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"github.com/interntrack/admin-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
	configFile string
	stateDir   string
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "interntrack",
	Short: "Admin client for InternTrack",
	Long: `interntrack is the administrative client for an InternTrack backend.

It manages interns, projects, users, audit logs, and company settings from
the command line, or interactively with the tui command.

Exit codes:
  0 - Success
  1 - Rejected (validation, wrong password, sign-in required)
  2 - Error (connectivity, backend failure, invalid configuration)

Environment Variables:
  INTERNTRACK_API_URL    Backend URL (default: ` + config.DefaultAPIURL + `)
  INTERNTRACK_STATE_DIR  Where the session token and preferences are kept
  INTERNTRACK_LOG_LEVEL  debug, info, warn, error
  INTERNTRACK_NERD_FONTS auto, always, never
  INTERNTRACK_ENV        Set to dev to load a .env file`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides INTERNTRACK_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/interntrack/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory for the session token and preferences")
}

// loadConfig resolves the effective configuration for this invocation
func loadConfig() (*config.Config, error) {
	return config.Load(config.Overrides{
		ConfigFile: configFile,
		APIURL:     apiURL,
		StateDir:   stateDir,
	})
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
