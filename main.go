// ABOUTME: Entry point for the interntrack CLI
// ABOUTME: Admin client for an InternTrack backend, as commands or an interactive panel

package main

import (
	"os"

	"github.com/interntrack/admin-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(2)
	}
}
