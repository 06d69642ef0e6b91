// ABOUTME: Dashboard command for the interntrack CLI
// ABOUTME: Shows intern counts and the top performers

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show intern counts and top performers",
	Run:   run(runDashboard),
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// runDashboard fetches the aggregates and returns exit code
func runDashboard(ctx context.Context, rt *runtime, w io.Writer) int {
	if code := rt.authorize(ctx, w, gate.PathDashboard); code != 0 {
		return code
	}

	d := feature.NewDashboard(rt.deps)
	if err := d.Load(ctx); err != nil {
		if client.IsUnauthorized(err) {
			return rt.fail(w, err)
		}
		fmt.Fprintf(w, "Error: %s\n", d.State().Err)
		return 2
	}

	stats := d.State().Stats
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(stats))
	} else {
		fmt.Fprintln(w, formatDashboardHuman(stats))
	}
	return 0
}

// formatDashboardHuman formats the aggregates for human readability
func formatDashboardHuman(s *client.DashboardStats) string {
	out := fmt.Sprintf(`Total Interns:  %d
Active:         %d
Completed:      %d
Recommended:    %d`,
		s.TotalInterns,
		s.ActiveInterns,
		s.CompletedInterns,
		s.RecommendedInterns)

	if len(s.TopInterns) == 0 {
		return out
	}
	rows := make([][]string, 0, len(s.TopInterns))
	for i, in := range s.TopInterns {
		rows = append(rows, []string{strconv.Itoa(i + 1), in.Name, in.Position, formatScore(in.Performance)})
	}
	return out + "\n\nTop Interns\n" + formatTable([]string{"#", "Name", "Position", "Score"}, rows)
}
