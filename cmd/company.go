// ABOUTME: Company command for the interntrack CLI
// ABOUTME: Checks backend connectivity by reading the public branding profile

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/interntrack/admin-cli/internal/branding"
	"github.com/spf13/cobra"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show the public company branding",
	Long: `Fetch the public company profile. No sign-in is needed, which makes
this a quick connectivity check against the backend.`,
	Run: run(runCompany),
}

func init() {
	rootCmd.AddCommand(companyCmd)
}

// runCompany fetches the branding profile and returns exit code
func runCompany(ctx context.Context, rt *runtime, w io.Writer) int {
	company, err := rt.api.Company(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	rt.branding.Apply(company)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatCompanyJSON(rt.api.BaseURL(), rt.branding))
	} else {
		fmt.Fprintln(w, formatCompanyHuman(rt.api.BaseURL(), rt.branding))
	}
	return 0
}

// formatCompanyHuman formats the branding for human readability
func formatCompanyHuman(url string, b *branding.Store) string {
	name := ""
	if c := b.Company(); c != nil {
		name = c.Name
	}
	icon := b.IconURL()
	if icon == "" {
		icon = "(default)"
	}
	return fmt.Sprintf(`Backend:      %s
System Name:  %s
Company:      %s
Icon:         %s`, url, b.Name(), name, icon)
}

// formatCompanyJSON formats the branding as JSON
func formatCompanyJSON(url string, b *branding.Store) string {
	output := map[string]any{
		"backend":     url,
		"system_name": b.Name(),
		"icon_url":    b.IconURL(),
		"company":     b.Company(),
	}
	return formatJSON(output)
}
