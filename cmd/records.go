// ABOUTME: Project and audit log commands for the interntrack CLI
// ABOUTME: Filtered, sorted listing and PDF reports over the shared table flags

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

// tableFlags binds a table screen's filters to command flags
type tableFlags struct {
	text     map[string]*string
	selects  map[string]*string
	from, to string
	sort     string
	page     int
}

type flagField struct{ name, flag, usage string }

func (f *tableFlags) register(cmd *cobra.Command, text, selects []flagField, dates, withPage bool) {
	f.text = map[string]*string{}
	f.selects = map[string]*string{}
	for _, field := range text {
		f.text[field.name] = cmd.Flags().String(field.flag, "", field.usage)
	}
	for _, field := range selects {
		f.selects[field.name] = cmd.Flags().String(field.flag, "", field.usage)
	}
	if dates {
		cmd.Flags().StringVar(&f.from, "from", "", "Created on or after (YYYY-MM-DD)")
		cmd.Flags().StringVar(&f.to, "to", "", "Created on or before (YYYY-MM-DD)")
	}
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort column, prefix with - for descending (e.g. -created_at)")
	if withPage {
		cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
	}
}

func (f *tableFlags) filters() feature.TableFilters {
	out := feature.TableFilters{Text: map[string]string{}, Select: map[string]string{}}
	for name, v := range f.text {
		out.Text[name] = *v
	}
	for name, v := range f.selects {
		out.Select[name] = *v
	}
	out.Dates = listing.DateRange{From: f.from, To: f.to}
	out.Sort = parseSort(f.sort)
	return out
}

// parseSort reads "key" as ascending and "-key" as descending
func parseSort(raw string) listing.Sort {
	if raw == "" {
		return listing.Sort{}
	}
	if key, ok := strings.CutPrefix(raw, "-"); ok {
		return listing.Sort{Key: key, Direction: listing.Desc}
	}
	return listing.Sort{Key: raw, Direction: listing.Asc}
}

// checkSort rejects sort columns the screen does not offer
func checkSort[T any](w io.Writer, s *feature.Table[T], sort listing.Sort) int {
	if !sort.Active() {
		return 0
	}
	for _, key := range s.SortKeys() {
		if key == sort.Key {
			return 0
		}
	}
	fmt.Fprintf(w, "Error: cannot sort by %q (choose from %s)\n", sort.Key, strings.Join(s.SortKeys(), ", "))
	return 2
}

// listTable loads one page of a table screen
func listTable[T any](ctx context.Context, rt *runtime, w io.Writer, s *feature.Table[T], f feature.TableFilters, page int) (listing.State[T], int) {
	if code := checkSort(w, s, f.Sort); code != 0 {
		return listing.State[T]{}, code
	}
	stop := context.AfterFunc(ctx, s.Close)
	defer stop()
	if code := rt.settle(ctx, w, s.SetFilters(f, max(page, 1))); code != 0 {
		return listing.State[T]{}, code
	}
	return s.List().State(), 0
}

// reportTable applies the filters and saves the screen's report
func reportTable[T any](ctx context.Context, rt *runtime, w io.Writer, s *feature.Table[T], f feature.TableFilters) int {
	if code := checkSort(w, s, f.Sort); code != 0 {
		return code
	}
	if code := rt.settle(ctx, w, s.SetFilters(f, 1)); code != 0 {
		return code
	}
	path, err := s.Report(ctx)
	if err != nil {
		return rt.fail(w, err)
	}
	printReport(w, path)
	return 0
}

var (
	projectListFlags   tableFlags
	projectReportFlags tableFlags
	auditListFlags     tableFlags
	auditReportFlags   tableFlags

	projectText = []flagField{
		{feature.ProjectSearch, "search", "Free text search"},
		{feature.ProjectInternName, "intern", "Filter by intern name"},
	}
	auditText    = []flagField{{feature.AuditSearch, "search", "Search user or event"}}
	auditSelects = []flagField{{feature.AuditEvent, "event", "Event: " + strings.Join(feature.AuditEvents, ", ")}}
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Browse intern projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		return runProjectsList(ctx, rt, w, projectListFlags.filters(), projectListFlags.page)
	}),
}

var projectsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Download the projects report",
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		if code := rt.authorize(ctx, w, gate.PathProjects); code != 0 {
			return code
		}
		s := feature.NewProjects(rt.deps)
		defer s.Close()
		return reportTable(ctx, rt, w, s, projectReportFlags.filters())
	}),
}

var auditLogsCmd = &cobra.Command{
	Use:   "auditlogs",
	Short: "Browse the audit trail",
}

var auditLogsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit log entries, newest first",
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		return runAuditLogsList(ctx, rt, w, auditListFlags.filters(), auditListFlags.page)
	}),
}

var auditLogsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Download the audit log report",
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		if code := rt.authorize(ctx, w, gate.PathAuditLogs); code != 0 {
			return code
		}
		s := feature.NewAuditLogs(rt.deps)
		defer s.Close()
		return reportTable(ctx, rt, w, s, auditReportFlags.filters())
	}),
}

func init() {
	rootCmd.AddCommand(projectsCmd, auditLogsCmd)
	projectsCmd.AddCommand(projectsListCmd, projectsReportCmd)
	auditLogsCmd.AddCommand(auditLogsListCmd, auditLogsReportCmd)

	projectListFlags.register(projectsListCmd, projectText, nil, true, true)
	projectReportFlags.register(projectsReportCmd, projectText, nil, true, false)
	auditListFlags.register(auditLogsListCmd, auditText, auditSelects, true, true)
	auditReportFlags.register(auditLogsReportCmd, auditText, auditSelects, true, false)
}

func runProjectsList(ctx context.Context, rt *runtime, w io.Writer, f feature.TableFilters, page int) int {
	if code := rt.authorize(ctx, w, gate.PathProjects); code != 0 {
		return code
	}
	s := feature.NewProjects(rt.deps)
	defer s.Close()

	st, code := listTable(ctx, rt, w, s, f, page)
	if code != 0 {
		return code
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(listJSON(st)))
		return 0
	}
	fmt.Fprintln(w, formatProjectsHuman(st))
	return 0
}

func formatProjectsHuman(st listing.State[client.Project]) string {
	if len(st.Rows) == 0 {
		return formatPageFooter(st)
	}
	rows := make([][]string, 0, len(st.Rows))
	for _, p := range st.Rows {
		rows = append(rows, []string{strconv.Itoa(p.ID), p.Title, p.Impact, p.InternNames(), formatWhen(p.CreatedAt)})
	}
	return formatTable([]string{"ID", "Title", "Impact", "Interns", "Created"}, rows) + "\n" + formatPageFooter(st)
}

func runAuditLogsList(ctx context.Context, rt *runtime, w io.Writer, f feature.TableFilters, page int) int {
	if code := rt.authorize(ctx, w, gate.PathAuditLogs); code != 0 {
		return code
	}
	s := feature.NewAuditLogs(rt.deps)
	defer s.Close()

	st, code := listTable(ctx, rt, w, s, f, page)
	if code != 0 {
		return code
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(listJSON(st)))
		return 0
	}
	fmt.Fprintln(w, formatAuditLogsHuman(st))
	return 0
}

func formatAuditLogsHuman(st listing.State[client.AuditLog]) string {
	if len(st.Rows) == 0 {
		return formatPageFooter(st)
	}
	rows := make([][]string, 0, len(st.Rows))
	for _, l := range st.Rows {
		rows = append(rows, []string{
			strconv.Itoa(l.ID), l.ActorName(), l.Event, l.AuditableType,
			strconv.Itoa(l.AuditableID), formatWhen(l.CreatedAt),
		})
	}
	headers := []string{"ID", "User", "Event", "Entity Type", "Entity ID", "When"}
	return formatTable(headers, rows) + "\n" + formatPageFooter(st)
}
