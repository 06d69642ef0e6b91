// ABOUTME: Intern commands for the interntrack CLI
// ABOUTME: List and report with filters, show one profile, record evaluations and end dates, add interns

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/interntrack/admin-cli/internal/listing"
	"github.com/spf13/cobra"
)

// internFilterFlags are shared by list and report
type internFilterFlags struct {
	text        map[string]*string
	active      bool
	completed   bool
	recommended bool
	graduated   bool
	from, to    string
	page        int
}

func (f *internFilterFlags) register(cmd *cobra.Command, withPage bool) {
	f.text = map[string]*string{}
	for _, field := range []struct{ name, flag, usage string }{
		{feature.InternSearch, "search", "Free text search"},
		{feature.InternName, "name", "Filter by name"},
		{feature.InternEmail, "email", "Filter by email"},
		{feature.InternInstitution, "institution", "Filter by institution"},
		{feature.InternPosition, "position", "Filter by position"},
		{feature.InternMinPerformance, "min-performance", "Minimum performance score"},
	} {
		f.text[field.name] = cmd.Flags().String(field.flag, "", field.usage)
	}
	cmd.Flags().BoolVar(&f.active, "active", false, "Only internships in progress")
	cmd.Flags().BoolVar(&f.completed, "completed", false, "Only completed internships")
	cmd.Flags().BoolVar(&f.recommended, "recommended", false, "Only recommended interns")
	cmd.Flags().BoolVar(&f.graduated, "graduated", false, "Only graduated interns")
	cmd.Flags().StringVar(&f.from, "from", "", "Internship period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Internship period end (YYYY-MM-DD)")
	cmd.MarkFlagsMutuallyExclusive("active", "completed")
	if withPage {
		cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
	}
}

func (f *internFilterFlags) filters() feature.InternFilters {
	out := feature.InternFilters{Text: map[string]string{}, Flags: map[string]bool{
		feature.InternActive:      f.active,
		feature.InternCompleted:   f.completed,
		feature.InternRecommended: f.recommended,
		feature.InternGraduated:   f.graduated,
	}}
	for field, v := range f.text {
		out.Text[field] = *v
	}
	out.Dates = listing.DateRange{From: f.from, To: f.to}
	return out
}

var (
	internListFlags   internFilterFlags
	internReportFlags internFilterFlags

	evalScore       int
	evalRecommended bool
	evalNotes       string

	endDate string

	addIntern feature.NewIntern
	addCVPath string
	addPhoto  string
)

var internsCmd = &cobra.Command{
	Use:   "interns",
	Short: "Manage interns",
}

var internsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List interns",
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		return runInternsList(ctx, rt, w, internListFlags.filters(), internListFlags.page)
	}),
}

var internsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show an intern profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(ctx context.Context, rt *runtime, w io.Writer) int {
			return withInternID(w, args[0], func(id int) int { return runInternShow(ctx, rt, w, id) })
		})(cmd, args)
	},
}

var internsReportCmd = &cobra.Command{
	Use:   "report [ID]",
	Short: "Download the interns report, or one intern's report",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(ctx context.Context, rt *runtime, w io.Writer) int {
			if len(args) == 1 {
				return withInternID(w, args[0], func(id int) int { return runInternReport(ctx, rt, w, id) })
			}
			return runInternsReport(ctx, rt, w, internReportFlags.filters())
		})(cmd, args)
	},
}

var internsEvaluateCmd = &cobra.Command{
	Use:   "evaluate ID",
	Short: "Record an intern's performance evaluation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(ctx context.Context, rt *runtime, w io.Writer) int {
			return withInternID(w, args[0], func(id int) int {
				return runInternEvaluate(ctx, rt, w, id, feature.Evaluation{
					Performance: evalScore,
					Recommended: evalRecommended,
					Notes:       evalNotes,
				})
			})
		})(cmd, args)
	},
}

var internsEndCmd = &cobra.Command{
	Use:   "end ID",
	Short: "Set the internship end date",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(ctx context.Context, rt *runtime, w io.Writer) int {
			return withInternID(w, args[0], func(id int) int { return runInternEnd(ctx, rt, w, id, endDate) })
		})(cmd, args)
	},
}

var internsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an intern",
	Run: run(func(ctx context.Context, rt *runtime, w io.Writer) int {
		return runInternAdd(ctx, rt, w, addIntern, addCVPath, addPhoto)
	}),
}

func init() {
	rootCmd.AddCommand(internsCmd)
	internsCmd.AddCommand(internsListCmd, internsShowCmd, internsReportCmd, internsEvaluateCmd, internsEndCmd, internsAddCmd)

	internListFlags.register(internsListCmd, true)
	internReportFlags.register(internsReportCmd, false)

	internsEvaluateCmd.Flags().IntVar(&evalScore, "score", 0, "Performance score 0-100 (required)")
	internsEvaluateCmd.Flags().BoolVar(&evalRecommended, "recommended", false, "Recommend the intern")
	internsEvaluateCmd.Flags().StringVar(&evalNotes, "notes", "", "Evaluation notes")
	internsEvaluateCmd.MarkFlagRequired("score")

	internsEndCmd.Flags().StringVar(&endDate, "to", "", "End date YYYY-MM-DD (required)")
	internsEndCmd.MarkFlagRequired("to")

	f := internsAddCmd.Flags()
	f.StringVar(&addIntern.Name, "name", "", "Full name (required)")
	f.StringVar(&addIntern.Email, "email", "", "Email (required)")
	f.StringVar(&addIntern.Phone, "phone", "", "Phone number")
	f.StringVar(&addIntern.Institution, "institution", "", "School or university")
	f.StringVar(&addIntern.Position, "position", "", "Position")
	f.StringVar(&addIntern.From, "from", "", "Start date YYYY-MM-DD")
	f.StringVar(&addIntern.To, "to", "", "End date YYYY-MM-DD")
	f.StringSliceVar(&addIntern.Skills, "skill", nil, "Skill (repeatable)")
	f.StringVar(&addCVPath, "cv", "", "Path to the CV file")
	f.StringVar(&addPhoto, "photo", "", "Path to the photo")
}

func withInternID(w io.Writer, arg string, fn func(id int) int) int {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		fmt.Fprintf(w, "Error: invalid intern id %q\n", arg)
		return 2
	}
	return fn(id)
}

func runInternsList(ctx context.Context, rt *runtime, w io.Writer, f feature.InternFilters, page int) int {
	if code := rt.authorize(ctx, w, gate.PathInterns); code != 0 {
		return code
	}
	s := feature.NewInterns(rt.deps)
	defer s.Close()
	stop := context.AfterFunc(ctx, s.Close)
	defer stop()

	if code := rt.settle(ctx, w, s.SetFilters(f, max(page, 1))); code != 0 {
		return code
	}

	st := s.List().State()
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(listJSON(st)))
		return 0
	}
	fmt.Fprintln(w, formatInternsHuman(st))
	return 0
}

func formatInternsHuman(st listing.State[client.Intern]) string {
	if len(st.Rows) == 0 {
		return formatPageFooter(st)
	}
	rows := make([][]string, 0, len(st.Rows))
	for _, in := range st.Rows {
		rows = append(rows, []string{
			strconv.Itoa(in.ID), in.Name, in.Email, in.Institution, in.Position,
			in.Status(), formatScore(in.Performance), yesNo(in.Recommended),
		})
	}
	headers := []string{"ID", "Name", "Email", "Institution", "Position", "Status", "Score", "Recommended"}
	return formatTable(headers, rows) + "\n" + formatPageFooter(st)
}

func runInternsReport(ctx context.Context, rt *runtime, w io.Writer, f feature.InternFilters) int {
	if code := rt.authorize(ctx, w, gate.PathInterns); code != 0 {
		return code
	}
	s := feature.NewInterns(rt.deps)
	defer s.Close()

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

// loadProfile authorizes and loads one intern
func loadProfile(ctx context.Context, rt *runtime, w io.Writer, id int) (*feature.InternProfile, int) {
	if code := rt.authorize(ctx, w, gate.InternProfilePath(id)); code != 0 {
		return nil, code
	}
	p := feature.NewInternProfile(rt.deps, id)
	if err := p.Load(); err != nil {
		p.Close()
		if client.IsUnauthorized(err) {
			return nil, rt.fail(w, err)
		}
		fmt.Fprintf(w, "Error: %s: %v\n", p.State().Err, err)
		return nil, 2
	}
	return p, 0
}

func runInternShow(ctx context.Context, rt *runtime, w io.Writer, id int) int {
	p, code := loadProfile(ctx, rt, w, id)
	if code != 0 {
		return code
	}
	defer p.Close()

	in := p.State().Intern
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(in))
		return 0
	}
	fmt.Fprintln(w, formatInternHuman(in))
	return 0
}

func formatInternHuman(in *client.Intern) string {
	period := in.From
	if in.To != "" {
		period += " to " + in.To
	}
	out := fmt.Sprintf(`Name:         %s
Email:        %s
Phone:        %s
Institution:  %s
Position:     %s
Period:       %s
Status:       %s
Score:        %s
Recommended:  %s
Graduated:    %s`,
		in.Name, in.Email, in.Phone, in.Institution, in.Position,
		period, in.Status(), formatScore(in.Performance),
		yesNo(in.Recommended), yesNo(in.Graduated))
	if len(in.Skills) > 0 {
		out += "\nSkills:       " + strings.Join(in.Skills, ", ")
	}
	if in.Notes != "" {
		out += "\nNotes:        " + in.Notes
	}
	if len(in.Projects) > 0 {
		rows := make([][]string, 0, len(in.Projects))
		for _, proj := range in.Projects {
			rows = append(rows, []string{proj.Title, proj.Impact, formatWhen(proj.CreatedAt)})
		}
		out += "\n\nProjects\n" + formatTable([]string{"Title", "Impact", "Created"}, rows)
	}
	return out
}

func runInternReport(ctx context.Context, rt *runtime, w io.Writer, id int) int {
	p, code := loadProfile(ctx, rt, w, id)
	if code != 0 {
		return code
	}
	defer p.Close()

	path, err := p.Report(ctx)
	if err != nil {
		return rt.fail(w, err)
	}
	printReport(w, path)
	return 0
}

func runInternEvaluate(ctx context.Context, rt *runtime, w io.Writer, id int, e feature.Evaluation) int {
	if code := rt.authorize(ctx, w, gate.InternProfilePath(id)); code != 0 {
		return code
	}
	p := feature.NewInternProfile(rt.deps, id)
	defer p.Close()

	if err := p.SavePerformance(ctx, e); err != nil {
		return rt.fail(w, err)
	}
	return rt.succeed(w)
}

func runInternEnd(ctx context.Context, rt *runtime, w io.Writer, id int, to string) int {
	p, code := loadProfile(ctx, rt, w, id)
	if code != 0 {
		return code
	}
	defer p.Close()

	if err := p.SaveEndDate(ctx, to); err != nil {
		return rt.fail(w, err)
	}
	return rt.succeed(w)
}

func runInternAdd(ctx context.Context, rt *runtime, w io.Writer, n feature.NewIntern, cvPath, photoPath string) int {
	if code := rt.authorize(ctx, w, gate.PathInterns); code != 0 {
		return code
	}

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	for _, att := range []struct {
		path string
		dst  **client.Upload
	}{{cvPath, &n.CV}, {photoPath, &n.Photo}} {
		if att.path == "" {
			continue
		}
		file, err := os.Open(att.path)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		closers = append(closers, file)
		*att.dst = &client.Upload{Filename: filepath.Base(att.path), Content: file}
	}

	s := feature.NewInterns(rt.deps)
	defer s.Close()
	if err := s.AddIntern(ctx, n); err != nil {
		return rt.fail(w, err)
	}
	return rt.succeed(w)
}
