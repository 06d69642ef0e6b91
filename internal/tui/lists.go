// ABOUTME: Paginated list screens for interns, projects, audit logs, and users
// ABOUTME: One generic screen drives search, select filters, sort, paging, reports, and per-screen actions

package tui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
	"github.com/interntrack/admin-cli/internal/gate"
	"github.com/interntrack/admin-cli/internal/listing"
	"github.com/interntrack/admin-cli/internal/tui/forms"
	"github.com/interntrack/admin-cli/internal/tui/icons"
	"github.com/interntrack/admin-cli/internal/tui/listview"
	"github.com/interntrack/admin-cli/internal/tui/styles"
	"github.com/interntrack/admin-cli/internal/tui/widgets"
)

const opForm = "form"

// tableStore is what every list store offers
type tableStore[T any] interface {
	List() *listing.List[T]
	SetText(field, value string)
	Load(page int) <-chan struct{}
	GoTo(link *string) <-chan struct{}
	ResetFilters() <-chan struct{}
	Report(ctx context.Context) (string, error)
	Close()
}

// selectFilter cycles one select field through its values, then back to all
type selectFilter struct {
	field  string
	key    string
	label  string
	values []string
}

func (f selectFilter) next(current string) string {
	i := slices.Index(f.values, current)
	if i+1 >= len(f.values) {
		return ""
	}
	return f.values[i+1]
}

// keyAction is a screen-specific key
type keyAction[T any] struct {
	key  string
	help string
	run  func(s *listScreen[T], row T, ok bool) tea.Cmd
}

type listScreen[T any] struct {
	env    *env
	title  string
	icon   icons.Icon
	store  tableStore[T]
	table  *feature.Table[T] // nil for screens without sort and select filters
	view   *listview.Model[T]
	search string

	selects []selectFilter
	actions []keyAction[T]
	summary func() string

	form     *forms.Form
	onSubmit func(ctx context.Context) error
	fallback string
	filter   forms.FilterValues
}

func (s *listScreen[T]) Init() tea.Cmd {
	s.store.Load(1)
	return s.view.Init()
}

func (s *listScreen[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.view.SetSize(msg.Width, msg.Height-2)
		if s.form != nil {
			var cmd tea.Cmd
			s.form, cmd = s.form.Update(msg)
			return cmd
		}
		return nil
	case doneMsg:
		if msg.id == opForm && s.form != nil {
			if msg.err != nil && feature.IsInvalid(msg.err) {
				return s.form.Fail(msg.err, s.fallback)
			}
			s.form = nil
		}
		return nil
	case forms.SubmittedMsg:
		if s.form != nil && s.onSubmit != nil {
			s.form.ClearError()
			return s.env.run(opForm, s.onSubmit)
		}
		return nil
	case forms.CanceledMsg:
		s.form = nil
		return nil
	}

	if s.form != nil {
		var cmd tea.Cmd
		s.form, cmd = s.form.Update(msg)
		return cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s.view.Update(msg)
	}
	if s.view.Searching() {
		return s.updateSearch(key)
	}
	return s.handleKey(key)
}

func (s *listScreen[T]) updateSearch(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "enter", "esc":
		s.view.BlurSearch()
		return nil
	}
	before := s.view.Search()
	cmd := s.view.Update(key)
	if after := s.view.Search(); after != before {
		s.store.SetText(s.search, after)
	}
	return cmd
}

func (s *listScreen[T]) handleKey(key tea.KeyMsg) tea.Cmd {
	k := key.String()
	row, ok := s.view.Selected()
	for _, a := range s.actions {
		if a.key == k {
			return a.run(s, row, ok)
		}
	}
	if s.table != nil {
		filters := s.table.Filters()
		for _, f := range s.selects {
			if f.key == k {
				s.table.SetSelect(f.field, f.next(filters.Select[f.field]))
				return nil
			}
		}
	}

	links := s.store.List().State().Links
	switch k {
	case "/":
		return s.view.FocusSearch()
	case "o":
		s.view.NextSortColumn()
	case "s":
		if s.table != nil {
			s.table.ToggleSort(s.view.SortKey())
		}
	case "n", "right":
		if link := listview.NextLink(links); link != nil {
			s.store.GoTo(link)
		}
	case "p", "left":
		if link := listview.PrevLink(links); link != nil {
			s.store.GoTo(link)
		}
	case "r":
		s.store.List().Refresh()
	case "x":
		s.view.SetSearch("")
		s.store.ResetFilters()
	case "d":
		if !s.store.List().ReportLoading() {
			return s.env.run(opReport, func(ctx context.Context) error {
				_, err := s.store.Report(ctx)
				return err
			})
		}
	default:
		return s.view.Update(key)
	}
	return nil
}

// openForm shows f over the table and runs submit when it completes
func (s *listScreen[T]) openForm(f *forms.Form, fallback string, submit func(ctx context.Context) error) tea.Cmd {
	s.form = f
	s.fallback = fallback
	s.onSubmit = submit
	return s.form.Init()
}

// withValues copies fields and fills each with its current filter value
func withValues(fields []forms.FilterField, current map[string]string) []forms.FilterField {
	out := slices.Clone(fields)
	for i := range out {
		out[i].Value = current[out[i].Key]
	}
	return out
}

// openFilter shows the text and date filter form. apply receives the
// trimmed text values by key and the range as entered.
func (s *listScreen[T]) openFilter(dates listing.DateRange, text []forms.FilterField, apply func(map[string]string, listing.DateRange) <-chan struct{}) tea.Cmd {
	s.filter = forms.FilterValues{From: dates.From, To: dates.To, Text: text}
	return s.openForm(forms.Filter(s.title+" filters", &s.filter), "Invalid filter", func(context.Context) error {
		values := make(map[string]string, len(s.filter.Text))
		for _, f := range s.filter.Text {
			values[f.Key] = strings.TrimSpace(f.Value)
		}
		<-apply(values, s.filter.Range())
		return nil
	})
}

// tableFilter is the filter key of a table screen
func tableFilter[T any](table *feature.Table[T], text []forms.FilterField) keyAction[T] {
	return keyAction[T]{key: "F", help: "Filter", run: func(s *listScreen[T], _ T, _ bool) tea.Cmd {
		current := table.Filters()
		return s.openFilter(current.Dates, withValues(text, current.Text), func(values map[string]string, dates listing.DateRange) <-chan struct{} {
			next := table.Filters()
			for k, v := range values {
				next.Text[k] = v
			}
			next.Dates = dates
			return table.SetFilters(next, 1)
		})
	}}
}

func (s *listScreen[T]) filterLine() string {
	var parts []string
	if s.table != nil {
		filters := s.table.Filters()
		for _, f := range s.selects {
			v := filters.Select[f.field]
			if v == "" {
				v = "all"
			}
			parts = append(parts, f.label+": "+v)
		}
		if r := filters.Dates; r.From != "" || r.To != "" {
			parts = append(parts, dateLabel(r))
		}
		if filters.Sort.Active() {
			parts = append(parts, fmt.Sprintf("sort: %s %s", filters.Sort.Key, filters.Sort.Direction))
		}
	}
	if s.summary != nil {
		if extra := s.summary(); extra != "" {
			parts = append(parts, extra)
		}
	}
	if s.store.List().ReportLoading() {
		parts = append(parts, "generating report...")
	}
	return strings.Join(parts, " · ")
}

func dateLabel(r listing.DateRange) string {
	from, to := r.From, r.To
	if from == "" {
		from = "…"
	}
	if to == "" {
		to = "…"
	}
	return "dates: " + from + " to " + to
}

func (s *listScreen[T]) View(width, height int) string {
	if s.form != nil {
		return s.form.View()
	}
	sort := listing.Sort{}
	if s.table != nil {
		sort = s.table.Filters().Sort
	}
	s.view.SetSize(width, height-2)
	s.view.SetState(s.store.List().State(), sort)

	header := styles.Title.Render(s.icon.String() + " " + s.title)
	if line := s.filterLine(); line != "" {
		header += "  " + styles.Subtitle.Render(line)
	}
	return header + "\n\n" + s.view.View()
}

func (s *listScreen[T]) Shortcuts() []string {
	if s.form != nil {
		return []string{"enter Next", "esc Cancel"}
	}
	if s.view.Searching() {
		return []string{"enter Done", "esc Done"}
	}
	out := []string{"/ Search"}
	if s.table != nil {
		out = append(out, "o Column", "s Sort")
	}
	for _, f := range s.selects {
		out = append(out, f.key+" "+f.label)
	}
	for _, a := range s.actions {
		out = append(out, a.key+" "+a.help)
	}
	return append(out, "n/p Page", "d Report", "x Reset")
}

func (s *listScreen[T]) Capturing() bool { return s.form != nil || s.view.Searching() }
func (s *listScreen[T]) Close()          { s.store.Close() }

func newInternsScreen(e *env) *listScreen[client.Intern] {
	store := feature.NewInterns(e.deps)
	columns := []listview.Column[client.Intern]{
		{Title: "Name", Width: 22, Value: func(in client.Intern) string { return in.Name }},
		{Title: "Email", Width: 26, Value: func(in client.Intern) string { return in.Email }},
		{Title: "Institution", Width: 18, Value: func(in client.Intern) string { return in.Institution }},
		{Title: "Position", Width: 16, Value: func(in client.Intern) string { return in.Position }},
		{Title: "Status", Width: 12, Value: func(in client.Intern) string { return in.Status() }},
		{Title: "Score", Width: 6, Value: func(in client.Intern) string {
			if in.Performance == nil {
				return "-"
			}
			return strconv.Itoa(*in.Performance)
		}},
	}

	var add forms.InternValues
	internText := []forms.FilterField{
		{Key: feature.InternName, Title: "Name"},
		{Key: feature.InternEmail, Title: "Email"},
		{Key: feature.InternInstitution, Title: "Institution"},
		{Key: feature.InternPosition, Title: "Position"},
		{Key: feature.InternMinPerformance, Title: "Minimum score"},
	}
	s := &listScreen[client.Intern]{
		env:    e,
		title:  "Interns",
		icon:   icons.Interns,
		store:  store,
		view:   listview.New(columns, "Search interns..."),
		search: feature.InternSearch,
	}
	s.summary = func() string {
		flags := store.Filters().Flags
		var on []string
		for _, f := range []string{feature.InternActive, feature.InternCompleted, feature.InternRecommended, feature.InternGraduated} {
			if flags[f] {
				on = append(on, f)
			}
		}
		var parts []string
		if len(on) > 0 {
			parts = append(parts, "only "+strings.Join(on, ", "))
		}
		if r := store.Filters().Dates; r.From != "" || r.To != "" {
			parts = append(parts, dateLabel(r))
		}
		return strings.Join(parts, " · ")
	}
	s.actions = []keyAction[client.Intern]{
		{key: "enter", help: "Open", run: func(_ *listScreen[client.Intern], in client.Intern, ok bool) tea.Cmd {
			if !ok {
				return nil
			}
			return navigate(gate.InternProfilePath(in.ID))
		}},
		{key: "t", help: "Status", run: func(*listScreen[client.Intern], client.Intern, bool) tea.Cmd {
			// all → active → completed → all
			flags := store.Filters().Flags
			switch {
			case flags[feature.InternActive]:
				store.SetFlag(feature.InternCompleted, true)
			case flags[feature.InternCompleted]:
				store.SetFlag(feature.InternCompleted, false)
			default:
				store.SetFlag(feature.InternActive, true)
			}
			return nil
		}},
		{key: "m", help: "Recommended", run: func(*listScreen[client.Intern], client.Intern, bool) tea.Cmd {
			store.SetFlag(feature.InternRecommended, !store.Filters().Flags[feature.InternRecommended])
			return nil
		}},
		{key: "g", help: "Graduated", run: func(*listScreen[client.Intern], client.Intern, bool) tea.Cmd {
			store.SetFlag(feature.InternGraduated, !store.Filters().Flags[feature.InternGraduated])
			return nil
		}},
		{key: "F", help: "Filter", run: func(s *listScreen[client.Intern], _ client.Intern, _ bool) tea.Cmd {
			current := store.Filters()
			return s.openFilter(current.Dates, withValues(internText, current.Text), func(values map[string]string, dates listing.DateRange) <-chan struct{} {
				next := store.Filters()
				for k, v := range values {
					next.Text[k] = v
				}
				next.Dates = dates
				return store.SetFilters(next, 1)
			})
		}},
		{key: "a", help: "Add", run: func(s *listScreen[client.Intern], _ client.Intern, _ bool) tea.Cmd {
			add = forms.InternValues{}
			return s.openForm(forms.AddIntern(&add), "Failed to add intern", func(ctx context.Context) error {
				v := add
				uploads, closeAll, err := forms.Uploads(v.CVPath, v.PhotoPath)
				defer closeAll()
				if err != nil {
					return err
				}
				return store.AddIntern(ctx, feature.NewIntern{
					Name:        v.Name,
					Email:       v.Email,
					Phone:       v.Phone,
					Institution: v.Institution,
					Position:    v.Position,
					From:        v.From,
					To:          v.To,
					Skills:      v.SkillList(),
					CV:          uploads[0],
					Photo:       uploads[1],
				})
			})
		}},
	}
	return s
}

func newProjectsScreen(e *env) *listScreen[client.Project] {
	store := feature.NewProjects(e.deps)
	columns := []listview.Column[client.Project]{
		{Title: "Title", Width: 28, SortKey: "title", Value: func(p client.Project) string { return p.Title }},
		{Title: "Impact", Width: 24, SortKey: "impact", Value: func(p client.Project) string { return p.Impact }},
		{Title: "Interns", Width: 24, SortKey: "intern_name", Value: func(p client.Project) string { return p.InternNames() }},
		{Title: "Created", Width: 16, SortKey: "created_at", Value: func(p client.Project) string { return widgets.When(p.CreatedAt) }},
	}
	return &listScreen[client.Project]{
		env:     e,
		title:   "Projects",
		icon:    icons.Projects,
		store:   store,
		table:   store,
		view:    listview.New(columns, "Search projects..."),
		search:  feature.ProjectSearch,
		actions: []keyAction[client.Project]{tableFilter(store, []forms.FilterField{{Key: feature.ProjectInternName, Title: "Intern name"}})},
	}
}

func newAuditLogsScreen(e *env) *listScreen[client.AuditLog] {
	store := feature.NewAuditLogs(e.deps)
	columns := []listview.Column[client.AuditLog]{
		{Title: "User", Width: 22, SortKey: "user", Value: func(l client.AuditLog) string { return l.ActorName() }},
		{Title: "Event", Width: 10, SortKey: "event", Value: func(l client.AuditLog) string { return l.Event }},
		{Title: "Record", Width: 24, Value: func(l client.AuditLog) string {
			return fmt.Sprintf("%s #%d", l.AuditableType, l.AuditableID)
		}},
		{Title: "When", Width: 16, SortKey: "created_at", Value: func(l client.AuditLog) string { return widgets.When(l.CreatedAt) }},
	}
	return &listScreen[client.AuditLog]{
		env:     e,
		title:   "Audit Logs",
		icon:    icons.AuditLog,
		store:   store,
		table:   store,
		view:    listview.New(columns, "Search audit logs..."),
		search:  feature.AuditSearch,
		selects: []selectFilter{{field: feature.AuditEvent, key: "e", label: "Event", values: feature.AuditEvents}},
		actions: []keyAction[client.AuditLog]{tableFilter(store, nil)},
	}
}

func newUsersScreen(e *env) *listScreen[client.User] {
	store := feature.NewUsers(e.deps)
	columns := []listview.Column[client.User]{
		{Title: "Name", Width: 22, SortKey: "name", Value: func(u client.User) string { return u.Name }},
		{Title: "Email", Width: 28, SortKey: "email", Value: func(u client.User) string { return u.Email }},
		{Title: "Role", Width: 12, SortKey: "role", Value: func(u client.User) string { return string(u.Role) }},
		{Title: "Status", Width: 10, Value: func(u client.User) string {
			if store.Pending(u.ID) {
				return "updating…"
			}
			return u.Status
		}},
	}

	var nu forms.NewUserValues
	changeRole := func(action feature.RoleAction) func(*listScreen[client.User], client.User, bool) tea.Cmd {
		return func(s *listScreen[client.User], u client.User, ok bool) tea.Cmd {
			if !ok || store.Pending(u.ID) {
				return nil
			}
			return s.env.run(opSave, func(ctx context.Context) error { return store.ChangeRole(ctx, u.ID, action) })
		}
	}
	return &listScreen[client.User]{
		env:    e,
		title:  "Users",
		icon:   icons.Users,
		store:  store,
		table:  store.Table,
		view:   listview.New(columns, "Search users..."),
		search: feature.UserSearch,
		selects: []selectFilter{
			{field: feature.UserRole, key: "f", label: "Role", values: []string{string(client.RoleUser), string(client.RoleAdmin), string(client.RoleSuperAdmin)}},
			{field: feature.UserStatus, key: "v", label: "Status", values: feature.UserStatuses},
		},
		actions: []keyAction[client.User]{
			{key: "+", help: "Promote", run: changeRole(feature.Promote)},
			{key: "-", help: "Demote", run: changeRole(feature.Demote)},
			{key: "c", help: "Create", run: func(s *listScreen[client.User], _ client.User, _ bool) tea.Cmd {
				nu = forms.NewUserValues{Role: string(client.RoleUser)}
				return s.openForm(forms.NewUser(&nu), "Registration failed", func(ctx context.Context) error {
					_, err := store.Register(ctx, client.NewUser{
						Name:     nu.Name,
						Email:    nu.Email,
						Role:     client.Role(nu.Role),
						Password: nu.Password,
					})
					return err
				})
			}},
		},
	}
}
