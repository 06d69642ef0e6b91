// ABOUTME: Interns list screen store
// ABOUTME: Debounced text filters, exclusive status flags, date range, add-intern form, report

package feature

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/listing"
)

// Intern filter fields
const (
	InternSearch         = "search"
	InternName           = "name"
	InternEmail          = "email"
	InternInstitution    = "institution"
	InternPosition       = "position"
	InternMinPerformance = "min_performance"

	InternActive      = "active"
	InternCompleted   = "completed"
	InternRecommended = "recommended"
	InternGraduated   = "graduated"
)

var internTextFields = []string{
	InternSearch, InternName, InternEmail, InternInstitution, InternPosition, InternMinPerformance,
}

// InternFilters is the interns screen filter set
type InternFilters struct {
	Text  map[string]string
	Flags map[string]bool
	// Dates filters on the internship period (date_a, date_b)
	Dates listing.DateRange
}

func emptyInternFilters() InternFilters {
	return InternFilters{Text: map[string]string{}, Flags: map[string]bool{}}
}

func (f InternFilters) clone() InternFilters {
	c := emptyInternFilters()
	for k, v := range f.Text {
		c.Text[k] = v
	}
	for k, v := range f.Flags {
		c.Flags[k] = v
	}
	c.Dates = f.Dates
	return c
}

// Interns is the interns list screen
type Interns struct {
	deps Deps
	list *listing.List[client.Intern]

	mu      sync.Mutex
	filters InternFilters
}

// NewInterns creates the interns screen store
func NewInterns(d Deps) *Interns {
	d = d.withDefaults()
	s := &Interns{deps: d, filters: emptyInternFilters()}
	s.list = listing.NewList(listConfig(d, listing.Config[client.Intern]{
		Resource:    "interns",
		FailMessage: "Failed to load interns. Please try again.",
		Fetch:       d.API.FilterInterns,
		Report:      d.API.InternsReport,
		Query:       s.query,
	}))
	return s
}

// List exposes the paginated state
func (s *Interns) List() *listing.List[client.Intern] { return s.list }

// Filters returns a copy of the current filters
func (s *Interns) Filters() InternFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.clone()
}

func (s *Interns) query(page int) (url.Values, error) {
	f := s.Filters()
	if err := f.Dates.Validate(); err != nil {
		return nil, err
	}
	p := listing.NewParams(page)
	for _, field := range internTextFields {
		p.Text(field, f.Text[field])
	}
	for _, flag := range []string{InternActive, InternCompleted, InternRecommended, InternGraduated} {
		p.Flag(flag, f.Flags[flag])
	}
	p.Range("date_a", "date_b", f.Dates)
	return p.Values(), nil
}

// SetText updates a text filter; the fetch waits for typing to settle
func (s *Interns) SetText(field, value string) {
	s.mu.Lock()
	s.filters.Text[field] = value
	s.mu.Unlock()
	s.deps.changed()
	s.deps.Debouncer.Trigger("interns", func() { s.list.Load(1) })
}

// SetFlag toggles a status filter and fetches immediately. Active and
// completed are mutually exclusive.
func (s *Interns) SetFlag(flag string, on bool) <-chan struct{} {
	s.mu.Lock()
	s.filters.Flags[flag] = on
	if on && flag == InternActive {
		s.filters.Flags[InternCompleted] = false
	}
	if on && flag == InternCompleted {
		s.filters.Flags[InternActive] = false
	}
	s.mu.Unlock()
	s.deps.Debouncer.Cancel("interns")
	return s.list.Load(1)
}

// SetDates changes the period filter and fetches immediately
func (s *Interns) SetDates(r listing.DateRange) <-chan struct{} {
	s.mu.Lock()
	s.filters.Dates = r
	s.mu.Unlock()
	s.deps.Debouncer.Cancel("interns")
	return s.list.Load(1)
}

// SetFilters replaces every filter at once and fetches the given page. A
// filter set with both active and completed keeps completed only.
func (s *Interns) SetFilters(f InternFilters, page int) <-chan struct{} {
	next := f.clone()
	if next.Flags[InternActive] && next.Flags[InternCompleted] {
		next.Flags[InternActive] = false
	}
	s.mu.Lock()
	s.filters = next
	s.mu.Unlock()
	s.deps.Debouncer.Cancel("interns")
	return s.list.Load(page)
}

// ResetFilters clears every filter and reloads page 1
func (s *Interns) ResetFilters() <-chan struct{} {
	s.mu.Lock()
	s.filters = emptyInternFilters()
	s.mu.Unlock()
	s.deps.Debouncer.Cancel("interns")
	return s.list.Load(1)
}

// Load fetches a page with the current filters
func (s *Interns) Load(page int) <-chan struct{} { return s.list.Load(page) }

// GoTo follows a paginator link
func (s *Interns) GoTo(link *string) <-chan struct{} { return s.list.GoTo(link) }

// Report saves the report for the current filters
func (s *Interns) Report(ctx context.Context) (string, error) { return s.list.Report(ctx) }

// NewIntern is the add-intern form
type NewIntern struct {
	Name        string
	Email       string
	Phone       string
	Institution string
	Position    string
	From        string
	To          string
	Skills      []string
	CV          *client.Upload
	Photo       *client.Upload
}

func (n NewIntern) fields() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val = strings.TrimSpace(val); val != "" {
			v.Set(k, val)
		}
	}
	set("name", n.Name)
	set("email", n.Email)
	set("phone", n.Phone)
	set("institution", n.Institution)
	set("position", n.Position)
	set("from", n.From)
	set("to", n.To)
	for _, skill := range n.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			v.Add("skills[]", skill)
		}
	}
	return v
}

// AddIntern submits the add-intern form and reloads page 1 on success
func (s *Interns) AddIntern(ctx context.Context, n NewIntern) error {
	fields := client.FieldErrors{}
	if strings.TrimSpace(n.Name) == "" {
		fields["name"] = "Name is required"
	}
	checkEmail(fields, n.Email)
	if err := (listing.DateRange{From: n.From, To: n.To}).Validate(); err != nil {
		fields["to"] = err.Error()
	}
	if err := invalid(fields); err != nil {
		return err
	}

	files := attachments(map[string]*client.Upload{"cv": n.CV, "photo": n.Photo})
	if err := s.deps.API.CreateIntern(ctx, n.fields(), files...); err != nil {
		return s.deps.fail(err, "Failed to add intern")
	}
	s.deps.Toaster.Success("Intern added successfully!")
	s.list.Load(1)
	return nil
}

// attachments names each present upload after its form field
func attachments(byField map[string]*client.Upload) []client.Upload {
	var files []client.Upload
	for _, field := range []string{"cv", "photo", "logo"} {
		if f := byField[field]; f != nil && f.Content != nil {
			u := *f
			u.Field = field
			files = append(files, u)
		}
	}
	return files
}

// Close cancels in-flight work
func (s *Interns) Close() {
	s.deps.Debouncer.Cancel("interns")
	s.list.Close()
}
