// ABOUTME: Intern profile screen store
// ABOUTME: Evaluation, end date, and profile edits plus the per-intern report and remembered tab

package feature

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/listing"
)

// Profile tabs
const (
	TabProfile     = "profile"
	TabProjects    = "projects"
	TabPerformance = "performance"
)

// Tabs lists the profile tabs in display order
var Tabs = []string{TabProfile, TabProjects, TabPerformance}

// ProfileState is what the profile screen renders
type ProfileState struct {
	Intern        *client.Intern
	Tab           string
	Loading       bool
	Saving        bool
	ReportLoading bool
	Err           string
}

// InternProfile is the profile screen of one intern
type InternProfile struct {
	deps Deps
	id   int

	ctx  context.Context
	stop context.CancelFunc

	mu     sync.Mutex
	state  ProfileState
	closed bool
}

// NewInternProfile creates the store for intern id, restoring its last tab
func NewInternProfile(d Deps, id int) *InternProfile {
	d = d.withDefaults()
	ctx, stop := context.WithCancel(context.Background())
	return &InternProfile{
		deps:  d,
		id:    id,
		ctx:   ctx,
		stop:  stop,
		state: ProfileState{Loading: true, Tab: d.Prefs.InternTab(id, TabProfile)},
	}
}

// State returns a copy of the screen state
func (p *InternProfile) State() ProfileState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state
	if st.Intern != nil {
		in := *st.Intern
		st.Intern = &in
	}
	return st
}

func (p *InternProfile) update(fn func(st *ProfileState)) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	fn(&p.state)
	p.mu.Unlock()
	p.deps.changed()
	return true
}

// Load fetches the intern
func (p *InternProfile) Load() error {
	p.update(func(st *ProfileState) { st.Loading = true; st.Err = "" })

	intern, err := p.deps.API.GetIntern(p.ctx, p.id)
	if err != nil {
		if client.IsUnauthorized(err) {
			p.deps.expire()
		}
		p.update(func(st *ProfileState) { st.Loading = false; st.Err = "Failed to load intern profile" })
		return err
	}
	p.update(func(st *ProfileState) { st.Loading = false; st.Intern = intern })
	return nil
}

// SetTab switches tabs and remembers the choice for this intern
func (p *InternProfile) SetTab(tab string) error {
	valid := false
	for _, t := range Tabs {
		valid = valid || t == tab
	}
	if !valid {
		return fmt.Errorf("unknown tab %q", tab)
	}
	p.update(func(st *ProfileState) { st.Tab = tab })
	if err := p.deps.Prefs.SetInternTab(p.id, tab); err != nil {
		slog.Warn("Failed to remember profile tab", "intern_id", p.id, "error", err)
	}
	return nil
}

// Evaluation is the performance tab form
type Evaluation struct {
	Performance int
	Recommended bool
	Notes       string
}

// SavePerformance stores the evaluation and patches the local record
func (p *InternProfile) SavePerformance(ctx context.Context, e Evaluation) error {
	if e.Performance < 0 || e.Performance > 100 {
		return invalid(client.FieldErrors{"performance": "Performance must be between 0 and 100"})
	}
	err := p.save(ctx, map[string]any{
		"performance": e.Performance,
		"recommended": e.Recommended,
		"notes":       e.Notes,
	}, "Save failed.")
	if err != nil {
		return err
	}
	p.update(func(st *ProfileState) {
		if st.Intern != nil {
			score := e.Performance
			st.Intern.Performance = &score
			st.Intern.Recommended = e.Recommended
			st.Intern.Notes = e.Notes
		}
	})
	p.deps.Toaster.Success("Evaluation saved!")
	return nil
}

// SaveEndDate sets the internship end date, marking it completed
func (p *InternProfile) SaveEndDate(ctx context.Context, to string) error {
	st := p.State()
	from := ""
	if st.Intern != nil {
		from = st.Intern.From
	}
	if err := (listing.DateRange{From: from, To: to}).Validate(); err != nil {
		return invalid(client.FieldErrors{"to": err.Error()})
	}
	if err := p.save(ctx, map[string]any{"to": to}, "Update failed."); err != nil {
		return err
	}
	p.update(func(st *ProfileState) {
		if st.Intern != nil {
			st.Intern.To = to
		}
	})
	p.deps.Toaster.Success("End date updated!")
	return nil
}

// ProfileEdit is the editable profile section; empty fields are left unchanged
type ProfileEdit struct {
	Name        string
	Email       string
	Phone       string
	Institution string
	Position    string
	CV          *client.Upload
	Photo       *client.Upload
}

// UpdateProfile saves profile fields and optional replacement files
func (p *InternProfile) UpdateProfile(ctx context.Context, e ProfileEdit) error {
	fields := client.FieldErrors{}
	if e.Email != "" {
		checkEmail(fields, e.Email)
	}
	if err := invalid(fields); err != nil {
		return err
	}

	values := url.Values{}
	for k, v := range map[string]string{
		"name": e.Name, "email": e.Email, "phone": e.Phone,
		"institution": e.Institution, "position": e.Position,
	} {
		if v != "" {
			values.Set(k, v)
		}
	}

	p.update(func(st *ProfileState) { st.Saving = true })
	defer p.update(func(st *ProfileState) { st.Saving = false })

	files := attachments(map[string]*client.Upload{"cv": e.CV, "photo": e.Photo})
	if err := p.deps.API.UpdateInternProfile(ctx, p.id, values, files...); err != nil {
		return p.deps.fail(err, "Update failed.")
	}
	p.update(func(st *ProfileState) {
		if st.Intern == nil {
			return
		}
		apply := func(dst *string, v string) {
			if v != "" {
				*dst = v
			}
		}
		apply(&st.Intern.Name, e.Name)
		apply(&st.Intern.Email, e.Email)
		apply(&st.Intern.Phone, e.Phone)
		apply(&st.Intern.Institution, e.Institution)
		apply(&st.Intern.Position, e.Position)
	})
	p.deps.Toaster.Success("Profile updated!")
	return nil
}

func (p *InternProfile) save(ctx context.Context, body map[string]any, fallback string) error {
	p.update(func(st *ProfileState) { st.Saving = true })
	defer p.update(func(st *ProfileState) { st.Saving = false })

	if err := p.deps.API.UpdateIntern(ctx, p.id, body); err != nil {
		return p.deps.fail(err, fallback)
	}
	return nil
}

// Report saves this intern's PDF report
func (p *InternProfile) Report(ctx context.Context) (string, error) {
	st := p.State()
	if st.Intern == nil {
		return "", fmt.Errorf("intern %d not loaded", p.id)
	}

	p.update(func(st *ProfileState) { st.ReportLoading = true })
	defer p.update(func(st *ProfileState) { st.ReportLoading = false })

	data, err := p.deps.API.InternReport(ctx, p.id)
	if err != nil {
		return "", p.deps.fail(err, listing.MsgReportFailed)
	}
	path, err := listing.SaveReport(p.deps.ReportDir, listing.ProfileReportFilename(st.Intern.Name, p.id), data)
	if err != nil {
		p.deps.Toaster.Error(listing.MsgReportFailed)
		return "", err
	}
	p.deps.Toaster.Success("Report downloaded!")
	return path, nil
}

// Close cancels the profile fetch; later updates are dropped
func (p *InternProfile) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.stop()
}
