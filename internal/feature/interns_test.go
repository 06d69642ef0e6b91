// ABOUTME: Tests for the interns and intern profile stores
// ABOUTME: Filter accumulation, date range checks, pagination links, add-intern, evaluations

package feature

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/listing"
)

func TestInterns_SearchThenActiveFlag(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.backend.handle("GET /api/interns/filter", func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(page(map[string]any{"id": 1, "name": "Jane Doe", "email": "jane@example.com"}))
	})
	debouncer := listing.NewDebouncer(time.Hour)
	t.Cleanup(debouncer.Stop)
	f.deps.Debouncer = debouncer

	s := NewInterns(f.deps)
	defer s.Close()

	s.SetText(InternSearch, "jane")
	if n := len(f.backend.all("GET", "/api/interns/filter")); n != 0 {
		t.Fatalf("expected typing to wait for the debounce, got %d requests", n)
	}

	done := s.SetFlag(InternActive, true)
	if !s.List().State().Loading {
		t.Error("expected loading to be set synchronously")
	}
	close(release)
	wait(t, done)

	reqs := f.backend.all("GET", "/api/interns/filter")
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	q := reqs[0].Query
	if q.Get("search") != "jane" || q.Get("active") != "true" || q.Get("page") != "1" {
		t.Errorf("unexpected query %v", q)
	}
	if q.Has("completed") {
		t.Errorf("expected unset flags to be omitted, got %v", q)
	}
	if debouncer.Pending("interns") {
		t.Error("expected the pending search fetch to be dropped")
	}

	st := s.List().State()
	if st.Loading || len(st.Rows) != 1 || st.Rows[0].Name != "Jane Doe" {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestInterns_ActiveAndCompletedAreExclusive(t *testing.T) {
	f := newFixture(t)
	f.backend.json("GET /api/interns/filter", http.StatusOK, page())
	s := NewInterns(f.deps)
	defer s.Close()

	wait(t, s.SetFlag(InternActive, true))
	wait(t, s.SetFlag(InternCompleted, true))

	flags := s.Filters().Flags
	if flags[InternActive] || !flags[InternCompleted] {
		t.Errorf("expected only completed set, got %v", flags)
	}
	reqs := f.backend.all("GET", "/api/interns/filter")
	last := reqs[len(reqs)-1].Query
	if last.Has("active") || last.Get("completed") != "true" {
		t.Errorf("unexpected query %v", last)
	}
}

func TestInterns_InvertedDateRangeSendsNothing(t *testing.T) {
	f := newFixture(t)
	f.backend.json("GET /api/interns/filter", http.StatusOK, page())
	f.backend.json("GET /api/interns/report", http.StatusOK, nil)
	s := NewInterns(f.deps)
	defer s.Close()

	before := f.backend.count()
	wait(t, s.SetDates(listing.DateRange{From: "2026-05-01", To: "2026-04-01"}))

	if got := toast(t, f.deps); got.Message != listing.MsgDateRange || got.Kind != listing.ToastError {
		t.Errorf("unexpected toast %+v", got)
	}
	if _, err := s.Report(t.Context()); err == nil {
		t.Error("expected the report to be refused")
	}
	if f.backend.count() != before {
		t.Errorf("expected zero requests, got %d", f.backend.count()-before)
	}
}

func TestInterns_DateRangeParams(t *testing.T) {
	f := newFixture(t)
	f.backend.json("GET /api/interns/filter", http.StatusOK, page())
	s := NewInterns(f.deps)
	defer s.Close()

	wait(t, s.SetDates(listing.DateRange{From: "2026-01-01", To: "2026-06-30"}))

	q := f.backend.all("GET", "/api/interns/filter")[0].Query
	if q.Get("date_a") != "2026-01-01" || q.Get("date_b") != "2026-06-30" {
		t.Errorf("unexpected query %v", q)
	}
}

func TestInterns_GoTo(t *testing.T) {
	tests := []struct {
		name      string
		link      *string
		wantPage  string
		wantToast bool
	}{
		{name: "page param", link: ptr("http://localhost:8000/api/interns/filter?page=3"), wantPage: "3"},
		{name: "missing page", link: ptr("http://localhost:8000/api/interns/filter"), wantPage: "1"},
		{name: "malformed", link: ptr("::not a url"), wantToast: true},
		{name: "nil link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.backend.json("GET /api/interns/filter", http.StatusOK, page())
			s := NewInterns(f.deps)
			defer s.Close()

			wait(t, s.GoTo(tt.link))

			reqs := f.backend.all("GET", "/api/interns/filter")
			if tt.wantPage == "" {
				if len(reqs) != 0 {
					t.Errorf("expected no request, got %d", len(reqs))
				}
			} else if len(reqs) != 1 || reqs[0].Query.Get("page") != tt.wantPage {
				t.Errorf("expected page %s, got %v", tt.wantPage, reqs)
			}

			_, shown := f.deps.Toaster.Current()
			if shown != tt.wantToast {
				t.Errorf("expected toast %v, got %v", tt.wantToast, shown)
			}
			if tt.wantToast && toast(t, f.deps).Message != listing.MsgInvalidPage {
				t.Errorf("unexpected toast %+v", toast(t, f.deps))
			}
		})
	}
}

func TestInterns_LoadFailureClearsRows(t *testing.T) {
	f := newFixture(t)
	f.backend.json("GET /api/interns/filter", http.StatusInternalServerError, map[string]string{"message": "boom"})
	s := NewInterns(f.deps)
	defer s.Close()

	wait(t, s.Load(1))

	if st := s.List().State(); st.Loading || len(st.Rows) != 0 || st.Total != 0 {
		t.Errorf("unexpected state %+v", st)
	}
	if got := toast(t, f.deps); got.Message != "Failed to load interns. Please try again." {
		t.Errorf("unexpected toast %+v", got)
	}
}

func TestInterns_UnauthorizedExpiresSession(t *testing.T) {
	f := newFixture(t)
	f.backend.json("GET /api/interns/filter", http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
	s := NewInterns(f.deps)
	defer s.Close()

	wait(t, s.Load(1))

	if f.deps.Session.Snapshot().SignedIn() {
		t.Error("expected the session to be signed out")
	}
	if f.prefs.Token() != "" {
		t.Error("expected the token to be cleared")
	}
	if _, shown := f.deps.Toaster.Current(); shown {
		t.Error("expected no toast on an expired session")
	}
}

func TestInterns_Report(t *testing.T) {
	f := newFixture(t)
	f.backend.json("GET /api/interns/filter", http.StatusOK, page(map[string]any{"id": 1, "name": "A"}))
	f.backend.handle("GET /api/interns/report", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	})
	s := NewInterns(f.deps)
	defer s.Close()

	s.SetText(InternInstitution, "MIT")
	wait(t, s.Load(1))

	path, err := s.Report(t.Context())
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if filepath.Base(path) != "interns-report-2026-03-09.pdf" {
		t.Errorf("unexpected file name %s", path)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "%PDF-1.4" {
		t.Errorf("unexpected content %q", data)
	}
	reqs := f.backend.all("GET", "/api/interns/report")
	if len(reqs) != 1 || reqs[0].Query.Get("institution") != "MIT" {
		t.Errorf("expected report to carry the filters, got %v", reqs)
	}
	if got := toast(t, f.deps); got.Message != listing.MsgReportSaved {
		t.Errorf("unexpected toast %+v", got)
	}
}

func TestInterns_AddIntern(t *testing.T) {
	f := newFixture(t)
	f.backend.json("POST /api/interns", http.StatusCreated, map[string]any{"data": map[string]any{"id": 9}})
	f.backend.json("GET /api/interns/filter", http.StatusOK, page())
	s := NewInterns(f.deps)
	defer s.Close()

	err := s.AddIntern(t.Context(), NewIntern{
		Name:   "Jane",
		Email:  "jane@example.com",
		From:   "2026-01-01",
		Skills: []string{"go", " ", "sql"},
		CV:     &client.Upload{Field: "wrong", Filename: "cv.pdf", Content: strings.NewReader("cv")},
	})
	if err != nil {
		t.Fatalf("add intern: %v", err)
	}

	reqs := f.backend.all("POST", "/api/interns")
	if len(reqs) != 1 {
		t.Fatalf("expected 1 create request, got %d", len(reqs))
	}
	form := reqs[0].Form
	if form.Get("name") != "Jane" || len(form["skills[]"]) != 2 {
		t.Errorf("unexpected form %v", form)
	}
	if got := toast(t, f.deps); got.Message != "Intern added successfully!" {
		t.Errorf("unexpected toast %+v", got)
	}
}

func TestInterns_AddInternValidation(t *testing.T) {
	f := newFixture(t)
	s := NewInterns(f.deps)
	defer s.Close()

	err := s.AddIntern(t.Context(), NewIntern{Email: "nope", From: "2026-02-01", To: "2026-01-01"})
	vErr, ok := client.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"name", "email", "to"} {
		if vErr.Fields[field] == "" {
			t.Errorf("expected %s error in %v", field, vErr.Fields)
		}
	}
	if len(f.backend.all("POST", "/api/interns")) != 0 {
		t.Error("expected nothing sent")
	}
}

func TestInternProfile_TabIsRemembered(t *testing.T) {
	f := newFixture(t)
	p := NewInternProfile(f.deps, 7)
	defer p.Close()

	if p.State().Tab != TabProfile {
		t.Fatalf("expected default tab, got %s", p.State().Tab)
	}
	if err := p.SetTab(TabPerformance); err != nil {
		t.Fatal(err)
	}
	if err := p.SetTab("bogus"); err == nil {
		t.Error("expected unknown tab to be rejected")
	}

	again := NewInternProfile(f.deps, 7)
	defer again.Close()
	if again.State().Tab != TabPerformance {
		t.Errorf("expected remembered tab, got %s", again.State().Tab)
	}
	other := NewInternProfile(f.deps, 8)
	defer other.Close()
	if other.State().Tab != TabProfile {
		t.Errorf("expected tabs to be per intern, got %s", other.State().Tab)
	}
}

func TestInternProfile_SavePerformance(t *testing.T) {
	f := newFixture(t)
	f.backend.json("GET /api/interns/7", http.StatusOK, map[string]any{"data": map[string]any{"id": 7, "name": "Jane Doe", "from": "2026-01-01"}})
	f.backend.json("POST /api/interns/7", http.StatusOK, map[string]any{})
	p := NewInternProfile(f.deps, 7)
	defer p.Close()

	if err := p.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := p.SavePerformance(t.Context(), Evaluation{Performance: 120}); !IsInvalid(err) {
		t.Errorf("expected out of range score to be rejected, got %v", err)
	}
	if err := p.SavePerformance(t.Context(), Evaluation{Performance: 85, Recommended: true, Notes: "solid"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	reqs := f.backend.all("POST", "/api/interns/7")
	if len(reqs) != 1 {
		t.Fatalf("expected 1 update, got %d", len(reqs))
	}
	var body map[string]any
	json.Unmarshal(reqs[0].Body, &body)
	if body["performance"] != float64(85) || body["recommended"] != true || body["notes"] != "solid" {
		t.Errorf("unexpected body %v", body)
	}

	in := p.State().Intern
	if in.Performance == nil || *in.Performance != 85 || !in.Recommended {
		t.Errorf("expected local record patched, got %+v", in)
	}
	if got := toast(t, f.deps); got.Message != "Evaluation saved!" {
		t.Errorf("unexpected toast %+v", got)
	}
}

func TestInternProfile_SaveEndDate(t *testing.T) {
	f := newFixture(t)
	f.backend.json("GET /api/interns/7", http.StatusOK, map[string]any{"data": map[string]any{"id": 7, "name": "Jane", "from": "2026-02-01"}})
	f.backend.json("POST /api/interns/7", http.StatusOK, map[string]any{})
	p := NewInternProfile(f.deps, 7)
	defer p.Close()
	p.Load()

	if err := p.SaveEndDate(t.Context(), "2026-01-01"); !IsInvalid(err) {
		t.Errorf("expected end before start to be rejected, got %v", err)
	}
	if err := p.SaveEndDate(t.Context(), "2026-06-30"); err != nil {
		t.Fatalf("save end date: %v", err)
	}
	if st := p.State(); st.Intern.To != "2026-06-30" || st.Intern.Status() != "Completed" {
		t.Errorf("unexpected intern %+v", st.Intern)
	}
	if got := toast(t, f.deps); got.Message != "End date updated!" {
		t.Errorf("unexpected toast %+v", got)
	}
}

func TestInternProfile_SaveFailureToasts(t *testing.T) {
	f := newFixture(t)
	f.backend.json("POST /api/interns/7", http.StatusInternalServerError, map[string]any{})
	p := NewInternProfile(f.deps, 7)
	defer p.Close()

	if err := p.SavePerformance(t.Context(), Evaluation{Performance: 50}); err == nil {
		t.Fatal("expected failure")
	}
	if got := toast(t, f.deps); got.Message != "Save failed." || got.Kind != listing.ToastError {
		t.Errorf("unexpected toast %+v", got)
	}
	if p.State().Saving {
		t.Error("expected saving cleared")
	}
}

func TestInternProfile_LoadFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.json("GET /api/interns/7", http.StatusNotFound, map[string]any{"message": "missing"})
	p := NewInternProfile(f.deps, 7)
	defer p.Close()

	if err := p.Load(); err == nil {
		t.Fatal("expected failure")
	}
	if st := p.State(); st.Loading || st.Err != "Failed to load intern profile" {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestInternProfile_Report(t *testing.T) {
	f := newFixture(t)
	f.backend.json("GET /api/interns/7", http.StatusOK, map[string]any{"data": map[string]any{"id": 7, "name": "Jane  Q Doe"}})
	f.backend.handle("GET /api/interns/7/report", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pdf"))
	})
	p := NewInternProfile(f.deps, 7)
	defer p.Close()
	p.Load()

	path, err := p.Report(t.Context())
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if filepath.Base(path) != "intern-profile-Jane-Q-Doe-7.pdf" {
		t.Errorf("unexpected name %s", path)
	}
	if got := toast(t, f.deps); got.Message != "Report downloaded!" {
		t.Errorf("unexpected toast %+v", got)
	}
}

func TestInternProfile_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	f.backend.json("GET /api/interns/7", http.StatusOK, map[string]any{"data": map[string]any{"id": 7, "name": "Jane", "email": "jane@example.com"}})
	f.backend.json("POST /api/interns/7", http.StatusOK, map[string]any{})
	p := NewInternProfile(f.deps, 7)
	defer p.Close()
	p.Load()

	err := p.UpdateProfile(t.Context(), ProfileEdit{
		Position: "Backend",
		Photo:    &client.Upload{Filename: "me.png", Content: strings.NewReader("png")},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	reqs := f.backend.all("POST", "/api/interns/7")
	if len(reqs) != 1 || reqs[0].Form.Get("position") != "Backend" || reqs[0].Form.Has("name") {
		t.Errorf("unexpected form %v", reqs)
	}
	if st := p.State(); st.Intern.Position != "Backend" || st.Intern.Name != "Jane" {
		t.Errorf("unexpected intern %+v", st.Intern)
	}
}

func ptr(s string) *string { return &s }
