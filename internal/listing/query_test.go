// ABOUTME: Tests for query construction helpers
// ABOUTME: Page links, sort cycling, date ranges, and parameter building

package listing

import (
	"errors"
	"testing"
	"time"
)

func TestPageFromURL(t *testing.T) {
	tests := []struct {
		link    string
		want    int
		wantErr bool
	}{
		{"http://api.test/api/interns/filter?page=3", 3, false},
		{"http://api.test/api/interns/filter?search=jane&page=12", 12, false},
		{"http://api.test/api/interns/filter", 1, false},
		{"http://api.test/api/interns/filter?page=", 1, false},
		{"http://api.test/api/interns/filter?page=abc", 0, true},
		{"http://api.test/api/interns/filter?page=0", 0, true},
		{"not a url", 0, true},
		{"://missing-scheme", 0, true},
		{"/relative?page=2", 0, true},
	}
	for _, tc := range tests {
		got, err := PageFromURL(tc.link)
		if tc.wantErr {
			if err == nil {
				t.Errorf("PageFromURL(%q) expected error, got %d", tc.link, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("PageFromURL(%q) = %d, %v; want %d", tc.link, got, err, tc.want)
		}
	}
}

func TestSortToggle(t *testing.T) {
	var s Sort
	s = s.Toggle("title")
	if s != (Sort{Key: "title", Direction: Asc}) {
		t.Fatalf("expected title asc, got %+v", s)
	}
	s = s.Toggle("title")
	if s != (Sort{Key: "title", Direction: Desc}) {
		t.Fatalf("expected title desc, got %+v", s)
	}
	s = s.Toggle("title")
	if s.Active() {
		t.Fatalf("expected cleared sort, got %+v", s)
	}

	s = Sort{Key: "created_at", Direction: Desc}.Toggle("impact")
	if s != (Sort{Key: "impact", Direction: Asc}) {
		t.Errorf("expected new key to start asc, got %+v", s)
	}
}

func TestDateRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       DateRange
		wantErr error
		anyErr  bool
	}{
		{"empty", DateRange{}, nil, false},
		{"open start", DateRange{To: "2024-01-01"}, nil, false},
		{"same day", DateRange{From: "2024-01-01", To: "2024-01-01"}, nil, false},
		{"ordered", DateRange{From: "2024-01-01", To: "2024-02-01"}, nil, false},
		{"inverted", DateRange{From: "2024-03-01", To: "2024-02-01"}, ErrDateRange, true},
		{"bad format", DateRange{From: "01/02/2024"}, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.r.Validate()
			if !tc.anyErr {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
	if ErrDateRange.Error() != "Start date cannot be after end date" {
		t.Errorf("unexpected message %q", ErrDateRange.Error())
	}
}

func TestParams(t *testing.T) {
	q := NewParams(2).
		Text("search", "  jane ").
		Text("email", "").
		Flag("active", true).
		Flag("completed", false).
		Range("date_from", "date_to", DateRange{From: "2024-01-01"}).
		Sort(Sort{Key: "title", Direction: Desc}).
		Values()

	want := map[string]string{
		"page":           "2",
		"search":         "jane",
		"active":         "true",
		"date_from":      "2024-01-01",
		"sort_by":        "title",
		"sort_direction": "desc",
	}
	if len(q) != len(want) {
		t.Errorf("expected %d params, got %v", len(want), q)
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("param %s = %q, want %q", k, q.Get(k), v)
		}
	}

	if NewParams(0).Sort(Sort{}).Values().Get("page") != "1" {
		t.Error("expected page to default to 1")
	}
}

func TestReportFilename(t *testing.T) {
	now := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	if got := ReportFilename("interns", now); got != "interns-report-2024-05-01.pdf" {
		t.Errorf("unexpected filename %s", got)
	}
	if got := ProfileReportFilename("Jane  Q Doe", 4); got != "intern-profile-Jane-Q-Doe-4.pdf" {
		t.Errorf("unexpected filename %s", got)
	}
}
