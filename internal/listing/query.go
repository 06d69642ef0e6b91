// ABOUTME: Query construction shared by all list screens
// ABOUTME: Page links, sort toggling, date range validation, and the filter parameter builder

package listing

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/interntrack/admin-cli/internal/client"
)

// Toast messages shared by the list screens
const (
	MsgInvalidPage  = "Invalid page URL"
	MsgDateRange    = "Start date cannot be after end date"
	MsgReportSaved  = "Report downloaded successfully!"
	MsgReportFailed = "Failed to generate report."
)

// ErrDateRange is returned when a range starts after it ends
var ErrDateRange = errors.New(MsgDateRange)

// PageFromURL extracts the page number from a paginator link. A link
// without a page parameter means page 1.
func PageFromURL(link string) (int, error) {
	u, err := url.Parse(link)
	if err != nil {
		return 0, fmt.Errorf("invalid page link %q: %w", link, err)
	}
	if !u.IsAbs() {
		return 0, fmt.Errorf("invalid page link %q: not absolute", link)
	}
	raw := u.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("invalid page number %q", raw)
	}
	return page, nil
}

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is the active column sort; a zero Sort means unsorted
type Sort struct {
	Key       string
	Direction Direction
}

// Active reports whether a sort is applied
func (s Sort) Active() bool {
	return s.Key != ""
}

// Toggle cycles a column: a new key sorts ascending, then descending,
// then clears
func (s Sort) Toggle(key string) Sort {
	if s.Key != key {
		return Sort{Key: key, Direction: Asc}
	}
	if s.Direction == Asc {
		return Sort{Key: key, Direction: Desc}
	}
	return Sort{}
}

const dateLayout = "2006-01-02"

// DateRange is an inclusive filter range of YYYY-MM-DD dates; either end may be empty
type DateRange struct {
	From string
	To   string
}

// Validate checks the date format and that From is not after To
func (r DateRange) Validate() error {
	var from, to time.Time
	var err error
	if r.From != "" {
		if from, err = time.Parse(dateLayout, r.From); err != nil {
			return fmt.Errorf("invalid start date %q", r.From)
		}
	}
	if r.To != "" {
		if to, err = time.Parse(dateLayout, r.To); err != nil {
			return fmt.Errorf("invalid end date %q", r.To)
		}
	}
	if r.From != "" && r.To != "" && from.After(to) {
		return ErrDateRange
	}
	return nil
}

// Params accumulates a screen's filter parameters. Empty values are omitted.
type Params struct {
	values url.Values
}

// NewParams starts a parameter set for the given page
func NewParams(page int) *Params {
	p := &Params{values: url.Values{}}
	if page < 1 {
		page = 1
	}
	p.values.Set("page", strconv.Itoa(page))
	return p
}

// Text adds a trimmed text filter when it is non-empty
func (p *Params) Text(key, value string) *Params {
	if v := strings.TrimSpace(value); v != "" {
		p.values.Set(key, v)
	}
	return p
}

// Flag adds key=true when set
func (p *Params) Flag(key string, set bool) *Params {
	if set {
		p.values.Set(key, "true")
	}
	return p
}

// Range adds a date range under the given keys
func (p *Params) Range(fromKey, toKey string, r DateRange) *Params {
	p.Text(fromKey, r.From)
	p.Text(toKey, r.To)
	return p
}

// Sort adds sort_by and sort_direction when a sort is active
func (p *Params) Sort(s Sort) *Params {
	if s.Active() {
		p.values.Set("sort_by", s.Key)
		p.values.Set("sort_direction", string(s.Direction))
	}
	return p
}

// Values returns the accumulated query
func (p *Params) Values() url.Values {
	return p.values
}

// State is the paginated list shape every screen renders
type State[T any] struct {
	Rows    []T
	Links   []client.PageLink
	From    int
	To      int
	Total   int
	Page    int
	Loading bool
}
