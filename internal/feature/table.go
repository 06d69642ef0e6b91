// ABOUTME: Filtered, sortable list store shared by projects, audit logs, and users
// ABOUTME: Debounced text fields, immediate select fields, a date range, and a column sort

package feature

import (
	"context"
	"net/url"
	"slices"
	"sync"

	"github.com/interntrack/admin-cli/internal/listing"
)

// TableFilters is the filter set of a table screen
type TableFilters struct {
	Text   map[string]string
	Select map[string]string
	Dates  listing.DateRange
	Sort   listing.Sort
}

func (f TableFilters) clone() TableFilters {
	c := TableFilters{Text: map[string]string{}, Select: map[string]string{}, Dates: f.Dates, Sort: f.Sort}
	for k, v := range f.Text {
		c.Text[k] = v
	}
	for k, v := range f.Select {
		c.Select[k] = v
	}
	return c
}

type tableSpec[T any] struct {
	key      string
	text     []string
	selects  []string
	sortKeys []string
	// dateFrom and dateTo name the range parameters
	dateFrom, dateTo string
	defaultSort      listing.Sort
	list             listing.Config[T]
}

// Table is a list screen with text, select, date, and sort filters
type Table[T any] struct {
	deps Deps
	spec tableSpec[T]
	list *listing.List[T]

	mu      sync.Mutex
	filters TableFilters
}

func newTable[T any](d Deps, spec tableSpec[T]) *Table[T] {
	d = d.withDefaults()
	t := &Table[T]{deps: d, spec: spec}
	t.filters = t.initial()
	spec.list.Query = t.query
	t.list = listing.NewList(listConfig(d, spec.list))
	return t
}

func (t *Table[T]) initial() TableFilters {
	return TableFilters{Text: map[string]string{}, Select: map[string]string{}, Sort: t.spec.defaultSort}
}

// List exposes the paginated state
func (t *Table[T]) List() *listing.List[T] { return t.list }

// SortKeys lists the sortable columns
func (t *Table[T]) SortKeys() []string { return slices.Clone(t.spec.sortKeys) }

// Filters returns a copy of the current filters
func (t *Table[T]) Filters() TableFilters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filters.clone()
}

func (t *Table[T]) query(page int) (url.Values, error) {
	f := t.Filters()
	if err := f.Dates.Validate(); err != nil {
		return nil, err
	}
	p := listing.NewParams(page)
	for _, field := range t.spec.text {
		p.Text(field, f.Text[field])
	}
	for _, field := range t.spec.selects {
		p.Text(field, f.Select[field])
	}
	if t.spec.dateFrom != "" {
		p.Range(t.spec.dateFrom, t.spec.dateTo, f.Dates)
	}
	p.Sort(f.Sort)
	return p.Values(), nil
}

func (t *Table[T]) reload() <-chan struct{} {
	t.deps.Debouncer.Cancel(t.spec.key)
	return t.list.Load(1)
}

// SetText updates a text filter; the fetch waits for typing to settle
func (t *Table[T]) SetText(field, value string) {
	t.mu.Lock()
	t.filters.Text[field] = value
	t.mu.Unlock()
	t.deps.changed()
	t.deps.Debouncer.Trigger(t.spec.key, func() { t.list.Load(1) })
}

// SetSelect updates a select filter and fetches immediately; empty clears it
func (t *Table[T]) SetSelect(field, value string) <-chan struct{} {
	t.mu.Lock()
	t.filters.Select[field] = value
	t.mu.Unlock()
	return t.reload()
}

// SetDates changes the date range and fetches immediately
func (t *Table[T]) SetDates(r listing.DateRange) <-chan struct{} {
	t.mu.Lock()
	t.filters.Dates = r
	t.mu.Unlock()
	return t.reload()
}

// ToggleSort cycles the sort on a column. Unknown columns are ignored.
func (t *Table[T]) ToggleSort(key string) <-chan struct{} {
	if !slices.Contains(t.spec.sortKeys, key) {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	t.mu.Lock()
	t.filters.Sort = t.filters.Sort.Toggle(key)
	t.mu.Unlock()
	return t.reload()
}

// SetFilters replaces every filter at once and fetches the given page. A
// zero sort keeps the screen's default.
func (t *Table[T]) SetFilters(f TableFilters, page int) <-chan struct{} {
	next := f.clone()
	if !next.Sort.Active() {
		next.Sort = t.spec.defaultSort
	}
	t.mu.Lock()
	t.filters = next
	t.mu.Unlock()
	t.deps.Debouncer.Cancel(t.spec.key)
	return t.list.Load(page)
}

// ResetFilters restores the initial filters and reloads page 1
func (t *Table[T]) ResetFilters() <-chan struct{} {
	t.mu.Lock()
	t.filters = t.initial()
	t.mu.Unlock()
	return t.reload()
}

// Load fetches a page with the current filters
func (t *Table[T]) Load(page int) <-chan struct{} { return t.list.Load(page) }

// GoTo follows a paginator link
func (t *Table[T]) GoTo(link *string) <-chan struct{} { return t.list.GoTo(link) }

// Report saves the report for the current filters
func (t *Table[T]) Report(ctx context.Context) (string, error) { return t.list.Report(ctx) }

// Close cancels in-flight work
func (t *Table[T]) Close() {
	t.deps.Debouncer.Cancel(t.spec.key)
	t.list.Close()
}
