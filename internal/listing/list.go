// ABOUTME: Generic paginated list store used by every list screen
// ABOUTME: Owns the fetch lifecycle: loading flag, supersession, cancellation, errors, reports

package listing

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/interntrack/admin-cli/internal/client"
)

// ErrNothingToReport is returned when a report is requested for an empty list
var ErrNothingToReport = errors.New("nothing to report")

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("list closed")

// Config wires a List to its endpoints and collaborators
type Config[T any] struct {
	// Resource names the report file, e.g. "interns"
	Resource string
	// FailMessage is the toast shown when a fetch fails
	FailMessage string

	Fetch  func(ctx context.Context, query url.Values) (*client.Page[T], error)
	Report func(ctx context.Context, query url.Values) ([]byte, error)
	// Query builds the filter parameters for a page. An error aborts the
	// fetch before any request is sent.
	Query func(page int) (url.Values, error)

	Toaster   *Toaster
	ReportDir string
	// OnUnauthorized is called when the backend answers 401
	OnUnauthorized func()
	// OnChange is called after every state change
	OnChange func()
	Now      func() time.Time
}

// List is a paginated list bound to one screen. Fetches started by a
// superseded call or after Close never touch the state.
type List[T any] struct {
	cfg Config[T]

	ctx  context.Context
	stop context.CancelFunc

	mu            sync.Mutex
	state         State[T]
	loaded        bool
	cancel        context.CancelFunc
	seq           uint64
	closed        bool
	reportLoading bool
}

// NewList creates an empty list store
func NewList[T any](cfg Config[T]) *List[T] {
	if cfg.Toaster == nil {
		cfg.Toaster = NewToaster(0, nil)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	ctx, stop := context.WithCancel(context.Background())
	return &List[T]{cfg: cfg, ctx: ctx, stop: stop, state: State[T]{Page: 1}}
}

// Toaster returns the toaster the list reports to
func (l *List[T]) Toaster() *Toaster {
	return l.cfg.Toaster
}

// State returns a copy of the current list state
func (l *List[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.state
	st.Rows = append([]T(nil), l.state.Rows...)
	st.Links = append([]client.PageLink(nil), l.state.Links...)
	return st
}

// ReportLoading reports whether a report download is in progress
func (l *List[T]) ReportLoading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reportLoading
}

// Load fetches the given page with the screen's current filters. Loading is
// set before Load returns; the channel closes once the request settles.
func (l *List[T]) Load(page int) <-chan struct{} {
	query, err := l.cfg.Query(page)
	if err != nil {
		l.cfg.Toaster.Error(err.Error())
		return settled()
	}
	return l.fetch(page, query)
}

// Refresh reloads the current page
func (l *List[T]) Refresh() <-chan struct{} {
	l.mu.Lock()
	page := l.state.Page
	l.mu.Unlock()
	return l.Load(page)
}

// GoTo follows a paginator link. A nil link is ignored; a malformed link
// shows a toast and sends nothing.
func (l *List[T]) GoTo(link *string) <-chan struct{} {
	if link == nil {
		return settled()
	}
	page, err := PageFromURL(*link)
	if err != nil {
		l.cfg.Toaster.Error(MsgInvalidPage)
		return settled()
	}
	return l.Load(page)
}

func (l *List[T]) fetch(page int, query url.Values) <-chan struct{} {
	done := make(chan struct{})

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		close(done)
		return done
	}
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(l.ctx)
	l.cancel = cancel
	l.seq++
	seq := l.seq
	l.state.Loading = true
	l.state.Page = page
	l.mu.Unlock()
	l.changed()

	go func() {
		defer close(done)
		defer cancel()

		result, err := l.cfg.Fetch(ctx, query)

		l.mu.Lock()
		if l.closed || seq != l.seq {
			l.mu.Unlock()
			return
		}
		l.cancel = nil
		l.state.Loading = false
		if err != nil {
			l.state.Rows = nil
			l.state.Links = nil
			l.state.From, l.state.To, l.state.Total = 0, 0, 0
			l.mu.Unlock()
			l.fail(err, l.cfg.FailMessage)
			l.changed()
			return
		}
		if result == nil {
			result = &client.Page[T]{}
		}
		l.loaded = true
		l.state.Rows = result.Data
		l.state.Links = result.Links
		l.state.From = result.From
		l.state.To = result.To
		l.state.Total = result.Total
		l.mu.Unlock()
		l.changed()
	}()

	return done
}

// Patch applies fn to every row for which it returns true, without a
// request. It returns how many rows changed.
func (l *List[T]) Patch(fn func(row *T) bool) int {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return 0
	}
	n := 0
	for i := range l.state.Rows {
		if fn(&l.state.Rows[i]) {
			n++
		}
	}
	l.mu.Unlock()
	if n > 0 {
		l.changed()
	}
	return n
}

// Report downloads the report for the current filters and saves it. The
// filters are validated first; an invalid range sends nothing.
func (l *List[T]) Report(ctx context.Context) (string, error) {
	query, err := l.cfg.Query(1)
	if err != nil {
		l.cfg.Toaster.Error(err.Error())
		return "", err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return "", ErrClosed
	}
	if l.loaded && l.state.Total == 0 {
		l.mu.Unlock()
		return "", ErrNothingToReport
	}
	l.reportLoading = true
	l.mu.Unlock()
	l.changed()

	defer func() {
		l.mu.Lock()
		l.reportLoading = false
		l.mu.Unlock()
		l.changed()
	}()

	data, err := l.cfg.Report(ctx, query)
	if err != nil {
		l.fail(err, MsgReportFailed)
		return "", err
	}
	path, err := SaveReport(l.cfg.ReportDir, ReportFilename(l.cfg.Resource, l.cfg.Now()), data)
	if err != nil {
		l.cfg.Toaster.Error(MsgReportFailed)
		return "", err
	}
	slog.Info("Report saved", "resource", l.cfg.Resource, "path", path, "bytes", len(data))
	l.cfg.Toaster.Success(MsgReportSaved)
	return path, nil
}

// Close cancels in-flight requests. No state changes after Close returns.
func (l *List[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.stop()
}

// fail routes a request error: 401 goes to the session, anything else is a toast
func (l *List[T]) fail(err error, msg string) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if client.IsUnauthorized(err) {
		if l.cfg.OnUnauthorized != nil {
			l.cfg.OnUnauthorized()
		}
		return
	}
	slog.Warn("List request failed", "resource", l.cfg.Resource, "error", err)
	l.cfg.Toaster.Error(msg)
}

func (l *List[T]) changed() {
	if l.cfg.OnChange != nil {
		l.cfg.OnChange()
	}
}

func settled() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
