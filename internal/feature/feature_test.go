// ABOUTME: Shared fake backend for the screen store tests
// ABOUTME: Routes by method and path, records every request, and wires real stores against it

package feature

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/listing"
	"github.com/interntrack/admin-cli/internal/localstore"
	"github.com/interntrack/admin-cli/internal/session"
)

type request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Form   url.Values
}

type backend struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []request
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{t: t, routes: map[string]http.HandlerFunc{}}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	req := request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
	if ct := r.Header.Get("Content-Type"); len(ct) > 19 && ct[:19] == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			req.Form = url.Values(r.MultipartForm.Value)
		}
	} else {
		req.Body, _ = io.ReadAll(r.Body)
	}

	b.mu.Lock()
	b.requests = append(b.requests, req)
	h, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "not found"})
		return
	}
	h(w, r)
}

func (b *backend) handle(pattern string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[pattern] = h
}

func (b *backend) json(pattern string, status int, body any) {
	b.handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	})
}

func (b *backend) all(method, path string) []request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []request
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *backend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

type fixture struct {
	backend *backend
	deps    Deps
	prefs   *localstore.Store
}

// newFixture wires stores against the fake backend with a signed-in session
func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := newBackend(t)
	b.json("GET /api/me", http.StatusOK, map[string]any{"id": 1, "name": "Admin", "email": "admin@example.com", "role": "super_admin"})
	b.json("POST /api/logout", http.StatusNoContent, nil)

	prefs := localstore.New(t.TempDir())
	if err := prefs.SetToken("tok"); err != nil {
		t.Fatal(err)
	}
	api := client.New(b.server.URL, client.WithTokenSource(prefs))
	sess := session.New(api, prefs)
	sess.Initialize(t.Context())

	debouncer := listing.NewDebouncer(0)
	t.Cleanup(debouncer.Stop)

	return &fixture{
		backend: b,
		prefs:   prefs,
		deps: Deps{
			API:       api,
			Session:   sess,
			Toaster:   listing.NewToaster(0, nil),
			Debouncer: debouncer,
			Prefs:     prefs,
			ReportDir: t.TempDir(),
			Now:       func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) },
		},
	}
}

func page(rows ...map[string]any) map[string]any {
	if rows == nil {
		rows = []map[string]any{}
	}
	next := "http://localhost/api/x?page=2"
	return map[string]any{
		"data":  rows,
		"links": []map[string]any{{"url": nil, "label": "&laquo; Previous", "active": false}, {"url": next, "label": "Next", "active": false}},
		"from":  1,
		"to":    len(rows),
		"total": len(rows),
	}
}

func toast(t *testing.T, d Deps) listing.Toast {
	t.Helper()
	got, ok := d.Toaster.Current()
	if !ok {
		t.Fatal("expected a toast")
	}
	return got
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("request did not settle")
	}
}
