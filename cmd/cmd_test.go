// ABOUTME: Shared fake backend and runtime for command tests
// ABOUTME: Commands run against httptest with a temp state directory and a stubbed password prompt

package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/interntrack/admin-cli/internal/config"
)

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Form   url.Values
}

type fakeBackend struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recorded
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{routes: map[string]http.HandlerFunc{}}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	req := recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
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

func (b *fakeBackend) json(pattern string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[pattern] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	}
}

func (b *fakeBackend) pdf(pattern string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[pattern] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 report"))
	}
}

func (b *fakeBackend) all(method, path string) []recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recorded
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// last returns the most recent request to method and path
func (b *fakeBackend) last(t *testing.T, method, path string) recorded {
	t.Helper()
	reqs := b.all(method, path)
	if len(reqs) == 0 {
		t.Fatalf("expected a %s %s request", method, path)
	}
	return reqs[len(reqs)-1]
}

var adminUser = map[string]any{"id": 1, "name": "Admin", "email": "admin@example.com", "role": "super_admin"}

// newTestRuntime wires a runtime against b. A non-empty token starts the
// command signed in.
func newTestRuntime(t *testing.T, b *fakeBackend, token string) *runtime {
	t.Helper()
	cfg := &config.Config{
		APIURL:           b.server.URL,
		StateDir:         t.TempDir(),
		LogLevel:         "error",
		LogFormat:        "text",
		ToastDuration:    time.Second,
		CountdownSeconds: 3,
		ReportDir:        t.TempDir(),
		Timeout:          5 * time.Second,
	}
	rt := newRuntime(cfg)
	rt.deps.CountdownTick = 10 * time.Millisecond
	if token != "" {
		if err := rt.prefs.SetToken(token); err != nil {
			t.Fatal(err)
		}
	}
	return rt
}

// signedIn returns a backend that recognizes the admin token
func signedIn(t *testing.T) *fakeBackend {
	t.Helper()
	b := newFakeBackend(t)
	b.json("GET /api/me", http.StatusOK, adminUser)
	b.json("POST /api/logout", http.StatusNoContent, nil)
	return b
}

func page(rows ...map[string]any) map[string]any {
	if rows == nil {
		rows = []map[string]any{}
	}
	return map[string]any{"data": rows, "links": []map[string]any{}, "from": 1, "to": len(rows), "total": len(rows)}
}

// stubPrompt answers password prompts in order
func stubPrompt(t *testing.T, answers ...string) *[]string {
	t.Helper()
	var prompts []string
	orig := passwordPrompt
	passwordPrompt = func(w io.Writer, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		if len(answers) == 0 {
			t.Fatalf("unexpected prompt %q", prompt)
		}
		answer := answers[0]
		answers = answers[1:]
		return answer, nil
	}
	t.Cleanup(func() { passwordPrompt = orig })
	return &prompts
}

func withJSON(t *testing.T) {
	t.Helper()
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })
}
