// ABOUTME: Tests for the embedded forms
// ABOUTME: Validators, error text, and esc handling

package forms

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/feature"
)

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"fields sorted", &client.ValidationError{Fields: client.FieldErrors{
			"password": "Password is required",
			"email":    "Email is invalid",
		}}, "Email is invalid\nPassword is required"},
		{"api message", &client.APIError{StatusCode: 500, Message: "Server exploded"}, "Server exploded"},
		{"fallback", errors.New("dial tcp: refused"), "Login failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorText(tt.err, "Login failed"); got != tt.want {
				t.Errorf("ErrorText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateScore(t *testing.T) {
	for _, s := range []string{"0", "55", "100", " 7 "} {
		if err := validateScore(s); err != nil {
			t.Errorf("validateScore(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"", "-1", "101", "abc"} {
		if err := validateScore(s); err == nil {
			t.Errorf("validateScore(%q) should fail", s)
		}
	}
	if got := (EvaluationValues{Performance: " 88"}).Score(); got != 88 {
		t.Errorf("Score = %d, want 88", got)
	}
}

func TestValidateLogo(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(small, []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}
	big := filepath.Join(dir, "big.png")
	if err := os.WriteFile(big, make([]byte, feature.MaxLogoSize+1), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := validateLogo(""); err != nil {
		t.Errorf("empty path should be accepted: %v", err)
	}
	if err := validateLogo(small); err != nil {
		t.Errorf("small logo should be accepted: %v", err)
	}
	if err := validateLogo(big); err == nil || !strings.Contains(err.Error(), "2MB") {
		t.Errorf("large logo error = %v", err)
	}
	if err := validateLogo(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("missing file should be rejected")
	}
}

func TestEscCancelsOnlyCancelableForms(t *testing.T) {
	esc := tea.KeyMsg{Type: tea.KeyEsc}

	f := Register(&RegisterValues{})
	_, cmd := f.Update(esc)
	if cmd == nil {
		t.Fatal("expected a cancel command")
	}
	if msg, ok := cmd().(CanceledMsg); !ok || msg.ID != "register" {
		t.Errorf("expected CanceledMsg{register}, got %#v", cmd())
	}

	login := Login(&LoginValues{})
	_, cmd = login.Update(esc)
	if cmd != nil {
		if _, ok := cmd().(CanceledMsg); ok {
			t.Error("sign-in form must not be cancelable")
		}
	}
}

func TestFailShowsErrorAndReopens(t *testing.T) {
	v := &LoginValues{Email: "a@b.co"}
	f := Login(v)
	f.Fail(&client.ValidationError{Fields: client.FieldErrors{"password": "Password is required"}}, "Login failed")

	if !strings.Contains(f.View(), "Password is required") {
		t.Errorf("expected error under form, got:\n%s", f.View())
	}
	if f.Completed() {
		t.Error("form should be open after Fail")
	}
	if v.Email != "a@b.co" {
		t.Error("values must survive a reset")
	}
	f.ClearError()
	if strings.Contains(f.View(), "Password is required") {
		t.Error("ClearError should remove the message")
	}
}

func TestUploads(t *testing.T) {
	dir := t.TempDir()
	cv := filepath.Join(dir, "cv.pdf")
	if err := os.WriteFile(cv, []byte("%PDF"), 0600); err != nil {
		t.Fatal(err)
	}

	uploads, closeAll, err := Uploads(cv, "")
	defer closeAll()
	if err != nil {
		t.Fatalf("Uploads: %v", err)
	}
	if uploads[0] == nil || uploads[0].Filename != "cv.pdf" {
		t.Errorf("first upload = %+v", uploads[0])
	}
	if uploads[1] != nil {
		t.Error("empty path should leave its slot nil")
	}

	_, closeMissing, err := Uploads(filepath.Join(dir, "missing.png"))
	defer closeMissing()
	if !feature.IsInvalid(err) {
		t.Fatalf("missing file should be a field error, got %v", err)
	}
	if got := ErrorText(err, "Save failed."); !strings.Contains(got, "missing.png") {
		t.Errorf("error text %q should name the file", got)
	}
}

func TestFilterValues(t *testing.T) {
	tests := []struct {
		date    string
		wantErr bool
	}{
		{date: ""},
		{date: "2026-01-31"},
		{date: " 2026-01-31 "},
		{date: "31/01/2026", wantErr: true},
		{date: "2026-02-30", wantErr: true},
	}
	for _, tt := range tests {
		if err := validateDate(tt.date); (err != nil) != tt.wantErr {
			t.Errorf("validateDate(%q) = %v, wantErr %v", tt.date, err, tt.wantErr)
		}
	}

	v := FilterValues{From: " 2026-03-01", To: "2026-01-01 "}
	r := v.Range()
	if r.From != "2026-03-01" || r.To != "2026-01-01" {
		t.Errorf("Range() = %+v", r)
	}
	f := Filter("Projects filters", &v)
	if f.ID() != "filter" {
		t.Errorf("ID() = %q", f.ID())
	}
}
