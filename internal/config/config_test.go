// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, env, file, and flag precedence plus validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points XDG_CONFIG_HOME at an empty directory so a developer's
// real config never leaks into tests
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{"API_URL", "STATE_DIR", "DEBOUNCE", "TOAST_DURATION", "TIMEOUT", "COUNTDOWN_SECONDS", "LOG_LEVEL", "NERD_FONTS", "ENV"} {
		t.Setenv(EnvPrefix+"_"+key, "")
	}
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "interntrack", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default api url, got %s", cfg.APIURL)
	}
	if cfg.StateDir != filepath.Join(dir, "interntrack") {
		t.Errorf("expected XDG state dir, got %s", cfg.StateDir)
	}
	if cfg.Debounce != 300*time.Millisecond {
		t.Errorf("expected 300ms debounce, got %v", cfg.Debounce)
	}
	if cfg.ToastDuration != 5*time.Second {
		t.Errorf("expected 5s toast, got %v", cfg.ToastDuration)
	}
	if cfg.CountdownSeconds != 15 {
		t.Errorf("expected 15s countdown, got %d", cfg.CountdownSeconds)
	}
	if cfg.File != "" {
		t.Errorf("expected no config file, got %s", cfg.File)
	}
}

func TestLoad_FileThenEnvThenFlag(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "api_url: http://file.example:8000\ndebounce: 500ms\ncountdown_seconds: 10\n")

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "http://file.example:8000" {
		t.Errorf("expected file api url, got %s", cfg.APIURL)
	}
	if cfg.Debounce != 500*time.Millisecond {
		t.Errorf("expected 500ms from file, got %v", cfg.Debounce)
	}

	t.Setenv("INTERNTRACK_API_URL", "http://env.example")
	cfg, err = Load(Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "http://env.example" {
		t.Errorf("expected env to beat file, got %s", cfg.APIURL)
	}
	if cfg.CountdownSeconds != 10 {
		t.Errorf("expected file value to survive, got %d", cfg.CountdownSeconds)
	}

	cfg, err = Load(Overrides{APIURL: "https://flag.example"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "https://flag.example" {
		t.Errorf("expected flag to beat env, got %s", cfg.APIURL)
	}
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	isolate(t)
	_, err := Load(Overrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_DotEnvInDev(t *testing.T) {
	isolate(t)
	wd := t.TempDir()
	os.WriteFile(filepath.Join(wd, ".env"), []byte("INTERNTRACK_REPORT_DIR=/tmp/reports\n"), 0600)
	t.Chdir(wd)
	t.Setenv("INTERNTRACK_ENV", "dev")
	t.Cleanup(func() { os.Unsetenv("INTERNTRACK_REPORT_DIR") })

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ReportDir != "/tmp/reports" {
		t.Errorf("expected report dir from .env, got %s", cfg.ReportDir)
	}
}

func TestLoad_ConfigFollowsStateDir(t *testing.T) {
	tests := []struct {
		name string
		set  func(t *testing.T, dir string) Overrides
	}{
		{name: "flag", set: func(t *testing.T, dir string) Overrides { return Overrides{StateDir: dir} }},
		{name: "env", set: func(t *testing.T, dir string) Overrides {
			t.Setenv("INTERNTRACK_STATE_DIR", dir)
			return Overrides{}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xdg := isolate(t)
			writeConfig(t, xdg, "api_url: http://default-dir.example\n")
			profile := t.TempDir()
			path := writeConfig(t, profile, "api_url: http://profile.example\n")
			state := filepath.Dir(path)

			cfg, err := Load(tt.set(t, state))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.APIURL != "http://profile.example" {
				t.Errorf("expected the state dir config, got %s", cfg.APIURL)
			}
			if cfg.File != path || cfg.StateDir != state {
				t.Errorf("unexpected file %s or state dir %s", cfg.File, cfg.StateDir)
			}
		})
	}
}

func TestLoad_DurationsNeedUnits(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		value   string
		want    time.Duration
		wantErr bool
	}{
		{name: "unitless debounce", env: "INTERNTRACK_DEBOUNCE", value: "300", wantErr: true},
		{name: "unitless timeout", env: "INTERNTRACK_TIMEOUT", value: "30", wantErr: true},
		{name: "garbage", env: "INTERNTRACK_TOAST_DURATION", value: "soon", wantErr: true},
		{name: "milliseconds", env: "INTERNTRACK_DEBOUNCE", value: "250ms", want: 250 * time.Millisecond},
		{name: "zero disables debounce", env: "INTERNTRACK_DEBOUNCE", value: "0", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.env, tt.value)

			cfg, err := Load(Overrides{})
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "unit") {
					t.Errorf("expected a unit error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.Debounce != tt.want {
				t.Errorf("expected %v, got %v", tt.want, cfg.Debounce)
			}
		})
	}
}

func TestLoad_UnitlessDurationInFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "debounce: 300\n")

	if _, err := Load(Overrides{}); err == nil || !strings.Contains(err.Error(), "debounce") {
		t.Errorf("expected debounce error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"relative url", func(c *Config) { c.APIURL = "localhost:8000" }, "api_url"},
		{"bad scheme", func(c *Config) { c.APIURL = "ftp://host" }, "api_url"},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Second }, "debounce"},
		{"zero countdown", func(c *Config) { c.CountdownSeconds = 0 }, "countdown_seconds"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"nerd fonts auto", func(c *Config) { c.NerdFonts = "auto" }, ""},
		{"nerd fonts unknown", func(c *Config) { c.NerdFonts = "yes" }, "nerd_fonts"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				APIURL:           "http://localhost:8000",
				Debounce:         DefaultDebounce,
				ToastDuration:    DefaultToastDuration,
				CountdownSeconds: DefaultCountdownSeconds,
				Timeout:          DefaultTimeout,
			}
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error mentioning %s, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestYAML(t *testing.T) {
	cfg := &Config{
		APIURL:           "http://localhost:8000",
		Debounce:         300 * time.Millisecond,
		ToastDuration:    5 * time.Second,
		CountdownSeconds: 15,
		Timeout:          30 * time.Second,
	}
	out, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML() error: %v", err)
	}
	for _, want := range []string{"api_url: http://localhost:8000", "debounce: 300ms", "countdown_seconds: 15"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
