// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies environment variable, config file, and flag precedence

package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// isolateConfig points the config search path at an empty directory
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("INTERNTRACK_API_URL", "")
	t.Setenv("INTERNTRACK_STATE_DIR", "")
	apiURL = ""
	configFile = ""
	stateDir = ""
	return dir
}

func resolvedAPIURL(t *testing.T) string {
	t.Helper()
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	return cfg.APIURL
}

func TestLoadConfig_APIURLDefault(t *testing.T) {
	isolateConfig(t)

	if url := resolvedAPIURL(t); url != "http://localhost:8000" {
		t.Errorf("expected default URL http://localhost:8000, got %s", url)
	}
}

func TestLoadConfig_APIURLFromEnv(t *testing.T) {
	isolateConfig(t)
	t.Setenv("INTERNTRACK_API_URL", "http://backend.example.com")

	if url := resolvedAPIURL(t); url != "http://backend.example.com" {
		t.Errorf("expected http://backend.example.com, got %s", url)
	}
}

func TestLoadConfig_APIURLFromConfigFile(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("api_url: https://file.example.com\n"), 0600); err != nil {
		t.Fatal(err)
	}
	configFile = path
	defer func() { configFile = "" }()

	if url := resolvedAPIURL(t); url != "https://file.example.com" {
		t.Errorf("expected config file URL, got %s", url)
	}
}

func TestLoadConfig_APIURLFlagOverridesEnv(t *testing.T) {
	isolateConfig(t)
	t.Setenv("INTERNTRACK_API_URL", "http://backend.example.com")
	apiURL = "http://flag-override.example.com"
	defer func() { apiURL = "" }()

	if url := resolvedAPIURL(t); url != "http://flag-override.example.com" {
		t.Errorf("expected flag to override env, got %s", url)
	}
}

func TestLoadConfig_StateDirFlagFindsItsConfig(t *testing.T) {
	isolateConfig(t)
	profile := t.TempDir()
	if err := os.WriteFile(filepath.Join(profile, "config.yaml"), []byte("api_url: https://profile.example.com\n"), 0600); err != nil {
		t.Fatal(err)
	}
	stateDir = profile
	defer func() { stateDir = "" }()

	if url := resolvedAPIURL(t); url != "https://profile.example.com" {
		t.Errorf("expected the --state-dir config, got %s", url)
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"login", "logout", "register", "whoami", "password", "dashboard", "company",
		"interns", "projects", "auditlogs", "users", "settings", "account", "config", "tui",
	}
	for _, name := range want {
		if cmd, _, err := rootCmd.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}
