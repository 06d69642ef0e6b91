// ABOUTME: Configuration loader for the admin client
// ABOUTME: Merges flags, INTERNTRACK_* environment, an optional YAML file, and defaults via viper

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/interntrack/admin-cli/internal/localstore"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable, e.g. INTERNTRACK_API_URL
const EnvPrefix = "INTERNTRACK"

const (
	DefaultAPIURL           = "http://localhost:8000"
	DefaultDebounce         = 300 * time.Millisecond
	DefaultToastDuration    = 5 * time.Second
	DefaultCountdownSeconds = 15
	DefaultTimeout          = 30 * time.Second
)

type Config struct {
	APIURL           string
	StateDir         string
	LogLevel         string // debug, info, warn, error
	LogFormat        string // text, json
	Debounce         time.Duration
	ToastDuration    time.Duration
	CountdownSeconds int
	ReportDir        string
	Timeout          time.Duration
	NerdFonts        string // auto, always, never

	// File is the config file that was read, empty when none was found
	File string
}

// Overrides carries values set on the command line. Non-empty fields win
// over every other source.
type Overrides struct {
	ConfigFile string
	APIURL     string
	StateDir   string
}

// Load builds the effective configuration
func Load(o Overrides) (*Config, error) {
	if os.Getenv(EnvPrefix+"_ENV") == "dev" {
		// .env is optional in development
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("state_dir", localstore.DefaultDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("debounce", DefaultDebounce)
	v.SetDefault("toast_duration", DefaultToastDuration)
	v.SetDefault("countdown_seconds", DefaultCountdownSeconds)
	v.SetDefault("report_dir", ".")
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("nerd_fonts", "auto")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", o.ConfigFile, err)
		}
	} else if dir := searchDir(o); dir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if o.APIURL != "" {
		v.Set("api_url", o.APIURL)
	}
	if o.StateDir != "" {
		v.Set("state_dir", o.StateDir)
	}

	cfg := &Config{
		APIURL:           v.GetString("api_url"),
		StateDir:         v.GetString("state_dir"),
		LogLevel:         v.GetString("log_level"),
		LogFormat:        v.GetString("log_format"),
		CountdownSeconds: v.GetInt("countdown_seconds"),
		ReportDir:        v.GetString("report_dir"),
		NerdFonts:        strings.ToLower(v.GetString("nerd_fonts")),
		File:             v.ConfigFileUsed(),
	}
	for key, dst := range map[string]*time.Duration{
		"debounce":       &cfg.Debounce,
		"toast_duration": &cfg.ToastDuration,
		"timeout":        &cfg.Timeout,
	} {
		d, err := duration(v, key)
		if err != nil {
			return nil, err
		}
		*dst = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// searchDir is where config.yaml is looked for when --config is not given.
// It follows the state directory so --state-dir and INTERNTRACK_STATE_DIR
// keep a whole profile in one place.
func searchDir(o Overrides) string {
	if o.StateDir != "" {
		return o.StateDir
	}
	if dir := os.Getenv(EnvPrefix + "_STATE_DIR"); dir != "" {
		return dir
	}
	return localstore.DefaultDir()
}

// duration reads a duration setting. A bare number such as 300 is refused
// rather than read as nanoseconds.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration with a unit such as 300ms or 5s, got %q", key, raw)
	}
	return d, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an absolute http(s) URL, got %q", c.APIURL)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	if c.ToastDuration <= 0 {
		return fmt.Errorf("toast_duration must be positive")
	}
	if c.CountdownSeconds < 1 {
		return fmt.Errorf("countdown_seconds must be at least 1")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	switch c.NerdFonts {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("nerd_fonts must be auto, always or never, got %q", c.NerdFonts)
	}
	return nil
}

// LogFile is where the TUI writes its log while it owns the terminal
func (c *Config) LogFile() string {
	if c.StateDir == "" {
		return ""
	}
	return filepath.Join(c.StateDir, "debug.log")
}

// view is the YAML shape printed by `config show`
type view struct {
	APIURL           string `yaml:"api_url"`
	StateDir         string `yaml:"state_dir"`
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
	Debounce         string `yaml:"debounce"`
	ToastDuration    string `yaml:"toast_duration"`
	CountdownSeconds int    `yaml:"countdown_seconds"`
	ReportDir        string `yaml:"report_dir"`
	Timeout          string `yaml:"timeout"`
	NerdFonts        string `yaml:"nerd_fonts"`
}

// YAML renders the effective settings in the config file format
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(view{
		APIURL:           c.APIURL,
		StateDir:         c.StateDir,
		LogLevel:         c.LogLevel,
		LogFormat:        c.LogFormat,
		Debounce:         c.Debounce.String(),
		ToastDuration:    c.ToastDuration.String(),
		CountdownSeconds: c.CountdownSeconds,
		ReportDir:        c.ReportDir,
		Timeout:          c.Timeout.String(),
		NerdFonts:        c.NerdFonts,
	})
}
