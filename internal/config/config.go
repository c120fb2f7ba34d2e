// Package config handles dmc configuration file parsing.
//
// The configuration is a YAML file, by default .dmc.yaml in the working
// directory or config.yaml under the user config dir (~/.config/dmc):
//
//	server_url: "https://chat.example.com"   - Server origin
//	api_prefix: "/api"                       - REST API mount point
//	session_cookie: "..."                    - Session cookie value (login)
//	me: "alice"                              - Fallback for the page-provided username
//	poll_interval: "2.5s"                    - Active conversation poll interval
//	search_delay: "250ms"                    - Search settle delay
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the per-directory configuration file.
const FileName = ".dmc.yaml"

// Defaults for optional fields.
const (
	DefaultAPIPrefix         = "/api"
	DefaultPagePath          = "/"
	DefaultSessionCookieName = "sessionid"
	DefaultCSRFCookieName    = "csrftoken"
	DefaultCSRFHeader        = "X-CSRFToken"
	DefaultPollInterval      = 2500 * time.Millisecond
	DefaultSearchDelay       = 250 * time.Millisecond
	DefaultMinQueryLength    = 2
	DefaultRequestTimeout    = 10 * time.Second
)

// customPath holds an optional config file path set by --config.
var customPath string

// SetPath sets a custom config file path for Load() to use.
// Pass an empty string to reset to the default lookup.
func SetPath(path string) {
	customPath = path
}

// GetPath returns the path Save() writes to: the custom path if set,
// otherwise FileName in the working directory.
func GetPath() string {
	if customPath != "" {
		return customPath
	}
	return FileName
}

var (
	urlPattern    = regexp.MustCompile(`^https?://[^\s/]+(/[^\s]*)?$`)
	prefixPattern = regexp.MustCompile(`^(/[A-Za-z0-9._~-]+)*$`)
	cookiePattern = regexp.MustCompile(`^[!#$%&'*+\-.^_` + "`" + `|~0-9A-Za-z]+$`)
	headerPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// Config represents the dmc configuration file.
type Config struct {
	ServerURL         string `yaml:"server_url"`
	APIPrefix         string `yaml:"api_prefix,omitempty"`
	PagePath          string `yaml:"page_path,omitempty"`
	SessionCookie     string `yaml:"session_cookie,omitempty"`
	SessionCookieName string `yaml:"session_cookie_name,omitempty"`
	CSRFCookieName    string `yaml:"csrf_cookie_name,omitempty"`
	CSRFHeader        string `yaml:"csrf_header,omitempty"`
	Me                string `yaml:"me,omitempty"`
	PollInterval      string `yaml:"poll_interval,omitempty"`
	SearchDelay       string `yaml:"search_delay,omitempty"`
	MinQueryLength    *int   `yaml:"min_query_length,omitempty"`
	RequestTimeout    string `yaml:"request_timeout,omitempty"`
	LogFile           string `yaml:"log_file,omitempty"`
	LogLevel          string `yaml:"log_level,omitempty"`
}

// Load reads the configuration from the custom path if set, else from the
// first existing default location. A missing file is returned as an
// os.IsNotExist error.
func Load() (*Config, error) {
	path, err := FindPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads and parses a configuration file from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err // Return unwrapped for os.IsNotExist() checks
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// FindPath resolves the config file path without reading it.
func FindPath() (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}
	userPath, err := UserPath()
	if err != nil {
		return FileName, &os.PathError{Op: "open", Path: FileName, Err: os.ErrNotExist}
	}
	if _, err := os.Stat(userPath); err != nil {
		return userPath, err
	}
	return userPath, nil
}

// UserPath is the per-user configuration location.
func UserPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dmc", "config.yaml"), nil
}

// Save writes the configuration to GetPath() with owner-only permissions,
// since it carries the session cookie.
func (c *Config) Save() error {
	path := GetPath()
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	header := "# Generated by: dmc init\n# Contains your session cookie - DO NOT COMMIT\n\n"
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(header+string(data)), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays DMC_* environment variables onto the file values.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("DMC_URL")); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DMC_SESSION")); v != "" {
		c.SessionCookie = v
	}
	if v := strings.TrimSpace(os.Getenv("DMC_ME")); v != "" {
		c.Me = v
	}
	if v := strings.TrimSpace(os.Getenv("DMC_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("DMC_LOG_FILE")); v != "" {
		c.LogFile = v
	}
}

// Validate checks that required fields are present and optional ones parse.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	if !urlPattern.MatchString(c.ServerURL) {
		return fmt.Errorf("server_url must be a valid HTTP(S) URL")
	}
	if !prefixPattern.MatchString(c.APIPrefix) {
		return fmt.Errorf("api_prefix must be empty or a path like /api")
	}
	if c.PagePath != "" && !strings.HasPrefix(c.PagePath, "/") {
		return fmt.Errorf("page_path must start with /")
	}
	if c.SessionCookieName != "" && !cookiePattern.MatchString(c.SessionCookieName) {
		return fmt.Errorf("session_cookie_name is not a valid cookie name")
	}
	if c.CSRFCookieName != "" && !cookiePattern.MatchString(c.CSRFCookieName) {
		return fmt.Errorf("csrf_cookie_name is not a valid cookie name")
	}
	if c.CSRFHeader != "" && !headerPattern.MatchString(c.CSRFHeader) {
		return fmt.Errorf("csrf_header is not a valid header name")
	}
	for _, d := range []struct {
		name, value string
		allowZero   bool
	}{
		{"poll_interval", c.PollInterval, false},
		{"search_delay", c.SearchDelay, false},
		{"request_timeout", c.RequestTimeout, true},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		if parsed < 0 || (parsed == 0 && !d.allowZero) {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}
	if c.MinQueryLength != nil && *c.MinQueryLength < 1 {
		return fmt.Errorf("min_query_length must be at least 1")
	}
	return nil
}

// BaseURL is ServerURL without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.ServerURL, "/")
}

func (c *Config) APIPrefixOrDefault() string {
	if c.APIPrefix == "" {
		return DefaultAPIPrefix
	}
	return c.APIPrefix
}

func (c *Config) PagePathOrDefault() string {
	if c.PagePath == "" {
		return DefaultPagePath
	}
	return c.PagePath
}

func (c *Config) SessionCookieNameOrDefault() string {
	if c.SessionCookieName == "" {
		return DefaultSessionCookieName
	}
	return c.SessionCookieName
}

func (c *Config) CSRFCookieNameOrDefault() string {
	if c.CSRFCookieName == "" {
		return DefaultCSRFCookieName
	}
	return c.CSRFCookieName
}

func (c *Config) CSRFHeaderOrDefault() string {
	if c.CSRFHeader == "" {
		return DefaultCSRFHeader
	}
	return c.CSRFHeader
}

// PollIntervalDuration returns the poll interval; invalid values fall back to
// the default (Validate reports them).
func (c *Config) PollIntervalDuration() time.Duration {
	return durationOr(c.PollInterval, DefaultPollInterval, false)
}

func (c *Config) SearchDelayDuration() time.Duration {
	return durationOr(c.SearchDelay, DefaultSearchDelay, false)
}

// RequestTimeoutDuration returns the per-request timeout; zero means none.
func (c *Config) RequestTimeoutDuration() time.Duration {
	return durationOr(c.RequestTimeout, DefaultRequestTimeout, true)
}

func (c *Config) MinQueryLengthOrDefault() int {
	if c.MinQueryLength == nil || *c.MinQueryLength < 1 {
		return DefaultMinQueryLength
	}
	return *c.MinQueryLength
}

// LogFileOrDefault is where the TUI writes its log.
func (c *Config) LogFileOrDefault() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(os.TempDir(), "dmc.log")
}

func durationOr(raw string, fallback time.Duration, allowZero bool) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return fallback
	}
	return d
}

// FirstToken returns the first whitespace-separated word of s, used to
// reduce a displayed "alice (logout)" style label to the username.
func FirstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
