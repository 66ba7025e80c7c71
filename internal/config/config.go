// Package config handles loading and managing briefdeck configuration.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// APIConfig holds the backend connection settings.
type APIConfig struct {
	URL           string  `toml:"url"`            // Backend origin (default: http://localhost:8080)
	APIKey        string  `toml:"api_key"`        // Sent as X-API-Key when set
	Timeout       string  `toml:"timeout"`        // Per-request timeout, Go duration syntax
	RateLimitQPS  float64 `toml:"rate_limit_qps"` // Client-side request rate; 0 disables
	AllowInsecure bool    `toml:"allow_insecure"` // Permit plain http to non-local hosts
}

// RetryConfig controls how the content store retries failed fetches.
type RetryConfig struct {
	MaxRetries      int    `toml:"max_retries"`      // 0 disables retry
	InitialInterval string `toml:"initial_interval"` // First backoff delay, Go duration syntax
}

// LayoutConfig holds presentation defaults.
type LayoutConfig struct {
	PxPerCell   int    `toml:"px_per_cell"`  // Pixel width assumed per terminal cell
	DefaultSort string `toml:"default_sort"` // importance, recent or reading
	DefaultView string `toml:"default_view"` // dashboard, newspaper or masonry
}

// RefreshConfig defines background jobs. Each schedule is a cron
// expression or an @every descriptor; empty disables the job.
type RefreshConfig struct {
	Schedule        string `toml:"schedule"`         // Refetch emails, categories and content
	SummarySchedule string `toml:"summary_schedule"` // Generate today's daily summary
}

// Background job names.
const (
	JobRefresh = "refresh"
	JobSummary = "summary"
)

// JobSchedule pairs a background job with its cron expression.
type JobSchedule struct {
	Name     string
	Schedule string
}

// MockConfig holds settings for the bundled mock backend.
type MockConfig struct {
	Port     int    `toml:"port"`      // Listen port (default: 8080)
	BindAddr string `toml:"bind_addr"` // Listen address (default: 127.0.0.1)
	APIKey   string `toml:"api_key"`   // Required X-API-Key when set
	Seed     uint64 `toml:"seed"`      // Demo dataset seed
}

// Config represents the briefdeck configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Retry   RetryConfig   `toml:"retry"`
	Layout  LayoutConfig  `toml:"layout"`
	Refresh RefreshConfig `toml:"refresh"`
	Mock    MockConfig    `toml:"mock"`

	// Computed paths (not from config file)
	HomeDir    string `toml:"-"`
	configPath string
}

// Environment variables that override the config file.
const (
	EnvHome   = "BRIEFDECK_HOME"
	EnvAPIURL = "BRIEFDECK_API_URL"
	EnvAPIKey = "BRIEFDECK_API_KEY"
)

// DefaultHome returns the default briefdeck home directory.
// Respects BRIEFDECK_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv(EnvHome); h != "" {
		return expandPath(h)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".briefdeck"
	}
	return filepath.Join(home, ".briefdeck")
}

// NewDefaultConfig returns a configuration with default values rooted at
// the default home directory.
func NewDefaultConfig() *Config {
	return newDefault(DefaultHome())
}

func newDefault(homeDir string) *Config {
	return &Config{
		HomeDir: homeDir,
		API: APIConfig{
			URL:     "http://localhost:8080",
			Timeout: "30s",
		},
		Retry: RetryConfig{
			MaxRetries:      0,
			InitialInterval: "500ms",
		},
		Layout: LayoutConfig{
			PxPerCell:   8,
			DefaultSort: "importance",
			DefaultView: "dashboard",
		},
		Mock: MockConfig{
			Port:     8080,
			BindAddr: "127.0.0.1",
			Seed:     1,
		},
		configPath: filepath.Join(homeDir, "config.toml"),
	}
}

// Load reads the configuration from the specified file.
// If path is empty, uses config.toml in the home directory. homeDir
// overrides the default home (the --home flag); empty means DefaultHome.
// An explicitly named file must exist; the default one is optional.
func Load(path, homeDir string) (*Config, error) {
	if homeDir == "" {
		homeDir = DefaultHome()
	} else {
		homeDir = expandPath(homeDir)
	}
	cfg := newDefault(homeDir)

	explicit := path != ""
	if explicit {
		cfg.configPath = expandPath(path)
	}

	if _, err := os.Stat(cfg.configPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", cfg.configPath)
		}
	} else if _, err := toml.DecodeFile(cfg.configPath, cfg); err != nil {
		if strings.Contains(err.Error(), "escape") {
			return nil, fmt.Errorf("decode config: %w\n\nHint: use single quotes or forward slashes for Windows paths", err)
		}
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.API.APIKey = v
	}
}

// Validate checks values that would otherwise fail later at use.
func (c *Config) Validate() error {
	if _, err := c.APITimeout(); err != nil {
		return err
	}
	if _, err := c.RetryInterval(); err != nil {
		return err
	}
	if c.API.RateLimitQPS < 0 {
		return fmt.Errorf("[api] rate_limit_qps must not be negative")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("[retry] max_retries must not be negative")
	}
	if c.Layout.PxPerCell <= 0 {
		return fmt.Errorf("[layout] px_per_cell must be positive")
	}
	switch c.Layout.DefaultView {
	case "dashboard", "newspaper", "masonry":
	default:
		return fmt.Errorf("[layout] default_view must be dashboard, newspaper or masonry, got %q", c.Layout.DefaultView)
	}
	if c.Mock.Port < 0 || c.Mock.Port > 65535 {
		return fmt.Errorf("[mock] port %d out of range", c.Mock.Port)
	}
	return nil
}

// APITimeout returns the parsed per-request timeout.
func (c *Config) APITimeout() (time.Duration, error) {
	return parseDuration("[api] timeout", c.API.Timeout)
}

// RetryInterval returns the parsed initial backoff interval.
func (c *Config) RetryInterval() (time.Duration, error) {
	return parseDuration("[retry] initial_interval", c.Retry.InitialInterval)
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

// ScheduledJobs returns the background jobs that have a schedule.
func (c *Config) ScheduledJobs() []JobSchedule {
	var jobs []JobSchedule
	if c.Refresh.Schedule != "" {
		jobs = append(jobs, JobSchedule{Name: JobRefresh, Schedule: c.Refresh.Schedule})
	}
	if c.Refresh.SummarySchedule != "" {
		jobs = append(jobs, JobSchedule{Name: JobSummary, Schedule: c.Refresh.SummarySchedule})
	}
	return jobs
}

// ConfigFilePath returns the path of the config file that was (or would be) read.
func (c *Config) ConfigFilePath() string {
	return c.configPath
}

// LogFilePath returns where the TUI writes its log.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.HomeDir, "briefdeck.log")
}

// MockAddr returns the mock backend's listen address.
func (c *Config) MockAddr() string {
	bind := c.Mock.BindAddr
	if bind == "" {
		bind = "127.0.0.1"
	}
	return net.JoinHostPort(bind, fmt.Sprint(c.Mock.Port))
}

// EnsureHomeDir creates the home directory if it does not exist.
func (c *Config) EnsureHomeDir() error {
	return os.MkdirAll(c.HomeDir, 0o700)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
