package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ThemeConfig holds TUI color overrides on top of a named preset.
type ThemeConfig struct {
	Preset        string `mapstructure:"preset"`
	Primary       string `mapstructure:"primary"`
	Secondary     string `mapstructure:"secondary"`
	Accent        string `mapstructure:"accent"`
	Muted         string `mapstructure:"muted"`
	Danger        string `mapstructure:"danger"`
	Success       string `mapstructure:"success"`
	Warning       string `mapstructure:"warning"`
	Info          string `mapstructure:"info"`
	Background    string `mapstructure:"background"`
	MarkdownStyle string `mapstructure:"markdown_style"`
}

// APIConfig configures the dashboard REST source.
type APIConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Token    string `mapstructure:"token"`
	Timeout  string `mapstructure:"timeout"`
	PageSize int    `mapstructure:"page_size"`
}

// Config holds the application configuration.
type Config struct {
	Source    string `mapstructure:"source"`
	DataDir   string `mapstructure:"data_dir"`
	Timezone  string `mapstructure:"timezone"`
	WeekStart string `mapstructure:"week_start"`
	MonthCap  int    `mapstructure:"month_cap"`
	Refresh   string `mapstructure:"refresh"`
	Listen    string `mapstructure:"listen"`
	// ServeToken protects the HTTP API started by serve. Empty disables auth.
	ServeToken string      `mapstructure:"serve_token"`
	LogLevel   string      `mapstructure:"log_level"`
	LogFile    string      `mapstructure:"log_file"`
	MaxWidth   int         `mapstructure:"max_width"`
	API        APIConfig   `mapstructure:"api"`
	Theme      ThemeConfig `mapstructure:"theme"`
}

// Source backends.
const (
	SourceSQLite   = "sqlite"
	SourceMarkdown = "markdown"
	SourceREST     = "rest"
)

// DefaultDataDir returns the default data directory (~/.contentcal/).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".contentcal")
	}
	return filepath.Join(home, ".contentcal")
}

// Load reads configuration from file, .env, environment variables, and defaults.
func Load(configPath string) (*Config, error) {
	// Values from .env never override variables already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("source", SourceSQLite)
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("timezone", "")
	v.SetDefault("week_start", "sunday")
	v.SetDefault("month_cap", 3)
	v.SetDefault("refresh", "*/5 * * * *")
	v.SetDefault("listen", "127.0.0.1:8080")
	v.SetDefault("serve_token", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("max_width", 0)
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.page_size", 500)
	v.SetDefault("theme.preset", "default-dark")
	v.SetDefault("theme.primary", "")
	v.SetDefault("theme.secondary", "")
	v.SetDefault("theme.accent", "")
	v.SetDefault("theme.muted", "")
	v.SetDefault("theme.danger", "")
	v.SetDefault("theme.success", "")
	v.SetDefault("theme.warning", "")
	v.SetDefault("theme.info", "")
	v.SetDefault("theme.background", "")
	v.SetDefault("theme.markdown_style", "")

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// XDG support
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "contentcal"))
		}
		v.AddConfigPath(DefaultDataDir())
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	// Environment variables: CONTENTCAL_SOURCE, CONTENTCAL_API_BASE_URL, etc.
	v.SetEnvPrefix("CONTENTCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && configPath != "" {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize replaces unusable values with defaults.
func (c *Config) Normalize() {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	switch c.Source {
	case SourceSQLite, SourceMarkdown, SourceREST:
	case "":
		c.Source = SourceSQLite
	}
	switch strings.ToLower(c.WeekStart) {
	case "sunday", "monday":
		c.WeekStart = strings.ToLower(c.WeekStart)
	default:
		c.WeekStart = "sunday"
	}
	if c.MonthCap <= 0 {
		c.MonthCap = 3
	}
	if strings.TrimSpace(c.Refresh) == "" {
		c.Refresh = "*/5 * * * *"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.API.PageSize < 0 {
		c.API.PageSize = 0
	}
}

// Validate reports settings that cannot be repaired by Normalize.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceSQLite, SourceMarkdown:
	case SourceREST:
		if strings.TrimSpace(c.API.BaseURL) == "" {
			return fmt.Errorf("source %q requires api.base_url", SourceREST)
		}
	default:
		return fmt.Errorf("unknown source %q (want sqlite, markdown or rest)", c.Source)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.APITimeout(); err != nil {
		return err
	}
	return nil
}

// Location returns the observer time zone. Empty means the system zone.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// WeekStartDay returns the configured first day of the week.
func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// APITimeout parses api.timeout.
func (c *Config) APITimeout() (time.Duration, error) {
	if c.API.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid api.timeout %q: %w", c.API.Timeout, err)
	}
	return d, nil
}
