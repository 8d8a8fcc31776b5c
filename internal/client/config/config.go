package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/spf13/pflag"
)

// Config holds runtime settings for the gophtasks client.
type Config struct {
	ServerBaseURL  string
	DatabasePath   string
	RequestTimeout time.Duration
	PageSize       int
	LogLevel       string
	LogFormat      string

	// File is the config file that was applied, if any.
	File string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8000"
	c.DatabasePath = "gophtasks.db"
	c.RequestTimeout = 15 * time.Second
	c.PageSize = models.DefaultPageSize
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Load builds a Config from defaults, the config file, the environment and
// the flags registered on fs with RegisterFlags. fs must already be parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	return load(fs, os.Getenv)
}

func load(fs *pflag.FlagSet, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path := getenv(EnvConfig)
	if fs != nil && fs.Changed(FlagConfig) {
		path, _ = fs.GetString(FlagConfig)
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cfg.File = path
	}

	loadFromEnv(cfg, getenv)

	if fs != nil {
		if err := applyFlags(cfg, fs); err != nil {
			return nil, fmt.Errorf("parsing flags: %w", err)
		}
	}

	cfg.ServerBaseURL = strings.TrimRight(strings.TrimSpace(cfg.ServerBaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerBaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid api url %q: want http(s)://host[:port]", c.ServerBaseURL)
	}
	if c.DatabasePath == "" {
		return errors.New("database path must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.RequestTimeout)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("invalid page size %d: must be positive", c.PageSize)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: want text or json", c.LogFormat)
	}
	return nil
}
