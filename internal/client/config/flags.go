package config

import (
	"github.com/spf13/pflag"
)

// Flag names registered by RegisterFlags.
const (
	FlagConfig    = "config"
	FlagAPIURL    = "api-url"
	FlagDB        = "db"
	FlagTimeout   = "timeout"
	FlagPageSize  = "page-size"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
)

// RegisterFlags adds the client flags to fs, with the defaults shown in help.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "config file (.json, .yaml or .toml)")
	fs.StringP(FlagAPIURL, "a", d.ServerBaseURL, "base URL of the task backend")
	fs.StringP(FlagDB, "d", d.DatabasePath, "path of the local database")
	fs.DurationP(FlagTimeout, "t", d.RequestTimeout, "per-request timeout")
	fs.Int(FlagPageSize, d.PageSize, "tasks per page")
	fs.String(FlagLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(FlagLogFormat, d.LogFormat, "log format (text, json)")
}

// applyFlags copies the flags that were set explicitly into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	set := func(name string, fn func() error) {
		if err == nil && fs.Lookup(name) != nil && fs.Changed(name) {
			err = fn()
		}
	}

	set(FlagAPIURL, func() (e error) { cfg.ServerBaseURL, e = fs.GetString(FlagAPIURL); return })
	set(FlagDB, func() (e error) { cfg.DatabasePath, e = fs.GetString(FlagDB); return })
	set(FlagTimeout, func() (e error) { cfg.RequestTimeout, e = fs.GetDuration(FlagTimeout); return })
	set(FlagPageSize, func() (e error) { cfg.PageSize, e = fs.GetInt(FlagPageSize); return })
	set(FlagLogLevel, func() (e error) { cfg.LogLevel, e = fs.GetString(FlagLogLevel); return })
	set(FlagLogFormat, func() (e error) { cfg.LogFormat, e = fs.GetString(FlagLogFormat); return })
	return err
}
