package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/gophtasks/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the DTO decoded from config files. Absent keys stay nil (or
// zero for the timeout) and do not override earlier values.
type fileConfig struct {
	ServerBaseURL  *string        `json:"api_url" yaml:"api_url" toml:"api_url"`
	DatabasePath   *string        `json:"db" yaml:"db" toml:"db"`
	RequestTimeout timex.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
	PageSize       *int           `json:"page_size" yaml:"page_size" toml:"page_size"`
	LogLevel       *string        `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat      *string        `json:"log_format" yaml:"log_format" toml:"log_format"`
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&fc)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&fc)
	case ".toml":
		var md toml.MetaData
		md, err = toml.Decode(string(data), &fc)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown keys: %v", undecoded)
			}
		}
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return err
	}

	fc.apply(cfg)
	return nil
}

func (fc fileConfig) apply(cfg *Config) {
	if fc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *fc.ServerBaseURL
	}
	if fc.DatabasePath != nil {
		cfg.DatabasePath = *fc.DatabasePath
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.PageSize != nil {
		cfg.PageSize = *fc.PageSize
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
}
