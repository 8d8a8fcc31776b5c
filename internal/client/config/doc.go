// Package config loads runtime configuration for the gophtasks client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with --config (or GOPHTASKS_CONFIG). The
//     format follows the extension: .json, .yaml/.yml or .toml.
//  3. Environment variables GOPHTASKS_API_URL, GOPHTASKS_DB and
//     GOPHTASKS_LOG_LEVEL.
//  4. Command-line flags that were set explicitly.
//
// Supported flags
//
//	-a, --api-url string      base URL of the task backend
//	-d, --db string           path of the local SQLite database
//	-t, --timeout duration    per-request timeout
//	    --page-size int       tasks per page
//	    --log-level string    debug, info, warn or error
//	    --log-format string   text or json
//	-c, --config string       config file
//
// # File schema
//
// Durations are either strings like "15s" or integer nanoseconds:
//
//	{
//	  "api_url": "http://localhost:8000",
//	  "db": "gophtasks.db",
//	  "timeout": "15s",
//	  "page_size": 50,
//	  "log_level": "info",
//	  "log_format": "text"
//	}
package config
