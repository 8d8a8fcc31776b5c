package config

// Environment variables read by Load.
const (
	EnvConfig   = "GOPHTASKS_CONFIG"
	EnvAPIURL   = "GOPHTASKS_API_URL"
	EnvDB       = "GOPHTASKS_DB"
	EnvLogLevel = "GOPHTASKS_LOG_LEVEL"
)

func loadFromEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		cfg.ServerBaseURL = v
	}
	if v := getenv(EnvDB); v != "" {
		cfg.DatabasePath = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}
