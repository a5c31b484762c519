package config

import "time"

// Config holds runtime settings for the journal CLI.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DebounceInterval: how long an editor must stay quiet before autosave.
//   - RequestTimeout: per-request deadline for API calls.
//
// Units: all intervals are time.Duration values (e.g., 3*time.Second).
type Config struct {
	ServerURL           string
	OnlineCheckInterval time.Duration
	DebounceInterval    time.Duration
	RequestTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
	c.DebounceInterval = 1500 * time.Millisecond
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
