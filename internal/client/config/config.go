package config

import "time"

// Config holds runtime settings for the HabitKeeper client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - SyncInterval: period of the background full sync while online.
//   - RetryDelay: delay before a queue pass that left items behind is retried.
//   - RequestTimeout: deadline applied to every remote call.
//   - DatabasePath: SQLite file holding local state and the mutation queue.
//   - LogFile: rotating log file; the REPL keeps stdout for itself.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	SyncInterval        time.Duration
	RetryDelay          time.Duration
	RequestTimeout      time.Duration
	DatabasePath        string
	LogFile             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncInterval = 5 * time.Minute
	c.RetryDelay = 5 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.DatabasePath = "habits.db"
	c.LogFile = "habitkeeper.log"
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
