package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     address and port of the backend server
//	-i int        online check interval in seconds
//	-s duration   periodic sync interval
//	-r duration   queue retry delay
//	-t duration   per-request timeout
//	-d string     local database path
//	-l string     log file path
//
// Only the flags declared here are taken from os.Args (see flagx.Parse).
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.DurationVar(&cfg.SyncInterval, "s", cfg.SyncInterval, "periodic sync interval")
	fs.DurationVar(&cfg.RetryDelay, "r", cfg.RetryDelay, "queue retry delay")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "timeout of a single server request")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")

	if err := flagx.Parse(fs); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
