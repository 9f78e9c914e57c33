// Package config loads runtime configuration for the HabitKeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "sync_interval": "5m",
//	  "retry_delay": "5s",
//	  "request_timeout": "15s",
//	  "database_path": "habits.db",
//	  "log_file": "habitkeeper.log"
//	}
package config
