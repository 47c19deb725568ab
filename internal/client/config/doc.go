// Package config loads runtime configuration for the GNM console client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the booking backend
//	-t int      per-call timeout (seconds)
//	-level      log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations can be either strings like "15s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8000",
//	  "request_timeout": "15s",
//	  "log_level": "error"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
