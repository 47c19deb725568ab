package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gnmweb/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the booking backend (default from Config)
//	-t int      per-call timeout in seconds (default from Config)
//	-level      log level
//
// Only the flags listed here are picked out of args with flagx.FilterArgs so
// that -c/-config does not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-level"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the booking backend")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "backend call timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
