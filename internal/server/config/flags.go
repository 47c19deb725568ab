package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gnmweb/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     listen address (e.g. ":8080")
//	-api string   backend base URL
//	-u string     public site URL
//	-s string     secret key
//	-secure       Secure site cookies
//	-log string   log backend, slog or logrus
//	-level string log level
//	-b string     S3 bucket
//	-e string     S3 endpoint
//	-g string     S3 region
//	-r string     Redis address
//
// Flags owned by other layers (-c, -env) are filtered out first.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-api", "-u", "-s", "-secure", "-log", "-level", "-b", "-e", "-g", "-r"})

	fs := flag.NewFlagSet("gnm-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.APIBaseURL, "api", config.APIBaseURL, "backend API base URL")
	fs.StringVar(&config.PublicURL, "u", config.PublicURL, "public site URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.BoolVar(&config.SecureCookies, "secure", config.SecureCookies, "mark cookies Secure")
	fs.StringVar(&config.LogBackend, "log", config.LogBackend, "log backend (slog, logrus)")
	fs.StringVar(&config.LogLevel, "level", config.LogLevel, "log level")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 gallery bucket")
	fs.StringVar(&config.S3Endpoint, "e", config.S3Endpoint, "S3 endpoint")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")

	return fs.Parse(args)
}
