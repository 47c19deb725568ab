// Package config handles configuration for the web server: defaults, an
// optional .env file, an optional JSON or YAML file, GNM_* environment
// variables and finally command-line flags, in that order.
package config

import "time"

// Config holds runtime settings for the site.
//
// Fields:
//   - ListenAddr: bind address of the HTTP server.
//   - APIBaseURL: base URL of the booking backend.
//   - PublicURL: externally visible URL of this site, used for OAuth callbacks.
//   - SecretKey: signs flash cookies and the form CSRF token. Override in prod.
//   - SecureCookies: marks site cookies Secure; enable behind TLS.
//   - S3*: gallery bucket. The gallery falls back to built-in pictures when
//     S3Bucket is empty.
//   - RedisAddr: gallery listing cache. Disabled when empty.
type Config struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	APIBaseURL      string        `mapstructure:"api_base_url"`
	PublicURL       string        `mapstructure:"public_url"`
	SecretKey       string        `mapstructure:"secret_key"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
	LogBackend      string        `mapstructure:"log_backend"`
	LogLevel        string        `mapstructure:"log_level"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3Region    string `mapstructure:"s3_region"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Prefix    string `mapstructure:"s3_prefix"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`

	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	GalleryCacheTTL time.Duration `mapstructure:"gallery_cache_ttl"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.APIBaseURL = "http://localhost:8000"
	c.PublicURL = "http://localhost:8080"
	c.SecretKey = "dev-secret-key-change-me-0123456"
	c.SecureCookies = false
	c.LogBackend = "slog"
	c.LogLevel = "info"
	c.RequestTimeout = 15 * time.Second
	c.ShutdownTimeout = 10 * time.Second
	c.S3Region = "us-east-1"
	c.S3Prefix = "gallery"
	c.GalleryCacheTTL = 10 * time.Minute
}

func (c *Config) GalleryFromS3() bool { return c.S3Bucket != "" }

func (c *Config) CacheEnabled() bool { return c.RedisAddr != "" }

// LoadConfig builds a Config from defaults and then overlays the .env file,
// the config file and environment, and finally the flags found in args.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := loadEnvFile(args); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
