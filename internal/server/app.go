// Package server wires the site together: logging, the backend API client,
// the gallery source with its optional Redis cache, the blog store and the
// HTTP server. It also handles graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/blog"
	"github.com/dmitrijs2005/gnmweb/internal/gallery"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/server/config"
	"github.com/dmitrijs2005/gnmweb/internal/server/web"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *web.Server
	redis  *redis.Client
}

// newLogger is a seam for tests.
var newLogger = func(c *config.Config, w io.Writer) (logging.Logger, error) {
	return logging.New(c.LogBackend, c.LogLevel, w)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := newLogger(c, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger}

	src, err := app.gallerySource(ctx)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("gallery init error: %w", err)
	}

	posts, err := blog.Load()
	if err != nil {
		app.close()
		return nil, fmt.Errorf("blog init error: %w", err)
	}

	client := apiclient.New(c.APIBaseURL,
		apiclient.WithTimeout(c.RequestTimeout),
		apiclient.WithLogger(logger),
	)

	h, err := web.New(web.Deps{
		Client:         client,
		Gallery:        src,
		Blog:           posts,
		Logger:         logger,
		PublicURL:      c.PublicURL,
		SecretKey:      c.SecretKey,
		SecureCookies:  c.SecureCookies,
		RequestTimeout: c.RequestTimeout,
	})
	if err != nil {
		app.close()
		return nil, fmt.Errorf("web init error: %w", err)
	}

	app.server = web.NewServer(c.ListenAddr, h.Handler(), logger, c.ShutdownTimeout)
	return app, nil
}

// gallerySource picks the S3 bucket when one is configured and the built-in
// pictures otherwise.
func (app *App) gallerySource(ctx context.Context) (gallery.Source, error) {
	c := app.config
	if !c.GalleryFromS3() {
		return gallery.NewStatic(), nil
	}

	var cache gallery.Cache
	if c.CacheEnabled() {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.logger.Warn(ctx, "redis unreachable, gallery cache will miss", "addr", c.RedisAddr, "error", err)
		}
		cache = gallery.NewRedisCache(app.redis)
	}

	return gallery.NewS3Catalog(ctx, gallery.S3Config{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		Prefix:    c.S3Prefix,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	}, cache, c.GalleryCacheTTL, app.logger)
}

func (app *App) close() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(context.Background(), "close redis", "error", err)
		}
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...", "api", app.config.APIBaseURL, "gallery_s3", app.config.GalleryFromS3())

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}
	app.logger.Info(ctx, "App stopped")
	return nil
}
