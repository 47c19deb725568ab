package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gnmweb/internal/apiclient"
	"github.com/dmitrijs2005/gnmweb/internal/client/config"
	"github.com/dmitrijs2005/gnmweb/internal/logging"
	"github.com/dmitrijs2005/gnmweb/internal/models"
	"github.com/dmitrijs2005/gnmweb/internal/services"
	"github.com/dmitrijs2005/gnmweb/internal/session"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	jar      *apiclient.Jar
	resolver *session.Resolver
	auth     *services.AuthService
	bookings *services.BookingService
	admin    *services.AdminService

	identity *models.Identity
	history  []models.Booking
	board    *services.AdminBoard

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(logging.BackendSlog, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	client := apiclient.New(c.APIBaseURL,
		apiclient.WithTimeout(c.RequestTimeout),
		apiclient.WithLogger(logger),
	)
	return newApp(c, client, logger, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, client apiclient.Client, l logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:   c,
		logger:   l,
		jar:      apiclient.NewJar(),
		resolver: session.NewResolver(client, l),
		auth:     services.NewAuthService(client, l),
		bookings: services.NewBookingService(client, l),
		admin:    services.NewAdminService(client, l),
		reader:   bufio.NewReader(in),
		out:      out,
		now:      time.Now,
	}
}

// Run starts the REPL. Every backend call of the session shares one jar.
func (a *App) Run(ctx context.Context) {
	ctx = apiclient.WithJar(ctx, a.jar)

	fmt.Fprintf(a.out, "GNM Events console (%s), type 'help' for commands\n", a.config.APIBaseURL)
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.identity != nil
}

func (a *App) isStaff() bool {
	return a.identity != nil && a.identity.IsStaff
}

func (a *App) getStatus() string {
	switch {
	case a.isStaff():
		return a.identity.Email + " (staff)"
	case a.isLoggedIn():
		return a.identity.Email
	}
	return "guest"
}

// forget drops everything fetched for the previous account.
func (a *App) forget() {
	a.identity = nil
	a.history = nil
	a.board = nil
}
