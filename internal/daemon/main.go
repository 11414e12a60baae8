// Package daemon wires storage, settings and the web service together.
package daemon

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/PagodaAdmin/PagodaAdmin/internal/auth"
	"github.com/PagodaAdmin/PagodaAdmin/internal/booking"
	"github.com/PagodaAdmin/PagodaAdmin/internal/config"
	"github.com/PagodaAdmin/PagodaAdmin/internal/db"
	"github.com/PagodaAdmin/PagodaAdmin/internal/db/controller/setting"
	"github.com/PagodaAdmin/PagodaAdmin/internal/settings"
	"github.com/PagodaAdmin/PagodaAdmin/internal/web"
	"github.com/PagodaAdmin/PagodaAdmin/internal/web/handler/api"
)

// Daemon represents the main application daemon.
type Daemon struct {
	DB         *gorm.DB
	Repository *setting.Repository
	Store      *settings.Store
	Users      *auth.LocalProvider
	Booking    *booking.Settings

	webService *web.Service
}

// New opens the database, seeds it and builds the web service.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	d, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	admin, err := d.Seed(ctx, cfg)
	if err != nil {
		return nil, d.Close(err)
	}

	if admin.Password != "" {
		// written regardless of the configured level, it is shown only once
		log.Log().Str("username", admin.Username).Str("password", admin.Password).
			Msg("created admin user with generated password, change it")
	}

	d.webService, err = web.New(cfg, api.New(d.Store, d.Repository, auth.RequireUser(d.Users)))
	if err != nil {
		return nil, d.Close(errors.Wrap(err, "failed to create web service"))
	}

	return d, nil
}

// Open connects and migrates the storage without writing any rows.
func Open(_ context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	gdb, err := db.Open(&cfg.DB, cfg.Log.LogSQL)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	repo := setting.NewRepository(gdb)
	store := settings.New(repo)

	return &Daemon{
		DB:         gdb,
		Repository: repo,
		Store:      store,
		Users:      auth.NewLocalProvider(gdb),
		Booking:    booking.New(store),
	}, nil
}

// Start runs the web service until it fails, SIGINT or SIGTERM arrives or
// ctx is done. The database is closed on return.
func (d *Daemon) Start(ctx context.Context) error {
	if d.webService == nil {
		return errors.New("daemon has no web service")
	}

	return d.Close(d.webService.Run(ctx))
}

// Close releases the database connection and returns cause unchanged.
func (d *Daemon) Close(cause error) error {
	sqlDB, err := d.DB.DB()
	if err == nil {
		if errClose := sqlDB.Close(); errClose != nil {
			log.Error().Err(errClose).Msg("failed to close database")
		}
	}

	return cause
}

// WebApp returns the fiber app, nil for daemons created with Open.
func (d *Daemon) WebApp() *fiber.App {
	if d.webService == nil {
		return nil
	}

	return d.webService.App
}
