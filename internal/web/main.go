// Package web serves the settings API with fiber.
package web

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/PagodaAdmin/PagodaAdmin/internal/config"
	fiberlogger "github.com/PagodaAdmin/PagodaAdmin/internal/logger/adapter/fiber"
	"github.com/PagodaAdmin/PagodaAdmin/internal/web/handler"
)

const readBufferSize = 8192

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// New creates the fiber app with the shared middleware and the given handlers.
func New(cfg *config.Config, handlers ...handler.Service) (*Service, error) {
	if cfg == nil {
		return nil, handler.ErrNilDependency
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize:        readBufferSize,
			AppName:               cfg.Title,
			CaseSensitive:         true,
			Prefork:               false,
			Immutable:             true,
			BodyLimit:             cfg.Webserver.BodyLimit,
			ErrorHandler:          handler.ErrorHandler,
			DisableStartupMessage: !cfg.DevMode,
		},
	)

	service := &Service{
		cfg: cfg,
		App: app,
	}
	service.alive.Store(true)

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:            cfg.Log,
		CacheControlError: fiberlogger.ConfigDefault.CacheControlError,
		CheckAliveURI:     handler.CheckAlivePath,
	}))

	app.Get(handler.CheckAlivePath, service.checkAlive)
	app.Get(handler.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group(handler.APIPath)

	for _, h := range handlers {
		if err := h.Init(api); err != nil {
			return nil, err
		}
	}

	return service, nil
}

// Alive reports whether /checkalive answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// SetFastShutDown skips the graceful delay in Shutdown.
func (s *Service) SetFastShutDown(fast bool) {
	s.fastShutDown = fast
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down") //nolint:wrapcheck
	}

	return c.SendString("OK") //nolint:wrapcheck
}

// Start listens on the configured port and blocks until the server stops.
func (s *Service) Start() error {
	addr := ":" + strconv.Itoa(s.cfg.Webserver.Port)
	log.Info().Str("addr", addr).Str("url", s.cfg.Webserver.URL).Msg("starting http server")

	if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err //nolint:wrapcheck
	}

	return nil
}

// Run serves until the listener fails, SIGINT or SIGTERM arrives or ctx is
// done, then shuts the server down.
func (s *Service) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msgf("shutdown request (%v)", context.Cause(ctx))
	s.Shutdown()

	return <-errCh
}

// Shutdown fails /checkalive for ShutDownTime seconds so load balancers drain
// this instance, then stops the server.
func (s *Service) Shutdown() {
	s.alive.Store(false)

	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 for %d seconds to let the LB remove this instance",
			s.cfg.Webserver.ShutDownTime,
		)

		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}
