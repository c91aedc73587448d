package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/axi1912/Easy-Customs/app/eventbus"
	"github.com/axi1912/Easy-Customs/app/modules/tournament"
	tournamentapi "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/api"
	"github.com/axi1912/Easy-Customs/app/observability"
	"github.com/axi1912/Easy-Customs/config"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
	streamSubjects    = "tournament.>"
)

// App owns every long-lived component of the backend.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPRouter    chi.Router

	TournamentModule *tournament.Module

	httpServer    *http.Server
	metricsServer *http.Server
	wg            sync.WaitGroup
}

// NewApp wires observability, storage, the event bus and the tournament module.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.Init(config.ToObsConfig(cfg))
	logger := obs.Logger

	app := &App{
		Config:        cfg,
		Observability: obs,
	}

	if cfg.Postgres.DSN != "" {
		app.DB = openDB(cfg.Postgres.DSN)
		if err := app.DB.PingContext(ctx); err != nil {
			_ = app.DB.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		logger.InfoContext(ctx, "Postgres connected")
	}

	if cfg.NATS.URL != "" {
		bus, err := eventbus.NewEventBus(ctx, eventbus.Config{
			URL:        cfg.NATS.URL,
			JetStream:  cfg.NATS.JetStream,
			StreamName: cfg.NATS.StreamName,
			Subjects:   []string{streamSubjects},
			AckWait:    cfg.NATS.AckWait,
		}, logger)
		if err != nil {
			app.closeDB()
			return nil, fmt.Errorf("failed to create event bus: %w", err)
		}
		app.EventBus = bus
	} else {
		logger.WarnContext(ctx, "No NATS URL configured; using the in-memory event bus")
		app.EventBus = eventbus.NewInMemoryEventBus(logger)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: shutdownTimeout}, watermill.NewSlogLogger(logger))
	if err != nil {
		app.closeTransport()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	app.Router = router

	httpRouter := chi.NewRouter()
	httpRouter.Use(chimiddleware.RequestID)
	httpRouter.Use(chimiddleware.RealIP)
	httpRouter.Use(chimiddleware.Recoverer)
	app.HTTPRouter = httpRouter

	module, err := tournament.NewTournamentModule(ctx, cfg, obs, app.EventBus, router, ctx, app.DB, httpRouter)
	if err != nil {
		app.closeTransport()
		return nil, fmt.Errorf("failed to initialize tournament module: %w", err)
	}
	app.TournamentModule = module

	checks := module.HealthChecks()
	if app.DB != nil {
		checks["postgres"] = app.DB.PingContext
	}
	if conn := app.EventBus.Conn(); conn != nil {
		checks["nats"] = func(context.Context) error {
			if !conn.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		}
	}
	tournamentapi.RegisterOperational(httpRouter, obs.Registry, checks)

	app.httpServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpRouter,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	if addr := cfg.Observability.MetricsAddress; addr != "" && addr != cfg.HTTP.Addr {
		metricsRouter := chi.NewRouter()
		tournamentapi.RegisterOperational(metricsRouter, obs.Registry, checks)
		app.metricsServer = &http.Server{
			Addr:              addr,
			Handler:           metricsRouter,
			ReadHeaderTimeout: readHeaderTimeout,
		}
	}

	logger.InfoContext(ctx, "Application initialized",
		slog.Bool("postgres", app.DB != nil),
		slog.Bool("nats", app.EventBus.Conn() != nil),
		slog.Bool("queue", module.QueueService != nil),
	)
	return app, nil
}

func openDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Run starts the router, the module and the HTTP listeners, and blocks until ctx is done.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	routerErr := make(chan error, 1)
	go func() {
		if err := app.Router.Run(ctx); err != nil {
			routerErr <- err
		}
	}()

	select {
	case <-app.Router.Running():
		logger.InfoContext(ctx, "Message router running")
	case err := <-routerErr:
		return fmt.Errorf("message router failed to start: %w", err)
	case <-ctx.Done():
		return app.Close()
	}

	app.wg.Add(1)
	go app.TournamentModule.Run(ctx, &app.wg)

	serverErr := make(chan error, 2)
	for _, srv := range []*http.Server{app.httpServer, app.metricsServer} {
		if srv == nil {
			continue
		}
		go func(srv *http.Server) {
			logger.InfoContext(ctx, "HTTP server listening", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- fmt.Errorf("http server %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested")
	case err := <-serverErr:
		runErr = err
	case err := <-routerErr:
		runErr = fmt.Errorf("message router stopped: %w", err)
	}

	if err := app.Close(); err != nil {
		runErr = errors.Join(runErr, err)
	}
	return runErr
}

// Close stops every component in reverse order of startup.
func (app *App) Close() error {
	logger := app.Observability.Logger
	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range []*http.Server{app.httpServer, app.metricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	if app.TournamentModule != nil {
		if err := app.TournamentModule.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.wg.Wait()

	app.closeTransport()

	if err := errors.Join(errs...); err != nil {
		logger.Error("Application shut down with errors", observability.ErrorAttr(err))
		return err
	}
	logger.Info("Application shut down gracefully")
	return nil
}

func (app *App) closeTransport() {
	logger := app.Observability.Logger
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			logger.Error("Error closing message router", observability.ErrorAttr(err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			logger.Error("Error closing event bus", observability.ErrorAttr(err))
		}
	}
	app.closeDB()
}

func (app *App) closeDB() {
	if app.DB == nil {
		return
	}
	if err := app.DB.Close(); err != nil {
		app.Observability.Logger.Error("Error closing database", observability.ErrorAttr(err))
	}
	app.DB = nil
}
