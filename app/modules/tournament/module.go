package tournament

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	"github.com/axi1912/Easy-Customs/app/eventbus"
	tournamentservice "github.com/axi1912/Easy-Customs/app/modules/tournament/application"
	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentanalysis "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/analysis"
	tournamentapi "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/api"
	tournamenthandlers "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/handlers"
	tournamentprovisioning "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/provisioning"
	tournamentqueue "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/queue"
	tournamentdb "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/repositories"
	tournamentrouter "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/router"
	tournamentsheets "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/sheets"
	tournamenttime "github.com/axi1912/Easy-Customs/app/modules/tournament/time_utils"
	"github.com/axi1912/Easy-Customs/app/observability"
	"github.com/axi1912/Easy-Customs/config"
)

const queueStopTimeout = 10 * time.Second

// Module represents the tournament module.
type Module struct {
	TournamentService *tournamentservice.TournamentService
	TournamentRouter  *tournamentrouter.TournamentRouter
	QueueService      *tournamentqueue.Service
	cancelFunc        context.CancelFunc
	observability     observability.Observability
}

// NewTournamentModule creates and initializes the tournament module.
// db, httpRouter and the optional collaborators in cfg may all be absent.
func NewTournamentModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer
	metrics := obs.TournamentMetrics

	logger.InfoContext(ctx, "tournament.NewTournamentModule initializing")

	// 1. Collaborators
	collaborators := tournamentservice.Collaborators{
		Notifier: tournamentprovisioning.NewNotifier(eventBus, logger),
	}
	if db != nil {
		collaborators.Store = tournamentdb.NewStore(db)
	} else {
		logger.WarnContext(ctx, "No database configured; results will not be recorded")
	}
	if cfg.Sheets.WorkbookPath != "" {
		collaborators.Mirror = tournamentsheets.NewWorkbook(cfg.Sheets.WorkbookPath, logger)
	}
	if cfg.Analysis.APIKey != "" {
		analyzer, err := tournamentanalysis.NewClient(ctx, tournamentanalysis.Config{
			APIKey:            cfg.Analysis.APIKey,
			Model:             cfg.Analysis.Model,
			Endpoint:          cfg.Analysis.Endpoint,
			RequestsPerMinute: cfg.Analysis.RequestsPerMinute,
			Timeout:           cfg.Analysis.Timeout,
		}, nil, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create analysis client: %w", err)
		}
		collaborators.Analyzer = analyzer
	}

	// 2. Service
	service := tournamentservice.NewTournamentService(
		serviceOptions(cfg),
		collaborators,
		tournamenttime.RealClock{},
		logger,
		metrics,
		tracer,
	)

	// 3. Scheduled starts need the service as their starter, so they attach afterwards
	var queueService *tournamentqueue.Service
	if cfg.Queue.Enabled && db != nil {
		qs, err := tournamentqueue.NewService(ctx, db, tournamentqueue.Config{
			DSN:        cfg.Postgres.DSN,
			MaxWorkers: cfg.Queue.MaxWorkers,
		}, service, eventBus, logger, metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create tournament queue: %w", err)
		}
		queueService = qs
		service.AttachScheduler(qs)
	}

	// 4. Handlers and router
	handlers := tournamenthandlers.NewTournamentHandlers(service, logger, tracer)
	tournamentRouter := tournamentrouter.NewTournamentRouter(
		logger,
		router,
		eventBus,
		eventBus,
		tracer,
		obs.Registry,
		metrics,
	)
	if err := tournamentRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure tournament router: %w", err)
	}

	// 5. HTTP routes
	if httpRouter != nil {
		limiter := tournamentapi.NewIPRateLimiter(cfg.HTTP.RequestsPerSecond, cfg.HTTP.Burst)
		tournamentapi.Register(httpRouter, tournamentapi.NewHandlers(service, logger, tracer), limiter)
	}

	return &Module{
		TournamentService: service,
		TournamentRouter:  tournamentRouter,
		QueueService:      queueService,
		observability:     obs,
	}, nil
}

func serviceOptions(cfg *config.Config) tournamentservice.Options {
	t := cfg.Tournament
	opts := tournamentservice.DefaultOptions()
	opts.Limits = tournamentdomain.Limits{
		MinTeams:    t.MinTeams,
		MaxTeams:    t.MaxTeams,
		MinTeamSize: t.MinTeamSize,
		MaxTeamSize: t.MaxTeamSize,
	}
	opts.TeamRules = tournamentservice.TeamRules{
		MinNameLength: t.MinTeamNameLength,
		MaxNameLength: t.MaxTeamNameLength,
		MaxTagLength:  t.MaxTagLength,
	}
	if t.DefaultGame != "" {
		opts.DefaultGame = t.DefaultGame
	}
	if t.DefaultScoringMode != "" {
		opts.DefaultScoringMode = tournamentdomain.ScoringMode(t.DefaultScoringMode)
	}
	if t.Timezone != "" {
		opts.Timezone = t.Timezone
	}
	if cfg.Analysis.PendingTTL > 0 {
		opts.PendingTTL = cfg.Analysis.PendingTTL
	}
	return opts
}

// HealthChecks returns the module's dependency probes for /healthz.
func (m *Module) HealthChecks() map[string]tournamentapi.HealthCheck {
	checks := map[string]tournamentapi.HealthCheck{}
	if m.QueueService != nil {
		checks["queue"] = m.QueueService.HealthCheck
	}
	return checks
}

// Run starts the tournament module and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting tournament module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.QueueService != nil {
		if err := m.QueueService.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start tournament queue", observability.ErrorAttr(err))
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Tournament module goroutine stopped")
}

// Close shuts down the tournament module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping tournament module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.QueueService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), queueStopTimeout)
		defer cancel()
		if err := m.QueueService.Stop(ctx); err != nil {
			logger.Error("Error stopping tournament queue", observability.ErrorAttr(err))
		}
	}

	if m.TournamentRouter != nil {
		if err := m.TournamentRouter.Close(); err != nil {
			logger.Error("Error closing TournamentRouter from module", observability.ErrorAttr(err))
			return fmt.Errorf("error closing TournamentRouter: %w", err)
		}
	}

	logger.Info("Tournament module stopped")
	return nil
}
