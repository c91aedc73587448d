package tournamentrouter

import (
	"context"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/axi1912/Easy-Customs/app/eventbus"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	tournamenthandlers "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/handlers"
	"github.com/axi1912/Easy-Customs/app/shared/handlerwrapper"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"

	maxRetries = 3
)

type TournamentRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics

	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewTournamentRouter creates a router. Prometheus router metrics are skipped
// when registry is nil or APP_ENV=test.
func NewTournamentRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	registry *prometheus.Registry,
	handlerMetrics handlerwrapper.Metrics,
) *TournamentRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && !inTestEnv {
		b := metrics.NewPrometheusMetricsBuilder(registry, "", "")
		metricsBuilder = &b
	}

	return &TournamentRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metrics:        handlerMetrics,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure adds router middleware and subscribes every inbound tournament topic.
func (r *TournamentRouter) Configure(_ context.Context, handlers tournamenthandlers.Handlers) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	} else {
		r.logger.Info("Skipping Prometheus router metrics middleware - either in test environment or metrics not configured")
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{MaxRetries: maxRetries}.Middleware,
	)

	r.registerHandlers(handlers)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics
}

// registerHandler registers a transformation handler with a typed payload.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "tournament." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"", // the bus reads the destination from message metadata
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

func (r *TournamentRouter) registerHandlers(h tournamenthandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	// Lifecycle
	registerHandler(deps, tournamentevents.CreateRequestedV1, h.HandleCreateRequested)
	registerHandler(deps, tournamentevents.StartRequestedV1, h.HandleStartRequested)
	registerHandler(deps, tournamentevents.FinishRequestedV1, h.HandleFinishRequested)
	registerHandler(deps, tournamentevents.ResetRequestedV1, h.HandleResetRequested)
	registerHandler(deps, tournamentevents.StartScheduleRequestedV1, h.HandleStartScheduleRequested)
	registerHandler(deps, tournamentevents.LobbyCodeRequestedV1, h.HandleLobbyCodeRequested)

	// Teams
	registerHandler(deps, tournamentevents.TeamRegisterRequestedV1, h.HandleTeamRegisterRequested)
	registerHandler(deps, tournamentevents.TeamJoinRequestedV1, h.HandleTeamJoinRequested)
	registerHandler(deps, tournamentevents.TeamProvisionedV1, h.HandleTeamProvisioned)

	// Results
	registerHandler(deps, tournamentevents.ResultSubmitRequestedV1, h.HandleResultSubmitRequested)
	registerHandler(deps, tournamentevents.ResultAnalysisRequestedV1, h.HandleResultAnalysisRequested)
	registerHandler(deps, tournamentevents.PendingResolveRequestedV1, h.HandlePendingResolveRequested)
}

func (r *TournamentRouter) Close() error {
	return r.Router.Close()
}
