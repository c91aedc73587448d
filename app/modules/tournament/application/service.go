package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	tournamenttime "github.com/axi1912/Easy-Customs/app/modules/tournament/time_utils"
	"github.com/axi1912/Easy-Customs/app/observability"
	tournamentmetrics "github.com/axi1912/Easy-Customs/app/observability/metrics/tournament"
	"github.com/axi1912/Easy-Customs/app/shared/results"
)

const serviceName = "TournamentService"

// Options configures limits and defaults applied to incoming requests.
type Options struct {
	Limits             tournamentdomain.Limits
	TeamRules          TeamRules
	DefaultGame        string
	DefaultScoringMode tournamentdomain.ScoringMode
	PendingTTL         time.Duration
	Timezone           string
}

// DefaultOptions matches the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Limits:             tournamentdomain.DefaultLimits,
		TeamRules:          DefaultTeamRules,
		DefaultGame:        tournamentdomain.DefaultGame,
		DefaultScoringMode: tournamentdomain.ScoringModeMultiplier,
		PendingTTL:         15 * time.Minute,
		Timezone:           "UTC",
	}
}

// tournamentState is the one mutable thing the service owns. Guarded by TournamentService.mu.
type tournamentState struct {
	tournament *tournamentdomain.Tournament
	pending    map[uuid.UUID]tournamentdomain.PendingResult
	// resetting is set while a discarded tournament is being torn down.
	resetting bool
}

// TournamentService implements the Service interface. It is the single
// writer for the active tournament: every validate-and-mutate step runs
// under mu, and no collaborator is called while mu is held.
type TournamentService struct {
	mu    sync.Mutex
	state tournamentState

	opts          Options
	validator     TeamRules
	timeParser    *tournamenttime.Parser
	clock         tournamenttime.Clock
	collaborators Collaborators

	logger  *slog.Logger
	metrics tournamentmetrics.TournamentMetrics
	tracer  trace.Tracer
}

// NewTournamentService creates a new TournamentService.
func NewTournamentService(
	opts Options,
	collaborators Collaborators,
	clock tournamenttime.Clock,
	logger *slog.Logger,
	metrics tournamentmetrics.TournamentMetrics,
	tracer trace.Tracer,
) *TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = tournamenttime.RealClock{}
	}
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = 15 * time.Minute
	}
	if opts.DefaultScoringMode == "" {
		opts.DefaultScoringMode = tournamentdomain.ScoringModeMultiplier
	}
	return &TournamentService{
		state:         tournamentState{pending: make(map[uuid.UUID]tournamentdomain.PendingResult)},
		opts:          opts,
		validator:     opts.TeamRules.withDefaults(),
		timeParser:    tournamenttime.NewParser(opts.Timezone),
		clock:         clock,
		collaborators: collaborators,
		logger:        logger,
		metrics:       metrics,
		tracer:        tracer,
	}
}

// AttachScheduler sets the scheduler after construction, since the start
// worker needs the service first. Call it before the router starts.
func (s *TournamentService) AttachScheduler(scheduler Scheduler) {
	s.collaborators.Scheduler = scheduler
}

func (s *TournamentService) now() time.Time { return s.clock.Now().UTC() }

// currentID returns the active tournament id for log and span identifiers.
func (s *TournamentService) currentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.tournament == nil {
		return "none"
	}
	return s.state.tournament.ID.String()
}

// collaboratorFailed logs and counts a non-fatal collaborator error.
func (s *TournamentService) collaboratorFailed(ctx context.Context, collaborator, operation string, err error) {
	s.logger.WarnContext(ctx, "Collaborator call failed",
		observability.CorrelationAttr(ctx),
		slog.String("collaborator", collaborator),
		slog.String("operation", operation),
		observability.ErrorAttr(err),
	)
	if s.metrics != nil {
		s.metrics.RecordCollaboratorFailure(ctx, collaborator, operation)
	}
}

func (s *TournamentService) recordRosterSize(ctx context.Context, teams, active int) {
	if s.metrics != nil {
		s.metrics.SetRosterSize(ctx, teams, active)
	}
}

// -----------------------------------------------------------------------------
// Result helpers
// -----------------------------------------------------------------------------

func success[S any](s S) TournamentResult[S] {
	return results.SuccessResult[S, *tournamentevents.FailurePayloadV1](s)
}

func failure[S any](operation string, kind tournamentdomain.Kind, format string, args ...any) TournamentResult[S] {
	return results.FailureResult[S](&tournamentevents.FailurePayloadV1{
		Operation: operation,
		Kind:      kind,
		Reason:    fmt.Sprintf(format, args...),
	})
}

// reject turns a domain error into a failure result. Anything else is an
// infrastructure error and is returned as such.
func reject[S any](operation string, err error) (TournamentResult[S], error) {
	var de *tournamentdomain.Error
	if errors.As(err, &de) {
		return results.FailureResult[S](&tournamentevents.FailurePayloadV1{
			Operation:    operation,
			Kind:         de.Kind,
			Reason:       de.Error(),
			ExistingTeam: de.ExistingTeam,
		}), nil
	}
	return TournamentResult[S]{}, err
}

func noActiveTournament[S any](operation string) TournamentResult[S] {
	return failure[S](operation, tournamentdomain.KindNoActiveTournament, "there is no active tournament")
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any] func(ctx context.Context) (TournamentResult[S], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any](
	s *TournamentService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S],
) (result TournamentResult[S], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("tournament_id", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered",
		observability.CorrelationAttr(ctx),
		slog.String("operation", operationName),
		slog.String("tournament_id", identifier),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				observability.CorrelationAttr(ctx),
				slog.String("tournament_id", identifier),
				observability.ErrorAttr(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = TournamentResult[S]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			observability.CorrelationAttr(ctx),
			slog.String("operation", operationName),
			slog.String("tournament_id", identifier),
			observability.ErrorAttr(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			observability.CorrelationAttr(ctx),
			slog.String("operation", operationName),
			slog.String("tournament_id", identifier),
			slog.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			observability.CorrelationAttr(ctx),
			slog.String("operation", operationName),
			slog.String("tournament_id", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}
