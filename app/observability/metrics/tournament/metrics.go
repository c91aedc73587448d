package tournamentmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TournamentMetrics is what the tournament service and handlers record.
type TournamentMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)

	RecordJoinOutcome(ctx context.Context, outcome string)
	RecordTeamActivated(ctx context.Context)
	RecordResultSubmitted(ctx context.Context, scoringMode string, score int)
	RecordCollaboratorFailure(ctx context.Context, collaborator, operation string)
	SetRosterSize(ctx context.Context, teams, activeTeams int)

	RecordHandlerAttempt(ctx context.Context, handler string)
	RecordHandlerFailure(ctx context.Context, handler string)
}

type prometheusMetrics struct {
	operationAttempts    *prometheus.CounterVec
	operationSuccess     *prometheus.CounterVec
	operationFailures    *prometheus.CounterVec
	operationDuration    *prometheus.HistogramVec
	joinOutcomes         *prometheus.CounterVec
	teamActivations      prometheus.Counter
	resultsSubmitted     *prometheus.CounterVec
	resultScores         prometheus.Histogram
	collaboratorFailures *prometheus.CounterVec
	rosterTeams          prometheus.Gauge
	rosterActiveTeams    prometheus.Gauge
	handlerAttempts      *prometheus.CounterVec
	handlerFailures      *prometheus.CounterVec
}

// NewPrometheusMetrics registers the tournament collectors on registry.
func NewPrometheusMetrics(registry prometheus.Registerer, namespace string) TournamentMetrics {
	const subsystem = "tournament"

	m := &prometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "operation_attempts_total",
			Help: "Service operations started.",
		}, []string{"operation", "service"}),
		operationSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "operation_success_total",
			Help: "Service operations that completed without an infrastructure error.",
		}, []string{"operation", "service"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "operation_failures_total",
			Help: "Service operations that ended in an infrastructure error or panic.",
		}, []string{"operation", "service"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name:    "operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		joinOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "join_outcomes_total",
			Help: "Team join attempts by outcome.",
		}, []string{"outcome"}),
		teamActivations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "team_activations_total",
			Help: "Teams that received their first member.",
		}),
		resultsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "results_submitted_total",
			Help: "Match results recorded.",
		}, []string{"scoring_mode"}),
		resultScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name:    "result_score",
			Help:    "Distribution of computed match scores.",
			Buckets: []float64{0, 5, 10, 20, 40, 80, 160, 320},
		}),
		collaboratorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "collaborator_failures_total",
			Help: "Non-fatal failures from provisioning, storage, mirror, scheduler or analysis.",
		}, []string{"collaborator", "operation"}),
		rosterTeams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "roster_teams",
			Help: "Teams registered in the active tournament.",
		}),
		rosterActiveTeams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "roster_active_teams",
			Help: "Teams with at least one member.",
		}),
		handlerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "handler_attempts_total",
			Help: "Inbound messages handled.",
		}, []string{"handler"}),
		handlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "handler_failures_total",
			Help: "Inbound messages whose handler returned an error.",
		}, []string{"handler"}),
	}

	if registry != nil {
		registry.MustRegister(
			m.operationAttempts, m.operationSuccess, m.operationFailures, m.operationDuration,
			m.joinOutcomes, m.teamActivations, m.resultsSubmitted, m.resultScores,
			m.collaboratorFailures, m.rosterTeams, m.rosterActiveTeams,
			m.handlerAttempts, m.handlerFailures,
		)
	}
	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operationAttempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operationSuccess.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operationFailures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordJoinOutcome(_ context.Context, outcome string) {
	m.joinOutcomes.WithLabelValues(outcome).Inc()
}

func (m *prometheusMetrics) RecordTeamActivated(_ context.Context) {
	m.teamActivations.Inc()
}

func (m *prometheusMetrics) RecordResultSubmitted(_ context.Context, scoringMode string, score int) {
	m.resultsSubmitted.WithLabelValues(scoringMode).Inc()
	m.resultScores.Observe(float64(score))
}

func (m *prometheusMetrics) RecordCollaboratorFailure(_ context.Context, collaborator, operation string) {
	m.collaboratorFailures.WithLabelValues(collaborator, operation).Inc()
}

func (m *prometheusMetrics) SetRosterSize(_ context.Context, teams, activeTeams int) {
	m.rosterTeams.Set(float64(teams))
	m.rosterActiveTeams.Set(float64(activeTeams))
}

func (m *prometheusMetrics) RecordHandlerAttempt(_ context.Context, handler string) {
	m.handlerAttempts.WithLabelValues(handler).Inc()
}

func (m *prometheusMetrics) RecordHandlerFailure(_ context.Context, handler string) {
	m.handlerFailures.WithLabelValues(handler).Inc()
}
