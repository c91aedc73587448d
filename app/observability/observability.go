package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	tournamentmetrics "github.com/axi1912/Easy-Customs/app/observability/metrics/tournament"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config controls logger format and service identity.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
}

// Observability bundles the logger, tracer and metrics shared by every module.
type Observability struct {
	Logger            *slog.Logger
	Tracer            trace.Tracer
	Registry          *prometheus.Registry
	TournamentMetrics tournamentmetrics.TournamentMetrics
}

// Init builds the production bundle: a JSON logger (text in development),
// the global otel tracer and a fresh prometheus registry.
func Init(cfg Config) Observability {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "easy-customs"
	}

	logger := NewLogger(os.Stdout, cfg.Environment, cfg.LogLevel).With(
		slog.String("service", serviceName),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Observability{
		Logger:            logger,
		Tracer:            otel.Tracer(serviceName),
		Registry:          registry,
		TournamentMetrics: tournamentmetrics.NewPrometheusMetrics(registry, "easy_customs"),
	}
}

// NewLogger returns a JSON handler logger, or a text one for development.
func NewLogger(w io.Writer, environment, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(environment, "development") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewTestObservability discards logs and uses no-op tracing and metrics.
func NewTestObservability() Observability {
	return Observability{
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:            noop.NewTracerProvider().Tracer("test"),
		Registry:          prometheus.NewRegistry(),
		TournamentMetrics: tournamentmetrics.NewNoop(),
	}
}

type correlationIDKey struct{}

// ContextWithCorrelationID stores the correlation id carried by an inbound message.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the stored correlation id, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// CorrelationAttr is the slog attribute every operation log line carries.
func CorrelationAttr(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", CorrelationIDFromContext(ctx))
}

// ErrorAttr renders err under the "error" key.
func ErrorAttr(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
