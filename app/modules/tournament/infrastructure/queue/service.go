package tournamentqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
)

const (
	queueName   = "tournament"
	serviceName = "river"
)

// Metrics interface (using the tournament metrics)
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// Config configures the queue.
type Config struct {
	DSN        string
	MaxWorkers int
}

// QueueService interface defines the contract for job scheduling operations
type QueueService interface {
	// ScheduleStart schedules a tournament start job and returns its id.
	ScheduleStart(ctx context.Context, tournamentID uuid.UUID, at time.Time) (int64, error)
	// CancelStarts cancels every pending start job of a tournament
	CancelStarts(ctx context.Context, tournamentID uuid.UUID) error
	// GetScheduledJobs returns the start jobs of a tournament (for debugging)
	GetScheduledJobs(ctx context.Context, tournamentID uuid.UUID) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

// Ensure Service implements QueueService
var _ QueueService = (*Service)(nil)

// Service schedules delayed tournament starts using River
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	db      *bun.DB
	logger  *slog.Logger
	metrics Metrics
}

// NewService creates the River client, running River's own migrations first.
func NewService(ctx context.Context, bunDB *bun.DB, cfg Config, starter Starter, publisher message.Publisher, logger *slog.Logger, metrics Metrics) (*Service, error) {
	ctxLogger := logger.With(
		slog.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", serviceName)

	fail := func(msg string, err error) (*Service, error) {
		ctxLogger.Error(msg, slog.Any("error", err))
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("%s: %w", msg, err)
	}

	// River requires pgx, not database/sql
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return fail("failed to parse DSN", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fail("failed to create pgx pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fail("failed to ping database", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return fail("failed to run River migrations", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewTournamentStartWorker(starter, publisher, ctxLogger))

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 5
	}
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			queueName: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
		Logger:  ctxLogger,
	})
	if err != nil {
		pool.Close()
		return fail("failed to create River client", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", serviceName)
	metrics.RecordOperationDuration(ctx, "initialize_service", serviceName, time.Since(start))
	ctxLogger.Info("Tournament queue service initialized")

	return &Service{
		client:  riverClient,
		pool:    pool,
		db:      bunDB,
		logger:  ctxLogger,
		metrics: metrics,
	}, nil
}

// Migrate brings River's tables up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to migrate River: %w", err)
	}
	return nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	return s.observe(ctx, "start_service", func() error {
		if err := s.client.Start(ctx); err != nil {
			return fmt.Errorf("failed to start River client: %w", err)
		}
		s.logger.Info("Tournament queue service started")
		return nil
	})
}

// Stop stops the River queue service and closes its pool
func (s *Service) Stop(ctx context.Context) error {
	return s.observe(ctx, "stop_service", func() error {
		defer s.pool.Close()
		if err := s.client.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop River client: %w", err)
		}
		s.logger.Info("Tournament queue service stopped")
		return nil
	})
}

// ScheduleStart schedules a start job. Scheduling the same tournament again is
// deduplicated by River while the first job is pending.
func (s *Service) ScheduleStart(ctx context.Context, tournamentID uuid.UUID, at time.Time) (int64, error) {
	var jobID int64
	err := s.observe(ctx, "schedule_tournament_start", func() error {
		res, err := s.client.Insert(ctx, TournamentStartJob{TournamentID: tournamentID.String()}, &river.InsertOpts{
			Queue:       queueName,
			ScheduledAt: at,
			UniqueOpts: river.UniqueOpts{
				ByArgs: true,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to schedule tournament start job: %w", err)
		}
		jobID = res.Job.ID

		s.logger.InfoContext(ctx, "Tournament start job scheduled",
			slog.String("tournament_id", tournamentID.String()),
			slog.Time("start_at", at),
			slog.Int64("job_id", jobID),
			slog.Bool("duplicate", res.UniqueSkippedAsDuplicate),
		)
		return nil
	})
	return jobID, err
}

type riverJobRow struct {
	ID          int64      `bun:"id"`
	Kind        string     `bun:"kind"`
	State       string     `bun:"state"`
	ScheduledAt *time.Time `bun:"scheduled_at"`
	Attempt     int16      `bun:"attempt"`
	MaxAttempts int16      `bun:"max_attempts"`
}

// CancelStarts cancels every pending start job of a tournament
func (s *Service) CancelStarts(ctx context.Context, tournamentID uuid.UUID) error {
	return s.observe(ctx, "cancel_tournament_starts", func() error {
		var jobs []riverJobRow
		err := s.db.NewSelect().
			Table("river_job").
			Column("id", "kind", "state").
			Where("kind = ?", TournamentStartJob{}.Kind()).
			Where("state IN (?, ?, ?)", "available", "scheduled", "retryable").
			Where("args->>'tournament_id' = ?", tournamentID.String()).
			Scan(ctx, &jobs)
		if err != nil {
			return fmt.Errorf("failed to query jobs for cancellation: %w", err)
		}

		var failed int
		for _, job := range jobs {
			if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
				s.logger.WarnContext(ctx, "Failed to cancel job",
					slog.Int64("job_id", job.ID),
					slog.Any("error", err),
				)
				failed++
			}
		}

		s.logger.InfoContext(ctx, "Tournament start jobs cancelled",
			slog.String("tournament_id", tournamentID.String()),
			slog.Int("total_found", len(jobs)),
			slog.Int("failed", failed),
		)
		if failed > 0 {
			return fmt.Errorf("failed to cancel %d of %d start jobs", failed, len(jobs))
		}
		return nil
	})
}

// GetScheduledJobs returns the start jobs of a tournament (for debugging)
func (s *Service) GetScheduledJobs(ctx context.Context, tournamentID uuid.UUID) ([]JobInfo, error) {
	var out []JobInfo
	err := s.observe(ctx, "get_scheduled_jobs", func() error {
		var jobs []riverJobRow
		err := s.db.NewSelect().
			Table("river_job").
			Column("id", "kind", "state", "scheduled_at", "attempt", "max_attempts").
			Where("kind = ?", TournamentStartJob{}.Kind()).
			Where("args->>'tournament_id' = ?", tournamentID.String()).
			Order("scheduled_at ASC NULLS LAST").
			Scan(ctx, &jobs)
		if err != nil {
			return fmt.Errorf("failed to query scheduled jobs: %w", err)
		}
		out = make([]JobInfo, len(jobs))
		for i, job := range jobs {
			scheduledAt := ""
			if job.ScheduledAt != nil {
				scheduledAt = job.ScheduledAt.Format(time.RFC3339)
			}
			out[i] = JobInfo{
				ID:           job.ID,
				Kind:         job.Kind,
				TournamentID: tournamentID.String(),
				State:        job.State,
				ScheduledAt:  scheduledAt,
				Attempt:      int(job.Attempt),
				MaxAttempts:  int(job.MaxAttempts),
			}
		}
		return nil
	})
	return out, err
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.observe(ctx, "health_check", func() error {
		if s.client == nil {
			return fmt.Errorf("river client is nil")
		}
		var count int
		if err := s.db.NewSelect().Table("river_job").ColumnExpr("COUNT(*)").Scan(ctx, &count); err != nil {
			return fmt.Errorf("queue service health check failed: %w", err)
		}
		s.logger.Debug("Queue service health check passed", slog.Int("total_jobs", count))
		return nil
	})
}

func (s *Service) observe(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, serviceName)
	if err := fn(); err != nil {
		s.logger.ErrorContext(ctx, "Queue operation failed",
			slog.String("operation", operation),
			slog.Any("error", err),
		)
		s.metrics.RecordOperationFailure(ctx, operation, serviceName)
		return err
	}
	s.metrics.RecordOperationSuccess(ctx, operation, serviceName)
	s.metrics.RecordOperationDuration(ctx, operation, serviceName, time.Since(start))
	return nil
}
