package tournamentqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/riverqueue/river"

	tournamentservice "github.com/axi1912/Easy-Customs/app/modules/tournament/application"
	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	"github.com/axi1912/Easy-Customs/app/shared/handlerwrapper"
)

// Starter is the part of the tournament service the start worker drives.
type Starter interface {
	StartTournament(ctx context.Context, payload tournamentevents.StartRequestedPayloadV1) (tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1], error)
}

// TournamentStartWorker starts the pinned tournament and publishes the outcome
// the same way a manual start request would.
type TournamentStartWorker struct {
	river.WorkerDefaults[TournamentStartJob]
	starter   Starter
	publisher message.Publisher
	logger    *slog.Logger
}

// NewTournamentStartWorker creates the worker.
func NewTournamentStartWorker(starter Starter, publisher message.Publisher, logger *slog.Logger) *TournamentStartWorker {
	return &TournamentStartWorker{starter: starter, publisher: publisher, logger: logger}
}

func (w *TournamentStartWorker) Work(ctx context.Context, job *river.Job[TournamentStartJob]) error {
	logger := w.logger.With(
		slog.Int64("job_id", job.ID),
		slog.String("tournament_id", job.Args.TournamentID),
	)

	id, err := uuid.Parse(job.Args.TournamentID)
	if err != nil {
		logger.ErrorContext(ctx, "Scheduled start has an invalid tournament id", slog.Any("error", err))
		return river.JobCancel(fmt.Errorf("invalid tournament id: %w", err))
	}

	res, err := w.starter.StartTournament(ctx, tournamentevents.StartRequestedPayloadV1{
		TournamentID: &id,
		RequestedBy:  "scheduler",
	})
	if err != nil {
		return err
	}

	if res.IsFailure() {
		failure := *res.Failure
		if failure.Kind == tournamentdomain.KindNoActiveTournament {
			logger.InfoContext(ctx, "Scheduled start is stale, skipping", slog.String("reason", failure.Reason))
			return nil
		}
		logger.InfoContext(ctx, "Scheduled start did not start the tournament",
			slog.String("kind", string(failure.Kind)),
			slog.String("reason", failure.Reason),
		)
		w.publish(ctx, logger, tournamentevents.StartFailedV1, failure)
		return nil
	}

	logger.InfoContext(ctx, "Scheduled start completed", slog.Int("teams", res.Success.TeamCount))
	w.publish(ctx, logger, tournamentevents.StartedV1, *res.Success)
	return nil
}

// publish logs failures instead of returning them; the outcome is already applied.
func (w *TournamentStartWorker) publish(ctx context.Context, logger *slog.Logger, topic string, payload any) {
	if w.publisher == nil {
		return
	}
	msg, err := handlerwrapper.NewResultMessage(nil, handlerwrapper.Result{Topic: topic, Payload: payload})
	if err == nil {
		err = w.publisher.Publish(topic, msg)
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to publish scheduled start outcome",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	}
}
