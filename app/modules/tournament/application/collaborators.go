package tournamentservice

import (
	"context"
	"time"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	"github.com/google/uuid"
)

// ResultStore is the durable record of results and registrations.
type ResultStore interface {
	AppendResult(ctx context.Context, result tournamentdomain.MatchResult) error
	AppendRegistration(ctx context.Context, record tournamentdomain.RegistrationRecord) error
	QueryResults(ctx context.Context, tournamentID uuid.UUID) ([]tournamentdomain.MatchResult, error)
	ClearAll(ctx context.Context, tournamentID uuid.UUID) error
}

// Mirror keeps a human-readable copy (the workbook) in sync. Optional.
type Mirror interface {
	AppendRegistration(ctx context.Context, record tournamentdomain.RegistrationRecord) error
	AppendResult(ctx context.Context, result tournamentdomain.MatchResult) error
	WriteLeaderboard(ctx context.Context, standings []tournamentdomain.TeamStanding) error
	Clear(ctx context.Context) error
}

// Notifier tells the front-end about side effects it has to carry out.
// Calls are fire-and-forget from the service's point of view.
type Notifier interface {
	TeamActivated(ctx context.Context, payload tournamentevents.TeamActivatedPayloadV1) error
	TournamentReset(ctx context.Context, payload tournamentevents.TeardownRequestedPayloadV1) error
	LeaderboardUpdated(ctx context.Context, payload tournamentevents.LeaderboardUpdatedPayloadV1) error
}

// Analyzer extracts a result from scoreboard screenshots. Optional.
type Analyzer interface {
	Analyze(ctx context.Context, imageURLs []string) (tournamentdomain.AnalyzedResult, error)
}

// Scheduler runs a tournament start at a later time. Optional.
type Scheduler interface {
	ScheduleStart(ctx context.Context, tournamentID uuid.UUID, at time.Time) (int64, error)
	CancelStarts(ctx context.Context, tournamentID uuid.UUID) error
}

// Collaborators groups the service's outside dependencies. Any of them may be nil;
// operations that cannot work without one fail with ExternalCollaboratorFailure.
type Collaborators struct {
	Store     ResultStore
	Mirror    Mirror
	Notifier  Notifier
	Analyzer  Analyzer
	Scheduler Scheduler
}

// collaborator names used in logs and metrics
const (
	collaboratorStore        = "store"
	collaboratorMirror       = "mirror"
	collaboratorProvisioning = "provisioning"
	collaboratorAnalysis     = "analysis"
	collaboratorScheduler    = "scheduler"
)
