package tournamentservice

import (
	"context"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	"github.com/axi1912/Easy-Customs/app/shared/results"
)

// TournamentResult is what every operation returns: a success value or a
// business rejection. The separate error return is for infrastructure faults.
type TournamentResult[S any] = results.OperationResult[S, *tournamentevents.FailurePayloadV1]

// PendingResolution is the outcome of confirming, editing or cancelling an analyzed result.
// Submitted is set when a result was recorded.
type PendingResolution struct {
	Resolved  tournamentevents.PendingResolvedPayloadV1
	Submitted *tournamentevents.ResultSubmittedPayloadV1
}

// Service defines the contract for tournament operations.
// All roster and lifecycle mutations are serialized by the implementation.
type Service interface {
	// --- LIFECYCLE ---

	CreateTournament(ctx context.Context, payload tournamentevents.CreateRequestedPayloadV1) (TournamentResult[tournamentdomain.TournamentSnapshot], error)
	StartTournament(ctx context.Context, payload tournamentevents.StartRequestedPayloadV1) (TournamentResult[tournamentevents.StartedPayloadV1], error)
	FinishTournament(ctx context.Context, payload tournamentevents.FinishRequestedPayloadV1) (TournamentResult[tournamentevents.FinishedPayloadV1], error)
	// ResetTournament always succeeds; teardown failures are reported in the payload.
	ResetTournament(ctx context.Context, payload tournamentevents.ResetRequestedPayloadV1) (TournamentResult[tournamentevents.ResetPayloadV1], error)

	// --- ROSTER ---

	RegisterTeam(ctx context.Context, payload tournamentevents.TeamRegisterRequestedPayloadV1) (TournamentResult[tournamentevents.TeamRegisteredPayloadV1], error)
	JoinTeam(ctx context.Context, payload tournamentevents.TeamJoinRequestedPayloadV1) (TournamentResult[tournamentevents.TeamJoinedPayloadV1], error)
	RecordProvisioning(ctx context.Context, payload tournamentevents.TeamProvisionedPayloadV1) (TournamentResult[tournamentevents.ProvisioningRecordedPayloadV1], error)

	// --- RESULTS ---

	SubmitResult(ctx context.Context, payload tournamentevents.ResultSubmitRequestedPayloadV1) (TournamentResult[tournamentevents.ResultSubmittedPayloadV1], error)
	AnalyzeResult(ctx context.Context, payload tournamentevents.ResultAnalysisRequestedPayloadV1) (TournamentResult[tournamentevents.AnalysisProposedPayloadV1], error)
	ResolvePendingResult(ctx context.Context, payload tournamentevents.PendingResolveRequestedPayloadV1) (TournamentResult[PendingResolution], error)

	// --- SCHEDULING & LOBBY ---

	ScheduleStart(ctx context.Context, payload tournamentevents.StartScheduleRequestedPayloadV1) (TournamentResult[tournamentevents.StartScheduledPayloadV1], error)
	BroadcastLobbyCode(ctx context.Context, payload tournamentevents.LobbyCodeRequestedPayloadV1) (TournamentResult[tournamentevents.LobbyCodeBroadcastPayloadV1], error)

	// --- READS ---

	GetStatus(ctx context.Context) (TournamentResult[tournamentdomain.TournamentSnapshot], error)
	GetStandings(ctx context.Context) (TournamentResult[[]tournamentdomain.TeamStanding], error)
	FindTeamByChannel(ctx context.Context, channelID string) (TournamentResult[tournamentdomain.Team], error)
}
