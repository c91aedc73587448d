package tournamenthandlers

import (
	"context"

	tournamentservice "github.com/axi1912/Easy-Customs/app/modules/tournament/application"
	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
)

// ------------------------
// Fake Tournament Service
// ------------------------

type result[S any] = tournamentservice.TournamentResult[S]

type FakeTournamentService struct {
	trace []string

	CreateTournamentFunc     func(ctx context.Context, p tournamentevents.CreateRequestedPayloadV1) (result[tournamentdomain.TournamentSnapshot], error)
	StartTournamentFunc      func(ctx context.Context, p tournamentevents.StartRequestedPayloadV1) (result[tournamentevents.StartedPayloadV1], error)
	FinishTournamentFunc     func(ctx context.Context, p tournamentevents.FinishRequestedPayloadV1) (result[tournamentevents.FinishedPayloadV1], error)
	ResetTournamentFunc      func(ctx context.Context, p tournamentevents.ResetRequestedPayloadV1) (result[tournamentevents.ResetPayloadV1], error)
	RegisterTeamFunc         func(ctx context.Context, p tournamentevents.TeamRegisterRequestedPayloadV1) (result[tournamentevents.TeamRegisteredPayloadV1], error)
	JoinTeamFunc             func(ctx context.Context, p tournamentevents.TeamJoinRequestedPayloadV1) (result[tournamentevents.TeamJoinedPayloadV1], error)
	RecordProvisioningFunc   func(ctx context.Context, p tournamentevents.TeamProvisionedPayloadV1) (result[tournamentevents.ProvisioningRecordedPayloadV1], error)
	SubmitResultFunc         func(ctx context.Context, p tournamentevents.ResultSubmitRequestedPayloadV1) (result[tournamentevents.ResultSubmittedPayloadV1], error)
	AnalyzeResultFunc        func(ctx context.Context, p tournamentevents.ResultAnalysisRequestedPayloadV1) (result[tournamentevents.AnalysisProposedPayloadV1], error)
	ResolvePendingResultFunc func(ctx context.Context, p tournamentevents.PendingResolveRequestedPayloadV1) (result[tournamentservice.PendingResolution], error)
	ScheduleStartFunc        func(ctx context.Context, p tournamentevents.StartScheduleRequestedPayloadV1) (result[tournamentevents.StartScheduledPayloadV1], error)
	BroadcastLobbyCodeFunc   func(ctx context.Context, p tournamentevents.LobbyCodeRequestedPayloadV1) (result[tournamentevents.LobbyCodeBroadcastPayloadV1], error)
}

func NewFakeTournamentService() *FakeTournamentService {
	return &FakeTournamentService{trace: []string{}}
}

func (f *FakeTournamentService) record(step string) { f.trace = append(f.trace, step) }

func call[P any, S any](ctx context.Context, f *FakeTournamentService, step string, fn func(context.Context, P) (result[S], error), p P) (result[S], error) {
	f.record(step)
	if fn != nil {
		return fn(ctx, p)
	}
	return result[S]{}, nil
}

// --- Service Interface Implementation ---

func (f *FakeTournamentService) CreateTournament(ctx context.Context, p tournamentevents.CreateRequestedPayloadV1) (result[tournamentdomain.TournamentSnapshot], error) {
	return call(ctx, f, "CreateTournament", f.CreateTournamentFunc, p)
}

func (f *FakeTournamentService) StartTournament(ctx context.Context, p tournamentevents.StartRequestedPayloadV1) (result[tournamentevents.StartedPayloadV1], error) {
	return call(ctx, f, "StartTournament", f.StartTournamentFunc, p)
}

func (f *FakeTournamentService) FinishTournament(ctx context.Context, p tournamentevents.FinishRequestedPayloadV1) (result[tournamentevents.FinishedPayloadV1], error) {
	return call(ctx, f, "FinishTournament", f.FinishTournamentFunc, p)
}

func (f *FakeTournamentService) ResetTournament(ctx context.Context, p tournamentevents.ResetRequestedPayloadV1) (result[tournamentevents.ResetPayloadV1], error) {
	return call(ctx, f, "ResetTournament", f.ResetTournamentFunc, p)
}

func (f *FakeTournamentService) RegisterTeam(ctx context.Context, p tournamentevents.TeamRegisterRequestedPayloadV1) (result[tournamentevents.TeamRegisteredPayloadV1], error) {
	return call(ctx, f, "RegisterTeam", f.RegisterTeamFunc, p)
}

func (f *FakeTournamentService) JoinTeam(ctx context.Context, p tournamentevents.TeamJoinRequestedPayloadV1) (result[tournamentevents.TeamJoinedPayloadV1], error) {
	return call(ctx, f, "JoinTeam", f.JoinTeamFunc, p)
}

func (f *FakeTournamentService) RecordProvisioning(ctx context.Context, p tournamentevents.TeamProvisionedPayloadV1) (result[tournamentevents.ProvisioningRecordedPayloadV1], error) {
	return call(ctx, f, "RecordProvisioning", f.RecordProvisioningFunc, p)
}

func (f *FakeTournamentService) SubmitResult(ctx context.Context, p tournamentevents.ResultSubmitRequestedPayloadV1) (result[tournamentevents.ResultSubmittedPayloadV1], error) {
	return call(ctx, f, "SubmitResult", f.SubmitResultFunc, p)
}

func (f *FakeTournamentService) AnalyzeResult(ctx context.Context, p tournamentevents.ResultAnalysisRequestedPayloadV1) (result[tournamentevents.AnalysisProposedPayloadV1], error) {
	return call(ctx, f, "AnalyzeResult", f.AnalyzeResultFunc, p)
}

func (f *FakeTournamentService) ResolvePendingResult(ctx context.Context, p tournamentevents.PendingResolveRequestedPayloadV1) (result[tournamentservice.PendingResolution], error) {
	return call(ctx, f, "ResolvePendingResult", f.ResolvePendingResultFunc, p)
}

func (f *FakeTournamentService) ScheduleStart(ctx context.Context, p tournamentevents.StartScheduleRequestedPayloadV1) (result[tournamentevents.StartScheduledPayloadV1], error) {
	return call(ctx, f, "ScheduleStart", f.ScheduleStartFunc, p)
}

func (f *FakeTournamentService) BroadcastLobbyCode(ctx context.Context, p tournamentevents.LobbyCodeRequestedPayloadV1) (result[tournamentevents.LobbyCodeBroadcastPayloadV1], error) {
	return call(ctx, f, "BroadcastLobbyCode", f.BroadcastLobbyCodeFunc, p)
}

func (f *FakeTournamentService) GetStatus(context.Context) (result[tournamentdomain.TournamentSnapshot], error) {
	f.record("GetStatus")
	return result[tournamentdomain.TournamentSnapshot]{}, nil
}

func (f *FakeTournamentService) GetStandings(context.Context) (result[[]tournamentdomain.TeamStanding], error) {
	f.record("GetStandings")
	return result[[]tournamentdomain.TeamStanding]{}, nil
}

func (f *FakeTournamentService) FindTeamByChannel(context.Context, string) (result[tournamentdomain.Team], error) {
	f.record("FindTeamByChannel")
	return result[tournamentdomain.Team]{}, nil
}

// --- Accessors for assertions ---

func (f *FakeTournamentService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ tournamentservice.Service = (*FakeTournamentService)(nil)
