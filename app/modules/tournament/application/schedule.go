package tournamentservice

import (
	"context"
	"strings"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
)

// ScheduleStart queues a start of the active tournament at a time given in natural language.
func (s *TournamentService) ScheduleStart(ctx context.Context, payload tournamentevents.StartScheduleRequestedPayloadV1) (TournamentResult[tournamentevents.StartScheduledPayloadV1], error) {
	return withTelemetry(s, ctx, "ScheduleStart", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentevents.StartScheduledPayloadV1], error) {
		const op = "ScheduleStart"

		if s.collaborators.Scheduler == nil {
			return failure[tournamentevents.StartScheduledPayloadV1](op, tournamentdomain.KindSchedulingUnavailable,
				"scheduled starts are not available; start the tournament manually"), nil
		}

		s.mu.Lock()
		t := s.state.tournament
		if t == nil {
			s.mu.Unlock()
			return noActiveTournament[tournamentevents.StartScheduledPayloadV1](op), nil
		}
		if t.Status != tournamentdomain.StatusRegistration {
			status := t.Status
			s.mu.Unlock()
			return failure[tournamentevents.StartScheduledPayloadV1](op, tournamentdomain.KindInvalidStateTransition,
				"cannot schedule the start of a tournament that is %s", status), nil
		}
		tournamentID := t.ID
		s.mu.Unlock()

		at, err := s.timeParser.ParseStartTime(payload.When, payload.Timezone, s.clock)
		if err != nil {
			return failure[tournamentevents.StartScheduledPayloadV1](op, tournamentdomain.KindInvalidConfiguration,
				"invalid start time: %v", err), nil
		}

		jobID, err := s.collaborators.Scheduler.ScheduleStart(ctx, tournamentID, at)
		if err != nil {
			s.collaboratorFailed(ctx, collaboratorScheduler, op, err)
			return failure[tournamentevents.StartScheduledPayloadV1](op, tournamentdomain.KindExternalCollaboratorFailure,
				"could not schedule the start: %v", err), nil
		}

		return success(tournamentevents.StartScheduledPayloadV1{
			TournamentID: tournamentID,
			StartAt:      at,
			JobID:        jobID,
		}), nil
	})
}

// BroadcastLobbyCode addresses a lobby code to every provisioned team channel.
// The front-end does the posting.
func (s *TournamentService) BroadcastLobbyCode(ctx context.Context, payload tournamentevents.LobbyCodeRequestedPayloadV1) (TournamentResult[tournamentevents.LobbyCodeBroadcastPayloadV1], error) {
	return withTelemetry(s, ctx, "BroadcastLobbyCode", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentevents.LobbyCodeBroadcastPayloadV1], error) {
		const op = "BroadcastLobbyCode"

		code := strings.TrimSpace(payload.Code)
		if code == "" {
			return failure[tournamentevents.LobbyCodeBroadcastPayloadV1](op, tournamentdomain.KindInvalidConfiguration,
				"lobby code must not be empty"), nil
		}
		if payload.MatchNumber < 1 {
			return failure[tournamentevents.LobbyCodeBroadcastPayloadV1](op, tournamentdomain.KindInvalidConfiguration,
				"match number must be at least 1, got %d", payload.MatchNumber), nil
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		t := s.state.tournament
		if t == nil {
			return noActiveTournament[tournamentevents.LobbyCodeBroadcastPayloadV1](op), nil
		}

		out := tournamentevents.LobbyCodeBroadcastPayloadV1{
			TournamentID: t.ID,
			MatchNumber:  payload.MatchNumber,
			Code:         code,
			ChannelIDs:   []string{},
			TeamNames:    []string{},
		}
		for _, team := range t.Roster().Teams() {
			if team.Infrastructure == nil || team.Infrastructure.TextChannelID == "" {
				continue
			}
			out.ChannelIDs = append(out.ChannelIDs, team.Infrastructure.TextChannelID)
			out.TeamNames = append(out.TeamNames, team.Name)
		}
		return success(out), nil
	})
}
