package tournamentservice

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	"github.com/axi1912/Easy-Customs/app/observability"
)

const joinOutcomeJoined = "joined"

// RegisterTeam pre-registers an empty team during registration.
func (s *TournamentService) RegisterTeam(ctx context.Context, payload tournamentevents.TeamRegisterRequestedPayloadV1) (TournamentResult[tournamentevents.TeamRegisteredPayloadV1], error) {
	return withTelemetry(s, ctx, "RegisterTeam", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentevents.TeamRegisteredPayloadV1], error) {
		const op = "RegisterTeam"

		name, tag, err := s.validator.Validate(payload.Name, payload.Tag)
		if err != nil {
			return reject[tournamentevents.TeamRegisteredPayloadV1](op, err)
		}

		s.mu.Lock()
		t := s.state.tournament
		if t == nil {
			s.mu.Unlock()
			return noActiveTournament[tournamentevents.TeamRegisteredPayloadV1](op), nil
		}
		team, err := t.RegisterTeam(uuid.New(), name, tag, payload.RequestedBy, s.now())
		if err != nil {
			s.mu.Unlock()
			return reject[tournamentevents.TeamRegisteredPayloadV1](op, err)
		}
		registered := tournamentevents.TeamRegisteredPayloadV1{
			TournamentID: t.ID,
			Team:         team.Clone(),
			TeamCount:    t.Roster().Len(),
			MaxTeams:     t.MaxTeams,
		}
		active := t.Roster().ActiveTeamCount()
		record := tournamentdomain.NewRegistrationRecord(registered.TournamentID, registered.Team, s.now())
		s.mu.Unlock()

		s.recordRosterSize(ctx, registered.TeamCount, active)
		s.mirrorRegistration(ctx, op, record)

		return success(registered), nil
	})
}

// JoinTeam adds the candidate to a pre-registered team. The capacity and
// membership checks and the append happen under one lock acquisition, so two
// joins racing for a last slot cannot both succeed.
func (s *TournamentService) JoinTeam(ctx context.Context, payload tournamentevents.TeamJoinRequestedPayloadV1) (TournamentResult[tournamentevents.TeamJoinedPayloadV1], error) {
	return withTelemetry(s, ctx, "JoinTeam", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentevents.TeamJoinedPayloadV1], error) {
		const op = "JoinTeam"

		s.mu.Lock()
		t := s.state.tournament
		outcome, err := tournamentdomain.JoinTeam(t, payload.TeamID, tournamentdomain.Candidate{
			UserID:      payload.UserID,
			DisplayName: payload.DisplayName,
		}, s.now())
		if err != nil {
			s.mu.Unlock()
			s.recordJoinOutcome(ctx, string(tournamentdomain.KindOf(err)))
			return reject[tournamentevents.TeamJoinedPayloadV1](op, err)
		}
		joined := tournamentevents.TeamJoinedPayloadV1{
			TournamentID: t.ID,
			Team:         outcome.Team,
			UserID:       payload.UserID,
			Activated:    outcome.Activated,
			IsFull:       len(outcome.Team.Members) >= outcome.Team.Capacity,
		}
		tournamentName := t.Name
		teams, active := t.Roster().Len(), t.Roster().ActiveTeamCount()
		// taken under the lock so its revision matches the join that produced it
		record := tournamentdomain.NewRegistrationRecord(joined.TournamentID, joined.Team, s.now())
		s.mu.Unlock()

		s.recordJoinOutcome(ctx, joinOutcomeJoined)
		s.recordRosterSize(ctx, teams, active)

		if joined.Activated {
			s.notifyTeamActivated(ctx, tournamentevents.TeamActivatedPayloadV1{
				TournamentID:   joined.TournamentID,
				TournamentName: tournamentName,
				TeamID:         joined.Team.ID,
				TeamName:       joined.Team.Name,
				Tag:            joined.Team.Tag,
				FirstMemberID:  payload.UserID,
			})
		}
		s.mirrorRegistration(ctx, op, record)

		return success(joined), nil
	})
}

// RecordProvisioning stores the channel and role ids the front-end created for a team.
// Results and lookups use these ids instead of matching channel names.
func (s *TournamentService) RecordProvisioning(ctx context.Context, payload tournamentevents.TeamProvisionedPayloadV1) (TournamentResult[tournamentevents.ProvisioningRecordedPayloadV1], error) {
	return withTelemetry(s, ctx, "RecordProvisioning", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentevents.ProvisioningRecordedPayloadV1], error) {
		const op = "RecordProvisioning"

		s.mu.Lock()
		defer s.mu.Unlock()

		t := s.state.tournament
		if t == nil {
			return noActiveTournament[tournamentevents.ProvisioningRecordedPayloadV1](op), nil
		}
		team := t.Roster().FindTeamByID(payload.TeamID)
		if team == nil {
			return failure[tournamentevents.ProvisioningRecordedPayloadV1](op, tournamentdomain.KindTeamNotFound,
				"team %s not found", payload.TeamID), nil
		}

		infra := tournamentdomain.TeamInfrastructure{
			CategoryID:     payload.CategoryID,
			TextChannelID:  payload.TextChannelID,
			VoiceChannelID: payload.VoiceChannelID,
			RoleID:         payload.RoleID,
		}
		team.Infrastructure = &infra

		return success(tournamentevents.ProvisioningRecordedPayloadV1{
			TournamentID:   t.ID,
			TeamID:         team.ID,
			TeamName:       team.Name,
			Infrastructure: infra,
		}), nil
	})
}

func (s *TournamentService) recordJoinOutcome(ctx context.Context, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordJoinOutcome(ctx, outcome)
	}
}

// notifyTeamActivated fires the provisioning request. Failure never undoes the join.
func (s *TournamentService) notifyTeamActivated(ctx context.Context, payload tournamentevents.TeamActivatedPayloadV1) {
	if s.metrics != nil {
		s.metrics.RecordTeamActivated(ctx)
	}
	n := s.collaborators.Notifier
	if n == nil {
		return
	}
	if err := n.TeamActivated(ctx, payload); err != nil {
		s.collaboratorFailed(ctx, collaboratorProvisioning, "TeamActivated", err)
		return
	}
	s.logger.InfoContext(ctx, "Team activation published",
		observability.CorrelationAttr(ctx),
		slog.String("team_id", payload.TeamID.String()),
		slog.String("team_name", payload.TeamName),
	)
}

// mirrorRegistration writes the record to the store and workbook. Both are non-fatal.
func (s *TournamentService) mirrorRegistration(ctx context.Context, op string, rec tournamentdomain.RegistrationRecord) {
	if st := s.collaborators.Store; st != nil {
		if err := st.AppendRegistration(ctx, rec); err != nil {
			s.collaboratorFailed(ctx, collaboratorStore, op, err)
		}
	}
	if m := s.collaborators.Mirror; m != nil {
		if err := m.AppendRegistration(ctx, rec); err != nil {
			s.collaboratorFailed(ctx, collaboratorMirror, op, err)
		}
	}
}
