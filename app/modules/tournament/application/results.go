package tournamentservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	"github.com/axi1912/Easy-Customs/app/observability"
)

// submission is a result on its way in, from any path.
type submission struct {
	TeamName    string
	ChannelID   string
	Position    int
	Kills       int
	SubmittedBy string
	SubmitterID string
}

// SubmitResult scores and records one match result, then rebuilds the standings.
func (s *TournamentService) SubmitResult(ctx context.Context, payload tournamentevents.ResultSubmitRequestedPayloadV1) (TournamentResult[tournamentevents.ResultSubmittedPayloadV1], error) {
	return withTelemetry(s, ctx, "SubmitResult", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentevents.ResultSubmittedPayloadV1], error) {
		return s.submitLogic(ctx, "SubmitResult", submission{
			TeamName:    payload.TeamName,
			ChannelID:   payload.ChannelID,
			Position:    payload.Position,
			Kills:       payload.Kills,
			SubmittedBy: payload.SubmittedBy,
			SubmitterID: payload.SubmitterID,
		})
	})
}

// submitLogic is shared by manual submission and confirmed analysis.
// Appending to the store is the point of the call, so a store failure fails
// the operation. Everything after that is best-effort.
func (s *TournamentService) submitLogic(ctx context.Context, op string, sub submission) (TournamentResult[tournamentevents.ResultSubmittedPayloadV1], error) {
	s.mu.Lock()
	t := s.state.tournament
	if t == nil {
		s.mu.Unlock()
		return noActiveTournament[tournamentevents.ResultSubmittedPayloadV1](op), nil
	}
	if err := t.AcceptsResults(); err != nil {
		s.mu.Unlock()
		return reject[tournamentevents.ResultSubmittedPayloadV1](op, err)
	}
	team, err := resolveTeam(t, sub.TeamName, sub.ChannelID)
	if err != nil {
		s.mu.Unlock()
		return reject[tournamentevents.ResultSubmittedPayloadV1](op, err)
	}
	breakdown, err := t.Strategy().Score(sub.Position, sub.Kills)
	if err != nil {
		s.mu.Unlock()
		return reject[tournamentevents.ResultSubmittedPayloadV1](op, err)
	}
	result := tournamentdomain.MatchResult{
		ID:           uuid.New(),
		TournamentID: t.ID,
		TeamName:     team.Name,
		Position:     breakdown.Position,
		Kills:        breakdown.Kills,
		Multiplier:   breakdown.Multiplier,
		Score:        breakdown.FinalScore,
		ScoringMode:  t.ScoringMode,
		SubmittedBy:  sub.SubmittedBy,
		SubmitterID:  sub.SubmitterID,
		SubmittedAt:  s.now(),
	}
	s.mu.Unlock()

	if s.collaborators.Store == nil {
		return failure[tournamentevents.ResultSubmittedPayloadV1](op, tournamentdomain.KindExternalCollaboratorFailure,
			"result storage is not configured"), nil
	}
	if err := s.collaborators.Store.AppendResult(ctx, result); err != nil {
		s.collaboratorFailed(ctx, collaboratorStore, op, err)
		return failure[tournamentevents.ResultSubmittedPayloadV1](op, tournamentdomain.KindExternalCollaboratorFailure,
			"could not record the result: %v", err), nil
	}
	if s.metrics != nil {
		s.metrics.RecordResultSubmitted(ctx, string(result.ScoringMode), result.Score)
	}
	if m := s.collaborators.Mirror; m != nil {
		if err := m.AppendResult(ctx, result); err != nil {
			s.collaboratorFailed(ctx, collaboratorMirror, op, err)
		}
	}

	standings, err := s.refreshStandings(ctx, op, result.TournamentID)
	if err != nil {
		s.collaboratorFailed(ctx, collaboratorStore, op, err)
	}

	s.logger.InfoContext(ctx, "Result recorded",
		observability.CorrelationAttr(ctx),
		slog.String("team_name", result.TeamName),
		slog.Int("position", result.Position),
		slog.Int("kills", result.Kills),
		slog.Int("score", result.Score),
	)

	return success(tournamentevents.ResultSubmittedPayloadV1{
		Result:    result,
		Breakdown: breakdown.Describe(),
		Standings: standings,
	}), nil
}

// refreshStandings recomputes standings from the whole stored history, rewrites
// the mirror's leaderboard and announces the update. Only the query error is
// returned; mirror and notifier failures are logged here.
func (s *TournamentService) refreshStandings(ctx context.Context, op string, tournamentID uuid.UUID) ([]tournamentdomain.TeamStanding, error) {
	standings, err := s.computeStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	if m := s.collaborators.Mirror; m != nil {
		if err := m.WriteLeaderboard(ctx, standings); err != nil {
			s.collaboratorFailed(ctx, collaboratorMirror, op, err)
		}
	}
	if n := s.collaborators.Notifier; n != nil {
		if err := n.LeaderboardUpdated(ctx, tournamentevents.LeaderboardUpdatedPayloadV1{
			TournamentID: tournamentID,
			Standings:    standings,
			UpdatedAt:    s.now(),
		}); err != nil {
			s.collaboratorFailed(ctx, collaboratorProvisioning, op, err)
		}
	}
	return standings, nil
}

func (s *TournamentService) computeStandings(ctx context.Context, tournamentID uuid.UUID) ([]tournamentdomain.TeamStanding, error) {
	if s.collaborators.Store == nil {
		return []tournamentdomain.TeamStanding{}, nil
	}
	history, err := s.collaborators.Store.QueryResults(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	return tournamentdomain.ComputeStandings(history), nil
}

// GetStandings returns the current leaderboard of the active tournament.
func (s *TournamentService) GetStandings(ctx context.Context) (TournamentResult[[]tournamentdomain.TeamStanding], error) {
	return withTelemetry(s, ctx, "GetStandings", s.currentID(), func(ctx context.Context) (TournamentResult[[]tournamentdomain.TeamStanding], error) {
		s.mu.Lock()
		t := s.state.tournament
		var id uuid.UUID
		if t != nil {
			id = t.ID
		}
		s.mu.Unlock()

		if t == nil {
			return noActiveTournament[[]tournamentdomain.TeamStanding]("GetStandings"), nil
		}
		standings, err := s.computeStandings(ctx, id)
		if err != nil {
			return TournamentResult[[]tournamentdomain.TeamStanding]{}, err
		}
		return success(standings), nil
	})
}

// GetStatus returns a consistent snapshot of the active tournament.
func (s *TournamentService) GetStatus(ctx context.Context) (TournamentResult[tournamentdomain.TournamentSnapshot], error) {
	return withTelemetry(s, ctx, "GetStatus", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentdomain.TournamentSnapshot], error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.state.tournament == nil {
			return noActiveTournament[tournamentdomain.TournamentSnapshot]("GetStatus"), nil
		}
		return success(s.state.tournament.Snapshot()), nil
	})
}

// FindTeamByChannel maps one of a team's provisioned channels back to the team.
func (s *TournamentService) FindTeamByChannel(ctx context.Context, channelID string) (TournamentResult[tournamentdomain.Team], error) {
	return withTelemetry(s, ctx, "FindTeamByChannel", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentdomain.Team], error) {
		const op = "FindTeamByChannel"

		s.mu.Lock()
		defer s.mu.Unlock()

		t := s.state.tournament
		if t == nil {
			return noActiveTournament[tournamentdomain.Team](op), nil
		}
		team := t.Roster().FindTeamByChannel(channelID)
		if team == nil {
			return failure[tournamentdomain.Team](op, tournamentdomain.KindTeamNotFound,
				"no team owns channel %s", channelID), nil
		}
		return success(team.Clone()), nil
	})
}

// resolveTeam finds a team by name, or by channel when no name is given.
func resolveTeam(t *tournamentdomain.Tournament, name, channelID string) (*tournamentdomain.Team, error) {
	if strings.TrimSpace(name) != "" {
		if team := t.Roster().FindTeamByName(name); team != nil {
			return team, nil
		}
		return nil, tournamentdomain.NewError(tournamentdomain.KindTeamNotFound, "team %q not found", strings.TrimSpace(name))
	}
	if channelID != "" {
		if team := t.Roster().FindTeamByChannel(channelID); team != nil {
			return team, nil
		}
		return nil, tournamentdomain.NewError(tournamentdomain.KindTeamNotFound, "no team owns channel %s", channelID)
	}
	return nil, tournamentdomain.NewError(tournamentdomain.KindTeamNotFound, "a team name or team channel is required")
}
