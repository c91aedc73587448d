package tournamentservice

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	"github.com/axi1912/Easy-Customs/app/observability"
)

// CreateTournament opens registration for a new tournament. Only one may exist at a time.
func (s *TournamentService) CreateTournament(ctx context.Context, payload tournamentevents.CreateRequestedPayloadV1) (TournamentResult[tournamentdomain.TournamentSnapshot], error) {
	return withTelemetry(s, ctx, "CreateTournament", "new", func(ctx context.Context) (TournamentResult[tournamentdomain.TournamentSnapshot], error) {
		return s.createTournamentLogic(ctx, payload)
	})
}

func (s *TournamentService) createTournamentLogic(ctx context.Context, payload tournamentevents.CreateRequestedPayloadV1) (TournamentResult[tournamentdomain.TournamentSnapshot], error) {
	const op = "CreateTournament"

	mode := payload.ScoringMode
	if mode == "" {
		mode = s.opts.DefaultScoringMode
	}
	game := payload.Game
	if game == "" {
		game = s.opts.DefaultGame
	}
	cfg := tournamentdomain.Config{
		Name:        payload.Name,
		MaxTeams:    payload.MaxTeams,
		TeamSize:    payload.TeamSize,
		Format:      payload.Format,
		Game:        game,
		ScoringMode: mode,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.state.tournament; existing != nil {
		return failure[tournamentdomain.TournamentSnapshot](op, tournamentdomain.KindTournamentAlreadyExists,
			"tournament %q already exists; reset it first", existing.Name), nil
	}
	if s.state.resetting {
		return failure[tournamentdomain.TournamentSnapshot](op, tournamentdomain.KindInvalidStateTransition,
			"the previous tournament is still being torn down; try again shortly"), nil
	}

	t, err := tournamentdomain.NewTournament(uuid.New(), cfg, s.opts.Limits, payload.RequestedBy, s.now())
	if err != nil {
		return reject[tournamentdomain.TournamentSnapshot](op, err)
	}
	s.state.tournament = t
	s.recordRosterSize(ctx, 0, 0)

	return success(t.Snapshot()), nil
}

// StartTournament closes registration. When payload pins a tournament id and
// that tournament is gone, the request is rejected as NoActiveTournament.
func (s *TournamentService) StartTournament(ctx context.Context, payload tournamentevents.StartRequestedPayloadV1) (TournamentResult[tournamentevents.StartedPayloadV1], error) {
	return withTelemetry(s, ctx, "StartTournament", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentevents.StartedPayloadV1], error) {
		const op = "StartTournament"

		s.mu.Lock()
		defer s.mu.Unlock()

		t := s.state.tournament
		if t == nil {
			return noActiveTournament[tournamentevents.StartedPayloadV1](op), nil
		}
		if payload.TournamentID != nil && *payload.TournamentID != t.ID {
			return failure[tournamentevents.StartedPayloadV1](op, tournamentdomain.KindNoActiveTournament,
				"tournament %s is no longer active", payload.TournamentID), nil
		}
		if err := t.Start(s.now()); err != nil {
			return reject[tournamentevents.StartedPayloadV1](op, err)
		}

		return success(tournamentevents.StartedPayloadV1{
			TournamentID: t.ID,
			Name:         t.Name,
			StartedAt:    *t.StartedAt,
			TeamCount:    t.Roster().ActiveTeamCount(),
		}), nil
	})
}

// FinishTournament ends scoring and reports final standings.
func (s *TournamentService) FinishTournament(ctx context.Context, payload tournamentevents.FinishRequestedPayloadV1) (TournamentResult[tournamentevents.FinishedPayloadV1], error) {
	return withTelemetry(s, ctx, "FinishTournament", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentevents.FinishedPayloadV1], error) {
		const op = "FinishTournament"

		s.mu.Lock()
		t := s.state.tournament
		if t == nil {
			s.mu.Unlock()
			return noActiveTournament[tournamentevents.FinishedPayloadV1](op), nil
		}
		if err := t.Finish(s.now()); err != nil {
			s.mu.Unlock()
			return reject[tournamentevents.FinishedPayloadV1](op, err)
		}
		finished := tournamentevents.FinishedPayloadV1{
			TournamentID: t.ID,
			Name:         t.Name,
			FinishedAt:   *t.FinishedAt,
		}
		s.mu.Unlock()

		standings, err := s.refreshStandings(ctx, op, finished.TournamentID)
		if err != nil {
			s.collaboratorFailed(ctx, collaboratorStore, op, err)
		}
		finished.Standings = standings
		return success(finished), nil
	})
}

// ResetTournament discards the active tournament and asks every collaborator
// to tear down what it holds for it. In-memory state is always cleared, even
// when teardown fails.
func (s *TournamentService) ResetTournament(ctx context.Context, payload tournamentevents.ResetRequestedPayloadV1) (TournamentResult[tournamentevents.ResetPayloadV1], error) {
	return withTelemetry(s, ctx, "ResetTournament", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentevents.ResetPayloadV1], error) {
		s.mu.Lock()
		old := s.state.tournament
		s.state.tournament = nil
		s.state.pending = make(map[uuid.UUID]tournamentdomain.PendingResult)
		if old != nil {
			s.state.resetting = true
		}
		s.mu.Unlock()

		if old == nil {
			return success(tournamentevents.ResetPayloadV1{HadTournament: false}), nil
		}
		defer s.finishReset()

		s.recordRosterSize(ctx, 0, 0)
		s.logger.InfoContext(ctx, "Tournament discarded, tearing down",
			observability.CorrelationAttr(ctx),
			slog.String("tournament_id", old.ID.String()),
			slog.String("requested_by", payload.RequestedBy),
		)

		id := old.ID
		return success(tournamentevents.ResetPayloadV1{
			TournamentID:     &id,
			Name:             old.Name,
			HadTournament:    true,
			TeardownFailures: s.teardown(ctx, old),
		}), nil
	})
}

// finishReset lets CreateTournament proceed once teardown has returned.
func (s *TournamentService) finishReset() {
	s.mu.Lock()
	s.state.resetting = false
	s.mu.Unlock()
}

// teardown runs every collaborator cleanup and returns the names of those that failed.
// old is no longer reachable from the service state, so reading it needs no lock.
func (s *TournamentService) teardown(ctx context.Context, old *tournamentdomain.Tournament) []string {
	const op = "ResetTournament"
	var failed []string

	teams := old.Roster().Teams()
	req := tournamentevents.TeardownRequestedPayloadV1{
		TournamentID:   old.ID,
		TournamentName: old.Name,
		Teams:          make([]tournamentevents.TeamTeardown, 0, len(teams)),
	}
	for _, team := range teams {
		tt := tournamentevents.TeamTeardown{TeamID: team.ID, TeamName: team.Name}
		if team.Infrastructure != nil {
			infra := *team.Infrastructure
			tt.Infrastructure = &infra
		}
		req.Teams = append(req.Teams, tt)
	}

	if n := s.collaborators.Notifier; n != nil {
		if err := n.TournamentReset(ctx, req); err != nil {
			s.collaboratorFailed(ctx, collaboratorProvisioning, op, err)
			failed = append(failed, collaboratorProvisioning)
		}
	}
	if st := s.collaborators.Store; st != nil {
		if err := st.ClearAll(ctx, old.ID); err != nil {
			s.collaboratorFailed(ctx, collaboratorStore, op, err)
			failed = append(failed, collaboratorStore)
		}
	}
	if m := s.collaborators.Mirror; m != nil {
		if err := m.Clear(ctx); err != nil {
			s.collaboratorFailed(ctx, collaboratorMirror, op, err)
			failed = append(failed, collaboratorMirror)
		}
	}
	if sc := s.collaborators.Scheduler; sc != nil {
		if err := sc.CancelStarts(ctx, old.ID); err != nil {
			s.collaboratorFailed(ctx, collaboratorScheduler, op, err)
			failed = append(failed, collaboratorScheduler)
		}
	}
	return failed
}
