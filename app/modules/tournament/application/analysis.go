package tournamentservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
)

// AnalyzeResult runs image analysis on scoreboard screenshots and parks the
// extracted values as a pending result. Nothing is recorded until a human
// resolves it, whatever the analyzer's confidence.
func (s *TournamentService) AnalyzeResult(ctx context.Context, payload tournamentevents.ResultAnalysisRequestedPayloadV1) (TournamentResult[tournamentevents.AnalysisProposedPayloadV1], error) {
	return withTelemetry(s, ctx, "AnalyzeResult", s.currentID(), func(ctx context.Context) (TournamentResult[tournamentevents.AnalysisProposedPayloadV1], error) {
		const op = "AnalyzeResult"

		if len(payload.ImageURLs) == 0 {
			return failure[tournamentevents.AnalysisProposedPayloadV1](op, tournamentdomain.KindInvalidScoreInput,
				"at least one screenshot is required"), nil
		}

		s.mu.Lock()
		t := s.state.tournament
		if t == nil {
			s.mu.Unlock()
			return noActiveTournament[tournamentevents.AnalysisProposedPayloadV1](op), nil
		}
		if err := t.AcceptsResults(); err != nil {
			s.mu.Unlock()
			return reject[tournamentevents.AnalysisProposedPayloadV1](op, err)
		}
		team, err := resolveTeam(t, payload.TeamName, payload.ChannelID)
		if err != nil {
			s.mu.Unlock()
			return reject[tournamentevents.AnalysisProposedPayloadV1](op, err)
		}
		tournamentID, teamName, strategy := t.ID, team.Name, t.Strategy()
		s.mu.Unlock()

		if s.collaborators.Analyzer == nil {
			return failure[tournamentevents.AnalysisProposedPayloadV1](op, tournamentdomain.KindExternalCollaboratorFailure,
				"image analysis is not configured"), nil
		}
		analysis, err := s.collaborators.Analyzer.Analyze(ctx, payload.ImageURLs)
		if err != nil {
			s.collaboratorFailed(ctx, collaboratorAnalysis, op, err)
			return failure[tournamentevents.AnalysisProposedPayloadV1](op, tournamentdomain.KindExternalCollaboratorFailure,
				"image analysis failed: %v", err), nil
		}

		now := s.now()
		pending := tournamentdomain.PendingResult{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			TeamName:     teamName,
			Analysis:     analysis,
			SubmittedBy:  payload.SubmittedBy,
			SubmitterID:  payload.SubmitterID,
			CreatedAt:    now,
			ExpiresAt:    now.Add(s.opts.PendingTTL),
		}

		s.mu.Lock()
		if s.state.tournament == nil || s.state.tournament.ID != tournamentID {
			s.mu.Unlock()
			return failure[tournamentevents.AnalysisProposedPayloadV1](op, tournamentdomain.KindNoActiveTournament,
				"the tournament was reset while the screenshot was analyzed"), nil
		}
		s.purgeExpiredLocked(now)
		s.state.pending[pending.ID] = pending
		s.mu.Unlock()

		proposed := tournamentevents.AnalysisProposedPayloadV1{
			PendingID:  pending.ID,
			TeamName:   teamName,
			Position:   analysis.Position,
			Kills:      analysis.TotalKills,
			Players:    analysis.Players,
			Confidence: analysis.Confidence,
			ExpiresAt:  pending.ExpiresAt,
		}
		if analysis.Position != nil {
			if b, err := strategy.Score(*analysis.Position, analysis.TotalKills); err == nil {
				preview := b.FinalScore
				proposed.Preview = &preview
			}
		}
		return success(proposed), nil
	})
}

// ResolvePendingResult confirms, edits or cancels a pending analyzed result.
// A rejected confirm or edit leaves the pending result in place so it can be corrected.
func (s *TournamentService) ResolvePendingResult(ctx context.Context, payload tournamentevents.PendingResolveRequestedPayloadV1) (TournamentResult[PendingResolution], error) {
	return withTelemetry(s, ctx, "ResolvePendingResult", s.currentID(), func(ctx context.Context) (TournamentResult[PendingResolution], error) {
		const op = "ResolvePendingResult"

		s.mu.Lock()
		s.purgeExpiredLocked(s.now())
		pending, ok := s.state.pending[payload.PendingID]
		if !ok {
			s.mu.Unlock()
			return failure[PendingResolution](op, tournamentdomain.KindPendingResultNotFound,
				"pending result %s not found or expired", payload.PendingID), nil
		}

		position := pending.Analysis.Position
		kills := pending.Analysis.TotalKills
		switch payload.Action {
		case tournamentevents.PendingActionCancel:
			delete(s.state.pending, pending.ID)
			s.mu.Unlock()
			return success(PendingResolution{
				Resolved: tournamentevents.PendingResolvedPayloadV1{PendingID: pending.ID, Action: payload.Action},
			}), nil
		case tournamentevents.PendingActionConfirm:
		case tournamentevents.PendingActionEdit:
			if payload.Position != nil {
				position = payload.Position
			}
			if payload.Kills != nil {
				kills = *payload.Kills
			}
		default:
			s.mu.Unlock()
			return failure[PendingResolution](op, tournamentdomain.KindInvalidConfiguration,
				"unknown action %q; use confirm, edit or cancel", payload.Action), nil
		}

		if position == nil {
			s.mu.Unlock()
			return failure[PendingResolution](op, tournamentdomain.KindInvalidScoreInput,
				"the position was not detected; edit the result to set it"), nil
		}
		if err := tournamentdomain.ValidateScoreInput(*position, kills); err != nil {
			s.mu.Unlock()
			return reject[PendingResolution](op, err)
		}
		// Claim it so a concurrent confirm cannot record it twice.
		delete(s.state.pending, pending.ID)
		s.mu.Unlock()

		submittedBy, submitterID := pending.SubmittedBy, pending.SubmitterID
		if payload.ResolvedBy != "" {
			submittedBy, submitterID = payload.ResolvedBy, payload.ResolverID
		}
		submitted, err := s.submitLogic(ctx, op, submission{
			TeamName:    pending.TeamName,
			Position:    *position,
			Kills:       kills,
			SubmittedBy: submittedBy,
			SubmitterID: submitterID,
		})
		if err != nil {
			s.restorePending(pending)
			return TournamentResult[PendingResolution]{}, err
		}
		if submitted.IsFailure() {
			if (*submitted.Failure).Kind == tournamentdomain.KindExternalCollaboratorFailure {
				s.restorePending(pending)
			}
			return TournamentResult[PendingResolution]{Failure: submitted.Failure}, nil
		}

		result := submitted.Success.Result
		return success(PendingResolution{
			Resolved: tournamentevents.PendingResolvedPayloadV1{
				PendingID: pending.ID,
				Action:    payload.Action,
				Result:    &result,
			},
			Submitted: submitted.Success,
		}), nil
	})
}

// restorePending puts a claimed pending result back when recording it failed
// for a reason the user can retry.
func (s *TournamentService) restorePending(p tournamentdomain.PendingResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.tournament != nil && s.state.tournament.ID == p.TournamentID {
		s.state.pending[p.ID] = p
	}
}

func (s *TournamentService) purgeExpiredLocked(now time.Time) {
	for id, p := range s.state.pending {
		if p.Expired(now) {
			delete(s.state.pending, id)
		}
	}
}
