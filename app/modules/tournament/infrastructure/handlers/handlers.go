package tournamenthandlers

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	tournamentservice "github.com/axi1912/Easy-Customs/app/modules/tournament/application"
	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	"github.com/axi1912/Easy-Customs/app/shared/handlerwrapper"
)

// TournamentHandlers implements the Handlers interface.
type TournamentHandlers struct {
	service tournamentservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewTournamentHandlers creates a new TournamentHandlers instance.
func NewTournamentHandlers(
	service tournamentservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &TournamentHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// reply turns an operation result into the outgoing event. Infrastructure
// errors are returned so the router retries the message.
func reply[S any](
	ctx context.Context,
	h *TournamentHandlers,
	res tournamentservice.TournamentResult[S],
	err error,
	successTopic, failureTopic string,
	toPayload func(S) any,
) ([]handlerwrapper.Result, error) {
	if err != nil {
		return nil, err
	}
	if res.IsFailure() {
		failure := *res.Failure
		h.logger.InfoContext(ctx, "Request rejected",
			slog.String("operation", failure.Operation),
			slog.String("kind", string(failure.Kind)),
			slog.String("reason", failure.Reason),
		)
		return []handlerwrapper.Result{{Topic: failureTopic, Payload: failure}}, nil
	}
	if res.Success == nil {
		return nil, nil
	}
	return []handlerwrapper.Result{{Topic: successTopic, Payload: toPayload(*res.Success)}}, nil
}

func same[S any](s S) any { return s }

func (h *TournamentHandlers) HandleCreateRequested(ctx context.Context, payload *tournamentevents.CreateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleCreateRequested")
	defer span.End()

	res, err := h.service.CreateTournament(ctx, *payload)
	return reply(ctx, h, res, err, tournamentevents.CreatedV1, tournamentevents.CreateFailedV1,
		func(s tournamentdomain.TournamentSnapshot) any {
			return tournamentevents.CreatedPayloadV1{Tournament: s}
		})
}

func (h *TournamentHandlers) HandleStartRequested(ctx context.Context, payload *tournamentevents.StartRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleStartRequested")
	defer span.End()

	res, err := h.service.StartTournament(ctx, *payload)
	return reply(ctx, h, res, err, tournamentevents.StartedV1, tournamentevents.StartFailedV1, same[tournamentevents.StartedPayloadV1])
}

func (h *TournamentHandlers) HandleFinishRequested(ctx context.Context, payload *tournamentevents.FinishRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleFinishRequested")
	defer span.End()

	res, err := h.service.FinishTournament(ctx, *payload)
	return reply(ctx, h, res, err, tournamentevents.FinishedV1, tournamentevents.FinishFailedV1, same[tournamentevents.FinishedPayloadV1])
}

func (h *TournamentHandlers) HandleResetRequested(ctx context.Context, payload *tournamentevents.ResetRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleResetRequested")
	defer span.End()

	res, err := h.service.ResetTournament(ctx, *payload)
	if err == nil && res.IsSuccess() && len(res.Success.TeardownFailures) > 0 {
		h.logger.WarnContext(ctx, "Tournament reset with teardown failures",
			slog.Any("collaborators", res.Success.TeardownFailures),
		)
	}
	return reply(ctx, h, res, err, tournamentevents.ResetV1, tournamentevents.ResetFailedV1, same[tournamentevents.ResetPayloadV1])
}

func (h *TournamentHandlers) HandleTeamRegisterRequested(ctx context.Context, payload *tournamentevents.TeamRegisterRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleTeamRegisterRequested")
	defer span.End()

	res, err := h.service.RegisterTeam(ctx, *payload)
	return reply(ctx, h, res, err, tournamentevents.TeamRegisteredV1, tournamentevents.TeamRegisterFailedV1, same[tournamentevents.TeamRegisteredPayloadV1])
}

func (h *TournamentHandlers) HandleTeamJoinRequested(ctx context.Context, payload *tournamentevents.TeamJoinRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleTeamJoinRequested")
	defer span.End()

	res, err := h.service.JoinTeam(ctx, *payload)
	return reply(ctx, h, res, err, tournamentevents.TeamJoinedV1, tournamentevents.TeamJoinFailedV1, same[tournamentevents.TeamJoinedPayloadV1])
}

func (h *TournamentHandlers) HandleTeamProvisioned(ctx context.Context, payload *tournamentevents.TeamProvisionedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleTeamProvisioned")
	defer span.End()

	res, err := h.service.RecordProvisioning(ctx, *payload)
	return reply(ctx, h, res, err, tournamentevents.ProvisioningRecordedV1, tournamentevents.TeamProvisionedFailedV1, same[tournamentevents.ProvisioningRecordedPayloadV1])
}

func (h *TournamentHandlers) HandleResultSubmitRequested(ctx context.Context, payload *tournamentevents.ResultSubmitRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleResultSubmitRequested")
	defer span.End()

	res, err := h.service.SubmitResult(ctx, *payload)
	return reply(ctx, h, res, err, tournamentevents.ResultSubmittedV1, tournamentevents.ResultSubmitFailedV1, same[tournamentevents.ResultSubmittedPayloadV1])
}

func (h *TournamentHandlers) HandleResultAnalysisRequested(ctx context.Context, payload *tournamentevents.ResultAnalysisRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleResultAnalysisRequested")
	defer span.End()

	res, err := h.service.AnalyzeResult(ctx, *payload)
	return reply(ctx, h, res, err, tournamentevents.AnalysisProposedV1, tournamentevents.ResultAnalysisFailedV1, same[tournamentevents.AnalysisProposedPayloadV1])
}

func (h *TournamentHandlers) HandlePendingResolveRequested(ctx context.Context, payload *tournamentevents.PendingResolveRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandlePendingResolveRequested")
	defer span.End()

	res, err := h.service.ResolvePendingResult(ctx, *payload)
	out, err := reply(ctx, h, res, err, tournamentevents.PendingResolvedV1, tournamentevents.PendingResolveFailedV1,
		func(r tournamentservice.PendingResolution) any { return r.Resolved })
	if err != nil || !res.IsSuccess() || res.Success.Submitted == nil {
		return out, err
	}
	return append(out, handlerwrapper.Result{
		Topic:   tournamentevents.ResultSubmittedV1,
		Payload: *res.Success.Submitted,
	}), nil
}

func (h *TournamentHandlers) HandleStartScheduleRequested(ctx context.Context, payload *tournamentevents.StartScheduleRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleStartScheduleRequested")
	defer span.End()

	res, err := h.service.ScheduleStart(ctx, *payload)
	return reply(ctx, h, res, err, tournamentevents.StartScheduledV1, tournamentevents.StartScheduleFailedV1, same[tournamentevents.StartScheduledPayloadV1])
}

func (h *TournamentHandlers) HandleLobbyCodeRequested(ctx context.Context, payload *tournamentevents.LobbyCodeRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "TournamentHandlers.HandleLobbyCodeRequested")
	defer span.End()

	res, err := h.service.BroadcastLobbyCode(ctx, *payload)
	return reply(ctx, h, res, err, tournamentevents.LobbyCodeBroadcastV1, tournamentevents.LobbyCodeFailedV1, same[tournamentevents.LobbyCodeBroadcastPayloadV1])
}
