package tournamenthandlers

import (
	"context"

	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	"github.com/axi1912/Easy-Customs/app/shared/handlerwrapper"
)

// Handlers defines the interface for tournament event handlers.
// Each handler replies on the success topic of its request or on the matching failure topic.
type Handlers interface {
	HandleCreateRequested(ctx context.Context, payload *tournamentevents.CreateRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleStartRequested(ctx context.Context, payload *tournamentevents.StartRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleFinishRequested(ctx context.Context, payload *tournamentevents.FinishRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleResetRequested(ctx context.Context, payload *tournamentevents.ResetRequestedPayloadV1) ([]handlerwrapper.Result, error)

	HandleTeamRegisterRequested(ctx context.Context, payload *tournamentevents.TeamRegisterRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleTeamJoinRequested(ctx context.Context, payload *tournamentevents.TeamJoinRequestedPayloadV1) ([]handlerwrapper.Result, error)
	// HandleTeamProvisioned records the channels the front-end created for a team.
	HandleTeamProvisioned(ctx context.Context, payload *tournamentevents.TeamProvisionedPayloadV1) ([]handlerwrapper.Result, error)

	HandleResultSubmitRequested(ctx context.Context, payload *tournamentevents.ResultSubmitRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleResultAnalysisRequested(ctx context.Context, payload *tournamentevents.ResultAnalysisRequestedPayloadV1) ([]handlerwrapper.Result, error)
	// HandlePendingResolveRequested also publishes result.submitted when a result was recorded.
	HandlePendingResolveRequested(ctx context.Context, payload *tournamentevents.PendingResolveRequestedPayloadV1) ([]handlerwrapper.Result, error)

	HandleStartScheduleRequested(ctx context.Context, payload *tournamentevents.StartScheduleRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleLobbyCodeRequested(ctx context.Context, payload *tournamentevents.LobbyCodeRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
