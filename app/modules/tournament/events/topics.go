package tournamentevents

// Inbound requests published by the chat front-end.
const (
	CreateRequestedV1         = "tournament.create.requested.v1"
	StartRequestedV1          = "tournament.start.requested.v1"
	FinishRequestedV1         = "tournament.finish.requested.v1"
	ResetRequestedV1          = "tournament.reset.requested.v1"
	TeamRegisterRequestedV1   = "tournament.team.register.requested.v1"
	TeamJoinRequestedV1       = "tournament.team.join.requested.v1"
	TeamProvisionedV1         = "tournament.team.provisioned.v1"
	ResultSubmitRequestedV1   = "tournament.result.submit.requested.v1"
	ResultAnalysisRequestedV1 = "tournament.result.analysis.requested.v1"
	PendingResolveRequestedV1 = "tournament.result.pending.resolve.requested.v1"
	StartScheduleRequestedV1  = "tournament.start.schedule.requested.v1"
	LobbyCodeRequestedV1      = "tournament.lobby.code.requested.v1"
)

// Successful outcomes.
const (
	CreatedV1              = "tournament.created.v1"
	StartedV1              = "tournament.started.v1"
	FinishedV1             = "tournament.finished.v1"
	ResetV1                = "tournament.reset.v1"
	TeamRegisteredV1       = "tournament.team.registered.v1"
	TeamJoinedV1           = "tournament.team.joined.v1"
	ProvisioningRecordedV1 = "tournament.team.provisioning.recorded.v1"
	ResultSubmittedV1      = "tournament.result.submitted.v1"
	AnalysisProposedV1     = "tournament.result.analysis.proposed.v1"
	PendingResolvedV1      = "tournament.result.pending.resolved.v1"
	StartScheduledV1       = "tournament.start.scheduled.v1"
	LobbyCodeBroadcastV1   = "tournament.lobby.code.broadcast.v1"
)

// Rejections, one per request. All carry FailurePayloadV1.
const (
	CreateFailedV1          = "tournament.create.failed.v1"
	StartFailedV1           = "tournament.start.failed.v1"
	FinishFailedV1          = "tournament.finish.failed.v1"
	ResetFailedV1           = "tournament.reset.failed.v1"
	TeamRegisterFailedV1    = "tournament.team.register.failed.v1"
	TeamJoinFailedV1        = "tournament.team.join.failed.v1"
	TeamProvisionedFailedV1 = "tournament.team.provisioned.failed.v1"
	ResultSubmitFailedV1    = "tournament.result.submit.failed.v1"
	ResultAnalysisFailedV1  = "tournament.result.analysis.failed.v1"
	PendingResolveFailedV1  = "tournament.result.pending.resolve.failed.v1"
	StartScheduleFailedV1   = "tournament.start.schedule.failed.v1"
	LobbyCodeFailedV1       = "tournament.lobby.code.failed.v1"
)

// Notifications for the provisioning side of the front-end and for viewers.
const (
	TeamActivatedV1      = "tournament.team.activated.v1"
	TeardownRequestedV1  = "tournament.teardown.requested.v1"
	LeaderboardUpdatedV1 = "tournament.leaderboard.updated.v1"
)
