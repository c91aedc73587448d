package tournamentevents

import (
	"time"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	"github.com/google/uuid"
)

// FailurePayloadV1 is the body of every *.failed.v1 topic.
type FailurePayloadV1 struct {
	Operation    string                `json:"operation"`
	Kind         tournamentdomain.Kind `json:"kind"`
	Reason       string                `json:"reason"`
	ExistingTeam string                `json:"existing_team,omitempty"`
}

// Error lets a failure payload travel as an error where that is more convenient.
func (f *FailurePayloadV1) Error() string { return f.Reason }

// -- lifecycle --

type CreateRequestedPayloadV1 struct {
	Name        string                       `json:"name"`
	MaxTeams    int                          `json:"max_teams"`
	TeamSize    int                          `json:"team_size"`
	Format      string                       `json:"format"`
	Game        string                       `json:"game,omitempty"`
	ScoringMode tournamentdomain.ScoringMode `json:"scoring_mode,omitempty"`
	RequestedBy string                       `json:"requested_by"`
}

type CreatedPayloadV1 struct {
	Tournament tournamentdomain.TournamentSnapshot `json:"tournament"`
}

// StartRequestedPayloadV1 optionally pins the tournament it was issued for.
// Scheduled starts set it so a start queued before a reset does nothing.
type StartRequestedPayloadV1 struct {
	TournamentID *uuid.UUID `json:"tournament_id,omitempty"`
	RequestedBy  string     `json:"requested_by"`
}

type StartedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Name         string    `json:"name"`
	StartedAt    time.Time `json:"started_at"`
	TeamCount    int       `json:"team_count"`
}

type FinishRequestedPayloadV1 struct {
	RequestedBy string `json:"requested_by"`
}

type FinishedPayloadV1 struct {
	TournamentID uuid.UUID                       `json:"tournament_id"`
	Name         string                          `json:"name"`
	FinishedAt   time.Time                       `json:"finished_at"`
	Standings    []tournamentdomain.TeamStanding `json:"standings"`
}

type ResetRequestedPayloadV1 struct {
	RequestedBy string `json:"requested_by"`
}

type ResetPayloadV1 struct {
	TournamentID *uuid.UUID `json:"tournament_id,omitempty"`
	Name         string     `json:"name,omitempty"`
	// HadTournament is false when the reset was a no-op.
	HadTournament bool `json:"had_tournament"`
	// TeardownFailures lists the collaborators whose teardown failed.
	TeardownFailures []string `json:"teardown_failures,omitempty"`
}

// -- roster --

type TeamRegisterRequestedPayloadV1 struct {
	Name        string `json:"name"`
	Tag         string `json:"tag,omitempty"`
	RequestedBy string `json:"requested_by"`
}

type TeamRegisteredPayloadV1 struct {
	TournamentID uuid.UUID             `json:"tournament_id"`
	Team         tournamentdomain.Team `json:"team"`
	TeamCount    int                   `json:"team_count"`
	MaxTeams     int                   `json:"max_teams"`
}

type TeamJoinRequestedPayloadV1 struct {
	TeamID      uuid.UUID `json:"team_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
}

type TeamJoinedPayloadV1 struct {
	TournamentID uuid.UUID             `json:"tournament_id"`
	Team         tournamentdomain.Team `json:"team"`
	UserID       string                `json:"user_id"`
	Activated    bool                  `json:"activated"`
	IsFull       bool                  `json:"is_full"`
}

// TeamActivatedPayloadV1 asks the front-end to create the team's channels and role.
// Published exactly once per team.
type TeamActivatedPayloadV1 struct {
	TournamentID   uuid.UUID `json:"tournament_id"`
	TournamentName string    `json:"tournament_name"`
	TeamID         uuid.UUID `json:"team_id"`
	TeamName       string    `json:"team_name"`
	Tag            string    `json:"tag,omitempty"`
	FirstMemberID  string    `json:"first_member_id"`
}

// TeamProvisionedPayloadV1 reports the ids the front-end created for a team.
type TeamProvisionedPayloadV1 struct {
	TeamID         uuid.UUID `json:"team_id"`
	CategoryID     string    `json:"category_id"`
	TextChannelID  string    `json:"text_channel_id"`
	VoiceChannelID string    `json:"voice_channel_id"`
	RoleID         string    `json:"role_id"`
}

type ProvisioningRecordedPayloadV1 struct {
	TournamentID   uuid.UUID                           `json:"tournament_id"`
	TeamID         uuid.UUID                           `json:"team_id"`
	TeamName       string                              `json:"team_name"`
	Infrastructure tournamentdomain.TeamInfrastructure `json:"infrastructure"`
}

// TeardownRequestedPayloadV1 asks the front-end to delete everything it created.
type TeardownRequestedPayloadV1 struct {
	TournamentID   uuid.UUID      `json:"tournament_id"`
	TournamentName string         `json:"tournament_name"`
	Teams          []TeamTeardown `json:"teams"`
}

type TeamTeardown struct {
	TeamID         uuid.UUID                            `json:"team_id"`
	TeamName       string                               `json:"team_name"`
	Infrastructure *tournamentdomain.TeamInfrastructure `json:"infrastructure,omitempty"`
}

// -- results --

// ResultSubmitRequestedPayloadV1 names the team directly or by one of its channels.
type ResultSubmitRequestedPayloadV1 struct {
	TeamName    string `json:"team_name,omitempty"`
	ChannelID   string `json:"channel_id,omitempty"`
	Position    int    `json:"position"`
	Kills       int    `json:"kills"`
	SubmittedBy string `json:"submitted_by"`
	SubmitterID string `json:"submitter_id"`
}

type ResultSubmittedPayloadV1 struct {
	Result    tournamentdomain.MatchResult    `json:"result"`
	Breakdown string                          `json:"breakdown"`
	Standings []tournamentdomain.TeamStanding `json:"standings"`
}

type LeaderboardUpdatedPayloadV1 struct {
	TournamentID uuid.UUID                       `json:"tournament_id"`
	Standings    []tournamentdomain.TeamStanding `json:"standings"`
	UpdatedAt    time.Time                       `json:"updated_at"`
}

type ResultAnalysisRequestedPayloadV1 struct {
	TeamName    string   `json:"team_name,omitempty"`
	ChannelID   string   `json:"channel_id,omitempty"`
	ImageURLs   []string `json:"image_urls"`
	SubmittedBy string   `json:"submitted_by"`
	SubmitterID string   `json:"submitter_id"`
}

// AnalysisProposedPayloadV1 is shown to a human for confirm, edit or cancel.
// Nothing is recorded until it is resolved.
type AnalysisProposedPayloadV1 struct {
	PendingID  uuid.UUID                      `json:"pending_id"`
	TeamName   string                         `json:"team_name"`
	Position   *int                           `json:"position,omitempty"`
	Kills      int                            `json:"kills"`
	Players    []tournamentdomain.PlayerKills `json:"players"`
	Confidence tournamentdomain.Confidence    `json:"confidence"`
	// Preview is the score the proposal would earn, when the position is known and in range.
	Preview   *int      `json:"preview,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PendingAction string

const (
	PendingActionConfirm PendingAction = "confirm"
	PendingActionEdit    PendingAction = "edit"
	PendingActionCancel  PendingAction = "cancel"
)

type PendingResolveRequestedPayloadV1 struct {
	PendingID  uuid.UUID     `json:"pending_id"`
	Action     PendingAction `json:"action"`
	Position   *int          `json:"position,omitempty"`
	Kills      *int          `json:"kills,omitempty"`
	ResolvedBy string        `json:"resolved_by"`
	ResolverID string        `json:"resolver_id"`
}

type PendingResolvedPayloadV1 struct {
	PendingID uuid.UUID                     `json:"pending_id"`
	Action    PendingAction                 `json:"action"`
	Result    *tournamentdomain.MatchResult `json:"result,omitempty"`
}

// -- scheduling and lobby --

type StartScheduleRequestedPayloadV1 struct {
	When        string `json:"when"`
	Timezone    string `json:"timezone,omitempty"`
	RequestedBy string `json:"requested_by"`
}

type StartScheduledPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	StartAt      time.Time `json:"start_at"`
	JobID        int64     `json:"job_id"`
}

type LobbyCodeRequestedPayloadV1 struct {
	MatchNumber int    `json:"match_number"`
	Code        string `json:"code"`
	RequestedBy string `json:"requested_by"`
}

type LobbyCodeBroadcastPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	MatchNumber  int       `json:"match_number"`
	Code         string    `json:"code"`
	ChannelIDs   []string  `json:"channel_ids"`
	TeamNames    []string  `json:"team_names"`
}
