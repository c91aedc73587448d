package tournamentdomain

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected tournament operation.
// Front-ends translate kinds into user-facing messages.
type Kind string

const (
	KindInvalidConfiguration        Kind = "INVALID_CONFIGURATION"
	KindTournamentAlreadyExists     Kind = "TOURNAMENT_ALREADY_EXISTS"
	KindNoActiveTournament          Kind = "NO_ACTIVE_TOURNAMENT"
	KindRegistrationClosed          Kind = "REGISTRATION_CLOSED"
	KindTournamentFull              Kind = "TOURNAMENT_FULL"
	KindNotEnoughTeams              Kind = "NOT_ENOUGH_TEAMS"
	KindTournamentFinished          Kind = "TOURNAMENT_FINISHED"
	KindInvalidStateTransition      Kind = "INVALID_STATE_TRANSITION"
	KindDuplicateTeamName           Kind = "DUPLICATE_TEAM_NAME"
	KindInvalidTeamName             Kind = "INVALID_TEAM_NAME"
	KindInvalidTeamTag              Kind = "INVALID_TEAM_TAG"
	KindTeamNotFound                Kind = "TEAM_NOT_FOUND"
	KindTeamFull                    Kind = "TEAM_FULL"
	KindAlreadyRegistered           Kind = "ALREADY_REGISTERED"
	KindInvalidScoreInput           Kind = "INVALID_SCORE_INPUT"
	KindPendingResultNotFound       Kind = "PENDING_RESULT_NOT_FOUND"
	KindSchedulingUnavailable       Kind = "SCHEDULING_UNAVAILABLE"
	KindExternalCollaboratorFailure Kind = "EXTERNAL_COLLABORATOR_FAILURE"
)

// Error is a business rejection carrying its kind and a human-readable reason.
type Error struct {
	Kind    Kind
	Message string
	// ExistingTeam is set for AlreadyRegistered so callers can name the user's current team.
	ExistingTeam string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrTeamFull) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidConfiguration        = &Error{Kind: KindInvalidConfiguration}
	ErrTournamentAlreadyExists     = &Error{Kind: KindTournamentAlreadyExists}
	ErrNoActiveTournament          = &Error{Kind: KindNoActiveTournament}
	ErrRegistrationClosed          = &Error{Kind: KindRegistrationClosed}
	ErrTournamentFull              = &Error{Kind: KindTournamentFull}
	ErrNotEnoughTeams              = &Error{Kind: KindNotEnoughTeams}
	ErrTournamentFinished          = &Error{Kind: KindTournamentFinished}
	ErrInvalidStateTransition      = &Error{Kind: KindInvalidStateTransition}
	ErrDuplicateTeamName           = &Error{Kind: KindDuplicateTeamName}
	ErrInvalidTeamName             = &Error{Kind: KindInvalidTeamName}
	ErrInvalidTeamTag              = &Error{Kind: KindInvalidTeamTag}
	ErrTeamNotFound                = &Error{Kind: KindTeamNotFound}
	ErrTeamFull                    = &Error{Kind: KindTeamFull}
	ErrAlreadyRegistered           = &Error{Kind: KindAlreadyRegistered}
	ErrInvalidScoreInput           = &Error{Kind: KindInvalidScoreInput}
	ErrPendingResultNotFound       = &Error{Kind: KindPendingResultNotFound}
	ErrSchedulingUnavailable       = &Error{Kind: KindSchedulingUnavailable}
	ErrExternalCollaboratorFailure = &Error{Kind: KindExternalCollaboratorFailure}
)

// NewError builds an *Error with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
