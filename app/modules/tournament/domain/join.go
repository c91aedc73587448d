package tournamentdomain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Candidate is a player asking to join a team.
type Candidate struct {
	UserID      string
	DisplayName string
}

// JoinOutcome describes a successful join.
type JoinOutcome struct {
	Team Team
	// Activated is true only for the join that took the team from zero to one member.
	Activated bool
}

// JoinTeam runs the join checks in order and appends the member. A nil tournament
// means none is active. Callers must hold the tournament's write lock for the
// whole call so the membership and capacity checks stay atomic with the append.
func JoinTeam(t *Tournament, teamID uuid.UUID, c Candidate, now time.Time) (JoinOutcome, error) {
	if t == nil {
		return JoinOutcome{}, NewError(KindNoActiveTournament, "there is no active tournament")
	}
	if t.Status != StatusRegistration {
		return JoinOutcome{}, NewError(KindRegistrationClosed, "registration for %q is closed", t.Name)
	}

	team := t.roster.FindTeamByID(teamID)
	if team == nil {
		return JoinOutcome{}, NewError(KindTeamNotFound, "team %s does not exist", teamID)
	}

	if current := t.roster.FindTeamByMember(c.UserID); current != nil {
		return JoinOutcome{}, &Error{
			Kind:         KindAlreadyRegistered,
			Message:      "you are already on team " + current.Name,
			ExistingTeam: current.Name,
		}
	}

	if team.IsFull() {
		return JoinOutcome{}, NewError(KindTeamFull, "team %s is full (%d/%d)", team.Name, len(team.Members), team.Capacity)
	}

	name := strings.TrimSpace(c.DisplayName)
	if name == "" {
		name = c.UserID
	}
	team.Members = append(team.Members, Member{UserID: c.UserID, DisplayName: name, JoinedAt: now.UTC()})

	activated := false
	if len(team.Members) == 1 && !team.Activated {
		team.Activated = true
		activated = true
	}

	return JoinOutcome{Team: team.Clone(), Activated: activated}, nil
}
