package tournamentdomain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Member is a player on exactly one team of the tournament.
type Member struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

// TeamInfrastructure holds the chat-platform ids recorded once a team's channels exist.
type TeamInfrastructure struct {
	CategoryID     string `json:"category_id"`
	TextChannelID  string `json:"text_channel_id"`
	VoiceChannelID string `json:"voice_channel_id"`
	RoleID         string `json:"role_id"`
}

// Team is a named group of members capped at the tournament's team size.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag,omitempty"`
	Members   []Member  `json:"members"`
	Capacity  int       `json:"capacity"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	// Activated flips once, on the first member join, and triggers provisioning.
	Activated      bool                `json:"activated"`
	Infrastructure *TeamInfrastructure `json:"infrastructure,omitempty"`
}

// IsFull reports whether the team has reached its capacity.
func (t *Team) IsFull() bool { return len(t.Members) >= t.Capacity }

// HasMember reports whether userID is on this team.
func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Captain is the first member to have joined, or nil for an empty team.
func (t *Team) Captain() *Member {
	if len(t.Members) == 0 {
		return nil
	}
	m := t.Members[0]
	return &m
}

// Clone returns a deep copy.
func (t *Team) Clone() Team {
	c := *t
	c.Members = append([]Member(nil), t.Members...)
	if t.Infrastructure != nil {
		infra := *t.Infrastructure
		c.Infrastructure = &infra
	}
	return c
}

// Roster is the ordered team list of one tournament. Order is registration order.
type Roster struct {
	maxTeams int
	teamSize int
	teams    []*Team
}

func NewRoster(maxTeams, teamSize int) *Roster {
	return &Roster{maxTeams: maxTeams, teamSize: teamSize}
}

// AddTeam appends an empty team. Names are unique case-insensitively.
func (r *Roster) AddTeam(id uuid.UUID, name, tag, createdBy string, now time.Time) (*Team, error) {
	if existing := r.FindTeamByName(name); existing != nil {
		return nil, NewError(KindDuplicateTeamName, "a team named %q already exists", existing.Name)
	}
	if len(r.teams) >= r.maxTeams {
		return nil, NewError(KindTournamentFull, "tournament is full (%d/%d teams)", len(r.teams), r.maxTeams)
	}
	team := &Team{
		ID:        id,
		Name:      name,
		Tag:       tag,
		Members:   []Member{},
		Capacity:  r.teamSize,
		CreatedBy: createdBy,
		CreatedAt: now.UTC(),
	}
	r.teams = append(r.teams, team)
	return team, nil
}

func (r *Roster) FindTeamByName(name string) *Team {
	name = strings.TrimSpace(name)
	for _, t := range r.teams {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

func (r *Roster) FindTeamByID(id uuid.UUID) *Team {
	for _, t := range r.teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (r *Roster) FindTeamByMember(userID string) *Team {
	for _, t := range r.teams {
		if t.HasMember(userID) {
			return t
		}
	}
	return nil
}

// FindTeamByChannel matches against the channel ids recorded at provisioning.
func (r *Roster) FindTeamByChannel(channelID string) *Team {
	if channelID == "" {
		return nil
	}
	for _, t := range r.teams {
		infra := t.Infrastructure
		if infra == nil {
			continue
		}
		switch channelID {
		case infra.TextChannelID, infra.VoiceChannelID, infra.CategoryID:
			return t
		}
	}
	return nil
}

func (r *Roster) IsUserRegistered(userID string) bool {
	return r.FindTeamByMember(userID) != nil
}

// Teams returns the live team pointers in registration order.
func (r *Roster) Teams() []*Team {
	return append([]*Team(nil), r.teams...)
}

func (r *Roster) Len() int { return len(r.teams) }

// ActiveTeamCount counts teams with at least one member.
func (r *Roster) ActiveTeamCount() int {
	n := 0
	for _, t := range r.teams {
		if len(t.Members) > 0 {
			n++
		}
	}
	return n
}

// Clear drops every team.
func (r *Roster) Clear() {
	r.teams = nil
}
