package tournamentdomain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle phase of a tournament. It only moves forward.
type Status string

const (
	StatusRegistration Status = "registration"
	StatusInProgress   Status = "in-progress"
	StatusFinished     Status = "finished"
)

// DefaultGame is used when a tournament is created without a game label.
const DefaultGame = "warzone"

// MinStartingTeams is the number of teams with at least one member needed to start.
const MinStartingTeams = 2

// Limits bound tournament configuration at creation time.
type Limits struct {
	MinTeams    int
	MaxTeams    int
	MinTeamSize int
	MaxTeamSize int
}

// DefaultLimits mirrors the bounds the chat commands have always offered.
var DefaultLimits = Limits{MinTeams: 4, MaxTeams: 64, MinTeamSize: 1, MaxTeamSize: 10}

// Config is the admin-provided, immutable tournament configuration.
type Config struct {
	Name        string
	MaxTeams    int
	TeamSize    int
	Format      string
	Game        string
	ScoringMode ScoringMode
}

// Tournament is the single active competition and the roster it owns.
// It is not safe for concurrent use; callers serialize access.
type Tournament struct {
	ID          uuid.UUID
	Name        string
	MaxTeams    int
	TeamSize    int
	Format      string
	Game        string
	ScoringMode ScoringMode
	Status      Status
	CreatedBy   string
	CreatedAt   time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time

	roster   *Roster
	strategy ScoringStrategy
}

// NewTournament validates cfg against limits and returns a tournament in registration.
func NewTournament(id uuid.UUID, cfg Config, limits Limits, createdBy string, now time.Time) (*Tournament, error) {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, NewError(KindInvalidConfiguration, "tournament name must not be empty")
	}
	if cfg.MaxTeams < limits.MinTeams || cfg.MaxTeams > limits.MaxTeams {
		return nil, NewError(KindInvalidConfiguration, "max teams must be between %d and %d, got %d", limits.MinTeams, limits.MaxTeams, cfg.MaxTeams)
	}
	if cfg.TeamSize < limits.MinTeamSize || cfg.TeamSize > limits.MaxTeamSize {
		return nil, NewError(KindInvalidConfiguration, "team size must be between %d and %d, got %d", limits.MinTeamSize, limits.MaxTeamSize, cfg.TeamSize)
	}
	strategy, err := StrategyFor(cfg.ScoringMode)
	if err != nil {
		return nil, err
	}

	game := strings.TrimSpace(cfg.Game)
	if game == "" {
		game = DefaultGame
	}

	return &Tournament{
		ID:          id,
		Name:        name,
		MaxTeams:    cfg.MaxTeams,
		TeamSize:    cfg.TeamSize,
		Format:      strings.TrimSpace(cfg.Format),
		Game:        game,
		ScoringMode: strategy.Mode(),
		Status:      StatusRegistration,
		CreatedBy:   createdBy,
		CreatedAt:   now.UTC(),
		roster:      NewRoster(cfg.MaxTeams, cfg.TeamSize),
		strategy:    strategy,
	}, nil
}

// Roster returns the tournament's team roster.
func (t *Tournament) Roster() *Roster { return t.roster }

// Strategy returns the scoring strategy every result of this tournament uses.
func (t *Tournament) Strategy() ScoringStrategy { return t.strategy }

// CanStart reports whether enough teams have members to start.
func (t *Tournament) CanStart() bool {
	return t.Status == StatusRegistration && t.roster.ActiveTeamCount() >= MinStartingTeams
}

// Start moves the tournament from registration to in-progress, closing registration.
func (t *Tournament) Start(now time.Time) error {
	if t.Status != StatusRegistration {
		return NewError(KindInvalidStateTransition, "cannot start a tournament that is %s", t.Status)
	}
	if active := t.roster.ActiveTeamCount(); active < MinStartingTeams {
		return NewError(KindNotEnoughTeams, "at least %d teams with members are needed to start, have %d", MinStartingTeams, active)
	}
	at := now.UTC()
	t.Status = StatusInProgress
	t.StartedAt = &at
	return nil
}

// Finish moves an in-progress tournament to finished.
func (t *Tournament) Finish(now time.Time) error {
	if t.Status != StatusInProgress {
		return NewError(KindInvalidStateTransition, "cannot finish a tournament that is %s", t.Status)
	}
	at := now.UTC()
	t.Status = StatusFinished
	t.FinishedAt = &at
	return nil
}

// RegisterTeam pre-registers an empty team. Only allowed during registration.
func (t *Tournament) RegisterTeam(id uuid.UUID, name, tag, createdBy string, now time.Time) (*Team, error) {
	if t.Status != StatusRegistration {
		return nil, NewError(KindRegistrationClosed, "registration for %q is closed", t.Name)
	}
	return t.roster.AddTeam(id, name, tag, createdBy, now)
}

// AcceptsResults reports whether results can still be recorded.
func (t *Tournament) AcceptsResults() error {
	if t.Status == StatusFinished {
		return NewError(KindTournamentFinished, "tournament %q is finished", t.Name)
	}
	return nil
}

// TournamentSnapshot is a read-only copy safe to hand outside the lock.
type TournamentSnapshot struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	MaxTeams        int         `json:"max_teams"`
	TeamSize        int         `json:"team_size"`
	Format          string      `json:"format"`
	Game            string      `json:"game"`
	ScoringMode     ScoringMode `json:"scoring_mode"`
	Status          Status      `json:"status"`
	CreatedBy       string      `json:"created_by"`
	CreatedAt       time.Time   `json:"created_at"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	FinishedAt      *time.Time  `json:"finished_at,omitempty"`
	Teams           []Team      `json:"teams"`
	TeamCount       int         `json:"team_count"`
	ActiveTeamCount int         `json:"active_team_count"`
	CanStart        bool        `json:"can_start"`
	IsFull          bool        `json:"is_full"`
}

// Snapshot deep-copies the tournament and its roster.
func (t *Tournament) Snapshot() TournamentSnapshot {
	teams := t.roster.Teams()
	out := make([]Team, len(teams))
	for i, team := range teams {
		out[i] = team.Clone()
	}
	return TournamentSnapshot{
		ID:              t.ID,
		Name:            t.Name,
		MaxTeams:        t.MaxTeams,
		TeamSize:        t.TeamSize,
		Format:          t.Format,
		Game:            t.Game,
		ScoringMode:     t.ScoringMode,
		Status:          t.Status,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
		StartedAt:       copyTime(t.StartedAt),
		FinishedAt:      copyTime(t.FinishedAt),
		Teams:           out,
		TeamCount:       len(out),
		ActiveTeamCount: t.roster.ActiveTeamCount(),
		CanStart:        t.CanStart(),
		IsFull:          t.roster.Len() >= t.MaxTeams,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
