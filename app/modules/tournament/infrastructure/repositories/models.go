package tournamentdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
)

// MatchResult is one row of the append-only result log.
type MatchResult struct {
	bun.BaseModel `bun:"table:match_results,alias:mr"`
	ID            uuid.UUID                    `bun:"id,pk,type:uuid"`
	Seq           int64                        `bun:"seq,autoincrement"`
	TournamentID  uuid.UUID                    `bun:"tournament_id,notnull,type:uuid"`
	TeamName      string                       `bun:"team_name,notnull,type:varchar(64)"`
	Position      int                          `bun:"position,notnull"`
	Kills         int                          `bun:"kills,notnull"`
	Multiplier    float64                      `bun:"multiplier,notnull"`
	Score         int                          `bun:"score,notnull"`
	ScoringMode   tournamentdomain.ScoringMode `bun:"scoring_mode,notnull,type:varchar(20)"`
	SubmittedBy   string                       `bun:"submitted_by,notnull"`
	SubmitterID   string                       `bun:"submitter_id,nullzero,type:varchar(32)"`
	SubmittedAt   time.Time                    `bun:"submitted_at,notnull,default:current_timestamp"`
}

// TeamRegistration is the latest registration record of a team. Joins rewrite it.
type TeamRegistration struct {
	bun.BaseModel `bun:"table:team_registrations,alias:tr"`
	TeamID        uuid.UUID `bun:"team_id,pk,type:uuid"`
	TournamentID  uuid.UUID `bun:"tournament_id,notnull,type:uuid"`
	TeamName      string    `bun:"team_name,notnull,type:varchar(64)"`
	Tag           string    `bun:"tag,nullzero,type:varchar(10)"`
	Captain       string    `bun:"captain,nullzero"`
	Players       []string  `bun:"players,type:jsonb"`
	Revision      int       `bun:"revision,notnull"`
	RecordedAt    time.Time `bun:"recorded_at,notnull,default:current_timestamp"`
}

func matchResultFromDomain(r tournamentdomain.MatchResult) *MatchResult {
	return &MatchResult{
		ID:           r.ID,
		TournamentID: r.TournamentID,
		TeamName:     r.TeamName,
		Position:     r.Position,
		Kills:        r.Kills,
		Multiplier:   r.Multiplier,
		Score:        r.Score,
		ScoringMode:  r.ScoringMode,
		SubmittedBy:  r.SubmittedBy,
		SubmitterID:  r.SubmitterID,
		SubmittedAt:  r.SubmittedAt,
	}
}

func (m *MatchResult) toDomain() tournamentdomain.MatchResult {
	return tournamentdomain.MatchResult{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		TeamName:     m.TeamName,
		Position:     m.Position,
		Kills:        m.Kills,
		Multiplier:   m.Multiplier,
		Score:        m.Score,
		ScoringMode:  m.ScoringMode,
		SubmittedBy:  m.SubmittedBy,
		SubmitterID:  m.SubmitterID,
		SubmittedAt:  m.SubmittedAt.UTC(),
	}
}

func registrationFromDomain(r tournamentdomain.RegistrationRecord) *TeamRegistration {
	players := r.Players
	if players == nil {
		players = []string{}
	}
	return &TeamRegistration{
		TeamID:       r.TeamID,
		TournamentID: r.TournamentID,
		TeamName:     r.TeamName,
		Tag:          r.Tag,
		Captain:      r.Captain,
		Players:      players,
		Revision:     r.Revision,
		RecordedAt:   r.RecordedAt,
	}
}

func (m *TeamRegistration) toDomain() tournamentdomain.RegistrationRecord {
	return tournamentdomain.RegistrationRecord{
		TournamentID: m.TournamentID,
		TeamID:       m.TeamID,
		TeamName:     m.TeamName,
		Tag:          m.Tag,
		Captain:      m.Captain,
		Players:      m.Players,
		Revision:     m.Revision,
		RecordedAt:   m.RecordedAt.UTC(),
	}
}
