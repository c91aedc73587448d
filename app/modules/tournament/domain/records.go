package tournamentdomain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RegistrationRecord is the storage-side view of a team, written when the team
// is registered and again as members join.
type RegistrationRecord struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	TeamID       uuid.UUID `json:"team_id"`
	TeamName     string    `json:"team_name"`
	Tag          string    `json:"tag,omitempty"`
	Captain      string    `json:"captain,omitempty"`
	Players      []string  `json:"players"`

	// Revision is the member count when the record was taken. Members are only
	// ever added, so a higher revision is always the newer record.
	Revision   int       `json:"revision"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewRegistrationRecord captures team as it is right now.
func NewRegistrationRecord(tournamentID uuid.UUID, team Team, now time.Time) RegistrationRecord {
	rec := RegistrationRecord{
		TournamentID: tournamentID,
		TeamID:       team.ID,
		TeamName:     team.Name,
		Tag:          team.Tag,
		Players:      make([]string, 0, len(team.Members)),
		Revision:     len(team.Members),
		RecordedAt:   now.UTC(),
	}
	if c := team.Captain(); c != nil {
		rec.Captain = c.DisplayName
	}
	for _, m := range team.Members {
		rec.Players = append(rec.Players, m.DisplayName)
	}
	return rec
}

// PlayersList joins player names the way the registration sheet shows them.
func (r RegistrationRecord) PlayersList() string {
	return strings.Join(r.Players, ", ")
}

// Confidence is the analyzer's own estimate. It is informational only.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence maps anything unrecognised to medium.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceLow:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

type PlayerKills struct {
	Name  string `json:"name"`
	Kills int    `json:"kills"`
}

// AnalyzedResult is what image analysis extracted from a scoreboard screenshot.
// Position is nil when the analyzer could not read it.
type AnalyzedResult struct {
	Position   *int          `json:"position,omitempty"`
	TotalKills int           `json:"total_kills"`
	Players    []PlayerKills `json:"players"`
	Confidence Confidence    `json:"confidence"`
}

// PendingResult waits for a human to confirm, edit or cancel an analyzed result.
type PendingResult struct {
	ID           uuid.UUID
	TournamentID uuid.UUID
	TeamName     string
	Analysis     AnalyzedResult
	SubmittedBy  string
	SubmitterID  string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the pending result can no longer be resolved.
func (p PendingResult) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
