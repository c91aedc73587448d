package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
)

// TestDataGenerator creates tournament data for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator. Pass a seed for reproducible data.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s))}
}

// TeamName returns a name that passes the team name rules.
func (g *TestDataGenerator) TeamName() string {
	return g.faker.Adjective() + " " + g.faker.Animal()
}

// Players returns n distinct gamer tags.
func (g *TestDataGenerator) Players(n int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		name := g.faker.Gamertag()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Registration builds a registration record for a fresh team.
func (g *TestDataGenerator) Registration(tournamentID uuid.UUID, players int) tournamentdomain.RegistrationRecord {
	names := g.Players(players)
	rec := tournamentdomain.RegistrationRecord{
		TournamentID: tournamentID,
		TeamID:       uuid.New(),
		TeamName:     g.TeamName(),
		Players:      names,
		Revision:     len(names),
		RecordedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	if len(names) > 0 {
		rec.Captain = names[0]
	}
	return rec
}

// MatchResult scores a random placement for team under the multiplier formula.
func (g *TestDataGenerator) MatchResult(tournamentID uuid.UUID, team string, at time.Time) tournamentdomain.MatchResult {
	position := g.faker.IntRange(tournamentdomain.MinPosition, tournamentdomain.MaxPosition)
	kills := g.faker.IntRange(0, 30)
	scored, _ := tournamentdomain.MultiplierScoring{}.Score(position, kills)
	return tournamentdomain.MatchResult{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		TeamName:     team,
		Position:     position,
		Kills:        kills,
		Multiplier:   scored.Multiplier,
		Score:        scored.FinalScore,
		ScoringMode:  tournamentdomain.ScoringModeMultiplier,
		SubmittedBy:  g.faker.Gamertag(),
		SubmitterID:  g.faker.Numerify("##################"),
		SubmittedAt:  at.UTC().Truncate(time.Microsecond),
	}
}
