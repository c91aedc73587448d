package tournamentdomain

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// MatchResult is one submitted outcome. Position and Kills are kept next to the
// score so standings can always be recomputed.
type MatchResult struct {
	ID           uuid.UUID   `json:"id"`
	TournamentID uuid.UUID   `json:"tournament_id"`
	TeamName     string      `json:"team_name"`
	Position     int         `json:"position"`
	Kills        int         `json:"kills"`
	Multiplier   float64     `json:"multiplier"`
	Score        int         `json:"score"`
	ScoringMode  ScoringMode `json:"scoring_mode"`
	SubmittedBy  string      `json:"submitted_by"`
	SubmitterID  string      `json:"submitter_id"`
	SubmittedAt  time.Time   `json:"submitted_at"`
}

// TeamStanding is one row of the leaderboard.
type TeamStanding struct {
	Rank         int     `json:"rank"`
	TeamName     string  `json:"team_name"`
	TotalScore   int     `json:"total_score"`
	TotalKills   int     `json:"total_kills"`
	GamesPlayed  int     `json:"games_played"`
	BestPosition int     `json:"best_position"`
	AverageScore float64 `json:"average_score"`
}

// ComputeStandings aggregates the full result history. It is total, not
// incremental. Teams are ordered by descending total score; ties keep the
// order in which each team first appears in results.
func ComputeStandings(results []MatchResult) []TeamStanding {
	index := make(map[string]int)
	standings := make([]TeamStanding, 0)

	for _, r := range results {
		i, ok := index[r.TeamName]
		if !ok {
			i = len(standings)
			index[r.TeamName] = i
			standings = append(standings, TeamStanding{TeamName: r.TeamName, BestPosition: r.Position})
		}
		s := &standings[i]
		s.TotalScore += r.Score
		s.TotalKills += r.Kills
		s.GamesPlayed++
		if r.Position < s.BestPosition {
			s.BestPosition = r.Position
		}
	}

	for i := range standings {
		standings[i].AverageScore = averageScore(standings[i].TotalScore, standings[i].GamesPlayed)
	}

	sort.SliceStable(standings, func(a, b int) bool {
		return standings[a].TotalScore > standings[b].TotalScore
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

func averageScore(total, games int) float64 {
	if games == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(games)*100) / 100
}
