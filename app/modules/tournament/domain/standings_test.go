package tournamentdomain

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func result(team string, position, kills int) MatchResult {
	b, err := MultiplierScoring{}.Score(position, kills)
	if err != nil {
		panic(err)
	}
	return MatchResult{TeamName: team, Position: position, Kills: kills, Multiplier: b.Multiplier, Score: b.FinalScore}
}

func TestComputeStandings(t *testing.T) {
	results := []MatchResult{
		result("Beta", 3, 10),  // 14
		result("Alpha", 1, 20), // 32
		result("Beta", 7, 5),   // 6
		result("Gamma", 12, 3), // 3
	}

	got := ComputeStandings(results)
	want := []TeamStanding{
		{Rank: 1, TeamName: "Alpha", TotalScore: 32, TotalKills: 20, GamesPlayed: 1, BestPosition: 1, AverageScore: 32},
		{Rank: 2, TeamName: "Beta", TotalScore: 20, TotalKills: 15, GamesPlayed: 2, BestPosition: 3, AverageScore: 10},
		{Rank: 3, TeamName: "Gamma", TotalScore: 3, TotalKills: 3, GamesPlayed: 1, BestPosition: 12, AverageScore: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("standings mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStandingsIdempotent(t *testing.T) {
	results := []MatchResult{
		result("Alpha", 2, 7),
		result("Beta", 1, 3),
		result("Alpha", 9, 2),
	}
	first := ComputeStandings(results)
	second := ComputeStandings(results)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("recompute changed output:\n%s", diff)
	}
}

func TestComputeStandingsOrderIndependentTotals(t *testing.T) {
	results := []MatchResult{
		result("Alpha", 2, 7),
		result("Beta", 1, 3),
		result("Alpha", 9, 2),
		result("Gamma", 4, 11),
		result("Beta", 15, 0),
	}
	reversed := make([]MatchResult, len(results))
	for i := range results {
		reversed[len(results)-1-i] = results[i]
	}

	byName := func(s []TeamStanding) []TeamStanding {
		out := append([]TeamStanding(nil), s...)
		for i := range out {
			out[i].Rank = 0
		}
		sort.Slice(out, func(a, b int) bool { return out[a].TeamName < out[b].TeamName })
		return out
	}
	if diff := cmp.Diff(byName(ComputeStandings(results)), byName(ComputeStandings(reversed))); diff != "" {
		t.Fatalf("totals depend on result order:\n%s", diff)
	}
}

func TestComputeStandingsTieKeepsFirstAppearance(t *testing.T) {
	results := []MatchResult{
		{TeamName: "Late", Position: 4, Kills: 10, Score: 14},
		{TeamName: "Early", Position: 2, Kills: 10, Score: 14},
	}
	got := ComputeStandings(results)
	if got[0].TeamName != "Late" || got[1].TeamName != "Early" {
		t.Fatalf("tie should keep first-appearance order, got %s then %s", got[0].TeamName, got[1].TeamName)
	}
}

func TestComputeStandingsAverageRounding(t *testing.T) {
	results := []MatchResult{
		{TeamName: "Alpha", Position: 1, Score: 10},
		{TeamName: "Alpha", Position: 2, Score: 10},
		{TeamName: "Alpha", Position: 3, Score: 11},
	}
	got := ComputeStandings(results)
	if got[0].AverageScore != 10.33 {
		t.Fatalf("average = %v, want 10.33", got[0].AverageScore)
	}
}

func TestComputeStandingsEmpty(t *testing.T) {
	if got := ComputeStandings(nil); len(got) != 0 {
		t.Fatalf("expected no standings, got %v", got)
	}
}
