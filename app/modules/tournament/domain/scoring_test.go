package tournamentdomain

import (
	"errors"
	"testing"
)

func TestMultiplierScoring(t *testing.T) {
	tests := []struct {
		name     string
		position int
		kills    int
		want     int
		wantMult float64
	}{
		{name: "winner", position: 1, kills: 25, want: 40, wantMult: 1.6},
		{name: "rounds half up", position: 6, kills: 13, want: 16, wantMult: 1.2},
		{name: "no kills", position: 11, kills: 0, want: 0, wantMult: 1.0},
		{name: "top five", position: 5, kills: 10, want: 14, wantMult: 1.4},
		{name: "bracket lower edge", position: 2, kills: 1, want: 1, wantMult: 1.4},
		{name: "whole product", position: 6, kills: 5, want: 6, wantMult: 1.2},
		{name: "last place max kills", position: 15, kills: 999, want: 999, wantMult: 1.0},
		{name: "winner max kills", position: 1, kills: 999, want: 1598, wantMult: 1.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MultiplierScoring{}.Score(tt.position, tt.kills)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.FinalScore != tt.want {
				t.Fatalf("score(%d, %d) = %d, want %d", tt.position, tt.kills, got.FinalScore, tt.want)
			}
			if got.Multiplier != tt.wantMult {
				t.Fatalf("multiplier = %v, want %v", got.Multiplier, tt.wantMult)
			}
		})
	}
}

func TestScoringIsDeterministic(t *testing.T) {
	for _, strategy := range []ScoringStrategy{MultiplierScoring{}, FlatTableScoring{}} {
		for position := MinPosition; position <= MaxPosition; position++ {
			for _, kills := range []int{0, 1, 7, 13, 250, 999} {
				a, errA := strategy.Score(position, kills)
				b, errB := strategy.Score(position, kills)
				if errA != nil || errB != nil {
					t.Fatalf("%s: unexpected error for (%d, %d): %v %v", strategy.Mode(), position, kills, errA, errB)
				}
				if a != b {
					t.Fatalf("%s: score(%d, %d) not deterministic: %+v vs %+v", strategy.Mode(), position, kills, a, b)
				}
			}
		}
	}
}

func TestScoringRejectsOutOfBounds(t *testing.T) {
	inputs := []struct{ position, kills int }{
		{0, 5}, {16, 5}, {5, -1}, {5, 1000}, {-3, 0},
	}
	for _, strategy := range []ScoringStrategy{MultiplierScoring{}, FlatTableScoring{}} {
		for _, in := range inputs {
			_, err := strategy.Score(in.position, in.kills)
			if !errors.Is(err, ErrInvalidScoreInput) {
				t.Fatalf("%s: score(%d, %d) error = %v, want InvalidScoreInput", strategy.Mode(), in.position, in.kills, err)
			}
		}
	}
}

func TestFlatTableScoring(t *testing.T) {
	tests := []struct {
		position, kills, want int
	}{
		{1, 0, 20},
		{1, 5, 25},
		{2, 3, 21},
		{10, 0, 2},
		{11, 4, 4},
		{15, 0, 0},
	}
	for _, tt := range tests {
		got, err := FlatTableScoring{}.Score(tt.position, tt.kills)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.FinalScore != tt.want {
			t.Fatalf("flat(%d, %d) = %d, want %d", tt.position, tt.kills, got.FinalScore, tt.want)
		}
	}
}

func TestStrategyFor(t *testing.T) {
	s, err := StrategyFor("")
	if err != nil || s.Mode() != ScoringModeMultiplier {
		t.Fatalf("empty mode should default to multiplier, got %v, %v", s, err)
	}
	s, err = StrategyFor(ScoringModeFlat)
	if err != nil || s.Mode() != ScoringModeFlat {
		t.Fatalf("expected flat strategy, got %v, %v", s, err)
	}
	if _, err := StrategyFor("elo"); KindOf(err) != KindInvalidConfiguration {
		t.Fatalf("expected InvalidConfiguration for unknown mode, got %v", err)
	}
}

func TestScoreBreakdownDescribe(t *testing.T) {
	b, _ := MultiplierScoring{}.Score(1, 20)
	if got := b.Describe(); got != "20 kills × 1.6 = 32 points" {
		t.Fatalf("unexpected description %q", got)
	}
	f, _ := FlatTableScoring{}.Score(2, 3)
	if got := f.Describe(); got != "#2 (18 pts) + 3 kills = 21 points" {
		t.Fatalf("unexpected description %q", got)
	}
	outside, _ := FlatTableScoring{}.Score(12, 4)
	if got := outside.Describe(); got != "#12 (0 pts) + 4 kills = 4 points" {
		t.Fatalf("unexpected description %q", got)
	}
}
