package tournamentdomain

import "fmt"

// Bounds accepted by every scoring strategy.
const (
	MinPosition = 1
	MaxPosition = 15
	MinKills    = 0
	MaxKills    = 999
)

// ScoringMode selects the strategy a tournament scores every result with.
type ScoringMode string

const (
	// ScoringModeMultiplier is the canonical formula: round(kills × position multiplier).
	ScoringModeMultiplier ScoringMode = "multiplier"
	// ScoringModeFlat awards flat placement points (20, 18, ..., 2) plus one point per kill.
	ScoringModeFlat ScoringMode = "flat"
)

// ScoreBreakdown is the outcome of scoring one result. The inputs travel with
// the score so a leaderboard can always be re-derived.
type ScoreBreakdown struct {
	Mode     ScoringMode
	Position int
	Kills    int

	// Multiplier is 1.0 for the flat strategy.
	Multiplier     float64
	PlacementScore int
	FinalScore     int
}

// ScoringStrategy computes a deterministic score from a finishing position and kill count.
type ScoringStrategy interface {
	Mode() ScoringMode
	Score(position, kills int) (ScoreBreakdown, error)
}

// StrategyFor returns the strategy for mode. Unknown modes are a configuration error.
func StrategyFor(mode ScoringMode) (ScoringStrategy, error) {
	switch mode {
	case ScoringModeMultiplier, "":
		return MultiplierScoring{}, nil
	case ScoringModeFlat:
		return FlatTableScoring{}, nil
	default:
		return nil, NewError(KindInvalidConfiguration, "unknown scoring mode %q", mode)
	}
}

// ValidateScoreInput checks position and kill bounds. Out-of-range input is
// rejected, never clamped.
func ValidateScoreInput(position, kills int) error {
	if position < MinPosition || position > MaxPosition {
		return NewError(KindInvalidScoreInput, "position must be between %d and %d, got %d", MinPosition, MaxPosition, position)
	}
	if kills < MinKills || kills > MaxKills {
		return NewError(KindInvalidScoreInput, "kills must be between %d and %d, got %d", MinKills, MaxKills, kills)
	}
	return nil
}

// multiplierBracket maps an inclusive position range to a multiplier in tenths.
type multiplierBracket struct {
	from, to int
	tenths   int
}

var multiplierBrackets = []multiplierBracket{
	{from: 1, to: 1, tenths: 16},
	{from: 2, to: 5, tenths: 14},
	{from: 6, to: 10, tenths: 12},
	{from: 11, to: 15, tenths: 10},
}

// MultiplierScoring scores round-half-up(kills × multiplier).
type MultiplierScoring struct{}

func (MultiplierScoring) Mode() ScoringMode { return ScoringModeMultiplier }

func (MultiplierScoring) Score(position, kills int) (ScoreBreakdown, error) {
	if err := ValidateScoreInput(position, kills); err != nil {
		return ScoreBreakdown{}, err
	}
	tenths := multiplierTenths(position)
	// Integer arithmetic keeps half-up rounding exact: (k*m + 5) / 10.
	final := (kills*tenths + 5) / 10
	return ScoreBreakdown{
		Mode:       ScoringModeMultiplier,
		Position:   position,
		Kills:      kills,
		Multiplier: float64(tenths) / 10,
		FinalScore: final,
	}, nil
}

// Multiplier returns the position multiplier, or 0 for an out-of-range position.
func Multiplier(position int) float64 {
	return float64(multiplierTenths(position)) / 10
}

func multiplierTenths(position int) int {
	for _, b := range multiplierBrackets {
		if position >= b.from && position <= b.to {
			return b.tenths
		}
	}
	return 0
}

var flatPlacementPoints = map[int]int{
	1: 20, 2: 18, 3: 16, 4: 14, 5: 12,
	6: 10, 7: 8, 8: 6, 9: 4, 10: 2,
}

// FlatTableScoring scores placement points plus one point per kill.
type FlatTableScoring struct{}

func (FlatTableScoring) Mode() ScoringMode { return ScoringModeFlat }

func (FlatTableScoring) Score(position, kills int) (ScoreBreakdown, error) {
	if err := ValidateScoreInput(position, kills); err != nil {
		return ScoreBreakdown{}, err
	}
	placement := flatPlacementPoints[position]
	return ScoreBreakdown{
		Mode:           ScoringModeFlat,
		Position:       position,
		Kills:          kills,
		Multiplier:     1.0,
		PlacementScore: placement,
		FinalScore:     placement + kills,
	}, nil
}

// Describe renders the breakdown the way results are announced.
func (b ScoreBreakdown) Describe() string {
	if b.Mode == ScoringModeFlat {
		return fmt.Sprintf("#%d (%d pts) + %d kills = %d points", b.Position, b.PlacementScore, b.Kills, b.FinalScore)
	}
	return fmt.Sprintf("%d kills × %.1f = %d points", b.Kills, b.Multiplier, b.FinalScore)
}
