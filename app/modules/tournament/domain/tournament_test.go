package tournamentdomain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func newTestTournament(t *testing.T, maxTeams, teamSize int) *Tournament {
	t.Helper()
	tour, err := NewTournament(uuid.New(), Config{Name: "Friday Customs", MaxTeams: maxTeams, TeamSize: teamSize}, DefaultLimits, "admin", fixedNow)
	if err != nil {
		t.Fatalf("NewTournament: %v", err)
	}
	return tour
}

func TestNewTournamentValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "valid", cfg: Config{Name: "Cup", MaxTeams: 16, TeamSize: 4}, ok: true},
		{name: "bounds inclusive", cfg: Config{Name: "Cup", MaxTeams: 64, TeamSize: 1}, ok: true},
		{name: "empty name", cfg: Config{Name: "   ", MaxTeams: 16, TeamSize: 4}},
		{name: "too few teams", cfg: Config{Name: "Cup", MaxTeams: 3, TeamSize: 4}},
		{name: "too many teams", cfg: Config{Name: "Cup", MaxTeams: 65, TeamSize: 4}},
		{name: "team size zero", cfg: Config{Name: "Cup", MaxTeams: 16, TeamSize: 0}},
		{name: "team size too big", cfg: Config{Name: "Cup", MaxTeams: 16, TeamSize: 11}},
		{name: "unknown scoring", cfg: Config{Name: "Cup", MaxTeams: 16, TeamSize: 4, ScoringMode: "elo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour, err := NewTournament(uuid.New(), tt.cfg, DefaultLimits, "admin", fixedNow)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if tour.Status != StatusRegistration || tour.Game != DefaultGame || tour.ScoringMode != ScoringModeMultiplier {
					t.Fatalf("unexpected defaults: %+v", tour)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected InvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestTournamentLifecycle(t *testing.T) {
	tour := newTestTournament(t, 4, 2)
	alpha, _ := tour.RegisterTeam(uuid.New(), "Alpha", "", "admin", fixedNow)
	beta, _ := tour.RegisterTeam(uuid.New(), "Beta", "", "admin", fixedNow)

	if err := tour.Finish(fixedNow); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("finish from registration: expected InvalidStateTransition, got %v", err)
	}
	if err := tour.Start(fixedNow); !errors.Is(err, ErrNotEnoughTeams) {
		t.Fatalf("start with empty teams: expected NotEnoughTeams, got %v", err)
	}

	if _, err := JoinTeam(tour, alpha.ID, Candidate{UserID: "u1"}, fixedNow); err != nil {
		t.Fatalf("join alpha: %v", err)
	}
	if err := tour.Start(fixedNow); !errors.Is(err, ErrNotEnoughTeams) {
		t.Fatalf("start with one active team: expected NotEnoughTeams, got %v", err)
	}
	if _, err := JoinTeam(tour, beta.ID, Candidate{UserID: "u2"}, fixedNow); err != nil {
		t.Fatalf("join beta: %v", err)
	}
	if !tour.CanStart() {
		t.Fatalf("expected CanStart with two active teams")
	}
	if err := tour.Start(fixedNow); err != nil {
		t.Fatalf("start: %v", err)
	}
	if tour.Status != StatusInProgress || tour.StartedAt == nil {
		t.Fatalf("expected in-progress with start time, got %s", tour.Status)
	}

	if _, err := tour.RegisterTeam(uuid.New(), "Gamma", "", "admin", fixedNow); !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("register after start: expected RegistrationClosed, got %v", err)
	}
	if _, err := JoinTeam(tour, alpha.ID, Candidate{UserID: "u3"}, fixedNow); !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("join after start: expected RegistrationClosed, got %v", err)
	}
	if err := tour.Start(fixedNow); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("second start: expected InvalidStateTransition, got %v", err)
	}
	if err := tour.AcceptsResults(); err != nil {
		t.Fatalf("in-progress should accept results: %v", err)
	}

	if err := tour.Finish(fixedNow); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := tour.Finish(fixedNow); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("second finish: expected InvalidStateTransition, got %v", err)
	}
	if err := tour.AcceptsResults(); !errors.Is(err, ErrTournamentFinished) {
		t.Fatalf("finished should reject results, got %v", err)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	tour := newTestTournament(t, 4, 2)
	alpha, _ := tour.RegisterTeam(uuid.New(), "Alpha", "A", "admin", fixedNow)
	if _, err := JoinTeam(tour, alpha.ID, Candidate{UserID: "u1", DisplayName: "One"}, fixedNow); err != nil {
		t.Fatalf("join: %v", err)
	}

	snap := tour.Snapshot()
	if snap.TeamCount != 1 || snap.ActiveTeamCount != 1 || snap.IsFull || snap.CanStart {
		t.Fatalf("unexpected snapshot counters: %+v", snap)
	}
	snap.Teams[0].Members[0].DisplayName = "mutated"
	if alpha.Members[0].DisplayName != "One" {
		t.Fatalf("snapshot mutation leaked into live roster")
	}
}

func TestErrorKindMatching(t *testing.T) {
	err := NewError(KindTeamFull, "team Alpha is full")
	if !errors.Is(err, ErrTeamFull) {
		t.Fatalf("expected errors.Is to match by kind")
	}
	if errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("different kinds must not match")
	}
	if KindOf(errors.New("boom")) != "" {
		t.Fatalf("plain errors have no kind")
	}
	if ErrTeamFull.Error() != string(KindTeamFull) {
		t.Fatalf("empty message should fall back to the kind")
	}
}
