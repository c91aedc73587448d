package tournamentdomain

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestJoinTeamPreconditionOrder(t *testing.T) {
	if _, err := JoinTeam(nil, uuid.New(), Candidate{UserID: "u1"}, fixedNow); !errors.Is(err, ErrNoActiveTournament) {
		t.Fatalf("expected NoActiveTournament, got %v", err)
	}

	tour := newTestTournament(t, 4, 1)
	alpha, _ := tour.RegisterTeam(uuid.New(), "Alpha", "", "admin", fixedNow)
	beta, _ := tour.RegisterTeam(uuid.New(), "Beta", "", "admin", fixedNow)

	if _, err := JoinTeam(tour, uuid.New(), Candidate{UserID: "u1"}, fixedNow); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected TeamNotFound, got %v", err)
	}
	if _, err := JoinTeam(tour, alpha.ID, Candidate{UserID: "u1"}, fixedNow); err != nil {
		t.Fatalf("join: %v", err)
	}

	// u1 joining the full Alpha reports AlreadyRegistered, not TeamFull.
	_, err := JoinTeam(tour, alpha.ID, Candidate{UserID: "u1"}, fixedNow)
	var derr *Error
	if !errors.As(err, &derr) || derr.Kind != KindAlreadyRegistered || derr.ExistingTeam != "Alpha" {
		t.Fatalf("expected AlreadyRegistered carrying Alpha, got %v", err)
	}

	if _, err := JoinTeam(tour, beta.ID, Candidate{UserID: "u1"}, fixedNow); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected AlreadyRegistered for second team, got %v", err)
	}
	if _, err := JoinTeam(tour, alpha.ID, Candidate{UserID: "u2"}, fixedNow); !errors.Is(err, ErrTeamFull) {
		t.Fatalf("expected TeamFull, got %v", err)
	}
	if len(alpha.Members) != 1 || len(beta.Members) != 0 {
		t.Fatalf("failed joins must not mutate the roster")
	}
}

func TestJoinTeamActivatesOnce(t *testing.T) {
	tour := newTestTournament(t, 4, 3)
	alpha, _ := tour.RegisterTeam(uuid.New(), "Alpha", "", "admin", fixedNow)

	activations := 0
	for _, user := range []string{"u1", "u2", "u3"} {
		out, err := JoinTeam(tour, alpha.ID, Candidate{UserID: user, DisplayName: user}, fixedNow)
		if err != nil {
			t.Fatalf("join %s: %v", user, err)
		}
		if out.Activated {
			activations++
			if user != "u1" {
				t.Fatalf("activation fired for %s, want u1", user)
			}
		}
	}
	if activations != 1 {
		t.Fatalf("expected exactly one activation, got %d", activations)
	}
	if !alpha.IsFull() || alpha.Captain().UserID != "u1" {
		t.Fatalf("expected full team captained by u1")
	}
}

func TestJoinTeamDisplayNameFallback(t *testing.T) {
	tour := newTestTournament(t, 4, 2)
	alpha, _ := tour.RegisterTeam(uuid.New(), "Alpha", "", "admin", fixedNow)
	out, err := JoinTeam(tour, alpha.ID, Candidate{UserID: "1234", DisplayName: "  "}, fixedNow)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if out.Team.Members[0].DisplayName != "1234" {
		t.Fatalf("expected user id as display name, got %q", out.Team.Members[0].DisplayName)
	}
}

// Serialized under a mutex, the way the service drives it.
func TestJoinTeamLastSlotRace(t *testing.T) {
	tour := newTestTournament(t, 4, 3)
	alpha, _ := tour.RegisterTeam(uuid.New(), "Alpha", "", "admin", fixedNow)
	for _, u := range []string{"u1", "u2"} {
		if _, err := JoinTeam(tour, alpha.ID, Candidate{UserID: u}, fixedNow); err != nil {
			t.Fatalf("seed join: %v", err)
		}
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make([]error, 2)
	contest := []string{"u3", "u4"}
	start := make(chan struct{})
	for i, u := range contest {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			<-start
			mu.Lock()
			defer mu.Unlock()
			_, errs[i] = JoinTeam(tour, alpha.ID, Candidate{UserID: u}, fixedNow)
		}(i, u)
	}
	close(start)
	wg.Wait()

	wins, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrTeamFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || full != 1 {
		t.Fatalf("expected one winner and one TeamFull, got %d/%d", wins, full)
	}
	if len(alpha.Members) != 3 {
		t.Fatalf("team overfilled: %d members", len(alpha.Members))
	}
}
