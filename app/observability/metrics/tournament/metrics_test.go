package tournamentmetrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg, "test").(*prometheusMetrics)
	ctx := context.Background()

	m.RecordOperationAttempt(ctx, "JoinTeam", "TournamentService")
	m.RecordOperationAttempt(ctx, "JoinTeam", "TournamentService")
	m.RecordOperationDuration(ctx, "JoinTeam", "TournamentService", 10*time.Millisecond)
	m.RecordJoinOutcome(ctx, "TEAM_FULL")
	m.RecordTeamActivated(ctx)
	m.RecordResultSubmitted(ctx, "multiplier", 32)
	m.SetRosterSize(ctx, 4, 2)

	if got := testutil.ToFloat64(m.operationAttempts.WithLabelValues("JoinTeam", "TournamentService")); got != 2 {
		t.Fatalf("attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.joinOutcomes.WithLabelValues("TEAM_FULL")); got != 1 {
		t.Fatalf("join outcomes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.teamActivations); got != 1 {
		t.Fatalf("activations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rosterActiveTeams); got != 2 {
		t.Fatalf("active teams = %v, want 2", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected registered metric families")
	}
}
