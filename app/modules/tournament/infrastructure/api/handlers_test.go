package tournamentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	tournamentservice "github.com/axi1912/Easy-Customs/app/modules/tournament/application"
	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	"github.com/axi1912/Easy-Customs/app/shared/results"
)

// fakeService answers the read operations; the embedded interface is nil.
type fakeService struct {
	tournamentservice.Service

	GetStatusFunc         func(ctx context.Context) (tournamentservice.TournamentResult[tournamentdomain.TournamentSnapshot], error)
	GetStandingsFunc      func(ctx context.Context) (tournamentservice.TournamentResult[[]tournamentdomain.TeamStanding], error)
	FindTeamByChannelFunc func(ctx context.Context, channelID string) (tournamentservice.TournamentResult[tournamentdomain.Team], error)
}

func (f *fakeService) GetStatus(ctx context.Context) (tournamentservice.TournamentResult[tournamentdomain.TournamentSnapshot], error) {
	return f.GetStatusFunc(ctx)
}

func (f *fakeService) GetStandings(ctx context.Context) (tournamentservice.TournamentResult[[]tournamentdomain.TeamStanding], error) {
	return f.GetStandingsFunc(ctx)
}

func (f *fakeService) FindTeamByChannel(ctx context.Context, channelID string) (tournamentservice.TournamentResult[tournamentdomain.Team], error) {
	return f.FindTeamByChannelFunc(ctx, channelID)
}

func rejected[S any](kind tournamentdomain.Kind) tournamentservice.TournamentResult[S] {
	return results.FailureResult[S](&tournamentevents.FailurePayloadV1{Operation: "read", Kind: kind, Reason: string(kind)})
}

func newTestServer(svc tournamentservice.Service, limiter *IPRateLimiter) http.Handler {
	r := chi.NewRouter()
	h := NewHandlers(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), noop.NewTracerProvider().Tracer("test"))
	Register(r, h, limiter)
	return r
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleGetStatus(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name       string
		fn         func(context.Context) (tournamentservice.TournamentResult[tournamentdomain.TournamentSnapshot], error)
		wantStatus int
		check      func(t *testing.T, body []byte)
	}{
		{
			name: "active tournament",
			fn: func(context.Context) (tournamentservice.TournamentResult[tournamentdomain.TournamentSnapshot], error) {
				return results.SuccessResult[tournamentdomain.TournamentSnapshot, *tournamentevents.FailurePayloadV1](
					tournamentdomain.TournamentSnapshot{ID: id, Name: "Friday Customs", MaxTeams: 8, TeamSize: 4}), nil
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var snap tournamentdomain.TournamentSnapshot
				require.NoError(t, json.Unmarshal(body, &snap))
				assert.Equal(t, id, snap.ID)
				assert.Equal(t, "Friday Customs", snap.Name)
			},
		},
		{
			name: "no tournament",
			fn: func(context.Context) (tournamentservice.TournamentResult[tournamentdomain.TournamentSnapshot], error) {
				return rejected[tournamentdomain.TournamentSnapshot](tournamentdomain.KindNoActiveTournament), nil
			},
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body []byte) {
				var f tournamentevents.FailurePayloadV1
				require.NoError(t, json.Unmarshal(body, &f))
				assert.Equal(t, tournamentdomain.KindNoActiveTournament, f.Kind)
			},
		},
		{
			name: "infrastructure error",
			fn: func(context.Context) (tournamentservice.TournamentResult[tournamentdomain.TournamentSnapshot], error) {
				return tournamentservice.TournamentResult[tournamentdomain.TournamentSnapshot]{}, errors.New("boom")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&fakeService{GetStatusFunc: tt.fn}, nil)
			rec := get(t, srv, "/api/tournament/")
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.check != nil {
				tt.check(t, rec.Body.Bytes())
			}
		})
	}
}

func TestHandleGetStandings(t *testing.T) {
	standings := []tournamentdomain.TeamStanding{
		{Rank: 1, TeamName: "Alpha", TotalScore: 32},
		{Rank: 2, TeamName: "Bravo", TotalScore: 14},
	}
	svc := &fakeService{
		GetStandingsFunc: func(context.Context) (tournamentservice.TournamentResult[[]tournamentdomain.TeamStanding], error) {
			return results.SuccessResult[[]tournamentdomain.TeamStanding, *tournamentevents.FailurePayloadV1](standings), nil
		},
	}
	srv := newTestServer(svc, nil)

	t.Run("json", func(t *testing.T) {
		rec := get(t, srv, "/api/tournament/standings")
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Standings []tournamentdomain.TeamStanding `json:"standings"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, standings, body.Standings)
	})

	t.Run("png", func(t *testing.T) {
		rec := get(t, srv, "/api/tournament/standings.png")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}))
	})

	t.Run("empty standings encode as a list", func(t *testing.T) {
		empty := newTestServer(&fakeService{
			GetStandingsFunc: func(context.Context) (tournamentservice.TournamentResult[[]tournamentdomain.TeamStanding], error) {
				return results.SuccessResult[[]tournamentdomain.TeamStanding, *tournamentevents.FailurePayloadV1](nil), nil
			},
		}, nil)
		rec := get(t, empty, "/api/tournament/standings")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"standings":[]}`, rec.Body.String())

		chart := get(t, empty, "/api/tournament/standings.png")
		require.Equal(t, http.StatusOK, chart.Code)
		assert.True(t, bytes.HasPrefix(chart.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}))
	})
}

func TestHandleGetTeamByChannel(t *testing.T) {
	var gotChannel string
	svc := &fakeService{
		FindTeamByChannelFunc: func(_ context.Context, channelID string) (tournamentservice.TournamentResult[tournamentdomain.Team], error) {
			gotChannel = channelID
			if channelID == "c-1" {
				return results.SuccessResult[tournamentdomain.Team, *tournamentevents.FailurePayloadV1](tournamentdomain.Team{Name: "Alpha", Capacity: 4}), nil
			}
			return rejected[tournamentdomain.Team](tournamentdomain.KindTeamNotFound), nil
		},
	}
	srv := newTestServer(svc, nil)

	rec := get(t, srv, "/api/tournament/teams/by-channel/c-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c-1", gotChannel)
	var team tournamentdomain.Team
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &team))
	assert.Equal(t, "Alpha", team.Name)

	missing := get(t, srv, "/api/tournament/teams/by-channel/c-9")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	svc := &fakeService{
		GetStatusFunc: func(context.Context) (tournamentservice.TournamentResult[tournamentdomain.TournamentSnapshot], error) {
			return rejected[tournamentdomain.TournamentSnapshot](tournamentdomain.KindNoActiveTournament), nil
		},
	}
	srv := newTestServer(svc, NewIPRateLimiter(0.001, 1))

	first := get(t, srv, "/api/tournament/")
	assert.Equal(t, http.StatusNotFound, first.Code)

	second := get(t, srv, "/api/tournament/")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	// another client has its own bucket
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tournament/", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIPRateLimiterPrunesIdleEntries(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i <= cleanupThreshold; i++ {
		limiter.GetLimiter(uuid.NewString())
	}
	require.Equal(t, cleanupThreshold+1, limiter.size())

	now = now.Add(maxIdleAge + time.Minute)
	limiter.GetLimiter("203.0.113.5")
	assert.Equal(t, 1, limiter.size())
}

func TestRegisterOperational(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "easy_customs_test_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()

	healthy := true
	r := chi.NewRouter()
	RegisterOperational(r, registry, map[string]HealthCheck{
		"postgres": func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("connection refused")
		},
	})

	ok := get(t, r, "/healthz")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.JSONEq(t, `{"status":"OK","checks":{"postgres":"ok"}}`, ok.Body.String())

	healthy = false
	down := get(t, r, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, down.Code)
	assert.Contains(t, down.Body.String(), "connection refused")

	metrics := get(t, r, "/metrics")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "easy_customs_test_total 1")
}
