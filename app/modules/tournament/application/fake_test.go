package tournamentservice

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	tournamentmetrics "github.com/axi1912/Easy-Customs/app/observability/metrics/tournament"
)

// ------------------------
// Fake Result Store
// ------------------------

type FakeStore struct {
	mu    sync.Mutex
	trace []string

	results       []tournamentdomain.MatchResult
	registrations []tournamentdomain.RegistrationRecord

	AppendResultFunc       func(ctx context.Context, r tournamentdomain.MatchResult) error
	AppendRegistrationFunc func(ctx context.Context, r tournamentdomain.RegistrationRecord) error
	QueryResultsFunc       func(ctx context.Context, id uuid.UUID) ([]tournamentdomain.MatchResult, error)
	ClearAllFunc           func(ctx context.Context, id uuid.UUID) error
}

func NewFakeStore() *FakeStore { return &FakeStore{trace: []string{}} }

func (f *FakeStore) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeStore) AppendResult(ctx context.Context, r tournamentdomain.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AppendResult")
	if f.AppendResultFunc != nil {
		if err := f.AppendResultFunc(ctx, r); err != nil {
			return err
		}
	}
	f.results = append(f.results, r)
	return nil
}

func (f *FakeStore) AppendRegistration(ctx context.Context, r tournamentdomain.RegistrationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AppendRegistration")
	if f.AppendRegistrationFunc != nil {
		if err := f.AppendRegistrationFunc(ctx, r); err != nil {
			return err
		}
	}
	f.registrations = append(f.registrations, r)
	return nil
}

func (f *FakeStore) QueryResults(ctx context.Context, id uuid.UUID) ([]tournamentdomain.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("QueryResults")
	if f.QueryResultsFunc != nil {
		return f.QueryResultsFunc(ctx, id)
	}
	var out []tournamentdomain.MatchResult
	for _, r := range f.results {
		if r.TournamentID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *FakeStore) ClearAll(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClearAll")
	if f.ClearAllFunc != nil {
		return f.ClearAllFunc(ctx, id)
	}
	results := f.results[:0]
	for _, r := range f.results {
		if r.TournamentID != id {
			results = append(results, r)
		}
	}
	f.results = results
	registrations := f.registrations[:0]
	for _, r := range f.registrations {
		if r.TournamentID != id {
			registrations = append(registrations, r)
		}
	}
	f.registrations = registrations
	return nil
}

func (f *FakeStore) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeStore) Results() []tournamentdomain.MatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tournamentdomain.MatchResult(nil), f.results...)
}

func (f *FakeStore) Registrations() []tournamentdomain.RegistrationRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tournamentdomain.RegistrationRecord(nil), f.registrations...)
}

var _ ResultStore = (*FakeStore)(nil)

// ------------------------
// Fake Mirror
// ------------------------

type FakeMirror struct {
	mu    sync.Mutex
	trace []string

	leaderboards [][]tournamentdomain.TeamStanding

	WriteLeaderboardFunc func(ctx context.Context, standings []tournamentdomain.TeamStanding) error
	ClearFunc            func(ctx context.Context) error
}

func NewFakeMirror() *FakeMirror { return &FakeMirror{trace: []string{}} }

func (f *FakeMirror) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeMirror) AppendRegistration(context.Context, tournamentdomain.RegistrationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AppendRegistration")
	return nil
}

func (f *FakeMirror) AppendResult(context.Context, tournamentdomain.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AppendResult")
	return nil
}

func (f *FakeMirror) WriteLeaderboard(ctx context.Context, standings []tournamentdomain.TeamStanding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("WriteLeaderboard")
	if f.WriteLeaderboardFunc != nil {
		return f.WriteLeaderboardFunc(ctx, standings)
	}
	f.leaderboards = append(f.leaderboards, standings)
	return nil
}

func (f *FakeMirror) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Clear")
	if f.ClearFunc != nil {
		return f.ClearFunc(ctx)
	}
	return nil
}

func (f *FakeMirror) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ Mirror = (*FakeMirror)(nil)

// ------------------------
// Fake Notifier
// ------------------------

type FakeNotifier struct {
	mu sync.Mutex

	activated   []tournamentevents.TeamActivatedPayloadV1
	teardowns   []tournamentevents.TeardownRequestedPayloadV1
	leaderboard []tournamentevents.LeaderboardUpdatedPayloadV1

	TeamActivatedFunc   func(ctx context.Context, p tournamentevents.TeamActivatedPayloadV1) error
	TournamentResetFunc func(ctx context.Context, p tournamentevents.TeardownRequestedPayloadV1) error
}

func NewFakeNotifier() *FakeNotifier { return &FakeNotifier{} }

func (f *FakeNotifier) TeamActivated(ctx context.Context, p tournamentevents.TeamActivatedPayloadV1) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, p)
	if f.TeamActivatedFunc != nil {
		return f.TeamActivatedFunc(ctx, p)
	}
	return nil
}

func (f *FakeNotifier) TournamentReset(ctx context.Context, p tournamentevents.TeardownRequestedPayloadV1) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teardowns = append(f.teardowns, p)
	if f.TournamentResetFunc != nil {
		return f.TournamentResetFunc(ctx, p)
	}
	return nil
}

func (f *FakeNotifier) LeaderboardUpdated(_ context.Context, p tournamentevents.LeaderboardUpdatedPayloadV1) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaderboard = append(f.leaderboard, p)
	return nil
}

func (f *FakeNotifier) Activated() []tournamentevents.TeamActivatedPayloadV1 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tournamentevents.TeamActivatedPayloadV1(nil), f.activated...)
}

func (f *FakeNotifier) Teardowns() []tournamentevents.TeardownRequestedPayloadV1 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tournamentevents.TeardownRequestedPayloadV1(nil), f.teardowns...)
}

func (f *FakeNotifier) LeaderboardUpdates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.leaderboard)
}

var _ Notifier = (*FakeNotifier)(nil)

// ------------------------
// Fake Analyzer / Scheduler / Clock
// ------------------------

type FakeAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, urls []string) (tournamentdomain.AnalyzedResult, error)
}

func (f *FakeAnalyzer) Analyze(ctx context.Context, urls []string) (tournamentdomain.AnalyzedResult, error) {
	return f.AnalyzeFunc(ctx, urls)
}

var _ Analyzer = (*FakeAnalyzer)(nil)

type FakeScheduler struct {
	trace []string

	scheduled map[uuid.UUID]time.Time

	ScheduleStartFunc func(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	CancelStartsFunc  func(ctx context.Context, id uuid.UUID) error
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{trace: []string{}, scheduled: map[uuid.UUID]time.Time{}}
}

func (f *FakeScheduler) ScheduleStart(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	f.trace = append(f.trace, "ScheduleStart")
	if f.ScheduleStartFunc != nil {
		return f.ScheduleStartFunc(ctx, id, at)
	}
	f.scheduled[id] = at
	return int64(len(f.scheduled)), nil
}

func (f *FakeScheduler) CancelStarts(ctx context.Context, id uuid.UUID) error {
	f.trace = append(f.trace, "CancelStarts")
	if f.CancelStartsFunc != nil {
		return f.CancelStartsFunc(ctx, id)
	}
	delete(f.scheduled, id)
	return nil
}

var _ Scheduler = (*FakeScheduler)(nil)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ------------------------
// Test harness
// ------------------------

type testHarness struct {
	svc       *TournamentService
	store     *FakeStore
	mirror    *FakeMirror
	notifier  *FakeNotifier
	analyzer  *FakeAnalyzer
	scheduler *FakeScheduler
	clock     *fakeClock
}

func newHarness() *testHarness {
	h := &testHarness{
		store:     NewFakeStore(),
		mirror:    NewFakeMirror(),
		notifier:  NewFakeNotifier(),
		analyzer:  &FakeAnalyzer{},
		scheduler: NewFakeScheduler(),
		clock:     &fakeClock{now: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)},
	}
	h.svc = NewTournamentService(
		DefaultOptions(),
		Collaborators{
			Store:     h.store,
			Mirror:    h.mirror,
			Notifier:  h.notifier,
			Analyzer:  h.analyzer,
			Scheduler: h.scheduler,
		},
		h.clock,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		tournamentmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
	)
	return h
}
