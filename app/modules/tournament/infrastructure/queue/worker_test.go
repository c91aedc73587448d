package tournamentqueue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axi1912/Easy-Customs/app/eventbus"
	tournamentservice "github.com/axi1912/Easy-Customs/app/modules/tournament/application"
	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
)

type fakeStarter struct {
	calls []tournamentevents.StartRequestedPayloadV1
	fn    func(p tournamentevents.StartRequestedPayloadV1) (tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1], error)
}

func (f *fakeStarter) StartTournament(_ context.Context, p tournamentevents.StartRequestedPayloadV1) (tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1], error) {
	f.calls = append(f.calls, p)
	return f.fn(p)
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func startJob(id string) *river.Job[TournamentStartJob] {
	return &river.Job[TournamentStartJob]{
		JobRow: &rivertype.JobRow{ID: 42},
		Args:   TournamentStartJob{TournamentID: id},
	}
}

func subscribe(t *testing.T, bus eventbus.EventBus, topic string) <-chan *message.Message {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ch, err := bus.Subscribe(ctx, topic)
	require.NoError(t, err)
	return ch
}

func next(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

type failingPublisher struct {
	attempts int
	err      error
}

func (p *failingPublisher) Publish(string, ...*message.Message) error {
	p.attempts++
	return p.err
}

func (p *failingPublisher) Close() error { return nil }

func failedStart(kind tournamentdomain.Kind, reason string) tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1] {
	failure := &tournamentevents.FailurePayloadV1{Operation: "StartTournament", Kind: kind, Reason: reason}
	return tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1]{Failure: &failure}
}

func assertNoMessage(t *testing.T, ch <-chan *message.Message) {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		t.Fatalf("unexpected message %s", msg.UUID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTournamentStartWorker(t *testing.T) {
	tournamentID := uuid.New()

	t.Run("publishes started", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus(discardLogger())
		defer bus.Close()
		started := subscribe(t, bus, tournamentevents.StartedV1)

		starter := &fakeStarter{fn: func(p tournamentevents.StartRequestedPayloadV1) (tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1], error) {
			return tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1]{
				Success: &tournamentevents.StartedPayloadV1{TournamentID: *p.TournamentID, Name: "Friday Customs", TeamCount: 4},
			}, nil
		}}
		worker := NewTournamentStartWorker(starter, bus, discardLogger())
		require.NoError(t, worker.Work(context.Background(), startJob(tournamentID.String())))

		require.Len(t, starter.calls, 1)
		assert.Equal(t, tournamentID, *starter.calls[0].TournamentID)
		assert.Equal(t, "scheduler", starter.calls[0].RequestedBy)

		var got tournamentevents.StartedPayloadV1
		require.NoError(t, json.Unmarshal(next(t, started).Payload, &got))
		assert.Equal(t, 4, got.TeamCount)
	})

	t.Run("stale tournament is a logged no-op", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus(discardLogger())
		defer bus.Close()
		failed := subscribe(t, bus, tournamentevents.StartFailedV1)

		starter := &fakeStarter{fn: func(tournamentevents.StartRequestedPayloadV1) (tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1], error) {
			return failedStart(tournamentdomain.KindNoActiveTournament, "no active tournament"), nil
		}}
		worker := NewTournamentStartWorker(starter, bus, discardLogger())
		require.NoError(t, worker.Work(context.Background(), startJob(tournamentID.String())))

		require.Len(t, starter.calls, 1)
		assertNoMessage(t, failed)
	})

	t.Run("other failures are published", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus(discardLogger())
		defer bus.Close()
		failed := subscribe(t, bus, tournamentevents.StartFailedV1)

		starter := &fakeStarter{fn: func(tournamentevents.StartRequestedPayloadV1) (tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1], error) {
			return failedStart(tournamentdomain.KindNotEnoughTeams, "need at least 2 teams"), nil
		}}
		worker := NewTournamentStartWorker(starter, bus, discardLogger())
		require.NoError(t, worker.Work(context.Background(), startJob(tournamentID.String())))

		var got tournamentevents.FailurePayloadV1
		require.NoError(t, json.Unmarshal(next(t, failed).Payload, &got))
		assert.Equal(t, tournamentdomain.KindNotEnoughTeams, got.Kind)
	})

	t.Run("publish error after a successful start is not retried", func(t *testing.T) {
		starter := &fakeStarter{fn: func(p tournamentevents.StartRequestedPayloadV1) (tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1], error) {
			return tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1]{
				Success: &tournamentevents.StartedPayloadV1{TournamentID: *p.TournamentID, TeamCount: 2},
			}, nil
		}}
		publisher := &failingPublisher{err: errors.New("nats unavailable")}
		worker := NewTournamentStartWorker(starter, publisher, discardLogger())

		require.NoError(t, worker.Work(context.Background(), startJob(tournamentID.String())))
		assert.Equal(t, 1, publisher.attempts)
		assert.Len(t, starter.calls, 1)
	})

	t.Run("infrastructure errors are retried", func(t *testing.T) {
		starter := &fakeStarter{fn: func(tournamentevents.StartRequestedPayloadV1) (tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1], error) {
			return tournamentservice.TournamentResult[tournamentevents.StartedPayloadV1]{}, errors.New("panic recovered")
		}}
		worker := NewTournamentStartWorker(starter, nil, discardLogger())
		assert.EqualError(t, worker.Work(context.Background(), startJob(tournamentID.String())), "panic recovered")
	})

	t.Run("invalid id cancels the job", func(t *testing.T) {
		starter := &fakeStarter{}
		worker := NewTournamentStartWorker(starter, nil, discardLogger())
		err := worker.Work(context.Background(), startJob("not-a-uuid"))
		require.Error(t, err)
		assert.Empty(t, starter.calls)
	})
}
