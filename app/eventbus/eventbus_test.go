package eventbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestInMemoryBusRoutesByMetadata(t *testing.T) {
	bus := NewInMemoryEventBus(discardLogger())
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx, "tournament.team.joined.v1")
	require.NoError(t, err)

	msg := message.NewMessage("", []byte(`{"team":"Alpha"}`))
	msg.Metadata.Set(TopicMetadataKey, "tournament.team.joined.v1")
	require.NoError(t, bus.Publish("", msg))

	select {
	case got := <-messages:
		got.Ack()
		assert.Equal(t, `{"team":"Alpha"}`, string(got.Payload))
		assert.NotEmpty(t, got.UUID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for routed message")
	}
}

func TestInMemoryBusExplicitTopicWins(t *testing.T) {
	bus := NewInMemoryEventBus(discardLogger())
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx, "explicit")
	require.NoError(t, err)

	msg := message.NewMessage("id-1", []byte("x"))
	msg.Metadata.Set(TopicMetadataKey, "ignored")
	require.NoError(t, bus.Publish("explicit", msg))

	select {
	case got := <-messages:
		got.Ack()
		assert.Equal(t, "id-1", got.UUID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestPublishWithoutTopicFails(t *testing.T) {
	bus := NewInMemoryEventBus(discardLogger())
	defer bus.Close()

	err := bus.Publish("", message.NewMessage("id-2", []byte("x")))
	assert.True(t, errors.Is(err, ErrNoTopic), "expected ErrNoTopic, got %v", err)
	assert.Nil(t, bus.Conn())
}
