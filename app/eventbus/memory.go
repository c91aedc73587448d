package eventbus

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

type memoryBus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

// NewInMemoryEventBus runs the bus in-process. Used when no NATS URL is
// configured and in tests.
func NewInMemoryEventBus(logger *slog.Logger) EventBus {
	return &memoryBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

func (b *memoryBus) Publish(topic string, msgs ...*message.Message) error {
	return publishRouted(b.pubsub, b.logger, topic, msgs)
}

func (b *memoryBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *memoryBus) Conn() *nc.Conn { return nil }

func (b *memoryBus) Close() error { return b.pubsub.Close() }
