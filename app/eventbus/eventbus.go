package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
)

// TopicMetadataKey names the metadata entry a message uses to pick its topic
// when it is published with an empty topic.
const TopicMetadataKey = "topic"

// ErrNoTopic is returned when neither the publish call nor the message names a topic.
var ErrNoTopic = errors.New("eventbus: message has no topic")

// EventBus is both ends of the transport the router and modules share.
type EventBus interface {
	message.Publisher
	message.Subscriber
	// Conn is the underlying NATS connection, nil for the in-memory bus.
	Conn() *nc.Conn
}

// Config describes the NATS transport.
type Config struct {
	URL        string
	JetStream  bool
	StreamName string
	Subjects   []string
	AckWait    time.Duration
}

type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	natsConn   *nc.Conn
	logger     *slog.Logger
}

// NewEventBus connects to NATS and returns a watermill publisher/subscriber pair.
// With JetStream enabled the configured stream is created or updated first.
func NewEventBus(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(time.Second),
		nc.MaxReconnects(-1),
		nc.ErrorHandler(func(_ *nc.Conn, s *nc.Subscription, err error) {
			if s != nil {
				logger.Error("NATS subscription error", slog.String("subject", s.Subject), slog.Any("error", err))
				return
			}
			logger.Error("NATS connection error", slog.Any("error", err))
		}),
	}

	natsConn, err := nc.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if cfg.JetStream {
		if err := EnsureStream(ctx, natsConn, cfg.StreamName, cfg.Subjects, logger); err != nil {
			natsConn.Close()
			return nil, err
		}
	}

	jsConfig := nats.JetStreamConfig{
		Disabled:      !cfg.JetStream,
		AutoProvision: false,
		SubscribeOptions: []nc.SubOpt{
			nc.DeliverNew(),
			nc.AckExplicit(),
		},
	}

	ackWait := cfg.AckWait
	if ackWait <= 0 {
		ackWait = 30 * time.Second
	}

	marshaler := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:               cfg.URL,
			Marshaler:         marshaler,
			NatsOptions:       options,
			JetStream:         jsConfig,
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:               cfg.URL,
			Unmarshaler:       marshaler,
			NatsOptions:       options,
			JetStream:         jsConfig,
			SubjectCalculator: nats.DefaultSubjectCalculator,
			CloseTimeout:      30 * time.Second,
			AckWaitTimeout:    ackWait,
		},
		wmLogger,
	)
	if err != nil {
		_ = publisher.Close()
		natsConn.Close()
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	logger.Info("NATS event bus ready",
		slog.String("url", cfg.URL),
		slog.Bool("jetstream", cfg.JetStream),
	)

	return &eventBus{
		publisher:  publisher,
		subscriber: subscriber,
		natsConn:   natsConn,
		logger:     logger,
	}, nil
}

// Publish sends msgs to topic. An empty topic routes each message by its
// TopicMetadataKey, which is how the router forwards handler results.
func (eb *eventBus) Publish(topic string, msgs ...*message.Message) error {
	return publishRouted(eb.publisher, eb.logger, topic, msgs)
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to topic", slog.String("topic", topic))
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return messages, nil
}

func (eb *eventBus) Conn() *nc.Conn { return eb.natsConn }

// Close closes the publisher, the subscriber and the NATS connection.
func (eb *eventBus) Close() error {
	var errs []error
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			eb.logger.Error("Error closing NATS publisher", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if eb.subscriber != nil {
		if err := eb.subscriber.Close(); err != nil {
			eb.logger.Error("Error closing NATS subscriber", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return errors.Join(errs...)
}

func publishRouted(pub message.Publisher, logger *slog.Logger, topic string, msgs []*message.Message) error {
	for _, msg := range msgs {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		target := topic
		if target == "" {
			target = msg.Metadata.Get(TopicMetadataKey)
		}
		if target == "" {
			return fmt.Errorf("%w (uuid %s)", ErrNoTopic, msg.UUID)
		}
		if err := pub.Publish(target, msg); err != nil {
			logger.Error("Failed to publish message",
				slog.String("topic", target),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to publish to %s: %w", target, err)
		}
		logger.Debug("Message published",
			slog.String("topic", target),
			slog.String("message_id", msg.UUID),
		)
	}
	return nil
}
