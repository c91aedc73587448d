// Package handlerwrapper adapts typed handlers to watermill handler functions.
//
// A typed handler receives the decoded inbound payload and returns the
// results it wants published. The wrapper decodes, traces, records metrics,
// and turns results into messages whose destination travels in metadata.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/axi1912/Easy-Customs/app/eventbus"
	"github.com/axi1912/Easy-Customs/app/observability"
)

// Result is one outgoing event.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// Metrics is the subset of handler metrics the wrapper records. A nil value disables recording.
type Metrics interface {
	RecordHandlerAttempt(ctx context.Context, handler string)
	RecordHandlerFailure(ctx context.Context, handler string)
}

// WrapTransformingTyped decodes the message JSON into *T and publishes whatever the handler returns.
//
// A payload that cannot be decoded is logged and acked: redelivering it would
// fail the same way. Handler errors are returned so the router can retry.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics Metrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = msg.UUID
		}
		ctx = observability.ContextWithCorrelationID(ctx, correlationID)

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
			attribute.String("correlation_id", correlationID),
		))
		defer span.End()

		if metrics != nil {
			metrics.RecordHandlerAttempt(ctx, handlerName)
		}
		start := time.Now()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Dropping undecodable message",
				slog.String("handler", handlerName),
				slog.String("message_id", msg.UUID),
				observability.CorrelationAttr(ctx),
				observability.ErrorAttr(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode failed")
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				slog.String("handler", handlerName),
				slog.Duration("duration", time.Since(start)),
				observability.CorrelationAttr(ctx),
				observability.ErrorAttr(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := NewResultMessage(msg, r)
			if err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			out = append(out, m)
		}

		logger.DebugContext(ctx, "Handler completed",
			slog.String("handler", handlerName),
			slog.Int("published", len(out)),
			slog.Duration("duration", time.Since(start)),
			observability.CorrelationAttr(ctx),
		)
		return out, nil
	}
}

// NewResultMessage builds an outgoing message for r, carrying the correlation id of parent.
// parent may be nil for events that are not replies.
func NewResultMessage(parent *message.Message, r Result) (*message.Message, error) {
	if r.Topic == "" {
		return nil, fmt.Errorf("result has no topic: %w", eventbus.ErrNoTopic)
	}
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload for %s: %w", r.Topic, err)
	}

	out := message.NewMessage(watermill.NewUUID(), body)
	for k, v := range r.Metadata {
		out.Metadata.Set(k, v)
	}
	out.Metadata.Set(eventbus.TopicMetadataKey, r.Topic)

	if parent != nil {
		correlationID := middleware.MessageCorrelationID(parent)
		if correlationID == "" {
			correlationID = parent.UUID
		}
		middleware.SetCorrelationID(correlationID, out)
	} else {
		middleware.SetCorrelationID(out.UUID, out)
	}
	return out, nil
}
