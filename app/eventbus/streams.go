package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultStreamName and DefaultSubjects cover every tournament topic.
const DefaultStreamName = "tournament"

var DefaultSubjects = []string{"tournament.>"}

// EnsureStream creates the stream, or adds any missing subjects to an existing one.
func EnsureStream(ctx context.Context, conn *nc.Conn, name string, subjects []string, logger *slog.Logger) error {
	if name == "" {
		name = DefaultStreamName
	}
	if len(subjects) == 0 {
		subjects = DefaultSubjects
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	stream, err := js.Stream(ctx, name)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		if _, err := js.CreateStream(ctx, jetstream.StreamConfig{Name: name, Subjects: subjects}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}
		logger.Info("Created JetStream stream", slog.String("stream", name), slog.Any("subjects", subjects))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check stream %s: %w", name, err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	cfg := info.Config
	updated := false
	for _, subject := range subjects {
		if !slices.Contains(cfg.Subjects, subject) {
			cfg.Subjects = append(cfg.Subjects, subject)
			updated = true
		}
	}
	if !updated {
		logger.Info("JetStream stream already configured", slog.String("stream", name))
		return nil
	}
	if _, err := js.UpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to update stream %s: %w", name, err)
	}
	logger.Info("Updated JetStream stream subjects", slog.String("stream", name), slog.Any("subjects", cfg.Subjects))
	return nil
}
