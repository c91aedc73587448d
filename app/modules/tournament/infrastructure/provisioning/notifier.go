package tournamentprovisioning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	tournamentevents "github.com/axi1912/Easy-Customs/app/modules/tournament/events"
	"github.com/axi1912/Easy-Customs/app/observability"
	"github.com/axi1912/Easy-Customs/app/shared/handlerwrapper"
)

// Notifier publishes the side effects the chat front-end has to carry out:
// creating team channels, tearing everything down, refreshing the leaderboard.
type Notifier struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewNotifier creates a notifier publishing on publisher.
func NewNotifier(publisher message.Publisher, logger *slog.Logger) *Notifier {
	return &Notifier{publisher: publisher, logger: logger}
}

// TeamActivated asks the front-end to provision a team's category, channels and role.
func (n *Notifier) TeamActivated(ctx context.Context, payload tournamentevents.TeamActivatedPayloadV1) error {
	return n.publish(ctx, tournamentevents.TeamActivatedV1, payload, slog.String("team_id", payload.TeamID.String()))
}

// TournamentReset asks the front-end to remove every provisioned resource.
func (n *Notifier) TournamentReset(ctx context.Context, payload tournamentevents.TeardownRequestedPayloadV1) error {
	return n.publish(ctx, tournamentevents.TeardownRequestedV1, payload, slog.Int("teams", len(payload.Teams)))
}

func (n *Notifier) LeaderboardUpdated(ctx context.Context, payload tournamentevents.LeaderboardUpdatedPayloadV1) error {
	return n.publish(ctx, tournamentevents.LeaderboardUpdatedV1, payload, slog.Int("standings", len(payload.Standings)))
}

func (n *Notifier) publish(ctx context.Context, topic string, payload any, attrs ...any) error {
	result := handlerwrapper.Result{Topic: topic, Payload: payload}
	if correlationID := observability.CorrelationIDFromContext(ctx); correlationID != "" {
		result.Metadata = map[string]string{middleware.CorrelationIDMetadataKey: correlationID}
	}
	msg, err := handlerwrapper.NewResultMessage(nil, result)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	if err := n.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}

	n.logger.InfoContext(ctx, "Notification published",
		append([]any{
			slog.String("topic", topic),
			slog.String("message_id", msg.UUID),
			observability.CorrelationAttr(ctx),
		}, attrs...)...,
	)
	return nil
}
