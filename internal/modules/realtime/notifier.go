package realtime

import (
	"context"

	"go.uber.org/zap"
)

// Notifier formats lifecycle events and publishes them to the board and
// player topics of a session. Every publish is fire-and-forget: by the time
// a notification goes out the state change already committed, so failures
// are logged and swallowed, never surfaced to the request.
type Notifier struct {
	publisher Publisher
	logger    *zap.Logger
}

func NewNotifier(publisher Publisher, logger *zap.Logger) *Notifier {
	return &Notifier{publisher: publisher, logger: logger}
}

func (n *Notifier) PlayerJoined(ctx context.Context, code string, player interface{}, totalPlayers int) {
	n.publish(ctx, BoardTopic(code), map[string]interface{}{
		"type":         "player_joined",
		"player":       player,
		"totalPlayers": totalPlayers,
	})
}

func (n *Notifier) PlayerLeft(ctx context.Context, code, playerID string, totalPlayers int) {
	n.publish(ctx, BoardTopic(code), map[string]interface{}{
		"type":         "player_left",
		"playerId":     playerID,
		"totalPlayers": totalPlayers,
	})
}

func (n *Notifier) RoundStarted(ctx context.Context, code, winnerID string, round int) {
	n.publish(ctx, BoardTopic(code), map[string]interface{}{
		"type":     "round_started",
		"winnerId": winnerID,
		"round":    round,
	})
}

func (n *Notifier) WinnerRevealed(ctx context.Context, code, winnerID string, round int) {
	n.publish(ctx, PlayersTopic(code), map[string]interface{}{
		"type":     "winner_selected",
		"winnerId": winnerID,
		"round":    round,
	})
}

func (n *Notifier) NextRoundReady(ctx context.Context, code string, round int) {
	n.publish(ctx, BoardTopic(code), map[string]interface{}{
		"type":  "next_round_ready",
		"round": round,
	})
	n.publish(ctx, PlayersTopic(code), map[string]interface{}{
		"type":  "round_ready",
		"round": round,
	})
}

func (n *Notifier) publish(ctx context.Context, topic string, payload map[string]interface{}) {
	if err := n.publisher.Publish(ctx, topic, payload); err != nil {
		n.logger.Error("realtime publish failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}
