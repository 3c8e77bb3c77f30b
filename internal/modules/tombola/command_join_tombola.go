package tombola

import (
	"context"
	"fmt"
	"time"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/realtime"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"
)

type JoinTombolaCommand struct {
	Code      string
	FirstName string
	LastName  string
	Email     string

	// PlayerID is optional. A known id turns the submission into a
	// reconnect instead of creating a duplicate roster entry.
	PlayerID string
}

func (c JoinTombolaCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.FirstName == "" || c.LastName == "" || c.Email == "" {
		return fmt.Errorf("firstName, lastName and email are required")
	}

	return nil
}

type JoinTombolaResponse struct {
	Player       domain.Participant
	TotalPlayers int
}

type JoinTombolaCommandHandler struct {
	sessions *SessionRepository
	notifier *realtime.Notifier
}

func NewJoinTombolaCommandHandler(sessions *SessionRepository, notifier *realtime.Notifier) *JoinTombolaCommandHandler {
	return &JoinTombolaCommandHandler{sessions, notifier}
}

func (h *JoinTombolaCommandHandler) Handle(
	ctx context.Context,
	request JoinTombolaCommand,
) (JoinTombolaResponse, error) {
	exists, err := h.sessions.Exists(ctx, request.Code)
	if err != nil {
		return JoinTombolaResponse{}, err
	}
	if !exists {
		return JoinTombolaResponse{}, core.NewNotFoundError("tombola")
	}

	var player domain.Participant
	var created bool

	session, err := h.sessions.Update(ctx, request.Code, func(s *domain.Session) error {
		player, created = s.Join(
			request.FirstName,
			request.LastName,
			request.Email,
			request.PlayerID,
			time.Now(),
		)
		return nil
	})
	if err != nil {
		return JoinTombolaResponse{}, err
	}

	totalPlayers := len(session.OnlineRoster())

	if created {
		h.notifier.PlayerJoined(ctx, request.Code, player, totalPlayers)
	}

	return JoinTombolaResponse{Player: player, TotalPlayers: totalPlayers}, nil
}
