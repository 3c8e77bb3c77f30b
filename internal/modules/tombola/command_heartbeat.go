package tombola

import (
	"context"
	"fmt"
	"time"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"
)

type HeartbeatCommand struct {
	Code     string
	PlayerID string
}

func (c HeartbeatCommand) Validate() error {
	if c.Code == "" || c.PlayerID == "" {
		return fmt.Errorf("code and playerId are required")
	}

	return nil
}

type HeartbeatCommandHandler struct {
	sessions *SessionRepository
}

func NewHeartbeatCommandHandler(sessions *SessionRepository) *HeartbeatCommandHandler {
	return &HeartbeatCommandHandler{sessions}
}

func (h *HeartbeatCommandHandler) Handle(
	ctx context.Context,
	request HeartbeatCommand,
) (core.Unit, error) {
	exists, err := h.sessions.Exists(ctx, request.Code)
	if err != nil {
		return core.Unit{}, err
	}
	if !exists {
		return core.Unit{}, core.NewNotFoundError("tombola")
	}

	found := false
	_, err = h.sessions.Update(ctx, request.Code, func(s *domain.Session) error {
		found = s.Heartbeat(request.PlayerID, time.Now())
		return nil
	})
	if err != nil {
		return core.Unit{}, err
	}

	if !found {
		return core.Unit{}, core.NewNotFoundError("player")
	}

	return core.Unit{}, nil
}
