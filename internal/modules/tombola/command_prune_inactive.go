package tombola

import (
	"context"
	"fmt"
	"time"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/realtime"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"
)

type PruneInactiveCommand struct {
	Code    string
	Timeout time.Duration
}

func (c PruneInactiveCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("invalid Timeout - %s", c.Timeout)
	}

	return nil
}

type PruneInactiveResponse struct {
	RemovedIDs   []string
	TotalPlayers int
}

type PruneInactiveCommandHandler struct {
	sessions *SessionRepository
	notifier *realtime.Notifier
}

func NewPruneInactiveCommandHandler(sessions *SessionRepository, notifier *realtime.Notifier) *PruneInactiveCommandHandler {
	return &PruneInactiveCommandHandler{sessions, notifier}
}

func (h *PruneInactiveCommandHandler) Handle(
	ctx context.Context,
	request PruneInactiveCommand,
) (PruneInactiveResponse, error) {
	exists, err := h.sessions.Exists(ctx, request.Code)
	if err != nil {
		return PruneInactiveResponse{}, err
	}
	if !exists {
		return PruneInactiveResponse{}, core.NewNotFoundError("tombola")
	}

	var removed []string
	session, err := h.sessions.Update(ctx, request.Code, func(s *domain.Session) error {
		removed = s.PruneInactive(time.Now(), request.Timeout)
		return nil
	})
	if err != nil {
		return PruneInactiveResponse{}, err
	}

	totalPlayers := len(session.OnlineRoster())

	for _, playerID := range removed {
		h.notifier.PlayerLeft(ctx, request.Code, playerID, totalPlayers)
	}

	return PruneInactiveResponse{RemovedIDs: removed, TotalPlayers: totalPlayers}, nil
}
