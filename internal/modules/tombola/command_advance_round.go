package tombola

import (
	"context"
	"fmt"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/realtime"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"
)

type AdvanceRoundCommand struct {
	Code string
}

func (c AdvanceRoundCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	return nil
}

type AdvanceRoundResponse struct {
	Round int
}

type AdvanceRoundCommandHandler struct {
	sessions *SessionRepository
	notifier *realtime.Notifier
}

func NewAdvanceRoundCommandHandler(sessions *SessionRepository, notifier *realtime.Notifier) *AdvanceRoundCommandHandler {
	return &AdvanceRoundCommandHandler{sessions, notifier}
}

func (h *AdvanceRoundCommandHandler) Handle(
	ctx context.Context,
	request AdvanceRoundCommand,
) (AdvanceRoundResponse, error) {
	exists, err := h.sessions.Exists(ctx, request.Code)
	if err != nil {
		return AdvanceRoundResponse{}, err
	}
	if !exists {
		return AdvanceRoundResponse{}, core.NewNotFoundError("tombola")
	}

	session, err := h.sessions.Update(ctx, request.Code, func(s *domain.Session) error {
		s.AdvanceRound()
		return nil
	})
	if err != nil {
		return AdvanceRoundResponse{}, err
	}

	h.notifier.NextRoundReady(ctx, request.Code, session.Round)

	return AdvanceRoundResponse{Round: session.Round}, nil
}
