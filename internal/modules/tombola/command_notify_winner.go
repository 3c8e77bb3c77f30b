package tombola

import (
	"context"
	"fmt"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/realtime"
)

// NotifyWinnerCommand pushes the winner reveal to the participant views. The
// board triggers it once its own elimination animation has finished, which
// is why the reveal is a separate request and not part of SelectWinner.
type NotifyWinnerCommand struct {
	Code     string
	WinnerID string `json:"winnerId"`
}

func (c NotifyWinnerCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.WinnerID == "" {
		return fmt.Errorf("winner ID required")
	}

	return nil
}

type NotifyWinnerCommandHandler struct {
	sessions *SessionRepository
	notifier *realtime.Notifier
}

func NewNotifyWinnerCommandHandler(sessions *SessionRepository, notifier *realtime.Notifier) *NotifyWinnerCommandHandler {
	return &NotifyWinnerCommandHandler{sessions, notifier}
}

func (h *NotifyWinnerCommandHandler) Handle(
	ctx context.Context,
	request NotifyWinnerCommand,
) (core.Unit, error) {
	exists, err := h.sessions.Exists(ctx, request.Code)
	if err != nil {
		return core.Unit{}, err
	}
	if !exists {
		return core.Unit{}, core.NewNotFoundError("tombola")
	}

	session, err := h.sessions.Load(ctx, request.Code)
	if err != nil {
		return core.Unit{}, err
	}

	h.notifier.WinnerRevealed(ctx, request.Code, request.WinnerID, session.Round)

	return core.Unit{}, nil
}
