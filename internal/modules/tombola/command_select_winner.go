package tombola

import (
	"context"
	"fmt"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/realtime"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"
)

type SelectWinnerCommand struct {
	Code string
}

func (c SelectWinnerCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	return nil
}

type SelectWinnerResponse struct {
	Winner domain.Participant
	Round  int
}

type SelectWinnerCommandHandler struct {
	sessions *SessionRepository
	picker   domain.Picker
	notifier *realtime.Notifier
}

func NewSelectWinnerCommandHandler(
	sessions *SessionRepository,
	picker domain.Picker,
	notifier *realtime.Notifier,
) *SelectWinnerCommandHandler {
	return &SelectWinnerCommandHandler{sessions, picker, notifier}
}

func (h *SelectWinnerCommandHandler) Handle(
	ctx context.Context,
	request SelectWinnerCommand,
) (SelectWinnerResponse, error) {
	exists, err := h.sessions.Exists(ctx, request.Code)
	if err != nil {
		return SelectWinnerResponse{}, err
	}
	if !exists {
		return SelectWinnerResponse{}, core.NewNotFoundError("tombola")
	}

	var winner domain.Participant
	var drawn bool

	session, err := h.sessions.Update(ctx, request.Code, func(s *domain.Session) error {
		winner, drawn = s.SelectWinner(h.picker)
		return nil
	})
	if err != nil {
		return SelectWinnerResponse{}, err
	}

	if !drawn {
		return SelectWinnerResponse{}, core.NewCommandError(
			400,
			fmt.Errorf("need at least 1 player"),
		)
	}

	h.notifier.RoundStarted(ctx, request.Code, winner.ID, session.Round)

	return SelectWinnerResponse{Winner: winner, Round: session.Round}, nil
}
