package tombola

import (
	"context"
	"fmt"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"
)

// FreezeRosterCommand locks the entrant list before the wheel spins: the
// online roster is snapshotted as the round's eligibility list and the
// session enters in_round.
type FreezeRosterCommand struct {
	Code string
}

func (c FreezeRosterCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	return nil
}

type FreezeRosterCommandHandler struct {
	sessions *SessionRepository
}

func NewFreezeRosterCommandHandler(sessions *SessionRepository) *FreezeRosterCommandHandler {
	return &FreezeRosterCommandHandler{sessions}
}

func (h *FreezeRosterCommandHandler) Handle(
	ctx context.Context,
	request FreezeRosterCommand,
) (core.Unit, error) {
	exists, err := h.sessions.Exists(ctx, request.Code)
	if err != nil {
		return core.Unit{}, err
	}
	if !exists {
		return core.Unit{}, core.NewNotFoundError("tombola")
	}

	_, err = h.sessions.Update(ctx, request.Code, func(s *domain.Session) error {
		s.Freeze()
		return nil
	})

	return core.Unit{}, err
}
