package tombola

import (
	"context"
	"fmt"
)

type TombolaExistsQuery struct {
	Code string
}

func (q TombolaExistsQuery) Validate() error {
	if q.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", q.Code)
	}

	return nil
}

type TombolaExistsQueryHandler struct {
	sessions *SessionRepository
}

func NewTombolaExistsQueryHandler(sessions *SessionRepository) *TombolaExistsQueryHandler {
	return &TombolaExistsQueryHandler{sessions}
}

func (h *TombolaExistsQueryHandler) Handle(
	ctx context.Context,
	request TombolaExistsQuery,
) (bool, error) {
	return h.sessions.Exists(ctx, request.Code)
}
