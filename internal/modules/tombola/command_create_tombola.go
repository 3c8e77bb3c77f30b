package tombola

import (
	"context"
)

type CreateTombolaCommand struct{}

type CreateTombolaResponse struct {
	Code string
}

type CreateTombolaCommandHandler struct {
	sessions *SessionRepository
}

func NewCreateTombolaCommandHandler(sessions *SessionRepository) *CreateTombolaCommandHandler {
	return &CreateTombolaCommandHandler{sessions}
}

func (h *CreateTombolaCommandHandler) Handle(
	ctx context.Context,
	_ CreateTombolaCommand,
) (CreateTombolaResponse, error) {
	code, err := h.sessions.Create(ctx)
	if err != nil {
		return CreateTombolaResponse{}, err
	}

	return CreateTombolaResponse{Code: code}, nil
}
