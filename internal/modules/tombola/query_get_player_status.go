package tombola

import (
	"context"
	"fmt"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"
)

type GetPlayerStatusQuery struct {
	Code     string
	PlayerID string
}

func (q GetPlayerStatusQuery) Validate() error {
	if q.Code == "" || q.PlayerID == "" {
		return fmt.Errorf("code and playerId are required")
	}

	return nil
}

// PlayerStatusResponse is polled by the participant view as a fallback when
// the event stream is down.
type PlayerStatusResponse struct {
	Removed   bool         `json:"removed"`
	IsPending bool         `json:"isPending"`
	IsActive  bool         `json:"isActive"`
	IsOffline bool         `json:"isOffline"`
	State     domain.State `json:"state"`
}

type GetPlayerStatusQueryHandler struct {
	sessions *SessionRepository
}

func NewGetPlayerStatusQueryHandler(sessions *SessionRepository) *GetPlayerStatusQueryHandler {
	return &GetPlayerStatusQueryHandler{sessions}
}

func (h *GetPlayerStatusQueryHandler) Handle(
	ctx context.Context,
	request GetPlayerStatusQuery,
) (PlayerStatusResponse, error) {
	exists, err := h.sessions.Exists(ctx, request.Code)
	if err != nil {
		return PlayerStatusResponse{}, err
	}
	if !exists {
		return PlayerStatusResponse{}, core.NewNotFoundError("tombola")
	}

	session, err := h.sessions.Load(ctx, request.Code)
	if err != nil {
		return PlayerStatusResponse{}, err
	}

	player, found := session.FindParticipant(request.PlayerID)
	if !found {
		return PlayerStatusResponse{Removed: true, State: session.State}, nil
	}

	isActive := session.IsEligible(request.PlayerID)
	inRound := session.State == domain.StateInRound || session.State == domain.StateShowingWinner

	return PlayerStatusResponse{
		IsPending: inRound && !isActive,
		IsActive:  isActive,
		IsOffline: player.Status == domain.StatusOffline,
		State:     session.State,
	}, nil
}
