package tombola

import (
	"context"
	"fmt"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/realtime"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"
)

type GetOnlineViewQuery struct {
	Code     string
	PlayerID string
}

func (q GetOnlineViewQuery) Validate() error {
	if q.Code == "" || q.PlayerID == "" {
		return fmt.Errorf("code and playerId are required")
	}

	return nil
}

// OnlineView backs the participant's waiting page. IsPending flags a
// participant who joined after the roster was frozen: they are in the room
// but not eligible until the next round. PlayerFound false means the browser
// holds a stale player id; the HTTP layer sends it back to the join form.
type OnlineView struct {
	Code           string
	PlayerFound    bool
	Player         domain.Participant
	IsPending      bool
	SubscribeTopic string
	SubscribeToken string
}

type GetOnlineViewQueryHandler struct {
	sessions *SessionRepository
	tokens   *realtime.TokenIssuer
}

func NewGetOnlineViewQueryHandler(sessions *SessionRepository, tokens *realtime.TokenIssuer) *GetOnlineViewQueryHandler {
	return &GetOnlineViewQueryHandler{sessions, tokens}
}

func (h *GetOnlineViewQueryHandler) Handle(
	ctx context.Context,
	request GetOnlineViewQuery,
) (OnlineView, error) {
	exists, err := h.sessions.Exists(ctx, request.Code)
	if err != nil {
		return OnlineView{}, err
	}
	if !exists {
		return OnlineView{}, core.NewNotFoundError("tombola")
	}

	session, err := h.sessions.Load(ctx, request.Code)
	if err != nil {
		return OnlineView{}, err
	}

	player, found := session.FindParticipant(request.PlayerID)
	if !found {
		return OnlineView{Code: request.Code}, nil
	}

	inRound := session.State == domain.StateInRound || session.State == domain.StateShowingWinner
	isPending := inRound && !session.IsEligible(request.PlayerID)

	topic := realtime.PlayersTopic(request.Code)
	token, err := h.tokens.Issue(topic)
	if err != nil {
		return OnlineView{}, fmt.Errorf("issue players subscribe token: %w", err)
	}

	return OnlineView{
		Code:           request.Code,
		PlayerFound:    true,
		Player:         player,
		IsPending:      isPending,
		SubscribeTopic: topic,
		SubscribeToken: token,
	}, nil
}
