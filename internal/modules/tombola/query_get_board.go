package tombola

import (
	"context"
	"encoding/base64"
	"fmt"
	"html/template"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/realtime"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"

	qrcode "github.com/skip2/go-qrcode"
)

type GetBoardQuery struct {
	Code string
}

func (q GetBoardQuery) Validate() error {
	if q.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", q.Code)
	}

	return nil
}

// BoardView is everything the board template needs: the roster to display
// for the current state, the winners history, the join QR code and the
// signed token that authorizes the browser to subscribe to the board topic.
type BoardView struct {
	Code    string
	JoinURL string

	// QRCodeDataURI is a data: URL; typed so the template does not filter
	// the scheme out.
	QRCodeDataURI template.URL
	Players        []domain.Participant
	Winners        []domain.WinnerRecord
	Round          int
	State          domain.State
	TotalPlayers   int
	SubscribeTopic string
	SubscribeToken string
}

type GetBoardQueryHandler struct {
	sessions      *SessionRepository
	tokens        *realtime.TokenIssuer
	publicBaseURL string
}

func NewGetBoardQueryHandler(
	sessions *SessionRepository,
	tokens *realtime.TokenIssuer,
	publicBaseURL string,
) *GetBoardQueryHandler {
	return &GetBoardQueryHandler{sessions, tokens, publicBaseURL}
}

func (h *GetBoardQueryHandler) Handle(
	ctx context.Context,
	request GetBoardQuery,
) (BoardView, error) {
	exists, err := h.sessions.Exists(ctx, request.Code)
	if err != nil {
		return BoardView{}, err
	}
	if !exists {
		return BoardView{}, core.NewNotFoundError("tombola")
	}

	session, err := h.sessions.Load(ctx, request.Code)
	if err != nil {
		return BoardView{}, err
	}

	joinURL := fmt.Sprintf("%s/join/%s", h.publicBaseURL, request.Code)

	qrPNG, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		return BoardView{}, fmt.Errorf("generate join QR code: %w", err)
	}

	topic := realtime.BoardTopic(request.Code)
	token, err := h.tokens.Issue(topic)
	if err != nil {
		return BoardView{}, fmt.Errorf("issue board subscribe token: %w", err)
	}

	players := session.DisplayRoster()

	return BoardView{
		Code:           request.Code,
		JoinURL:        joinURL,
		QRCodeDataURI:  template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG)),
		Players:        players,
		Winners:        session.Winners,
		Round:          session.Round,
		State:          session.State,
		TotalPlayers:   len(players),
		SubscribeTopic: topic,
		SubscribeToken: token,
	}, nil
}
