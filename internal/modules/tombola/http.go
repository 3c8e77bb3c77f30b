package tombola

import (
	"net/http"
	"time"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/tombola/views"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type TombolaHTTPHandler struct {
	views    *views.Renderer
	validate *validator.Validate
	logger   *zap.Logger

	// inactivityTimeout is how long a participant may miss heartbeats
	// before a board sweep flags them offline.
	inactivityTimeout time.Duration
}

func NewTombolaHTTPHandler(
	renderer *views.Renderer,
	logger *zap.Logger,
	inactivityTimeout time.Duration,
) *TombolaHTTPHandler {
	return &TombolaHTTPHandler{
		views:             renderer,
		validate:          validator.New(),
		logger:            logger,
		inactivityTimeout: inactivityTimeout,
	}
}

// HandleHome creates a fresh tombola and sends the organizer to its board.
func (h *TombolaHTTPHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[CreateTombolaCommand, CreateTombolaResponse](
		r.Context(),
		CreateTombolaCommand{},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	http.Redirect(w, r, "/board/"+response.Code, http.StatusFound)
}

func (h *TombolaHTTPHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	// The original board render doubles as an inactivity sweep, so stale
	// participants disappear at the latest when the organizer refreshes.
	if _, err := mediator.Send[PruneInactiveCommand, PruneInactiveResponse](
		r.Context(),
		PruneInactiveCommand{Code: code, Timeout: h.inactivityTimeout},
	); err != nil {
		h.writeHTMLError(w, r, err)
		return
	}

	view, err := mediator.Send[GetBoardQuery, BoardView](r.Context(), GetBoardQuery{Code: code})
	if err != nil {
		h.writeHTMLError(w, r, err)
		return
	}

	h.render(w, r, "board.html", view)
}

func (h *TombolaHTTPHandler) HandleCheckInactive(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[PruneInactiveCommand, PruneInactiveResponse](
		r.Context(),
		PruneInactiveCommand{Code: chi.URLParam(r, "code"), Timeout: h.inactivityTimeout},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, map[string]interface{}{
		"success": true,
		"removed": len(response.RemovedIDs),
	})
}

func (h *TombolaHTTPHandler) HandleEnterFullscreen(w http.ResponseWriter, r *http.Request) {
	_, err := mediator.Send[FreezeRosterCommand, core.Unit](
		r.Context(),
		FreezeRosterCommand{Code: chi.URLParam(r, "code")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, map[string]interface{}{"success": true})
}

func (h *TombolaHTTPHandler) HandleStartRound(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[SelectWinnerCommand, SelectWinnerResponse](
		r.Context(),
		SelectWinnerCommand{Code: chi.URLParam(r, "code")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, map[string]interface{}{
		"success": true,
		"winner":  response.Winner,
		"round":   response.Round,
	})
}

func (h *TombolaHTTPHandler) HandleNotifyWinner(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[NotifyWinnerCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}
	command.Code = chi.URLParam(r, "code")

	if _, err := mediator.Send[NotifyWinnerCommand, core.Unit](r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, map[string]interface{}{"success": true})
}

func (h *TombolaHTTPHandler) HandleNextRound(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[AdvanceRoundCommand, AdvanceRoundResponse](
		r.Context(),
		AdvanceRoundCommand{Code: chi.URLParam(r, "code")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, map[string]interface{}{
		"success": true,
		"round":   response.Round,
	})
}

type joinFormData struct {
	Code      string
	Error     string
	FirstName string
	LastName  string
	Email     string
}

type joinForm struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required,email"`
}

func (h *TombolaHTTPHandler) HandleJoinForm(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	exists, err := mediator.Send[TombolaExistsQuery, bool](r.Context(), TombolaExistsQuery{Code: code})
	if err != nil {
		h.writeHTMLError(w, r, err)
		return
	}
	if !exists {
		http.NotFound(w, r)
		return
	}

	h.render(w, r, "join.html", joinFormData{Code: code})
}

func (h *TombolaHTTPHandler) HandleJoinSubmit(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	exists, err := mediator.Send[TombolaExistsQuery, bool](r.Context(), TombolaExistsQuery{Code: code})
	if err != nil {
		h.writeHTMLError(w, r, err)
		return
	}
	if !exists {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	form := joinForm{
		FirstName: r.PostFormValue("firstName"),
		LastName:  r.PostFormValue("lastName"),
		Email:     r.PostFormValue("email"),
	}

	if message, ok := h.validateJoinForm(form); !ok {
		h.render(w, r, "join.html", joinFormData{
			Code:      code,
			Error:     message,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Email:     form.Email,
		})
		return
	}

	response, err := mediator.Send[JoinTombolaCommand, JoinTombolaResponse](
		r.Context(),
		JoinTombolaCommand{
			Code:      code,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Email:     form.Email,
			PlayerID:  r.PostFormValue("playerId"),
		},
	)
	if err != nil {
		h.writeHTMLError(w, r, err)
		return
	}

	http.Redirect(w, r, "/join/"+code+"/online/"+response.Player.ID, http.StatusFound)
}

// validateJoinForm maps validator failures onto the two inline messages the
// form shows: missing fields first, then email format.
func (h *TombolaHTTPHandler) validateJoinForm(form joinForm) (string, bool) {
	err := h.validate.Struct(form)
	if err == nil {
		return "", true
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return "Invalid submission", false
	}

	for _, fieldError := range validationErrors {
		if fieldError.Tag() == "required" {
			return "All fields are required", false
		}
	}

	return "Invalid email address", false
}

func (h *TombolaHTTPHandler) HandleOnline(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	view, err := mediator.Send[GetOnlineViewQuery, OnlineView](
		r.Context(),
		GetOnlineViewQuery{Code: code, PlayerID: chi.URLParam(r, "playerId")},
	)
	if err != nil {
		h.writeHTMLError(w, r, err)
		return
	}

	if !view.PlayerFound {
		http.Redirect(w, r, "/join/"+code, http.StatusFound)
		return
	}

	h.render(w, r, "online.html", view)
}

func (h *TombolaHTTPHandler) HandlePlayerStatus(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetPlayerStatusQuery, PlayerStatusResponse](
		r.Context(),
		GetPlayerStatusQuery{
			Code:     chi.URLParam(r, "code"),
			PlayerID: chi.URLParam(r, "playerId"),
		},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

func (h *TombolaHTTPHandler) HandleHeartbeat(w http.ResponseWriter, r *http.Request) {
	_, err := mediator.Send[HeartbeatCommand, core.Unit](
		r.Context(),
		HeartbeatCommand{
			Code:     chi.URLParam(r, "code"),
			PlayerID: chi.URLParam(r, "playerId"),
		},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteNoContent(w, r)
}

func (h *TombolaHTTPHandler) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	if err := h.views.Render(w, name, data); err != nil {
		core.LogError(r.Context(), "failed to render view", zap.String("view", name), zap.Error(err))
	}
}

// writeHTMLError keeps browser-facing routes on plain status pages instead
// of JSON errors.
func (h *TombolaHTTPHandler) writeHTMLError(w http.ResponseWriter, r *http.Request, err error) {
	if commandErr, ok := err.(core.CommandError); ok && commandErr.StatusCode == 404 {
		http.NotFound(w, r)
		return
	}

	h.logger.Error("request failed", zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
