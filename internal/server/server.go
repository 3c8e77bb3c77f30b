package server

import (
	"net"
	"net/http"
	"strconv"

	"github.com/jacquesbh/tombola/internal/config"
	"github.com/jacquesbh/tombola/internal/kv"
	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/realtime"
	"github.com/jacquesbh/tombola/internal/modules/tombola"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"
	"github.com/jacquesbh/tombola/internal/modules/tombola/views"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

// HTTPServer acts as the composition root for the application.
type HTTPServer struct {
	server *http.Server
	store  kv.Store
}

func NewHTTPServer(config config.Config) (*HTTPServer, error) {
	store, err := kv.OpenBadgerStore(config.DataPath)
	if err != nil {
		return nil, err
	}

	handler, err := NewHandler(config, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	server := &http.Server{
		Addr:    net.JoinHostPort("", strconv.Itoa(config.Port)),
		Handler: handler,
	}

	return &HTTPServer{server: server, store: store}, nil
}

func (s *HTTPServer) Start() error {
	return s.server.ListenAndServe()
}

func (s *HTTPServer) Stop() error {
	if err := s.server.Close(); err != nil {
		return err
	}

	return s.store.Close()
}

// NewHandler wires the store, realtime hub and all command/query handlers
// into the HTTP routing table. It takes the store as an argument so tests
// can run the full surface against an in-memory one.
func NewHandler(config config.Config, store kv.Store) (http.Handler, error) {
	logger := config.Logger
	core.UseLogger(logger)

	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	picker := domain.UniformPicker{}
	sessions := tombola.NewSessionRepository(store, picker)

	hub := realtime.NewHub(logger)
	notifier := realtime.NewNotifier(hub, logger)
	tokens := realtime.NewTokenIssuer(config.SubscribeTokenSecret, config.SubscribeTokenTTL)

	// handler registration

	err := mediator.RegisterRequestHandler[tombola.CreateTombolaCommand, tombola.CreateTombolaResponse](
		tombola.NewCreateTombolaCommandHandler(sessions),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[tombola.JoinTombolaCommand, tombola.JoinTombolaResponse](
		tombola.NewJoinTombolaCommandHandler(sessions, notifier),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[tombola.HeartbeatCommand, core.Unit](
		tombola.NewHeartbeatCommandHandler(sessions),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[tombola.PruneInactiveCommand, tombola.PruneInactiveResponse](
		tombola.NewPruneInactiveCommandHandler(sessions, notifier),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[tombola.FreezeRosterCommand, core.Unit](
		tombola.NewFreezeRosterCommandHandler(sessions),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[tombola.SelectWinnerCommand, tombola.SelectWinnerResponse](
		tombola.NewSelectWinnerCommandHandler(sessions, picker, notifier),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[tombola.NotifyWinnerCommand, core.Unit](
		tombola.NewNotifyWinnerCommandHandler(sessions, notifier),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[tombola.AdvanceRoundCommand, tombola.AdvanceRoundResponse](
		tombola.NewAdvanceRoundCommandHandler(sessions, notifier),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[tombola.TombolaExistsQuery, bool](
		tombola.NewTombolaExistsQueryHandler(sessions),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[tombola.GetBoardQuery, tombola.BoardView](
		tombola.NewGetBoardQueryHandler(sessions, tokens, config.PublicBaseURL),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[tombola.GetOnlineViewQuery, tombola.OnlineView](
		tombola.NewGetOnlineViewQueryHandler(sessions, tokens),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[tombola.GetPlayerStatusQuery, tombola.PlayerStatusResponse](
		tombola.NewGetPlayerStatusQueryHandler(sessions),
	)
	if err != nil {
		return nil, err
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, err
	}

	tombolaHandler := tombola.NewTombolaHTTPHandler(renderer, logger, config.InactivityTimeout)

	// http

	r := chi.NewRouter()
	r.Use(core.CorrelationIDHTTPMiddleware)

	r.Get("/", tombolaHandler.HandleHome)

	r.Get("/board/{code}", tombolaHandler.HandleBoard)
	r.Post("/board/{code}/check-inactive", tombolaHandler.HandleCheckInactive)
	r.Post("/board/{code}/enter-fullscreen", tombolaHandler.HandleEnterFullscreen)
	r.Post("/board/{code}/start-round", tombolaHandler.HandleStartRound)
	r.Post("/board/{code}/notify-winner", tombolaHandler.HandleNotifyWinner)
	r.Post("/board/{code}/next-round", tombolaHandler.HandleNextRound)

	r.Get("/join/{code}", tombolaHandler.HandleJoinForm)
	r.Post("/join/{code}", tombolaHandler.HandleJoinSubmit)
	r.Get("/join/{code}/online/{playerId}", tombolaHandler.HandleOnline)
	r.Get("/join/{code}/status/{playerId}", tombolaHandler.HandlePlayerStatus)
	r.Post("/join/{code}/heartbeat/{playerId}", tombolaHandler.HandleHeartbeat)

	r.Method(http.MethodGet, "/events", &realtime.SubscribeHandler{
		Hub:    hub,
		Tokens: tokens,
		Logger: logger,
	})

	r.Handle("/static/*", views.StaticHandler())

	return r, nil
}
