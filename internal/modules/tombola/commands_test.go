package tombola

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jacquesbh/tombola/internal/modules/core"
	"github.com/jacquesbh/tombola/internal/modules/realtime"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type commandFixture struct {
	sessions *SessionRepository
	hub      *realtime.Hub
	notifier *realtime.Notifier
}

func newCommandFixture() commandFixture {
	logger := zap.NewNop()
	hub := realtime.NewHub(logger)

	return commandFixture{
		sessions: newTestRepository(),
		hub:      hub,
		notifier: realtime.NewNotifier(hub, logger),
	}
}

func (f commandFixture) createSession(t *testing.T) string {
	t.Helper()

	code, err := f.sessions.Create(context.Background())
	require.NoError(t, err)

	return code
}

func (f commandFixture) join(t *testing.T, code, firstName, lastName, email string) domain.Participant {
	t.Helper()

	handler := NewJoinTombolaCommandHandler(f.sessions, f.notifier)
	response, err := handler.Handle(context.Background(), JoinTombolaCommand{
		Code:      code,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	})
	require.NoError(t, err)

	return response.Player
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()

	var commandErr core.CommandError
	require.ErrorAs(t, err, &commandErr)
	require.Equal(t, 404, commandErr.StatusCode)
}

func Test_JoinTombola_Assigns_Unique_IDs_And_Publishes_Player_Joined(t *testing.T) {
	fixture := newCommandFixture()
	code := fixture.createSession(t)

	events, cancel := fixture.hub.Subscribe(realtime.BoardTopic(code))
	defer cancel()

	first := fixture.join(t, code, "Jean", "Martin", "jean@example.com")
	second := fixture.join(t, code, "Marie", "Dubois", "marie@example.com")

	require.NotEqual(t, first.ID, second.ID)
	require.NotEmpty(t, first.GravatarURL)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(<-events, &event))
	require.Equal(t, "player_joined", event["type"])
	require.Equal(t, float64(1), event["totalPlayers"])
}

func Test_JoinTombola_Returns_404_For_Unknown_Codes(t *testing.T) {
	fixture := newCommandFixture()

	handler := NewJoinTombolaCommandHandler(fixture.sessions, fixture.notifier)
	_, err := handler.Handle(context.Background(), JoinTombolaCommand{
		Code:      "XXXXXX",
		FirstName: "Jean",
		LastName:  "Martin",
		Email:     "jean@example.com",
	})

	requireNotFound(t, err)
}

func Test_JoinTombola_Reconnect_Does_Not_Republish(t *testing.T) {
	fixture := newCommandFixture()
	code := fixture.createSession(t)

	player := fixture.join(t, code, "Jean", "Martin", "jean@example.com")

	events, cancel := fixture.hub.Subscribe(realtime.BoardTopic(code))
	defer cancel()

	handler := NewJoinTombolaCommandHandler(fixture.sessions, fixture.notifier)
	response, err := handler.Handle(context.Background(), JoinTombolaCommand{
		Code:      code,
		FirstName: "Jean",
		LastName:  "Martin",
		Email:     "jean@example.com",
		PlayerID:  player.ID,
	})
	require.NoError(t, err)
	require.Equal(t, player.ID, response.Player.ID)

	select {
	case <-events:
		t.Fatal("reconnect must not publish player_joined")
	default:
	}
}

func Test_Heartbeat_Returns_404_For_Unknown_Session_Or_Player(t *testing.T) {
	fixture := newCommandFixture()
	handler := NewHeartbeatCommandHandler(fixture.sessions)

	_, err := handler.Handle(context.Background(), HeartbeatCommand{Code: "XXXXXX", PlayerID: "unknown"})
	requireNotFound(t, err)

	code := fixture.createSession(t)
	_, err = handler.Handle(context.Background(), HeartbeatCommand{Code: code, PlayerID: "unknown"})
	requireNotFound(t, err)
}

func Test_Heartbeat_Refreshes_The_Participant(t *testing.T) {
	fixture := newCommandFixture()
	code := fixture.createSession(t)
	player := fixture.join(t, code, "Jean", "Martin", "jean@example.com")

	before := time.Now().Unix()

	handler := NewHeartbeatCommandHandler(fixture.sessions)
	_, err := handler.Handle(context.Background(), HeartbeatCommand{Code: code, PlayerID: player.ID})
	require.NoError(t, err)

	session, err := fixture.sessions.Load(context.Background(), code)
	require.NoError(t, err)

	refreshed, found := session.FindParticipant(player.ID)
	require.True(t, found)
	require.GreaterOrEqual(t, refreshed.LastHeartbeat, before)
}

func Test_PruneInactive_Reports_Newly_Offline_And_Publishes_Player_Left(t *testing.T) {
	fixture := newCommandFixture()
	code := fixture.createSession(t)
	player := fixture.join(t, code, "Jean", "Martin", "jean@example.com")

	// Backdate the heartbeat so the sweep sees a lapsed participant.
	_, err := fixture.sessions.Update(context.Background(), code, func(s *domain.Session) error {
		s.Roster[0].LastHeartbeat = time.Now().Add(-time.Minute).Unix()
		return nil
	})
	require.NoError(t, err)

	events, cancel := fixture.hub.Subscribe(realtime.BoardTopic(code))
	defer cancel()

	handler := NewPruneInactiveCommandHandler(fixture.sessions, fixture.notifier)
	response, err := handler.Handle(context.Background(), PruneInactiveCommand{
		Code:    code,
		Timeout: 6 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, []string{player.ID}, response.RemovedIDs)
	require.Equal(t, 0, response.TotalPlayers)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(<-events, &event))
	require.Equal(t, "player_left", event["type"])
	require.Equal(t, player.ID, event["playerId"])

	// The second sweep finds nothing new.
	response, err = handler.Handle(context.Background(), PruneInactiveCommand{
		Code:    code,
		Timeout: 6 * time.Second,
	})
	require.NoError(t, err)
	require.Empty(t, response.RemovedIDs)
}

func Test_SelectWinner_Requires_A_Frozen_Roster(t *testing.T) {
	fixture := newCommandFixture()
	code := fixture.createSession(t)

	freeze := NewFreezeRosterCommandHandler(fixture.sessions)
	_, err := freeze.Handle(context.Background(), FreezeRosterCommand{Code: code})
	require.NoError(t, err)

	handler := NewSelectWinnerCommandHandler(fixture.sessions, domain.UniformPicker{}, fixture.notifier)
	_, err = handler.Handle(context.Background(), SelectWinnerCommand{Code: code})

	var commandErr core.CommandError
	require.ErrorAs(t, err, &commandErr)
	require.Equal(t, 400, commandErr.StatusCode)

	// No history is written for a failed draw.
	session, err := fixture.sessions.Load(context.Background(), code)
	require.NoError(t, err)
	require.Empty(t, session.Winners)
}

func Test_SelectWinner_Publishes_Round_Started_For_A_Frozen_Participant(t *testing.T) {
	fixture := newCommandFixture()
	code := fixture.createSession(t)

	joined := map[string]bool{}
	joined[fixture.join(t, code, "Jean", "Martin", "jean@example.com").ID] = true
	joined[fixture.join(t, code, "Marie", "Dubois", "marie@example.com").ID] = true
	joined[fixture.join(t, code, "Paul", "Durand", "paul@example.com").ID] = true

	freeze := NewFreezeRosterCommandHandler(fixture.sessions)
	_, err := freeze.Handle(context.Background(), FreezeRosterCommand{Code: code})
	require.NoError(t, err)

	events, cancel := fixture.hub.Subscribe(realtime.BoardTopic(code))
	defer cancel()

	handler := NewSelectWinnerCommandHandler(fixture.sessions, domain.UniformPicker{}, fixture.notifier)
	response, err := handler.Handle(context.Background(), SelectWinnerCommand{Code: code})
	require.NoError(t, err)

	require.True(t, joined[response.Winner.ID])
	require.Equal(t, 1, response.Round)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(<-events, &event))
	require.Equal(t, "round_started", event["type"])
	require.Equal(t, response.Winner.ID, event["winnerId"])

	session, err := fixture.sessions.Load(context.Background(), code)
	require.NoError(t, err)
	require.Equal(t, domain.StateShowingWinner, session.State)
}

func Test_NotifyWinner_Publishes_To_The_Players_Topic(t *testing.T) {
	fixture := newCommandFixture()
	code := fixture.createSession(t)

	events, cancel := fixture.hub.Subscribe(realtime.PlayersTopic(code))
	defer cancel()

	handler := NewNotifyWinnerCommandHandler(fixture.sessions, fixture.notifier)
	_, err := handler.Handle(context.Background(), NotifyWinnerCommand{Code: code, WinnerID: "some-player"})
	require.NoError(t, err)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(<-events, &event))
	require.Equal(t, "winner_selected", event["type"])
	require.Equal(t, "some-player", event["winnerId"])
}

func Test_AdvanceRound_Increments_And_Publishes_To_Both_Topics(t *testing.T) {
	fixture := newCommandFixture()
	code := fixture.createSession(t)

	boardEvents, cancelBoard := fixture.hub.Subscribe(realtime.BoardTopic(code))
	defer cancelBoard()
	playerEvents, cancelPlayers := fixture.hub.Subscribe(realtime.PlayersTopic(code))
	defer cancelPlayers()

	handler := NewAdvanceRoundCommandHandler(fixture.sessions, fixture.notifier)
	response, err := handler.Handle(context.Background(), AdvanceRoundCommand{Code: code})
	require.NoError(t, err)
	require.Equal(t, 2, response.Round)

	var boardEvent map[string]interface{}
	require.NoError(t, json.Unmarshal(<-boardEvents, &boardEvent))
	require.Equal(t, "next_round_ready", boardEvent["type"])

	var playerEvent map[string]interface{}
	require.NoError(t, json.Unmarshal(<-playerEvents, &playerEvent))
	require.Equal(t, "round_ready", playerEvent["type"])

	session, err := fixture.sessions.Load(context.Background(), code)
	require.NoError(t, err)
	require.Equal(t, domain.StateWaiting, session.State)
}
