package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func Test_Hub_Delivers_To_Every_Subscriber_Of_The_Topic(t *testing.T) {
	hub := NewHub(zap.NewNop())

	first, cancelFirst := hub.Subscribe("tombola/ABC123/board")
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe("tombola/ABC123/board")
	defer cancelSecond()
	other, cancelOther := hub.Subscribe("tombola/ABC123/players")
	defer cancelOther()

	err := hub.Publish(context.Background(), "tombola/ABC123/board", map[string]string{"type": "ping"})
	require.NoError(t, err)

	require.JSONEq(t, `{"type":"ping"}`, string(<-first))
	require.JSONEq(t, `{"type":"ping"}`, string(<-second))

	select {
	case <-other:
		t.Fatal("players topic must not receive board messages")
	default:
	}
}

func Test_Hub_Cancel_Removes_The_Subscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())

	_, cancel := hub.Subscribe("tombola/ABC123/board")
	require.Equal(t, 1, hub.SubscriberCount("tombola/ABC123/board"))

	cancel()
	require.Equal(t, 0, hub.SubscriberCount("tombola/ABC123/board"))
}

func Test_Hub_Publish_Does_Not_Block_On_A_Full_Subscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())

	messages, cancel := hub.Subscribe("tombola/ABC123/board")
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = hub.Publish(context.Background(), "tombola/ABC123/board", map[string]int{"seq": i})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	require.NotEmpty(t, <-messages)
}

func Test_TokenIssuer_Round_Trips_Topic_Claims(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("tombola/ABC123/board")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.True(t, claims.AllowsTopic("tombola/ABC123/board"))
	require.False(t, claims.AllowsTopic("tombola/ABC123/players"))
	require.False(t, claims.AllowsTopic("tombola/XYZ789/board"))
}

func Test_TokenIssuer_Rejects_Foreign_And_Expired_Tokens(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	foreign, err := NewTokenIssuer("other-secret", time.Hour).Issue("tombola/ABC123/board")
	require.NoError(t, err)
	_, err = issuer.Verify(foreign)
	require.Error(t, err)

	expired, err := NewTokenIssuer("test-secret", -time.Minute).Issue("tombola/ABC123/board")
	require.NoError(t, err)
	_, err = issuer.Verify(expired)
	require.Error(t, err)

	_, err = issuer.Verify("not-a-token")
	require.Error(t, err)
}

func newSubscribeServer(t *testing.T) (*Hub, *TokenIssuer, *httptest.Server) {
	t.Helper()

	logger := zap.NewNop()
	hub := NewHub(logger)
	issuer := NewTokenIssuer("test-secret", time.Hour)

	server := httptest.NewServer(&SubscribeHandler{Hub: hub, Tokens: issuer, Logger: logger})
	t.Cleanup(server.Close)

	return hub, issuer, server
}

func Test_SubscribeHandler_Requires_A_Topic_And_A_Matching_Token(t *testing.T) {
	_, issuer, server := newSubscribeServer(t)

	response, err := http.Get(server.URL + "/events")
	require.NoError(t, err)
	defer response.Body.Close()
	require.Equal(t, http.StatusBadRequest, response.StatusCode)

	response, err = http.Get(server.URL + "/events?topic=tombola/ABC123/board&authorization=garbage")
	require.NoError(t, err)
	defer response.Body.Close()
	require.Equal(t, http.StatusUnauthorized, response.StatusCode)

	token, err := issuer.Issue("tombola/ABC123/players")
	require.NoError(t, err)

	response, err = http.Get(server.URL + "/events?topic=tombola/ABC123/board&authorization=" + token)
	require.NoError(t, err)
	defer response.Body.Close()
	require.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

func Test_SubscribeHandler_Streams_Published_Events(t *testing.T) {
	hub, issuer, server := newSubscribeServer(t)

	token, err := issuer.Issue("tombola/ABC123/board")
	require.NoError(t, err)

	response, err := http.Get(server.URL + "/events?topic=tombola/ABC123/board&authorization=" + token)
	require.NoError(t, err)
	defer response.Body.Close()

	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Equal(t, "text/event-stream", response.Header.Get("Content-Type"))

	// The subscription is registered before the handler writes its headers,
	// so once the response arrives the hub is safe to publish to.
	err = hub.Publish(context.Background(), "tombola/ABC123/board", map[string]string{"type": "player_joined"})
	require.NoError(t, err)

	reader := bufio.NewReader(response.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "))
	require.JSONEq(t, `{"type":"player_joined"}`, strings.TrimPrefix(strings.TrimSpace(line), "data: "))
}
