// Package realtime pushes tombola lifecycle events to subscribed browsers.
// Publishing goes through the Publisher interface so callers never depend on
// the transport; the in-process Hub is the default implementation and doubles
// as the server-sent-events endpoint the browser clients connect to.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

func BoardTopic(code string) string {
	return fmt.Sprintf("tombola/%s/board", code)
}

func PlayersTopic(code string) string {
	return fmt.Sprintf("tombola/%s/players", code)
}

var _ Publisher = (*Hub)(nil)

// Hub fans published messages out to every subscriber of a topic. Delivery
// is best-effort: a subscriber that cannot keep up loses messages rather
// than blocking the publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan []byte]struct{}

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan []byte]struct{}),
		logger:      logger,
	}
}

func (h *Hub) Publish(_ context.Context, topic string, payload interface{}) error {
	message, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for topic %s: %w", topic, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for subscriber := range h.subscribers[topic] {
		select {
		case subscriber <- message:
		default:
			h.logger.Warn("dropping message for slow subscriber", zap.String("topic", topic))
		}
	}

	return nil
}

// Subscribe registers a new subscriber for topic. The returned cancel func
// must be called when the subscriber goes away.
func (h *Hub) Subscribe(topic string) (<-chan []byte, func()) {
	messages := make(chan []byte, 16)

	h.mu.Lock()
	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan []byte]struct{})
	}
	h.subscribers[topic][messages] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers[topic], messages)
		if len(h.subscribers[topic]) == 0 {
			delete(h.subscribers, topic)
		}
		h.mu.Unlock()
	}

	return messages, cancel
}

// SubscriberCount reports the current number of subscribers for topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// SubscribeHandler is the browser-facing SSE endpoint. A browser presents
// the short-lived token its view was rendered with; the token's subscribe
// claim must cover the requested topic exactly.
type SubscribeHandler struct {
	Hub    *Hub
	Tokens *TokenIssuer
	Logger *zap.Logger
}

func (h *SubscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		http.Error(w, "missing topic", http.StatusBadRequest)
		return
	}

	claims, err := h.Tokens.Verify(r.URL.Query().Get("authorization"))
	if err != nil {
		http.Error(w, "invalid subscribe token", http.StatusUnauthorized)
		return
	}

	if !claims.AllowsTopic(topic) {
		http.Error(w, "token does not allow topic", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	messages, cancel := h.Hub.Subscribe(topic)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case message := <-messages:
			if _, err := fmt.Fprintf(w, "data: %s\n\n", message); err != nil {
				h.Logger.Debug("subscriber write failed", zap.String("topic", topic), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}
