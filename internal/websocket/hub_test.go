package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"war-room-be/internal/pkg/logger"
)

func newTestHub() *Hub {
	h := NewHub(nil, logger.NewNopLogger())
	go h.Run()
	return h
}

func (h *Hub) clientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func registerTestClient(t *testing.T, h *Hub, userID uuid.UUID, buffer int) *Client {
	t.Helper()
	client := &Client{Hub: h, UserID: userID, Send: make(chan []byte, buffer)}
	h.register <- client
	require.Eventually(t, func() bool {
		return h.clientCount(userID) == 1
	}, time.Second, 5*time.Millisecond)
	return client
}

func TestHubBroadcastReachesEveryClient(t *testing.T) {
	h := newTestHub()
	a := registerTestClient(t, h, uuid.New(), 4)
	b := registerTestClient(t, h, uuid.New(), 4)

	h.Broadcast(Notice{Type: "system.broadcast", Message: "hello"})

	assert.Eventually(t, func() bool {
		return len(a.Send) == 1 && len(b.Send) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestHubSendTargetsOneUser(t *testing.T) {
	h := newTestHub()
	target := uuid.New()
	a := registerTestClient(t, h, target, 4)
	b := registerTestClient(t, h, uuid.New(), 4)

	h.Send(target, Notice{Type: "suggestions.ready"})

	assert.Eventually(t, func() bool {
		return len(a.Send) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, b.Send)
}

func TestHubBroadcastEvictsStalledClient(t *testing.T) {
	h := newTestHub()
	userID := uuid.New()
	client := registerTestClient(t, h, userID, 1)

	// Fill the buffer so the next delivery finds the client stalled.
	client.Send <- []byte("backlog")
	h.Broadcast(Notice{Type: "system.broadcast"})

	require.Eventually(t, func() bool {
		return h.clientCount(userID) == 0
	}, time.Second, 5*time.Millisecond)

	// The hub closed Send exactly once; the backlog drains first, then
	// the channel reports closed.
	<-client.Send
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHubDropsStalledClientFromConcurrentPathsOnce(t *testing.T) {
	h := newTestHub()
	userID := uuid.New()
	client := registerTestClient(t, h, userID, 1)

	client.Send <- []byte("backlog")

	// A stalled client can be flagged by several deliveries before the
	// hub processes the first removal. None of them may close Send or
	// block on the unregister handoff.
	for i := 0; i < 5; i++ {
		h.Broadcast(Notice{Type: "system.broadcast"})
		h.Send(userID, Notice{Type: "suggestions.ready"})
	}

	require.Eventually(t, func() bool {
		return h.clientCount(userID) == 0
	}, time.Second, 5*time.Millisecond)

	<-client.Send
	_, open := <-client.Send
	assert.False(t, open)
}
