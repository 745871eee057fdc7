// Package hub is the live fan-out side of the chat core: it tracks which
// connected session is watching which channel and pushes freshly persisted
// messages to them. Delivery is best-effort, at most once. Persisting a
// message and publishing it are not atomic; a client that misses a live
// event catches up through paginated fetches.
package hub

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Hub owns the subscription registry and the client map. It is constructed
// once in main and handed to the handler layer; there is no package-level
// instance.
type Hub struct {
	sugar         *zap.SugaredLogger
	redisClient   *redis.Client
	selfContained bool

	mu      sync.Mutex
	clients map[int64]*Client       // sessionID -> connection
	subs    map[Key][]*Subscription // registration order preserved
}

var redisCtx = context.Background()

// New creates a Hub. In self-contained mode fan-out is in-process. Otherwise
// frames travel through Redis pub/sub; passing a nil redisClient there puts
// the hub into a degraded state where Publish is a no-op and clients fall
// back to polling.
func New(sugar *zap.SugaredLogger, redisClient *redis.Client, selfContained bool) *Hub {
	return &Hub{
		sugar:         sugar,
		redisClient:   redisClient,
		selfContained: selfContained,
		clients:       make(map[int64]*Client),
		subs:          make(map[Key][]*Subscription),
	}
}

// Degraded reports whether the broadcast transport is unavailable.
func (h *Hub) Degraded() bool {
	return !h.selfContained && h.redisClient == nil
}

func (h *Hub) register(client *Client) {
	h.sugar.Debugf("Adding user ID [%d] to clients as session ID [%d]", client.UserID, client.SessionID)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.SessionID] = client
}

// unregister drops the client and all of its subscriptions. The send channel
// is closed under the lock, so no publish can race a send afterwards.
func (h *Hub) unregister(client *Client) {
	h.sugar.Debugf("Removing session ID [%d] from clients", client.SessionID)

	h.mu.Lock()
	defer h.mu.Unlock()

	existing, exists := h.clients[client.SessionID]
	if !exists || existing != client {
		return
	}
	delete(h.clients, client.SessionID)

	for key := range h.subs {
		h.removeClientLocked(key, client)
	}

	close(client.send)
}

// GetClient returns the connected client for a session, if any.
func (h *Hub) GetClient(sessionID int64) (*Client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[sessionID]
	return client, exists
}
