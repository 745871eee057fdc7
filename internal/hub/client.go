package hub

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// sendBufferSize bounds how far a slow connection may fall behind before
// deliveries to it are dropped.
const sendBufferSize = 64

type Client struct {
	UserID    int64
	SessionID int64

	conn   *websocket.Conn
	send   chan []byte
	pubsub *redis.PubSub
	ctx    context.Context
	cancel context.CancelFunc

	// view-scoped subscriptions, owned by the hub's mutex
	chatSub   *Subscription
	serverSub *Subscription
}

// HandleClient upgrades the request to a WebSocket and runs the connection
// until the peer goes away. It blocks for the lifetime of the connection.
func (h *Hub) HandleClient(w http.ResponseWriter, r *http.Request, userID int64) {
	h.sugar.Debugf("Connecting user ID [%d] to WebSocket", userID)

	sessionCookie, err := r.Cookie("session")
	if err != nil {
		h.sugar.Debug(err)
		switch {
		case errors.Is(err, http.ErrNoCookie):
			http.Error(w, "No session cookie was provided", http.StatusUnauthorized)
		default:
			http.Error(w, "Couldn't read session cookie", http.StatusInternalServerError)
		}
		return
	}

	sessionID, err := strconv.ParseInt(sessionCookie.Value, 10, 64)
	if err != nil {
		h.sugar.Error(err)
		http.Error(w, "Session cookie is in improper format", http.StatusBadRequest)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.sugar.Error(err)
		return
	}
	defer conn.Close()

	clientCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &Client{
		UserID:    userID,
		SessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		ctx:       clientCtx,
		cancel:    cancel,
	}

	var relayDone chan struct{}

	if !h.selfContained && h.redisClient != nil {
		pubsub := h.redisClient.Subscribe(clientCtx)
		client.pubsub = pubsub
		relayDone = make(chan struct{})

		// relay redis pub/sub frames into the send channel so the write
		// pump stays the only writer on the socket
		go func() {
			defer close(relayDone)
			msgCh := pubsub.Channel()
			for {
				select {
				case <-clientCtx.Done():
					return
				case msg, ok := <-msgCh:
					if !ok {
						return
					}
					select {
					case client.send <- []byte(msg.Payload):
					default:
						h.sugar.Warnf("Send buffer of session ID %d is full, skipping relayed delivery", sessionID)
					}
				}
			}
		}()
	}

	h.register(client)

	go client.writePump(h)

	// the read side only exists to detect disconnects; clients talk to the
	// server over the HTTP API
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			h.sugar.Debug(err)
			break
		}
	}

	// the relay must be stopped before unregister closes the send channel,
	// otherwise a frame still in flight would land on a closed channel
	cancel()
	if relayDone != nil {
		if err := client.pubsub.Close(); err != nil {
			h.sugar.Debug(err)
		}
		<-relayDone
	}

	h.unregister(client)
}

// writePump drains the send channel onto the socket. It exits when the send
// channel is closed by unregister.
func (c *Client) writePump(h *Hub) {
	for messageBytes := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, messageBytes)
		if err != nil {
			h.sugar.Debug(err)
			c.cancel()
			// keep draining so unregister's close never blocks a publisher
			for range c.send {
			}
			return
		}
	}
}
