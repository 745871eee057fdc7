package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Key identifies one broadcast channel of the registry. The chat key doubles
// as the event name the web client listens for, matching the wire contract
// `chat:<id>:messages`.
type Key string

// ChatKey carries message events of a channel or a conversation (their ids
// come from the same snowflake space, so the keys can't collide).
func ChatKey(id int64) Key {
	return Key(fmt.Sprintf("chat:%d:messages", id))
}

// ServerKey carries channel list events of a server.
func ServerKey(id int64) Key {
	return Key(fmt.Sprintf("server:%d", id))
}

// ServerListKey carries events about a server's existence for everyone whose
// server list contains it.
func ServerListKey(id int64) Key {
	return Key(fmt.Sprintf("server_list:%d", id))
}

// Subscription is the handle returned by Subscribe. Unsubscribing it twice
// is a no-op, as is unsubscribing after the owning connection closed.
type Subscription struct {
	Key    Key
	client *Client
	active bool
}

// Subscribe registers the session's connection for a key. Idempotent per
// key/session pair: re-subscribing returns the existing handle.
func (h *Hub) Subscribe(key Key, sessionID int64) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.subscribeLocked(key, sessionID)
}

func (h *Hub) subscribeLocked(key Key, sessionID int64) (*Subscription, error) {
	client, exists := h.clients[sessionID]
	if !exists {
		return nil, fmt.Errorf("session ID [%d] tried to subscribe to [%s] but the session isn't connected to hub", sessionID, key)
	}

	for _, sub := range h.subs[key] {
		if sub.client == client {
			return sub, nil
		}
	}

	sub := &Subscription{Key: key, client: client, active: true}
	h.subs[key] = append(h.subs[key], sub)

	if !h.selfContained && h.redisClient != nil {
		err := client.pubsub.Subscribe(client.ctx, string(key))
		if err != nil {
			return sub, err
		}
	}

	h.sugar.Debugf("Session ID %d subscribed to %s", sessionID, key)
	return sub, nil
}

// Unsubscribe removes the registration. Safe to call any number of times.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.unsubscribeLocked(sub)
}

func (h *Hub) unsubscribeLocked(sub *Subscription) {
	if !sub.active {
		return
	}
	sub.active = false

	subs := h.subs[sub.Key]
	for i := range subs {
		if subs[i] == sub {
			// shift instead of swap so remaining subscribers keep their
			// registration order
			h.subs[sub.Key] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(h.subs[sub.Key]) == 0 {
		delete(h.subs, sub.Key)
	}

	if sub.client.chatSub == sub {
		sub.client.chatSub = nil
	}
	if sub.client.serverSub == sub {
		sub.client.serverSub = nil
	}

	if !h.selfContained && h.redisClient != nil {
		err := sub.client.pubsub.Unsubscribe(sub.client.ctx, string(sub.Key))
		if err != nil {
			h.sugar.Error(err)
		}
	}
}

func (h *Hub) removeClientLocked(key Key, client *Client) {
	subs := h.subs[key]
	for i := range subs {
		if subs[i].client == client {
			subs[i].active = false
			h.subs[key] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(h.subs[key]) == 0 {
		delete(h.subs, key)
	}
}

// SwitchChat moves the session's single chat-view subscription to the given
// channel or conversation: the client only ever watches one chat at a time.
func (h *Hub) SwitchChat(sessionID int64, chatID int64) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[sessionID]
	if !exists {
		return nil, fmt.Errorf("session ID [%d] tried to switch chat but the session isn't connected to hub", sessionID)
	}

	key := ChatKey(chatID)
	if client.chatSub != nil {
		if client.chatSub.Key == key {
			return client.chatSub, nil
		}
		h.unsubscribeLocked(client.chatSub)
	}

	sub, err := h.subscribeLocked(key, sessionID)
	if err != nil {
		return nil, err
	}
	client.chatSub = sub
	return sub, nil
}

// SwitchServer does the same for the session's server-view subscription.
func (h *Hub) SwitchServer(sessionID int64, serverID int64) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[sessionID]
	if !exists {
		return nil, fmt.Errorf("session ID [%d] tried to switch server but the session isn't connected to hub", sessionID)
	}

	key := ServerKey(serverID)
	if client.serverSub != nil {
		if client.serverSub.Key == key {
			return client.serverSub, nil
		}
		h.unsubscribeLocked(client.serverSub)
	}

	sub, err := h.subscribeLocked(key, sessionID)
	if err != nil {
		return nil, err
	}
	client.serverSub = sub
	return sub, nil
}

// frame prepends the event name so the client can route the payload without
// parsing the JSON first.
func frame(event string, payload any) ([]byte, error) {
	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(event) + 1 + len(jsonBytes))
	buf.WriteString(event)
	buf.WriteByte('\n')
	buf.Write(jsonBytes)
	return buf.Bytes(), nil
}

// Publish delivers the event to every connection currently subscribed to
// key, in registration order. The mutex is held for the whole fan-out, so
// concurrent publishes to the same key never interleave mid-delivery. A
// recipient whose send buffer is full is logged and skipped; its
// subscription stays until it unsubscribes or disconnects. In degraded mode
// (Redis transport unavailable) this is a logged no-op.
func (h *Hub) Publish(key Key, event string, payload any) error {
	messageBytes, err := frame(event, payload)
	if err != nil {
		return err
	}

	if !h.selfContained {
		if h.redisClient == nil {
			h.sugar.Warnf("Hub is degraded, dropping publish to %s", key)
			return nil
		}
		return h.redisClient.Publish(redisCtx, string(key), string(messageBytes)).Err()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs[key] {
		select {
		case sub.client.send <- messageBytes:
		default:
			h.sugar.Warnf("Send buffer of session ID %d is full, skipping delivery on %s", sub.client.SessionID, key)
		}
	}

	return nil
}

// PublishMessage is the common case: the event name for chat traffic is the
// chat key itself.
func (h *Hub) PublishMessage(chatID int64, message any) error {
	key := ChatKey(chatID)
	return h.Publish(key, string(key), message)
}
