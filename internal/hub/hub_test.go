package hub

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestHub() *Hub {
	return New(zap.NewNop().Sugar(), nil, true)
}

// connectTestClient registers a session without a real WebSocket; deliveries
// land in the returned client's send channel.
func connectTestClient(h *Hub, userID int64, sessionID int64) *Client {
	client := &Client{
		UserID:    userID,
		SessionID: sessionID,
		send:      make(chan []byte, sendBufferSize),
	}
	h.register(client)
	return client
}

func receivedFrame(t *testing.T, client *Client) string {
	t.Helper()
	select {
	case messageBytes := <-client.send:
		return string(messageBytes)
	default:
		t.Fatal("expected a delivered frame, send channel is empty")
		return ""
	}
}

func TestSubscribeIsIdempotent(t *testing.T) {
	h := newTestHub()
	connectTestClient(h, 1, 100)

	first, err := h.Subscribe(ChatKey(5), 100)
	if err != nil {
		t.Fatal(err)
	}

	second, err := h.Subscribe(ChatKey(5), 100)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("re-subscribing the same session to the same key returned a new handle")
	}
	if len(h.subs[ChatKey(5)]) != 1 {
		t.Errorf("registry holds %d subscriptions, want 1", len(h.subs[ChatKey(5)]))
	}
}

func TestSubscribeUnknownSession(t *testing.T) {
	h := newTestHub()

	_, err := h.Subscribe(ChatKey(5), 100)
	if err == nil {
		t.Error("subscribing a session that never connected should fail")
	}
}

func TestUnsubscribeTwiceIsNoOp(t *testing.T) {
	h := newTestHub()
	connectTestClient(h, 1, 100)

	sub, err := h.Subscribe(ChatKey(5), 100)
	if err != nil {
		t.Fatal(err)
	}

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
	h.Unsubscribe(nil)

	if len(h.subs[ChatKey(5)]) != 0 {
		t.Error("subscription is still registered after unsubscribe")
	}
}

func TestPublishFanOutIsolation(t *testing.T) {
	h := newTestHub()
	clientA := connectTestClient(h, 1, 100)
	clientB := connectTestClient(h, 2, 200)

	if _, err := h.Subscribe(ChatKey(1), 100); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Subscribe(ChatKey(2), 200); err != nil {
		t.Fatal(err)
	}

	if err := h.PublishMessage(1, map[string]string{"content": "hi"}); err != nil {
		t.Fatal(err)
	}

	got := receivedFrame(t, clientA)
	if !strings.HasPrefix(got, "chat:1:messages\n") {
		t.Errorf("frame %q does not start with the chat event name", got)
	}
	if !strings.Contains(got, `"content":"hi"`) {
		t.Errorf("frame %q is missing the payload", got)
	}

	select {
	case frame := <-clientB.send:
		t.Errorf("subscriber of another chat received %q", frame)
	default:
	}
}

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	h := newTestHub()
	clientA := connectTestClient(h, 1, 100)
	clientB := connectTestClient(h, 2, 200)
	clientC := connectTestClient(h, 3, 300)

	for _, sessionID := range []int64{100, 200, 300} {
		if _, err := h.Subscribe(ChatKey(7), sessionID); err != nil {
			t.Fatal(err)
		}
	}

	// dropping the middle subscriber must not disturb the order of the rest
	h.Unsubscribe(h.subs[ChatKey(7)][1])

	if err := h.PublishMessage(7, "payload"); err != nil {
		t.Fatal(err)
	}

	receivedFrame(t, clientA)
	receivedFrame(t, clientC)

	select {
	case <-clientB.send:
		t.Error("unsubscribed client received a frame")
	default:
	}

	subs := h.subs[ChatKey(7)]
	if len(subs) != 2 || subs[0].client != clientA || subs[1].client != clientC {
		t.Error("remaining subscribers lost their registration order")
	}
}

func TestPublishSkipsFullBufferWithoutDropping(t *testing.T) {
	h := newTestHub()
	client := connectTestClient(h, 1, 100)

	sub, err := h.Subscribe(ChatKey(5), 100)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < sendBufferSize; i++ {
		if err := h.PublishMessage(5, "fill"); err != nil {
			t.Fatal(err)
		}
	}

	// buffer is full now, this delivery is skipped
	if err := h.PublishMessage(5, "overflow"); err != nil {
		t.Fatal(err)
	}

	if !sub.active {
		t.Error("a skipped delivery removed the subscription")
	}

	for i := 0; i < sendBufferSize; i++ {
		<-client.send
	}

	if err := h.PublishMessage(5, "after"); err != nil {
		t.Fatal(err)
	}
	if got := receivedFrame(t, client); !strings.Contains(got, "after") {
		t.Errorf("frame after drain was %q", got)
	}
}

func TestSwitchChatMovesSubscription(t *testing.T) {
	h := newTestHub()
	client := connectTestClient(h, 1, 100)

	first, err := h.SwitchChat(100, 1)
	if err != nil {
		t.Fatal(err)
	}

	again, err := h.SwitchChat(100, 1)
	if err != nil {
		t.Fatal(err)
	}
	if first != again {
		t.Error("switching to the current chat returned a new handle")
	}

	second, err := h.SwitchChat(100, 2)
	if err != nil {
		t.Fatal(err)
	}

	if first.active {
		t.Error("old chat subscription is still active after switching")
	}
	if len(h.subs[ChatKey(1)]) != 0 {
		t.Error("old chat key still has subscribers")
	}
	if client.chatSub != second {
		t.Error("client's chat subscription does not point at the new handle")
	}
}

func TestUnregisterDropsSubscriptions(t *testing.T) {
	h := newTestHub()
	client := connectTestClient(h, 1, 100)

	sub, err := h.Subscribe(ChatKey(5), 100)
	if err != nil {
		t.Fatal(err)
	}

	h.unregister(client)

	if sub.active {
		t.Error("subscription is still active after disconnect")
	}
	if _, exists := h.GetClient(100); exists {
		t.Error("client is still registered after disconnect")
	}

	// unsubscribing after the owning connection closed must stay safe
	h.Unsubscribe(sub)

	if err := h.PublishMessage(5, "into the void"); err != nil {
		t.Fatal(err)
	}
}

func TestDegradedHubPublishIsNoOp(t *testing.T) {
	h := New(zap.NewNop().Sugar(), nil, false)
	client := connectTestClient(h, 1, 100)

	sub, err := h.Subscribe(ChatKey(5), 100)
	if err != nil {
		t.Fatalf("bookkeeping subscribe failed in degraded mode: %v", err)
	}

	if !h.Degraded() {
		t.Fatal("hub with no redis client in redis mode should report degraded")
	}

	if err := h.PublishMessage(5, "lost"); err != nil {
		t.Errorf("degraded publish returned %v, want nil", err)
	}

	select {
	case frame := <-client.send:
		t.Errorf("degraded publish delivered %q", frame)
	default:
	}

	h.Unsubscribe(sub)
	if len(h.subs[ChatKey(5)]) != 0 {
		t.Error("bookkeeping unsubscribe failed in degraded mode")
	}
}
