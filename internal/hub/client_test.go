package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connect/disconnect churn on a key under a constant publish flood. A frame
// relayed between the read loop failing and teardown finishing must never
// land on a closed send channel.
func TestRedisRelaySurvivesDisconnectChurn(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	h := New(zap.NewNop().Sugar(), rdb, false)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.HandleClient(w, r, 1)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	payload, err := frame(string(ChatKey(9)), "flood")
	if err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				rdb.Publish(context.Background(), string(ChatKey(9)), string(payload))
			}
		}
	}()

	for i := 0; i < 20; i++ {
		sessionID := int64(100 + i)

		header := http.Header{}
		header.Add("Cookie", fmt.Sprintf("session=%d", sessionID))

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
		if err != nil {
			t.Fatal(err)
		}

		for i := 0; i < 200; i++ {
			if _, connected := h.GetClient(sessionID); connected {
				break
			}
			time.Sleep(time.Millisecond)
		}

		if _, err := h.Subscribe(ChatKey(9), sessionID); err != nil {
			t.Fatal(err)
		}

		// let a few frames flow through the relay before tearing down
		time.Sleep(2 * time.Millisecond)
		conn.Close()
	}

	close(stop)
	wg.Wait()

	for i := 0; i < 200; i++ {
		h.mu.Lock()
		remaining := len(h.clients)
		h.mu.Unlock()
		if remaining == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Error("clients are still registered after churn")
}
