package keyValue

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func setupLocal() {
	sugar = zap.NewNop().Sugar()
	redisClient = nil
	selfContained = true

	mutex.Lock()
	hashmap = make(map[string]Value)
	mutex.Unlock()
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	sugar = zap.NewNop().Sugar()
	redisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	selfContained = false
	return mr
}

func TestLocalSetGet(t *testing.T) {
	setupLocal()

	if err := Set("greeting", "hello", time.Minute); err != nil {
		t.Fatal(err)
	}

	value, err := Get("greeting")
	if err != nil {
		t.Fatal(err)
	}
	if value != "hello" {
		t.Errorf("got %q, want %q", value, "hello")
	}

	value, err = Get("missing")
	if err != nil {
		t.Fatal(err)
	}
	if value != "" {
		t.Errorf("missing key returned %q, want empty string", value)
	}
}

func TestLocalExpiry(t *testing.T) {
	setupLocal()

	if err := Set("short", "lived", -time.Second); err != nil {
		t.Fatal(err)
	}

	value, err := Get("short")
	if err != nil {
		t.Fatal(err)
	}
	if value != "" {
		t.Errorf("expired key returned %q, want empty string", value)
	}
}

func TestLocalGetDel(t *testing.T) {
	setupLocal()

	if err := Set("token", "once", time.Minute); err != nil {
		t.Fatal(err)
	}

	value, err := GetDel("token")
	if err != nil {
		t.Fatal(err)
	}
	if value != "once" {
		t.Errorf("got %q, want %q", value, "once")
	}

	value, err = GetDel("token")
	if err != nil {
		t.Fatal(err)
	}
	if value != "" {
		t.Errorf("second GetDel returned %q, want empty string", value)
	}
}

func TestRedisSetGet(t *testing.T) {
	setupRedis(t)

	if err := Set("greeting", "hello", time.Minute); err != nil {
		t.Fatal(err)
	}

	value, err := Get("greeting")
	if err != nil {
		t.Fatal(err)
	}
	if value != "hello" {
		t.Errorf("got %q, want %q", value, "hello")
	}

	value, err = Get("missing")
	if err != nil {
		t.Fatal(err)
	}
	if value != "" {
		t.Errorf("missing key returned %q, want empty string", value)
	}
}

func TestRedisExpiry(t *testing.T) {
	mr := setupRedis(t)

	if err := Set("short", "lived", time.Second); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Second)

	value, err := Get("short")
	if err != nil {
		t.Fatal(err)
	}
	if value != "" {
		t.Errorf("expired key returned %q, want empty string", value)
	}
}

func TestRedisGetDel(t *testing.T) {
	setupRedis(t)

	if err := Set("token", "once", time.Minute); err != nil {
		t.Fatal(err)
	}

	value, err := GetDel("token")
	if err != nil {
		t.Fatal(err)
	}
	if value != "once" {
		t.Errorf("got %q, want %q", value, "once")
	}

	value, err = GetDel("token")
	if err != nil {
		t.Fatal(err)
	}
	if value != "" {
		t.Errorf("second GetDel returned %q, want empty string", value)
	}
}
