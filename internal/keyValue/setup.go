package keyValue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TTL key-value storage: a process-local map in self-contained mode, Redis
// otherwise. Used for user-existence caching and registration tokens.

type Value struct {
	value   string
	expires time.Time
}

var mutex sync.RWMutex
var hashmap = make(map[string]Value)

var sugar *zap.SugaredLogger
var redisClient *redis.Client
var redisCtx = context.Background()
var selfContained = true

func Setup(_sugar *zap.SugaredLogger, _redisClient *redis.Client, _selfContained bool) {
	sugar = _sugar
	redisClient = _redisClient

	// without a Redis client the local map is the only option left
	selfContained = _selfContained || _redisClient == nil

	if selfContained {
		go checkForLocalExpiredKeys()
	}
}

func checkForLocalExpiredKeys() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		mutex.Lock()
		for key, v := range hashmap {
			if v.expires.Before(time.Now()) {
				delete(hashmap, key)
			}
		}
		mutex.Unlock()
	}
}

func Get(key string) (string, error) {
	if selfContained {
		mutex.RLock()
		defer mutex.RUnlock()

		entry, exists := hashmap[key]
		if !exists || entry.expires.Before(time.Now()) {
			return "", nil
		}
		return entry.value, nil
	}

	value, err := redisClient.Get(redisCtx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	return value, nil
}

// GetDel returns the value and removes the key in one step; registration
// tokens are single-use.
func GetDel(key string) (string, error) {
	if selfContained {
		mutex.Lock()
		defer mutex.Unlock()

		entry, exists := hashmap[key]
		delete(hashmap, key)
		if !exists || entry.expires.Before(time.Now()) {
			return "", nil
		}
		return entry.value, nil
	}

	value, err := redisClient.GetDel(redisCtx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	return value, nil
}

func Set(key string, value string, expiration time.Duration) error {
	if selfContained {
		mutex.Lock()
		defer mutex.Unlock()

		hashmap[key] = Value{value: value, expires: time.Now().Add(expiration)}
		return nil
	}

	return redisClient.Set(redisCtx, key, value, expiration).Err()
}
