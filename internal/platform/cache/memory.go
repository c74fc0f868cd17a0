package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryCache struct {
	store *gocache.Cache
}

// NewMemory returns an in-process cache. It is used when no Redis server is configured.
func NewMemory(cleanupInterval time.Duration) Cache {
	return &memoryCache{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, found := m.store.Get(key)
	if !found {
		return false, nil
	}
	switch v := raw.(type) {
	case []byte:
		return true, json.Unmarshal(v, dest)
	case int64:
		// Counters written by Incr are stored unencoded.
		data, err := json.Marshal(v)
		if err != nil {
			return false, err
		}
		return true, json.Unmarshal(data, dest)
	default:
		return false, nil
	}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.store.Set(key, data, ttl)
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.store.Delete(k)
	}
	return nil
}

func (m *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	if err := m.store.Add(key, int64(1), gocache.NoExpiration); err == nil {
		return 1, nil
	}
	return m.store.IncrementInt64(key, 1)
}
