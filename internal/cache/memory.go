package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Cache. Values are stored JSON encoded so callers
// get the same decoding behaviour as with Redis.
type Memory struct {
	c *gocache.Cache
}

// NewMemory returns a cache whose entries default to ttl and are purged every cleanup
func NewMemory(ttl, cleanup time.Duration) *Memory {
	return &Memory{c: gocache.New(ttl, cleanup)}
}

func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	val, found := m.c.Get(key)
	if !found {
		return false, nil
	}
	return true, json.Unmarshal(val.([]byte), dest)
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.c.Set(key, b, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}
