package storage

import (
	"context"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"climbing-holds/internal/domain/entity"
	"climbing-holds/internal/domain/port"
)

type cacheEntry struct {
	result  entity.DetectionResult
	expires time.Time
}

// MemoryResultCache LRU-кэш результатов в памяти процесса, когда Redis выключен
type MemoryResultCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items *lru.Cache
	now   func() time.Time
}

// NewMemoryResultCache ttl <= 0 хранит записи бессрочно; maxSize <= 0 без ограничения.
// При переполнении вытесняется давно не использованная запись.
func NewMemoryResultCache(ttl time.Duration, maxSize int) *MemoryResultCache {
	if maxSize < 0 {
		maxSize = 0
	}
	return &MemoryResultCache{
		ttl:   ttl,
		items: lru.New(maxSize),
		now:   time.Now,
	}
}

func (c *MemoryResultCache) Get(ctx context.Context, key string) (entity.DetectionResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.items.Get(key)
	if !ok {
		return entity.DetectionResult{}, false, nil
	}
	e := v.(cacheEntry)
	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.items.Remove(key)
		return entity.DetectionResult{}, false, nil
	}
	return e.result, true, nil
}

func (c *MemoryResultCache) Set(ctx context.Context, key string, result entity.DetectionResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}
	c.items.Add(key, cacheEntry{result: result, expires: expires})
	return nil
}

// Len число записей, включая просроченные
func (c *MemoryResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}

// Проверка реализации интерфейса
var _ port.ResultCache = (*MemoryResultCache)(nil)
