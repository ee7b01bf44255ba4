package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Metrics tracks cache performance.
type Metrics struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// UnifiedCache is a TTL cache for values of one type.
type UnifiedCache[T any] struct {
	mu     sync.RWMutex
	items  map[string]entry[T]
	ttl    time.Duration
	name   string
	logger *zap.Logger

	hits, misses, sets atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

type entry[T any] struct {
	value      T
	expiration int64
}

// NewUnifiedCache creates a cache whose entries live for ttl. Call Close to stop the janitor.
func NewUnifiedCache[T any](ttl time.Duration, name string, logger *zap.Logger) *UnifiedCache[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &UnifiedCache[T]{
		items:  make(map[string]entry[T]),
		ttl:    ttl,
		name:   name,
		logger: logger,
		stop:   make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func (c *UnifiedCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{
		value:      value,
		expiration: time.Now().Add(c.ttl).UnixNano(),
	}
	c.sets.Add(1)
	c.logger.Debug("Cache set", zap.String("cache", c.name), zap.String("key", key), zap.Duration("ttl", c.ttl))
}

// Get returns the value for key unless it is missing or expired.
func (c *UnifiedCache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	var zero T
	if !found || time.Now().UnixNano() > item.expiration {
		c.misses.Add(1)
		c.logger.Debug("Cache miss", zap.String("cache", c.name), zap.String("key", key))
		return zero, false
	}
	c.hits.Add(1)
	c.logger.Debug("Cache hit", zap.String("cache", c.name), zap.String("key", key))
	return item.value, true
}

func (c *UnifiedCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *UnifiedCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry[T])
	c.logger.Info("Cache cleared", zap.String("cache", c.name))
}

func (c *UnifiedCache[T]) Metrics() Metrics {
	return Metrics{Hits: c.hits.Load(), Misses: c.misses.Load(), Sets: c.sets.Load()}
}

func (c *UnifiedCache[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the janitor goroutine. It is safe to call more than once.
func (c *UnifiedCache[T]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *UnifiedCache[T]) cleanup() {
	interval := c.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *UnifiedCache[T]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	expired := 0
	for key, item := range c.items {
		if now > item.expiration {
			delete(c.items, key)
			expired++
		}
	}
	if expired > 0 {
		c.logger.Info("Cache cleanup",
			zap.String("cache", c.name),
			zap.Int("expired_items", expired),
			zap.Int("remaining_items", len(c.items)),
		)
	}
}

// KeyBuilder builds stable cache keys from request components.
type KeyBuilder struct {
	prefix     string
	components []map[string]any
}

// NewKeyBuilder starts a key for the named cache.
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{prefix: prefix, components: make([]map[string]any, 0, 4)}
}

func (b *KeyBuilder) Add(key string, value any) *KeyBuilder {
	b.components = append(b.components, map[string]any{key: value})
	return b
}

// AddText adds a case- and whitespace-insensitive text component.
func (b *KeyBuilder) AddText(key, value string) *KeyBuilder {
	return b.Add(key, strings.ToLower(strings.TrimSpace(value)))
}

// Build hashes the components into "<prefix>:<md5>".
func (b *KeyBuilder) Build() (string, error) {
	raw, err := json.Marshal(b.components)
	if err != nil {
		return "", fmt.Errorf("marshal cache key components: %w", err)
	}
	sum := md5.Sum(raw)
	return b.prefix + ":" + hex.EncodeToString(sum[:]), nil
}
