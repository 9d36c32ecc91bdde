// Package pricefeed provides a short-TTL cache over an external token→USD
// price collaborator. An unknown price is 0.0 by convention, never an error.
package pricefeed

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Source is the external price collaborator. Batch lookups are optional; a
// nil-safe caller falls back to single lookups.
type Source interface {
	USDPrice(ctx context.Context, token string) (float64, error)
	USDPrices(ctx context.Context, tokens []string) (map[string]float64, error)
}

type entry struct {
	value     float64
	fetchedAt time.Time
}

// Cache is a read-mostly keyed store with TTL entries. Writers replace whole
// immutable entries last-write-wins; stale-but-valid reads within the TTL
// window are acceptable.
type Cache struct {
	mu     sync.RWMutex
	data   map[string]entry
	ttl    time.Duration
	source Source
	logger *zap.Logger
	now    func() time.Time
}

func NewCache(source Source, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{
		data:   make(map[string]entry),
		ttl:    ttl,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// USDPrice returns the cached USD price for a token, fetching through the
// source on a stale or absent entry. A source failure or miss values the
// token at zero; the zero is cached for the TTL window too, so a dead feed
// is not hammered.
func (c *Cache) USDPrice(ctx context.Context, token string) float64 {
	key := strings.ToLower(token)

	c.mu.RLock()
	cached, ok := c.data[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(cached.fetchedAt) < c.ttl {
		return cached.value
	}

	value := 0.0
	if c.source != nil {
		fetched, err := c.source.USDPrice(ctx, token)
		if err != nil {
			c.logger.Debug("price lookup failed", zap.String("token", token), zap.Error(err))
		} else {
			value = fetched
		}
	}

	c.mu.Lock()
	c.data[key] = entry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
	return value
}

// USDPrices resolves several tokens at once, batching the cache misses
// through the source's batch lookup. Tokens the source does not know come
// back as 0.0.
func (c *Cache) USDPrices(ctx context.Context, tokens []string) map[string]float64 {
	out := make(map[string]float64, len(tokens))
	misses := make([]string, 0, len(tokens))

	now := c.now()
	c.mu.RLock()
	for _, token := range tokens {
		key := strings.ToLower(token)
		if cached, ok := c.data[key]; ok && now.Sub(cached.fetchedAt) < c.ttl {
			out[token] = cached.value
		} else {
			misses = append(misses, token)
		}
	}
	c.mu.RUnlock()

	if len(misses) == 0 || c.source == nil {
		for _, token := range misses {
			out[token] = 0
		}
		return out
	}

	fetched, err := c.source.USDPrices(ctx, misses)
	if err != nil {
		c.logger.Debug("batch price lookup failed", zap.Int("tokens", len(misses)), zap.Error(err))
		fetched = nil
	}

	c.mu.Lock()
	for _, token := range misses {
		value := 0.0
		if fetched != nil {
			if v, ok := fetched[token]; ok {
				value = v
			}
		}
		c.data[strings.ToLower(token)] = entry{value: value, fetchedAt: c.now()}
		out[token] = value
	}
	c.mu.Unlock()
	return out
}
