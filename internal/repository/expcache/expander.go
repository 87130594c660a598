package expcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/db"
)

const cacheKeyPrefix = "catalogd:exp_cache:"

// expander is the decorated provider.
type expander interface {
	Expand(ctx context.Context, query string) ([]string, error)
}

// store is the consumer interface for the expansion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedExpander caches query expansions in a key-value store.
type CachedExpander struct {
	inner      expander
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. Entries expire after ttl (0 keeps them).
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner expander,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedExpander {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedExpander{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Expand returns cached terms for query or asks the inner expander.
// Empty expansions are cached too. Provider errors are never cached.
func (c *CachedExpander) Expand(ctx context.Context, query string) ([]string, error) {
	key := c.cacheKey(query)

	if terms, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return terms, nil
	}

	c.incCache("miss")

	terms, err := c.inner.Expand(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("expand query: %w", err)
	}

	c.putToCache(ctx, key, terms)
	return terms, nil
}

func (c *CachedExpander) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedExpander) cacheKey(query string) string {
	h := sha256.Sum256([]byte(query))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedExpander) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached expansion", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		c.logger.Warn("Failed to parse cached expansion", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return terms, true
}

func (c *CachedExpander) putToCache(ctx context.Context, key string, terms []string) {
	if terms == nil {
		terms = []string{}
	}
	data, err := json.Marshal(terms)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache expansion", zap.String("key", key), zap.Error(err))
	}
}
