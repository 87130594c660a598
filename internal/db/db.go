package db

import (
	"context"
	"time"
)

// Store is the key-value backend shared by the index snapshot store and the
// expansion cache. Consumers depend on the narrow sub-interfaces.
type Store interface {
	Pinger
	KVStore
	Counter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Counter provides integer counters stored as decimal strings.
type Counter interface {
	IncrBy(ctx context.Context, key string, val int64) error
	// Expire sets a TTL on key. With nx it only applies when key has no expiry yet.
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}
