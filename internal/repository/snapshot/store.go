// Package snapshot persists built search indexes in the shared key-value store.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/catalogd/internal/db"
	"github.com/kailas-cloud/catalogd/internal/domain/search/index"
)

// Key is where the current index snapshot lives.
const Key = "catalogd:search:index"

// store is the consumer interface for the snapshot store (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Store saves one JSON-encoded index under Key with an expiry.
type Store struct {
	kv  store
	ttl time.Duration
}

// New creates a snapshot store. Saved snapshots expire after ttl.
func New(kv store, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl}
}

// Load returns the stored index, or ok=false when none is stored.
func (s *Store) Load(ctx context.Context) (index.Index, bool, error) {
	data, err := s.kv.Get(ctx, Key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return index.Index{}, false, nil
		}
		return index.Index{}, false, fmt.Errorf("get snapshot: %w", err)
	}

	var idx index.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return index.Index{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	if idx.IsEmpty() {
		return index.Index{}, false, nil
	}
	return idx, true, nil
}

// Save replaces the stored index.
func (s *Store) Save(ctx context.Context, idx *index.Index) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.kv.SetWithTTL(ctx, Key, data, s.ttl); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Delete drops the stored index.
func (s *Store) Delete(ctx context.Context) error {
	if err := s.kv.Del(ctx, Key); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
