// Package badger implements db.Store on an embedded BadgerDB, either in
// memory or on local disk, for single-replica deployments without Redis.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

var errClosed = errors.New("store is closed")

// Config selects where the database lives. An empty Path keeps it in memory.
type Config struct {
	Path string
}

// Store implements db.Store on BadgerDB.
type Store struct {
	db *badger.DB
}

// zapAdapter routes badger logs to zap.
type zapAdapter struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*zapAdapter)(nil)

func (a *zapAdapter) Errorf(msg string, items ...any)   { a.s.Errorf(msg, items...) }
func (a *zapAdapter) Warningf(msg string, items ...any) { a.s.Warnf(msg, items...) }
func (a *zapAdapter) Infof(msg string, items ...any)    { a.s.Debugf(msg, items...) }
func (a *zapAdapter) Debugf(msg string, items ...any)   { a.s.Debugf(msg, items...) }

// NewStore opens the database described by cfg.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = &zapAdapter{s: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: bdb}, nil
}

// Ping reports whether the database is open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	if s.db.IsClosed() {
		return &db.Error{Op: db.OpPing, Err: errClosed}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns once Ping succeeds; an embedded database is ready on open.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	var out []byte
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if err != nil {
			return err //nolint:wrapcheck // mapped below
		}
		out, err = item.ValueCopy(nil)
		return err //nolint:wrapcheck // mapped below
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return out, nil
}

// Set stores a value at the given key without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value that expires after ttl. A non-positive ttl stores
// without expiry.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	e := badger.NewEntry([]byte(key), value)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	if err := s.db.Update(func(tx *badger.Txn) error { return tx.SetEntry(e) }); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes a key. Deleting a missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	if err := s.db.Update(func(tx *badger.Txn) error { return tx.Delete([]byte(key)) }); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// IncrBy adds val to the decimal counter at key, creating it at zero.
// An existing expiry is kept.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpIncrBy, Err: err}
	}
	err := s.db.Update(func(tx *badger.Txn) error {
		var cur int64
		var expiresAt uint64
		item, err := tx.Get([]byte(key))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err //nolint:wrapcheck // mapped below
		default:
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err //nolint:wrapcheck // mapped below
			}
			if cur, err = strconv.ParseInt(string(raw), 10, 64); err != nil {
				return fmt.Errorf("value is not an integer: %w", err)
			}
			expiresAt = item.ExpiresAt()
		}
		e := badger.NewEntry([]byte(key), []byte(strconv.FormatInt(cur+val, 10)))
		e.ExpiresAt = expiresAt
		return tx.SetEntry(e)
	})
	if err != nil {
		return &db.Error{Op: db.OpIncrBy, Err: err}
	}
	return nil
}

// Expire sets a TTL on an existing key. With nx the TTL only applies when the
// key has none. A missing key is left alone.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	err := s.db.Update(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err //nolint:wrapcheck // mapped below
		}
		if nx && item.ExpiresAt() != 0 {
			return nil
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err //nolint:wrapcheck // mapped below
		}
		return tx.SetEntry(badger.NewEntry([]byte(key), raw).WithTTL(ttl))
	})
	if err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	return nil
}
