package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FastStore = (*FastStore)(nil)

const fastPrefix = "fast/"

// ttlSlack keeps badger's own expiry behind the record's expiry column, which
// has sub-second precision where badger only has seconds.
const ttlSlack = time.Second

// FastStore implements ports.FastStore on BadgerDB.
// The database is owned by the caller and is not closed by Close.
type FastStore struct {
	db     *DB
	now    func() time.Time
	hits   atomic.Uint64
	misses atomic.Uint64
	closed atomic.Bool
}

// NewFastStore creates a fast tier on db.
func NewFastStore(db *DB) *FastStore {
	return &FastStore{db: db, now: time.Now}
}

func fastKey(key string) []byte {
	return []byte(fastPrefix + key)
}

// Backend returns domain.BackendBadger.
func (s *FastStore) Backend() domain.Backend {
	return domain.BackendBadger
}

// Get returns the value at key. Records past their expiry are misses.
func (s *FastStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, domain.ErrFastStoreClosed
	}

	var item domain.FastItem
	err := s.db.View(func(txn *badger.Txn) error {
		it, err := txn.Get(fastKey(key))
		if err != nil {
			return err
		}
		return it.Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		s.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrFastStoreRead.Error()), "key", key)
	}

	if item.Expired(s.now()) {
		s.misses.Add(1)
		return nil, false, nil
	}
	s.hits.Add(1)
	return item.Value, true, nil
}

// Set stores value at key, replacing any previous record.
func (s *FastStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return domain.ErrFastStoreClosed
	}

	item := domain.NewFastItem(key, value, ttl, s.now())
	err := s.db.Update(func(txn *badger.Txn) error {
		return s.put(txn, item)
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFastStoreWrite.Error()), "key", key)
	}
	return nil
}

func (s *FastStore) put(txn *badger.Txn, item domain.FastItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	entry := badger.NewEntry(fastKey(item.Key), data)
	if ttl := item.TTL(s.now()); ttl > 0 {
		entry = entry.WithTTL(ttl + ttlSlack)
	}
	return txn.SetEntry(entry)
}

// Invalidate deletes key, or all keys matching a glob pattern, in one transaction.
func (s *FastStore) Invalidate(_ context.Context, keyOrPattern string) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrFastStoreClosed
	}

	m, err := domain.NewKeyMatcher(keyOrPattern)
	if err != nil {
		return 0, err
	}

	deleted := 0
	err = s.db.Update(func(txn *badger.Txn) error {
		keys, err := s.matchingKeys(txn, m)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		deleted = len(keys)
		return nil
	})
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFastStoreDelete.Error()), "key", keyOrPattern)
	}
	return deleted, nil
}

// matchingKeys collects the raw keys matched by m. The iterator is closed before
// the caller mutates the transaction.
func (s *FastStore) matchingKeys(txn *badger.Txn, m *domain.KeyMatcher) ([][]byte, error) {
	if m.Exact() {
		k := fastKey(m.Prefix())
		if _, err := txn.Get(k); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return [][]byte{k}, nil
	}

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = fastKey(m.Prefix())

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		k := it.Item().KeyCopy(nil)
		if m.Match(string(k[len(fastPrefix):])) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Snapshot returns the live records matching keyOrPattern.
func (s *FastStore) Snapshot(_ context.Context, keyOrPattern string) ([]domain.FastItem, error) {
	if s.closed.Load() {
		return nil, domain.ErrFastStoreClosed
	}

	m, err := domain.NewKeyMatcher(keyOrPattern)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var items []domain.FastItem
	err = s.db.View(func(txn *badger.Txn) error {
		return s.scan(txn, m.Prefix(), func(item domain.FastItem) {
			if m.Match(item.Key) && !item.Expired(now) {
				items = append(items, item)
			}
		})
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFastStoreRead.Error()), "key", keyOrPattern)
	}
	return items, nil
}

func (s *FastStore) scan(txn *badger.Txn, prefix string, fn func(domain.FastItem)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = fastKey(prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var item domain.FastItem
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		}); err != nil {
			return err
		}
		fn(item)
	}
	return nil
}

// Restore writes items back in one transaction, skipping expired ones.
func (s *FastStore) Restore(_ context.Context, items []domain.FastItem) error {
	if s.closed.Load() {
		return domain.ErrFastStoreClosed
	}
	if len(items) == 0 {
		return nil
	}

	now := s.now()
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, item := range items {
			if item.Expired(now) {
				continue
			}
			if err := s.put(txn, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return zerr.Wrap(err, domain.ErrFastStoreWrite.Error())
	}
	return nil
}

// Clear drops every fast-tier record. The index is untouched.
func (s *FastStore) Clear(_ context.Context) error {
	if s.closed.Load() {
		return domain.ErrFastStoreClosed
	}
	if err := s.db.DropPrefix([]byte(fastPrefix)); err != nil {
		return zerr.Wrap(err, domain.ErrFastStoreDelete.Error())
	}
	return nil
}

// Stats counts live and expired records.
func (s *FastStore) Stats(_ context.Context) (domain.StoreStats, error) {
	stats := domain.StoreStats{
		Backend: domain.BackendBadger,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}
	if s.closed.Load() {
		return stats, domain.ErrFastStoreClosed
	}

	now := s.now()
	err := s.db.View(func(txn *badger.Txn) error {
		return s.scan(txn, "", func(item domain.FastItem) {
			if item.Expired(now) {
				stats.Expired++
			} else {
				stats.Keys++
			}
		})
	})
	if err != nil {
		return stats, zerr.Wrap(err, domain.ErrFastStoreRead.Error())
	}
	return stats, nil
}

// Close marks the store closed.
func (s *FastStore) Close() error {
	s.closed.Store(true)
	return nil
}
