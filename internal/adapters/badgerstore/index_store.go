package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.IndexStore = (*IndexStore)(nil)

var indexKey = []byte("meta/index")

// IndexStore keeps the cache index as a single record so that every save
// replaces it atomically.
type IndexStore struct {
	db *DB
}

// NewIndexStore creates an index store on db.
func NewIndexStore(db *DB) *IndexStore {
	return &IndexStore{db: db}
}

// Load returns the stored index or an empty one.
func (s *IndexStore) Load(_ context.Context) (*domain.CacheIndex, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.NewCacheIndex(), nil
	}
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrIndexRead.Error())
	}

	idx := domain.NewCacheIndex()
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, errors.Join(domain.ErrIndexCorrupt, zerr.With(err, "key", string(indexKey)))
	}
	idx.Normalize()
	return idx, nil
}

// Save replaces the stored index.
func (s *IndexStore) Save(_ context.Context, idx *domain.CacheIndex) error {
	idx.Metadata.LastUpdated = time.Now()
	data, err := json.Marshal(idx)
	if err != nil {
		return zerr.Wrap(err, domain.ErrIndexWrite.Error())
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(indexKey, data)
	}); err != nil {
		return zerr.Wrap(err, domain.ErrIndexWrite.Error())
	}
	return nil
}
