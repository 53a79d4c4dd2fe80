package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.IndexStore = (*IndexFile)(nil)

// IndexFile persists the index as one JSON file, written to a temporary file and
// renamed into place.
type IndexFile struct {
	fs   afero.Fs
	path string
}

// NewIndexFile creates an index store at path on fsys.
func NewIndexFile(fsys afero.Fs, path string) *IndexFile {
	return &IndexFile{fs: fsys, path: path}
}

// Load reads the index file, returning an empty index if it does not exist.
func (f *IndexFile) Load(_ context.Context) (*domain.CacheIndex, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewCacheIndex(), nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrIndexRead.Error()), "path", f.path)
	}

	idx := domain.NewCacheIndex()
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, errors.Join(domain.ErrIndexCorrupt, zerr.With(err, "path", f.path))
	}
	idx.Normalize()
	return idx, nil
}

// Save writes the index.
func (f *IndexFile) Save(_ context.Context, idx *domain.CacheIndex) error {
	idx.Metadata.LastUpdated = time.Now()
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrIndexWrite.Error())
	}

	if err := f.fs.MkdirAll(filepath.Dir(f.path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIndexWrite.Error()), "path", f.path)
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, domain.PrivateFilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIndexWrite.Error()), "path", tmp)
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIndexWrite.Error()), "path", f.path)
	}
	return nil
}
