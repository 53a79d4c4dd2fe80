// Package artifacts implements the versioned on-disk artifact tier.
//
// Artifacts live under <root>/<kind>/<xxhash(path)>/v<version>.json. Only the
// newest version of each kind is kept for a file.
package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactStore = (*Store)(nil)

// Store implements ports.ArtifactStore on an afero filesystem.
type Store struct {
	fs   afero.Fs
	root string
	mu   sync.RWMutex
}

// NewStore creates an artifact store rooted at root.
func NewStore(fsys afero.Fs, root string) *Store {
	return &Store{fs: fsys, root: filepath.Clean(root)}
}

func (s *Store) dir(kind domain.ArtifactKind, filePath string) string {
	return filepath.Join(s.root, string(kind), domain.FingerprintString(filePath))
}

func versionFile(version int) string {
	return "v" + strconv.Itoa(version) + ".json"
}

func parseVersion(name string) (int, bool) {
	if !strings.HasPrefix(name, "v") || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "v"), ".json"))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Save writes a and removes older versions of the same kind for that file.
func (s *Store) Save(_ context.Context, a domain.Artifact) error {
	if !a.Kind.Valid() {
		return zerr.With(zerr.Wrap(domain.ErrInvalidArtifactKind, "unsupported artifact kind"), "kind", string(a.Kind))
	}
	if a.FilePath == "" {
		return domain.ErrInvalidFilePath
	}
	if a.SavedAt.IsZero() {
		a.SavedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(a, true)
}

func (s *Store) write(a domain.Artifact, prune bool) error {
	dir := s.dir(a.Kind, a.FilePath)
	if err := s.fs.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactCreateFailed.Error()), "path", dir)
	}

	data, err := json.Marshal(a)
	if err != nil {
		return zerr.Wrap(err, domain.ErrArtifactWrite.Error())
	}

	target := filepath.Join(dir, versionFile(a.Version))
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWrite.Error()), "path", tmp)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWrite.Error()), "path", target)
	}

	if !prune {
		return nil
	}

	versions, err := s.versions(dir)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if v == a.Version {
			continue
		}
		p := filepath.Join(dir, versionFile(v))
		if err := s.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, domain.ErrArtifactDelete.Error()), "path", p)
		}
	}
	return nil
}

// versions lists the stored versions in dir in ascending order.
func (s *Store) versions(dir string) ([]int, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrArtifactRead.Error()), "path", dir)
	}

	var out []int
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		if v, ok := parseVersion(info.Name()); ok {
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out, nil
}

// Load reads one artifact. A version below one selects the newest stored version.
// The boolean is false when no matching artifact exists.
func (s *Store) Load(_ context.Context, kind domain.ArtifactKind, filePath string, version int) (*domain.Artifact, bool, error) {
	if !kind.Valid() {
		return nil, false, zerr.With(zerr.Wrap(domain.ErrInvalidArtifactKind, "unsupported artifact kind"), "kind", string(kind))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := s.dir(kind, filePath)
	if version < 1 {
		versions, err := s.versions(dir)
		if err != nil {
			return nil, false, err
		}
		if len(versions) == 0 {
			return nil, false, nil
		}
		version = versions[len(versions)-1]
	}

	return s.read(filepath.Join(dir, versionFile(version)))
}

func (s *Store) read(path string) (*domain.Artifact, bool, error) {
	data, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrArtifactRead.Error()), "path", path)
	}

	var a domain.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrArtifactUnmarshal.Error()), "path", path)
	}
	return &a, true, nil
}

// Delete removes every artifact of filePath and returns what was removed so the
// caller can restore it.
func (s *Store) Delete(_ context.Context, filePath string) ([]domain.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []domain.Artifact
	for _, kind := range domain.ArtifactKinds {
		dir := s.dir(kind, filePath)
		versions, err := s.versions(dir)
		if err != nil {
			return removed, err
		}
		for _, v := range versions {
			a, ok, err := s.read(filepath.Join(dir, versionFile(v)))
			if err != nil {
				return removed, err
			}
			if ok {
				removed = append(removed, *a)
			}
		}
		if err := s.fs.RemoveAll(dir); err != nil {
			return removed, zerr.With(zerr.Wrap(err, domain.ErrArtifactDelete.Error()), "path", dir)
		}
	}
	return removed, nil
}

// Restore writes back artifacts returned by Delete.
func (s *Store) Restore(_ context.Context, items []domain.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range items {
		if err := s.write(a, false); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether any artifact of filePath is stored.
func (s *Store) Exists(_ context.Context, filePath string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, kind := range domain.ArtifactKinds {
		versions, err := s.versions(s.dir(kind, filePath))
		if err != nil {
			return false, err
		}
		if len(versions) > 0 {
			return true, nil
		}
	}
	return false, nil
}
