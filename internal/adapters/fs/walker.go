// Package fs provides file system adapters for discovering and reading source files.
package fs

import (
	"errors"
	iofs "io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

// SourceExtensions are the file extensions treated as analyzable source.
var SourceExtensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}

// Walker discovers and reads source files.
type Walker struct {
	fs afero.Fs
}

// NewWalker creates a Walker on fsys.
func NewWalker(fsys afero.Fs) *Walker {
	return &Walker{fs: fsys}
}

// IsSource reports whether path has a source extension.
func IsSource(path string) bool {
	return slices.Contains(SourceExtensions, filepath.Ext(path))
}

// WalkSources yields every source file under root, skipping VCS directories, the
// data directory and directories whose name matches one of ignores.
func (w *Walker) WalkSources(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable entries are skipped
			}

			if info.IsDir() {
				if path != root && skipDir(info.Name(), ignores) {
					return filepath.SkipDir
				}
				return nil
			}

			if !IsSource(path) {
				return nil
			}
			if !yield(path) {
				return iofs.SkipAll
			}
			return nil
		})
	}
}

func skipDir(name string, ignores []string) bool {
	switch name {
	case ".git", ".jj", domain.DataDirName:
		return true
	}
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}

// Existing returns the set of source files under root.
func (w *Walker) Existing(root string, ignores []string) map[string]struct{} {
	out := make(map[string]struct{})
	for p := range w.WalkSources(root, ignores) {
		out[p] = struct{}{}
	}
	return out
}

// ReadFile returns the content of path.
func (w *Walker) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return nil, errors.Join(domain.ErrFileRead, zerr.With(err, "path", path))
	}
	return data, nil
}
