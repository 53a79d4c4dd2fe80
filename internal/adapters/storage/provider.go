// Package storage selects and opens the stores backing a project.
package storage

import (
	"context"
	"errors"

	"github.com/spf13/afero"
	"go.trai.ch/strata/internal/adapters/artifacts"
	"go.trai.ch/strata/internal/adapters/badgerstore"
	"go.trai.ch/strata/internal/adapters/memstore"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StorageProvider = (*Provider)(nil)

// Provider opens badger or memory fast tiers alongside the artifact store.
type Provider struct {
	Logger ports.Logger
	Fs     afero.Fs
}

// NewProvider creates a provider writing artifacts and index files to fsys.
func NewProvider(logger ports.Logger, fsys afero.Fs) *Provider {
	return &Provider{Logger: logger, Fs: fsys}
}

// Open resolves the backend once. With BackendAuto a badger failure is logged and
// the memory tier is used instead. With BackendBadger the failure is returned.
func (p *Provider) Open(_ context.Context, root string, cfg domain.CacheConfig) (*ports.Storage, error) {
	arts := artifacts.NewStore(p.Fs, domain.ArtifactsPath(root))

	switch cfg.Backend {
	case domain.BackendMemory:
		return p.openMemory(root, cfg, arts)
	case domain.BackendBadger:
		return p.openBadger(root, cfg, arts)
	case domain.BackendAuto, "":
		s, err := p.openBadger(root, cfg, arts)
		if err == nil {
			return s, nil
		}
		p.Logger.Warn("durable cache unavailable, using in-memory fallback: " + err.Error())
		return p.openMemory(root, cfg, arts)
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidBackend, "unsupported cache backend"), "backend", string(cfg.Backend))
	}
}

func (p *Provider) openBadger(root string, cfg domain.CacheConfig, arts ports.ArtifactStore) (*ports.Storage, error) {
	bcfg := badgerstore.DefaultConfig(domain.FastStorePath(root))
	bcfg.Logger = p.Logger
	if cfg.GCInterval > 0 {
		bcfg.GCInterval = cfg.GCInterval
	}

	db, err := badgerstore.Open(bcfg)
	if err != nil {
		return nil, err
	}

	fast := badgerstore.NewFastStore(db)
	return &ports.Storage{
		Fast:      fast,
		Index:     badgerstore.NewIndexStore(db),
		Artifacts: arts,
		Close: func() error {
			return errors.Join(fast.Close(), db.Close())
		},
	}, nil
}

func (p *Provider) openMemory(root string, cfg domain.CacheConfig, arts ports.ArtifactStore) (*ports.Storage, error) {
	fast, err := memstore.NewFastStore(cfg.Capacity)
	if err != nil {
		return nil, err
	}
	return &ports.Storage{
		Fast:      fast,
		Index:     memstore.NewIndexFile(p.Fs, domain.IndexFilePath(root)),
		Artifacts: arts,
		Close:     fast.Close,
	}, nil
}
