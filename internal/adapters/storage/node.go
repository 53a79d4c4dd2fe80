package storage

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/spf13/afero"
	"go.trai.ch/strata/internal/adapters/logger"
	"go.trai.ch/strata/internal/core/ports"
)

// NodeID is the unique identifier for the storage provider Graft node.
const NodeID graft.ID = "adapter.storage"

func init() {
	graft.Register(graft.Node[ports.StorageProvider]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.StorageProvider, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewProvider(log, afero.NewOsFs()), nil
		},
	})
}
