package audit

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/strata/internal/adapters/logger"
	"go.trai.ch/strata/internal/core/ports"
)

// NodeID is the unique identifier for the audit provider Graft node.
const NodeID graft.ID = "adapter.audit"

func init() {
	graft.Register(graft.Node[ports.AuditProvider]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.AuditProvider, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewProvider(log), nil
		},
	})
}
