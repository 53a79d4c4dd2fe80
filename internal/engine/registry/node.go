package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/strata/internal/adapters/audit"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/strata/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/strata/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/strata/internal/adapters/storage"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/strata/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/engine/manager"
)

// NodeID is the unique identifier for the registry Graft node.
const NodeID graft.ID = "engine.registry"

func init() {
	graft.Register(graft.Node[*Registry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			storage.NodeID,
			audit.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			telemetry.MetricsNodeID,
		},
		Run: func(ctx context.Context) (*Registry, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			provider, err := graft.Dep[ports.StorageProvider](ctx)
			if err != nil {
				return nil, err
			}

			auditProvider, err := graft.Dep[ports.AuditProvider](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			metrics, err := graft.Dep[ports.Metrics](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, manager.Deps{
				Storage: provider,
				Audit:   auditProvider,
				Logger:  log,
				Tracer:  tracer,
				Metrics: metrics,
			}), nil
		},
	})
}
