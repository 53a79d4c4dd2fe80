package ports

import "go.trai.ch/strata/internal/core/domain"

// ConfigLoader loads the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads strata.yaml from root. A missing file yields the defaults.
	Load(root string) (domain.Config, error)

	// DiscoverRoot walks up from cwd to the nearest directory holding strata.yaml
	// or a .strata data directory. It returns cwd when neither is found.
	DiscoverRoot(cwd string) (string, error)
}
