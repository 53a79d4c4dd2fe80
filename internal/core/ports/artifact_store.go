package ports

import (
	"context"

	"go.trai.ch/strata/internal/core/domain"
)

// ArtifactStore persists large analysis payloads keyed by (kind, filePath, version).
//
//go:generate go run go.uber.org/mock/mockgen -source=artifact_store.go -destination=mocks/mock_artifact_store.go -package=mocks
type ArtifactStore interface {
	// Save writes the artifact and removes older versions of the same kind for its file.
	Save(ctx context.Context, artifact domain.Artifact) error

	// Load returns the artifact stored for this kind, file and version. A version
	// below one selects the newest stored version.
	Load(ctx context.Context, kind domain.ArtifactKind, filePath string, version int) (*domain.Artifact, bool, error)

	// Delete removes every artifact of filePath and returns them as a backup.
	// A file without artifacts yields an empty backup and no error.
	Delete(ctx context.Context, filePath string) ([]domain.Artifact, error)

	// Restore writes back artifacts returned by Delete.
	Restore(ctx context.Context, artifacts []domain.Artifact) error

	// Exists reports whether any artifact is stored for filePath.
	Exists(ctx context.Context, filePath string) (bool, error)
}
