package domain

import "go.trai.ch/zerr"

var (
	// ErrEntryNotFound is returned when a file has no entry in the cache index.
	ErrEntryNotFound = zerr.New("cache entry not found")

	// ErrInvalidFilePath is returned when an empty or otherwise unusable file path is supplied.
	ErrInvalidFilePath = zerr.New("invalid file path")

	// ErrInvalidPattern is returned when a fast-tier key pattern cannot be compiled.
	ErrInvalidPattern = zerr.New("invalid key pattern")

	// ErrInvalidArtifactKind is returned when an artifact kind is not one of the known kinds.
	ErrInvalidArtifactKind = zerr.New("invalid artifact kind")

	// ErrFastStoreOpen is returned when the durable fast tier cannot be opened.
	ErrFastStoreOpen = zerr.New("failed to open fast tier store")

	// ErrFastStoreRead is returned when a fast-tier read fails.
	ErrFastStoreRead = zerr.New("failed to read from fast tier")

	// ErrFastStoreWrite is returned when a fast-tier write fails.
	ErrFastStoreWrite = zerr.New("failed to write to fast tier")

	// ErrFastStoreDelete is returned when fast-tier keys cannot be deleted.
	ErrFastStoreDelete = zerr.New("failed to delete from fast tier")

	// ErrFastStoreClosed is returned when a closed fast tier is used.
	ErrFastStoreClosed = zerr.New("fast tier store is closed")

	// ErrArtifactCreateFailed is returned when the artifact directory cannot be created.
	ErrArtifactCreateFailed = zerr.New("failed to create artifact directory")

	// ErrArtifactRead is returned when an artifact file cannot be read.
	ErrArtifactRead = zerr.New("failed to read artifact")

	// ErrArtifactWrite is returned when an artifact file cannot be written.
	ErrArtifactWrite = zerr.New("failed to write artifact")

	// ErrArtifactDelete is returned when artifact files cannot be deleted.
	ErrArtifactDelete = zerr.New("failed to delete artifact")

	// ErrArtifactUnmarshal is returned when an artifact file does not decode.
	ErrArtifactUnmarshal = zerr.New("failed to unmarshal artifact")

	// ErrIndexRead is returned when the persisted index cannot be read.
	ErrIndexRead = zerr.New("failed to read cache index")

	// ErrIndexWrite is returned when the index cannot be persisted.
	ErrIndexWrite = zerr.New("failed to persist cache index")

	// ErrIndexCorrupt is returned when the persisted index exists but does not decode.
	ErrIndexCorrupt = zerr.New("cache index is corrupt")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidBackend is returned when the configured cache backend is unknown.
	ErrInvalidBackend = zerr.New("invalid cache backend, expected 'auto', 'badger' or 'memory'")

	// ErrAuditOpen is returned when the audit trail cannot be opened.
	ErrAuditOpen = zerr.New("failed to open audit log")

	// ErrManagerInit is returned when a cache manager fails to initialize.
	ErrManagerInit = zerr.New("failed to initialize cache manager")

	// ErrRegistryClosed is returned when a closed registry is asked for a manager.
	ErrRegistryClosed = zerr.New("cache registry is closed")

	// ErrProjectPathResolve is returned when a project path cannot be canonicalized.
	ErrProjectPathResolve = zerr.New("failed to resolve project path")

	// ErrOperationFailed is returned when a transaction operation fails.
	ErrOperationFailed = zerr.New("transaction operation failed")

	// ErrRetriesExhausted is returned when every retry attempt failed.
	ErrRetriesExhausted = zerr.New("retries exhausted")

	// ErrWatcherStart is returned when the file watcher cannot be started.
	ErrWatcherStart = zerr.New("failed to start file watcher")

	// ErrCycleDetected is reported when the dependency graph contains a cycle.
	ErrCycleDetected = zerr.New("dependency cycle detected")

	// ErrFileRead is returned when a source file cannot be read from disk.
	ErrFileRead = zerr.New("failed to read source file")

	// ErrCleanFailed is returned when the data directory cannot be removed.
	ErrCleanFailed = zerr.New("failed to remove cache directory")
)
