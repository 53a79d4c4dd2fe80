package domain

import "path/filepath"

const (
	// DataDirName is the name of the project-local data directory.
	DataDirName = ".strata"

	// FastDirName is the directory holding the durable fast tier.
	FastDirName = "fast"

	// ArtifactsDirName is the directory holding versioned artifact files.
	ArtifactsDirName = "artifacts"

	// IndexFileName is the fallback index file used when the durable backend is unavailable.
	IndexFileName = "index.json"

	// AuditLogFile is the name of the audit trail.
	AuditLogFile = "audit.log"

	// ConfigFileName is the name of the optional project configuration file.
	ConfigFileName = "strata.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DataPath returns the data directory for the project rooted at root.
func DataPath(root string) string {
	return filepath.Join(root, DataDirName)
}

// FastStorePath returns the badger directory for the project rooted at root.
func FastStorePath(root string) string {
	return filepath.Join(root, DataDirName, FastDirName)
}

// ArtifactsPath returns the artifact directory for the project rooted at root.
func ArtifactsPath(root string) string {
	return filepath.Join(root, DataDirName, ArtifactsDirName)
}

// IndexFilePath returns the fallback index file for the project rooted at root.
func IndexFilePath(root string) string {
	return filepath.Join(root, DataDirName, IndexFileName)
}

// AuditLogPath returns the audit trail path for the project rooted at root.
func AuditLogPath(root string) string {
	return filepath.Join(root, DataDirName, AuditLogFile)
}
