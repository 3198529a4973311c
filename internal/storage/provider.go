// Package storage writes text files: directly to caller-chosen paths, and
// into the application's own app-data directory.
package storage

import "github.com/starford/fusendo/internal/models"

// Provider is the interface for app-data file operations. Paths are relative
// to the app-data root.
type Provider interface {
	// List returns metadata for every regular file under dir.
	List(dir string) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) (*models.FileMeta, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Delete removes the file at path.
	Delete(path string) error
	// Root returns the absolute app-data directory.
	Root() string
}
