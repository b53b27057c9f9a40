package adapter

import (
	"io"
	"os"
)

// FileSystem defines an interface for file system operations to enable mocking.
// Upload handlers stage decoded images on disk before pinning, then remove them.
//
//go:generate mockgen -source=filesystem.go -destination=../mocks/filesystem.go -package=mocks -mock_names=FileSystem=MockFileSystem
type FileSystem interface {
	// WriteFile writes data to the named file, creating it if necessary
	WriteFile(name string, data []byte) error

	// Open opens the named file for reading
	Open(name string) (io.ReadCloser, error)

	// Remove removes the named file
	Remove(name string) error

	// TempDir returns the default directory to use for temporary files
	TempDir() string
}

// RealFileSystem implements FileSystem using the standard os package
type RealFileSystem struct{}

// NewFileSystem creates a new real file system
func NewFileSystem() FileSystem {
	return &RealFileSystem{}
}

// WriteFile writes data to the named file, creating it if necessary
func (fs *RealFileSystem) WriteFile(name string, data []byte) error {
	return os.WriteFile(name, data, 0o600)
}

// Open opens the named file for reading
func (fs *RealFileSystem) Open(name string) (io.ReadCloser, error) {
	return os.Open(name) //nolint:gosec,G304
}

// Remove removes the named file
func (fs *RealFileSystem) Remove(name string) error {
	return os.Remove(name)
}

// TempDir returns the default directory to use for temporary files
func (fs *RealFileSystem) TempDir() string {
	return os.TempDir()
}
