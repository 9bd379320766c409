// Package backend performs the physical removal of files and directory
// trees on behalf of the deletion engine.
package backend

// Backend removes entries from the filesystem.
type Backend interface {
	// DeleteFile removes a single file, symlink or empty directory.
	DeleteFile(path string) error

	// DeleteDirectory removes a directory and everything below it.
	// A path that does not exist is an error.
	DeleteDirectory(path string) error
}

// NewBackend returns the backend used by the command line.
func NewBackend() Backend {
	return NewGenericBackend()
}
