package backend

import (
	"fmt"
	"os"

	"github.com/yourusername/size-check/internal/logger"
)

// GenericBackend deletes through the os package.
type GenericBackend struct{}

// NewGenericBackend creates a new GenericBackend.
func NewGenericBackend() *GenericBackend {
	return &GenericBackend{}
}

// DeleteFile deletes a single entry using os.Remove. Symlinks are removed,
// never their targets.
func (b *GenericBackend) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil {
		logger.Debug("os.Remove failed for file: %s (error: %v)", path, err)
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

// DeleteDirectory deletes a directory tree using os.RemoveAll.
// os.RemoveAll succeeds on missing paths, so existence is checked first
// to keep "already gone" reported as a failure.
func (b *GenericBackend) DeleteDirectory(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return fmt.Errorf("failed to delete directory %s: %w", path, err)
	}
	if err := os.RemoveAll(path); err != nil {
		logger.Debug("os.RemoveAll failed for directory: %s (error: %v)", path, err)
		return fmt.Errorf("failed to delete directory %s: %w", path, err)
	}
	return nil
}
