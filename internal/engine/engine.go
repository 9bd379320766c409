// Package engine runs deletion batches. Paths are processed one at a time,
// deepest first, and a failure never stops the rest of the batch.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/yourusername/size-check/internal/backend"
	"github.com/yourusername/size-check/internal/logger"
)

// Engine deletes batches of paths through a Backend.
type Engine struct {
	backend          backend.Backend
	guard            func(path string) error
	progressCallback func(int)
}

// DeletionResult contains statistics and errors from a deletion batch.
type DeletionResult struct {
	DeletedCount    int         // Paths successfully deleted
	FailedCount     int         // Paths that failed or were refused
	Errors          []FileError // One entry per failed path
	Processed       []string    // Every attempted path, in attempt order
	DurationSeconds float64     // Total time taken
	AverageRate     float64     // Paths per second
}

// FileError records why a specific path could not be deleted.
type FileError struct {
	Path  string // Path that failed
	Error string // Error message
}

// NewEngine creates an engine over b.
//
// Parameters:
//   - b: The backend performing the physical removal
//   - progressCallback: Called after each attempted path with the number
//     attempted so far (may be nil)
func NewEngine(b backend.Backend, progressCallback func(int)) *Engine {
	return &Engine{
		backend:          b,
		progressCallback: progressCallback,
	}
}

// WithGuard installs a check run before each deletion. A non-nil error
// refuses that path and counts as a failure.
func (e *Engine) WithGuard(guard func(path string) error) *Engine {
	e.guard = guard
	return e
}

// Delete attempts every path once. Deeper paths go first so children are
// removed before their parents. Context cancellation stops the batch before
// the next path; paths not reached are not listed in Processed.
func (e *Engine) Delete(ctx context.Context, paths []string) *DeletionResult {
	start := time.Now()
	result := &DeletionResult{
		Errors:    make([]FileError, 0),
		Processed: make([]string, 0, len(paths)),
	}

	for _, path := range orderDeepestFirst(paths) {
		if ctx.Err() != nil {
			logger.Warning("Deletion interrupted, %d of %d paths not attempted", len(paths)-len(result.Processed), len(paths))
			break
		}

		result.Processed = append(result.Processed, path)
		if err := e.deletePath(path); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, FileError{Path: path, Error: err.Error()})
			logger.LogFileError(path, err)
		} else {
			result.DeletedCount++
			logger.Debug("Deleted: %s", path)
		}

		if e.progressCallback != nil {
			e.progressCallback(len(result.Processed))
		}
	}

	result.DurationSeconds = time.Since(start).Seconds()
	if result.DurationSeconds > 0 {
		result.AverageRate = float64(result.DeletedCount) / result.DurationSeconds
	}
	return result
}

// deletePath removes path as a file, falling back to recursive directory
// removal. A missing path fails immediately.
func (e *Engine) deletePath(path string) error {
	if e.guard != nil {
		if err := e.guard(path); err != nil {
			return fmt.Errorf("refused: %w", err)
		}
	}

	err := e.backend.DeleteFile(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if dirErr := e.backend.DeleteDirectory(path); dirErr != nil {
		return fmt.Errorf("failed to delete: %w", dirErr)
	}
	return nil
}

// orderDeepestFirst returns a copy of paths sorted by descending depth.
// Paths of equal depth keep their input order.
func orderDeepestFirst(paths []string) []string {
	ordered := make([]string, len(paths))
	copy(ordered, paths)
	sort.SliceStable(ordered, func(i, j int) bool {
		return countPathSeparators(ordered[i]) > countPathSeparators(ordered[j])
	})
	return ordered
}

// countPathSeparators counts '/' and '\' in path.
func countPathSeparators(path string) int {
	count := 0
	for _, char := range path {
		if char == '/' || char == '\\' {
			count++
		}
	}
	return count
}

// SetupInterruptHandler returns a context cancelled on SIGINT or SIGTERM.
func SetupInterruptHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
