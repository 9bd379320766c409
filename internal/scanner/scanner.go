// Package scanner builds the size tree of a directory. The walk is
// read-only, never follows symlinks, and skips anything it cannot read
// instead of failing.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"

	"github.com/yourusername/size-check/internal/logger"
	"github.com/yourusername/size-check/internal/progress"
	"github.com/yourusername/size-check/internal/tree"
)

// Scanner walks one root directory with a fixed set of filters.
type Scanner struct {
	rootPath string
	filters  compiled
	counter  progress.Counter
}

// ScanResult is the built tree plus the counters gathered during the walk.
type ScanResult struct {
	Root    *tree.FolderEntry
	Summary tree.Summary
	Skipped int // entries that could not be read or stat'ed
}

// NewScanner creates a Scanner for rootPath. Relative paths are resolved
// against the working directory so every entry carries an absolute path.
func NewScanner(rootPath string, filters Filters) *Scanner {
	if abs, err := filepath.Abs(rootPath); err == nil {
		rootPath = abs
	}
	return &Scanner{
		rootPath: rootPath,
		filters:  compile(filters),
	}
}

// WithProgress sets a counter incremented once per directory descended into.
func (s *Scanner) WithProgress(counter progress.Counter) *Scanner {
	s.counter = counter
	return s
}

// Root returns the absolute root path being scanned.
func (s *Scanner) Root() string {
	return s.rootPath
}

// Scan walks the tree depth-first and returns the aggregated model.
//
// Only a root that cannot be opened is an error. Unreadable subdirectories
// and entries whose metadata cannot be read are logged, counted in Skipped
// and contribute nothing.
func (s *Scanner) Scan() (*ScanResult, error) {
	logger.Info("Starting scan of directory: %s", s.rootPath)

	entries, err := s.readRoot()
	if err != nil {
		return nil, err
	}

	result := &ScanResult{}
	root := tree.NewFolder(s.rootPath, displayName(filepath.Base(s.rootPath)))
	s.visited()
	s.fill(root, entries, result)
	result.Root = root

	logger.Info("Scan complete: %d folders, %d files, %d bytes, %d skipped",
		result.Summary.TotalFolders, result.Summary.TotalFiles, result.Summary.TotalSize, result.Skipped)

	return result, nil
}

// readRoot opens the root directory, the single fatal failure of a scan.
func (s *Scanner) readRoot() ([]os.DirEntry, error) {
	info, err := os.Stat(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access root %s: %w", s.rootPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", s.rootPath)
	}
	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read root %s: %w", s.rootPath, err)
	}
	return entries, nil
}

// fill adds the filtered entries of folder and recurses into subdirectories.
func (s *Scanner) fill(folder *tree.FolderEntry, entries []os.DirEntry, result *ScanResult) {
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(folder.Path, name)

		if entry.IsDir() {
			if s.filters.skipDir(name) {
				logger.Debug("Skipping directory: %s", path)
				continue
			}
			children, err := os.ReadDir(path)
			if err != nil {
				result.Skipped++
				logger.LogFileWarning(path, fmt.Sprintf("Cannot read directory: %v", err))
				continue
			}
			sub := tree.NewFolder(path, displayName(name))
			s.visited()
			result.Summary.TotalFolders++
			s.fill(sub, children, result)
			folder.AddSubfolder(sub)
			continue
		}

		if s.filters.skipFile(name) {
			continue
		}
		// DirEntry.Info does not follow symlinks, so links count as small files.
		info, err := entry.Info()
		if err != nil {
			result.Skipped++
			logger.LogFileWarning(path, fmt.Sprintf("Cannot stat file: %v", err))
			continue
		}
		size := info.Size()
		if size < 0 {
			size = 0
		}
		folder.AddFile(tree.FileEntry{Path: path, Name: displayName(name), Size: size})
		result.Summary.TotalFiles++
		result.Summary.TotalSize += size
	}
}

func (s *Scanner) visited() {
	if s.counter != nil {
		s.counter.Increment()
	}
}

// CountEntries returns the number of directories Scan will descend into,
// the root included. It applies the same skip rules as Scan.
func (s *Scanner) CountEntries() int64 {
	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		return 0
	}
	return 1 + s.countDirs(s.rootPath, entries)
}

func (s *Scanner) countDirs(dir string, entries []os.DirEntry) int64 {
	var count int64
	for _, entry := range entries {
		if !entry.IsDir() || s.filters.skipDir(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		children, err := os.ReadDir(path)
		if err != nil {
			continue
		}
		count += 1 + s.countDirs(path, children)
	}
	return count
}

// displayName normalizes to NFC; paths stay byte-exact.
func displayName(name string) string {
	return norm.NFC.String(name)
}
