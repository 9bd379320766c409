package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Layout describes a directory tree to create. Keys are slash-separated
// paths relative to the root. A key ending in "/" creates an empty
// directory; any other key creates a file of the given size.
type Layout map[string]int64

// MediaLibrary is a small library with shows, a movie, a trickplay sidecar,
// OS metadata and a non-media file.
var MediaLibrary = Layout{
	"Films/Heat (1995)/Heat.mkv":               3000,
	"Films/Heat (1995)/Heat.srt":               40,
	"Séries/Show/Season 01/S01E01.mkv":         1200,
	"Séries/Show/Season 01/S01E02.mp4":         800,
	"Séries/Show/Season 01/S01E01.trickplay/1": 10,
	"Séries/Show/Season 01/.DS_Store":          6,
	"Séries/Show/Season 01/._S01E01.mkv":       4,
	".hidden/secret.mkv":                       100,
	"Empty/":                                   0,
}

// WriteLayout creates layout under root. File contents are sparse so large
// sizes cost no disk space.
func WriteLayout(root string, layout Layout) error {
	keys := make([]string, 0, len(layout))
	for k := range layout {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, rel := range keys {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(path, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", path, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", path, err)
		}
		if err := f.Truncate(layout[rel]); err != nil {
			f.Close()
			return fmt.Errorf("failed to size file %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close file %s: %w", path, err)
		}
	}
	return nil
}

// CreateLayout writes layout into a fresh temporary directory and returns it.
func CreateLayout(t *testing.T, layout Layout) string {
	t.Helper()

	dir := t.TempDir()
	if err := WriteLayout(dir, layout); err != nil {
		t.Fatalf("Failed to write layout: %v", err)
	}
	return dir
}

// CountFiles recursively counts regular files below dir.
func CountFiles(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count, err
}

// Exists reports whether path is present on disk.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
