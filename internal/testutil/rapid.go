package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/yourusername/size-check/internal/tree"
)

// RapidCheck wraps rapid.Check with the configured iteration count.
// rapid reads the count from RAPID_CHECKS.
func RapidCheck(t *testing.T, fn func(*rapid.T)) {
	t.Helper()

	config := GetTestConfig()
	os.Setenv("RAPID_CHECKS", fmt.Sprintf("%d", config.IterationCount))

	if config.VerboseOutput {
		t.Logf("Property test starting with %d iterations (intensity: %s)",
			config.IterationCount, config.Intensity)
	}

	rapid.Check(t, fn)
}

// RapidFileSizeGenerator produces sizes in [0, MaxFileSize].
func RapidFileSizeGenerator(config TestConfig) *rapid.Generator[int64] {
	return rapid.Int64Range(0, config.MaxFileSize)
}

// RapidTree draws a well-formed in-memory tree rooted at root. Every folder
// satisfies the size invariant and every path is unique.
func RapidTree(t *rapid.T, root string, config TestConfig) *tree.FolderEntry {
	folder := tree.NewFolder(root, filepath.Base(root))
	drawFolder(t, folder, 0, config, "n")
	return folder
}

func drawFolder(t *rapid.T, folder *tree.FolderEntry, depth int, config TestConfig, label string) {
	numFiles := rapid.IntRange(0, config.MaxFilesPerFolder).Draw(t, label+".files")
	for i := 0; i < numFiles; i++ {
		name := fmt.Sprintf("episode_%d.mkv", i)
		size := RapidFileSizeGenerator(config).Draw(t, fmt.Sprintf("%s.size%d", label, i))
		folder.AddFile(tree.FileEntry{
			Path: filepath.Join(folder.Path, name),
			Name: name,
			Size: size,
		})
	}

	if depth >= config.MaxDepth {
		return
	}

	numSubs := rapid.IntRange(0, config.MaxSubfolders).Draw(t, label+".subs")
	for i := 0; i < numSubs; i++ {
		name := fmt.Sprintf("Season %02d", i+1)
		sub := tree.NewFolder(filepath.Join(folder.Path, name), name)
		drawFolder(t, sub, depth+1, config, fmt.Sprintf("%s.%d", label, i))
		folder.AddSubfolder(sub)
	}
}

// RapidFolderPath picks a random folder path from the tree, root excluded.
// It returns "" when the tree has no subfolders.
func RapidFolderPath(t *rapid.T, root *tree.FolderEntry) string {
	var paths []string
	root.Walk(func(f *tree.FolderEntry) bool {
		if f != root {
			paths = append(paths, f.Path)
		}
		return true
	})
	if len(paths) == 0 {
		return ""
	}
	return rapid.SampledFrom(paths).Draw(t, "folder")
}
