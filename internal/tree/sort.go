package tree

import (
	"fmt"
	"slices"
	"strings"
)

// SortMode selects which children of each folder are reordered.
type SortMode int

const (
	// ByFileSize orders each folder's files by size, largest first.
	ByFileSize SortMode = iota
	// ByFolderSize orders each folder's subfolders by aggregate size, largest first.
	ByFolderSize
)

// String returns the flag spelling of the mode.
func (m SortMode) String() string {
	switch m {
	case ByFileSize:
		return "file"
	case ByFolderSize:
		return "folder"
	default:
		return fmt.Sprintf("SortMode(%d)", int(m))
	}
}

// ParseSortMode accepts "file" or "folder" (case-insensitive).
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file", "":
		return ByFileSize, nil
	case "folder":
		return ByFolderSize, nil
	default:
		return ByFileSize, fmt.Errorf("invalid sort mode %q (expected file or folder)", s)
	}
}

// Sort reorders the tree in place, deciding a folder's own ordering before
// descending into its subfolders. Ties keep their prior relative order.
// Sizes and membership are never changed.
func Sort(root *FolderEntry, by SortMode) {
	switch by {
	case ByFileSize:
		slices.SortStableFunc(root.Files, func(a, b FileEntry) int {
			return compareDesc(a.Size, b.Size)
		})
	case ByFolderSize:
		slices.SortStableFunc(root.Subfolders, func(a, b *FolderEntry) int {
			return compareDesc(a.Size, b.Size)
		})
	}
	for _, sub := range root.Subfolders {
		Sort(sub, by)
	}
}

func compareDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
