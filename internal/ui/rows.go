package ui

import (
	"github.com/yourusername/size-check/internal/selection"
	"github.com/yourusername/size-check/internal/tree"
)

// row is one visible line of the flattened tree.
type row struct {
	path     string
	name     string
	size     int64
	depth    int
	isDir    bool
	expanded bool
	state    selection.State
}

// buildRows flattens the expanded part of the working tree. Folders that
// vanished from disk are pruned from the engine before they are listed.
func buildRows(e *selection.Engine, expanded map[string]bool) []row {
	var rows []row
	var visit func(folder *tree.FolderEntry, depth int)
	visit = func(folder *tree.FolderEntry, depth int) {
		open := expanded[folder.Path]
		if open {
			e.PruneStale(folder.Path)
		}
		rows = append(rows, row{
			path:     folder.Path,
			name:     folder.Name,
			size:     folder.Size,
			depth:    depth,
			isDir:    true,
			expanded: open,
		})
		if !open {
			return
		}
		for _, sub := range folder.Subfolders {
			visit(sub, depth+1)
		}
		for _, file := range folder.Files {
			state := selection.Unselected
			if e.IsSelected(file.Path) {
				state = selection.Full
			}
			rows = append(rows, row{
				path:  file.Path,
				name:  file.Name,
				size:  file.Size,
				depth: depth + 1,
				state: state,
			})
		}
	}
	visit(e.Root(), 0)

	// Pruning can shrink sizes of rows already listed, so folder sizes and
	// states are read once the tree has settled.
	for i := range rows {
		if !rows[i].isDir {
			continue
		}
		if folder := e.Root().FindFolder(rows[i].path); folder != nil {
			rows[i].size = folder.Size
			rows[i].state = e.FolderState(folder.Path)
		}
	}
	return rows
}

func glyph(state selection.State) string {
	switch state {
	case selection.Full:
		return "[x]"
	case selection.Partial:
		return "[-]"
	default:
		return "[ ]"
	}
}

// parentIndex returns the index of the closest row above i with a smaller
// depth, or -1.
func parentIndex(rows []row, i int) int {
	for j := i - 1; j >= 0; j-- {
		if rows[j].depth < rows[i].depth {
			return j
		}
	}
	return -1
}
