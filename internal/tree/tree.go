// Package tree holds the hierarchical size model of a scanned directory:
// folders own their files and subfolders by value, and every folder's Size
// is the sum of everything beneath it.
package tree

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileEntry is a single file in the model. It is immutable once created.
type FileEntry struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// FolderEntry is a directory and everything it owns.
// Invariant: Size == sum(Files[*].Size) + sum(Subfolders[*].Size).
type FolderEntry struct {
	Path       string         `json:"path"`
	Name       string         `json:"name"`
	Size       int64          `json:"size"`
	Files      []FileEntry    `json:"files"`
	Subfolders []*FolderEntry `json:"subfolders"`
}

// Summary holds the counters accumulated once during a walk.
type Summary struct {
	TotalFiles   int64 `json:"total_files"`
	TotalFolders int64 `json:"total_folders"`
	TotalSize    int64 `json:"total_size"`
}

// NewFolder returns an empty folder for path, using name as display name.
func NewFolder(path, name string) *FolderEntry {
	return &FolderEntry{
		Path:       path,
		Name:       name,
		Files:      make([]FileEntry, 0),
		Subfolders: make([]*FolderEntry, 0),
	}
}

// AddFile appends a file and adds its size to the folder total.
func (f *FolderEntry) AddFile(file FileEntry) {
	f.Files = append(f.Files, file)
	f.Size += file.Size
}

// AddSubfolder appends a fully built subfolder and adds its aggregate size.
func (f *FolderEntry) AddSubfolder(sub *FolderEntry) {
	f.Subfolders = append(f.Subfolders, sub)
	f.Size += sub.Size
}

// Recompute re-establishes the size invariant bottom-up and returns the
// folder's new aggregate size.
func (f *FolderEntry) Recompute() int64 {
	var total int64
	for _, file := range f.Files {
		total += file.Size
	}
	for _, sub := range f.Subfolders {
		total += sub.Recompute()
	}
	f.Size = total
	return total
}

// Walk visits f and every descendant folder in pre-order. Returning false
// from fn stops descent into that folder's subfolders.
func (f *FolderEntry) Walk(fn func(*FolderEntry) bool) {
	if !fn(f) {
		return
	}
	for _, sub := range f.Subfolders {
		sub.Walk(fn)
	}
}

// FindFolder returns the folder with the given path, or nil.
func (f *FolderEntry) FindFolder(path string) *FolderEntry {
	if f.Path == path {
		return f
	}
	for _, sub := range f.Subfolders {
		if !isWithin(sub.Path, path) {
			continue
		}
		if found := sub.FindFolder(path); found != nil {
			return found
		}
	}
	return nil
}

// FindFile returns the file with the given path and whether it was found.
func (f *FolderEntry) FindFile(path string) (FileEntry, bool) {
	parent := f.FindFolder(filepath.Dir(path))
	if parent == nil {
		return FileEntry{}, false
	}
	for _, file := range parent.Files {
		if file.Path == path {
			return file, true
		}
	}
	return FileEntry{}, false
}

// Descendants returns the paths of every file and folder below f, not
// including f itself.
func (f *FolderEntry) Descendants() []string {
	paths := make([]string, 0, len(f.Files)+len(f.Subfolders))
	for _, file := range f.Files {
		paths = append(paths, file.Path)
	}
	for _, sub := range f.Subfolders {
		paths = append(paths, sub.Path)
		paths = append(paths, sub.Descendants()...)
	}
	return paths
}

// Clone returns a deep copy of f.
func (f *FolderEntry) Clone() *FolderEntry {
	clone := &FolderEntry{
		Path:       f.Path,
		Name:       f.Name,
		Size:       f.Size,
		Files:      make([]FileEntry, len(f.Files)),
		Subfolders: make([]*FolderEntry, 0, len(f.Subfolders)),
	}
	copy(clone.Files, f.Files)
	for _, sub := range f.Subfolders {
		clone.Subfolders = append(clone.Subfolders, sub.Clone())
	}
	return clone
}

// Stats counts files, folders (excluding f) and bytes in the tree.
func (f *FolderEntry) Stats() Summary {
	var s Summary
	f.Walk(func(folder *FolderEntry) bool {
		if folder != f {
			s.TotalFolders++
		}
		s.TotalFiles += int64(len(folder.Files))
		for _, file := range folder.Files {
			s.TotalSize += file.Size
		}
		return true
	})
	return s
}

// Validate checks the size invariant on every folder and reports the
// first violation.
func Validate(root *FolderEntry) error {
	var err error
	root.Walk(func(f *FolderEntry) bool {
		if err != nil {
			return false
		}
		var sum int64
		for _, file := range f.Files {
			if file.Size < 0 {
				err = fmt.Errorf("file %s has negative size %d", file.Path, file.Size)
				return false
			}
			sum += file.Size
		}
		for _, sub := range f.Subfolders {
			sum += sub.Size
		}
		if sum != f.Size {
			err = fmt.Errorf("folder %s: size %d does not match contents %d", f.Path, f.Size, sum)
			return false
		}
		return true
	})
	return err
}

// isWithin reports whether path is dir or lies beneath it.
func isWithin(dir, path string) bool {
	if dir == path {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
