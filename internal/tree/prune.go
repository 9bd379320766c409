package tree

import "sort"

// Prune removes every file or folder whose path is in paths from the tree
// below root and then recomputes aggregate sizes bottom-up. Paths that are
// not present are ignored. It returns the number of nodes removed; a
// removed folder counts once regardless of its contents.
//
// The root itself is never removed.
func Prune(root *FolderEntry, paths []string) int {
	if len(paths) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	removed := pruneSet(root, set)
	root.Recompute()
	return removed
}

// RemoveSubfolder drops the direct child folder with the given path and
// subtracts its size from parent. It reports whether a child was removed.
// Ancestors of parent are not adjusted; callers recompute from the root.
func RemoveSubfolder(parent *FolderEntry, path string) bool {
	for i, sub := range parent.Subfolders {
		if sub.Path == path {
			parent.Size -= sub.Size
			parent.Subfolders = append(parent.Subfolders[:i], parent.Subfolders[i+1:]...)
			return true
		}
	}
	return false
}

func pruneSet(f *FolderEntry, set map[string]struct{}) int {
	removed := 0

	files := f.Files[:0]
	for _, file := range f.Files {
		if _, ok := set[file.Path]; ok {
			removed++
			continue
		}
		files = append(files, file)
	}
	f.Files = files

	subs := f.Subfolders[:0]
	for _, sub := range f.Subfolders {
		if _, ok := set[sub.Path]; ok {
			removed++
			continue
		}
		removed += pruneSet(sub, set)
		subs = append(subs, sub)
	}
	f.Subfolders = subs

	return removed
}

// Equal reports whether a and b describe the same tree, ignoring the order
// of files and subfolders within each folder.
func Equal(a, b *FolderEntry) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Path != b.Path || a.Name != b.Name || a.Size != b.Size {
		return false
	}
	if len(a.Files) != len(b.Files) || len(a.Subfolders) != len(b.Subfolders) {
		return false
	}

	af := sortedFiles(a.Files)
	bf := sortedFiles(b.Files)
	for i := range af {
		if af[i] != bf[i] {
			return false
		}
	}

	as := sortedFolders(a.Subfolders)
	bs := sortedFolders(b.Subfolders)
	for i := range as {
		if !Equal(as[i], bs[i]) {
			return false
		}
	}
	return true
}

func sortedFiles(files []FileEntry) []FileEntry {
	out := make([]FileEntry, len(files))
	copy(out, files)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func sortedFolders(folders []*FolderEntry) []*FolderEntry {
	out := make([]*FolderEntry, len(folders))
	copy(out, folders)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
