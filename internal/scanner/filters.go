package scanner

import (
	"path/filepath"
	"strings"
)

// DefaultMediaExtensions is the allow-list used when IncludeAllExtensions
// is false. Extensions are lower-case without the leading dot.
var DefaultMediaExtensions = []string{
	"mkv", "mp4", "avi", "mov", "m4v", "wmv", "flv", "webm",
	"ts", "m2ts", "mpg", "mpeg", "iso",
}

// trickplaySuffix marks thumbnail-preview sidecar directories.
const trickplaySuffix = ".trickplay"

// osMetadataNames are bookkeeping entries written by macOS and Windows.
var osMetadataNames = map[string]struct{}{
	".DS_Store":                 {},
	"Thumbs.db":                 {},
	"desktop.ini":               {},
	".Spotlight-V100":           {},
	".Trashes":                  {},
	".fseventsd":                {},
	"$RECYCLE.BIN":              {},
	"System Volume Information": {},
}

// Filters decides which entries take part in the walk.
type Filters struct {
	// IncludeAllExtensions keeps every file; otherwise only MediaExtensions.
	IncludeAllExtensions bool
	// ExcludeTrickplay skips directories named "*.trickplay".
	ExcludeTrickplay bool
	// SkipHidden skips entries whose name starts with ".".
	SkipHidden bool
	// SkipOSMetadata skips .DS_Store, Thumbs.db, AppleDouble files and similar.
	SkipOSMetadata bool
	// MediaExtensions overrides DefaultMediaExtensions when non-empty.
	MediaExtensions []string
}

// DefaultFilters returns the command-line defaults: hidden entries and OS
// metadata are skipped, and includeAll switches between media-only without
// trickplay sidecars and everything.
func DefaultFilters(includeAll bool) Filters {
	return Filters{
		IncludeAllExtensions: includeAll,
		ExcludeTrickplay:     !includeAll,
		SkipHidden:           true,
		SkipOSMetadata:       true,
	}
}

// compiled is Filters with the extension list turned into a set.
type compiled struct {
	Filters
	extensions map[string]struct{}
}

func compile(f Filters) compiled {
	exts := f.MediaExtensions
	if len(exts) == 0 {
		exts = DefaultMediaExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return compiled{Filters: f, extensions: set}
}

// skipEntry applies the rules shared by files and directories.
func (c compiled) skipEntry(name string) bool {
	if c.SkipHidden && strings.HasPrefix(name, ".") {
		return true
	}
	if c.SkipOSMetadata {
		if _, ok := osMetadataNames[name]; ok {
			return true
		}
		if strings.HasPrefix(name, "._") {
			return true
		}
	}
	return false
}

// skipDir reports whether the walk must not descend into a directory.
// The counting pre-pass and the tree walk both use it.
func (c compiled) skipDir(name string) bool {
	if c.skipEntry(name) {
		return true
	}
	return c.ExcludeTrickplay && strings.HasSuffix(strings.ToLower(name), trickplaySuffix)
}

// skipFile reports whether a non-directory entry is left out of the tree.
func (c compiled) skipFile(name string) bool {
	if c.skipEntry(name) {
		return true
	}
	if c.IncludeAllExtensions {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	_, ok := c.extensions[ext]
	return !ok
}
