package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/yourusername/size-check/internal/testutil"
	"github.com/yourusername/size-check/internal/tree"
)

type countingCounter struct{ n int64 }

func (c *countingCounter) Increment() { c.n++ }

func TestScanSummaryExcludesRootFolder(t *testing.T) {
	root := testutil.CreateLayout(t, testutil.Layout{
		"Show/a.mkv": 100,
		"Show/b.mkv": 300,
	})

	result, err := NewScanner(root, DefaultFilters(false)).Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	expected := tree.Summary{TotalFiles: 2, TotalFolders: 1, TotalSize: 400}
	if result.Summary != expected {
		t.Errorf("expected summary %+v, got %+v", expected, result.Summary)
	}
	if result.Root.Size != 400 {
		t.Errorf("expected root size 400, got %d", result.Root.Size)
	}
	if err := tree.Validate(result.Root); err != nil {
		t.Error(err)
	}

	tree.Sort(result.Root, tree.ByFileSize)
	files := result.Root.Subfolders[0].Files
	if files[0].Size != 300 || files[1].Size != 100 {
		t.Errorf("expected [300 100] after sort, got [%d %d]", files[0].Size, files[1].Size)
	}
}

func TestScanMediaLibraryDefaults(t *testing.T) {
	root := testutil.CreateLayout(t, testutil.MediaLibrary)

	counter := &countingCounter{}
	s := NewScanner(root, DefaultFilters(false)).WithProgress(counter)
	result, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	expected := tree.Summary{TotalFiles: 3, TotalFolders: 6, TotalSize: 5000}
	if result.Summary != expected {
		t.Errorf("expected summary %+v, got %+v", expected, result.Summary)
	}

	season := filepath.Join(root, "Séries", "Show", "Season 01")
	if result.Root.FindFolder(filepath.Join(season, "S01E01.trickplay")) != nil {
		t.Error("trickplay sidecar should be excluded")
	}
	for _, name := range []string{".DS_Store", "._S01E01.mkv"} {
		if _, ok := result.Root.FindFile(filepath.Join(season, name)); ok {
			t.Errorf("OS metadata %s should be excluded", name)
		}
	}
	if result.Root.FindFolder(filepath.Join(root, ".hidden")) != nil {
		t.Error("hidden directory should be excluded")
	}
	if _, ok := result.Root.FindFile(filepath.Join(root, "Films", "Heat (1995)", "Heat.srt")); ok {
		t.Error("non-media file should be excluded")
	}
	if result.Root.FindFolder(filepath.Join(root, "Empty")) == nil {
		t.Error("empty folder should be present")
	}

	if counter.n != s.CountEntries() {
		t.Errorf("pre-pass counted %d, walk visited %d", s.CountEntries(), counter.n)
	}
	if counter.n != result.Summary.TotalFolders+1 {
		t.Errorf("expected %d visits, got %d", result.Summary.TotalFolders+1, counter.n)
	}
}

func TestScanTrickplayExcludedFromCount(t *testing.T) {
	root := testutil.CreateLayout(t, testutil.Layout{
		"Show.trickplay/320 - 10x10/0.jpg": 10,
		"Show/S01E01.mkv":                  10,
	})

	excluded := NewScanner(root, DefaultFilters(false))
	included := NewScanner(root, DefaultFilters(true))

	// root, Show
	if got := excluded.CountEntries(); got != 2 {
		t.Errorf("expected 2 directories with trickplay excluded, got %d", got)
	}
	// root, Show, Show.trickplay, 320 - 10x10
	if got := included.CountEntries(); got != 4 {
		t.Errorf("expected 4 directories with trickplay included, got %d", got)
	}

	result, err := excluded.Scan()
	if err != nil {
		t.Fatal(err)
	}
	if result.Root.FindFolder(filepath.Join(root, "Show.trickplay")) != nil {
		t.Error("trickplay folder present in tree")
	}
	if result.Summary.TotalSize != 10 {
		t.Errorf("expected total size 10, got %d", result.Summary.TotalSize)
	}
}

func TestScanIncludeAll(t *testing.T) {
	root := testutil.CreateLayout(t, testutil.MediaLibrary)

	result, err := NewScanner(root, DefaultFilters(true)).Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// srt and the trickplay tile join the media files; metadata and hidden stay out.
	expected := tree.Summary{TotalFiles: 5, TotalFolders: 7, TotalSize: 5050}
	if result.Summary != expected {
		t.Errorf("expected summary %+v, got %+v", expected, result.Summary)
	}
}

func TestScanCustomExtensions(t *testing.T) {
	root := testutil.CreateLayout(t, testutil.Layout{
		"a.MKV": 1,
		"b.srt": 2,
		"c.nfo": 4,
	})

	filters := DefaultFilters(false)
	filters.MediaExtensions = []string{".srt", "nfo"}

	result, err := NewScanner(root, filters).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if result.Summary.TotalSize != 6 {
		t.Errorf("expected only srt and nfo (6 bytes), got %d", result.Summary.TotalSize)
	}
}

func TestScanDoesNotFollowSymlinks(t *testing.T) {
	root := testutil.CreateLayout(t, testutil.Layout{
		"Films/movie.mkv": 1000,
	})
	link := filepath.Join(root, "loop.mkv")
	if err := os.Symlink(root, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	result, err := NewScanner(root, DefaultFilters(false)).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if result.Root.FindFolder(link) != nil {
		t.Error("symlinked directory was descended into")
	}
	if _, ok := result.Root.FindFile(link); !ok {
		t.Error("symlink should be listed as a file")
	}
	if result.Summary.TotalFolders != 1 {
		t.Errorf("expected 1 folder, got %d", result.Summary.TotalFolders)
	}
}

func TestScanNormalizesDisplayNames(t *testing.T) {
	decomposed := "Se\u0301ries"
	root := testutil.CreateLayout(t, testutil.Layout{
		decomposed + "/ep.mkv": 5,
	})

	result, err := NewScanner(root, DefaultFilters(false)).Scan()
	if err != nil {
		t.Fatal(err)
	}
	sub := result.Root.Subfolders[0]
	if sub.Name != "S\u00e9ries" {
		t.Errorf("expected NFC display name, got %q", sub.Name)
	}
	if sub.Path != filepath.Join(root, decomposed) {
		t.Errorf("path must stay byte-exact, got %q", sub.Path)
	}
}

func TestScanSkipsUnreadableDirectory(t *testing.T) {
	testutil.SkipIfRoot(t)

	root := testutil.CreateLayout(t, testutil.Layout{
		"ok/a.mkv":     10,
		"locked/b.mkv": 20,
	})
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	counter := &countingCounter{}
	s := NewScanner(root, DefaultFilters(false)).WithProgress(counter)
	result, err := s.Scan()
	if err != nil {
		t.Fatalf("unreadable subdirectory must not fail the scan: %v", err)
	}

	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped entry, got %d", result.Skipped)
	}
	if result.Root.FindFolder(locked) != nil {
		t.Error("unreadable folder should not be in the tree")
	}
	if result.Root.Size != 10 {
		t.Errorf("expected size 10, got %d", result.Root.Size)
	}
	if counter.n != s.CountEntries() {
		t.Errorf("pre-pass counted %d, walk visited %d", s.CountEntries(), counter.n)
	}
}

func TestScanRootErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewScanner(filepath.Join(dir, "missing"), DefaultFilters(false)).Scan(); err == nil {
		t.Error("expected error for missing root")
	}

	file := filepath.Join(dir, "file.mkv")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewScanner(file, DefaultFilters(false)).Scan(); err == nil {
		t.Error("expected error when root is a file")
	}
	if got := NewScanner(filepath.Join(dir, "missing"), DefaultFilters(false)).CountEntries(); got != 0 {
		t.Errorf("expected 0 entries for missing root, got %d", got)
	}
}

// Built trees satisfy the size invariant, agree with the walk summary, and
// are equal when built twice.
func TestScanProperties(t *testing.T) {
	testutil.RapidCheck(t, func(rt *rapid.T) {
		dir, err := os.MkdirTemp("", "size-check-scan-*")
		if err != nil {
			rt.Fatal(err)
		}
		defer os.RemoveAll(dir)

		layout := rapidLayout(rt)
		if err := testutil.WriteLayout(dir, layout); err != nil {
			rt.Fatal(err)
		}

		filters := DefaultFilters(rapid.Bool().Draw(rt, "includeAll"))
		s := NewScanner(dir, filters)
		first, err := s.Scan()
		if err != nil {
			rt.Fatal(err)
		}
		second, err := s.Scan()
		if err != nil {
			rt.Fatal(err)
		}

		if err := tree.Validate(first.Root); err != nil {
			rt.Fatalf("invariant violated: %v", err)
		}
		if stats := first.Root.Stats(); stats != first.Summary {
			rt.Fatalf("tree stats %+v disagree with walk summary %+v", stats, first.Summary)
		}
		if !tree.Equal(first.Root, second.Root) {
			rt.Fatalf("two scans of an unchanged directory differ")
		}
	})
}

func rapidLayout(rt *rapid.T) testutil.Layout {
	dirs := []string{"", "A/", "A/B/", "C/", "C/x.trickplay/", ".hidden/"}
	names := []string{"ep.mkv", "film.mp4", "notes.txt", ".DS_Store", "clip.ts"}

	layout := testutil.Layout{}
	n := rapid.IntRange(0, 12).Draw(rt, "entries")
	for i := 0; i < n; i++ {
		d := rapid.SampledFrom(dirs).Draw(rt, "dir")
		name := rapid.SampledFrom(names).Draw(rt, "name")
		size := rapid.Int64Range(0, 5000).Draw(rt, "size")
		layout[fmt.Sprintf("%s%d_%s", d, i, name)] = size
	}
	return layout
}
