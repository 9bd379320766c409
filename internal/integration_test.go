// Package internal holds end-to-end tests that run a scan, write a report,
// delete through the selection engine and compare the reconciled tree with
// a fresh walk of the disk.
package internal

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yourusername/size-check/internal/backend"
	"github.com/yourusername/size-check/internal/engine"
	"github.com/yourusername/size-check/internal/report"
	"github.com/yourusername/size-check/internal/safety"
	"github.com/yourusername/size-check/internal/scanner"
	"github.com/yourusername/size-check/internal/selection"
	"github.com/yourusername/size-check/internal/sizefmt"
	"github.com/yourusername/size-check/internal/testutil"
	"github.com/yourusername/size-check/internal/tree"
)

func scan(t *testing.T, root string) *scanner.ScanResult {
	t.Helper()
	result, err := scanner.NewScanner(root, scanner.DefaultFilters(false)).Scan()
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	return result
}

func newSelection(root *tree.FolderEntry) *selection.Engine {
	remover := engine.NewEngine(backend.NewBackend(), nil).WithGuard(func(path string) error {
		return safety.CheckDeletable(path, root.Path)
	})
	return selection.NewEngine(root, remover)
}

// After deleting through the selection engine the reconciled working tree
// matches what a new scan finds on disk.
func TestReconciledTreeMatchesRescan(t *testing.T) {
	ctx := testutil.TimeoutContext(t)
	root := testutil.CreateLayout(t, testutil.Layout{
		"Films/Heat (1995)/Heat.mkv":       3000,
		"Films/Ronin (1998)/Ronin.mkv":     2500,
		"Séries/Show/Season 01/S01E01.mkv": 1200,
		"Séries/Show/Season 01/S01E02.mkv": 800,
		"Séries/Show/Season 02/S02E01.mkv": 900,
	})

	result := scan(t, root)
	tree.Sort(result.Root, tree.ByFolderSize)
	e := newSelection(result.Root)

	heat := filepath.Join(root, "Films", "Heat (1995)")
	episode := filepath.Join(root, "Séries", "Show", "Season 01", "S01E02.mkv")
	season2 := filepath.Join(root, "Séries", "Show", "Season 02")
	for _, p := range []string{heat, episode, season2} {
		if err := e.Toggle(p); err != nil {
			t.Fatalf("toggle %s: %v", p, err)
		}
	}
	if got := e.SelectedSize(); got != 3000+800+900 {
		t.Fatalf("expected 4700 bytes selected, got %d", got)
	}
	if !e.RequestConfirm() {
		t.Fatal("expected confirmation request")
	}

	outcome := e.Confirm(ctx)
	if outcome.Result.FailedCount != 0 {
		t.Fatalf("unexpected failures: %+v", outcome.Result.Errors)
	}

	rescanned := scan(t, root)
	if !tree.Equal(e.Root(), rescanned.Root) {
		t.Fatal("reconciled tree differs from a fresh scan")
	}
	if err := tree.Validate(e.Root()); err != nil {
		t.Fatal(err)
	}
	if e.Root().Size != 2500+1200 {
		t.Fatalf("expected 3700 bytes left, got %d", e.Root().Size)
	}
	if e.Root().Stats() != rescanned.Summary {
		t.Fatalf("stats %+v differ from walk summary %+v", e.Root().Stats(), rescanned.Summary)
	}
}

// Deleting everything below the root leaves an empty root that is never
// itself removed.
func TestDeleteEverythingKeepsRoot(t *testing.T) {
	ctx := testutil.TimeoutContext(t)
	root := testutil.CreateLayout(t, testutil.MediaLibrary)

	result := scan(t, root)
	e := newSelection(result.Root)
	if err := e.ToggleFolder(result.Root.Path); err != nil {
		t.Fatal(err)
	}

	outcome := e.Confirm(ctx)
	if outcome.Result.FailedCount != 0 {
		t.Fatalf("selecting everything must not send the root for deletion: %+v", outcome.Result.Errors)
	}
	for _, p := range outcome.Result.Processed {
		if p == result.Root.Path {
			t.Fatal("root was part of the batch")
		}
	}
	if !testutil.Exists(root) {
		t.Fatal("root was deleted")
	}
	if e.Root().Size != 0 || len(e.Root().Subfolders) != 0 || len(e.Root().Files) != 0 {
		t.Fatalf("expected an empty working tree, got %+v", e.Root())
	}
	// Filtered entries are not part of the selection and stay on disk.
	if !testutil.Exists(filepath.Join(root, ".hidden", "secret.mkv")) {
		t.Fatal("hidden entries outside the tree must not be deleted")
	}
}

// The text report of a scanned library lists every kept entry once.
func TestReportListsScannedEntries(t *testing.T) {
	root := testutil.CreateLayout(t, testutil.MediaLibrary)
	result := scan(t, root)
	tree.Sort(result.Root, tree.ByFileSize)

	var buf bytes.Buffer
	if err := report.WriteText(&buf, result.Root, sizefmt.DefaultFormatter()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	stats := result.Root.Stats()
	if expected := int(stats.TotalFiles + stats.TotalFolders + 1); len(lines) != expected {
		t.Fatalf("expected %d lines, got %d:\n%s", expected, len(lines), buf.String())
	}
	if !strings.Contains(buf.String(), "Séries") {
		t.Fatalf("expected the NFC folder name in the listing:\n%s", buf.String())
	}
}
