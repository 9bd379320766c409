// Package selection implements tri-state selection over a working copy of
// a scanned tree, the confirm/delete cycle, and reconciliation of the tree
// after deletions.
//
// Folder state is never stored. It is derived on demand from the set of
// selected paths, so a folder and its ancestors cannot disagree.
package selection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/yourusername/size-check/internal/engine"
	"github.com/yourusername/size-check/internal/logger"
	"github.com/yourusername/size-check/internal/tree"
)

// State is the derived selection state of a folder.
type State int

const (
	Unselected State = iota
	Partial
	Full
)

func (s State) String() string {
	switch s {
	case Unselected:
		return "unselected"
	case Partial:
		return "partial"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrNotFound is returned for paths that are not in the working tree.
var ErrNotFound = errors.New("path not in tree")

// Set is a set of absolute paths.
type Set map[string]struct{}

// Has reports whether path is in the set.
func (s Set) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Remover physically deletes a batch of paths.
type Remover interface {
	Delete(ctx context.Context, paths []string) *engine.DeletionResult
}

// Outcome is the result of a confirmed deletion.
type Outcome struct {
	Result  *engine.DeletionResult
	Removed int // nodes pruned from the working tree
}

// Engine owns the working tree, the selection set and the pending deletions.
// It is not safe for concurrent use.
type Engine struct {
	root       *tree.FolderEntry
	selected   Set
	pending    []string
	confirming bool
	remover    Remover
	exists     func(path string) bool
}

// NewEngine clones root into a working copy. The caller's tree is never
// modified.
func NewEngine(root *tree.FolderEntry, remover Remover) *Engine {
	return &Engine{
		root:     root.Clone(),
		selected: make(Set),
		remover:  remover,
		exists:   pathExists,
	}
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// WithExistsCheck replaces the on-disk existence check used by PruneStale.
func (e *Engine) WithExistsCheck(exists func(path string) bool) *Engine {
	e.exists = exists
	return e
}

// Root returns the working tree.
func (e *Engine) Root() *tree.FolderEntry {
	return e.root
}

// Remover returns the remover deletions are delegated to.
func (e *Engine) Remover() Remover {
	return e.remover
}

// Selected returns the selected paths in lexical order.
func (e *Engine) Selected() []string {
	paths := make([]string, 0, len(e.selected))
	for p := range e.selected {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// IsSelected reports whether path itself is selected.
func (e *Engine) IsSelected(path string) bool {
	return e.selected.Has(path)
}

// Pending returns the paths staged for pruning.
func (e *Engine) Pending() []string {
	return append([]string(nil), e.pending...)
}

// Confirming reports whether a deletion is awaiting confirmation.
func (e *Engine) Confirming() bool {
	return e.confirming
}

// StateOf derives the state of folder from set: Full when the folder and
// every descendant are present, Partial when some are, Unselected otherwise.
func StateOf(folder *tree.FolderEntry, set Set) State {
	selected, total := countSelected(folder, set)
	switch {
	case selected == 0:
		return Unselected
	case selected == total:
		return Full
	default:
		return Partial
	}
}

func countSelected(folder *tree.FolderEntry, set Set) (selected, total int) {
	total = 1 + len(folder.Files)
	if set.Has(folder.Path) {
		selected++
	}
	for _, file := range folder.Files {
		if set.Has(file.Path) {
			selected++
		}
	}
	for _, sub := range folder.Subfolders {
		s, t := countSelected(sub, set)
		selected += s
		total += t
	}
	return selected, total
}

// FolderState returns the state of the folder at path.
func (e *Engine) FolderState(path string) State {
	folder := e.root.FindFolder(path)
	if folder == nil {
		return Unselected
	}
	return StateOf(folder, e.selected)
}

// ToggleFolder selects the folder and every descendant unless it is fully
// selected, in which case all of them are deselected.
func (e *Engine) ToggleFolder(path string) error {
	folder := e.root.FindFolder(path)
	if folder == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	paths := append(folder.Descendants(), folder.Path)
	if StateOf(folder, e.selected) == Full {
		for _, p := range paths {
			delete(e.selected, p)
		}
		e.dropAncestors(folder.Path)
		return nil
	}
	for _, p := range paths {
		e.selected[p] = struct{}{}
	}
	return nil
}

// ToggleFile flips a single file. Deselecting it also drops its ancestor
// folders from the set, since deleting any of them would take the file too.
func (e *Engine) ToggleFile(path string) error {
	if _, ok := e.root.FindFile(path); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if e.selected.Has(path) {
		delete(e.selected, path)
		e.dropAncestors(path)
		return nil
	}
	e.selected[path] = struct{}{}
	return nil
}

// Toggle dispatches to ToggleFolder or ToggleFile.
func (e *Engine) Toggle(path string) error {
	if e.root.FindFolder(path) != nil {
		return e.ToggleFolder(path)
	}
	return e.ToggleFile(path)
}

// dropAncestors removes every folder above path, up to the root, from the
// selection.
func (e *Engine) dropAncestors(path string) {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		delete(e.selected, dir)
		if dir == e.root.Path || dir == filepath.Dir(dir) {
			return
		}
	}
}

// RequestDelete selects path and raises the confirmation flag.
func (e *Engine) RequestDelete(path string) error {
	if e.root.FindFolder(path) == nil {
		if _, ok := e.root.FindFile(path); !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
	}
	e.selected[path] = struct{}{}
	e.confirming = true
	return nil
}

// RequestConfirm raises the confirmation flag for the current selection.
// It reports false and does nothing when the selection is empty.
func (e *Engine) RequestConfirm() bool {
	if len(e.selected) == 0 {
		return false
	}
	e.confirming = true
	return true
}

// Cancel lowers the confirmation flag. The selection is kept.
func (e *Engine) Cancel() {
	e.confirming = false
}

// Batch snapshots the selection for deletion and lowers the confirmation
// flag. The working root stays in the set so its row still reads as fully
// selected, but it is never part of a batch. Callers running the remover
// themselves pass its result to Stage.
func (e *Engine) Batch() []string {
	e.confirming = false
	selected := e.Selected()
	batch := selected[:0]
	for _, p := range selected {
		if p != e.root.Path {
			batch = append(batch, p)
		}
	}
	return batch
}

// Stage appends every attempted path of result to the pending deletions,
// whatever the outcome of the physical step.
func (e *Engine) Stage(result *engine.DeletionResult) *engine.DeletionResult {
	if result != nil {
		e.pending = append(e.pending, result.Processed...)
	}
	return result
}

// Execute deletes every selected path through the remover and stages the
// attempted paths. Individual failures are reported in the result and do
// not stop the batch.
func (e *Engine) Execute(ctx context.Context) *engine.DeletionResult {
	batch := e.Batch()
	if e.remover == nil {
		logger.Error("No remover configured, %d paths not deleted", len(batch))
		return &engine.DeletionResult{}
	}
	return e.Stage(e.remover.Delete(ctx, batch))
}

// Reconcile prunes the pending paths from the working tree, recomputes
// sizes, and clears the selection and the pending list. It returns the
// number of nodes removed.
func (e *Engine) Reconcile() int {
	removed := tree.Prune(e.root, e.pending)
	logger.Debug("Reconciled %d pending paths, %d nodes removed", len(e.pending), removed)
	e.pending = nil
	e.selected = make(Set)
	return removed
}

// Confirm runs Execute then Reconcile.
func (e *Engine) Confirm(ctx context.Context) Outcome {
	result := e.Execute(ctx)
	return Outcome{Result: result, Removed: e.Reconcile()}
}

// PruneStale drops subfolders of folderPath that no longer exist on disk,
// along with any selection below them. It returns the number dropped.
func (e *Engine) PruneStale(folderPath string) int {
	folder := e.root.FindFolder(folderPath)
	if folder == nil {
		return 0
	}

	var stale []*tree.FolderEntry
	for _, sub := range folder.Subfolders {
		if !e.exists(sub.Path) {
			stale = append(stale, sub)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	for _, sub := range stale {
		logger.Debug("Pruning vanished folder: %s", sub.Path)
		for _, p := range sub.Descendants() {
			delete(e.selected, p)
		}
		delete(e.selected, sub.Path)
		tree.RemoveSubfolder(folder, sub.Path)
	}
	e.root.Recompute()
	return len(stale)
}

// SelectedSize returns the bytes covered by the selection without counting
// anything twice.
func (e *Engine) SelectedSize() int64 {
	var total int64
	e.root.Walk(func(f *tree.FolderEntry) bool {
		if e.selected.Has(f.Path) {
			total += f.Size
			return false
		}
		for _, file := range f.Files {
			if e.selected.Has(file.Path) {
				total += file.Size
			}
		}
		return true
	})
	return total
}
