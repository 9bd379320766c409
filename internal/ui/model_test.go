package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yourusername/size-check/internal/engine"
	"github.com/yourusername/size-check/internal/selection"
	"github.com/yourusername/size-check/internal/sizefmt"
	"github.com/yourusername/size-check/internal/tree"
)

type fakeRemover struct {
	calls [][]string
	fail  map[string]bool
}

func (f *fakeRemover) Delete(_ context.Context, paths []string) *engine.DeletionResult {
	f.calls = append(f.calls, paths)
	result := &engine.DeletionResult{Processed: append([]string(nil), paths...)}
	for _, p := range paths {
		if f.fail[p] {
			result.FailedCount++
			result.Errors = append(result.Errors, engine.FileError{Path: p, Error: "failed"})
		} else {
			result.DeletedCount++
		}
	}
	return result
}

func alwaysExists(string) bool { return true }

// libraryTree is /lib with Show/{a,b} and Film/film. Film is the larger
// folder, the file sizes inside Show are ascending.
func libraryTree() *tree.FolderEntry {
	root := tree.NewFolder("/lib", "lib")
	show := tree.NewFolder("/lib/Show", "Show")
	show.AddFile(tree.FileEntry{Path: "/lib/Show/a.mkv", Name: "a.mkv", Size: 100})
	show.AddFile(tree.FileEntry{Path: "/lib/Show/b.mkv", Name: "b.mkv", Size: 200})
	film := tree.NewFolder("/lib/Film", "Film")
	film.AddFile(tree.FileEntry{Path: "/lib/Film/film.mkv", Name: "film.mkv", Size: 1000})
	root.AddSubfolder(show)
	root.AddSubfolder(film)
	return root
}

func newTestModel(t *testing.T, remover selection.Remover) (Model, *selection.Engine, *[]string) {
	t.Helper()
	e := selection.NewEngine(libraryTree(), remover).WithExistsCheck(alwaysExists)
	var opened []string
	m := NewModel(context.Background(), e, Options{
		Formatter: sizefmt.DefaultFormatter(),
		Sort:      tree.ByFileSize,
		Open: func(path string) error {
			opened = append(opened, path)
			return nil
		},
	})
	return m, e, &opened
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

// collect runs cmd and any batched commands and returns the messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func findDeleteMsg(t *testing.T, cmd tea.Cmd) deleteFinishedMsg {
	t.Helper()
	for _, msg := range collect(cmd) {
		if done, ok := msg.(deleteFinishedMsg); ok {
			return done
		}
	}
	t.Fatal("no deletion result produced")
	return deleteFinishedMsg{}
}

func paths(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.path
	}
	return out
}

func TestInitialRowsShowRootChildren(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeRemover{})

	got := strings.Join(paths(m.rows), ",")
	if got != "/lib,/lib/Show,/lib/Film" {
		t.Fatalf("unexpected rows: %s", got)
	}
	if !m.rows[0].expanded || m.rows[1].expanded {
		t.Fatal("expected only the root expanded")
	}
}

func TestExpandCollapse(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeRemover{})

	m, _ = press(t, m, keyDown, keyRight)
	got := strings.Join(paths(m.rows), ",")
	// Files within Show are sorted by size, largest first.
	if got != "/lib,/lib/Show,/lib/Show/b.mkv,/lib/Show/a.mkv,/lib/Film" {
		t.Fatalf("unexpected rows after expand: %s", got)
	}

	m, _ = press(t, m, keyDown, keyLeft)
	if m.rows[m.cursor].path != "/lib/Show" {
		t.Fatalf("left on a file should jump to its folder, cursor at %s", m.rows[m.cursor].path)
	}
	m, _ = press(t, m, keyLeft)
	if len(m.rows) != 3 {
		t.Fatalf("expected Show collapsed, got %v", paths(m.rows))
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.rows) != 3 {
		t.Fatalf("enter twice should expand then collapse, got %v", paths(m.rows))
	}
}

func TestCursorStaysInRange(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeRemover{})
	m, _ = press(t, m, keyUp, keyUp)
	if m.cursor != 0 {
		t.Fatalf("cursor moved above first row: %d", m.cursor)
	}
	m, _ = press(t, m, keyDown, keyDown, keyDown, keyDown)
	if m.cursor != len(m.rows)-1 {
		t.Fatalf("cursor moved past last row: %d", m.cursor)
	}
}

func TestToggleShowsTriStateGlyphs(t *testing.T) {
	m, e, _ := newTestModel(t, &fakeRemover{})
	m, _ = press(t, m, keyDown, keySpace)

	if e.FolderState("/lib/Show") != selection.Full {
		t.Fatal("space should select the folder under the cursor")
	}
	if m.rows[1].state != selection.Full || m.rows[0].state != selection.Partial {
		t.Fatalf("unexpected row states: root=%s show=%s", m.rows[0].state, m.rows[1].state)
	}

	view := m.View()
	if !strings.Contains(view, "[x] Show") || !strings.Contains(view, "[-] lib") || !strings.Contains(view, "[ ] Film") {
		t.Fatalf("view is missing checkbox glyphs:\n%s", view)
	}
}

func TestDeleteSelectionFlow(t *testing.T) {
	remover := &fakeRemover{}
	m, e, _ := newTestModel(t, remover)

	m, _ = press(t, m, runes("x"))
	if e.Confirming() || !strings.Contains(m.lastEvent, "Nothing selected") {
		t.Fatal("x with an empty selection should not ask for confirmation")
	}

	m, _ = press(t, m, keyDown, keySpace, runes("x"))
	if !e.Confirming() {
		t.Fatal("expected confirmation prompt")
	}
	if !strings.Contains(m.View(), "(y/n)") {
		t.Fatal("confirmation prompt not rendered")
	}

	m, cmd := press(t, m, runes("y"))
	if !m.deleting || cmd == nil {
		t.Fatal("expected deletion to start")
	}

	// Input is ignored while the batch runs.
	cursor := m.cursor
	m, _ = press(t, m, keyDown, runes("q"))
	if m.cursor != cursor {
		t.Fatal("keys must be ignored while deleting")
	}

	done := findDeleteMsg(t, cmd)
	if len(remover.calls) != 1 || len(remover.calls[0]) != 3 {
		t.Fatalf("expected one batch of 3 paths, got %v", remover.calls)
	}

	next, _ := m.Update(done)
	m = next.(Model)
	if m.deleting {
		t.Fatal("deleting flag should be lowered")
	}
	if e.Root().FindFolder("/lib/Show") != nil {
		t.Fatal("deleted folder still in the working tree")
	}
	if e.Root().Size != 1000 {
		t.Fatalf("expected root size 1000, got %d", e.Root().Size)
	}
	if got := strings.Join(paths(m.rows), ","); got != "/lib,/lib/Film" {
		t.Fatalf("unexpected rows after deletion: %s", got)
	}
	if m.LastResult() == nil || m.LastResult().DeletedCount != 3 {
		t.Fatalf("unexpected last result: %+v", m.LastResult())
	}
}

func TestDeleteRowCancel(t *testing.T) {
	remover := &fakeRemover{}
	m, e, _ := newTestModel(t, remover)

	m, _ = press(t, m, keyDown, keyDown, runes("d"))
	if !e.Confirming() || !e.IsSelected("/lib/Film") {
		t.Fatal("d should select the row and ask for confirmation")
	}
	m, _ = press(t, m, runes("n"))
	if e.Confirming() {
		t.Fatal("n should cancel")
	}
	if !e.IsSelected("/lib/Film") {
		t.Fatal("cancel keeps the selection")
	}
	if len(remover.calls) != 0 {
		t.Fatal("nothing should be deleted on cancel")
	}
	if !strings.Contains(m.lastEvent, "cancelled") {
		t.Fatalf("unexpected event: %q", m.lastEvent)
	}
}

func TestDeleteRootRowRefused(t *testing.T) {
	m, e, _ := newTestModel(t, &fakeRemover{})
	m, _ = press(t, m, runes("d"))
	if e.Confirming() || len(e.Selected()) != 0 {
		t.Fatal("the scan root must not be offered for deletion")
	}
	if m.lastEvent == "" {
		t.Fatal("expected a status message")
	}
}

func TestSelectAllThenDeleteKeepsRoot(t *testing.T) {
	remover := &fakeRemover{}
	m, e, _ := newTestModel(t, remover)

	m, _ = press(t, m, keySpace, runes("x"))
	if !e.Confirming() {
		t.Fatal("expected confirmation prompt")
	}
	m, cmd := press(t, m, runes("y"))
	next, _ := m.Update(findDeleteMsg(t, cmd))
	m = next.(Model)

	if len(remover.calls) != 1 || len(remover.calls[0]) != 5 {
		t.Fatalf("expected one batch of 5 paths, got %v", remover.calls)
	}
	for _, p := range remover.calls[0] {
		if p == "/lib" {
			t.Fatal("the scan root must not be in the batch")
		}
	}
	if strings.Contains(m.lastEvent, "failed") {
		t.Fatalf("unexpected failure in status: %q", m.lastEvent)
	}
	if got := strings.Join(paths(m.rows), ","); got != "/lib" {
		t.Fatalf("expected only the root row left, got %s", got)
	}
}

func TestDeleteFailureReported(t *testing.T) {
	remover := &fakeRemover{fail: map[string]bool{"/lib/Film/film.mkv": true}}
	m, e, _ := newTestModel(t, remover)

	m, _ = press(t, m, keyDown, keyDown, keySpace, runes("x"))
	m, cmd := press(t, m, runes("y"))
	next, _ := m.Update(findDeleteMsg(t, cmd))
	m = next.(Model)

	if !strings.Contains(m.lastEvent, "1 failed") {
		t.Fatalf("expected failure in status, got %q", m.lastEvent)
	}
	if e.Root().FindFolder("/lib/Film") != nil {
		t.Fatal("attempted paths are pruned whatever the outcome")
	}
}

func TestSwitchSort(t *testing.T) {
	m, e, _ := newTestModel(t, &fakeRemover{})
	m, _ = press(t, m, runes("s"))

	if m.sortMode != tree.ByFolderSize {
		t.Fatalf("expected folder sort, got %s", m.sortMode)
	}
	if e.Root().Subfolders[0].Path != "/lib/Film" {
		t.Fatal("expected the larger folder first")
	}
	if got := strings.Join(paths(m.rows), ","); got != "/lib,/lib/Film,/lib/Show" {
		t.Fatalf("rows not reordered: %s", got)
	}
}

func TestOpenUsesContainingFolderForFiles(t *testing.T) {
	m, _, opened := newTestModel(t, &fakeRemover{})
	m, _ = press(t, m, keyDown, keyDown, keyRight, keyDown)

	m, cmd := press(t, m, runes("o"))
	msgs := collect(cmd)
	if len(*opened) != 1 || (*opened)[0] != "/lib/Film" {
		t.Fatalf("expected /lib/Film opened, got %v", *opened)
	}
	next, _ := m.Update(msgs[0])
	if !strings.Contains(next.(Model).lastEvent, "Opened /lib/Film") {
		t.Fatalf("unexpected event: %q", next.(Model).lastEvent)
	}
}

func TestOpenFailure(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeRemover{})
	next, _ := m.Update(openFinishedMsg{path: "/lib", err: errors.New("no launcher")})
	if !strings.Contains(next.(Model).lastEvent, "no launcher") {
		t.Fatal("expected the open error in the status line")
	}
}

func TestQuitAndHelp(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeRemover{})

	m, _ = press(t, m, runes("?"))
	if !m.help.ShowAll {
		t.Fatal("? should expand help")
	}
	_, cmd := press(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	root := tree.NewFolder("/lib", "lib")
	for i := 0; i < 50; i++ {
		name := strings.Repeat("x", i+1) + ".mkv"
		root.AddFile(tree.FileEntry{Path: "/lib/" + name, Name: name, Size: int64(i)})
	}
	e := selection.NewEngine(root, &fakeRemover{}).WithExistsCheck(alwaysExists)
	m := NewModel(context.Background(), e, Options{
		Formatter: sizefmt.DefaultFormatter(),
		Open:      func(string) error { return nil },
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 15})
	m = next.(Model)

	for i := 0; i < 40; i++ {
		m, _ = press(t, m, keyDown)
	}
	h := m.listHeight()
	if m.cursor < m.offset || m.cursor >= m.offset+h {
		t.Fatalf("cursor %d outside window [%d,%d)", m.cursor, m.offset, m.offset+h)
	}
}

func TestGlyph(t *testing.T) {
	tests := map[selection.State]string{
		selection.Unselected: "[ ]",
		selection.Partial:    "[-]",
		selection.Full:       "[x]",
	}
	for state, expected := range tests {
		if got := glyph(state); got != expected {
			t.Errorf("glyph(%s) = %q, expected %q", state, got, expected)
		}
	}
}
