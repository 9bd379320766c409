// Package ui is the terminal browser over a selection engine: a collapsible
// tree with tri-state checkboxes, deletion with confirmation, and in-place
// reconciliation of the listing after each batch.
package ui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/yourusername/size-check/internal/engine"
	"github.com/yourusername/size-check/internal/logger"
	"github.com/yourusername/size-check/internal/selection"
	"github.com/yourusername/size-check/internal/sizefmt"
	"github.com/yourusername/size-check/internal/tree"
)

type deleteFinishedMsg struct {
	result *engine.DeletionResult
}

type openFinishedMsg struct {
	path string
	err  error
}

// Options configures the browser.
type Options struct {
	Formatter sizefmt.Formatter
	Sort      tree.SortMode
	// Open shows a path in the OS file browser. Defaults to browser.OpenFile.
	Open func(path string) error
}

// Model is the Bubble Tea model of the browser.
type Model struct {
	ctx       context.Context
	engine    *selection.Engine
	formatter sizefmt.Formatter
	sortMode  tree.SortMode
	open      func(path string) error

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	rows     []row
	expanded map[string]bool
	cursor   int
	offset   int
	width    int
	height   int

	deleting   bool
	lastResult *engine.DeletionResult
	lastEvent  string
}

// NewModel creates a browser over e. The root folder starts expanded and
// the tree is sorted with opts.Sort.
func NewModel(ctx context.Context, e *selection.Engine, opts Options) Model {
	open := opts.Open
	if open == nil {
		// browser writes the launcher's output to stdout, which belongs to
		// the TUI while it runs.
		browser.Stdout = io.Discard
		browser.Stderr = io.Discard
		open = browser.OpenFile
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	tree.Sort(e.Root(), opts.Sort)

	m := Model{
		ctx:       ctx,
		engine:    e,
		formatter: opts.Formatter,
		sortMode:  opts.Sort,
		open:      open,
		keys:      newKeyMap(),
		help:      help.New(),
		spinner:   sp,
		expanded:  map[string]bool{e.Root().Path: true},
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// LastResult returns the result of the most recent deletion batch, if any.
func (m Model) LastResult() *engine.DeletionResult {
	return m.lastResult
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scrollToCursor()
	case spinner.TickMsg:
		if m.deleting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case deleteFinishedMsg:
		m.applyDeleteResult(msg.result)
	case openFinishedMsg:
		if msg.err != nil {
			logger.Warning("Failed to open %s: %v", msg.path, msg.err)
			m.lastEvent = fmt.Sprintf("Open failed: %v", msg.err)
		} else {
			m.lastEvent = fmt.Sprintf("Opened %s", msg.path)
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.deleting {
		return m, nil
	}

	if m.engine.Confirming() {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m, m.startDelete()
		case key.Matches(msg, m.keys.Cancel):
			m.engine.Cancel()
			m.lastEvent = "Deletion cancelled"
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Expand):
		m.expand(msg.String() == "enter")
	case key.Matches(msg, m.keys.Collapse):
		m.collapse()
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Delete):
		m.requestDeleteRow()
	case key.Matches(msg, m.keys.DeleteMarked):
		if !m.engine.RequestConfirm() {
			m.lastEvent = "Nothing selected"
		}
	case key.Matches(msg, m.keys.Sort):
		m.switchSort()
	case key.Matches(msg, m.keys.Open):
		return m, m.openCurrent()
	}
	return m, nil
}

func (m *Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scrollToCursor()
}

// expand opens the folder under the cursor. With toggleOpen an already
// open folder is collapsed instead.
func (m *Model) expand(toggleOpen bool) {
	r, ok := m.current()
	if !ok || !r.isDir {
		return
	}
	if r.expanded && toggleOpen {
		delete(m.expanded, r.path)
	} else {
		m.expanded[r.path] = true
	}
	m.refresh()
}

// collapse closes the folder under the cursor, or jumps to the parent row
// when the cursor is on a file or a closed folder.
func (m *Model) collapse() {
	r, ok := m.current()
	if !ok {
		return
	}
	if r.isDir && r.expanded {
		delete(m.expanded, r.path)
		m.refresh()
		return
	}
	if parent := parentIndex(m.rows, m.cursor); parent >= 0 {
		m.cursor = parent
		m.scrollToCursor()
	}
}

func (m *Model) toggle() {
	r, ok := m.current()
	if !ok {
		return
	}
	if err := m.engine.Toggle(r.path); err != nil {
		m.lastEvent = err.Error()
		return
	}
	m.refresh()
}

func (m *Model) requestDeleteRow() {
	r, ok := m.current()
	if !ok {
		return
	}
	if r.depth == 0 {
		m.lastEvent = "Refusing to delete the scan root"
		return
	}
	if err := m.engine.RequestDelete(r.path); err != nil {
		m.lastEvent = err.Error()
		return
	}
	m.refresh()
}

func (m *Model) switchSort() {
	if m.sortMode == tree.ByFileSize {
		m.sortMode = tree.ByFolderSize
	} else {
		m.sortMode = tree.ByFileSize
	}
	tree.Sort(m.engine.Root(), m.sortMode)
	m.lastEvent = fmt.Sprintf("Sorted by %s size", m.sortMode)
	m.refresh()
}

func (m *Model) openCurrent() tea.Cmd {
	r, ok := m.current()
	if !ok {
		return nil
	}
	target := r.path
	if !r.isDir {
		target = filepath.Dir(r.path)
	}
	open := m.open
	return func() tea.Msg {
		return openFinishedMsg{path: target, err: open(target)}
	}
}

// startDelete hands the selection to the remover off the UI loop. Input is
// ignored until the result comes back.
func (m *Model) startDelete() tea.Cmd {
	batch := m.engine.Batch()
	if len(batch) == 0 {
		m.lastEvent = "Nothing to delete"
		return nil
	}
	remover := m.engine.Remover()
	if remover == nil {
		m.lastEvent = "Deletion unavailable"
		return nil
	}

	m.deleting = true
	m.lastEvent = fmt.Sprintf("Deleting %d item(s)…", len(batch))
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return deleteFinishedMsg{result: remover.Delete(ctx, batch)}
	})
}

func (m *Model) applyDeleteResult(result *engine.DeletionResult) {
	m.deleting = false
	m.lastResult = m.engine.Stage(result)
	removed := m.engine.Reconcile()
	if result != nil && result.FailedCount > 0 {
		m.lastEvent = fmt.Sprintf("Deleted %d item(s), %d failed", result.DeletedCount, result.FailedCount)
	} else if result != nil {
		m.lastEvent = fmt.Sprintf("Deleted %d item(s)", result.DeletedCount)
	}
	logger.Debug("Batch reconciled, %d nodes removed", removed)
	m.refresh()
}

// refresh rebuilds the visible rows and keeps the cursor on the same path
// when it is still listed.
func (m *Model) refresh() {
	var currentPath string
	if r, ok := m.current(); ok {
		currentPath = r.path
	}
	m.rows = buildRows(m.engine, m.expanded)
	for i, r := range m.rows {
		if r.path == currentPath {
			m.cursor = i
			break
		}
	}
	m.clampCursor()
}

func (m *Model) listHeight() int {
	if m.height == 0 {
		return len(m.rows)
	}
	reserved := lipgloss.Height(m.headerView()) + lipgloss.Height(m.footerView()) + 1
	return max(m.height-reserved, 3)
}

func (m *Model) scrollToCursor() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) View() string {
	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		m.listView(),
		m.footerView(),
	)
	return ui.container.Render(view)
}

func (m Model) headerView() string {
	root := m.engine.Root()
	title := lipgloss.JoinHorizontal(lipgloss.Left,
		ui.title.Render("size-check"), " ", ui.chip.Render(root.Path))

	selected := m.engine.Selected()
	parts := []string{
		fmt.Sprintf("Total: %s", m.formatter.Format(root.Size)),
		fmt.Sprintf("Selected: %d (%s)", len(selected), m.formatter.Format(m.engine.SelectedSize())),
		fmt.Sprintf("Sort: %s", m.sortMode),
	}
	return ui.header.Render(lipgloss.JoinVertical(lipgloss.Left,
		title, ui.subtitle.Render(strings.Join(parts, " · "))))
}

func (m Model) listView() string {
	h := m.listHeight()
	end := min(m.offset+h, len(m.rows))
	lines := make([]string, 0, h)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r row, focused bool) string {
	marker := "  "
	if r.isDir {
		marker = "▸ "
		if r.expanded {
			marker = "▾ "
		}
	}
	left := fmt.Sprintf("%s%s%s %s", strings.Repeat("  ", r.depth), marker, glyph(r.state), r.name)
	size := m.formatter.Format(r.size)

	gap := 1
	if m.width > 0 {
		gap = max(m.width-lipgloss.Width(left)-lipgloss.Width(size)-4, 1)
	}
	line := left + strings.Repeat(" ", gap) + size

	switch {
	case focused:
		return ui.cursor.Render(line)
	case r.isDir:
		return ui.folder.Render(left) + strings.Repeat(" ", gap) + ui.size.Render(size)
	default:
		return left + strings.Repeat(" ", gap) + ui.size.Render(size)
	}
}

func (m Model) footerView() string {
	if m.deleting {
		return ui.status.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.lastEvent))
	}
	if m.engine.Confirming() {
		label := fmt.Sprintf("Delete %d selected item(s), %s? (y/n)",
			len(m.engine.Selected()), m.formatter.Format(m.engine.SelectedSize()))
		return ui.confirm.Render(label)
	}

	var lines []string
	if m.lastEvent != "" {
		style := ui.muted
		if m.lastResult != nil && m.lastResult.FailedCount > 0 {
			style = ui.danger
		}
		lines = append(lines, style.Render(m.lastEvent))
	}
	lines = append(lines, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Run starts the browser on the terminal and blocks until the user quits.
// It returns the final model state.
func Run(ctx context.Context, e *selection.Engine, opts Options) (Model, error) {
	final, err := tea.NewProgram(NewModel(ctx, e, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return Model{}, err
	}
	m, _ := final.(Model)
	return m, nil
}
