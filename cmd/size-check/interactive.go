package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/yourusername/size-check/internal/backend"
	"github.com/yourusername/size-check/internal/engine"
	"github.com/yourusername/size-check/internal/logger"
	"github.com/yourusername/size-check/internal/report"
	"github.com/yourusername/size-check/internal/safety"
	"github.com/yourusername/size-check/internal/scanner"
	"github.com/yourusername/size-check/internal/selection"
	"github.com/yourusername/size-check/internal/sizefmt"
	"github.com/yourusername/size-check/internal/tree"
	"github.com/yourusername/size-check/internal/ui"
)

// newSession wires the selection engine to a guarded deletion engine.
func newSession(result *scanner.ScanResult) *selection.Engine {
	root := result.Root.Path
	remover := engine.NewEngine(backend.NewBackend(), func(deleted int) {
		logger.Debug("Deleted %d paths so far", deleted)
	}).WithGuard(func(path string) error {
		return safety.CheckDeletable(path, root)
	})
	return selection.NewEngine(result.Root, remover)
}

// runInteractive hands the terminal to the browser, then prints the
// summary of what is left.
func runInteractive(ctx context.Context, out io.Writer, result *scanner.ScanResult, formatter sizefmt.Formatter, sortMode tree.SortMode) error {
	root := result.Root.Path
	if err := safety.ValidateRoot(root); err != nil {
		return err
	}
	lock, err := safety.AcquireSessionLock(root)
	if err != nil {
		return err
	}
	defer lock.Release()

	session := newSession(result)

	logger.SetConsoleOutput(io.Discard)
	_, err = ui.Run(ctx, session, ui.Options{Formatter: formatter, Sort: sortMode})
	logger.SetConsoleOutput(os.Stderr)
	if err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}

	remaining := session.Root().Stats()
	removed := result.Summary.TotalSize - remaining.TotalSize
	fmt.Fprintf(out, "Removed %s from %s\n", formatter.Format(removed), root)
	return report.WriteSummary(out, remaining, formatter)
}
