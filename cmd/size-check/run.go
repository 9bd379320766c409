package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yourusername/size-check/internal/config"
	"github.com/yourusername/size-check/internal/engine"
	"github.com/yourusername/size-check/internal/logger"
	"github.com/yourusername/size-check/internal/progress"
	"github.com/yourusername/size-check/internal/report"
	"github.com/yourusername/size-check/internal/scanner"
	"github.com/yourusername/size-check/internal/tree"
)

// interruptContext derives the context an interactive session runs under.
var interruptContext = func(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := engine.SetupInterruptHandler()
	go func() {
		select {
		case <-parent.Done():
			stop()
		case <-ctx.Done():
		}
	}()
	return ctx, stop
}

type runOptions struct {
	dryRun      bool
	interactive bool
}

// run executes one analysis. A root that cannot be read is returned as an
// error before anything is printed; an output file that cannot be written
// is returned after the summary.
func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts runOptions) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if err := logger.SetupLogging(cfg.Debug, cfg.LogFile); err != nil {
		fmt.Fprintf(errOut, "Warning: Failed to setup logging: %v\n", err)
	}
	defer logger.Close()

	formatter, err := cfg.Formatter()
	if err != nil {
		return err
	}
	format, err := cfg.OutputFormat()
	if err != nil {
		return err
	}
	sortMode, err := cfg.SortMode()
	if err != nil {
		return err
	}

	result, err := scan(cfg, errOut)
	if err != nil {
		return err
	}
	tree.Sort(result.Root, sortMode)

	if opts.interactive {
		// Ctrl+C is trapped only while a session owns the terminal.
		sessionCtx, cancel := interruptContext(ctx)
		defer cancel()
		return runInteractive(sessionCtx, out, result, formatter, sortMode)
	}

	var writeErr error
	switch {
	case opts.dryRun:
		fmt.Fprintln(out, "Dry run: no output file written")
	default:
		writeErr = report.Write(cfg.Output, format, result.Root, formatter)
		if writeErr == nil {
			fmt.Fprintf(out, "Analysis saved to %s\n", cfg.Output)
			logger.Info("Analysis saved to %s", cfg.Output)
		} else {
			logger.Error("%v", writeErr)
		}
	}

	if err := report.WriteSummary(out, result.Summary, formatter); err != nil {
		return err
	}
	if result.Skipped > 0 {
		fmt.Fprintf(out, "Skipped %d unreadable entries (see log for details)\n", result.Skipped)
	}
	return writeErr
}

// scan walks the configured root. When errOut is a terminal a counting
// pre-pass sizes the progress line first.
func scan(cfg *config.Config, errOut io.Writer) (*scanner.ScanResult, error) {
	s := scanner.NewScanner(cfg.Path, cfg.ScanFilters())
	logger.Info("Analyzing %s", s.Root())

	var reporter *progress.Reporter
	if progress.IsTerminal(errOut) {
		total := s.CountEntries()
		logger.Debug("Pre-pass counted %d folders", total)
		reporter = progress.NewReporter(total, errOut)
		s.WithProgress(reporter)
	}

	result, err := s.Scan()
	if err != nil {
		logger.Error("Failed to analyze %s: %v", s.Root(), err)
		return nil, fmt.Errorf("failed to analyze %s: %w", s.Root(), err)
	}
	if reporter != nil {
		reporter.Finish()
	}

	logger.Info("Scan complete: %d files in %d folders, %d bytes",
		result.Summary.TotalFiles, result.Summary.TotalFolders, result.Summary.TotalSize)
	return result, nil
}
