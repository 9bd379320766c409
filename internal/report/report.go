// Package report writes a scanned tree as an indented text listing or as
// JSON, and renders the run summary as a table.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/yourusername/size-check/internal/sizefmt"
	"github.com/yourusername/size-check/internal/tree"
)

// Format selects the output file encoding.
type Format string

const (
	// FormatText is the indented "├── name (size)" listing.
	FormatText Format = "txt"
	// FormatJSON is the lossless structured tree.
	FormatJSON Format = "json"
)

const (
	indentUnit = "│   "
	branch     = "├── "
)

// ParseFormat accepts "txt" or "json" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("invalid format %q (expected txt or json)", s)
	}
}

// WriteText writes the tree in pre-order. A folder at depth d is prefixed
// with d indent units, its files with d+1, and its subfolders follow.
func WriteText(w io.Writer, root *tree.FolderEntry, f sizefmt.Formatter) error {
	bw := bufio.NewWriter(w)
	if err := writeFolder(bw, root, f, 0); err != nil {
		return err
	}
	return bw.Flush()
}

func writeFolder(w *bufio.Writer, folder *tree.FolderEntry, f sizefmt.Formatter, depth int) error {
	prefix := strings.Repeat(indentUnit, depth)
	if _, err := fmt.Fprintf(w, "%s%s%s (%s)\n", prefix, branch, folder.Name, f.Format(folder.Size)); err != nil {
		return err
	}
	for _, file := range folder.Files {
		if _, err := fmt.Fprintf(w, "%s%s%s%s (%s)\n", prefix, indentUnit, branch, file.Name, f.Format(file.Size)); err != nil {
			return err
		}
	}
	for _, sub := range folder.Subfolders {
		if err := writeFolder(w, sub, f, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the full tree as indented JSON.
func WriteJSON(w io.Writer, root *tree.FolderEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(root)
}

// ReadJSON decodes a tree written by WriteJSON.
func ReadJSON(r io.Reader) (*tree.FolderEntry, error) {
	var root tree.FolderEntry
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	return &root, nil
}

// Write creates path and writes the tree in the given format. Creation and
// write failures are returned; a partially written file is left in place.
func Write(path string, format Format, root *tree.FolderEntry, f sizefmt.Formatter) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	switch format {
	case FormatJSON:
		err = WriteJSON(file, root)
	default:
		err = WriteText(file, root, f)
	}
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", path, err)
	}
	return nil
}

// WriteSummary renders the walk counters as a table.
func WriteSummary(w io.Writer, summary tree.Summary, f sizefmt.Formatter) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Folders", "Files", "Total size"})
	tw.AppendRow(table.Row{
		summary.TotalFolders,
		summary.TotalFiles,
		f.Format(summary.TotalSize),
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
