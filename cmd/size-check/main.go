// Command size-check measures a media library directory, writes the size
// tree as a text listing or JSON, and optionally opens an interactive
// browser for selecting and deleting files and folders.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
