package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/size-check/internal/config"
)

// flagValues holds the raw command-line values. Only flags the user set
// override the configuration file.
type flagValues struct {
	configPath  string
	path        string
	output      string
	format      string
	sort        string
	logFile     string
	unit        string
	debug       bool
	includeAll  bool
	dryRun      bool
	interactive bool
	binary      bool
	decimals    int
}

func newRootCommand() *cobra.Command {
	defaults := config.Default()
	var flags flagValues

	rootCmd := &cobra.Command{
		Use:   "size-check",
		Short: "Measure a media library and clean it up",
		Long: "size-check walks a directory tree, aggregates file sizes per folder and writes\n" +
			"the result as an indented listing or JSON. With --interactive the tree opens in a\n" +
			"terminal browser where files and folders can be selected and deleted.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd, cfg, runOptions{
				dryRun:      flags.dryRun,
				interactive: flags.interactive,
			})
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	f.StringVarP(&flags.path, "path", "p", defaults.Path, "Root directory to analyze")
	f.StringVarP(&flags.output, "output", "o", defaults.Output, "Output file for the result")
	f.BoolVarP(&flags.debug, "debug", "d", false, "Enable debug logging")
	f.StringVarP(&flags.sort, "sort", "s", defaults.Sort, "Sort by file or folder size (file, folder)")
	f.BoolVarP(&flags.includeAll, "include-all", "a", false, "Include every file type and trickplay folders")
	f.StringVarP(&flags.format, "format", "f", defaults.Format, "Output format (txt, json)")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Walk and summarize without writing the output file")
	f.BoolVarP(&flags.interactive, "interactive", "i", false, "Browse the tree and delete entries interactively")
	f.StringVar(&flags.logFile, "log-file", "", "Also write logs to this file")
	f.BoolVar(&flags.binary, "binary", defaults.Units.Binary, "Use 1024-based units (--binary=false for 1000)")
	f.StringVar(&flags.unit, "unit", "", "Force a size unit (B, KB, MB, GB, TB, PB)")
	f.IntVar(&flags.decimals, "decimals", defaults.Units.Decimals, "Decimal places in sizes")

	return rootCmd
}

// resolveConfig loads the configuration file and applies the flags the
// user set explicitly.
func resolveConfig(cmd *cobra.Command, flags flagValues) (*config.Config, error) {
	cfg, _, _, err := config.Load(strings.TrimSpace(flags.configPath))
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("path") {
		cfg.Path = flags.path
	}
	if changed("output") {
		cfg.Output = flags.output
	}
	if changed("format") {
		cfg.Format = flags.format
	}
	if changed("sort") {
		cfg.Sort = flags.sort
	}
	if changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	if changed("debug") {
		cfg.Debug = flags.debug
	}
	if changed("include-all") {
		cfg.Filters.IncludeAll = flags.includeAll
		if flags.includeAll {
			cfg.Filters.MediaExtensions = nil
		}
	}
	if changed("binary") {
		cfg.Units.Binary = flags.binary
	}
	if changed("unit") {
		cfg.Units.Unit = flags.unit
	}
	if changed("decimals") {
		cfg.Units.Decimals = flags.decimals
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
