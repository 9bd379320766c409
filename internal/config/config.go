package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/yourusername/size-check/internal/report"
	"github.com/yourusername/size-check/internal/scanner"
	"github.com/yourusername/size-check/internal/sizefmt"
	"github.com/yourusername/size-check/internal/tree"
)

// Filters controls which entries the scan keeps.
type Filters struct {
	IncludeAll      bool     `toml:"include_all"`
	SkipHidden      bool     `toml:"skip_hidden"`
	SkipOSMetadata  bool     `toml:"skip_os_metadata"`
	MediaExtensions []string `toml:"media_extensions"`
}

// Units controls how sizes are rendered.
type Units struct {
	Binary   bool   `toml:"binary"`
	Unit     string `toml:"unit"`     // "" or "auto" picks the unit per value
	Decimals int    `toml:"decimals"` // Default: 2
}

// Config is the merged run configuration.
//
// Sections:
//   - top level: root path, output file, format, sort policy, logging
//   - Filters: extension allow-list, hidden and OS metadata entries
//   - Units: unit system, forced unit and precision
type Config struct {
	Path    string `toml:"path"`
	Output  string `toml:"output"`
	Format  string `toml:"format"`
	Sort    string `toml:"sort"`
	LogFile string `toml:"log_file"`
	Debug   bool   `toml:"debug"`

	Filters Filters `toml:"filters"`
	Units   Units   `toml:"units"`
}

// Load locates, parses, normalizes and validates a configuration file.
// An explicit path must exist; otherwise the XDG location and then
// ~/.config/size-check/config.toml are tried, and defaults are returned
// when neither exists. It also returns the path that was read and whether
// a file was found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	for _, candidate := range defaultConfigPaths() {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

// defaultConfigPaths lists the discovery locations in priority order.
func defaultConfigPaths() []string {
	var paths []string
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		paths = append(paths, filepath.Join(xdg, appName, configFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, configFileName))
	}
	return paths
}

// ScanFilters converts the filter section into scanner filters. Trickplay
// sidecars are kept only when every file type is included.
func (c *Config) ScanFilters() scanner.Filters {
	f := scanner.DefaultFilters(c.Filters.IncludeAll)
	f.SkipHidden = c.Filters.SkipHidden
	f.SkipOSMetadata = c.Filters.SkipOSMetadata
	f.MediaExtensions = c.Filters.MediaExtensions
	return f
}

// Formatter builds the size formatter for the units section.
func (c *Config) Formatter() (sizefmt.Formatter, error) {
	unit, err := sizefmt.ParseUnit(c.Units.Unit)
	if err != nil {
		return sizefmt.Formatter{}, fmt.Errorf("units.unit: %w", err)
	}
	system := sizefmt.Decimal
	if c.Units.Binary {
		system = sizefmt.Binary
	}
	f := sizefmt.Formatter{Decimals: c.Units.Decimals, System: system}
	if unit != sizefmt.Auto {
		f.Unit = sizefmt.Units[unit]
	}
	return f, nil
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() (report.Format, error) {
	return report.ParseFormat(c.Format)
}

// SortMode returns the parsed sort policy.
func (c *Config) SortMode() (tree.SortMode, error) {
	return tree.ParseSortMode(c.Sort)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	return filepath.Clean(pathValue), nil
}

// ExpandPath applies the "~" expansion used for configured paths.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
