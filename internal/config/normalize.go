package config

import (
	"errors"
	"fmt"
	"strings"
)

// Normalize trims and lower-cases enumerated values, expands "~" in paths
// and fills empty values with defaults.
func (c *Config) Normalize() error {
	var err error

	c.Path = strings.TrimSpace(c.Path)
	if c.Path == "" {
		c.Path = defaultPath
	}
	if c.Path, err = expandPath(c.Path); err != nil {
		return fmt.Errorf("path: %w", err)
	}

	c.Output = strings.TrimSpace(c.Output)
	if c.Output == "" {
		c.Output = defaultOutput
	}
	if c.Output, err = expandPath(c.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	c.LogFile = strings.TrimSpace(c.LogFile)
	if c.LogFile, err = expandPath(c.LogFile); err != nil {
		return fmt.Errorf("log_file: %w", err)
	}

	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = defaultFormat
	}
	c.Sort = strings.ToLower(strings.TrimSpace(c.Sort))
	if c.Sort == "" {
		c.Sort = defaultSort
	}
	c.Units.Unit = strings.TrimSpace(c.Units.Unit)

	c.Filters.MediaExtensions = normalizeExtensions(c.Filters.MediaExtensions)
	return nil
}

// normalizeExtensions lower-cases, strips leading dots, and drops blanks
// and duplicates while keeping order.
func normalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if _, err := c.OutputFormat(); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if _, err := c.SortMode(); err != nil {
		return fmt.Errorf("sort: %w", err)
	}
	if _, err := c.Formatter(); err != nil {
		return err
	}
	if c.Units.Decimals < 0 || c.Units.Decimals > maxDecimals {
		return fmt.Errorf("units.decimals must be between 0 and %d", maxDecimals)
	}
	if c.Filters.IncludeAll && len(c.Filters.MediaExtensions) > 0 {
		return errors.New("filters.media_extensions has no effect with filters.include_all")
	}
	return nil
}
