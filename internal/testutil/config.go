// Package testutil provides fixtures, generators and intensity settings
// shared by the package tests.
package testutil

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TestIntensity represents the thoroughness level of test execution.
type TestIntensity int

const (
	// IntensityQuick runs tests with minimal resources for fast feedback during development.
	IntensityQuick TestIntensity = iota
	// IntensityThorough runs tests with comprehensive resources for thorough validation in CI.
	IntensityThorough
)

// String returns the string representation of the test intensity.
func (ti TestIntensity) String() string {
	switch ti {
	case IntensityQuick:
		return "quick"
	case IntensityThorough:
		return "thorough"
	default:
		return "unknown"
	}
}

// TestConfig holds the limits used by generators and fixtures.
type TestConfig struct {
	Intensity TestIntensity

	// Number of iterations for property tests
	IterationCount int

	// Upper bound on files generated per folder
	MaxFilesPerFolder int

	// Upper bound on subfolders generated per folder
	MaxSubfolders int

	// Maximum size of a generated file (bytes)
	MaxFileSize int64

	// Maximum folder nesting below the root
	MaxDepth int

	Timeout time.Duration

	VerboseOutput bool
}

// GetTestConfig returns the configuration selected by TEST_QUICK,
// TEST_INTENSITY and VERBOSE_TESTS. Quick mode is the default.
func GetTestConfig() TestConfig {
	config := TestConfig{Intensity: IntensityQuick}

	if !ParseBool(os.Getenv("TEST_QUICK")) {
		config.Intensity = ParseIntensity(os.Getenv("TEST_INTENSITY"))
	}

	switch config.Intensity {
	case IntensityThorough:
		config.IterationCount = 100
		config.MaxFilesPerFolder = 8
		config.MaxSubfolders = 4
		config.MaxFileSize = 1 << 20
		config.MaxDepth = 4
		config.Timeout = 5 * time.Minute
	default:
		config.IterationCount = 20
		config.MaxFilesPerFolder = 4
		config.MaxSubfolders = 3
		config.MaxFileSize = 4096
		config.MaxDepth = 3
		config.Timeout = 30 * time.Second
	}

	config.VerboseOutput = ParseBool(os.Getenv("VERBOSE_TESTS"))
	return config
}

// LogConfig prints the active configuration.
func LogConfig(config TestConfig) {
	fmt.Printf("Test Configuration: intensity=%s, iterations=%d, maxFilesPerFolder=%d, maxSubfolders=%d, maxFileSize=%d, maxDepth=%d, timeout=%s\n",
		config.Intensity,
		config.IterationCount,
		config.MaxFilesPerFolder,
		config.MaxSubfolders,
		config.MaxFileSize,
		config.MaxDepth,
		config.Timeout,
	)
}

// ParseIntensity parses a string into a TestIntensity value.
// Returns IntensityQuick for invalid or empty strings.
func ParseIntensity(s string) TestIntensity {
	if strings.ToLower(strings.TrimSpace(s)) == "thorough" {
		return IntensityThorough
	}
	return IntensityQuick
}

// ParseBool accepts "1", "true", "yes" (case-insensitive) and any non-zero
// integer as true.
func ParseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "true" || s == "yes" {
		return true
	}
	if i, err := strconv.Atoi(s); err == nil && i != 0 {
		return true
	}
	return false
}
