// Package safety guards interactive deletion: it refuses paths that are
// outside the scanned library, the library root itself, or system
// directories, and serializes sessions on the same root.
package safety

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/yourusername/size-check/internal/logger"
)

// ProtectedPaths contains system-critical paths that are never deleted and
// never accepted as a session root.
var ProtectedPaths = []string{
	"C:\\Windows",
	"C:\\Program Files",
	"C:\\Program Files (x86)",
	"C:\\ProgramData",
	"C:\\Users",
	"/bin",
	"/sbin",
	"/usr",
	"/lib",
	"/lib64",
	"/etc",
	"/boot",
	"/sys",
	"/proc",
	"/dev",
	"/System",
	"/Library",
	"/Applications",
	"/Users",
	"/private",
	"/home",
	"/Volumes",
}

// ErrScanRoot is returned when a deletion targets the scanned root itself.
var ErrScanRoot = errors.New("path is the scan root")

// ErrOutsideRoot is returned when a deletion targets a path outside the root.
var ErrOutsideRoot = errors.New("path is outside the scan root")

// CheckDeletable returns nil when path may be deleted during a session
// rooted at root. Both paths are resolved to absolute form first.
func CheckDeletable(path, root string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute root: %w", err)
	}

	if pathsMatch(absPath, absRoot) {
		return ErrScanRoot
	}
	if !isParentOf(absRoot, absPath) {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, absRoot)
	}
	if isDriveRoot(absPath) {
		return errors.New("cannot delete drive root")
	}
	if protected, ok := protectedMatch(absPath); ok {
		logger.Warning("Refusing to delete protected path: %s (%s)", absPath, protected)
		return fmt.Errorf("path is or contains protected system directory: %s", protected)
	}
	return nil
}

// ValidateRoot checks that root is acceptable for an interactive session:
// not a drive root, not a protected directory, and not a parent of one.
func ValidateRoot(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path: %w", err)
	}
	if isDriveRoot(absRoot) {
		return fmt.Errorf("refusing interactive session on drive root %s", absRoot)
	}
	if protected, ok := protectedMatch(absRoot); ok {
		return fmt.Errorf("refusing interactive session on %s: protected system directory %s", absRoot, protected)
	}
	logger.Debug("Session root accepted: %s", absRoot)
	return nil
}

// protectedMatch reports the protected path equal to or contained in path.
func protectedMatch(path string) (string, bool) {
	for _, protected := range ProtectedPaths {
		if !filepath.IsAbs(protected) {
			continue
		}
		protectedAbs := filepath.Clean(protected)
		if pathsMatch(path, protectedAbs) || isParentOf(path, protectedAbs) {
			return protected, true
		}
	}
	return "", false
}

// isDriveRoot checks for "/" on Unix and "C:\" style roots on Windows.
func isDriveRoot(path string) bool {
	cleanPath := filepath.Clean(path)

	if runtime.GOOS == "windows" {
		if len(cleanPath) == 3 && cleanPath[1] == ':' && (cleanPath[2] == '\\' || cleanPath[2] == '/') {
			return true
		}
		return len(cleanPath) == 2 && cleanPath[1] == ':'
	}
	return cleanPath == "/"
}

// isParentOf checks if parent is a strict ancestor of child.
// The comparison is case-insensitive on Windows and case-sensitive elsewhere.
func isParentOf(parent, child string) bool {
	parent = filepath.Clean(parent)
	child = filepath.Clean(child)

	if !strings.HasSuffix(parent, string(filepath.Separator)) {
		parent += string(filepath.Separator)
	}

	if runtime.GOOS == "windows" {
		return strings.HasPrefix(strings.ToLower(child), strings.ToLower(parent))
	}
	return strings.HasPrefix(child, parent)
}

// pathsMatch compares two cleaned paths, case-insensitively on Windows.
func pathsMatch(path1, path2 string) bool {
	clean1 := filepath.Clean(path1)
	clean2 := filepath.Clean(path2)

	if runtime.GOOS == "windows" {
		return strings.EqualFold(clean1, clean2)
	}
	return clean1 == clean2
}
