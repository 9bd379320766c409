package testutil

import (
	"context"
	"os"
	"testing"
)

// TimeoutContext returns a context bounded by the configured test timeout.
// It is cancelled automatically when the test ends.
func TimeoutContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), GetTestConfig().Timeout)
	t.Cleanup(cancel)
	return ctx
}

// SkipIfRoot skips tests that rely on permission errors, which root
// does not get.
func SkipIfRoot(t *testing.T) {
	t.Helper()

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
}
