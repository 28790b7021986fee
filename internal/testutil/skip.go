// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"os"
	"strings"
	"testing"
)

// PostgresURLEnv names the connection string used by postgres integration tests.
const PostgresURLEnv = "HABITGRID_TEST_DATABASE_URL"

// SkipIfNoNetwork skips the test if HABITGRID_TEST_SKIP_NETWORK is set.
// Use this for tests that need TCP connectivity, which sandboxed runs may lack.
func SkipIfNoNetwork(t *testing.T) {
	t.Helper()
	if os.Getenv("HABITGRID_TEST_SKIP_NETWORK") != "" {
		t.Skip("skipping network test: HABITGRID_TEST_SKIP_NETWORK is set")
	}
}

// PostgresURL returns the test database URL, skipping the test when none is set.
func PostgresURL(t *testing.T) string {
	t.Helper()
	SkipIfNoNetwork(t)
	url := strings.TrimSpace(os.Getenv(PostgresURLEnv))
	if url == "" {
		t.Skipf("skipping postgres test: %s is not set", PostgresURLEnv)
	}
	return url
}
