// Package testutil provides testing utilities.
package testutil

import (
	"os"
	"testing"
)

// PostgresDSN returns the DSN of a disposable Postgres database, skipping the
// test if VIDTALLY_TEST_POSTGRES_DSN is not set.
//
// Run Postgres tests with: VIDTALLY_TEST_POSTGRES_DSN=postgres://... go test ./...
func PostgresDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("VIDTALLY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping Postgres test (set VIDTALLY_TEST_POSTGRES_DSN to run)")
	}
	return dsn
}

// SkipNATSTests skips the test if VIDTALLY_TEST_NATS_URL is not set and
// returns the URL otherwise.
func SkipNATSTests(t *testing.T) string {
	t.Helper()
	url := os.Getenv("VIDTALLY_TEST_NATS_URL")
	if url == "" {
		t.Skip("Skipping NATS test (set VIDTALLY_TEST_NATS_URL to run)")
	}
	return url
}
