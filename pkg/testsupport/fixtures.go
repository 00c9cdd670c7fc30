package testsupport

import (
	"os"
	"testing"
)

// LoadFixture reads a fixture file, failing the test when it is missing.
func LoadFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
