package db

import (
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a migrated store in t.TempDir() and closes it when
// the test ends.
func OpenTestSQLite(t *testing.T) *Pair {
	t.Helper()

	pair, err := OpenPair(filepath.Join(t.TempDir(), "test.sqlite"), 4)
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() { _ = pair.Close() })

	if err := Migrate(pair.Write); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return pair
}
