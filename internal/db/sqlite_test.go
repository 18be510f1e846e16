package db

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	w := buildDSN("/tmp/sheetmap.sqlite", ModeWrite)
	assert.True(t, strings.HasPrefix(w, "/tmp/sheetmap.sqlite?"))
	for _, p := range []string{"_journal_mode=WAL", "_busy_timeout=5000", "_synchronous=NORMAL", "_foreign_keys=on", "_txlock=immediate"} {
		assert.Contains(t, w, p)
	}

	r := buildDSN("/tmp/sheetmap.sqlite", ModeRead)
	assert.Contains(t, r, "_journal_mode=WAL")
	assert.NotContains(t, r, "_txlock")
}

func TestOpen(t *testing.T) {
	t.Run("invalid mode", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "x.db"), Mode("both"), 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid SQLite mode")
	})

	t.Run("invalid path", func(t *testing.T) {
		_, err := Open("/nonexistent/dir/x.db", ModeWrite, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ping sqlite")
	})

	t.Run("write pool is single connection in WAL mode", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "x.db"), ModeWrite, 8)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		var journal string
		require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journal))
		assert.Equal(t, "wal", strings.ToLower(journal))
		assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	})

	t.Run("read pool defaults to four", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "x.db"), ModeRead, 0)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		assert.Equal(t, 4, db.Stats().MaxOpenConnections)
	})
}

func TestOpenTestSQLiteMigrates(t *testing.T) {
	pair := OpenTestSQLite(t)

	v, err := SchemaVersion(pair.Read)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = pair.Write.Exec(`INSERT INTO blobs (key, payload) VALUES ('k', '{}')`)
	require.NoError(t, err)

	var version int
	require.NoError(t, pair.Read.QueryRow(`SELECT version FROM blobs WHERE key = 'k'`).Scan(&version))
	assert.Equal(t, 1, version)
}

func TestPairConcurrentWritesQueue(t *testing.T) {
	pair := OpenTestSQLite(t)

	_, err := pair.Write.Exec(`INSERT INTO blobs (key, payload, version) VALUES ('counter', '0', 1)`)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = pair.Write.Exec(`UPDATE blobs SET version = version + 1 WHERE key = 'counter'`)
		}(i)
	}
	wg.Wait()
	for i, e := range errs {
		assert.NoError(t, e, "writer %d", i)
	}

	var version int
	require.NoError(t, pair.Read.QueryRow(`SELECT version FROM blobs WHERE key = 'counter'`).Scan(&version))
	assert.Equal(t, 21, version)
}
