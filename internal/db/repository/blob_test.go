package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "sheetmap/internal/db"
	"sheetmap/internal/domain"
)

func setupBlobRepo(t *testing.T) *BlobRepo {
	t.Helper()
	pair := internaldb.OpenTestSQLite(t)
	return NewBlobRepo(pair.Write, pair.Read)
}

func TestBlobRepo_PutGet(t *testing.T) {
	repo := setupBlobRepo(t)
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := repo.Get(ctx, "nope")
		var nf *domain.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})

	t.Run("versions increment", func(t *testing.T) {
		b1, err := repo.Put(ctx, domain.KeyMappings, []byte(`[]`), "")
		require.NoError(t, err)
		assert.Equal(t, "1", b1.Version)

		b2, err := repo.Put(ctx, domain.KeyMappings, []byte(`[{"inputHeader":"a","outputHeader":"b"}]`), "")
		require.NoError(t, err)
		assert.Equal(t, "2", b2.Version)

		got, err := repo.Get(ctx, domain.KeyMappings)
		require.NoError(t, err)
		assert.Equal(t, "2", got.Version)
		assert.JSONEq(t, `[{"inputHeader":"a","outputHeader":"b"}]`, string(got.Data))
		assert.False(t, got.UpdatedAt.IsZero())
	})
}

func TestBlobRepo_ConditionalPut(t *testing.T) {
	repo := setupBlobRepo(t)
	ctx := context.Background()

	b, err := repo.Put(ctx, domain.KeyUserRules, []byte(`[]`), "")
	require.NoError(t, err)

	t.Run("matching version", func(t *testing.T) {
		b2, err := repo.Put(ctx, domain.KeyUserRules, []byte(`[1]`), b.Version)
		require.NoError(t, err)
		assert.Equal(t, "2", b2.Version)
	})

	t.Run("stale version", func(t *testing.T) {
		_, err := repo.Put(ctx, domain.KeyUserRules, []byte(`[2]`), b.Version)
		var vc *domain.VersionConflictError
		require.ErrorAs(t, err, &vc)
		assert.Equal(t, "2", vc.Actual)

		got, err := repo.Get(ctx, domain.KeyUserRules)
		require.NoError(t, err)
		assert.Equal(t, `[1]`, string(got.Data))
	})

	t.Run("version on missing key", func(t *testing.T) {
		_, err := repo.Put(ctx, "absent", []byte(`{}`), "1")
		var vc *domain.VersionConflictError
		require.ErrorAs(t, err, &vc)
		assert.Empty(t, vc.Actual)
	})
}

func TestBlobRepo_ConcurrentConditionalPuts(t *testing.T) {
	repo := setupBlobRepo(t)
	ctx := context.Background()

	b, err := repo.Put(ctx, domain.KeyLookups, []byte(`{}`), "")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Put(ctx, domain.KeyLookups, []byte(`{"x":{"headers":[],"rows":[]}}`), b.Version)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 9, conflicts)
}

func TestBlobRepo_DeleteList(t *testing.T) {
	repo := setupBlobRepo(t)
	ctx := context.Background()

	for _, k := range []string{domain.KeyInputDataset, domain.KeyOutputDataset, domain.KeyMappings, "datasets_x"} {
		_, err := repo.Put(ctx, k, []byte(`{}`), "")
		require.NoError(t, err)
	}

	keys, err := repo.List(ctx, "datasets/")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.KeyInputDataset, domain.KeyOutputDataset}, keys)

	require.NoError(t, repo.Delete(ctx, domain.KeyInputDataset))

	err = repo.Delete(ctx, domain.KeyInputDataset)
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)

	keys, err = repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}
