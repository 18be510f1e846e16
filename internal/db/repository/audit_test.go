package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "sheetmap/internal/db"
	"sheetmap/internal/domain"
)

func setupAuditRepo(t *testing.T) *AuditRepo {
	t.Helper()
	pair := internaldb.OpenTestSQLite(t)
	return NewAuditRepo(pair.Write)
}

func strPtr(s string) *string { return &s }

func TestAuditRepo_InsertAndList(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	base := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, &domain.AuditEntry{
		Principal: "alice", Action: "SAVE_MAPPINGS", Key: domain.KeyMappings, Status: domain.AuditOK, CreatedAt: base,
	}))
	require.NoError(t, repo.Insert(ctx, &domain.AuditEntry{
		Principal: "bob", Action: "REGISTER_LOOKUP", Key: domain.KeyLookups, Status: domain.AuditOK, CreatedAt: base.Add(time.Minute),
	}))
	e := &domain.AuditEntry{Principal: "bob", Action: "SAVE_MAPPINGS", Key: domain.KeyMappings, Status: domain.AuditFailed}
	require.NoError(t, repo.Insert(ctx, e))
	assert.NotEmpty(t, e.ID)

	t.Run("all newest first", func(t *testing.T) {
		entries, total, err := repo.List(ctx, domain.AuditFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, entries, 3)
		assert.Equal(t, e.ID, entries[0].ID)
		assert.Equal(t, "alice", entries[2].Principal)
		assert.Equal(t, base, entries[2].CreatedAt)
	})

	t.Run("filter by action", func(t *testing.T) {
		entries, total, err := repo.List(ctx, domain.AuditFilter{Action: strPtr("SAVE_MAPPINGS")})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, e := range entries {
			assert.Equal(t, "SAVE_MAPPINGS", e.Action)
		}
	})

	t.Run("filter by key and since", func(t *testing.T) {
		since := base.Add(30 * time.Second)
		entries, total, err := repo.List(ctx, domain.AuditFilter{Key: strPtr(domain.KeyLookups), Since: &since})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "bob", entries[0].Principal)
	})

	t.Run("pagination", func(t *testing.T) {
		entries, total, err := repo.List(ctx, domain.AuditFilter{Page: domain.PageRequest{MaxResults: 2}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, entries, 2)

		token := domain.NextPageToken(0, 2, total)
		require.NotEmpty(t, token)
		entries, _, err = repo.List(ctx, domain.AuditFilter{Page: domain.PageRequest{MaxResults: 2, PageToken: token}})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
