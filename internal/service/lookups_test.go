package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetmap/internal/domain"
)

func countryTable(t *testing.T) domain.LookupTable {
	t.Helper()
	tbl, err := domain.NewLookupTable([]string{"Country", "Code", "Note"}, []any{
		map[string]any{"Country": "Germany", "Code": "DE", "Note": ""},
		"@{Country=France; Code=FR; Note=}",
		map[string]any{"Country": "", "Code": "", "Note": ""},
	})
	require.NoError(t, err)
	return tbl
}

func TestLookupService_RegisterAndGet(t *testing.T) {
	repo, auditRepo := sqliteRepos(t)
	svc := NewLookupService(repo, auditRepo, discardLogger(), 3)
	ctx := ctxWithPrincipal("alice")

	_, err := svc.Register(ctx, "Country", countryTable(t))
	require.NoError(t, err)

	got, err := svc.Get(ctx, "Country")
	require.NoError(t, err)
	assert.Len(t, got.Rows, 3)
	assert.Equal(t, "France", got.Rows[1]["Country"])

	t.Run("duplicate", func(t *testing.T) {
		_, err := svc.Register(ctx, "Country", countryTable(t))

		var dup *domain.DuplicateLookupError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "Country", dup.Owner)
	})

	t.Run("unknown_owner", func(t *testing.T) {
		_, err := svc.Get(ctx, "Region")

		var nf *domain.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})

	t.Run("values", func(t *testing.T) {
		vals, err := svc.Values(ctx, "Country", "", "an")
		require.NoError(t, err)
		assert.Equal(t, []string{"Germany", "France"}, vals)

		codes, err := svc.Values(ctx, "Country", "Code", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"DE", "FR", ""}, codes)
	})

	t.Run("display_drops_blank_rows_and_columns", func(t *testing.T) {
		view, err := svc.Display(ctx, "Country")
		require.NoError(t, err)
		assert.Equal(t, []string{"Country", "Code"}, view.Headers)
		assert.Len(t, view.Rows, 2)
	})
}

func TestLookupService_MergeAndDelete(t *testing.T) {
	repo, auditRepo := sqliteRepos(t)
	svc := NewLookupService(repo, auditRepo, discardLogger(), 3)
	ctx := ctxWithPrincipal("alice")

	_, err := svc.Register(ctx, "Country", countryTable(t))
	require.NoError(t, err)

	var extra domain.LookupRegistry
	extra.Set("Currency", domain.LookupTable{Headers: []string{"Currency"}, Rows: []domain.Record{{"Currency": "EUR"}}})
	extra.Set("Country", domain.LookupTable{Headers: []string{"Country"}, Rows: []domain.Record{{"Country": "Italy"}}})

	out, err := svc.Merge(ctx, &extra)
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "Currency"}, out.Value.Owners())

	country, err := svc.Get(ctx, "Country")
	require.NoError(t, err)
	assert.Equal(t, "Italy", country.Rows[0]["Country"])

	_, err = svc.Delete(ctx, "Country")
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Currency"}, list.Value.Owners())

	_, err = svc.Delete(ctx, "Country")
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestLookupService_Replace(t *testing.T) {
	repo, _ := sqliteRepos(t)
	svc := NewLookupService(repo, nil, discardLogger(), 3)
	ctx := ctxWithPrincipal("alice")

	var reg domain.LookupRegistry
	reg.Set("B", domain.LookupTable{Headers: []string{"B"}, Rows: []domain.Record{}})
	reg.Set("A", domain.LookupTable{Headers: []string{"A"}, Rows: []domain.Record{}})

	first, err := svc.Replace(ctx, &reg, "")
	require.NoError(t, err)

	_, err = svc.Replace(ctx, &domain.LookupRegistry{}, "")
	require.NoError(t, err)

	_, err = svc.Replace(ctx, &reg, first.Version)
	var vc *domain.VersionConflictError
	require.ErrorAs(t, err, &vc)

	got, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Value.Len())
}

func TestLookupService_ReplaceKeepsOwnerOrder(t *testing.T) {
	repo, _ := sqliteRepos(t)
	svc := NewLookupService(repo, nil, discardLogger(), 3)
	ctx := ctxWithPrincipal("alice")

	var reg domain.LookupRegistry
	for _, o := range []string{"Zeta", "Alpha", "Mid"} {
		reg.Set(o, domain.LookupTable{Headers: []string{o}, Rows: []domain.Record{}})
	}
	_, err := svc.Replace(ctx, &reg, "")
	require.NoError(t, err)

	got, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, got.Value.Owners())
}

func TestLookupService_NullBlobReadsAsEmpty(t *testing.T) {
	repo, auditRepo := sqliteRepos(t)
	svc := NewLookupService(repo, auditRepo, discardLogger(), 3)
	ctx := ctxWithPrincipal("alice")

	_, err := repo.Put(ctx, domain.KeyLookups, []byte(" null\n"), "")
	require.NoError(t, err)

	reg, err := svc.Register(ctx, "Country", countryTable(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Country"}, reg.Value.Owners())
}
