package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetmap/internal/domain"
	"sheetmap/internal/sheet"
)

func TestDatasetService_Save(t *testing.T) {
	t.Run("happy_path", func(t *testing.T) {
		var stored []byte
		audit := &mockAuditRepo{}
		svc := NewDatasetService(notFoundRepo(&stored), audit, discardLogger())

		out, err := svc.Save(ctxWithPrincipal("alice"), domain.DatasetInput, domain.Dataset{Headers: []string{"Name"}}, "")

		require.NoError(t, err)
		assert.Equal(t, "1", out.Version)
		assert.JSONEq(t, `{"headers":["Name"],"data":[]}`, string(stored))
		require.NotNil(t, audit.lastEntry())
		assert.Equal(t, "SAVE_DATASET", audit.lastEntry().Action)
		assert.Equal(t, "alice", audit.lastEntry().Principal)
		assert.Equal(t, domain.AuditOK, audit.lastEntry().Status)
	})

	t.Run("invalid_dataset", func(t *testing.T) {
		audit := &mockAuditRepo{}
		svc := NewDatasetService(&mockBlobRepo{}, audit, discardLogger())

		_, err := svc.Save(ctxWithPrincipal("alice"), domain.DatasetInput, domain.Dataset{Headers: []string{"A", "A"}}, "")

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Empty(t, audit.entries)
	})

	t.Run("stale_version_is_audited_as_failed", func(t *testing.T) {
		repo, auditRepo := sqliteRepos(t)
		svc := NewDatasetService(repo, auditRepo, discardLogger())
		ctx := ctxWithPrincipal("alice")
		ds := domain.Dataset{Headers: []string{"A"}, Rows: []domain.Record{{"A": "x"}}}

		_, err := svc.Save(ctx, domain.DatasetOutput, ds, "")
		require.NoError(t, err)
		_, err = svc.Save(ctx, domain.DatasetOutput, ds, "")
		require.NoError(t, err)
		_, err = svc.Save(ctx, domain.DatasetOutput, ds, "1")

		var vc *domain.VersionConflictError
		require.ErrorAs(t, err, &vc)
		assert.Equal(t, "2", vc.Actual)

		entries, total, err := auditRepo.List(ctx, domain.AuditFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, domain.AuditFailed, entries[0].Status)
	})
}

func TestDatasetService_GetEmpty(t *testing.T) {
	svc := NewDatasetService(notFoundRepo(nil), &mockAuditRepo{}, discardLogger())

	got, err := svc.Get(ctxWithPrincipal("bob"), domain.DatasetOutput)

	require.NoError(t, err)
	data, err := json.Marshal(got.Value)
	require.NoError(t, err)
	assert.JSONEq(t, `{"headers":[],"data":[]}`, string(data))
}

func TestDatasetService_Upload(t *testing.T) {
	repo, auditRepo := sqliteRepos(t)
	svc := NewDatasetService(repo, auditRepo, discardLogger())
	ctx := ctxWithPrincipal("alice")

	csv := "Name,Qty\nWidget,3\n,\nGadget,\n"
	_, err := svc.Upload(ctx, domain.DatasetInput, "items.csv", strings.NewReader(csv), sheet.Options{}, "")
	require.NoError(t, err)

	got, err := svc.Get(ctx, domain.DatasetInput)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Qty"}, got.Value.Headers)
	require.Len(t, got.Value.Rows, 2)
	assert.Equal(t, "Widget", got.Value.Rows[0]["Name"])
	assert.InDelta(t, 3.0, got.Value.Rows[0]["Qty"], 0)
	assert.Equal(t, "1", got.Version)
}

func TestDatasetService_UploadRejectsUnknownFormat(t *testing.T) {
	svc := NewDatasetService(&mockBlobRepo{}, &mockAuditRepo{}, discardLogger())

	_, err := svc.Upload(ctxWithPrincipal("alice"), domain.DatasetInput, "notes.pdf", strings.NewReader("x"), sheet.Options{}, "")

	require.Error(t, err)
}
