package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetmap/internal/domain"
	"sheetmap/internal/sheet"
)

func TestDefaultFieldsService_UploadAndValues(t *testing.T) {
	repo, auditRepo := sqliteRepos(t)
	svc := NewDefaultFieldsService(repo, auditRepo, discardLogger())
	ctx := ctxWithPrincipal("alice")

	csv := "Payment Terms,Currency\nNet 30,EUR\n,\nNet 60,USD\nNet 30,\n"
	out, err := svc.Upload(ctx, "defaults.csv", strings.NewReader(csv), sheet.Options{KeepText: true}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Payment Terms", "Currency"}, out.Value.Headers())

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	col, ok := got.Value.Column("Payment Terms")
	require.True(t, ok)
	assert.Len(t, col, 4, "empty rows are kept in header-keyed form")

	vals, err := svc.Values(ctx, "Payment Terms", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Net 30", "Net 60"}, vals)

	vals, err = svc.Values(ctx, "Currency", "us")
	require.NoError(t, err)
	assert.Equal(t, []string{"USD"}, vals)

	vals, err = svc.Values(ctx, "Incoterms", "")
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func TestDefaultFieldsService_Resolve(t *testing.T) {
	repo, _ := sqliteRepos(t)
	svc := NewDefaultFieldsService(repo, nil, discardLogger())
	ctx := ctxWithPrincipal("alice")

	_, err := svc.SaveMappings(ctx, []domain.FieldValue{
		{Header: "Company Name", Value: ""},
		{Header: "company", Value: "Acme"},
		{Header: "Identifier", Value: 42.0},
	}, "")
	require.NoError(t, err)

	tests := []struct {
		header  string
		want    string
		matched bool
	}{
		{"COMPANY NAME", "Acme", true},
		{"id", "42", true},
		{"Street", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			res, err := svc.Resolve(ctx, tc.header)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Value)
			assert.Equal(t, tc.matched, res.Matched)
		})
	}
}

func TestDefaultFieldsService_SaveMappingsNil(t *testing.T) {
	var stored []byte
	audit := &mockAuditRepo{}
	svc := NewDefaultFieldsService(notFoundRepo(&stored), audit, discardLogger())

	_, err := svc.SaveMappings(ctxWithPrincipal("alice"), nil, "")

	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(stored))
	assert.True(t, audit.hasAction("SAVE_FIELD_VALUES"))
}
