package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterValues(t *testing.T) {
	values := []any{"Apple", "banana", nil, 12.0, "apple pie", "Apple", true, 12.5}

	t.Run("empty fragment returns all deduped", func(t *testing.T) {
		assert.Equal(t, []string{"Apple", "banana", "12", "apple pie", "true", "12.5"}, FilterValues(values, ""))
	})

	t.Run("case-insensitive containment", func(t *testing.T) {
		assert.Equal(t, []string{"Apple", "apple pie"}, FilterValues(values, "APP"))
	})

	t.Run("numbers coerced", func(t *testing.T) {
		assert.Equal(t, []string{"12", "12.5"}, FilterValues(values, "12"))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, FilterValues(values, "zzz"))
	})
}

func TestResolveFieldValue(t *testing.T) {
	t.Run("normalized bidirectional containment", func(t *testing.T) {
		candidates := []FieldValue{
			{Header: "Customer Name ", Value: "Acme"},
			{Header: "customer", Value: ""},
		}
		got, warn := ResolveFieldValue("customer name", candidates)
		assert.Nil(t, warn)
		assert.Equal(t, "Acme", got)
	})

	t.Run("first match wins", func(t *testing.T) {
		candidates := []FieldValue{
			{Header: "id", Value: "A"},
			{Header: "identifier", Value: "B"},
		}
		got, warn := ResolveFieldValue("id", candidates)
		assert.Nil(t, warn)
		assert.Equal(t, "A", got)
	})

	t.Run("selected contained in candidate", func(t *testing.T) {
		got, _ := ResolveFieldValue("Name", []FieldValue{{Header: "Full NAME", Value: 7.0}})
		assert.Equal(t, "7", got)
	})

	t.Run("blank value skipped", func(t *testing.T) {
		got, _ := ResolveFieldValue("x", []FieldValue{{Header: "x", Value: "  "}, {Header: "x", Value: "ok"}})
		assert.Equal(t, "ok", got)
	})

	t.Run("no match warns", func(t *testing.T) {
		got, warn := ResolveFieldValue("price", []FieldValue{{Header: "name", Value: "A"}})
		assert.Empty(t, got)
		require.NotNil(t, warn)
		assert.Equal(t, WarnNoMatch, warn.Kind)
	})

	t.Run("empty header never matches", func(t *testing.T) {
		_, warn := ResolveFieldValue(" ", []FieldValue{{Header: "name", Value: "A"}})
		assert.NotNil(t, warn)
	})
}

func TestMatchFieldValuesKeepsDuplicates(t *testing.T) {
	got := MatchFieldValues("code", []FieldValue{
		{Header: "Code", Value: "A"},
		{Header: "code ", Value: "A"},
		{Header: "other", Value: "B"},
	})
	assert.Equal(t, []string{"A", "A"}, got)
}

func TestResolverCandidates(t *testing.T) {
	input := DatasetFromGrid([]string{"Name", "City"}, [][]any{{"Acme", "Oslo"}, {"Beta", "Bergen"}})
	mapping := NewMappingTable([]MappingEntry{{InputHeader: "Name", OutputHeader: "Label"}})
	var lookups LookupRegistry
	require.NoError(t, lookups.Register("Label", LookupTable{
		Headers: []string{"Label"},
		Rows:    []Record{{"Label": "Gold"}, {"Label": "Silver"}},
	}))
	fields := NewColumnBlob([]string{"Country"}, map[string][]any{"Country": {"Norway", "Sweden"}})

	r := Resolver{Input: input, Mapping: mapping, Lookups: &lookups, Fields: fields}

	t.Run("lookup table first", func(t *testing.T) {
		got, src, warn := r.Candidates("Label", "")
		assert.Nil(t, warn)
		assert.Equal(t, SourceLookup, src)
		assert.Equal(t, []string{"Gold", "Silver"}, got)
	})

	t.Run("default fields next", func(t *testing.T) {
		got, src, _ := r.Candidates("Country", "swe")
		assert.Equal(t, SourceDefaultFields, src)
		assert.Equal(t, []string{"Sweden"}, got)
	})

	t.Run("mapped input column", func(t *testing.T) {
		got, src, _ := r.Candidates("Name", "")
		assert.Equal(t, SourceInput, src)
		assert.Equal(t, []string{"Acme", "Beta"}, got)
	})

	t.Run("unmapped input column unknown", func(t *testing.T) {
		got, _, warn := r.Candidates("City", "")
		assert.Empty(t, got)
		require.NotNil(t, warn)
		assert.Equal(t, WarnUnknownHeader, warn.Kind)
	})

	t.Run("stale mapping does not throw", func(t *testing.T) {
		mapping.Set("Removed", "Label")
		got, _, warn := r.Candidates("Removed", "")
		assert.Empty(t, got)
		assert.NotNil(t, warn)
	})
}
