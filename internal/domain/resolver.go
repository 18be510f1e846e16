package domain

import "strings"

// FieldValue is a saved default-fields row mapping: a header as a user
// typed it and the value chosen for it.
type FieldValue struct {
	Header string `json:"header1"`
	Value  any    `json:"value"`
}

// FilterValues is the direct value-list mode. Values are coerced to strings
// (nil skipped), de-duplicated keeping the first occurrence, and filtered by
// case-insensitive containment of fragment. Column order is kept.
func FilterValues(values []any, fragment string) []string {
	needle := strings.ToLower(fragment)
	seen := make(map[string]bool, len(values))
	out := []string{}
	for _, v := range values {
		if v == nil {
			continue
		}
		s := FormatValue(v)
		if seen[s] {
			continue
		}
		seen[s] = true
		if needle != "" && !strings.Contains(strings.ToLower(s), needle) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// headersMatch is bidirectional containment of the normalized headers. An
// empty side never matches.
func headersMatch(a, b string) bool {
	a, b = normalizeHeader(a), normalizeHeader(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// MatchFieldValues is the partial-header mode without tie-break: every
// candidate value whose header matches selected and whose value is
// non-blank, in list order. Duplicates are kept.
func MatchFieldValues(selected string, candidates []FieldValue) []string {
	out := []string{}
	for _, c := range candidates {
		if !headersMatch(selected, c.Header) || IsBlank(c.Value) {
			continue
		}
		out = append(out, FormatValue(c.Value))
	}
	return out
}

// ResolveFieldValue returns the value of the first candidate matching
// selected. With no match the value is empty and a warning is returned.
func ResolveFieldValue(selected string, candidates []FieldValue) (string, *Warning) {
	for _, c := range candidates {
		if headersMatch(selected, c.Header) && !IsBlank(c.Value) {
			return FormatValue(c.Value), nil
		}
	}
	return "", NoMatchWarning(selected)
}

// Resolver picks candidate value lists for a header from the loaded state.
type Resolver struct {
	Input   Dataset
	Mapping *MappingTable
	Lookups *LookupRegistry
	Fields  ColumnBlob
}

// Source names where a candidate list came from.
type Source string

// Candidate sources, in resolution priority order.
const (
	SourceLookup        Source = "lookup"
	SourceDefaultFields Source = "default_fields"
	SourceInput         Source = "input"
	SourceNone          Source = ""
)

// Candidates returns the filtered candidate values for header. A lookup
// table attached to the header wins, then the default-fields column, then
// the input column when header is a mapped input header. Anything else,
// including stale mappings, yields no candidates and a warning.
func (r Resolver) Candidates(header, fragment string) ([]string, Source, *Warning) {
	if r.Lookups != nil {
		if t, ok := r.Lookups.Get(header); ok {
			if col, ok := t.CandidateColumn(header); ok {
				return FilterValues(t.Values(col), fragment), SourceLookup, nil
			}
			return []string{}, SourceLookup, nil
		}
	}
	if col, ok := r.Fields.Column(header); ok {
		return FilterValues(col, fragment), SourceDefaultFields, nil
	}
	if r.Mapping != nil {
		if _, mapped := r.Mapping.OutputFor(header); mapped && r.Input.HasHeader(header) {
			return FilterValues(r.Input.Column(header), fragment), SourceInput, nil
		}
	}
	return []string{}, SourceNone, UnknownHeaderWarning(header)
}
