package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LookupTable is an auxiliary table attached to one output header. Its
// values populate the candidate list for that header.
type LookupTable struct {
	Headers []string `json:"headers"`
	Rows    []Record `json:"rows"`
}

// NewLookupTable normalizes rows into records. A row may be a record, a
// map[string]any, or a legacy "@{k1=v1; k2=v2}" string; anything else is an
// InvalidRowFormatError.
func NewLookupTable(headers []string, rows []any) (LookupTable, error) {
	recs, err := NormalizeRows(rows)
	if err != nil {
		return LookupTable{}, err
	}
	if headers == nil {
		headers = []string{}
	}
	return LookupTable{Headers: headers, Rows: recs}, nil
}

// NormalizeRows converts each row to a Record, parsing legacy strings.
func NormalizeRows(rows []any) ([]Record, error) {
	out := make([]Record, 0, len(rows))
	for i, row := range rows {
		switch r := row.(type) {
		case Record:
			out = append(out, r)
		case map[string]any:
			out = append(out, Record(r))
		case string:
			out = append(out, ParseLegacyRow(r))
		default:
			return nil, &InvalidRowFormatError{Index: i, Kind: jsonKind(row)}
		}
	}
	return out, nil
}

// ParseLegacyRow parses the serialized "@{k1=v1; k2=v2}" row form. The
// wrapper is optional. Pairs split on ';' and key from value on the first
// '='; both sides are trimmed and pairs without '=' or with an empty key are
// skipped.
func ParseLegacyRow(s string) Record {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "@{")
	s = strings.TrimSuffix(s, "}")
	rec := Record{}
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		rec[k] = strings.TrimSpace(v)
	}
	return rec
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case float64, int, int64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// UnmarshalJSON decodes a table and normalizes legacy string rows.
func (t *LookupTable) UnmarshalJSON(data []byte) error {
	var raw struct {
		Headers []string `json:"headers"`
		Rows    []any    `json:"rows"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return &ParseError{Source: "lookup table", Err: err}
	}
	tbl, err := NewLookupTable(raw.Headers, raw.Rows)
	if err != nil {
		return err
	}
	*t = tbl
	return nil
}

// Values returns the column under h in row order, skipping rows without it.
func (t LookupTable) Values(h string) []any {
	out := make([]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		if v, ok := r[h]; ok {
			out = append(out, v)
		}
	}
	return out
}

// CandidateColumn picks the column that feeds owner's candidate list: the
// column named like owner if present, else the first column.
func (t LookupTable) CandidateColumn(owner string) (string, bool) {
	for _, h := range t.Headers {
		if h == owner {
			return h, true
		}
	}
	if len(t.Headers) > 0 {
		return t.Headers[0], true
	}
	return "", false
}

// NonEmpty is the display projection: rows holding at least one non-blank
// value, restricted to headers that hold a non-blank value in some kept row.
func (t LookupTable) NonEmpty() LookupTable {
	var rows []Record
	for _, r := range t.Rows {
		for _, h := range t.Headers {
			if !IsBlank(r[h]) {
				rows = append(rows, r)
				break
			}
		}
	}
	headers := []string{}
	for _, h := range t.Headers {
		for _, r := range rows {
			if !IsBlank(r[h]) {
				headers = append(headers, h)
				break
			}
		}
	}
	if rows == nil {
		rows = []Record{}
	}
	return LookupTable{Headers: headers, Rows: rows}
}

// LookupRegistry maps owner headers to their lookup tables, keeping
// registration order. The zero value is ready to use.
type LookupRegistry struct {
	owners []string
	tables map[string]LookupTable
}

// Register attaches table to owner. It fails without changing the registry
// when owner is empty or already has a table.
func (r *LookupRegistry) Register(owner string, table LookupTable) error {
	if strings.TrimSpace(owner) == "" {
		return ErrValidation("owner header is required")
	}
	if _, ok := r.tables[owner]; ok {
		return &DuplicateLookupError{Owner: owner}
	}
	r.Set(owner, table)
	return nil
}

// RegisterRows normalizes rows and registers the result. Row format is
// checked before the registry is touched.
func (r *LookupRegistry) RegisterRows(owner string, headers []string, rows []any) error {
	if _, ok := r.tables[owner]; ok {
		return &DuplicateLookupError{Owner: owner}
	}
	tbl, err := NewLookupTable(headers, rows)
	if err != nil {
		return err
	}
	return r.Register(owner, tbl)
}

// Set attaches table to owner, replacing any existing table in place.
func (r *LookupRegistry) Set(owner string, table LookupTable) {
	if r.tables == nil {
		r.tables = make(map[string]LookupTable)
	}
	if _, ok := r.tables[owner]; !ok {
		r.owners = append(r.owners, owner)
	}
	r.tables[owner] = table
}

// Get returns the table attached to owner.
func (r *LookupRegistry) Get(owner string) (LookupTable, bool) {
	t, ok := r.tables[owner]
	return t, ok
}

// Remove detaches owner's table and reports whether one existed.
func (r *LookupRegistry) Remove(owner string) bool {
	if _, ok := r.tables[owner]; !ok {
		return false
	}
	delete(r.tables, owner)
	for i, o := range r.owners {
		if o == owner {
			r.owners = append(r.owners[:i:i], r.owners[i+1:]...)
			break
		}
	}
	return true
}

// Owners returns owner headers in registration order.
func (r *LookupRegistry) Owners() []string {
	return append([]string{}, r.owners...)
}

// Len returns the number of registered tables.
func (r *LookupRegistry) Len() int { return len(r.owners) }

// Merge copies every table from other into r, overwriting owners present in
// both. Existing owners keep their position.
func (r *LookupRegistry) Merge(other *LookupRegistry) {
	for _, o := range other.owners {
		r.Set(o, other.tables[o])
	}
}

// Clone returns an independent copy of the registry structure. Tables are
// shared; they are never mutated in place.
func (r *LookupRegistry) Clone() *LookupRegistry {
	c := &LookupRegistry{}
	c.Merge(r)
	return c
}

// MarshalJSON writes the registry as an object keyed by owner header.
func (r LookupRegistry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, o := range r.owners {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(o)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.tables[o])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an owner-keyed object, normalizing each table.
func (r *LookupRegistry) UnmarshalJSON(data []byte) error {
	*r = LookupRegistry{}
	keys, raw, err := decodeOrderedObject(data)
	if err != nil {
		return &ParseError{Source: "lookup registry", Err: err}
	}
	for _, k := range keys {
		var t LookupTable
		if err := json.Unmarshal(raw[k], &t); err != nil {
			return err
		}
		r.Set(k, t)
	}
	return nil
}
