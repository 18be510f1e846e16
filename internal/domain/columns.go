package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ColumnBlob is the header-keyed form of a table: each header maps to its
// column of values. Header order is kept through JSON encoding.
type ColumnBlob struct {
	keys   []string
	values map[string][]any
}

// NewColumnBlob builds a blob from headers and their columns.
func NewColumnBlob(headers []string, columns map[string][]any) ColumnBlob {
	var b ColumnBlob
	for _, h := range headers {
		b.Set(h, columns[h])
	}
	return b
}

// Set replaces the column for h, appending h if it is new.
func (b *ColumnBlob) Set(h string, vals []any) {
	if b.values == nil {
		b.values = make(map[string][]any)
	}
	if _, ok := b.values[h]; !ok {
		b.keys = append(b.keys, h)
	}
	if vals == nil {
		vals = []any{}
	}
	b.values[h] = vals
}

// Headers returns the headers in insertion order.
func (b ColumnBlob) Headers() []string {
	return append([]string(nil), b.keys...)
}

// Column returns the values under h.
func (b ColumnBlob) Column(h string) ([]any, bool) {
	v, ok := b.values[h]
	return v, ok
}

// Len returns the number of headers.
func (b ColumnBlob) Len() int { return len(b.keys) }

// MarshalJSON writes the blob as an object whose keys follow header order.
func (b ColumnBlob) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(b.values[k])
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

// UnmarshalJSON reads an object of arrays, keeping key order. A null column
// is read as empty.
func (b *ColumnBlob) UnmarshalJSON(data []byte) error {
	*b = ColumnBlob{}
	keys, raw, err := decodeOrderedObject(data)
	if err != nil {
		return &ParseError{Source: "column blob", Err: err}
	}
	for _, k := range keys {
		var vals []any
		if err := json.Unmarshal(raw[k], &vals); err != nil {
			return &ParseError{Source: "column blob", Err: fmt.Errorf("column %q: %w", k, err)}
		}
		b.Set(k, vals)
	}
	return nil
}

// decodeOrderedObject splits a JSON object into its keys (in document order,
// later duplicates overwrite earlier values in place) and raw values.
func decodeOrderedObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if tok == nil {
		return nil, map[string]json.RawMessage{}, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("expected JSON object")
	}
	var keys []string
	raw := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errors.New("expected object key")
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := raw[key]; !dup {
			keys = append(keys, key)
		}
		raw[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, raw, nil
}
