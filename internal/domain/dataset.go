package domain

import (
	"fmt"
	"strconv"
)

// DatasetKind names one of the two persisted datasets.
type DatasetKind string

// Dataset kinds.
const (
	DatasetInput  DatasetKind = "input"
	DatasetOutput DatasetKind = "output"
)

// ParseDatasetKind validates a kind taken from a URL or flag.
func ParseDatasetKind(s string) (DatasetKind, error) {
	switch DatasetKind(s) {
	case DatasetInput, DatasetOutput:
		return DatasetKind(s), nil
	default:
		return "", ErrValidation("unknown dataset kind %q (want input or output)", s)
	}
}

// Record is one row keyed by header. Absent cells are missing keys.
type Record map[string]any

// Dataset is a header list plus header-keyed rows. It is replaced wholesale
// on upload or reload and never edited in place.
type Dataset struct {
	Headers []string `json:"headers"`
	Rows    []Record `json:"data"`
}

// DatasetFromGrid aligns decoded spreadsheet rows against the header row.
// Rows whose every cell is nil or "" are dropped, cells past the header
// width are ignored, and nil cells are left out of the record.
func DatasetFromGrid(header []string, rows [][]any) Dataset {
	headers := UniqueHeaders(header)
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		if rowIsEmpty(row) {
			continue
		}
		rec := make(Record, len(headers))
		for i, h := range headers {
			if i >= len(row) || row[i] == nil {
				continue
			}
			rec[h] = row[i]
		}
		out = append(out, rec)
	}
	return Dataset{Headers: headers, Rows: out}
}

func rowIsEmpty(row []any) bool {
	for _, c := range row {
		if !isEmptyCell(c) {
			return false
		}
	}
	return true
}

// UniqueHeaders returns the header row with blanks named Column<N> (1-based
// position) and repeats suffixed _2, _3, ... using the first free suffix.
// Headers that are already unique and non-empty come back unchanged.
func UniqueHeaders(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[h] = true
	}
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		name := h
		if name == "" {
			name = "Column" + strconv.Itoa(i+1)
		}
		if taken[name] || (h == "" && seen[name]) {
			base := name
			for n := 2; ; n++ {
				candidate := fmt.Sprintf("%s_%d", base, n)
				if !taken[candidate] && !seen[candidate] {
					name = candidate
					break
				}
			}
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

// Validate checks that headers are unique and every row key is a header.
func (d Dataset) Validate() error {
	idx := make(map[string]bool, len(d.Headers))
	for _, h := range d.Headers {
		if idx[h] {
			return ErrValidation("duplicate header %q", h)
		}
		idx[h] = true
	}
	for i, r := range d.Rows {
		for k := range r {
			if !idx[k] {
				return ErrValidation("row %d references unknown header %q", i, k)
			}
		}
	}
	return nil
}

// HasHeader reports whether h is one of the dataset's headers.
func (d Dataset) HasHeader(h string) bool {
	for _, x := range d.Headers {
		if x == h {
			return true
		}
	}
	return false
}

// Column returns the values under h in row order, nil where a row has no cell.
func (d Dataset) Column(h string) []any {
	out := make([]any, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r[h]
	}
	return out
}

// Lookup returns every row whose cell under header equals value exactly.
// An unknown header yields no rows and a warning.
func (d Dataset) Lookup(header string, value any) ([]Record, *Warning) {
	if !d.HasHeader(header) {
		return nil, UnknownHeaderWarning(header)
	}
	var out []Record
	for _, r := range d.Rows {
		v, ok := r[header]
		if ok && ValuesEqual(v, value) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ToColumns converts to the header-keyed form. Absent cells become nil so
// every column has one entry per row.
func (d Dataset) ToColumns() ColumnBlob {
	var b ColumnBlob
	for _, h := range d.Headers {
		b.Set(h, d.Column(h))
	}
	return b
}

// DatasetFromColumns rebuilds rows from the header-keyed form. Columns may
// differ in length; short columns leave later rows without that cell. No
// rows are filtered.
func DatasetFromColumns(b ColumnBlob) Dataset {
	headers := b.Headers()
	n := 0
	for _, h := range headers {
		if col, _ := b.Column(h); len(col) > n {
			n = len(col)
		}
	}
	rows := make([]Record, n)
	for i := range rows {
		rows[i] = make(Record, len(headers))
	}
	for _, h := range headers {
		col, _ := b.Column(h)
		for i, v := range col {
			if v != nil {
				rows[i][h] = v
			}
		}
	}
	return Dataset{Headers: headers, Rows: rows}
}
