// Package sheet decodes uploaded spreadsheets into a header row plus data
// rows, and writes datasets back out as xlsx or csv.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sheetmap/internal/domain"
)

// Format is a supported spreadsheet encoding.
type Format string

// Supported formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFromName picks the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", domain.ErrValidation("unsupported spreadsheet type %q", filepath.Ext(name))
	}
}

// Options controls cell conversion.
type Options struct {
	// Sheet names the worksheet to read; empty means the first one.
	Sheet string
	// EuropeanNumbers swaps ',' and '.' in every text cell before numbers
	// are inferred, turning "1.234,5" into "1,234.5".
	EuropeanNumbers bool
	// KeepText disables number inference; every cell stays a string.
	KeepText bool
	// Comma is the CSV field delimiter; zero means ','.
	Comma rune
}

// Grid is a decoded sheet: row 0 as headers, the rest as cells. Empty
// cells are nil.
type Grid struct {
	Header []string
	Rows   [][]any
}

// Dataset aligns the grid into a dataset, dropping all-empty rows.
func (g *Grid) Dataset() domain.Dataset {
	return domain.DatasetFromGrid(g.Header, g.Rows)
}

// Columns converts the grid into the header-keyed form without dropping
// any rows.
func (g *Grid) Columns() domain.ColumnBlob {
	headers := domain.UniqueHeaders(g.Header)
	cols := make(map[string][]any, len(headers))
	for i, h := range headers {
		col := make([]any, len(g.Rows))
		for r, row := range g.Rows {
			if i < len(row) {
				col[r] = row[i]
			}
		}
		cols[h] = col
	}
	return domain.NewColumnBlob(headers, cols)
}

// Decode reads a spreadsheet of the given format. Any decoder failure is a
// *domain.ParseError.
func Decode(format Format, r io.Reader, opts Options) (*Grid, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatXLSX:
		records, err = readXLSX(r, opts.Sheet)
	case FormatCSV:
		records, err = readCSV(r, opts.Comma)
	default:
		return nil, domain.ErrValidation("unsupported format %q", format)
	}
	if err != nil {
		return nil, &domain.ParseError{Source: string(format), Err: err}
	}
	if len(records) == 0 {
		return nil, &domain.ParseError{Source: string(format), Err: errors.New("no header row")}
	}

	g := &Grid{Header: records[0], Rows: make([][]any, 0, len(records)-1)}
	for _, rec := range records[1:] {
		row := make([]any, len(rec))
		for i, cell := range rec {
			row[i] = convertCell(cell, opts)
		}
		g.Rows = append(g.Rows, row)
	}
	return g, nil
}

// DecodeFile picks the format from name and decodes r.
func DecodeFile(name string, r io.Reader, opts Options) (*Grid, error) {
	f, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	return Decode(f, r, opts)
}

func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("no sheets found")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(r io.Reader, comma rune) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	cr := csv.NewReader(bytes.NewReader(data))
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

var (
	plainNumber   = regexp.MustCompile(`^-?(0|[1-9]\d*)(\.\d+)?([eE][-+]?\d+)?$`)
	groupedNumber = regexp.MustCompile(`^-?[1-9]\d{0,2}(,\d{3})+(\.\d+)?$`)
)

func convertCell(s string, opts Options) any {
	if s == "" {
		return nil
	}
	if opts.EuropeanNumbers {
		s = SwapDecimalSeparators(s)
	}
	if opts.KeepText {
		return s
	}
	if n, ok := parseNumber(s); ok {
		return n
	}
	return s
}

// parseNumber accepts plain and comma-grouped decimals. Text with leading
// zeros such as "007" stays text.
func parseNumber(s string) (float64, bool) {
	switch {
	case plainNumber.MatchString(s):
	case groupedNumber.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// SwapDecimalSeparators exchanges every ',' with '.' and vice versa.
func SwapDecimalSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',':
			return '.'
		case '.':
			return ','
		}
		return r
	}, s)
}
