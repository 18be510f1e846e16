package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sheetmap/internal/domain"
)

// DefaultSheetName is the worksheet written by WriteXLSX.
const DefaultSheetName = "Output"

// WriteXLSX writes the dataset as a single-sheet workbook: headers in row 1,
// one row per record, absent cells left blank.
func WriteXLSX(w io.Writer, ds domain.Dataset) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", DefaultSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(ds.Headers))
	for i, h := range ds.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(DefaultSheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range ds.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]any, len(ds.Headers))
		for j, h := range ds.Headers {
			row[j] = rec[h]
		}
		if err := f.SetSheetRow(DefaultSheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}

// WriteCSV writes the dataset as csv with a header line.
func WriteCSV(w io.Writer, ds domain.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Headers); err != nil {
		return err
	}
	line := make([]string, len(ds.Headers))
	for _, rec := range ds.Rows {
		for j, h := range ds.Headers {
			line[j] = domain.FormatValue(rec[h])
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write encodes ds in the given format.
func Write(w io.Writer, format Format, ds domain.Dataset) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, ds)
	case FormatCSV:
		return WriteCSV(w, ds)
	default:
		return domain.ErrValidation("unsupported format %q", format)
	}
}
