package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"sheetmap/internal/domain"
	"sheetmap/internal/sheet"
	"sheetmap/pkg/client"
)

func newDatasetCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Upload and inspect the input and output datasets",
	}
	cmd.AddCommand(newDatasetUploadCmd(d))
	cmd.AddCommand(newDatasetShowCmd(d))
	return cmd
}

// uploadFlags are the spreadsheet decoding flags shared by upload commands.
type uploadFlags struct {
	european  bool
	keepText  bool
	sheet     string
	delimiter string
}

func (f *uploadFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.european, "european-numbers", false, "Read '1.234,5' style numbers")
	cmd.Flags().BoolVar(&f.keepText, "keep-text", false, "Keep every cell as text")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet name for xlsx files (default: first sheet)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "Field delimiter for csv files (default: ,)")
}

func (f *uploadFlags) clientOptions() (client.UploadOptions, error) {
	opts := client.UploadOptions{EuropeanNumbers: f.european, KeepText: f.keepText, Sheet: f.sheet}
	if f.delimiter != "" {
		r, size := utf8.DecodeRuneInString(f.delimiter)
		if size != len(f.delimiter) {
			return opts, fmt.Errorf("--delimiter must be a single character")
		}
		opts.Delimiter = r
	}
	return opts, nil
}

func (f *uploadFlags) sheetOptions() (sheet.Options, error) {
	o, err := f.clientOptions()
	if err != nil {
		return sheet.Options{}, err
	}
	return sheet.Options{EuropeanNumbers: o.EuropeanNumbers, KeepText: o.KeepText, Sheet: o.Sheet, Comma: o.Delimiter}, nil
}

func newDatasetUploadCmd(d *deps) *cobra.Command {
	var flags uploadFlags

	cmd := &cobra.Command{
		Use:   "upload <input|output> <file>",
		Short: "Upload a spreadsheet as the input or output dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseDatasetKind(args[0])
			if err != nil {
				return err
			}
			opts, err := flags.clientOptions()
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			ds, version, err := d.client.UploadDataset(cmd.Context(), kind, filepath.Base(args[1]), f, opts, "")
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), map[string]any{
					"kind":    kind,
					"headers": ds.Headers,
					"rows":    len(ds.Rows),
					"version": version,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s dataset: %d headers, %d rows\n", kind, len(ds.Headers), len(ds.Rows))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newDatasetShowCmd(d *deps) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <input|output>",
		Short: "Print a stored dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseDatasetKind(args[0])
			if err != nil {
				return err
			}
			ds, _, err := d.client.GetDataset(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if limit > 0 && len(ds.Rows) > limit {
				ds.Rows = ds.Rows[:limit]
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), ds)
			}
			PrintTable(cmd.OutOrStdout(), ds.Headers, recordRows(ds.Headers, ds.Rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many rows (0 for all)")
	return cmd
}

func recordRows(headers []string, recs []domain.Record) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = cellString(rec[h])
		}
		rows = append(rows, row)
	}
	return rows
}
