package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"sheetmap/internal/sheet"
)

func newLookupCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lookup",
		Aliases: []string{"lookups"},
		Short:   "Manage lookup tables attached to output headers",
	}
	cmd.AddCommand(newLookupListCmd(d))
	cmd.AddCommand(newLookupShowCmd(d))
	cmd.AddCommand(newLookupRegisterCmd(d))
	cmd.AddCommand(newLookupDeleteCmd(d))
	cmd.AddCommand(newLookupValuesCmd(d))
	return cmd
}

func newLookupListCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List lookup owners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, _, err := d.client.GetLookups(cmd.Context())
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), reg)
			}
			rows := make([][]string, 0, reg.Len())
			for _, owner := range reg.Owners() {
				t, _ := reg.Get(owner)
				rows = append(rows, []string{owner, strconv.Itoa(len(t.Headers)), strconv.Itoa(len(t.Rows))})
			}
			PrintTable(cmd.OutOrStdout(), []string{"owner", "columns", "rows"}, rows)
			return nil
		},
	}
}

func newLookupShowCmd(d *deps) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show <owner>",
		Short: "Print the lookup table attached to an output header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := d.client.GetLookup(cmd.Context(), args[0], !all)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), t)
			}
			PrintTable(cmd.OutOrStdout(), t.Headers, recordRows(t.Headers, t.Rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include blank rows and columns")
	return cmd
}

func newLookupRegisterCmd(d *deps) *cobra.Command {
	var flags uploadFlags

	cmd := &cobra.Command{
		Use:   "register <owner> <file>",
		Short: "Attach a spreadsheet as the lookup table of an output header",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.sheetOptions()
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			g, err := sheet.DecodeFile(filepath.Base(args[1]), f, opts)
			if err != nil {
				return err
			}
			ds := g.Dataset()
			rows := make([]any, len(ds.Rows))
			for i, r := range ds.Rows {
				rows[i] = r
			}

			s, err := d.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.RegisterLookup(cmd.Context(), args[0], ds.Headers, rows); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), map[string]any{
					"owner":  args[0],
					"rows":   len(rows),
					"owners": s.LookupOwners(),
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered lookup for %q with %d rows\n", args[0], len(rows))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newLookupDeleteCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <owner>",
		Short: "Detach the lookup table from an output header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := d.client.DeleteLookup(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted lookup for %q\n", args[0])
			return nil
		},
	}
}

func newLookupValuesCmd(d *deps) *cobra.Command {
	var column, filter string

	cmd := &cobra.Command{
		Use:   "values <owner>",
		Short: "List distinct values of a lookup column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := d.client.LookupValues(cmd.Context(), args[0], column, filter)
			if err != nil {
				return err
			}
			return printValues(cmd, vals)
		},
	}
	cmd.Flags().StringVar(&column, "column", "", "Column to list (default: the owner's candidate column)")
	cmd.Flags().StringVar(&filter, "filter", "", "Case-insensitive substring filter")
	return cmd
}

func printValues(cmd *cobra.Command, vals []string) error {
	if getOutputFormat(cmd) == "json" {
		return PrintJSON(cmd.OutOrStdout(), vals)
	}
	rows := make([][]string, len(vals))
	for i, v := range vals {
		rows[i] = []string{v}
	}
	PrintTable(cmd.OutOrStdout(), []string{"value"}, rows)
	return nil
}
