package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

func newFieldsCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fields",
		Aliases: []string{"default-fields"},
		Short:   "Manage default field values",
	}
	cmd.AddCommand(newFieldsUploadCmd(d))
	cmd.AddCommand(newFieldsValuesCmd(d))
	cmd.AddCommand(newFieldsResolveCmd(d))
	cmd.AddCommand(newFieldsSetCmd(d))
	return cmd
}

func newFieldsUploadCmd(d *deps) *cobra.Command {
	var flags uploadFlags

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload the default fields spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.clientOptions()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			blob, _, err := d.client.UploadDefaultFields(cmd.Context(), filepath.Base(args[0]), f, opts, "")
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), map[string]any{"headers": blob.Headers()})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded default fields: %d headers\n", blob.Len())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newFieldsValuesCmd(d *deps) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "values <header>",
		Short: "List the default values of a header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := d.client.DefaultFieldValues(cmd.Context(), args[0], filter)
			if err != nil {
				return err
			}
			return printValues(cmd, vals)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Case-insensitive substring filter")
	return cmd
}

func newFieldsResolveCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <header>",
		Short: "Resolve the saved default value for a header",
		Long:  "Resolve the saved default value for a header. Headers match when either contains the other, ignoring case.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := d.client.ResolveField(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), res)
			}
			PrintDetail(cmd.OutOrStdout(), map[string]any{
				"header":  args[0],
				"value":   res.Value,
				"matched": strconv.FormatBool(res.Matched),
			})
			return nil
		},
	}
}

func newFieldsSetCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "set <header> <value>",
		Short: "Save the default value for a header",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := d.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.SetFieldValue(args[0], args[1]); err != nil {
				return err
			}
			if err := s.SaveFieldValues(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default for %q set to %q\n", args[0], args[1])
			return nil
		},
	}
}
