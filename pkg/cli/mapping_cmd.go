package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetmap/internal/domain"
)

func newMappingCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mapping",
		Aliases: []string{"mappings"},
		Short:   "Manage input to output header mappings",
	}
	cmd.AddCommand(newMappingListCmd(d))
	cmd.AddCommand(newMappingSetCmd(d))
	cmd.AddCommand(newMappingClearCmd(d))
	return cmd
}

func printMappings(cmd *cobra.Command, entries []domain.MappingEntry) error {
	if getOutputFormat(cmd) == "json" {
		return PrintJSON(cmd.OutOrStdout(), entries)
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.InputHeader, e.OutputHeader})
	}
	PrintTable(cmd.OutOrStdout(), []string{"input", "output"}, rows)
	return nil
}

func newMappingListCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the saved mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, _, err := d.client.GetMappings(cmd.Context())
			if err != nil {
				return err
			}
			return printMappings(cmd, entries)
		},
	}
}

func newMappingSetCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "set <input-header> <output-header>",
		Short: "Map an input header to an output header and save",
		Long: "Map an input header to an output header and save the mapping table.\n" +
			"Entries whose headers no longer exist in the stored datasets are dropped on save.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := d.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.SetMapping(args[0], args[1]); err != nil {
				return err
			}
			dropped, err := s.SaveMappings(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range dropped {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "dropped stale mapping %q -> %q\n", e.InputHeader, e.OutputHeader)
			}
			return printMappings(cmd, s.Mappings())
		},
	}
}

func newMappingClearCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := d.session(cmd.Context())
			if err != nil {
				return err
			}
			s.ClearMappings()
			if _, err := s.SaveMappings(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Mappings cleared")
			return nil
		},
	}
}
