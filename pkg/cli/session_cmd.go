package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sheetmap/internal/sheet"
	"sheetmap/pkg/client"
)

func newCandidatesCmd(d *deps) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "candidates <header>",
		Short: "List the values offered for a header",
		Long: "List the values offered for a header. A lookup table attached to the header wins,\n" +
			"then the default fields column, then the input column when the header is mapped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := d.session(cmd.Context())
			if err != nil {
				return err
			}
			vals, src := s.Candidates(cmd.Context(), args[0], filter)
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), map[string]any{
					"header": args[0],
					"source": src,
					"values": vals,
				})
			}
			return printValues(cmd, vals)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Case-insensitive substring filter")
	return cmd
}

func newExportCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx|file.csv>",
		Short: "Write the output dataset filled from the input rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := sheet.FormatFromName(args[0])
			if err != nil {
				return err
			}
			s, err := d.session(cmd.Context())
			if err != nil {
				return err
			}

			tmp, err := os.CreateTemp(filepath.Dir(args[0]), ".sheetmap-export-*")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())
			if err := s.Export(cmd.Context(), tmp, format); err != nil {
				_ = tmp.Close()
				return err
			}
			if err := tmp.Close(); err != nil {
				return err
			}
			if err := os.Rename(tmp.Name(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])
			return nil
		},
	}
}

func newAuditCmd(d *deps) *cobra.Command {
	var (
		q     client.AuditQuery
		since string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List audit log entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if since != "" {
				t, err := parseSince(since, time.Now())
				if err != nil {
					return err
				}
				q.Since = t
			}
			page, err := d.client.ListAudit(cmd.Context(), q)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), page)
			}
			rows := make([][]string, len(page.Entries))
			for i, e := range page.Entries {
				rows[i] = []string{e.CreatedAt.Local().Format(time.DateTime), e.Principal, e.Action, e.Key, e.Status, e.Detail}
			}
			PrintTable(cmd.OutOrStdout(), []string{"time", "principal", "action", "key", "status", "detail"}, rows)
			if page.NextPageToken != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "more entries: --page-token %s\n", page.NextPageToken)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Action, "action", "", "Only entries with this action")
	cmd.Flags().StringVar(&q.Key, "key", "", "Only entries for this document key")
	cmd.Flags().StringVar(&since, "since", "", "Only entries after this RFC 3339 time or duration ago (e.g. 24h)")
	cmd.Flags().IntVar(&q.MaxResults, "max-results", 50, "Page size")
	cmd.Flags().StringVar(&q.PageToken, "page-token", "", "Continue from a previous page")
	return cmd
}

// parseSince accepts an RFC 3339 timestamp or a duration before now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return time.Time{}, fmt.Errorf("invalid --since %q: want an RFC 3339 time or a positive duration", s)
	}
	return now.Add(-d), nil
}
