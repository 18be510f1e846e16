package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sheetmap/internal/domain"
)

func newRulesCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Aliases: []string{"rule"},
		Short:   "List and edit transformation rules",
	}
	cmd.AddCommand(newRulesListCmd(d))
	cmd.AddCommand(newRulesAddCmd(d))
	cmd.AddCommand(newRulesDeleteCmd(d))
	return cmd
}

func newRulesListCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List default and user-defined rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defaults, err := d.client.GetDefaultRules(cmd.Context())
			if err != nil {
				return err
			}
			user, _, err := d.client.GetUserRules(cmd.Context())
			if err != nil {
				return err
			}
			var reg domain.RuleRegistry
			reg.ReplaceDefaults(defaults)
			reg.ReplaceUserDefined(user)
			return printRules(cmd, reg.All())
		},
	}
}

func printRules(cmd *cobra.Command, rules []domain.Rule) error {
	if getOutputFormat(cmd) == "json" {
		type row struct {
			domain.Rule
			IsDefault bool `json:"is_default"`
		}
		out := make([]row, len(rules))
		for i, r := range rules {
			out[i] = row{Rule: r, IsDefault: r.IsDefault}
		}
		return PrintJSON(cmd.OutOrStdout(), out)
	}
	rows := make([][]string, len(rules))
	for i, r := range rules {
		rows[i] = []string{r.Name, strconv.FormatBool(r.IsDefault), r.Description}
	}
	PrintTable(cmd.OutOrStdout(), []string{"name", "default", "description"}, rows)
	return nil
}

func newRulesAddCmd(d *deps) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user-defined rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := d.session(cmd.Context())
			if err != nil {
				return err
			}
			added, err := s.AddRule(cmd.Context(), domain.Rule{Name: name, Description: description})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added rule %q\n", added.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Rule name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Rule description (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newRulesDeleteCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a user-defined rule by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := d.session(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := s.DeleteRule(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return domain.ErrNotFound("no user-defined rule named %q", args[0])
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %q\n", args[0])
			return nil
		},
	}
}
