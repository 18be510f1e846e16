package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage connection profiles in ~/.sheetmap/config.yaml",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUseCmd())
	cmd.AddCommand(newConfigDeleteCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print all profiles; tokens are masked unless --reveal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return err
			}
			if !reveal {
				cfg = cfg.masked()
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(cmd.OutOrStdout(), cfg)
			}
			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)
			rows := make([][]string, len(names))
			for i, name := range names {
				p := cfg.Profiles[name]
				var active string
				if name == cfg.CurrentProfile {
					active = "*"
				}
				rows[i] = []string{name, active, p.Host, p.Token, p.Output}
			}
			PrintTable(cmd.OutOrStdout(), []string{"profile", "active", "host", "token", "output"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print tokens in full")
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	var (
		p   Profile
		use bool
	)

	cmd := &cobra.Command{
		Use:   "set <profile>",
		Short: "Create or update a profile; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			if changed("profile-host") {
				host, err := normalizeHost(p.Host)
				if err != nil {
					return err
				}
				p.Host = host
			}
			if changed("profile-output") {
				if err := validateOutputFormat(p.Output); err != nil {
					return err
				}
			}

			cfg, err := LoadUserConfig()
			if err != nil {
				return err
			}
			cur := cfg.Profiles[args[0]]
			if changed("profile-host") {
				cur.Host = p.Host
			}
			if changed("profile-token") {
				cur.Token = p.Token
			}
			if changed("profile-output") {
				cur.Output = p.Output
			}
			cfg.Profiles[args[0]] = cur
			if use {
				cfg.CurrentProfile = args[0]
			}
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %q\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Host, "profile-host", "", "Server base URL")
	cmd.Flags().StringVar(&p.Token, "profile-token", "", "Bearer token")
	cmd.Flags().StringVar(&p.Output, "profile-output", "", "Default output format (table|json)")
	cmd.Flags().BoolVar(&use, "use", false, "Also make this the active profile")
	return cmd
}

func newConfigUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile>",
		Short: "Make a profile the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return err
			}
			if _, ok := cfg.Profiles[args[0]]; !ok {
				return fmt.Errorf("profile %q not found", args[0])
			}
			cfg.CurrentProfile = args[0]
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Active profile is now %q\n", args[0])
			return nil
		},
	}
}

func newConfigDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <profile>",
		Short: "Remove a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return err
			}
			if _, ok := cfg.Profiles[args[0]]; !ok {
				return fmt.Errorf("profile %q not found", args[0])
			}
			delete(cfg.Profiles, args[0])
			if cfg.CurrentProfile == args[0] {
				cfg.CurrentProfile = "default"
			}
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %q\n", args[0])
			return nil
		},
	}
}
