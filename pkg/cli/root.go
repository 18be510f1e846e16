package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sheetmap/internal/session"
	"sheetmap/pkg/client"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]any{"error": err.Error()}
			if status := client.StatusCode(err); status != 0 {
				errObj["http_status"] = status
			}
			_ = PrintJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// deps is what subcommands share once flags are resolved.
type deps struct {
	client *client.Client
	logger *slog.Logger
}

// session loads a fresh working session from the server.
func (d *deps) session(ctx context.Context) (*session.Session, error) {
	s := session.New(d.client, d.logger)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func newRootCmd() *cobra.Command {
	var (
		host    string
		token   string
		output  string
		profile string
		verbose bool
	)
	d := &deps{client: client.NewClient(host, token)}

	rootCmd := &cobra.Command{
		Use:           "sheetmap",
		Short:         "Spreadsheet mapping CLI",
		Long:          "Command-line interface for the sheetmap server: datasets, header mappings, lookups, default fields and rules.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return err
			}
			p, err := cfg.ActiveProfile(profile)
			if err != nil {
				return err
			}

			// Precedence: flag > env > profile > default.
			resolve := func(flag, envKey, fromProfile string, dst *string) {
				if cmd.Flags().Changed(flag) {
					return
				}
				if v := os.Getenv(envKey); v != "" {
					*dst = v
				} else if fromProfile != "" {
					*dst = fromProfile
				}
			}
			resolve("host", "SHEETMAP_HOST", p.Host, &host)
			resolve("token", "SHEETMAP_TOKEN", p.Token, &token)
			resolve("output", "SHEETMAP_OUTPUT", p.Output, &output)
			if output == "" {
				output = defaultOutputFormat(os.Stdout)
			}

			if err := validateOutputFormat(output); err != nil {
				return err
			}
			normalized, err := normalizeHost(host)
			if err != nil {
				return err
			}
			host = normalized

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			d.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			*d.client = *client.NewClient(host, token)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "API host URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "JWT token for authentication")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format (table, json); defaults to table on a terminal")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests and warnings at debug level")

	rootCmd.AddCommand(newDatasetCmd(d))
	rootCmd.AddCommand(newMappingCmd(d))
	rootCmd.AddCommand(newLookupCmd(d))
	rootCmd.AddCommand(newFieldsCmd(d))
	rootCmd.AddCommand(newRulesCmd(d))
	rootCmd.AddCommand(newCandidatesCmd(d))
	rootCmd.AddCommand(newExportCmd(d))
	rootCmd.AddCommand(newAuditCmd(d))

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
