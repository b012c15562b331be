package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/receivables/internal/buildinfo"
	"github.com/cleared-dev/receivables/internal/config"
)

// globalFlags are the persistent flags shared by every report command.
type globalFlags struct {
	configPath string
	now        string
	format     string
	envFiles   []string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "receivables",
		Short:   "Accounts-receivable reconciliation and reporting",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", config.FileName, "path to the configuration file")
	pf.StringVar(&flags.now, "now", "", "report time as RFC 3339 or YYYY-MM-DD (default: current time)")
	pf.StringVarP(&flags.format, "format", "f", "table", "output format: table, csv or json")
	pf.StringSliceVar(&flags.envFiles, "env-file", nil, "dotenv files to load (default: .env)")

	rootCmd.AddCommand(
		newInitCommand(),
		newInvoicesCommand(flags),
		newAggregateCommand(flags),
		newTrendCommand(flags),
		newOverdueCommand(flags),
		newDashboardCommand(flags),
	)

	return rootCmd
}
