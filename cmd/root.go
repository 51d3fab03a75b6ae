package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dbsweep/dbsweep/internal/logging"
)

var (
	envName     string
	databaseURL string
	verbosity   int

	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "dbsweep",
	Short: "Maintenance for WordPress-style content databases",
	Long: `dbsweep runs cleanup and optimization operations against a content
database: expired transients, old revisions, stale auto-drafts, orphaned
metadata, spam comments and table statistics.

Every operation supports a dry run that reports what would change without
touching any data.`,
	Version:       getVersion(),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbosity, cmd.ErrOrStderr())
		logger = logging.Component("cli")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "Environment from dbsweep.toml (defaults to default_environment, then \"local\")")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database connection string (overrides the environment)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
