package cmd

import (
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dbsweep/dbsweep/internal/form"
	"github.com/dbsweep/dbsweep/internal/maintenance"
)

var formDryRun bool

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Choose and run operations in an interactive form",
	Long: `Open an interactive terminal form listing every operation. Check the
operations to run, toggle dry run, set the revision window and run. The
report of the last run is shown below the form and printed on exit.`,
	Args: cobra.NoArgs,
	RunE: runForm,
}

func init() {
	rootCmd.AddCommand(formCmd)

	formCmd.Flags().BoolVar(&formDryRun, "dry-run", true, "Start with dry run enabled")
}

func runForm(cmd *cobra.Command, args []string) error {
	cfg, env, err := loadSettings(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
	defer stop()

	engine, closeDB, err := openEngine(ctx, env)
	if err != nil {
		return err
	}
	defer closeDB()

	defaults := maintenance.RunParameters{
		RevisionDays: cfg.RevisionDays(maintenance.DefaultRevisionDays),
		DryRun:       formDryRun,
	}
	report, err := form.Run(ctx, engine, defaults,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if err != nil {
		return err
	}

	if report != nil {
		_, err = fmt.Fprint(cmd.OutOrStdout(), report.Render())
	}
	return err
}
