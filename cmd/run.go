package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dbsweep/dbsweep/internal/maintenance"
)

var (
	runOps          []string
	runDryRun       bool
	runRevisionDays int
	runFormat       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run maintenance operations",
	Long: `Run maintenance operations against the selected environment.

With no --ops every operation runs, in catalog order. Unknown ids are
reported as failed and do not stop the others. Use --dry-run to see what
would change without modifying anything.`,
	Example: `  # Preview everything
  dbsweep run --dry-run

  # Prune revisions older than a week and refresh statistics
  dbsweep run --ops delete_old_revisions,analyze_tables --revision-days 7

  # Against a specific database, JSON output
  dbsweep run --database-url sqlite://./site.db --format json`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&runOps, "ops", nil, "Comma-separated operation ids to run (default: all)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Report what would change without modifying data")
	runCmd.Flags().IntVar(&runRevisionDays, "revision-days", 0,
		fmt.Sprintf("Delete revisions older than this many days (default from dbsweep.toml, else %d)", maintenance.DefaultRevisionDays))
	runCmd.Flags().StringVar(&runFormat, "format", "text", "Output format: text or json")
}

func runRun(cmd *cobra.Command, args []string) error {
	if runFormat != "text" && runFormat != "json" {
		return fmt.Errorf("unsupported format: %s (use 'text' or 'json')", runFormat)
	}
	if cmd.Flags().Changed("revision-days") && runRevisionDays < 1 {
		return fmt.Errorf("--revision-days must be at least 1, got %d", runRevisionDays)
	}

	cfg, env, err := loadSettings(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	params := maintenance.RunParameters{RevisionDays: cfg.RevisionDays(maintenance.DefaultRevisionDays)}
	if cmd.Flags().Changed("revision-days") {
		params.RevisionDays = runRevisionDays
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
	defer stop()

	engine, closeDB, err := openEngine(ctx, env)
	if err != nil {
		return err
	}
	defer closeDB()

	report := engine.RunSelected(ctx, runOps, runDryRun, params)
	if err := writeReport(cmd, report, runFormat); err != nil {
		return err
	}

	if _, _, failed := report.Counts(); failed > 0 {
		return fmt.Errorf("%d of %d operations failed", failed, len(report.Results))
	}
	return nil
}

func writeReport(cmd *cobra.Command, report *maintenance.Report, format string) error {
	out := cmd.OutOrStdout()
	if format == "json" {
		data, err := report.JSON()
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	_, err := fmt.Fprint(out, report.Render())
	return err
}

// contextOrBackground guards against commands executed without a context.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
