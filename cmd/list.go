package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dbsweep/dbsweep/internal/maintenance"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available maintenance operations",
	Long: `List the available maintenance operations in the order they run.

The id column is what "dbsweep run --ops" accepts.`,
	Example: `  # Show operations as a table
  dbsweep list

  # Machine-readable listing
  dbsweep list --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFormat, "format", "table", "Output format: table or json")
}

func runList(cmd *cobra.Command, args []string) error {
	ops := maintenance.New(nil).Operations()
	out := cmd.OutOrStdout()

	switch listFormat {
	case "table":
		_, err := fmt.Fprintln(out, renderOperationTable(ops))
		return err
	case "json":
		data, err := json.MarshalIndent(ops, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal operations: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", listFormat)
	}
}

func renderOperationTable(ops []maintenance.Operation) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "OPERATION", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, op := range ops {
		t.Row(op.ID, op.Label, op.Description)
	}
	return t.String()
}
