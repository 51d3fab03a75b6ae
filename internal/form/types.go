package form

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/dbsweep/dbsweep/internal/maintenance"
)

// Runner is the engine surface the form drives.
type Runner interface {
	Operations() []maintenance.Operation
	RunSelected(ctx context.Context, requested []string, dryRun bool, params maintenance.RunParameters) *maintenance.Report
}

// State is the form's current mode.
type State int

const (
	StateEditing State = iota
	StateRunning
)

// Model holds the state for the Bubble Tea maintenance form.
type Model struct {
	state  State
	runner Runner
	ctx    context.Context

	operations []maintenance.Operation
	checked    []bool
	dryRun     bool
	days       textinput.Model

	// focus indexes operations first, then the dry-run toggle, the
	// revision days input and the run button.
	focus int

	err     string
	lastRun *maintenance.Report

	width  int
	height int
}

// runFinishedMsg carries the report of a run started from the form.
type runFinishedMsg struct {
	report *maintenance.Report
}
