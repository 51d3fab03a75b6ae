// Package form is the interactive terminal front-end: a checkbox list of
// operations, a dry-run toggle and a revision window, with the last run's
// report shown below.
package form

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dbsweep/dbsweep/internal/maintenance"
)

// New creates a form over the runner's catalog. Nothing is checked
// initially; submitting with nothing checked runs every operation.
func New(ctx context.Context, runner Runner, defaults maintenance.RunParameters) Model {
	ops := runner.Operations()

	days := textinput.New()
	days.Placeholder = strconv.Itoa(maintenance.DefaultRevisionDays)
	days.CharLimit = 5
	days.Width = 6
	if defaults.RevisionDays > 0 {
		days.SetValue(strconv.Itoa(defaults.RevisionDays))
	} else {
		days.SetValue(strconv.Itoa(maintenance.DefaultRevisionDays))
	}

	return Model{
		state:      StateEditing,
		runner:     runner,
		ctx:        ctx,
		operations: ops,
		checked:    make([]bool, len(ops)),
		dryRun:     defaults.DryRun,
		days:       days,
	}
}

// Run shows the form until the user quits and returns the last report, if
// any run was made.
func Run(ctx context.Context, runner Runner, defaults maintenance.RunParameters, opts ...tea.ProgramOption) (*maintenance.Report, error) {
	final, err := tea.NewProgram(New(ctx, runner, defaults), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("form failed: %w", err)
	}
	return final.(Model).LastRun(), nil
}

// LastRun returns the report of the most recent run, or nil.
func (m Model) LastRun() *maintenance.Report {
	return m.lastRun
}

// Init initializes the form (Bubble Tea Init)
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) dryRunIndex() int { return len(m.operations) }
func (m Model) daysIndex() int   { return len(m.operations) + 1 }
func (m Model) submitIndex() int { return len(m.operations) + 2 }

// Update handles key presses and run completion (Bubble Tea Update)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case runFinishedMsg:
		m.state = StateEditing
		m.lastRun = msg.report
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		// Runs are synchronous; keys wait until the report arrives.
		if m.state == StateRunning {
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "up", "shift+tab":
		return m.moveFocus(-1), nil
	case "down", "tab":
		return m.moveFocus(1), nil
	case "enter":
		if m.focus <= m.dryRunIndex() {
			return m.toggle(), nil
		}
		return m.submit()
	}

	if m.focus == m.daysIndex() {
		var cmd tea.Cmd
		m.days, cmd = m.days.Update(msg)
		m.err = ""
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "k":
		return m.moveFocus(-1), nil
	case "j":
		return m.moveFocus(1), nil
	case " ", "x":
		return m.toggle(), nil
	case "a":
		all := !allChecked(m.checked)
		m.checked = make([]bool, len(m.checked))
		for i := range m.checked {
			m.checked[i] = all
		}
		return m, nil
	case "r":
		return m.submit()
	}
	return m, nil
}

func (m Model) moveFocus(delta int) Model {
	n := m.submitIndex() + 1
	m.focus = (m.focus + delta + n) % n
	if m.focus == m.daysIndex() {
		m.days.Focus()
	} else {
		m.days.Blur()
	}
	return m
}

func (m Model) toggle() Model {
	switch {
	case m.focus < m.dryRunIndex():
		checked := append([]bool(nil), m.checked...)
		checked[m.focus] = !checked[m.focus]
		m.checked = checked
	case m.focus == m.dryRunIndex():
		m.dryRun = !m.dryRun
	}
	return m
}

// submit validates the revision window and starts a run.
func (m Model) submit() (tea.Model, tea.Cmd) {
	days, err := parseRevisionDays(m.days.Value())
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.err = ""
	m.state = StateRunning

	ids := m.selectedIDs()
	dryRun := m.dryRun
	runner := m.runner
	ctx := m.ctx
	return m, func() tea.Msg {
		params := maintenance.RunParameters{RevisionDays: days}
		return runFinishedMsg{report: runner.RunSelected(ctx, ids, dryRun, params)}
	}
}

// selectedIDs returns the checked operations in catalog order.
func (m Model) selectedIDs() []string {
	var ids []string
	for i, op := range m.operations {
		if m.checked[i] {
			ids = append(ids, op.ID)
		}
	}
	return ids
}

func parseRevisionDays(value string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || days < 1 {
		return 0, fmt.Errorf("revision days must be a whole number of at least 1, got %q", value)
	}
	return days, nil
}

func allChecked(checked []bool) bool {
	for _, c := range checked {
		if !c {
			return false
		}
	}
	return len(checked) > 0
}

// View renders the form (Bubble Tea View)
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(renderHeader("Database maintenance"))
	b.WriteString("\n")
	b.WriteString(renderSectionHeader("Operations"))
	b.WriteString("\n")
	for i, op := range m.operations {
		b.WriteString(renderCheckbox(m.focus == i, m.checked[i], op.Label))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(op.ID + ": " + op.Description))
		b.WriteString("\n")
	}
	if len(m.selectedIDs()) == 0 {
		b.WriteString(labelStyle.Render("  Nothing checked: every operation will run."))
		b.WriteString("\n")
	}

	b.WriteString(renderSectionHeader("Options"))
	b.WriteString("\n")
	b.WriteString(renderCheckbox(m.focus == m.dryRunIndex(), m.dryRun, "Dry run (report only, change nothing)"))
	b.WriteString("\n")

	daysLabel := "  Revision days: "
	if m.focus == m.daysIndex() {
		daysLabel = focusedStyle.Render(iconArrow + " Revision days: ")
	}
	b.WriteString(daysLabel + m.days.View())
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(renderError(m.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.state == StateRunning:
		b.WriteString(iconSpinner + " Running...")
	case m.dryRun:
		b.WriteString(renderButton(m.focus == m.submitIndex(), "Preview"))
	default:
		b.WriteString(renderButton(m.focus == m.submitIndex(), "Run"))
		b.WriteString("\n")
		b.WriteString(renderWarning("Live run: matching rows will be deleted."))
	}
	b.WriteString("\n")

	if m.lastRun != nil {
		b.WriteString(renderSectionHeader("Last run"))
		b.WriteString("\n")
		b.WriteString(reportStyle.Render(strings.TrimRight(m.lastRun.Render(), "\n")))
		b.WriteString("\n")
	}

	b.WriteString(renderStatusBar("↑/↓ move • space toggle • a all • r run • esc quit"))
	b.WriteString("\n")
	return b.String()
}
