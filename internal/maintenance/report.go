package maintenance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"
)

// Result is the outcome of one operation within a run.
type Result struct {
	ID       string        `json:"id"`
	Status   Status        `json:"status"`
	Summary  string        `json:"summary"`
	Details  []string      `json:"details,omitempty"`
	DryRun   bool          `json:"dry_run"`
	Duration time.Duration `json:"duration_ns"`
}

// Report is everything one run produced.
type Report struct {
	RunID        string    `json:"run_id"`
	DryRun       bool      `json:"dry_run"`
	RevisionDays int       `json:"revision_days"`
	Requested    []string  `json:"requested"`
	Effective    []string  `json:"effective"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Results      []Result  `json:"results"`
}

// Counts tallies results by status.
func (r *Report) Counts() (succeeded, skipped, failed int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusSucceeded:
			succeeded++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return succeeded, skipped, failed
}

// HasFailures reports whether any operation failed.
func (r *Report) HasFailures() bool {
	_, _, failed := r.Counts()
	return failed > 0
}

// Result returns the result for id, if present.
func (r *Report) Result(id string) (Result, bool) {
	for _, res := range r.Results {
		if res.ID == id {
			return res, true
		}
	}
	return Result{}, false
}

// JSON encodes the report for machine consumers.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Render formats the report as one preformatted text block: a header, one
// line per operation in execution order with indented details, and totals.
func (r *Report) Render() string {
	var b strings.Builder

	mode := "live"
	if r.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(&b, "Maintenance run %s (%s, revision window %s)\n",
		r.RunID, mode, english.Plural(r.RevisionDays, "day", ""))
	fmt.Fprintf(&b, "Started %s, finished in %s\n",
		r.StartedAt.UTC().Format("2006-01-02 15:04:05 MST"),
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))

	if len(r.Results) == 0 {
		b.WriteString("\nNo operations ran.\n")
		return b.String()
	}
	b.WriteString("\n")

	idWidth := 0
	for _, res := range r.Results {
		idWidth = max(idWidth, len(res.ID))
	}
	const tagWidth = len("[skipped]")
	indent := strings.Repeat(" ", tagWidth+1+idWidth+2)

	for _, res := range r.Results {
		fmt.Fprintf(&b, "%-*s %-*s  %s\n", tagWidth, statusTag(res.Status), idWidth, res.ID, res.Summary)
		for _, d := range res.Details {
			fmt.Fprintf(&b, "%s- %s\n", indent, d)
		}
	}

	succeeded, skipped, failed := r.Counts()
	fmt.Fprintf(&b, "\n%s: %d succeeded, %d skipped, %d failed\n",
		english.Plural(len(r.Results), "operation", ""), succeeded, skipped, failed)
	return b.String()
}

func statusTag(s Status) string {
	switch s {
	case StatusSucceeded:
		return "[ok]"
	case StatusSkipped:
		return "[skipped]"
	case StatusFailed:
		return "[failed]"
	default:
		return "[" + string(s) + "]"
	}
}
