package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsweep/dbsweep/internal/store"
)

// DefaultRevisionDays is the revision retention window when none is given.
const DefaultRevisionDays = 14

// Status is the outcome class of one operation.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// RunParameters configures one run.
type RunParameters struct {
	// RevisionDays is the retention window for revision pruning.
	RevisionDays int `json:"revision_days"`
	// DryRun suppresses every mutating effect.
	DryRun bool `json:"dry_run"`
	// Now is the reference time shared by every operation in a run. The
	// Engine sets it; callers leave it zero.
	Now time.Time `json:"-"`
}

// DefaultParameters returns the parameters of a plain, non-dry run.
func DefaultParameters() RunParameters {
	return RunParameters{RevisionDays: DefaultRevisionDays}
}

func (p RunParameters) normalized() RunParameters {
	if p.RevisionDays <= 0 {
		p.RevisionDays = DefaultRevisionDays
	}
	return p
}

// Executor performs one operation, or only measures it when params.DryRun is
// set. A returned error marks the operation failed; the Outcome's details
// are still reported.
type Executor func(ctx context.Context, s *store.Session, params RunParameters) (Outcome, error)

// Operation describes one maintenance task.
type Operation struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`

	Execute Executor `json:"-"`
}

// Outcome is what an executor reports back.
type Outcome struct {
	Status  Status
	Summary string
	Details []string
}

// Done reports a succeeded operation.
func Done(format string, args ...any) Outcome {
	return Outcome{Status: StatusSucceeded, Summary: fmt.Sprintf(format, args...)}
}

// Skip reports an operation that did not apply.
func Skip(format string, args ...any) Outcome {
	return Outcome{Status: StatusSkipped, Summary: fmt.Sprintf(format, args...)}
}

// WithDetails returns a copy of o with detail lines attached.
func (o Outcome) WithDetails(details ...string) Outcome {
	o.Details = append(append([]string(nil), o.Details...), details...)
	return o
}
