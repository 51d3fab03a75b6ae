package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dbsweep/dbsweep/internal/store"
)

// Engine runs operations from its registry against one store.
type Engine struct {
	registry *Registry
	store    *store.Store
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry replaces the built-in catalog.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithClock sets the time source used for the run reference time and report
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine over st with the built-in operation catalog.
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = MustRegistry(Builtin()...)
	}
	e.logger = e.logger.With().Str("component", "maintenance").Logger()
	if e.store != nil {
		e.store = e.store.WithLogger(e.logger)
	}
	return e
}

// Operations lists the catalog in execution order.
func (e *Engine) Operations() []Operation {
	return e.registry.List()
}

// RunSelected runs the requested operations, or every operation when none
// are requested. Unknown ids are reported as failed results and do not stop
// the run. Operations run once each, in registry order. RunSelected always
// returns a report; every failure is captured in it.
func (e *Engine) RunSelected(ctx context.Context, requested []string, dryRun bool, params RunParameters) *Report {
	params = params.normalized()
	params.DryRun = dryRun
	params.Now = e.now()

	report := &Report{
		RunID:        uuid.NewString(),
		DryRun:       dryRun,
		RevisionDays: params.RevisionDays,
		Requested:    append([]string{}, requested...),
		Effective:    []string{},
		StartedAt:    params.Now,
	}
	logger := e.logger.With().Str("run_id", report.RunID).Bool("dry_run", dryRun).Logger()
	logger.Info().Strs("requested", requested).Int("revision_days", params.RevisionDays).Msg("Run started")

	selected, unknown := e.resolve(requested)
	for _, err := range unknown {
		logger.Warn().Str("operation", err.ID).Msg("Unknown operation requested")
		report.Results = append(report.Results, Result{
			ID:      err.ID,
			Status:  StatusFailed,
			Summary: err.Error(),
			DryRun:  dryRun,
		})
	}

	for _, op := range e.registry.List() {
		if !selected[op.ID] {
			continue
		}
		report.Effective = append(report.Effective, op.ID)
		report.Results = append(report.Results, e.execute(ctx, logger, op, params))
	}

	report.FinishedAt = e.now()
	succeeded, skipped, failed := report.Counts()
	logger.Info().
		Int("succeeded", succeeded).
		Int("skipped", skipped).
		Int("failed", failed).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Run finished")

	return report
}

// resolve maps requested ids to the set to execute. Blank and repeated ids
// are ignored; a request with no usable ids selects everything.
func (e *Engine) resolve(requested []string) (map[string]bool, []*UnknownOperationError) {
	selected := make(map[string]bool)
	var unknown []*UnknownOperationError

	seen := make(map[string]bool)
	for _, raw := range requested {
		id := strings.TrimSpace(raw)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		if _, err := e.registry.Get(id); err != nil {
			var unknownErr *UnknownOperationError
			if errors.As(err, &unknownErr) {
				unknown = append(unknown, unknownErr)
				continue
			}
			unknown = append(unknown, &UnknownOperationError{ID: id})
			continue
		}
		selected[id] = true
	}

	if len(seen) == 0 {
		for _, id := range e.registry.IDs() {
			selected[id] = true
		}
	}
	return selected, unknown
}

// execute runs one operation, converting errors and panics into a failed
// result.
func (e *Engine) execute(ctx context.Context, logger zerolog.Logger, op Operation, params RunParameters) (res Result) {
	start := time.Now()
	res = Result{ID: op.ID, DryRun: params.DryRun}
	logger = logger.With().Str("operation", op.ID).Logger()
	logger.Debug().Msg("Operation started")

	defer func() {
		if r := recover(); r != nil {
			err := &OperationExecutionError{ID: op.ID, Err: fmt.Errorf("panic: %v", r)}
			res.Status = StatusFailed
			res.Summary = err.Error()
		}
		res.Duration = time.Since(start)

		event := logger.Info()
		if res.Status == StatusFailed {
			event = logger.Error()
		}
		event.Str("status", string(res.Status)).
			Dur("duration", res.Duration).
			Str("summary", res.Summary).
			Msg("Operation finished")
	}()

	out, err := op.Execute(ctx, e.store.Session(params.DryRun), params)
	res.Details = out.Details
	if err != nil {
		execErr := &OperationExecutionError{ID: op.ID, Err: err}
		res.Status = StatusFailed
		res.Summary = execErr.Error()
		return res
	}

	res.Status = out.Status
	if res.Status == "" {
		res.Status = StatusSucceeded
	}
	res.Summary = out.Summary
	return res
}
