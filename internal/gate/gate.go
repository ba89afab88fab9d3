// Package gate runs one drift check: resolve schemas, compare generated
// artifacts against committed ones, apply the branch policy and summarize.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/getlumos/lumos-action/internal/drift"
	"github.com/getlumos/lumos-action/internal/log"
	"github.com/getlumos/lumos-action/internal/schema"
)

// Options configures a single run
type Options struct {
	SchemaGlobs     []string
	FailOnDrift     bool
	OverrideGranted bool
	IsPullRequest   bool
	Workers         int
}

// SchemaResolver expands glob patterns into schema refs
type SchemaResolver interface {
	Expand(patterns []string) ([]schema.Ref, error)
}

// RefChecker is implemented by readers whose layout constrains which schema
// sets can be compared in one run.
type RefChecker interface {
	CheckRefs(refs []schema.Ref) error
}

// Deps are the collaborators a run talks to
type Deps struct {
	Resolver  SchemaResolver
	Generator drift.Generator
	Reader    drift.CommittedReader
	Logger    *log.Logger
}

// PolicyConfig returns the evaluator input carried by the options
func (o Options) PolicyConfig() drift.PolicyConfig {
	return drift.PolicyConfig{
		FailOnDrift:     o.FailOnDrift,
		IsPullRequest:   o.IsPullRequest,
		OverrideGranted: o.OverrideGranted,
	}
}

// Run executes the drift check and returns its report.
//
// Configuration errors (no schemas matched, colliding outputs) and collaborator failures are
// returned without a report. A policy failure is not an error: it is the
// report's decision, and callers map it to an exit status.
func Run(ctx context.Context, opts Options, deps Deps) (*drift.Report, error) {
	if deps.Resolver == nil || deps.Generator == nil || deps.Reader == nil {
		return nil, fmt.Errorf("gate: resolver, generator and reader are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	start := time.Now()

	refs, err := deps.Resolver.Expand(opts.SchemaGlobs)
	if err != nil {
		logger.WithError(err).ErrorContext(ctx, "schema resolution failed")
		return nil, err
	}
	if checker, ok := deps.Reader.(RefChecker); ok {
		if err := checker.CheckRefs(refs); err != nil {
			logger.WithError(err).ErrorContext(ctx, "schema outputs collide")
			return nil, err
		}
	}
	logger.InfoContext(ctx, "drift check started",
		"schemas", len(refs),
		"fail_on_drift", opts.FailOnDrift,
		"pull_request", opts.IsPullRequest,
		"override", opts.OverrideGranted,
	)

	comparator := drift.NewComparator(deps.Generator, deps.Reader,
		drift.WithWorkers(opts.Workers),
		drift.WithLogger(logger),
	)
	records, err := comparator.Compare(ctx, refs)
	if err != nil {
		logger.WithError(err).ErrorContext(ctx, "drift comparison aborted")
		return nil, err
	}

	decision := drift.Evaluate(records, opts.PolicyConfig())
	report := drift.Aggregate(records, decision)
	report.RunID = runID

	logger.InfoContext(ctx, "drift check finished",
		"outcome", decision.Outcome,
		"reason", decision.Reason,
		"schemas_validated", report.SchemasValidated,
		"schemas_generated", report.SchemasGenerated,
		"drift_detected", report.DriftDetected,
		"duration", time.Since(start),
	)

	return report, nil
}
