package workflows

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/feral-file/gamebot/internal/adapter"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/features"
	"github.com/feral-file/gamebot/internal/freshness"
	"github.com/feral-file/gamebot/internal/metrics"
	"github.com/feral-file/gamebot/internal/pipeline"
	"github.com/feral-file/gamebot/internal/remediation"
	"github.com/feral-file/gamebot/internal/report"
	"github.com/feral-file/gamebot/internal/transform"
)

// RunResult is the compact outcome of a run returned to workflow callers.
// The full report lives in the validation_reports table.
type RunResult struct {
	RunID      string           `json:"run_id"`
	Status     domain.RunStatus `json:"status"`
	DegradedBy []string         `json:"degraded_by,omitempty"`
}

// Executor defines the interface for executing pipeline activities
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor_pipeline.go -package=mocks -mock_names=Executor=MockPipelineExecutor
type Executor interface {
	// StartRun records a new ingestion run
	StartRun(ctx context.Context, req pipeline.RunRequest) (*domain.RunContext, error)

	// AcquireRunLock takes the run group lease
	AcquireRunLock(ctx context.Context, run domain.RunContext) error

	// ReleaseRunLock releases the run group lease
	ReleaseRunLock(ctx context.Context, run domain.RunContext) error

	// DetectFreshness compares upstream datasets with their stored fingerprints
	DetectFreshness(ctx context.Context, run domain.RunContext) (*freshness.Summary, error)

	// LoadRaw merges changed datasets into the raw layer
	LoadRaw(ctx context.Context, run domain.RunContext, datasets []string) (*pipeline.LoadOutcome, error)

	// Remediate repairs dangling references
	Remediate(ctx context.Context, run domain.RunContext, changed []string) (*remediation.Summary, error)

	// Transform rebuilds the affected curated tables
	Transform(ctx context.Context, run domain.RunContext, changed []string) (*transform.Summary, error)

	// Aggregate writes a feature snapshot
	Aggregate(ctx context.Context, run domain.RunContext) (*features.Result, error)

	// FinishRun persists the validation report and stamps the run status
	FinishRun(ctx context.Context, input report.Input) (*RunResult, error)
}

// executor is the concrete implementation of Executor
type executor struct {
	engine pipeline.Engine
	clock  adapter.Clock
}

// NewExecutor creates a new executor instance
func NewExecutor(engine pipeline.Engine, clock adapter.Clock) Executor {
	return &executor{
		engine: engine,
		clock:  clock,
	}
}

// StartRun records a new ingestion run
func (e *executor) StartRun(ctx context.Context, req pipeline.RunRequest) (*domain.RunContext, error) {
	run, err := e.engine.StartRun(ctx, req)
	if err != nil {
		return nil, toActivityError(err)
	}
	return run, nil
}

// AcquireRunLock takes the run group lease
func (e *executor) AcquireRunLock(ctx context.Context, run domain.RunContext) error {
	return toActivityError(e.engine.AcquireLock(ctx, run))
}

// ReleaseRunLock releases the run group lease
func (e *executor) ReleaseRunLock(ctx context.Context, run domain.RunContext) error {
	return toActivityError(e.engine.ReleaseLock(ctx, run))
}

// DetectFreshness compares upstream datasets with their stored fingerprints
func (e *executor) DetectFreshness(ctx context.Context, run domain.RunContext) (*freshness.Summary, error) {
	start := e.clock.Now()
	summary, err := e.engine.DetectFreshness(ctx, run)
	e.observe(domain.StageFreshness, start, err)
	if err != nil {
		return nil, toActivityError(err)
	}
	return summary, nil
}

// LoadRaw merges changed datasets into the raw layer
func (e *executor) LoadRaw(ctx context.Context, run domain.RunContext, datasets []string) (*pipeline.LoadOutcome, error) {
	start := e.clock.Now()
	outcome, err := e.engine.LoadRaw(ctx, run, datasets)
	e.observe(domain.StageLoad, start, err)
	if err != nil {
		return nil, toActivityError(err)
	}
	return outcome, nil
}

// Remediate repairs dangling references
func (e *executor) Remediate(ctx context.Context, run domain.RunContext, changed []string) (*remediation.Summary, error) {
	start := e.clock.Now()
	summary, err := e.engine.Remediate(ctx, run, changed)
	e.observe(domain.StageRemediate, start, err)
	if err != nil {
		return nil, toActivityError(err)
	}
	return summary, nil
}

// Transform rebuilds the affected curated tables
func (e *executor) Transform(ctx context.Context, run domain.RunContext, changed []string) (*transform.Summary, error) {
	start := e.clock.Now()
	summary, err := e.engine.Transform(ctx, run, changed)
	e.observe(domain.StageTransform, start, err)
	if err != nil {
		return nil, toActivityError(err)
	}
	return summary, nil
}

// Aggregate writes a feature snapshot
func (e *executor) Aggregate(ctx context.Context, run domain.RunContext) (*features.Result, error) {
	start := e.clock.Now()
	result, err := e.engine.Aggregate(ctx, run)
	e.observe(domain.StageAggregate, start, err)
	if err != nil {
		return nil, toActivityError(err)
	}
	return result, nil
}

// FinishRun persists the validation report and stamps the run status
func (e *executor) FinishRun(ctx context.Context, input report.Input) (*RunResult, error) {
	rep, err := e.engine.FinishRun(ctx, input)
	if err != nil {
		return nil, toActivityError(err)
	}
	return &RunResult{
		RunID:      rep.RunID,
		Status:     rep.Status,
		DegradedBy: rep.DegradedBy,
	}, nil
}

func (e *executor) observe(stage domain.Stage, start time.Time, err error) {
	status := report.StageStatusSucceeded
	if err != nil {
		status = report.StageStatusFailed
	}
	metrics.ObserveStage(string(stage), string(status), start)
}

// permanent lists failures that no retry can fix, with their application error type
var permanent = []struct {
	err     error
	errType string
}{
	{domain.ErrMalformedExtract, "MalformedExtract"},
	{domain.ErrUniquenessViolation, "UniquenessViolation"},
	{domain.ErrNonDeterministicAggregation, "NonDeterministicAggregation"},
	{domain.ErrRunLockHeld, "RunLockHeld"},
	{domain.ErrUnknownDataset, "UnknownDataset"},
}

// NonRetryableErrorTypes are the application error types retry policies must not retry
func NonRetryableErrorTypes() []string {
	types := make([]string, 0, len(permanent))
	for _, p := range permanent {
		types = append(types, p.errType)
	}
	return types
}

// toActivityError converts permanent domain failures into non-retryable application errors
func toActivityError(err error) error {
	if err == nil {
		return nil
	}
	for _, p := range permanent {
		if errors.Is(err, p.err) {
			return temporal.NewNonRetryableApplicationError(err.Error(), p.errType, err)
		}
	}
	return err
}
