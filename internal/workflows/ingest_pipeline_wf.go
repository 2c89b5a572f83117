package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/pipeline"
	"github.com/feral-file/gamebot/internal/report"
)

// IngestPipeline runs one ingestion run. Stages run strictly in order; a failed stage
// skips the rest, and the report is persisted even when the workflow is cancelled.
func (w *workerPipeline) IngestPipeline(ctx workflow.Context, req pipeline.RunRequest) (*RunResult, error) {
	logger.InfoWf(ctx, "Starting ingestion pipeline",
		zap.Strings("datasets", req.Datasets),
		zap.Strings("fullReplace", req.FullReplace),
		zap.Bool("force", req.Force),
	)

	// Bookkeeping activities touch only the database
	storeOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 1 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: NonRetryableErrorTypes(),
		},
	}
	storeCtx := workflow.WithActivityOptions(ctx, storeOptions)

	// Step 1: Record the run
	var run domain.RunContext
	err := workflow.ExecuteActivity(storeCtx, w.executor.StartRun, req).Get(storeCtx, &run)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to start ingestion run"),
			zap.Error(err),
		)
		return nil, err
	}

	// Step 2: Run the stages under the run group lease
	in := report.Input{Run: run}
	runErr := w.runStages(ctx, storeCtx, run, &in)

	// Step 3: Persist the report, even when the workflow was cancelled
	finishCtx, _ := workflow.NewDisconnectedContext(ctx)
	finishCtx = workflow.WithActivityOptions(finishCtx, storeOptions)
	in.EndedAt = workflow.Now(ctx)

	var result RunResult
	err = workflow.ExecuteActivity(finishCtx, w.executor.FinishRun, in).Get(finishCtx, &result)
	if err != nil {
		logger.ErrorWf(ctx,
			fmt.Errorf("failed to finish ingestion run"),
			zap.Error(err),
			zap.String("runID", run.RunID),
		)
		if runErr != nil {
			return nil, runErr
		}
		return nil, err
	}
	if runErr != nil {
		return nil, runErr
	}

	logger.InfoWf(ctx, "Ingestion pipeline completed",
		zap.String("runID", result.RunID),
		zap.String("status", string(result.Status)),
	)

	return &result, nil
}

// runStages executes the stages and records their outcomes into in
func (w *workerPipeline) runStages(ctx workflow.Context, storeCtx workflow.Context, run domain.RunContext, in *report.Input) error {
	// Stages that read upstream are retried with backoff; the others run once
	fetchCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: w.config.StageTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        w.config.RetryInterval,
			BackoffCoefficient:     2,
			MaximumAttempts:        w.config.FetchAttempts,
			NonRetryableErrorTypes: NonRetryableErrorTypes(),
		},
	})
	onceCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: w.config.StageTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	start := workflow.Now(ctx)
	if err := workflow.ExecuteActivity(storeCtx, w.executor.AcquireRunLock, run).Get(storeCtx, nil); err != nil {
		w.record(ctx, in, domain.StageFreshness, start, err)
		return err
	}
	defer func() {
		releaseCtx, _ := workflow.NewDisconnectedContext(storeCtx)
		if err := workflow.ExecuteActivity(releaseCtx, w.executor.ReleaseRunLock, run).Get(releaseCtx, nil); err != nil {
			logger.ErrorWf(ctx,
				fmt.Errorf("failed to release run lock"),
				zap.Error(err),
				zap.String("runID", run.RunID),
			)
		}
	}()

	// Freshness
	err := w.stage(ctx, in, domain.StageFreshness, func() error {
		return workflow.ExecuteActivity(fetchCtx, w.executor.DetectFreshness, run).Get(fetchCtx, &in.Freshness)
	})
	if err != nil {
		return err
	}

	toLoad := in.Freshness.Changed()
	if run.Force {
		toLoad = run.Datasets
	}
	if len(toLoad) == 0 {
		logger.InfoWf(ctx, "No dataset changed upstream", zap.String("runID", run.RunID))
		in.Stages = report.SkipRemaining(in.Stages)
		return nil
	}

	// Load
	err = w.stage(ctx, in, domain.StageLoad, func() error {
		var outcome pipeline.LoadOutcome
		if err := workflow.ExecuteActivity(fetchCtx, w.executor.LoadRaw, run, toLoad).Get(fetchCtx, &outcome); err != nil {
			return err
		}
		in.Load = outcome.Summary
		in.Drift = outcome.Drift
		return nil
	})
	if err != nil {
		return err
	}

	changed := in.Load.Loaded()
	if len(changed) == 0 {
		logger.WarnWf(ctx, "Every changed dataset was rejected", zap.String("runID", run.RunID))
		in.Stages = report.SkipRemaining(in.Stages)
		return nil
	}

	// Remediate
	err = w.stage(ctx, in, domain.StageRemediate, func() error {
		return workflow.ExecuteActivity(onceCtx, w.executor.Remediate, run, changed).Get(onceCtx, &in.Remediation)
	})
	if err != nil {
		return err
	}

	// Transform
	err = w.stage(ctx, in, domain.StageTransform, func() error {
		// rows rewritten by remediation change their curated tables too
		return workflow.ExecuteActivity(onceCtx, w.executor.Transform, run, in.Remediation.WithPatched(changed)).Get(onceCtx, &in.Transform)
	})
	if err != nil {
		return err
	}

	// Aggregate
	return w.stage(ctx, in, domain.StageAggregate, func() error {
		return workflow.ExecuteActivity(onceCtx, w.executor.Aggregate, run).Get(onceCtx, &in.Features)
	})
}

// stage checks for cancellation, runs fn and records its outcome
func (w *workerPipeline) stage(ctx workflow.Context, in *report.Input, stage domain.Stage, fn func() error) error {
	start := workflow.Now(ctx)
	err := ctx.Err()
	if err == nil {
		err = fn()
	}
	w.record(ctx, in, stage, start, err)
	return err
}

func (w *workerPipeline) record(ctx workflow.Context, in *report.Input, stage domain.Stage, start time.Time, err error) {
	end := workflow.Now(ctx)
	outcome := report.StageOutcome{
		Stage:     stage,
		Status:    report.StageStatusSucceeded,
		StartedAt: &start,
		EndedAt:   &end,
	}
	if err == nil {
		in.Stages = append(in.Stages, outcome)
		return
	}

	logger.ErrorWf(ctx,
		fmt.Errorf("stage %s failed", stage),
		zap.Error(err),
		zap.String("runID", in.Run.RunID),
	)
	outcome.Status = report.StageStatusFailed
	outcome.Error = err.Error()
	in.Stages = report.SkipRemaining(append(in.Stages, outcome))
}
