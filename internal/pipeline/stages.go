package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/gamebot/internal/adapter"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/metrics"
	"github.com/feral-file/gamebot/internal/report"
)

// stageRunner records stage outcomes into the report input.
// After a failure every remaining stage is recorded as skipped.
type stageRunner struct {
	clock adapter.Clock
	in    *report.Input
}

func newStageRunner(clock adapter.Clock, in *report.Input) *stageRunner {
	return &stageRunner{clock: clock, in: in}
}

// do checks for cancellation, runs fn and records the outcome
func (s *stageRunner) do(ctx context.Context, stage domain.Stage, fn func() error) error {
	start := s.clock.Now()
	if err := ctx.Err(); err != nil {
		s.fail(stage, start, err)
		s.skipRest()
		return err
	}

	err := fn()
	end := s.clock.Now()
	if err != nil {
		s.fail(stage, start, err)
		s.skipRest()
		return err
	}

	s.in.Stages = append(s.in.Stages, report.StageOutcome{
		Stage:     stage,
		Status:    report.StageStatusSucceeded,
		StartedAt: &start,
		EndedAt:   &end,
	})
	metrics.ObserveStage(string(stage), string(report.StageStatusSucceeded), start)
	logger.DebugCtx(ctx, "Stage completed", zap.String("stage", string(stage)), zap.Duration("duration", end.Sub(start)))
	return nil
}

func (s *stageRunner) fail(stage domain.Stage, start time.Time, err error) {
	end := s.clock.Now()
	s.in.Stages = append(s.in.Stages, report.StageOutcome{
		Stage:     stage,
		Status:    report.StageStatusFailed,
		Error:     err.Error(),
		StartedAt: &start,
		EndedAt:   &end,
	})
	metrics.ObserveStage(string(stage), string(report.StageStatusFailed), start)
}

// skipRest records every stage not yet recorded as skipped
func (s *stageRunner) skipRest() {
	s.in.Stages = report.SkipRemaining(s.in.Stages)
}
