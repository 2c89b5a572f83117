package temporal

import (
	"context"

	"github.com/getsentry/sentry-go"
	"go.temporal.io/sdk/interceptor"
	"go.uber.org/zap"

	"github.com/feral-file/gamebot/internal/adapter"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/report"
)

// NewSentryActivityInterceptor creates a new Sentry activity interceptor
func NewSentryActivityInterceptor(activity adapter.Activity) interceptor.WorkerInterceptor {
	return &SentryActivityInterceptor{
		WorkerInterceptorBase: interceptor.WorkerInterceptorBase{},
		activity:              activity,
	}
}

// SentryActivityInterceptor gives every activity execution its own Sentry hub
// tagged with the activity and the ingestion run it serves
type SentryActivityInterceptor struct {
	interceptor.WorkerInterceptorBase
	activity adapter.Activity
}

// InterceptActivity wraps activity execution to inject Sentry hub
func (s *SentryActivityInterceptor) InterceptActivity(ctx context.Context, next interceptor.ActivityInboundInterceptor) interceptor.ActivityInboundInterceptor {
	return &sentryActivityInboundInterceptor{
		ActivityInboundInterceptorBase: interceptor.ActivityInboundInterceptorBase{
			Next: next,
		},
		activity: s.activity,
	}
}

type sentryActivityInboundInterceptor struct {
	interceptor.ActivityInboundInterceptorBase
	activity adapter.Activity
}

// ExecuteActivity tags a cloned hub and the logger context before execution
func (s *sentryActivityInboundInterceptor) ExecuteActivity(ctx context.Context, in *interceptor.ExecuteActivityInput) (interface{}, error) {
	info := s.activity.GetInfo(ctx)
	runID := RunIDFromArgs(in.Args)

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("activity", info.ActivityType.Name)
		scope.SetTag("workflowId", info.WorkflowExecution.ID)
		if runID != "" {
			scope.SetTag("runId", runID)
		}
	})
	ctx = sentry.SetHubOnContext(ctx, hub)
	if runID != "" {
		ctx = logger.WithRun(ctx, runID)
	}

	result, err := s.Next.ExecuteActivity(ctx, in)
	if err != nil {
		logger.WarnCtx(ctx, "Activity failed",
			zap.String("activity", info.ActivityType.Name),
			zap.Int32("attempt", info.Attempt),
			zap.Error(err),
		)
	}
	return result, err
}

// RunIDFromArgs returns the ingestion run id carried by activity arguments, if any
func RunIDFromArgs(args []interface{}) string {
	for _, arg := range args {
		switch v := arg.(type) {
		case domain.RunContext:
			return v.RunID
		case *domain.RunContext:
			if v != nil {
				return v.RunID
			}
		case report.Input:
			return v.Run.RunID
		}
	}
	return ""
}
