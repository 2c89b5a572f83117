package temporal

import (
	"context"
	"fmt"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"

	"github.com/feral-file/gamebot/internal/pipeline"
)

// IngestPipelineWorkflow is the registered name of the ingestion workflow
const IngestPipelineWorkflow = "IngestPipeline"

//go:generate mockgen -source=orchestrator.go -destination=../../mocks/temporal_orchestrator.go -package=mocks -mock_names=TemporalOrchestrator=MockTemporalOrchestrator
type TemporalOrchestrator interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// IngestWorkflowID returns the workflow id of a run group's ingestion.
// Only one execution per id may be open, which keeps runs of a group sequential.
func IngestWorkflowID(runGroup string) string {
	return "ingest-" + runGroup
}

// StartIngestPipeline starts the ingestion workflow of a run group.
// It fails when an ingestion of the same group is still open.
func StartIngestPipeline(ctx context.Context, orchestrator TemporalOrchestrator, taskQueue string, runGroup string, req pipeline.RunRequest) (client.WorkflowRun, error) {
	options := client.StartWorkflowOptions{
		ID:                       IngestWorkflowID(runGroup),
		TaskQueue:                taskQueue,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowIDConflictPolicy: enums.WORKFLOW_ID_CONFLICT_POLICY_FAIL,
	}

	run, err := orchestrator.ExecuteWorkflow(ctx, options, IngestPipelineWorkflow, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start ingestion workflow: %w", err)
	}
	return run, nil
}
