package workflows

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/feral-file/gamebot/internal/pipeline"
)

// WorkerPipeline defines the workflows that drive ingestion runs
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker_pipeline.go -package=mocks -mock_names=WorkerPipeline=MockWorkerPipeline
type WorkerPipeline interface {
	// IngestPipeline runs every stage of one ingestion run and always persists its report
	IngestPipeline(ctx workflow.Context, req pipeline.RunRequest) (*RunResult, error)
}

type WorkerPipelineConfig struct {
	// StageTimeout bounds a single stage activity
	StageTimeout time.Duration
	// FetchAttempts is the number of attempts for the stages that fetch from upstream
	FetchAttempts int32
	// RetryInterval is the initial backoff between attempts of a fetching stage
	RetryInterval time.Duration
}

// workerPipeline is the concrete implementation of WorkerPipeline
type workerPipeline struct {
	config   WorkerPipelineConfig
	executor Executor
}

// NewWorkerPipeline creates a new pipeline worker instance
func NewWorkerPipeline(executor Executor, config WorkerPipelineConfig) WorkerPipeline {
	if config.StageTimeout <= 0 {
		config.StageTimeout = 30 * time.Minute
	}
	if config.FetchAttempts <= 0 {
		config.FetchAttempts = 3
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = 10 * time.Second
	}
	return &workerPipeline{
		executor: executor,
		config:   config,
	}
}
