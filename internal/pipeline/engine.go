package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/gamebot/internal/adapter"
	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/drift"
	"github.com/feral-file/gamebot/internal/features"
	"github.com/feral-file/gamebot/internal/freshness"
	"github.com/feral-file/gamebot/internal/loader"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/metrics"
	"github.com/feral-file/gamebot/internal/remediation"
	"github.com/feral-file/gamebot/internal/report"
	"github.com/feral-file/gamebot/internal/store"
	"github.com/feral-file/gamebot/internal/transform"
)

// DefaultLockTTL bounds how long a crashed run can block the next one
const DefaultLockTTL = 2 * time.Hour

// Config holds engine settings
type Config struct {
	Environment string
	RunGroup    string
	LockTTL     time.Duration
}

// RunRequest describes a run to start
type RunRequest struct {
	// Datasets restricts the run; empty means the whole catalog
	Datasets    []string `json:"datasets,omitempty"`
	FullReplace []string `json:"full_replace,omitempty"`
	Force       bool     `json:"force"`
	Notes       string   `json:"notes,omitempty"`
}

// LoadOutcome is the result of the load stage together with the drift it revealed
type LoadOutcome struct {
	Summary *loader.Summary          `json:"summary"`
	Drift   map[string][]drift.Entry `json:"drift"`
}

// Engine exposes each pipeline stage as an entry point taking an explicit run context.
// Orchestrators sequence the stages; Run sequences them locally.
//
//go:generate mockgen -source=engine.go -destination=../mocks/engine.go -package=mocks -mock_names=Engine=MockEngine
type Engine interface {
	// StartRun records a new ingestion run and returns its context
	StartRun(ctx context.Context, req RunRequest) (*domain.RunContext, error)
	// AcquireLock takes the run group lease for the run, failing with domain.ErrRunLockHeld
	AcquireLock(ctx context.Context, run domain.RunContext) error
	// ReleaseLock releases the run group lease held by the run
	ReleaseLock(ctx context.Context, run domain.RunContext) error
	// DetectFreshness compares every selected dataset with its stored fingerprint
	DetectFreshness(ctx context.Context, run domain.RunContext) (*freshness.Summary, error)
	// LoadRaw merges datasets into the raw layer and reports schema drift
	LoadRaw(ctx context.Context, run domain.RunContext, datasets []string) (*LoadOutcome, error)
	// Remediate repairs dangling references touching the changed datasets
	Remediate(ctx context.Context, run domain.RunContext, changed []string) (*remediation.Summary, error)
	// Transform rebuilds curated tables fed by the changed datasets
	Transform(ctx context.Context, run domain.RunContext, changed []string) (*transform.Summary, error)
	// Aggregate writes a feature snapshot from the curated layer
	Aggregate(ctx context.Context, run domain.RunContext) (*features.Result, error)
	// FinishRun builds and persists the validation report and stamps the run status
	FinishRun(ctx context.Context, input report.Input) (*report.Report, error)
	// Run executes every stage in order and always persists a report
	Run(ctx context.Context, req RunRequest) (*report.Report, error)
}

type engine struct {
	config      Config
	catalog     *catalog.Catalog
	store       store.Store
	detector    freshness.Detector
	loader      loader.Loader
	remediator  remediation.Remediator
	transformer transform.Transformer
	aggregator  features.Aggregator
	clock       adapter.Clock
}

// Deps groups the stage implementations of an engine
type Deps struct {
	Catalog     *catalog.Catalog
	Store       store.Store
	Detector    freshness.Detector
	Loader      loader.Loader
	Remediator  remediation.Remediator
	Transformer transform.Transformer
	Aggregator  features.Aggregator
	Clock       adapter.Clock
}

// NewEngine creates a pipeline engine
func NewEngine(cfg Config, deps Deps) Engine {
	if cfg.Environment == "" {
		cfg.Environment = domain.DEFAULT_ENVIRONMENT
	}
	if cfg.RunGroup == "" {
		cfg.RunGroup = domain.DEFAULT_RUN_GROUP
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	return &engine{
		config:      cfg,
		catalog:     deps.Catalog,
		store:       deps.Store,
		detector:    deps.Detector,
		loader:      deps.Loader,
		remediator:  deps.Remediator,
		transformer: deps.Transformer,
		aggregator:  deps.Aggregator,
		clock:       deps.Clock,
	}
}

// StartRun records a new ingestion run
func (e *engine) StartRun(ctx context.Context, req RunRequest) (*domain.RunContext, error) {
	datasets, err := e.catalog.Select(req.Datasets)
	if err != nil {
		return nil, err
	}
	for _, name := range req.FullReplace {
		if _, err := e.catalog.Dataset(name); err != nil {
			return nil, err
		}
	}

	now := e.clock.Now()
	run := &domain.RunContext{
		RunID:       ulid.MustNewDefault(now).String(),
		Environment: e.config.Environment,
		RunGroup:    e.config.RunGroup,
		StartedAt:   now,
		Datasets:    datasets,
		FullReplace: req.FullReplace,
		Force:       req.Force,
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	if err := e.store.CreateIngestionRun(ctx, store.CreateIngestionRunInput{
		ID:          run.RunID,
		Environment: run.Environment,
		RunGroup:    run.RunGroup,
		StartedAt:   now,
		Notes:       notes,
	}); err != nil {
		return nil, fmt.Errorf("failed to create ingestion run: %w", err)
	}

	logger.InfoCtx(ctx, "Ingestion run started",
		zap.String("runId", run.RunID),
		zap.String("environment", run.Environment),
		zap.Strings("datasets", run.Datasets),
		zap.Bool("force", run.Force),
	)
	return run, nil
}

// AcquireLock takes the run group lease
func (e *engine) AcquireLock(ctx context.Context, run domain.RunContext) error {
	ok, err := e.store.AcquireRunLock(ctx, run.RunGroup, run.RunID, e.config.LockTTL, e.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: group %s", domain.ErrRunLockHeld, run.RunGroup)
	}
	return nil
}

// ReleaseLock releases the run group lease
func (e *engine) ReleaseLock(ctx context.Context, run domain.RunContext) error {
	return e.store.ReleaseRunLock(ctx, run.RunGroup, run.RunID)
}

// DetectFreshness compares every selected dataset with its stored fingerprint
func (e *engine) DetectFreshness(ctx context.Context, run domain.RunContext) (*freshness.Summary, error) {
	return e.detector.DetectAll(logger.WithRun(ctx, run.RunID), run.Datasets)
}

// LoadRaw merges datasets into the raw layer and diffs their observed columns against the catalog
func (e *engine) LoadRaw(ctx context.Context, run domain.RunContext, datasets []string) (*LoadOutcome, error) {
	ctx = logger.WithRun(ctx, run.RunID)

	summary, err := e.loader.Load(ctx, run, datasets)
	if err != nil {
		return nil, err
	}

	out := &LoadOutcome{Summary: summary, Drift: make(map[string][]drift.Entry)}
	for _, res := range summary.Results {
		if len(res.ObservedColumns) == 0 {
			continue
		}
		ds, err := e.catalog.Dataset(res.Dataset)
		if err != nil {
			return nil, err
		}
		entries := drift.Diff(ds, res.ObservedColumns)
		if len(entries) == 0 {
			continue
		}
		out.Drift[res.Dataset] = entries
		logger.WarnCtx(ctx, "Schema drift detected",
			zap.String("dataset", res.Dataset),
			zap.Int("entries", len(entries)),
			zap.Any("drift", entries),
		)
	}
	return out, nil
}

// Remediate repairs dangling references touching the changed datasets
func (e *engine) Remediate(ctx context.Context, run domain.RunContext, changed []string) (*remediation.Summary, error) {
	return e.remediator.Remediate(logger.WithRun(ctx, run.RunID), run, changed)
}

// Transform rebuilds curated tables fed by the changed datasets
func (e *engine) Transform(ctx context.Context, run domain.RunContext, changed []string) (*transform.Summary, error) {
	return e.transformer.Transform(logger.WithRun(ctx, run.RunID), run, changed)
}

// Aggregate writes a feature snapshot
func (e *engine) Aggregate(ctx context.Context, run domain.RunContext) (*features.Result, error) {
	return e.aggregator.Aggregate(logger.WithRun(ctx, run.RunID), run)
}

// FinishRun builds and persists the report, then stamps the terminal status of the run
func (e *engine) FinishRun(ctx context.Context, input report.Input) (*report.Report, error) {
	ctx = logger.WithRun(ctx, input.Run.RunID)
	if input.EndedAt.IsZero() {
		input.EndedAt = e.clock.Now()
	}
	if input.CatalogVersion == "" {
		input.CatalogVersion = e.catalog.Version
	}

	rep := report.Build(input)
	data, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := e.store.SaveValidationReport(ctx, rep.RunID, rep.Status, data); err != nil {
		return nil, fmt.Errorf("failed to save validation report: %w", err)
	}

	finish := store.FinishIngestionRunInput{
		ID:             rep.RunID,
		Status:         rep.Status,
		EndedAt:        rep.EndedAt,
		SourceRevision: sourceRevision(input.Load),
	}
	if len(rep.DegradedBy) > 0 {
		notes := strings.Join(rep.DegradedBy, "; ")
		finish.Notes = &notes
	}
	if err := e.store.FinishIngestionRun(ctx, finish); err != nil {
		return nil, fmt.Errorf("failed to finish ingestion run: %w", err)
	}
	metrics.ObserveRun(string(rep.Status))

	logger.InfoCtx(ctx, "Ingestion run finished",
		zap.String("status", string(rep.Status)),
		zap.Strings("degradedBy", rep.DegradedBy),
		zap.Duration("duration", rep.EndedAt.Sub(rep.StartedAt)),
	)
	return rep, nil
}

// sourceRevision returns the distinct upstream revisions of the loaded extracts
func sourceRevision(load *loader.Summary) *string {
	if load == nil {
		return nil
	}
	seen := make(map[string]bool)
	var revisions []string
	for _, r := range load.Results {
		if r.Status != loader.StatusLoaded || r.Revision == "" || seen[r.Revision] {
			continue
		}
		seen[r.Revision] = true
		revisions = append(revisions, r.Revision)
	}
	if len(revisions) == 0 {
		return nil
	}
	sort.Strings(revisions)
	joined := strings.Join(revisions, ",")
	return &joined
}

// Run executes every stage in order. The report is persisted even when a stage
// fails or ctx is cancelled; the stage error is returned alongside it.
func (e *engine) Run(ctx context.Context, req RunRequest) (*report.Report, error) {
	run, err := e.StartRun(ctx, req)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithRun(ctx, run.RunID)

	in := report.Input{Run: *run, CatalogVersion: e.catalog.Version}
	runErr := e.runStages(ctx, *run, &in)

	// Persist the outcome even when the caller cancelled
	rep, err := e.FinishRun(context.WithoutCancel(ctx), in)
	if err != nil {
		return nil, errors.Join(runErr, err)
	}
	return rep, runErr
}

func (e *engine) runStages(ctx context.Context, run domain.RunContext, in *report.Input) error {
	st := newStageRunner(e.clock, in)

	if err := e.AcquireLock(ctx, run); err != nil {
		st.fail(domain.StageFreshness, e.clock.Now(), err)
		st.skipRest()
		return err
	}
	defer func() {
		if err := e.ReleaseLock(context.WithoutCancel(ctx), run); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to release run lock: %w", err))
		}
	}()

	// Freshness
	err := st.do(ctx, domain.StageFreshness, func() error {
		summary, err := e.DetectFreshness(ctx, run)
		in.Freshness = summary
		return err
	})
	if err != nil {
		return err
	}

	toLoad := in.Freshness.Changed()
	if run.Force {
		toLoad = run.Datasets
	}
	if len(toLoad) == 0 {
		logger.InfoCtx(ctx, "No dataset changed upstream")
		st.skipRest()
		return nil
	}

	// Load
	err = st.do(ctx, domain.StageLoad, func() error {
		outcome, err := e.LoadRaw(ctx, run, toLoad)
		if outcome != nil {
			in.Load = outcome.Summary
			in.Drift = outcome.Drift
		}
		return err
	})
	if err != nil {
		return err
	}

	changed := in.Load.Loaded()
	if len(changed) == 0 {
		logger.WarnCtx(ctx, "Every changed dataset was rejected")
		st.skipRest()
		return nil
	}

	// Remediate
	err = st.do(ctx, domain.StageRemediate, func() error {
		summary, err := e.Remediate(ctx, run, changed)
		in.Remediation = summary
		return err
	})
	if err != nil {
		return err
	}

	// Transform
	err = st.do(ctx, domain.StageTransform, func() error {
		// rows rewritten by remediation change their curated tables too
		summary, err := e.Transform(ctx, run, in.Remediation.WithPatched(changed))
		in.Transform = summary
		return err
	})
	if err != nil {
		return err
	}

	// Aggregate
	return st.do(ctx, domain.StageAggregate, func() error {
		result, err := e.Aggregate(ctx, run)
		in.Features = result
		return err
	})
}
