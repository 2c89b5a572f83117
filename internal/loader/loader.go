package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/gamebot/internal/adapter"
	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/drift"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/metrics"
	"github.com/feral-file/gamebot/internal/source"
	"github.com/feral-file/gamebot/internal/store"
)

// Status is the outcome of one dataset load
type Status string

const (
	StatusLoaded Status = "loaded"
	// StatusRejected means the extract was rejected and the raw table left as it was
	StatusRejected Status = "rejected"
)

// Config holds loader tuning
type Config struct {
	WorkerPoolSize           int
	CoercionFailureThreshold float64
	BatchSize                int
}

// Result is the outcome of loading one dataset
type Result struct {
	Dataset     string `json:"dataset"`
	Status      Status `json:"status"`
	Error       string `json:"error,omitempty"`
	FullReplace bool   `json:"full_replace"`
	Signature   string `json:"signature,omitempty"`
	Revision    string `json:"revision,omitempty"`

	Rows      int `json:"rows"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Deleted   int `json:"deleted"`

	FailedRows       int                    `json:"failed_rows"`
	FailureCount     int                    `json:"failure_count"`
	CoercionFailures []CoercionFailure      `json:"coercion_failures,omitempty"`
	SkippedRows      int                    `json:"skipped_rows"`
	FanOutRepeats    int                    `json:"fan_out_repeats"`
	FanOutCollisions int                    `json:"fan_out_collisions"`
	UniquenessError  string                 `json:"uniqueness_error,omitempty"`
	ObservedColumns  []drift.ObservedColumn `json:"observed_columns,omitempty"`
}

// Summary holds the results of a load stage in dataset order
type Summary struct {
	Results []Result `json:"results"`
}

// Loaded returns datasets whose merge committed, in order
func (s *Summary) Loaded() []string {
	out := make([]string, 0, len(s.Results))
	for _, r := range s.Results {
		if r.Status == StatusLoaded {
			out = append(out, r.Dataset)
		}
	}
	return out
}

// Rejected returns datasets whose extract was rejected, in order
func (s *Summary) Rejected() []string {
	out := make([]string, 0)
	for _, r := range s.Results {
		if r.Status == StatusRejected {
			out = append(out, r.Dataset)
		}
	}
	return out
}

// Loader fetches, validates and merges upstream extracts into the raw layer
//
//go:generate mockgen -source=loader.go -destination=../mocks/loader.go -package=mocks -mock_names=Loader=MockLoader
type Loader interface {
	// Load loads datasets for a run.
	// Fetch and validation run concurrently; merges run one dataset at a time in input order.
	// A rejected extract is reported in the summary; only transient and malformed-extract failures return an error.
	Load(ctx context.Context, run domain.RunContext, datasets []string) (*Summary, error)
}

type loader struct {
	config  Config
	catalog *catalog.Catalog
	source  source.Source
	store   store.Store
	clock   adapter.Clock
}

// NewLoader creates a raw loader
func NewLoader(cfg Config, cat *catalog.Catalog, src source.Source, st store.Store, clock adapter.Clock) Loader {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 1
	}
	return &loader{
		config:  cfg,
		catalog: cat,
		source:  src,
		store:   st,
		clock:   clock,
	}
}

// fetched carries a prepared extract from the worker pool to the merge step
type fetched struct {
	prepared *Prepared
	revision string
	rejected error
}

// Load loads datasets for a run
func (l *loader) Load(ctx context.Context, run domain.RunContext, datasets []string) (*Summary, error) {
	defs := make([]*catalog.Dataset, 0, len(datasets))
	for _, name := range datasets {
		ds, err := l.catalog.Dataset(name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, ds)
	}

	// 1. Fetch and validate concurrently
	pool := pond.NewResultPool[*fetched](l.config.WorkerPoolSize, pond.WithContext(ctx))
	defer pool.StopAndWait()

	tasks := make([]pond.Result[*fetched], 0, len(defs))
	for _, ds := range defs {
		tasks = append(tasks, pool.SubmitErr(func() (*fetched, error) {
			return l.fetchAndPrepare(ctx, ds)
		}))
	}

	prepared := make([]*fetched, 0, len(defs))
	var errs []error
	for _, task := range tasks {
		f, err := task.Wait()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		prepared = append(prepared, f)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// 2. Merge sequentially
	summary := &Summary{Results: make([]Result, 0, len(defs))}
	for i, ds := range defs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := l.merge(ctx, run, ds, prepared[i])
		if err != nil {
			return nil, err
		}
		summary.Results = append(summary.Results, *result)
	}

	logger.InfoCtx(ctx, "Raw load completed",
		zap.Strings("loaded", summary.Loaded()),
		zap.Strings("rejected", summary.Rejected()),
	)

	return summary, nil
}

// fetchAndPrepare fetches one extract and validates it.
// Uniqueness and coercion-threshold rejections are returned inside the result, not as errors.
func (l *loader) fetchAndPrepare(ctx context.Context, ds *catalog.Dataset) (*fetched, error) {
	extract, err := l.source.Fetch(ctx, ds.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ds.Name, err)
	}

	p, err := Prepare(ds, extract.Body)
	if err != nil {
		if errors.Is(err, domain.ErrUniquenessViolation) {
			return &fetched{prepared: p, revision: extract.Revision, rejected: err}, nil
		}
		return nil, err
	}

	f := &fetched{prepared: p, revision: extract.Revision}
	if p.FailureRate() > l.config.CoercionFailureThreshold {
		f.rejected = fmt.Errorf("%w: %s: %d of %d rows failed (threshold %.2f)",
			domain.ErrCoercionThreshold, ds.Name, p.FailedRows, p.TotalRows, l.config.CoercionFailureThreshold)
	}
	return f, nil
}

func (l *loader) merge(ctx context.Context, run domain.RunContext, ds *catalog.Dataset, f *fetched) (*Result, error) {
	fullReplace := ds.FullReplace || run.IsFullReplace(ds.Name)
	result := &Result{
		Dataset:     ds.Name,
		FullReplace: fullReplace,
		Revision:    f.revision,
	}
	if p := f.prepared; p != nil {
		result.Signature = p.Signature
		result.Rows = p.TotalRows
		result.FailedRows = p.FailedRows
		result.FailureCount = p.FailureCount
		result.CoercionFailures = p.Failures
		result.SkippedRows = p.SkippedRows
		result.FanOutRepeats = p.FanOutRepeats
		result.FanOutCollisions = p.FanOutCollisions
		result.ObservedColumns = p.Observed
		metrics.ObserveCoercionFailures(ds.Name, p.FailureCount)

		if p.FanOutRepeats > 0 || p.FanOutCollisions > 0 {
			logger.WarnCtx(ctx, "Fan-out dataset repeats natural keys",
				zap.String("dataset", ds.Name),
				zap.Int("repeats", p.FanOutRepeats),
				zap.Int("collisions", p.FanOutCollisions),
			)
		}
	}

	if f.rejected != nil {
		result.Status = StatusRejected
		result.Error = f.rejected.Error()
		reason := "coercion_threshold"
		if errors.Is(f.rejected, domain.ErrUniquenessViolation) {
			reason = "uniqueness"
			result.UniquenessError = f.rejected.Error()
		}
		metrics.ObserveDatasetLoadFailure(ds.Name, reason)
		logger.WarnCtx(ctx, "Dataset load rejected",
			zap.String("dataset", ds.Name),
			zap.Error(f.rejected),
		)
		return result, nil
	}

	if err := l.store.EnsureRawTable(ctx, ds.Name); err != nil {
		return nil, err
	}

	var revision *string
	if f.revision != "" {
		revision = &f.revision
	}

	merged, err := l.store.MergeRawRecords(ctx, store.MergeRawRecordsInput{
		Dataset:     ds.Name,
		RunID:       run.RunID,
		IngestedAt:  l.clock.Now(),
		Records:     f.prepared.Records,
		FullReplace: fullReplace,
		BatchSize:   l.config.BatchSize,
		Fingerprint: store.FingerprintInput{
			Signature:      f.prepared.Signature,
			SourceRevision: revision,
			ObservedAt:     l.clock.Now(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to merge %s: %w", ds.Name, err)
	}

	result.Status = StatusLoaded
	result.Inserted = merged.Inserted
	result.Updated = merged.Updated
	result.Unchanged = merged.Unchanged
	result.Deleted = merged.Deleted
	metrics.ObserveRawMerge(ds.Name, merged.Inserted, merged.Updated, merged.Unchanged, merged.Deleted)

	logger.InfoCtx(ctx, "Dataset merged",
		zap.String("dataset", ds.Name),
		zap.Int("rows", result.Rows),
		zap.Int("inserted", merged.Inserted),
		zap.Int("updated", merged.Updated),
		zap.Int("unchanged", merged.Unchanged),
		zap.Int("deleted", merged.Deleted),
	)

	return result, nil
}
