package transform

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/metrics"
	"github.com/feral-file/gamebot/internal/store"
)

// maxReportedViolations caps the violations kept per table; counts stay exact
const maxReportedViolations = 50

// TableStatus is the outcome of one curated table in a transform stage
type TableStatus string

const (
	TableStatusRebuilt TableStatus = "rebuilt"
	// TableStatusFailed means validation failed and the previous version was kept
	TableStatusFailed TableStatus = "failed"
	// TableStatusUnchanged means no source or dependency changed
	TableStatusUnchanged TableStatus = "unchanged"
)

// ViolationKind classifies a constraint violation
type ViolationKind string

const (
	ViolationGrain      ViolationKind = "grain"
	ViolationForeignKey ViolationKind = "foreign_key"
)

// Violation is one constraint violation found while building a table
type Violation struct {
	Kind             ViolationKind `json:"kind"`
	Column           string        `json:"column,omitempty"`
	SourceNaturalKey string        `json:"source_natural_key"`
	Detail           string        `json:"detail"`
}

// TableResult is the outcome of rebuilding one curated table
type TableResult struct {
	Table  string      `json:"table"`
	Status TableStatus `json:"status"`
	Rows   int         `json:"rows"`
	// SkippedRows counts source rows that could not be placed, such as rows whose key reference was nulled
	SkippedRows     int         `json:"skipped_rows"`
	GrainViolations int         `json:"grain_violations"`
	FKViolations    int         `json:"fk_violations"`
	Violations      []Violation `json:"violations,omitempty"`
	Error           string      `json:"error,omitempty"`
}

// Summary holds the outcome of a transform stage in table order
type Summary struct {
	Results []TableResult `json:"results"`
}

// Failed returns tables that kept their previous version because of a violation
func (s *Summary) Failed() []string {
	out := make([]string, 0)
	for _, r := range s.Results {
		if r.Status == TableStatusFailed {
			out = append(out, r.Table)
		}
	}
	return out
}

// Rebuilt returns tables replaced by this stage
func (s *Summary) Rebuilt() []string {
	out := make([]string, 0)
	for _, r := range s.Results {
		if r.Status == TableStatusRebuilt {
			out = append(out, r.Table)
		}
	}
	return out
}

// Transformer rebuilds the curated layer from the raw layer
//
//go:generate mockgen -source=transform.go -destination=../mocks/transformer.go -package=mocks -mock_names=Transformer=MockTransformer
type Transformer interface {
	// Transform rebuilds every table fed by a dataset in changed, plus tables depending on those.
	// A nil changed set rebuilds everything. Constraint violations fail the affected table only
	// and are reported in the summary; store failures are returned.
	Transform(ctx context.Context, run domain.RunContext, changed []string) (*Summary, error)
}

type transformer struct {
	catalog *catalog.Catalog
	store   store.Store
}

// NewTransformer creates a dimensional transformer
func NewTransformer(cat *catalog.Catalog, st store.Store) Transformer {
	return &transformer{catalog: cat, store: st}
}

// Select returns the tables to rebuild for a changed dataset set, in dependency order
func Select(changed []string) []string {
	set := make(map[string]bool, len(changed))
	for _, d := range changed {
		set[d] = true
	}

	selected := make(map[string]bool)
	out := make([]string, 0)
	for _, def := range tableDefs {
		pick := changed == nil
		for _, src := range def.sources {
			pick = pick || set[src]
		}
		for _, dep := range def.dependsOn {
			pick = pick || selected[dep]
		}
		if pick {
			selected[def.name] = true
			out = append(out, def.name)
		}
	}
	return out
}

// Transform rebuilds the selected curated tables
func (t *transformer) Transform(ctx context.Context, run domain.RunContext, changed []string) (*Summary, error) {
	selected := make(map[string]bool)
	for _, name := range Select(changed) {
		selected[name] = true
	}

	b := &builder{
		ctx:     ctx,
		catalog: t.catalog,
		store:   t.store,
		raw:     newRawCache(t.store),
		keys:    make(map[string]map[int64]bool),
	}

	summary := &Summary{Results: make([]TableResult, 0, len(tableDefs))}
	for _, def := range tableDefs {
		if !selected[def.name] {
			summary.Results = append(summary.Results, TableResult{Table: def.name, Status: TableStatusUnchanged})
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := t.rebuild(ctx, b, def)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild %s: %w", def.name, err)
		}
		summary.Results = append(summary.Results, *result)
	}

	logger.InfoCtx(ctx, "Transform completed",
		zap.String("runId", run.RunID),
		zap.Strings("rebuilt", summary.Rebuilt()),
		zap.Strings("failed", summary.Failed()),
	)

	return summary, nil
}

func (t *transformer) rebuild(ctx context.Context, b *builder, def tableDef) (*TableResult, error) {
	out := &output{table: def.name}
	if err := def.build(b, out); err != nil {
		return nil, err
	}

	result := &TableResult{
		Table:           def.name,
		Rows:            out.count,
		SkippedRows:     out.skipped,
		GrainViolations: out.grainViolations,
		FKViolations:    out.fkViolations,
		Violations:      out.violations,
	}

	if out.grainViolations+out.fkViolations > 0 {
		result.Status = TableStatusFailed
		result.Error = fmt.Sprintf("%s: %d grain and %d foreign key violations",
			domain.ErrConstraintViolation, out.grainViolations, out.fkViolations)
		if out.grainViolations > 0 {
			metrics.ObserveConstraintViolation(def.name, string(ViolationGrain))
		}
		if out.fkViolations > 0 {
			metrics.ObserveConstraintViolation(def.name, string(ViolationForeignKey))
		}
		logger.WarnCtx(ctx, "Curated table failed validation, previous version kept",
			zap.String("table", def.name),
			zap.Int("grainViolations", out.grainViolations),
			zap.Int("fkViolations", out.fkViolations),
		)
		return result, nil
	}

	if err := t.store.ReplaceCuratedTable(ctx, def.name, out.rows); err != nil {
		return nil, err
	}
	if _, ok := dimensionKeys[def.name]; ok {
		b.keys[def.name] = out.keys
	}

	result.Status = TableStatusRebuilt
	metrics.SetCuratedRows(def.name, out.count)
	logger.DebugCtx(ctx, "Curated table rebuilt",
		zap.String("table", def.name),
		zap.Int("rows", out.count),
		zap.Int("skipped", out.skipped),
	)
	return result, nil
}

// builder gives table builders access to raw rows and effective target keys
type builder struct {
	ctx     context.Context
	catalog *catalog.Catalog
	store   store.Store
	raw     *rawCache
	// keys holds the effective key set of each dimension: the new version once rebuilt,
	// otherwise the stored one, loaded on first use
	keys map[string]map[int64]bool
}

func (b *builder) rows(dataset string) ([]rawRow, error) {
	return b.raw.get(b.ctx, dataset)
}

func (b *builder) targetKeys(table string) (map[int64]bool, error) {
	if keys, ok := b.keys[table]; ok {
		return keys, nil
	}
	column, ok := dimensionKeys[table]
	if !ok {
		return nil, errors.New("table " + table + " has no surrogate key")
	}
	stored, err := b.store.GetCuratedKeys(b.ctx, table, column)
	if err != nil {
		return nil, err
	}
	keys := make(map[int64]bool, len(stored))
	for _, k := range stored {
		keys[k] = true
	}
	b.keys[table] = keys
	return keys, nil
}

// output collects a table build and its violations
type output struct {
	table           string
	rows            interface{}
	count           int
	keys            map[int64]bool
	skipped         int
	grainViolations int
	fkViolations    int
	violations      []Violation
	grain           map[string]string
}

func (o *output) violate(v Violation) {
	switch v.Kind {
	case ViolationGrain:
		o.grainViolations++
	case ViolationForeignKey:
		o.fkViolations++
	}
	if len(o.violations) < maxReportedViolations {
		o.violations = append(o.violations, v)
	}
}

// unique records the grain of a row and reports whether it was new
func (o *output) unique(sourceKey string, grain ...int64) bool {
	if o.grain == nil {
		o.grain = make(map[string]string)
	}
	id := fmt.Sprint(grain)
	if first, dup := o.grain[id]; dup {
		o.violate(Violation{
			Kind:             ViolationGrain,
			SourceNaturalKey: sourceKey,
			Detail:           fmt.Sprintf("grain %v already produced by %q", grain, first),
		})
		return false
	}
	o.grain[id] = sourceKey
	return true
}

// exists checks a foreign key against the effective version of target
func (o *output) exists(b *builder, target, column, sourceKey string, key int64) (bool, error) {
	keys, err := b.targetKeys(target)
	if err != nil {
		return false, err
	}
	if keys[key] {
		return true, nil
	}
	o.violate(Violation{
		Kind:             ViolationForeignKey,
		Column:           column,
		SourceNaturalKey: sourceKey,
		Detail:           fmt.Sprintf("%s has no row for key %d", target, key),
	})
	return false, nil
}

// existsOptional checks a nullable foreign key
func (o *output) existsOptional(b *builder, target, column, sourceKey string, key *int64) (bool, error) {
	if key == nil {
		return true, nil
	}
	return o.exists(b, target, column, sourceKey, *key)
}

func (o *output) addKey(key int64) {
	if o.keys == nil {
		o.keys = make(map[int64]bool)
	}
	o.keys[key] = true
}
