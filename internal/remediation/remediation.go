package remediation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/metrics"
	"github.com/feral-file/gamebot/internal/registry"
	"github.com/feral-file/gamebot/internal/store"
	"github.com/feral-file/gamebot/internal/store/schema"
)

// Config holds remediation tuning
type Config struct {
	// FuzzyThreshold is the minimum similarity in [0,1] for a fuzzy match to be accepted
	FuzzyThreshold float64
	// SampleSize caps the fuzzy acceptances surfaced in the report
	SampleSize int
}

// MaxReportedActions caps the actions kept in a summary; the per-dataset counts stay exact
const MaxReportedActions = 500

// Action is one repair of a dangling reference.
// Before is the upstream value, except when a direct match restores it over an earlier patch,
// where Before is the patched value ("" when it was nulled).
type Action struct {
	Dataset    string                     `json:"dataset"`
	NaturalKey string                     `json:"natural_key"`
	Column     string                     `json:"column"`
	Context    string                     `json:"context,omitempty"`
	Before     string                     `json:"before"`
	After      *string                    `json:"after"`
	Strategy   schema.RemediationStrategy `json:"strategy"`
	Confidence float64                    `json:"confidence"`
	// MatchedPair is the compared display values of a fuzzy acceptance
	MatchedPair string `json:"matched_pair,omitempty"`
}

// DatasetResult counts reference checks of one dataset by outcome
type DatasetResult struct {
	Dataset    string `json:"dataset"`
	Checked    int    `json:"checked"`
	Direct     int    `json:"direct"`
	Contextual int    `json:"contextual"`
	Fallback   int    `json:"fallback"`
	Fuzzy      int    `json:"fuzzy"`
	Unresolved int    `json:"unresolved"`
	// Restored counts direct matches that undid an earlier patch
	Restored int `json:"restored"`
	// Patched counts the rows rewritten by this stage
	Patched int `json:"patched"`
}

// Summary is the outcome of a remediation stage
type Summary struct {
	Results []DatasetResult `json:"results"`
	// Actions holds at most MaxReportedActions actions, in dataset order
	Actions []Action `json:"actions"`
	// OmittedActions is the number of actions applied but not kept in Actions
	OmittedActions int      `json:"omitted_actions"`
	FuzzySample    []Action `json:"fuzzy_sample"`
}

// Count returns the number of references settled by strategy, including ones already patched by an earlier run
func (s *Summary) Count(strategy schema.RemediationStrategy) int {
	n := 0
	for _, res := range s.Results {
		switch strategy {
		case schema.RemediationStrategyDirect:
			n += res.Direct
		case schema.RemediationStrategyContextual:
			n += res.Contextual
		case schema.RemediationStrategyFallback:
			n += res.Fallback
		case schema.RemediationStrategyFuzzy:
			n += res.Fuzzy
		case schema.RemediationStrategyUnresolved:
			n += res.Unresolved
		}
	}
	return n
}

// Patched returns the datasets whose raw rows were rewritten, in catalog order
func (s *Summary) Patched() []string {
	var out []string
	for _, res := range s.Results {
		if res.Patched > 0 {
			out = append(out, res.Dataset)
		}
	}
	return out
}

// WithPatched returns changed followed by the patched datasets it does not already hold.
// A nil changed set already means every dataset and is returned as is.
func (s *Summary) WithPatched(changed []string) []string {
	if changed == nil {
		return nil
	}
	out := append([]string{}, changed...)
	if s == nil {
		return out
	}
	seen := make(map[string]bool, len(changed))
	for _, name := range changed {
		seen[name] = true
	}
	for _, name := range s.Patched() {
		if !seen[name] {
			out = append(out, name)
		}
	}
	return out
}

// ActionsFor returns the actions of one dataset
func (s *Summary) ActionsFor(dataset string) []Action {
	var out []Action
	for _, a := range s.Actions {
		if a.Dataset == dataset {
			out = append(out, a)
		}
	}
	return out
}

// Remediator repairs raw reference columns that do not resolve
//
//go:generate mockgen -source=remediation.go -destination=../mocks/remediator.go -package=mocks -mock_names=Remediator=MockRemediator
type Remediator interface {
	// Remediate checks every declared reference whose source or target dataset is in changed.
	// A nil changed set checks every reference in the catalog.
	// References are resolved from their upstream value, so a repair is revisited when its target changes.
	Remediate(ctx context.Context, run domain.RunContext, changed []string) (*Summary, error)
}

type remediator struct {
	config   Config
	catalog  *catalog.Catalog
	store    store.Store
	fallback registry.FallbackRegistry
}

// NewRemediator creates a referential remediator
func NewRemediator(cfg Config, cat *catalog.Catalog, st store.Store, fallback registry.FallbackRegistry) Remediator {
	if cfg.FuzzyThreshold <= 0 || cfg.FuzzyThreshold > 1 {
		cfg.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if cfg.SampleSize < 0 {
		cfg.SampleSize = 0
	}
	if fallback == nil {
		fallback, _ = registry.NewFallbackRegistry(nil)
	}
	return &remediator{
		config:   cfg,
		catalog:  cat,
		store:    st,
		fallback: fallback,
	}
}

// DefaultFuzzyThreshold is used when no threshold is configured
const DefaultFuzzyThreshold = 0.85

// Remediate repairs dangling references and persists every patch in one call
func (r *remediator) Remediate(ctx context.Context, run domain.RunContext, changed []string) (*Summary, error) {
	datasets := r.affectedDatasets(changed)

	summary := &Summary{
		Results:     make([]DatasetResult, 0, len(datasets)),
		Actions:     make([]Action, 0),
		FuzzySample: make([]Action, 0),
	}
	if len(datasets) == 0 {
		return summary, nil
	}

	rows := newRowCache(r.store)
	var input store.ApplyRemediationsInput

	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, actions, err := r.remediateDataset(ctx, ds, rows)
		if err != nil {
			return nil, err
		}
		summary.Results = append(summary.Results, *result)

		for _, a := range actions {
			patch, err := r.patchFor(ds, a)
			if err != nil {
				return nil, err
			}
			input.Patches = append(input.Patches, patch)
			input.Logs = append(input.Logs, logEntry(run.RunID, a))
			if len(summary.Actions) < MaxReportedActions {
				summary.Actions = append(summary.Actions, a)
			} else {
				summary.OmittedActions++
			}
			if a.Strategy == schema.RemediationStrategyFuzzy && len(summary.FuzzySample) < r.config.SampleSize {
				summary.FuzzySample = append(summary.FuzzySample, a)
			}
		}
	}

	if len(input.Patches) > 0 {
		if err := r.store.ApplyRemediations(ctx, input); err != nil {
			return nil, fmt.Errorf("failed to apply remediations: %w", err)
		}
	}

	for _, l := range input.Logs {
		metrics.ObserveRemediation(l.Dataset, string(l.Strategy))
	}

	logger.InfoCtx(ctx, "Remediation completed",
		zap.Int("datasets", len(datasets)),
		zap.Int("patched", len(input.Patches)),
		zap.Int("omittedActions", summary.OmittedActions),
		zap.Int("contextual", summary.Count(schema.RemediationStrategyContextual)),
		zap.Int("fallback", summary.Count(schema.RemediationStrategyFallback)),
		zap.Int("fuzzy", summary.Count(schema.RemediationStrategyFuzzy)),
		zap.Int("unresolved", summary.Count(schema.RemediationStrategyUnresolved)),
	)

	return summary, nil
}

// affectedDatasets returns datasets with references touching changed, in catalog order
func (r *remediator) affectedDatasets(changed []string) []*catalog.Dataset {
	set := make(map[string]bool, len(changed))
	for _, name := range changed {
		set[name] = true
	}

	var out []*catalog.Dataset
	for i := range r.catalog.Datasets {
		ds := &r.catalog.Datasets[i]
		if len(ds.References) == 0 {
			continue
		}
		if changed == nil || set[ds.Name] {
			out = append(out, ds)
			continue
		}
		for _, ref := range ds.References {
			if set[ref.TargetDataset] {
				out = append(out, ds)
				break
			}
		}
	}
	return out
}

func (r *remediator) remediateDataset(ctx context.Context, ds *catalog.Dataset, rows *rowCache) (*DatasetResult, []Action, error) {
	result := &DatasetResult{Dataset: ds.Name}

	source, err := rows.get(ctx, ds.Name)
	if err != nil {
		return nil, nil, err
	}

	var actions []Action
	for _, ref := range ds.References {
		target, err := rows.get(ctx, ref.TargetDataset)
		if err != nil {
			return nil, nil, err
		}
		idx := buildTargetIndex(ref, target)

		for _, row := range source {
			value, ok := row.upstreamValue(ref.Column)
			if !ok {
				continue
			}
			result.Checked++
			current, present := row.payload.String(ref.Column)

			group := ""
			if ref.Context != "" {
				group, _ = row.payload.String(ref.Context)
			}
			if idx.resolves(group, value) {
				result.Direct++
				if present && current == value {
					continue
				}
				// an earlier repair is undone once the upstream value resolves
				result.Restored++
				result.Patched++
				to := value
				actions = append(actions, Action{
					Dataset:    ds.Name,
					NaturalKey: row.naturalKey,
					Column:     ref.Column,
					Context:    group,
					Before:     current,
					After:      &to,
					Strategy:   schema.RemediationStrategyDirect,
					Confidence: 1,
				})
				continue
			}

			a := r.resolve(ds, ref, idx, row, group, value)
			switch a.Strategy {
			case schema.RemediationStrategyContextual:
				result.Contextual++
			case schema.RemediationStrategyFallback:
				result.Fallback++
			case schema.RemediationStrategyFuzzy:
				result.Fuzzy++
			default:
				result.Unresolved++
			}

			// already settled the same way by an earlier run
			if (a.After == nil && !present) || (a.After != nil && present && *a.After == current) {
				continue
			}
			result.Patched++

			switch a.Strategy {
			case schema.RemediationStrategyFuzzy:
				logger.InfoCtx(ctx, "Fuzzy reference match accepted",
					zap.String("dataset", ds.Name),
					zap.String("column", ref.Column),
					zap.String("context", group),
					zap.String("before", a.Before),
					zap.Stringp("after", a.After),
					zap.String("matchedPair", a.MatchedPair),
					zap.Float64("score", a.Confidence),
				)
			case schema.RemediationStrategyUnresolved:
				logger.WarnCtx(ctx, "Unresolved reference nulled",
					zap.String("dataset", ds.Name),
					zap.String("column", ref.Column),
					zap.String("context", group),
					zap.String("value", value),
				)
			}
			actions = append(actions, a)
		}
	}
	return result, actions, nil
}

// resolve applies the strategies in order to one dangling value
func (r *remediator) resolve(ds *catalog.Dataset, ref catalog.Reference, idx *targetIndex, row rawRow, group, value string) Action {
	a := Action{
		Dataset:    ds.Name,
		NaturalKey: row.naturalKey,
		Column:     ref.Column,
		Context:    group,
		Before:     value,
	}

	// Contextual alignment
	if ref.AlignOn != "" {
		if attr, ok := row.payload.String(ref.AlignOn); ok {
			if to, ok := idx.aligned(group, attr); ok {
				a.After = &to
				a.Strategy = schema.RemediationStrategyContextual
				a.Confidence = 1
				return a
			}
		}
	}

	// Deterministic fallback table; entries pointing nowhere are ignored
	if to, ok := r.fallback.Lookup(ds.Name, ref.Column, group, value); ok && idx.resolves(group, to) {
		a.After = &to
		a.Strategy = schema.RemediationStrategyFallback
		a.Confidence = 1
		return a
	}

	// Fuzzy match over display names
	if len(ref.FuzzyTarget) > 0 {
		display := value
		if ref.FuzzySource != "" {
			if v, ok := row.payload.String(ref.FuzzySource); ok {
				display = v
			}
		}
		if m, ok := idx.fuzzy(group, display, r.config.FuzzyThreshold); ok {
			to := m.value
			a.After = &to
			a.Strategy = schema.RemediationStrategyFuzzy
			a.Confidence = m.score
			a.MatchedPair = fmt.Sprintf("%s ~ %s", display, m.name)
			return a
		}
	}

	a.Strategy = schema.RemediationStrategyUnresolved
	return a
}

// patchFor builds the raw patch of an action, typed like the declared column
func (r *remediator) patchFor(ds *catalog.Dataset, a Action) (store.RawPatch, error) {
	patch := store.RawPatch{
		Dataset:    a.Dataset,
		NaturalKey: a.NaturalKey,
		Column:     a.Column,
	}
	if a.After == nil {
		return patch, nil
	}

	col, ok := ds.Column(a.Column)
	if !ok {
		return patch, fmt.Errorf("reference column %s.%s is not declared", ds.Name, a.Column)
	}
	v, err := catalog.CoerceValue(col.Type, *a.After)
	if err != nil {
		return patch, fmt.Errorf("replacement %q for %s.%s: %w", *a.After, ds.Name, a.Column, err)
	}
	patch.Value = v
	return patch, nil
}

func logEntry(runID string, a Action) schema.RemediationLog {
	entry := schema.RemediationLog{
		IngestionRunID: runID,
		Dataset:        a.Dataset,
		NaturalKey:     a.NaturalKey,
		Column:         a.Column,
		After:          a.After,
		Strategy:       a.Strategy,
		Confidence:     a.Confidence,
	}
	if a.Before != "" {
		entry.Before = &a.Before
	}
	if a.Context != "" {
		entry.Context = &a.Context
	}
	if a.MatchedPair != "" {
		entry.MatchedPair = &a.MatchedPair
	}
	return entry
}
