package report

import (
	"sort"
	"time"

	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/drift"
	"github.com/feral-file/gamebot/internal/features"
	"github.com/feral-file/gamebot/internal/freshness"
	"github.com/feral-file/gamebot/internal/loader"
	"github.com/feral-file/gamebot/internal/remediation"
	"github.com/feral-file/gamebot/internal/transform"
)

// StageStatus is the outcome of one stage
type StageStatus string

const (
	StageStatusSucceeded StageStatus = "succeeded"
	StageStatusFailed    StageStatus = "failed"
	// StageStatusSkipped means the stage did not run, because nothing changed or an earlier stage failed
	StageStatusSkipped StageStatus = "skipped"
)

// StageOutcome records how one stage ended
type StageOutcome struct {
	Stage     domain.Stage `json:"stage"`
	Status    StageStatus  `json:"status"`
	Error     string       `json:"error,omitempty"`
	StartedAt *time.Time   `json:"started_at,omitempty"`
	EndedAt   *time.Time   `json:"ended_at,omitempty"`
}

// Input gathers everything the stages of one run produced. Any field may be nil.
type Input struct {
	Run            domain.RunContext
	EndedAt        time.Time
	CatalogVersion string
	Stages         []StageOutcome
	Freshness      *freshness.Summary
	Load           *loader.Summary
	Drift          map[string][]drift.Entry
	Remediation    *remediation.Summary
	Transform      *transform.Summary
	Features       *features.Result
}

// DatasetReport is everything known about one dataset in a run
type DatasetReport struct {
	Dataset      string                     `json:"dataset"`
	Freshness    *freshness.Result          `json:"freshness,omitempty"`
	Load         *loader.Result             `json:"load,omitempty"`
	Drift        []drift.Entry              `json:"drift"`
	Remediation  *remediation.DatasetResult `json:"remediation,omitempty"`
	Remediations []remediation.Action       `json:"remediations"`
}

// Report is the validation report of one ingestion run
type Report struct {
	RunID          string                  `json:"run_id"`
	Environment    string                  `json:"environment"`
	RunGroup       string                  `json:"run_group"`
	CatalogVersion string                  `json:"catalog_version"`
	StartedAt      time.Time               `json:"started_at"`
	EndedAt        time.Time               `json:"ended_at"`
	Status         domain.RunStatus        `json:"status"`
	Force          bool                    `json:"force"`
	Stages         []StageOutcome          `json:"stages"`
	Datasets       []DatasetReport         `json:"datasets"`
	Tables         []transform.TableResult `json:"tables"`
	FuzzySample    []remediation.Action    `json:"fuzzy_sample"`
	Features       *features.Result        `json:"features,omitempty"`
	// DegradedBy lists why a run that completed is not clean
	DegradedBy []string `json:"degraded_by,omitempty"`
}

// Build aggregates stage results into a report. It never fails.
func Build(in Input) *Report {
	r := &Report{
		RunID:          in.Run.RunID,
		Environment:    in.Run.Environment,
		RunGroup:       in.Run.RunGroup,
		CatalogVersion: in.CatalogVersion,
		StartedAt:      in.Run.StartedAt,
		EndedAt:        in.EndedAt,
		Force:          in.Run.Force,
		Stages:         make([]StageOutcome, 0, len(in.Stages)),
		Datasets:       make([]DatasetReport, 0),
		Tables:         make([]transform.TableResult, 0),
		FuzzySample:    make([]remediation.Action, 0),
		Features:       in.Features,
	}
	r.Stages = append(r.Stages, in.Stages...)

	datasets := newDatasetSet(in.Run.Datasets)

	if in.Freshness != nil {
		for i := range in.Freshness.Results {
			res := in.Freshness.Results[i]
			datasets.get(res.Dataset).Freshness = &res
		}
	}
	if in.Load != nil {
		for i := range in.Load.Results {
			res := in.Load.Results[i]
			datasets.get(res.Dataset).Load = &res
		}
	}
	names := make([]string, 0, len(in.Drift))
	for name := range in.Drift {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d := datasets.get(name)
		d.Drift = append(d.Drift, in.Drift[name]...)
	}
	if in.Remediation != nil {
		for i := range in.Remediation.Results {
			res := in.Remediation.Results[i]
			datasets.get(res.Dataset).Remediation = &res
		}
		for _, a := range in.Remediation.Actions {
			d := datasets.get(a.Dataset)
			d.Remediations = append(d.Remediations, a)
		}
		r.FuzzySample = append(r.FuzzySample, in.Remediation.FuzzySample...)
	}
	if in.Transform != nil {
		r.Tables = append(r.Tables, in.Transform.Results...)
	}

	r.Datasets = datasets.list()
	r.Status, r.DegradedBy = status(r)
	return r
}

// status derives the run status: any failed stage fails the run,
// rejected datasets and failed tables degrade it
func status(r *Report) (domain.RunStatus, []string) {
	for _, s := range r.Stages {
		if s.Status == StageStatusFailed {
			return domain.RunStatusFailed, nil
		}
	}

	var reasons []string
	for _, d := range r.Datasets {
		if d.Load != nil && d.Load.Status == loader.StatusRejected {
			reasons = append(reasons, "dataset "+d.Dataset+" rejected")
		}
	}
	for _, t := range r.Tables {
		if t.Status == transform.TableStatusFailed {
			reasons = append(reasons, "table "+t.Table+" kept previous version")
		}
	}
	if len(reasons) > 0 {
		return domain.RunStatusDegraded, reasons
	}
	return domain.RunStatusSucceeded, nil
}

// datasetSet keeps dataset reports in first-seen order, seeded by the run selection
type datasetSet struct {
	order []string
	byKey map[string]*DatasetReport
}

func newDatasetSet(seed []string) *datasetSet {
	s := &datasetSet{byKey: make(map[string]*DatasetReport)}
	for _, name := range seed {
		s.get(name)
	}
	return s
}

func (s *datasetSet) get(name string) *DatasetReport {
	if d, ok := s.byKey[name]; ok {
		return d
	}
	d := &DatasetReport{
		Dataset:      name,
		Drift:        make([]drift.Entry, 0),
		Remediations: make([]remediation.Action, 0),
	}
	s.byKey[name] = d
	s.order = append(s.order, name)
	return d
}

func (s *datasetSet) list() []DatasetReport {
	out := make([]DatasetReport, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.byKey[name])
	}
	return out
}

// SkipRemaining appends a skipped outcome for every stage not yet recorded, in stage order
func SkipRemaining(stages []StageOutcome) []StageOutcome {
	done := make(map[domain.Stage]bool, len(stages))
	for _, o := range stages {
		done[o.Stage] = true
	}
	for _, stage := range domain.Stages {
		if !done[stage] {
			stages = append(stages, StageOutcome{Stage: stage, Status: StageStatusSkipped})
		}
	}
	return stages
}
