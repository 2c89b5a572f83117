package domain

import (
	"strings"
	"time"
)

// RunStatus represents the lifecycle state of an ingestion run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	// RunStatusDegraded marks a run where some curated tables kept their previous version
	RunStatusDegraded RunStatus = "degraded"
	RunStatusFailed   RunStatus = "failed"
)

// Stage names a pipeline stage entry point
type Stage string

const (
	StageFreshness Stage = "detect_freshness"
	StageLoad      Stage = "load_raw"
	StageRemediate Stage = "remediate"
	StageTransform Stage = "transform"
	StageAggregate Stage = "aggregate"
)

// Stages lists the pipeline stages in execution order
var Stages = []Stage{StageFreshness, StageLoad, StageRemediate, StageTransform, StageAggregate}

// LogicalType is the declared type of an upstream column
type LogicalType string

const (
	TypeString    LogicalType = "string"
	TypeInteger   LogicalType = "integer"
	TypeFloat     LogicalType = "float"
	TypeBoolean   LogicalType = "boolean"
	TypeDate      LogicalType = "date"
	TypeTimestamp LogicalType = "timestamp"
)

// IsValidLogicalType checks if a logical type is supported by the loader
func IsValidLogicalType(t LogicalType) bool {
	switch t {
	case TypeString, TypeInteger, TypeFloat, TypeBoolean, TypeDate, TypeTimestamp:
		return true
	}
	return false
}

// RunContext is the explicit per-run state handed to every stage entry point.
// Stages never look up the current run from anywhere else.
type RunContext struct {
	RunID       string    `json:"run_id"`
	Environment string    `json:"environment"`
	RunGroup    string    `json:"run_group"`
	StartedAt   time.Time `json:"started_at"`
	// Datasets restricts the run to these datasets; empty means the whole catalog
	Datasets []string `json:"datasets,omitempty"`
	// FullReplace lists datasets to load in full-replace mode for this run only
	FullReplace []string `json:"full_replace,omitempty"`
	// Force skips the freshness gate and reloads every selected dataset
	Force bool `json:"force"`
}

// IsFullReplace reports whether dataset was requested in full-replace mode for this run
func (r RunContext) IsFullReplace(dataset string) bool {
	for _, d := range r.FullReplace {
		if d == dataset {
			return true
		}
	}
	return false
}

// NaturalKey joins natural key parts into the raw-layer key
func NaturalKey(parts ...string) string {
	return strings.Join(parts, NATURAL_KEY_SEPARATOR)
}

// SplitNaturalKey splits a raw-layer key into its parts
func SplitNaturalKey(key string) []string {
	return strings.Split(key, NATURAL_KEY_SEPARATOR)
}
