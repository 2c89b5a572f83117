package schema

import "time"

// RemediationStrategy names the strategy that settled a dangling reference
type RemediationStrategy string

const (
	// RemediationStrategyDirect restores an upstream value that resolves again
	RemediationStrategyDirect     RemediationStrategy = "direct"
	RemediationStrategyContextual RemediationStrategy = "contextual"
	RemediationStrategyFallback   RemediationStrategy = "fallback"
	RemediationStrategyFuzzy      RemediationStrategy = "fuzzy"
	// RemediationStrategyUnresolved means the reference was nulled
	RemediationStrategyUnresolved RemediationStrategy = "unresolved"
)

// RemediationLog represents the remediation_log table - audit trail of every reference repair
type RemediationLog struct {
	ID             int64               `gorm:"column:id;primaryKey;autoIncrement"`
	IngestionRunID string              `gorm:"column:ingestion_run_id;not null;type:text"`
	Dataset        string              `gorm:"column:dataset;not null;type:text"`
	NaturalKey     string              `gorm:"column:natural_key;not null;type:text"`
	Column         string              `gorm:"column:column_name;not null;type:text"`
	Context        *string             `gorm:"column:context;type:text"`
	Before         *string             `gorm:"column:before_value;type:text"`
	After          *string             `gorm:"column:after_value;type:text"`
	Strategy       RemediationStrategy `gorm:"column:strategy;not null;type:text"`
	// Confidence is the fuzzy similarity, 1 for deterministic strategies, 0 when unresolved
	Confidence float64 `gorm:"column:confidence;not null"`
	// MatchedPair records the compared display values for fuzzy acceptances
	MatchedPair *string   `gorm:"column:matched_pair;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the RemediationLog model
func (RemediationLog) TableName() string {
	return "remediation_log"
}
