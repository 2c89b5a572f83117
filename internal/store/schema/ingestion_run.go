package schema

import (
	"time"

	"github.com/feral-file/gamebot/internal/domain"
)

// IngestionRun represents the ingestion_runs table - one row per pipeline execution attempt
type IngestionRun struct {
	// ID is a ULID assigned when the run starts
	ID          string `gorm:"column:id;primaryKey;type:text"`
	Environment string `gorm:"column:environment;not null;type:text"`
	RunGroup    string `gorm:"column:run_group;not null;type:text"`
	// SourceRevision summarizes the upstream revisions observed by the run
	SourceRevision *string          `gorm:"column:source_revision;type:text"`
	StartedAt      time.Time        `gorm:"column:started_at;not null;type:timestamptz"`
	EndedAt        *time.Time       `gorm:"column:ended_at;type:timestamptz"`
	Status         domain.RunStatus `gorm:"column:status;not null;type:text"`
	Notes          *string          `gorm:"column:notes;type:text"`
	CreatedAt      time.Time        `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the IngestionRun model
func (IngestionRun) TableName() string {
	return "ingestion_runs"
}
