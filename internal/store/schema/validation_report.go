package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/gamebot/internal/domain"
)

// ValidationReport represents the validation_reports table - the terminal report of each run
type ValidationReport struct {
	IngestionRunID string           `gorm:"column:ingestion_run_id;primaryKey;type:text"`
	Status         domain.RunStatus `gorm:"column:status;not null;type:text"`
	Report         datatypes.JSON   `gorm:"column:report;not null;type:jsonb"`
	CreatedAt      time.Time        `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ValidationReport model
func (ValidationReport) TableName() string {
	return "validation_reports"
}
