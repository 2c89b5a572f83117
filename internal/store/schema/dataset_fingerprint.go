package schema

import "time"

// DatasetFingerprint represents the dataset_fingerprints table - the last loaded content signature per dataset
type DatasetFingerprint struct {
	Dataset string `gorm:"column:dataset;primaryKey;type:text"`
	// Signature is the hex sha256 of the normalized extract bytes
	Signature      string    `gorm:"column:signature;not null;type:text"`
	SourceRevision *string   `gorm:"column:source_revision;type:text"`
	ObservedAt     time.Time `gorm:"column:observed_at;not null;type:timestamptz"`
	IngestionRunID string    `gorm:"column:ingestion_run_id;not null;type:text"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the DatasetFingerprint model
func (DatasetFingerprint) TableName() string {
	return "dataset_fingerprints"
}
