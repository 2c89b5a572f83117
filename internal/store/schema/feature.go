package schema

import (
	"time"

	"gorm.io/datatypes"
)

// FeatureSnapshot represents the feature_snapshots table - one immutable materialization of features
type FeatureSnapshot struct {
	ID             string    `gorm:"column:id;primaryKey;type:text"`
	IngestionRunID string    `gorm:"column:ingestion_run_id;not null;type:text"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;type:timestamptz"`
	// InputHash is the hash of the canonical curated input the features were computed from
	InputHash string `gorm:"column:input_hash;not null;type:text"`
	// ContentHash is the hash over every payload features hash, in key order
	ContentHash  string `gorm:"column:content_hash;not null;type:text"`
	CastawayRows int    `gorm:"column:castaway_rows;not null"`
	EpisodeRows  int    `gorm:"column:episode_rows;not null"`
	SeasonRows   int    `gorm:"column:season_rows;not null"`
}

// TableName specifies the table name for the FeatureSnapshot model
func (FeatureSnapshot) TableName() string {
	return "feature_snapshots"
}

// CastawayFeature holds terminal features of one castaway
type CastawayFeature struct {
	SnapshotID   string         `gorm:"column:snapshot_id;primaryKey;type:text"`
	CastawayKey  int64          `gorm:"column:castaway_key;primaryKey"`
	Payload      datatypes.JSON `gorm:"column:payload;not null;type:jsonb"`
	FeaturesHash string         `gorm:"column:features_hash;not null;type:text"`
}

func (CastawayFeature) TableName() string { return "castaway_features" }

// CastawayEpisodeFeature holds cumulative features of one castaway as of one episode
type CastawayEpisodeFeature struct {
	SnapshotID   string         `gorm:"column:snapshot_id;primaryKey;type:text"`
	CastawayKey  int64          `gorm:"column:castaway_key;primaryKey"`
	EpisodeKey   int64          `gorm:"column:episode_key;primaryKey"`
	SeasonKey    int64          `gorm:"column:season_key;not null"`
	Payload      datatypes.JSON `gorm:"column:payload;not null;type:jsonb"`
	FeaturesHash string         `gorm:"column:features_hash;not null;type:text"`
}

func (CastawayEpisodeFeature) TableName() string { return "castaway_episode_features" }

// SeasonFeature holds terminal features of one season
type SeasonFeature struct {
	SnapshotID   string         `gorm:"column:snapshot_id;primaryKey;type:text"`
	SeasonKey    int64          `gorm:"column:season_key;primaryKey"`
	Payload      datatypes.JSON `gorm:"column:payload;not null;type:jsonb"`
	FeaturesHash string         `gorm:"column:features_hash;not null;type:text"`
}

func (SeasonFeature) TableName() string { return "season_features" }
