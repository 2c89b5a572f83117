package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/store/schema"
)

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// =============================================================================
	// Ingestion runs
	// =============================================================================

	// CreateIngestionRun records the start of a run
	CreateIngestionRun(ctx context.Context, input CreateIngestionRunInput) error
	// FinishIngestionRun stamps the terminal status of a run
	FinishIngestionRun(ctx context.Context, input FinishIngestionRunInput) error
	// GetIngestionRun retrieves a run by ID, nil when missing
	GetIngestionRun(ctx context.Context, runID string) (*schema.IngestionRun, error)

	// AcquireRunLock takes the single-writer lease of a run group.
	// Returns false when another holder owns an unexpired lease.
	AcquireRunLock(ctx context.Context, group string, holder string, ttl time.Duration, now time.Time) (bool, error)
	// ReleaseRunLock releases the lease if holder still owns it
	ReleaseRunLock(ctx context.Context, group string, holder string) error

	// =============================================================================
	// Fingerprints and raw layer
	// =============================================================================

	// GetDatasetFingerprint retrieves the last committed fingerprint, nil when missing
	GetDatasetFingerprint(ctx context.Context, dataset string) (*schema.DatasetFingerprint, error)
	// EnsureRawTable creates the raw table of a dataset when missing
	EnsureRawTable(ctx context.Context, dataset string) error
	// MergeRawRecords merges an extract into the raw table and commits its fingerprint in one transaction
	MergeRawRecords(ctx context.Context, input MergeRawRecordsInput) (*MergeRawRecordsResult, error)
	// GetRawRecords retrieves every raw row of a dataset ordered by natural key
	GetRawRecords(ctx context.Context, dataset string) ([]schema.RawRecord, error)
	// ApplyRemediations patches raw reference columns and writes the remediation log in one transaction
	ApplyRemediations(ctx context.Context, input ApplyRemediationsInput) error
	// GetRemediationLogs retrieves the remediation log of a run
	GetRemediationLogs(ctx context.Context, runID string) ([]schema.RemediationLog, error)

	// =============================================================================
	// Curated layer
	// =============================================================================

	// ReplaceCuratedTable atomically replaces the whole content of a curated table.
	// rows must be a slice of the table's model.
	ReplaceCuratedTable(ctx context.Context, table string, rows interface{}) error
	// GetCuratedKeys retrieves the surrogate keys currently stored in a curated table
	GetCuratedKeys(ctx context.Context, table string, keyColumn string) ([]int64, error)
	// LoadCuratedData reads the whole curated layer in one consistent snapshot
	LoadCuratedData(ctx context.Context) (*CuratedData, error)

	// =============================================================================
	// Feature layer
	// =============================================================================

	// GetLatestFeatureSnapshotByInputHash retrieves the newest snapshot built from inputHash, nil when missing
	GetLatestFeatureSnapshotByInputHash(ctx context.Context, inputHash string) (*schema.FeatureSnapshot, error)
	// CreateFeatureSnapshot writes a snapshot and all of its payloads in one transaction
	CreateFeatureSnapshot(ctx context.Context, input CreateFeatureSnapshotInput) error
	// GetCastawayFeatures retrieves castaway payloads of a snapshot ordered by key
	GetCastawayFeatures(ctx context.Context, snapshotID string) ([]schema.CastawayFeature, error)

	// =============================================================================
	// Validation reports
	// =============================================================================

	// SaveValidationReport upserts the report of a run
	SaveValidationReport(ctx context.Context, runID string, status domain.RunStatus, report json.RawMessage) error
	// GetValidationReport retrieves the report of a run, nil when missing
	GetValidationReport(ctx context.Context, runID string) (*schema.ValidationReport, error)
}

// CreateIngestionRunInput represents the input for creating an ingestion run
type CreateIngestionRunInput struct {
	ID          string
	Environment string
	RunGroup    string
	StartedAt   time.Time
	Notes       *string
}

// FinishIngestionRunInput represents the input for finishing an ingestion run
type FinishIngestionRunInput struct {
	ID             string
	Status         domain.RunStatus
	EndedAt        time.Time
	SourceRevision *string
	Notes          *string
}

// RawRecordInput is one coerced extract row to merge
type RawRecordInput struct {
	NaturalKey string
	Payload    json.RawMessage
	SourceHash string
}

// FingerprintInput is the fingerprint committed with a successful merge
type FingerprintInput struct {
	Signature      string
	SourceRevision *string
	ObservedAt     time.Time
}

// MergeRawRecordsInput represents the input for merging an extract into the raw layer
type MergeRawRecordsInput struct {
	Dataset    string
	RunID      string
	IngestedAt time.Time
	Records    []RawRecordInput
	// FullReplace deletes stored keys absent from Records
	FullReplace bool
	Fingerprint FingerprintInput
	// BatchSize caps rows per insert statement; 0 uses the largest safe size
	BatchSize int
}

// MergeRawRecordsResult reports what the merge did
type MergeRawRecordsResult struct {
	Inserted  int
	Updated   int
	Unchanged int
	Deleted   int
}

// RawPatch sets one payload column of one raw row. A nil Value writes JSON null.
type RawPatch struct {
	Dataset    string
	NaturalKey string
	Column     string
	Value      interface{}
}

// ApplyRemediationsInput represents the input for applying remediation results
type ApplyRemediationsInput struct {
	Patches []RawPatch
	Logs    []schema.RemediationLog
}

// CuratedData is the whole curated layer as read by the feature aggregator
type CuratedData struct {
	Castaways        []schema.DimCastaway
	Seasons          []schema.DimSeason
	Episodes         []schema.DimEpisode
	Advantages       []schema.DimAdvantage
	Challenges       []schema.DimChallenge
	CastawaySeasons  []schema.BridgeCastawaySeason
	ChallengeResults []schema.FactChallengeResult
	Votes            []schema.FactVote
	AdvantageEvents  []schema.FactAdvantageEvent
	TribeMemberships []schema.FactTribeMembership
	Confessionals    []schema.FactConfessional
}

// CreateFeatureSnapshotInput represents the input for writing a feature snapshot
type CreateFeatureSnapshotInput struct {
	Snapshot         schema.FeatureSnapshot
	CastawayFeatures []schema.CastawayFeature
	EpisodeFeatures  []schema.CastawayEpisodeFeature
	SeasonFeatures   []schema.SeasonFeature
}
