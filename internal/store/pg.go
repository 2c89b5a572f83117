package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/store/schema"
)

// identifierPattern guards identifiers interpolated into SQL
var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type pgStore struct {
	db *gorm.DB
}

func hasDBResolver(db *gorm.DB) bool {
	return db != nil && db.Callback().Query().Get("gorm:db_resolver") != nil
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// primary returns a session pinned to the primary when a read replica is registered.
// Reads that must observe this run's writes go through it.
func (s *pgStore) primary(ctx context.Context) *gorm.DB {
	db := s.db.WithContext(ctx)
	if hasDBResolver(s.db) {
		db = db.Clauses(dbresolver.Write)
	}
	return db
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// UseReadReplica registers a read replica on db. Plain reads go to the replica;
// writes and reads through primary stay on the source. An empty dsn is a no-op.
func UseReadReplica(db *gorm.DB, readDSN string) error {
	if readDSN == "" {
		return nil
	}
	err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: []gorm.Dialector{postgres.Open(readDSN)},
		Policy:   dbresolver.RandomPolicy{},
	}))
	if err != nil {
		return fmt.Errorf("failed to register read replica: %w", err)
	}
	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays under
// PostgreSQL's limit of 65535 parameters per statement.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000 // Total parameter headroom for batch-level overhead

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return max(totalRecords, 1)
	}

	return safeBatchSize
}

// chunkStrings splits keys into chunks of at most size
func chunkStrings(keys []string, size int) [][]string {
	var chunks [][]string
	for size < len(keys) {
		keys, chunks = keys[size:], append(chunks, keys[:size])
	}
	if len(keys) > 0 {
		chunks = append(chunks, keys)
	}
	return chunks
}

func rawTable(dataset string) (string, error) {
	if !identifierPattern.MatchString(dataset) {
		return "", fmt.Errorf("invalid dataset name %q", dataset)
	}
	return "raw_" + dataset, nil
}

// =============================================================================
// Ingestion runs
// =============================================================================

// CreateIngestionRun records the start of a run
func (s *pgStore) CreateIngestionRun(ctx context.Context, input CreateIngestionRunInput) error {
	run := schema.IngestionRun{
		ID:          input.ID,
		Environment: input.Environment,
		RunGroup:    input.RunGroup,
		StartedAt:   input.StartedAt,
		Status:      domain.RunStatusRunning,
		Notes:       input.Notes,
	}

	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("failed to create ingestion run: %w", err)
	}

	return nil
}

// FinishIngestionRun stamps the terminal status of a run
func (s *pgStore) FinishIngestionRun(ctx context.Context, input FinishIngestionRunInput) error {
	updates := map[string]interface{}{
		"status":     input.Status,
		"ended_at":   input.EndedAt,
		"updated_at": time.Now().UTC(),
	}
	if input.SourceRevision != nil {
		updates["source_revision"] = *input.SourceRevision
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	result := s.db.WithContext(ctx).
		Model(&schema.IngestionRun{}).
		Where("id = ?", input.ID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to finish ingestion run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ingestion run not found: %s", input.ID)
	}

	return nil
}

// GetIngestionRun retrieves a run by ID
func (s *pgStore) GetIngestionRun(ctx context.Context, runID string) (*schema.IngestionRun, error) {
	var run schema.IngestionRun

	err := s.db.WithContext(ctx).Where("id = ?", runID).First(&run).Error
	if err == nil {
		return &run, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get ingestion run: %w", err)
	}
	if !hasDBResolver(s.db) {
		return nil, nil
	}

	// Replica can lag behind primary; retry on primary before returning not found.
	err = s.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("id = ?", runID).
		First(&run).Error
	if err == nil {
		return &run, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get ingestion run: %w", err)
}

// =============================================================================
// Fingerprints and raw layer
// =============================================================================

// GetDatasetFingerprint retrieves the last committed fingerprint of a dataset
func (s *pgStore) GetDatasetFingerprint(ctx context.Context, dataset string) (*schema.DatasetFingerprint, error) {
	var fp schema.DatasetFingerprint
	err := s.primary(ctx).Where("dataset = ?", dataset).First(&fp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dataset fingerprint: %w", err)
	}
	return &fp, nil
}

// EnsureRawTable creates the raw table of a dataset when missing
func (s *pgStore) EnsureRawTable(ctx context.Context, dataset string) error {
	table, err := rawTable(dataset)
	if err != nil {
		return err
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
    natural_key TEXT PRIMARY KEY,
    payload JSONB NOT NULL,
    source_hash TEXT NOT NULL,
    ingestion_run_id TEXT NOT NULL,
    first_ingestion_run_id TEXT NOT NULL,
    ingested_at TIMESTAMPTZ NOT NULL,
    upstream JSONB
);
ALTER TABLE %[1]s ADD COLUMN IF NOT EXISTS upstream JSONB;
CREATE INDEX IF NOT EXISTS idx_%[1]s_ingestion_run_id ON %[1]s (ingestion_run_id);`, table)

	if err := s.db.WithContext(ctx).Exec(ddl).Error; err != nil {
		return fmt.Errorf("failed to ensure raw table %s: %w", table, err)
	}
	return nil
}

// MergeRawRecords inserts new keys, updates keys whose source hash changed and leaves the rest untouched.
// Stored keys absent from the extract are only deleted in full-replace mode.
// The fingerprint is committed in the same transaction.
func (s *pgStore) MergeRawRecords(ctx context.Context, input MergeRawRecordsInput) (*MergeRawRecordsResult, error) {
	table, err := rawTable(input.Dataset)
	if err != nil {
		return nil, err
	}

	var result MergeRawRecordsResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Load stored hashes, locking the table against a concurrent writer
		if err := tx.Exec(fmt.Sprintf("LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE", table)).Error; err != nil {
			return fmt.Errorf("failed to lock raw table: %w", err)
		}

		var existing []struct {
			NaturalKey string
			SourceHash string
		}
		if err := tx.Table(table).Select("natural_key, source_hash").Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to load stored hashes: %w", err)
		}
		stored := make(map[string]string, len(existing))
		for _, e := range existing {
			stored[e.NaturalKey] = e.SourceHash
		}

		// 2. Partition the extract
		seen := make(map[string]bool, len(input.Records))
		upserts := make([]schema.RawRecord, 0, len(input.Records))
		for _, r := range input.Records {
			if seen[r.NaturalKey] {
				return fmt.Errorf("%w: %s: duplicate natural key %q", domain.ErrUniquenessViolation, input.Dataset, r.NaturalKey)
			}
			seen[r.NaturalKey] = true

			hash, ok := stored[r.NaturalKey]
			switch {
			case !ok:
				result.Inserted++
			case hash != r.SourceHash:
				result.Updated++
			default:
				result.Unchanged++
				continue
			}

			upserts = append(upserts, schema.RawRecord{
				NaturalKey:          r.NaturalKey,
				Payload:             []byte(r.Payload),
				SourceHash:          r.SourceHash,
				IngestionRunID:      input.RunID,
				FirstIngestionRunID: input.RunID,
				IngestedAt:          input.IngestedAt,
			})
		}

		// 3. Upsert new and changed rows; first_ingestion_run_id is kept on update
		// and the upstream values of an earlier remediation are dropped with the old payload
		if len(upserts) > 0 {
			batchSize := calculateSafeBatchSize(len(upserts), 7)
			if input.BatchSize > 0 && input.BatchSize < batchSize {
				batchSize = input.BatchSize
			}
			if err := tx.Table(table).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "natural_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"payload", "source_hash", "ingestion_run_id", "ingested_at", "upstream"}),
			}).CreateInBatches(&upserts, batchSize).Error; err != nil {
				return fmt.Errorf("failed to upsert raw records: %w", err)
			}
		}

		// 4. Full replace removes keys the upstream no longer ships
		if input.FullReplace {
			var absent []string
			for key := range stored {
				if !seen[key] {
					absent = append(absent, key)
				}
			}
			for _, chunk := range chunkStrings(absent, 1000) {
				res := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE natural_key IN ?", table), chunk)
				if res.Error != nil {
					return fmt.Errorf("failed to delete absent raw records: %w", res.Error)
				}
				result.Deleted += int(res.RowsAffected)
			}
		}

		// 5. Commit the fingerprint together with the data it describes
		fp := schema.DatasetFingerprint{
			Dataset:        input.Dataset,
			Signature:      input.Fingerprint.Signature,
			SourceRevision: input.Fingerprint.SourceRevision,
			ObservedAt:     input.Fingerprint.ObservedAt,
			IngestionRunID: input.RunID,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dataset"}},
			DoUpdates: clause.AssignmentColumns([]string{"signature", "source_revision", "observed_at", "ingestion_run_id", "updated_at"}),
		}).Create(&fp).Error; err != nil {
			return fmt.Errorf("failed to upsert dataset fingerprint: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "raw records merged",
		zap.String("dataset", input.Dataset),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("deleted", result.Deleted))

	return &result, nil
}

// GetRawRecords retrieves every raw row of a dataset ordered by natural key.
// A dataset that was never loaded has no rows.
func (s *pgStore) GetRawRecords(ctx context.Context, dataset string) ([]schema.RawRecord, error) {
	table, err := rawTable(dataset)
	if err != nil {
		return nil, err
	}

	var exists bool
	if err := s.primary(ctx).Raw("SELECT to_regclass(?) IS NOT NULL", table).Scan(&exists).Error; err != nil {
		return nil, fmt.Errorf("failed to check raw table %s: %w", table, err)
	}
	if !exists {
		return []schema.RawRecord{}, nil
	}

	var records []schema.RawRecord
	if err := s.primary(ctx).Table(table).Order("natural_key").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get raw records of %s: %w", dataset, err)
	}
	return records, nil
}

// ApplyRemediations patches raw reference columns and writes the remediation log in one transaction.
// The first patch of a column copies its extracted value into upstream, so later runs resolve
// from the extracted value while the source hash still matches the extract.
func (s *pgStore) ApplyRemediations(ctx context.Context, input ApplyRemediationsInput) error {
	if len(input.Patches) == 0 && len(input.Logs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range input.Patches {
			table, err := rawTable(p.Dataset)
			if err != nil {
				return err
			}
			value, err := json.Marshal(p.Value)
			if err != nil {
				return fmt.Errorf("failed to marshal patch value: %w", err)
			}

			res := tx.Exec(
				fmt.Sprintf(`UPDATE %s SET
    upstream = jsonb_set(COALESCE(upstream, '{}'::jsonb), ARRAY[?]::text[], COALESCE(upstream -> ?, payload -> ?, 'null'::jsonb), true),
    payload = jsonb_set(payload, ARRAY[?]::text[], ?::jsonb, true)
WHERE natural_key = ?`, table),
				p.Column, p.Column, p.Column, p.Column, string(value), p.NaturalKey)
			if res.Error != nil {
				return fmt.Errorf("failed to patch %s.%s: %w", table, p.Column, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("raw row %q not found in %s", p.NaturalKey, table)
			}
		}

		if len(input.Logs) > 0 {
			batchSize := calculateSafeBatchSize(len(input.Logs), 11)
			if err := tx.CreateInBatches(&input.Logs, batchSize).Error; err != nil {
				return fmt.Errorf("failed to write remediation log: %w", err)
			}
		}

		return nil
	})
}

// GetRemediationLogs retrieves the remediation log of a run
func (s *pgStore) GetRemediationLogs(ctx context.Context, runID string) ([]schema.RemediationLog, error) {
	var logs []schema.RemediationLog
	err := s.primary(ctx).
		Where("ingestion_run_id = ?", runID).
		Order("id").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get remediation logs: %w", err)
	}
	return logs, nil
}

// =============================================================================
// Curated layer
// =============================================================================

// ReplaceCuratedTable deletes and reloads a curated table inside one transaction.
// Readers see either the previous or the new content. Any error leaves the previous content intact.
func (s *pgStore) ReplaceCuratedTable(ctx context.Context, table string, rows interface{}) error {
	if !schema.IsCuratedTable(table) {
		return fmt.Errorf("unknown curated table %q", table)
	}
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("rows of %s must be a slice, got %T", table, rows)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		if v.Len() == 0 {
			return nil
		}

		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		fields := max(v.Type().Elem().NumField(), 1)
		if err := tx.Table(table).CreateInBatches(ptr.Interface(), calculateSafeBatchSize(v.Len(), fields)).Error; err != nil {
			return fmt.Errorf("failed to load %s: %w", table, err)
		}
		return nil
	})
}

// GetCuratedKeys retrieves the surrogate keys currently stored in a curated table
func (s *pgStore) GetCuratedKeys(ctx context.Context, table string, keyColumn string) ([]int64, error) {
	if !schema.IsCuratedTable(table) || !identifierPattern.MatchString(keyColumn) {
		return nil, fmt.Errorf("invalid curated key %s.%s", table, keyColumn)
	}

	var keys []int64
	if err := s.primary(ctx).Table(table).Order(keyColumn).Pluck(keyColumn, &keys).Error; err != nil {
		return nil, fmt.Errorf("failed to get keys of %s: %w", table, err)
	}
	return keys, nil
}

// LoadCuratedData reads the whole curated layer inside one repeatable-read transaction
func (s *pgStore) LoadCuratedData(ctx context.Context) (*CuratedData, error) {
	var data CuratedData

	err := s.primary(ctx).Transaction(func(tx *gorm.DB) error {
		reads := []struct {
			dest  interface{}
			order string
		}{
			{&data.Castaways, "castaway_key"},
			{&data.Seasons, "season_key"},
			{&data.Episodes, "season_key, episode"},
			{&data.Advantages, "advantage_key"},
			{&data.Challenges, "challenge_key"},
			{&data.CastawaySeasons, "castaway_key, season_key"},
			{&data.ChallengeResults, "challenge_key, castaway_key"},
			{&data.Votes, "episode_key, voter_castaway_key, vote_order"},
			{&data.AdvantageEvents, "advantage_key, sequence_id"},
			{&data.TribeMemberships, "castaway_key, episode_key"},
			{&data.Confessionals, "castaway_key, episode_key"},
		}
		for _, r := range reads {
			if err := tx.Order(r.order).Find(r.dest).Error; err != nil {
				return fmt.Errorf("failed to read curated table: %w", err)
			}
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}

	return &data, nil
}

// =============================================================================
// Feature layer
// =============================================================================

// GetLatestFeatureSnapshotByInputHash retrieves the newest snapshot built from inputHash
func (s *pgStore) GetLatestFeatureSnapshotByInputHash(ctx context.Context, inputHash string) (*schema.FeatureSnapshot, error) {
	var snapshot schema.FeatureSnapshot
	err := s.primary(ctx).
		Where("input_hash = ?", inputHash).
		Order("created_at DESC, id DESC").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feature snapshot: %w", err)
	}
	return &snapshot, nil
}

// CreateFeatureSnapshot writes a snapshot and all of its payloads in one transaction.
// Snapshots are insert-only; an existing ID is an error.
func (s *pgStore) CreateFeatureSnapshot(ctx context.Context, input CreateFeatureSnapshotInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&input.Snapshot).Error; err != nil {
			return fmt.Errorf("failed to create feature snapshot: %w", err)
		}

		if len(input.CastawayFeatures) > 0 {
			if err := tx.CreateInBatches(&input.CastawayFeatures, calculateSafeBatchSize(len(input.CastawayFeatures), 4)).Error; err != nil {
				return fmt.Errorf("failed to create castaway features: %w", err)
			}
		}
		if len(input.EpisodeFeatures) > 0 {
			if err := tx.CreateInBatches(&input.EpisodeFeatures, calculateSafeBatchSize(len(input.EpisodeFeatures), 6)).Error; err != nil {
				return fmt.Errorf("failed to create castaway episode features: %w", err)
			}
		}
		if len(input.SeasonFeatures) > 0 {
			if err := tx.CreateInBatches(&input.SeasonFeatures, calculateSafeBatchSize(len(input.SeasonFeatures), 4)).Error; err != nil {
				return fmt.Errorf("failed to create season features: %w", err)
			}
		}

		return nil
	})
}

// GetCastawayFeatures retrieves castaway payloads of a snapshot ordered by key
func (s *pgStore) GetCastawayFeatures(ctx context.Context, snapshotID string) ([]schema.CastawayFeature, error) {
	var features []schema.CastawayFeature
	err := s.primary(ctx).
		Where("snapshot_id = ?", snapshotID).
		Order("castaway_key").
		Find(&features).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get castaway features: %w", err)
	}
	return features, nil
}

// =============================================================================
// Validation reports
// =============================================================================

// SaveValidationReport upserts the report of a run
func (s *pgStore) SaveValidationReport(ctx context.Context, runID string, status domain.RunStatus, report json.RawMessage) error {
	row := schema.ValidationReport{
		IngestionRunID: runID,
		Status:         status,
		Report:         []byte(report),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ingestion_run_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "report"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save validation report: %w", err)
	}
	return nil
}

// GetValidationReport retrieves the report of a run
func (s *pgStore) GetValidationReport(ctx context.Context, runID string) (*schema.ValidationReport, error) {
	var row schema.ValidationReport
	err := s.primary(ctx).Where("ingestion_run_id = ?", runID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get validation report: %w", err)
	}
	return &row, nil
}
