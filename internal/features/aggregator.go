package features

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/feral-file/gamebot/internal/adapter"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/metrics"
	"github.com/feral-file/gamebot/internal/store"
	"github.com/feral-file/gamebot/internal/store/schema"
)

// Result describes the snapshot an aggregation produced
type Result struct {
	SnapshotID   string    `json:"snapshot_id"`
	InputHash    string    `json:"input_hash"`
	ContentHash  string    `json:"content_hash"`
	CreatedAt    time.Time `json:"created_at"`
	CastawayRows int       `json:"castaway_rows"`
	EpisodeRows  int       `json:"episode_rows"`
	SeasonRows   int       `json:"season_rows"`
	// VerifiedAgainst is the latest earlier snapshot built from the same input; its content matched
	VerifiedAgainst string `json:"verified_against,omitempty"`
}

// Payload is the stored document of one feature row
type Payload struct {
	SnapshotID     string      `json:"snapshot_id"`
	IngestionRunID string      `json:"ingestion_run_id"`
	Features       interface{} `json:"features"`
}

// Aggregator materializes feature snapshots from the curated layer
//
//go:generate mockgen -source=aggregator.go -destination=../mocks/aggregator.go -package=mocks -mock_names=Aggregator=MockAggregator
type Aggregator interface {
	// Aggregate computes features from one consistent read of the curated layer and writes a new snapshot,
	// so the latest snapshot always reflects the latest curated state.
	// Returns domain.ErrNonDeterministicAggregation, writing nothing, when a snapshot built from
	// the same input has different content.
	Aggregate(ctx context.Context, run domain.RunContext) (*Result, error)
}

type aggregator struct {
	store store.Store
	jcs   adapter.JCS
	clock adapter.Clock
}

// NewAggregator creates a feature aggregator
func NewAggregator(st store.Store, jcs adapter.JCS, clock adapter.Clock) Aggregator {
	return &aggregator{store: st, jcs: jcs, clock: clock}
}

// hashedRow is one feature document with its canonical hash
type hashedRow struct {
	canonical []byte
	hash      string
}

// rawJSON embeds already canonical JSON without re-encoding it
type rawJSON []byte

func (r rawJSON) MarshalJSON() ([]byte, error) {
	return r, nil
}

// Aggregate computes and writes a feature snapshot
func (a *aggregator) Aggregate(ctx context.Context, run domain.RunContext) (*Result, error) {
	data, err := a.store.LoadCuratedData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load curated data: %w", err)
	}

	_, inputHash, err := adapter.CanonicalJSON(a.jcs, data)
	if err != nil {
		return nil, fmt.Errorf("failed to hash curated input: %w", err)
	}

	computed := Compute(data)

	castaways, err := hashAll(a.jcs, len(computed.Castaways), func(i int) interface{} { return computed.Castaways[i].Features })
	if err != nil {
		return nil, err
	}
	episodes, err := hashAll(a.jcs, len(computed.Episodes), func(i int) interface{} { return computed.Episodes[i].Features })
	if err != nil {
		return nil, err
	}
	seasons, err := hashAll(a.jcs, len(computed.Seasons), func(i int) interface{} { return computed.Seasons[i].Features })
	if err != nil {
		return nil, err
	}
	contentHash := hashContent(computed, castaways, episodes, seasons)

	previous, err := a.store.GetLatestFeatureSnapshotByInputHash(ctx, inputHash)
	if err != nil {
		return nil, err
	}
	verifiedAgainst := ""
	if previous != nil {
		if previous.ContentHash != contentHash {
			return nil, fmt.Errorf("%w: input %s produced content %s, snapshot %s has %s",
				domain.ErrNonDeterministicAggregation, inputHash, contentHash, previous.ID, previous.ContentHash)
		}
		verifiedAgainst = previous.ID
		logger.InfoCtx(ctx, "Curated input seen before, feature content matches",
			zap.String("previousSnapshotId", previous.ID),
			zap.String("inputHash", inputHash),
		)
	}

	now := a.clock.Now()
	snapshotID := ulid.MustNewDefault(now).String()

	input := store.CreateFeatureSnapshotInput{
		Snapshot: schema.FeatureSnapshot{
			ID:             snapshotID,
			IngestionRunID: run.RunID,
			CreatedAt:      now,
			InputHash:      inputHash,
			ContentHash:    contentHash,
			CastawayRows:   len(computed.Castaways),
			EpisodeRows:    len(computed.Episodes),
			SeasonRows:     len(computed.Seasons),
		},
		CastawayFeatures: make([]schema.CastawayFeature, 0, len(computed.Castaways)),
		EpisodeFeatures:  make([]schema.CastawayEpisodeFeature, 0, len(computed.Episodes)),
		SeasonFeatures:   make([]schema.SeasonFeature, 0, len(computed.Seasons)),
	}

	for i, row := range computed.Castaways {
		payload, err := a.payload(snapshotID, run.RunID, castaways[i])
		if err != nil {
			return nil, err
		}
		input.CastawayFeatures = append(input.CastawayFeatures, schema.CastawayFeature{
			SnapshotID:   snapshotID,
			CastawayKey:  row.CastawayKey,
			Payload:      payload,
			FeaturesHash: castaways[i].hash,
		})
	}
	for i, row := range computed.Episodes {
		payload, err := a.payload(snapshotID, run.RunID, episodes[i])
		if err != nil {
			return nil, err
		}
		input.EpisodeFeatures = append(input.EpisodeFeatures, schema.CastawayEpisodeFeature{
			SnapshotID:   snapshotID,
			CastawayKey:  row.CastawayKey,
			EpisodeKey:   row.EpisodeKey,
			SeasonKey:    row.SeasonKey,
			Payload:      payload,
			FeaturesHash: episodes[i].hash,
		})
	}
	for i, row := range computed.Seasons {
		payload, err := a.payload(snapshotID, run.RunID, seasons[i])
		if err != nil {
			return nil, err
		}
		input.SeasonFeatures = append(input.SeasonFeatures, schema.SeasonFeature{
			SnapshotID:   snapshotID,
			SeasonKey:    row.SeasonKey,
			Payload:      payload,
			FeaturesHash: seasons[i].hash,
		})
	}

	if err := a.store.CreateFeatureSnapshot(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to write feature snapshot: %w", err)
	}
	metrics.ObserveSnapshotWritten()

	logger.InfoCtx(ctx, "Feature snapshot written",
		zap.String("snapshotId", snapshotID),
		zap.String("inputHash", inputHash),
		zap.String("contentHash", contentHash),
		zap.Int("castaways", len(computed.Castaways)),
		zap.Int("episodes", len(computed.Episodes)),
		zap.Int("seasons", len(computed.Seasons)),
	)

	return &Result{
		SnapshotID:   snapshotID,
		InputHash:    inputHash,
		ContentHash:  contentHash,
		CreatedAt:    now,
		CastawayRows: len(computed.Castaways),
		EpisodeRows:  len(computed.Episodes),
		SeasonRows:   len(computed.Seasons),

		VerifiedAgainst: verifiedAgainst,
	}, nil
}

// payload wraps canonical features with the snapshot identity.
// The features bytes are embedded as-is so the stored document hashes to features_hash.
func (a *aggregator) payload(snapshotID, runID string, row hashedRow) (datatypes.JSON, error) {
	canonical, _, err := adapter.CanonicalJSON(a.jcs, Payload{
		SnapshotID:     snapshotID,
		IngestionRunID: runID,
		Features:       rawJSON(row.canonical),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build feature payload: %w", err)
	}
	return datatypes.JSON(canonical), nil
}

func hashAll(jcs adapter.JCS, n int, features func(i int) interface{}) ([]hashedRow, error) {
	out := make([]hashedRow, n)
	for i := 0; i < n; i++ {
		canonical, hash, err := adapter.CanonicalJSON(jcs, features(i))
		if err != nil {
			return nil, fmt.Errorf("failed to canonicalize features: %w", err)
		}
		out[i] = hashedRow{canonical: canonical, hash: hash}
	}
	return out, nil
}

// hashContent hashes every feature hash together with its keys, in row order
func hashContent(c *Computed, castaways, episodes, seasons []hashedRow) string {
	h := sha256.New()
	line := func(parts ...string) {
		for _, p := range parts {
			h.Write([]byte(p))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{'\n'})
	}
	key := func(k int64) string { return strconv.FormatInt(k, 10) }

	for i, r := range c.Castaways {
		line("castaway", key(r.CastawayKey), castaways[i].hash)
	}
	for i, r := range c.Episodes {
		line("episode", key(r.CastawayKey), key(r.EpisodeKey), episodes[i].hash)
	}
	for i, r := range c.Seasons {
		line("season", key(r.SeasonKey), seasons[i].hash)
	}
	return hex.EncodeToString(h.Sum(nil))
}
