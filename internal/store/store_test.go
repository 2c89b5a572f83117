package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

// createTestRun creates a running ingestion run and returns its ID
func createTestRun(t *testing.T, store Store) string {
	t.Helper()

	runID := ulid.Make().String()
	err := store.CreateIngestionRun(context.Background(), CreateIngestionRunInput{
		ID:          runID,
		Environment: "test",
		RunGroup:    domain.DEFAULT_RUN_GROUP,
		StartedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	return runID
}

// buildRawRecord creates a raw record input with a payload built from kv pairs
func buildRawRecord(key string, hash string, kv ...interface{}) RawRecordInput {
	payload := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		payload[kv[i].(string)] = kv[i+1]
	}
	raw, _ := json.Marshal(payload)
	return RawRecordInput{
		NaturalKey: key,
		Payload:    raw,
		SourceHash: hash,
	}
}

// buildMergeInput creates a merge input for the castaways test dataset
func buildMergeInput(dataset, runID, signature string, records ...RawRecordInput) MergeRawRecordsInput {
	return MergeRawRecordsInput{
		Dataset:    dataset,
		RunID:      runID,
		IngestedAt: time.Now().UTC(),
		Records:    records,
		Fingerprint: FingerprintInput{
			Signature:  signature,
			ObservedAt: time.Now().UTC(),
		},
	}
}

func rawKeys(records []schema.RawRecord) []string {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.NaturalKey)
	}
	return keys
}

// =============================================================================
// Ingestion runs
// =============================================================================

func testIngestionRuns(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("create and finish run", func(t *testing.T) {
		notes := "manual"
		runID := ulid.Make().String()
		startedAt := time.Now().UTC().Truncate(time.Microsecond)

		err := store.CreateIngestionRun(ctx, CreateIngestionRunInput{
			ID:          runID,
			Environment: "test",
			RunGroup:    "survivor",
			StartedAt:   startedAt,
			Notes:       &notes,
		})
		require.NoError(t, err)

		run, err := store.GetIngestionRun(ctx, runID)
		require.NoError(t, err)
		require.NotNil(t, run)
		assert.Equal(t, domain.RunStatusRunning, run.Status)
		assert.Equal(t, "survivor", run.RunGroup)
		assert.Nil(t, run.EndedAt)
		assert.True(t, startedAt.Equal(run.StartedAt))

		revision := "castaways@abc"
		endedAt := startedAt.Add(time.Minute)
		err = store.FinishIngestionRun(ctx, FinishIngestionRunInput{
			ID:             runID,
			Status:         domain.RunStatusSucceeded,
			EndedAt:        endedAt,
			SourceRevision: &revision,
		})
		require.NoError(t, err)

		run, err = store.GetIngestionRun(ctx, runID)
		require.NoError(t, err)
		require.NotNil(t, run)
		assert.Equal(t, domain.RunStatusSucceeded, run.Status)
		require.NotNil(t, run.EndedAt)
		assert.True(t, endedAt.Equal(*run.EndedAt))
		require.NotNil(t, run.SourceRevision)
		assert.Equal(t, revision, *run.SourceRevision)
		require.NotNil(t, run.Notes)
		assert.Equal(t, notes, *run.Notes)
	})

	t.Run("get non-existent run returns nil", func(t *testing.T) {
		run, err := store.GetIngestionRun(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, run)
	})

	t.Run("finish non-existent run fails", func(t *testing.T) {
		err := store.FinishIngestionRun(ctx, FinishIngestionRunInput{
			ID:      "missing",
			Status:  domain.RunStatusFailed,
			EndedAt: time.Now().UTC(),
		})
		assert.Error(t, err)
	})
}

// =============================================================================
// Run lock
// =============================================================================

func testRunLock(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("second holder is rejected while lease is live", func(t *testing.T) {
		ok, err := store.AcquireRunLock(ctx, "group-a", "run-1", time.Hour, now)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.AcquireRunLock(ctx, "group-a", "run-2", time.Hour, now.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, ok)

		// Other groups are independent
		ok, err = store.AcquireRunLock(ctx, "group-b", "run-2", time.Hour, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("holder may renew its lease", func(t *testing.T) {
		ok, err := store.AcquireRunLock(ctx, "group-c", "run-1", time.Hour, now)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.AcquireRunLock(ctx, "group-c", "run-1", time.Hour, now.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired lease is taken over", func(t *testing.T) {
		ok, err := store.AcquireRunLock(ctx, "group-d", "run-1", time.Minute, now)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.AcquireRunLock(ctx, "group-d", "run-2", time.Minute, now.Add(2*time.Minute))
		require.NoError(t, err)
		assert.True(t, ok)

		// The stale holder can no longer release the new lease
		require.NoError(t, store.ReleaseRunLock(ctx, "group-d", "run-1"))
		ok, err = store.AcquireRunLock(ctx, "group-d", "run-3", time.Minute, now.Add(150*time.Second))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("release frees the group", func(t *testing.T) {
		ok, err := store.AcquireRunLock(ctx, "group-e", "run-1", time.Hour, now)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, store.ReleaseRunLock(ctx, "group-e", "run-1"))

		ok, err = store.AcquireRunLock(ctx, "group-e", "run-2", time.Hour, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("release without lease is a no-op", func(t *testing.T) {
		assert.NoError(t, store.ReleaseRunLock(ctx, "group-none", "run-1"))
	})
}

// =============================================================================
// Raw layer
// =============================================================================

func testMergeRawRecords(t *testing.T, store Store) {
	ctx := context.Background()
	const dataset = "test_castaways"

	require.NoError(t, store.EnsureRawTable(ctx, dataset))
	// Creating twice is harmless
	require.NoError(t, store.EnsureRawTable(ctx, dataset))

	run1 := createTestRun(t, store)
	run2 := createTestRun(t, store)

	t.Run("first load inserts every row and commits the fingerprint", func(t *testing.T) {
		result, err := store.MergeRawRecords(ctx, buildMergeInput(dataset, run1, "sig-1",
			buildRawRecord("US01\x1fUS0001", "h1", "castaway", "Sonja"),
			buildRawRecord("US01\x1fUS0002", "h2", "castaway", "B.B."),
		))
		require.NoError(t, err)
		assert.Equal(t, MergeRawRecordsResult{Inserted: 2}, *result)

		fp, err := store.GetDatasetFingerprint(ctx, dataset)
		require.NoError(t, err)
		require.NotNil(t, fp)
		assert.Equal(t, "sig-1", fp.Signature)
		assert.Equal(t, run1, fp.IngestionRunID)
	})

	t.Run("reloading identical content changes nothing", func(t *testing.T) {
		result, err := store.MergeRawRecords(ctx, buildMergeInput(dataset, run2, "sig-1",
			buildRawRecord("US01\x1fUS0001", "h1", "castaway", "Sonja"),
			buildRawRecord("US01\x1fUS0002", "h2", "castaway", "B.B."),
		))
		require.NoError(t, err)
		assert.Equal(t, MergeRawRecordsResult{Unchanged: 2}, *result)

		records, err := store.GetRawRecords(ctx, dataset)
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, r := range records {
			assert.Equal(t, run1, r.IngestionRunID, "unchanged rows keep their run")
		}
	})

	t.Run("incremental merge updates changed keys and keeps absent keys", func(t *testing.T) {
		result, err := store.MergeRawRecords(ctx, buildMergeInput(dataset, run2, "sig-2",
			buildRawRecord("US01\x1fUS0001", "h1b", "castaway", "Sonja C."),
			buildRawRecord("US01\x1fUS0003", "h3", "castaway", "Stacey"),
		))
		require.NoError(t, err)
		assert.Equal(t, MergeRawRecordsResult{Inserted: 1, Updated: 1}, *result)

		records, err := store.GetRawRecords(ctx, dataset)
		require.NoError(t, err)
		assert.Equal(t, []string{"US01\x1fUS0001", "US01\x1fUS0002", "US01\x1fUS0003"}, rawKeys(records))

		payload, err := records[0].DecodePayload()
		require.NoError(t, err)
		name, ok := payload.String("castaway")
		require.True(t, ok)
		assert.Equal(t, "Sonja C.", name)
		assert.Equal(t, run2, records[0].IngestionRunID)
		assert.Equal(t, run1, records[0].FirstIngestionRunID)
	})

	t.Run("full replace deletes absent keys", func(t *testing.T) {
		input := buildMergeInput(dataset, run2, "sig-3",
			buildRawRecord("US01\x1fUS0001", "h1b", "castaway", "Sonja C."),
		)
		input.FullReplace = true

		result, err := store.MergeRawRecords(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, MergeRawRecordsResult{Unchanged: 1, Deleted: 2}, *result)

		records, err := store.GetRawRecords(ctx, dataset)
		require.NoError(t, err)
		assert.Equal(t, []string{"US01\x1fUS0001"}, rawKeys(records))
	})

	t.Run("duplicate natural key aborts without changes", func(t *testing.T) {
		_, err := store.MergeRawRecords(ctx, buildMergeInput(dataset, run2, "sig-4",
			buildRawRecord("US01\x1fUS0009", "h9", "castaway", "X"),
			buildRawRecord("US01\x1fUS0009", "h9b", "castaway", "Y"),
		))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUniquenessViolation)

		fp, err := store.GetDatasetFingerprint(ctx, dataset)
		require.NoError(t, err)
		assert.Equal(t, "sig-3", fp.Signature)

		records, err := store.GetRawRecords(ctx, dataset)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("sequential merges converge to a single merge of the latest extract", func(t *testing.T) {
		const stepwise, direct = "test_converge_a", "test_converge_b"
		require.NoError(t, store.EnsureRawTable(ctx, stepwise))
		require.NoError(t, store.EnsureRawTable(ctx, direct))

		extract1 := []RawRecordInput{
			buildRawRecord("US02\x1fUS0010", "h10", "castaway", "Colleen", "age", 23),
			buildRawRecord("US02\x1fUS0011", "h11", "castaway", "Amber", "age", 22),
		}
		extract2 := []RawRecordInput{
			buildRawRecord("US02\x1fUS0010", "h10b", "castaway", "Colleen", "age", 24),
			buildRawRecord("US02\x1fUS0011", "h11", "castaway", "Amber", "age", 22),
			buildRawRecord("US02\x1fUS0012", "h12", "castaway", "Rob", "age", 24),
		}

		_, err := store.MergeRawRecords(ctx, buildMergeInput(stepwise, run1, "sig-1", extract1...))
		require.NoError(t, err)
		_, err = store.MergeRawRecords(ctx, buildMergeInput(stepwise, run2, "sig-2", extract2...))
		require.NoError(t, err)
		_, err = store.MergeRawRecords(ctx, buildMergeInput(direct, run2, "sig-2", extract2...))
		require.NoError(t, err)

		got, err := store.GetRawRecords(ctx, stepwise)
		require.NoError(t, err)
		want, err := store.GetRawRecords(ctx, direct)
		require.NoError(t, err)
		require.Equal(t, rawKeys(want), rawKeys(got))
		for i := range want {
			assert.Equal(t, want[i].SourceHash, got[i].SourceHash)
			assert.JSONEq(t, string(want[i].Payload), string(got[i].Payload))
		}
	})

	t.Run("unknown dataset has no rows and no fingerprint", func(t *testing.T) {
		records, err := store.GetRawRecords(ctx, "never_loaded")
		require.NoError(t, err)
		assert.Empty(t, records)

		fp, err := store.GetDatasetFingerprint(ctx, "never_loaded")
		require.NoError(t, err)
		assert.Nil(t, fp)
	})

	t.Run("invalid dataset name is rejected", func(t *testing.T) {
		assert.Error(t, store.EnsureRawTable(ctx, "castaways; DROP TABLE x"))
		_, err := store.GetRawRecords(ctx, "Bad-Name")
		assert.Error(t, err)
	})
}

func testApplyRemediations(t *testing.T, store Store) {
	ctx := context.Background()
	const dataset = "test_votes"

	require.NoError(t, store.EnsureRawTable(ctx, dataset))
	runID := createTestRun(t, store)

	_, err := store.MergeRawRecords(ctx, buildMergeInput(dataset, runID, "sig",
		buildRawRecord("k1", "h1", "vote_id", "US0099", "vote", "Rudy"),
		buildRawRecord("k2", "h2", "vote_id", "US0098", "vote", "Nobody"),
	))
	require.NoError(t, err)

	t.Run("patches payload and writes log", func(t *testing.T) {
		before1, after1 := "US0099", "US0001"
		before2 := "US0098"
		err := store.ApplyRemediations(ctx, ApplyRemediationsInput{
			Patches: []RawPatch{
				{Dataset: dataset, NaturalKey: "k1", Column: "vote_id", Value: after1},
				{Dataset: dataset, NaturalKey: "k2", Column: "vote_id", Value: nil},
			},
			Logs: []schema.RemediationLog{
				{IngestionRunID: runID, Dataset: dataset, NaturalKey: "k1", Column: "vote_id", Before: &before1, After: &after1, Strategy: schema.RemediationStrategyFuzzy, Confidence: 0.9},
				{IngestionRunID: runID, Dataset: dataset, NaturalKey: "k2", Column: "vote_id", Before: &before2, Strategy: schema.RemediationStrategyUnresolved},
			},
		})
		require.NoError(t, err)

		records, err := store.GetRawRecords(ctx, dataset)
		require.NoError(t, err)
		require.Len(t, records, 2)

		p1, err := records[0].DecodePayload()
		require.NoError(t, err)
		voteID, _ := p1.String("vote_id")
		vote, _ := p1.String("vote")
		assert.Equal(t, "US0001", voteID)
		assert.Equal(t, "Rudy", vote)
		assert.Equal(t, "h1", records[0].SourceHash, "source hash keeps the upstream value")

		up1, err := records[0].DecodeUpstream()
		require.NoError(t, err)
		upstreamID, _ := up1.String("vote_id")
		assert.Equal(t, "US0099", upstreamID)
		assert.NotContains(t, up1, "vote", "only patched columns are kept")

		p2, err := records[1].DecodePayload()
		require.NoError(t, err)
		assert.True(t, p2.IsNull("vote_id"))
		up2, err := records[1].DecodeUpstream()
		require.NoError(t, err)
		upstreamID, _ = up2.String("vote_id")
		assert.Equal(t, "US0098", upstreamID)

		logs, err := store.GetRemediationLogs(ctx, runID)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, schema.RemediationStrategyFuzzy, logs[0].Strategy)
		assert.Equal(t, schema.RemediationStrategyUnresolved, logs[1].Strategy)
		assert.Nil(t, logs[1].After)
	})

	t.Run("patch of a missing row fails atomically", func(t *testing.T) {
		before := "x"
		err := store.ApplyRemediations(ctx, ApplyRemediationsInput{
			Patches: []RawPatch{
				{Dataset: dataset, NaturalKey: "missing", Column: "vote_id", Value: "US0001"},
			},
			Logs: []schema.RemediationLog{
				{IngestionRunID: runID, Dataset: dataset, NaturalKey: "missing", Column: "vote_id", Before: &before, Strategy: schema.RemediationStrategyContextual, Confidence: 1},
			},
		})
		require.Error(t, err)

		logs, err := store.GetRemediationLogs(ctx, runID)
		require.NoError(t, err)
		assert.Len(t, logs, 2)
	})

	t.Run("upstream value survives repatching and unchanged merges, and is cleared by a changed row", func(t *testing.T) {
		require.NoError(t, store.ApplyRemediations(ctx, ApplyRemediationsInput{
			Patches: []RawPatch{
				{Dataset: dataset, NaturalKey: "k1", Column: "vote_id", Value: "US0002"},
			},
		}))

		_, err := store.MergeRawRecords(ctx, buildMergeInput(dataset, runID, "sig2",
			buildRawRecord("k1", "h1", "vote_id", "US0099", "vote", "Rudy"),
			buildRawRecord("k2", "h2b", "vote_id", "US0001", "vote", "Richard"),
		))
		require.NoError(t, err)

		records, err := store.GetRawRecords(ctx, dataset)
		require.NoError(t, err)
		require.Len(t, records, 2)

		p1, err := records[0].DecodePayload()
		require.NoError(t, err)
		voteID, _ := p1.String("vote_id")
		assert.Equal(t, "US0002", voteID, "an unchanged row keeps its repair")
		up1, err := records[0].DecodeUpstream()
		require.NoError(t, err)
		upstreamID, _ := up1.String("vote_id")
		assert.Equal(t, "US0099", upstreamID, "the first extracted value is kept")

		p2, err := records[1].DecodePayload()
		require.NoError(t, err)
		voteID, _ = p2.String("vote_id")
		assert.Equal(t, "US0001", voteID)
		up2, err := records[1].DecodeUpstream()
		require.NoError(t, err)
		assert.Nil(t, up2)
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		assert.NoError(t, store.ApplyRemediations(ctx, ApplyRemediationsInput{}))
	})
}

// =============================================================================
// Curated layer
// =============================================================================

func testReplaceCuratedTable(t *testing.T, store Store) {
	ctx := context.Background()
	name := "Richard Hatch"

	t.Run("replace swaps content", func(t *testing.T) {
		err := store.ReplaceCuratedTable(ctx, schema.TableDimCastaway, []schema.DimCastaway{
			{CastawayKey: 2, CastawayID: "US0002", SourceNaturalKey: "US0002"},
			{CastawayKey: 1, CastawayID: "US0001", FullName: &name, SourceNaturalKey: "US0001"},
		})
		require.NoError(t, err)

		keys, err := store.GetCuratedKeys(ctx, schema.TableDimCastaway, "castaway_key")
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, keys)

		err = store.ReplaceCuratedTable(ctx, schema.TableDimCastaway, []schema.DimCastaway{
			{CastawayKey: 3, CastawayID: "US0003", SourceNaturalKey: "US0003"},
		})
		require.NoError(t, err)

		keys, err = store.GetCuratedKeys(ctx, schema.TableDimCastaway, "castaway_key")
		require.NoError(t, err)
		assert.Equal(t, []int64{3}, keys)
	})

	t.Run("grain violation keeps previous content", func(t *testing.T) {
		err := store.ReplaceCuratedTable(ctx, schema.TableDimCastaway, []schema.DimCastaway{
			{CastawayKey: 4, CastawayID: "US0004", SourceNaturalKey: "US0004"},
			{CastawayKey: 4, CastawayID: "US0005", SourceNaturalKey: "US0005"},
		})
		require.Error(t, err)

		keys, err := store.GetCuratedKeys(ctx, schema.TableDimCastaway, "castaway_key")
		require.NoError(t, err)
		assert.Equal(t, []int64{3}, keys)
	})

	t.Run("empty slice clears the table", func(t *testing.T) {
		require.NoError(t, store.ReplaceCuratedTable(ctx, schema.TableDimSkill, []schema.DimSkill{{SkillKey: 1, SkillName: "puzzle"}}))
		require.NoError(t, store.ReplaceCuratedTable(ctx, schema.TableDimSkill, []schema.DimSkill{}))

		keys, err := store.GetCuratedKeys(ctx, schema.TableDimSkill, "skill_key")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("unknown table and non-slice rows are rejected", func(t *testing.T) {
		assert.Error(t, store.ReplaceCuratedTable(ctx, "ingestion_runs", []schema.DimSkill{}))
		assert.Error(t, store.ReplaceCuratedTable(ctx, schema.TableDimSkill, schema.DimSkill{}))
		_, err := store.GetCuratedKeys(ctx, "ingestion_runs", "id")
		assert.Error(t, err)
	})

	t.Run("load curated data reads every table in key order", func(t *testing.T) {
		require.NoError(t, store.ReplaceCuratedTable(ctx, schema.TableDimSeason, []schema.DimSeason{
			{SeasonKey: 20, VersionSeason: "US02", SourceNaturalKey: "US02"},
			{SeasonKey: 10, VersionSeason: "US01", SourceNaturalKey: "US01"},
		}))
		require.NoError(t, store.ReplaceCuratedTable(ctx, schema.TableFactVote, []schema.FactVote{
			{EpisodeKey: 1, VoterCastawayKey: 3, VoteOrder: 1, SeasonKey: 10, SourceNaturalKey: "v1"},
		}))

		data, err := store.LoadCuratedData(ctx)
		require.NoError(t, err)
		require.Len(t, data.Seasons, 2)
		assert.Equal(t, "US01", data.Seasons[0].VersionSeason)
		assert.Len(t, data.Castaways, 1)
		assert.Len(t, data.Votes, 1)
		assert.Empty(t, data.Confessionals)
	})
}

// =============================================================================
// Feature layer
// =============================================================================

func testFeatureSnapshots(t *testing.T, store Store) {
	ctx := context.Background()
	runID := createTestRun(t, store)

	t.Run("create and read snapshot", func(t *testing.T) {
		snapshotID := ulid.Make().String()
		err := store.CreateFeatureSnapshot(ctx, CreateFeatureSnapshotInput{
			Snapshot: schema.FeatureSnapshot{
				ID:             snapshotID,
				IngestionRunID: runID,
				CreatedAt:      time.Now().UTC(),
				InputHash:      "input-1",
				ContentHash:    "content-1",
				CastawayRows:   2,
				SeasonRows:     1,
			},
			CastawayFeatures: []schema.CastawayFeature{
				{SnapshotID: snapshotID, CastawayKey: 2, Payload: []byte(`{"features":{"wins":1}}`), FeaturesHash: "b"},
				{SnapshotID: snapshotID, CastawayKey: 1, Payload: []byte(`{"features":{"wins":0}}`), FeaturesHash: "a"},
			},
			SeasonFeatures: []schema.SeasonFeature{
				{SnapshotID: snapshotID, SeasonKey: 10, Payload: []byte(`{"features":{}}`), FeaturesHash: "c"},
			},
		})
		require.NoError(t, err)

		snapshot, err := store.GetLatestFeatureSnapshotByInputHash(ctx, "input-1")
		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Equal(t, snapshotID, snapshot.ID)
		assert.Equal(t, "content-1", snapshot.ContentHash)

		features, err := store.GetCastawayFeatures(ctx, snapshotID)
		require.NoError(t, err)
		require.Len(t, features, 2)
		assert.Equal(t, int64(1), features[0].CastawayKey)
		assert.Equal(t, "a", features[0].FeaturesHash)
	})

	t.Run("latest snapshot wins", func(t *testing.T) {
		base := time.Now().UTC()
		for i := 0; i < 2; i++ {
			err := store.CreateFeatureSnapshot(ctx, CreateFeatureSnapshotInput{
				Snapshot: schema.FeatureSnapshot{
					ID:             fmt.Sprintf("snap-latest-%d", i),
					IngestionRunID: runID,
					CreatedAt:      base.Add(time.Duration(i) * time.Second),
					InputHash:      "input-2",
					ContentHash:    "content-2",
				},
			})
			require.NoError(t, err)
		}

		snapshot, err := store.GetLatestFeatureSnapshotByInputHash(ctx, "input-2")
		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Equal(t, "snap-latest-1", snapshot.ID)
	})

	t.Run("snapshots are insert-only", func(t *testing.T) {
		input := CreateFeatureSnapshotInput{
			Snapshot: schema.FeatureSnapshot{
				ID:             "snap-dup",
				IngestionRunID: runID,
				CreatedAt:      time.Now().UTC(),
				InputHash:      "input-3",
				ContentHash:    "content-3",
			},
		}
		require.NoError(t, store.CreateFeatureSnapshot(ctx, input))
		assert.Error(t, store.CreateFeatureSnapshot(ctx, input))
	})

	t.Run("unknown input hash returns nil", func(t *testing.T) {
		snapshot, err := store.GetLatestFeatureSnapshotByInputHash(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, snapshot)
	})
}

// =============================================================================
// Validation reports
// =============================================================================

func testValidationReports(t *testing.T, store Store) {
	ctx := context.Background()
	runID := createTestRun(t, store)

	t.Run("save and overwrite report", func(t *testing.T) {
		require.NoError(t, store.SaveValidationReport(ctx, runID, domain.RunStatusRunning, json.RawMessage(`{"status":"running"}`)))
		require.NoError(t, store.SaveValidationReport(ctx, runID, domain.RunStatusSucceeded, json.RawMessage(`{"status":"succeeded"}`)))

		report, err := store.GetValidationReport(ctx, runID)
		require.NoError(t, err)
		require.NotNil(t, report)
		assert.Equal(t, domain.RunStatusSucceeded, report.Status)
		assert.JSONEq(t, `{"status":"succeeded"}`, string(report.Report))
	})

	t.Run("missing report returns nil", func(t *testing.T) {
		report, err := store.GetValidationReport(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, report)
	})
}

// =============================================================================
// Helpers
// =============================================================================

func TestCalculateSafeBatchSize(t *testing.T) {
	assert.Equal(t, 1, calculateSafeBatchSize(0, 10))
	assert.Equal(t, 5, calculateSafeBatchSize(5, 10))
	assert.Equal(t, 6453, calculateSafeBatchSize(100000, 10))
	assert.Equal(t, 1, calculateSafeBatchSize(10, 100000))
}

func TestChunkStrings(t *testing.T) {
	assert.Nil(t, chunkStrings(nil, 2))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunkStrings([]string{"a", "b", "c"}, 2))
	assert.Equal(t, [][]string{{"a", "b"}}, chunkStrings([]string{"a", "b"}, 2))
}

func TestNormalizeConnectionPoolSettings(t *testing.T) {
	open, idle, life, idleTime := NormalizeConnectionPoolSettings(0, 0, 0, 0)
	assert.Equal(t, 20, open)
	assert.Equal(t, 5, idle)
	assert.Equal(t, 5*time.Minute, life)
	assert.Equal(t, 10*time.Minute, idleTime)

	open, idle, _, _ = NormalizeConnectionPoolSettings(3, 8, time.Hour, time.Minute)
	assert.Equal(t, 3, open)
	assert.Equal(t, 3, idle)
}

// RunStoreTests runs all store tests with the given store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"IngestionRuns", testIngestionRuns},
		{"RunLock", testRunLock},
		{"MergeRawRecords", testMergeRawRecords},
		{"ApplyRemediations", testApplyRemediations},
		{"ReplaceCuratedTable", testReplaceCuratedTable},
		{"FeatureSnapshots", testFeatureSnapshots},
		{"ValidationReports", testValidationReports},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
