package loader_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/loader"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/mocks"
	"github.com/feral-file/gamebot/internal/source"
	"github.com/feral-file/gamebot/internal/store"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// testLoaderMocks contains all the mocks needed for testing the loader
type testLoaderMocks struct {
	ctrl   *gomock.Controller
	source *mocks.MockSource
	store  *mocks.MockStore
	clock  *mocks.MockClock
	loader loader.Loader
}

func testCatalog(t *testing.T) *catalog.Catalog {
	cat, err := catalog.New("test", []catalog.Dataset{
		{
			Name:       "castaway_details",
			NaturalKey: []string{"castaway_id"},
			Columns: []catalog.Column{
				{Name: "castaway_id", Type: domain.TypeString},
				{Name: "full_name", Type: domain.TypeString, Nullable: true},
				{Name: "date_of_birth", Type: domain.TypeDate, Nullable: true},
			},
		},
		{
			Name:        "challenge_summary",
			NaturalKey:  []string{"challenge_id", "castaway_id"},
			FanOut:      true,
			FullReplace: true,
			Columns: []catalog.Column{
				{Name: "category", Type: domain.TypeString},
				{Name: "challenge_id", Type: domain.TypeString},
				{Name: "castaway_id", Type: domain.TypeString},
			},
		},
	})
	require.NoError(t, err)
	return cat
}

func setupTestLoader(t *testing.T, threshold float64) *testLoaderMocks {
	ctrl := gomock.NewController(t)
	_ = logger.Initialize(logger.Config{Debug: true})

	tm := &testLoaderMocks{
		ctrl:   ctrl,
		source: mocks.NewMockSource(ctrl),
		store:  mocks.NewMockStore(ctrl),
		clock:  mocks.NewMockClock(ctrl),
	}
	tm.clock.EXPECT().Now().Return(testNow).AnyTimes()
	tm.loader = loader.NewLoader(loader.Config{
		WorkerPoolSize:           2,
		CoercionFailureThreshold: threshold,
		BatchSize:                100,
	}, testCatalog(t), tm.source, tm.store, tm.clock)
	return tm
}

func fetchReturns(tm *testLoaderMocks, dataset, body, revision string) {
	tm.source.EXPECT().Fetch(gomock.Any(), dataset).Return(&source.Extract{
		Dataset:   dataset,
		Body:      []byte(body),
		Revision:  revision,
		FetchedAt: testNow,
	}, nil)
}

func testRun() domain.RunContext {
	return domain.RunContext{RunID: "01RUN", Environment: "test", RunGroup: "survivor", StartedAt: testNow}
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	details := "castaway_id,full_name,date_of_birth\nUS0001,Sonja Christopher,1937-01-28\nUS0002,B.B. Andersen,1936-01-18\n"
	summary := "category,challenge_id,castaway_id\nAll,1,US0001\nReward,1,US0001\n"

	t.Run("merges every dataset sequentially with its fingerprint", func(t *testing.T) {
		tm := setupTestLoader(t, 0.05)
		fetchReturns(tm, "castaway_details", details, "rev-1")
		fetchReturns(tm, "challenge_summary", summary, "")

		gomock.InOrder(
			tm.store.EXPECT().EnsureRawTable(gomock.Any(), "castaway_details").Return(nil),
			tm.store.EXPECT().MergeRawRecords(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, input store.MergeRawRecordsInput) (*store.MergeRawRecordsResult, error) {
					assert.Equal(t, "castaway_details", input.Dataset)
					assert.Equal(t, "01RUN", input.RunID)
					assert.False(t, input.FullReplace)
					assert.Equal(t, 100, input.BatchSize)
					assert.Len(t, input.Records, 2)
					require.NotNil(t, input.Fingerprint.SourceRevision)
					assert.Equal(t, "rev-1", *input.Fingerprint.SourceRevision)
					assert.Equal(t, testNow, input.Fingerprint.ObservedAt)
					return &store.MergeRawRecordsResult{Inserted: 2}, nil
				}),
			tm.store.EXPECT().EnsureRawTable(gomock.Any(), "challenge_summary").Return(nil),
			tm.store.EXPECT().MergeRawRecords(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, input store.MergeRawRecordsInput) (*store.MergeRawRecordsResult, error) {
					assert.Equal(t, "challenge_summary", input.Dataset)
					assert.True(t, input.FullReplace)
					assert.Len(t, input.Records, 2)
					assert.Nil(t, input.Fingerprint.SourceRevision)
					return &store.MergeRawRecordsResult{Inserted: 1, Unchanged: 1, Deleted: 3}, nil
				}),
		)

		result, err := tm.loader.Load(ctx, testRun(), []string{"castaway_details", "challenge_summary"})
		require.NoError(t, err)
		require.Len(t, result.Results, 2)
		assert.Equal(t, []string{"castaway_details", "challenge_summary"}, result.Loaded())
		assert.Empty(t, result.Rejected())

		assert.Equal(t, loader.StatusLoaded, result.Results[0].Status)
		assert.Equal(t, 2, result.Results[0].Inserted)
		assert.Equal(t, "rev-1", result.Results[0].Revision)
		assert.Len(t, result.Results[0].ObservedColumns, 3)
		assert.Equal(t, 3, result.Results[1].Deleted)
	})

	t.Run("full replace override applies to a single run", func(t *testing.T) {
		tm := setupTestLoader(t, 0.05)
		fetchReturns(tm, "castaway_details", details, "")
		tm.store.EXPECT().EnsureRawTable(gomock.Any(), "castaway_details").Return(nil)
		tm.store.EXPECT().MergeRawRecords(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, input store.MergeRawRecordsInput) (*store.MergeRawRecordsResult, error) {
				assert.True(t, input.FullReplace)
				return &store.MergeRawRecordsResult{Unchanged: 2}, nil
			})

		run := testRun()
		run.FullReplace = []string{"castaway_details"}
		result, err := tm.loader.Load(ctx, run, []string{"castaway_details"})
		require.NoError(t, err)
		assert.True(t, result.Results[0].FullReplace)
	})

	t.Run("duplicate key rejects the dataset without merging", func(t *testing.T) {
		tm := setupTestLoader(t, 0.05)
		fetchReturns(tm, "castaway_details", "castaway_id,full_name,date_of_birth\nUS0001,A,1990-01-01\nUS0001,B,1990-01-02\nUS0002,C,yesterday\n", "")

		result, err := tm.loader.Load(ctx, testRun(), []string{"castaway_details"})
		require.NoError(t, err)
		require.Len(t, result.Results, 1)
		assert.Equal(t, loader.StatusRejected, result.Results[0].Status)
		assert.Contains(t, result.Results[0].UniquenessError, "uniqueness violation")
		assert.Equal(t, []string{"castaway_details"}, result.Rejected())

		// the rejected extract is still profiled
		assert.Equal(t, 3, result.Results[0].Rows)
		assert.Equal(t, 1, result.Results[0].FailedRows)
		require.Len(t, result.Results[0].CoercionFailures, 1)
		assert.Equal(t, "date_of_birth", result.Results[0].CoercionFailures[0].Column)
		require.Len(t, result.Results[0].ObservedColumns, 3)
		assert.Equal(t, "date_of_birth", result.Results[0].ObservedColumns[2].Name)
	})

	t.Run("coercion failures over threshold reject the dataset", func(t *testing.T) {
		tm := setupTestLoader(t, 0.4)
		fetchReturns(tm, "castaway_details", "castaway_id,date_of_birth\nUS0001,yesterday\nUS0002,1990-01-01\n", "")

		result, err := tm.loader.Load(ctx, testRun(), []string{"castaway_details"})
		require.NoError(t, err)
		assert.Equal(t, loader.StatusRejected, result.Results[0].Status)
		assert.Contains(t, result.Results[0].Error, "coercion failure rate exceeds threshold")
		assert.Equal(t, 1, result.Results[0].FailedRows)
		require.Len(t, result.Results[0].CoercionFailures, 1)
		assert.Equal(t, "date_of_birth", result.Results[0].CoercionFailures[0].Column)
	})

	t.Run("coercion failures under threshold still load", func(t *testing.T) {
		tm := setupTestLoader(t, 0.5)
		fetchReturns(tm, "castaway_details", "castaway_id,date_of_birth\nUS0001,yesterday\nUS0002,1990-01-01\n", "")
		tm.store.EXPECT().EnsureRawTable(gomock.Any(), "castaway_details").Return(nil)
		tm.store.EXPECT().MergeRawRecords(gomock.Any(), gomock.Any()).Return(&store.MergeRawRecordsResult{Inserted: 2}, nil)

		result, err := tm.loader.Load(ctx, testRun(), []string{"castaway_details"})
		require.NoError(t, err)
		assert.Equal(t, loader.StatusLoaded, result.Results[0].Status)
		assert.Equal(t, 1, result.Results[0].FailureCount)
	})

	t.Run("malformed extract fails the stage before any merge", func(t *testing.T) {
		tm := setupTestLoader(t, 0.05)
		fetchReturns(tm, "castaway_details", details, "")
		fetchReturns(tm, "challenge_summary", "", "")

		result, err := tm.loader.Load(ctx, testRun(), []string{"castaway_details", "challenge_summary"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMalformedExtract)
		assert.Nil(t, result)
	})

	t.Run("unreachable upstream is retryable", func(t *testing.T) {
		tm := setupTestLoader(t, 0.05)
		tm.source.EXPECT().Fetch(gomock.Any(), "castaway_details").Return(nil, domain.ErrUpstreamUnreachable)

		_, err := tm.loader.Load(ctx, testRun(), []string{"castaway_details"})
		require.Error(t, err)
		assert.True(t, domain.IsRetryable(err))
	})

	t.Run("merge failure is returned", func(t *testing.T) {
		tm := setupTestLoader(t, 0.05)
		fetchReturns(tm, "castaway_details", details, "")
		tm.store.EXPECT().EnsureRawTable(gomock.Any(), "castaway_details").Return(nil)
		tm.store.EXPECT().MergeRawRecords(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

		_, err := tm.loader.Load(ctx, testRun(), []string{"castaway_details"})
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		tm := setupTestLoader(t, 0.05)
		_, err := tm.loader.Load(ctx, testRun(), []string{"nope"})
		assert.ErrorIs(t, err, domain.ErrUnknownDataset)
	})
}
