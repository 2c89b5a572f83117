package freshness_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/freshness"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/mocks"
	"github.com/feral-file/gamebot/internal/source"
	"github.com/feral-file/gamebot/internal/store/schema"
)

// testDetectorMocks contains all the mocks needed for testing the detector
type testDetectorMocks struct {
	ctrl     *gomock.Controller
	source   *mocks.MockSource
	store    *mocks.MockStore
	detector freshness.Detector
}

func setupTestDetector(t *testing.T) *testDetectorMocks {
	ctrl := gomock.NewController(t)
	_ = logger.Initialize(logger.Config{Debug: true})

	tm := &testDetectorMocks{
		ctrl:   ctrl,
		source: mocks.NewMockSource(ctrl),
		store:  mocks.NewMockStore(ctrl),
	}
	tm.detector = freshness.NewDetector(tm.source, tm.store, 2)
	return tm
}

func extract(dataset, body, revision string) *source.Extract {
	return &source.Extract{
		Dataset:   dataset,
		Body:      []byte(body),
		Revision:  revision,
		FetchedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSignature_IgnoresRepresentationNoise(t *testing.T) {
	base := freshness.Signature([]byte("a,b\n1,2\n"))

	assert.Equal(t, base, freshness.Signature([]byte("\xEF\xBB\xBFa,b\n1,2\n")), "BOM")
	assert.Equal(t, base, freshness.Signature([]byte("a,b\r\n1,2\r\n")), "CRLF")
	assert.Equal(t, base, freshness.Signature([]byte("a,b\n1,2\n\n\n")), "trailing blank lines")
	assert.NotEqual(t, base, freshness.Signature([]byte("a,b\n1,3\n")))
	assert.Len(t, base, 64)
}

func TestDetector_Detect(t *testing.T) {
	ctx := context.Background()
	body := "castaway_id,full_name\nUS0001,Sonja Christopher\n"
	revision := "rev-1"

	tests := []struct {
		name        string
		setupMocks  func(*testDetectorMocks)
		expectedErr error
		validate    func(t *testing.T, r *freshness.Result)
	}{
		{
			name: "first observation is changed",
			setupMocks: func(tm *testDetectorMocks) {
				tm.source.EXPECT().Fetch(gomock.Any(), "castaway_details").Return(extract("castaway_details", body, "rev-2"), nil)
				tm.store.EXPECT().GetDatasetFingerprint(gomock.Any(), "castaway_details").Return(nil, nil)
			},
			validate: func(t *testing.T, r *freshness.Result) {
				assert.True(t, r.Changed)
				assert.Empty(t, r.PreviousSignature)
				assert.Equal(t, freshness.Signature([]byte(body)), r.NewSignature)
				assert.Equal(t, "rev-2", r.NewRevision)
			},
		},
		{
			name: "same signature is unchanged even with a new revision",
			setupMocks: func(tm *testDetectorMocks) {
				tm.source.EXPECT().Fetch(gomock.Any(), "castaway_details").Return(extract("castaway_details", body, "rev-2"), nil)
				tm.store.EXPECT().GetDatasetFingerprint(gomock.Any(), "castaway_details").Return(&schema.DatasetFingerprint{
					Dataset:        "castaway_details",
					Signature:      freshness.Signature([]byte(body)),
					SourceRevision: &revision,
				}, nil)
			},
			validate: func(t *testing.T, r *freshness.Result) {
				assert.False(t, r.Changed)
				assert.Equal(t, "rev-1", r.PreviousRevision)
				assert.Equal(t, r.PreviousSignature, r.NewSignature)
			},
		},
		{
			name: "different signature is changed",
			setupMocks: func(tm *testDetectorMocks) {
				tm.source.EXPECT().Fetch(gomock.Any(), "castaway_details").Return(extract("castaway_details", body, ""), nil)
				tm.store.EXPECT().GetDatasetFingerprint(gomock.Any(), "castaway_details").Return(&schema.DatasetFingerprint{
					Dataset:   "castaway_details",
					Signature: "stale",
				}, nil)
			},
			validate: func(t *testing.T, r *freshness.Result) {
				assert.True(t, r.Changed)
				assert.Equal(t, "stale", r.PreviousSignature)
			},
		},
		{
			name: "unreachable upstream is an error, not unchanged",
			setupMocks: func(tm *testDetectorMocks) {
				tm.source.EXPECT().Fetch(gomock.Any(), "castaway_details").Return(nil, domain.ErrUpstreamUnreachable)
			},
			expectedErr: domain.ErrUpstreamUnreachable,
		},
		{
			name: "fingerprint read failure",
			setupMocks: func(tm *testDetectorMocks) {
				tm.source.EXPECT().Fetch(gomock.Any(), "castaway_details").Return(extract("castaway_details", body, ""), nil)
				tm.store.EXPECT().GetDatasetFingerprint(gomock.Any(), "castaway_details").Return(nil, assert.AnError)
			},
			expectedErr: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestDetector(t)
			tt.setupMocks(tm)

			result, err := tm.detector.Detect(ctx, "castaway_details")
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			tt.validate(t, result)
		})
	}
}

func TestDetector_DetectAll(t *testing.T) {
	ctx := context.Background()

	t.Run("summary keeps input order", func(t *testing.T) {
		tm := setupTestDetector(t)
		for _, name := range []string{"episodes", "castaways", "vote_history"} {
			tm.source.EXPECT().Fetch(gomock.Any(), name).Return(extract(name, name+"\n", ""), nil)
		}
		tm.store.EXPECT().GetDatasetFingerprint(gomock.Any(), "episodes").Return(nil, nil)
		tm.store.EXPECT().GetDatasetFingerprint(gomock.Any(), "castaways").Return(&schema.DatasetFingerprint{
			Signature: freshness.Signature([]byte("castaways\n")),
		}, nil)
		tm.store.EXPECT().GetDatasetFingerprint(gomock.Any(), "vote_history").Return(nil, nil)

		summary, err := tm.detector.DetectAll(ctx, []string{"episodes", "castaways", "vote_history"})
		require.NoError(t, err)
		require.Len(t, summary.Results, 3)
		assert.Equal(t, "episodes", summary.Results[0].Dataset)
		assert.Equal(t, []string{"episodes", "vote_history"}, summary.Changed())

		r, ok := summary.Result("castaways")
		require.True(t, ok)
		assert.False(t, r.Changed)
	})

	t.Run("any unreachable dataset fails the pass", func(t *testing.T) {
		tm := setupTestDetector(t)
		tm.source.EXPECT().Fetch(gomock.Any(), "episodes").Return(extract("episodes", "x\n", ""), nil)
		tm.store.EXPECT().GetDatasetFingerprint(gomock.Any(), "episodes").Return(nil, nil)
		tm.source.EXPECT().Fetch(gomock.Any(), "castaways").Return(nil, domain.ErrUpstreamUnreachable)

		summary, err := tm.detector.DetectAll(ctx, []string{"episodes", "castaways"})
		require.Error(t, err)
		assert.Nil(t, summary)
		assert.True(t, domain.IsRetryable(err))
		assert.True(t, errors.Is(err, domain.ErrUpstreamUnreachable))
	})

	t.Run("empty selection", func(t *testing.T) {
		tm := setupTestDetector(t)
		summary, err := tm.detector.DetectAll(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, summary.Changed())
	})
}
