package source_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gamebot/internal/adapter"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/mocks"
	"github.com/feral-file/gamebot/internal/source"
)

type testSourceMocks struct {
	ctrl   *gomock.Controller
	client *mocks.MockHTTPClient
	clock  *mocks.MockClock
	source source.Source
}

func setupHTTPSource(t *testing.T, maxFailures uint32) *testSourceMocks {
	err := logger.Initialize(logger.Config{Debug: true})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	tm := &testSourceMocks{
		ctrl:   ctrl,
		client: mocks.NewMockHTTPClient(ctrl),
		clock:  mocks.NewMockClock(ctrl),
	}
	tm.source = source.NewHTTPSource(source.HTTPConfig{
		BaseURL:     "https://example.com/csv/",
		Timeout:     time.Second,
		MaxFailures: maxFailures,
		OpenTimeout: time.Minute,
	}, tm.client, tm.clock)
	return tm
}

func TestHTTPSource_Fetch(t *testing.T) {
	tm := setupHTTPSource(t, 5)
	defer tm.ctrl.Finish()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tm.clock.EXPECT().Now().Return(now)
	tm.client.EXPECT().
		GetResponse(gomock.Any(), "https://example.com/csv/castaways.csv", gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, header http.Header) (*adapter.Response, error) {
			assert.NotEmpty(t, header.Get("X-Request-ID"))
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			h := http.Header{}
			h.Set("ETag", `W/"abc123"`)
			return &adapter.Response{StatusCode: 200, Header: h, Body: []byte("castaway_id\nUS0001\n")}, nil
		})

	ext, err := tm.source.Fetch(context.Background(), "castaways")
	require.NoError(t, err)
	assert.Equal(t, "castaways", ext.Dataset)
	assert.Equal(t, "abc123", ext.Revision)
	assert.Equal(t, now, ext.FetchedAt)
	assert.Equal(t, "castaway_id\nUS0001\n", string(ext.Body))
}

func TestHTTPSource_RevisionHeaderWins(t *testing.T) {
	tm := setupHTTPSource(t, 5)
	defer tm.ctrl.Finish()

	tm.clock.EXPECT().Now().Return(time.Now())
	h := http.Header{}
	h.Set(source.RevisionHeader, "9f2c1e")
	h.Set("ETag", `"etag"`)
	tm.client.EXPECT().
		GetResponse(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&adapter.Response{StatusCode: 200, Header: h, Body: []byte("a\n1\n")}, nil)

	ext, err := tm.source.Fetch(context.Background(), "episodes")
	require.NoError(t, err)
	assert.Equal(t, "9f2c1e", ext.Revision)
}

func TestHTTPSource_ErrorClassification(t *testing.T) {
	tm := setupHTTPSource(t, 5)
	defer tm.ctrl.Finish()

	tm.client.EXPECT().
		GetResponse(gomock.Any(), "https://example.com/csv/castaways.csv", gomock.Any()).
		Return(nil, fmt.Errorf("request failed after retries: %w", errors.New("connection refused")))
	_, err := tm.source.Fetch(context.Background(), "castaways")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnreachable)
	assert.True(t, domain.IsRetryable(err))

	tm.client.EXPECT().
		GetResponse(gomock.Any(), "https://example.com/csv/missing.csv", gomock.Any()).
		Return(nil, fmt.Errorf("request failed after retries: %w 404: not found", adapter.ErrHTTPStatus))
	_, err = tm.source.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrMalformedExtract)
	assert.False(t, domain.IsRetryable(err))
}

func TestHTTPSource_BreakerOpens(t *testing.T) {
	tm := setupHTTPSource(t, 2)
	defer tm.ctrl.Finish()

	// Two transport failures trip the breaker, the third call never reaches the client
	tm.client.EXPECT().
		GetResponse(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("timeout")).
		Times(2)

	for range 2 {
		_, err := tm.source.Fetch(context.Background(), "castaways")
		assert.ErrorIs(t, err, domain.ErrUpstreamUnreachable)
	}

	_, err := tm.source.Fetch(context.Background(), "castaways")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnreachable)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestDirSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "episodes.csv"), []byte("version_season,episode\nUS01,1\n"), 0600))

	src := source.NewDirSource(dir, adapter.NewFileSystem())

	ext, err := src.Fetch(context.Background(), "episodes")
	require.NoError(t, err)
	assert.Equal(t, "episodes", ext.Dataset)
	assert.NotEmpty(t, ext.Revision)
	assert.Contains(t, string(ext.Body), "US01,1")

	_, err = src.Fetch(context.Background(), "castaways")
	assert.ErrorIs(t, err, domain.ErrMalformedExtract)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx, "episodes")
	assert.ErrorIs(t, err, context.Canceled)
}
