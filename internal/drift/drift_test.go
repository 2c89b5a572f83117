package drift_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/drift"
)

func testDataset() *catalog.Dataset {
	return &catalog.Dataset{
		Name:       "episodes",
		NaturalKey: []string{"version_season", "episode"},
		Columns: []catalog.Column{
			{Name: "version_season", Type: domain.TypeString},
			{Name: "episode", Type: domain.TypeInteger},
			{Name: "viewers", Type: domain.TypeFloat, Nullable: true},
			{Name: "episode_date", Type: domain.TypeDate, Nullable: true},
			{Name: "episode_title", Type: domain.TypeString, Nullable: true},
			{Name: "notes", Type: domain.TypeString, Nullable: true, IgnoreDrift: true},
		},
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		observed []drift.ObservedColumn
		expected []drift.Entry
	}{
		{
			name: "matching extract has no drift",
			observed: []drift.ObservedColumn{
				{Name: "version_season", Type: domain.TypeString},
				{Name: "episode", Type: domain.TypeInteger},
				{Name: "viewers", Type: domain.TypeFloat},
				{Name: "episode_date", Type: domain.TypeDate},
				{Name: "episode_title", Type: domain.TypeInteger},
			},
			expected: []drift.Entry{},
		},
		{
			name: "integer observed for float is compatible",
			observed: []drift.ObservedColumn{
				{Name: "version_season", Type: domain.TypeString},
				{Name: "episode", Type: domain.TypeInteger},
				{Name: "viewers", Type: domain.TypeInteger},
				{Name: "episode_date", Type: domain.TypeDate},
				{Name: "episode_title", Type: domain.TypeString},
			},
			expected: []drift.Entry{},
		},
		{
			name: "added removed and changed columns",
			observed: []drift.ObservedColumn{
				{Name: "version_season", Type: domain.TypeString},
				{Name: "episode", Type: domain.TypeString},
				{Name: "viewers", Type: domain.TypeFloat},
				{Name: "imdb_votes", Type: domain.TypeInteger},
			},
			expected: []drift.Entry{
				{Dataset: "episodes", Column: "episode", Kind: drift.KindTypeChanged, Expected: domain.TypeInteger, Observed: domain.TypeString},
				{Dataset: "episodes", Column: "episode_date", Kind: drift.KindRemoved, Expected: domain.TypeDate},
				{Dataset: "episodes", Column: "episode_title", Kind: drift.KindRemoved, Expected: domain.TypeString},
				{Dataset: "episodes", Column: "imdb_votes", Kind: drift.KindAdded, Observed: domain.TypeInteger},
			},
		},
		{
			name: "all-null and housekeeping columns never drift",
			observed: []drift.ObservedColumn{
				{Name: "version_season", Type: domain.TypeString},
				{Name: "episode", Type: domain.TypeInteger},
				{Name: "viewers"},
				{Name: "episode_date"},
				{Name: "episode_title"},
				{Name: "ingested_at", Type: domain.TypeTimestamp},
				{Name: "_row", Type: domain.TypeInteger},
				{Name: "source_hash", Type: domain.TypeString},
			},
			expected: []drift.Entry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, drift.Diff(testDataset(), tt.observed))
		})
	}
}

func TestInferrer(t *testing.T) {
	inf := drift.NewInferrer([]string{"flag", "count", "ratio", "day", "at", "name", "empty"})
	inf.Observe([]string{"TRUE", "1", "1", "2001-01-01", "2001-01-01T10:00:00Z", "Sonja", "NA"})
	inf.Observe([]string{"false", "2", "1.5", "2001-02-03", "2001-01-02 10:00:00", "7", ""})
	inf.Observe([]string{"NA", "3.0", "NA", "NA", "NA", "NA", "NA"})
	// short rows are tolerated
	inf.Observe([]string{"true"})

	cols := inf.Columns()
	require.Len(t, cols, 7)
	assert.Equal(t, []drift.ObservedColumn{
		{Name: "flag", Type: domain.TypeBoolean},
		{Name: "count", Type: domain.TypeInteger},
		{Name: "ratio", Type: domain.TypeFloat},
		{Name: "day", Type: domain.TypeDate},
		{Name: "at", Type: domain.TypeTimestamp},
		{Name: "name", Type: domain.TypeString},
		{Name: "empty"},
	}, cols)
}

func TestCompatible(t *testing.T) {
	assert.True(t, drift.Compatible(domain.TypeFloat, domain.TypeInteger))
	assert.True(t, drift.Compatible(domain.TypeString, domain.TypeDate))
	assert.True(t, drift.Compatible(domain.TypeTimestamp, domain.TypeDate))
	assert.True(t, drift.Compatible(domain.TypeBoolean, domain.TypeInteger))
	assert.True(t, drift.Compatible(domain.TypeDate, ""))
	assert.False(t, drift.Compatible(domain.TypeInteger, domain.TypeFloat))
	assert.False(t, drift.Compatible(domain.TypeDate, domain.TypeString))
}
