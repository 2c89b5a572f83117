package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gamebot/internal/domain"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultVersion, c.Version)
	assert.Len(t, c.Datasets, 12)

	d, err := c.Dataset("challenge_summary")
	require.NoError(t, err)
	assert.True(t, d.FanOut)
	assert.True(t, d.FullReplace)
	assert.Equal(t, "raw_challenge_summary", d.RawTable())

	d, err = c.Dataset("challenge_description")
	require.NoError(t, err)
	assert.Equal(t, SkillTags, d.TagColumns)

	_, err = c.Dataset("nope")
	assert.ErrorIs(t, err, domain.ErrUnknownDataset)
}

func TestCatalog_Select(t *testing.T) {
	c := Default()

	all, err := c.Select(nil)
	require.NoError(t, err)
	assert.Equal(t, c.Names(), all)

	// Selection keeps catalog order regardless of input order
	sel, err := c.Select([]string{"vote_history", "castaway_details"})
	require.NoError(t, err)
	assert.Equal(t, []string{"castaway_details", "vote_history"}, sel)

	_, err = c.Select([]string{"castaways", "unknown"})
	assert.ErrorIs(t, err, domain.ErrUnknownDataset)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		datasets []Dataset
		errMsg   string
	}{
		{
			name:     "missing natural key",
			datasets: []Dataset{{Name: "a", Columns: []Column{required(str("id"))}}},
			errMsg:   "natural key is required",
		},
		{
			name:     "nullable natural key",
			datasets: []Dataset{{Name: "a", NaturalKey: []string{"id"}, Columns: []Column{str("id")}}},
			errMsg:   "must not be nullable",
		},
		{
			name:     "bad type",
			datasets: []Dataset{{Name: "a", NaturalKey: []string{"id"}, Columns: []Column{{Name: "id", Type: "decimal"}}}},
			errMsg:   "unsupported type",
		},
		{
			name:     "bad name",
			datasets: []Dataset{{Name: "Bad-Name", NaturalKey: []string{"id"}, Columns: []Column{required(str("id"))}}},
			errMsg:   "lower snake case",
		},
		{
			name: "unknown reference target",
			datasets: []Dataset{{
				Name:       "a",
				NaturalKey: []string{"id"},
				Columns:    []Column{required(str("id")), str("ref")},
				References: []Reference{{Column: "ref", TargetDataset: "b", TargetColumn: "id"}},
			}},
			errMsg: "unknown dataset",
		},
		{
			name: "tag column not boolean",
			datasets: []Dataset{{
				Name:       "a",
				NaturalKey: []string{"id"},
				Columns:    []Column{required(str("id")), str("tag")},
				TagColumns: []string{"tag"},
			}},
			errMsg: "declared boolean column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("test", tt.datasets)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad(t *testing.T) {
	content := `
version: v2
datasets:
  - name: castaway_details
    natural_key: [castaway_id]
    columns:
      - {name: castaway_id, type: string}
      - {name: full_name, type: string, nullable: true}
  - name: season_summary
    natural_key: [version_season]
    columns:
      - {name: version_season, type: string}
      - {name: winner_id, type: string, nullable: true}
      - {name: notes, type: string, nullable: true, ignore_drift: true}
    references:
      - {column: winner_id, target_dataset: castaway_details, target_column: castaway_id}
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", c.Version)
	assert.Equal(t, []string{"castaway_details", "season_summary"}, c.Names())

	d, err := c.Dataset("season_summary")
	require.NoError(t, err)
	col, ok := d.Column("notes")
	require.True(t, ok)
	assert.True(t, col.IgnoreDrift)
	require.Len(t, d.References, 1)
	assert.Equal(t, "castaway_details", d.References[0].TargetDataset)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, def.Version)
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name     string
		col      Column
		raw      string
		expected interface{}
		wantErr  bool
	}{
		{name: "string", col: str("x"), raw: " Boston Rob ", expected: "Boston Rob"},
		{name: "NA is null", col: str("x"), raw: "NA", expected: nil},
		{name: "empty is null", col: integer("x"), raw: "", expected: nil},
		{name: "required null", col: required(str("x")), raw: "NA", wantErr: true},
		{name: "integer", col: integer("x"), raw: "42", expected: int64(42)},
		{name: "whole float as integer", col: integer("x"), raw: "3.0", expected: int64(3)},
		{name: "fractional integer", col: integer("x"), raw: "3.5", wantErr: true},
		{name: "float", col: float("x"), raw: "8.75", expected: 8.75},
		{name: "NaN float", col: float("x"), raw: "NaN", wantErr: true},
		{name: "boolean TRUE", col: boolean("x"), raw: "TRUE", expected: true},
		{name: "boolean 0", col: boolean("x"), raw: "0", expected: false},
		{name: "boolean garbage", col: boolean("x"), raw: "maybe", wantErr: true},
		{name: "date", col: date("x"), raw: "2000-05-31", expected: "2000-05-31"},
		{name: "date slash", col: date("x"), raw: "2000/05/31", expected: "2000-05-31"},
		{name: "bad date", col: date("x"), raw: "31st May", wantErr: true},
		{name: "timestamp", col: Column{Name: "x", Type: domain.TypeTimestamp, Nullable: true}, raw: "2000-05-31 20:00:00", expected: "2000-05-31T20:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.col, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}
