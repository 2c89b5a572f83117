package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gamebot/internal/store"
	"github.com/feral-file/gamebot/internal/store/schema"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

const (
	sandra int64 = 101
	tony   int64 = 102
	us40   int64 = 40
	ep1    int64 = 1001
	ep2    int64 = 1002
	ep3    int64 = 1003
)

// testCuratedData is one season of three episodes; Sandra leaves after episode 2
func testCuratedData() *store.CuratedData {
	return &store.CuratedData{
		Castaways: []schema.DimCastaway{{CastawayKey: sandra, CastawayID: "US0001"}, {CastawayKey: tony, CastawayID: "US0003"}},
		Seasons:   []schema.DimSeason{{SeasonKey: us40, VersionSeason: "US40"}},
		Episodes: []schema.DimEpisode{
			// deliberately out of order
			{EpisodeKey: ep3, SeasonKey: us40, Episode: 3},
			{EpisodeKey: ep1, SeasonKey: us40, Episode: 1},
			{EpisodeKey: ep2, SeasonKey: us40, Episode: 2},
		},
		Challenges: []schema.DimChallenge{{ChallengeKey: 1, SeasonKey: us40}, {ChallengeKey: 2, SeasonKey: us40}},
		Advantages: []schema.DimAdvantage{{AdvantageKey: 7, SeasonKey: us40}},
		CastawaySeasons: []schema.BridgeCastawaySeason{
			{CastawayKey: sandra, SeasonKey: us40, Place: i64(16), EliminationEpisode: i64(2), Jury: true},
			{CastawayKey: tony, SeasonKey: us40, Place: i64(1), Winner: true, Finalist: true},
		},
		ChallengeResults: []schema.FactChallengeResult{
			{ChallengeKey: 1, CastawayKey: sandra, SeasonKey: us40, EpisodeKey: i64(ep1), Won: true},
			{ChallengeKey: 1, CastawayKey: tony, SeasonKey: us40, EpisodeKey: i64(ep1)},
			{ChallengeKey: 2, CastawayKey: tony, SeasonKey: us40, EpisodeKey: i64(ep3), Won: true},
			{ChallengeKey: 3, CastawayKey: tony, SeasonKey: us40, Won: true},
		},
		Votes: []schema.FactVote{
			{EpisodeKey: ep2, VoterCastawayKey: tony, VoteOrder: 1, SeasonKey: us40, TargetCastawayKey: i64(sandra)},
			{EpisodeKey: ep2, VoterCastawayKey: sandra, VoteOrder: 1, SeasonKey: us40, TargetCastawayKey: i64(tony), Nullified: true},
			{EpisodeKey: ep3, VoterCastawayKey: tony, VoteOrder: 1, SeasonKey: us40},
		},
		AdvantageEvents: []schema.FactAdvantageEvent{
			{AdvantageKey: 7, SequenceID: 1, SeasonKey: us40, CastawayKey: i64(tony), EpisodeKey: i64(ep1), Event: str("Found")},
			{AdvantageKey: 7, SequenceID: 2, SeasonKey: us40, CastawayKey: i64(tony), EpisodeKey: i64(ep2), Event: str("Played")},
		},
		Confessionals: []schema.FactConfessional{
			{CastawayKey: sandra, EpisodeKey: ep1, SeasonKey: us40, ConfessionalCount: i64(3), ConfessionalTime: f64(40.1)},
			{CastawayKey: sandra, EpisodeKey: ep2, SeasonKey: us40, ConfessionalCount: i64(2), ConfessionalTime: f64(20.2)},
			{CastawayKey: tony, EpisodeKey: ep3, SeasonKey: us40, ConfessionalCount: i64(6)},
		},
	}
}

func TestCompute_TerminalAggregates(t *testing.T) {
	c := Compute(testCuratedData())

	require.Len(t, c.Castaways, 2)
	s := c.Castaways[0]
	assert.Equal(t, sandra, s.CastawayKey)
	assert.Equal(t, 1, s.Features.Appearances.SeasonsPlayed)
	assert.Equal(t, int64(16), *s.Features.Appearances.BestPlacement)
	assert.Equal(t, 1, s.Features.Appearances.Jury)
	assert.Equal(t, ChallengeFeatures{Participations: 1, Wins: 1, WinRate: 1}, s.Features.Challenges)
	assert.Equal(t, VoteFeatures{Cast: 1, Received: 1}, s.Features.Votes)
	assert.Equal(t, ConfessionalFeatures{Count: 5, Time: 60.3}, s.Features.Confessionals)

	tf := c.Castaways[1].Features
	assert.Equal(t, 1, tf.Appearances.Wins)
	assert.Equal(t, ChallengeFeatures{Participations: 3, Wins: 2, WinRate: 0.666667}, tf.Challenges)
	assert.Equal(t, VoteFeatures{Cast: 2, Received: 1, ReceivedNullified: 1}, tf.Votes)
	assert.Equal(t, AdvantageFeatures{Found: 1, Played: 1}, tf.Advantages)

	require.Len(t, c.Seasons, 1)
	assert.Equal(t, SeasonFeatures{
		CastSize:      2,
		Episodes:      3,
		Challenges:    2,
		Votes:         3,
		Advantages:    1,
		Confessionals: ConfessionalFeatures{Count: 11, Time: 60.3},
	}, c.Seasons[0].Features)
}

func TestCompute_CumulativeUsesOnlyPastEpisodes(t *testing.T) {
	c := Compute(testCuratedData())

	var sandraRows, tonyRows []EpisodeRow
	for _, r := range c.Episodes {
		switch r.CastawayKey {
		case sandra:
			sandraRows = append(sandraRows, r)
		case tony:
			tonyRows = append(tonyRows, r)
		}
	}

	// Sandra stops at her elimination episode
	require.Len(t, sandraRows, 2)
	assert.Equal(t, ep1, sandraRows[0].EpisodeKey)
	assert.Equal(t, ep2, sandraRows[1].EpisodeKey)
	assert.Equal(t, 0, sandraRows[0].Features.Votes.Received, "vote in episode 2 must not leak into episode 1")
	assert.Equal(t, 1, sandraRows[1].Features.Votes.Received)
	assert.Equal(t, int64(3), sandraRows[0].Features.Confessionals.Count)
	assert.Equal(t, int64(5), sandraRows[1].Features.Confessionals.Count)

	require.Len(t, tonyRows, 3)
	assert.Equal(t, PositionFeatures{Episode: 3, EpisodesSeen: 3}, tonyRows[2].Features.Position)
	assert.Equal(t, AdvantageFeatures{Found: 1}, tonyRows[0].Features.Advantages)
	assert.Equal(t, AdvantageFeatures{Found: 1, Played: 1}, tonyRows[1].Features.Advantages)
	// the result without an episode only counts in terminal features
	assert.Equal(t, 2, tonyRows[2].Features.Challenges.Participations)
}

func TestCompute_CumulativeMonotonicity(t *testing.T) {
	c := Compute(testCuratedData())

	type series struct{ castaway, season int64 }
	last := make(map[series]EpisodeFeatures)
	for _, r := range c.Episodes {
		k := series{r.CastawayKey, r.SeasonKey}
		prev, seen := last[k]
		if seen {
			f := r.Features
			assert.Greater(t, f.Position.Episode, prev.Position.Episode)
			assert.GreaterOrEqual(t, f.Challenges.Participations, prev.Challenges.Participations)
			assert.GreaterOrEqual(t, f.Challenges.Wins, prev.Challenges.Wins)
			assert.GreaterOrEqual(t, f.Votes.Cast, prev.Votes.Cast)
			assert.GreaterOrEqual(t, f.Votes.Received, prev.Votes.Received)
			assert.GreaterOrEqual(t, f.Confessionals.Count, prev.Confessionals.Count)
			assert.GreaterOrEqual(t, f.Confessionals.Time, prev.Confessionals.Time)
			assert.GreaterOrEqual(t, f.Advantages.Found, prev.Advantages.Found)
			assert.GreaterOrEqual(t, f.Advantages.Played, prev.Advantages.Played)
		}
		last[k] = r.Features
	}
	assert.Len(t, last, 2)
}

func TestCompute_Empty(t *testing.T) {
	c := Compute(&store.CuratedData{})
	assert.Empty(t, c.Castaways)
	assert.Empty(t, c.Episodes)
	assert.Empty(t, c.Seasons)
}
