package features

import (
	"math"
	"sort"
	"strings"

	"github.com/feral-file/gamebot/internal/store"
	"github.com/feral-file/gamebot/internal/store/schema"
)

// CastawayFeatures are the terminal features of one castaway across every season
type CastawayFeatures struct {
	Appearances   AppearanceFeatures   `json:"appearances"`
	Challenges    ChallengeFeatures    `json:"challenges"`
	Votes         VoteFeatures         `json:"votes"`
	Confessionals ConfessionalFeatures `json:"confessionals"`
	Advantages    AdvantageFeatures    `json:"advantages"`
}

type AppearanceFeatures struct {
	SeasonsPlayed int    `json:"seasons_played"`
	BestPlacement *int64 `json:"best_placement"`
	Wins          int    `json:"wins"`
	Finalist      int    `json:"finalist"`
	Jury          int    `json:"jury"`
}

type ChallengeFeatures struct {
	Participations int     `json:"participations"`
	Wins           int     `json:"wins"`
	WinRate        float64 `json:"win_rate"`
}

type VoteFeatures struct {
	Cast              int `json:"cast"`
	Received          int `json:"received"`
	ReceivedNullified int `json:"received_nullified"`
}

type ConfessionalFeatures struct {
	Count int64   `json:"count"`
	Time  float64 `json:"time"`
}

type AdvantageFeatures struct {
	Found  int `json:"found"`
	Played int `json:"played"`
}

// EpisodeFeatures are the cumulative features of one castaway as of one episode.
// Only events at or before the episode contribute.
type EpisodeFeatures struct {
	Position      PositionFeatures     `json:"position"`
	Challenges    ChallengeFeatures    `json:"challenges"`
	Votes         VoteFeatures         `json:"votes"`
	Confessionals ConfessionalFeatures `json:"confessionals"`
	Advantages    AdvantageFeatures    `json:"advantages"`
}

type PositionFeatures struct {
	Episode      int64 `json:"episode"`
	EpisodesSeen int   `json:"episodes_seen"`
}

// SeasonFeatures are the terminal features of one season
type SeasonFeatures struct {
	CastSize      int                  `json:"cast_size"`
	Episodes      int                  `json:"episodes"`
	Challenges    int                  `json:"challenges"`
	Votes         int                  `json:"votes"`
	Advantages    int                  `json:"advantages"`
	Confessionals ConfessionalFeatures `json:"confessionals"`
}

// CastawayRow is the computed features of one castaway
type CastawayRow struct {
	CastawayKey int64
	Features    CastawayFeatures
}

// EpisodeRow is the computed features of one castaway at one episode
type EpisodeRow struct {
	CastawayKey int64
	SeasonKey   int64
	EpisodeKey  int64
	Features    EpisodeFeatures
}

// SeasonRow is the computed features of one season
type SeasonRow struct {
	SeasonKey int64
	Features  SeasonFeatures
}

// Computed holds every feature row, each slice in key order
type Computed struct {
	Castaways []CastawayRow
	Episodes  []EpisodeRow
	Seasons   []SeasonRow
}

// round6 keeps derived floats stable across platforms
func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

func rate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return round6(float64(wins) / float64(total))
}

func isEvent(event *string, prefix string) bool {
	return event != nil && strings.HasPrefix(strings.ToLower(strings.TrimSpace(*event)), prefix)
}

// Compute derives every feature from the curated layer. It is a pure function of data.
func Compute(data *store.CuratedData) *Computed {
	return &Computed{
		Castaways: computeCastaways(data),
		Episodes:  computeEpisodes(data),
		Seasons:   computeSeasons(data),
	}
}

func computeCastaways(data *store.CuratedData) []CastawayRow {
	byKey := make(map[int64]*CastawayFeatures, len(data.Castaways))
	keys := make([]int64, 0, len(data.Castaways))
	for _, c := range data.Castaways {
		byKey[c.CastawayKey] = &CastawayFeatures{}
		keys = append(keys, c.CastawayKey)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, b := range data.CastawaySeasons {
		f, ok := byKey[b.CastawayKey]
		if !ok {
			continue
		}
		f.Appearances.SeasonsPlayed++
		if b.Place != nil && (f.Appearances.BestPlacement == nil || *b.Place < *f.Appearances.BestPlacement) {
			place := *b.Place
			f.Appearances.BestPlacement = &place
		}
		if b.Winner {
			f.Appearances.Wins++
		}
		if b.Finalist {
			f.Appearances.Finalist++
		}
		if b.Jury {
			f.Appearances.Jury++
		}
	}

	for _, r := range data.ChallengeResults {
		if f, ok := byKey[r.CastawayKey]; ok {
			f.Challenges.Participations++
			if r.Won {
				f.Challenges.Wins++
			}
		}
	}

	for _, v := range data.Votes {
		if f, ok := byKey[v.VoterCastawayKey]; ok {
			f.Votes.Cast++
		}
		if v.TargetCastawayKey == nil {
			continue
		}
		if f, ok := byKey[*v.TargetCastawayKey]; ok {
			f.Votes.Received++
			if v.Nullified {
				f.Votes.ReceivedNullified++
			}
		}
	}

	for _, c := range data.Confessionals {
		if f, ok := byKey[c.CastawayKey]; ok {
			addConfessional(&f.Confessionals, c)
		}
	}

	for _, e := range data.AdvantageEvents {
		if e.CastawayKey == nil {
			continue
		}
		if f, ok := byKey[*e.CastawayKey]; ok {
			addAdvantage(&f.Advantages, e)
		}
	}

	rows := make([]CastawayRow, 0, len(keys))
	for _, k := range keys {
		f := byKey[k]
		f.Challenges.WinRate = rate(f.Challenges.Wins, f.Challenges.Participations)
		f.Confessionals.Time = round6(f.Confessionals.Time)
		rows = append(rows, CastawayRow{CastawayKey: k, Features: *f})
	}
	return rows
}

func addConfessional(f *ConfessionalFeatures, c schema.FactConfessional) {
	if c.ConfessionalCount != nil {
		f.Count += *c.ConfessionalCount
	}
	if c.ConfessionalTime != nil {
		f.Time += *c.ConfessionalTime
	}
}

func addAdvantage(f *AdvantageFeatures, e schema.FactAdvantageEvent) {
	switch {
	case isEvent(e.Event, "found"):
		f.Found++
	case isEvent(e.Event, "played"):
		f.Played++
	}
}

// episodeDelta holds what happened to one castaway in one episode
type episodeDelta struct {
	challenges    ChallengeFeatures
	votes         VoteFeatures
	confessionals ConfessionalFeatures
	advantages    AdvantageFeatures
}

type castawayEpisode struct {
	castaway int64
	episode  int64
}

// computeEpisodes accumulates per-episode deltas in episode order within each castaway season
func computeEpisodes(data *store.CuratedData) []EpisodeRow {
	deltas := make(map[castawayEpisode]*episodeDelta)
	delta := func(castaway, episode int64) *episodeDelta {
		k := castawayEpisode{castaway, episode}
		d, ok := deltas[k]
		if !ok {
			d = &episodeDelta{}
			deltas[k] = d
		}
		return d
	}

	for _, r := range data.ChallengeResults {
		if r.EpisodeKey == nil {
			continue
		}
		d := delta(r.CastawayKey, *r.EpisodeKey)
		d.challenges.Participations++
		if r.Won {
			d.challenges.Wins++
		}
	}
	for _, v := range data.Votes {
		delta(v.VoterCastawayKey, v.EpisodeKey).votes.Cast++
		if v.TargetCastawayKey != nil {
			d := delta(*v.TargetCastawayKey, v.EpisodeKey)
			d.votes.Received++
			if v.Nullified {
				d.votes.ReceivedNullified++
			}
		}
	}
	for _, c := range data.Confessionals {
		addConfessional(&delta(c.CastawayKey, c.EpisodeKey).confessionals, c)
	}
	for _, e := range data.AdvantageEvents {
		if e.CastawayKey == nil || e.EpisodeKey == nil {
			continue
		}
		addAdvantage(&delta(*e.CastawayKey, *e.EpisodeKey).advantages, e)
	}

	episodesBySeason := make(map[int64][]schema.DimEpisode)
	for _, e := range data.Episodes {
		episodesBySeason[e.SeasonKey] = append(episodesBySeason[e.SeasonKey], e)
	}
	for _, eps := range episodesBySeason {
		sort.Slice(eps, func(i, j int) bool {
			if eps[i].Episode != eps[j].Episode {
				return eps[i].Episode < eps[j].Episode
			}
			return eps[i].EpisodeKey < eps[j].EpisodeKey
		})
	}

	bridges := make([]schema.BridgeCastawaySeason, len(data.CastawaySeasons))
	copy(bridges, data.CastawaySeasons)
	sort.Slice(bridges, func(i, j int) bool {
		if bridges[i].CastawayKey != bridges[j].CastawayKey {
			return bridges[i].CastawayKey < bridges[j].CastawayKey
		}
		return bridges[i].SeasonKey < bridges[j].SeasonKey
	})

	rows := make([]EpisodeRow, 0)
	for _, b := range bridges {
		var running EpisodeFeatures
		for i, ep := range episodesBySeason[b.SeasonKey] {
			if b.EliminationEpisode != nil && ep.Episode > *b.EliminationEpisode {
				break
			}
			if d, ok := deltas[castawayEpisode{b.CastawayKey, ep.EpisodeKey}]; ok {
				running.Challenges.Participations += d.challenges.Participations
				running.Challenges.Wins += d.challenges.Wins
				running.Votes.Cast += d.votes.Cast
				running.Votes.Received += d.votes.Received
				running.Votes.ReceivedNullified += d.votes.ReceivedNullified
				running.Confessionals.Count += d.confessionals.Count
				running.Confessionals.Time += d.confessionals.Time
				running.Advantages.Found += d.advantages.Found
				running.Advantages.Played += d.advantages.Played
			}
			running.Position = PositionFeatures{Episode: ep.Episode, EpisodesSeen: i + 1}

			snapshot := running
			snapshot.Challenges.WinRate = rate(running.Challenges.Wins, running.Challenges.Participations)
			snapshot.Confessionals.Time = round6(running.Confessionals.Time)
			rows = append(rows, EpisodeRow{
				CastawayKey: b.CastawayKey,
				SeasonKey:   b.SeasonKey,
				EpisodeKey:  ep.EpisodeKey,
				Features:    snapshot,
			})
		}
	}
	return rows
}

func computeSeasons(data *store.CuratedData) []SeasonRow {
	byKey := make(map[int64]*SeasonFeatures, len(data.Seasons))
	keys := make([]int64, 0, len(data.Seasons))
	for _, s := range data.Seasons {
		byKey[s.SeasonKey] = &SeasonFeatures{}
		keys = append(keys, s.SeasonKey)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	count := func(season int64, inc func(*SeasonFeatures)) {
		if f, ok := byKey[season]; ok {
			inc(f)
		}
	}
	for _, b := range data.CastawaySeasons {
		count(b.SeasonKey, func(f *SeasonFeatures) { f.CastSize++ })
	}
	for _, e := range data.Episodes {
		count(e.SeasonKey, func(f *SeasonFeatures) { f.Episodes++ })
	}
	for _, c := range data.Challenges {
		count(c.SeasonKey, func(f *SeasonFeatures) { f.Challenges++ })
	}
	for _, v := range data.Votes {
		count(v.SeasonKey, func(f *SeasonFeatures) { f.Votes++ })
	}
	for _, a := range data.Advantages {
		count(a.SeasonKey, func(f *SeasonFeatures) { f.Advantages++ })
	}
	for _, c := range data.Confessionals {
		count(c.SeasonKey, func(f *SeasonFeatures) { addConfessional(&f.Confessionals, c) })
	}

	rows := make([]SeasonRow, 0, len(keys))
	for _, k := range keys {
		f := byKey[k]
		f.Confessionals.Time = round6(f.Confessionals.Time)
		rows = append(rows, SeasonRow{SeasonKey: k, Features: *f})
	}
	return rows
}
