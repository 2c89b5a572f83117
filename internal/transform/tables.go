package transform

import (
	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/store/schema"
)

// dimensionKeys maps each dimension to its surrogate key column
var dimensionKeys = map[string]string{
	schema.TableDimCastaway:  "castaway_key",
	schema.TableDimSeason:    "season_key",
	schema.TableDimEpisode:   "episode_key",
	schema.TableDimAdvantage: "advantage_key",
	schema.TableDimChallenge: "challenge_key",
	schema.TableDimSkill:     "skill_key",
}

// tableDef declares how one curated table is built
type tableDef struct {
	name      string
	sources   []string
	dependsOn []string
	build     func(b *builder, out *output) error
}

// tableDefs is in dependency order: every table follows the tables it references
var tableDefs = []tableDef{
	{name: schema.TableDimCastaway, sources: []string{"castaway_details"}, build: buildDimCastaway},
	{name: schema.TableDimSeason, sources: []string{"season_summary"}, dependsOn: []string{schema.TableDimCastaway}, build: buildDimSeason},
	{name: schema.TableDimEpisode, sources: []string{"episodes"}, dependsOn: []string{schema.TableDimSeason}, build: buildDimEpisode},
	{name: schema.TableDimAdvantage, sources: []string{"advantage_details"}, dependsOn: []string{schema.TableDimSeason}, build: buildDimAdvantage},
	{name: schema.TableDimChallenge, sources: []string{"challenge_description"}, dependsOn: []string{schema.TableDimSeason}, build: buildDimChallenge},
	{name: schema.TableDimSkill, sources: []string{"challenge_description"}, build: buildDimSkill},
	{name: schema.TableBridgeCastawaySeason, sources: []string{"castaways"}, dependsOn: []string{schema.TableDimCastaway, schema.TableDimSeason}, build: buildBridgeCastawaySeason},
	{name: schema.TableBridgeChallengeSkill, sources: []string{"challenge_description"}, dependsOn: []string{schema.TableDimChallenge, schema.TableDimSkill}, build: buildBridgeChallengeSkill},
	{name: schema.TableFactChallengeResult, sources: []string{"challenge_results"}, dependsOn: []string{schema.TableDimChallenge, schema.TableDimCastaway, schema.TableDimSeason, schema.TableDimEpisode}, build: buildFactChallengeResult},
	{name: schema.TableFactVote, sources: []string{"vote_history"}, dependsOn: []string{schema.TableDimEpisode, schema.TableDimCastaway, schema.TableDimSeason}, build: buildFactVote},
	{name: schema.TableFactAdvantageEvent, sources: []string{"advantage_movement"}, dependsOn: []string{schema.TableDimAdvantage, schema.TableDimCastaway, schema.TableDimEpisode}, build: buildFactAdvantageEvent},
	{name: schema.TableFactTribeMembership, sources: []string{"tribe_mapping"}, dependsOn: []string{schema.TableDimCastaway, schema.TableDimEpisode}, build: buildFactTribeMembership},
	{name: schema.TableFactConfessional, sources: []string{"confessionals"}, dependsOn: []string{schema.TableDimCastaway, schema.TableDimEpisode}, build: buildFactConfessional},
}

func castawayKey(castawayID string) int64 { return SurrogateKey(schema.TableDimCastaway, castawayID) }
func seasonKey(versionSeason string) int64 { return SurrogateKey(schema.TableDimSeason, versionSeason) }
func episodeKey(versionSeason, episode string) int64 {
	return SurrogateKey(schema.TableDimEpisode, versionSeason, episode)
}
func challengeKey(versionSeason, challengeID string) int64 {
	return SurrogateKey(schema.TableDimChallenge, versionSeason, challengeID)
}
func advantageKey(versionSeason, advantageID string) int64 {
	return SurrogateKey(schema.TableDimAdvantage, versionSeason, advantageID)
}
func skillKey(name string) int64 { return SurrogateKey(schema.TableDimSkill, name) }

// optionalKey derives a nullable foreign key from a nullable id column
func optionalKey(p domain.Payload, col string, key func(string) int64) *int64 {
	v, ok := p.String(col)
	if !ok {
		return nil
	}
	k := key(v)
	return &k
}

func season(p domain.Payload) string {
	v, _ := p.String(catalog.ContextColumn)
	return v
}

func buildDimCastaway(b *builder, out *output) error {
	rows, err := b.rows("castaway_details")
	if err != nil {
		return err
	}
	dims := make([]schema.DimCastaway, 0, len(rows))
	for _, r := range rows {
		p := r.payload
		id, ok := p.String("castaway_id")
		if !ok {
			out.skipped++
			continue
		}
		key := castawayKey(id)
		if !out.unique(r.naturalKey, key) {
			continue
		}
		dims = append(dims, schema.DimCastaway{
			CastawayKey:      key,
			CastawayID:       id,
			FullName:         text(p, "full_name"),
			ShortName:        text(p, "castaway"),
			DateOfBirth:      calendarDate(p, "date_of_birth"),
			DateOfDeath:      calendarDate(p, "date_of_death"),
			Gender:           text(p, "gender"),
			Race:             text(p, "race"),
			Ethnicity:        text(p, "ethnicity"),
			Occupation:       text(p, "occupation"),
			PersonalityType:  text(p, "personality_type"),
			LGBT:             flag(p, "lgbt"),
			BIPOC:            flag(p, "bipoc"),
			SourceNaturalKey: r.naturalKey,
		})
		out.addKey(key)
	}
	out.rows, out.count = dims, len(dims)
	return nil
}

func buildDimSeason(b *builder, out *output) error {
	rows, err := b.rows("season_summary")
	if err != nil {
		return err
	}
	dims := make([]schema.DimSeason, 0, len(rows))
	for _, r := range rows {
		p := r.payload
		vs := season(p)
		key := seasonKey(vs)
		if !out.unique(r.naturalKey, key) {
			continue
		}
		winner := optionalKey(p, "winner_id", castawayKey)
		if ok, err := out.existsOptional(b, schema.TableDimCastaway, "winner_castaway_key", r.naturalKey, winner); err != nil || !ok {
			if err != nil {
				return err
			}
			continue
		}
		dims = append(dims, schema.DimSeason{
			SeasonKey:         key,
			VersionSeason:     vs,
			Version:           text(p, "version"),
			Season:            integer(p, "season"),
			SeasonName:        text(p, "season_name"),
			Location:          text(p, "location"),
			Country:           text(p, "country"),
			TribeSetup:        text(p, "tribe_setup"),
			CastSize:          integer(p, "n_cast"),
			TribeCount:        integer(p, "n_tribes"),
			FinalistCount:     integer(p, "n_finalists"),
			JurySize:          integer(p, "n_jury"),
			WinnerCastawayKey: winner,
			Premiered:         calendarDate(p, "premiered"),
			Ended:             calendarDate(p, "ended"),
			ViewersMean:       number(p, "viewers_mean"),
			SourceNaturalKey:  r.naturalKey,
		})
		out.addKey(key)
	}
	out.rows, out.count = dims, len(dims)
	return nil
}

func buildDimEpisode(b *builder, out *output) error {
	rows, err := b.rows("episodes")
	if err != nil {
		return err
	}
	dims := make([]schema.DimEpisode, 0, len(rows))
	for _, r := range rows {
		p := r.payload
		vs := season(p)
		ep, ok := p.Int64("episode")
		epText, _ := p.String("episode")
		if !ok {
			out.skipped++
			continue
		}
		key := episodeKey(vs, epText)
		if !out.unique(r.naturalKey, key) {
			continue
		}
		sk := seasonKey(vs)
		if ok, err := out.exists(b, schema.TableDimSeason, "season_key", r.naturalKey, sk); err != nil || !ok {
			if err != nil {
				return err
			}
			continue
		}
		dims = append(dims, schema.DimEpisode{
			EpisodeKey:           key,
			SeasonKey:            sk,
			Episode:              ep,
			EpisodeNumberOverall: integer(p, "episode_number_overall"),
			Title:                text(p, "episode_title"),
			Label:                text(p, "episode_label"),
			AirDate:              calendarDate(p, "episode_date"),
			LengthMinutes:        integer(p, "episode_length"),
			Viewers:              number(p, "viewers"),
			IMDbRating:           number(p, "imdb_rating"),
			SourceNaturalKey:     r.naturalKey,
		})
		out.addKey(key)
	}
	out.rows, out.count = dims, len(dims)
	return nil
}

func buildDimAdvantage(b *builder, out *output) error {
	rows, err := b.rows("advantage_details")
	if err != nil {
		return err
	}
	dims := make([]schema.DimAdvantage, 0, len(rows))
	for _, r := range rows {
		p := r.payload
		vs := season(p)
		id, ok := p.String("advantage_id")
		if !ok {
			out.skipped++
			continue
		}
		key := advantageKey(vs, id)
		if !out.unique(r.naturalKey, key) {
			continue
		}
		sk := seasonKey(vs)
		if ok, err := out.exists(b, schema.TableDimSeason, "season_key", r.naturalKey, sk); err != nil || !ok {
			if err != nil {
				return err
			}
			continue
		}
		dims = append(dims, schema.DimAdvantage{
			AdvantageKey:     key,
			SeasonKey:        sk,
			AdvantageID:      id,
			AdvantageType:    text(p, "advantage_type"),
			ClueDetails:      text(p, "clue_details"),
			LocationFound:    text(p, "location_found"),
			Conditions:       text(p, "conditions"),
			SourceNaturalKey: r.naturalKey,
		})
		out.addKey(key)
	}
	out.rows, out.count = dims, len(dims)
	return nil
}

func buildDimChallenge(b *builder, out *output) error {
	rows, err := b.rows("challenge_description")
	if err != nil {
		return err
	}
	dims := make([]schema.DimChallenge, 0, len(rows))
	for _, r := range rows {
		p := r.payload
		vs := season(p)
		id, ok := p.String("challenge_id")
		if !ok {
			out.skipped++
			continue
		}
		key := challengeKey(vs, id)
		if !out.unique(r.naturalKey, key) {
			continue
		}
		sk := seasonKey(vs)
		if ok, err := out.exists(b, schema.TableDimSeason, "season_key", r.naturalKey, sk); err != nil || !ok {
			if err != nil {
				return err
			}
			continue
		}
		dims = append(dims, schema.DimChallenge{
			ChallengeKey:     key,
			SeasonKey:        sk,
			ChallengeID:      id,
			Episode:          integer(p, "episode"),
			SogID:            integer(p, "sog_id"),
			Name:             text(p, "name"),
			RecurringName:    text(p, "recurring_name"),
			ChallengeType:    text(p, "challenge_type"),
			Description:      text(p, "description"),
			Reward:           text(p, "reward"),
			SourceNaturalKey: r.naturalKey,
		})
		out.addKey(key)
	}
	out.rows, out.count = dims, len(dims)
	return nil
}

// skillTags returns the tag columns declared on challenge_description
func skillTags(cat *catalog.Catalog) []string {
	ds, err := cat.Dataset("challenge_description")
	if err != nil {
		return nil
	}
	return ds.TagColumns
}

func buildDimSkill(b *builder, out *output) error {
	tags := skillTags(b.catalog)
	dims := make([]schema.DimSkill, 0, len(tags))
	for _, tag := range tags {
		key := skillKey(tag)
		if !out.unique(tag, key) {
			continue
		}
		dims = append(dims, schema.DimSkill{SkillKey: key, SkillName: tag})
		out.addKey(key)
	}
	out.rows, out.count = dims, len(dims)
	return nil
}

func buildBridgeCastawaySeason(b *builder, out *output) error {
	rows, err := b.rows("castaways")
	if err != nil {
		return err
	}
	people, err := b.targetKeys(schema.TableDimCastaway)
	if err != nil {
		return err
	}

	bridges := make([]schema.BridgeCastawaySeason, 0, len(rows))
	for _, r := range rows {
		p := r.payload
		vs := season(p)
		id, ok := p.String("castaway_id")
		if !ok {
			out.skipped++
			continue
		}
		ck := castawayKey(id)
		// Castaways without a person record cannot be placed and are counted instead
		if !people[ck] {
			out.skipped++
			continue
		}
		sk := seasonKey(vs)
		if !out.unique(r.naturalKey, ck, sk) {
			continue
		}
		if ok, err := out.exists(b, schema.TableDimSeason, "season_key", r.naturalKey, sk); err != nil || !ok {
			if err != nil {
				return err
			}
			continue
		}
		bridges = append(bridges, schema.BridgeCastawaySeason{
			CastawayKey:        ck,
			SeasonKey:          sk,
			CastawayName:       text(p, "castaway"),
			Age:                integer(p, "age"),
			Place:              integer(p, "place"),
			BootOrder:          integer(p, "order"),
			Result:             text(p, "result"),
			JuryStatus:         text(p, "jury_status"),
			OriginalTribe:      text(p, "original_tribe"),
			EliminationEpisode: integer(p, "episode"),
			EliminationDay:     integer(p, "day"),
			Jury:               truthy(p, "jury"),
			Finalist:           truthy(p, "finalist"),
			Winner:             truthy(p, "winner"),
			SourceNaturalKey:   r.naturalKey,
		})
	}
	out.rows, out.count = bridges, len(bridges)
	return nil
}

func buildBridgeChallengeSkill(b *builder, out *output) error {
	rows, err := b.rows("challenge_description")
	if err != nil {
		return err
	}
	tags := skillTags(b.catalog)

	bridges := make([]schema.BridgeChallengeSkill, 0)
	for _, r := range rows {
		p := r.payload
		id, ok := p.String("challenge_id")
		if !ok {
			out.skipped++
			continue
		}
		ck := challengeKey(season(p), id)
		for _, tag := range tags {
			if !truthy(p, tag) {
				continue
			}
			sk := skillKey(tag)
			if !out.unique(r.naturalKey, ck, sk) {
				continue
			}
			okChallenge, err := out.exists(b, schema.TableDimChallenge, "challenge_key", r.naturalKey, ck)
			if err != nil {
				return err
			}
			okSkill, err := out.exists(b, schema.TableDimSkill, "skill_key", r.naturalKey, sk)
			if err != nil {
				return err
			}
			if !okChallenge || !okSkill {
				continue
			}
			bridges = append(bridges, schema.BridgeChallengeSkill{ChallengeKey: ck, SkillKey: sk})
		}
	}
	out.rows, out.count = bridges, len(bridges)
	return nil
}

// allExist checks several foreign keys and reports whether every one resolved
func allExist(b *builder, out *output, sourceKey string, checks ...fkCheck) (bool, error) {
	all := true
	for _, c := range checks {
		ok, err := out.existsOptional(b, c.target, c.column, sourceKey, c.key)
		if err != nil {
			return false, err
		}
		all = all && ok
	}
	return all, nil
}

type fkCheck struct {
	target string
	column string
	key    *int64
}

func ptr(v int64) *int64 { return &v }

func buildFactChallengeResult(b *builder, out *output) error {
	rows, err := b.rows("challenge_results")
	if err != nil {
		return err
	}
	facts := make([]schema.FactChallengeResult, 0, len(rows))
	for _, r := range rows {
		p := r.payload
		vs := season(p)
		challengeID, okChallenge := p.String("challenge_id")
		castawayID, okCastaway := p.String("castaway_id")
		// a nulled key reference leaves nothing to attach the result to
		if !okChallenge || !okCastaway {
			out.skipped++
			continue
		}
		chk, ck, sk := challengeKey(vs, challengeID), castawayKey(castawayID), seasonKey(vs)
		ek := optionalKey(p, "episode", func(ep string) int64 { return episodeKey(vs, ep) })
		if !out.unique(r.naturalKey, chk, ck) {
			continue
		}
		ok, err := allExist(b, out, r.naturalKey,
			fkCheck{schema.TableDimChallenge, "challenge_key", ptr(chk)},
			fkCheck{schema.TableDimCastaway, "castaway_key", ptr(ck)},
			fkCheck{schema.TableDimSeason, "season_key", ptr(sk)},
			fkCheck{schema.TableDimEpisode, "episode_key", ek},
		)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		result := text(p, "result")
		facts = append(facts, schema.FactChallengeResult{
			ChallengeKey:     chk,
			CastawayKey:      ck,
			SeasonKey:        sk,
			EpisodeKey:       ek,
			SogID:            integer(p, "sog_id"),
			OutcomeType:      text(p, "outcome_type"),
			Tribe:            text(p, "tribe"),
			TribeStatus:      text(p, "tribe_status"),
			Result:           result,
			Won:              won(result),
			ChosenForReward:  flag(p, "chosen_for_reward"),
			SatOut:           flag(p, "sit_out"),
			OrderOfFinish:    integer(p, "order_of_finish"),
			SourceNaturalKey: r.naturalKey,
		})
	}
	out.rows, out.count = facts, len(facts)
	return nil
}

func buildFactVote(b *builder, out *output) error {
	rows, err := b.rows("vote_history")
	if err != nil {
		return err
	}
	facts := make([]schema.FactVote, 0, len(rows))
	for _, r := range rows {
		p := r.payload
		vs := season(p)
		ep, okEpisode := p.String("episode")
		voter, okVoter := p.String("castaway_id")
		order, okOrder := p.Int64("vote_order")
		if !okEpisode || !okVoter || !okOrder {
			out.skipped++
			continue
		}
		ek, vk, sk := episodeKey(vs, ep), castawayKey(voter), seasonKey(vs)
		target := optionalKey(p, "vote_id", castawayKey)
		votedOut := optionalKey(p, "voted_out_id", castawayKey)
		if !out.unique(r.naturalKey, ek, vk, order) {
			continue
		}
		ok, err := allExist(b, out, r.naturalKey,
			fkCheck{schema.TableDimEpisode, "episode_key", ptr(ek)},
			fkCheck{schema.TableDimCastaway, "voter_castaway_key", ptr(vk)},
			fkCheck{schema.TableDimSeason, "season_key", ptr(sk)},
			fkCheck{schema.TableDimCastaway, "target_castaway_key", target},
			fkCheck{schema.TableDimCastaway, "voted_out_castaway_key", votedOut},
		)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		facts = append(facts, schema.FactVote{
			EpisodeKey:          ek,
			VoterCastawayKey:    vk,
			VoteOrder:           order,
			SeasonKey:           sk,
			TargetCastawayKey:   target,
			VotedOutCastawayKey: votedOut,
			Day:                 integer(p, "day"),
			Tribe:               text(p, "tribe"),
			Immunity:            text(p, "immunity"),
			Nullified:           truthy(p, "nullified"),
			Tie:                 truthy(p, "tie"),
			SourceNaturalKey:    r.naturalKey,
		})
	}
	out.rows, out.count = facts, len(facts)
	return nil
}

func buildFactAdvantageEvent(b *builder, out *output) error {
	rows, err := b.rows("advantage_movement")
	if err != nil {
		return err
	}
	facts := make([]schema.FactAdvantageEvent, 0, len(rows))
	for _, r := range rows {
		p := r.payload
		vs := season(p)
		advantageID, okAdvantage := p.String("advantage_id")
		seq, okSeq := p.Int64("sequence_id")
		if !okAdvantage || !okSeq {
			out.skipped++
			continue
		}
		ak := advantageKey(vs, advantageID)
		ck := optionalKey(p, "castaway_id", castawayKey)
		ek := optionalKey(p, "episode", func(ep string) int64 { return episodeKey(vs, ep) })
		if !out.unique(r.naturalKey, ak, seq) {
			continue
		}
		ok, err := allExist(b, out, r.naturalKey,
			fkCheck{schema.TableDimAdvantage, "advantage_key", ptr(ak)},
			fkCheck{schema.TableDimCastaway, "castaway_key", ck},
			fkCheck{schema.TableDimEpisode, "episode_key", ek},
		)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		facts = append(facts, schema.FactAdvantageEvent{
			AdvantageKey:     ak,
			SequenceID:       seq,
			SeasonKey:        seasonKey(vs),
			CastawayKey:      ck,
			EpisodeKey:       ek,
			Day:              integer(p, "day"),
			Event:            text(p, "event"),
			PlayedFor:        text(p, "played_for"),
			Success:          flag(p, "success"),
			VotesNullified:   integer(p, "votes_nullified"),
			SourceNaturalKey: r.naturalKey,
		})
	}
	out.rows, out.count = facts, len(facts)
	return nil
}

// castawayEpisode resolves the castaway and episode keys shared by per-episode facts
func castawayEpisode(b *builder, out *output, r rawRow) (ck, ek int64, ok bool, err error) {
	p := r.payload
	vs := season(p)
	ep, okEpisode := p.String("episode")
	id, okCastaway := p.String("castaway_id")
	if !okEpisode || !okCastaway {
		out.skipped++
		return 0, 0, false, nil
	}
	ck, ek = castawayKey(id), episodeKey(vs, ep)
	if !out.unique(r.naturalKey, ck, ek) {
		return 0, 0, false, nil
	}
	ok, err = allExist(b, out, r.naturalKey,
		fkCheck{schema.TableDimCastaway, "castaway_key", ptr(ck)},
		fkCheck{schema.TableDimEpisode, "episode_key", ptr(ek)},
	)
	return ck, ek, ok, err
}

func buildFactTribeMembership(b *builder, out *output) error {
	rows, err := b.rows("tribe_mapping")
	if err != nil {
		return err
	}
	facts := make([]schema.FactTribeMembership, 0, len(rows))
	for _, r := range rows {
		ck, ek, ok, err := castawayEpisode(b, out, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		p := r.payload
		facts = append(facts, schema.FactTribeMembership{
			CastawayKey:      ck,
			EpisodeKey:       ek,
			SeasonKey:        seasonKey(season(p)),
			Day:              integer(p, "day"),
			Tribe:            text(p, "tribe"),
			TribeStatus:      text(p, "tribe_status"),
			SourceNaturalKey: r.naturalKey,
		})
	}
	out.rows, out.count = facts, len(facts)
	return nil
}

func buildFactConfessional(b *builder, out *output) error {
	rows, err := b.rows("confessionals")
	if err != nil {
		return err
	}
	facts := make([]schema.FactConfessional, 0, len(rows))
	for _, r := range rows {
		ck, ek, ok, err := castawayEpisode(b, out, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		p := r.payload
		facts = append(facts, schema.FactConfessional{
			CastawayKey:       ck,
			EpisodeKey:        ek,
			SeasonKey:         seasonKey(season(p)),
			ConfessionalCount: integer(p, "confessional_count"),
			ConfessionalTime:  number(p, "confessional_time"),
			ExpectedCount:     number(p, "exp_count"),
			ExpectedTime:      number(p, "exp_time"),
			SourceNaturalKey:  r.naturalKey,
		})
	}
	out.rows, out.count = facts, len(facts)
	return nil
}
