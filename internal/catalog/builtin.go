package catalog

import "github.com/feral-file/gamebot/internal/domain"

// DefaultVersion is the version of the built-in catalog
const DefaultVersion = "v1"

// SkillTags are the wide boolean challenge columns normalized into dim_skill
var SkillTags = []string{
	"puzzle", "race", "precision", "endurance", "strength", "balance",
	"food", "knowledge", "memory", "fire", "water", "turn_based",
}

func str(name string) Column    { return Column{Name: name, Type: domain.TypeString, Nullable: true} }
func integer(name string) Column { return Column{Name: name, Type: domain.TypeInteger, Nullable: true} }
func float(name string) Column  { return Column{Name: name, Type: domain.TypeFloat, Nullable: true} }
func boolean(name string) Column { return Column{Name: name, Type: domain.TypeBoolean, Nullable: true} }
func date(name string) Column   { return Column{Name: name, Type: domain.TypeDate, Nullable: true} }

func required(c Column) Column {
	c.Nullable = false
	return c
}

func seasonColumns() []Column {
	return []Column{
		str("version"),
		required(str(ContextColumn)),
		integer("season"),
	}
}

func withSeason(cols ...Column) []Column {
	return append(seasonColumns(), cols...)
}

func challengeDescriptionColumns() []Column {
	cols := withSeason(
		required(str("challenge_id")),
		integer("episode"),
		integer("sog_id"),
		str("name"),
		str("recurring_name"),
		str("challenge_type"),
		str("description"),
		str("reward"),
	)
	for _, tag := range SkillTags {
		cols = append(cols, boolean(tag))
	}
	return cols
}

// Default returns the built-in v1 catalog
func Default() *Catalog {
	c, err := New(DefaultVersion, []Dataset{
		{
			Name:       "castaway_details",
			NaturalKey: []string{"castaway_id"},
			Columns: []Column{
				required(str("castaway_id")),
				str("full_name"),
				str("castaway"),
				date("date_of_birth"),
				date("date_of_death"),
				str("gender"),
				str("race"),
				str("ethnicity"),
				str("occupation"),
				str("personality_type"),
				boolean("lgbt"),
				boolean("bipoc"),
			},
		},
		{
			Name:       "season_summary",
			NaturalKey: []string{ContextColumn},
			Columns: withSeason(
				str("season_name"),
				str("location"),
				str("country"),
				str("tribe_setup"),
				integer("n_cast"),
				integer("n_tribes"),
				integer("n_finalists"),
				integer("n_jury"),
				str("winner_id"),
				date("premiered"),
				date("ended"),
				float("viewers_mean"),
			),
			References: []Reference{
				{Column: "winner_id", TargetDataset: "castaway_details", TargetColumn: "castaway_id"},
			},
		},
		{
			Name:       "castaways",
			NaturalKey: []string{ContextColumn, "castaway_id"},
			Columns: withSeason(
				required(str("castaway_id")),
				str("castaway"),
				str("full_name"),
				integer("age"),
				integer("episode"),
				integer("day"),
				integer("order"),
				str("result"),
				integer("place"),
				str("jury_status"),
				str("original_tribe"),
				boolean("jury"),
				boolean("finalist"),
				boolean("winner"),
			),
		},
		{
			Name:       "episodes",
			NaturalKey: []string{ContextColumn, "episode"},
			Columns: withSeason(
				required(integer("episode")),
				integer("episode_number_overall"),
				str("episode_title"),
				str("episode_label"),
				date("episode_date"),
				integer("episode_length"),
				float("viewers"),
				float("imdb_rating"),
			),
		},
		{
			Name:       "challenge_description",
			NaturalKey: []string{ContextColumn, "challenge_id"},
			Columns:    challengeDescriptionColumns(),
			TagColumns: SkillTags,
		},
		{
			Name:       "challenge_results",
			NaturalKey: []string{ContextColumn, "challenge_id", "castaway_id"},
			Columns: withSeason(
				required(str("challenge_id")),
				required(str("castaway_id")),
				str("castaway"),
				integer("episode"),
				integer("sog_id"),
				str("challenge_name"),
				str("challenge_type"),
				str("outcome_type"),
				str("tribe"),
				str("tribe_status"),
				str("result"),
				boolean("chosen_for_reward"),
				boolean("sit_out"),
				integer("order_of_finish"),
			),
			References: []Reference{
				{
					Column:        "challenge_id",
					TargetDataset: "challenge_description",
					TargetColumn:  "challenge_id",
					Context:       ContextColumn,
					AlignOn:       "sog_id",
					FuzzySource:   "challenge_name",
					FuzzyTarget:   []string{"name", "recurring_name"},
				},
			},
		},
		{
			Name:        "challenge_summary",
			NaturalKey:  []string{ContextColumn, "challenge_id", "castaway_id"},
			FanOut:      true,
			FullReplace: true,
			Columns: withSeason(
				required(str("category")),
				required(str("challenge_id")),
				required(str("castaway_id")),
				str("castaway"),
				str("outcome_type"),
				str("tribe"),
				str("tribe_status"),
				float("won"),
				integer("n_entities"),
				integer("n_winners"),
			),
		},
		{
			Name:       "vote_history",
			NaturalKey: []string{ContextColumn, "episode", "castaway_id", "vote_order"},
			Columns: withSeason(
				required(integer("episode")),
				required(str("castaway_id")),
				required(integer("vote_order")),
				str("castaway"),
				integer("day"),
				str("tribe_status"),
				str("tribe"),
				str("immunity"),
				str("vote"),
				str("vote_id"),
				str("voted_out"),
				str("voted_out_id"),
				boolean("nullified"),
				boolean("tie"),
				integer("sog_id"),
			),
			References: []Reference{
				{
					Column:        "vote_id",
					TargetDataset: "castaways",
					TargetColumn:  "castaway_id",
					Context:       ContextColumn,
					FuzzySource:   "vote",
					FuzzyTarget:   []string{"castaway", "full_name"},
				},
				{
					Column:        "voted_out_id",
					TargetDataset: "castaways",
					TargetColumn:  "castaway_id",
					Context:       ContextColumn,
					FuzzySource:   "voted_out",
					FuzzyTarget:   []string{"castaway", "full_name"},
				},
			},
		},
		{
			Name:       "advantage_details",
			NaturalKey: []string{ContextColumn, "advantage_id"},
			Columns: withSeason(
				required(str("advantage_id")),
				str("advantage_type"),
				str("clue_details"),
				str("location_found"),
				str("conditions"),
			),
		},
		{
			Name:       "advantage_movement",
			NaturalKey: []string{ContextColumn, "advantage_id", "sequence_id"},
			Columns: withSeason(
				required(str("advantage_id")),
				required(integer("sequence_id")),
				str("castaway_id"),
				str("castaway"),
				integer("day"),
				integer("episode"),
				str("event"),
				str("played_for"),
				str("played_for_id"),
				boolean("success"),
				integer("votes_nullified"),
				integer("sog_id"),
			),
			References: []Reference{
				{Column: "advantage_id", TargetDataset: "advantage_details", TargetColumn: "advantage_id", Context: ContextColumn},
				{
					Column:        "castaway_id",
					TargetDataset: "castaways",
					TargetColumn:  "castaway_id",
					Context:       ContextColumn,
					FuzzySource:   "castaway",
					FuzzyTarget:   []string{"castaway", "full_name"},
				},
			},
		},
		{
			Name:       "tribe_mapping",
			NaturalKey: []string{ContextColumn, "episode", "castaway_id"},
			Columns: withSeason(
				required(integer("episode")),
				required(str("castaway_id")),
				str("castaway"),
				integer("day"),
				str("tribe"),
				str("tribe_status"),
			),
		},
		{
			Name:       "confessionals",
			NaturalKey: []string{ContextColumn, "episode", "castaway_id"},
			Columns: withSeason(
				required(integer("episode")),
				required(str("castaway_id")),
				str("castaway"),
				integer("confessional_count"),
				float("confessional_time"),
				float("exp_count"),
				float("exp_time"),
			),
		},
	})
	if err != nil {
		panic(err)
	}
	return c
}
