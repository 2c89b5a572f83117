package schema

import "time"

// Curated table names
const (
	TableDimCastaway          = "dim_castaway"
	TableDimSeason            = "dim_season"
	TableDimEpisode           = "dim_episode"
	TableDimAdvantage         = "dim_advantage"
	TableDimChallenge         = "dim_challenge"
	TableDimSkill             = "dim_skill"
	TableBridgeCastawaySeason = "bridge_castaway_season"
	TableBridgeChallengeSkill = "bridge_challenge_skill"
	TableFactChallengeResult  = "fact_challenge_result"
	TableFactVote             = "fact_vote"
	TableFactAdvantageEvent   = "fact_advantage_event"
	TableFactTribeMembership  = "fact_tribe_membership"
	TableFactConfessional     = "fact_confessional"
)

// CuratedTables lists every curated table in dependency order
var CuratedTables = []string{
	TableDimCastaway,
	TableDimSeason,
	TableDimEpisode,
	TableDimAdvantage,
	TableDimChallenge,
	TableDimSkill,
	TableBridgeCastawaySeason,
	TableBridgeChallengeSkill,
	TableFactChallengeResult,
	TableFactVote,
	TableFactAdvantageEvent,
	TableFactTribeMembership,
	TableFactConfessional,
}

// IsCuratedTable reports whether name is a curated table
func IsCuratedTable(name string) bool {
	for _, t := range CuratedTables {
		if t == name {
			return true
		}
	}
	return false
}

// DimCastaway is one real-world person
type DimCastaway struct {
	CastawayKey      int64      `gorm:"column:castaway_key;primaryKey;autoIncrement:false"`
	CastawayID       string     `gorm:"column:castaway_id;not null;type:text"`
	FullName         *string    `gorm:"column:full_name;type:text"`
	ShortName        *string    `gorm:"column:short_name;type:text"`
	DateOfBirth      *time.Time `gorm:"column:date_of_birth;type:date"`
	DateOfDeath      *time.Time `gorm:"column:date_of_death;type:date"`
	Gender           *string    `gorm:"column:gender;type:text"`
	Race             *string    `gorm:"column:race;type:text"`
	Ethnicity        *string    `gorm:"column:ethnicity;type:text"`
	Occupation       *string    `gorm:"column:occupation;type:text"`
	PersonalityType  *string    `gorm:"column:personality_type;type:text"`
	LGBT             *bool      `gorm:"column:lgbt"`
	BIPOC            *bool      `gorm:"column:bipoc"`
	SourceNaturalKey string     `gorm:"column:source_natural_key;not null;type:text"`
}

func (DimCastaway) TableName() string { return TableDimCastaway }

// DimSeason is one season of the competition
type DimSeason struct {
	SeasonKey         int64      `gorm:"column:season_key;primaryKey;autoIncrement:false"`
	VersionSeason     string     `gorm:"column:version_season;not null;type:text"`
	Version           *string    `gorm:"column:version;type:text"`
	Season            *int64     `gorm:"column:season"`
	SeasonName        *string    `gorm:"column:season_name;type:text"`
	Location          *string    `gorm:"column:location;type:text"`
	Country           *string    `gorm:"column:country;type:text"`
	TribeSetup        *string    `gorm:"column:tribe_setup;type:text"`
	CastSize          *int64     `gorm:"column:n_cast"`
	TribeCount        *int64     `gorm:"column:n_tribes"`
	FinalistCount     *int64     `gorm:"column:n_finalists"`
	JurySize          *int64     `gorm:"column:n_jury"`
	WinnerCastawayKey *int64     `gorm:"column:winner_castaway_key"`
	Premiered         *time.Time `gorm:"column:premiered;type:date"`
	Ended             *time.Time `gorm:"column:ended;type:date"`
	ViewersMean       *float64   `gorm:"column:viewers_mean"`
	SourceNaturalKey  string     `gorm:"column:source_natural_key;not null;type:text"`
}

func (DimSeason) TableName() string { return TableDimSeason }

// DimEpisode is one episode within a season
type DimEpisode struct {
	EpisodeKey           int64      `gorm:"column:episode_key;primaryKey;autoIncrement:false"`
	SeasonKey            int64      `gorm:"column:season_key;not null"`
	Episode              int64      `gorm:"column:episode;not null"`
	EpisodeNumberOverall *int64     `gorm:"column:episode_number_overall"`
	Title                *string    `gorm:"column:title;type:text"`
	Label                *string    `gorm:"column:label;type:text"`
	AirDate              *time.Time `gorm:"column:air_date;type:date"`
	LengthMinutes        *int64     `gorm:"column:length_minutes"`
	Viewers              *float64   `gorm:"column:viewers"`
	IMDbRating           *float64   `gorm:"column:imdb_rating"`
	SourceNaturalKey     string     `gorm:"column:source_natural_key;not null;type:text"`
}

func (DimEpisode) TableName() string { return TableDimEpisode }

// DimAdvantage is one advantage or idol hidden in a season
type DimAdvantage struct {
	AdvantageKey     int64   `gorm:"column:advantage_key;primaryKey;autoIncrement:false"`
	SeasonKey        int64   `gorm:"column:season_key;not null"`
	AdvantageID      string  `gorm:"column:advantage_id;not null;type:text"`
	AdvantageType    *string `gorm:"column:advantage_type;type:text"`
	ClueDetails      *string `gorm:"column:clue_details;type:text"`
	LocationFound    *string `gorm:"column:location_found;type:text"`
	Conditions       *string `gorm:"column:conditions;type:text"`
	SourceNaturalKey string  `gorm:"column:source_natural_key;not null;type:text"`
}

func (DimAdvantage) TableName() string { return TableDimAdvantage }

// DimChallenge is one challenge (task) within a season
type DimChallenge struct {
	ChallengeKey     int64   `gorm:"column:challenge_key;primaryKey;autoIncrement:false"`
	SeasonKey        int64   `gorm:"column:season_key;not null"`
	ChallengeID      string  `gorm:"column:challenge_id;not null;type:text"`
	Episode          *int64  `gorm:"column:episode"`
	SogID            *int64  `gorm:"column:sog_id"`
	Name             *string `gorm:"column:name;type:text"`
	RecurringName    *string `gorm:"column:recurring_name;type:text"`
	ChallengeType    *string `gorm:"column:challenge_type;type:text"`
	Description      *string `gorm:"column:description;type:text"`
	Reward           *string `gorm:"column:reward;type:text"`
	SourceNaturalKey string  `gorm:"column:source_natural_key;not null;type:text"`
}

func (DimChallenge) TableName() string { return TableDimChallenge }

// DimSkill is the lookup of challenge skill tags
type DimSkill struct {
	SkillKey  int64  `gorm:"column:skill_key;primaryKey;autoIncrement:false"`
	SkillName string `gorm:"column:skill_name;not null;type:text"`
}

func (DimSkill) TableName() string { return TableDimSkill }

// BridgeCastawaySeason is one castaway within one season, carrying the outcome
type BridgeCastawaySeason struct {
	CastawayKey        int64   `gorm:"column:castaway_key;primaryKey;autoIncrement:false"`
	SeasonKey          int64   `gorm:"column:season_key;primaryKey;autoIncrement:false"`
	CastawayName       *string `gorm:"column:castaway_name;type:text"`
	Age                *int64  `gorm:"column:age"`
	Place              *int64  `gorm:"column:place"`
	BootOrder          *int64  `gorm:"column:boot_order"`
	Result             *string `gorm:"column:result;type:text"`
	JuryStatus         *string `gorm:"column:jury_status;type:text"`
	OriginalTribe      *string `gorm:"column:original_tribe;type:text"`
	EliminationEpisode *int64  `gorm:"column:elimination_episode"`
	EliminationDay     *int64  `gorm:"column:elimination_day"`
	Jury               bool    `gorm:"column:jury;not null"`
	Finalist           bool    `gorm:"column:finalist;not null"`
	Winner             bool    `gorm:"column:winner;not null"`
	SourceNaturalKey   string  `gorm:"column:source_natural_key;not null;type:text"`
}

func (BridgeCastawaySeason) TableName() string { return TableBridgeCastawaySeason }

// BridgeChallengeSkill links a challenge to a skill tag
type BridgeChallengeSkill struct {
	ChallengeKey int64 `gorm:"column:challenge_key;primaryKey;autoIncrement:false"`
	SkillKey     int64 `gorm:"column:skill_key;primaryKey;autoIncrement:false"`
}

func (BridgeChallengeSkill) TableName() string { return TableBridgeChallengeSkill }

// FactChallengeResult is one castaway's result in one challenge
type FactChallengeResult struct {
	ChallengeKey     int64   `gorm:"column:challenge_key;primaryKey;autoIncrement:false"`
	CastawayKey      int64   `gorm:"column:castaway_key;primaryKey;autoIncrement:false"`
	SeasonKey        int64   `gorm:"column:season_key;not null"`
	EpisodeKey       *int64  `gorm:"column:episode_key"`
	SogID            *int64  `gorm:"column:sog_id"`
	OutcomeType      *string `gorm:"column:outcome_type;type:text"`
	Tribe            *string `gorm:"column:tribe;type:text"`
	TribeStatus      *string `gorm:"column:tribe_status;type:text"`
	Result           *string `gorm:"column:result;type:text"`
	Won              bool    `gorm:"column:won;not null"`
	ChosenForReward  *bool   `gorm:"column:chosen_for_reward"`
	SatOut           *bool   `gorm:"column:sat_out"`
	OrderOfFinish    *int64  `gorm:"column:order_of_finish"`
	SourceNaturalKey string  `gorm:"column:source_natural_key;not null;type:text"`
}

func (FactChallengeResult) TableName() string { return TableFactChallengeResult }

// FactVote is one vote cast at tribal council
type FactVote struct {
	EpisodeKey          int64   `gorm:"column:episode_key;primaryKey;autoIncrement:false"`
	VoterCastawayKey    int64   `gorm:"column:voter_castaway_key;primaryKey"`
	VoteOrder           int64   `gorm:"column:vote_order;primaryKey"`
	SeasonKey           int64   `gorm:"column:season_key;not null"`
	TargetCastawayKey   *int64  `gorm:"column:target_castaway_key"`
	VotedOutCastawayKey *int64  `gorm:"column:voted_out_castaway_key"`
	Day                 *int64  `gorm:"column:day"`
	Tribe               *string `gorm:"column:tribe;type:text"`
	Immunity            *string `gorm:"column:immunity;type:text"`
	Nullified           bool    `gorm:"column:nullified;not null"`
	Tie                 bool    `gorm:"column:tie;not null"`
	SourceNaturalKey    string  `gorm:"column:source_natural_key;not null;type:text"`
}

func (FactVote) TableName() string { return TableFactVote }

// FactAdvantageEvent is one movement of an advantage
type FactAdvantageEvent struct {
	AdvantageKey     int64   `gorm:"column:advantage_key;primaryKey;autoIncrement:false"`
	SequenceID       int64   `gorm:"column:sequence_id;primaryKey"`
	SeasonKey        int64   `gorm:"column:season_key;not null"`
	CastawayKey      *int64  `gorm:"column:castaway_key"`
	EpisodeKey       *int64  `gorm:"column:episode_key"`
	Day              *int64  `gorm:"column:day"`
	Event            *string `gorm:"column:event;type:text"`
	PlayedFor        *string `gorm:"column:played_for;type:text"`
	Success          *bool   `gorm:"column:success"`
	VotesNullified   *int64  `gorm:"column:votes_nullified"`
	SourceNaturalKey string  `gorm:"column:source_natural_key;not null;type:text"`
}

func (FactAdvantageEvent) TableName() string { return TableFactAdvantageEvent }

// FactTribeMembership is a castaway's tribe during one episode
type FactTribeMembership struct {
	CastawayKey      int64   `gorm:"column:castaway_key;primaryKey;autoIncrement:false"`
	EpisodeKey       int64   `gorm:"column:episode_key;primaryKey;autoIncrement:false"`
	SeasonKey        int64   `gorm:"column:season_key;not null"`
	Day              *int64  `gorm:"column:day"`
	Tribe            *string `gorm:"column:tribe;type:text"`
	TribeStatus      *string `gorm:"column:tribe_status;type:text"`
	SourceNaturalKey string  `gorm:"column:source_natural_key;not null;type:text"`
}

func (FactTribeMembership) TableName() string { return TableFactTribeMembership }

// FactConfessional is a castaway's screen time in one episode
type FactConfessional struct {
	CastawayKey       int64    `gorm:"column:castaway_key;primaryKey;autoIncrement:false"`
	EpisodeKey        int64    `gorm:"column:episode_key;primaryKey;autoIncrement:false"`
	SeasonKey         int64    `gorm:"column:season_key;not null"`
	ConfessionalCount *int64   `gorm:"column:confessional_count"`
	ConfessionalTime  *float64 `gorm:"column:confessional_time"`
	ExpectedCount     *float64 `gorm:"column:exp_count"`
	ExpectedTime      *float64 `gorm:"column:exp_time"`
	SourceNaturalKey  string   `gorm:"column:source_natural_key;not null;type:text"`
}

func (FactConfessional) TableName() string { return TableFactConfessional }
