// Package composite derives a per-competitor strength score from a snapshot
// of per-feature statistics: z-score normalisation followed by fixed weighted
// sums, branching on each competitor's play-style identity.
package composite

// Offensive features.
const (
	ThirdDownConversion = "third_down_conversion_percentage"
	YardsPerGame        = "yards_per_game"
	FourthDownsPerGame  = "fourth_downs_per_game"
	PassingTDPerGame    = "passing_touchdowns_per_game"
	PasserRating        = "average_team_passer_rating"
	InterceptionsThrown = "interceptions_thrown_per_game"
	QBSackedPerGame     = "qb_sacked_per_game"
	RushingTDPerGame    = "rushing_touchdowns_per_game"
	RushingYardsPerGame = "rushing_yards_per_game"
	RushingFirstDowns   = "rushing_first_downs_per_game"
)

// Defensive features. Sacks share the QBSackedPerGame table.
const (
	OppInterceptions   = "opponent_interceptions_thrown_per_game"
	OppFumbles         = "opponent_fumbles_per_game"
	OppTouchdowns      = "opponent_touchdowns_per_game"
	OppYardsPerGame    = "opponent_yards_per_game"
	OppRedZoneTDOnly   = "opponent_red_zone_scoring_percentage_td_only"
	OppFourthDownsGame = "opponent_fourth_downs_per_game"
)

// OffenseFeatures lists the tables merged for the offensive sub-score. The
// first table fixes the output order.
var OffenseFeatures = []string{
	PasserRating,
	RushingYardsPerGame,
	FourthDownsPerGame,
	QBSackedPerGame,
	ThirdDownConversion,
	InterceptionsThrown,
	RushingFirstDowns,
	YardsPerGame,
	PassingTDPerGame,
	RushingTDPerGame,
}

// DefenseFeatures lists the tables merged for the defensive sub-score.
var DefenseFeatures = []string{
	QBSackedPerGame,
	OppInterceptions,
	OppFumbles,
	OppTouchdowns,
	OppYardsPerGame,
	OppRedZoneTDOnly,
	OppFourthDownsGame,
}

// AllFeatures returns every distinct feature table the engine reads.
func AllFeatures() []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{OffenseFeatures, DefenseFeatures} {
		for _, f := range list {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// Cell is one competitor's value in a feature table.
type Cell struct {
	Competitor string
	Value      float64
}

// Tables maps a feature name to its rows in source order.
type Tables map[string][]Cell
