// Package types contains the derived read shapes shared by the service, the
// HTTP API and the command line tools.
package types

import "github.com/okian/scout/internal/domain/model"

// TeamRanking is one row of a ranking query.
type TeamRanking struct {
	Rank       int     `json:"rank"`
	TeamNumber int     `json:"team"`
	MeanScore  float64 `json:"meanScore"`
	Matches    int     `json:"matches"`
}

// ClimbCounts counts records per climb level. All four levels are always present.
type ClimbCounts map[model.ClimbLevel]int

// NewClimbCounts returns counts with every level set to zero.
func NewClimbCounts() ClimbCounts {
	c := make(ClimbCounts, len(model.ClimbLevels))
	for _, l := range model.ClimbLevels {
		c[l] = 0
	}
	return c
}

// TeamStats summarises a team's scouted matches.
type TeamStats struct {
	TeamNumber         int         `json:"team"`
	MatchesPlayed      int         `json:"matchesPlayed"`
	Wins               int         `json:"wins"`
	Losses             int         `json:"losses"`
	WinRate            float64     `json:"winRate"`
	DefenseRate        float64     `json:"defenseRate"`
	BreakdownRate      float64     `json:"breakdownRate"`
	AvgAutoBalls       float64     `json:"avgAutoBalls"`
	AvgTeleopBalls     float64     `json:"avgTeleopBalls"`
	AutoClimbCounts    ClimbCounts `json:"autoClimbDistribution"`
	EndgameClimbCounts ClimbCounts `json:"endgameClimbDistribution"`
}

// TeamDetail is the team view: stats plus the team's matches in match order.
type TeamDetail struct {
	TeamStats
	Matches []model.MatchRecord `json:"matches"`
}

// Overview holds event-wide totals.
type Overview struct {
	TotalMatches   int     `json:"totalMatches"`
	UniqueTeams    int     `json:"uniqueTeams"`
	AvgAutoBalls   float64 `json:"avgAuto"`
	AvgTeleopBalls float64 `json:"avgTeleop"`
}
