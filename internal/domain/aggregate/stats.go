package aggregate

import (
	"sort"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/types"
)

// TeamStats summarises the records of one team. Records for other teams are
// ignored. With no matching records every rate is 0.
func TeamStats(team int, records []model.MatchRecord) types.TeamStats {
	var recs []*model.MatchRecord
	for i := range records {
		if records[i].TeamNumber == team {
			recs = append(recs, &records[i])
		}
	}
	return teamStats(team, recs)
}

// Stats summarises every team present in records.
func Stats(records []model.MatchRecord) map[int]types.TeamStats {
	groups := groupByTeam(records)
	out := make(map[int]types.TeamStats, len(groups))
	for team, recs := range groups {
		out[team] = teamStats(team, recs)
	}
	return out
}

// TeamDetail returns a team's stats with its matches in match order.
func TeamDetail(team int, records []model.MatchRecord) types.TeamDetail {
	d := types.TeamDetail{TeamStats: TeamStats(team, records)}
	for i := range records {
		if records[i].TeamNumber == team {
			d.Matches = append(d.Matches, records[i])
		}
	}
	sort.SliceStable(d.Matches, func(i, j int) bool {
		return d.Matches[i].MatchNumber < d.Matches[j].MatchNumber
	})
	return d
}

// Overview computes event-wide totals and ball averages.
func Overview(records []model.MatchRecord) types.Overview {
	ov := types.Overview{TotalMatches: len(records)}
	if len(records) == 0 {
		return ov
	}
	teams := make(map[int]struct{})
	var auto, tele int
	for i := range records {
		teams[records[i].TeamNumber] = struct{}{}
		auto += records[i].AutoBalls
		tele += records[i].TeleopBalls
	}
	ov.UniqueTeams = len(teams)
	ov.AvgAutoBalls = float64(auto) / float64(len(records))
	ov.AvgTeleopBalls = float64(tele) / float64(len(records))
	return ov
}

func teamStats(team int, recs []*model.MatchRecord) types.TeamStats {
	s := types.TeamStats{
		TeamNumber:         team,
		MatchesPlayed:      len(recs),
		AutoClimbCounts:    types.NewClimbCounts(),
		EndgameClimbCounts: types.NewClimbCounts(),
	}
	if len(recs) == 0 {
		return s
	}

	var auto, tele, defense, broke int
	for _, r := range recs {
		switch r.Result() {
		case model.OutcomeWin:
			s.Wins++
		case model.OutcomeLoss:
			s.Losses++
		}
		if r.PlayedDefense {
			defense++
		}
		if r.RobotBroke {
			broke++
		}
		auto += r.AutoBalls
		tele += r.TeleopBalls
		s.AutoClimbCounts[r.AutoClimb]++
		s.EndgameClimbCounts[r.EndgameClimb]++
	}

	n := float64(len(recs))
	s.WinRate = float64(s.Wins) / n
	s.DefenseRate = float64(defense) / n
	s.BreakdownRate = float64(broke) / n
	s.AvgAutoBalls = float64(auto) / n
	s.AvgTeleopBalls = float64(tele) / n
	return s
}
