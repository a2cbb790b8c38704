// Package aggregate derives team rankings and statistics from a snapshot of
// match records. Nothing here mutates its input or holds state between calls.
package aggregate

import (
	"sort"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/scoring"
	"github.com/okian/scout/internal/domain/types"
)

// Rank scores every record under f, averages per team and orders teams by
// mean score descending, breaking ties by ascending team number. Ranks are
// positions starting at 1.
func Rank(records []model.MatchRecord, f scoring.Filter) []types.TeamRanking {
	groups := groupByTeam(records)
	out := make([]types.TeamRanking, 0, len(groups))
	for team, recs := range groups {
		out = append(out, types.TeamRanking{
			TeamNumber: team,
			MeanScore:  meanScore(recs, f),
			Matches:    len(recs),
		})
	}
	order(out)
	return out
}

// Top returns at most n leading rankings. n <= 0 returns all of them.
func Top(rankings []types.TeamRanking, n int) []types.TeamRanking {
	if n <= 0 || n >= len(rankings) {
		return rankings
	}
	return rankings[:n]
}

func order(rankings []types.TeamRanking) {
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].MeanScore != rankings[j].MeanScore {
			return rankings[i].MeanScore > rankings[j].MeanScore
		}
		return rankings[i].TeamNumber < rankings[j].TeamNumber
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
}

func meanScore(recs []*model.MatchRecord, f scoring.Filter) float64 {
	if len(recs) == 0 {
		return 0
	}
	total := 0
	for _, r := range recs {
		total += scoring.Score(r, f)
	}
	return float64(total) / float64(len(recs))
}

// groupByTeam indexes records by team without copying them.
func groupByTeam(records []model.MatchRecord) map[int][]*model.MatchRecord {
	groups := make(map[int][]*model.MatchRecord)
	for i := range records {
		r := &records[i]
		groups[r.TeamNumber] = append(groups[r.TeamNumber], r)
	}
	return groups
}
