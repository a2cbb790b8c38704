package aggregate

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/scoring"
	"github.com/okian/scout/internal/domain/types"
)

// Report bundles the ranking and per-team stats of one snapshot.
type Report struct {
	Filter   scoring.Filter
	Rankings []types.TeamRanking
	Teams    map[int]types.TeamStats
	Overview types.Overview
}

// Build computes a Report, fanning the per-team work out over at most
// GOMAXPROCS goroutines. It stops early and returns ctx.Err() when ctx is done.
func Build(ctx context.Context, records []model.MatchRecord, f scoring.Filter) (Report, error) {
	groups := groupByTeam(records)

	var (
		mu       sync.Mutex
		rankings = make([]types.TeamRanking, 0, len(groups))
		teams    = make(map[int]types.TeamStats, len(groups))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for team, recs := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := types.TeamRanking{TeamNumber: team, MeanScore: meanScore(recs, f), Matches: len(recs)}
			s := teamStats(team, recs)

			mu.Lock()
			rankings = append(rankings, r)
			teams[team] = s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	order(rankings)
	return Report{
		Filter:   f,
		Rankings: rankings,
		Teams:    teams,
		Overview: Overview(records),
	}, nil
}
