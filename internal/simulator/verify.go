package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/okian/scout/internal/domain/aggregate"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/internal/domain/scoring"
	"github.com/okian/scout/internal/domain/types"
	"github.com/okian/scout/pkg/logger"
)

const meanTolerance = 1e-9

// ErrRankingMismatch is returned when the server's rankings disagree with
// the rankings computed from the accepted payloads.
var ErrRankingMismatch = errors.New("rankings mismatch")

// acceptedRecords normalizes every payload the server created, through the
// same decode path the server uses.
func acceptedRecords(payloads []Payload, results []Result) ([]model.MatchRecord, error) {
	var records []model.MatchRecord
	for i, p := range payloads {
		if results[i] != ResultCreated {
			continue
		}
		data, err := json.Marshal(p.Body)
		if err != nil {
			return nil, fmt.Errorf("payload %d: %w", i, err)
		}
		raw, err := normalize.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("payload %d: %w", i, err)
		}
		rec, err := normalize.Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("payload %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

type rankingsResponse struct {
	Filter   string              `json:"filter"`
	Rankings []types.TeamRanking `json:"rankings"`
}

// fetchRankings reads the default-filter rankings from the server.
func fetchRankings(ctx context.Context, client *httpClient, baseURL string, limit int) ([]types.TeamRanking, error) {
	resp, err := client.get(ctx, baseURL+"/api/rankings?limit="+strconv.Itoa(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rankings: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rankings request failed with status: %d", resp.StatusCode)
	}
	var out rankingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode rankings: %w", err)
	}
	return out.Rankings, nil
}

// compareRankings checks got against the first len(got) rows of want,
// requiring the same length when want is shorter than limit.
func compareRankings(want, got []types.TeamRanking, limit int) error {
	want = aggregate.Top(want, limit)
	if len(want) != len(got) {
		return fmt.Errorf("%w: expected %d rows, server returned %d", ErrRankingMismatch, len(want), len(got))
	}
	for i := range want {
		w, g := want[i], got[i]
		if w.Rank != g.Rank || w.TeamNumber != g.TeamNumber || w.Matches != g.Matches ||
			math.Abs(w.MeanScore-g.MeanScore) > meanTolerance {
			return fmt.Errorf("%w: row %d expected team %d (%.3f over %d), server has team %d (%.3f over %d)",
				ErrRankingMismatch, i+1, w.TeamNumber, w.MeanScore, w.Matches, g.TeamNumber, g.MeanScore, g.Matches)
		}
	}
	return nil
}

// verifyRankings compares the server's top cfg.TopN against a local ranking
// over the accepted records. It assumes the server started empty.
func verifyRankings(ctx context.Context, cfg Config, payloads []Payload, results []Result, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "verifying rankings", logger.Int("topN", cfg.TopN))

	records, err := acceptedRecords(payloads, results)
	if err != nil {
		return err
	}
	want := aggregate.Rank(records, scoring.Filter{})
	stats.Teams = len(want)

	got, err := fetchRankings(ctx, newHTTPClient(cfg.Timeout), cfg.BaseURL, cfg.TopN)
	if err != nil {
		return err
	}
	stats.RankingsChecked = len(got)

	if err := compareRankings(want, got, cfg.TopN); err != nil {
		return err
	}

	for _, r := range aggregate.Top(got, topPerformers) {
		log.Info(ctx, "top team",
			logger.Int("rank", r.Rank),
			logger.Int("team", r.TeamNumber),
			logger.Float64("meanScore", r.MeanScore),
			logger.Int("matches", r.Matches))
	}
	log.Info(ctx, "rankings verified", logger.Int("rows", len(got)))
	return nil
}

const topPerformers = 5
