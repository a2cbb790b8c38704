package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/scout/internal/domain/scoring"
	"github.com/okian/scout/internal/domain/types"
	"github.com/okian/scout/internal/report"
	"github.com/okian/scout/pkg/logger"
)

const maxChartTeams = 100

// RankingsDependencies defines the ranking query.
type RankingsDependencies interface {
	Rankings(ctx context.Context, f scoring.Filter, limit int) ([]types.TeamRanking, error)
}

// RankingsHandler handles ranking and ranking chart requests.
type RankingsHandler struct {
	deps         RankingsDependencies
	defaultLimit int
	maxLimit     int
	chartTopN    int
	logger       logger.Logger
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies, cfg settings) *RankingsHandler {
	return &RankingsHandler{
		deps:         deps,
		defaultLimit: cfg.defaultLimit,
		maxLimit:     cfg.maxLimit,
		chartTopN:    cfg.chartTopN,
		logger:       cfg.logger,
	}
}

type rankingsResponse struct {
	Filter   string              `json:"filter"`
	Rankings []types.TeamRanking `json:"rankings"`
}

// HandleGetRankings handles GET /api/rankings?base=&sub=&limit=.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	q := r.URL.Query()

	f, err := scoring.ParseFilter(q.Get("base"), q.Get("sub"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	limit, err := intParam(q.Get("limit"), h.defaultLimit, h.maxLimit)
	if err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}

	rankings, err := h.deps.Rankings(r.Context(), f, limit)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	if rankings == nil {
		rankings = []types.TeamRanking{}
	}
	writeJSON(w, http.StatusOK, rankingsResponse{Filter: f.String(), Rankings: rankings})
}

// HandleChart handles GET /api/rankings/chart.png?base=&sub=&top=.
func (h *RankingsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.rankings_chart"
	q := r.URL.Query()

	f, err := scoring.ParseFilter(q.Get("base"), q.Get("sub"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	top, err := intParam(q.Get("top"), h.chartTopN, maxChartTeams)
	if err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}

	rankings, err := h.deps.Rankings(r.Context(), f, top)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	var buf bytes.Buffer
	title := fmt.Sprintf("Top %d teams by %s", top, f)
	if err := report.TopTeamsChart(&buf, rankings, top, title); err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// intParam parses an optional positive integer bounded by maxValue.
func intParam(s string, def, maxValue int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if n > maxValue {
		return 0, fmt.Errorf("value %d exceeds maximum %d", n, maxValue)
	}
	return n, nil
}
