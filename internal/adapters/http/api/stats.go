package api

import (
	"context"
	"net/http"

	"github.com/okian/scout/internal/domain/types"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// OverviewProvider defines the event-wide summary query.
type OverviewProvider interface {
	Overview(ctx context.Context) (types.Overview, error)
}

// StatsHandler handles runtime stats and scouting overview requests.
type StatsHandler struct {
	statsProvider StatsProvider
	overview      OverviewProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, overview OverviewProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, overview: overview}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}

// HandleOverview handles GET /api/stats requests.
func (h *StatsHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	const op = "api.overview"
	ov, err := h.overview.Overview(r.Context())
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ov)
}
