package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/scout/internal/domain/types"
	"github.com/okian/scout/pkg/logger"
)

// TeamDependencies defines the team lookup.
type TeamDependencies interface {
	Team(ctx context.Context, team int) (types.TeamDetail, error)
}

// TeamHandler handles team requests.
type TeamHandler struct {
	deps   TeamDependencies
	logger logger.Logger
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies, cfg settings) *TeamHandler {
	return &TeamHandler{deps: deps, logger: cfg.logger}
}

// HandleGetTeam handles GET /api/team/{team}.
func (h *TeamHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team"
	team, err := strconv.Atoi(r.PathValue("team"))
	if err != nil || team < 1 {
		fail(r.Context(), h.logger, w,
			WrapKind(op, ErrBadRequest, fmt.Errorf("invalid team number %q", r.PathValue("team"))))
		return
	}
	detail, err := h.deps.Team(r.Context(), team)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
