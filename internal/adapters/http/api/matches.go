package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
)

// MatchesDependencies defines the record listing and delete operations.
type MatchesDependencies interface {
	Matches(ctx context.Context) ([]model.MatchRecord, error)
	Delete(ctx context.Context, id string) (model.MatchRecord, error)
}

// MatchesHandler handles match listing and deletion.
type MatchesHandler struct {
	deps   MatchesDependencies
	logger logger.Logger
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchesDependencies, cfg settings) *MatchesHandler {
	return &MatchesHandler{deps: deps, logger: cfg.logger}
}

// matchView renders a record in the expanded scanner shape.
type matchView struct {
	ID          string      `json:"id"`
	MatchNumber int         `json:"matchNumber"`
	TeamNumber  int         `json:"teamNumber"`
	ScoutName   string      `json:"scoutName"`
	Autonomous  phaseView   `json:"autonomous"`
	Teleop      phaseView   `json:"teleop"`
	Endgame     phaseView   `json:"endgame"`
	Outcome     string      `json:"matchOutcome"`
	RobotStatus robotStatus `json:"robotStatus"`
	Notes       string      `json:"notes"`
	Timestamp   time.Time   `json:"timestamp"`
}

type phaseView struct {
	BallsScored *int              `json:"ballsScored,omitempty"`
	ClimbLevel  *model.ClimbLevel `json:"climbLevel,omitempty"`
}

type robotStatus struct {
	PlayedDefense bool `json:"playedDefense"`
	RobotBroke    bool `json:"robotBroke"`
}

type matchesResponse struct {
	Matches []matchView `json:"matches"`
}

func newMatchView(r *model.MatchRecord) matchView {
	return matchView{
		ID:          r.ID,
		MatchNumber: r.MatchNumber,
		TeamNumber:  r.TeamNumber,
		ScoutName:   r.ScoutName,
		Autonomous:  phaseView{BallsScored: &r.AutoBalls, ClimbLevel: &r.AutoClimb},
		Teleop:      phaseView{BallsScored: &r.TeleopBalls},
		Endgame:     phaseView{ClimbLevel: &r.EndgameClimb},
		Outcome:     r.MatchOutcome,
		RobotStatus: robotStatus{PlayedDefense: r.PlayedDefense, RobotBroke: r.RobotBroke},
		Notes:       r.Notes,
		Timestamp:   r.Timestamp,
	}
}

// HandleList handles GET /api/matches.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_matches"
	recs, err := h.deps.Matches(r.Context())
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	views := make([]matchView, 0, len(recs))
	for i := range recs {
		views = append(views, newMatchView(&recs[i]))
	}
	writeJSON(w, http.StatusOK, matchesResponse{Matches: views})
}

// HandleDelete handles DELETE /api/matches/{id}.
func (h *MatchesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_match"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		fail(r.Context(), h.logger, w, NewKind(op, ErrBadRequest))
		return
	}
	if _, err := h.deps.Delete(r.Context(), id); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
