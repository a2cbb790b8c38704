// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/scoring"
	"github.com/okian/scout/internal/domain/types"
	"github.com/okian/scout/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Submit(ctx context.Context, raw model.RawSubmission) (model.MatchRecord, error)
	Import(ctx context.Context, raws []model.RawSubmission) ([]model.ImportResult, error)
	Delete(ctx context.Context, id string) (model.MatchRecord, error)

	Matches(ctx context.Context) ([]model.MatchRecord, error)
	Rankings(ctx context.Context, f scoring.Filter, limit int) ([]types.TeamRanking, error)
	Team(ctx context.Context, team int) (types.TeamDetail, error)
	Overview(ctx context.Context) (types.Overview, error)
	Export(ctx context.Context, w io.Writer, format string) error
}

// Server wires HTTP routes for the scouting API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	submitHandler   *SubmitHandler
	matchesHandler  *MatchesHandler
	teamHandler     *TeamHandler
	rankingsHandler *RankingsHandler
	exportHandler   *ExportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Get().Named("api")
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider, deps),
		submitHandler:   NewSubmitHandler(deps, cfg),
		matchesHandler:  NewMatchesHandler(deps, cfg),
		teamHandler:     NewTeamHandler(deps, cfg),
		rankingsHandler: NewRankingsHandler(deps, cfg),
		exportHandler:   NewExportHandler(deps, cfg),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleHealth)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /api/submit", MetricsMiddleware(s.submitHandler.HandleSubmit, "submit"))
	mux.HandleFunc("POST /api/import", MetricsMiddleware(s.submitHandler.HandleImport, "import"))
	mux.HandleFunc("GET /api/matches", MetricsMiddleware(s.matchesHandler.HandleList, "matches"))
	mux.HandleFunc("DELETE /api/matches/{id}", MetricsMiddleware(s.matchesHandler.HandleDelete, "delete_match"))
	mux.HandleFunc("GET /api/team/{team}", MetricsMiddleware(s.teamHandler.HandleGetTeam, "team"))
	mux.HandleFunc("GET /api/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("GET /api/rankings/chart.png", MetricsMiddleware(s.rankingsHandler.HandleChart, "rankings_chart"))
	mux.HandleFunc("GET /api/stats", MetricsMiddleware(s.statsHandler.HandleOverview, "overview"))
	mux.HandleFunc("GET /api/export/{format}", MetricsMiddleware(s.exportHandler.HandleExport, "export"))
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}

// fail classifies err, logs server-side failures and writes the error body.
func fail(ctx context.Context, log logger.Logger, w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.Error(err), logger.Int("status", status))
	}
	writeError(w, status, code, err)
}

// settings are the knobs shared by handlers.
type settings struct {
	defaultLimit int
	maxLimit     int
	chartTopN    int
	maxBodyBytes int64
	now          func() time.Time
	logger       logger.Logger
}

func defaultSettings() settings {
	return settings{
		defaultLimit: 50,
		maxLimit:     200,
		chartTopN:    10,
		maxBodyBytes: 1 << 20,
		now:          time.Now,
	}
}
