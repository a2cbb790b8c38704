package api

import (
	"context"
	"net/http"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/pkg/logger"
)

// SubmitDependencies defines the intake operations.
type SubmitDependencies interface {
	Submit(ctx context.Context, raw model.RawSubmission) (model.MatchRecord, error)
	Import(ctx context.Context, raws []model.RawSubmission) ([]model.ImportResult, error)
}

// SubmitHandler handles single submissions and bulk imports.
type SubmitHandler struct {
	deps    SubmitDependencies
	maxBody int64
	logger  logger.Logger
}

// NewSubmitHandler creates a new submit handler.
func NewSubmitHandler(deps SubmitDependencies, cfg settings) *SubmitHandler {
	return &SubmitHandler{deps: deps, maxBody: cfg.maxBodyBytes, logger: cfg.logger}
}

type submitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Match   int    `json:"match"`
	Team    int    `json:"team"`
}

type importResponse struct {
	Results      []model.ImportResult `json:"results"`
	Created      int                  `json:"created"`
	Duplicates   int                  `json:"duplicates"`
	Invalid      int                  `json:"invalid"`
	Failed       int                  `json:"failed"`
	Backpressure int                  `json:"backpressure"`
}

// HandleSubmit handles POST /api/submit with one compact or expanded payload.
func (h *SubmitHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	ctx := r.Context()

	raw, err := normalize.Decode(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		fail(ctx, h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	rec, err := h.deps.Submit(ctx, raw)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Success: true,
		ID:      rec.ID,
		Match:   rec.MatchNumber,
		Team:    rec.TeamNumber,
	})
}

// HandleImport handles POST /api/import with a JSON array of payloads. Each
// element is an object or the scanned QR string of one.
func (h *SubmitHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import"
	ctx := r.Context()

	raws, err := normalize.DecodeBatch(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		fail(ctx, h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	results, err := h.deps.Import(ctx, raws)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}

	resp := importResponse{Results: results}
	for _, res := range results {
		switch res.Status {
		case model.ImportCreated:
			resp.Created++
		case model.ImportDuplicate:
			resp.Duplicates++
		case model.ImportInvalid:
			resp.Invalid++
		case model.ImportBackpressure:
			resp.Backpressure++
		default:
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
