package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/export"
	"github.com/okian/scout/pkg/logger"
)

// ExportDependencies defines the export operation.
type ExportDependencies interface {
	Export(ctx context.Context, w io.Writer, format string) error
}

// ExportHandler handles CSV and XLSX downloads.
type ExportHandler struct {
	deps   ExportDependencies
	now    func() time.Time
	logger logger.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies, cfg settings) *ExportHandler {
	return &ExportHandler{deps: deps, now: cfg.now, logger: cfg.logger}
}

var contentTypes = map[string]string{
	service.FormatCSV:  export.ContentTypeCSV,
	service.FormatXLSX: export.ContentTypeXLSX,
}

// HandleExport handles GET /api/export/{format} for csv and xlsx.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	format := r.PathValue("format")
	contentType, ok := contentTypes[format]
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Buffer so a failed export still gets a JSON error instead of a truncated file.
	var buf bytes.Buffer
	if err := h.deps.Export(r.Context(), &buf, format); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(format, h.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
