package api

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/starboard/internal/adapters/export"
	service "github.com/okian/starboard/internal/app"
	"github.com/okian/starboard/internal/domain/viewstate"
	"github.com/okian/starboard/pkg/metrics"
)

// ExportHandler renders the current view as a downloadable file.
type ExportHandler struct {
	deps LeaderboardDependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps LeaderboardDependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandlePNG handles GET /export/leaderboard.png.
func (h *ExportHandler) HandlePNG(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatPNG)
}

// HandleXLSX handles GET /export/leaderboard.xlsx.
func (h *ExportHandler) HandleXLSX(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatXLSX)
}

// serve renders into memory first so a failure can still be reported as
// JSON instead of a truncated file.
func (h *ExportHandler) serve(w http.ResponseWriter, r *http.Request, format string) {
	const op = "api.export"
	start := time.Now()

	buf, err := h.render(r.Context(), viewstate.FromQuery(r.URL.Query()), format)
	ms := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordExport(format, metrics.OutcomeError, ms)
		writeError(w, http.StatusInternalServerError, "export_failed", WrapKind(op, ErrExport, err))
		return
	}
	metrics.RecordExport(format, metrics.OutcomeOK, ms)

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(format)}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *ExportHandler) render(ctx context.Context, state viewstate.State, format string) (*bytes.Buffer, error) {
	view, err := h.deps.Leaderboard(ctx, state)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, BoardFromView(view)); err != nil {
		return nil, err
	}
	return &buf, nil
}

// BoardFromView converts a view's tables into an export board.
func BoardFromView(v service.View) export.Board {
	sheets := make([]export.Sheet, len(v.Sections))
	for i, s := range v.Sections {
		sheets[i] = export.Sheet{Title: s.Title, Rows: s.Rows}
	}
	return export.Board{
		Years:    v.Years,
		Selected: v.YearSelected,
		Detailed: v.State.Detailed,
		Sheets:   sheets,
	}
}
