package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/atinyakov/NoteKeeper/internal/export"
	"github.com/atinyakov/NoteKeeper/internal/middleware"
	"github.com/atinyakov/NoteKeeper/internal/service"
	"go.uber.org/zap"
)

// ExportService renders a user's notes as a downloadable file.
type ExportService interface {
	Export(ctx context.Context, userID string, f export.Format) (*service.Export, error)
}

// ExportHandler serves note exports.
type ExportHandler struct {
	Export ExportService
	Log    *zap.Logger
}

// Download handles GET /api/export?format=json|txt|md. JSON is the default.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	f, err := export.ParseFormat(name)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	out, err := h.Export.Export(r.Context(), middleware.GetUserIDFromContext(r.Context()), f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(out.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	_, _ = w.Write(out.Data)
}
