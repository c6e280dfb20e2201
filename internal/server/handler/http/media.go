package http

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/atinyakov/NoteKeeper/internal/middleware"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxUpload caps a single media upload.
const maxUpload = 100 << 20

// MediaService defines the media operations required by MediaHandler.
type MediaService interface {
	Upload(ctx context.Context, userID, noteID string, kind models.MediaKind, fileName string, r io.Reader) (*models.MediaItem, error)
	List(ctx context.Context, userID, noteID string) ([]models.MediaItem, error)
	Remove(ctx context.Context, userID, mediaID string) error
	Open(ctx context.Context, bucket, objectPath string) (*os.File, error)
}

// MediaHandler serves note attachments and the public bucket contents.
type MediaHandler struct {
	Media MediaService
	Log   *zap.Logger
}

// Upload handles POST /api/notes/{id}/media as multipart/form-data with a
// "kind" field (image, audio or video) and a "file" part.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	item, err := h.Media.Upload(r.Context(), middleware.GetUserIDFromContext(r.Context()),
		chi.URLParam(r, "id"), models.MediaKind(r.FormValue("kind")), header.Filename, file)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// List handles GET /api/notes/{id}/media.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Media.List(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if items == nil {
		items = []models.MediaItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Remove handles DELETE /api/media/{mediaID}.
func (h *MediaHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Media.Remove(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "mediaID")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Serve handles GET /storage/{bucket}/*. Buckets are publicly readable.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	f, err := h.Media.Open(r.Context(), chi.URLParam(r, "bucket"), chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	http.ServeContent(w, r, path.Base(f.Name()), info.ModTime(), f)
}
