// Package http provides the chi handlers and router of the NoteKeeper API.
package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/atinyakov/NoteKeeper/internal/middleware"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NoteService defines the note operations required by NoteHandler.
type NoteService interface {
	Create(ctx context.Context, userID string, in models.NoteInput) (*models.Note, error)
	Get(ctx context.Context, userID, id string) (*models.Note, error)
	List(ctx context.Context, userID string, filter models.ListFilter) ([]models.Note, error)
	Update(ctx context.Context, userID, id string, patch models.NotePatch) (*models.Note, error)
	SoftDelete(ctx context.Context, userID, id string) error
	Restore(ctx context.Context, userID, id string) error
	PermanentlyDelete(ctx context.Context, userID, id string) error
	EmptyTrash(ctx context.Context, userID string) ([]models.BatchResult, error)
}

// VersionService defines the version history operations required by
// NoteHandler.
type VersionService interface {
	Snapshot(ctx context.Context, userID, noteID string) (*models.NoteVersion, error)
	List(ctx context.Context, userID, noteID string) ([]models.NoteVersion, error)
	RestoreVersion(ctx context.Context, userID, noteID, versionID string) (*models.Note, error)
}

// NoteHandler serves notes, the trash and version history.
type NoteHandler struct {
	Notes    NoteService
	Versions VersionService
	Log      *zap.Logger
}

// List handles GET /api/notes. Query parameters: deleted=true selects the
// trash, tag filters by tag ID, q searches title and content.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ListFilter{TagID: q.Get("tag"), Query: q.Get("q")}
	if v := q.Get("deleted"); v != "" {
		deleted, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid deleted flag", http.StatusBadRequest)
			return
		}
		filter.Deleted = deleted
	}

	notes, err := h.Notes.List(r.Context(), middleware.GetUserIDFromContext(r.Context()), filter)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// Create handles POST /api/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.NoteInput
	if !decodeJSON(w, r, &in) {
		return
	}
	note, err := h.Notes.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// Get handles GET /api/notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.Notes.Get(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Update handles PATCH /api/notes/{id}. Absent fields are left unchanged.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.NotePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	note, err := h.Notes.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Delete handles DELETE /api/notes/{id} by moving the note to the trash.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Notes.SoftDelete(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /api/notes/{id}/restore.
func (h *NoteHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if err := h.Notes.Restore(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Purge handles DELETE /api/notes/{id}/permanent.
func (h *NoteHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if err := h.Notes.PermanentlyDelete(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EmptyTrash handles DELETE /api/trash and reports the outcome per note.
func (h *NoteHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	results, err := h.Notes.EmptyTrash(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if results == nil {
		results = []models.BatchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Versions handles GET /api/notes/{id}/versions, newest first.
func (h *NoteHandler) Versions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.Versions.List(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if versions == nil {
		versions = []models.NoteVersion{}
	}
	writeJSON(w, http.StatusOK, versions)
}

// Snapshot handles POST /api/notes/{id}/versions.
func (h *NoteHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	v, err := h.Versions.Snapshot(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// RestoreVersion handles POST /api/notes/{id}/versions/{versionID}/restore.
func (h *NoteHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	note, err := h.Versions.RestoreVersion(r.Context(), middleware.GetUserIDFromContext(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "versionID"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
