package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/NoteKeeper/internal/middleware"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TagService defines the tag operations required by TagHandler.
type TagService interface {
	ListForOwner(ctx context.Context, userID string) ([]models.Tag, error)
	Create(ctx context.Context, userID, name string, color *string) (*models.Tag, error)
	Delete(ctx context.Context, userID, tagID string) error
	Attach(ctx context.Context, userID, noteID, tagID string) error
	Detach(ctx context.Context, userID, noteID, tagID string) error
	ListForNote(ctx context.Context, userID, noteID string) ([]models.Tag, error)
}

// TagHandler serves the tag registry and note labelling.
type TagHandler struct {
	Tags TagService
	Log  *zap.Logger
}

// CreateTagRequest is the body of POST /api/tags.
type CreateTagRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

func (h *TagHandler) writeTags(w http.ResponseWriter, tags []models.Tag, err error) {
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

// List handles GET /api/tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Tags.ListForOwner(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	h.writeTags(w, tags, err)
}

// Create handles POST /api/tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tag, err := h.Tags.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.Name, req.Color)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// Delete handles DELETE /api/tags/{tagID}.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Tags.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "tagID")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListForNote handles GET /api/notes/{id}/tags.
func (h *TagHandler) ListForNote(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Tags.ListForNote(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	h.writeTags(w, tags, err)
}

// Attach handles PUT /api/notes/{id}/tags/{tagID}. Attaching twice is a no-op.
func (h *TagHandler) Attach(w http.ResponseWriter, r *http.Request) {
	err := h.Tags.Attach(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "tagID"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Detach handles DELETE /api/notes/{id}/tags/{tagID}.
func (h *TagHandler) Detach(w http.ResponseWriter, r *http.Request) {
	err := h.Tags.Detach(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "tagID"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
