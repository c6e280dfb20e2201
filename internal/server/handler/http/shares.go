package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/middleware"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/share"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShareService defines the owner-side share link operations.
type ShareService interface {
	Create(ctx context.Context, userID, noteID string, opts models.ShareOptions) (*models.SharedLink, error)
	List(ctx context.Context, userID, noteID string) ([]models.SharedLink, error)
	ToggleActive(ctx context.Context, userID, linkID string) (*models.SharedLink, error)
	Revoke(ctx context.Context, userID, linkID string) error
	URL(token string) string
}

// Resolver runs the anonymous share-link flow.
type Resolver interface {
	Resolve(ctx context.Context, token string, password *string) (share.View, error)
}

// SharedNoteFetcher is the privileged, unscoped read path.
type SharedNoteFetcher interface {
	FetchSharedNote(ctx context.Context, noteID, linkID string) (*models.SharedNote, error)
}

// ShareHandler serves share link management, the public share page and the
// privileged content function.
type ShareHandler struct {
	Shares   ShareService
	Resolver Resolver
	Fetcher  SharedNoteFetcher
	Log      *zap.Logger
}

// LinkResponse is a share link with its public URL.
type LinkResponse struct {
	models.SharedLink
	URL         string `json:"url"`
	HasPassword bool   `json:"has_password"`
}

func (h *ShareHandler) linkResponse(l models.SharedLink) LinkResponse {
	return LinkResponse{SharedLink: l, URL: h.Shares.URL(l.Token), HasPassword: l.HasPassword()}
}

// Create handles POST /api/notes/{id}/shares.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	var opts models.ShareOptions
	if r.ContentLength != 0 && !decodeJSON(w, r, &opts) {
		return
	}
	link, err := h.Shares.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), opts)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.linkResponse(*link))
}

// List handles GET /api/notes/{id}/shares, newest first.
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.Shares.List(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out := make([]LinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, h.linkResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

// Toggle handles POST /api/shares/{linkID}/toggle.
func (h *ShareHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	link, err := h.Shares.ToggleActive(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "linkID"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, h.linkResponse(*link))
}

// Revoke handles DELETE /api/shares/{linkID}.
func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.Shares.Revoke(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "linkID")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// viewStatus maps a resolved view to its HTTP status.
func viewStatus(v share.View) int {
	switch v.State {
	case share.Ready:
		return http.StatusOK
	case share.PasswordRequired:
		return http.StatusUnauthorized
	}
	switch v.Error {
	case share.MsgInvalidLink, share.MsgNoteGone:
		return http.StatusNotFound
	case share.MsgExpiredLink:
		return http.StatusGone
	default:
		return http.StatusBadGateway
	}
}

// PasswordRequest is the body of POST /shared/{token}.
type PasswordRequest struct {
	Password string `json:"password"`
}

// View handles GET /shared/{token} and POST /shared/{token}. A POST carries
// the password of a protected link.
func (h *ShareHandler) View(w http.ResponseWriter, r *http.Request) {
	var password *string
	if r.Method == http.MethodPost {
		var req PasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		password = &req.Password
	}

	view, err := h.Resolver.Resolve(r.Context(), chi.URLParam(r, "token"), password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, viewStatus(view), view)
}

// Function handles POST /functions/v1/get-shared-note. It must be mounted
// behind service-key authentication.
func (h *ShareHandler) Function(w http.ResponseWriter, r *http.Request) {
	var req share.FunctionRequest
	if !decodeFunctionRequest(w, r, &req) {
		return
	}

	note, err := h.Fetcher.FetchSharedNote(r.Context(), req.NoteID, req.SharedNoteID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, share.FunctionResponse{Success: true, Note: note})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, share.FunctionResponse{Error: "Note not found or link inactive"})
	case errors.Is(err, apperr.ErrExpired):
		writeJSON(w, http.StatusGone, share.FunctionResponse{Error: "Share link has expired"})
	default:
		h.Log.Error("shared note function failed", zap.String("note_id", req.NoteID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, share.FunctionResponse{Error: "Internal server error"})
	}
}

func decodeFunctionRequest(w http.ResponseWriter, r *http.Request, req *share.FunctionRequest) bool {
	if err := decodeBody(w, r, req); err != nil || req.NoteID == "" || req.SharedNoteID == "" {
		writeJSON(w, http.StatusBadRequest, share.FunctionResponse{Error: "noteId and sharedNoteId are required"})
		return false
	}
	if uuid.Validate(req.NoteID) != nil || uuid.Validate(req.SharedNoteID) != nil {
		writeJSON(w, http.StatusBadRequest, share.FunctionResponse{Error: "noteId and sharedNoteId must be UUIDs"})
		return false
	}
	return true
}
