package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
	handler "github.com/atinyakov/NoteKeeper/internal/server/handler/http"
	"github.com/atinyakov/NoteKeeper/internal/share"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// fakeFetcher records calls and returns preconfigured results.
type fakeFetcher struct {
	called bool
	noteID string
	linkID string

	note *models.SharedNote
	err  error
}

func (f *fakeFetcher) FetchSharedNote(ctx context.Context, noteID, linkID string) (*models.SharedNote, error) {
	f.called = true
	f.noteID, f.linkID = noteID, linkID
	return f.note, f.err
}

// fakeResolver returns a fixed view.
type fakeResolver struct {
	password *string
	view     share.View
	err      error
}

func (f *fakeResolver) Resolve(ctx context.Context, token string, password *string) (share.View, error) {
	f.password = password
	return f.view, f.err
}

func TestShareHandler_Function(t *testing.T) {
	title := "Shared"
	const (
		noteID = "9b2f0c4e-1d2a-4a55-8f0e-3c1b2a4d5e6f"
		linkID = "4e1d2c3b-5a69-4b7c-8d9e-0f1a2b3c4d5e"
	)
	valid := `{"noteId":"` + noteID + `","sharedNoteId":"` + linkID + `"}`
	tests := []struct {
		name        string
		body        string
		fetcher     *fakeFetcher
		wantCode    int
		wantSuccess bool
		wantCalled  bool
	}{
		{"invalid json", "not-a-json", &fakeFetcher{}, http.StatusBadRequest, false, false},
		{"missing link id", `{"noteId":"` + noteID + `"}`, &fakeFetcher{}, http.StatusBadRequest, false, false},
		{"malformed note id", `{"noteId":"not-a-uuid","sharedNoteId":"` + linkID + `"}`, &fakeFetcher{}, http.StatusBadRequest, false, false},
		{"malformed link id", `{"noteId":"` + noteID + `","sharedNoteId":"l1"}`, &fakeFetcher{}, http.StatusBadRequest, false, false},
		{"not found", valid,
			&fakeFetcher{err: fmt.Errorf("load link: %w", apperr.ErrNotFound)}, http.StatusNotFound, false, true},
		{"expired", valid,
			&fakeFetcher{err: fmt.Errorf("load link: %w", apperr.ErrExpired)}, http.StatusGone, false, true},
		{"internal", valid,
			&fakeFetcher{err: errors.New("connection reset")}, http.StatusInternalServerError, false, true},
		{"success", valid,
			&fakeFetcher{note: &models.SharedNote{Title: &title}}, http.StatusOK, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &handler.ShareHandler{Fetcher: tt.fetcher, Log: zap.NewNop()}
			req := httptest.NewRequest(http.MethodPost, share.FunctionPath, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			h.Function(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d; want %d", w.Code, tt.wantCode)
			}
			if tt.fetcher.called != tt.wantCalled {
				t.Errorf("fetcher called = %v; want %v", tt.fetcher.called, tt.wantCalled)
			}
			var resp share.FunctionResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response JSON: %v", err)
			}
			if resp.Success != tt.wantSuccess {
				t.Errorf("success = %v; want %v", resp.Success, tt.wantSuccess)
			}
			if !tt.wantSuccess && resp.Error == "" {
				t.Error("expected an error message")
			}
			if tt.wantSuccess && (resp.Note == nil || *resp.Note.Title != title) {
				t.Errorf("note = %+v", resp.Note)
			}
			if tt.wantCalled && (tt.fetcher.noteID != noteID || tt.fetcher.linkID != linkID) {
				t.Errorf("fetched (%q, %q)", tt.fetcher.noteID, tt.fetcher.linkID)
			}
		})
	}
}

func TestShareHandler_ViewStatus(t *testing.T) {
	tests := []struct {
		view     share.View
		wantCode int
	}{
		{share.View{State: share.Ready, Note: &models.SharedNote{}}, http.StatusOK},
		{share.View{State: share.PasswordRequired}, http.StatusUnauthorized},
		{share.View{State: share.Error, Error: share.MsgInvalidLink}, http.StatusNotFound},
		{share.View{State: share.Error, Error: share.MsgNoteGone}, http.StatusNotFound},
		{share.View{State: share.Error, Error: share.MsgExpiredLink}, http.StatusGone},
		{share.View{State: share.Error, Error: share.MsgFetchFailed}, http.StatusBadGateway},
		{share.View{State: share.Error, Error: share.MsgServiceOffline}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.view.State.String()+"/"+tt.view.Error, func(t *testing.T) {
			h := &handler.ShareHandler{Resolver: &fakeResolver{view: tt.view}, Log: zap.NewNop()}
			r := chi.NewRouter()
			r.Get("/shared/{token}", h.View)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shared/tok", nil))

			if w.Code != tt.wantCode {
				t.Errorf("status = %d; want %d", w.Code, tt.wantCode)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestShareHandler_ViewPassesPassword(t *testing.T) {
	res := &fakeResolver{view: share.View{State: share.Ready}}
	h := &handler.ShareHandler{Resolver: res, Log: zap.NewNop()}

	w := httptest.NewRecorder()
	h.View(w, httptest.NewRequest(http.MethodPost, "/shared/tok", bytes.NewBufferString(`{"password":"pw"}`)))
	if res.password == nil || *res.password != "pw" {
		t.Fatalf("password = %v", res.password)
	}

	w = httptest.NewRecorder()
	h.View(w, httptest.NewRequest(http.MethodGet, "/shared/tok", nil))
	if res.password != nil {
		t.Error("GET must not submit a password")
	}

	w = httptest.NewRecorder()
	h.View(w, httptest.NewRequest(http.MethodPost, "/shared/tok", bytes.NewBufferString("nope")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
}
