package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
)

// roundTripperFunc stubs the transport of an http.Client.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripperFunc) *Client {
	return &Client{HTTP: &http.Client{Transport: fn, Timeout: time.Second}, BaseURL: "http://example.com", Token: "tok"}
}

func respond(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestClient_NetworkError(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	})
	_, err := c.ListNotes(context.Background(), models.ListFilter{})
	if err == nil || !strings.Contains(err.Error(), "network down") {
		t.Errorf("expected network failure, got %v", err)
	}
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusBadRequest, apperr.ErrInvalidInput},
		{http.StatusUnauthorized, apperr.ErrUnauthenticated},
		{http.StatusNotFound, apperr.ErrNotFound},
		{http.StatusConflict, apperr.ErrConflict},
		{http.StatusGone, apperr.ErrExpired},
		{http.StatusBadGateway, apperr.ErrStorage},
	}
	for _, tt := range tests {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			return respond(tt.code, "boom\n"), nil
		})
		_, err := c.GetNote(context.Background(), "n1")
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v; want %v", tt.code, err, tt.want)
		}
		var se *StatusError
		if !errors.As(err, &se) || se.Message != "boom" {
			t.Errorf("status %d: StatusError = %+v", tt.code, se)
		}
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "not-json"), nil
	})
	if _, err := c.GetNote(context.Background(), "n1"); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestClient_ListNotesQuery(t *testing.T) {
	var got *http.Request
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		got = req
		return respond(http.StatusOK, `[{"id":"n1"}]`), nil
	})
	notes, err := c.ListNotes(context.Background(), models.ListFilter{Deleted: true, TagID: "t1", Query: "milk"})
	if err != nil {
		t.Fatalf("ListNotes error = %v", err)
	}
	if len(notes) != 1 || notes[0].ID != "n1" {
		t.Errorf("notes = %+v", notes)
	}
	if got.URL.Path != "/api/notes" {
		t.Errorf("path = %q", got.URL.Path)
	}
	q := got.URL.Query()
	if q.Get("deleted") != "true" || q.Get("tag") != "t1" || q.Get("q") != "milk" {
		t.Errorf("query = %v", q)
	}
	if auth := got.Header.Get("Authorization"); auth != "Bearer tok" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestClient_UpdateNoteSendsPatch(t *testing.T) {
	var body map[string]any
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPatch || req.URL.Path != "/api/notes/n1" {
			t.Errorf("unexpected %s %s", req.Method, req.URL.Path)
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		return respond(http.StatusOK, `{"id":"n1","content":"<p>x</p>"}`), nil
	})
	content := "<p>x</p>"
	note, err := c.UpdateNote(context.Background(), "n1", models.NotePatch{Content: &content})
	if err != nil {
		t.Fatalf("UpdateNote error = %v", err)
	}
	if note.ContentOrEmpty() != content {
		t.Errorf("content = %q", note.ContentOrEmpty())
	}
	if body["content"] != content || body["title"] != nil {
		t.Errorf("body = %v", body)
	}
}

func TestClient_ResolveShare(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("share resolution must be anonymous")
		}
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"state":"password_required"}`))
			return
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"state":"password_required","password_error":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"state":"ready","note":{"content":"<p>hi</p>"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "owner-token")
	ctx := context.Background()

	view, err := c.ResolveShare(ctx, "tok", nil)
	if err != nil || view.State != "password_required" {
		t.Fatalf("view = %+v, err = %v", view, err)
	}
	wrong := "nope"
	view, err = c.ResolveShare(ctx, "tok", &wrong)
	if err != nil || !view.PasswordError {
		t.Fatalf("view = %+v, err = %v", view, err)
	}
	right := "pw"
	view, err = c.ResolveShare(ctx, "tok", &right)
	if err != nil || view.State != "ready" || *view.Note.Content != "<p>hi</p>" {
		t.Fatalf("view = %+v, err = %v", view, err)
	}
}

func TestClient_Export(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("format") != "md" {
			t.Errorf("format = %q", req.URL.Query().Get("format"))
		}
		resp := respond(http.StatusOK, "# Title\n")
		resp.Header.Set("Content-Disposition", `attachment; filename="notes-export-2024-02-10.md"`)
		return resp, nil
	})
	name, data, err := c.Export(context.Background(), "md")
	if err != nil {
		t.Fatalf("Export error = %v", err)
	}
	if name != "notes-export-2024-02-10.md" || string(data) != "# Title\n" {
		t.Errorf("got %q %q", name, data)
	}
}

func TestClient_UploadMedia(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if req.FormValue("kind") != "audio" {
			t.Errorf("kind = %q", req.FormValue("kind"))
		}
		f, h, err := req.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		b, _ := io.ReadAll(f)
		if h.Filename != "memo.m4a" || string(b) != "sound" {
			t.Errorf("file %q = %q", h.Filename, b)
		}
		return respond(http.StatusCreated, `{"id":"m1","media_type":"audio"}`), nil
	})
	item, err := c.UploadMedia(context.Background(), "n1", models.MediaAudio, "memo.m4a", strings.NewReader("sound"))
	if err != nil {
		t.Fatalf("UploadMedia error = %v", err)
	}
	if item.ID != "m1" || item.Kind != models.MediaAudio {
		t.Errorf("item = %+v", item)
	}
}
