// Package client talks to the NoteKeeper API and implements the terminal
// editing session used by the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/share"
)

// StatusError is a non-2xx API response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.Code, e.Message)
}

// Unwrap maps the status back onto the shared error taxonomy.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusBadRequest:
		return apperr.ErrInvalidInput
	case http.StatusUnauthorized:
		return apperr.ErrUnauthenticated
	case http.StatusForbidden:
		return apperr.ErrPasswordMismatch
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusConflict:
		return apperr.ErrConflict
	case http.StatusGone:
		return apperr.ErrExpired
	case http.StatusBadGateway:
		return apperr.ErrStorage
	}
	return nil
}

// Client is an authenticated API client.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
}

// New returns a Client for the server at baseURL using bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, okCodes []int, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	ok := false
	for _, code := range okCodes {
		ok = ok || resp.StatusCode == code
	}
	if !ok {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.send(req, []int{http.StatusOK, http.StatusCreated, http.StatusNoContent}, out)
}

// ListNotes returns the active notes, or the trash when filter.Deleted is set.
func (c *Client) ListNotes(ctx context.Context, filter models.ListFilter) ([]models.Note, error) {
	q := url.Values{}
	if filter.Deleted {
		q.Set("deleted", "true")
	}
	if filter.TagID != "" {
		q.Set("tag", filter.TagID)
	}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	path := "/api/notes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var notes []models.Note
	return notes, c.do(ctx, http.MethodGet, path, nil, &notes)
}

func (c *Client) CreateNote(ctx context.Context, in models.NoteInput) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", in, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPatch, "/api/notes/"+url.PathEscape(id), patch, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote moves a note to the trash.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) RestoreNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/notes/"+url.PathEscape(id)+"/restore", nil, nil)
}

// PurgeNote deletes a note and its media for good.
func (c *Client) PurgeNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id)+"/permanent", nil, nil)
}

func (c *Client) EmptyTrash(ctx context.Context) ([]models.BatchResult, error) {
	var out struct {
		Results []models.BatchResult `json:"results"`
	}
	return out.Results, c.do(ctx, http.MethodDelete, "/api/trash", nil, &out)
}

func (c *Client) ListVersions(ctx context.Context, noteID string) ([]models.NoteVersion, error) {
	var versions []models.NoteVersion
	return versions, c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(noteID)+"/versions", nil, &versions)
}

func (c *Client) RestoreVersion(ctx context.Context, noteID, versionID string) (*models.Note, error) {
	var note models.Note
	path := "/api/notes/" + url.PathEscape(noteID) + "/versions/" + url.PathEscape(versionID) + "/restore"
	if err := c.do(ctx, http.MethodPost, path, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	return tags, c.do(ctx, http.MethodGet, "/api/tags", nil, &tags)
}

func (c *Client) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := c.do(ctx, http.MethodPost, "/api/tags", map[string]string{"name": name}, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (c *Client) AttachTag(ctx context.Context, noteID, tagID string) error {
	return c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(noteID)+"/tags/"+url.PathEscape(tagID), nil, nil)
}

func (c *Client) ListNoteTags(ctx context.Context, noteID string) ([]models.Tag, error) {
	var tags []models.Tag
	return tags, c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(noteID)+"/tags", nil, &tags)
}

// UploadMedia attaches the contents of r to a note.
func (c *Client) UploadMedia(ctx context.Context, noteID string, kind models.MediaKind, fileName string, r io.Reader) (*models.MediaItem, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := mw.WriteField("kind", string(kind)); err != nil {
		return nil, err
	}
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/notes/"+url.PathEscape(noteID)+"/media", body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var item models.MediaItem
	if err := c.send(req, []int{http.StatusCreated}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) ListMedia(ctx context.Context, noteID string) ([]models.MediaItem, error) {
	var items []models.MediaItem
	return items, c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(noteID)+"/media", nil, &items)
}

// Link is a share link as returned by the API.
type Link struct {
	models.SharedLink
	URL         string `json:"url"`
	HasPassword bool   `json:"has_password"`
}

func (c *Client) CreateShare(ctx context.Context, noteID string, opts models.ShareOptions) (*Link, error) {
	var link Link
	if err := c.do(ctx, http.MethodPost, "/api/notes/"+url.PathEscape(noteID)+"/shares", opts, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) ListShares(ctx context.Context, noteID string) ([]Link, error) {
	var links []Link
	return links, c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(noteID)+"/shares", nil, &links)
}

func (c *Client) ToggleShare(ctx context.Context, linkID string) (*Link, error) {
	var link Link
	if err := c.do(ctx, http.MethodPost, "/api/shares/"+url.PathEscape(linkID)+"/toggle", nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) RevokeShare(ctx context.Context, linkID string) error {
	return c.do(ctx, http.MethodDelete, "/api/shares/"+url.PathEscape(linkID), nil, nil)
}

// SharedView is the public view of a share link.
type SharedView struct {
	State         string             `json:"state"`
	Note          *models.SharedNote `json:"note,omitempty"`
	Error         string             `json:"error,omitempty"`
	PasswordError bool               `json:"password_error,omitempty"`
}

// ResolveShare opens a share link anonymously. A non-nil password is
// submitted for protected links. Every resolver outcome is returned as a
// view; only transport failures are errors.
func (c *Client) ResolveShare(ctx context.Context, token string, password *string) (*SharedView, error) {
	method := http.MethodGet
	var body io.Reader
	contentType := ""
	if password != nil {
		b, err := json.Marshal(map[string]string{"password": *password})
		if err != nil {
			return nil, err
		}
		method, body, contentType = http.MethodPost, bytes.NewReader(b), "application/json"
	}

	anon := &Client{HTTP: c.HTTP, BaseURL: c.BaseURL}
	req, err := anon.newRequest(ctx, method, "/shared/"+url.PathEscape(token), body, contentType)
	if err != nil {
		return nil, err
	}
	var view SharedView
	err = anon.send(req, []int{http.StatusOK, http.StatusUnauthorized, http.StatusNotFound, http.StatusGone, http.StatusBadGateway}, &view)
	if err != nil {
		return nil, err
	}
	if view.State == "" {
		view.State = share.Error.String()
	}
	return &view, nil
}

// Export downloads an export file and returns its suggested name and bytes.
func (c *Client) Export(ctx context.Context, format string) (string, []byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/export?format="+url.QueryEscape(format), nil, "")
	if err != nil {
		return "", nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("export failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	name := "notes-export." + format
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return name, data, nil
}
