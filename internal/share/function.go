package share

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
)

// FunctionPath is the route of the privileged shared-note function.
const FunctionPath = "/functions/v1/get-shared-note"

// FunctionRequest is the body of a privileged fetch.
type FunctionRequest struct {
	NoteID       string `json:"noteId"`
	SharedNoteID string `json:"sharedNoteId"`
}

// FunctionResponse is returned by the privileged fetch for every status.
type FunctionResponse struct {
	Success bool               `json:"success"`
	Note    *models.SharedNote `json:"note,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// FunctionClient calls the privileged function over HTTP with the service key.
type FunctionClient struct {
	HTTP       *http.Client
	BaseURL    string
	ServiceKey string
}

// NewFunctionClient returns a client for the function hosted at baseURL.
func NewFunctionClient(client *http.Client, baseURL, serviceKey string) *FunctionClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &FunctionClient{HTTP: client, BaseURL: strings.TrimRight(baseURL, "/"), ServiceKey: serviceKey}
}

// FetchSharedNote maps 404 to apperr.ErrNotFound, 410 to apperr.ErrExpired
// and any other non-200 status to ErrFunctionFailed. Network failures are
// returned as they are.
func (c *FunctionClient) FetchSharedNote(ctx context.Context, noteID, linkID string) (*models.SharedNote, error) {
	b, err := json.Marshal(FunctionRequest{NoteID: noteID, SharedNoteID: linkID})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+FunctionPath, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call shared note function: %w", err)
	}
	defer resp.Body.Close()

	var out FunctionResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("shared note function: %s: %w", out.Error, apperr.ErrNotFound)
	case http.StatusGone:
		return nil, fmt.Errorf("shared note function: %s: %w", out.Error, apperr.ErrExpired)
	default:
		return nil, fmt.Errorf("shared note function: status %d %s: %w", resp.StatusCode, out.Error, ErrFunctionFailed)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %v: %w", decodeErr, ErrFunctionFailed)
	}
	if !out.Success || out.Note == nil {
		return nil, fmt.Errorf("shared note function: %s: %w", out.Error, ErrFunctionFailed)
	}
	return out.Note, nil
}
