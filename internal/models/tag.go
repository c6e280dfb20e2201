package models

import (
	"strings"
	"time"
)

// Tag is a named, optionally colored label owned by one user.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeTagName trims surrounding whitespace. Case is preserved because
// names are displayed as typed.
func NormalizeTagName(name string) string {
	return strings.TrimSpace(name)
}

// NoteTag is a join row between a note and a tag as returned by the store.
type NoteTag struct {
	NoteID string
	Tag    Tag
}
