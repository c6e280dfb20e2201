package models

import "time"

// NoteVersion is an immutable snapshot of a note's title and content taken
// right before an update. Numbers are contiguous per note starting at 1.
type NoteVersion struct {
	ID            string    `json:"id"`
	NoteID        string    `json:"note_id"`
	Title         *string   `json:"title"`
	Content       *string   `json:"content"`
	VersionNumber int64     `json:"version_number"`
	CreatedAt     time.Time `json:"created_at"`
}
