// Package models defines the core data structures for notes and everything
// a note owns: media, tags, versions and share links.
package models

import "time"

// Note is a user's rich-text note.
type Note struct {
	// ID is the unique identifier for the note.
	ID string `json:"id"`
	// UserID identifies the owning user.
	UserID string `json:"user_id"`
	// Title is optional.
	Title *string `json:"title"`
	// Content holds the HTML body produced by the editor.
	Content *string `json:"content"`
	// IsPinned keeps the note on top of the active list.
	IsPinned bool `json:"is_pinned"`
	// Color is an optional color label.
	Color *string `json:"color"`
	// CreatedAt is the creation time.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the time of the last update.
	UpdatedAt time.Time `json:"updated_at"`
	// DeletedAt is set while the note sits in the trash.
	DeletedAt *time.Time `json:"deleted_at"`
}

// Deleted reports whether the note is soft-deleted.
func (n *Note) Deleted() bool {
	return n.DeletedAt != nil
}

// TitleOr returns the title, or fallback when the title is unset or blank.
func (n *Note) TitleOr(fallback string) string {
	if n.Title == nil || *n.Title == "" {
		return fallback
	}
	return *n.Title
}

// ContentOrEmpty returns the content or an empty string.
func (n *Note) ContentOrEmpty() string {
	if n.Content == nil {
		return ""
	}
	return *n.Content
}

// NoteInput carries the fields accepted when creating a note.
type NoteInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Pinned  bool    `json:"is_pinned"`
	Color   *string `json:"color"`
}

// NotePatch carries the fields of an update. Nil fields are left unchanged.
type NotePatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Pinned  *bool   `json:"is_pinned"`
	Color   *string `json:"color"`
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Pinned == nil && p.Color == nil
}

// Apply copies the set fields of the patch onto n.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = p.Title
	}
	if p.Content != nil {
		n.Content = p.Content
	}
	if p.Pinned != nil {
		n.IsPinned = *p.Pinned
	}
	if p.Color != nil {
		n.Color = p.Color
	}
}

// ListFilter narrows a note listing.
type ListFilter struct {
	// Deleted selects the trash instead of the active list.
	Deleted bool
	// TagID keeps only notes carrying the tag.
	TagID string
	// Query is a case-insensitive substring matched against title and content.
	Query string
}

// BatchResult reports the outcome of one item of a bulk operation.
type BatchResult struct {
	NoteID string `json:"note_id"`
	Error  string `json:"error,omitempty"`
}

// OK reports whether the item succeeded.
func (r BatchResult) OK() bool {
	return r.Error == ""
}
