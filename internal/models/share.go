package models

import "time"

// SharedLink is a tokenized public access grant for a note.
type SharedLink struct {
	// ID is the unique identifier for the link.
	ID string `json:"id"`
	// NoteID is the shared note.
	NoteID string `json:"note_id"`
	// Token is the bearer credential embedded in the public URL.
	Token string `json:"token"`
	// PasswordHash is set when the link is password protected.
	PasswordHash *string `json:"-"`
	// ExpiresAt is the absolute expiry, if any.
	ExpiresAt *time.Time `json:"expires_at"`
	// CreatedAt is the creation time.
	CreatedAt time.Time `json:"created_at"`
	// IsActive can be flipped by the owner.
	IsActive bool `json:"is_active"`
	// ViewCount counts successful content fetches.
	ViewCount int64 `json:"view_count"`
}

// HasPassword reports whether the link is password protected.
func (l *SharedLink) HasPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// Expired reports whether the link has an expiry at or before now.
func (l *SharedLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// Live reports whether the link may be resolved at now.
func (l *SharedLink) Live(now time.Time) bool {
	return l.IsActive && !l.Expired(now)
}

// ShareOptions configures a new share link.
type ShareOptions struct {
	Password      string `json:"password,omitempty"`
	ExpiresInDays int    `json:"expires_in_days,omitempty"`
}

// SharedNote is the payload returned to anonymous viewers.
type SharedNote struct {
	Title     *string   `json:"title"`
	Content   *string   `json:"content"`
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
