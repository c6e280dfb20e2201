package models

import "time"

// MediaKind identifies which bucket a media item lives in.
type MediaKind string

const (
	// MediaImage is a picture or a drawing export.
	MediaImage MediaKind = "image"
	// MediaAudio is a voice recording.
	MediaAudio MediaKind = "audio"
	// MediaVideo is a video clip.
	MediaVideo MediaKind = "video"
)

// Valid reports whether k is one of the known kinds.
func (k MediaKind) Valid() bool {
	switch k {
	case MediaImage, MediaAudio, MediaVideo:
		return true
	}
	return false
}

// MediaItem is a file attached to a note.
type MediaItem struct {
	ID          string    `json:"id"`
	NoteID      string    `json:"note_id"`
	UserID      string    `json:"user_id"`
	Kind        MediaKind `json:"media_type"`
	StoragePath string    `json:"storage_path"`
	FileName    string    `json:"file_name"`
	CreatedAt   time.Time `json:"created_at"`
	// URL is derived from the bucket and path; it is never stored.
	URL string `json:"url,omitempty"`
}

// NoteWithMedia joins a note with its media for export. The note's fields are
// inlined in JSON.
type NoteWithMedia struct {
	Note
	Media []MediaItem `json:"media"`
}
