// Package media maps media kinds to storage buckets, builds owner-namespaced
// object paths and public URLs, and stores blobs.
package media

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/google/uuid"
)

const (
	BucketImages = "note-images"
	BucketAudio  = "note-audio"
	BucketVideos = "note-videos"
)

// Buckets lists every bucket the service serves.
var Buckets = []string{BucketImages, BucketAudio, BucketVideos}

// BucketFor returns the bucket holding blobs of kind.
func BucketFor(kind models.MediaKind) (string, error) {
	switch kind {
	case models.MediaImage:
		return BucketImages, nil
	case models.MediaAudio:
		return BucketAudio, nil
	case models.MediaVideo:
		return BucketVideos, nil
	}
	return "", fmt.Errorf("media kind %q: %w", kind, apperr.ErrInvalidInput)
}

// KnownBucket reports whether name is one of Buckets.
func KnownBucket(name string) bool {
	for _, b := range Buckets {
		if b == name {
			return true
		}
	}
	return false
}

// ObjectPath returns "<userID>/<noteID>/<uuid>-<safe name>".
func ObjectPath(userID, noteID, fileName string) string {
	return path.Join(userID, noteID, uuid.NewString()+"-"+SafeName(fileName))
}

// SafeName reduces a client file name to its base name with anything outside
// letters, digits, '.', '-' and '_' replaced by '_'.
func SafeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := strings.Trim(sb.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

// PublicURL joins base, bucket and path. It performs no I/O.
func PublicURL(base, bucket, objectPath string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.TrimLeft(objectPath, "/")
}
