package media

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		kind    models.MediaKind
		want    string
		wantErr bool
	}{
		{kind: models.MediaImage, want: "note-images"},
		{kind: models.MediaAudio, want: "note-audio"},
		{kind: models.MediaVideo, want: "note-videos"},
		{kind: "pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := BucketFor(tt.kind)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectPath_NamespacedByOwner(t *testing.T) {
	p := ObjectPath("user-1", "note-1", "../../etc/my photo.png")
	assert.True(t, strings.HasPrefix(p, "user-1/note-1/"), p)
	assert.True(t, strings.HasSuffix(p, "-my_photo.png"), p)
	assert.NotContains(t, p, "..")

	assert.NotEqual(t, p, ObjectPath("user-1", "note-1", "my photo.png"))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "report_2024.pdf", SafeName("report 2024.pdf"))
	assert.Equal(t, "file", SafeName(".."))
	assert.Equal(t, "x.mp3", SafeName(`C:\music\x.mp3`))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/storage/note-images/u/n/a.png",
		PublicURL("https://cdn.example.com/storage/", "note-images", "/u/n/a.png"))
}

func TestFSStore_UploadOpenRemove(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFSStore(root)
	require.NoError(t, err)

	require.NoError(t, s.Upload(ctx, BucketAudio, "u1/n1/a.mp3", strings.NewReader("beep")))

	f, err := s.Open(ctx, BucketAudio, "u1/n1/a.mp3")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "beep", string(data))

	entries, err := os.ReadDir(filepath.Join(root, BucketAudio, "u1", "n1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")

	require.NoError(t, s.Remove(ctx, BucketAudio, "u1/n1/a.mp3", "u1/n1/missing.mp3"))
	_, err = s.Open(ctx, BucketAudio, "u1/n1/a.mp3")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFSStore_RejectsUnsafePaths(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../escape", "/abs", "a/../../b", "", `a\b`} {
		assert.ErrorIs(t, s.Upload(ctx, BucketImages, p, strings.NewReader("x")), ErrUnsafePath, p)
	}
	_, err = s.Open(ctx, "other-bucket", "a")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFSStore_UploadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root := t.TempDir()
	s, err := NewFSStore(root)
	require.NoError(t, err)

	err = s.Upload(ctx, BucketImages, "u/n/x.png", strings.NewReader("data"))
	require.ErrorIs(t, err, context.Canceled)
	entries, err := os.ReadDir(filepath.Join(root, BucketImages, "u", "n"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
