package repository

import (
	"context"
	"testing"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNote(t *testing.T, s *MemoryStore, id, userID, content string, at time.Time) {
	t.Helper()
	n := &models.Note{ID: id, UserID: userID, Title: strPtr(id), CreatedAt: at, UpdatedAt: at}
	if content != "" {
		n.Content = strPtr(content)
	}
	require.NoError(t, s.CreateNote(context.Background(), n))
}

func TestMemoryStore_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedNote(t, s, "n1", "u1", "secret", t0)

	_, err := s.GetNote(ctx, "u2", "n1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, _, err = s.UpdateNote(ctx, "u2", "n1", models.NotePatch{Title: strPtr("x")}, t0)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, s.SoftDeleteNote(ctx, "u2", "n1", t0), apperr.ErrNotFound)
	assert.ErrorIs(t, s.DeleteNote(ctx, "u2", "n1"), apperr.ErrNotFound)

	notes, err := s.ListNotes(ctx, "u2", models.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestMemoryStore_ListOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedNote(t, s, "old", "u1", "a", t0)
	seedNote(t, s, "new", "u1", "b", t0.Add(time.Hour))
	seedNote(t, s, "pinned", "u1", "c", t0.Add(-time.Hour))
	pin := true
	_, _, err := s.UpdateNote(ctx, "u1", "pinned", models.NotePatch{Pinned: &pin}, t0.Add(-time.Hour))
	require.NoError(t, err)

	notes, err := s.ListNotes(ctx, "u1", models.ListFilter{})
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, []string{"pinned", "new", "old"}, []string{notes[0].ID, notes[1].ID, notes[2].ID})

	require.NoError(t, s.SoftDeleteNote(ctx, "u1", "old", t0.Add(2*time.Hour)))
	require.NoError(t, s.SoftDeleteNote(ctx, "u1", "new", t0.Add(3*time.Hour)))
	trash, err := s.ListNotes(ctx, "u1", models.ListFilter{Deleted: true})
	require.NoError(t, err)
	require.Len(t, trash, 2)
	assert.Equal(t, "new", trash[0].ID)
}

func TestMemoryStore_SearchAndTagFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedNote(t, s, "n1", "u1", "Buy MILK", t0)
	seedNote(t, s, "n2", "u1", "call mom", t0)
	require.NoError(t, s.CreateTag(ctx, &models.Tag{ID: "t1", UserID: "u1", Name: "errands"}))
	require.NoError(t, s.AttachTag(ctx, "u1", "n2", "t1"))
	require.NoError(t, s.AttachTag(ctx, "u1", "n2", "t1"))

	byQuery, err := s.ListNotes(ctx, "u1", models.ListFilter{Query: "milk"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "n1", byQuery[0].ID)

	byTag, err := s.ListNotes(ctx, "u1", models.ListFilter{TagID: "t1"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "n2", byTag[0].ID)

	tags, err := s.ListNoteTags(ctx, "u1", "n2")
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestMemoryStore_TagConflictAndForeignAttach(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedNote(t, s, "n1", "u1", "", t0)
	require.NoError(t, s.CreateTag(ctx, &models.Tag{ID: "t1", UserID: "u1", Name: "work"}))
	require.NoError(t, s.CreateTag(ctx, &models.Tag{ID: "t2", UserID: "u2", Name: "work"}))

	err := s.CreateTag(ctx, &models.Tag{ID: "t3", UserID: "u1", Name: "work"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.ErrorIs(t, s.AttachTag(ctx, "u1", "n1", "t2"), apperr.ErrNotFound)
}

func TestMemoryStore_UpdateSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedNote(t, s, "n1", "u1", "", t0)

	_, v, err := s.UpdateNote(ctx, "u1", "n1", models.NotePatch{Content: strPtr("one")}, t0)
	require.NoError(t, err)
	assert.Nil(t, v)

	for i, body := range []string{"two", "three"} {
		_, v, err = s.UpdateNote(ctx, "u1", "n1", models.NotePatch{Content: strPtr(body)}, t0)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, int64(i+1), v.VersionNumber)
	}

	versions, err := s.ListVersions(ctx, "u1", "n1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "two", *versions[0].Content)
	assert.Equal(t, "one", *versions[1].Content)
}

func TestMemoryStore_MetadataUpdateDoesNotSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedNote(t, s, "n1", "u1", "body", t0)

	pin, color := true, "#ffeeaa"
	_, v, err := s.UpdateNote(ctx, "u1", "n1", models.NotePatch{Pinned: &pin, Color: &color}, t0)
	require.NoError(t, err)
	assert.Nil(t, v)

	versions, err := s.ListVersions(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestMemoryStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedNote(t, s, "n1", "u1", "body", t0)
	require.NoError(t, s.CreateTag(ctx, &models.Tag{ID: "t1", UserID: "u1", Name: "x"}))
	require.NoError(t, s.AttachTag(ctx, "u1", "n1", "t1"))
	require.NoError(t, s.CreateMedia(ctx, &models.MediaItem{ID: "m1", NoteID: "n1", UserID: "u1", Kind: models.MediaImage}))
	require.NoError(t, s.CreateLink(ctx, "u1", &models.SharedLink{ID: "l1", NoteID: "n1", Token: "tok", IsActive: true}))
	_, err := s.Snapshot(ctx, "u1", "n1", t0)
	require.NoError(t, err)

	require.NoError(t, s.DeleteNote(ctx, "u1", "n1"))

	media, _ := s.ListUserMedia(ctx, "u1")
	assert.Empty(t, media)
	_, err = s.GetActiveLinkByToken(ctx, "tok")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	versions, _ := s.ListVersions(ctx, "u1", "n1")
	assert.Empty(t, versions)
	tags, _ := s.ListTags(ctx, "u1")
	assert.Len(t, tags, 1)
}

func TestMemoryStore_FetchSharedNote(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedNote(t, s, "n1", "u1", "body", t0)
	exp := t0.Add(time.Hour)
	require.NoError(t, s.CreateLink(ctx, "u1", &models.SharedLink{ID: "l1", NoteID: "n1", Token: "tok", IsActive: true, ExpiresAt: &exp}))

	_, err := s.FetchSharedNote(ctx, "n1", "l1", t0)
	require.NoError(t, err)
	_, err = s.FetchSharedNote(ctx, "n1", "l1", t0)
	require.NoError(t, err)
	links, err := s.ListLinks(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), links[0].ViewCount)

	_, err = s.FetchSharedNote(ctx, "n1", "l1", exp)
	assert.ErrorIs(t, err, apperr.ErrExpired)

	require.NoError(t, s.SoftDeleteNote(ctx, "u1", "n1", t0))
	_, err = s.FetchSharedNote(ctx, "n1", "l1", t0)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.ToggleLink(ctx, "u1", "l1")
	require.NoError(t, err)
	_, err = s.GetActiveLinkByToken(ctx, "tok")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
