package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mediaCols = []string{"id", "note_id", "user_id", "media_type", "storage_path", "file_name", "created_at"}

func setupMedia(t *testing.T) (*PostgresMediaRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresMediaRepository(db), mock
}

func TestCreateMedia_ChecksOwner(t *testing.T) {
	repo, mock := setupMedia(t)

	item := &models.MediaItem{ID: "m1", NoteID: "n1", UserID: "u1", Kind: models.MediaImage, StoragePath: "u1/n1/x-a.png", FileName: "a.png", CreatedAt: t0}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM notes WHERE id = $1 AND user_id = $2)`)).
		WithArgs("n1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO media_items (id, note_id, user_id, media_type, storage_path, file_name, created_at)`)).
		WithArgs("m1", "n1", "u1", "image", "u1/n1/x-a.png", "a.png", t0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.CreateMedia(context.Background(), item))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMedia_ForeignNote(t *testing.T) {
	repo, mock := setupMedia(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("n1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.CreateMedia(context.Background(), &models.MediaItem{ID: "m1", NoteID: "n1", UserID: "u2"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMedia(t *testing.T) {
	repo, mock := setupMedia(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM media_items WHERE note_id = $1 AND user_id = $2 ORDER BY created_at`)).
		WithArgs("n1", "u1").
		WillReturnRows(sqlmock.NewRows(mediaCols).
			AddRow("m1", "n1", "u1", "image", "p1", "a.png", t0).
			AddRow("m2", "n1", "u1", "audio", "p2", "b.mp3", t0))

	items, err := repo.ListMedia(context.Background(), "u1", "n1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.MediaAudio, items[1].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAndDeleteMedia(t *testing.T) {
	repo, mock := setupMedia(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM media_items WHERE id = $1 AND user_id = $2`)).
		WithArgs("m1", "u1").
		WillReturnRows(sqlmock.NewRows(mediaCols).AddRow("m1", "n1", "u1", "video", "p", "c.mp4", t0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM media_items WHERE id = $1 AND user_id = $2`)).
		WithArgs("m1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	m, err := repo.GetMedia(context.Background(), "u1", "m1")
	require.NoError(t, err)
	assert.Equal(t, models.MediaVideo, m.Kind)
	require.NoError(t, repo.DeleteMedia(context.Background(), "u1", "m1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
