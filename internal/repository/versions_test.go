package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var versionCols = []string{"id", "note_id", "title", "content", "version_number", "created_at"}

func setupVersions(t *testing.T) (*PostgresVersionRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresVersionRepository(db), mock
}

func TestSnapshot_AppendsNextNumber(t *testing.T) {
	repo, mock := setupVersions(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM notes WHERE id = $1 AND user_id = $2 FOR UPDATE`)).
		WithArgs("n1", "u1").
		WillReturnRows(sqlmock.NewRows(noteCols).AddRow("n1", "u1", "Title", "Body", false, nil, t0, t0, nil))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(version_number), 0) FROM note_versions WHERE note_id = $1`)).
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(0)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO note_versions`)).
		WithArgs(sqlmock.AnyArg(), "n1", "Title", "Body", int64(1), t0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	v, err := repo.Snapshot(context.Background(), "u1", "n1", t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.VersionNumber)
	assert.NotEmpty(t, v.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshot_ForeignNote(t *testing.T) {
	repo, mock := setupVersions(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("n1", "u2").
		WillReturnRows(sqlmock.NewRows(noteCols))
	mock.ExpectRollback()

	_, err := repo.Snapshot(context.Background(), "u2", "n1", t0)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListVersions_NewestFirst(t *testing.T) {
	repo, mock := setupVersions(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE v.note_id = $1 AND n.user_id = $2 ORDER BY v.version_number DESC`)).
		WithArgs("n1", "u1").
		WillReturnRows(sqlmock.NewRows(versionCols).
			AddRow("v2", "n1", "T", "two", int64(2), t0).
			AddRow("v1", "n1", nil, "one", int64(1), t0))

	versions, err := repo.ListVersions(context.Background(), "u1", "n1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, int64(2), versions[0].VersionNumber)
	assert.Nil(t, versions[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVersion_NotFound(t *testing.T) {
	repo, mock := setupVersions(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE v.id = $1 AND v.note_id = $2 AND n.user_id = $3`)).
		WithArgs("v9", "n1", "u1").
		WillReturnRows(sqlmock.NewRows(versionCols))

	_, err := repo.GetVersion(context.Background(), "u1", "n1", "v9")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
