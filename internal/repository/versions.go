package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/google/uuid"
)

// PostgresVersionRepository reads and appends note snapshots.
type PostgresVersionRepository struct {
	DB *sql.DB
}

// NewPostgresVersionRepository creates a new PostgresVersionRepository.
func NewPostgresVersionRepository(db *sql.DB) *PostgresVersionRepository {
	return &PostgresVersionRepository{DB: db}
}

// appendVersion records note's current title/content as version max+1.
// q must hold the note's row lock.
func appendVersion(ctx context.Context, q querier, note *models.Note, now time.Time) (*models.NoteVersion, error) {
	var latest int64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version_number), 0) FROM note_versions WHERE note_id = $1`, note.ID,
	).Scan(&latest)
	if err != nil {
		return nil, dbError("read latest version", err)
	}

	v := &models.NoteVersion{
		ID:            uuid.NewString(),
		NoteID:        note.ID,
		Title:         note.Title,
		Content:       note.Content,
		VersionNumber: latest + 1,
		CreatedAt:     now,
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO note_versions (id, note_id, title, content, version_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, v.NoteID, v.Title, v.Content, v.VersionNumber, v.CreatedAt)
	if err != nil {
		return nil, dbError("insert version", err)
	}
	return v, nil
}

// Snapshot appends the note's current title/content to its version log.
func (r *PostgresVersionRepository) Snapshot(ctx context.Context, userID, noteID string, now time.Time) (*models.NoteVersion, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2 FOR UPDATE`, noteID, userID)
	note, err := scanNote(row)
	if err != nil {
		return nil, dbError("lock note", err)
	}

	v, err := appendVersion(ctx, tx, note, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return v, nil
}

// ListVersions returns the note's snapshots, newest first.
func (r *PostgresVersionRepository) ListVersions(ctx context.Context, userID, noteID string) ([]models.NoteVersion, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT v.id, v.note_id, v.title, v.content, v.version_number, v.created_at
		FROM note_versions v
		JOIN notes n ON n.id = v.note_id
		WHERE v.note_id = $1 AND n.user_id = $2
		ORDER BY v.version_number DESC
	`, noteID, userID)
	if err != nil {
		return nil, dbError("list versions", err)
	}
	defer rows.Close()

	var versions []models.NoteVersion
	for rows.Next() {
		var v models.NoteVersion
		if err := rows.Scan(&v.ID, &v.NoteID, &v.Title, &v.Content, &v.VersionNumber, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list versions", err)
	}
	return versions, nil
}

// GetVersion fetches one snapshot of a note owned by userID.
func (r *PostgresVersionRepository) GetVersion(ctx context.Context, userID, noteID, versionID string) (*models.NoteVersion, error) {
	var v models.NoteVersion
	err := r.DB.QueryRowContext(ctx, `
		SELECT v.id, v.note_id, v.title, v.content, v.version_number, v.created_at
		FROM note_versions v
		JOIN notes n ON n.id = v.note_id
		WHERE v.id = $1 AND v.note_id = $2 AND n.user_id = $3
	`, versionID, noteID, userID).Scan(&v.ID, &v.NoteID, &v.Title, &v.Content, &v.VersionNumber, &v.CreatedAt)
	if err != nil {
		return nil, dbError("get version", err)
	}
	return &v, nil
}
