package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
)

const noteColumns = `id, user_id, title, content, is_pinned, color, created_at, updated_at, deleted_at`

// PostgresNoteRepository implements note storage against a PostgreSQL database.
// Every query is scoped by the owning user.
type PostgresNoteRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresNoteRepository creates a new PostgresNoteRepository using the provided *sql.DB.
func NewPostgresNoteRepository(db *sql.DB) *PostgresNoteRepository {
	return &PostgresNoteRepository{DB: db}
}

func scanNote(s scanner) (*models.Note, error) {
	var n models.Note
	err := s.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.IsPinned, &n.Color, &n.CreatedAt, &n.UpdatedAt, &n.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNote inserts a new note. ID and timestamps must already be set.
func (r *PostgresNoteRepository) CreateNote(ctx context.Context, note *models.Note) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, title, content, is_pinned, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, note.ID, note.UserID, note.Title, note.Content, note.IsPinned, note.Color, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return dbError("create note", err)
	}
	return nil
}

// GetNote fetches a single note, active or trashed, owned by userID.
func (r *PostgresNoteRepository) GetNote(ctx context.Context, userID, id string) (*models.Note, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	note, err := scanNote(row)
	if err != nil {
		return nil, dbError("get note", err)
	}
	return note, nil
}

// ListNotes returns the active notes (pinned first, most recently updated
// next) or, with filter.Deleted, the trash ordered by deletion time.
func (r *PostgresNoteRepository) ListNotes(ctx context.Context, userID string, filter models.ListFilter) ([]models.Note, error) {
	var sb strings.Builder
	args := []any{userID}
	sb.WriteString(`SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1`)
	if filter.Deleted {
		sb.WriteString(` AND deleted_at IS NOT NULL`)
	} else {
		sb.WriteString(` AND deleted_at IS NULL`)
	}
	if filter.TagID != "" {
		args = append(args, filter.TagID)
		fmt.Fprintf(&sb, ` AND EXISTS (SELECT 1 FROM note_tags nt WHERE nt.note_id = notes.id AND nt.tag_id = $%d)`, len(args))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		fmt.Fprintf(&sb, ` AND (title ILIKE $%d OR content ILIKE $%d)`, len(args), len(args))
	}
	if filter.Deleted {
		sb.WriteString(` ORDER BY deleted_at DESC`)
	} else {
		sb.WriteString(` ORDER BY is_pinned DESC, updated_at DESC`)
	}

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, dbError("list notes", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list notes", err)
	}
	return notes, nil
}

// UpdateNote applies patch to an active note. When the patch touches the
// title or content and the stored content is non-empty, the pre-update
// title/content is appended to the version log first. Both writes share one
// transaction holding the note's row lock, so a failed snapshot aborts the
// update and concurrent updates cannot draw the same version number.
func (r *PostgresNoteRepository) UpdateNote(ctx context.Context, userID, id string, patch models.NotePatch, now time.Time) (*models.Note, *models.NoteVersion, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+noteColumns+` FROM notes
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		FOR UPDATE
	`, id, userID)
	note, err := scanNote(row)
	if err != nil {
		return nil, nil, dbError("lock note", err)
	}

	var version *models.NoteVersion
	if (patch.Title != nil || patch.Content != nil) && note.ContentOrEmpty() != "" {
		version, err = appendVersion(ctx, tx, note, now)
		if err != nil {
			return nil, nil, err
		}
	}

	patch.Apply(note)
	note.UpdatedAt = now
	_, err = tx.ExecContext(ctx, `
		UPDATE notes SET title = $1, content = $2, is_pinned = $3, color = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`, note.Title, note.Content, note.IsPinned, note.Color, note.UpdatedAt, id, userID)
	if err != nil {
		return nil, nil, dbError("update note", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return note, version, nil
}

// SoftDeleteNote moves an active note to the trash.
func (r *PostgresNoteRepository) SoftDeleteNote(ctx context.Context, userID, id string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE notes SET deleted_at = $1 WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL
	`, now, id, userID)
	if err != nil {
		return dbError("soft delete note", err)
	}
	return expectAffected("soft delete note", res)
}

// RestoreNote takes a note out of the trash without touching other fields.
func (r *PostgresNoteRepository) RestoreNote(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE notes SET deleted_at = NULL WHERE id = $1 AND user_id = $2 AND deleted_at IS NOT NULL
	`, id, userID)
	if err != nil {
		return dbError("restore note", err)
	}
	return expectAffected("restore note", res)
}

// DeleteNote removes the row. Media rows, versions, tag associations and
// share links go with it through ON DELETE CASCADE; blobs are the caller's
// responsibility.
func (r *PostgresNoteRepository) DeleteNote(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return dbError("delete note", err)
	}
	return expectAffected("delete note", res)
}

// ListDeletedBefore returns trashed notes of every user deleted before
// cutoff. It backs the retention job and is never exposed to callers.
func (r *PostgresNoteRepository) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]models.Note, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM notes
		WHERE deleted_at IS NOT NULL AND deleted_at < $1
		ORDER BY deleted_at
	`, cutoff)
	if err != nil {
		return nil, dbError("list deleted notes", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list deleted notes", err)
	}
	return notes, nil
}

// noteOwned reports whether userID owns an active or trashed note id.
func noteOwned(ctx context.Context, q querier, userID, id string) error {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM notes WHERE id = $1 AND user_id = $2)`, id, userID,
	).Scan(&exists)
	if err != nil {
		return dbError("check note owner", err)
	}
	if !exists {
		return fmt.Errorf("check note owner: %w", apperr.ErrNotFound)
	}
	return nil
}
