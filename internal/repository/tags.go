package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
)

// PostgresTagRepository implements the per-user tag registry.
type PostgresTagRepository struct {
	DB *sql.DB
}

// NewPostgresTagRepository creates a new PostgresTagRepository.
func NewPostgresTagRepository(db *sql.DB) *PostgresTagRepository {
	return &PostgresTagRepository{DB: db}
}

func scanTags(rows *sql.Rows) ([]models.Tag, error) {
	defer rows.Close()
	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListTags returns the user's tags ordered by name.
func (r *PostgresTagRepository) ListTags(ctx context.Context, userID string) ([]models.Tag, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, name, color, created_at FROM tags WHERE user_id = $1 ORDER BY name
	`, userID)
	if err != nil {
		return nil, dbError("list tags", err)
	}
	return scanTags(rows)
}

// CreateTag inserts a tag. A duplicate name for the same user yields
// apperr.ErrConflict.
func (r *PostgresTagRepository) CreateTag(ctx context.Context, tag *models.Tag) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tags (id, user_id, name, color, created_at) VALUES ($1, $2, $3, $4, $5)
	`, tag.ID, tag.UserID, tag.Name, tag.Color, tag.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("create tag %q: %w", tag.Name, apperr.ErrConflict)
	}
	if err != nil {
		return dbError("create tag", err)
	}
	return nil
}

// DeleteTag removes a tag and, by cascade, its note associations.
func (r *PostgresTagRepository) DeleteTag(ctx context.Context, userID, tagID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tags WHERE id = $1 AND user_id = $2`, tagID, userID)
	if err != nil {
		return dbError("delete tag", err)
	}
	return expectAffected("delete tag", res)
}

// AttachTag associates a tag with a note. Attaching twice is a no-op.
func (r *PostgresTagRepository) AttachTag(ctx context.Context, userID, noteID, tagID string) error {
	var ok bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM notes WHERE id = $1 AND user_id = $3)
		   AND EXISTS(SELECT 1 FROM tags WHERE id = $2 AND user_id = $3)
	`, noteID, tagID, userID).Scan(&ok)
	if err != nil {
		return dbError("check tag owner", err)
	}
	if !ok {
		return fmt.Errorf("attach tag: %w", apperr.ErrNotFound)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO note_tags (note_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
	`, noteID, tagID)
	if err != nil {
		return dbError("attach tag", err)
	}
	return nil
}

// DetachTag removes the association if present.
func (r *PostgresTagRepository) DetachTag(ctx context.Context, userID, noteID, tagID string) error {
	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM note_tags nt
		USING notes n
		WHERE nt.note_id = n.id AND nt.note_id = $1 AND nt.tag_id = $2 AND n.user_id = $3
	`, noteID, tagID, userID)
	if err != nil {
		return dbError("detach tag", err)
	}
	return nil
}

// ListNoteTags returns the tags attached to a note, ordered by name.
func (r *PostgresTagRepository) ListNoteTags(ctx context.Context, userID, noteID string) ([]models.Tag, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.name, t.color, t.created_at
		FROM tags t
		JOIN note_tags nt ON nt.tag_id = t.id
		WHERE nt.note_id = $1 AND t.user_id = $2
		ORDER BY t.name
	`, noteID, userID)
	if err != nil {
		return nil, dbError("list note tags", err)
	}
	return scanTags(rows)
}
