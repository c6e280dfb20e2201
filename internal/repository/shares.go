package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
)

const linkColumns = `id, note_id, token, password_hash, expires_at, created_at, is_active, view_count`

// PostgresShareRepository manages share links. Owner-facing methods are
// scoped through the owning note; the token lookup and the shared note fetch
// serve anonymous viewers.
type PostgresShareRepository struct {
	DB *sql.DB
}

// NewPostgresShareRepository creates a new PostgresShareRepository.
func NewPostgresShareRepository(db *sql.DB) *PostgresShareRepository {
	return &PostgresShareRepository{DB: db}
}

func scanLink(s scanner) (*models.SharedLink, error) {
	var l models.SharedLink
	err := s.Scan(&l.ID, &l.NoteID, &l.Token, &l.PasswordHash, &l.ExpiresAt, &l.CreatedAt, &l.IsActive, &l.ViewCount)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLink inserts a link for a note owned by userID.
func (r *PostgresShareRepository) CreateLink(ctx context.Context, userID string, link *models.SharedLink) error {
	if err := noteOwned(ctx, r.DB, userID, link.NoteID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO shared_links (`+linkColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, link.ID, link.NoteID, link.Token, link.PasswordHash, link.ExpiresAt, link.CreatedAt, link.IsActive, link.ViewCount)
	if isUniqueViolation(err) {
		return fmt.Errorf("create link: %w", apperr.ErrConflict)
	}
	if err != nil {
		return dbError("create link", err)
	}
	return nil
}

// ListLinks returns a note's links, newest first.
func (r *PostgresShareRepository) ListLinks(ctx context.Context, userID, noteID string) ([]models.SharedLink, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT l.id, l.note_id, l.token, l.password_hash, l.expires_at, l.created_at, l.is_active, l.view_count
		FROM shared_links l
		JOIN notes n ON n.id = l.note_id
		WHERE l.note_id = $1 AND n.user_id = $2
		ORDER BY l.created_at DESC
	`, noteID, userID)
	if err != nil {
		return nil, dbError("list links", err)
	}
	defer rows.Close()

	var links []models.SharedLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		links = append(links, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list links", err)
	}
	return links, nil
}

// ToggleLink flips is_active and returns the updated link.
func (r *PostgresShareRepository) ToggleLink(ctx context.Context, userID, linkID string) (*models.SharedLink, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE shared_links l SET is_active = NOT l.is_active
		FROM notes n
		WHERE l.note_id = n.id AND l.id = $1 AND n.user_id = $2
		RETURNING l.id, l.note_id, l.token, l.password_hash, l.expires_at, l.created_at, l.is_active, l.view_count
	`, linkID, userID)
	l, err := scanLink(row)
	if err != nil {
		return nil, dbError("toggle link", err)
	}
	return l, nil
}

// DeleteLink hard-deletes a link.
func (r *PostgresShareRepository) DeleteLink(ctx context.Context, userID, linkID string) error {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM shared_links l
		USING notes n
		WHERE l.note_id = n.id AND l.id = $1 AND n.user_id = $2
	`, linkID, userID)
	if err != nil {
		return dbError("delete link", err)
	}
	return expectAffected("delete link", res)
}

// GetActiveLinkByToken is the anonymous lookup: inactive or unknown tokens
// are both reported as apperr.ErrNotFound. Expiry is left to the caller.
func (r *PostgresShareRepository) GetActiveLinkByToken(ctx context.Context, token string) (*models.SharedLink, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM shared_links WHERE token = $1 AND is_active = true`, token)
	l, err := scanLink(row)
	if err != nil {
		return nil, dbError("get link by token", err)
	}
	return l, nil
}

// FetchSharedNote is the privileged read path. It ignores note ownership,
// re-validates the link, loads the note only while it is not trashed and
// counts the view, all in one transaction.
func (r *PostgresShareRepository) FetchSharedNote(ctx context.Context, noteID, linkID string, now time.Time) (*models.SharedNote, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		active    bool
		expiresAt *time.Time
	)
	err = tx.QueryRowContext(ctx, `
		SELECT is_active, expires_at FROM shared_links WHERE id = $1 AND note_id = $2
	`, linkID, noteID).Scan(&active, &expiresAt)
	if err != nil {
		return nil, dbError("load link", err)
	}
	if !active {
		return nil, fmt.Errorf("load link: %w", apperr.ErrNotFound)
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, fmt.Errorf("load link: %w", apperr.ErrExpired)
	}

	var note models.SharedNote
	err = tx.QueryRowContext(ctx, `
		SELECT title, content, color, created_at, updated_at FROM notes
		WHERE id = $1 AND deleted_at IS NULL
	`, noteID).Scan(&note.Title, &note.Content, &note.Color, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, dbError("load shared note", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE shared_links SET view_count = view_count + 1 WHERE id = $1`, linkID); err != nil {
		return nil, dbError("count view", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &note, nil
}
