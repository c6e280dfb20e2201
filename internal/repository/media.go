package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/NoteKeeper/internal/models"
)

const mediaColumns = `id, note_id, user_id, media_type, storage_path, file_name, created_at`

// PostgresMediaRepository stores media metadata rows. Blobs live in the
// object store.
type PostgresMediaRepository struct {
	DB *sql.DB
}

// NewPostgresMediaRepository creates a new PostgresMediaRepository.
func NewPostgresMediaRepository(db *sql.DB) *PostgresMediaRepository {
	return &PostgresMediaRepository{DB: db}
}

func scanMedia(s scanner) (*models.MediaItem, error) {
	var m models.MediaItem
	if err := s.Scan(&m.ID, &m.NoteID, &m.UserID, &m.Kind, &m.StoragePath, &m.FileName, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMedia records an uploaded blob against a note owned by item.UserID.
func (r *PostgresMediaRepository) CreateMedia(ctx context.Context, item *models.MediaItem) error {
	if err := noteOwned(ctx, r.DB, item.UserID, item.NoteID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO media_items (`+mediaColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.NoteID, item.UserID, item.Kind, item.StoragePath, item.FileName, item.CreatedAt)
	if err != nil {
		return dbError("create media", err)
	}
	return nil
}

func (r *PostgresMediaRepository) list(ctx context.Context, query string, args ...any) ([]models.MediaItem, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("list media", err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list media", err)
	}
	return items, nil
}

// ListMedia returns the media attached to one note, oldest first.
func (r *PostgresMediaRepository) ListMedia(ctx context.Context, userID, noteID string) ([]models.MediaItem, error) {
	return r.list(ctx, `
		SELECT `+mediaColumns+` FROM media_items WHERE note_id = $1 AND user_id = $2 ORDER BY created_at
	`, noteID, userID)
}

// ListUserMedia returns every media item the user owns, for export.
func (r *PostgresMediaRepository) ListUserMedia(ctx context.Context, userID string) ([]models.MediaItem, error) {
	return r.list(ctx, `
		SELECT `+mediaColumns+` FROM media_items WHERE user_id = $1 ORDER BY created_at
	`, userID)
}

// GetMedia fetches one media item owned by userID.
func (r *PostgresMediaRepository) GetMedia(ctx context.Context, userID, id string) (*models.MediaItem, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE id = $1 AND user_id = $2`, id, userID)
	m, err := scanMedia(row)
	if err != nil {
		return nil, dbError("get media", err)
	}
	return m, nil
}

// DeleteMedia removes a media row.
func (r *PostgresMediaRepository) DeleteMedia(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM media_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return dbError("delete media", err)
	}
	return expectAffected("delete media", res)
}
