package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/media"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaRepository defines the persistence operations needed by MediaService.
type MediaRepository interface {
	CreateMedia(ctx context.Context, item *models.MediaItem) error
	ListMedia(ctx context.Context, userID, noteID string) ([]models.MediaItem, error)
	ListUserMedia(ctx context.Context, userID string) ([]models.MediaItem, error)
	GetMedia(ctx context.Context, userID, id string) (*models.MediaItem, error)
	DeleteMedia(ctx context.Context, userID, id string) error
}

// MediaService uploads blobs and records them against notes.
type MediaService struct {
	repo    MediaRepository
	notes   NoteRepository
	store   media.Store
	clock   clock.Clock
	log     *zap.Logger
	baseURL string
}

// NewMediaService constructs a MediaService. baseURL is the public prefix
// under which buckets are served.
func NewMediaService(repo MediaRepository, notes NoteRepository, store media.Store, clk clock.Clock, log *zap.Logger, baseURL string) *MediaService {
	return &MediaService{repo: repo, notes: notes, store: store, clock: clk, log: log, baseURL: baseURL}
}

// URL returns the public URL of an item's blob.
func (s *MediaService) URL(item models.MediaItem) string {
	bucket, err := media.BucketFor(item.Kind)
	if err != nil {
		return ""
	}
	return media.PublicURL(s.baseURL, bucket, item.StoragePath)
}

func (s *MediaService) withURLs(items []models.MediaItem) []models.MediaItem {
	for i := range items {
		items[i].URL = s.URL(items[i])
	}
	return items
}

// Upload checks that userID owns the active note, stores the blob and then
// records it. When the record cannot be written the blob stays behind; its
// location is logged for cleanup.
func (s *MediaService) Upload(ctx context.Context, userID, noteID string, kind models.MediaKind, fileName string, r io.Reader) (*models.MediaItem, error) {
	bucket, err := media.BucketFor(kind)
	if err != nil {
		return nil, err
	}
	note, err := s.notes.GetNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if err := ensureActive(note); err != nil {
		return nil, err
	}
	item := &models.MediaItem{
		ID:          uuid.NewString(),
		NoteID:      noteID,
		UserID:      userID,
		Kind:        kind,
		StoragePath: media.ObjectPath(userID, noteID, fileName),
		FileName:    media.SafeName(fileName),
		CreatedAt:   s.clock.Now(),
	}

	if err := s.store.Upload(ctx, bucket, item.StoragePath, r); err != nil {
		if errors.Is(err, media.ErrUnsafePath) {
			return nil, fmt.Errorf("upload: %w", apperr.ErrInvalidInput)
		}
		return nil, fmt.Errorf("upload %s: %w: %w", item.FileName, apperr.ErrStorage, err)
	}

	if err := s.repo.CreateMedia(ctx, item); err != nil {
		s.log.Warn("orphaned media blob",
			zap.String("bucket", bucket),
			zap.String("path", item.StoragePath),
			zap.String("note_id", noteID),
			zap.Error(err))
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("record media: %w: %w", apperr.ErrStorage, err)
	}

	item.URL = s.URL(*item)
	return item, nil
}

// List returns a note's media with public URLs.
func (s *MediaService) List(ctx context.Context, userID, noteID string) ([]models.MediaItem, error) {
	items, err := s.repo.ListMedia(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	return s.withURLs(items), nil
}

// ListForUser returns all of a user's media with public URLs.
func (s *MediaService) ListForUser(ctx context.Context, userID string) ([]models.MediaItem, error) {
	items, err := s.repo.ListUserMedia(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withURLs(items), nil
}

// Remove deletes the blob, then the record. If the blob cannot be removed
// the record is kept so the removal can be retried.
func (s *MediaService) Remove(ctx context.Context, userID, mediaID string) error {
	item, err := s.repo.GetMedia(ctx, userID, mediaID)
	if err != nil {
		return err
	}
	bucket, err := media.BucketFor(item.Kind)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, bucket, item.StoragePath); err != nil {
		return fmt.Errorf("remove %s: %w: %w", item.FileName, apperr.ErrStorage, err)
	}
	return s.repo.DeleteMedia(ctx, userID, mediaID)
}

// Open returns a stored blob for public download.
func (s *MediaService) Open(ctx context.Context, bucket, objectPath string) (*os.File, error) {
	f, err := s.store.Open(ctx, bucket, objectPath)
	if errors.Is(err, media.ErrUnsafePath) {
		return nil, fmt.Errorf("open: %w", apperr.ErrNotFound)
	}
	return f, err
}
