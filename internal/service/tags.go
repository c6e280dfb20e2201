package service

import (
	"context"
	"fmt"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/google/uuid"
)

// TagRepository defines the persistence operations needed by TagService.
type TagRepository interface {
	ListTags(ctx context.Context, userID string) ([]models.Tag, error)
	// CreateTag fails with apperr.ErrConflict on a duplicate name.
	CreateTag(ctx context.Context, tag *models.Tag) error
	DeleteTag(ctx context.Context, userID, tagID string) error
	// AttachTag is idempotent.
	AttachTag(ctx context.Context, userID, noteID, tagID string) error
	DetachTag(ctx context.Context, userID, noteID, tagID string) error
	ListNoteTags(ctx context.Context, userID, noteID string) ([]models.Tag, error)
}

// TagService manages a user's tags and their note associations.
type TagService struct {
	repo  TagRepository
	clock clock.Clock
}

// NewTagService constructs a TagService.
func NewTagService(repo TagRepository, clk clock.Clock) *TagService {
	return &TagService{repo: repo, clock: clk}
}

func (s *TagService) ListForOwner(ctx context.Context, userID string) ([]models.Tag, error) {
	return s.repo.ListTags(ctx, userID)
}

// Create adds a tag. The name is trimmed and must not be empty.
func (s *TagService) Create(ctx context.Context, userID, name string, color *string) (*models.Tag, error) {
	name = models.NormalizeTagName(name)
	if name == "" {
		return nil, fmt.Errorf("tag name is empty: %w", apperr.ErrInvalidInput)
	}
	tag := &models.Tag{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) Attach(ctx context.Context, userID, noteID, tagID string) error {
	return s.repo.AttachTag(ctx, userID, noteID, tagID)
}

func (s *TagService) Detach(ctx context.Context, userID, noteID, tagID string) error {
	return s.repo.DetachTag(ctx, userID, noteID, tagID)
}

func (s *TagService) ListForNote(ctx context.Context, userID, noteID string) ([]models.Tag, error) {
	return s.repo.ListNoteTags(ctx, userID, noteID)
}

func (s *TagService) Delete(ctx context.Context, userID, tagID string) error {
	return s.repo.DeleteTag(ctx, userID, tagID)
}
