package service

import (
	"context"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/models"
)

// VersionRepository defines the persistence operations needed by VersionService.
type VersionRepository interface {
	// Snapshot appends the note's current title/content as version max+1.
	Snapshot(ctx context.Context, userID, noteID string, now time.Time) (*models.NoteVersion, error)
	// ListVersions returns the note's versions, newest first.
	ListVersions(ctx context.Context, userID, noteID string) ([]models.NoteVersion, error)
	// GetVersion returns one version of a note owned by userID.
	GetVersion(ctx context.Context, userID, noteID, versionID string) (*models.NoteVersion, error)
}

// VersionService exposes a note's history.
type VersionService struct {
	repo  VersionRepository
	notes NoteRepository
	clock clock.Clock
}

// NewVersionService constructs a VersionService.
func NewVersionService(repo VersionRepository, notes NoteRepository, clk clock.Clock) *VersionService {
	return &VersionService{repo: repo, notes: notes, clock: clk}
}

// Snapshot records the note's current state explicitly.
func (s *VersionService) Snapshot(ctx context.Context, userID, noteID string) (*models.NoteVersion, error) {
	return s.repo.Snapshot(ctx, userID, noteID, s.clock.Now())
}

func (s *VersionService) List(ctx context.Context, userID, noteID string) ([]models.NoteVersion, error) {
	return s.repo.ListVersions(ctx, userID, noteID)
}

// RestoreVersion writes a version's title and content back through the
// regular update path, so the state being replaced becomes a version itself.
func (s *VersionService) RestoreVersion(ctx context.Context, userID, noteID, versionID string) (*models.Note, error) {
	v, err := s.repo.GetVersion(ctx, userID, noteID, versionID)
	if err != nil {
		return nil, err
	}
	title, content := "", ""
	if v.Title != nil {
		title = *v.Title
	}
	if v.Content != nil {
		content = *v.Content
	}
	note, _, err := s.notes.UpdateNote(ctx, userID, noteID, models.NotePatch{Title: &title, Content: &content}, s.clock.Now())
	return note, err
}
