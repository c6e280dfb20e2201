// Package service provides the note-keeping business logic: notes and their
// trash, version history, tags, media, share links, the privileged shared-note
// read path and export. Persistence is delegated to repository interfaces;
// every call carries the caller's user id explicitly.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/media"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoteRepository defines the persistence operations needed by NoteService.
type NoteRepository interface {
	// CreateNote inserts a fully populated note.
	CreateNote(ctx context.Context, note *models.Note) error
	// GetNote returns an active or trashed note owned by userID.
	GetNote(ctx context.Context, userID, id string) (*models.Note, error)
	// ListNotes returns the active list or the trash.
	ListNotes(ctx context.Context, userID string, filter models.ListFilter) ([]models.Note, error)
	// UpdateNote applies patch and, when it touches title or content of a
	// note with non-empty content, snapshots the prior state atomically.
	UpdateNote(ctx context.Context, userID, id string, patch models.NotePatch, now time.Time) (*models.Note, *models.NoteVersion, error)
	// SoftDeleteNote moves an active note to the trash.
	SoftDeleteNote(ctx context.Context, userID, id string, now time.Time) error
	// RestoreNote takes a note out of the trash.
	RestoreNote(ctx context.Context, userID, id string) error
	// DeleteNote removes the note row and its dependent rows.
	DeleteNote(ctx context.Context, userID, id string) error
	// ListDeletedBefore returns every user's notes trashed before cutoff.
	ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]models.Note, error)
}

// NoteService implements the note lifecycle: create, update with history,
// soft delete, restore and permanent deletion including media blobs.
type NoteService struct {
	repo  NoteRepository
	media MediaRepository
	store media.Store
	clock clock.Clock
	log   *zap.Logger
}

// NewNoteService constructs a NoteService.
func NewNoteService(repo NoteRepository, mediaRepo MediaRepository, store media.Store, clk clock.Clock, log *zap.Logger) *NoteService {
	return &NoteService{repo: repo, media: mediaRepo, store: store, clock: clk, log: log}
}

// Create stores a new note owned by userID.
func (s *NoteService) Create(ctx context.Context, userID string, in models.NoteInput) (*models.Note, error) {
	now := s.clock.Now()
	note := &models.Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     in.Title,
		Content:   in.Content,
		IsPinned:  in.Pinned,
		Color:     in.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Get(ctx context.Context, userID, id string) (*models.Note, error) {
	return s.repo.GetNote(ctx, userID, id)
}

func (s *NoteService) List(ctx context.Context, userID string, filter models.ListFilter) ([]models.Note, error) {
	return s.repo.ListNotes(ctx, userID, filter)
}

// Update applies patch to an active note. An empty patch returns the note
// unchanged.
func (s *NoteService) Update(ctx context.Context, userID, id string, patch models.NotePatch) (*models.Note, error) {
	if patch.Empty() {
		return s.repo.GetNote(ctx, userID, id)
	}
	note, version, err := s.repo.UpdateNote(ctx, userID, id, patch, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if version != nil {
		s.log.Debug("note snapshotted", zap.String("note_id", id), zap.Int64("version", version.VersionNumber))
	}
	return note, nil
}

func (s *NoteService) SoftDelete(ctx context.Context, userID, id string) error {
	return s.repo.SoftDeleteNote(ctx, userID, id, s.clock.Now())
}

func (s *NoteService) Restore(ctx context.Context, userID, id string) error {
	return s.repo.RestoreNote(ctx, userID, id)
}

// PermanentlyDelete removes the note's media blobs, then the note row with
// everything cascading from it. Blob removal is best effort: failures are
// logged and do not keep the row.
func (s *NoteService) PermanentlyDelete(ctx context.Context, userID, id string) error {
	if _, err := s.repo.GetNote(ctx, userID, id); err != nil {
		return err
	}
	s.removeBlobs(ctx, userID, id)
	return s.repo.DeleteNote(ctx, userID, id)
}

func (s *NoteService) removeBlobs(ctx context.Context, userID, noteID string) {
	items, err := s.media.ListMedia(ctx, userID, noteID)
	if err != nil {
		s.log.Warn("failed to list media before delete", zap.String("note_id", noteID), zap.Error(err))
		return
	}
	byBucket := make(map[string][]string)
	for _, m := range items {
		bucket, err := media.BucketFor(m.Kind)
		if err != nil {
			continue
		}
		byBucket[bucket] = append(byBucket[bucket], m.StoragePath)
	}
	for bucket, paths := range byBucket {
		if err := s.store.Remove(ctx, bucket, paths...); err != nil {
			s.log.Warn("failed to remove media blobs",
				zap.String("note_id", noteID),
				zap.String("bucket", bucket),
				zap.Strings("paths", paths),
				zap.Error(err))
		}
	}
}

// EmptyTrash permanently deletes every trashed note of userID and reports
// the outcome per note.
func (s *NoteService) EmptyTrash(ctx context.Context, userID string) ([]models.BatchResult, error) {
	trash, err := s.repo.ListNotes(ctx, userID, models.ListFilter{Deleted: true})
	if err != nil {
		return nil, err
	}
	return s.deleteAll(ctx, trash), nil
}

// PurgeDeletedBefore permanently deletes notes of every user trashed before
// cutoff. It backs the retention cleaner.
func (s *NoteService) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) ([]models.BatchResult, error) {
	notes, err := s.repo.ListDeletedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired trash: %w", err)
	}
	return s.deleteAll(ctx, notes), nil
}

func (s *NoteService) deleteAll(ctx context.Context, notes []models.Note) []models.BatchResult {
	results := make([]models.BatchResult, 0, len(notes))
	for _, n := range notes {
		r := models.BatchResult{NoteID: n.ID}
		if err := s.PermanentlyDelete(ctx, n.UserID, n.ID); err != nil {
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results
}

// ensureActive returns apperr.ErrNotFound for trashed notes.
func ensureActive(note *models.Note) error {
	if note.Deleted() {
		return fmt.Errorf("note %s is in the trash: %w", note.ID, apperr.ErrNotFound)
	}
	return nil
}
