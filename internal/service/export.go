package service

import (
	"context"

	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/export"
	"github.com/atinyakov/NoteKeeper/internal/models"
)

// Export is a rendered export file.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService gathers a user's active notes with their media and renders
// them.
type ExportService struct {
	notes NoteRepository
	media *MediaService
	clock clock.Clock
}

// NewExportService constructs an ExportService.
func NewExportService(notes NoteRepository, mediaSvc *MediaService, clk clock.Clock) *ExportService {
	return &ExportService{notes: notes, media: mediaSvc, clock: clk}
}

// Collect returns the active notes in list order with their media attached.
func (s *ExportService) Collect(ctx context.Context, userID string) ([]models.NoteWithMedia, error) {
	notes, err := s.notes.ListNotes(ctx, userID, models.ListFilter{})
	if err != nil {
		return nil, err
	}
	items, err := s.media.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byNote := make(map[string][]models.MediaItem)
	for _, m := range items {
		byNote[m.NoteID] = append(byNote[m.NoteID], m)
	}

	out := make([]models.NoteWithMedia, 0, len(notes))
	for _, n := range notes {
		out = append(out, models.NoteWithMedia{Note: n, Media: byNote[n.ID]})
	}
	return out, nil
}

// Export renders the user's notes in format f.
func (s *ExportService) Export(ctx context.Context, userID string, f export.Format) (*Export, error) {
	notes, err := s.Collect(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	data, err := export.Render(f, notes, now)
	if err != nil {
		return nil, err
	}
	return &Export{FileName: export.FileName(f, now), ContentType: export.ContentType(f), Data: data}, nil
}
