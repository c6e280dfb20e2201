package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/share"
	"github.com/google/uuid"
)

// ShareRepository defines the persistence operations needed by ShareService.
type ShareRepository interface {
	// CreateLink fails with apperr.ErrConflict when the token is taken.
	CreateLink(ctx context.Context, userID string, link *models.SharedLink) error
	ListLinks(ctx context.Context, userID, noteID string) ([]models.SharedLink, error)
	ToggleLink(ctx context.Context, userID, linkID string) (*models.SharedLink, error)
	DeleteLink(ctx context.Context, userID, linkID string) error
}

// tokenAttempts bounds retries after a token collision.
const tokenAttempts = 3

// ShareService lets owners manage share links for their notes.
type ShareService struct {
	repo    ShareRepository
	notes   NoteRepository
	clock   clock.Clock
	baseURL string
}

// NewShareService constructs a ShareService. baseURL is the public origin
// share URLs are built on.
func NewShareService(repo ShareRepository, notes NoteRepository, clk clock.Clock, baseURL string) *ShareService {
	return &ShareService{repo: repo, notes: notes, clock: clk, baseURL: strings.TrimRight(baseURL, "/")}
}

// URL returns the public address of a token.
func (s *ShareService) URL(token string) string {
	return s.baseURL + "/shared/" + token
}

// Create issues a new active link for an active note. A password is stored
// hashed; ExpiresInDays > 0 sets an absolute expiry.
func (s *ShareService) Create(ctx context.Context, userID, noteID string, opts models.ShareOptions) (*models.SharedLink, error) {
	if opts.ExpiresInDays < 0 {
		return nil, fmt.Errorf("expires_in_days must not be negative: %w", apperr.ErrInvalidInput)
	}
	note, err := s.notes.GetNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if err := ensureActive(note); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	link := &models.SharedLink{
		ID:        uuid.NewString(),
		NoteID:    noteID,
		CreatedAt: now,
		IsActive:  true,
	}
	if opts.Password != "" {
		hash, err := share.HashPassword(opts.Password)
		if err != nil {
			return nil, fmt.Errorf("hash share password: %w", err)
		}
		link.PasswordHash = &hash
	}
	if opts.ExpiresInDays > 0 {
		exp := now.Add(time.Duration(opts.ExpiresInDays) * 24 * time.Hour)
		link.ExpiresAt = &exp
	}

	for attempt := 1; ; attempt++ {
		if link.Token, err = share.NewToken(); err != nil {
			return nil, err
		}
		err = s.repo.CreateLink(ctx, userID, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, apperr.ErrConflict) || attempt == tokenAttempts {
			return nil, err
		}
	}
}

func (s *ShareService) List(ctx context.Context, userID, noteID string) ([]models.SharedLink, error) {
	return s.repo.ListLinks(ctx, userID, noteID)
}

func (s *ShareService) ToggleActive(ctx context.Context, userID, linkID string) (*models.SharedLink, error) {
	return s.repo.ToggleLink(ctx, userID, linkID)
}

func (s *ShareService) Revoke(ctx context.Context, userID, linkID string) error {
	return s.repo.DeleteLink(ctx, userID, linkID)
}
