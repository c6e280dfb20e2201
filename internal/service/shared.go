package service

import (
	"context"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/share"
)

// SharedNoteRepository is the privileged, unscoped read path.
type SharedNoteRepository interface {
	// FetchSharedNote re-validates the link, loads the untrashed note and
	// counts one view.
	FetchSharedNote(ctx context.Context, noteID, linkID string, now time.Time) (*models.SharedNote, error)
}

// SharedNoteService backs the privileged shared-note function. It ignores
// note ownership and must only be reachable with the service key.
type SharedNoteService struct {
	repo  SharedNoteRepository
	clock clock.Clock
}

// NewSharedNoteService constructs a SharedNoteService.
func NewSharedNoteService(repo SharedNoteRepository, clk clock.Clock) *SharedNoteService {
	return &SharedNoteService{repo: repo, clock: clk}
}

// FetchSharedNote returns the note behind a live link and counts the view.
func (s *SharedNoteService) FetchSharedNote(ctx context.Context, noteID, linkID string) (*models.SharedNote, error) {
	return s.repo.FetchSharedNote(ctx, noteID, linkID, s.clock.Now())
}

// ResolverService runs share.Session for anonymous viewers. Content is
// fetched through the privileged function, never through the owner path.
type ResolverService struct {
	links   share.LinkFinder
	fetcher share.NoteFetcher
	clock   clock.Clock
}

// NewResolverService constructs a ResolverService.
func NewResolverService(links share.LinkFinder, fetcher share.NoteFetcher, clk clock.Clock) *ResolverService {
	return &ResolverService{links: links, fetcher: fetcher, clock: clk}
}

// Resolve starts a session for token and, when a password is supplied and
// required, submits it.
func (s *ResolverService) Resolve(ctx context.Context, token string, password *string) (share.View, error) {
	sess := share.NewSession(token, s.links, s.fetcher, s.clock)
	if err := sess.Start(ctx); err != nil {
		return share.View{}, err
	}
	if password != nil && sess.State() == share.PasswordRequired {
		if err := sess.SubmitPassword(ctx, *password); err != nil {
			return share.View{}, err
		}
	}
	return sess.View(), nil
}
