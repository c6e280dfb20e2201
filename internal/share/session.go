package share

import (
	"context"
	"errors"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/models"
)

// State is a resolver state.
type State int

const (
	Loading State = iota
	PasswordRequired
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case PasswordRequired:
		return "password_required"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return "unknown"
}

// MarshalText renders the state as its String form in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == Ready || s == Error
}

// Viewer-facing messages, one per failure class.
const (
	MsgInvalidLink    = "This share link is invalid or has been deactivated."
	MsgExpiredLink    = "This share link has expired."
	MsgNoteGone       = "This note is no longer available."
	MsgFetchFailed    = "Something went wrong while loading this note. Please try again later."
	MsgServiceOffline = "Could not reach the note service. Check your connection and try again."
)

var (
	ErrTerminalState     = errors.New("share session is finished")
	ErrInvalidTransition = errors.New("operation not allowed in current share session state")

	// ErrFunctionFailed is the 500-class failure of the privileged fetch.
	ErrFunctionFailed = errors.New("shared note function failed")
)

// LinkFinder is the anonymous lookup of an active link by token.
type LinkFinder interface {
	GetActiveLinkByToken(ctx context.Context, token string) (*models.SharedLink, error)
}

// NoteFetcher performs the privileged content fetch. It reports
// apperr.ErrNotFound, apperr.ErrExpired, ErrFunctionFailed or a transport error.
type NoteFetcher interface {
	FetchSharedNote(ctx context.Context, noteID, linkID string) (*models.SharedNote, error)
}

// View is what a viewer sees of a session.
type View struct {
	State         State              `json:"state"`
	Note          *models.SharedNote `json:"note,omitempty"`
	Error         string             `json:"error,omitempty"`
	PasswordError bool               `json:"password_error,omitempty"`
}

// Session resolves one share token. It is not safe for concurrent use.
type Session struct {
	token   string
	links   LinkFinder
	fetcher NoteFetcher
	clock   clock.Clock

	state         State
	link          *models.SharedLink
	note          *models.SharedNote
	message       string
	passwordError bool
}

// NewSession returns a session in the Loading state.
func NewSession(token string, links LinkFinder, fetcher NoteFetcher, clk clock.Clock) *Session {
	return &Session{token: token, links: links, fetcher: fetcher, clock: clk, state: Loading}
}

func (s *Session) State() State { return s.state }

// View returns a copy of the externally visible state.
func (s *Session) View() View {
	return View{State: s.state, Note: s.note, Error: s.message, PasswordError: s.passwordError}
}

// Start looks the token up and moves to Error, PasswordRequired or, after
// the privileged fetch, Ready.
func (s *Session) Start(ctx context.Context) error {
	if s.state.Terminal() {
		return ErrTerminalState
	}
	if s.state != Loading {
		return ErrInvalidTransition
	}

	link, err := s.links.GetActiveLinkByToken(ctx, s.token)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		s.fail(MsgInvalidLink)
		return nil
	case err != nil:
		s.fail(MsgFetchFailed)
		return nil
	}
	if link.Expired(s.clock.Now()) {
		s.fail(MsgExpiredLink)
		return nil
	}

	s.link = link
	if link.HasPassword() {
		s.state = PasswordRequired
		return nil
	}
	s.fetch(ctx)
	return nil
}

// SubmitPassword checks a candidate password. A mismatch keeps the session in
// PasswordRequired with the password error flag set and fetches nothing.
func (s *Session) SubmitPassword(ctx context.Context, password string) error {
	if s.state.Terminal() {
		return ErrTerminalState
	}
	if s.state != PasswordRequired {
		return ErrInvalidTransition
	}

	ok, err := VerifyPassword(*s.link.PasswordHash, password)
	if err != nil {
		s.fail(MsgInvalidLink)
		return nil
	}
	if !ok {
		s.passwordError = true
		return nil
	}
	s.passwordError = false
	s.fetch(ctx)
	return nil
}

func (s *Session) fetch(ctx context.Context) {
	note, err := s.fetcher.FetchSharedNote(ctx, s.link.NoteID, s.link.ID)
	switch {
	case err == nil:
		s.note = note
		s.state = Ready
	case errors.Is(err, apperr.ErrNotFound):
		s.fail(MsgNoteGone)
	case errors.Is(err, apperr.ErrExpired):
		s.fail(MsgExpiredLink)
	case errors.Is(err, ErrFunctionFailed):
		s.fail(MsgFetchFailed)
	default:
		s.fail(MsgServiceOffline)
	}
}

func (s *Session) fail(msg string) {
	s.state = Error
	s.message = msg
	s.passwordError = false
}
