package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps every entity in process memory. It implements the same
// repository methods as the Postgres types, including owner scoping and
// cascades, and is selected with database.use_in_memory.
type MemoryStore struct {
	mu       sync.RWMutex
	notes    map[string]models.Note
	versions map[string][]models.NoteVersion
	tags     map[string]models.Tag
	noteTags map[string]map[string]struct{}
	media    map[string]models.MediaItem
	links    map[string]models.SharedLink
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notes:    make(map[string]models.Note),
		versions: make(map[string][]models.NoteVersion),
		tags:     make(map[string]models.Tag),
		noteTags: make(map[string]map[string]struct{}),
		media:    make(map[string]models.MediaItem),
		links:    make(map[string]models.SharedLink),
	}
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
}

// ownedNote must be called with mu held.
func (s *MemoryStore) ownedNote(userID, id string) (models.Note, bool) {
	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return models.Note{}, false
	}
	return n, true
}

// Notes

func (s *MemoryStore) CreateNote(ctx context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.notes[note.ID]; exists {
		return fmt.Errorf("create note: %w", apperr.ErrConflict)
	}
	s.notes[note.ID] = *note
	return nil
}

func (s *MemoryStore) GetNote(ctx context.Context, userID, id string) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.ownedNote(userID, id)
	if !ok {
		return nil, notFound("get note")
	}
	return &n, nil
}

func (s *MemoryStore) ListNotes(ctx context.Context, userID string, filter models.ListFilter) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	var notes []models.Note
	for _, n := range s.notes {
		if n.UserID != userID || n.Deleted() != filter.Deleted {
			continue
		}
		if filter.TagID != "" {
			if _, ok := s.noteTags[n.ID][filter.TagID]; !ok {
				continue
			}
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(n.TitleOr("")), q) &&
			!strings.Contains(strings.ToLower(n.ContentOrEmpty()), q) {
			continue
		}
		notes = append(notes, n)
	}

	sort.Slice(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if filter.Deleted {
			if !a.DeletedAt.Equal(*b.DeletedAt) {
				return a.DeletedAt.After(*b.DeletedAt)
			}
			return a.ID < b.ID
		}
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	return notes, nil
}

// appendVersion must be called with mu held.
func (s *MemoryStore) appendVersion(note models.Note, now time.Time) models.NoteVersion {
	existing := s.versions[note.ID]
	var latest int64
	for _, v := range existing {
		if v.VersionNumber > latest {
			latest = v.VersionNumber
		}
	}
	v := models.NoteVersion{
		ID:            uuid.NewString(),
		NoteID:        note.ID,
		Title:         note.Title,
		Content:       note.Content,
		VersionNumber: latest + 1,
		CreatedAt:     now,
	}
	s.versions[note.ID] = append(existing, v)
	return v
}

func (s *MemoryStore) UpdateNote(ctx context.Context, userID, id string, patch models.NotePatch, now time.Time) (*models.Note, *models.NoteVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.ownedNote(userID, id)
	if !ok || note.Deleted() {
		return nil, nil, notFound("lock note")
	}

	var version *models.NoteVersion
	if (patch.Title != nil || patch.Content != nil) && note.ContentOrEmpty() != "" {
		v := s.appendVersion(note, now)
		version = &v
	}

	patch.Apply(&note)
	note.UpdatedAt = now
	s.notes[id] = note
	return &note, version, nil
}

func (s *MemoryStore) SoftDeleteNote(ctx context.Context, userID, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.ownedNote(userID, id)
	if !ok || note.Deleted() {
		return notFound("soft delete note")
	}
	deletedAt := now
	note.DeletedAt = &deletedAt
	s.notes[id] = note
	return nil
}

func (s *MemoryStore) RestoreNote(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.ownedNote(userID, id)
	if !ok || !note.Deleted() {
		return notFound("restore note")
	}
	note.DeletedAt = nil
	s.notes[id] = note
	return nil
}

func (s *MemoryStore) DeleteNote(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedNote(userID, id); !ok {
		return notFound("delete note")
	}
	delete(s.notes, id)
	delete(s.versions, id)
	delete(s.noteTags, id)
	for mid, m := range s.media {
		if m.NoteID == id {
			delete(s.media, mid)
		}
	}
	for lid, l := range s.links {
		if l.NoteID == id {
			delete(s.links, lid)
		}
	}
	return nil
}

func (s *MemoryStore) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var notes []models.Note
	for _, n := range s.notes {
		if n.Deleted() && n.DeletedAt.Before(cutoff) {
			notes = append(notes, n)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].DeletedAt.Before(*notes[j].DeletedAt) })
	return notes, nil
}

// Versions

func (s *MemoryStore) Snapshot(ctx context.Context, userID, noteID string, now time.Time) (*models.NoteVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.ownedNote(userID, noteID)
	if !ok {
		return nil, notFound("lock note")
	}
	v := s.appendVersion(note, now)
	return &v, nil
}

func (s *MemoryStore) ListVersions(ctx context.Context, userID, noteID string) ([]models.NoteVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.ownedNote(userID, noteID); !ok {
		return nil, nil
	}
	versions := append([]models.NoteVersion(nil), s.versions[noteID]...)
	sort.Slice(versions, func(i, j int) bool { return versions[i].VersionNumber > versions[j].VersionNumber })
	return versions, nil
}

func (s *MemoryStore) GetVersion(ctx context.Context, userID, noteID, versionID string) (*models.NoteVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.ownedNote(userID, noteID); !ok {
		return nil, notFound("get version")
	}
	for _, v := range s.versions[noteID] {
		if v.ID == versionID {
			return &v, nil
		}
	}
	return nil, notFound("get version")
}

// Tags

func (s *MemoryStore) ListTags(ctx context.Context, userID string) ([]models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tags []models.Tag
	for _, t := range s.tags {
		if t.UserID == userID {
			tags = append(tags, t)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (s *MemoryStore) CreateTag(ctx context.Context, tag *models.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tags {
		if t.UserID == tag.UserID && t.Name == tag.Name {
			return fmt.Errorf("create tag %q: %w", tag.Name, apperr.ErrConflict)
		}
	}
	s.tags[tag.ID] = *tag
	return nil
}

func (s *MemoryStore) DeleteTag(ctx context.Context, userID, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[tagID]
	if !ok || t.UserID != userID {
		return notFound("delete tag")
	}
	delete(s.tags, tagID)
	for _, set := range s.noteTags {
		delete(set, tagID)
	}
	return nil
}

func (s *MemoryStore) AttachTag(ctx context.Context, userID, noteID, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[tagID]
	if _, owned := s.ownedNote(userID, noteID); !owned || !ok || t.UserID != userID {
		return notFound("attach tag")
	}
	set, ok := s.noteTags[noteID]
	if !ok {
		set = make(map[string]struct{})
		s.noteTags[noteID] = set
	}
	set[tagID] = struct{}{}
	return nil
}

func (s *MemoryStore) DetachTag(ctx context.Context, userID, noteID, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedNote(userID, noteID); ok {
		delete(s.noteTags[noteID], tagID)
	}
	return nil
}

func (s *MemoryStore) ListNoteTags(ctx context.Context, userID, noteID string) ([]models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.ownedNote(userID, noteID); !ok {
		return nil, nil
	}
	var tags []models.Tag
	for tagID := range s.noteTags[noteID] {
		tags = append(tags, s.tags[tagID])
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// Media

func (s *MemoryStore) CreateMedia(ctx context.Context, item *models.MediaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedNote(item.UserID, item.NoteID); !ok {
		return notFound("check note owner")
	}
	s.media[item.ID] = *item
	return nil
}

func (s *MemoryStore) filterMedia(keep func(models.MediaItem) bool) []models.MediaItem {
	var items []models.MediaItem
	for _, m := range s.media {
		if keep(m) {
			items = append(items, m)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items
}

func (s *MemoryStore) ListMedia(ctx context.Context, userID, noteID string) ([]models.MediaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterMedia(func(m models.MediaItem) bool {
		return m.NoteID == noteID && m.UserID == userID
	}), nil
}

func (s *MemoryStore) ListUserMedia(ctx context.Context, userID string) ([]models.MediaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterMedia(func(m models.MediaItem) bool { return m.UserID == userID }), nil
}

func (s *MemoryStore) GetMedia(ctx context.Context, userID, id string) (*models.MediaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.media[id]
	if !ok || m.UserID != userID {
		return nil, notFound("get media")
	}
	return &m, nil
}

func (s *MemoryStore) DeleteMedia(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[id]
	if !ok || m.UserID != userID {
		return notFound("delete media")
	}
	delete(s.media, id)
	return nil
}

// Share links

// ownedLink must be called with mu held.
func (s *MemoryStore) ownedLink(userID, linkID string) (models.SharedLink, bool) {
	l, ok := s.links[linkID]
	if !ok {
		return models.SharedLink{}, false
	}
	if _, owned := s.ownedNote(userID, l.NoteID); !owned {
		return models.SharedLink{}, false
	}
	return l, true
}

func (s *MemoryStore) CreateLink(ctx context.Context, userID string, link *models.SharedLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedNote(userID, link.NoteID); !ok {
		return notFound("check note owner")
	}
	for _, l := range s.links {
		if l.Token == link.Token {
			return fmt.Errorf("create link: %w", apperr.ErrConflict)
		}
	}
	s.links[link.ID] = *link
	return nil
}

func (s *MemoryStore) ListLinks(ctx context.Context, userID, noteID string) ([]models.SharedLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.ownedNote(userID, noteID); !ok {
		return nil, nil
	}
	var links []models.SharedLink
	for _, l := range s.links {
		if l.NoteID == noteID {
			links = append(links, l)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		if !links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].CreatedAt.After(links[j].CreatedAt)
		}
		return links[i].ID < links[j].ID
	})
	return links, nil
}

func (s *MemoryStore) ToggleLink(ctx context.Context, userID, linkID string) (*models.SharedLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ownedLink(userID, linkID)
	if !ok {
		return nil, notFound("toggle link")
	}
	l.IsActive = !l.IsActive
	s.links[linkID] = l
	return &l, nil
}

func (s *MemoryStore) DeleteLink(ctx context.Context, userID, linkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedLink(userID, linkID); !ok {
		return notFound("delete link")
	}
	delete(s.links, linkID)
	return nil
}

func (s *MemoryStore) GetActiveLinkByToken(ctx context.Context, token string) (*models.SharedLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links {
		if l.Token == token && l.IsActive {
			return &l, nil
		}
	}
	return nil, notFound("get link by token")
}

func (s *MemoryStore) FetchSharedNote(ctx context.Context, noteID, linkID string, now time.Time) (*models.SharedNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[linkID]
	if !ok || l.NoteID != noteID || !l.IsActive {
		return nil, notFound("load link")
	}
	if l.Expired(now) {
		return nil, fmt.Errorf("load link: %w", apperr.ErrExpired)
	}
	n, ok := s.notes[noteID]
	if !ok || n.Deleted() {
		return nil, notFound("load shared note")
	}
	l.ViewCount++
	s.links[linkID] = l
	return &models.SharedNote{
		Title:     n.Title,
		Content:   n.Content,
		Color:     n.Color,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}, nil
}
