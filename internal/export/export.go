// Package export serializes a user's notes, with their media, to JSON, plain
// text or Markdown. Output depends only on the notes and the supplied time.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

const (
	untitled   = "Untitled"
	timeLayout = "2006-01-02 15:04"
)

// ParseFormat accepts json, txt (or text) and md (or markdown).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "txt", "text":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("export format %q: %w", s, apperr.ErrInvalidInput)
}

// FileName returns notes-export-<YYYY-MM-DD>.<ext>.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("notes-export-%s.%s", now.Format("2006-01-02"), f)
}

// ContentType returns the MIME type served for f.
func ContentType(f Format) string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown"
	}
	return "text/plain"
}

// Render dispatches to the serializer for f.
func Render(f Format, notes []models.NoteWithMedia, now time.Time) ([]byte, error) {
	switch f {
	case FormatJSON:
		return JSON(notes, now)
	case FormatText:
		return Text(notes, now), nil
	case FormatMarkdown:
		return Markdown(notes, now), nil
	}
	return nil, fmt.Errorf("export format %q: %w", f, apperr.ErrInvalidInput)
}

// Document is the JSON export layout.
type Document struct {
	ExportedAt time.Time              `json:"exported_at"`
	Notes      []models.NoteWithMedia `json:"notes"`
}

// JSON writes every field of every note with its media nested under it.
func JSON(notes []models.NoteWithMedia, now time.Time) ([]byte, error) {
	if notes == nil {
		notes = []models.NoteWithMedia{}
	}
	data, err := json.MarshalIndent(Document{ExportedAt: now.UTC(), Notes: notes}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

func mediaKinds(items []models.MediaItem) string {
	kinds := make([]string, 0, len(items))
	for _, m := range items {
		kinds = append(kinds, string(m.Kind))
	}
	return strings.Join(kinds, ", ")
}

// Text writes title, timestamps, stripped content and media kinds per note,
// separated by a rule of 50 '=' characters.
func Text(notes []models.NoteWithMedia, now time.Time) []byte {
	rule := strings.Repeat("=", 50)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Notes export (%s)\n\n", now.UTC().Format(time.RFC3339))

	for i, n := range notes {
		if i > 0 {
			sb.WriteString("\n" + rule + "\n\n")
		}
		fmt.Fprintf(&sb, "Title: %s\n", n.TitleOr(untitled))
		fmt.Fprintf(&sb, "Created: %s\n", n.CreatedAt.Format(timeLayout))
		fmt.Fprintf(&sb, "Updated: %s\n", n.UpdatedAt.Format(timeLayout))
		if body := StripHTML(n.ContentOrEmpty()); body != "" {
			sb.WriteString("\n" + body + "\n")
		}
		if len(n.Media) > 0 {
			fmt.Fprintf(&sb, "\nMedia: %s\n", mediaKinds(n.Media))
		}
	}
	return []byte(sb.String())
}

// Markdown writes a heading, a bold metadata line, the converted content and
// a media list per note, separated by horizontal rules.
func Markdown(notes []models.NoteWithMedia, now time.Time) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "_Exported %s_\n\n", now.UTC().Format(time.RFC3339))

	for i, n := range notes {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&sb, "# %s\n\n", n.TitleOr(untitled))
		fmt.Fprintf(&sb, "**Created:** %s | **Updated:** %s\n",
			n.CreatedAt.Format(timeLayout), n.UpdatedAt.Format(timeLayout))
		if body := ToMarkdown(n.ContentOrEmpty()); body != "" {
			sb.WriteString("\n" + body + "\n")
		}
		if len(n.Media) > 0 {
			sb.WriteString("\n**Media:**\n\n")
			for _, m := range n.Media {
				if m.URL != "" {
					fmt.Fprintf(&sb, "- %s: [%s](%s)\n", m.Kind, m.FileName, m.URL)
				} else {
					fmt.Fprintf(&sb, "- %s: %s\n", m.Kind, m.FileName)
				}
			}
		}
	}
	return []byte(sb.String())
}
