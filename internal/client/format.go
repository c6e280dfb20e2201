package client

import (
	"fmt"
	"strings"

	"github.com/atinyakov/NoteKeeper/internal/export"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

const timeLayout = "2006-01-02 15:04"

func Faint(s string) string { return faint(s) }
func Bold(s string) string  { return bold(s) }

// Success formats a confirmation line.
func Success(msg string) string {
	return green("✓ ") + msg
}

// Failure formats an error line.
func Failure(msg string) string {
	return red("✗ ") + msg
}

// FormatNoteListItem renders one row of a note listing.
func FormatNoteListItem(note models.Note) string {
	var sb strings.Builder
	pin := " "
	if note.IsPinned {
		pin = "*"
	}
	fmt.Fprintf(&sb, "%s %s  %s\n", pin, faint(note.ID), bold(note.TitleOr("Untitled")))
	when := note.UpdatedAt
	label := "Updated:"
	if note.DeletedAt != nil {
		when, label = *note.DeletedAt, "Deleted:"
	}
	fmt.Fprintf(&sb, "    %s %s\n", faint(label), faint(when.Format(timeLayout)))
	return sb.String()
}

// FormatNoteHeader renders the title block shown above a note.
func FormatNoteHeader(note *models.Note, tags []models.Tag) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", bold(note.TitleOr("Untitled")))
	fmt.Fprintf(&sb, "%s %s\n", faint("ID:"), faint(note.ID))
	fmt.Fprintf(&sb, "%s %s\n", faint("Created:"), faint(note.CreatedAt.Format(timeLayout)))
	fmt.Fprintf(&sb, "%s %s\n", faint("Updated:"), faint(note.UpdatedAt.Format(timeLayout)))
	if len(tags) > 0 {
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			names = append(names, t.Name)
		}
		fmt.Fprintf(&sb, "%s %s\n", faint("Tags:"), cyan(strings.Join(names, ", ")))
	}
	sb.WriteString(faint(strings.Repeat("─", 50)) + "\n")
	return sb.String()
}

// RenderContent converts note HTML to Markdown and renders it for the
// terminal. The Markdown is returned unrendered if glamour fails.
func RenderContent(htmlContent string) string {
	md := export.ToMarkdown(htmlContent)
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md + "\n"
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md + "\n"
	}
	return out
}

// FormatMediaList renders a note's attachments.
func FormatMediaList(items []models.MediaItem) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n", bold("Media:"))
	for _, m := range items {
		fmt.Fprintf(&sb, "  %s %s %s\n", faint("["+string(m.Kind)+"]"), m.FileName, faint(m.URL))
	}
	return sb.String()
}

// FormatLink renders one share link.
func FormatLink(l Link) string {
	status := green("active")
	if !l.IsActive {
		status = red("inactive")
	}
	extra := []string{fmt.Sprintf("%d views", l.ViewCount)}
	if l.HasPassword {
		extra = append(extra, "password")
	}
	if l.ExpiresAt != nil {
		extra = append(extra, "expires "+l.ExpiresAt.Format(timeLayout))
	}
	return fmt.Sprintf("  %s  %s  %s\n    %s\n", faint(l.ID), status, faint(strings.Join(extra, ", ")), cyan(l.URL))
}
