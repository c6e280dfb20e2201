package client

import (
	"bufio"
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/autosave"
	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/export"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"go.uber.org/zap"
)

// NoteUpdater persists note edits.
type NoteUpdater interface {
	UpdateNote(ctx context.Context, id string, patch models.NotePatch) (*models.Note, error)
}

// EditorHelp lists the editor commands.
const EditorHelp = `Type text to append a paragraph. Commands:
  :title <text>  set the title
  :undo          drop the last paragraph
  :show          print the note
  :w             save now
  :q             save and quit
  :q!            quit without saving pending edits`

// Editor is a line-oriented editing session on one note. Edits are saved
// by an auto-save debouncer once typing pauses.
type Editor struct {
	api    NoteUpdater
	noteID string
	saver  *autosave.Debouncer

	mu      sync.Mutex
	out     io.Writer
	title   string
	content string
	saved   *models.Note
}

// NewEditor starts a session on note. Timer-driven saves run with ctx.
func NewEditor(ctx context.Context, api NoteUpdater, note *models.Note, clk clock.Clock, delay time.Duration, out io.Writer, log *zap.Logger) *Editor {
	e := &Editor{
		api:     api,
		noteID:  note.ID,
		out:     out,
		title:   note.TitleOr(""),
		content: note.ContentOrEmpty(),
		saved:   note,
	}
	e.saver = autosave.New(ctx, clk, delay, e.flush, log)
	return e
}

func (e *Editor) flush(ctx context.Context, patch models.NotePatch) error {
	note, err := e.api.UpdateNote(ctx, e.noteID, patch)
	if err != nil {
		e.printf("%s\n", Failure("save failed: "+err.Error()))
		return err
	}
	e.mu.Lock()
	e.saved = note
	e.mu.Unlock()
	e.printf("%s\n", Faint("saved"))
	return nil
}

func (e *Editor) printf(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.out, format, args...)
}

func (e *Editor) schedule() {
	e.mu.Lock()
	title, content := e.title, e.content
	e.mu.Unlock()
	e.saver.Schedule(models.NotePatch{Title: &title, Content: &content})
}

// Saved returns the last version the server acknowledged.
func (e *Editor) Saved() *models.Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saved
}

// Dirty reports whether edits are waiting to be saved.
func (e *Editor) Dirty() bool {
	return e.saver.Pending()
}

// Handle applies one input line. It reports whether the session ended.
func (e *Editor) Handle(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case ":q":
		err := e.saver.FlushNow(ctx)
		if err != nil {
			return false, err
		}
		e.saver.Close()
		return true, nil
	case ":q!":
		e.saver.Close()
		return true, nil
	case ":w":
		return false, e.saver.FlushNow(ctx)
	case ":title":
		e.mu.Lock()
		e.title = strings.TrimSpace(arg)
		e.mu.Unlock()
		e.schedule()
	case ":undo":
		e.mu.Lock()
		if i := strings.LastIndex(e.content, "<p>"); i >= 0 {
			e.content = e.content[:i]
		}
		e.mu.Unlock()
		e.schedule()
	case ":show":
		e.mu.Lock()
		title, content := e.title, e.content
		e.mu.Unlock()
		e.printf("%s\n%s\n", Bold(title), export.StripHTML(content))
	case ":help":
		e.printf("%s\n", EditorHelp)
	default:
		if strings.HasPrefix(cmd, ":") {
			e.printf("unknown command %s, type :help\n", cmd)
			return false, nil
		}
		e.mu.Lock()
		e.content += "<p>" + html.EscapeString(line) + "</p>"
		e.mu.Unlock()
		e.schedule()
	}
	return false, nil
}

// Run reads lines from in until :q, :q! or end of input. Pending edits are
// saved at end of input.
func (e *Editor) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		done, err := e.Handle(ctx, scanner.Text())
		if err != nil {
			e.printf("%s\n", Failure(err.Error()))
			continue
		}
		if done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	defer e.saver.Close()
	return e.saver.FlushNow(ctx)
}
