package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/apperr"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozen = time.Date(2024, 7, 4, 18, 30, 0, 0, time.UTC)

func note(id, title, content string, media ...models.MediaItem) models.NoteWithMedia {
	n := models.NoteWithMedia{
		Note:  models.Note{ID: id, UserID: "u1", CreatedAt: frozen, UpdatedAt: frozen},
		Media: media,
	}
	if title != "" {
		n.Title = &title
	}
	if content != "" {
		n.Content = &content
	}
	return n
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>Hello <b>World</b></p>", "Hello World"},
		{"<p>Fish &amp; chips &lt;3</p>", "Fish & chips <3"},
		{"<p>one</p><p>two</p>", "one\ntwo"},
		{"line<br>break", "line\nbreak"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripHTML(tt.in), tt.in)
	}
}

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>Hello <b>World</b></p>", "Hello **World**"},
		{"<p><strong>a</strong> <em>b</em> <i>c</i> <u>d</u> <s>e</s> <code>f</code></p>", "**a** *b* *c* _d_ ~~e~~ `f`"},
		{"<h1>Top</h1><h2>Mid</h2><h3>Low</h3>", "# Top\n\n## Mid\n\n### Low"},
		{"<ul><li>milk</li><li>eggs</li></ul>", "- milk\n- eggs"},
		{"<p>one<br/>two</p><p>three</p>", "one\ntwo\n\nthree"},
		{`<p><span style="color:red">red</span> &amp; <mark>bold</mark></p>`, "red & bold"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToMarkdown(tt.in), tt.in)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	img := models.MediaItem{ID: "m1", NoteID: "n1", UserID: "u1", Kind: models.MediaImage, StoragePath: "u1/n1/a.png", FileName: "a.png", CreatedAt: frozen}
	in := []models.NoteWithMedia{
		note("n1", "Groceries", "<p>Milk</p>", img),
		note("n2", "", "<p>untitled body</p>"),
		note("n3", "Empty", ""),
	}

	data, err := JSON(in, frozen)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.True(t, doc.ExportedAt.Equal(frozen))
	require.Len(t, doc.Notes, len(in))
	for i := range in {
		assert.Equal(t, in[i].ID, doc.Notes[i].ID)
		assert.Equal(t, in[i].Title, doc.Notes[i].Title)
		assert.Equal(t, in[i].Content, doc.Notes[i].Content)
	}
	require.Len(t, doc.Notes[0].Media, 1)
	assert.Equal(t, models.MediaImage, doc.Notes[0].Media[0].Kind)

	assert.Contains(t, string(data), `"exported_at": "2024-07-04T18:30:00Z"`)
}

func TestJSON_EmptyCollection(t *testing.T) {
	data, err := JSON(nil, frozen)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"notes": []`)
}

func TestText(t *testing.T) {
	audio := models.MediaItem{Kind: models.MediaAudio}
	img := models.MediaItem{Kind: models.MediaImage}
	out := string(Text([]models.NoteWithMedia{
		note("n1", "Groceries", "<p>Hello <b>World</b></p>", img, audio),
		note("n2", "", ""),
	}, frozen))

	assert.Contains(t, out, "Title: Groceries\nCreated: 2024-07-04 18:30\nUpdated: 2024-07-04 18:30\n\nHello World\n\nMedia: image, audio\n")
	assert.Contains(t, out, "\n"+strings.Repeat("=", 50)+"\n\nTitle: Untitled\n")
	assert.Equal(t, 1, strings.Count(out, strings.Repeat("=", 50)))
	assert.NotContains(t, out, "<b>")
}

func TestMarkdown(t *testing.T) {
	img := models.MediaItem{Kind: models.MediaImage, FileName: "a.png", URL: "http://x/storage/note-images/a.png"}
	out := string(Markdown([]models.NoteWithMedia{
		note("n1", "Groceries", "<p>Hello <b>World</b></p>", img),
		note("n2", "", "<p>x</p>"),
	}, frozen))

	assert.Contains(t, out, "# Groceries\n\n**Created:** 2024-07-04 18:30 | **Updated:** 2024-07-04 18:30\n\nHello **World**\n")
	assert.Contains(t, out, "- image: [a.png](http://x/storage/note-images/a.png)")
	assert.Contains(t, out, "\n---\n\n# Untitled\n")
}

func TestOutputIsDeterministic(t *testing.T) {
	in := []models.NoteWithMedia{note("n1", "A", "<p>b</p>")}
	for _, f := range []Format{FormatJSON, FormatText, FormatMarkdown} {
		a, err := Render(f, in, frozen)
		require.NoError(t, err)
		b, err := Render(f, in, frozen)
		require.NoError(t, err)
		assert.Equal(t, a, b, f)
	}
}

func TestFileNameAndContentType(t *testing.T) {
	assert.Equal(t, "notes-export-2024-07-04.json", FileName(FormatJSON, frozen))
	assert.Equal(t, "notes-export-2024-07-04.txt", FileName(FormatText, frozen))
	assert.Equal(t, "notes-export-2024-07-04.md", FileName(FormatMarkdown, frozen))

	assert.Equal(t, "application/json", ContentType(FormatJSON))
	assert.Equal(t, "text/plain", ContentType(FormatText))
	assert.Equal(t, "text/markdown", ContentType(FormatMarkdown))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" Markdown ")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
