package export

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	lineSpaces = regexp.MustCompile(`[ \t]+\n`)
)

// blockTags end a line in plain text output.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "tr": true,
}

// StripHTML removes every tag and decodes entities. Closing block elements
// and <br> become line breaks.
func StripHTML(s string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tidy(sb.String())
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				sb.WriteByte('\n')
			}
		case html.EndTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); blockTags[string(name)] {
				sb.WriteByte('\n')
			}
		}
	}
}

// markdownInline maps inline tags to the marker written on both sides.
var markdownInline = map[string]string{
	"strong": "**",
	"b":      "**",
	"em":     "*",
	"i":      "*",
	"u":      "_",
	"s":      "~~",
	"strike": "~~",
	"del":    "~~",
	"code":   "`",
}

// ToMarkdown converts the subset of HTML the editor produces. Unknown tags
// are dropped and their text kept.
func ToMarkdown(s string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return tidy(sb.String())
		}
		if tt == html.TextToken {
			sb.Write(z.Text())
			continue
		}
		if tt != html.StartTagToken && tt != html.EndTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		raw, _ := z.TagName()
		name := string(raw)
		if mark, ok := markdownInline[name]; ok {
			sb.WriteString(mark)
			continue
		}

		start := tt != html.EndTagToken
		switch name {
		case "br":
			sb.WriteByte('\n')
		case "p", "div":
			if !start {
				sb.WriteString("\n\n")
			}
		case "li":
			if start {
				sb.WriteString("\n- ")
			}
		case "ul", "ol":
			sb.WriteByte('\n')
		case "h1", "h2", "h3":
			if start {
				sb.WriteString("\n" + strings.Repeat("#", int(name[1]-'0')) + " ")
			} else {
				sb.WriteString("\n\n")
			}
		}
	}
}

func tidy(s string) string {
	s = lineSpaces.ReplaceAllString(s, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
