// Package richtext pulls display text and links out of the HTML fragments
// MindNode stores in node titles and notes.
package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// Text is the visible text of a styled-text blob and the first link in it.
type Text struct {
	Text string
	URL  string
}

// Extractor turns a styled-text blob into plain text.
type Extractor interface {
	Extract(blob string) Text
}

// HTML extracts text from MindNode's HTML markup.
type HTML struct{}

// Default is the extractor used when none is configured.
var Default Extractor = HTML{}

// Extract implements Extractor.
func (HTML) Extract(blob string) Text {
	return Extract(blob)
}

// Extract tokenizes blob, joining text nodes and turning line breaks and
// block boundaries into newlines. Input without a single HTML element comes
// back as its own text (entities decoded, trimmed), so a stray "<" in plain
// text is kept.
func Extract(blob string) Text {
	var (
		b      strings.Builder
		link   string
		markup bool
	)

	z := html.NewTokenizer(strings.NewReader(blob))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed tail; either way we're done
			if !markup {
				return Text{Text: clean(html.UnescapeString(blob))}
			}
			return Text{
				Text: clean(b.String()),
				URL:  link,
			}
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			if tok.DataAtom == 0 {
				// not an element, e.g. "x<y" comparisons
				b.WriteString(raw)
				continue
			}
			markup = true
			switch tok.DataAtom {
			case atom.Br:
				b.WriteByte('\n')
			case atom.P, atom.Div, atom.Li:
				newline(&b)
			case atom.A:
				if link == "" {
					link = attr(tok, "href")
				}
			}
		case html.EndTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			if tok.DataAtom == 0 {
				b.WriteString(raw)
				continue
			}
			markup = true
			switch tok.DataAtom {
			case atom.P, atom.Div, atom.Li:
				newline(&b)
			}
		}
	}
}

func newline(b *strings.Builder) {
	s := b.String()
	if s == "" || strings.HasSuffix(s, "\n") {
		return
	}
	b.WriteByte('\n')
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
