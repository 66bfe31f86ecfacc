// Package emoji maps the pictographic markers used in mind-map node titles
// to categories and to GitHub-hosted emoji images.
package emoji

import (
	"fmt"
	"regexp"
	"unicode/utf16"
)

const (
	unicodeTemplate = `<img class="mindmap-emoji" src="https://assets-cdn.github.com/images/icons/emoji/unicode/%s.png">`
	namedTemplate   = `<img class="mindmap-emoji" src="https://assets-cdn.github.com/images/icons/emoji/%s.png">`

	redditHTML        = `<img class="mindmap-emoji reddit-emoji" src="https://encrypted-tbn0.gstatic.com/images?q=tbn:ANd9GcTNpOQVZdTCyVamjJPl92KjaDHigNWVM8mOLHPRU4DHoVNJWxCg">`
	stackExchangeHTML = `<img class="mindmap-emoji" src="https://cdn.sstatic.net/Sites/stackoverflow/company/img/logos/se/se-icon.png?v=93426798a1d4">`
)

// Entry is one row of the marker vocabulary. HTML is set only for markers
// whose image is not derived from the codepoint.
type Entry struct {
	Marker   string
	Category string
	HTML     string
}

// vocabulary is the closed marker table. Extending it is a data change.
var vocabulary = []Entry{
	{Marker: "🗺", Category: "mindmap"},
	{Marker: "🌐", Category: "wiki"},
	{Marker: "🗂", Category: "stack exchange", HTML: stackExchangeHTML},
	{Marker: "📖", Category: "free book"},
	{Marker: "📕", Category: "non-free book"},
	{Marker: "📄", Category: "paper"},
	{Marker: "👀", Category: "video"},
	{Marker: "🖋", Category: "article"},
	{Marker: "🗃", Category: "blog"},
	{Marker: "🐙", Category: "github", HTML: fmt.Sprintf(namedTemplate, "octocat")},
	{Marker: "👾", Category: "interactive"},
	{Marker: "🖌", Category: "image"},
	{Marker: "🎙", Category: "podcast"},
	{Marker: "📮", Category: "newsletter"},
	{Marker: "🗣", Category: "chat"},
	{Marker: "🎥", Category: "youtube"},
	{Marker: "🤖", Category: "reddit", HTML: redditHTML},
}

var (
	byMarker   = make(map[string]Entry, len(vocabulary))
	byCategory = make(map[string]Entry, len(vocabulary))
)

func init() {
	for _, e := range vocabulary {
		byMarker[e.Marker] = e
		byCategory[e.Category] = e
	}
}

// markerPattern matches any character outside the Basic Multilingual Plane,
// i.e. anything that UTF-16 encodes as a surrogate pair.
var markerPattern = regexp.MustCompile(`[\x{10000}-\x{10FFFF}]`)

// Vocabulary returns a copy of the marker table in its canonical order.
func Vocabulary() []Entry {
	out := make([]Entry, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Category returns the category for a marker, or "" if the marker is not
// part of the vocabulary.
func Category(marker string) string {
	return byMarker[marker].Category
}

// CategoryToHTML returns the image markup for a category, or "" if the
// category is unknown.
func CategoryToHTML(category string) string {
	e, ok := byCategory[category]
	if !ok {
		return ""
	}
	return ToHTML(e.Marker)
}

// ToHTML replaces every marker in text with an image tag.
func ToHTML(text string) string {
	return markerPattern.ReplaceAllStringFunc(text, markerHTML)
}

// Find returns all markers in text, in order of appearance.
func Find(text string) []string {
	return markerPattern.FindAllString(text, -1)
}

// Strip removes every marker from text. Surrounding whitespace is kept.
func Strip(text string) string {
	return markerPattern.ReplaceAllString(text, "")
}

func markerHTML(marker string) string {
	if e, ok := byMarker[marker]; ok && e.HTML != "" {
		return e.HTML
	}
	return fmt.Sprintf(unicodeTemplate, Codepoint(marker))
}

// Codepoint returns the hex image key for a marker. The surrogate pair is
// masked down to its 20 payload bits and prefixed with "1", which yields
// the codepoint for everything in the U+1xxxx range.
func Codepoint(marker string) string {
	runes := []rune(marker)
	if len(runes) == 0 {
		return ""
	}
	r := runes[0]
	if r < 0x10000 {
		return fmt.Sprintf("%x", r)
	}
	hi, lo := utf16.EncodeRune(r)
	offset := (hi&0x3FF)<<10 + (lo & 0x3FF)
	return fmt.Sprintf("1%x", offset)
}
