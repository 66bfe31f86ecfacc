// Package convert flattens a MindNode tree into the nodes, subnodes and
// connections lists consumed by the mind-map renderers.
package convert

import (
	"strings"

	"github.com/gerunddev/mindflat/internal/emoji"
	"github.com/gerunddev/mindflat/internal/parser"
	"github.com/gerunddev/mindflat/internal/richtext"
)

// Boilerplate is the feedback prompt pasted into many notes. It is removed
// from notes on conversion.
const Boilerplate = "if you think this can be improved in any way  please say"

// Node is a normalized node. Note and Category are nil when absent so they
// are left out of the output entirely.
type Node struct {
	Text     string  `json:"text" yaml:"text"`
	URL      string  `json:"url,omitempty" yaml:"url,omitempty"`
	Note     *string `json:"note,omitempty" yaml:"note,omitempty"`
	FX       float64 `json:"fx" yaml:"fx"`
	FY       float64 `json:"fy" yaml:"fy"`
	Category *string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Normalizer converts raw nodes using a text extractor. The zero value uses
// richtext.Default.
type Normalizer struct {
	Extractor richtext.Extractor
}

// NewNormalizer returns a normalizer backed by ex.
func NewNormalizer(ex richtext.Extractor) *Normalizer {
	return &Normalizer{Extractor: ex}
}

func (n *Normalizer) extractor() richtext.Extractor {
	if n == nil || n.Extractor == nil {
		return richtext.Default
	}
	return n.Extractor
}

// Node normalizes a single raw node. The first marker in the title decides
// the category; every marker is removed from the text.
func (n *Normalizer) Node(raw *parser.Node) Node {
	ex := n.extractor()

	title := ex.Extract(raw.Title.Text)
	out := Node{
		Text: title.Text,
		URL:  title.URL,
		FX:   raw.Location.X,
		FY:   raw.Location.Y,
	}

	if raw.Note != nil {
		note := ex.Extract(raw.Note.Text).Text
		note = strings.Replace(note, Boilerplate, "", 1)
		out.Note = &note
	}

	if markers := emoji.Find(out.Text); len(markers) > 0 {
		category := emoji.Category(markers[0])
		out.Category = &category
		out.Text = strings.TrimSpace(emoji.Strip(out.Text))
	}

	return out
}

// CategoryName returns the category or "" when none was assigned.
func (n Node) CategoryName() string {
	if n.Category == nil {
		return ""
	}
	return *n.Category
}
