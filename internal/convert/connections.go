package convert

import "github.com/gerunddev/mindflat/internal/parser"

// Curve is the focal point of the bezier curve drawn for a connection.
type Curve struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Connection links two nodes by their normalized text. Source and Target
// are nil when the endpoint id is not in the lookup.
type Connection struct {
	Source *string `json:"source,omitempty" yaml:"source,omitempty"`
	Target *string `json:"target,omitempty" yaml:"target,omitempty"`
	Curve  Curve   `json:"curve" yaml:"curve"`
	Text   *string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Lookup maps node ids to normalized node text.
//
// Only top-level nodes are recorded, so connections pointing at nested
// nodes resolve to nil endpoints. That matches what existing renderers
// were built against; widening it would change their output.
type Lookup map[parser.ID]string

// Resolve returns the text for id, or nil if id is unknown.
func (l Lookup) Resolve(id parser.ID) *string {
	text, ok := l[id]
	if !ok {
		return nil
	}
	return &text
}

// Connection resolves a raw connection against lookup.
func (n *Normalizer) Connection(raw *parser.Connection, lookup Lookup) Connection {
	out := Connection{
		Source: lookup.Resolve(raw.StartNodeID),
		Target: lookup.Resolve(raw.EndNodeID),
		Curve: Curve{
			X: raw.WayPointOffset.X,
			Y: raw.WayPointOffset.Y,
		},
	}

	if raw.Title != nil && raw.Title.Text != "" {
		text := n.extractor().Extract(raw.Title.Text).Text
		out.Text = &text
	}

	return out
}
