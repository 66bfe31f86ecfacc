package convert

import "github.com/gerunddev/mindflat/internal/parser"

// Document is the flattened form of one mind map.
type Document struct {
	Title       string       `json:"title" yaml:"title"`
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Subnodes    []Subnode    `json:"subnodes" yaml:"subnodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// Document converts a raw mind map. Lists in the result are never nil.
func (n *Normalizer) Document(raw *parser.Document) *Document {
	doc := &Document{
		Title:       raw.Title,
		Nodes:       make([]Node, 0, len(raw.Nodes)),
		Connections: make([]Connection, 0, len(raw.Connections)),
	}

	lookup := make(Lookup, len(raw.Nodes))
	parents := make([]string, len(raw.Nodes))
	for i := range raw.Nodes {
		node := n.Node(&raw.Nodes[i])
		lookup[raw.Nodes[i].ID] = node.Text
		parents[i] = node.Text
		doc.Nodes = append(doc.Nodes, node)
	}

	doc.Subnodes = n.subnodes(raw.Nodes, parents)

	for i := range raw.Connections {
		doc.Connections = append(doc.Connections, n.Connection(&raw.Connections[i], lookup))
	}

	return doc
}

// Convert flattens raw with the default text extractor.
func Convert(raw *parser.Document) *Document {
	var n Normalizer
	return n.Document(raw)
}
