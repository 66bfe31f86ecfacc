// Package parser decodes MindNode JSON exports into the raw tree that
// conversion walks.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrMissingField is returned when a node or connection lacks a field that
// conversion cannot do without.
var ErrMissingField = errors.New("missing required field")

// Document is a MindNode JSON export.
type Document struct {
	Title       string       `json:"title"`
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// Node is a node in the MindNode tree. Nodes holds direct children.
type Node struct {
	ID         ID          `json:"id"`
	Title      *StyledText `json:"title"`
	Note       *StyledText `json:"note,omitempty"`
	Location   *Point      `json:"location"`
	Nodes      []Node      `json:"nodes"`
	ShapeStyle *ShapeStyle `json:"shapeStyle,omitempty"`
}

// Connection is a cross link between two nodes.
type Connection struct {
	StartNodeID    ID          `json:"startNodeID"`
	EndNodeID      ID          `json:"endNodeID"`
	WayPointOffset *Point      `json:"wayPointOffset"`
	Title          *StyledText `json:"title,omitempty"`
}

// StyledText holds MindNode's HTML markup for titles and notes.
type StyledText struct {
	Text string `json:"text"`
}

// Point is a canvas position or offset.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ShapeStyle is the subset of node styling we read.
type ShapeStyle struct {
	BorderStrokeStyle *StrokeStyle `json:"borderStrokeStyle,omitempty"`
}

// StrokeStyle describes a node border.
type StrokeStyle struct {
	Color string `json:"color,omitempty"`
}

// Color returns the node's border color, or "" if it has none.
func (n *Node) Color() string {
	if n.ShapeStyle == nil || n.ShapeStyle.BorderStrokeStyle == nil {
		return ""
	}
	return n.ShapeStyle.BorderStrokeStyle.Color
}

// ID is an opaque node identifier. MindNode writes strings; numbers are
// accepted and stored in their shortest decimal form, so 1, 1.0 and 1e0
// name the same node.
type ID string

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if string(data) == "null" {
		*id = ""
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid node id %s", data)
	}
	*id = ID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Parse decodes a MindNode document and checks the fields conversion needs.
func Parse(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a MindNode document from r. encoding/json refuses input
// nested deeper than 10000 levels, and every node level takes two (the node
// object and its "nodes" array), so trees beyond roughly 5000 levels fail
// with a decode error.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode mind map: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate walks the tree and reports the first node without a title or
// location, or connection without a way point offset.
func (d *Document) Validate() error {
	type item struct {
		node *Node
		path string
	}

	stack := make([]item, 0, len(d.Nodes))
	for i := len(d.Nodes) - 1; i >= 0; i-- {
		stack = append(stack, item{&d.Nodes[i], fmt.Sprintf("nodes[%d]", i)})
	}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.node.Title == nil {
			return fmt.Errorf("%s: title: %w", it.path, ErrMissingField)
		}
		if it.node.Location == nil {
			return fmt.Errorf("%s: location: %w", it.path, ErrMissingField)
		}
		for i := len(it.node.Nodes) - 1; i >= 0; i-- {
			stack = append(stack, item{&it.node.Nodes[i], fmt.Sprintf("%s.nodes[%d]", it.path, i)})
		}
	}

	for i, c := range d.Connections {
		if c.WayPointOffset == nil {
			return fmt.Errorf("connections[%d]: wayPointOffset: %w", i, ErrMissingField)
		}
	}
	return nil
}

// Count returns the total number of nodes in the document tree.
func (d *Document) Count() int {
	total := 0
	stack := make([]*Node, 0, len(d.Nodes))
	for i := range d.Nodes {
		stack = append(stack, &d.Nodes[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		total++
		for i := range n.Nodes {
			stack = append(stack, &n.Nodes[i])
		}
	}
	return total
}
