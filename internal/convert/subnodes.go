package convert

import "github.com/gerunddev/mindflat/internal/parser"

// Subnode is a normalized descendant of a top-level node, tagged with the
// normalized text of its parent and its own border color.
type Subnode struct {
	Node   `yaml:",inline"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`
	Parent string `json:"parent" yaml:"parent"`
}

type frame struct {
	node   *parser.Node
	parent string
}

// Subnodes flattens the children of every root, in pre-order. Roots
// themselves are not included.
func (n *Normalizer) Subnodes(roots []parser.Node) []Subnode {
	parents := make([]string, len(roots))
	for i := range roots {
		parents[i] = n.Node(&roots[i]).Text
	}
	return n.subnodes(roots, parents)
}

func (n *Normalizer) subnodes(roots []parser.Node, parents []string) []Subnode {
	out := []Subnode{}
	for i := range roots {
		out = append(out, n.Children(roots[i].Nodes, parents[i])...)
	}
	return out
}

// Children flattens children and all their descendants depth-first. The
// walk uses an explicit stack so tree depth is not bounded by the call
// stack.
func (n *Normalizer) Children(children []parser.Node, parent string) []Subnode {
	out := []Subnode{}

	stack := make([]frame, 0, len(children))
	stack = pushChildren(stack, children, parent)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rec := n.Node(f.node)
		out = append(out, Subnode{
			Node:   rec,
			Color:  f.node.Color(),
			Parent: f.parent,
		})

		stack = pushChildren(stack, f.node.Nodes, rec.Text)
	}

	return out
}

// pushChildren pushes in reverse so the first child is popped first.
func pushChildren(stack []frame, children []parser.Node, parent string) []frame {
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: &children[i], parent: parent})
	}
	return stack
}
