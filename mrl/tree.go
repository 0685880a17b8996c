package mrl

import (
	"strings"

	"github.com/pkg/errors"
)

// Tree is an MR tree, with nodes numbered in pre-order. Trees are immutable after
// creation and may be shared between concurrent generation runs.
type Tree struct {
	Root  *Node
	sig   *Signature
	nodes []*Node // by id
	depth []int
	vars  []string // distinct variable names, by variable id
	varOf []int    // variable id of a variable leaf, -1 for other nodes
	binds []int    // variable id bound by a binder node, -1 for other nodes
}

// NewTree numbers the nodes of root in pre-order and sets the AC flags according
// to sig. sig may be nil.
func NewTree(root *Node, sig *Signature) *Tree {
	t := &Tree{Root: root, sig: sig}
	varIDs := make(map[string]int)
	var number func(n *Node, d int)
	number = func(n *Node, d int) {
		n.ID = len(t.nodes)
		n.AC = n.Kind == Atom && len(n.Children) > 1 && sig.IsAC(n.Label)
		t.nodes = append(t.nodes, n)
		t.depth = append(t.depth, d)
		v := -1
		if n.Kind == Var {
			var ok bool
			if v, ok = varIDs[n.Label]; !ok {
				v = len(t.vars)
				varIDs[n.Label] = v
				t.vars = append(t.vars, n.Label)
			}
		}
		t.varOf = append(t.varOf, v)
		t.binds = append(t.binds, -1)
		for _, ch := range n.Children {
			ch.Parent = n
			number(ch, d+1)
		}
	}
	number(root, 0)
	for _, n := range t.nodes {
		if n.Kind == Atom && sig.IsBinder(n.Label) && len(n.Children) > 0 && n.Children[0].Kind == Var {
			t.binds[n.ID] = t.varOf[n.Children[0].ID]
		}
	}
	return t
}

// Size returns the number of nodes.
func (t *Tree) Size() int {
	return len(t.nodes)
}

// Node returns the node with pre-order number id.
func (t *Tree) Node(id int) *Node {
	return t.nodes[id]
}

// Nodes returns all nodes in pre-order.
func (t *Tree) Nodes() []*Node {
	return t.nodes
}

// Depth returns the depth of node id; the root has depth 0.
func (t *Tree) Depth(id int) int {
	return t.depth[id]
}

// Signature returns the signature the tree has been created with.
func (t *Tree) Signature() *Signature {
	return t.sig
}

// Vars returns the distinct variable names of the tree.
func (t *Tree) Vars() []string {
	return t.vars
}

// VarOf returns the variable id of a variable leaf, or -1.
func (t *Tree) VarOf(id int) int {
	return t.varOf[id]
}

// BinderVar returns the variable id bound by a binder node, or -1.
func (t *Tree) BinderVar(id int) int {
	return t.binds[id]
}

// Linearize returns the prefix form of the tree.
func (t *Tree) Linearize() []string {
	return t.Root.Linearize()
}

func (t *Tree) String() string {
	return t.Root.String()
}

// FromLinear reconstructs a tree from its prefix form.
func FromLinear(tokens []string, sig *Signature) (*Tree, error) {
	if len(tokens) == 0 {
		return nil, errors.New("empty MR token sequence")
	}
	pos := 0
	var build func() (*Node, error)
	build = func() (*Node, error) {
		if pos >= len(tokens) {
			return nil, errors.New("MR token sequence ends unexpectedly")
		}
		tok := tokens[pos]
		pos++
		if tok == "(" || tok == ")" {
			return nil, errors.Errorf("unexpected bracket at MR token #%d", pos-1)
		}
		n := leafFromToken(tok)
		if pos < len(tokens) && tokens[pos] == "(" {
			pos++
			for pos < len(tokens) && tokens[pos] != ")" {
				ch, err := build()
				if err != nil {
					return nil, err
				}
				n.Append(ch)
			}
			if pos >= len(tokens) {
				return nil, errors.New("missing closing bracket in MR token sequence")
			}
			pos++
		}
		return n, nil
	}
	root, err := build()
	if err != nil {
		return nil, err
	}
	if pos != len(tokens) {
		return nil, errors.Errorf("trailing MR tokens after #%d", pos)
	}
	return NewTree(root, sig), nil
}

func leafFromToken(tok string) *Node {
	if strings.HasPrefix(tok, "$") && len(tok) > 1 {
		return &Node{Label: tok[1:], Kind: Var}
	}
	return &Node{Label: tok, Kind: Atom}
}

// FlattenAC returns a tree with nested AC operators merged into their parents,
// e.g. (and a (and b c)) becomes (and a b c). t itself is not modified.
func (t *Tree) FlattenAC() *Tree {
	var flatten func(n *Node) *Node
	flatten = func(n *Node) *Node {
		m := &Node{Label: n.Label, Kind: n.Kind, Index: n.Index}
		for _, ch := range n.Children {
			fch := flatten(ch)
			if n.Kind == Atom && fch.Kind == Atom && fch.Label == n.Label &&
				!fch.IsLeaf() && t.sig.IsAC(n.Label) {
				for _, gch := range fch.Children {
					m.Append(gch)
				}
				continue
			}
			m.Append(fch)
		}
		return m
	}
	return NewTree(flatten(t.Root), t.sig)
}
