/*
Package mrl handles meaning representations (MRs) and the MR sides of grammar rules.

MRs are written as s-expressions:

    (answer (capital (state texas)))
    (count $0 (and (river $0) (loc $0 texas)))

Atoms are words, numbers or quoted strings. Variables start with '$'. Rule patterns
may additionally contain nonterminal arguments and wildcards:

    (answer State#1)          nonterminal State, argument index 1
    (population *num)         wildcard of class 'num'

MR trees are numbered in pre-order, starting with 0 at the root. A signature declares
which operators are associative-commutative (AC) and which operators bind variables.

For generators working on token sequences, trees are linearized in prefix form:

    answer ( capital ( state ( texas ) ) )

i.e., a node with children is written as its label, followed by its bracketed
children; leaves are written as their label.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package mrl

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'scfg.mrl'.
func tracer() tracing.Trace {
	return tracing.Select("scfg.mrl")
}

// NodeKind is a category type for MR nodes.
type NodeKind int8

// Kinds of MR nodes. Args and wildcards occur in rule patterns only.
const (
	Atom NodeKind = iota // an operator (with children) or a constant
	Var                  // a variable, e.g. $0
	Arg                  // a nonterminal argument of a rule pattern, e.g. State#1
	Wild                 // a wildcard of a rule pattern, e.g. *num
)

// Node is a node of an MR tree or of a rule pattern.
type Node struct {
	ID       int    // pre-order number within its tree
	Label    string // operator, constant, variable name, nonterminal or wildcard class
	Kind     NodeKind
	Index    int // argument index for Arg nodes
	AC       bool
	Parent   *Node
	Children []*Node
}

// NewNode creates an atom node with children.
func NewNode(label string, children ...*Node) *Node {
	n := &Node{Label: label, Kind: Atom}
	for _, ch := range children {
		n.Append(ch)
	}
	return n
}

// Append appends a rightmost child. Returns n (for chaining).
func (n *Node) Append(ch *Node) *Node {
	ch.Parent = n
	n.Children = append(n.Children, ch)
	return n
}

// IsLeaf is a predicate.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Size returns the number of nodes of the subtree rooted at n.
func (n *Node) Size() int {
	s := 1
	for _, ch := range n.Children {
		s += ch.Size()
	}
	return s
}

// Each calls f for every node of the subtree rooted at n, in pre-order.
func (n *Node) Each(f func(*Node)) {
	f(n)
	for _, ch := range n.Children {
		ch.Each(f)
	}
}

// Token returns the token a leaf is written as.
func (n *Node) Token() string {
	switch n.Kind {
	case Var:
		return "$" + n.Label
	case Arg:
		return fmt.Sprintf("%s#%d", n.Label, n.Index)
	case Wild:
		return "*" + n.Label
	}
	return n.Label
}

// String returns the s-expression for the subtree rooted at n.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n.IsLeaf() {
		b.WriteString(n.Token())
		return
	}
	b.WriteString("(")
	b.WriteString(n.Label)
	for _, ch := range n.Children {
		b.WriteString(" ")
		ch.write(b)
	}
	b.WriteString(")")
}

// Linearize returns the prefix form of the subtree rooted at n.
func (n *Node) Linearize() []string {
	return n.linearize(nil)
}

func (n *Node) linearize(tokens []string) []string {
	tokens = append(tokens, n.Token())
	if n.IsLeaf() {
		return tokens
	}
	tokens = append(tokens, "(")
	for _, ch := range n.Children {
		tokens = ch.linearize(tokens)
	}
	return append(tokens, ")")
}

// Equal is a predicate for structural equality of subtrees, including the AC flags.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Label != other.Label || n.Kind != other.Kind || n.Index != other.Index ||
		n.AC != other.AC || len(n.Children) != len(other.Children) {
		return false
	}
	for i, ch := range n.Children {
		if !ch.Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Unquote strips the quotes from a quoted string constant.
func Unquote(label string) string {
	if len(label) >= 2 {
		if (label[0] == '\'' && label[len(label)-1] == '\'') ||
			(label[0] == '"' && label[len(label)-1] == '"') {
			return label[1 : len(label)-1]
		}
	}
	return label
}
