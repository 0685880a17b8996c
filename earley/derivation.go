package earley

import (
	"fmt"

	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/scanner"
	"github.com/npillmayer/scfg/scoring"
)

// --- Derivation listener ---------------------------------------------------

// Listener is a type for walking a derivation. Reduce is called for every rule
// instance, with the nodes for its NL side (words, gap words and argument
// sub-derivations) in NL order. span is the span of MR tokens the rule has been
// matched against. Terminal is called for every NL word; gap is set for words
// filling a word gap.
type Listener interface {
	Reduce(ref grammar.RuleRef, rhs []*RuleNode, span scanner.Span, level int) interface{}
	Terminal(word int32, name string, gap bool, level int) interface{}
}

// RuleNode represents a node occuring during a derivation walk.
type RuleNode struct {
	sym    scfg.Symbol
	Extent scanner.Span // span of MR tokens the rule matched
	Value  interface{}  // user defined value
}

// Symbol returns the grammar symbol a RuleNode refers to.
// It is either an NL terminal or the LHS of a rule.
func (rnode *RuleNode) Symbol() scfg.Symbol {
	return rnode.sym
}

// --- Walker ----------------------------------------------------------------

// WalkDerivation walks the derivation of a complete item. It calls the listener
// for every NL word and for every rule instance, bottom up.
func (c *Chart) WalkDerivation(h int, listener Listener) *RuleNode {
	tracer().Debugf("=== Walk ===============================")
	return c.walk(h, listener, 0)
}

// walk follows the back-pointers of item h to its prediction. Along the chain
// it collects the completed arguments and the filled gaps of the rule instance.
func (c *Chart) walk(h int, listener Listener, level int) *RuleNode {
	it := &c.items[h]
	if !it.complete() {
		if stuck(fmt.Sprintf("derivation walk reached incomplete item %v", it)) {
			return nil
		}
	}
	ref := it.ref
	r := ref.Rule
	children := make(map[int]int) // argument index → item
	gapWords := make(map[int][]int32)
	steps := 0
	for k := h; k >= 0; k = c.items[k].prev {
		x := &c.items[k]
		if x.child >= 0 {
			children[r.F(x.dotF-1).Index] = x.child
		}
		if x.gap >= 0 {
			gi := &c.gapItems[x.gap]
			gapWords[gi.pos] = gi.words
		}
		if steps++; steps > r.LengthF()+r.LengthE()+2 {
			if stuck(fmt.Sprintf("back-pointer chain of item %v too long", it)) {
				return nil
			}
			break
		}
	}
	var rhs []*RuleNode
	terminal := func(w int32, gap bool) {
		rhs = append(rhs, &RuleNode{
			sym:   scfg.T(int(w)),
			Value: listener.Terminal(w, c.nlVoc.Name(int(w)), gap, level+1),
		})
	}
	for i := 0; i <= r.LengthE(); i++ {
		for _, w := range gapWords[i] {
			terminal(w, true)
		}
		if i == r.LengthE() {
			break
		}
		s := ref.E(i)
		switch s.Kind {
		case scfg.Terminal:
			terminal(int32(s.ID), false)
		case scfg.Nonterminal:
			ch, ok := children[s.Index]
			if !ok {
				if stuck(fmt.Sprintf("argument #%d of item %v not completed", s.Index, it)) {
					return nil
				}
				continue
			}
			if node := c.walk(ch, listener, level+1); node != nil {
				rhs = append(rhs, node)
			}
		default:
			if stuck(fmt.Sprintf("unbound NL symbol %s in item %v", s, it)) {
				return nil
			}
		}
	}
	extent := scanner.Span{uint64(it.start), uint64(it.end)}
	value := listener.Reduce(ref, rhs, extent, level)
	tracer().Debugf("Tree node    %d|-----%s-----|%d", extent.From(), r.Grammar().NT.Name(r.LHS), extent.To())
	return &RuleNode{
		sym:    scfg.N(r.LHS, 0),
		Extent: extent,
		Value:  value,
	}
}

func stuck(msg string) bool {
	tracer().Errorf(msg)
	if gconf.GetBool("panic-on-chart-stuck") {
		panic(`Chart walk is stuck.

Configuration flag panic-on-chart-stuck is set to true. It is aimed at helping
to debug a generator and do a post-mortem of why it got stuck. However, if this
is a production environment and you did not expect this to panic, please unset
panic-on-chart-stuck to its default (false).

` + msg)
	}
	return true
}

// --- Derivation building listener ------------------------------------------

// derivationBuilder is a listener collecting the NL words of a derivation and
// building its derivation tree.
type derivationBuilder struct {
	c *Chart
}

type partial struct {
	words []int32
	nodes []*mrl.Node
}

var _ Listener = derivationBuilder{}

func (db derivationBuilder) Reduce(ref grammar.RuleRef, rhs []*RuleNode, span scanner.Span, level int) interface{} {
	g := ref.Rule.Grammar()
	node := mrl.NewNode(g.NT.Name(ref.LHS()))
	var words []int32
	for _, rn := range rhs {
		p := rn.Value.(partial)
		words = append(words, p.words...)
		for _, n := range p.nodes {
			node.Append(n)
		}
	}
	return partial{words: words, nodes: []*mrl.Node{node}}
}

func (db derivationBuilder) Terminal(word int32, name string, gap bool, level int) interface{} {
	leaf := &mrl.Node{Label: name, Kind: mrl.Atom}
	if gap {
		leaf.Label = "[" + name + "]"
	}
	return partial{words: []int32{word}, nodes: []*mrl.Node{leaf}}
}

// --- Derivations -----------------------------------------------------------

// Derivation is a generated NL sentence, together with its derivation tree.
type Derivation struct {
	score  float64
	scores scoring.Vector
	words  []int32
	terms  []string
	tree   *mrl.Node
	root   int
}

var _ scfg.Derivation = (*Derivation)(nil)

// Score returns the model score of the derivation, including the scores of
// the sentence boundaries.
func (d *Derivation) Score() float64 {
	return d.score
}

// Scores returns the feature scores of the derivation.
func (d *Derivation) Scores() scoring.Vector {
	return d.scores
}

// Words returns the word ids of the generated sentence.
func (d *Derivation) Words() []int32 {
	return d.words
}

// Terms returns the words of the generated sentence.
func (d *Derivation) Terms() []string {
	return d.terms
}

// Tree returns the derivation tree. Inner nodes are labeled with nonterminals,
// leaves with words; gap words are bracketed.
func (d *Derivation) Tree() *mrl.Node {
	return d.tree
}

// Root returns the handle of the root item of the derivation.
func (d *Derivation) Root() int {
	return d.root
}

func (d *Derivation) String() string {
	return scfg.JoinTerms(d.terms)
}

// derivation creates the derivation for root item h. adjust is the score of
// the sentence boundaries.
func (c *Chart) derivation(h int, adjust float64) *Derivation {
	node := c.WalkDerivation(h, derivationBuilder{c: c})
	if node == nil {
		return nil
	}
	p := node.Value.(partial)
	it := &c.items[h]
	d := &Derivation{
		scores: it.scores.With(scoring.LM, adjust),
		words:  p.words,
		tree:   p.nodes[0],
		root:   h,
	}
	d.score = it.score + c.conf.Weights.Of(scoring.LM)*adjust
	for _, w := range p.words {
		d.terms = append(d.terms, c.nlVoc.Name(int(w)))
	}
	return d
}

// Results returns the best K derivations of the chart.
func (c *Chart) Results() *scfg.ResultList {
	roots, adjust := c.roots()
	var ds []scfg.Derivation
	for i, h := range roots {
		if d := c.derivation(h, adjust[i]); d != nil {
			ds = append(ds, d)
		}
	}
	tracer().Infof("%d derivations", len(ds))
	return scfg.NewResultList(ds)
}
