package lambda

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/lmctx"
	"github.com/npillmayer/scfg/scoring"
)

// Item is an instance of a rule, matched against a target. Its arguments are
// bound to sub-targets; arguments left of dot have been filled with complete
// items. Items live in an arena of the chart and are referenced by handle.
//
// An item is a node of a hypergraph: every way of deriving it is recorded as
// an incoming hyperarc. Items agreeing in rule, target, argument bindings, dot
// and context vector are recombined into one, collecting all of their arcs.
type Item struct {
	ref    grammar.RuleRef
	target int
	args   []ArgBinding
	assign Assignment
	dot    int
	ctx    lmctx.Vector
	ctxKey string
	arcs   []int
	best   float64 // Viterbi score
	stamp  int
	active bool
	unary  bool // the pattern of the rule is a bare argument
	goal   bool
	// lazy k-best
	kbest []*candidate
	cand  *SimpleHeap
	seen  *hashset.Set
}

type itemKey struct {
	ref    grammar.RuleRef
	target int
	dot    int
	args   string
	ctx    string
}

func (it *Item) key() itemKey {
	var b strings.Builder
	for _, a := range it.args {
		fmt.Fprintf(&b, "%d@%d ", a.Index, a.Target)
	}
	b.WriteString(it.assign.String())
	return itemKey{ref: it.ref, target: it.target, dot: it.dot, args: b.String(), ctx: it.ctxKey}
}

// Rule returns the rule reference of the item.
func (it *Item) Rule() grammar.RuleRef {
	return it.ref
}

// Target returns the index of the target of the item.
func (it *Item) Target() int {
	return it.target
}

// Score returns the score of the best derivation of the item.
func (it *Item) Score() float64 {
	return it.best
}

// Active is a predicate: has the item survived pruning?
func (it *Item) Active() bool {
	return it.active
}

// Complete is a predicate: are all arguments filled?
func (it *Item) Complete() bool {
	return it.dot >= len(it.args)
}

// next returns the argument binding to fill next.
func (it *Item) next() ArgBinding {
	return it.args[it.dot]
}

func (it *Item) setContext(v lmctx.Vector) {
	it.ctx = v
	it.ctxKey = v.Key()
}

func (it *Item) cellKey(cov string) cellKey {
	return cellKey{cov: cov, arity: len(it.args), dot: it.dot}
}

func (it *Item) String() string {
	if it.goal {
		return fmt.Sprintf("[GOAL %d arcs]", len(it.arcs))
	}
	r := it.ref.Rule
	g := r.Grammar()
	var b strings.Builder
	fmt.Fprintf(&b, "[%s → %s @%d", g.NT.Name(r.LHS), r.MR(), it.target)
	for i, a := range it.args {
		if i == it.dot {
			b.WriteString(" •")
		}
		fmt.Fprintf(&b, " %s#%d@%d", g.NT.Name(a.NT), a.Index, a.Target)
	}
	if it.Complete() {
		b.WriteString(" •")
	}
	fmt.Fprintf(&b, " %s %s %.4g]", it.assign, it.ctx, it.best)
	return b.String()
}

// Hyperarc records one way of deriving an item. Prediction arcs have no tails,
// completion arcs have two (the item before advancing the dot, and the complete
// item filling the argument). Arcs into the goal item have a single tail, a
// complete item for the start symbol.
type Hyperarc struct {
	head   int
	tails  []int
	scores scoring.Vector
	score  float64
}

// Tails returns the tail items of the arc.
func (arc *Hyperarc) Tails() []int {
	return arc.tails
}

// Scores returns the feature scores added by the arc.
func (arc *Hyperarc) Scores() scoring.Vector {
	return arc.scores
}

// candidate is a derivation of an item: a hyperarc together with a rank into
// the derivation list of each of its tails.
type candidate struct {
	arc    int
	ptrs   []int
	scores scoring.Vector
	score  float64
}

// derivKey identifies a candidate by arc and ranks.
type derivKey struct {
	arc    int
	p1, p2 int
}

func (d *candidate) key() derivKey {
	k := derivKey{arc: d.arc, p1: -1, p2: -1}
	if len(d.ptrs) > 0 {
		k.p1 = d.ptrs[0]
	}
	if len(d.ptrs) > 1 {
		k.p2 = d.ptrs[1]
	}
	return k
}
