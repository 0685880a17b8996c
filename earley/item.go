package earley

import (
	"fmt"
	"strings"

	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/lmctx"
	"github.com/npillmayer/scfg/scoring"
)

// Context vector slots. Argument i of a rule occupies slot i (i ≥ 1). The slots
// for gaps and wildcard copies follow in two ranges above the largest argument
// index, one slot per NL position.
func gapSlot(r *grammar.Rule, i int) int {
	return slotBase(r) + i
}

func wildSlot(r *grammar.Rule, i int) int {
	return slotBase(r) + r.LengthE() + 1 + i
}

func slotBase(r *grammar.Rule) int {
	base := 0
	for i := 0; i < r.LengthE(); i++ {
		if s := r.E(i); s.Kind == scfg.Nonterminal && s.Index > base {
			base = s.Index
		}
	}
	return base + 1
}

type itemState int8

const (
	pending    itemState = iota // waiting in agenda or completion heap
	done                        // processed
	superseded                  // replaced by a better item, reachable by back-pointers only
	transient                   // intermediate item of gap filling, never in the chart
)

// Item is an Earley item for generation. Items live in an arena of the chart
// and are referenced by their index (handle). Back-pointers are handles, too,
// with -1 denoting 'none'.
//
// An item's rule has been matched against MR tokens start…end-1, up to F-position
// dotF. dotE is the next NL position whose preceding gap has to be filled; an item
// is complete when dotF = |F| and dotE > |E|.
type Item struct {
	ref    grammar.RuleRef
	dotF   int
	dotE   int
	start  int
	end    int
	ctx    lmctx.Vector
	ctxKey string
	scores scoring.Vector
	score  float64
	prev   int // predecessor item
	child  int // completing item
	gap    int // completing gap item
	stamp  int
	state  itemState
}

// itemKey is the recombination key of items ending at the same position. Scores
// are not part of it.
type itemKey struct {
	ref   grammar.RuleRef
	dotF  int
	dotE  int
	start int
	ctx   string
}

func (it *Item) key() itemKey {
	return itemKey{ref: it.ref, dotF: it.dotF, dotE: it.dotE, start: it.start, ctx: it.ctxKey}
}

// Rule returns the rule reference of the item.
func (it *Item) Rule() grammar.RuleRef {
	return it.ref
}

// Score returns the inner score of the item.
func (it *Item) Score() float64 {
	return it.score
}

// Scores returns the feature scores of the item.
func (it *Item) Scores() scoring.Vector {
	return it.scores
}

// Span returns the MR positions covered.
func (it *Item) Span() (int, int) {
	return it.start, it.end
}

func (it *Item) completeF() bool {
	return it.dotF >= it.ref.Rule.LengthF()
}

func (it *Item) completeE() bool {
	return it.dotE > it.ref.Rule.LengthE()
}

// complete is a predicate: are both sides of the item completely generated?
func (it *Item) complete() bool {
	return it.completeF() && it.completeE()
}

// peekF returns the next MR symbol of the item. Must not be called for items
// which are complete on the MR side.
func (it *Item) peekF() scfg.Symbol {
	return it.ref.F(it.dotF)
}

func (it *Item) setContext(v lmctx.Vector) {
	it.ctx = v
	it.ctxKey = v.Key()
}

func (it *Item) String() string {
	var b strings.Builder
	r := it.ref.Rule
	g := r.Grammar()
	fmt.Fprintf(&b, "[%s →", g.NT.Name(r.LHS))
	for i := 0; i < r.LengthF(); i++ {
		if i == it.dotF {
			b.WriteString(" •")
		}
		b.WriteString(" ")
		b.WriteString(g.SymbolString(it.ref.F(i)))
	}
	if it.completeF() {
		b.WriteString(" •")
	}
	fmt.Fprintf(&b, " | %d, %d…%d %s %.4g]", it.dotE, it.start, it.end, it.ctx, it.score)
	return b.String()
}

// GapItem records the filling of a single word gap.
type GapItem struct {
	pos    int     // NL position the gap precedes
	words  []int32 // filler phrase
	scores scoring.Vector
	score  float64
}

// Words returns the filler phrase of a gap item.
func (gi *GapItem) Words() []int32 {
	return gi.words
}

// --- Sets of nonterminals --------------------------------------------------

// symset is a set of nonterminal ids, used to guard predictions.
type symset map[int]struct{}

var exists = struct{}{}

func (set symset) add(nt int) symset {
	if set == nil {
		set = symset{}
	}
	set[nt] = exists
	return set
}

func (set symset) contains(nt int) bool {
	if set == nil {
		return false
	}
	_, ok := set[nt]
	return ok
}
