package parse

import (
	"fmt"
	"strings"

	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/scoring"
)

type itemState int8

const (
	pending    itemState = iota // waiting in agenda or completion heap
	done                        // processed
	superseded                  // replaced by a better item, reachable by back-pointers only
)

// Item is an Earley item over the NL side of a rule. Items live in an arena of
// the chart and are referenced by handle; back-pointers are handles, too, with
// -1 denoting 'none'.
//
// The NL side has been matched against input words start…end-1, up to NL
// position dot. skipped is set if the gap before dot has already consumed
// input words.
type Item struct {
	ref     grammar.RuleRef
	dot     int
	skipped bool
	start   int
	end     int
	scores  scoring.Vector
	score   float64
	prev    int // predecessor item
	child   int // completing item
	stamp   int
	state   itemState
}

// itemKey is the recombination key of items ending at the same position.
type itemKey struct {
	ref     grammar.RuleRef
	dot     int
	skipped bool
	start   int
}

func (it *Item) key() itemKey {
	return itemKey{ref: it.ref, dot: it.dot, skipped: it.skipped, start: it.start}
}

// Rule returns the rule reference of the item.
func (it *Item) Rule() grammar.RuleRef {
	return it.ref
}

// Score returns the inner score of the item.
func (it *Item) Score() float64 {
	return it.score
}

// Span returns the input positions covered.
func (it *Item) Span() (int, int) {
	return it.start, it.end
}

func (it *Item) complete() bool {
	return it.dot >= it.ref.Rule.LengthE()
}

func (it *Item) String() string {
	var b strings.Builder
	r := it.ref.Rule
	g := r.Grammar()
	fmt.Fprintf(&b, "[%s →", g.NT.Name(r.LHS))
	for i := 0; i < r.LengthE(); i++ {
		if i == it.dot {
			b.WriteString(" •")
		}
		b.WriteString(" ")
		b.WriteString(g.NLSymbolString(r.E(i)))
	}
	if it.complete() {
		b.WriteString(" •")
	}
	fmt.Fprintf(&b, " | %d…%d %.4g]", it.start, it.end, it.score)
	return b.String()
}
