package parse

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/scoring"
	"github.com/npillmayer/scfg/symtab"
)

// maxRepush bounds how often an already processed item may be replaced by a
// better one. Only unary rule cycles with positive weights may improve items
// indefinitely.
const maxRepush = 8

// Scores closer than this are considered equal for recombination.
const scoreEpsilon = 1e-9

// Chart is the chart of a single parse. It is indexed by positions 0…n of the
// input words. A chart is not safe for concurrent use; create one chart per
// input (see Parser).
type Chart struct {
	parser    *Parser
	g         *grammar.Grammar
	conf      scfg.Config
	mrVoc     *symtab.Overlay
	nlVoc     *symtab.Overlay
	words     []string
	ids       []int // NL word ids of the input, -1 for unknown words
	items     []Item
	sets      [][]int
	intern    []map[itemKey][]int
	agenda    [][]int
	scans     [][]int
	comps     []*binaryheap.Heap
	toComps   []map[int][]int
	predicted []map[int]bool
	repushed  map[itemKey]int
	stamp     int
}

func newChart(p *Parser, words []string) *Chart {
	n := len(words)
	c := &Chart{
		parser:    p,
		g:         p.g,
		conf:      p.conf,
		mrVoc:     symtab.NewOverlay(p.g.MR),
		nlVoc:     symtab.NewOverlay(p.g.NL),
		words:     words,
		ids:       make([]int, n),
		sets:      make([][]int, n+1),
		intern:    make([]map[itemKey][]int, n+1),
		agenda:    make([][]int, n+1),
		scans:     make([][]int, n+1),
		comps:     make([]*binaryheap.Heap, n+1),
		toComps:   make([]map[int][]int, n+1),
		predicted: make([]map[int]bool, n+1),
		repushed:  make(map[itemKey]int),
	}
	for i, w := range words {
		if id, ok := p.g.NL.Lookup(w); ok {
			c.ids[i] = id
		} else {
			c.ids[i] = -1
		}
	}
	for i := 0; i <= n; i++ {
		c.intern[i] = make(map[itemKey][]int)
		c.toComps[i] = make(map[int][]int)
		c.predicted[i] = make(map[int]bool)
		c.comps[i] = binaryheap.NewWith(c.compareComps)
	}
	return c
}

// compareComps orders complete items by decreasing start position, then by
// decreasing time stamp.
func (c *Chart) compareComps(a, b interface{}) int {
	x, y := &c.items[a.(int)], &c.items[b.(int)]
	switch {
	case x.start > y.start:
		return -1
	case x.start < y.start:
		return 1
	case x.stamp > y.stamp:
		return -1
	case x.stamp < y.stamp:
		return 1
	}
	return 0
}

func (c *Chart) run() {
	n := len(c.words)
	tracer().Infof("parsing '%s' (%d words)", strings.Join(c.words, " "), n)
	c.predict(c.g.Start().ID, 0)
	for p := 0; p <= n; p++ {
		c.saturate(p)
		c.dumpPosition(p)
		if p < n {
			c.scan(p)
		}
	}
	tracer().Infof("chart has %d items", len(c.items))
}

func (c *Chart) saturate(p int) {
	for {
		if len(c.agenda[p]) > 0 {
			h := c.agenda[p][0]
			c.agenda[p] = c.agenda[p][1:]
			c.process(h, p)
			continue
		}
		if !c.comps[p].Empty() {
			v, _ := c.comps[p].Pop()
			h := v.(int)
			if c.items[h].state != pending {
				continue
			}
			c.items[h].state = done
			c.skip(h, p)
			c.complete(h, p)
			continue
		}
		return
	}
}

// process handles an incomplete item: it either waits for a nonterminal to
// be completed, or it waits for scanning input words.
func (c *Chart) process(h int, p int) {
	if c.items[h].state != pending {
		return
	}
	c.items[h].state = done
	c.skip(h, p)
	s := c.items[h].ref.Rule.E(c.items[h].dot)
	if s.Kind == scfg.Nonterminal {
		c.toComps[p][s.ID] = append(c.toComps[p][s.ID], h)
		c.predict(s.ID, p)
		return
	}
	c.scans[p] = append(c.scans[p], h)
}

// predict instantiates the rules for nonterminal lhs at position p. Every rule
// used for parsing consumes at least one word, thus there is nothing to predict
// at the end of the input.
func (c *Chart) predict(lhs int, p int) {
	if c.predicted[p][lhs] || p >= len(c.words) {
		return
	}
	c.predicted[p][lhs] = true
	for _, r := range c.g.Rules(lhs) {
		if !r.Active || !c.parser.usable[r.ID] {
			continue
		}
		if first := r.E(0); first.Kind == scfg.Terminal && r.Gap(0) == 0 && first.ID != c.ids[p] {
			continue
		}
		c.add(Item{
			ref:    grammar.Generic(r),
			start:  p,
			end:    p,
			prev:   -1,
			child:  -1,
			scores: r.Scores(),
		})
	}
}

// skip lets the gap before the dot of item h consume input words.
func (c *Chart) skip(h int, p int) {
	it := c.items[h] // copy
	gap := it.ref.Rule.Gap(it.dot)
	if it.skipped || gap == 0 {
		return
	}
	for l := 1; l <= gap && p+l <= len(c.words); l++ {
		cand := it
		cand.skipped = true
		cand.end = p + l
		cand.scores = it.scores.With(scoring.Gap, -float64(l))
		cand.prev = h
		cand.child = -1
		c.add(cand)
	}
}

// scan advances all items at position p expecting a word or a wildcard copy.
func (c *Chart) scan(p int) {
	for _, h := range c.scans[p] {
		it := c.items[h] // copy
		if it.state == superseded {
			continue
		}
		s := it.ref.Rule.E(it.dot)
		switch s.Kind {
		case scfg.Terminal:
			if s.ID == c.ids[p] {
				c.advance(it, h, p+1)
			}
		case scfg.Wildcard:
			if it.ref.Bound {
				phrase := strings.Fields(c.nlVoc.Name(it.ref.NLWord))
				if c.matches(p, phrase) {
					c.advance(it, h, p+len(phrase))
				}
				continue
			}
			wc := c.g.Wildcard(s.ID)
			for l := 1; l <= MaxWildcardWords && p+l <= len(c.words); l++ {
				phrase := strings.Join(c.words[p:p+l], " ")
				tok, ok := wc.Token(phrase)
				if !ok {
					continue
				}
				c.advance(c.specialize(it, tok, phrase), h, p+l)
			}
		}
	}
}

func (c *Chart) matches(p int, phrase []string) bool {
	if p+len(phrase) > len(c.words) {
		return false
	}
	for i, w := range phrase {
		if c.words[p+i] != w {
			return false
		}
	}
	return true
}

// specialize binds the wildcard of an item's rule to the MR token denoted by
// an input phrase.
func (c *Chart) specialize(it Item, tok string, phrase string) Item {
	r := it.ref.Rule
	it.ref = grammar.Specialize(r, c.mrVoc.Intern(tok), c.nlVoc.Intern(phrase))
	it.scores = it.scores.With(scoring.WP, float64(r.WildcardCopies()))
	tracer().Debugf("specialized rule %d for '%s' → %s", r.ID, phrase, tok)
	return it
}

func (c *Chart) advance(it Item, h int, end int) {
	it.dot++
	it.skipped = false
	it.end = end
	it.prev = h
	it.child = -1
	c.add(it)
}

// complete combines the complete item h with all items waiting for its LHS at
// its start position.
func (c *Chart) complete(h int, p int) {
	child := c.items[h] // copy
	lhs := child.ref.LHS()
	for _, w := range c.toComps[child.start][lhs] {
		parent := c.items[w] // copy
		if parent.state == superseded {
			continue
		}
		s := parent.ref.Rule.E(parent.dot)
		if s.Kind != scfg.Nonterminal || s.ID != lhs {
			panic("item waiting for completion does not expect the completed nonterminal")
		}
		cand := parent
		cand.dot++
		cand.skipped = false
		cand.end = p
		cand.scores = parent.scores.Add(child.scores)
		cand.prev = w
		cand.child = h
		c.add(cand)
	}
}

// add puts an item into the chart, recombining it with items of equal key.
// At most K items per key survive, all with distinct scores.
func (c *Chart) add(cand Item) {
	cand.score = c.conf.Weights.Dot(cand.scores)
	p := cand.end
	k := cand.key()
	slots := c.intern[p][k]
	for _, h := range slots {
		if math.Abs(c.items[h].score-cand.score) < scoreEpsilon {
			return
		}
	}
	if len(slots) < c.conf.K {
		h := c.alloc(cand)
		c.intern[p][k] = c.sortSlots(append(slots, h))
		return
	}
	worst := slots[len(slots)-1]
	if cand.score <= c.items[worst].score {
		return
	}
	if c.items[worst].state == pending {
		cand.stamp, cand.state = c.items[worst].stamp, pending
		c.items[worst] = cand
		c.sortSlots(slots)
		return
	}
	if c.repushed[k] >= maxRepush {
		tracer().Infof("item improves repeatedly, dropping %s", &cand)
		return
	}
	c.repushed[k]++
	c.items[worst].state = superseded
	h := c.alloc(cand)
	slots[len(slots)-1] = h
	c.sortSlots(slots)
}

func (c *Chart) sortSlots(slots []int) []int {
	sort.SliceStable(slots, func(i, j int) bool {
		x, y := &c.items[slots[i]], &c.items[slots[j]]
		if x.score != y.score {
			return x.score > y.score
		}
		return x.stamp > y.stamp
	})
	return slots
}

// alloc adds a pending item to the arena and enqueues it.
func (c *Chart) alloc(it Item) int {
	c.stamp++
	it.stamp = c.stamp
	it.state = pending
	c.items = append(c.items, it)
	h := len(c.items) - 1
	c.sets[it.end] = append(c.sets[it.end], h)
	if it.complete() {
		c.comps[it.end].Push(h)
	} else {
		c.agenda[it.end] = append(c.agenda[it.end], h)
	}
	tracer().Debugf("add [%d] %s", h, &c.items[h])
	return h
}

// --- Accessors -------------------------------------------------------------

// Item returns the item for a handle.
func (c *Chart) Item(h int) *Item {
	return &c.items[h]
}

// Items returns the handles of all items ending at position p which are
// currently part of the chart.
func (c *Chart) Items(p int) []int {
	var hs []int
	for _, h := range c.sets[p] {
		if c.items[h].state != superseded {
			hs = append(hs, h)
		}
	}
	return hs
}

// Roots returns the handles of the complete items for the start symbol
// spanning the whole input, ordered by descending score.
func (c *Chart) Roots() []int {
	n := len(c.words)
	start := c.g.Start().ID
	var hs []int
	for _, h := range c.sets[n] {
		it := &c.items[h]
		if it.state != superseded && it.start == 0 && it.ref.LHS() == start && it.complete() {
			hs = append(hs, h)
		}
	}
	c.sortSlots(hs)
	return hs
}

func (c *Chart) dumpPosition(p int) {
	if tracer().GetTraceLevel() < tracing.LevelDebug {
		return
	}
	w := "$"
	if p < len(c.words) {
		w = c.words[p]
	}
	tracer().Debugf("--- Position %04d: %-10s ---------------------------", p, w)
	for n, h := range c.Items(p) {
		tracer().Debugf("[%2d] %s", n+1, &c.items[h])
	}
}

// Dump writes the items of all positions to w. Intended for debugging.
func (c *Chart) Dump(w io.Writer) {
	for p := range c.sets {
		word := "$"
		if p < len(c.words) {
			word = c.words[p]
		}
		fmt.Fprintf(w, "--- %d: %s\n", p, word)
		for _, h := range c.Items(p) {
			fmt.Fprintf(w, "  %5d %s\n", h, &c.items[h])
		}
	}
}
