package earley

import (
	"math"
	"sort"
	"strings"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/gaps"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/lmctx"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/scoring"
	"github.com/npillmayer/scfg/symtab"
)

// maxRepush bounds how often an already processed item may be replaced by a
// better one and be processed again. Only unary rule cycles with positive
// weights may improve items indefinitely.
const maxRepush = 8

// Scores closer than this are considered equal for recombination.
const scoreEpsilon = 1e-9

type inputToken struct {
	id    int // id in the MR overlay of the chart
	token string
	isVar bool
}

// Chart is the chart of a single generation run. It is indexed by positions
// 0…n of the linearized MR. A chart is not safe for concurrent use; create
// one chart per input (see Generator).
//
// All items live in an arena (slice) and are referenced by handle. Items ending
// at a position are recombined by intern maps, holding up to K handles per
// item key, ordered by descending inner score.
type Chart struct {
	gen            *Generator
	g              *grammar.Grammar
	conf           scfg.Config
	scorer         *lmctx.Scorer
	mrVoc          *symtab.Overlay
	nlVoc          *symtab.Overlay
	tree           *mrl.Tree
	input          []inputToken
	items          []Item
	gapItems       []GapItem
	sets           [][]int              // all items ending at a position
	intern         []map[itemKey][]int  // recombination per position
	agenda         [][]int              // FIFO of incomplete items per position
	scans          [][]int              // processed items expecting a terminal
	comps          []*binaryheap.Heap   // complete items per position
	toComps        []map[int][]int      // waiting items per position and nonterminal
	predicted      []symset             // nonterminals predicted per position
	repushed       map[itemKey]int
	stamp          int
	gapCompletions int
}

func newChart(gen *Generator, tree *mrl.Tree) *Chart {
	tokens := tree.Linearize()
	n := len(tokens)
	c := &Chart{
		gen:       gen,
		g:         gen.g,
		conf:      gen.conf,
		scorer:    lmctx.NewScorer(gen.model),
		mrVoc:     symtab.NewOverlay(gen.g.MR),
		nlVoc:     symtab.NewOverlay(gen.g.NL),
		tree:      tree,
		sets:      make([][]int, n+1),
		intern:    make([]map[itemKey][]int, n+1),
		agenda:    make([][]int, n+1),
		scans:     make([][]int, n+1),
		comps:     make([]*binaryheap.Heap, n+1),
		toComps:   make([]map[int][]int, n+1),
		predicted: make([]symset, n+1),
		repushed:  make(map[itemKey]int),
	}
	for _, tok := range tokens {
		c.input = append(c.input, inputToken{
			id:    c.mrVoc.Intern(tok),
			token: tok,
			isVar: strings.HasPrefix(tok, "$"),
		})
	}
	for p := 0; p <= n; p++ {
		c.intern[p] = make(map[itemKey][]int)
		c.toComps[p] = make(map[int][]int)
		c.comps[p] = binaryheap.NewWith(c.compareComps)
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

// run fills the chart, position by position.
func (c *Chart) run() {
	n := len(c.input)
	tracer().Infof("generating from %s (%d tokens)", c.tree, n)
	c.predict(c.g.Start().ID, 0)
	for p := 0; p <= n; p++ {
		c.saturate(p)
		dumpPosition(c, p)
		if p < n {
			c.scan(p)
		}
	}
	tracer().Infof("chart has %d items, %d gap items", len(c.items), len(c.gapItems))
}

// saturate processes position p until no more items are pending. Incomplete
// items are processed first; complete items are then taken from the
// completion heap, one at a time.
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
				continue // superseded while waiting in the heap
			}
			c.items[h].state = done
			c.complete(h, p)
			continue
		}
		return
	}
}

// process handles an incomplete item: it either waits for a nonterminal to
// be completed, or it waits for scanning a terminal.
func (c *Chart) process(h int, p int) {
	if c.items[h].state != pending {
		return
	}
	c.items[h].state = done
	s := c.items[h].peekF()
	if s.Kind == scfg.Nonterminal {
		c.toComps[p][s.ID] = append(c.toComps[p][s.ID], h)
		c.predict(s.ID, p)
		return
	}
	c.scans[p] = append(c.scans[p], h)
}

// predict instantiates the rules for nonterminal lhs at position p. Rules which
// cannot start with the MR token at p are filtered out.
func (c *Chart) predict(lhs int, p int) {
	if c.predicted[p].contains(lhs) {
		return
	}
	c.predicted[p] = c.predicted[p].add(lhs)
	if p >= len(c.input) {
		return // every rule consumes at least one MR token
	}
	tok := c.input[p]
	for _, r := range c.g.Rules(lhs) {
		if !r.Active || !c.g.CanStartRule(r, tok.id, tok.token, tok.isVar) {
			continue
		}
		ini := c.gen.initial[r.ID]
		cand := Item{
			ref:   grammar.Generic(r),
			start: p,
			end:   p,
			prev:  -1,
			child: -1,
			gap:   -1,
		}
		cand.setContext(ini.ctx)
		cand.scores = r.Scores().With(scoring.LM, ini.lm)
		c.add(cand)
	}
}

// scan advances all items at position p expecting an MR terminal, a variable
// or a wildcard matching the input token at p. Scanning is done after position
// p is saturated, i.e. when the items at p carry their final scores.
func (c *Chart) scan(p int) {
	tok := c.input[p]
	for _, h := range c.scans[p] {
		it := c.items[h] // copy
		if it.state == superseded {
			continue
		}
		s := it.peekF()
		switch s.Kind {
		case scfg.Terminal:
			if tok.isVar || s.ID != tok.id {
				continue
			}
		case scfg.Variable:
			if !tok.isVar {
				continue
			}
		case scfg.Wildcard:
			if tok.isVar || !c.g.Wildcard(s.ID).Match(tok.token) {
				continue
			}
			it = c.specialize(it, tok)
		default:
			continue
		}
		it.dotF++
		it.end = p + 1
		it.prev = h
		it.child = -1
		it.gap = -1
		c.add(it)
	}
}

// specialize binds the wildcard of an item's rule to an MR token. The copies
// of the wildcard on the NL side are spliced into the context vector.
func (c *Chart) specialize(it Item, tok inputToken) Item {
	r := it.ref.Rule
	wc := c.g.Wildcard(r.WildcardClass())
	word := c.nlVoc.Intern(wc.Word(tok.token))
	it.ref = grammar.Specialize(r, tok.id, word)
	ctx, lm := it.ctx, 0.0
	for i := 0; i < r.LengthE(); i++ {
		if r.E(i).Kind == scfg.Wildcard {
			var d float64
			ctx, d = c.scorer.Phrase(ctx, wildSlot(r, i), []int32{int32(word)})
			lm += d
		}
	}
	it.setContext(ctx)
	it.scores = it.scores.With(scoring.LM, lm).With(scoring.WP, float64(r.WildcardCopies()))
	tracer().Debugf("specialized rule %d for %s → '%s'", r.ID, tok.token, c.nlVoc.Name(word))
	return it
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
		s := parent.peekF()
		if s.Kind != scfg.Nonterminal || s.ID != lhs {
			panic("item waiting for completion does not expect the completed nonterminal")
		}
		ctx, d := c.scorer.Splice(parent.ctx, s.Index, child.ctx, c.scorer.Pending(child.ctx))
		cand := parent
		cand.dotF++
		cand.end = p
		cand.setContext(ctx)
		cand.scores = parent.scores.Add(child.scores).With(scoring.LM, d)
		cand.prev = w
		cand.child = h
		cand.gap = -1
		c.add(cand)
	}
}

// add adds a candidate item to the chart. Items which are complete on the MR
// side get their gaps filled first.
func (c *Chart) add(cand Item) {
	if cand.completeF() && !cand.completeE() {
		for _, it := range c.fillGaps(cand) {
			c.insert(it)
		}
		return
	}
	c.insert(cand)
}

// fillGaps fills all the gaps of an item, which has to be complete on the MR
// side. It returns one item per combination of gap fillers.
func (c *Chart) fillGaps(cand Item) []Item {
	r := cand.ref.Rule
	if !r.HasGaps() {
		cand.dotE = r.LengthE() + 1
		return []Item{cand}
	}
	out := c.fillFrom(cand, nil)
	c.gapCompletions += len(out)
	tracer().Debugf("filled gaps of rule %d: %d candidates", r.ID, len(out))
	return out
}

func (c *Chart) fillFrom(cand Item, out []Item) []Item {
	r := cand.ref.Rule
	n := r.LengthE()
	for cand.dotE <= n && r.Gap(cand.dotE) == 0 { // zero-length gaps advance the dot
		cand.dotE++
	}
	if cand.dotE > n {
		return append(out, cand)
	}
	i := cand.dotE
	before, after := gaps.Start, gaps.End
	if i > 0 {
		before = cand.ref.E(i - 1)
	}
	if i < n {
		after = cand.ref.E(i)
	}
	fillers := gaps.Candidates(c.gen.fillers.Fillers(before, after), r.Gap(i))
	ph := c.alloc(cand, transient)
	for _, f := range fillers {
		ctx, d := c.scorer.Phrase(cand.ctx, gapSlot(r, i), f.Words)
		gi := GapItem{pos: i, words: f.Words, scores: f.Scores.With(scoring.LM, d)}
		gi.score = c.conf.Weights.Dot(gi.scores)
		c.gapItems = append(c.gapItems, gi)
		next := cand
		next.setContext(ctx)
		next.scores = cand.scores.Add(gi.scores)
		next.dotE = i + 1
		next.prev = ph
		next.child = -1
		next.gap = len(c.gapItems) - 1
		out = c.fillFrom(next, out)
	}
	return out
}

// insert puts an item into the chart, recombining it with items of equal key.
// At most K items per key survive, all with distinct scores.
func (c *Chart) insert(cand Item) {
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
		h := c.alloc(cand, pending)
		c.intern[p][k] = c.sortSlots(append(slots, h))
		c.sets[p] = append(c.sets[p], h)
		c.enqueue(h)
		return
	}
	worst := slots[len(slots)-1]
	if cand.score <= c.items[worst].score {
		return
	}
	if c.items[worst].state == pending { // replace in place
		stamp := c.items[worst].stamp
		cand.stamp, cand.state = stamp, pending
		c.items[worst] = cand
		c.sortSlots(slots)
		tracer().Debugf("replaced  %s", &c.items[worst])
		return
	}
	if c.repushed[k] >= maxRepush {
		tracer().Infof("item improves repeatedly, dropping %s", &cand)
		return
	}
	c.repushed[k]++
	c.items[worst].state = superseded
	h := c.alloc(cand, pending)
	slots[len(slots)-1] = h
	c.sortSlots(slots)
	c.sets[p] = append(c.sets[p], h)
	c.enqueue(h)
}

// sortSlots sorts handles by descending score, later items first for equal
// scores.
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

func (c *Chart) alloc(it Item, state itemState) int {
	c.stamp++
	it.stamp = c.stamp
	it.state = state
	c.items = append(c.items, it)
	h := len(c.items) - 1
	if state != transient {
		tracer().Debugf("add [%d] %s", h, &c.items[h])
	}
	return h
}

func (c *Chart) enqueue(h int) {
	it := &c.items[h]
	if it.complete() {
		c.comps[it.end].Push(h)
		return
	}
	c.agenda[it.end] = append(c.agenda[it.end], h)
}

// --- Accessors -------------------------------------------------------------

// Size returns the number of positions of the chart, i.e. the number of MR
// tokens + 1.
func (c *Chart) Size() int {
	return len(c.sets)
}

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

// GapCompletions returns the number of gap-filled candidate items produced,
// before recombination.
func (c *Chart) GapCompletions() int {
	return c.gapCompletions
}

// Word returns the NL word for a word id, including words introduced by
// wildcards during this generation run.
func (c *Chart) Word(id int32) string {
	return c.nlVoc.Name(int(id))
}

// Roots returns the handles of the complete items for the start symbol
// spanning the whole input, ordered by descending score (including the
// scores of the sentence boundaries). At most K handles are returned.
func (c *Chart) Roots() []int {
	roots, _ := c.roots()
	return roots
}

func (c *Chart) roots() ([]int, []float64) {
	n := len(c.input)
	start := c.g.Start().ID
	var hs []int
	adjust := make(map[int]float64)
	for _, h := range c.sets[n] {
		it := &c.items[h]
		if it.state == superseded || it.start != 0 || it.ref.LHS() != start || !it.complete() {
			continue
		}
		hs = append(hs, h)
		adjust[h] = c.scorer.Close(it.ctx) // sentence boundaries, per root item
	}
	total := func(h int) float64 {
		return c.items[h].score + c.conf.Weights.Of(scoring.LM)*adjust[h]
	}
	sort.SliceStable(hs, func(i, j int) bool {
		si, sj := total(hs[i]), total(hs[j])
		if si != sj {
			return si > sj
		}
		return c.items[hs[i]].stamp > c.items[hs[j]].stamp
	})
	if len(hs) > c.conf.K {
		hs = hs[:c.conf.K]
	}
	adj := make([]float64, len(hs))
	for i, h := range hs {
		adj[i] = adjust[h]
	}
	return hs, adj
}
