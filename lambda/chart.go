package lambda

import (
	"math"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/lmctx"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/scoring"
	"github.com/npillmayer/scfg/symtab"
	"golang.org/x/exp/rand"
)

// maxClosure bounds the number of items created by unary rules per target.
const maxClosure = 10000

type compKey struct {
	nt     int
	target int
}

// Chart is the chart of a single generation run of the bottom-up generator.
// A chart is not safe for concurrent use; create one chart per input (see
// Generator).
type Chart struct {
	gen         *Generator
	g           *grammar.Grammar
	conf        scfg.Config
	scorer      *lmctx.Scorer
	mrVoc       *symtab.Overlay
	nlVoc       *symtab.Overlay
	tree        *mrl.Tree
	rnd         *rand.Rand
	targets     []*Target
	targetIndex map[targetKey]int
	items       []Item
	arcs        []Hyperarc
	intern      map[itemKey]int
	byTarget    [][]int            // items by target, in order of creation
	complete    map[compKey][]int // complete items by LHS and target
	waiting     map[compKey][]int // unary items by expected nonterminal and target
	goal        int
	stamp       int
	pruned      int
}

func newChart(gen *Generator, tree *mrl.Tree) *Chart {
	c := &Chart{
		gen:      gen,
		g:        gen.g,
		conf:     gen.conf,
		scorer:   lmctx.NewScorer(gen.model),
		mrVoc:    symtab.NewOverlay(gen.g.MR),
		nlVoc:    symtab.NewOverlay(gen.g.NL),
		tree:     tree,
		rnd:      rand.New(rand.NewSource(gen.conf.Seed)),
		intern:   make(map[itemKey]int),
		complete: make(map[compKey][]int),
		waiting:  make(map[compKey][]int),
		goal:     -1,
	}
	c.makeTargets()
	c.byTarget = make([][]int, len(c.targets))
	return c
}

// run fills the chart, target by target, and finally connects the complete
// items for the start symbol at the root to the goal item.
func (c *Chart) run() {
	tracer().Infof("generating from %s (%d targets)", c.tree, len(c.targets))
	for ti := range c.targets {
		c.predict(ti)
		c.advance(ti)
		c.closeUnary(ti)
		c.rescore(ti)
		c.pruneComplete(ti)
		c.rescore(ti)
	}
	c.makeGoal()
	tracer().Infof("chart has %d items, %d arcs, %d pruned", len(c.items), len(c.arcs), c.pruned)
}

// predict instantiates every rule whose pattern matches target ti.
func (c *Chart) predict(ti int) {
	t := c.targets[ti]
	node := c.tree.Node(t.Node)
	c.g.EachRule(func(r *grammar.Rule) {
		if !r.Active {
			return
		}
		switch r.Pattern.Kind {
		case mrl.Atom:
			if r.Pattern.Label != node.Label {
				return
			}
		case mrl.Wild, mrl.Var:
			if t.Partial || !node.IsLeaf() {
				return
			}
		}
		for _, tup := range c.match(r, t) {
			c.instantiate(r, ti, tup)
		}
	})
}

func (c *Chart) instantiate(r *grammar.Rule, ti int, tup Tuple) {
	ref := grammar.Generic(r)
	ini := c.gen.initial[r.ID]
	if tup.Wild >= 0 {
		tok := c.tree.Node(tup.Wild).Token()
		word := c.nlVoc.Intern(c.g.Wildcard(r.WildcardClass()).Word(tok))
		ref = grammar.Specialize(r, c.mrVoc.Intern(tok), word)
		ini = initialContextOf(c.scorer, ref)
	}
	cand := Item{
		ref:    ref,
		target: ti,
		args:   tup.Args,
		assign: tup.Assign,
		unary:  r.Pattern.Kind == mrl.Arg,
	}
	cand.setContext(ini.ctx)
	c.add(cand, nil, ref.Scores().With(scoring.LM, ini.lm))
}

// advance fills the arguments of the items of target ti, dot position by dot
// position. Before advancing the items at a dot position, their cells are
// pruned.
func (c *Chart) advance(ti int) {
	for d := 0; ; d++ {
		cells := c.cells(ti, func(it *Item) bool {
			return it.dot == d && !it.Complete() && !it.unary
		})
		if len(cells) == 0 {
			return
		}
		for _, cell := range cells {
			c.prune(cell)
			for _, h := range cell.Items() {
				arg := c.items[h].next()
				for _, ch := range c.complete[compKey{arg.NT, arg.Target}] {
					if c.items[ch].active {
						c.combine(h, ch)
					}
				}
			}
		}
	}
}

// closeUnary applies rules with a bare argument as pattern to the complete
// items of target ti, best items first.
func (c *Chart) closeUnary(ti int) {
	agenda := binaryheap.NewWith(c.compareBest)
	for _, h := range c.byTarget[ti] {
		if c.items[h].Complete() {
			agenda.Push(h)
		}
	}
	created := 0
	for !agenda.Empty() {
		v, _ := agenda.Pop()
		ch := v.(int)
		if !c.items[ch].active {
			continue
		}
		for _, u := range c.waiting[compKey{c.items[ch].ref.LHS(), ti}] {
			if !c.items[u].active {
				continue
			}
			if h, isNew := c.combine(u, ch); isNew {
				if created++; created > maxClosure {
					tracer().Errorf("too many unary derivations for target %s", c.targets[ti])
					return
				}
				agenda.Push(h)
			}
		}
	}
}

// compareBest orders items by descending Viterbi score, older items first.
func (c *Chart) compareBest(a, b interface{}) int {
	x, y := &c.items[a.(int)], &c.items[b.(int)]
	switch {
	case x.best > y.best:
		return -1
	case x.best < y.best:
		return 1
	case x.stamp < y.stamp:
		return -1
	case x.stamp > y.stamp:
		return 1
	}
	return 0
}

// combine fills the next argument of item h with the complete item ch.
func (c *Chart) combine(h, ch int) (int, bool) {
	parent := c.items[h] // copy
	child := &c.items[ch]
	arg := parent.next()
	if child.ref.LHS() != arg.NT || child.target != arg.Target || !child.Complete() {
		panic("combining items which do not fit")
	}
	ctx, d := c.scorer.Splice(parent.ctx, arg.Index, child.ctx, c.scorer.Pending(child.ctx))
	cand := Item{
		ref:    parent.ref,
		target: parent.target,
		args:   parent.args,
		assign: parent.assign,
		dot:    parent.dot + 1,
		unary:  parent.unary,
	}
	cand.setContext(ctx)
	var scores scoring.Vector
	scores[scoring.LM] = d
	return c.add(cand, []int{h, ch}, scores)
}

// add adds a derivation of an item to the chart: a hyperarc with its tails and
// scores. If an item with the same key exists, the arc is added to it; otherwise
// a new item is created. Arcs which would close a cycle are rejected, keeping
// the hypergraph acyclic.
func (c *Chart) add(cand Item, tails []int, scores scoring.Vector) (int, bool) {
	arc := Hyperarc{tails: tails, scores: scores, score: c.conf.Weights.Dot(scores)}
	inner := arc.score
	for _, t := range tails {
		inner += c.items[t].best
	}
	k := cand.key()
	if h, ok := c.intern[k]; ok {
		it := &c.items[h]
		if c.reaches(tails, h) {
			tracer().Debugf("dropping cyclic arc into %s", it)
			return h, false
		}
		c.addArc(h, arc)
		if inner > it.best {
			it.best = inner
		}
		return h, false
	}
	c.stamp++
	cand.stamp = c.stamp
	cand.best = inner
	cand.active = true
	c.items = append(c.items, cand)
	h := len(c.items) - 1
	c.intern[k] = h
	c.byTarget[cand.target] = append(c.byTarget[cand.target], h)
	c.addArc(h, arc)
	it := &c.items[h]
	if it.Complete() {
		key := compKey{it.ref.LHS(), it.target}
		c.complete[key] = append(c.complete[key], h)
	} else if it.unary {
		key := compKey{it.next().NT, it.next().Target}
		c.waiting[key] = append(c.waiting[key], h)
	}
	tracer().Debugf("add [%d] %s", h, it)
	return h, true
}

// reaches is a predicate: is item h among tails or their sub-derivations?
// Tails either belong to the target of their head or to a proper sub-target,
// so the search stays within the target of h.
func (c *Chart) reaches(tails []int, h int) bool {
	ti := c.items[h].target
	seen := make(map[int]bool)
	stack := append([]int(nil), tails...)
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t == h {
			return true
		}
		if seen[t] || c.items[t].target != ti {
			continue
		}
		seen[t] = true
		for _, a := range c.items[t].arcs {
			stack = append(stack, c.arcs[a].tails...)
		}
	}
	return false
}

func (c *Chart) addArc(h int, arc Hyperarc) {
	arc.head = h
	c.arcs = append(c.arcs, arc)
	c.items[h].arcs = append(c.items[h].arcs, len(c.arcs)-1)
}

// rescore recomputes the Viterbi scores of the items of target ti. An item may
// have tails created after it, so tails of the same target are scored first.
// Items without a derivation over active items are deactivated.
func (c *Chart) rescore(ti int) {
	done := make(map[int]bool)
	for _, h := range c.byTarget[ti] {
		c.viterbi(h, ti, done)
	}
}

func (c *Chart) viterbi(h int, ti int, done map[int]bool) {
	if done[h] {
		return
	}
	done[h] = true
	if !c.items[h].active {
		return
	}
	best := math.Inf(-1)
	for _, a := range c.items[h].arcs {
		for _, t := range c.arcs[a].tails {
			if c.items[t].target == ti {
				c.viterbi(t, ti, done)
			}
		}
		if s, ok := c.arcScore(a); ok && s > best {
			best = s
		}
	}
	it := &c.items[h]
	if math.IsInf(best, -1) {
		it.active = false
		return
	}
	it.best = best
}

// arcScore returns the Viterbi score of the head of an arc via this arc.
func (c *Chart) arcScore(a int) (float64, bool) {
	arc := &c.arcs[a]
	s := arc.score
	for _, t := range arc.tails {
		if !c.items[t].active {
			return 0, false
		}
		s += c.items[t].best
	}
	return s, true
}

// pruneComplete prunes the cells of the complete items of target ti.
func (c *Chart) pruneComplete(ti int) {
	for _, cell := range c.cells(ti, (*Item).Complete) {
		c.prune(cell)
	}
}

// cells groups the active items of target ti selected by pred into cells.
// Cells are returned in order of their first item.
func (c *Chart) cells(ti int, pred func(*Item) bool) []*Cell {
	var cells []*Cell
	index := make(map[cellKey]*Cell)
	cov := c.targets[ti].covKey
	for _, h := range c.byTarget[ti] {
		it := &c.items[h]
		if !it.active || !pred(it) {
			continue
		}
		k := it.cellKey(cov)
		cell, ok := index[k]
		if !ok {
			cell = &Cell{key: k}
			index[k] = cell
			cells = append(cells, cell)
		}
		cell.Add(h, it.best)
	}
	return cells
}

func (c *Chart) prune(cell *Cell) {
	dropped := cell.Prune(c.conf.PruneK, c.rnd)
	for _, h := range dropped {
		c.items[h].active = false
	}
	if len(dropped) > 0 {
		tracer().Debugf("pruned %d items of cell %s", len(dropped), cell.key)
		c.pruned += len(dropped)
	}
}

// makeGoal creates the goal item, with an arc from every complete item for the
// start symbol covering the whole tree. The arcs carry the scores of the
// sentence boundaries.
func (c *Chart) makeGoal() {
	root := c.targetIndex[targetKey{0, fullMask(c.tree.Root)}]
	c.stamp++
	c.items = append(c.items, Item{goal: true, active: true, target: root, stamp: c.stamp})
	c.goal = len(c.items) - 1
	best := math.Inf(-1)
	for _, h := range c.complete[compKey{c.g.Start().ID, root}] {
		if !c.items[h].active {
			continue
		}
		var scores scoring.Vector
		scores[scoring.LM] = c.scorer.Close(c.items[h].ctx)
		arc := Hyperarc{tails: []int{h}, scores: scores, score: c.conf.Weights.Dot(scores)}
		c.addArc(c.goal, arc)
		if s, _ := c.arcScore(len(c.arcs) - 1); s > best {
			best = s
		}
	}
	c.items[c.goal].best = best
	tracer().Debugf("goal has %d arcs", len(c.items[c.goal].arcs))
}

// --- Accessors -------------------------------------------------------------

// Targets returns the targets of the chart in processing order.
func (c *Chart) Targets() []*Target {
	return c.targets
}

// Item returns the item for a handle.
func (c *Chart) Item(h int) *Item {
	return &c.items[h]
}

// Arc returns the hyperarc for a handle.
func (c *Chart) Arc(a int) *Hyperarc {
	return &c.arcs[a]
}

// Items returns the handles of the active items of target ti.
func (c *Chart) Items(ti int) []int {
	var hs []int
	for _, h := range c.byTarget[ti] {
		if c.items[h].active {
			hs = append(hs, h)
		}
	}
	return hs
}

// Goal returns the handle of the goal item.
func (c *Chart) Goal() int {
	return c.goal
}

// Pruned returns the number of items discarded by pruning.
func (c *Chart) Pruned() int {
	return c.pruned
}

// Word returns the NL word for a word id, including words introduced by
// wildcards during this generation run.
func (c *Chart) Word(id int32) string {
	return c.nlVoc.Name(int(id))
}
