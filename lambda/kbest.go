package lambda

import (
	"github.com/emirpasic/gods/sets/hashset"
)

// Lazy k-best extraction, following algorithm 3 of Huang & Chiang (2005).
//
// Every item keeps the list of its derivations found so far (kbest), best
// first, and a heap of candidates for the next one. A candidate is a hyperarc
// together with a rank for each of its tails. Candidate heaps are created on
// first request, containing the best derivation of each incoming arc. After a
// candidate has been moved to kbest, its successors (one tail rank advanced)
// become candidates.

// lazyKthBest extends the derivation list of item v to k entries, if possible.
func (c *Chart) lazyKthBest(v int, k int) {
	if c.items[v].cand == nil {
		c.getCandidates(v)
	}
	for len(c.items[v].kbest) < k {
		if n := len(c.items[v].kbest); n > 0 {
			c.lazyNext(v, c.items[v].kbest[n-1])
		}
		d, ok := c.items[v].cand.Pop()
		if !ok {
			break
		}
		c.items[v].kbest = append(c.items[v].kbest, d)
	}
}

// getCandidates initializes the candidate heap of item v with the best
// derivations of its incoming arcs. Only the best K of them are kept, selected
// in linear time.
func (c *Chart) getCandidates(v int) {
	it := &c.items[v]
	it.seen = hashset.New()
	it.cand = NewSimpleHeap(c.conf.K)
	arcs := it.arcs
	var first candidates
	for _, a := range arcs {
		if d, ok := c.derive(a, make([]int, len(c.arcs[a].tails))); ok {
			first = append(first, d)
		}
	}
	selectTop(first, c.conf.K, c.rnd)
	if len(first) > c.conf.K {
		first = first[:c.conf.K]
	}
	it = &c.items[v]
	for _, d := range first {
		it.seen.Add(d.key())
		it.cand.Push(d)
	}
}

// lazyNext pushes the successors of derivation d of item v as new candidates.
func (c *Chart) lazyNext(v int, d *candidate) {
	for i := range d.ptrs {
		if d.ptrs[i]+1 >= c.conf.K {
			continue
		}
		ptrs := make([]int, len(d.ptrs))
		copy(ptrs, d.ptrs)
		ptrs[i]++
		next, ok := c.derive(d.arc, ptrs)
		if !ok {
			continue
		}
		it := &c.items[v]
		if it.seen.Contains(next.key()) {
			continue
		}
		it.seen.Add(next.key())
		it.cand.Push(next)
	}
}

// derive creates the candidate for arc a with the given tail ranks. It fails if
// one of the tails has fewer derivations than requested, or has been pruned.
func (c *Chart) derive(a int, ptrs []int) (*candidate, bool) {
	arc := &c.arcs[a]
	d := &candidate{arc: a, ptrs: ptrs, scores: arc.scores, score: arc.score}
	for i, t := range arc.tails {
		if !c.items[t].active {
			return nil, false
		}
		c.lazyKthBest(t, ptrs[i]+1)
		if len(c.items[t].kbest) <= ptrs[i] {
			return nil, false
		}
		sub := c.items[t].kbest[ptrs[i]]
		d.scores = d.scores.Add(sub.scores)
		d.score += sub.score
	}
	return d, true
}

// candidates implements sort.Interface, best candidates first.
type candidates []*candidate

func (cs candidates) Len() int           { return len(cs) }
func (cs candidates) Less(i, j int) bool { return compareCandidates(cs[i], cs[j]) < 0 }
func (cs candidates) Swap(i, j int)      { cs[i], cs[j] = cs[j], cs[i] }
