package lambda

import (
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/emirpasic/gods/trees/binaryheap"
)

// SimpleHeap is a bounded heap of candidate derivations, best first. If the
// heap is full, pushing a candidate evicts the worst one (or drops the new one
// if it is the worst). Bounding the heap to K is safe for k-best extraction:
// a candidate with K better ones in the heap can never be among the best K.
//
// The heap keeps two binary heaps over the same candidates, ordered in opposite
// directions. Candidates removed from one of them are deleted lazily from the
// other.
type SimpleHeap struct {
	best     *binaryheap.Heap
	worst    *binaryheap.Heap
	gone     *hashset.Set // removed from one heap, still present in the other
	size     int
	capacity int
}

// NewSimpleHeap creates a heap for at most capacity candidates.
func NewSimpleHeap(capacity int) *SimpleHeap {
	if capacity < 1 {
		capacity = 1
	}
	return &SimpleHeap{
		best:     binaryheap.NewWith(compareCandidates),
		worst:    binaryheap.NewWith(func(a, b interface{}) int { return -compareCandidates(a, b) }),
		gone:     hashset.New(),
		capacity: capacity,
	}
}

// compareCandidates orders candidates by descending score. Ties are broken by
// hyperarc and ranks, to make the order deterministic.
func compareCandidates(a, b interface{}) int {
	x, y := a.(*candidate), b.(*candidate)
	switch {
	case x.score > y.score:
		return -1
	case x.score < y.score:
		return 1
	case x.arc != y.arc:
		if x.arc < y.arc {
			return -1
		}
		return 1
	}
	for i := range x.ptrs {
		if x.ptrs[i] != y.ptrs[i] {
			if x.ptrs[i] < y.ptrs[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Push adds a candidate.
func (h *SimpleHeap) Push(c *candidate) {
	if h.size >= h.capacity {
		w, ok := h.peek(h.worst)
		if !ok || compareCandidates(c, w) >= 0 {
			return
		}
		h.worst.Pop()
		h.gone.Add(w)
		h.size--
	}
	h.best.Push(c)
	h.worst.Push(c)
	h.size++
}

// Pop removes and returns the best candidate.
func (h *SimpleHeap) Pop() (*candidate, bool) {
	c, ok := h.peek(h.best)
	if !ok {
		return nil, false
	}
	h.best.Pop()
	h.gone.Add(c)
	h.size--
	return c, true
}

// Peek returns the best candidate without removing it.
func (h *SimpleHeap) Peek() (*candidate, bool) {
	return h.peek(h.best)
}

// peek returns the top of one of the heaps, skipping deleted candidates.
func (h *SimpleHeap) peek(heap *binaryheap.Heap) (*candidate, bool) {
	for {
		v, ok := heap.Peek()
		if !ok {
			return nil, false
		}
		if h.gone.Contains(v) {
			heap.Pop()
			h.gone.Remove(v)
			continue
		}
		return v.(*candidate), true
	}
}

// Len returns the number of candidates in the heap.
func (h *SimpleHeap) Len() int {
	return h.size
}

// Empty is a predicate.
func (h *SimpleHeap) Empty() bool {
	return h.size == 0
}
