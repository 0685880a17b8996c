package lambda

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
)

// cellKey groups items for pruning: items covering the same tree nodes, with
// rules of equal arity and equal dot position, compete with each other.
type cellKey struct {
	cov   string
	arity int
	dot   int
}

func (k cellKey) String() string {
	return fmt.Sprintf("%s/%d.%d", k.cov, k.arity, k.dot)
}

type cellEntry struct {
	item  int
	score float64
}

// Cell is a group of items competing for a place in the beam.
type Cell struct {
	key     cellKey
	entries []cellEntry
}

// Add adds an item with its score to the cell.
func (cell *Cell) Add(item int, score float64) {
	cell.entries = append(cell.entries, cellEntry{item: item, score: score})
}

// Len returns the number of items in the cell.
func (cell *Cell) Len() int {
	return len(cell.entries)
}

// Less is part of sort.Interface. Better items sort first.
func (cell *Cell) Less(i, j int) bool {
	return cell.entries[i].score > cell.entries[j].score
}

// Swap is part of sort.Interface.
func (cell *Cell) Swap(i, j int) {
	cell.entries[i], cell.entries[j] = cell.entries[j], cell.entries[i]
}

// Prune keeps the best k items of a cell and returns the discarded ones. The
// items kept are in no particular order. Selection is randomized, with
// expected linear time.
func (cell *Cell) Prune(k int, rnd *rand.Rand) (dropped []int) {
	if len(cell.entries) <= k {
		return nil
	}
	selectTop(cell, k, rnd)
	for _, e := range cell.entries[k:] {
		dropped = append(dropped, e.item)
	}
	cell.entries = cell.entries[:k]
	return dropped
}

// Items returns the items of the cell.
func (cell *Cell) Items() []int {
	items := make([]int, len(cell.entries))
	for i, e := range cell.entries {
		items[i] = e.item
	}
	return items
}

// selectTop re-orders data such that its first k elements are the k smallest
// elements with respect to data.Less, in no particular order. It is a
// randomized quickselect.
func selectTop(data sort.Interface, k int, rnd *rand.Rand) {
	n := data.Len()
	if k <= 0 || k >= n {
		return
	}
	lo, hi := 0, n-1
	for lo < hi {
		p := partition(data, lo, hi, lo+rnd.Intn(hi-lo+1))
		switch {
		case p == k-1:
			return
		case p < k-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

// partition partitions data[lo…hi] around the element at pivot and returns the
// final position of the pivot element. Elements left of it are Less than the
// pivot.
func partition(data sort.Interface, lo, hi, pivot int) int {
	data.Swap(pivot, hi)
	store := lo
	for i := lo; i < hi; i++ {
		if data.Less(i, hi) {
			data.Swap(i, store)
			store++
		}
	}
	data.Swap(store, hi)
	return store
}
