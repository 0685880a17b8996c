/*
Package sparse implements a sparse binary relation over non-negative ints.
It stores the left-corner relation of grammars, which is very sparse:
a nonterminal usually has only a handful of possible first MR tokens.

Pairs are kept as coordinates in row-major order (COO encoding).

   https://medium.com/@jmaxg3/101-ways-to-store-a-sparse-matrix-c7f2bf15a229

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sparse

import (
	"fmt"
	"sort"
	"strings"
)

// Relation is a set of pairs (i,j). Use as
//
//     R := sparse.NewRelation()
//     R.Add(2, 3)                    // true: pair is new
//     R.Add(2, 3)                    // false
//     R.Has(2, 3)                    // true
//     R.Row(2)                       // [3]
//
// The zero value is not usable.
type Relation struct {
	pairs []pair
	rows  int
}

type pair struct {
	row, col int
}

func (p pair) before(i, j int) bool {
	return p.row < i || p.row == i && p.col < j
}

// NewRelation creates an empty relation.
func NewRelation() *Relation {
	return &Relation{pairs: []pair{}}
}

// Size returns the number of pairs.
func (r *Relation) Size() int {
	return len(r.pairs)
}

// Rows returns 1 + the largest row index of a pair, or 0.
func (r *Relation) Rows() int {
	return r.rows
}

// search returns the index of the first pair not before (i,j).
func (r *Relation) search(i, j int) int {
	return sort.Search(len(r.pairs), func(k int) bool {
		return !r.pairs[k].before(i, j)
	})
}

// Has is a predicate: is (i,j) in the relation?
func (r *Relation) Has(i, j int) bool {
	k := r.search(i, j)
	return k < len(r.pairs) && r.pairs[k] == pair{i, j}
}

// Add inserts (i,j) and reports whether it has not been present.
func (r *Relation) Add(i, j int) bool {
	k := r.search(i, j)
	if k < len(r.pairs) && r.pairs[k] == (pair{i, j}) {
		return false
	}
	r.pairs = append(r.pairs, pair{})
	copy(r.pairs[k+1:], r.pairs[k:])
	r.pairs[k] = pair{i, j}
	if i >= r.rows {
		r.rows = i + 1
	}
	return true
}

// Each calls f for every j with (i,j) in the relation, by ascending j. f may
// stop the iteration by returning false.
func (r *Relation) Each(i int, f func(j int) bool) {
	for k := r.search(i, 0); k < len(r.pairs) && r.pairs[k].row == i; k++ {
		if !f(r.pairs[k].col) {
			return
		}
	}
}

// Row returns all j with (i,j) in the relation, ascending.
func (r *Relation) Row(i int) []int {
	var cols []int
	r.Each(i, func(j int) bool {
		cols = append(cols, j)
		return true
	})
	return cols
}

// Inherit adds (to,j) for every (from,j) and reports whether the relation has
// changed.
func (r *Relation) Inherit(to, from int) bool {
	changed := false
	for _, j := range r.Row(from) {
		if r.Add(to, j) {
			changed = true
		}
	}
	return changed
}

func (r *Relation) String() string {
	var b strings.Builder
	b.WriteString("{")
	for k, p := range r.pairs {
		if k > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "(%d,%d)", p.row, p.col)
	}
	b.WriteString("}")
	return b.String()
}
