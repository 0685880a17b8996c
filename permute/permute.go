/*
Package permute enumerates permutations and subsets of small index sets. It is
used for matching rule patterns against associative-commutative MR operators.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package permute

// Permutations calls fn for every ordered selection of k distinct elements out
// of {0, …, n-1}, in lexicographic order. Enumeration stops early if fn returns
// false. The slice passed to fn is re-used between calls; clients have to copy
// it if they want to keep it.
func Permutations(n, k int, fn func(perm []int) bool) {
	if k < 0 || k > n {
		return
	}
	perm := make([]int, k)
	used := make([]bool, n)
	var rec func(i int) bool
	rec = func(i int) bool {
		if i == k {
			return fn(perm)
		}
		for x := 0; x < n; x++ {
			if used[x] {
				continue
			}
			used[x] = true
			perm[i] = x
			ok := rec(i + 1)
			used[x] = false
			if !ok {
				return false
			}
		}
		return true
	}
	rec(0)
}

// Count returns the number of ordered selections of k out of n elements, i.e.
// n!/(n-k)!.
func Count(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	c := 1
	for i := 0; i < k; i++ {
		c *= n - i
	}
	return c
}

// Subsets calls fn for every subset of {0, …, n-1} with min ≤ size ≤ max, as a
// sorted slice of elements. Subsets are enumerated by increasing size. Enumeration
// stops early if fn returns false. The slice passed to fn is re-used.
func Subsets(n, min, max int, fn func(set []int) bool) {
	if min < 0 {
		min = 0
	}
	if max > n {
		max = n
	}
	for size := min; size <= max; size++ {
		set := make([]int, size)
		var rec func(i, from int) bool
		rec = func(i, from int) bool {
			if i == size {
				return fn(set)
			}
			for x := from; x <= n-(size-i); x++ {
				set[i] = x
				if !rec(i+1, x+1) {
					return false
				}
			}
			return true
		}
		if !rec(0, 0) {
			return
		}
	}
}
