package permute

import (
	"fmt"
	"testing"
)

func TestPermutations(t *testing.T) {
	for _, test := range []struct{ n, k int }{{3, 3}, {4, 2}, {5, 0}, {2, 3}} {
		seen := map[string]bool{}
		Permutations(test.n, test.k, func(p []int) bool {
			seen[fmt.Sprint(p)] = true
			return true
		})
		if len(seen) != Count(test.n, test.k) {
			t.Errorf("Expected %d distinct permutations for (%d,%d), have %d",
				Count(test.n, test.k), test.n, test.k, len(seen))
		}
	}
	if Count(4, 2) != 12 || Count(2, 3) != 0 {
		t.Errorf("Expected Count(4,2)=12 and Count(2,3)=0")
	}
}

func TestPermutationsEarlyStop(t *testing.T) {
	cnt := 0
	Permutations(4, 4, func(p []int) bool {
		cnt++
		return cnt < 5
	})
	if cnt != 5 {
		t.Errorf("Expected enumeration to stop after 5 calls, had %d", cnt)
	}
}

func TestSubsets(t *testing.T) {
	var sets []string
	Subsets(4, 2, 3, func(s []int) bool {
		sets = append(sets, fmt.Sprint(s))
		return true
	})
	if len(sets) != 6+4 {
		t.Errorf("Expected 10 subsets of size 2 or 3, have %d: %v", len(sets), sets)
	}
	if sets[0] != "[0 1]" || sets[len(sets)-1] != "[1 2 3]" {
		t.Errorf("Expected subsets in order of size, have %v", sets)
	}
}
