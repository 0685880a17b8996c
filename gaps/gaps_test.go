package gaps

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/scoring"
)

func TestFillersEmptyFirst(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.earley")
	defer teardown()
	//
	m := NewModel()
	the, big := scfg.T(5), scfg.T(6)
	state := scfg.N(1, 2)
	m.Add(the, scfg.N(1, 1), []int32{7}, -1.5)
	m.Add(the, state, []int32{7, 8}, -0.5)
	m.SetEmpty(the, state, -0.1)
	f := m.Fillers(the, state)
	if len(f) != 3 {
		t.Fatalf("Expected 3 fillers, have %d", len(f))
	}
	if f[0].Len() != 0 || f[0].Scores[scoring.Gap] != -0.1 {
		t.Errorf("Expected first filler to be empty with score -0.1, is %v", f[0])
	}
	if f[1].Len() != 2 || f[1].Scores[scoring.WP] != 2 {
		t.Errorf("Expected best non-empty filler to have 2 words, is %v", f[1])
	}
	if g := m.Fillers(big, state); len(g) != 1 || g[0].Len() != 0 {
		t.Errorf("Expected unknown context to offer the empty filler only, have %d", len(g))
	}
	if c := Candidates(f, 1); len(c) != 2 || c[0].Len() != 0 {
		t.Errorf("Expected 2 candidates of length ≤ 1, have %d", len(c))
	}
}
