package scoring

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestVectorAdd(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.grammar")
	defer teardown()
	//
	var v, w Vector
	v[TM] = -1.5
	v[WP] = 2
	w[TM] = -0.5
	w[LM] = -3
	s := v.Add(w)
	if s[TM] != -2 || s[LM] != -3 || s[WP] != 2 {
		t.Errorf("Expected sum to be [TM=-2 LM=-3 WP=2 …], is %s", s)
	}
	if v[TM] != -1.5 {
		t.Errorf("Expected Add to leave operands untouched, v is %s", v)
	}
}

func TestWeightsDot(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.grammar")
	defer teardown()
	//
	var v Vector
	v = v.With(TM, -1).With(LM, -2).With(WP, 3).With(Rule, 1)
	w := DefaultWeights()
	if d := w.Dot(v); d != -3 {
		t.Errorf("Expected default weighted score to be -3, is %g", d)
	}
	w, err := NewWeights(map[string]float64{"tm": 1, "LM": 0.5, "WP": -0.1})
	if err != nil {
		t.Fatal(err)
	}
	if d := w.Dot(v); d < -2.3001 || d > -2.2999 {
		t.Errorf("Expected weighted score to be -2.3, is %g", d)
	}
	if _, err = NewWeights(map[string]float64{"XX": 1}); err == nil {
		t.Errorf("Expected unknown feature name to be rejected")
	}
}
