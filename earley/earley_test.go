package earley

import (
	"math"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/gaps"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/lm"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/scoring"
)

// We use a small geography grammar for testing.
//
//     Query → ⟨ (answer State#1) , what is the capital of State#1 ⟩
//     State → ⟨ (stateid *str) , *str ⟩
//     State → ⟨ (next_to State#1) , the state next to State#1 ⟩
//
func makeGeoGrammar(t *testing.T) *grammar.Grammar {
	b := grammar.NewBuilder("geo")
	b.LHS("Query").MR("(answer State#1)").NL("what is the capital of State#1").Weight(-0.1).End()
	b.LHS("State").MR("(stateid *str)").NL("*str").Weight(-0.2).End()
	b.LHS("State").MR("(next_to State#1)").NL("the state next to State#1").Weight(-0.3).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

type ngram struct {
	words     string
	logp, bow float64
}

var geoNGrams = []ngram{
	{"<s>", -99, -0.5}, {"</s>", -1.0, 0}, {"<unk>", -3, 0},
	{"what", -1.2, -0.3}, {"is", -1.1, -0.2}, {"the", -0.8, -0.4},
	{"capital", -1.5, -0.1}, {"of", -1.0, -0.2}, {"state", -1.3, -0.3},
	{"next", -1.4, -0.2}, {"to", -0.9, -0.1}, {"texas", -1.6, 0},
	{"please", -2.0, 0}, {"now", -1.8, 0}, {"today", -1.9, 0},
	{"<s> what", -0.3, -0.1}, {"what is", -0.2, -0.2}, {"is the", -0.5, 0},
	{"the capital", -0.9, 0}, {"the state", -0.6, -0.3}, {"state next", -0.4, 0},
	{"next to", -0.1, -0.2}, {"to the", -0.5, 0}, {"to texas", -1.0, 0},
	{"texas </s>", -0.3, 0}, {"x now", -0.2, 0},
	{"<s> what is", -0.1, 0}, {"the state next", -0.2, 0},
	{"state next to", -0.05, 0}, {"next to the", -0.4, 0},
}

func makeModel(g *grammar.Grammar, order int) *lm.NGram {
	m := lm.NewNGram(order, g.NL)
	for _, ng := range geoNGrams {
		words := strings.Fields(ng.words)
		if len(words) <= order {
			m.Add(words, ng.logp, ng.bow)
		}
	}
	return m
}

func conf(k int) scfg.Config {
	return scfg.NewConfig(scfg.WithK(k))
}

// --- the Tests -------------------------------------------------------------

// S → ⟨ NP#1 , the NP#1 ⟩ with a unigram model assigning log P(the) = -1
func TestEndToEnd(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.earley")
	defer teardown()
	//
	b := grammar.NewBuilder("the")
	b.LHS("S").MR("NP#1").NL("the NP#1").Weight(-0.5).End()
	b.LHS("NP").MR("texas").NL("texas").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	model := lm.NewNGram(1, g.NL)
	model.Add([]string{"the"}, -1, 0)
	model.Add([]string{"texas"}, 0, 0)
	model.Add([]string{"</s>"}, 0, 0)
	gen := NewGenerator(g, model, nil, conf(1))
	var first string
	for run := 0; run < 3; run++ {
		res, err := gen.GenerateString("texas")
		if err != nil {
			t.Fatal(err)
		}
		if res.Len() != 1 {
			t.Fatalf("Expected exactly one derivation, have %d", res.Len())
		}
		res.Next()
		d := res.Derivation()
		if d.String() != "the texas" {
			t.Errorf("Expected 'the texas', have '%s'", d.String())
		}
		if d.Score() != -1.5 {
			t.Errorf("Expected score -1.5, have %g", d.Score())
		}
		if run == 0 {
			first = d.String()
		} else if d.String() != first {
			t.Errorf("Expected generation to be deterministic")
		}
		if d.Tree().Label != "S" || d.Tree().Children[1].Label != "NP" {
			t.Errorf("Expected derivation tree (S the (NP texas)), have %s", d.Tree())
		}
	}
}

func TestScoreAdditivity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.earley")
	defer teardown()
	//
	g := makeGeoGrammar(t)
	mr := "(answer (next_to (next_to (stateid 'texas'))))"
	for order := 1; order <= 4; order++ {
		model := makeModel(g, order)
		gen := NewGenerator(g, model, nil, conf(1))
		res, err := gen.GenerateString(mr)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Next() {
			t.Fatalf("Expected a derivation for order %d", order)
		}
		d := res.Derivation().(*Derivation)
		expect := "what is the capital of the state next to the state next to texas"
		if d.String() != expect {
			t.Errorf("Expected '%s', have '%s'", expect, d.String())
		}
		full := lm.SentenceScore(model, d.Words())
		if math.Abs(full-d.Scores()[scoring.LM]) > 1e-9 {
			t.Errorf("Order %d: expected incremental LM score %g to equal sentence score %g",
				order, d.Scores()[scoring.LM], full)
		}
		tm := -0.1 - 0.2 - 0.3 - 0.3
		if math.Abs(d.Scores()[scoring.TM]-tm) > 1e-9 {
			t.Errorf("Expected TM score %g, have %g", tm, d.Scores()[scoring.TM])
		}
		if math.Abs(d.Score()-(tm+full)) > 1e-9 {
			t.Errorf("Expected score %g, have %g", tm+full, d.Score())
		}
		if d.Scores()[scoring.WP] != float64(len(d.Terms())) {
			t.Errorf("Expected word penalty to count %d words, is %g", len(d.Terms()), d.Scores()[scoring.WP])
		}
	}
}

func TestInterning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.earley")
	defer teardown()
	//
	b := grammar.NewBuilder("ambiguous")
	b.LHS("S").MR("NP#1").NL("the NP#1").Weight(-0.5).End()
	b.LHS("NP").MR("texas").NL("texas").Weight(-1).End()
	b.LHS("NP").MR("Name#1").NL("Name#1").End()
	b.LHS("Name").MR("texas").NL("texas").Weight(-2).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	model := lm.NewNGram(1, g.NL)
	model.Add([]string{"the"}, -1, 0)
	model.Add([]string{"texas"}, 0, 0)
	model.Add([]string{"</s>"}, 0, 0)
	tree := mrl.MustRead("texas", nil)
	for _, test := range []struct {
		k      int
		scores []float64
	}{
		{1, []float64{-2.5}},
		{2, []float64{-2.5, -3.5}},
		{5, []float64{-2.5, -3.5}},
	} {
		c := NewGenerator(g, model, nil, conf(test.k)).Chart(tree)
		for p, m := range c.intern {
			for key, slots := range m {
				if len(slots) > test.k {
					t.Errorf("Expected at most %d items for key at %d, have %d", test.k, p, len(slots))
				}
				for i := 1; i < len(slots); i++ {
					if c.items[slots[i-1]].score <= c.items[slots[i]].score {
						t.Errorf("Expected items of key %v to have distinct descending scores", key.ref)
					}
				}
			}
		}
		res := c.Results()
		if res.Len() != len(test.scores) {
			t.Fatalf("K=%d: expected %d derivations, have %d", test.k, len(test.scores), res.Len())
		}
		for i := 0; res.Next(); i++ {
			d := res.Derivation()
			if d.String() != "the texas" || math.Abs(d.Score()-test.scores[i]) > 1e-9 {
				t.Errorf("K=%d: expected derivation #%d to be 'the texas' (%g), is '%s' (%g)",
					test.k, i, test.scores[i], d.String(), d.Score())
			}
		}
	}
}

func TestGapCrossProduct(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.earley")
	defer teardown()
	//
	b := grammar.NewBuilder("gaps")
	b.LHS("Q").MR("(q X#1)").NL("[1] a X#1 [2]").End()
	b.LHS("X").MR("x").NL("x").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	model := makeModel(g, 2)
	fillers := gaps.NewModel()
	a, _ := g.NL.Lookup("a")
	x, _ := g.NonTerm("X")
	word := func(w string) int32 { return int32(g.NL.Intern(w)) }
	fillers.Add(gaps.Start, scfg.T(a), []int32{word("please")}, -0.7)
	fillers.Add(scfg.N(x, 1), gaps.End, []int32{word("now")}, -0.2)
	fillers.Add(scfg.N(x, 1), gaps.End, []int32{word("right"), word("now")}, -0.4)
	fillers.Add(scfg.N(x, 1), gaps.End, []int32{word("a"), word("b"), word("c")}, -0.1) // too long
	tree := mrl.MustRead("(q x)", nil)
	gen := NewGenerator(g, model, fillers, conf(6))
	c := gen.Chart(tree)
	if c.GapCompletions() != 2*3 {
		t.Errorf("Expected 2×3 gap-filled candidates, have %d", c.GapCompletions())
	}
	res := c.Results()
	if res.Len() != 6 {
		t.Fatalf("Expected 6 derivations, have %d", res.Len())
	}
	last := math.Inf(1)
	seen := make(map[string]bool)
	for res.Next() {
		d := res.Derivation().(*Derivation)
		if d.Score() > last {
			t.Errorf("Expected derivations ordered by descending score")
		}
		last = d.Score()
		seen[d.String()] = true
		full := lm.SentenceScore(model, d.Words())
		if math.Abs(full-d.Scores()[scoring.LM]) > 1e-9 {
			t.Errorf("Expected LM score of '%s' to be %g, is %g", d, full, d.Scores()[scoring.LM])
		}
	}
	for _, s := range []string{"a x", "please a x now", "please a x right now", "a x right now"} {
		if !seen[s] {
			t.Errorf("Expected '%s' to be generated", s)
		}
	}
}

func TestWildcardGeneration(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.earley")
	defer teardown()
	//
	g := makeGeoGrammar(t)
	gen := NewGenerator(g, makeModel(g, 2), nil, conf(1))
	res, err := gen.GenerateString("(answer (stateid 'new_york'))")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Next() {
		t.Fatalf("Expected a derivation")
	}
	d := res.Derivation()
	terms := d.Terms()
	if len(terms) != 6 || terms[5] != "new york" {
		t.Errorf("Expected 6 terms, ending in 'new york', have %v", terms)
	}
	if _, ok := g.NL.Lookup("new york"); ok {
		t.Errorf("Expected grammar vocabulary to be unchanged by generation")
	}
}

func TestNoDerivation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.earley")
	defer teardown()
	//
	g := makeGeoGrammar(t)
	gen := NewGenerator(g, makeModel(g, 2), nil, conf(3))
	for _, mr := range []string{"(answer (river 'texas'))", "(stateid 'texas')", "(answer $0)"} {
		res, err := gen.GenerateString(mr)
		if err != nil {
			t.Fatal(err)
		}
		if res.Len() != 0 || res.Next() {
			t.Errorf("Expected no derivation for %s, have %d", mr, res.Len())
		}
	}
}

func TestGenerateAll(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.earley")
	defer teardown()
	//
	g := makeGeoGrammar(t)
	gen := NewGenerator(g, makeModel(g, 3), nil, conf(2))
	var trees []*mrl.Tree
	for _, mr := range []string{
		"(answer (stateid 'texas'))",
		"(answer (next_to (stateid 'ohio')))",
		"(answer (river 'texas'))",
		"(answer (next_to (next_to (stateid 'utah'))))",
	} {
		trees = append(trees, mrl.MustRead(mr, nil))
	}
	seq := gen.GenerateAll(trees, 1)
	par := gen.GenerateAll(trees, 3)
	for i := range trees {
		if seq[i].Len() != par[i].Len() {
			t.Fatalf("Expected equal number of results for input %d", i)
		}
		for seq[i].Next() && par[i].Next() {
			s, p := seq[i].Derivation(), par[i].Derivation()
			if s.String() != p.String() || s.Score() != p.Score() {
				t.Errorf("Expected parallel generation to equal sequential one, have '%s' and '%s'", s, p)
			}
		}
	}
	if seq[2].Len() != 0 {
		t.Errorf("Expected no derivation for input 2")
	}
}

func TestSlotRanges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.earley")
	defer teardown()
	//
	b := grammar.NewBuilder("slots")
	r := b.LHS("Q").MR("(q A#1200)").NL("[1] the A#1200 [1]").End()
	b.LHS("A").MR("x").NL("x").End()
	if _, err := b.Grammar(); err != nil {
		t.Fatal(err)
	}
	slots := map[int]string{1200: "argument"}
	for i := 0; i <= r.LengthE(); i++ {
		for _, s := range []struct {
			slot int
			kind string
		}{{gapSlot(r, i), "gap"}, {wildSlot(r, i), "wildcard"}} {
			if s.kind == "wildcard" && i == r.LengthE() {
				continue
			}
			if other, ok := slots[s.slot]; ok {
				t.Errorf("Expected %s slot %d at position %d to be unique, is used by %s", s.kind, s.slot, i, other)
			}
			slots[s.slot] = s.kind
		}
	}
}
