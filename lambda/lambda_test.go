package lambda

import (
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/earley"
	"github.com/npillmayer/scfg/gaps"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/lm"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/scoring"
	"golang.org/x/exp/rand"
)

func TestAssignment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	var a Assignment
	a, ok := a.Bind("1", 7)
	if !ok {
		t.Fatalf("Expected binding to an empty assignment to succeed")
	}
	a, _ = a.Bind("0", 3)
	if a.String() != "{$0=3,$1=7}" {
		t.Errorf("Expected assignment {$0=3,$1=7}, is %s", a)
	}
	if _, ok := a.Bind("0", 3); !ok {
		t.Errorf("Expected re-binding $0 to the same variable to succeed")
	}
	if _, ok := a.Bind("0", 4); ok {
		t.Errorf("Expected conflicting binding of $0 to fail")
	}
	if _, ok := a.Bind("2", 7); ok {
		t.Errorf("Expected binding two pattern variables to one tree variable to fail")
	}
	b := Assignment{{Pattern: "2", Tree: 5}}
	if m, ok := a.Merge(b); !ok || len(m) != 3 {
		t.Errorf("Expected merge to have 3 bindings, is %v", m)
	}
	if _, ok := a.Merge(Assignment{{Pattern: "1", Tree: 8}}); ok {
		t.Errorf("Expected merge of conflicting assignments to fail")
	}
	if v, ok := a.Lookup("1"); !ok || v != 7 {
		t.Errorf("Expected $1 to be bound to 7, is %d", v)
	}
}

func makeTuple(claimed ...uint) Tuple {
	t := emptyTuple()
	for _, n := range claimed {
		t.Claimed.Set(n)
	}
	return t
}

func TestCoverageProduct(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	c := Coverage{makeTuple(0, 1), makeTuple(0, 2)}
	d := Coverage{makeTuple(0, 3), makeTuple(0, 4)}
	if p := c.Product(d, -1); len(p) != 0 {
		t.Errorf("Expected product to reject all tuples sharing node 0, have %d", len(p))
	}
	if p := c.Product(d, 0); len(p) != 4 { // node 0 is an AC node, shared by both sides
		t.Errorf("Expected 4 combinations sharing AC node 0, have %d", len(p))
	}
	e := Coverage{makeTuple(3), makeTuple(2, 4)}
	p := c.Product(e, -1)
	if len(p) != 3 {
		t.Fatalf("Expected 3 disjoint combinations, have %d", len(p))
	}
	for _, tup := range p {
		if tup.Claimed.Test(2) && !tup.Claimed.Test(1) && tup.Claimed.Test(4) {
			t.Errorf("Expected overlapping tuples {0,2} and {2,4} not to combine, have %s", tup.Claimed)
		}
	}
	x, y := makeTuple(1), makeTuple(2)
	x.Assign, _ = x.Assign.Bind("0", 0)
	y.Assign, _ = y.Assign.Bind("0", 1)
	if p = (Coverage{x}).Product(Coverage{y}, -1); len(p) != 0 {
		t.Errorf("Expected conflicting variable bindings to be rejected")
	}
}

func TestCellPrune(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	rnd := rand.New(rand.NewSource(42))
	for _, test := range []struct{ n, k int }{{10, 3}, {50, 10}, {7, 7}, {5, 10}, {100, 1}} {
		cell := &Cell{}
		scores := make(map[int]float64)
		for i := 0; i < test.n; i++ {
			s := float64(rnd.Intn(20)) - 10 // with duplicates
			scores[i] = s
			cell.Add(i, s)
		}
		dropped := cell.Prune(test.k, rnd)
		if cell.Len() > test.k {
			t.Errorf("Expected cell to keep at most %d items, has %d", test.k, cell.Len())
		}
		if cell.Len()+len(dropped) != test.n {
			t.Errorf("Expected %d items kept or dropped, have %d", test.n, cell.Len()+len(dropped))
		}
		worst := math.Inf(1)
		for _, h := range cell.Items() {
			worst = math.Min(worst, scores[h])
		}
		for _, h := range dropped {
			if scores[h] > worst {
				t.Errorf("Expected dropped item %d (%g) not to be better than worst kept (%g)", h, scores[h], worst)
			}
		}
	}
}

func TestSimpleHeap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	h := NewSimpleHeap(3)
	for i, s := range []float64{-4, -1, -7, -2, -3, -9} {
		h.Push(&candidate{arc: i, score: s})
	}
	if h.Len() != 3 {
		t.Errorf("Expected heap to be bounded to 3 candidates, has %d", h.Len())
	}
	var got []float64
	for !h.Empty() {
		c, _ := h.Pop()
		got = append(got, c.score)
	}
	if len(got) != 3 || got[0] != -1 || got[1] != -2 || got[2] != -3 {
		t.Errorf("Expected candidates -1, -2, -3, have %v", got)
	}
	if _, ok := h.Pop(); ok {
		t.Errorf("Expected empty heap")
	}
}

// --- Generation ------------------------------------------------------------

func conf(k, pruneK int) scfg.Config {
	return scfg.NewConfig(scfg.WithK(k), scfg.WithPruneK(pruneK), scfg.WithSeed(7))
}

func TestEndToEnd(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
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
	gen := NewGenerator(g, model, conf(1, 10))
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
		if d.String() != "the texas" || d.Score() != -1.5 {
			t.Errorf("Expected 'the texas' with score -1.5, have '%s' with %g", d, d.Score())
		}
		if d.Tree().String() != "(S the (NP texas))" {
			t.Errorf("Expected derivation tree (S the (NP texas)), have %s", d.Tree())
		}
	}
}

func makeACGrammar(t *testing.T) *grammar.Grammar {
	b := grammar.NewBuilder("conj")
	b.Signature(mrl.NewSignature().AC("and"))
	b.LHS("Form").MR("(and Form#1 Form#2)").NL("Form#1 and Form#2").Weight(-0.1).End()
	b.LHS("Form").MR("red").NL("red").End()
	b.LHS("Form").MR("big").NL("big").End()
	b.LHS("Form").MR("round").NL("round").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func makeACModel(g *grammar.Grammar) *lm.NGram {
	model := lm.NewNGram(2, g.NL)
	for _, ng := range []struct {
		w    string
		p, b float64
	}{
		{"<s>", -99, -0.2}, {"</s>", -1, 0}, {"and", -0.5, -0.1},
		{"red", -1.1, -0.3}, {"big", -1.2, -0.2}, {"round", -1.3, -0.1},
		{"<s> big", -0.4, 0}, {"big and", -0.3, 0}, {"and red", -0.6, 0},
		{"red </s>", -0.2, 0}, {"round and", -0.9, 0}, {"and round", -0.7, 0},
	} {
		model.Add(strings.Fields(ng.w), ng.p, ng.b)
	}
	return model
}

// allScores enumerates the scores of all derivations of item v.
func allScores(c *Chart, v int) []float64 {
	var out []float64
	for _, a := range c.items[v].arcs {
		arc := &c.arcs[a]
		partial := []float64{arc.score}
		for _, tail := range arc.tails {
			if !c.items[tail].active {
				partial = nil
				break
			}
			var next []float64
			for _, p := range partial {
				for _, s := range allScores(c, tail) {
					next = append(next, p+s)
				}
			}
			partial = next
		}
		out = append(out, partial...)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}

func TestACGeneration(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	g := makeACGrammar(t)
	gen := NewGenerator(g, nil, conf(20, 100))
	res, err := gen.GenerateString("(and red big round)")
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 12 { // 3! orders × 2 bracketings
		t.Fatalf("Expected 12 derivations, have %d", res.Len())
	}
	sentences := make(map[string]int)
	for res.Next() {
		d := res.Derivation()
		if math.Abs(d.Score()+0.2) > 1e-9 {
			t.Errorf("Expected each derivation to score -0.2, '%s' has %g", d, d.Score())
		}
		sentences[d.String()]++
	}
	if len(sentences) != 6 {
		t.Errorf("Expected 6 distinct sentences, have %d", len(sentences))
	}
	for s, n := range sentences {
		words := strings.Fields(s)
		if len(words) != 5 || words[1] != "and" || words[3] != "and" || n != 2 {
			t.Errorf("Expected sentence of 3 conjuncts, derived twice, have '%s' (%d)", s, n)
		}
	}
}

func TestLazyKBest(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	g := makeACGrammar(t)
	model := makeACModel(g)
	tree := mrl.MustRead("(and red big round)", g.Sig)
	for _, k := range []int{1, 2, 5, 12, 20} {
		c := NewGenerator(g, model, conf(k, 100)).Chart(tree)
		all := allScores(c, c.Goal())
		if len(all) != 12 {
			t.Fatalf("Expected 12 derivations in the hypergraph, have %d", len(all))
		}
		res := c.Results()
		expect := k
		if expect > len(all) {
			expect = len(all)
		}
		if res.Len() != expect {
			t.Fatalf("K=%d: expected %d derivations, have %d", k, expect, res.Len())
		}
		last := math.Inf(1)
		for i := 0; res.Next(); i++ {
			d := res.Derivation().(*Derivation)
			if d.Score() > last+1e-12 {
				t.Errorf("K=%d: expected non-increasing scores, have %g after %g", k, d.Score(), last)
			}
			last = d.Score()
			if math.Abs(d.Score()-all[i]) > 1e-9 {
				t.Errorf("K=%d: expected derivation #%d to score %g, is %g", k, i, all[i], d.Score())
			}
			full := lm.SentenceScore(model, d.Words())
			if math.Abs(d.Scores()[scoring.LM]-full) > 1e-9 {
				t.Errorf("Expected LM score of '%s' to be %g, is %g", d, full, d.Scores()[scoring.LM])
			}
		}
	}
}

func TestUnaryChainKBest(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	b := grammar.NewBuilder("unary").Start("S")
	b.LHS("C").MR("a").NL("x").Weight(0).End()
	b.LHS("E").MR("a").NL("x").Weight(-1).End()
	b.LHS("B").MR("C#1").NL("C#1").Weight(-0.5).End()
	b.LHS("B").MR("E#1").NL("E#1").Weight(-3).End()
	b.LHS("S").MR("B#1").NL("B#1").Weight(0).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	tree := mrl.MustRead("a", g.Sig)
	c := NewGenerator(g, nil, conf(5, 100)).Chart(tree)
	all := allScores(c, c.Goal())
	if len(all) != 2 {
		t.Fatalf("Expected 2 derivations in the hypergraph, have %d", len(all))
	}
	var lazy []float64
	for res := c.Results(); res.Next(); {
		lazy = append(lazy, res.Derivation().Score())
	}
	var topDown []float64
	res := earley.NewGenerator(g, nil, gaps.NoGaps{}, conf(5, 100)).Generate(tree)
	for res.Next() {
		topDown = append(topDown, res.Derivation().Score())
	}
	if len(lazy) != len(all) || len(topDown) != len(all) {
		t.Fatalf("Expected %d derivations, have %v bottom-up and %v top-down", len(all), lazy, topDown)
	}
	for i := range all {
		if math.Abs(lazy[i]-all[i]) > 1e-9 || math.Abs(lazy[i]-topDown[i]) > 1e-9 {
			t.Errorf("Expected derivation #%d to score %g, is %g (top-down %g)", i, all[i], lazy[i], topDown[i])
		}
	}
	if math.Abs(lazy[0]-lazy[1]-3.5) > 1e-9 {
		t.Errorf("Expected scores to differ by rule weights, have %v", lazy)
	}
}

func TestUnaryCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	b := grammar.NewBuilder("cycle")
	b.LHS("A").MR("x").NL("x").End()
	b.LHS("A").MR("B#1").NL("B#1").Weight(-1).End()
	b.LHS("B").MR("A#1").NL("A#1").Weight(-1).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	c := NewGenerator(g, nil, conf(5, 100)).Chart(mrl.MustRead("x", g.Sig))
	res := c.Results()
	if res.Len() != 2 {
		t.Fatalf("Expected 2 derivations for a cyclic unary chain, have %d", res.Len())
	}
	var scores []float64
	for res.Next() {
		scores = append(scores, res.Derivation().Score())
	}
	if math.Abs(scores[0]-scores[1]-2) > 1e-9 {
		t.Errorf("Expected second derivation to pass the cycle once, have %v", scores)
	}
}

func TestPruning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	g := makeACGrammar(t)
	model := makeACModel(g)
	tree := mrl.MustRead("(and red big round)", g.Sig)
	full := NewGenerator(g, model, conf(1, 100)).Chart(tree)
	pruned := NewGenerator(g, model, conf(1, 1)).Chart(tree)
	if full.Pruned() != 0 {
		t.Errorf("Expected no pruning with a wide beam, have %d pruned items", full.Pruned())
	}
	if pruned.Pruned() == 0 {
		t.Errorf("Expected pruning with beam width 1")
	}
	for ti := range pruned.Targets() {
		cells := make(map[cellKey]int)
		for _, h := range pruned.Items(ti) {
			it := pruned.Item(h)
			if it.unary {
				continue
			}
			cells[it.cellKey(pruned.targets[ti].covKey)]++
		}
		for k, n := range cells {
			if n > 1 {
				t.Errorf("Expected at most 1 active item in cell %s, have %d", k, n)
			}
		}
	}
	res := pruned.Results()
	if res.Len() != 1 {
		t.Fatalf("Expected a derivation despite pruning")
	}
	res.Next()
	best := full.Results()
	best.Next()
	if res.Derivation().Score() > best.Derivation().Score()+1e-9 {
		t.Errorf("Expected pruned search not to beat exhaustive search")
	}
	again := NewGenerator(g, model, conf(1, 1)).Generate(tree)
	again.Next()
	if again.Derivation().String() != res.Derivation().String() {
		t.Errorf("Expected pruning to be deterministic for a fixed seed")
	}
}

func TestVariables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	b := grammar.NewBuilder("lambda")
	b.Signature(mrl.NewSignature().Binders("lambda"))
	b.LHS("Query").MR("(lambda $0 e Form#1)").NL("what Form#1").End()
	b.LHS("Form").MR("(state $0)").NL("is a state").End()
	b.LHS("Form").MR("(next_to $0 $1)").NL("borders it").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	gen := NewGenerator(g, nil, conf(1, 10))
	tree := mrl.MustRead("(lambda $0 e (state $0))", g.Sig)
	c := gen.Chart(tree)
	var res scfg.Results = c.Results()
	if !res.Next() || res.Derivation().String() != "what is a state" {
		t.Fatalf("Expected 'what is a state' to be generated")
	}
	for _, target := range c.Targets() {
		switch target.Node {
		case 0:
			if len(target.FreeVars()) != 0 {
				t.Errorf("Expected no free variables at the root, have %v", target.FreeVars())
			}
		case 3: // (state $0)
			if len(target.FreeVars()) != 1 || target.FreeVars()[0] != 0 {
				t.Errorf("Expected $0 to be free in (state $0), have %v", target.FreeVars())
			}
		}
	}
	// $0 and $1 must not be bound to the same tree variable
	res, _ = gen.GenerateString("(lambda $0 e (next_to $0 $0))")
	if res.Len() != 0 {
		t.Errorf("Expected no derivation for (next_to $0 $0)")
	}
	res, _ = gen.GenerateString("(lambda $0 e (next_to $0 $1))")
	if res.Len() != 1 {
		t.Errorf("Expected a derivation for (next_to $0 $1)")
	}
}

func TestWildcardAndNoMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	b := grammar.NewBuilder("geo")
	b.LHS("Query").MR("(answer State#1)").NL("what is State#1").End()
	b.LHS("State").MR("(stateid *str)").NL("*str").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	gen := NewGenerator(g, nil, conf(3, 10))
	res, err := gen.GenerateString("(answer (stateid 'new_york'))")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Next() || res.Derivation().String() != "what is new york" {
		t.Errorf("Expected 'what is new york' to be generated")
	}
	res, _ = gen.GenerateString("(answer (river 'ohio'))")
	if res.Len() != 0 || res.Next() {
		t.Errorf("Expected no derivation for an uncovered MR")
	}
}

func TestGenerateAll(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.lambda")
	defer teardown()
	//
	g := makeACGrammar(t)
	model := makeACModel(g)
	gen := NewGenerator(g, model, conf(3, 50))
	var trees []*mrl.Tree
	for _, mr := range []string{"(and red big)", "(and red big round)", "(or red big)", "red"} {
		trees = append(trees, mrl.MustRead(mr, g.Sig))
	}
	seq := gen.GenerateAll(trees, 1)
	par := gen.GenerateAll(trees, 4)
	for i := range trees {
		if seq[i].Len() != par[i].Len() {
			t.Fatalf("Expected equal number of results for input %d", i)
		}
		for seq[i].Next() && par[i].Next() {
			if seq[i].Derivation().String() != par[i].Derivation().String() {
				t.Errorf("Expected parallel generation to equal sequential one for input %d", i)
			}
		}
	}
	if seq[2].Len() != 0 {
		t.Errorf("Expected no derivation for 'or'")
	}
}
