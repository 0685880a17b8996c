package grammar

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/scoring"
)

// A tiny geography grammar.
//
//     Query → ⟨ (answer State#1) , what is State#1 ⟩
//     Query → ⟨ (answer (largest State#1)) , [1] largest State#1 ⟩
//     State → ⟨ (stateid *str) , *str ⟩
//     State → ⟨ (state $v) , states ⟩
//     Size  → ⟨ State#1 , State#1 ⟩
//
func makeGrammar(t *testing.T) *Grammar {
	b := NewBuilder("geo")
	b.LHS("Query").MR("(answer State#1)").NL("what is State#1").Weight(-0.2).End()
	b.LHS("Query").MR("(answer (largest State#1))").NL("[1] largest State#1").Weight(-1).End()
	b.LHS("State").MR("(stateid *str)").NL("*str").End()
	b.LHS("State").MR("(state $v)").NL("states").End()
	b.LHS("Size").MR("State#1").NL("State#1").Inactive().End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestBuilder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.grammar")
	defer teardown()
	//
	g := makeGrammar(t)
	if g.Size() != 5 {
		t.Errorf("Expected grammar to have 5 rules, has %d", g.Size())
	}
	query, _ := g.NonTerm("Query")
	if g.Start().ID != query {
		t.Errorf("Expected start symbol to be Query, is %s", g.NT.Name(g.Start().ID))
	}
	r := g.Rule(0)
	if r.LengthF() != 4 || r.LengthE() != 3 || r.CountArgs() != 1 {
		t.Errorf("Expected rule 0 to have |F|=4, |E|=3, 1 arg; is %d, %d, %d",
			r.LengthF(), r.LengthE(), r.CountArgs())
	}
	if r.F(2).Kind != scfg.Nonterminal || r.E(2) != r.F(2) || r.ArgPosF(1) != 2 {
		t.Errorf("Expected argument State#1 at F(2) and E(2), have %s and %s", r.F(2), r.E(2))
	}
	if r.Scores()[scoring.TM] != -0.2 || r.Scores()[scoring.WP] != 2 || r.Scores()[scoring.Rule] != 1 {
		t.Errorf("Expected scores TM=-0.2, WP=2, Rule=1; have %s", r.Scores())
	}
	if r.NL() != "what is State#1" {
		t.Errorf("Expected NL side to print as 'what is State#1', is '%s'", r.NL())
	}
	r = g.Rule(1)
	if r.Gap(0) != 1 || r.Gap(1) != 0 || !r.HasGaps() {
		t.Errorf("Expected gap of length 1 before NL position 0")
	}
	if !strings.HasPrefix(r.NL(), "[1] largest") {
		t.Errorf("Expected NL side to start with gap, is '%s'", r.NL())
	}
	if g.Rule(4).Active {
		t.Errorf("Expected rule 4 to be inactive")
	}
}

func TestWildcardRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.grammar")
	defer teardown()
	//
	g := makeGrammar(t)
	r := g.Rule(2)
	if !r.IsWildcard() || g.Wildcard(r.WildcardClass()).Name != "str" {
		t.Fatalf("Expected rule 2 to be a wildcard rule for class str")
	}
	if r.WildcardCopies() != 1 || r.Scores()[scoring.WP] != 0 {
		t.Errorf("Expected 1 wildcard copy and word penalty 0, have %d, %g",
			r.WildcardCopies(), r.Scores()[scoring.WP])
	}
	texas := g.MR.Intern("'texas'")
	word := g.NL.Intern("texas")
	ref := Specialize(r, texas, word)
	if ref.F(2) != scfg.T(texas) || ref.E(0) != scfg.T(word) {
		t.Errorf("Expected specialized rule to hold concrete terminals, have %s / %s", ref.F(2), ref.E(0))
	}
	if r.F(2).Kind != scfg.Wildcard {
		t.Errorf("Expected base rule to stay untouched")
	}
	if ref.Scores()[scoring.WP] != 1 {
		t.Errorf("Expected specialized rule to count its word copy")
	}
	if Generic(r) == ref || Specialize(r, texas, word) != ref {
		t.Errorf("Expected rule references to be comparable values")
	}
	if w := g.Wildcard(r.WildcardClass()).Word("'new_york'"); w != "new york" {
		t.Errorf("Expected wildcard word 'new york', is '%s'", w)
	}
	if tok, ok := g.Wildcard(r.WildcardClass()).Token("new york"); !ok || tok != "'new_york'" {
		t.Errorf("Expected MR token 'new_york' for phrase 'new york', is %s", tok)
	}
	num := g.Wildcard(0)
	if _, ok := num.Token("many"); ok {
		t.Errorf("Expected 'many' not to denote a number")
	}
}

func TestLeftCorners(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.grammar")
	defer teardown()
	//
	g := makeGrammar(t)
	query, _ := g.NonTerm("Query")
	state, _ := g.NonTerm("State")
	size, _ := g.NonTerm("Size")
	answer, _ := g.MR.Lookup("answer")
	stateid, _ := g.MR.Lookup("stateid")
	if !g.IsLeftCornerForF(answer, query) || g.IsLeftCornerForF(stateid, query) {
		t.Errorf("Expected 'answer' to be the only left corner of Query")
	}
	if !g.IsLeftCornerForF(stateid, size) {
		t.Errorf("Expected 'stateid' to be a left corner of Size (via State)")
	}
	if !g.CanStart(state, stateid, "stateid", false) || g.CanStart(state, -1, "$0", true) {
		t.Errorf("Expected State to start with 'stateid' but not with a variable")
	}
}

func TestWildcardLeftCorner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.grammar")
	defer teardown()
	//
	b := NewBuilder("numbers")
	b.LHS("Num").MR("*num").NL("*num").End()
	b.LHS("Count").MR("Num#1").NL("Num#1 items").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	count, _ := g.NonTerm("Count")
	if !g.CanStart(count, -1, "42", false) || g.CanStart(count, -1, "texas", false) {
		t.Errorf("Expected Count to start with numbers only")
	}
	if !g.CanStartRule(g.Rule(1), -1, "3.5", false) {
		t.Errorf("Expected rule 1 to start with 3.5")
	}
}

func TestBuilderErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.grammar")
	defer teardown()
	//
	cases := []struct{ mr, nl string }{
		{"", "nothing"},                       // empty MR side
		{"(answer State#1)", "what is"},       // missing argument
		{"(answer State#1)", "City#1"},        // name mismatch
		{"(answer State#2)", "State#2"},       // index out of range
		{"(f *num *num)", "*num"},             // two wildcards
		{"(f *foo)", "*foo"},                  // unknown class
		{"(f x)", "[1] [2] word"},             // consecutive gaps
		{"(answer State#1", "State#1"},        // syntax
		{"(answer State#1)", "State#1 *num"},  // copy without wildcard
	}
	for i, c := range cases {
		b := NewBuilder("errors")
		b.LHS("S").MR("(s x)").NL("x").End()
		if r := b.LHS("S").MR(c.mr).NL(c.nl).End(); r != nil {
			t.Errorf("Expected case %d (%s / %s) to be rejected", i, c.mr, c.nl)
		}
		if _, err := b.Grammar(); err == nil {
			t.Errorf("Expected grammar of case %d to report an error", i)
		}
	}
}

func TestDuplicatesAndFingerprint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.grammar")
	defer teardown()
	//
	b := NewBuilder("dup")
	b.LHS("S").MR("(s x)").NL("x").End()
	if r := b.LHS("S").MR("(s  x )").NL("x").Weight(-1).End(); r != nil {
		t.Errorf("Expected duplicate rule to be rejected")
	}
	g1 := makeGrammar(t)
	g2 := makeGrammar(t)
	if g1.Fingerprint() == "" || g1.Fingerprint() != g2.Fingerprint() {
		t.Errorf("Expected equal grammars to have equal fingerprints")
	}
	b = NewBuilder("other")
	b.LHS("S").MR("(s x)").NL("x").End()
	g3, _ := b.Grammar()
	if g3.Fingerprint() == g1.Fingerprint() {
		t.Errorf("Expected different grammars to have different fingerprints")
	}
}

func TestACPattern(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scfg.grammar")
	defer teardown()
	//
	b := NewBuilder("ac").Signature(mrl.NewSignature().AC("and"))
	r := b.LHS("C").MR("(and C#1 C#2)").NL("C#1 and C#2").End()
	if r == nil || !r.Pattern.AC {
		t.Errorf("Expected pattern (and C#1 C#2) to be AC")
	}
	if _, err := b.Grammar(); err != nil {
		t.Error(err)
	}
}
