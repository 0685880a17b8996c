/*
Package demo provides a small geography grammar, together with a language
model and a gap model, for the command line tools.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package demo

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/gaps"
	"github.com/npillmayer/scfg/grammar"
	"github.com/npillmayer/scfg/lm"
	"github.com/npillmayer/scfg/mrl"
)

// tracer traces with key 'scfg.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("scfg.grammar")
}

// Grammar creates the demo grammar. Operator 'and' is AC.
//
//  Query → ⟨ (answer State#1) , what is the capital of State#1 ⟩
//  Query → ⟨ (answer (largest State#1)) , [1] which is the largest of State#1 [1] ⟩
//  Query → ⟨ (answer (population State#1)) , how many people live in State#1 ⟩
//  State → ⟨ (stateid *str) , *str ⟩
//  State → ⟨ (next_to State#1) , the state next to State#1 ⟩
//  State → ⟨ (and State#1 State#2) , State#1 and State#2 ⟩
//  State → ⟨ (state all) , all states ⟩
//
func Grammar() *grammar.Grammar {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelError)
	defer tracer().SetTraceLevel(level)
	b := grammar.NewBuilder("geo")
	b.Signature(mrl.NewSignature().AC("and"))
	b.LHS("Query").MR("(answer State#1)").NL("what is the capital of State#1").Weight(-0.1).End()
	b.LHS("Query").MR("(answer (largest State#1))").NL("[1] which is the largest of State#1 [1]").Weight(-0.5).End()
	b.LHS("Query").MR("(answer (population State#1))").NL("how many people live in State#1").Weight(-0.2).End()
	b.LHS("State").MR("(stateid *str)").NL("*str").Weight(-0.2).End()
	b.LHS("State").MR("(next_to State#1)").NL("the state next to State#1").Weight(-0.3).End()
	b.LHS("State").MR("(and State#1 State#2)").NL("State#1 and State#2").Weight(-0.4).End()
	b.LHS("State").MR("(state all)").NL("all states").Weight(-0.3).End()
	g, err := b.Grammar()
	if err != nil {
		panic(fmt.Errorf("error creating demo grammar: %s", err.Error()))
	}
	return g
}

var ngrams = []struct {
	words     string
	logp, bow float64
}{
	{"<s>", -99, -0.5}, {"</s>", -1.0, 0}, {"<unk>", -3, 0},
	{"what", -1.2, -0.3}, {"is", -1.1, -0.2}, {"the", -0.8, -0.4},
	{"capital", -1.5, -0.1}, {"of", -1.0, -0.2}, {"state", -1.3, -0.3},
	{"next", -1.4, -0.2}, {"to", -0.9, -0.1}, {"and", -1.0, -0.2},
	{"which", -1.6, -0.2}, {"largest", -1.8, -0.1}, {"how", -1.5, -0.2},
	{"many", -1.7, -0.1}, {"people", -1.6, -0.1}, {"live", -1.9, -0.1},
	{"in", -1.0, -0.2}, {"all", -1.4, -0.2}, {"states", -1.5, -0.1},
	{"please", -2.0, 0}, {"now", -1.8, 0}, {"tell", -2.1, 0}, {"me", -1.9, 0},
	{"<s> what", -0.3, -0.1}, {"what is", -0.2, -0.2}, {"is the", -0.5, 0},
	{"the capital", -0.9, 0}, {"capital of", -0.2, 0}, {"of the", -0.6, 0},
	{"the state", -0.6, -0.3}, {"state next", -0.4, 0}, {"next to", -0.1, -0.2},
	{"to the", -0.5, 0}, {"<s> which", -0.8, 0}, {"which is", -0.3, 0},
	{"the largest", -0.7, 0}, {"largest of", -0.4, 0}, {"of all", -0.8, 0},
	{"all states", -0.2, 0}, {"states </s>", -0.4, 0}, {"<s> how", -0.6, 0},
	{"how many", -0.1, 0}, {"many people", -0.5, 0}, {"people live", -0.3, 0},
	{"live in", -0.1, 0}, {"tell me", -0.2, 0}, {"please </s>", -0.3, 0},
}

// Model creates a bigram model for the demo grammar.
func Model(g *grammar.Grammar) *lm.NGram {
	m := lm.NewNGram(2, g.NL)
	for _, ng := range ngrams {
		m.Add(strings.Fields(ng.words), ng.logp, ng.bow)
	}
	return m
}

// Fillers creates a gap model for the demo grammar. It knows phrases for the
// gaps of the 'largest' query.
func Fillers(g *grammar.Grammar) *gaps.Model {
	m := gaps.NewModel()
	word := func(w string) int32 {
		return int32(g.NL.Intern(w))
	}
	which, _ := g.NL.Lookup("which")
	state, _ := g.NonTerm("State")
	m.Add(gaps.Start, scfg.T(which), []int32{word("now")}, -1.2)
	m.Add(gaps.Start, scfg.T(which), []int32{word("tell"), word("me")}, -1.0)
	m.Add(scfg.N(state, 0), gaps.End, []int32{word("please")}, -1.5)
	return m
}
