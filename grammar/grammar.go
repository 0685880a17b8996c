/*
Package grammar implements synchronous context-free grammars (SCFGs) for semantic
parsing and generation.

A rule rewrites a nonterminal into a pair of sides: an MR side, which is a
pattern over meaning representations, and an NL side, which is a sequence of
words. Nonterminal arguments occur on both sides, linked by their argument index:

    Query → ⟨ (answer State#1) , what is State#1 ⟩
    State → ⟨ (stateid *str) , *str ⟩
    Query → ⟨ (answer (largest State#1)) , [1] largest State#1 ⟩

Wildcards (*str) match classes of MR terminals and are copied to the NL side.
Word gaps ([1]) mark positions on the NL side where up to n additional words may
be inserted during generation.

Grammars are built with a Builder:

    b := grammar.NewBuilder("geo")
    b.LHS("Query").MR("(answer State#1)").NL("what is State#1").Weight(-0.2).End()
    b.LHS("State").MR("(stateid *str)").NL("*str").End()
    g, err := b.Grammar()

Once built, a grammar is read-only (except for the activity flags of its
rules) and may be shared between generators running concurrently.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package grammar

import (
	"fmt"
	"io"

	"github.com/cnf/structhash"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/grammar/sparse"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/symtab"
)

// tracer traces with key 'scfg.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("scfg.grammar")
}

// Grammar is a synchronous context-free grammar.
//
// A grammar owns three symbol tables: nonterminals, MR terminals (tokens of
// linearized MRs, including brackets) and NL words. The NL table reserves the
// unknown word and the sentence boundary markers.
type Grammar struct {
	Name      string
	NT        *symtab.Table // nonterminals
	MR        *symtab.Table // MR tokens
	NL        *symtab.Table // NL words
	Sig       *mrl.Signature
	rules     []*Rule
	byLHS     [][]*Rule
	start     int
	wildcards []WildcardClass
	lcT       *sparse.Relation // left corners: nonterminal × MR token
	lcW       *sparse.Relation // left corners: nonterminal × wildcard class
	lcVar     []bool            // nonterminal may start with a variable
	hash      string
}

// Rules returns the rules for nonterminal lhs, in order of definition.
func (g *Grammar) Rules(lhs int) []*Rule {
	if lhs < 0 || lhs >= len(g.byLHS) {
		return nil
	}
	return g.byLHS[lhs]
}

// Rule returns rule number i.
func (g *Grammar) Rule(i int) *Rule {
	if i < 0 || i >= len(g.rules) {
		return nil
	}
	return g.rules[i]
}

// Size returns the number of rules.
func (g *Grammar) Size() int {
	return len(g.rules)
}

// EachRule iterates over all rules, in order of definition.
func (g *Grammar) EachRule(f func(r *Rule)) {
	for _, r := range g.rules {
		f(r)
	}
}

// CountNonterms returns the number of nonterminals.
func (g *Grammar) CountNonterms() int {
	return g.NT.Size()
}

// Start returns the start symbol.
func (g *Grammar) Start() scfg.Symbol {
	return scfg.N(g.start, 1)
}

// NonTerm returns the id of a nonterminal by name.
func (g *Grammar) NonTerm(name string) (int, bool) {
	return g.NT.Lookup(name)
}

// Wildcard returns wildcard class number cls.
func (g *Grammar) Wildcard(cls int) WildcardClass {
	return g.wildcards[cls]
}

// Wildcards returns all wildcard classes of the grammar.
func (g *Grammar) Wildcards() []WildcardClass {
	return g.wildcards
}

// IsLeftCornerForF is a predicate: may a derivation from nonterminal lhs start
// with MR token tok? Wildcard and variable left corners are not considered, see
// CanStart.
func (g *Grammar) IsLeftCornerForF(tok int, lhs int) bool {
	return g.lcT.Has(lhs, tok)
}

// CanStart is a predicate: may a derivation from nonterminal lhs start with
// the MR token tok (with its string form token)? isVar flags MR variables.
// Different from IsLeftCornerForF, this includes left corners matched by
// wildcards and pattern variables.
func (g *Grammar) CanStart(lhs int, tok int, token string, isVar bool) bool {
	if isVar {
		return lhs < len(g.lcVar) && g.lcVar[lhs]
	}
	if g.IsLeftCornerForF(tok, lhs) {
		return true
	}
	match := false
	g.lcW.Each(lhs, func(cls int) bool {
		match = g.wildcards[cls].Match(token)
		return !match
	})
	return match
}

// CanStartRule is a predicate: may rule r start with the given MR token?
// Used for filtering predictions.
func (g *Grammar) CanStartRule(r *Rule, tok int, token string, isVar bool) bool {
	first := r.f[0]
	switch first.Kind {
	case scfg.Terminal:
		return !isVar && first.ID == tok
	case scfg.Nonterminal:
		return g.CanStart(first.ID, tok, token, isVar)
	case scfg.Variable:
		return isVar
	case scfg.Wildcard:
		return !isVar && g.wildcards[first.ID].Match(token)
	}
	return false
}

// Fingerprint returns a structural hash of the grammar. Grammars with equal
// rules (in equal order) and equal start symbols have equal fingerprints.
func (g *Grammar) Fingerprint() string {
	return g.hash
}

// Dump writes a listing of the rules to w. Intended for debugging.
func (g *Grammar) Dump(w io.Writer) {
	fmt.Fprintf(w, "grammar %s, start = %s, %d rules\n", g.Name, g.NT.Name(g.start), len(g.rules))
	for _, r := range g.rules {
		active := ""
		if !r.Active {
			active = " (inactive)"
		}
		fmt.Fprintf(w, "  %s%s\n", r, active)
	}
}

// MRToken returns the name of an MR token id.
func (g *Grammar) MRToken(id int) string {
	return g.MR.Name(id)
}

// SymbolString returns a readable form of an MR side symbol.
func (g *Grammar) SymbolString(s scfg.Symbol) string {
	switch s.Kind {
	case scfg.Terminal:
		return g.MR.Name(s.ID)
	case scfg.Nonterminal:
		return fmt.Sprintf("%s#%d", g.NT.Name(s.ID), s.Index)
	case scfg.Wildcard:
		return "*" + g.wildcards[s.ID].Name
	}
	return s.String()
}

// NLSymbolString returns a readable form of an NL side symbol.
func (g *Grammar) NLSymbolString(s scfg.Symbol) string {
	switch s.Kind {
	case scfg.Terminal:
		return g.NL.Name(s.ID)
	case scfg.Nonterminal:
		return fmt.Sprintf("%s#%d", g.NT.Name(s.ID), s.Index)
	case scfg.Wildcard:
		return "*" + g.wildcards[s.ID].Name
	}
	return s.String()
}

// --- Left corners ----------------------------------------------------------

// computeLeftCorners computes the transitive left-corner relation of the
// linearized MR sides. Rules whose MR side starts with a wildcard contribute the
// wildcard class; rules starting with a pattern variable contribute lcVar.
func (g *Grammar) computeLeftCorners() {
	g.lcT = sparse.NewRelation()
	g.lcW = sparse.NewRelation()
	g.lcVar = make([]bool, g.NT.Size())
	for _, r := range g.rules {
		first := r.f[0]
		switch first.Kind {
		case scfg.Terminal:
			g.lcT.Add(r.LHS, first.ID)
		case scfg.Wildcard:
			g.lcW.Add(r.LHS, first.ID)
		case scfg.Variable:
			g.lcVar[r.LHS] = true
		}
	}
	changed := true
	for changed { // fixpoint iteration over chain rules A → ⟨ B … ⟩
		changed = false
		for _, r := range g.rules {
			first := r.f[0]
			if first.Kind != scfg.Nonterminal || first.ID == r.LHS {
				continue
			}
			b, a := first.ID, r.LHS
			if g.lcT.Inherit(a, b) {
				changed = true
			}
			if g.lcW.Inherit(a, b) {
				changed = true
			}
			if g.lcVar[b] && !g.lcVar[a] {
				g.lcVar[a] = true
				changed = true
			}
		}
	}
	tracer().Debugf("left-corner relation has %d token entries", g.lcT.Size())
}

// --- Structural hashing ----------------------------------------------------

// ruleSignature is the structural identity of a rule, used for detecting
// duplicates and for the grammar fingerprint.
type ruleSignature struct {
	LHS    string
	MR     string
	NL     string
	Weight float64
}

func signatureOf(lhs string, mr *mrl.Node, nl string) ruleSignature {
	return ruleSignature{LHS: lhs, MR: mr.String(), NL: nl}
}

// grammarSignature is hashed for a grammar's fingerprint.
type grammarSignature struct {
	Start string
	Rules []ruleSignature
}

func (g *Grammar) computeFingerprint() error {
	gs := grammarSignature{Start: g.NT.Name(g.start)}
	for _, r := range g.rules {
		gs.Rules = append(gs.Rules, ruleSignature{
			LHS:    g.NT.Name(r.LHS),
			MR:     r.MR(),
			NL:     r.NL(),
			Weight: r.Weight,
		})
	}
	h, err := structhash.Hash(gs, 1)
	if err != nil {
		return err
	}
	g.hash = h
	return nil
}
