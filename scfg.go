package scfg

import (
	"fmt"
	"strings"

	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/scoring"
)

// --- Grammar symbols -------------------------------------------------------

// SymbolKind is a category type for grammar symbols.
type SymbolKind int8

//go:generate stringer -type=SymbolKind
const (
	Terminal    SymbolKind = iota // a word of the NL side or a token of the MR side
	Nonterminal                   // an indexed argument, linking MR side and NL side
	Wildcard                      // a class of terminals, copied from MR side to NL side
	Variable                      // a pattern variable, matching MR variables
)

// Symbol is a symbol of a rule side. Symbols are small values and are meant to
// be passed around by value.
//
// For terminals, ID is the id of the word or MR token in the respective vocabulary.
// For nonterminals, ID is the id of the nonterminal and Index is the argument index
// which links an occurence on the MR side with an occurence on the NL side.
// For wildcards, ID is the wildcard class. For variables, ID is the number of the
// pattern variable within its rule.
type Symbol struct {
	Kind  SymbolKind
	ID    int
	Index int
}

// T creates a terminal symbol.
func T(id int) Symbol {
	return Symbol{Kind: Terminal, ID: id}
}

// N creates a nonterminal symbol with argument index inx.
func N(id int, inx int) Symbol {
	return Symbol{Kind: Nonterminal, ID: id, Index: inx}
}

// W creates a wildcard symbol for wildcard class cls.
func W(cls int) Symbol {
	return Symbol{Kind: Wildcard, ID: cls}
}

// V creates a pattern variable symbol.
func V(n int) Symbol {
	return Symbol{Kind: Variable, ID: n}
}

// IsTerminal is a predicate.
func (s Symbol) IsTerminal() bool {
	return s.Kind == Terminal
}

// IsNonterminal is a predicate.
func (s Symbol) IsNonterminal() bool {
	return s.Kind == Nonterminal
}

// Unindexed returns a copy of s without argument index. Used as a key wherever
// the position of an argument does not matter.
func (s Symbol) Unindexed() Symbol {
	s.Index = 0
	return s
}

func (s Symbol) String() string {
	switch s.Kind {
	case Nonterminal:
		return fmt.Sprintf("N%d#%d", s.ID, s.Index)
	case Wildcard:
		return fmt.Sprintf("*%d", s.ID)
	case Variable:
		return fmt.Sprintf("$%d", s.ID)
	}
	return fmt.Sprintf("t%d", s.ID)
}

// --- Derivations -----------------------------------------------------------

// Derivation is the result of a generation or parse run. Derivations are
// ranked by score, higher is better.
type Derivation interface {
	Score() float64          // weighted model score, including sentence boundary scores
	Scores() scoring.Vector  // the unweighted feature values Score is computed from
	Terms() []string         // the words (generation) or MR tokens (parsing) derived
	String() string          // Terms, joined by blanks
	Tree() *mrl.Node         // the derivation tree (generation) or MR tree (parsing)
}

// Results is an iterator over derivations, best first. Use as
//
//     res := generator.Generate(mr)
//     for res.Next() {
//         d := res.Derivation()
//         …
//     }
//
type Results interface {
	Next() bool
	Derivation() Derivation
	Len() int
}

// ResultList is a simple implementation of Results, backed by a slice of
// derivations.
type ResultList struct {
	derivations []Derivation
	pos         int
}

var _ Results = (*ResultList)(nil)

// NewResultList wraps a slice of derivations. Derivations are expected to be
// ordered by descending score.
func NewResultList(d []Derivation) *ResultList {
	return &ResultList{derivations: d, pos: -1}
}

// Next advances the iterator.
func (rl *ResultList) Next() bool {
	if rl.pos+1 >= len(rl.derivations) {
		return false
	}
	rl.pos++
	return true
}

// Derivation returns the current derivation of the iteration.
func (rl *ResultList) Derivation() Derivation {
	if rl.pos < 0 || rl.pos >= len(rl.derivations) {
		return nil
	}
	return rl.derivations[rl.pos]
}

// Len returns the number of derivations in the list.
func (rl *ResultList) Len() int {
	return len(rl.derivations)
}

// Reset rewinds the iterator.
func (rl *ResultList) Reset() {
	rl.pos = -1
}

// All returns all derivations of the list.
func (rl *ResultList) All() []Derivation {
	return rl.derivations
}

// JoinTerms is a helper to join derived terms into a single string.
func JoinTerms(terms []string) string {
	return strings.Join(terms, " ")
}
