package grammar

import (
	"fmt"
	"strings"

	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/mrl"
	"github.com/npillmayer/scfg/scoring"
)

// Rule is a synchronous rule
//
//     LHS → ⟨ MR side, NL side ⟩
//
// The MR side is kept as a pattern tree and in linearized form (F), the NL side
// is a sequence of symbols (E), with gap lengths between NL positions.
// Nonterminals on both sides are linked by their argument index.
//
// Rules are immutable once the grammar is built, except for the Active flag.
type Rule struct {
	ID      int
	LHS     int // nonterminal id
	Pattern *mrl.Node
	Weight  float64
	Active  bool
	f       []scfg.Symbol
	e       []scfg.Symbol
	gaps    []int // gaps[i] = max. number of gap words before NL position i
	scores  scoring.Vector
	nargs   int
	argF    []int // position in f of argument i (1-based; argF[0] unused)
	wild    int   // wildcard class, or -1
	nlWild  int   // number of wildcard copies on the NL side
	g       *Grammar
}

// F returns symbol i of the linearized MR side.
func (r *Rule) F(i int) scfg.Symbol {
	return r.f[i]
}

// E returns symbol i of the NL side.
func (r *Rule) E(i int) scfg.Symbol {
	return r.e[i]
}

// Gap returns the maximum number of gap words before NL position i.
// i may be LengthE(), denoting a gap at the end of the NL side.
func (r *Rule) Gap(i int) int {
	return r.gaps[i]
}

// HasGaps is a predicate.
func (r *Rule) HasGaps() bool {
	for _, g := range r.gaps {
		if g > 0 {
			return true
		}
	}
	return false
}

// LengthF returns the length of the linearized MR side.
func (r *Rule) LengthF() int {
	return len(r.f)
}

// LengthE returns the length of the NL side.
func (r *Rule) LengthE() int {
	return len(r.e)
}

// CountArgs returns the number of nonterminal arguments.
func (r *Rule) CountArgs() int {
	return r.nargs
}

// ArgPosF returns the position of argument inx within the linearized MR side.
func (r *Rule) ArgPosF(inx int) int {
	return r.argF[inx]
}

// IsWildcard is a predicate: does the MR side contain a wildcard?
func (r *Rule) IsWildcard() bool {
	return r.wild >= 0
}

// WildcardClass returns the wildcard class of a wildcard rule, or -1.
func (r *Rule) WildcardClass() int {
	return r.wild
}

// WildcardCopies returns the number of wildcard occurences on the NL side.
func (r *Rule) WildcardCopies() int {
	return r.nlWild
}

// Scores returns the score vector of the rule: the weight as translation model
// score, a rule count of 1, and the number of NL words as word penalty.
func (r *Rule) Scores() scoring.Vector {
	return r.scores
}

// Grammar returns the grammar a rule belongs to.
func (r *Rule) Grammar() *Grammar {
	return r.g
}

// MR returns the MR side as an s-expression pattern.
func (r *Rule) MR() string {
	return r.Pattern.String()
}

// NL returns the NL side as a string, with gaps written as [n].
func (r *Rule) NL() string {
	var s []string
	for i := 0; i <= len(r.e); i++ {
		if r.gaps[i] > 0 {
			s = append(s, fmt.Sprintf("[%d]", r.gaps[i]))
		}
		if i < len(r.e) {
			s = append(s, r.g.NLSymbolString(r.e[i]))
		}
	}
	return strings.Join(s, " ")
}

func (r *Rule) String() string {
	return fmt.Sprintf("%d: %s → ⟨ %s , %s ⟩ (%g)", r.ID, r.g.NT.Name(r.LHS), r.MR(), r.NL(), r.Weight)
}

// --- Rule references -------------------------------------------------------

// RuleRef references a rule from chart items. Generic references point to a
// rule as defined by the grammar. Wildcard rules are specialized when matched
// against a concrete MR token: the specialized reference holds the MR token and
// the NL word the wildcard is bound to.
//
// RuleRefs are small values and comparable, i.e. usable as map keys.
type RuleRef struct {
	Rule    *Rule
	Bound   bool // wildcard is bound
	MRToken int  // concrete MR token id of a bound wildcard
	NLWord  int  // concrete NL word id of a bound wildcard
}

// Generic creates a reference to r.
func Generic(r *Rule) RuleRef {
	return RuleRef{Rule: r}
}

// Specialize binds the wildcard of a wildcard rule to a concrete MR token and
// NL word. The rule itself remains untouched.
func Specialize(r *Rule, mrToken int, nlWord int) RuleRef {
	if !r.IsWildcard() {
		panic(fmt.Sprintf("rule %d is not a wildcard rule", r.ID))
	}
	return RuleRef{Rule: r, Bound: true, MRToken: mrToken, NLWord: nlWord}
}

// LHS returns the LHS nonterminal of the rule.
func (ref RuleRef) LHS() int {
	return ref.Rule.LHS
}

// F returns symbol i of the MR side. For bound wildcard rules, the wildcard is
// replaced by the concrete MR token.
func (ref RuleRef) F(i int) scfg.Symbol {
	s := ref.Rule.f[i]
	if ref.Bound && s.Kind == scfg.Wildcard {
		return scfg.T(ref.MRToken)
	}
	return s
}

// E returns symbol i of the NL side. For bound wildcard rules, wildcards are
// replaced by the concrete NL word.
func (ref RuleRef) E(i int) scfg.Symbol {
	s := ref.Rule.e[i]
	if ref.Bound && s.Kind == scfg.Wildcard {
		return scfg.T(ref.NLWord)
	}
	return s
}

// Scores returns the score vector of the referenced rule. Bound wildcard copies
// count as NL words.
func (ref RuleRef) Scores() scoring.Vector {
	v := ref.Rule.scores
	if ref.Bound {
		v[scoring.WP] += float64(ref.Rule.nlWild)
	}
	return v
}

func (ref RuleRef) String() string {
	if ref.Bound {
		return fmt.Sprintf("%d[*=%d/%d]", ref.Rule.ID, ref.MRToken, ref.NLWord)
	}
	return fmt.Sprintf("%d", ref.Rule.ID)
}
