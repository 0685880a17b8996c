/*
Package gaps provides gap fillers. Rules may declare word gaps on their NL side:
positions between NL symbols where up to a given number of extra words may be
inserted during generation. The words come from a gap model, which lists
candidate phrases for each pair of neighbouring NL symbols.

The empty phrase is always a candidate, and it is always the first one.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package gaps

import (
	"sort"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/scfg"
	"github.com/npillmayer/scfg/scoring"
	"github.com/npillmayer/scfg/symtab"
)

// tracer traces with key 'scfg.earley'.
func tracer() tracing.Trace {
	return tracing.Select("scfg.earley")
}

// Boundaries of an NL side, to be used as neighbouring symbols for gaps at the
// start and the end of a rule's NL side.
var (
	Start = scfg.T(symtab.BOS)
	End   = scfg.T(symtab.EOS)
)

// Filler is a candidate phrase for a gap.
type Filler struct {
	Words  []int32
	Scores scoring.Vector
}

// Len returns the number of words of a filler.
func (f Filler) Len() int {
	return len(f.Words)
}

// Source is the interface to gap models, as used by generators.
type Source interface {
	// Fillers returns the candidate phrases for a gap between two NL symbols.
	// The empty phrase is always the first candidate.
	Fillers(before, after scfg.Symbol) []Filler
}

type key struct {
	before, after scfg.Symbol
}

// Model is a simple table-based gap model. It is filled once and read-only
// afterwards.
type Model struct {
	fillers map[key][]Filler
	empty   map[key]float64
}

var _ Source = (*Model)(nil)

// NewModel creates an empty gap model.
func NewModel() *Model {
	return &Model{
		fillers: make(map[key][]Filler),
		empty:   make(map[key]float64),
	}
}

func makeKey(before, after scfg.Symbol) key {
	return key{before: before.Unindexed(), after: after.Unindexed()}
}

// Add adds a phrase for gaps between two NL symbols, with its log-probability.
// Nonterminals are matched regardless of their argument index.
func (m *Model) Add(before, after scfg.Symbol, words []int32, logprob float64) {
	if len(words) == 0 {
		m.SetEmpty(before, after, logprob)
		return
	}
	k := makeKey(before, after)
	f := Filler{Words: append([]int32(nil), words...)}
	f.Scores[scoring.Gap] = logprob
	f.Scores[scoring.WP] = float64(len(words))
	m.fillers[k] = append(m.fillers[k], f)
	sort.SliceStable(m.fillers[k], func(i, j int) bool {
		return m.fillers[k][i].Scores[scoring.Gap] > m.fillers[k][j].Scores[scoring.Gap]
	})
}

// SetEmpty sets the log-probability of leaving a gap empty; the default is 0.
func (m *Model) SetEmpty(before, after scfg.Symbol, logprob float64) {
	m.empty[makeKey(before, after)] = logprob
}

// Fillers is part of interface Source.
func (m *Model) Fillers(before, after scfg.Symbol) []Filler {
	k := makeKey(before, after)
	empty := Filler{}
	empty.Scores[scoring.Gap] = m.empty[k]
	fillers := make([]Filler, 0, len(m.fillers[k])+1)
	fillers = append(fillers, empty)
	fillers = append(fillers, m.fillers[k]...)
	tracer().Debugf("%d gap fillers for (%s, %s)", len(fillers), before, after)
	return fillers
}

// NoGaps is a source which offers the empty phrase only.
type NoGaps struct{}

// Fillers is part of interface Source.
func (NoGaps) Fillers(before, after scfg.Symbol) []Filler {
	return []Filler{{}}
}

// Candidates filters fillers to the ones not longer than maxLen. The empty
// filler stays first.
func Candidates(fillers []Filler, maxLen int) []Filler {
	c := make([]Filler, 0, len(fillers))
	for _, f := range fillers {
		if f.Len() <= maxLen {
			c = append(c, f)
		}
	}
	return c
}
