/*
Package lmctx implements language model context vectors for incremental n-gram
scoring of partially realized sentences.

A context vector is a sequence of word ids, interspersed with slots and elision
markers. Slots stand for material not yet realized (nonterminal arguments, gaps,
wildcard words). Whenever a slot is filled, exactly those words are scored whose
n-gram history has become complete by the splice. Words whose history is still
interrupted by a slot, or by the start of the vector, are pending.

Scored words are dropped from the vector, except for the words which are needed
as history for pending words: for each maximal run of words between slots, the
first n-1 words (pending) and the last n-1 words (history for whatever will be
spliced in after them) are kept, all words in between are replaced by a single
elision marker. Thus two partial realizations with equal vectors are equivalent
for all future scoring, and vectors can be used for recombination of chart items.

Summing up all scores obtained during splicing, plus the score for the sentence
boundaries, yields exactly the n-gram score of the complete sentence.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lmctx

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/scfg/lm"
	"github.com/npillmayer/scfg/symtab"
)

// tracer traces with key 'scfg.lm'.
func tracer() tracing.Trace {
	return tracing.Select("scfg.lm")
}

// Markers of context vectors. Word ids are non-negative.
const (
	Elided int32 = -2 // a run of scored words
	slot0  int32 = -3 // Slot(0); further slots count downwards
)

// Slot returns the marker for slot k, k ≥ 0.
func Slot(k int) int32 {
	return slot0 - int32(k)
}

// IsSlot is a predicate.
func IsSlot(x int32) bool {
	return x <= slot0
}

// SlotIndex returns k for the marker of slot k.
func SlotIndex(x int32) int {
	return int(slot0 - x)
}

// Vector is a context vector.
type Vector []int32

// Key returns a string usable as a map key. Equal vectors have equal keys.
func (v Vector) Key() string {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(x))
	}
	return string(b)
}

// HasSlots is a predicate.
func (v Vector) HasSlots() bool {
	for _, x := range v {
		if IsSlot(x) {
			return true
		}
	}
	return false
}

func (v Vector) String() string {
	s := make([]string, len(v))
	for i, x := range v {
		switch {
		case x == Elided:
			s[i] = "…"
		case IsSlot(x):
			s[i] = fmt.Sprintf("[%d]", SlotIndex(x))
		default:
			s[i] = fmt.Sprintf("%d", x)
		}
	}
	return "⟨" + strings.Join(s, " ") + "⟩"
}

// Scorer scores context vectors with an n-gram model. A scorer holds a scratch
// buffer and is not safe for concurrent use; create one scorer per chart.
// The model itself may be shared.
type Scorer struct {
	model lm.Model
	n     int
	ngram []int32 // scratch buffer for n-grams
}

// NewScorer creates a scorer for model m.
func NewScorer(m lm.Model) *Scorer {
	n := m.Order()
	if n < 1 {
		n = 1
	}
	return &Scorer{
		model: m,
		n:     n,
		ngram: make([]int32, n),
	}
}

// Order returns the order n of the underlying model.
func (s *Scorer) Order() int {
	return s.n
}

// Model returns the underlying model.
func (s *Scorer) Model() lm.Model {
	return s.model
}

// Initial creates a context vector from a sequence of word ids and slots, and
// scores all words with complete history.
func (s *Scorer) Initial(elems []int32) (Vector, float64) {
	v := make(Vector, len(elems))
	copy(v, elems)
	score := 0.0
	for p, x := range v {
		if x >= 0 && x != symtab.BOS && s.history(v, p) {
			score += s.model.Score(s.ngram)
		}
	}
	return s.compress(v), score
}

// Pending returns the number of leading words of a complete vector which have
// not been scored yet.
func (s *Scorer) Pending(v Vector) int {
	cnt := 0
	for _, x := range v {
		if x < 0 || cnt == s.n-1 {
			break
		}
		cnt++
	}
	return cnt
}

// Splice replaces slot k of v by the vector child and returns the new vector
// together with the score of the words whose history has been completed. The
// first childPending words of child are taken as not yet scored; for a child
// vector of a completed derivation this is s.Pending(child), for a fresh phrase of
// words it is the length of the phrase. Splice panics if v does not contain
// slot k.
func (s *Scorer) Splice(v Vector, k int, child Vector, childPending int) (Vector, float64) {
	q := -1
	marker := Slot(k)
	for i, x := range v {
		if x == marker {
			q = i
			break
		}
	}
	if q < 0 {
		panic(fmt.Sprintf("context vector %s has no slot %d", v, k))
	}
	out := make(Vector, 0, len(v)-1+len(child))
	out = append(out, v[:q]...)
	out = append(out, child...)
	out = append(out, v[q+1:]...)
	score := 0.0
	for p, cnt := q, 0; p < q+len(child) && cnt < childPending; p, cnt = p+1, cnt+1 {
		if out[p] < 0 {
			break
		}
		if s.history(out, p) {
			score += s.model.Score(s.ngram)
		}
	}
	after := q + len(child)
	for p, cnt := after, 0; p < len(out) && cnt < s.n-1; p, cnt = p+1, cnt+1 {
		if out[p] < 0 {
			break
		}
		if s.history(out, p) {
			score += s.model.Score(s.ngram)
		}
	}
	return s.compress(out), score
}

// Phrase splices a sequence of fresh words into slot k.
func (s *Scorer) Phrase(v Vector, k int, words []int32) (Vector, float64) {
	return s.Splice(v, k, Vector(words), len(words))
}

// Close returns the score of the sentence boundaries for a complete vector:
// the pending words are scored with the sentence start marker as history, and
// the sentence end marker is scored.
func (s *Scorer) Close(v Vector) float64 {
	b, score := s.Initial([]int32{symtab.BOS, Slot(0), symtab.EOS})
	_, sc := s.Splice(b, 0, v, s.Pending(v))
	return score + sc
}

// history collects the n-gram for the word at position p into the scratch buffer.
// It returns false if the history is interrupted by a marker or by the start of
// the vector. Histories reaching the sentence start marker are complete and are
// padded with lm.None.
func (s *Scorer) history(v Vector, p int) bool {
	ng := s.ngram
	ng[s.n-1] = v[p]
	q := p - 1
	for j := s.n - 2; j >= 0; j-- {
		if q < 0 {
			return false
		}
		x := v[q]
		if x < 0 {
			return false
		}
		ng[j] = x
		if x == symtab.BOS {
			for j--; j >= 0; j-- {
				ng[j] = lm.None
			}
			break
		}
		q--
	}
	return true
}

// compress replaces scored words which are not needed as history by elision markers.
func (s *Scorer) compress(v Vector) Vector {
	h := s.n - 1
	out := v[:0:0]
	start := 0
	flush := func(seg Vector) {
		if h == 0 {
			return // unigram model: no word is ever needed as history
		}
		if len(seg) > 2*h {
			out = append(out, seg[:h]...)
			out = append(out, Elided)
			out = append(out, seg[len(seg)-h:]...)
			return
		}
		out = append(out, seg...)
	}
	for i, x := range v {
		if IsSlot(x) {
			flush(v[start:i])
			out = append(out, x)
			start = i + 1
		}
	}
	flush(v[start:])
	return out
}
